package core

import (
	"context"
	"palettecore/pkg/domain"
)

// CreateBrand persists a new brand. The slug is derived from the name when unset.
func (s *Service) CreateBrand(ctx context.Context, brand domain.Brand) (domain.Brand, domain.Result, error) {
	var created domain.Brand
	res, err := s.run(ctx, opCreateBrand, func(tx domain.Transaction) (int64, error) {
		var err error
		created, err = tx.CreateBrand(brand)
		return created.ID, err
	})
	return created, res, err
}

// CreateColor persists a new catalog color under an existing brand.
func (s *Service) CreateColor(ctx context.Context, color domain.Color) (domain.Color, domain.Result, error) {
	var created domain.Color
	res, err := s.run(ctx, opCreateColor, func(tx domain.Transaction) (int64, error) {
		var err error
		created, err = tx.CreateColor(color)
		return created.ID, err
	})
	return created, res, err
}
