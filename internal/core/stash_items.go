package core

import (
	"context"
	"fmt"
	"palettecore/pkg/domain"
)

// AddStashItem records colorID in ownerID's stash. Adding a color twice fails
// with domain.ErrDuplicateColor.
func (s *Service) AddStashItem(ctx context.Context, ownerID, colorID int64, status domain.OwnershipStatus) (domain.StashItem, domain.Result, error) {
	var created domain.StashItem
	res, err := s.run(ctx, opAddStashItem, func(tx domain.Transaction) (int64, error) {
		var err error
		created, err = tx.CreateStashItem(domain.StashItem{OwnerID: ownerID, ColorID: colorID, Status: status})
		return created.ID, err
	})
	return created, res, err
}

// SetStashOwnership changes the ownership status of a stash item.
func (s *Service) SetStashOwnership(ctx context.Context, itemID int64, status domain.OwnershipStatus) (domain.StashItem, domain.Result, error) {
	if !status.Valid() {
		return domain.StashItem{}, domain.Result{}, fmt.Errorf("%w: unknown ownership status %q", domain.ErrInvalidInput, status)
	}
	return s.updateStashItem(ctx, opSetStashOwnership, itemID, func(item *domain.StashItem) {
		item.Status = status
	})
}

// ToggleStashFavorite flips the favorite flag of a stash item.
func (s *Service) ToggleStashFavorite(ctx context.Context, itemID int64) (domain.StashItem, domain.Result, error) {
	return s.updateStashItem(ctx, opToggleStashFavorite, itemID, func(item *domain.StashItem) {
		item.Favorite = !item.Favorite
	})
}

// RemoveStashItem deletes a stash item.
func (s *Service) RemoveStashItem(ctx context.Context, itemID int64) (domain.Result, error) {
	return s.run(ctx, opRemoveStashItem, func(tx domain.Transaction) (int64, error) {
		return itemID, tx.DeleteStashItem(itemID)
	})
}

func (s *Service) updateStashItem(ctx context.Context, operation string, itemID int64, mutate func(*domain.StashItem)) (domain.StashItem, domain.Result, error) {
	var updated domain.StashItem
	res, err := s.run(ctx, operation, func(tx domain.Transaction) (int64, error) {
		var err error
		updated, err = tx.UpdateStashItem(itemID, func(item *domain.StashItem) error {
			mutate(item)
			return nil
		})
		return itemID, err
	})
	return updated, res, err
}
