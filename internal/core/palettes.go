package core

import (
	"context"
	"palettecore/pkg/domain"
	"sort"
	"strings"
)

// PaletteDetail is a palette with its slots in role order.
type PaletteDetail struct {
	domain.Palette
	Slots []domain.ColorSlot `json:"slots"`
}

// PaletteDetails carries the user-editable palette fields.
type PaletteDetails struct {
	Name        string
	Description string
}

// CreatePalette persists a new draft palette for creatorID.
func (s *Service) CreatePalette(ctx context.Context, creatorID int64, details PaletteDetails) (domain.Palette, domain.Result, error) {
	var created domain.Palette
	res, err := s.run(ctx, opCreatePalette, func(tx domain.Transaction) (int64, error) {
		var err error
		created, err = tx.CreatePalette(domain.Palette{
			CreatorID:   creatorID,
			Name:        strings.TrimSpace(details.Name),
			Description: details.Description,
			Status:      domain.PaletteDraft,
		})
		return created.ID, err
	})
	return created, res, err
}

// UpdatePaletteDetails replaces the name and description of a palette.
// Clearing the name of a published palette is rejected.
func (s *Service) UpdatePaletteDetails(ctx context.Context, paletteID int64, details PaletteDetails) (domain.Palette, domain.Result, error) {
	var updated domain.Palette
	res, err := s.run(ctx, opUpdatePaletteDetails, func(tx domain.Transaction) (int64, error) {
		var err error
		updated, err = tx.UpdatePalette(paletteID, func(p *domain.Palette) error {
			name := strings.TrimSpace(details.Name)
			if name == "" && p.Status == domain.PalettePublished {
				return &domain.NotPublishableError{PaletteID: paletteID, Missing: []string{"palette needs a name"}}
			}
			p.Name = name
			p.Description = details.Description
			return nil
		})
		return paletteID, err
	})
	return updated, res, err
}

// DeletePalette removes a palette and its slots.
func (s *Service) DeletePalette(ctx context.Context, paletteID int64) (domain.Result, error) {
	return s.run(ctx, opDeletePalette, func(tx domain.Transaction) (int64, error) {
		return paletteID, tx.DeletePalette(paletteID)
	})
}

// GetPalette returns a palette with its slots ordered by role, then position.
func (s *Service) GetPalette(ctx context.Context, paletteID int64) (PaletteDetail, error) {
	var detail PaletteDetail
	err := s.view(ctx, opGetPalette, func(view domain.TransactionView) error {
		p, ok := view.FindPalette(paletteID)
		if !ok {
			return domain.NewNotFound(domain.EntityPalette, paletteID)
		}
		detail = PaletteDetail{Palette: p, Slots: s.orderedSlots(view, paletteID)}
		return nil
	})
	return detail, err
}

// ListPalettes returns creatorID's palettes, most recently updated first.
func (s *Service) ListPalettes(ctx context.Context, creatorID int64) ([]domain.Palette, error) {
	var out []domain.Palette
	err := s.view(ctx, opListPalettes, func(view domain.TransactionView) error {
		for _, p := range view.ListPalettes() {
			if p.CreatorID == creatorID {
				out = append(out, p)
			}
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, err
}

// CleanupEmptyPalettes deletes creatorID's unnamed draft palettes that hold
// no slots and returns how many were removed.
func (s *Service) CleanupEmptyPalettes(ctx context.Context, creatorID int64) (int, domain.Result, error) {
	removed := 0
	res, err := s.run(ctx, opCleanupEmptyPalettes, func(tx domain.Transaction) (int64, error) {
		removed = 0
		view := tx.Snapshot()
		for _, p := range view.ListPalettes() {
			if p.CreatorID != creatorID || p.Status != domain.PaletteDraft || p.Name != "" {
				continue
			}
			if len(view.ListPaletteSlots(p.ID)) > 0 {
				continue
			}
			if err := tx.DeletePalette(p.ID); err != nil {
				return 0, err
			}
			removed++
		}
		return 0, nil
	})
	if err != nil {
		return 0, res, err
	}
	if removed > 0 {
		s.logger.Info("removed empty palettes", "creator_id", creatorID, "count", removed)
	}
	return removed, res, nil
}

// MissingRequirements lists what a palette still needs before it can be published.
func (s *Service) MissingRequirements(ctx context.Context, paletteID int64) ([]string, error) {
	var missing []string
	err := s.view(ctx, opMissingRequirements, func(view domain.TransactionView) error {
		p, ok := view.FindPalette(paletteID)
		if !ok {
			return domain.NewNotFound(domain.EntityPalette, paletteID)
		}
		missing = domain.MissingRequirements(p, s.roles, view.ListPaletteSlots(paletteID))
		return nil
	})
	return missing, err
}

// CanPublish reports whether the palette is named and meets every role minimum.
func (s *Service) CanPublish(ctx context.Context, paletteID int64) (bool, error) {
	missing, err := s.MissingRequirements(ctx, paletteID)
	if err != nil {
		return false, err
	}
	return len(missing) == 0, nil
}

// Publish moves a draft palette to published. A palette that misses
// requirements is left unchanged and a NotPublishableError is returned.
// Publishing an already published palette is a no-op.
func (s *Service) Publish(ctx context.Context, paletteID int64) (domain.Palette, domain.Result, error) {
	var published domain.Palette
	res, err := s.run(ctx, opPublishPalette, func(tx domain.Transaction) (int64, error) {
		p, ok := tx.FindPalette(paletteID)
		if !ok {
			return paletteID, domain.NewNotFound(domain.EntityPalette, paletteID)
		}
		if p.Status == domain.PalettePublished {
			published = p
			return paletteID, nil
		}
		if missing := domain.MissingRequirements(p, s.roles, tx.Snapshot().ListPaletteSlots(paletteID)); len(missing) > 0 {
			return paletteID, &domain.NotPublishableError{PaletteID: paletteID, Missing: missing}
		}
		var err error
		published, err = tx.UpdatePalette(paletteID, func(p *domain.Palette) error {
			p.Status = domain.PalettePublished
			return nil
		})
		return paletteID, err
	})
	return published, res, err
}

func (s *Service) orderedSlots(view domain.RuleView, paletteID int64) []domain.ColorSlot {
	slots := view.ListPaletteSlots(paletteID)
	domain.SortSlots(slots, s.roles)
	return slots
}
