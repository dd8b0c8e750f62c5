package core

import (
	"context"
	"fmt"
	"palettecore/pkg/domain"
)

// bumpVersion advances the palette version after a slot change.
func bumpVersion(tx domain.Transaction, paletteID int64) (domain.Palette, error) {
	return tx.UpdatePalette(paletteID, func(p *domain.Palette) error {
		p.Version++
		return nil
	})
}

// CreateSlot adds colorID to role in the palette at the next position for
// that role. It fails with a SlotError on capacity, duplicate color or
// category mismatch and with a NotFoundError for unknown references.
func (s *Service) CreateSlot(ctx context.Context, paletteID, colorID int64, role domain.Role) (domain.ColorSlot, domain.Result, error) {
	var created domain.ColorSlot
	res, err := s.run(ctx, opCreateSlot, func(tx domain.Transaction) (int64, error) {
		if _, ok := tx.FindPalette(paletteID); !ok {
			return 0, domain.NewNotFound(domain.EntityPalette, paletteID)
		}
		spec, err := s.roleSpec(role)
		if err != nil {
			return 0, err
		}
		view := tx.Snapshot()
		_, category, err := colorCategory(view, colorID)
		if err != nil {
			return 0, err
		}
		slots := view.ListPaletteSlots(paletteID)
		if err := domain.CheckNewSlot(spec, slots, colorID, category); err != nil {
			return 0, err
		}
		created, err = tx.CreateColorSlot(domain.ColorSlot{
			PaletteID: paletteID,
			ColorID:   colorID,
			Role:      role,
			Position:  domain.NextPosition(slots, role),
		})
		if err != nil {
			return 0, err
		}
		_, err = bumpVersion(tx, paletteID)
		return created.ID, err
	})
	return created, res, err
}

// ReplaceSlotColor swaps the color of a slot, keeping its role and position.
func (s *Service) ReplaceSlotColor(ctx context.Context, slotID, colorID int64) (domain.ColorSlot, domain.Result, error) {
	var updated domain.ColorSlot
	res, err := s.run(ctx, opReplaceSlotColor, func(tx domain.Transaction) (int64, error) {
		slot, ok := tx.FindColorSlot(slotID)
		if !ok {
			return slotID, domain.NewNotFound(domain.EntityColorSlot, slotID)
		}
		var err error
		updated, err = s.replaceColor(tx, slot, colorID)
		if err != nil {
			return slotID, err
		}
		_, err = bumpVersion(tx, slot.PaletteID)
		return slotID, err
	})
	return updated, res, err
}

func (s *Service) replaceColor(tx domain.Transaction, slot domain.ColorSlot, colorID int64) (domain.ColorSlot, error) {
	spec, err := s.roleSpec(slot.Role)
	if err != nil {
		return domain.ColorSlot{}, err
	}
	view := tx.Snapshot()
	_, category, err := colorCategory(view, colorID)
	if err != nil {
		return domain.ColorSlot{}, err
	}
	if err := domain.CheckSlotColor(spec, view.ListPaletteSlots(slot.PaletteID), slot.ID, colorID, category); err != nil {
		return domain.ColorSlot{}, err
	}
	return tx.UpdateColorSlot(slot.ID, func(cs *domain.ColorSlot) error {
		cs.ColorID = colorID
		return nil
	})
}

// DestroySlot removes a slot. Remaining positions are not renumbered.
func (s *Service) DestroySlot(ctx context.Context, slotID int64) (domain.Result, error) {
	return s.run(ctx, opDestroySlot, func(tx domain.Transaction) (int64, error) {
		slot, ok := tx.FindColorSlot(slotID)
		if !ok {
			return slotID, domain.NewNotFound(domain.EntityColorSlot, slotID)
		}
		if err := tx.DeleteColorSlot(slotID); err != nil {
			return slotID, err
		}
		_, err := bumpVersion(tx, slot.PaletteID)
		return slotID, err
	})
}

// CapacityStatus reports how full role is in the palette.
func (s *Service) CapacityStatus(ctx context.Context, paletteID int64, role domain.Role) (domain.CapacityStatus, error) {
	var status domain.CapacityStatus
	err := s.view(ctx, opCapacityStatus, func(view domain.TransactionView) error {
		if _, ok := view.FindPalette(paletteID); !ok {
			return domain.NewNotFound(domain.EntityPalette, paletteID)
		}
		spec, err := s.roleSpec(role)
		if err != nil {
			return err
		}
		status = domain.StatusFor(spec, view.ListPaletteSlots(paletteID))
		return nil
	})
	return status, err
}

// ListRoles reports the capacity status of every configured role, in role-set order.
func (s *Service) ListRoles(ctx context.Context, paletteID int64) ([]domain.CapacityStatus, error) {
	var out []domain.CapacityStatus
	err := s.view(ctx, opListRoles, func(view domain.TransactionView) error {
		if _, ok := view.FindPalette(paletteID); !ok {
			return domain.NewNotFound(domain.EntityPalette, paletteID)
		}
		slots := view.ListPaletteSlots(paletteID)
		out = make([]domain.CapacityStatus, 0, len(s.roles))
		for _, spec := range s.roles {
			out = append(out, domain.StatusFor(spec, slots))
		}
		return nil
	})
	return out, err
}

// ApplyPaletteChanges applies a batch of slot edits atomically: deletions,
// then updates, then additions. Each step is validated against the state the
// previous steps produced; any failure aborts the whole batch. The palette
// version must equal changes.BaseVersion and is incremented once on success.
func (s *Service) ApplyPaletteChanges(ctx context.Context, paletteID int64, changes domain.SlotChanges) (domain.CommitReceipt, domain.Result, error) {
	var receipt domain.CommitReceipt
	res, err := s.run(ctx, opApplyPaletteChanges, func(tx domain.Transaction) (int64, error) {
		p, ok := tx.FindPalette(paletteID)
		if !ok {
			return paletteID, domain.NewNotFound(domain.EntityPalette, paletteID)
		}
		if p.Version != changes.BaseVersion {
			return paletteID, &domain.ConflictError{PaletteID: paletteID, Expected: changes.BaseVersion, Actual: p.Version}
		}
		receipt = domain.CommitReceipt{PaletteID: paletteID, Version: p.Version, Assigned: make(map[int64]int64)}
		if changes.Empty() {
			receipt.Slots = s.orderedSlots(tx.Snapshot(), paletteID)
			return paletteID, nil
		}
		if err := s.applyDeletions(tx, paletteID, changes.Deletions); err != nil {
			return paletteID, err
		}
		if err := s.applyUpdates(tx, paletteID, changes.Updates); err != nil {
			return paletteID, err
		}
		if err := s.applyAdditions(tx, paletteID, changes.Additions, receipt.Assigned); err != nil {
			return paletteID, err
		}
		bumped, err := bumpVersion(tx, paletteID)
		if err != nil {
			return paletteID, err
		}
		receipt.Version = bumped.Version
		receipt.Slots = s.orderedSlots(tx.Snapshot(), paletteID)
		return paletteID, nil
	})
	if err != nil {
		return domain.CommitReceipt{}, res, err
	}
	return receipt, res, nil
}

func paletteSlot(tx domain.Transaction, paletteID, slotID int64) (domain.ColorSlot, error) {
	slot, ok := tx.FindColorSlot(slotID)
	if !ok || slot.PaletteID != paletteID {
		return domain.ColorSlot{}, domain.NewNotFound(domain.EntityColorSlot, slotID)
	}
	return slot, nil
}

func (s *Service) applyDeletions(tx domain.Transaction, paletteID int64, ids []int64) error {
	for _, id := range ids {
		if _, err := paletteSlot(tx, paletteID, id); err != nil {
			return err
		}
		if err := tx.DeleteColorSlot(id); err != nil {
			return err
		}
	}
	return nil
}

// applyUpdates checks category per update but uniqueness only against the
// final slot set, so colors may be swapped between slots in one batch.
func (s *Service) applyUpdates(tx domain.Transaction, paletteID int64, updates []domain.SlotUpdate) error {
	var changed []domain.ColorSlot
	for _, u := range updates {
		slot, err := paletteSlot(tx, paletteID, u.ID)
		if err != nil {
			return err
		}
		if slot.ColorID == u.ColorID {
			continue
		}
		spec, err := s.roleSpec(slot.Role)
		if err != nil {
			return err
		}
		_, category, err := colorCategory(tx.Snapshot(), u.ColorID)
		if err != nil {
			return err
		}
		if err := domain.CheckSlotColor(spec, nil, slot.ID, u.ColorID, category); err != nil {
			return err
		}
		updated, err := tx.UpdateColorSlot(slot.ID, func(cs *domain.ColorSlot) error {
			cs.ColorID = u.ColorID
			return nil
		})
		if err != nil {
			return err
		}
		changed = append(changed, updated)
	}
	if len(changed) == 0 {
		return nil
	}
	final := tx.Snapshot().ListPaletteSlots(paletteID)
	for _, slot := range changed {
		for _, other := range final {
			if other.ID != slot.ID && other.ColorID == slot.ColorID {
				return &domain.SlotError{
					Kind:    domain.KindDuplicateColor,
					Role:    slot.Role,
					ColorID: slot.ColorID,
					Message: fmt.Sprintf("color %d is already in this palette", slot.ColorID),
				}
			}
		}
	}
	return nil
}

func (s *Service) applyAdditions(tx domain.Transaction, paletteID int64, additions []domain.SlotAddition, assigned map[int64]int64) error {
	for _, a := range additions {
		if a.TempID != 0 {
			if _, dup := assigned[a.TempID]; dup {
				return fmt.Errorf("%w: temporary id %d used twice", domain.ErrInvalidInput, a.TempID)
			}
		}
		spec, err := s.roleSpec(a.Role)
		if err != nil {
			return err
		}
		view := tx.Snapshot()
		_, category, err := colorCategory(view, a.ColorID)
		if err != nil {
			return err
		}
		slots := view.ListPaletteSlots(paletteID)
		if err := domain.CheckNewSlot(spec, slots, a.ColorID, category); err != nil {
			return err
		}
		position := domain.NextPosition(slots, a.Role)
		if a.Position != nil {
			position = *a.Position
		}
		created, err := tx.CreateColorSlot(domain.ColorSlot{
			PaletteID: paletteID,
			ColorID:   a.ColorID,
			Role:      a.Role,
			Position:  position,
		})
		if err != nil {
			return err
		}
		if a.TempID != 0 {
			assigned[a.TempID] = created.ID
		}
	}
	return nil
}
