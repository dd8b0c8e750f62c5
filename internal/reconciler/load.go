package reconciler

import (
	"context"
	"palettecore/pkg/domain"
	"sort"
)

// Load starts a session from a stored palette. Slots in roles other than
// background and thread are not part of the session and are never touched
// by its commits.
func Load(ctx context.Context, store domain.PersistentStore, paletteID int64, opts ...Option) (*Session, error) {
	var (
		version int64
		state   State
	)
	err := store.View(ctx, func(view domain.TransactionView) error {
		p, ok := view.FindPalette(paletteID)
		if !ok {
			return domain.NewNotFound(domain.EntityPalette, paletteID)
		}
		version = p.Version
		slots := view.ListPaletteSlots(paletteID)
		sort.SliceStable(slots, func(i, j int) bool {
			if slots[i].Position != slots[j].Position {
				return slots[i].Position < slots[j].Position
			}
			return slots[i].ID < slots[j].ID
		})
		for _, slot := range slots {
			entry := Entry{Ref: Persisted(slot.ID), Color: snapshotColor(view, slot.ColorID)}
			switch slot.Role {
			case domain.RoleBackground:
				if state.Background == nil {
					state.Background = &entry
				}
			case domain.RoleThread:
				state.Threads = append(state.Threads, entry)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewSession(paletteID, version, state, opts...)
}

// SnapshotColor resolves the rendering attributes of a catalog color.
func SnapshotColor(ctx context.Context, store domain.PersistentStore, colorID int64) (ColorSnapshot, error) {
	var snap ColorSnapshot
	err := store.View(ctx, func(view domain.TransactionView) error {
		if _, ok := view.FindColor(colorID); !ok {
			return domain.NewNotFound(domain.EntityColor, colorID)
		}
		snap = snapshotColor(view, colorID)
		return nil
	})
	return snap, err
}

func snapshotColor(view domain.RuleView, colorID int64) ColorSnapshot {
	snap := ColorSnapshot{ID: colorID}
	color, ok := view.FindColor(colorID)
	if !ok {
		return snap
	}
	snap.BrandID = color.BrandID
	snap.Name = color.Name
	snap.VendorCode = color.VendorCode
	snap.Hex = color.Hex
	if brand, ok := view.FindBrand(color.BrandID); ok {
		snap.BrandName = brand.Name
		snap.Category = brand.Category
	}
	return snap
}
