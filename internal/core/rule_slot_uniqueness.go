package core

import (
	"context"
	"fmt"
	"palettecore/pkg/domain"
)

// NewSlotUniquenessRule returns the rule rejecting a color used twice in one palette.
func NewSlotUniquenessRule() domain.Rule {
	return slotUniquenessRule{}
}

type slotUniquenessRule struct{}

func (slotUniquenessRule) Name() string { return "slot_uniqueness" }

func (slotUniquenessRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, paletteID := range touchedPalettes(changes) {
		first := make(map[int64]int64)
		for _, slot := range view.ListPaletteSlots(paletteID) {
			prior, dup := first[slot.ColorID]
			if !dup {
				first[slot.ColorID] = slot.ID
				continue
			}
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "slot_uniqueness",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("color %d appears in slots %d and %d of palette %d", slot.ColorID, prior, slot.ID, paletteID),
				Entity:   domain.EntityColorSlot,
				EntityID: slot.ID,
			})
		}
	}
	return res, nil
}
