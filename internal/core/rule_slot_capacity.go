package core

import (
	"context"
	"fmt"
	"palettecore/pkg/domain"
)

// NewSlotCapacityRule returns the in-transaction rule enforcing per-role maximums.
func NewSlotCapacityRule(roles domain.RoleSet) domain.Rule {
	return slotCapacityRule{roles: roles}
}

type slotCapacityRule struct {
	roles domain.RoleSet
}

func (slotCapacityRule) Name() string { return "slot_capacity" }

func (r slotCapacityRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, paletteID := range touchedPalettes(changes) {
		if _, ok := view.FindPalette(paletteID); !ok {
			continue
		}
		slots := view.ListPaletteSlots(paletteID)
		for _, spec := range r.roles {
			status := domain.StatusFor(spec, slots)
			if status.Current <= spec.Max {
				continue
			}
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "slot_capacity",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("palette %d role %s over capacity: %d/%d slots", paletteID, spec.Role, status.Current, spec.Max),
				Entity:   domain.EntityPalette,
				EntityID: paletteID,
			})
		}
	}
	return res, nil
}
