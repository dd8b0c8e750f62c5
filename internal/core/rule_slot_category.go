package core

import (
	"context"
	"fmt"
	"palettecore/pkg/domain"
)

// NewSlotCategoryRule returns the rule requiring each slot's role to be known
// and its color's brand category to match the role.
func NewSlotCategoryRule(roles domain.RoleSet) domain.Rule {
	return slotCategoryRule{roles: roles}
}

type slotCategoryRule struct {
	roles domain.RoleSet
}

func (slotCategoryRule) Name() string { return "slot_category" }

func (r slotCategoryRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	block := func(slot domain.ColorSlot, msg string) {
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "slot_category",
			Severity: domain.SeverityBlock,
			Message:  msg,
			Entity:   domain.EntityColorSlot,
			EntityID: slot.ID,
		})
	}
	for _, paletteID := range touchedPalettes(changes) {
		for _, slot := range view.ListPaletteSlots(paletteID) {
			spec, ok := r.roles.Lookup(slot.Role)
			if !ok {
				block(slot, fmt.Sprintf("slot %d uses unknown role %s", slot.ID, slot.Role))
				continue
			}
			_, category, err := colorCategory(view, slot.ColorID)
			if err != nil {
				block(slot, fmt.Sprintf("slot %d: %v", slot.ID, err))
				continue
			}
			if category != spec.Category {
				block(slot, fmt.Sprintf("slot %d role %s requires %s, color %d is %s", slot.ID, slot.Role, spec.Category, slot.ColorID, category))
			}
		}
	}
	return res, nil
}
