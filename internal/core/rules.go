package core

import (
	"palettecore/pkg/domain"
	"sort"
)

// NewDefaultRulesEngine builds a rules engine with the built-in slot rules
// for the supplied role set. An empty set selects domain.DefaultRoles.
func NewDefaultRulesEngine(roles domain.RoleSet) *domain.RulesEngine {
	if len(roles) == 0 {
		roles = domain.DefaultRoles()
	}
	engine := domain.NewRulesEngine()
	engine.Register(NewSlotCapacityRule(roles))
	engine.Register(NewSlotUniquenessRule())
	engine.Register(NewSlotCategoryRule(roles))
	return engine
}

// touchedPalettes collects the palettes whose slots or record changed in a
// transaction, in ascending id order.
func touchedPalettes(changes []domain.Change) []int64 {
	seen := make(map[int64]struct{})
	add := func(v any) {
		switch rec := v.(type) {
		case domain.ColorSlot:
			seen[rec.PaletteID] = struct{}{}
		case domain.Palette:
			seen[rec.ID] = struct{}{}
		}
	}
	for _, change := range changes {
		add(change.Before)
		add(change.After)
	}
	ids := make([]int64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
