package domain

import (
	"fmt"
	"sort"
)

// Role names a slot group within a palette.
type Role string

// Roles known to the default and legacy role sets.
const (
	RoleBackground Role = "background"
	RoleThread     Role = "thread"
	RoleMain       Role = "main"
	RoleSecondary  Role = "secondary"
	RoleAccent     Role = "accent"
)

// RoleSpec declares the capacity and required brand category of a role.
type RoleSpec struct {
	Role     Role     `json:"role" toml:"role"`
	Min      int      `json:"min" toml:"min"`
	Max      int      `json:"max" toml:"max"`
	Category Category `json:"category" toml:"category"`
}

// RoleSet is an ordered collection of role specs.
type RoleSet []RoleSpec

// DefaultRoles returns the background plus thread configuration.
func DefaultRoles() RoleSet {
	return RoleSet{
		{Role: RoleBackground, Min: 1, Max: 1, Category: CategoryFabric},
		{Role: RoleThread, Min: 0, Max: 12, Category: CategoryThread},
	}
}

// LegacyRoles returns the earlier configuration where threads are split by emphasis.
func LegacyRoles() RoleSet {
	return RoleSet{
		{Role: RoleBackground, Min: 1, Max: 1, Category: CategoryFabric},
		{Role: RoleMain, Min: 1, Max: 4, Category: CategoryThread},
		{Role: RoleSecondary, Min: 0, Max: 4, Category: CategoryThread},
		{Role: RoleAccent, Min: 0, Max: 4, Category: CategoryThread},
	}
}

// Lookup returns the spec for role.
func (rs RoleSet) Lookup(role Role) (RoleSpec, bool) {
	for _, spec := range rs {
		if spec.Role == role {
			return spec, true
		}
	}
	return RoleSpec{}, false
}

// Validate checks that role names are unique and bounds are coherent.
func (rs RoleSet) Validate() error {
	if len(rs) == 0 {
		return fmt.Errorf("%w: role set is empty", ErrInvalidInput)
	}
	seen := make(map[Role]struct{}, len(rs))
	for _, spec := range rs {
		if spec.Role == "" {
			return fmt.Errorf("%w: role name required", ErrInvalidInput)
		}
		if _, dup := seen[spec.Role]; dup {
			return fmt.Errorf("%w: role %s declared twice", ErrInvalidInput, spec.Role)
		}
		seen[spec.Role] = struct{}{}
		if spec.Min < 0 || spec.Max < spec.Min || spec.Max == 0 {
			return fmt.Errorf("%w: role %s has invalid bounds %d..%d", ErrInvalidInput, spec.Role, spec.Min, spec.Max)
		}
		if !spec.Category.Valid() {
			return fmt.Errorf("%w: role %s has unknown category %q", ErrInvalidInput, spec.Role, spec.Category)
		}
	}
	return nil
}

// CapacityStatus summarizes how full a role is within one palette.
type CapacityStatus struct {
	Role       Role     `json:"role"`
	Category   Category `json:"category"`
	Current    int      `json:"current"`
	Min        int      `json:"min"`
	Max        int      `json:"max"`
	IsFull     bool     `json:"is_full"`
	MinimumMet bool     `json:"minimum_met"`
}

// StatusFor computes the capacity status of spec given the palette's slots.
func StatusFor(spec RoleSpec, slots []ColorSlot) CapacityStatus {
	current := 0
	for _, slot := range slots {
		if slot.Role == spec.Role {
			current++
		}
	}
	return CapacityStatus{
		Role:       spec.Role,
		Category:   spec.Category,
		Current:    current,
		Min:        spec.Min,
		Max:        spec.Max,
		IsFull:     current >= spec.Max,
		MinimumMet: current >= spec.Min,
	}
}

// CheckNewSlot validates adding colorID (of brand category cat) to role,
// given the palette's current slots.
func CheckNewSlot(spec RoleSpec, slots []ColorSlot, colorID int64, cat Category) error {
	if StatusFor(spec, slots).IsFull {
		return &SlotError{
			Kind:    KindCapacityExceeded,
			Role:    spec.Role,
			ColorID: colorID,
			Message: fmt.Sprintf("role %s already holds the maximum of %d colors", spec.Role, spec.Max),
		}
	}
	return CheckSlotColor(spec, slots, 0, colorID, cat)
}

// CheckSlotColor validates placing colorID into a slot of role spec. The slot
// identified by exceptSlotID (zero for none) is ignored for duplicates.
func CheckSlotColor(spec RoleSpec, slots []ColorSlot, exceptSlotID int64, colorID int64, cat Category) error {
	for _, slot := range slots {
		if slot.ID == exceptSlotID && exceptSlotID != 0 {
			continue
		}
		if slot.ColorID == colorID {
			return &SlotError{
				Kind:    KindDuplicateColor,
				Role:    spec.Role,
				ColorID: colorID,
				Message: fmt.Sprintf("color %d is already in this palette", colorID),
			}
		}
	}
	if cat != spec.Category {
		return &SlotError{
			Kind:    KindCategoryMismatch,
			Role:    spec.Role,
			ColorID: colorID,
			Message: fmt.Sprintf("role %s requires a %s color, got %s", spec.Role, spec.Category, cat),
		}
	}
	return nil
}

// NextPosition returns the max position for role plus one.
func NextPosition(slots []ColorSlot, role Role) int {
	next := 0
	for _, slot := range slots {
		if slot.Role == role && slot.Position+1 > next {
			next = slot.Position + 1
		}
	}
	return next
}

// MissingRequirements lists unmet publish requirements: a name and each role minimum.
func MissingRequirements(p Palette, roles RoleSet, slots []ColorSlot) []string {
	var missing []string
	if p.Name == "" {
		missing = append(missing, "palette needs a name")
	}
	for _, spec := range roles {
		status := StatusFor(spec, slots)
		if status.MinimumMet {
			continue
		}
		noun := "colors"
		if spec.Min == 1 {
			noun = "color"
		}
		missing = append(missing, fmt.Sprintf("%s needs at least %d %s (has %d)", spec.Role, spec.Min, noun, status.Current))
	}
	return missing
}

// SortSlots orders slots by role order in roles, then position, then id.
func SortSlots(slots []ColorSlot, roles RoleSet) {
	rank := make(map[Role]int, len(roles))
	for i, spec := range roles {
		rank[spec.Role] = i
	}
	sort.SliceStable(slots, func(i, j int) bool {
		ri, iok := rank[slots[i].Role]
		rj, jok := rank[slots[j].Role]
		if iok != jok {
			return iok
		}
		if ri != rj {
			return ri < rj
		}
		if slots[i].Role != slots[j].Role {
			return slots[i].Role < slots[j].Role
		}
		if slots[i].Position != slots[j].Position {
			return slots[i].Position < slots[j].Position
		}
		return slots[i].ID < slots[j].ID
	})
}
