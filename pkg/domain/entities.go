// Package domain defines the core persistent entities, value types, and
// rule evaluation primitives used by palettecore.
package domain

import (
	"time"
)

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityBrand identifies a manufacturer brand record.
	EntityBrand EntityType = "brand"
	// EntityColor identifies a catalog color record.
	EntityColor EntityType = "color"
	// EntityPalette identifies a palette record.
	EntityPalette EntityType = "palette"
	// EntityColorSlot identifies a color slot within a palette.
	EntityColorSlot EntityType = "color_slot"
	// EntityStashItem identifies a stash item owned by a user.
	EntityStashItem EntityType = "stash_item"
	// EntityRole identifies a palette role specification.
	EntityRole EntityType = "role"
)

// Category classifies a brand's products. A role requires colors of one category.
type Category string

// Brand categories.
const (
	CategoryThread  Category = "thread"
	CategoryFabric  Category = "fabric"
	CategoryGeneral Category = "general"
)

// Categories lists every brand category in display order.
func Categories() []Category {
	return []Category{CategoryThread, CategoryFabric, CategoryGeneral}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryThread, CategoryFabric, CategoryGeneral:
		return true
	}
	return false
}

// PaletteStatus captures the palette lifecycle.
type PaletteStatus string

// Palette lifecycle states.
const (
	PaletteDraft     PaletteStatus = "draft"
	PalettePublished PaletteStatus = "published"
)

// OwnershipStatus records whether a stash color is owned or wished for.
type OwnershipStatus string

// Ownership states. The zero value means unset.
const (
	OwnershipUnset    OwnershipStatus = ""
	OwnershipOwned    OwnershipStatus = "owned"
	OwnershipWishList OwnershipStatus = "wish_list"
)

// Valid reports whether s is a known ownership status, including unset.
func (s OwnershipStatus) Valid() bool {
	switch s {
	case OwnershipUnset, OwnershipOwned, OwnershipWishList:
		return true
	}
	return false
}

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Base contains common fields for all domain records.
type Base struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Brand is a manufacturer whose colors make up a catalog.
type Brand struct {
	Base
	Name       string   `json:"name"`
	Slug       string   `json:"slug"`
	Category   Category `json:"category"`
	ColorCount int      `json:"color_count"`
}

// Color is an immutable catalog record. Perceptual coordinates are OKLCH and
// are converted at ingestion; any of them may be missing.
type Color struct {
	Base
	BrandID    int64        `json:"brand_id"`
	Name       string       `json:"name"`
	VendorCode string       `json:"vendor_code"`
	Hex        string       `json:"hex"`
	OklchL     *float64     `json:"oklch_l,omitempty"`
	OklchC     *float64     `json:"oklch_c,omitempty"`
	OklchH     *float64     `json:"oklch_h,omitempty"`
	Family     *ColorFamily `json:"color_family,omitempty"`
}

// HasFamily reports whether the color has the given family on record.
func (c Color) HasFamily(f ColorFamily) bool {
	return c.Family != nil && *c.Family == f
}

// Palette groups color slots under a creator.
type Palette struct {
	Base
	CreatorID   int64         `json:"creator_id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Status      PaletteStatus `json:"status"`
	Version     int64         `json:"version"`
}

// ColorSlot assigns one color to a role within a palette.
type ColorSlot struct {
	Base
	PaletteID int64 `json:"palette_id"`
	ColorID   int64 `json:"color_id"`
	Role      Role  `json:"role"`
	Position  int   `json:"position"`
}

// StashItem records a color in a user's personal collection.
type StashItem struct {
	Base
	OwnerID  int64           `json:"owner_id"`
	ColorID  int64           `json:"color_id"`
	Status   OwnershipStatus `json:"ownership_status"`
	Favorite bool            `json:"favorite"`
}

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported CRUD operations captured in audit trail.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID int64
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	for _, v := range e.Result.Violations {
		if v.Severity == SeverityBlock {
			return "transaction blocked by rules: " + v.Message
		}
	}
	return "transaction blocked by rules"
}
