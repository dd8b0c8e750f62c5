package domain

import (
	"errors"
	"fmt"
	"strconv"
)

// Sentinel errors for errors.Is checks.
var (
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrDuplicateColor   = errors.New("duplicate color")
	ErrCategoryMismatch = errors.New("category mismatch")
	ErrNotFound         = errors.New("not found")
	ErrNotPublishable   = errors.New("palette not publishable")
	ErrStaleVersion     = errors.New("stale palette version")
	ErrInvalidInput     = errors.New("invalid input")
)

// SlotErrorKind classifies a rejected slot mutation.
type SlotErrorKind string

// Slot error kinds, one per slot invariant.
const (
	KindCapacityExceeded SlotErrorKind = "capacity_exceeded"
	KindDuplicateColor   SlotErrorKind = "duplicate_color"
	KindCategoryMismatch SlotErrorKind = "category_mismatch"
)

// SlotError reports a slot invariant violation.
type SlotError struct {
	Kind    SlotErrorKind
	Role    Role
	ColorID int64
	Message string
}

func (e *SlotError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s: role %s color %d", e.Kind, e.Role, e.ColorID)
}

func (e *SlotError) Unwrap() error {
	switch e.Kind {
	case KindCapacityExceeded:
		return ErrCapacityExceeded
	case KindDuplicateColor:
		return ErrDuplicateColor
	case KindCategoryMismatch:
		return ErrCategoryMismatch
	}
	return nil
}

// NotFoundError indicates a referenced entity does not exist.
type NotFoundError struct {
	Entity EntityType
	ID     string
}

// NewNotFound builds a NotFoundError for a numeric identifier.
func NewNotFound(entity EntityType, id int64) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: strconv.FormatInt(id, 10)}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ConflictError reports a commit against an outdated palette version.
type ConflictError struct {
	PaletteID int64
	Expected  int64
	Actual    int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("palette %d changed: based on version %d, current version %d", e.PaletteID, e.Expected, e.Actual)
}

func (e *ConflictError) Unwrap() error { return ErrStaleVersion }

// NotPublishableError lists the requirements a palette still misses.
type NotPublishableError struct {
	PaletteID int64
	Missing   []string
}

func (e *NotPublishableError) Error() string {
	if len(e.Missing) == 0 {
		return fmt.Sprintf("palette %d cannot be published", e.PaletteID)
	}
	return fmt.Sprintf("palette %d cannot be published: %s", e.PaletteID, e.Missing[0])
}

func (e *NotPublishableError) Unwrap() error { return ErrNotPublishable }
