package reconciler

import (
	"errors"
	"palettecore/pkg/domain"
)

// CommitErrorKind classifies a failed commit for the user.
type CommitErrorKind string

// Commit failure kinds.
const (
	KindCapacityExceeded CommitErrorKind = "capacity_exceeded"
	KindDuplicateColor   CommitErrorKind = "duplicate_color"
	KindCategoryMismatch CommitErrorKind = "category_mismatch"
	KindNotFound         CommitErrorKind = "not_found"
	KindStaleVersion     CommitErrorKind = "stale_version"
	KindRuleViolation    CommitErrorKind = "rule_violation"
	KindInvalidReceipt   CommitErrorKind = "invalid_receipt"
	KindUnknown          CommitErrorKind = "unknown"
)

// CommitError is the single user-facing failure of a commit.
type CommitError struct {
	Kind    CommitErrorKind
	Message string
	Err     error
}

func (e *CommitError) Error() string { return e.Message }

func (e *CommitError) Unwrap() error { return e.Err }

func newCommitError(err error) *CommitError {
	var rve domain.RuleViolationError
	kind := KindUnknown
	msg := err.Error()
	switch {
	case errors.Is(err, domain.ErrStaleVersion):
		kind = KindStaleVersion
		msg = "this palette was changed elsewhere, reload it before saving"
	case errors.Is(err, domain.ErrCapacityExceeded):
		kind = KindCapacityExceeded
	case errors.Is(err, domain.ErrDuplicateColor):
		kind = KindDuplicateColor
	case errors.Is(err, domain.ErrCategoryMismatch):
		kind = KindCategoryMismatch
	case errors.Is(err, domain.ErrNotFound):
		kind = KindNotFound
	case errors.As(err, &rve):
		kind = KindRuleViolation
	}
	return &CommitError{Kind: kind, Message: msg, Err: err}
}
