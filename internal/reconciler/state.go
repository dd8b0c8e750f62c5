package reconciler

import (
	"fmt"
	"palettecore/pkg/domain"
	"slices"
)

type refKind uint8

const (
	refPersisted refKind = iota + 1
	refPending
)

// SlotRef identifies a slot in a session: either a persisted slot id or a
// session-local temporary id for a slot not yet committed.
type SlotRef struct {
	kind refKind
	id   int64
}

// Persisted references a slot the server has stored.
func Persisted(id int64) SlotRef { return SlotRef{kind: refPersisted, id: id} }

// Pending references a slot created in this session and not yet committed.
func Pending(tempID int64) SlotRef { return SlotRef{kind: refPending, id: tempID} }

// IsPending reports whether the slot has not been committed yet.
func (r SlotRef) IsPending() bool { return r.kind == refPending }

// IsPersisted reports whether the slot exists on the server.
func (r SlotRef) IsPersisted() bool { return r.kind == refPersisted }

// ID returns the persisted id or the temporary id, depending on the kind.
func (r SlotRef) ID() int64 { return r.id }

func (r SlotRef) String() string {
	switch r.kind {
	case refPersisted:
		return fmt.Sprintf("slot:%d", r.id)
	case refPending:
		return fmt.Sprintf("pending:%d", r.id)
	}
	return "slot:none"
}

// ColorSnapshot carries the color attributes a session needs for rendering
// and local validation. An empty Category skips the category check.
type ColorSnapshot struct {
	ID         int64           `json:"id"`
	BrandID    int64           `json:"brand_id"`
	BrandName  string          `json:"brand_name"`
	Category   domain.Category `json:"category"`
	Name       string          `json:"name"`
	VendorCode string          `json:"vendor_code"`
	Hex        string          `json:"hex"`
}

// Entry is one slot in a session state.
type Entry struct {
	Ref   SlotRef       `json:"-"`
	Color ColorSnapshot `json:"color"`
}

// State is the background slot plus the ordered thread slots.
type State struct {
	Background *Entry  `json:"background,omitempty"`
	Threads    []Entry `json:"threads"`
}

func (s State) clone() State {
	out := State{Threads: slices.Clone(s.Threads)}
	if s.Background != nil {
		bg := *s.Background
		out.Background = &bg
	}
	return out
}

// Equal reports deep equality of two states.
func (s State) Equal(other State) bool {
	if (s.Background == nil) != (other.Background == nil) {
		return false
	}
	if s.Background != nil && *s.Background != *other.Background {
		return false
	}
	return slices.Equal(s.Threads, other.Threads)
}

func (s State) threadIndex(ref SlotRef) int {
	return slices.IndexFunc(s.Threads, func(e Entry) bool { return e.Ref == ref })
}

// usesColor reports whether colorID occupies any slot other than skip.
func (s State) usesColor(colorID int64, skip SlotRef) bool {
	if s.Background != nil && s.Background.Ref != skip && s.Background.Color.ID == colorID {
		return true
	}
	for _, e := range s.Threads {
		if e.Ref != skip && e.Color.ID == colorID {
			return true
		}
	}
	return false
}
