// Package reconciler keeps a client-side working copy of a palette's slots,
// validates edits locally and commits the minimal diff in one batch.
//
// A Session is owned by one editor and is not safe for concurrent use.
package reconciler

import (
	"context"
	"fmt"
	"log/slog"
	"palettecore/pkg/domain"
	"slices"

	"github.com/google/uuid"
)

// Option configures a Session.
type Option func(*Session)

// WithRoles selects the role set providing the background and thread specs.
// Roles missing from the set keep their defaults.
func WithRoles(roles domain.RoleSet) Option {
	return func(s *Session) {
		if spec, ok := roles.Lookup(domain.RoleBackground); ok {
			s.background = spec
		}
		if spec, ok := roles.Lookup(domain.RoleThread); ok {
			s.thread = spec
		}
	}
}

// WithLogger attaches a logger; entries carry the session id.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Session is one editing session over a palette.
type Session struct {
	id         uuid.UUID
	paletteID  int64
	version    int64
	background domain.RoleSpec
	thread     domain.RoleSpec
	logger     *slog.Logger

	initial  State
	pending  State
	lastTemp int64
}

// NewSession starts a session from the last confirmed server state. Every
// entry of initial must reference a persisted slot.
func NewSession(paletteID, version int64, initial State, opts ...Option) (*Session, error) {
	defaults := domain.DefaultRoles()
	bg, _ := defaults.Lookup(domain.RoleBackground)
	th, _ := defaults.Lookup(domain.RoleThread)
	s := &Session{
		id:         uuid.New(),
		paletteID:  paletteID,
		version:    version,
		background: bg,
		thread:     th,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	if initial.Background != nil && !initial.Background.Ref.IsPersisted() {
		return nil, fmt.Errorf("%w: initial background must be persisted", domain.ErrInvalidInput)
	}
	for _, e := range initial.Threads {
		if !e.Ref.IsPersisted() {
			return nil, fmt.Errorf("%w: initial thread %s must be persisted", domain.ErrInvalidInput, e.Ref)
		}
	}
	s.initial = initial.clone()
	s.pending = initial.clone()
	s.logger = s.logger.With("session", s.id.String(), "palette_id", paletteID)
	return s, nil
}

// ID identifies the session in logs.
func (s *Session) ID() uuid.UUID { return s.id }

// PaletteID returns the palette being edited.
func (s *Session) PaletteID() int64 { return s.paletteID }

// Version returns the palette version the session is based on.
func (s *Session) Version() int64 { return s.version }

// Initial returns a copy of the last confirmed state.
func (s *Session) Initial() State { return s.initial.clone() }

// Pending returns a copy of the working state.
func (s *Session) Pending() State { return s.pending.clone() }

func (s *Session) nextTemp() SlotRef {
	s.lastTemp--
	return Pending(s.lastTemp)
}

func (s *Session) check(spec domain.RoleSpec, color ColorSnapshot, skip SlotRef) error {
	if s.pending.usesColor(color.ID, skip) {
		return &domain.SlotError{
			Kind:    domain.KindDuplicateColor,
			Role:    spec.Role,
			ColorID: color.ID,
			Message: fmt.Sprintf("%s is already in this palette", colorLabel(color)),
		}
	}
	if color.Category != "" && color.Category != spec.Category {
		return &domain.SlotError{
			Kind:    domain.KindCategoryMismatch,
			Role:    spec.Role,
			ColorID: color.ID,
			Message: fmt.Sprintf("%s needs a %s color, %s is %s", spec.Role, spec.Category, colorLabel(color), color.Category),
		}
	}
	return nil
}

func colorLabel(c ColorSnapshot) string {
	switch {
	case c.Name != "" && c.VendorCode != "":
		return fmt.Sprintf("%s %s", c.VendorCode, c.Name)
	case c.Name != "":
		return c.Name
	case c.VendorCode != "":
		return c.VendorCode
	}
	return fmt.Sprintf("color %d", c.ID)
}

// AddThread appends a thread color and returns its temporary reference.
func (s *Session) AddThread(color ColorSnapshot) (SlotRef, error) {
	if len(s.pending.Threads) >= s.thread.Max {
		return SlotRef{}, &domain.SlotError{
			Kind:    domain.KindCapacityExceeded,
			Role:    s.thread.Role,
			ColorID: color.ID,
			Message: fmt.Sprintf("a palette holds at most %d thread colors", s.thread.Max),
		}
	}
	if err := s.check(s.thread, color, SlotRef{}); err != nil {
		return SlotRef{}, err
	}
	ref := s.nextTemp()
	s.pending.Threads = append(s.pending.Threads, Entry{Ref: ref, Color: color})
	return ref, nil
}

// ReplaceThread swaps the color of a thread slot in place.
func (s *Session) ReplaceThread(ref SlotRef, color ColorSnapshot) error {
	i := s.pending.threadIndex(ref)
	if i < 0 {
		return &domain.NotFoundError{Entity: domain.EntityColorSlot, ID: ref.String()}
	}
	if err := s.check(s.thread, color, ref); err != nil {
		return err
	}
	s.pending.Threads[i].Color = color
	return nil
}

// RemoveThread drops a thread slot.
func (s *Session) RemoveThread(ref SlotRef) error {
	i := s.pending.threadIndex(ref)
	if i < 0 {
		return &domain.NotFoundError{Entity: domain.EntityColorSlot, ID: ref.String()}
	}
	s.pending.Threads = slices.Delete(s.pending.Threads, i, i+1)
	return nil
}

// SetBackground sets or replaces the background. Each call allocates a new
// temporary reference, so a replaced persisted background is committed as a
// deletion plus an addition.
func (s *Session) SetBackground(color ColorSnapshot) (SlotRef, error) {
	skip := SlotRef{}
	if s.pending.Background != nil {
		skip = s.pending.Background.Ref
	}
	if err := s.check(s.background, color, skip); err != nil {
		return SlotRef{}, err
	}
	ref := s.nextTemp()
	s.pending.Background = &Entry{Ref: ref, Color: color}
	return ref, nil
}

// RemoveBackground clears the background slot.
func (s *Session) RemoveBackground() error {
	if s.pending.Background == nil {
		return &domain.NotFoundError{Entity: domain.EntityColorSlot, ID: string(domain.RoleBackground)}
	}
	s.pending.Background = nil
	return nil
}

// HasUnsavedChanges reports whether pending differs from initial.
func (s *Session) HasUnsavedChanges() bool {
	return !s.initial.Equal(s.pending)
}

// Discard resets pending to the last confirmed state.
func (s *Session) Discard() {
	s.pending = s.initial.clone()
}

// CalculateChanges diffs pending against initial.
//
// Threads: pending entries are additions at their index, persisted entries
// whose color changed are updates, and initial entries missing from pending
// are deletions. Background: a new entry is an addition, a removed one a
// deletion, a pending entry replacing a persisted one is a deletion plus an
// addition, and a persisted entry with a different color is an update.
func (s *Session) CalculateChanges() domain.SlotChanges {
	changes := domain.SlotChanges{BaseVersion: s.version}

	initialThreads := make(map[SlotRef]Entry, len(s.initial.Threads))
	for _, e := range s.initial.Threads {
		initialThreads[e.Ref] = e
	}
	kept := make(map[SlotRef]struct{}, len(s.pending.Threads))
	for i, e := range s.pending.Threads {
		if e.Ref.IsPending() {
			position := i
			changes.Additions = append(changes.Additions, domain.SlotAddition{
				TempID:   e.Ref.ID(),
				ColorID:  e.Color.ID,
				Role:     s.thread.Role,
				Position: &position,
			})
			continue
		}
		kept[e.Ref] = struct{}{}
		if before, ok := initialThreads[e.Ref]; ok && before.Color.ID != e.Color.ID {
			changes.Updates = append(changes.Updates, domain.SlotUpdate{ID: e.Ref.ID(), ColorID: e.Color.ID})
		}
	}
	for _, e := range s.initial.Threads {
		if _, ok := kept[e.Ref]; !ok {
			changes.Deletions = append(changes.Deletions, e.Ref.ID())
		}
	}

	before, after := s.initial.Background, s.pending.Background
	switch {
	case before == nil && after != nil:
		changes.Additions = append(changes.Additions, s.backgroundAddition(*after))
	case before != nil && after == nil:
		changes.Deletions = append(changes.Deletions, before.Ref.ID())
	case before != nil && after != nil && after.Ref.IsPending():
		changes.Deletions = append(changes.Deletions, before.Ref.ID())
		changes.Additions = append(changes.Additions, s.backgroundAddition(*after))
	case before != nil && after != nil && after.Color.ID != before.Color.ID:
		changes.Updates = append(changes.Updates, domain.SlotUpdate{ID: after.Ref.ID(), ColorID: after.Color.ID})
	}
	return changes
}

func (s *Session) backgroundAddition(e Entry) domain.SlotAddition {
	position := 0
	return domain.SlotAddition{TempID: e.Ref.ID(), ColorID: e.Color.ID, Role: s.background.Role, Position: &position}
}

// Committer applies a batch of slot changes atomically. *core.Service
// satisfies it.
type Committer interface {
	ApplyPaletteChanges(ctx context.Context, paletteID int64, changes domain.SlotChanges) (domain.CommitReceipt, domain.Result, error)
}

// Commit sends the pending diff in one call. On success, temporary
// references are rebound to the assigned slot ids and initial becomes a copy
// of pending. On failure pending is unchanged and a *CommitError is returned.
func (s *Session) Commit(ctx context.Context, c Committer) (domain.CommitReceipt, error) {
	if !s.HasUnsavedChanges() {
		return domain.CommitReceipt{PaletteID: s.paletteID, Version: s.version}, nil
	}
	changes := s.CalculateChanges()
	receipt, _, err := c.ApplyPaletteChanges(ctx, s.paletteID, changes)
	if err != nil {
		cerr := newCommitError(err)
		s.logger.Warn("palette commit failed", "kind", cerr.Kind, "error", err)
		return domain.CommitReceipt{}, cerr
	}
	rebound, err := s.rebind(receipt.Assigned)
	if err != nil {
		s.logger.Error("palette commit receipt incomplete", "error", err)
		return receipt, &CommitError{Kind: KindInvalidReceipt, Message: "the palette was saved but could not be reloaded, please refresh", Err: err}
	}
	s.pending = rebound
	s.initial = rebound.clone()
	s.version = receipt.Version
	s.logger.Info("palette committed",
		"version", receipt.Version,
		"additions", len(changes.Additions),
		"updates", len(changes.Updates),
		"deletions", len(changes.Deletions))
	return receipt, nil
}

func (s *Session) rebind(assigned map[int64]int64) (State, error) {
	next := s.pending.clone()
	resolve := func(e *Entry) error {
		if !e.Ref.IsPending() {
			return nil
		}
		id, ok := assigned[e.Ref.ID()]
		if !ok || id <= 0 {
			return fmt.Errorf("no slot id assigned for %s", e.Ref)
		}
		e.Ref = Persisted(id)
		return nil
	}
	if next.Background != nil {
		if err := resolve(next.Background); err != nil {
			return State{}, err
		}
	}
	for i := range next.Threads {
		if err := resolve(&next.Threads[i]); err != nil {
			return State{}, err
		}
	}
	return next, nil
}
