package core

import (
	"context"
	"palettecore/pkg/domain"
	"time"
)

// Clock supplies timestamps for audit entries.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function into a Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// Logger is the structured logging surface used by the service.
// *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// AuditStatus captures whether an audited operation succeeded.
type AuditStatus string

// Audit statuses.
const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusError   AuditStatus = "error"
)

// AuditEntry describes one completed service operation.
type AuditEntry struct {
	Operation string
	Entity    domain.EntityType
	Action    domain.Action
	EntityID  int64
	Status    AuditStatus
	Error     string
	Duration  time.Duration
	Timestamp time.Time
}

// AuditRecorder receives an entry for every mutating service operation.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}

// MetricsRecorder observes operation outcomes and latencies.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// Tracer starts a span per service operation.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

// TraceSpan is ended once with the operation error, if any.
type TraceSpan interface {
	End(err error)
}

type noopAudit struct{}

func (noopAudit) Record(context.Context, AuditEntry) {}

type noopMetrics struct{}

func (noopMetrics) Observe(context.Context, string, bool, time.Duration) {}

type noopTracer struct{}

func (noopTracer) Start(ctx context.Context, _ string) (context.Context, TraceSpan) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End(error) {}

// operationMeta maps audited operation names to the entity and action they touch.
var operationMeta = map[string]struct {
	entity domain.EntityType
	action domain.Action
}{
	opCreateBrand:          {domain.EntityBrand, domain.ActionCreate},
	opCreateColor:          {domain.EntityColor, domain.ActionCreate},
	opCreatePalette:        {domain.EntityPalette, domain.ActionCreate},
	opUpdatePaletteDetails: {domain.EntityPalette, domain.ActionUpdate},
	opDeletePalette:        {domain.EntityPalette, domain.ActionDelete},
	opPublishPalette:       {domain.EntityPalette, domain.ActionUpdate},
	opCleanupEmptyPalettes: {domain.EntityPalette, domain.ActionDelete},
	opApplyPaletteChanges:  {domain.EntityPalette, domain.ActionUpdate},
	opCreateSlot:           {domain.EntityColorSlot, domain.ActionCreate},
	opReplaceSlotColor:     {domain.EntityColorSlot, domain.ActionUpdate},
	opDestroySlot:          {domain.EntityColorSlot, domain.ActionDelete},
	opAddStashItem:         {domain.EntityStashItem, domain.ActionCreate},
	opSetStashOwnership:    {domain.EntityStashItem, domain.ActionUpdate},
	opToggleStashFavorite:  {domain.EntityStashItem, domain.ActionUpdate},
	opRemoveStashItem:      {domain.EntityStashItem, domain.ActionDelete},
}

func (s *Service) recordAudit(ctx context.Context, operation string, entityID int64, duration time.Duration, err error) {
	meta, ok := operationMeta[operation]
	if !ok {
		return
	}
	entry := AuditEntry{
		Operation: operation,
		Entity:    meta.entity,
		Action:    meta.action,
		EntityID:  entityID,
		Status:    AuditStatusSuccess,
		Duration:  duration,
		Timestamp: s.clock.Now(),
	}
	if err != nil {
		entry.Status = AuditStatusError
		entry.Error = err.Error()
	}
	s.audit.Record(ctx, entry)
}
