// Package core exposes the transactional palette, slot and stash operations
// on top of a domain.PersistentStore.
package core

import (
	"context"
	"palettecore/internal/infra/persistence/memory"
	"palettecore/pkg/domain"
	"time"
)

// Operation names used for logging, metrics, tracing and audit.
const (
	opCreateBrand          = "create_brand"
	opCreateColor          = "create_color"
	opCreatePalette        = "create_palette"
	opUpdatePaletteDetails = "update_palette_details"
	opDeletePalette        = "delete_palette"
	opGetPalette           = "get_palette"
	opListPalettes         = "list_palettes"
	opPublishPalette       = "publish_palette"
	opMissingRequirements  = "missing_requirements"
	opCleanupEmptyPalettes = "cleanup_empty_palettes"
	opApplyPaletteChanges  = "apply_palette_changes"
	opCreateSlot           = "create_slot"
	opReplaceSlotColor     = "replace_slot_color"
	opDestroySlot          = "destroy_slot"
	opCapacityStatus       = "capacity_status"
	opListRoles            = "list_roles"
	opAddStashItem         = "add_stash_item"
	opSetStashOwnership    = "set_stash_ownership"
	opToggleStashFavorite  = "toggle_stash_favorite"
	opRemoveStashItem      = "remove_stash_item"
)

// Service exposes higher-level transactional operations for palettes, slots
// and stash items.
type Service struct {
	store   domain.PersistentStore
	roles   domain.RoleSet
	clock   Clock
	logger  Logger
	audit   AuditRecorder
	metrics MetricsRecorder
	tracer  Tracer
}

// Option customises a Service.
type Option func(*serviceOptions)

type serviceOptions struct {
	roles   domain.RoleSet
	clock   Clock
	logger  Logger
	audit   AuditRecorder
	metrics MetricsRecorder
	tracer  Tracer
}

func defaultServiceOptions() serviceOptions {
	return serviceOptions{
		roles:   domain.DefaultRoles(),
		clock:   ClockFunc(func() time.Time { return time.Now().UTC() }),
		logger:  noopLogger{},
		audit:   noopAudit{},
		metrics: noopMetrics{},
		tracer:  noopTracer{},
	}
}

// WithRoles replaces the default background plus thread role set.
func WithRoles(roles domain.RoleSet) Option {
	return func(o *serviceOptions) {
		if len(roles) > 0 {
			o.roles = roles
		}
	}
}

// WithClock overrides the clock used for audit timestamps.
func WithClock(clock Clock) Option {
	return func(o *serviceOptions) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger Logger) Option {
	return func(o *serviceOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithAuditRecorder attaches an audit sink for mutating operations.
func WithAuditRecorder(audit AuditRecorder) Option {
	return func(o *serviceOptions) {
		if audit != nil {
			o.audit = audit
		}
	}
}

// WithMetricsRecorder attaches an operation metrics sink.
func WithMetricsRecorder(metrics MetricsRecorder) Option {
	return func(o *serviceOptions) {
		if metrics != nil {
			o.metrics = metrics
		}
	}
}

// WithTracer attaches a span tracer.
func WithTracer(tracer Tracer) Option {
	return func(o *serviceOptions) {
		if tracer != nil {
			o.tracer = tracer
		}
	}
}

func applyOptions(opts []Option) serviceOptions {
	options := defaultServiceOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	return options
}

// NewService constructs a service backed by the supplied store.
func NewService(store domain.PersistentStore, opts ...Option) *Service {
	return newService(store, applyOptions(opts))
}

// NewInMemoryService creates a service and in-memory store. A nil engine
// selects the default slot rules for the configured role set.
func NewInMemoryService(engine *domain.RulesEngine, opts ...Option) *Service {
	options := applyOptions(opts)
	if engine == nil {
		engine = NewDefaultRulesEngine(options.roles)
	}
	return newService(memory.NewStore(engine), options)
}

func newService(store domain.PersistentStore, options serviceOptions) *Service {
	return &Service{
		store:   store,
		roles:   options.roles,
		clock:   options.clock,
		logger:  options.logger,
		audit:   options.audit,
		metrics: options.metrics,
		tracer:  options.tracer,
	}
}

// Store returns the underlying storage implementation.
func (s *Service) Store() domain.PersistentStore {
	return s.store
}

// Roles returns the role set the service validates slots against.
func (s *Service) Roles() domain.RoleSet {
	out := make(domain.RoleSet, len(s.roles))
	copy(out, s.roles)
	return out
}

// run executes fn in one store transaction. fn returns the id of the entity
// it touched for audit purposes.
func (s *Service) run(ctx context.Context, operation string, fn func(domain.Transaction) (int64, error)) (domain.Result, error) {
	ctx, span := s.tracer.Start(ctx, operation)
	start := time.Now()
	var entityID int64
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		id, err := fn(tx)
		entityID = id
		return err
	})
	duration := time.Since(start)
	s.metrics.Observe(ctx, operation, err == nil, duration)
	s.recordAudit(ctx, operation, entityID, duration, err)
	span.End(err)
	if err != nil {
		s.logger.Error("operation failed", "operation", operation, "entity_id", entityID, "error", err)
		return res, err
	}
	for _, v := range res.Violations {
		s.logger.Warn("rule violation", "operation", operation, "rule", v.Rule, "severity", v.Severity, "message", v.Message)
	}
	s.logger.Debug("operation completed", "operation", operation, "entity_id", entityID, "duration", duration)
	return res, nil
}

// view executes a read-only fn with tracing and metrics.
func (s *Service) view(ctx context.Context, operation string, fn func(domain.TransactionView) error) error {
	ctx, span := s.tracer.Start(ctx, operation)
	start := time.Now()
	err := s.store.View(ctx, fn)
	s.metrics.Observe(ctx, operation, err == nil, time.Since(start))
	span.End(err)
	if err != nil {
		s.logger.Debug("read failed", "operation", operation, "error", err)
	}
	return err
}

func (s *Service) roleSpec(role domain.Role) (domain.RoleSpec, error) {
	spec, ok := s.roles.Lookup(role)
	if !ok {
		return domain.RoleSpec{}, &domain.NotFoundError{Entity: domain.EntityRole, ID: string(role)}
	}
	return spec, nil
}

// colorCategory resolves a color and its brand's category.
func colorCategory(view domain.RuleView, colorID int64) (domain.Color, domain.Category, error) {
	color, ok := view.FindColor(colorID)
	if !ok {
		return domain.Color{}, "", domain.NewNotFound(domain.EntityColor, colorID)
	}
	brand, ok := view.FindBrand(color.BrandID)
	if !ok {
		return domain.Color{}, "", domain.NewNotFound(domain.EntityBrand, color.BrandID)
	}
	return color, brand.Category, nil
}
