package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"palettecore/internal/catalog"
	"palettecore/internal/config"
	"palettecore/internal/core"
	"palettecore/internal/infra/blob"
	"palettecore/pkg/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Metrics output formats for --metrics-format.
const (
	MetricsFormatJSON       = "json"
	MetricsFormatPrometheus = "prometheus"
)

// App holds the dependencies shared by every command.
type App struct {
	Config  config.Config
	Logger  *slog.Logger
	Store   domain.PersistentStore
	Service *core.Service
	Catalog *catalog.Catalog
	Metrics *core.ExpvarMetricsRecorder
	Out     io.Writer
	JSON    bool

	// Prometheus mirrors Metrics into registry for the prometheus text format.
	Prometheus *core.PrometheusRecorder
	// Tracer is set when spans are written, see NewApp.
	Tracer *core.JSONTraceTracer

	registry   *prometheus.Registry
	recorder   core.TeeRecorder

	openBlobs  func(context.Context) (blob.Store, error)
	closeStore func() error
}

// NewApp loads configuration from configPath and opens the configured store.
// A non-nil trace writer receives one JSON line per service operation.
func NewApp(ctx context.Context, configPath string, trace io.Writer) (*App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := config.NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		return nil, err
	}
	roles, err := cfg.RoleSet()
	if err != nil {
		return nil, err
	}
	opts, err := cfg.StorageOptions()
	if err != nil {
		return nil, err
	}
	store, closeStore, err := core.OpenPersistentStore(ctx, opts, core.NewDefaultRulesEngine(roles))
	if err != nil {
		return nil, err
	}
	logger.Debug("store opened", "driver", opts.Driver)
	app, err := newApp(cfg, logger, store, roles, trace)
	if err != nil {
		_ = closeStore()
		return nil, err
	}
	app.closeStore = closeStore
	return app, nil
}

func newApp(cfg config.Config, logger *slog.Logger, store domain.PersistentStore, roles domain.RoleSet, trace io.Writer) (*App, error) {
	registry := prometheus.NewRegistry()
	prom, err := core.NewPrometheusRecorder(registry)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	metrics := core.NewExpvarMetricsRecorder("")
	recorder := core.TeeRecorder{metrics, prom}
	opts := []core.Option{
		core.WithRoles(roles),
		core.WithLogger(logger),
		core.WithMetricsRecorder(recorder),
	}
	var tracer *core.JSONTraceTracer
	if trace != nil {
		tracer = core.NewJSONTracer(trace)
		opts = append(opts, core.WithTracer(tracer))
	}
	return &App{
		Config:     cfg,
		Logger:     logger,
		Store:      store,
		Service:    core.NewService(store, opts...),
		Catalog:    catalog.New(store),
		Metrics:    metrics,
		Out:        os.Stdout,
		Prometheus: prom,
		Tracer:     tracer,
		registry:   registry,
		recorder:   recorder,
		openBlobs:  func(ctx context.Context) (blob.Store, error) { return blob.Open(ctx, cfg.Blob) },
		closeStore: func() error { return nil },
	}, nil
}

// Close releases the store.
func (a *App) Close() error {
	return a.closeStore()
}

func (a *App) pageSize(limit int) int {
	if limit > 0 {
		return limit
	}
	return a.Config.PageSize
}

func (a *App) printJSON(v any) error {
	enc := json.NewEncoder(a.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeMetrics dumps the recorded operation and tolerance aggregates as the
// expvar JSON snapshot or in the prometheus text format.
func (a *App) writeMetrics(w io.Writer, format string) error {
	switch format {
	case "", MetricsFormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(a.Metrics.Snapshot())
	case MetricsFormatPrometheus:
		families, err := a.registry.Gather()
		if err != nil {
			return fmt.Errorf("gather metrics: %w", err)
		}
		for _, mf := range families {
			if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("%w: unknown metrics format %q", domain.ErrInvalidInput, format)
}

func validMetricsFormat(format string) error {
	switch format {
	case "", MetricsFormatJSON, MetricsFormatPrometheus:
		return nil
	}
	return fmt.Errorf("%w: --metrics-format must be %s or %s, got %q",
		domain.ErrInvalidInput, MetricsFormatJSON, MetricsFormatPrometheus, format)
}

// Fatal prints an error and exits.
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "%s %v\n", StyleError.Render(IconError), err)
	os.Exit(1)
}
