// Package matcher finds catalog colors near requested perceptual values,
// widening its tolerance until enough colors match.
package matcher

import (
	"context"
	"math"
	"palettecore/internal/catalog"
	"palettecore/internal/colorspace"
	"palettecore/pkg/domain"
	"sync"
)

// Source yields colors for a query. Lookup results are filtered and ordered;
// Candidates ignores everything except the family.
type Source interface {
	Lookup(ctx context.Context, q catalog.Query) ([]domain.Color, error)
	Candidates(ctx context.Context, family string) ([]domain.Color, error)
}

// Filter is the user's request. Saturation and Lightness are slider values in
// [0,100]; nil means no constraint. FixedLightness, when set, replaces the
// lightness constraint with a fixed range and disables adaptivity.
type Filter struct {
	Family         string
	Saturation     *float64
	Lightness      *float64
	FixedLightness *colorspace.Range
	Exclude        []int64
	Adaptive       bool
}

func (f Filter) numericActive() bool {
	return f.Saturation != nil || f.Lightness != nil
}

// ToleranceObserver receives the outcome of each adaptive run.
type ToleranceObserver interface {
	ObserveTolerance(source string, tolerance float64, iterations, count int)
}

// Outcome is the memoized result of one matcher run.
type Outcome struct {
	Colors             []domain.Color
	EffectiveTolerance float64
	Iterations         int
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithObserver attaches a tolerance observer.
func WithObserver(obs ToleranceObserver) Option {
	return func(m *Matcher) { m.observer = obs }
}

// WithLabel names the source for telemetry.
func WithLabel(label string) Option {
	return func(m *Matcher) { m.label = label }
}

// Matcher runs one filter against one source. Results are computed once and
// shared by every accessor, so counts and pages always agree.
type Matcher struct {
	source   Source
	filter   Filter
	policy   Policy
	observer ToleranceObserver
	label    string

	once    sync.Once
	outcome Outcome
	err     error

	distOnce sync.Once
	dist     Distribution
	distErr  error
}

// New constructs a matcher. A nil policy selects DefaultAdditivePolicy.
func New(source Source, filter Filter, policy Policy, opts ...Option) *Matcher {
	if policy == nil {
		policy = DefaultAdditivePolicy()
	}
	m := &Matcher{source: source, filter: filter, policy: policy, label: "catalog"}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run executes the lookup on first use and returns the memoized outcome.
func (m *Matcher) Run(ctx context.Context) (Outcome, error) {
	m.once.Do(func() {
		m.outcome, m.err = m.run(ctx)
	})
	return m.outcome, m.err
}

func (m *Matcher) run(ctx context.Context) (Outcome, error) {
	tolerance := m.policy.Base()
	adaptive := m.filter.Adaptive && m.filter.numericActive() && m.filter.FixedLightness == nil
	if !adaptive {
		colors, err := m.source.Lookup(ctx, m.query(tolerance))
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Colors: colors, EffectiveTolerance: tolerance, Iterations: 1}, nil
	}
	iterations := 0
	for {
		iterations++
		colors, err := m.source.Lookup(ctx, m.query(tolerance))
		if err != nil {
			return Outcome{}, err
		}
		if len(colors) >= m.policy.MinResults() || m.policy.AtCeiling(tolerance) {
			if m.observer != nil {
				m.observer.ObserveTolerance(m.label, tolerance, iterations, len(colors))
			}
			return Outcome{Colors: colors, EffectiveTolerance: tolerance, Iterations: iterations}, nil
		}
		tolerance = m.policy.Next(tolerance)
	}
}

func (m *Matcher) query(tolerance float64) catalog.Query {
	q := catalog.Query{Family: m.filter.Family, Exclude: m.filter.Exclude}
	if m.filter.Saturation != nil {
		r := m.policy.Range(*m.filter.Saturation, tolerance, colorspace.DimensionSaturation)
		q.Chroma = &r
	}
	switch {
	case m.filter.Lightness != nil:
		r := m.policy.Range(*m.filter.Lightness, tolerance, colorspace.DimensionLightness)
		q.Lightness = &r
	case m.filter.FixedLightness != nil:
		r := *m.filter.FixedLightness
		q.Lightness = &r
	}
	return q
}

// Result returns every matching color.
func (m *Matcher) Result(ctx context.Context) ([]domain.Color, error) {
	out, err := m.Run(ctx)
	return out.Colors, err
}

// Count returns the number of matching colors.
func (m *Matcher) Count(ctx context.Context) (int, error) {
	out, err := m.Run(ctx)
	return len(out.Colors), err
}

// EffectiveTolerance returns the tolerance the final lookup used.
func (m *Matcher) EffectiveTolerance(ctx context.Context) (float64, error) {
	out, err := m.Run(ctx)
	return out.EffectiveTolerance, err
}

// Iterations returns how many lookups were performed.
func (m *Matcher) Iterations(ctx context.Context) (int, error) {
	out, err := m.Run(ctx)
	return out.Iterations, err
}

// MatchingColors returns at most limit colors from the result set. A
// non-positive limit returns everything.
func (m *Matcher) MatchingColors(ctx context.Context, limit int) ([]domain.Color, error) {
	out, err := m.Run(ctx)
	if err != nil {
		return nil, err
	}
	return Page(out.Colors, limit), nil
}

// Distribution returns the normalized histograms of the family-filtered
// candidates, ignoring numeric filters and exclusions.
func (m *Matcher) Distribution(ctx context.Context) (Distribution, error) {
	m.distOnce.Do(func() {
		var candidates []domain.Color
		candidates, m.distErr = m.source.Candidates(ctx, m.filter.Family)
		if m.distErr == nil {
			m.dist = ComputeDistribution(candidates)
		}
	})
	return m.dist, m.distErr
}

// Page truncates colors to limit, returning a copy.
func Page(colors []domain.Color, limit int) []domain.Color {
	if limit <= 0 || limit > len(colors) {
		limit = len(colors)
	}
	return append([]domain.Color(nil), colors[:limit]...)
}

// Distribution holds normalized per-bucket densities in [0,1] for each dimension.
type Distribution struct {
	Saturation []float64 `json:"saturation"`
	Lightness  []float64 `json:"lightness"`
}

// ComputeDistribution buckets colors per dimension, skipping colors missing
// that coordinate, and normalizes by the largest bucket rounded to 2 decimals.
func ComputeDistribution(colors []domain.Color) Distribution {
	sat := make([]int, colorspace.DefaultBuckets)
	light := make([]int, colorspace.DefaultBuckets)
	for _, c := range colors {
		if c.OklchC != nil {
			sat[colorspace.CoordinateToBucket(*c.OklchC, colorspace.Chroma, colorspace.DefaultBuckets)]++
		}
		if c.OklchL != nil {
			light[colorspace.CoordinateToBucket(*c.OklchL, colorspace.Lightness, colorspace.DefaultBuckets)]++
		}
	}
	return Distribution{Saturation: normalize(sat), Lightness: normalize(light)}
}

func normalize(buckets []int) []float64 {
	out := make([]float64, len(buckets))
	maxCount := 0
	for _, n := range buckets {
		if n > maxCount {
			maxCount = n
		}
	}
	if maxCount == 0 {
		return out
	}
	for i, n := range buckets {
		out[i] = math.Round(float64(n)/float64(maxCount)*100) / 100
	}
	return out
}
