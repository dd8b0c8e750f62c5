// Package stash queries the colors in one owner's stash with the adaptive
// matcher and summarizes the stash per brand category.
package stash

import (
	"cmp"
	"context"
	"fmt"
	"palettecore/internal/catalog"
	"palettecore/internal/colorspace"
	"palettecore/internal/matcher"
	"palettecore/pkg/domain"
	"slices"
	"strings"
	"sync"
)

// DefaultLimit bounds Results when no explicit limit is given.
const DefaultLimit = 30

// Options scope and filter a stash query. Category defaults to fabric.
// LightnessCategory applies only when Lightness is nil.
type Options struct {
	OwnerID           int64
	Category          domain.Category
	Status            domain.OwnershipStatus
	Family            string
	Saturation        *float64
	Lightness         *float64
	LightnessCategory string
	Exclude           []int64
	Adaptive          bool
	Limit             int
}

type entry struct {
	item  domain.StashItem
	color domain.Color
	brand domain.Brand
}

// Source exposes one owner's in-scope stash colors as a matcher.Source.
type Source struct {
	store    domain.PersistentStore
	owner    int64
	category domain.Category
	status   domain.OwnershipStatus
}

// NewSource scopes store to owner's stash items whose brand has category and,
// when status is set, whose ownership status matches.
func NewSource(store domain.PersistentStore, owner int64, category domain.Category, status domain.OwnershipStatus) *Source {
	if category == "" {
		category = domain.CategoryFabric
	}
	return &Source{store: store, owner: owner, category: category, status: status}
}

// Label identifies the source in telemetry.
func (s *Source) Label() string { return "stash" }

func (s *Source) entries(ctx context.Context) ([]entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []entry
	err := s.store.View(ctx, func(view domain.TransactionView) error {
		for _, item := range view.ListStashItems() {
			if item.OwnerID != s.owner {
				continue
			}
			if s.status != domain.OwnershipUnset && item.Status != s.status {
				continue
			}
			color, ok := view.FindColor(item.ColorID)
			if !ok {
				continue
			}
			brand, ok := view.FindBrand(color.BrandID)
			if !ok || brand.Category != s.category {
				continue
			}
			out = append(out, entry{item: item, color: color, brand: brand})
		}
		return nil
	})
	return out, err
}

func (s *Source) colors(ctx context.Context) ([]domain.Color, error) {
	entries, err := s.entries(ctx)
	if err != nil {
		return nil, err
	}
	colors := make([]domain.Color, len(entries))
	for i, e := range entries {
		colors[i] = e.color
	}
	return colors, nil
}

// Lookup returns in-scope colors matching q ordered by family then lightness.
func (s *Source) Lookup(ctx context.Context, q catalog.Query) ([]domain.Color, error) {
	colors, err := s.colors(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Apply(colors, q, catalog.ByFamilyLightness), nil
}

// Candidates returns in-scope colors filtered only by family.
func (s *Source) Candidates(ctx context.Context, family string) ([]domain.Color, error) {
	return s.Lookup(ctx, catalog.Query{Family: family})
}

// Query runs one filtered stash lookup. Accessors share one memoized result.
type Query struct {
	opts    Options
	source  *Source
	matcher *matcher.Matcher

	totalOnce sync.Once
	total     int
	totalErr  error
}

// NewQuery builds a stash query using the multiplicative tolerance policy.
// An unknown LightnessCategory is rejected with domain.ErrInvalidInput.
func NewQuery(store domain.PersistentStore, opts Options, mopts ...matcher.Option) (*Query, error) {
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	filter := matcher.Filter{
		Family:     opts.Family,
		Saturation: opts.Saturation,
		Lightness:  opts.Lightness,
		Exclude:    opts.Exclude,
		Adaptive:   opts.Adaptive,
	}
	if opts.LightnessCategory != "" && opts.Lightness == nil {
		category, ok := colorspace.ParseLightnessCategory(opts.LightnessCategory)
		if !ok {
			return nil, fmt.Errorf("%w: unknown lightness category %q", domain.ErrInvalidInput, opts.LightnessCategory)
		}
		r, _ := colorspace.CategoryRange(category)
		filter.FixedLightness = &r
	}
	source := NewSource(store, opts.OwnerID, opts.Category, opts.Status)
	mopts = append([]matcher.Option{matcher.WithLabel(source.Label())}, mopts...)
	return &Query{
		opts:    opts,
		source:  source,
		matcher: matcher.New(source, filter, matcher.DefaultMultiplicativePolicy(), mopts...),
	}, nil
}

// Results returns up to limit matches; a non-positive limit uses the query limit.
func (q *Query) Results(ctx context.Context, limit int) ([]domain.Color, error) {
	if limit <= 0 {
		limit = q.opts.Limit
	}
	return q.matcher.MatchingColors(ctx, limit)
}

// Count returns the total number of matches at the effective tolerance.
func (q *Query) Count(ctx context.Context) (int, error) { return q.matcher.Count(ctx) }

// EffectiveTolerance returns the tolerance multiplier the final lookup used.
func (q *Query) EffectiveTolerance(ctx context.Context) (float64, error) {
	return q.matcher.EffectiveTolerance(ctx)
}

// Distribution returns histograms over in-scope colors of the requested family.
func (q *Query) Distribution(ctx context.Context) (matcher.Distribution, error) {
	return q.matcher.Distribution(ctx)
}

// TotalStashCount counts in-scope stash items before any filter.
func (q *Query) TotalStashCount(ctx context.Context) (int, error) {
	q.totalOnce.Do(func() {
		var entries []entry
		entries, q.totalErr = q.source.entries(ctx)
		q.total = len(entries)
	})
	return q.total, q.totalErr
}

// Families counts in-scope colors per family in canonical order.
func (q *Query) Families(ctx context.Context) ([]catalog.FamilyCount, error) {
	colors, err := q.source.colors(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.CountFamilies(colors), nil
}

// BrandColors groups a family's stash colors under one brand.
type BrandColors struct {
	Brand  string         `json:"name"`
	Colors []domain.Color `json:"colors"`
}

// ColorsByBrand returns in-scope colors of family grouped by brand name,
// brands and colors each ordered by name.
func (q *Query) ColorsByBrand(ctx context.Context, family string) ([]BrandColors, error) {
	entries, err := q.source.entries(ctx)
	if err != nil {
		return nil, err
	}
	match := catalog.Query{Family: family}.Matcher()
	entries = slices.DeleteFunc(entries, func(e entry) bool { return !match(e.color) })
	slices.SortFunc(entries, func(a, b entry) int {
		if c := strings.Compare(a.brand.Name, b.brand.Name); c != 0 {
			return c
		}
		if c := strings.Compare(a.color.Name, b.color.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.color.ID, b.color.ID)
	})
	var out []BrandColors
	for _, e := range entries {
		if len(out) == 0 || out[len(out)-1].Brand != e.brand.Name {
			out = append(out, BrandColors{Brand: e.brand.Name})
		}
		last := &out[len(out)-1]
		last.Colors = append(last.Colors, e.color)
	}
	return out, nil
}
