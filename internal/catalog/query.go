// Package catalog filters and orders manufacturer colors and answers
// brand-scoped catalog questions over a persistent store.
package catalog

import (
	"cmp"
	"palettecore/internal/colorspace"
	"palettecore/pkg/domain"
	"slices"
)

// Query selects colors by family, perceptual ranges and exclusions.
// Family holds the raw requested name; a name that is not one of the fixed
// families matches nothing. A nil range applies no constraint, while an
// active range excludes colors missing that coordinate.
type Query struct {
	Family    string
	Lightness *colorspace.Range
	Chroma    *colorspace.Range
	Exclude   []int64
}

// Matcher compiles the query into a predicate.
func (q Query) Matcher() func(domain.Color) bool {
	var family *domain.ColorFamily
	none := false
	if q.Family != "" {
		if f, ok := domain.ParseColorFamily(q.Family); ok {
			family = &f
		} else {
			none = true
		}
	}
	excluded := make(map[int64]struct{}, len(q.Exclude))
	for _, id := range q.Exclude {
		excluded[id] = struct{}{}
	}
	return func(c domain.Color) bool {
		if none {
			return false
		}
		if _, skip := excluded[c.ID]; skip {
			return false
		}
		if family != nil && !c.HasFamily(*family) {
			return false
		}
		if q.Lightness != nil && (c.OklchL == nil || !q.Lightness.Contains(*c.OklchL)) {
			return false
		}
		if q.Chroma != nil && (c.OklchC == nil || !q.Chroma.Contains(*c.OklchC)) {
			return false
		}
		return true
	}
}

// Ordering compares two colors for result ordering.
type Ordering func(a, b domain.Color) int

// ByFamilyHueLightness orders by family, hue, lightness then ID. Missing
// values sort last.
func ByFamilyHueLightness(a, b domain.Color) int {
	if c := compareFamily(a.Family, b.Family); c != 0 {
		return c
	}
	if c := compareOptional(a.OklchH, b.OklchH); c != 0 {
		return c
	}
	if c := compareOptional(a.OklchL, b.OklchL); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// ByFamilyLightness orders by family, lightness then ID. Used for stash results.
func ByFamilyLightness(a, b domain.Color) int {
	if c := compareFamily(a.Family, b.Family); c != 0 {
		return c
	}
	if c := compareOptional(a.OklchL, b.OklchL); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// Apply filters colors with q and sorts the survivors with order.
func Apply(colors []domain.Color, q Query, order Ordering) []domain.Color {
	match := q.Matcher()
	out := make([]domain.Color, 0, len(colors))
	for _, c := range colors {
		if match(c) {
			out = append(out, c)
		}
	}
	if order == nil {
		order = ByFamilyHueLightness
	}
	slices.SortStableFunc(out, order)
	return out
}

// Family name order follows the stored value, matching a SQL ORDER BY on the column.
func compareFamily(a, b *domain.ColorFamily) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return cmp.Compare(*a, *b)
}

func compareOptional(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return cmp.Compare(*a, *b)
}
