// Package colorspace converts between 0-100 UI slider values and OKLCH
// coordinates, and derives filter ranges and histogram buckets from them.
package colorspace

import (
	"fmt"
	"math"
	"strings"
)

// Domain is the closed coordinate interval a slider spans.
type Domain struct {
	Min float64
	Max float64
}

// Width returns Max - Min.
func (d Domain) Width() float64 { return d.Max - d.Min }

// Fixed coordinate domains.
var (
	Lightness = Domain{Min: 0.20, Max: 0.95}
	Chroma    = Domain{Min: 0.0, Max: 0.40}
)

// DefaultBuckets is the number of histogram buckets per dimension.
const DefaultBuckets = 10

// Dimension names a filterable perceptual axis.
type Dimension string

// Supported dimensions. Saturation maps to OKLCH chroma.
const (
	DimensionLightness  Dimension = "lightness"
	DimensionSaturation Dimension = "saturation"
)

// Domain returns the coordinate domain for the dimension.
func (d Dimension) Domain() Domain {
	if d == DimensionSaturation {
		return Chroma
	}
	return Lightness
}

// Range is a coordinate interval. Low is always inclusive; High is inclusive
// unless HighOpen is set.
type Range struct {
	Low      float64
	High     float64
	HighOpen bool
}

// Contains reports whether v lies within the range.
func (r Range) Contains(v float64) bool {
	if v < r.Low {
		return false
	}
	if r.HighOpen {
		return v < r.High
	}
	return v <= r.High
}

// Covers reports whether r includes every value in other.
func (r Range) Covers(other Range) bool {
	if other.Low < r.Low {
		return false
	}
	if r.HighOpen && !other.HighOpen {
		return other.High < r.High
	}
	return other.High <= r.High
}

func (r Range) String() string {
	closing := "]"
	if r.HighOpen {
		closing = ")"
	}
	return fmt.Sprintf("[%.4f, %.4f%s", r.Low, r.High, closing)
}

// SliderToCoordinate maps a slider value in [0,100] onto d.
func SliderToCoordinate(value float64, d Domain) float64 {
	return d.Min + (value/100)*d.Width()
}

// CoordinateToSlider inverts SliderToCoordinate, rounding to the nearest
// integer slider step and clamping to [0,100].
func CoordinateToSlider(coordinate float64, d Domain) float64 {
	if d.Width() <= 0 {
		return 0
	}
	return clamp(math.Round((coordinate-d.Min)/d.Width()*100), 0, 100)
}

// CoordinateToBucket maps a coordinate onto one of n histogram buckets.
func CoordinateToBucket(coordinate float64, d Domain, n int) int {
	if n <= 0 {
		n = DefaultBuckets
	}
	slider := CoordinateToSlider(coordinate, d)
	idx := int(math.Floor(slider / (100 / float64(n))))
	if idx < 0 {
		return 0
	}
	if idx > n-1 {
		return n - 1
	}
	return idx
}

// ToleranceRange returns the range centered on a slider value whose half-width
// is percent of the domain width, clamped to the domain.
func ToleranceRange(center, percent float64, d Domain) Range {
	return AbsoluteRange(SliderToCoordinate(center, d), d.Width()*percent/100, d)
}

// AbsoluteRange returns [center-halfWidth, center+halfWidth] clamped to d,
// where center is already a coordinate.
func AbsoluteRange(center, halfWidth float64, d Domain) Range {
	return Range{
		Low:  math.Max(center-halfWidth, d.Min),
		High: math.Min(center+halfWidth, d.Max),
	}
}

// LightnessCategory is a named, fixed partition of the lightness domain.
type LightnessCategory string

// Lightness categories from darkest to lightest.
const (
	LightnessDark   LightnessCategory = "dark"
	LightnessMedium LightnessCategory = "medium"
	LightnessLight  LightnessCategory = "light"
)

var categoryRanges = []struct {
	category LightnessCategory
	r        Range
}{
	{LightnessDark, Range{Low: 0.20, High: 0.45, HighOpen: true}},
	{LightnessMedium, Range{Low: 0.45, High: 0.70, HighOpen: true}},
	{LightnessLight, Range{Low: 0.70, High: 0.95}},
}

// LightnessCategories lists the categories from darkest to lightest.
func LightnessCategories() []LightnessCategory {
	return []LightnessCategory{LightnessDark, LightnessMedium, LightnessLight}
}

// ParseLightnessCategory resolves a category name case-insensitively.
func ParseLightnessCategory(name string) (LightnessCategory, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, entry := range categoryRanges {
		if string(entry.category) == name {
			return entry.category, true
		}
	}
	return "", false
}

// CategoryRange returns the fixed range for c.
func CategoryRange(c LightnessCategory) (Range, bool) {
	for _, entry := range categoryRanges {
		if entry.category == c {
			return entry.r, true
		}
	}
	return Range{}, false
}

// CategorizeLightness returns the category containing l. Values outside the
// domain fall into the nearest end category.
func CategorizeLightness(l float64) LightnessCategory {
	for _, entry := range categoryRanges {
		if entry.r.Contains(l) {
			return entry.category
		}
	}
	if l < Lightness.Min {
		return LightnessDark
	}
	return LightnessLight
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
