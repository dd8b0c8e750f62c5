package matcher

import (
	"math"
	"palettecore/internal/colorspace"
)

// Policy governs how the tolerance starts, grows and converts into ranges.
type Policy interface {
	// Base is the tolerance of the first lookup.
	Base() float64
	// Next returns the grown tolerance, never beyond the ceiling.
	Next(tolerance float64) float64
	// AtCeiling reports whether tolerance cannot grow further.
	AtCeiling(tolerance float64) bool
	// MinResults is the result count that stops growth.
	MinResults() int
	// Range converts a slider center into a coordinate range for dim.
	Range(center, tolerance float64, dim colorspace.Dimension) colorspace.Range
}

// AdditivePolicy grows a percent-of-domain tolerance by a fixed step.
type AdditivePolicy struct {
	BaseTolerance float64
	Step          float64
	Ceiling       float64
	Minimum       int
}

// DefaultAdditivePolicy returns the brand catalog policy: 15%, +10%, up to 50%, 5 results.
func DefaultAdditivePolicy() AdditivePolicy {
	return AdditivePolicy{BaseTolerance: 15, Step: 10, Ceiling: 50, Minimum: 5}
}

// Base implements Policy.
func (p AdditivePolicy) Base() float64 { return p.BaseTolerance }

// Next implements Policy.
func (p AdditivePolicy) Next(t float64) float64 { return math.Min(t+p.Step, p.Ceiling) }

// AtCeiling implements Policy.
func (p AdditivePolicy) AtCeiling(t float64) bool { return t >= p.Ceiling || p.Step <= 0 }

// MinResults implements Policy.
func (p AdditivePolicy) MinResults() int { return p.Minimum }

// Range implements Policy.
func (p AdditivePolicy) Range(center, t float64, dim colorspace.Dimension) colorspace.Range {
	return colorspace.ToleranceRange(center, t, dim.Domain())
}

// MultiplicativePolicy scales absolute half-widths by a growing multiplier.
// The tolerance it reports is the multiplier.
type MultiplicativePolicy struct {
	ChromaHalfWidth    float64
	LightnessHalfWidth float64
	Factor             float64
	MaxMultiplier      float64
	Minimum            int
}

// DefaultMultiplicativePolicy returns the stash policy: chroma 0.06 and
// lightness 0.12, x1.5 per retry, capped at x3, 3 results.
func DefaultMultiplicativePolicy() MultiplicativePolicy {
	return MultiplicativePolicy{
		ChromaHalfWidth:    0.06,
		LightnessHalfWidth: 0.12,
		Factor:             1.5,
		MaxMultiplier:      3,
		Minimum:            3,
	}
}

// Base implements Policy.
func (p MultiplicativePolicy) Base() float64 { return 1 }

// Next implements Policy.
func (p MultiplicativePolicy) Next(m float64) float64 { return math.Min(m*p.Factor, p.MaxMultiplier) }

// AtCeiling implements Policy.
func (p MultiplicativePolicy) AtCeiling(m float64) bool { return m >= p.MaxMultiplier || p.Factor <= 1 }

// MinResults implements Policy.
func (p MultiplicativePolicy) MinResults() int { return p.Minimum }

// Range implements Policy.
func (p MultiplicativePolicy) Range(center, m float64, dim colorspace.Dimension) colorspace.Range {
	half := p.LightnessHalfWidth
	if dim == colorspace.DimensionSaturation {
		half = p.ChromaHalfWidth
	}
	d := dim.Domain()
	return colorspace.AbsoluteRange(colorspace.SliderToCoordinate(center, d), half*m, d)
}
