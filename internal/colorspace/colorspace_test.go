package colorspace

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func approx(a, b float64) bool { return math.Abs(a-b) < epsilon }

func TestSliderRoundTrip(t *testing.T) {
	for _, d := range []Domain{Lightness, Chroma} {
		for v := 0; v <= 100; v++ {
			coord := SliderToCoordinate(float64(v), d)
			if coord < d.Min-epsilon || coord > d.Max+epsilon {
				t.Fatalf("slider %d mapped outside domain: %f", v, coord)
			}
			if got := CoordinateToSlider(coord, d); got != float64(v) {
				t.Fatalf("round trip %d -> %f -> %f", v, coord, got)
			}
		}
	}
}

func TestSliderEndpoints(t *testing.T) {
	if got := SliderToCoordinate(0, Lightness); !approx(got, 0.20) {
		t.Fatalf("expected 0.20, got %f", got)
	}
	if got := SliderToCoordinate(100, Lightness); !approx(got, 0.95) {
		t.Fatalf("expected 0.95, got %f", got)
	}
	if got := SliderToCoordinate(50, Chroma); !approx(got, 0.20) {
		t.Fatalf("expected 0.20 chroma, got %f", got)
	}
	if got := CoordinateToSlider(1.5, Lightness); got != 100 {
		t.Fatalf("expected clamp to 100, got %f", got)
	}
	if got := CoordinateToSlider(-1, Chroma); got != 0 {
		t.Fatalf("expected clamp to 0, got %f", got)
	}
}

func TestCoordinateToBucket(t *testing.T) {
	cases := []struct {
		coord float64
		want  int
	}{
		{0.0, 0},
		{0.035, 0},
		{0.04, 1},
		{0.20, 5},
		{0.39, 9},
		{0.40, 9},
		{0.90, 9},
		{-0.5, 0},
	}
	for _, tc := range cases {
		if got := CoordinateToBucket(tc.coord, Chroma, DefaultBuckets); got != tc.want {
			t.Fatalf("bucket(%f) = %d, want %d", tc.coord, got, tc.want)
		}
	}
	if got := CoordinateToBucket(0.40, Chroma, 0); got != 9 {
		t.Fatalf("zero bucket count should default to %d buckets, got index %d", DefaultBuckets, got)
	}
}

func TestToleranceRange(t *testing.T) {
	r := ToleranceRange(50, 15, Lightness)
	if !approx(r.Low, 0.4625) || !approx(r.High, 0.6875) {
		t.Fatalf("unexpected range %s", r)
	}
	edge := ToleranceRange(95, 15, Lightness)
	if !approx(edge.High, Lightness.Max) {
		t.Fatalf("expected high clamped to domain max, got %s", edge)
	}
	wide := ToleranceRange(50, 15, Chroma)
	wider := ToleranceRange(50, 25, Chroma)
	if wide.Covers(wider) {
		t.Fatalf("expected strict growth away from the edges: %s vs %s", wide, wider)
	}
	abs := AbsoluteRange(0.05, 0.06, Chroma)
	if !approx(abs.Low, 0) || !approx(abs.High, 0.11) {
		t.Fatalf("unexpected absolute range %s", abs)
	}
}

func TestToleranceRangeGrowsMonotonically(t *testing.T) {
	centers := []float64{0, 3, 10, 37.5, 50, 72, 90, 99, 100}
	tolerances := []float64{0, 5, 15, 25, 35, 45, 50, 100}
	for _, d := range []Domain{Lightness, Chroma} {
		for _, c := range centers {
			for i, t1 := range tolerances {
				narrow := ToleranceRange(c, t1, d)
				for _, t2 := range tolerances[i+1:] {
					wide := ToleranceRange(c, t2, d)
					if !wide.Covers(narrow) {
						t.Fatalf("center %g: tolerance %g gave %s, not covering %s at %g", c, t2, wide, narrow, t1)
					}
					if wide.Low < d.Min || wide.High > d.Max {
						t.Fatalf("range %s escapes domain %+v", wide, d)
					}
				}
			}
		}
	}
}

func TestLightnessCategoriesPartitionDomain(t *testing.T) {
	for i := 0; i < 750; i++ {
		l := Lightness.Min + float64(i)/1000
		hits := 0
		for _, c := range LightnessCategories() {
			r, _ := CategoryRange(c)
			if r.Contains(l) {
				hits++
			}
		}
		if hits != 1 {
			t.Fatalf("lightness %f matched %d categories", l, hits)
		}
	}
	if c, ok := ParseLightnessCategory(" Medium"); !ok || c != LightnessMedium {
		t.Fatalf("expected medium, got %q", c)
	}
	if _, ok := ParseLightnessCategory("pastel"); ok {
		t.Fatalf("unknown category parsed")
	}
	if got := CategorizeLightness(0.45); got != LightnessMedium {
		t.Fatalf("boundary 0.45 should be medium, got %s", got)
	}
	if got := CategorizeLightness(0.1); got != LightnessDark {
		t.Fatalf("below domain should be dark, got %s", got)
	}
	if got := CategorizeLightness(0.99); got != LightnessLight {
		t.Fatalf("above domain should be light, got %s", got)
	}
}
