package matcher

import (
	"context"
	"errors"
	"fmt"
	"math"
	"palettecore/internal/catalog"
	"palettecore/internal/colorspace"
	"palettecore/pkg/domain"
	"sync"
	"testing"
)

func f(v float64) *float64 { return &v }

func fam(v domain.ColorFamily) *domain.ColorFamily { return &v }

// sliceSource serves an in-memory color list through catalog.Apply and counts lookups.
type sliceSource struct {
	mu      sync.Mutex
	colors  []domain.Color
	lookups []catalog.Query
	err     error
}

func (s *sliceSource) Lookup(_ context.Context, q catalog.Query) ([]domain.Color, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups = append(s.lookups, q)
	if s.err != nil {
		return nil, s.err
	}
	return catalog.Apply(s.colors, q, catalog.ByFamilyHueLightness), nil
}

func (s *sliceSource) Candidates(ctx context.Context, family string) ([]domain.Color, error) {
	return catalog.Apply(s.colors, catalog.Query{Family: family}, nil), nil
}

type recordingObserver struct {
	source     string
	tolerance  float64
	iterations int
	count      int
	calls      int
}

func (r *recordingObserver) ObserveTolerance(source string, tolerance float64, iterations, count int) {
	r.source, r.tolerance, r.iterations, r.count = source, tolerance, iterations, count
	r.calls++
}

// catalogOf builds 100 colors: 92 reds spread over lightness and 8 blues,
// only two of which sit within the base tolerance of slider 50.
func catalogOf() []domain.Color {
	var colors []domain.Color
	id := int64(1)
	for i := 0; i < 92; i++ {
		l := 0.20 + 0.75*float64(i)/91
		colors = append(colors, domain.Color{Base: domain.Base{ID: id}, Family: fam(domain.FamilyRed), OklchL: f(l), OklchC: f(0.1)})
		id++
	}
	// Slider 50 is L=0.575. Base 15% tolerance is +/-0.1125.
	for _, l := range []float64{0.56, 0.60, 0.72, 0.74, 0.78, 0.80, 0.84, 0.93} {
		colors = append(colors, domain.Color{Base: domain.Base{ID: id}, Family: fam(domain.FamilyBlue), OklchL: f(l), OklchC: f(0.1)})
		id++
	}
	return colors
}

func TestAdaptiveMatchExpandsWithoutDroppingFamily(t *testing.T) {
	src := &sliceSource{colors: catalogOf()}
	if len(src.colors) != 100 {
		t.Fatalf("fixture should hold 100 colors, got %d", len(src.colors))
	}
	obs := &recordingObserver{}
	m := New(src, Filter{Family: "Blue", Lightness: f(50), Adaptive: true}, DefaultAdditivePolicy(), WithObserver(obs))
	ctx := context.Background()

	out, err := m.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// 15%: 0.56,0.60. 25% (+/-0.1875, up to 0.7625): +0.72,0.74 = 4. 35% (up to 0.8375): +0.78,0.80 = 6.
	if out.EffectiveTolerance != 35 || out.Iterations != 3 || len(out.Colors) != 6 {
		t.Fatalf("unexpected outcome tol=%v iter=%d n=%d", out.EffectiveTolerance, out.Iterations, len(out.Colors))
	}
	for _, c := range out.Colors {
		if !c.HasFamily(domain.FamilyBlue) {
			t.Fatalf("family filter dropped while expanding: %+v", c)
		}
	}
	for _, q := range src.lookups {
		if q.Family != "Blue" {
			t.Fatalf("lookup lost family: %+v", q)
		}
	}
	count, _ := m.Count(ctx)
	tol, _ := m.EffectiveTolerance(ctx)
	page, _ := m.MatchingColors(ctx, 4)
	if count != 6 || tol != 35 || len(page) != 4 || page[0].ID != out.Colors[0].ID {
		t.Fatalf("accessors disagree: count=%d tol=%v page=%d", count, tol, len(page))
	}
	if len(src.lookups) != 3 {
		t.Fatalf("results must be memoized, saw %d lookups", len(src.lookups))
	}
	if obs.calls != 1 || obs.source != "catalog" || obs.tolerance != 35 || obs.iterations != 3 || obs.count != 6 {
		t.Fatalf("unexpected observation %+v", obs)
	}
}

func TestAdaptiveMatchStopsAtCeiling(t *testing.T) {
	src := &sliceSource{}
	m := New(src, Filter{Family: "Blue", Saturation: f(10), Adaptive: true}, nil, WithLabel("empty"))
	out, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// 15, 25, 35, 45, 50.
	if out.EffectiveTolerance != 50 || out.Iterations != 5 || len(out.Colors) != 0 {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if m.label != "empty" {
		t.Fatalf("label option not applied")
	}
}

func TestMultiplicativePolicyCapsMultiplier(t *testing.T) {
	src := &sliceSource{}
	m := New(src, Filter{Lightness: f(50), Adaptive: true}, DefaultMultiplicativePolicy())
	out, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// 1, 1.5, 2.25, 3.
	if out.EffectiveTolerance != 3 || out.Iterations != 4 {
		t.Fatalf("unexpected outcome %+v", out)
	}
	last := src.lookups[len(src.lookups)-1]
	center := colorspace.SliderToCoordinate(50, colorspace.Lightness)
	if math.Abs(last.Lightness.Low-(center-0.36)) > 1e-9 || math.Abs(last.Lightness.High-(center+0.36)) > 1e-9 {
		t.Fatalf("unexpected widest range %s", last.Lightness)
	}
}

func TestSingleLookupWhenNotAdaptiveOrNoNumericFilter(t *testing.T) {
	cases := []Filter{
		{Family: "Blue"},
		{Family: "Blue", Adaptive: true},
		{Family: "Blue", Lightness: f(50)},
		{Lightness: f(50), Adaptive: true, FixedLightness: &colorspace.Range{Low: 0.2, High: 0.45, HighOpen: true}},
	}
	for i, filter := range cases {
		src := &sliceSource{colors: catalogOf()}
		out, err := New(src, filter, nil).Run(context.Background())
		if err != nil {
			t.Fatalf("case %d: %v", i, err)
		}
		if len(src.lookups) != 1 || out.Iterations != 1 || out.EffectiveTolerance != 15 {
			t.Fatalf("case %d: expected one base lookup, got %d lookups %+v", i, len(src.lookups), out)
		}
	}
}

func TestFixedLightnessUsedWhenNoSliderValue(t *testing.T) {
	src := &sliceSource{colors: catalogOf()}
	dark, _ := colorspace.CategoryRange(colorspace.LightnessDark)
	m := New(src, Filter{Family: "Blue", FixedLightness: &dark}, nil)
	if n, _ := m.Count(context.Background()); n != 0 {
		t.Fatalf("no dark blues expected, got %d", n)
	}
	if got := src.lookups[0].Lightness; got == nil || *got != dark {
		t.Fatalf("expected fixed range in query, got %v", got)
	}
	src = &sliceSource{colors: catalogOf()}
	m = New(src, Filter{Lightness: f(0), FixedLightness: &dark}, nil)
	_, _ = m.Run(context.Background())
	if *src.lookups[0].Lightness == dark {
		t.Fatalf("numeric lightness must take precedence over the fixed range")
	}
}

func TestUnknownFamilyYieldsEmptyResult(t *testing.T) {
	src := &sliceSource{colors: catalogOf()}
	m := New(src, Filter{Family: "Chartreuse", Lightness: f(50), Adaptive: true}, nil)
	n, err := m.Count(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("expected empty result, got %d %v", n, err)
	}
	dist, err := m.Distribution(context.Background())
	if err != nil {
		t.Fatalf("Distribution: %v", err)
	}
	for i := range dist.Lightness {
		if dist.Lightness[i] != 0 || dist.Saturation[i] != 0 {
			t.Fatalf("expected zero distribution, got %+v", dist)
		}
	}
}

func TestLookupErrorsPropagate(t *testing.T) {
	boom := errors.New("boom")
	m := New(&sliceSource{err: boom}, Filter{Lightness: f(10), Adaptive: true}, nil)
	if _, err := m.Result(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected lookup error, got %v", err)
	}
	if _, err := m.MatchingColors(context.Background(), 3); !errors.Is(err, boom) {
		t.Fatalf("expected memoized error, got %v", err)
	}
}

func TestDistributionUniform(t *testing.T) {
	for _, n := range []int{0, 10, 100, 137} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			var colors []domain.Color
			for i := 0; i < n; i++ {
				slider := (float64(i) + 0.5) * 100 / float64(n)
				colors = append(colors, domain.Color{
					Base:   domain.Base{ID: int64(i + 1)},
					OklchL: f(colorspace.SliderToCoordinate(slider, colorspace.Lightness)),
					OklchC: f(colorspace.SliderToCoordinate(slider, colorspace.Chroma)),
				})
			}
			dist := ComputeDistribution(colors)
			if len(dist.Lightness) != colorspace.DefaultBuckets || len(dist.Saturation) != colorspace.DefaultBuckets {
				t.Fatalf("expected %d buckets", colorspace.DefaultBuckets)
			}
			maxSeen := 0.0
			for _, v := range dist.Lightness {
				if v > 1 {
					t.Fatalf("normalized value above 1: %v", dist.Lightness)
				}
				maxSeen = math.Max(maxSeen, v)
			}
			if n == 0 && maxSeen != 0 {
				t.Fatalf("empty source must be all zeros")
			}
			if n > 0 && maxSeen != 1 {
				t.Fatalf("expected a full bucket, got %v", dist.Lightness)
			}
		})
	}
}

func TestDistributionBucketCounts(t *testing.T) {
	var colors []domain.Color
	for i := 0; i < 100; i++ {
		slider := float64(i) + 0.5
		colors = append(colors, domain.Color{OklchL: f(colorspace.SliderToCoordinate(slider, colorspace.Lightness))})
	}
	counts := make([]int, colorspace.DefaultBuckets)
	for _, c := range colors {
		counts[colorspace.CoordinateToBucket(*c.OklchL, colorspace.Lightness, colorspace.DefaultBuckets)]++
	}
	for i, n := range counts {
		if n < 9 || n > 11 {
			t.Fatalf("bucket %d holds %d colors, want 10+/-1", i, n)
		}
	}
	dist := ComputeDistribution(colors)
	for _, v := range dist.Saturation {
		if v != 0 {
			t.Fatalf("colors without chroma must be skipped, got %v", dist.Saturation)
		}
	}
}

func TestDistributionIgnoresNumericFiltersAndExclusions(t *testing.T) {
	src := &sliceSource{colors: catalogOf()}
	m := New(src, Filter{Family: "Blue", Lightness: f(0), Exclude: []int64{93, 94}}, nil)
	dist, err := m.Distribution(context.Background())
	if err != nil {
		t.Fatalf("Distribution: %v", err)
	}
	again, _ := m.Distribution(context.Background())
	if &dist.Lightness[0] != &again.Lightness[0] {
		t.Fatalf("distribution must be memoized")
	}
	total := 0.0
	for _, v := range dist.Lightness {
		total += v
	}
	if total == 0 {
		t.Fatalf("expected blue candidates to populate the histogram")
	}
}

func TestPage(t *testing.T) {
	colors := []domain.Color{{Base: domain.Base{ID: 1}}, {Base: domain.Base{ID: 2}}, {Base: domain.Base{ID: 3}}}
	if got := Page(colors, 2); len(got) != 2 {
		t.Fatalf("expected 2, got %d", len(got))
	}
	if got := Page(colors, 0); len(got) != 3 {
		t.Fatalf("expected all, got %d", len(got))
	}
	got := Page(colors, 10)
	got[0].ID = 99
	if colors[0].ID != 1 {
		t.Fatalf("page must copy")
	}
}

func TestConcurrentAccessorsShareOneRun(t *testing.T) {
	src := &sliceSource{colors: catalogOf()}
	m := New(src, Filter{Family: "Blue", Lightness: f(50), Adaptive: true}, nil)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.Count(context.Background())
		}()
	}
	wg.Wait()
	if len(src.lookups) != 3 {
		t.Fatalf("expected a single adaptive run, saw %d lookups", len(src.lookups))
	}
}
