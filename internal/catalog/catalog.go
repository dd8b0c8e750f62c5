package catalog

import (
	"cmp"
	"context"
	"palettecore/pkg/domain"
	"slices"
	"strconv"
	"strings"
)

// Catalog answers read-only questions about brands and their colors.
type Catalog struct {
	store domain.PersistentStore
}

// New returns a catalog backed by store.
func New(store domain.PersistentStore) *Catalog {
	return &Catalog{store: store}
}

// FamilyCount reports how many colors carry a family.
type FamilyCount struct {
	Family domain.ColorFamily `json:"family"`
	Count  int                `json:"count"`
}

// Brand returns the brand with id.
func (c *Catalog) Brand(id int64) (domain.Brand, error) {
	brand, ok := c.store.GetBrand(id)
	if !ok {
		return domain.Brand{}, domain.NewNotFound(domain.EntityBrand, id)
	}
	return brand, nil
}

// ResolveBrand finds a brand by numeric id, slug or case-insensitive name.
func (c *Catalog) ResolveBrand(ref string) (domain.Brand, error) {
	ref = strings.TrimSpace(ref)
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return c.Brand(id)
	}
	slug := domain.Slugify(ref)
	for _, brand := range c.store.ListBrands() {
		if brand.Slug == slug || strings.EqualFold(brand.Name, ref) {
			return brand, nil
		}
	}
	return domain.Brand{}, &domain.NotFoundError{Entity: domain.EntityBrand, ID: ref}
}

// Brands lists brands ordered by name, optionally restricted to one category.
func (c *Catalog) Brands(category domain.Category) []domain.Brand {
	var out []domain.Brand
	for _, brand := range c.store.ListBrands() {
		if category != "" && brand.Category != category {
			continue
		}
		out = append(out, brand)
	}
	slices.SortFunc(out, func(a, b domain.Brand) int {
		if n := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); n != 0 {
			return n
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// Colors returns the colors of a brand matching q, in catalog order.
func (c *Catalog) Colors(ctx context.Context, brandID int64, q Query) ([]domain.Color, error) {
	return c.ForBrand(brandID).Lookup(ctx, q)
}

// FamilyCounts counts a brand's colors per family in canonical family order.
// Families without colors are omitted.
func (c *Catalog) FamilyCounts(ctx context.Context, brandID int64) ([]FamilyCount, error) {
	colors, err := c.ForBrand(brandID).Lookup(ctx, Query{})
	if err != nil {
		return nil, err
	}
	return CountFamilies(colors), nil
}

// CountFamilies tallies colors per family in canonical order, omitting empty families.
func CountFamilies(colors []domain.Color) []FamilyCount {
	counts := make(map[domain.ColorFamily]int)
	for _, color := range colors {
		if color.Family != nil {
			counts[*color.Family]++
		}
	}
	var out []FamilyCount
	for _, family := range domain.ColorFamilies() {
		if n := counts[family]; n > 0 {
			out = append(out, FamilyCount{Family: family, Count: n})
		}
	}
	return out
}

// ForBrand returns a lookup source scoped to one brand's colors.
func (c *Catalog) ForBrand(brandID int64) *BrandSource {
	return &BrandSource{store: c.store, brandID: brandID}
}

// BrandSource filters one brand's colors.
type BrandSource struct {
	store   domain.PersistentStore
	brandID int64
}

// Label identifies the source in telemetry.
func (s *BrandSource) Label() string { return "catalog" }

// Lookup returns brand colors matching q ordered by family, hue and lightness.
func (s *BrandSource) Lookup(ctx context.Context, q Query) ([]domain.Color, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var colors []domain.Color
	err := s.store.View(ctx, func(view domain.TransactionView) error {
		if _, ok := view.FindBrand(s.brandID); !ok {
			return domain.NewNotFound(domain.EntityBrand, s.brandID)
		}
		for _, color := range view.ListColors() {
			if color.BrandID == s.brandID {
				colors = append(colors, color)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return Apply(colors, q, ByFamilyHueLightness), nil
}

// Candidates returns brand colors filtered only by family.
func (s *BrandSource) Candidates(ctx context.Context, family string) ([]domain.Color, error) {
	return s.Lookup(ctx, Query{Family: family})
}
