package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"palettecore/internal/infra/blob/core"
	"palettecore/pkg/domain"
	"slices"
	"strings"
)

// DocumentVersion is the catalog document format written by Export.
const DocumentVersion = 1

// Document is the interchange format for catalog import and export. Colors
// carry pre-converted OKLCH coordinates.
type Document struct {
	Version int             `json:"version"`
	Brands  []BrandDocument `json:"brands"`
}

// BrandDocument describes one brand and its colors.
type BrandDocument struct {
	Name     string          `json:"name"`
	Slug     string          `json:"slug,omitempty"`
	Category domain.Category `json:"category"`
	Colors   []ColorDocument `json:"colors"`
}

// ColorDocument describes one catalog color.
type ColorDocument struct {
	Name       string   `json:"name"`
	VendorCode string   `json:"vendor_code,omitempty"`
	Hex        string   `json:"hex,omitempty"`
	OklchL     *float64 `json:"oklch_l,omitempty"`
	OklchC     *float64 `json:"oklch_c,omitempty"`
	OklchH     *float64 `json:"oklch_h,omitempty"`
	Family     string   `json:"family,omitempty"`
}

// ImportReport summarizes an import.
type ImportReport struct {
	BrandsCreated int `json:"brands_created"`
	BrandsUpdated int `json:"brands_updated"`
	ColorsCreated int `json:"colors_created"`
	ColorsUpdated int `json:"colors_updated"`
}

// DecodeDocument parses a catalog document. Unknown fields are rejected.
func DecodeDocument(r io.Reader) (Document, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("decode catalog document: %w", err)
	}
	if doc.Version != 0 && doc.Version != DocumentVersion {
		return Document{}, fmt.Errorf("%w: unsupported catalog document version %d", domain.ErrInvalidInput, doc.Version)
	}
	return doc, nil
}

func (d ColorDocument) key() string {
	if d.VendorCode != "" {
		return "code:" + strings.ToLower(strings.TrimSpace(d.VendorCode))
	}
	return "name:" + strings.ToLower(strings.TrimSpace(d.Name))
}

func colorKey(c domain.Color) string {
	return ColorDocument{Name: c.Name, VendorCode: c.VendorCode}.key()
}

func (d ColorDocument) validate() (*domain.ColorFamily, error) {
	if d.OklchL != nil && (*d.OklchL < 0 || *d.OklchL > 1) {
		return nil, fmt.Errorf("%w: lightness %v outside [0,1]", domain.ErrInvalidInput, *d.OklchL)
	}
	if d.OklchC != nil && *d.OklchC < 0 {
		return nil, fmt.Errorf("%w: negative chroma %v", domain.ErrInvalidInput, *d.OklchC)
	}
	if d.OklchH != nil && (*d.OklchH < 0 || *d.OklchH >= 360) {
		return nil, fmt.Errorf("%w: hue %v outside [0,360)", domain.ErrInvalidInput, *d.OklchH)
	}
	if d.Family == "" {
		return nil, nil
	}
	family, ok := domain.ParseColorFamily(d.Family)
	if !ok {
		return nil, fmt.Errorf("%w: unknown color family %q", domain.ErrInvalidInput, d.Family)
	}
	return &family, nil
}

func (d ColorDocument) apply(c *domain.Color, family *domain.ColorFamily) {
	c.Name = d.Name
	c.VendorCode = d.VendorCode
	c.Hex = d.Hex
	c.OklchL = d.OklchL
	c.OklchC = d.OklchC
	c.OklchH = d.OklchH
	c.Family = family
}

// Import upserts every brand and color of doc in one transaction. Brands are
// matched by slug; colors within a brand by vendor code, or by name when the
// code is empty. Any invalid entry aborts the whole import.
func (c *Catalog) Import(ctx context.Context, doc Document) (ImportReport, error) {
	var report ImportReport
	_, err := c.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		report = ImportReport{}
		view := tx.Snapshot()
		bySlug := make(map[string]domain.Brand)
		for _, brand := range view.ListBrands() {
			bySlug[brand.Slug] = brand
		}
		for _, bd := range doc.Brands {
			slug := bd.Slug
			if slug == "" {
				slug = domain.Slugify(bd.Name)
			}
			brand, exists := bySlug[slug]
			var err error
			if exists {
				brand, err = tx.UpdateBrand(brand.ID, func(b *domain.Brand) error {
					b.Name = bd.Name
					b.Category = bd.Category
					return nil
				})
				report.BrandsUpdated++
			} else {
				brand, err = tx.CreateBrand(domain.Brand{Name: bd.Name, Slug: slug, Category: bd.Category})
				report.BrandsCreated++
			}
			if err != nil {
				return fmt.Errorf("brand %q: %w", bd.Name, err)
			}
			bySlug[slug] = brand
			if err := importColors(tx, brand, bd.Colors, &report); err != nil {
				return fmt.Errorf("brand %q: %w", bd.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return ImportReport{}, err
	}
	return report, nil
}

func importColors(tx domain.Transaction, brand domain.Brand, docs []ColorDocument, report *ImportReport) error {
	existing := make(map[string]int64)
	for _, color := range tx.Snapshot().ListColors() {
		if color.BrandID == brand.ID {
			existing[colorKey(color)] = color.ID
		}
	}
	for _, cd := range docs {
		family, err := cd.validate()
		if err != nil {
			return fmt.Errorf("color %q: %w", cd.Name, err)
		}
		if id, ok := existing[cd.key()]; ok {
			_, err = tx.UpdateColor(id, func(c *domain.Color) error {
				cd.apply(c, family)
				return nil
			})
			report.ColorsUpdated++
		} else {
			color := domain.Color{BrandID: brand.ID}
			cd.apply(&color, family)
			var created domain.Color
			created, err = tx.CreateColor(color)
			existing[cd.key()] = created.ID
			report.ColorsCreated++
		}
		if err != nil {
			return fmt.Errorf("color %q: %w", cd.Name, err)
		}
	}
	return nil
}

// ImportBlob reads a catalog document from blobs and imports it.
func (c *Catalog) ImportBlob(ctx context.Context, blobs core.Store, key string) (ImportReport, error) {
	_, rc, err := blobs.Get(ctx, key)
	if err != nil {
		return ImportReport{}, err
	}
	defer rc.Close()
	doc, err := DecodeDocument(rc)
	if err != nil {
		return ImportReport{}, fmt.Errorf("%s: %w", key, err)
	}
	return c.Import(ctx, doc)
}

// Export builds a document for the given brands, or every brand when none
// are named. Brands and colors follow catalog order.
func (c *Catalog) Export(ctx context.Context, brandIDs ...int64) (Document, error) {
	for _, id := range brandIDs {
		if _, err := c.Brand(id); err != nil {
			return Document{}, err
		}
	}
	brands := c.Brands("")
	if len(brandIDs) > 0 {
		brands = slices.DeleteFunc(brands, func(b domain.Brand) bool { return !slices.Contains(brandIDs, b.ID) })
	}
	doc := Document{Version: DocumentVersion, Brands: make([]BrandDocument, 0, len(brands))}
	for _, brand := range brands {
		colors, err := c.Colors(ctx, brand.ID, Query{})
		if err != nil {
			return Document{}, err
		}
		bd := BrandDocument{Name: brand.Name, Slug: brand.Slug, Category: brand.Category, Colors: make([]ColorDocument, 0, len(colors))}
		for _, color := range colors {
			cd := ColorDocument{
				Name:       color.Name,
				VendorCode: color.VendorCode,
				Hex:        color.Hex,
				OklchL:     color.OklchL,
				OklchC:     color.OklchC,
				OklchH:     color.OklchH,
			}
			if color.Family != nil {
				cd.Family = string(*color.Family)
			}
			bd.Colors = append(bd.Colors, cd)
		}
		doc.Brands = append(doc.Brands, bd)
	}
	return doc, nil
}

// ExportBlob writes the exported document to key, replacing any previous export.
func (c *Catalog) ExportBlob(ctx context.Context, blobs core.Store, key string, brandIDs ...int64) (core.Info, error) {
	doc, err := c.Export(ctx, brandIDs...)
	if err != nil {
		return core.Info{}, err
	}
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return core.Info{}, err
	}
	return blobs.Put(ctx, key, bytes.NewReader(payload), core.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"format-version": fmt.Sprint(DocumentVersion)},
		Overwrite:   true,
	})
}
