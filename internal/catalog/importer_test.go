package catalog

import (
	"context"
	"errors"
	"palettecore/internal/infra/blob/core"
	blobmemory "palettecore/internal/infra/blob/memory"
	"palettecore/internal/infra/persistence/memory"
	"palettecore/pkg/domain"
	"strings"
	"testing"
)

const sampleDocument = `{
  "version": 1,
  "brands": [
    {
      "name": "DMC",
      "category": "thread",
      "colors": [
        {"name": "Black", "vendor_code": "310", "hex": "#000000", "oklch_l": 0.21, "oklch_c": 0.0, "oklch_h": 0, "family": "Gray"},
        {"name": "Navy", "vendor_code": "336", "hex": "#1f2a44", "oklch_l": 0.3, "oklch_c": 0.06, "oklch_h": 262, "family": "blue"}
      ]
    },
    {
      "name": "Kona Cotton",
      "category": "fabric",
      "colors": [
        {"name": "Snow", "hex": "#fbfbf8", "oklch_l": 0.98, "oklch_c": 0.004, "family": "Warm neutral"}
      ]
    }
  ]
}`

func TestImportCreatesThenUpdates(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(nil)
	cat := New(store)
	doc, err := DecodeDocument(strings.NewReader(sampleDocument))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	report, err := cat.Import(ctx, doc)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if report != (ImportReport{BrandsCreated: 2, ColorsCreated: 3}) {
		t.Fatalf("unexpected first report %+v", report)
	}
	dmc, err := cat.ResolveBrand("dmc")
	if err != nil || dmc.ColorCount != 2 {
		t.Fatalf("expected DMC with 2 colors, got %+v %v", dmc, err)
	}

	doc.Brands[0].Colors[1].Name = "Navy Blue"
	report, err = cat.Import(ctx, doc)
	if err != nil {
		t.Fatalf("reimport: %v", err)
	}
	if report != (ImportReport{BrandsUpdated: 2, ColorsUpdated: 3}) {
		t.Fatalf("unexpected second report %+v", report)
	}
	colors, err := cat.Colors(ctx, dmc.ID, Query{Family: "Blue"})
	if err != nil || len(colors) != 1 || colors[0].Name != "Navy Blue" {
		t.Fatalf("expected renamed color, got %+v %v", colors, err)
	}
	if len(store.ListColors()) != 3 {
		t.Fatalf("reimport must not duplicate colors")
	}
}

func TestImportIsAtomic(t *testing.T) {
	store := memory.NewStore(nil)
	cat := New(store)
	doc := Document{Brands: []BrandDocument{
		{Name: "Good", Category: domain.CategoryThread, Colors: []ColorDocument{{Name: "ok"}}},
		{Name: "Bad", Category: domain.CategoryThread, Colors: []ColorDocument{{Name: "broken", Family: "Turquoise"}}},
	}}
	if _, err := cat.Import(context.Background(), doc); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if len(store.ListBrands()) != 0 || len(store.ListColors()) != 0 {
		t.Fatalf("failed import left partial state")
	}
	bad := Document{Brands: []BrandDocument{{Name: "X", Category: "yarn"}}}
	if _, err := cat.Import(context.Background(), bad); err == nil {
		t.Fatalf("expected category error")
	}
}

func TestDecodeDocumentRejectsUnknownFieldsAndVersions(t *testing.T) {
	if _, err := DecodeDocument(strings.NewReader(`{"brands":[],"extra":1}`)); err == nil {
		t.Fatalf("expected unknown field error")
	}
	if _, err := DecodeDocument(strings.NewReader(`{"version":7,"brands":[]}`)); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected version error, got %v", err)
	}
}

func TestColorDocumentValidation(t *testing.T) {
	cases := []ColorDocument{
		{Name: "l", OklchL: f(1.2)},
		{Name: "c", OklchC: f(-0.1)},
		{Name: "h", OklchH: f(360)},
	}
	for _, cd := range cases {
		if _, err := cd.validate(); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("%s: expected invalid input, got %v", cd.Name, err)
		}
	}
}

func TestBlobImportExportRoundTrip(t *testing.T) {
	ctx := context.Background()
	blobs := blobmemory.New()
	if _, err := blobs.Put(ctx, "catalogs/in.json", strings.NewReader(sampleDocument), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	source := New(memory.NewStore(nil))
	if _, err := source.ImportBlob(ctx, blobs, "catalogs/in.json"); err != nil {
		t.Fatalf("import blob: %v", err)
	}
	dmc, _ := source.ResolveBrand("dmc")
	info, err := source.ExportBlob(ctx, blobs, "exports/dmc.json", dmc.ID)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if info.ContentType != "application/json" {
		t.Fatalf("unexpected export info %+v", info)
	}
	if _, err := source.ExportBlob(ctx, blobs, "exports/dmc.json", dmc.ID); err != nil {
		t.Fatalf("export must overwrite: %v", err)
	}

	target := New(memory.NewStore(nil))
	report, err := target.ImportBlob(ctx, blobs, "exports/dmc.json")
	if err != nil {
		t.Fatalf("reimport export: %v", err)
	}
	if report.BrandsCreated != 1 || report.ColorsCreated != 2 {
		t.Fatalf("unexpected report %+v", report)
	}
	if _, err := target.ImportBlob(ctx, blobs, "missing.json"); !errors.Is(err, core.ErrNotExist) {
		t.Fatalf("expected missing blob error, got %v", err)
	}
	if _, err := source.Export(ctx, 404); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected unknown brand error, got %v", err)
	}
}
