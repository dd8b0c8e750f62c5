package cli

import (
	"context"
	"fmt"
	"palettecore/pkg/domain"

	"github.com/amterp/ra"
)

func registerImport(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("import")
	cmd.SetDescription("Import a catalog document from the blob store")

	ctx.ImportKey, _ = ra.NewString("key").
		SetUsage("Blob key of the catalog document").
		Register(cmd)

	ctx.ImportUsed, _ = parent.RegisterCmd(cmd)
}

func registerBrands(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("brands")
	cmd.SetDescription("List catalog brands")

	ctx.BrandsCategory, _ = ra.NewString("category").
		SetShort("c").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Only brands of this category (fabric or thread)").
		Register(cmd)

	ctx.BrandsUsed, _ = parent.RegisterCmd(cmd)
}

func registerFamilies(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("families")
	cmd.SetDescription("Count a brand's colors per family")

	ctx.FamiliesBrand, _ = ra.NewString("brand").
		SetShort("b").
		SetFlagOnly(true).
		SetUsage("Brand id, slug or name").
		Register(cmd)

	ctx.FamiliesUsed, _ = parent.RegisterCmd(cmd)
}

func (a *App) runImport(ctx context.Context, key string) error {
	blobs, err := a.openBlobs(ctx)
	if err != nil {
		return err
	}
	report, err := a.Catalog.ImportBlob(ctx, blobs, key)
	if err != nil {
		return err
	}
	a.Logger.Info("catalog imported", "key", key,
		"brands_created", report.BrandsCreated, "colors_created", report.ColorsCreated)
	if a.JSON {
		return a.printJSON(report)
	}
	printSuccess(a.Out, "Imported %s: %d brands created, %d updated, %d colors created, %d updated",
		key, report.BrandsCreated, report.BrandsUpdated, report.ColorsCreated, report.ColorsUpdated)
	return nil
}

func (a *App) runBrands(category string) error {
	cat := domain.Category(category)
	if category != "" && !cat.Valid() {
		return fmt.Errorf("%w: unknown category %q", domain.ErrInvalidInput, category)
	}
	brands := a.Catalog.Brands(cat)
	if a.JSON {
		return a.printJSON(brands)
	}
	if len(brands) == 0 {
		printInfo(a.Out, "No brands found")
		return nil
	}
	for _, b := range brands {
		fmt.Fprintf(a.Out, "  %s  %s  %s\n", RenderID(b.ID), StyleBold.Render(b.Name),
			StyleMuted.Render(fmt.Sprintf("%s, %d colors", b.Category, b.ColorCount)))
	}
	return nil
}

func (a *App) runFamilies(ctx context.Context, brandRef string) error {
	brand, err := a.Catalog.ResolveBrand(brandRef)
	if err != nil {
		return err
	}
	counts, err := a.Catalog.FamilyCounts(ctx, brand.ID)
	if err != nil {
		return err
	}
	if a.JSON {
		return a.printJSON(counts)
	}
	if len(counts) == 0 {
		printInfo(a.Out, "%s has no classified colors", brand.Name)
		return nil
	}
	fmt.Fprintf(a.Out, "%s\n", StyleBold.Render(brand.Name))
	for _, fc := range counts {
		fmt.Fprintf(a.Out, "  %-8s %d\n", fc.Family, fc.Count)
	}
	return nil
}
