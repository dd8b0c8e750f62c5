package cli

import (
	"context"
	"fmt"
	"palettecore/internal/matcher"
	"palettecore/internal/stash"
	"palettecore/pkg/domain"

	"github.com/amterp/ra"
)

func registerStash(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("stash")
	cmd.SetDescription("Query the colors in an owner's stash")

	ctx.StashOwner, _ = ra.NewInt("owner").
		SetShort("o").
		SetFlagOnly(true).
		SetUsage("Owner id").
		Register(cmd)

	ctx.StashFamily, _ = ra.NewString("family").
		SetShort("f").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Restrict to one color family").
		Register(cmd)

	ctx.StashLightness, _ = ra.NewString("lightness").
		SetShort("l").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Lightness slider value, 0-100").
		Register(cmd)

	ctx.StashSaturation, _ = ra.NewString("saturation").
		SetShort("s").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Saturation slider value, 0-100").
		Register(cmd)

	ctx.StashLightnessCategory, _ = ra.NewString("lightness-category").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("dark, medium or light; ignored with --lightness").
		Register(cmd)

	ctx.StashCategory, _ = ra.NewString("category").
		SetShort("c").
		SetOptional(true).
		SetFlagOnly(true).
		SetDefault(string(domain.CategoryFabric)).
		SetUsage("Brand category to search").
		Register(cmd)

	ctx.StashUsed, _ = parent.RegisterCmd(cmd)
}

type stashRequest struct {
	Owner             int
	Family            string
	Lightness         string
	Saturation        string
	LightnessCategory string
	Category          string
}

type stashOutput struct {
	Summary            stash.Summary  `json:"summary"`
	InScope            int            `json:"in_scope"`
	Count              int            `json:"count"`
	EffectiveTolerance float64        `json:"effective_tolerance"`
	Colors             []domain.Color `json:"colors"`
}

func (a *App) runStash(ctx context.Context, req stashRequest) error {
	if req.Owner <= 0 {
		return fmt.Errorf("%w: --owner must be a positive id", domain.ErrInvalidInput)
	}
	category := domain.Category(req.Category)
	if !category.Valid() {
		return fmt.Errorf("%w: unknown category %q", domain.ErrInvalidInput, req.Category)
	}
	opts := stash.Options{
		OwnerID:           int64(req.Owner),
		Category:          category,
		Family:            familyName(req.Family),
		LightnessCategory: req.LightnessCategory,
		Adaptive:          true,
		Limit:             a.Config.PageSize,
	}
	var err error
	if opts.Lightness, err = optionalSlider("lightness", req.Lightness); err != nil {
		return err
	}
	if opts.Saturation, err = optionalSlider("saturation", req.Saturation); err != nil {
		return err
	}
	q, err := stash.NewQuery(a.Store, opts, matcher.WithObserver(a.recorder))
	if err != nil {
		return err
	}

	var out stashOutput
	if out.Summary, err = stash.Summarize(ctx, a.Store, opts.OwnerID); err != nil {
		return err
	}
	if out.InScope, err = q.TotalStashCount(ctx); err != nil {
		return err
	}
	if out.Count, err = q.Count(ctx); err != nil {
		return err
	}
	if out.EffectiveTolerance, err = q.EffectiveTolerance(ctx); err != nil {
		return err
	}
	if out.Colors, err = q.Results(ctx, 0); err != nil {
		return err
	}
	if a.JSON {
		return a.printJSON(out)
	}
	fmt.Fprintf(a.Out, "%s  %s\n", StyleBold.Render(fmt.Sprintf("Stash of owner %d", req.Owner)),
		StyleMuted.Render(fmt.Sprintf("%d items, %d owned, %d wished", out.Summary.Total, out.Summary.Owned, out.Summary.WishList)))
	if out.Count == 0 {
		printInfo(a.Out, "No %s colors match among %d in stash", category, out.InScope)
		return nil
	}
	printInfo(a.Out, "%d of %d %s colors match (tolerance x%g)", out.Count, out.InScope, category, out.EffectiveTolerance)
	for _, c := range out.Colors {
		fmt.Fprintf(a.Out, "  %s\n", colorLine(c))
	}
	return nil
}
