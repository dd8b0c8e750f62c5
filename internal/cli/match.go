package cli

import (
	"context"
	"fmt"
	"palettecore/internal/matcher"
	"palettecore/pkg/domain"

	"github.com/amterp/ra"
)

func registerMatch(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("match")
	cmd.SetDescription("Find a brand's colors near a saturation and lightness")

	ctx.MatchBrand, _ = ra.NewString("brand").
		SetShort("b").
		SetFlagOnly(true).
		SetUsage("Brand id, slug or name").
		Register(cmd)

	ctx.MatchFamily, _ = ra.NewString("family").
		SetShort("f").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Restrict to one color family").
		Register(cmd)

	ctx.MatchLightness, _ = ra.NewString("lightness").
		SetShort("l").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Lightness slider value, 0-100").
		Register(cmd)

	ctx.MatchSaturation, _ = ra.NewString("saturation").
		SetShort("s").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Saturation slider value, 0-100").
		Register(cmd)

	ctx.MatchExclude, _ = ra.NewStringSlice("exclude").
		SetShort("x").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Color ids to leave out (repeatable or comma-separated)").
		Register(cmd)

	ctx.MatchNoAdaptive, _ = ra.NewBool("no-adaptive").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Keep the base tolerance even when few colors match").
		Register(cmd)

	ctx.MatchLimit, _ = ra.NewInt("limit").
		SetShort("n").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Maximum colors to print (default: page size)").
		Register(cmd)

	ctx.MatchUsed, _ = parent.RegisterCmd(cmd)
}

type matchRequest struct {
	Brand      string
	Family     string
	Lightness  string
	Saturation string
	Exclude    []string
	NoAdaptive bool
	Limit      int
}

type matchOutput struct {
	Brand              domain.Brand   `json:"brand"`
	Count              int            `json:"count"`
	EffectiveTolerance float64        `json:"effective_tolerance"`
	Iterations         int            `json:"iterations"`
	Colors             []domain.Color `json:"colors"`
}

func (a *App) runMatch(ctx context.Context, req matchRequest) error {
	brand, err := a.Catalog.ResolveBrand(req.Brand)
	if err != nil {
		return err
	}
	filter := matcher.Filter{Family: familyName(req.Family), Adaptive: !req.NoAdaptive}
	if filter.Lightness, err = optionalSlider("lightness", req.Lightness); err != nil {
		return err
	}
	if filter.Saturation, err = optionalSlider("saturation", req.Saturation); err != nil {
		return err
	}
	if filter.Exclude, err = parseIDs("exclude", req.Exclude); err != nil {
		return err
	}

	source := a.Catalog.ForBrand(brand.ID)
	m := matcher.New(source, filter, nil, matcher.WithLabel(source.Label()), matcher.WithObserver(a.recorder))
	outcome, err := m.Run(ctx)
	if err != nil {
		return err
	}
	out := matchOutput{
		Brand:              brand,
		Count:              len(outcome.Colors),
		EffectiveTolerance: outcome.EffectiveTolerance,
		Iterations:         outcome.Iterations,
		Colors:             matcher.Page(outcome.Colors, a.pageSize(req.Limit)),
	}
	a.Logger.Debug("match finished", "brand", brand.Slug, "count", out.Count,
		"tolerance", out.EffectiveTolerance, "iterations", out.Iterations)
	if a.JSON {
		return a.printJSON(out)
	}
	if out.Count == 0 {
		printInfo(a.Out, "No %s colors match", brand.Name)
		return nil
	}
	fmt.Fprintf(a.Out, "%s  %s\n", StyleBold.Render(brand.Name),
		StyleMuted.Render(fmt.Sprintf("%d matches at tolerance %g", out.Count, out.EffectiveTolerance)))
	for _, c := range out.Colors {
		fmt.Fprintf(a.Out, "  %s\n", colorLine(c))
	}
	if hidden := out.Count - len(out.Colors); hidden > 0 {
		printInfo(a.Out, "%d more not shown", hidden)
	}
	return nil
}
