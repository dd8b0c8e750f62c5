// Package cli implements the palettectl command line.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/amterp/ra"
)

// CommandContext holds parsed values and used flags for all commands.
type CommandContext struct {
	// Global flags
	ConfigPath *string
	JSON       *bool
	Metrics       *bool
	MetricsFormat *string
	Trace         *bool

	// import command
	ImportUsed *bool
	ImportKey  *string

	// brands command
	BrandsUsed     *bool
	BrandsCategory *string

	// families command
	FamiliesUsed  *bool
	FamiliesBrand *string

	// match command
	MatchUsed       *bool
	MatchBrand      *string
	MatchFamily     *string
	MatchLightness  *string
	MatchSaturation *string
	MatchExclude    *[]string
	MatchNoAdaptive *bool
	MatchLimit      *int

	// stash command
	StashUsed              *bool
	StashOwner             *int
	StashFamily            *string
	StashLightness         *string
	StashSaturation        *string
	StashLightnessCategory *string
	StashCategory          *string

	// roles command
	RolesUsed    *bool
	RolesPalette *int

	// cleanup command
	CleanupUsed  *bool
	CleanupOwner *int
}

// Run is the main entry point for the CLI.
func Run() {
	cc := &CommandContext{}

	cmd := ra.NewCmd("palettectl")
	cmd.SetDescription("Browse thread and fabric colors and manage palettes")

	cc.ConfigPath, _ = ra.NewString("config").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Path to a TOML config file (default: palettecore.toml if present)").
		Register(cmd, ra.WithGlobal(true))

	cc.JSON, _ = ra.NewBool("json").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Print JSON instead of text").
		Register(cmd, ra.WithGlobal(true))

	cc.Metrics, _ = ra.NewBool("metrics").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Write operation and tolerance metrics to stderr on exit").
		Register(cmd, ra.WithGlobal(true))

	cc.MetricsFormat, _ = ra.NewString("metrics-format").
		SetOptional(true).
		SetFlagOnly(true).
		SetDefault(MetricsFormatJSON).
		SetUsage("Format for --metrics: json or prometheus").
		Register(cmd, ra.WithGlobal(true))

	cc.Trace, _ = ra.NewBool("trace").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Write one JSON span per service operation to stderr").
		Register(cmd, ra.WithGlobal(true))

	registerImport(cmd, cc)
	registerBrands(cmd, cc)
	registerFamilies(cmd, cc)
	registerMatch(cmd, cc)
	registerStash(cmd, cc)
	registerRoles(cmd, cc)
	registerCleanup(cmd, cc)

	cmd.ParseOrExit(os.Args[1:])

	if err := validMetricsFormat(*cc.MetricsFormat); err != nil {
		Fatal(err)
	}
	var trace io.Writer
	if *cc.Trace {
		trace = os.Stderr
	}

	ctx := context.Background()
	app, err := NewApp(ctx, *cc.ConfigPath, trace)
	if err != nil {
		Fatal(err)
	}
	app.JSON = *cc.JSON
	err = executeCommand(ctx, app, cc)
	if *cc.Metrics {
		_ = app.writeMetrics(os.Stderr, *cc.MetricsFormat)
	}
	if cerr := app.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		Fatal(err)
	}
}

func executeCommand(ctx context.Context, app *App, cc *CommandContext) error {
	switch {
	case *cc.ImportUsed:
		return app.runImport(ctx, *cc.ImportKey)

	case *cc.BrandsUsed:
		return app.runBrands(*cc.BrandsCategory)

	case *cc.FamiliesUsed:
		return app.runFamilies(ctx, *cc.FamiliesBrand)

	case *cc.MatchUsed:
		return app.runMatch(ctx, matchRequest{
			Brand:      *cc.MatchBrand,
			Family:     *cc.MatchFamily,
			Lightness:  *cc.MatchLightness,
			Saturation: *cc.MatchSaturation,
			Exclude:    *cc.MatchExclude,
			NoAdaptive: *cc.MatchNoAdaptive,
			Limit:      *cc.MatchLimit,
		})

	case *cc.StashUsed:
		return app.runStash(ctx, stashRequest{
			Owner:             *cc.StashOwner,
			Family:            *cc.StashFamily,
			Lightness:         *cc.StashLightness,
			Saturation:        *cc.StashSaturation,
			LightnessCategory: *cc.StashLightnessCategory,
			Category:          *cc.StashCategory,
		})

	case *cc.RolesUsed:
		return app.runRoles(ctx, *cc.RolesPalette)

	case *cc.CleanupUsed:
		return app.runCleanup(ctx, *cc.CleanupOwner)
	}
	return nil
}
