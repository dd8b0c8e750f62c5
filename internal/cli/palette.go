package cli

import (
	"context"
	"fmt"
	"palettecore/pkg/domain"

	"github.com/amterp/ra"
)

func registerRoles(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("roles")
	cmd.SetDescription("Show slot capacity per role for a palette")

	ctx.RolesPalette, _ = ra.NewInt("palette").
		SetShort("p").
		SetFlagOnly(true).
		SetUsage("Palette id").
		Register(cmd)

	ctx.RolesUsed, _ = parent.RegisterCmd(cmd)
}

func registerCleanup(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("cleanup")
	cmd.SetDescription("Delete an owner's unnamed draft palettes that have no slots")

	ctx.CleanupOwner, _ = ra.NewInt("owner").
		SetShort("o").
		SetFlagOnly(true).
		SetUsage("Owner id").
		Register(cmd)

	ctx.CleanupUsed, _ = parent.RegisterCmd(cmd)
}

type rolesOutput struct {
	PaletteID int64                   `json:"palette_id"`
	Roles     []domain.CapacityStatus `json:"roles"`
	Missing   []string                `json:"missing"`
}

func (a *App) runRoles(ctx context.Context, paletteID int) error {
	id := int64(paletteID)
	statuses, err := a.Service.ListRoles(ctx, id)
	if err != nil {
		return err
	}
	missing, err := a.Service.MissingRequirements(ctx, id)
	if err != nil {
		return err
	}
	if a.JSON {
		return a.printJSON(rolesOutput{PaletteID: id, Roles: statuses, Missing: missing})
	}
	for _, st := range statuses {
		state := StyleSuccess.Render("ok")
		switch {
		case !st.MinimumMet:
			state = StyleError.Render(fmt.Sprintf("needs %d", st.Min-st.Current))
		case st.IsFull:
			state = StyleMuted.Render("full")
		}
		fmt.Fprintf(a.Out, "  %-10s %2d/%-2d %-7s %s\n", st.Role, st.Current, st.Max, st.Category, state)
	}
	if len(missing) == 0 {
		printSuccess(a.Out, "Palette %d can be published", id)
		return nil
	}
	for _, m := range missing {
		printInfo(a.Out, "%s", m)
	}
	return nil
}

func (a *App) runCleanup(ctx context.Context, owner int) error {
	if owner <= 0 {
		return fmt.Errorf("%w: --owner must be a positive id", domain.ErrInvalidInput)
	}
	removed, _, err := a.Service.CleanupEmptyPalettes(ctx, int64(owner))
	if err != nil {
		return err
	}
	if a.JSON {
		return a.printJSON(map[string]int{"removed": removed})
	}
	if removed == 0 {
		printInfo(a.Out, "No empty palettes")
		return nil
	}
	printSuccess(a.Out, "Removed %d empty palettes", removed)
	return nil
}
