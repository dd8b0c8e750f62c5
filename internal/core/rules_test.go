package core

import (
	"context"
	"errors"
	"palettecore/internal/infra/persistence/memory"
	"palettecore/pkg/domain"
	"strings"
	"testing"
)

// Writes straight through the store bypass the service checks, so only the
// rules engine stands between them and the committed state.
func TestSlotRulesBlockInvalidState(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	p := fx.palette(t, "Raw")

	cases := []struct {
		name  string
		rule  string
		slots []domain.ColorSlot
	}{
		{"capacity", "slot_capacity", []domain.ColorSlot{
			{PaletteID: p.ID, ColorID: fx.fabrics[0].ID, Role: domain.RoleBackground},
			{PaletteID: p.ID, ColorID: fx.fabrics[1].ID, Role: domain.RoleBackground},
		}},
		{"uniqueness", "slot_uniqueness", []domain.ColorSlot{
			{PaletteID: p.ID, ColorID: fx.threads[0].ID, Role: domain.RoleThread},
			{PaletteID: p.ID, ColorID: fx.threads[0].ID, Role: domain.RoleThread, Position: 1},
		}},
		{"category", "slot_category", []domain.ColorSlot{
			{PaletteID: p.ID, ColorID: fx.threads[0].ID, Role: domain.RoleBackground},
		}},
		{"unknown role", "slot_category", []domain.ColorSlot{
			{PaletteID: p.ID, ColorID: fx.threads[0].ID, Role: domain.RoleAccent},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fx.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
				for _, slot := range tc.slots {
					if _, err := tx.CreateColorSlot(slot); err != nil {
						return err
					}
				}
				return nil
			})
			var rve domain.RuleViolationError
			if !errors.As(err, &rve) {
				t.Fatalf("expected rule violation, got %v", err)
			}
			found := false
			for _, v := range rve.Result.Violations {
				if v.Rule == tc.rule && v.Severity == domain.SeverityBlock {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected %s violation, got %+v", tc.rule, rve.Result.Violations)
			}
			if len(fx.store.ListColorSlots()) != 0 {
				t.Fatalf("blocked transaction must not commit")
			}
		})
	}
}

func TestRulesOnlyCheckTouchedPalettes(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	p := fx.palette(t, "Legacy data")

	// Build an over-capacity palette in a store without rules, then load it.
	bare := memory.NewStore(domain.NewRulesEngine())
	bare.ImportState(fx.store.ExportState())
	if _, err := bare.RunInTransaction(ctx, func(tx domain.Transaction) error {
		for _, c := range fx.fabrics[:2] {
			if _, err := tx.CreateColorSlot(domain.ColorSlot{PaletteID: p.ID, ColorID: c.ID, Role: domain.RoleBackground}); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		t.Fatalf("seed without rules: %v", err)
	}
	fx.store.ImportState(bare.ExportState())

	if _, _, err := fx.svc.CreatePalette(ctx, 1, PaletteDetails{Name: "Other"}); err != nil {
		t.Fatalf("unrelated palette write must pass: %v", err)
	}
	_, _, err := fx.svc.UpdatePaletteDetails(ctx, p.ID, PaletteDetails{Name: "Renamed"})
	var rve domain.RuleViolationError
	if !errors.As(err, &rve) {
		t.Fatalf("touching the invalid palette must be blocked, got %v", err)
	}

	got := touchedPalettes([]domain.Change{
		{Entity: domain.EntityColorSlot, After: domain.ColorSlot{PaletteID: p.ID}},
		{Entity: domain.EntityPalette, Before: domain.Palette{Base: domain.Base{ID: 99}}},
		{Entity: domain.EntityColor, After: domain.Color{}},
	})
	if len(got) != 2 || got[0] != p.ID || got[1] != 99 {
		t.Fatalf("unexpected touched palettes %v", got)
	}
}

func TestDefaultRulesEngineRegistersSlotRules(t *testing.T) {
	names := strings.Join(NewDefaultRulesEngine(nil).Rules(), ",")
	if names != "slot_capacity,slot_uniqueness,slot_category" {
		t.Fatalf("unexpected rules %s", names)
	}
}
