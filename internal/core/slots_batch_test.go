package core

import (
	"context"
	"errors"
	"palettecore/pkg/domain"
	"testing"
)

func intPtr(v int) *int { return &v }

func TestApplyPaletteChangesOrdersDeletionsFirst(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	p := fx.palette(t, "Batch")
	bg, _, _ := fx.svc.CreateSlot(ctx, p.ID, fx.fabrics[0].ID, domain.RoleBackground)
	var threads []domain.ColorSlot
	for i := 0; i < 12; i++ {
		slot, _, err := fx.svc.CreateSlot(ctx, p.ID, fx.threads[i].ID, domain.RoleThread)
		if err != nil {
			t.Fatalf("slot %d: %v", i, err)
		}
		threads = append(threads, slot)
	}
	detail, _ := fx.svc.GetPalette(ctx, p.ID)

	// Thread capacity is full: the addition only fits because the deletion runs first.
	// The update reuses a color freed by a deletion in the same batch.
	changes := domain.SlotChanges{
		BaseVersion: detail.Version,
		Deletions:   []int64{threads[0].ID, bg.ID},
		Updates:     []domain.SlotUpdate{{ID: threads[1].ID, ColorID: fx.threads[0].ID}},
		Additions: []domain.SlotAddition{
			{TempID: -1, ColorID: fx.threads[12].ID, Role: domain.RoleThread, Position: intPtr(11)},
			{TempID: -2, ColorID: fx.fabrics[1].ID, Role: domain.RoleBackground},
		},
	}
	receipt, _, err := fx.svc.ApplyPaletteChanges(ctx, p.ID, changes)
	if err != nil {
		t.Fatalf("ApplyPaletteChanges: %v", err)
	}
	if receipt.Version != detail.Version+1 {
		t.Fatalf("expected a single version bump, got %d from %d", receipt.Version, detail.Version)
	}
	if len(receipt.Assigned) != 2 || receipt.Assigned[-1] == 0 || receipt.Assigned[-2] == 0 {
		t.Fatalf("expected both temp ids assigned, got %v", receipt.Assigned)
	}
	if len(receipt.Slots) != 13 || receipt.Slots[0].Role != domain.RoleBackground || receipt.Slots[0].ColorID != fx.fabrics[1].ID {
		t.Fatalf("unexpected receipt slots %+v", receipt.Slots)
	}
	for _, s := range receipt.Slots {
		if s.ID == receipt.Assigned[-1] && s.Position != 11 {
			t.Fatalf("explicit addition position must be kept, got %d", s.Position)
		}
	}
}

func TestApplyPaletteChangesIsAtomic(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	p := fx.palette(t, "Atomic")
	a, _, _ := fx.svc.CreateSlot(ctx, p.ID, fx.threads[0].ID, domain.RoleThread)
	b, _, _ := fx.svc.CreateSlot(ctx, p.ID, fx.threads[1].ID, domain.RoleThread)
	before, _ := fx.svc.GetPalette(ctx, p.ID)

	cases := []struct {
		name    string
		changes domain.SlotChanges
		want    error
	}{
		{"stale version", domain.SlotChanges{BaseVersion: before.Version - 1, Deletions: []int64{a.ID}}, domain.ErrStaleVersion},
		{"duplicate addition", domain.SlotChanges{
			BaseVersion: before.Version,
			Deletions:   []int64{a.ID},
			Additions:   []domain.SlotAddition{{TempID: -1, ColorID: fx.threads[1].ID, Role: domain.RoleThread}},
		}, domain.ErrDuplicateColor},
		{"category mismatch update", domain.SlotChanges{
			BaseVersion: before.Version,
			Deletions:   []int64{a.ID},
			Updates:     []domain.SlotUpdate{{ID: b.ID, ColorID: fx.fabrics[0].ID}},
		}, domain.ErrCategoryMismatch},
		{"foreign slot", domain.SlotChanges{BaseVersion: before.Version, Deletions: []int64{a.ID, 999}}, domain.ErrNotFound},
		{"reused temp id", domain.SlotChanges{
			BaseVersion: before.Version,
			Additions: []domain.SlotAddition{
				{TempID: -1, ColorID: fx.threads[5].ID, Role: domain.RoleThread},
				{TempID: -1, ColorID: fx.threads[6].ID, Role: domain.RoleThread},
			},
		}, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := fx.svc.ApplyPaletteChanges(ctx, p.ID, tc.changes); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			after, _ := fx.svc.GetPalette(ctx, p.ID)
			if after.Version != before.Version || len(after.Slots) != 2 {
				t.Fatalf("failed batch leaked state: %+v", after)
			}
		})
	}

	var conflict *domain.ConflictError
	_, _, err := fx.svc.ApplyPaletteChanges(ctx, p.ID, domain.SlotChanges{BaseVersion: 0})
	if !errors.As(err, &conflict) || conflict.Actual != before.Version {
		t.Fatalf("expected conflict carrying current version, got %v", err)
	}
}

func TestApplyEmptyPaletteChangesKeepsVersion(t *testing.T) {
	fx := newFixture(t)
	p := fx.palette(t, "Idle")
	receipt, _, err := fx.svc.ApplyPaletteChanges(context.Background(), p.ID, domain.SlotChanges{BaseVersion: p.Version})
	if err != nil {
		t.Fatalf("empty batch: %v", err)
	}
	if receipt.Version != p.Version || len(receipt.Slots) != 0 {
		t.Fatalf("unexpected receipt %+v", receipt)
	}
}

func TestApplyPaletteChangesSwapsColors(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	p := fx.palette(t, "Swap")
	a, _, _ := fx.svc.CreateSlot(ctx, p.ID, fx.threads[0].ID, domain.RoleThread)
	b, _, _ := fx.svc.CreateSlot(ctx, p.ID, fx.threads[1].ID, domain.RoleThread)
	c, _, _ := fx.svc.CreateSlot(ctx, p.ID, fx.threads[2].ID, domain.RoleThread)
	before, _ := fx.svc.GetPalette(ctx, p.ID)

	changes := domain.SlotChanges{
		BaseVersion: before.Version,
		Updates: []domain.SlotUpdate{
			{ID: a.ID, ColorID: fx.threads[1].ID},
			{ID: b.ID, ColorID: fx.threads[0].ID},
		},
	}
	receipt, _, err := fx.svc.ApplyPaletteChanges(ctx, p.ID, changes)
	if err != nil {
		t.Fatalf("swap: %v", err)
	}
	got := map[int64]int64{}
	for _, s := range receipt.Slots {
		got[s.ID] = s.ColorID
	}
	if got[a.ID] != fx.threads[1].ID || got[b.ID] != fx.threads[0].ID || got[c.ID] != fx.threads[2].ID {
		t.Fatalf("unexpected colors after swap: %v", got)
	}

	// The final state still may not repeat a color.
	dup := domain.SlotChanges{
		BaseVersion: receipt.Version,
		Updates:     []domain.SlotUpdate{{ID: a.ID, ColorID: fx.threads[2].ID}},
	}
	if _, _, err := fx.svc.ApplyPaletteChanges(ctx, p.ID, dup); !errors.Is(err, domain.ErrDuplicateColor) {
		t.Fatalf("expected duplicate color, got %v", err)
	}
	after, _ := fx.svc.GetPalette(ctx, p.ID)
	if after.Version != receipt.Version {
		t.Fatalf("rejected batch must not bump version: %d vs %d", after.Version, receipt.Version)
	}
}
