package postgres

import (
	"context"
	"database/sql"
	"errors"
	"palettecore/internal/infra/persistence/postgres/testutil"
	"palettecore/pkg/domain"
	"strings"
	"testing"
)

func withStub(t *testing.T) (*sql.DB, *testutil.StubConn) {
	t.Helper()
	db, conn := testutil.NewStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	t.Cleanup(restore)
	return db, conn
}

func TestNewStoreEnsuresTableAndLoadsSnapshot(t *testing.T) {
	_, conn := withStub(t)
	conn.Seed("state", map[string]any{
		"bucket":  "brands",
		"payload": []byte(`{"5":{"id":5,"name":"DMC","slug":"dmc","category":"thread"}}`),
	})

	store, err := NewStore(context.Background(), "", domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if brand, ok := store.GetBrand(5); !ok || brand.Name != "DMC" {
		t.Fatalf("expected brand loaded from snapshot, got %+v", brand)
	}
	var sawDDL bool
	for _, stmt := range conn.Execs {
		if strings.Contains(strings.ToUpper(stmt), "CREATE TABLE IF NOT EXISTS STATE") {
			sawDDL = true
		}
	}
	if !sawDDL {
		t.Fatalf("expected state table DDL, got execs: %v", conn.Execs)
	}
}

func TestRunInTransactionPersistsState(t *testing.T) {
	_, conn := withStub(t)
	store, err := NewStore(context.Background(), "ignored", domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, e := tx.CreateBrand(domain.Brand{Name: "Kona Cotton", Category: domain.CategoryFabric})
		return e
	}); err != nil {
		t.Fatalf("run tx: %v", err)
	}
	if conn.Commits != 1 {
		t.Fatalf("expected one commit, got %d", conn.Commits)
	}
	row, ok := conn.Row("state", "bucket", "brands")
	if !ok || !strings.Contains(string(row["payload"].([]byte)), "kona-cotton") {
		t.Fatalf("expected brands bucket upserted, got %v", row)
	}
	if len(conn.Tables["state"]) != 6 {
		t.Fatalf("expected one row per bucket, got %d", len(conn.Tables["state"]))
	}
}

func TestRunInTransactionPersistFailures(t *testing.T) {
	cases := map[string]func(*testutil.StubConn){
		"begin":  func(c *testutil.StubConn) { c.FailBegin = true },
		"upsert": func(c *testutil.StubConn) { c.FailTables = map[string]bool{"state": true} },
		"commit": func(c *testutil.StubConn) { c.FailCommit = true },
	}
	for name, arm := range cases {
		t.Run(name, func(t *testing.T) {
			_, conn := withStub(t)
			store, err := NewStore(context.Background(), "", nil)
			if err != nil {
				t.Fatalf("NewStore: %v", err)
			}
			arm(conn)
			_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
				_, e := tx.CreatePalette(domain.Palette{CreatorID: 1})
				return e
			})
			if err == nil {
				t.Fatalf("expected persist failure")
			}
			if got := len(store.ListPalettes()); got != 0 {
				t.Fatalf("failed persist must roll back memory state, found %d palettes", got)
			}

			conn.FailBegin, conn.FailCommit, conn.FailTables = false, false, nil
			var created domain.Palette
			if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
				var e error
				created, e = tx.CreatePalette(domain.Palette{CreatorID: 1})
				return e
			}); err != nil {
				t.Fatalf("retry after failure: %v", err)
			}
			if created.ID != 1 {
				t.Fatalf("rolled back id must be reused, got %d", created.ID)
			}
		})
	}
}

func TestNewStoreErrors(t *testing.T) {
	t.Run("open", func(t *testing.T) {
		restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return nil, errors.New("no driver") })
		defer restore()
		if _, err := NewStore(context.Background(), "", nil); err == nil || !strings.Contains(err.Error(), "open postgres") {
			t.Fatalf("expected open error, got %v", err)
		}
	})
	t.Run("ping", func(t *testing.T) {
		_, conn := withStub(t)
		conn.FailPing = true
		if _, err := NewStore(context.Background(), "", nil); err == nil || !strings.Contains(err.Error(), "ping postgres") {
			t.Fatalf("expected ping error, got %v", err)
		}
	})
	t.Run("decode", func(t *testing.T) {
		_, conn := withStub(t)
		conn.Seed("state", map[string]any{"bucket": "colors", "payload": []byte(`[`)})
		if _, err := NewStore(context.Background(), "", nil); err == nil || !strings.Contains(err.Error(), "decode colors") {
			t.Fatalf("expected decode error, got %v", err)
		}
	})
}
