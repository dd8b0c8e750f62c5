package core

import (
	"context"
	"fmt"
	"palettecore/internal/infra/persistence/memory"
	"palettecore/internal/infra/persistence/postgres"
	"palettecore/internal/infra/persistence/sqlite"
	"palettecore/pkg/domain"
	"strings"
)

// StorageDriver identifies a concrete persistent storage implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// ParseStorageDriver normalises a driver name. Empty selects sqlite.
func ParseStorageDriver(name string) (StorageDriver, error) {
	switch d := StorageDriver(strings.ToLower(strings.TrimSpace(name))); d {
	case "":
		return StorageSQLite, nil
	case StorageMemory, StorageSQLite, StoragePostgres:
		return d, nil
	default:
		return "", fmt.Errorf("unknown storage driver %q", name)
	}
}

// StorageOptions selects and configures a backend.
type StorageOptions struct {
	Driver      StorageDriver
	SQLitePath  string
	PostgresDSN string
}

// OpenPersistentStore opens the configured backend. The returned close
// function releases database handles and is never nil.
func OpenPersistentStore(ctx context.Context, opts StorageOptions, engine *domain.RulesEngine) (domain.PersistentStore, func() error, error) {
	noop := func() error { return nil }
	driver, err := ParseStorageDriver(string(opts.Driver))
	if err != nil {
		return nil, noop, err
	}
	switch driver {
	case StorageMemory:
		return memory.NewStore(engine), noop, nil
	case StorageSQLite:
		store, err := sqlite.NewStore(opts.SQLitePath, engine)
		if err != nil {
			return nil, noop, err
		}
		return store, store.Close, nil
	default:
		store, err := postgres.NewStore(ctx, opts.PostgresDSN, engine)
		if err != nil {
			return nil, noop, err
		}
		return store, store.Close, nil
	}
}
