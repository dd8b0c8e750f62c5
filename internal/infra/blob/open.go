// Package blob selects a document store backend for catalog import and export.
package blob

import (
	"context"
	"fmt"
	"palettecore/internal/infra/blob/core"
	"palettecore/internal/infra/blob/fs"
	"palettecore/internal/infra/blob/memory"
	"palettecore/internal/infra/blob/s3"
)

// Store is the document store interface shared by every backend.
type Store = core.Store

// Config selects and configures a backend.
type Config struct {
	Driver string    `toml:"driver"`
	FSRoot string    `toml:"fs_root"`
	S3     s3.Config `toml:"s3"`
}

// Open constructs the configured store. An empty driver selects the filesystem.
func Open(ctx context.Context, cfg Config) (Store, error) {
	driver, err := core.ParseDriver(cfg.Driver)
	if err != nil {
		return nil, err
	}
	switch driver {
	case core.DriverS3:
		store, err := s3.New(ctx, cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("open s3 blob store: %w", err)
		}
		return store, nil
	case core.DriverMemory:
		return memory.New(), nil
	default:
		store, err := fs.New(cfg.FSRoot)
		if err != nil {
			return nil, fmt.Errorf("open fs blob store: %w", err)
		}
		return store, nil
	}
}
