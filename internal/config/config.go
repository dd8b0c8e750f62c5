// Package config loads palettecore settings from an optional TOML file and
// PALETTECORE_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"palettecore/internal/core"
	"palettecore/internal/infra/blob"
	blobcore "palettecore/internal/infra/blob/core"
	"palettecore/internal/infra/persistence/sqlite"
	"palettecore/pkg/domain"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultPath is read when no explicit path is given. A missing default file
// is not an error.
const DefaultPath = "palettecore.toml"

// DefaultPageSize bounds list output when page_size is unset.
const DefaultPageSize = 30

// Role set names accepted by the roles key.
const (
	RolesDefault = "default"
	RolesLegacy  = "legacy"
)

// StorageConfig selects the persistent store.
type StorageConfig struct {
	Driver      string `toml:"driver"`
	SQLitePath  string `toml:"sqlite_path"`
	PostgresDSN string `toml:"postgres_dsn"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config is the full process configuration.
type Config struct {
	Storage  StorageConfig `toml:"storage"`
	Blob     blob.Config   `toml:"blob"`
	Log      LogConfig     `toml:"log"`
	Roles    string        `toml:"roles"`
	PageSize int           `toml:"page_size"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Storage:  StorageConfig{Driver: string(core.StorageSQLite), SQLitePath: sqlite.DefaultPath},
		Blob:     blob.Config{Driver: string(blobcore.DriverFilesystem), FSRoot: "catalogs"},
		Log:      LogConfig{Level: "info", Format: "text"},
		Roles:    RolesDefault,
		PageSize: DefaultPageSize,
	}
}

// Load reads path over the defaults and applies environment overrides. An
// empty path reads DefaultPath if it exists. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	md, err := toml.DecodeFile(path, &cfg)
	switch {
	case err == nil:
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, 0, len(undecoded))
			for _, k := range undecoded {
				keys = append(keys, k.String())
			}
			return Config{}, fmt.Errorf("config %s: unknown keys %s", path, strings.Join(keys, ", "))
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from PALETTECORE_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	str("PALETTECORE_STORAGE_DRIVER", &c.Storage.Driver)
	str("PALETTECORE_SQLITE_PATH", &c.Storage.SQLitePath)
	str("PALETTECORE_POSTGRES_DSN", &c.Storage.PostgresDSN)
	str("PALETTECORE_BLOB_DRIVER", &c.Blob.Driver)
	str("PALETTECORE_BLOB_FS_ROOT", &c.Blob.FSRoot)
	str("PALETTECORE_BLOB_S3_BUCKET", &c.Blob.S3.Bucket)
	str("PALETTECORE_BLOB_S3_REGION", &c.Blob.S3.Region)
	str("PALETTECORE_BLOB_S3_ENDPOINT", &c.Blob.S3.Endpoint)
	str("PALETTECORE_LOG_LEVEL", &c.Log.Level)
	str("PALETTECORE_LOG_FORMAT", &c.Log.Format)
	str("PALETTECORE_ROLES", &c.Roles)

	if v, ok := lookup("PALETTECORE_BLOB_S3_PATH_STYLE"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("PALETTECORE_BLOB_S3_PATH_STYLE: %w", err)
		}
		c.Blob.S3.PathStyle = b
	}
	if v, ok := lookup("PALETTECORE_PAGE_SIZE"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("PALETTECORE_PAGE_SIZE: %w", err)
		}
		c.PageSize = n
	}
	return nil
}

// Validate checks every enumerated setting.
func (c Config) Validate() error {
	if _, err := c.StorageOptions(); err != nil {
		return err
	}
	if _, err := blobcore.ParseDriver(c.Blob.Driver); err != nil {
		return err
	}
	if _, err := c.RoleSet(); err != nil {
		return err
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log format %q", domain.ErrInvalidInput, c.Log.Format)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("%w: page_size must be positive, got %d", domain.ErrInvalidInput, c.PageSize)
	}
	return nil
}

// StorageOptions converts the storage section for core.OpenPersistentStore.
func (c Config) StorageOptions() (core.StorageOptions, error) {
	driver, err := core.ParseStorageDriver(c.Storage.Driver)
	if err != nil {
		return core.StorageOptions{}, err
	}
	if driver == core.StoragePostgres && c.Storage.PostgresDSN == "" {
		return core.StorageOptions{}, fmt.Errorf("%w: postgres storage requires postgres_dsn", domain.ErrInvalidInput)
	}
	return core.StorageOptions{
		Driver:      driver,
		SQLitePath:  c.Storage.SQLitePath,
		PostgresDSN: c.Storage.PostgresDSN,
	}, nil
}

// RoleSet resolves the configured role set.
func (c Config) RoleSet() (domain.RoleSet, error) {
	var roles domain.RoleSet
	switch strings.ToLower(strings.TrimSpace(c.Roles)) {
	case "", RolesDefault:
		roles = domain.DefaultRoles()
	case RolesLegacy:
		roles = domain.LegacyRoles()
	default:
		return nil, fmt.Errorf("%w: unknown role set %q", domain.ErrInvalidInput, c.Roles)
	}
	if err := roles.Validate(); err != nil {
		return nil, err
	}
	return roles, nil
}
