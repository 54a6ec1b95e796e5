// Package config loads framecraft settings from a TOML file.
//
// A minimal file:
//
//	[canvas]
//	width = 1080
//	height = 1080
//
//	[store]
//	backend = "sqlite"
//	dsn = "/var/lib/framecraft/templates.db"
//
// Unset values take the defaults applied by [Config.SetDefaults].
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/framecraft/pkg/errors"
	"github.com/matzehuels/framecraft/pkg/geom"
	"github.com/matzehuels/framecraft/pkg/store"
)

// AppName names the XDG directories.
const AppName = "framecraft"

// Defaults.
const (
	DefaultWidth        = 1200
	DefaultHeight       = 800
	DefaultAddr         = ":8080"
	DefaultCacheBackend = "file"
	DefaultPruneEvery   = "@hourly"
	DefaultLogLevel     = "info"
	DefaultFetchTimeout = 30 * time.Second
)

// Cache backends.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// =============================================================================
// Config
// =============================================================================

// Config is the full configuration file.
type Config struct {
	Canvas Canvas `toml:"canvas"`
	Server Server `toml:"server"`
	Store  Store  `toml:"store"`
	Cache  Cache  `toml:"cache"`
	Log    Log    `toml:"log"`
}

// Canvas sets the initial canvas and snapping grid.
type Canvas struct {
	Width  int     `toml:"width"`
	Height int     `toml:"height"`
	Grid   float64 `toml:"grid"`
}

// Size returns the canvas as a geom.Size.
func (c Canvas) Size() geom.Size {
	return geom.Size{Width: float64(c.Width), Height: float64(c.Height)}
}

// Server configures `framecraft serve`.
type Server struct {
	Addr string `toml:"addr"`

	// FetchTimeout bounds image probes made by POST /fit.
	FetchTimeout Duration `toml:"fetch_timeout"`

	// PruneSchedule is a cron expression for dropping expired cache
	// entries. Empty disables pruning.
	PruneSchedule string `toml:"prune_schedule"`

	// AllowPrivateFetch lets POST /fit fetch from loopback and private
	// network addresses. Local files are never read for API callers.
	AllowPrivateFetch bool `toml:"allow_private_fetch"`
}

// Store selects the template backend; see store.Options.
type Store struct {
	Backend  string `toml:"backend"`
	Path     string `toml:"path"`
	DSN      string `toml:"dsn"`
	URL      string `toml:"url"`
	Database string `toml:"database"`
	Prefix   string `toml:"prefix"`
}

// Options converts the section to store.Options.
func (s Store) Options() store.Options {
	return store.Options{
		Backend:  s.Backend,
		Path:     s.Path,
		DSN:      s.DSN,
		URL:      s.URL,
		Database: s.Database,
		Prefix:   s.Prefix,
	}
}

// Cache selects where fetched image bytes and probe results are kept.
type Cache struct {
	Backend string `toml:"backend"`
	Dir     string `toml:"dir"`
	URL     string `toml:"url"`
	Prefix  string `toml:"prefix"`
}

// Log configures the logger.
type Log struct {
	Level string `toml:"level"`
}

// Duration is a time.Duration written as a string ("30s") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// =============================================================================
// Loading
// =============================================================================

// Default returns a configuration with every default applied.
func Default() *Config {
	c := &Config{}
	c.SetDefaults()
	return c
}

// Load reads path, applies defaults, and validates. Unknown keys are
// rejected so that typos surface instead of being ignored.
func Load(path string) (*Config, error) {
	c := &Config{}
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "config %s: unknown key %q", path, undecoded[0].String())
	}
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadOrDefault loads path if it exists and returns defaults otherwise.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// Write encodes c as TOML to path.
func (c *Config) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		f.Close()
		return fmt.Errorf("encode config: %w", err)
	}
	return f.Close()
}

// =============================================================================
// Defaults and Validation
// =============================================================================

// SetDefaults fills every unset value. It is idempotent.
func (c *Config) SetDefaults() {
	if c.Canvas.Width == 0 {
		c.Canvas.Width = DefaultWidth
	}
	if c.Canvas.Height == 0 {
		c.Canvas.Height = DefaultHeight
	}
	if c.Canvas.Grid == 0 {
		c.Canvas.Grid = geom.GridUnit
	}

	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.FetchTimeout.Duration == 0 {
		c.Server.FetchTimeout.Duration = DefaultFetchTimeout
	}
	if c.Server.PruneSchedule == "" {
		c.Server.PruneSchedule = DefaultPruneEvery
	}

	if c.Store.Backend == "" {
		c.Store.Backend = store.BackendFile
	}
	if c.Store.Backend == store.BackendFile && c.Store.Path == "" {
		if dir, err := store.DefaultDir(); err == nil {
			c.Store.Path = dir
		}
	}

	if c.Cache.Backend == "" {
		c.Cache.Backend = DefaultCacheBackend
	}
	if c.Cache.Backend == CacheFile && c.Cache.Dir == "" {
		if dir, err := CacheDir(); err == nil {
			c.Cache.Dir = dir
		}
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "canvas size must be positive, got %dx%d", c.Canvas.Width, c.Canvas.Height)
	}
	if c.Canvas.Grid < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "grid must not be negative, got %v", c.Canvas.Grid)
	}
	if !validBackend(c.Store.Backend) {
		return errors.New(errors.ErrCodeInvalidInput, "invalid store backend %q (must be one of: %v)", c.Store.Backend, store.Backends)
	}
	switch c.Store.Backend {
	case store.BackendSQLite, store.BackendPostgres, store.BackendMySQL:
		if c.Store.DSN == "" {
			return errors.New(errors.ErrCodeInvalidInput, "store backend %s requires dsn", c.Store.Backend)
		}
	case store.BackendRedis, store.BackendMongo:
		if c.Store.URL == "" {
			return errors.New(errors.ErrCodeInvalidInput, "store backend %s requires url", c.Store.Backend)
		}
	}
	switch c.Cache.Backend {
	case CacheNone, CacheFile:
	case CacheRedis:
		if c.Cache.URL == "" {
			return errors.New(errors.ErrCodeInvalidInput, "cache backend redis requires url")
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "invalid cache backend %q (must be one of: none, file, redis)", c.Cache.Backend)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.New(errors.ErrCodeInvalidInput, "invalid log level %q (must be one of: debug, info, warn, error)", c.Log.Level)
	}
	return nil
}

func validBackend(name string) bool {
	for _, b := range store.Backends {
		if b == name {
			return true
		}
	}
	return false
}

// =============================================================================
// Paths
// =============================================================================

// CacheDir returns the cache directory using XDG standard (~/.cache/framecraft/).
func CacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}

// DefaultPath returns the config file location (~/.config/framecraft/config.toml).
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}
