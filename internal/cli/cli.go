package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/framecraft/pkg/buildinfo"
	"github.com/matzehuels/framecraft/pkg/cache"
	"github.com/matzehuels/framecraft/pkg/config"
	"github.com/matzehuels/framecraft/pkg/editor"
	"github.com/matzehuels/framecraft/pkg/media"
	"github.com/matzehuels/framecraft/pkg/store"
	"github.com/matzehuels/framecraft/pkg/template"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath overrides the default config file location.
	ConfigPath string

	cfg *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Framecraft lays out image frames on a canvas",
		Long:         `Framecraft arranges placeholder frames on a fixed canvas, fits images into them, and saves the arrangement as a reusable JSON template.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", c.ConfigPath, "config file (default ~/.config/framecraft/config.toml)")

	root.AddCommand(c.templateCommand())
	root.AddCommand(c.frameCommand())
	root.AddCommand(c.fitCommand())
	root.AddCommand(c.migrateCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Shared Resources
// =============================================================================

// config loads the configuration once. A missing file yields defaults.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	path := c.ConfigPath
	if path == "" {
		if p, err := config.DefaultPath(); err == nil {
			path = p
		}
	}
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, err
	}
	if lvl, err := log.ParseLevel(cfg.Log.Level); err == nil && c.Logger.GetLevel() > lvl {
		c.Logger.SetLevel(lvl)
	}
	c.cfg = cfg
	return cfg, nil
}

// newCache opens the configured media cache.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cfg.Cache.URL)
	case config.CacheFile:
		if cfg.Cache.Dir == "" {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(cfg.Cache.Dir)
	default:
		return cache.NewNullCache(), nil
	}
}

// newLoader creates a media loader resolving relative paths against baseDir.
func (c *CLI) newLoader(ctx context.Context, noCache bool, baseDir string) (*media.Loader, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	l := media.NewLoader(ch, c.Logger)
	if cfg.Cache.Prefix != "" {
		l.Keyer = cache.NewScopedKeyer(cache.NewDefaultKeyer(), cfg.Cache.Prefix)
	}
	l.BaseDir = baseDir
	return l, nil
}

// openStore opens the configured template store.
func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("opening store", "backend", cfg.Store.Backend)
	return store.Open(ctx, cfg.Store.Options())
}

// newController creates a controller with the configured canvas. prober
// may be nil for commands that never bind images.
func (c *CLI) newController(prober editor.Prober) (*editor.Controller, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	return editor.New(editor.Options{
		Canvas: cfg.Canvas.Size(),
		Grid:   cfg.Canvas.Grid,
		Prober: prober,
		Logger: c.Logger,
	})
}

// openTemplate loads the template file at path into a new controller.
// Backgrounds are installed without fetching.
func (c *CLI) openTemplate(ctx context.Context, path string) (*editor.Controller, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ctl, err := c.newController(nil)
	if err != nil {
		return nil, err
	}
	if _, err := ctl.LoadTemplateJSON(ctx, data); err != nil {
		ctl.Close()
		return nil, err
	}
	return ctl, nil
}

// saveTemplate writes the controller's arrangement to path.
func saveTemplate(ctl *editor.Controller, path string) error {
	return template.WriteFile(ctl.SerializeTemplate(), path)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, falling back to the XDG
// default (~/.cache/framecraft/).
func (c *CLI) cacheDir() (string, error) {
	cfg, err := c.config()
	if err == nil && cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	return config.CacheDir()
}
