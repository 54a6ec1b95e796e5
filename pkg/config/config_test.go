package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/framecraft/pkg/errors"
	"github.com/matzehuels/framecraft/pkg/store"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/data")
	t.Setenv("XDG_CACHE_HOME", "/tmp/cache")

	c := Default()
	if c.Canvas.Width != 1200 || c.Canvas.Height != 800 || c.Canvas.Grid != 20 {
		t.Errorf("Canvas = %+v", c.Canvas)
	}
	if c.Server.Addr != ":8080" {
		t.Errorf("Addr = %q", c.Server.Addr)
	}
	if c.Server.FetchTimeout.Duration != 30*time.Second {
		t.Errorf("FetchTimeout = %v", c.Server.FetchTimeout)
	}
	if c.Store.Backend != store.BackendFile || c.Store.Path != filepath.Join("/tmp/data", "framecraft", "templates") {
		t.Errorf("Store = %+v", c.Store)
	}
	if c.Cache.Backend != CacheFile || c.Cache.Dir != filepath.Join("/tmp/cache", "framecraft") {
		t.Errorf("Cache = %+v", c.Cache)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[canvas]
width = 1080
height = 1350

[server]
addr = "127.0.0.1:9000"
fetch_timeout = "5s"

[store]
backend = "sqlite"
dsn = "/tmp/templates.db"

[cache]
backend = "none"

[log]
level = "debug"
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Canvas.Width != 1080 || c.Canvas.Height != 1350 {
		t.Errorf("Canvas = %+v", c.Canvas)
	}
	if c.Canvas.Grid != 20 {
		t.Errorf("Grid = %v, want default 20", c.Canvas.Grid)
	}
	if c.Server.Addr != "127.0.0.1:9000" || c.Server.FetchTimeout.Duration != 5*time.Second {
		t.Errorf("Server = %+v", c.Server)
	}
	opts := c.Store.Options()
	if opts.Backend != store.BackendSQLite || opts.DSN != "/tmp/templates.db" {
		t.Errorf("Store.Options() = %+v", opts)
	}
	if c.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", c.Log.Level)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax", "[canvas\nwidth = 1"},
		{"unknown key", "[canvas]\ndepth = 3"},
		{"negative canvas", "[canvas]\nwidth = -1"},
		{"negative grid", "[canvas]\ngrid = -5.0"},
		{"unknown store", "[store]\nbackend = \"etcd\""},
		{"sql without dsn", "[store]\nbackend = \"postgres\""},
		{"mongo without url", "[store]\nbackend = \"mongo\""},
		{"redis cache without url", "[cache]\nbackend = \"redis\""},
		{"unknown cache", "[cache]\nbackend = \"memcached\""},
		{"bad level", "[log]\nlevel = \"loud\""},
		{"bad duration", "[server]\nfetch_timeout = \"soon\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("Load() error = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	c, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if c.Canvas.Width != DefaultWidth {
		t.Errorf("Width = %d, want %d", c.Canvas.Width, DefaultWidth)
	}
	if _, err := LoadOrDefault(""); err != nil {
		t.Errorf("LoadOrDefault(\"\") error = %v", err)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	c := Default()
	c.Canvas.Width = 640
	c.Server.FetchTimeout.Duration = 90 * time.Second
	if err := c.Write(path); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Canvas.Width != 640 || got.Server.FetchTimeout.Duration != 90*time.Second {
		t.Errorf("round trip = %+v", got)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/cfg")
	path, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/tmp/cfg", "framecraft", "config.toml"); path != want {
		t.Errorf("DefaultPath() = %q, want %q", path, want)
	}
}
