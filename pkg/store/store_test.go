package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/framecraft/pkg/errors"
	"github.com/matzehuels/framecraft/pkg/frame"
	"github.com/matzehuels/framecraft/pkg/template"
)

func sampleDoc(frames int) *template.Document {
	bg := "https://example.com/bg.png"
	doc := &template.Document{
		Version:    template.Version,
		Canvas:     template.Canvas{Width: 1200, Height: 800},
		Background: &bg,
		Frames:     []template.Record{},
	}
	for i := 0; i < frames; i++ {
		doc.Frames = append(doc.Frames, template.Record{
			ID:   string(rune('a' + i)),
			X:    float64(i * 20),
			Y:    40,
			W:    200,
			H:    120,
			Fit:  frame.FitCover,
			Name: "Frame",
		})
	}
	return doc
}

// testStore runs the behavior every backend must share.
func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("GetMissing", func(t *testing.T) {
		_, err := s.Get(ctx, "missing")
		if !errors.Is(err, errors.ErrCodeTemplateNotFound) {
			t.Errorf("Get() error = %v, want TEMPLATE_NOT_FOUND", err)
		}
	})

	t.Run("PutGet", func(t *testing.T) {
		if err := s.Put(ctx, "poster", sampleDoc(2)); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		got, err := s.Get(ctx, "poster")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got.Version != template.Version {
			t.Errorf("Version = %d, want %d", got.Version, template.Version)
		}
		if got.Canvas != (template.Canvas{Width: 1200, Height: 800}) {
			t.Errorf("Canvas = %+v", got.Canvas)
		}
		if got.BackgroundURL() != "https://example.com/bg.png" {
			t.Errorf("Background = %q", got.BackgroundURL())
		}
		if len(got.Frames) != 2 || got.Frames[1].ID != "b" || got.Frames[1].X != 20 {
			t.Errorf("Frames = %+v", got.Frames)
		}
	})

	t.Run("PutLegacyWithoutCanvas", func(t *testing.T) {
		legacy, err := template.Decode([]byte(`[{"id": "a", "x": 0, "y": 0, "w": 100, "h": 80}]`))
		if err != nil {
			t.Fatal(err)
		}
		if err := s.Put(ctx, "legacy", legacy); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		got, err := s.Get(ctx, "legacy")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got.Canvas != template.DefaultCanvas || len(got.Frames) != 1 {
			t.Errorf("Get() = %+v", got)
		}
		if err := s.Delete(ctx, "legacy"); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("PutOverwrites", func(t *testing.T) {
		if err := s.Put(ctx, "poster", sampleDoc(3)); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		got, err := s.Get(ctx, "poster")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if len(got.Frames) != 3 {
			t.Errorf("len(Frames) = %d, want 3", len(got.Frames))
		}
	})

	t.Run("List", func(t *testing.T) {
		if err := s.Put(ctx, "card", sampleDoc(1)); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		list, err := s.List(ctx)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(list) != 2 {
			t.Fatalf("len(List) = %d, want 2", len(list))
		}
		if list[0].ID != "card" || list[1].ID != "poster" {
			t.Errorf("List order = %s, %s", list[0].ID, list[1].ID)
		}
		if list[0].Frames != 1 || list[1].Frames != 3 {
			t.Errorf("Frames = %d, %d", list[0].Frames, list[1].Frames)
		}
		if list[1].UpdatedAt.IsZero() {
			t.Error("UpdatedAt is zero")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := s.Delete(ctx, "card"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if _, err := s.Get(ctx, "card"); !errors.IsNotFound(err) {
			t.Errorf("Get() after Delete error = %v", err)
		}
		if err := s.Delete(ctx, "card"); !errors.Is(err, errors.ErrCodeTemplateNotFound) {
			t.Errorf("second Delete() error = %v, want TEMPLATE_NOT_FOUND", err)
		}
	})

	t.Run("InvalidPut", func(t *testing.T) {
		tests := []struct {
			name string
			id   string
			doc  *template.Document
			code errors.Code
		}{
			{"empty id", "", sampleDoc(0), errors.ErrCodeInvalidID},
			{"traversal", "../x", sampleDoc(0), errors.ErrCodeInvalidID},
			{"nil doc", "x", nil, errors.ErrCodeInvalidInput},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if err := s.Put(ctx, tt.id, tt.doc); !errors.Is(err, tt.code) {
					t.Errorf("Put() error = %v, want %s", err, tt.code)
				}
			})
		}
	})
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	testStore(t, s)
}

func TestFileStoreFilesAreTemplates(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := s.Put(ctx, "poster", sampleDoc(1)); err != nil {
		t.Fatal(err)
	}

	doc, err := template.ReadFile(filepath.Join(dir, "poster.json"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(doc.Frames) != 1 {
		t.Errorf("len(Frames) = %d, want 1", len(doc.Frames))
	}

	// Stray and undecodable files are ignored by List.
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0644)
	os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0644)
	list, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != "poster" {
		t.Errorf("List() = %+v", list)
	}
}

func TestFileStoreDefaultDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg")
	dir, err := DefaultDir()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/tmp/xdg", "framecraft", "templates"); dir != want {
		t.Errorf("DefaultDir() = %q, want %q", dir, want)
	}
}

func TestSQLiteStore(t *testing.T) {
	s, err := OpenSQL(context.Background(), BackendSQLite, filepath.Join(t.TempDir(), "templates.db"))
	if err != nil {
		t.Fatalf("OpenSQL() error = %v", err)
	}
	defer s.Close()
	testStore(t, s)
}

func TestSQLiteStoreReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "templates.db")

	s, err := OpenSQL(ctx, BackendSQLite, path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Put(ctx, "poster", sampleDoc(2)); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = OpenSQL(ctx, BackendSQLite, path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()
	doc, err := s.Get(ctx, "poster")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(doc.Frames) != 2 {
		t.Errorf("len(Frames) = %d, want 2", len(doc.Frames))
	}
}

// External backends run only when a server is configured.
func TestPostgresStore(t *testing.T) { testExternal(t, BackendPostgres, "FRAMECRAFT_TEST_POSTGRES") }
func TestMySQLStore(t *testing.T)    { testExternal(t, BackendMySQL, "FRAMECRAFT_TEST_MYSQL") }
func TestRedisStore(t *testing.T)    { testExternal(t, BackendRedis, "FRAMECRAFT_TEST_REDIS") }
func TestMongoStore(t *testing.T)    { testExternal(t, BackendMongo, "FRAMECRAFT_TEST_MONGO") }

func testExternal(t *testing.T, backend, env string) {
	target := os.Getenv(env)
	if target == "" {
		t.Skipf("%s not set", env)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	opts := Options{Backend: backend, DSN: target, URL: target, Prefix: "framecraft-test:", Database: "framecraft_test"}
	s, err := Open(ctx, opts)
	if err != nil {
		t.Fatalf("Open(%s) error = %v", backend, err)
	}
	defer s.Close()

	for _, id := range []string{"poster", "card"} {
		_ = s.Delete(ctx, id)
	}
	testStore(t, s)
	_ = s.Delete(ctx, "poster")
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		opts    Options
		wantErr errors.Code
	}{
		{"memory", Options{Backend: BackendMemory}, ""},
		{"file", Options{Backend: BackendFile, Path: t.TempDir()}, ""},
		{"sqlite", Options{Backend: BackendSQLite, DSN: filepath.Join(t.TempDir(), "t.db")}, ""},
		{"sqlite without dsn", Options{Backend: BackendSQLite}, errors.ErrCodeInvalidInput},
		{"redis without url", Options{Backend: BackendRedis}, errors.ErrCodeInvalidInput},
		{"mongo without url", Options{Backend: BackendMongo}, errors.ErrCodeInvalidInput},
		{"unknown", Options{Backend: "etcd"}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(ctx, tt.opts)
			if tt.wantErr != "" {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Open() error = %v, want %s", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			s.Close()
		})
	}
}
