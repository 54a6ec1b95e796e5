package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestWatchFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "t.json")
	other := filepath.Join(dir, "other.json")
	if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 8)
	done := make(chan error, 1)
	logger := log.NewWithOptions(io.Discard, log.Options{})
	go func() {
		done <- watchFile(ctx, path, logger, func() { changed <- struct{}{} })
	}()

	// The watcher starts asynchronously, so keep touching the file until a
	// change is reported. Writes are spaced beyond the debounce window.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(300 * time.Millisecond)
	defer tick.Stop()
	for seen := false; !seen; {
		select {
		case <-changed:
			seen = true
		case <-tick.C:
			_ = os.WriteFile(other, []byte("{}"), 0644)
			_ = os.WriteFile(path, []byte(`{"frames": []}`), 0644)
		case <-deadline:
			t.Fatal("no change reported")
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("watchFile: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watchFile did not return after cancel")
	}
}
