package cache

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// entryMagic starts every entry file. It is followed by the expiry as
// big-endian Unix nanoseconds (0 for none) and then the raw value, so image
// bytes are stored as is.
var entryMagic = []byte("fce1")

const (
	entryHeader = 12
	entrySuffix = ".entry"
)

// FileCache keeps entries as files under one directory, grouped by key
// type (probe, bytes, preview). Writes go through a temporary file and a
// rename, so the CLI and a running server can share the directory.
type FileCache struct {
	dir string
}

// NewFileCache opens or creates a cache in dir.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *FileCache) Dir() string { return c.dir }

// Get returns the entry for key. Expired and unreadable entries are removed
// and reported as a miss.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	data, ok := decodeEntry(raw, time.Now())
	if !ok {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return data, true, nil
}

// Set stores data under key. A ttl of zero never expires.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	var expires int64
	if ttl > 0 {
		expires = time.Now().Add(ttl).UnixNano()
	}
	buf := make([]byte, entryHeader, entryHeader+len(data))
	copy(buf, entryMagic)
	binary.BigEndian.PutUint64(buf[len(entryMagic):], uint64(expires))
	buf = append(buf, data...)

	path := c.path(key)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Delete removes key. A missing key is not an error.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	if err := os.Remove(c.path(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Prune removes expired and unreadable entries and returns how many were
// removed. It stops early if ctx is cancelled.
func (c *FileCache) Prune(ctx context.Context) (int, error) {
	now := time.Now()
	removed := 0
	err := c.walk(func(path string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		if _, ok := decodeEntry(raw, now); ok {
			return nil
		}
		if os.Remove(path) == nil {
			removed++
		}
		return nil
	})
	return removed, err
}

// Clear removes every entry and returns how many were removed.
func (c *FileCache) Clear() (int, error) {
	removed := 0
	err := c.walk(func(path string) error {
		if err := os.Remove(path); err != nil {
			return err
		}
		removed++
		return nil
	})
	return removed, err
}

// Usage summarizes the entries of one key type.
type Usage struct {
	Kind    string
	Entries int
	Bytes   int64
	Expired int
}

// Usage reports entry counts and sizes per key type, sorted by kind. Only
// entry headers are read.
func (c *FileCache) Usage() ([]Usage, error) {
	now := time.Now()
	byKind := map[string]*Usage{}
	err := c.walk(func(path string) error {
		rel, err := filepath.Rel(c.dir, path)
		if err != nil {
			return err
		}
		kind, _, _ := strings.Cut(filepath.ToSlash(rel), "/")
		u := byKind[kind]
		if u == nil {
			u = &Usage{Kind: kind}
			byKind[kind] = u
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil
		}
		u.Entries++
		u.Bytes += info.Size()
		if !entryLive(path, now) {
			u.Expired++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]Usage, 0, len(byKind))
	for _, u := range byKind {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out, nil
}

// entryLive reads just the header of the entry at path.
func entryLive(path string, now time.Time) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	head := make([]byte, entryHeader)
	if _, err := io.ReadFull(f, head); err != nil {
		return false
	}
	_, ok := decodeEntry(head, now)
	return ok
}

func (c *FileCache) walk(fn func(path string) error) error {
	return filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, entrySuffix) {
			return nil
		}
		return fn(path)
	})
}

// Close is a no-op.
func (c *FileCache) Close() error { return nil }

// path maps key to <dir>/<type>/<hh>/<rest>.entry, where type is the key's
// prefix up to the first colon and the rest is the hash of the whole key.
func (c *FileCache) path(key string) string {
	kind := "other"
	if i := strings.IndexByte(key, ':'); i > 0 {
		switch k := key[:i]; k {
		case KeyTypeProbe, KeyTypeBytes, KeyTypePreview:
			kind = k
		}
	}
	h := Hash([]byte(key))
	return filepath.Join(c.dir, kind, h[:2], h[2:]+entrySuffix)
}

// decodeEntry returns the value stored in raw, or false when raw is not an
// entry or has expired at now.
func decodeEntry(raw []byte, now time.Time) ([]byte, bool) {
	if len(raw) < entryHeader || !bytes.Equal(raw[:len(entryMagic)], entryMagic) {
		return nil, false
	}
	expires := int64(binary.BigEndian.Uint64(raw[len(entryMagic):entryHeader]))
	if expires != 0 && now.UnixNano() > expires {
		return nil, false
	}
	return raw[entryHeader:], true
}

var _ Cache = (*FileCache)(nil)
