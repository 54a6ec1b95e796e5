// Package cache provides byte-level caching for image probes, fetched
// image bytes and rendered previews.
//
// Three backends implement [Cache]:
//   - [FileCache] stores entries as JSON files for CLI usage
//   - [RedisCache] stores entries in Redis for the server
//   - [NullCache] never stores anything
//
// Keys are produced by a [Keyer] so that every backend shares one key
// layout. Wrap a keyer with [NewScopedKeyer] to isolate namespaces.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the cached data and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default TTLs per entry kind. Probed dimensions never change for a given
// source, so they live longest.
const (
	TTLProbe   = 7 * 24 * time.Hour
	TTLBytes   = 24 * time.Hour
	TTLPreview = time.Hour
)

// Key type labels reported to cache hooks.
const (
	KeyTypeProbe   = "probe"
	KeyTypeBytes   = "bytes"
	KeyTypePreview = "preview"
)

// PreviewKeyOpts are the render options that distinguish preview entries.
type PreviewKeyOpts struct {
	Grid   bool    `json:"grid"`
	Images bool    `json:"images"`
	Unit   float64 `json:"unit"`
}

// Keyer generates cache keys.
type Keyer interface {
	// ProbeKey keys the probed native size of an image source.
	ProbeKey(source string) string

	// BytesKey keys the raw bytes of an image source.
	BytesKey(source string) string

	// PreviewKey keys a rendered preview of a template document.
	PreviewKey(docHash string, opts PreviewKeyOpts) string
}

// DefaultKeyer hashes sources so that keys are safe for every backend.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ProbeKey returns "probe:<sha256>".
func (DefaultKeyer) ProbeKey(source string) string {
	return kind(KeyTypeProbe, source)
}

// BytesKey returns "bytes:<sha256>".
func (DefaultKeyer) BytesKey(source string) string {
	return kind(KeyTypeBytes, source)
}

// PreviewKey returns "preview:<sha256>" over the document hash and options.
func (DefaultKeyer) PreviewKey(docHash string, opts PreviewKeyOpts) string {
	return kind(KeyTypePreview, docHash, opts)
}

// kind prefixes the digest of the JSON encoding of parts with keyType.
// Sources are hashed whole since URLs and paths may contain characters
// that file names and Redis keys should not.
func kind(keyType string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return keyType + ":" + digest(data)
}

// Hash returns the hex SHA-256 of data. Server previews are keyed by the
// hash of the stored template.
func Hash(data []byte) string {
	return digest(data)
}

func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ScopedKeyer wraps a Keyer with a prefix, for example to give each
// server deployment its own namespace in a shared Redis.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ProbeKey generates a prefixed probe key.
func (k *ScopedKeyer) ProbeKey(source string) string {
	return k.prefix + k.inner.ProbeKey(source)
}

// BytesKey generates a prefixed bytes key.
func (k *ScopedKeyer) BytesKey(source string) string {
	return k.prefix + k.inner.BytesKey(source)
}

// PreviewKey generates a prefixed preview key.
func (k *ScopedKeyer) PreviewKey(docHash string, opts PreviewKeyOpts) string {
	return k.prefix + k.inner.PreviewKey(docHash, opts)
}

// =============================================================================
// NullCache
// =============================================================================

// NullCache stores nothing; every Get misses. It backs --no-cache and the
// server when no cache is configured.
type NullCache struct{}

// NewNullCache creates a null cache.
func NewNullCache() *NullCache { return &NullCache{} }

func (*NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (*NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (*NullCache) Delete(context.Context, string) error { return nil }
func (*NullCache) Close() error { return nil }

var _ Cache = (*NullCache)(nil)
