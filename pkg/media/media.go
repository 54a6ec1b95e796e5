// Package media fetches image sources and probes their native size.
//
// Sources are http(s) URLs, file:// URLs or plain filesystem paths; a
// loader with RemoteOnly set accepts only the first. Only the
// image header is decoded, so probing a large photo is cheap once its bytes
// are in hand. PNG, JPEG, GIF, WebP, BMP and TIFF are recognized.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/framecraft/pkg/cache"
	"github.com/matzehuels/framecraft/pkg/errors"
	"github.com/matzehuels/framecraft/pkg/geom"
	"github.com/matzehuels/framecraft/pkg/httputil"
	"github.com/matzehuels/framecraft/pkg/observability"
)

// Defaults for NewLoader.
const (
	DefaultMaxBytes = 32 << 20
	DefaultAttempts = 3
	DefaultTimeout  = 30 * time.Second
)

// Info describes a probed image.
type Info struct {
	Size   geom.Size `json:"size"`
	Format string    `json:"format"`
}

// Loader fetches and probes image sources. The zero value is not usable;
// construct with NewLoader.
type Loader struct {
	Client   *http.Client
	Cache    cache.Cache
	Keyer    cache.Keyer
	Logger   *log.Logger
	MaxBytes int64
	Attempts int
	Delay    time.Duration

	// BaseDir resolves relative file paths. Empty means the working directory.
	BaseDir string

	// RemoteOnly rejects file:// URLs and plain paths. Set it when sources
	// come from untrusted callers.
	RemoteOnly bool
}

// NewLoader returns a loader backed by c. A nil cache disables caching and
// a nil logger discards output.
func NewLoader(c cache.Cache, logger *log.Logger) *Loader {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Loader{
		Client:   &http.Client{Timeout: DefaultTimeout},
		Cache:    c,
		Keyer:    cache.NewDefaultKeyer(),
		Logger:   logger,
		MaxBytes: DefaultMaxBytes,
		Attempts: DefaultAttempts,
		Delay:    time.Second,
	}
}

// Close releases the cache.
func (l *Loader) Close() error { return l.Cache.Close() }

// Probe returns the native size of the image at src. It implements the
// prober used by the editor. Failures carry INVALID_SOURCE.
func (l *Loader) Probe(ctx context.Context, src string) (geom.Size, error) {
	info, err := l.Info(ctx, src)
	if err != nil {
		return geom.Size{}, err
	}
	return info.Size, nil
}

// Info probes src, consulting the cache first.
func (l *Loader) Info(ctx context.Context, src string) (Info, error) {
	if err := errors.ValidateSource(src); err != nil {
		return Info{}, errors.Wrap(errors.ErrCodeInvalidSource, err, "invalid image source")
	}

	key := l.Keyer.ProbeKey(src)
	if data, ok, _ := l.Cache.Get(ctx, key); ok {
		var info Info
		if json.Unmarshal(data, &info) == nil && info.Size.Valid() {
			observability.Cache().OnCacheHit(ctx, cache.KeyTypeProbe)
			return info, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, cache.KeyTypeProbe)

	data, err := l.Fetch(ctx, src)
	if err != nil {
		return Info{}, err
	}
	info, err := Decode(data)
	if err != nil {
		return Info{}, errors.Wrap(errors.ErrCodeInvalidSource, err, "decode %s", src)
	}

	if enc, err := json.Marshal(info); err == nil {
		if err := l.Cache.Set(ctx, key, enc, cache.TTLProbe); err != nil {
			l.Logger.Warn("cache write failed", "key", key, "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, cache.KeyTypeProbe, len(enc))
		}
	}
	l.Logger.Debug("probed image", "source", src, "width", info.Size.Width, "height", info.Size.Height, "format", info.Format)
	return info, nil
}

// Fetch returns the raw bytes of src. Remote sources are retried on
// transient failures and cached.
func (l *Loader) Fetch(ctx context.Context, src string) ([]byte, error) {
	u, err := url.Parse(src)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSource, err, "parse %s", src)
	}

	local := u.Scheme == "" || u.Scheme == "file"
	if local && l.RemoteOnly {
		return nil, errors.New(errors.ErrCodeInvalidSource, "local image sources are not accepted")
	}

	switch u.Scheme {
	case "http", "https":
		return l.fetchRemote(ctx, src)
	case "file":
		return l.readFile(u.Path)
	case "":
		return l.readFile(src)
	default:
		return nil, errors.New(errors.ErrCodeInvalidSource, "unsupported source scheme %q", u.Scheme)
	}
}

func (l *Loader) fetchRemote(ctx context.Context, src string) ([]byte, error) {
	key := l.Keyer.BytesKey(src)
	if data, ok, _ := l.Cache.Get(ctx, key); ok {
		observability.Cache().OnCacheHit(ctx, cache.KeyTypeBytes)
		return data, nil
	}
	observability.Cache().OnCacheMiss(ctx, cache.KeyTypeBytes)

	var data []byte
	err := httputil.Retry(ctx, l.Attempts, l.Delay, func() error {
		var err error
		data, err = httputil.Fetch(ctx, l.Client, src, l.MaxBytes)
		if err != nil {
			l.Logger.Debug("fetch failed", "source", src, "error", err)
		}
		return err
	})
	if err != nil {
		code := errors.ErrCodeInvalidSource
		if ctx.Err() != nil {
			code = errors.ErrCodeTimeout
		}
		return nil, errors.Wrap(code, err, "fetch %s", src)
	}

	if err := l.Cache.Set(ctx, key, data, cache.TTLBytes); err != nil {
		l.Logger.Warn("cache write failed", "key", key, "error", err)
	} else {
		observability.Cache().OnCacheSet(ctx, cache.KeyTypeBytes, len(data))
	}
	return data, nil
}

func (l *Loader) readFile(path string) ([]byte, error) {
	if !filepath.IsAbs(path) && l.BaseDir != "" {
		path = filepath.Join(l.BaseDir, path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSource, err, "open %s", path)
	}
	if l.MaxBytes > 0 && info.Size() > l.MaxBytes {
		return nil, errors.New(errors.ErrCodeInvalidSource, "%s exceeds %d bytes", path, l.MaxBytes)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSource, err, "read %s", path)
	}
	return data, nil
}

// Decode reads the image header in data and returns its size and format.
func Decode(data []byte) (Info, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, err
	}
	size := geom.Size{Width: float64(cfg.Width), Height: float64(cfg.Height)}
	if !size.Valid() {
		return Info{}, errors.New(errors.ErrCodeInvalidSource, "image has zero size (%dx%d)", cfg.Width, cfg.Height)
	}
	return Info{Size: size, Format: format}, nil
}
