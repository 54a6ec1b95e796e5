// Package observability lets the binary observe what the libraries do
// without the libraries knowing who is listening.
//
// Three event families are exposed, each behind a small interface:
// [EditorHooks] for template load, save and fitting, [CacheHooks] for the
// media cache, and [HTTPHooks] for image downloads. Every family starts out
// as a no-op. The binary swaps in real implementations once at startup:
//
//	observability.SetEditorHooks(observability.NewLogHooks(logger))
//
// and library code emits through the accessors:
//
//	observability.Cache().OnCacheMiss(ctx, cache.KeyTypeProbe)
//
// [LogHooks] is the implementation shipped with the CLI; it writes every
// event to a charmbracelet logger at debug level.
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// EditorHooks receives events from the layout controller. The controller
// delivers them after releasing its lock, so a hook may call back into it.
type EditorHooks interface {
	// OnTemplateLoad fires after a template document was decoded and
	// applied. shape names the layout it was read from; err is non-nil if
	// the load was rejected.
	OnTemplateLoad(ctx context.Context, shape string, frames int, err error)
	OnTemplateSave(ctx context.Context, frames int)

	// OnFit fires when an image is scaled into its frame.
	OnFit(ctx context.Context, frameID, policy string, scale float64)

	// OnStaleCompletion fires when an asynchronous size lookup finishes
	// after its frame or background was replaced.
	OnStaleCompletion(ctx context.Context, kind, id string)
}

// CacheHooks receives events from the media cache. keyType is one of the
// cache.KeyType constants.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events from image downloads.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError fires when no response was received at all.
	OnError(ctx context.Context, method, host, path string, err error)
}

type (
	NoopEditorHooks struct{}
	NoopCacheHooks  struct{}
	NoopHTTPHooks   struct{}
)

func (NoopEditorHooks) OnTemplateLoad(context.Context, string, int, error) {}
func (NoopEditorHooks) OnTemplateSave(context.Context, int)                {}
func (NoopEditorHooks) OnFit(context.Context, string, string, float64)     {}
func (NoopEditorHooks) OnStaleCompletion(context.Context, string, string)  {}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// registry is replaced wholesale on every change so readers never lock.
type registry struct {
	editor EditorHooks
	cache  CacheHooks
	http   HTTPHooks
}

var noop = registry{NoopEditorHooks{}, NoopCacheHooks{}, NoopHTTPHooks{}}

var current atomic.Pointer[registry]

func init() { Reset() }

func update(fn func(r *registry)) {
	for {
		old := current.Load()
		next := *old
		fn(&next)
		if current.CompareAndSwap(old, &next) {
			return
		}
	}
}

// SetEditorHooks installs h. A nil h leaves the current hooks in place.
func SetEditorHooks(h EditorHooks) {
	if h != nil {
		update(func(r *registry) { r.editor = h })
	}
}

// SetCacheHooks installs h. A nil h leaves the current hooks in place.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		update(func(r *registry) { r.cache = h })
	}
}

// SetHTTPHooks installs h. A nil h leaves the current hooks in place.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		update(func(r *registry) { r.http = h })
	}
}

func Editor() EditorHooks { return current.Load().editor }
func Cache() CacheHooks   { return current.Load().cache }
func HTTP() HTTPHooks     { return current.Load().http }

// Reset puts every family back to its no-op.
func Reset() {
	r := noop
	current.Store(&r)
}
