package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level. It implements
// all three hook families.
type LogHooks struct {
	logger *log.Logger
}

var (
	_ EditorHooks = (*LogHooks)(nil)
	_ CacheHooks  = (*LogHooks)(nil)
	_ HTTPHooks   = (*LogHooks)(nil)
)

// NewLogHooks returns hooks that log through l, prefixed with "events".
func NewLogHooks(l *log.Logger) *LogHooks {
	return &LogHooks{logger: l.WithPrefix("events")}
}

// Install registers h for every family.
func (h *LogHooks) Install() {
	SetEditorHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func (h *LogHooks) OnTemplateLoad(_ context.Context, shape string, frames int, err error) {
	if err != nil {
		h.logger.Debug("template rejected", "shape", shape, "error", err)
		return
	}
	h.logger.Debug("template loaded", "shape", shape, "frames", frames)
}

func (h *LogHooks) OnTemplateSave(_ context.Context, frames int) {
	h.logger.Debug("template saved", "frames", frames)
}

func (h *LogHooks) OnFit(_ context.Context, frameID, policy string, scale float64) {
	h.logger.Debug("image fitted", "frame", frameID, "fit", policy, "scale", scale)
}

func (h *LogHooks) OnStaleCompletion(_ context.Context, kind, id string) {
	h.logger.Debug("discarded stale result", "kind", kind, "id", id)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "kind", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "kind", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "kind", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("fetch", "method", method, "url", host+path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("fetched", "method", method, "url", host+path, "status", status, "elapsed", d.Round(time.Millisecond))
}

func (h *LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("fetch failed", "method", method, "url", host+path, "error", err)
}
