package editor

import (
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/framecraft/pkg/errors"
	"github.com/matzehuels/framecraft/pkg/frame"
	"github.com/matzehuels/framecraft/pkg/geom"
	"github.com/matzehuels/framecraft/pkg/observability"
	"github.com/matzehuels/framecraft/pkg/scene"
	"github.com/matzehuels/framecraft/pkg/snap"
)

// BackgroundNodeID is the surface id of the background node.
const BackgroundNodeID = "background"

// Controller owns one editing session. It is safe for concurrent use;
// all operations are serialized.
type Controller struct {
	mu sync.Mutex

	// events holds hook calls made under mu; unlock delivers them.
	events []func()

	opts    Options
	canvas  geom.Size
	model   *frame.Model
	surface scene.Surface
	snapper snap.Snapper
	logger  *log.Logger

	// gen is bumped whenever the arrangement is replaced wholesale.
	gen uint64

	// resolving maps image ids to their in-flight size resolution. A
	// completion whose task is no longer the entry is stale.
	resolving map[string]*Task
	bgTask    *Task
	pending   map[*Task]struct{}

	selected string
}

// New creates a controller with an empty canvas.
func New(opts Options) (*Controller, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts.Surface.SetSize(opts.Canvas)
	return &Controller{
		opts:      opts,
		canvas:    opts.Canvas,
		model:     frame.NewModel(),
		surface:   opts.Surface,
		snapper:   snap.New(opts.Grid),
		logger:    opts.Logger,
		resolving: make(map[string]*Task),
		pending:   make(map[*Task]struct{}),
	}, nil
}

// Close cancels all in-flight tasks. The controller stays usable.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.unlock()
	c.cancelPending(func(*Task) bool { return true })
}

// =============================================================================
// Queries
// =============================================================================

// Canvas returns the logical canvas size.
func (c *Controller) Canvas() geom.Size {
	c.mu.Lock()
	defer c.unlock()
	return c.canvas
}

// Grid returns the snap unit.
func (c *Controller) Grid() float64 { return c.snapper.Unit }

// Generation returns the current generation.
func (c *Controller) Generation() uint64 {
	c.mu.Lock()
	defer c.unlock()
	return c.gen
}

// Surface returns the rendering surface.
func (c *Controller) Surface() scene.Surface { return c.surface }

// ListFrames returns copies of the frames in z-order.
func (c *Controller) ListFrames() []*frame.Frame {
	c.mu.Lock()
	defer c.unlock()
	frames := c.model.Frames()
	out := make([]*frame.Frame, len(frames))
	for i, f := range frames {
		out[i] = f.Clone()
	}
	return out
}

// Frame returns a copy of the frame with the given id.
func (c *Controller) Frame(id string) (*frame.Frame, bool) {
	c.mu.Lock()
	defer c.unlock()
	f, ok := c.model.Frame(id)
	if !ok {
		return nil, false
	}
	return f.Clone(), true
}

// ImagesBoundTo returns copies of the images bound to frameID in z-order.
func (c *Controller) ImagesBoundTo(frameID string) []frame.Image {
	c.mu.Lock()
	defer c.unlock()
	return copyImages(c.model.ImagesBoundTo(frameID))
}

// Images returns copies of all images in z-order.
func (c *Controller) Images() []frame.Image {
	c.mu.Lock()
	defer c.unlock()
	return copyImages(c.model.Images())
}

// Image returns a copy of the image with the given id.
func (c *Controller) Image(id string) (frame.Image, bool) {
	c.mu.Lock()
	defer c.unlock()
	img, ok := c.model.Image(id)
	if !ok {
		return frame.Image{}, false
	}
	return copyImage(img), true
}

// Background returns the installed background source.
func (c *Controller) Background() (string, bool) {
	c.mu.Lock()
	defer c.unlock()
	src := c.backgroundSource()
	return src, src != ""
}

// Selected returns the id of the selected node, or "".
func (c *Controller) Selected() string {
	c.mu.Lock()
	defer c.unlock()
	return c.selected
}

// View returns the surface's zoom/pan transform.
func (c *Controller) View() scene.View { return c.surface.View() }

// SetView sets the surface's zoom/pan transform. It is display-only and
// never serialized.
func (c *Controller) SetView(v scene.View) { c.surface.SetView(v) }

// =============================================================================
// Bulk
// =============================================================================

// Clear removes every frame and image and starts a new generation. The
// background is kept.
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.unlock()
	c.clearArrangement()
	c.logger.Debug("cleared canvas", "generation", c.gen)
}

// clearArrangement drops frames, images and their in-flight tasks.
func (c *Controller) clearArrangement() {
	c.gen++
	c.cancelPending(func(t *Task) bool { return t.kind == TaskImage })
	c.resolving = make(map[string]*Task)
	for _, f := range c.model.Frames() {
		c.surface.Remove(f.ID)
	}
	for _, img := range c.model.Images() {
		c.surface.Remove(img.ID)
	}
	c.model.Clear()
	c.selected = ""
}

// =============================================================================
// Task bookkeeping
// =============================================================================

func (c *Controller) track(t *Task) {
	c.pending[t] = struct{}{}
}

// settle removes t from the pending set. Called under the lock by every
// completion before it applies its result.
func (c *Controller) settle(t *Task) {
	delete(c.pending, t)
}

func (c *Controller) cancelPending(match func(*Task) bool) {
	for t := range c.pending {
		if match(t) {
			t.Cancel()
		}
	}
}

// emit queues an observability call until the lock is released, so hooks
// can call back into the controller. c.mu must be held.
func (c *Controller) emit(fn func()) {
	c.events = append(c.events, fn)
}

// unlock releases c.mu and then runs the queued hook calls in order.
func (c *Controller) unlock() {
	events := c.events
	c.events = nil
	c.mu.Unlock()
	for _, fn := range events {
		fn()
	}
}

// stale reports and records a dropped completion.
func (c *Controller) stale(t *Task, reason string) error {
	c.logger.Debug("dropped stale completion",
		"kind", t.kind,
		"target", t.target,
		"generation", t.gen,
		"current", c.gen,
		"reason", reason)
	ctx, kind, target := t.ctx, string(t.kind), t.target
	c.emit(func() { observability.Editor().OnStaleCompletion(ctx, kind, target) })
	return errors.New(errors.ErrCodeStaleCompletion, "%s %s: %s", t.kind, t.target, reason)
}

// run executes probe off the lock and hands its result to apply under the
// lock.
func (c *Controller) run(t *Task, src string, apply func(size geom.Size, err error) error) {
	c.track(t)
	go func() {
		size, err := c.opts.Prober.Probe(t.ctx, src)

		c.mu.Lock()
		c.settle(t)
		result := apply(size, err)
		c.unlock()

		t.finish(result)
	}()
}

func copyImages(imgs []*frame.Image) []frame.Image {
	out := make([]frame.Image, len(imgs))
	for i, img := range imgs {
		out[i] = copyImage(img)
	}
	return out
}

func copyImage(img *frame.Image) frame.Image {
	out := *img
	if img.Clip != nil {
		cl := *img.Clip
		out.Clip = &cl
	}
	return out
}
