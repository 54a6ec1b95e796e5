package editor

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/framecraft/pkg/errors"
	"github.com/matzehuels/framecraft/pkg/frame"
	"github.com/matzehuels/framecraft/pkg/geom"
	"github.com/matzehuels/framecraft/pkg/scene"
	"github.com/matzehuels/framecraft/pkg/template"
)

// =============================================================================
// Test helpers
// =============================================================================

// fakeProber serves fixed sizes. Sources with a gate block until the gate
// is closed or the probe's context is cancelled.
type fakeProber struct {
	mu    sync.Mutex
	sizes map[string]geom.Size
	errs  map[string]error
	gates map[string]chan struct{}
	calls int
}

func newFakeProber() *fakeProber {
	return &fakeProber{
		sizes: make(map[string]geom.Size),
		errs:  make(map[string]error),
		gates: make(map[string]chan struct{}),
	}
}

func (p *fakeProber) set(src string, w, h float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sizes[src] = geom.Size{Width: w, Height: h}
}

func (p *fakeProber) fail(src string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errs[src] = err
}

// gate makes src block and returns the function that releases it.
func (p *fakeProber) gate(src string) func() {
	ch := make(chan struct{})
	p.mu.Lock()
	p.gates[src] = ch
	p.mu.Unlock()
	return func() { close(ch) }
}

func (p *fakeProber) Probe(ctx context.Context, src string) (geom.Size, error) {
	p.mu.Lock()
	p.calls++
	gate := p.gates[src]
	size, err := p.sizes[src], p.errs[src]
	p.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return geom.Size{}, ctx.Err()
		}
	}
	if err != nil {
		return geom.Size{}, err
	}
	if !size.Valid() {
		return geom.Size{}, fmt.Errorf("unknown source %s", src)
	}
	return size, nil
}

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newController(t *testing.T, opts Options) *Controller {
	t.Helper()
	if opts.NewID == nil {
		opts.NewID = sequentialIDs()
	}
	c, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func wait(t *testing.T, task *Task) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := task.Wait(ctx)
	if err == context.DeadlineExceeded {
		t.Fatalf("task %s %s did not finish", task.Kind(), task.Target())
	}
	return err
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func ptr[T any](v T) *T { return &v }

// =============================================================================
// Frames
// =============================================================================

func TestNewValidatesOptions(t *testing.T) {
	if _, err := New(Options{Canvas: geom.Size{Width: -1, Height: 10}}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("negative canvas: err = %v, want INVALID_INPUT", err)
	}
	if _, err := New(Options{Grid: -5}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("negative grid: err = %v, want INVALID_INPUT", err)
	}
}

func TestCreateFrame(t *testing.T) {
	c := newController(t, Options{Canvas: geom.Size{Width: 1200, Height: 800}})

	f := c.CreateFrame()
	if f.Box.Position != (geom.Point{X: 400, Y: 260}) {
		t.Errorf("Position = %+v, want (400,260)", f.Box.Position)
	}
	if f.Box.VisualWidth() != 400 || f.Box.VisualHeight() != 300 {
		t.Errorf("size = %vx%v, want 400x300", f.Box.VisualWidth(), f.Box.VisualHeight())
	}
	if f.Fit != frame.FitCover || f.Name != "Frame 1" {
		t.Errorf("defaults: fit %q name %q", f.Fit, f.Name)
	}

	g := c.CreateFrame()
	if g.ID == f.ID {
		t.Error("frame ids must be unique")
	}
	if g.Name != "Frame 2" {
		t.Errorf("second frame name = %q, want Frame 2", g.Name)
	}

	n, ok := c.Surface().Node(f.ID)
	if !ok {
		t.Fatal("frame node missing from surface")
	}
	if r, ok := n.Role().(scene.FrameRole); !ok || r.FrameID != f.ID {
		t.Errorf("node role = %#v", n.Role())
	}

	// Names follow the live count, so they repeat after a delete.
	if err := c.DeleteFrame(f.ID); err != nil {
		t.Fatal(err)
	}
	if h := c.CreateFrame(); h.Name != "Frame 2" {
		t.Errorf("name after delete = %q, want Frame 2", h.Name)
	}
}

func TestListFramesReturnsCopies(t *testing.T) {
	c := newController(t, Options{})
	a := c.CreateFrame()
	b := c.CreateFrame()

	frames := c.ListFrames()
	if len(frames) != 2 || frames[0].ID != a.ID || frames[1].ID != b.ID {
		t.Fatalf("ListFrames = %v", frames)
	}
	frames[0].Name = "mutated"
	if f, _ := c.Frame(a.ID); f.Name == "mutated" {
		t.Error("ListFrames must not expose live frames")
	}
}

func TestUpdateFrame(t *testing.T) {
	c := newController(t, Options{Canvas: geom.Size{Width: 1200, Height: 800}})
	f := c.CreateFrame()

	got, err := c.UpdateFrame(f.ID, Patch{
		Name: ptr("Hero"),
		Fit:  ptr(frame.FitContain),
		X:    ptr(411.0),
		Y:    ptr(-9.0),
		W:    ptr(333.0),
		H:    ptr(5.0),
	})
	if err != nil {
		t.Fatalf("UpdateFrame: %v", err)
	}
	if got.Name != "Hero" || got.Fit != frame.FitContain {
		t.Errorf("fields = %q %q", got.Name, got.Fit)
	}
	if got.Box.Position != (geom.Point{X: 420, Y: 0}) {
		t.Errorf("Position = %+v, want snapped (420,0)", got.Box.Position)
	}
	if got.Box.VisualWidth() != 340 || got.Box.VisualHeight() != 20 {
		t.Errorf("size = %vx%v, want 340x20", got.Box.VisualWidth(), got.Box.VisualHeight())
	}
	if got.Box.Base != (geom.Size{Width: 400, Height: 300}) {
		t.Errorf("base size should be kept, got %+v", got.Box.Base)
	}

	tests := []struct {
		name string
		id   string
		p    Patch
		code errors.Code
	}{
		{"missing frame", "nope", Patch{Name: ptr("x")}, errors.ErrCodeFrameNotFound},
		{"bad fit", f.ID, Patch{Fit: ptr(frame.Fit("stretch"))}, errors.ErrCodeInvalidFit},
		{"zero width", f.ID, Patch{W: ptr(0.0)}, errors.ErrCodeInvalidInput},
		{"blank name", f.ID, Patch{Name: ptr("  ")}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.UpdateFrame(tt.id, tt.p); !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}

	after, _ := c.Frame(f.ID)
	if after.Name != "Hero" || after.Box.VisualWidth() != 340 {
		t.Error("rejected patches must not modify the frame")
	}
}

// =============================================================================
// Images
// =============================================================================

func TestBindImageKnownSize(t *testing.T) {
	tests := []struct {
		fit       frame.Fit
		wantScale float64
		wantPos   geom.Point
	}{
		{frame.FitCover, 3.0, geom.Point{X: 300, Y: 260}},
		{frame.FitContain, 2.0, geom.Point{X: 400, Y: 310}},
	}

	for _, tt := range tests {
		t.Run(tt.fit.String(), func(t *testing.T) {
			c := newController(t, Options{Canvas: geom.Size{Width: 1200, Height: 800}})
			f := c.CreateFrame()
			if _, err := c.UpdateFrame(f.ID, Patch{Fit: ptr(tt.fit)}); err != nil {
				t.Fatal(err)
			}

			task, err := c.BindImage(context.Background(), f.ID, ImageSource{
				URL:  "https://cdn.example.com/a.png",
				Size: geom.Size{Width: 200, Height: 100},
			})
			if err != nil {
				t.Fatalf("BindImage: %v", err)
			}
			if err := wait(t, task); err != nil {
				t.Fatalf("task: %v", err)
			}

			img, ok := c.Image(task.Target())
			if !ok {
				t.Fatal("image not found")
			}
			if !near(img.Box.Scale.X, tt.wantScale) || !near(img.Box.Scale.Y, tt.wantScale) {
				t.Errorf("scale = %+v, want %v", img.Box.Scale, tt.wantScale)
			}
			if img.Box.Position != tt.wantPos {
				t.Errorf("position = %+v, want %+v", img.Box.Position, tt.wantPos)
			}
			want := geom.Clip{Rect: geom.Rect{X: 400, Y: 260, Width: 400, Height: 300}, Radius: 8}
			if img.Clip == nil || *img.Clip != want {
				t.Errorf("clip = %+v, want %+v", img.Clip, want)
			}

			n, _ := c.Surface().Node(img.ID)
			if cl, ok := n.Clip(); !ok || cl != want {
				t.Errorf("node clip = %+v (%v)", cl, ok)
			}
			if r, ok := n.Role().(scene.ImageRole); !ok || r.FrameOf != f.ID {
				t.Errorf("node role = %#v", n.Role())
			}
		})
	}
}

func TestBindImageErrors(t *testing.T) {
	c := newController(t, Options{})
	f := c.CreateFrame()
	ctx := context.Background()

	if _, err := c.BindImage(ctx, "missing", ImageSource{URL: "a.png"}); !errors.Is(err, errors.ErrCodeFrameNotFound) {
		t.Errorf("missing frame: %v", err)
	}
	if _, err := c.BindImage(ctx, f.ID, ImageSource{URL: ""}); !errors.Is(err, errors.ErrCodeInvalidSource) {
		t.Errorf("empty source: %v", err)
	}

	// No prober: the image is bound and clipped but its fit is deferred.
	task, err := c.BindImage(ctx, f.ID, ImageSource{URL: "a.png"})
	if err != nil {
		t.Fatalf("BindImage: %v", err)
	}
	if err := wait(t, task); !errors.Is(err, errors.ErrCodeInvalidSource) {
		t.Errorf("task err = %v, want INVALID_SOURCE", err)
	}
	img, _ := c.Image(task.Target())
	if img.Resolved() || img.Clip == nil {
		t.Errorf("unresolved image should be clipped and unfitted: %+v", img)
	}
}

func TestBindImageAsync(t *testing.T) {
	p := newFakeProber()
	p.set("slow.png", 200, 100)
	release := p.gate("slow.png")

	c := newController(t, Options{Prober: p})
	f := c.CreateFrame()

	task, err := c.BindImage(context.Background(), f.ID, ImageSource{URL: "slow.png"})
	if err != nil {
		t.Fatalf("BindImage: %v", err)
	}
	select {
	case <-task.Done():
		t.Fatal("task finished before the probe completed")
	default:
	}
	if img, _ := c.Image(task.Target()); img.Resolved() {
		t.Error("image should be unresolved while the probe is pending")
	}

	release()
	if err := wait(t, task); err != nil {
		t.Fatalf("task: %v", err)
	}
	img, _ := c.Image(task.Target())
	if img.Native != (geom.Size{Width: 200, Height: 100}) || !near(img.Box.Scale.X, 3) {
		t.Errorf("image after resolve = %+v", img)
	}
}

func TestProbeFailureDefersFit(t *testing.T) {
	p := newFakeProber()
	p.fail("broken.png", fmt.Errorf("404"))
	c := newController(t, Options{Prober: p})
	f := c.CreateFrame()

	task, _ := c.BindImage(context.Background(), f.ID, ImageSource{URL: "broken.png"})
	if err := wait(t, task); !errors.Is(err, errors.ErrCodeInvalidSource) {
		t.Errorf("err = %v, want INVALID_SOURCE", err)
	}
	if imgs := c.ImagesBoundTo(f.ID); len(imgs) != 1 {
		t.Errorf("failed probe should keep the binding, got %d images", len(imgs))
	}
}

func TestSetImageSourceSupersedesPending(t *testing.T) {
	p := newFakeProber()
	p.set("first.png", 10, 10)
	release := p.gate("first.png")
	defer release()

	c := newController(t, Options{Prober: p})
	f := c.CreateFrame()
	ctx := context.Background()

	first, _ := c.BindImage(ctx, f.ID, ImageSource{URL: "first.png"})
	second, err := c.SetImageSource(ctx, first.Target(), ImageSource{URL: "second.png", Size: geom.Size{Width: 400, Height: 600}})
	if err != nil {
		t.Fatalf("SetImageSource: %v", err)
	}
	if err := wait(t, second); err != nil {
		t.Fatalf("second: %v", err)
	}
	if err := wait(t, first); !errors.Is(err, errors.ErrCodeStaleCompletion) {
		t.Errorf("first err = %v, want STALE_COMPLETION", err)
	}

	img, _ := c.Image(first.Target())
	if img.Source != "second.png" || img.Native != (geom.Size{Width: 400, Height: 600}) {
		t.Errorf("image = %+v", img)
	}

	if _, err := c.SetImageSource(ctx, "nope", ImageSource{URL: "x.png"}); !errors.Is(err, errors.ErrCodeImageNotFound) {
		t.Errorf("missing image: %v", err)
	}
}

func TestDeleteFrame(t *testing.T) {
	ctx := context.Background()
	src := ImageSource{URL: "a.png", Size: geom.Size{Width: 100, Height: 100}}

	t.Run("orphans by default", func(t *testing.T) {
		c := newController(t, Options{})
		f := c.CreateFrame()
		task, _ := c.BindImage(ctx, f.ID, src)
		before, _ := c.Image(task.Target())

		if err := c.DeleteFrame(f.ID); err != nil {
			t.Fatalf("DeleteFrame: %v", err)
		}
		img, ok := c.Image(task.Target())
		if !ok {
			t.Fatal("orphaned image should remain")
		}
		if *img.Clip != *before.Clip {
			t.Error("orphan should keep its last clip")
		}
		if _, ok := c.Surface().Node(img.ID); !ok {
			t.Error("orphan node should remain on the surface")
		}
	})

	t.Run("cascade", func(t *testing.T) {
		c := newController(t, Options{CascadeDelete: true})
		f := c.CreateFrame()
		task, _ := c.BindImage(ctx, f.ID, src)

		if err := c.DeleteFrame(f.ID); err != nil {
			t.Fatalf("DeleteFrame: %v", err)
		}
		if _, ok := c.Image(task.Target()); ok {
			t.Error("cascade should remove bound images")
		}
		if _, ok := c.Surface().Node(task.Target()); ok {
			t.Error("cascade should remove image nodes")
		}
	})

	t.Run("missing", func(t *testing.T) {
		c := newController(t, Options{})
		if err := c.DeleteFrame("nope"); !errors.Is(err, errors.ErrCodeFrameNotFound) {
			t.Errorf("err = %v, want FRAME_NOT_FOUND", err)
		}
	})
}

// =============================================================================
// Staleness
// =============================================================================

func TestStaleCompletionAfterClear(t *testing.T) {
	p := newFakeProber()
	p.set("slow.png", 50, 50)
	release := p.gate("slow.png")
	defer release()

	c := newController(t, Options{Prober: p})
	f := c.CreateFrame()
	task, _ := c.BindImage(context.Background(), f.ID, ImageSource{URL: "slow.png"})
	gen := c.Generation()

	c.Clear()
	if c.Generation() == gen {
		t.Error("Clear should start a new generation")
	}

	if err := wait(t, task); !errors.Is(err, errors.ErrCodeStaleCompletion) {
		t.Errorf("err = %v, want STALE_COMPLETION", err)
	}
	if len(c.Images()) != 0 || len(c.ListFrames()) != 0 {
		t.Error("stale completion must not resurrect state")
	}
}

func TestStaleCompletionAfterRemove(t *testing.T) {
	p := newFakeProber()
	p.set("slow.png", 50, 50)
	release := p.gate("slow.png")

	c := newController(t, Options{Prober: p})
	f := c.CreateFrame()
	task, _ := c.BindImage(context.Background(), f.ID, ImageSource{URL: "slow.png"})

	if err := c.RemoveImage(task.Target()); err != nil {
		t.Fatal(err)
	}
	release()
	if err := wait(t, task); !errors.Is(err, errors.ErrCodeStaleCompletion) {
		t.Errorf("err = %v, want STALE_COMPLETION", err)
	}
}

// =============================================================================
// Background
// =============================================================================

func TestSetBackground(t *testing.T) {
	p := newFakeProber()
	p.set("bg.jpg", 600, 400)
	c := newController(t, Options{Prober: p, Canvas: geom.Size{Width: 1200, Height: 800}})
	f := c.CreateFrame()

	task, err := c.SetBackground(context.Background(), "bg.jpg")
	if err != nil {
		t.Fatalf("SetBackground: %v", err)
	}
	if err := wait(t, task); err != nil {
		t.Fatalf("task: %v", err)
	}

	if src, ok := c.Background(); !ok || src != "bg.jpg" {
		t.Errorf("Background = %q %v", src, ok)
	}
	nodes := c.Surface().Nodes()
	if nodes[0].ID() != BackgroundNodeID {
		t.Errorf("background should be at the bottom, got %s", nodes[0].ID())
	}
	if nodes[0].RenderedSize() != (geom.Size{Width: 1200, Height: 800}) {
		t.Errorf("background should fill the canvas, got %+v", nodes[0].RenderedSize())
	}
	if _, ok := nodes[0].Clip(); ok {
		t.Error("background must not be clipped")
	}
	if nodes[1].ID() != f.ID {
		t.Errorf("frame should paint above the background")
	}

	// A failing replacement keeps the current background.
	p.fail("broken.jpg", fmt.Errorf("timeout"))
	task, _ = c.SetBackground(context.Background(), "broken.jpg")
	if err := wait(t, task); !errors.Is(err, errors.ErrCodeInvalidSource) {
		t.Errorf("err = %v, want INVALID_SOURCE", err)
	}
	if src, _ := c.Background(); src != "bg.jpg" {
		t.Errorf("Background = %q, want bg.jpg kept", src)
	}

	c.ClearBackground()
	if _, ok := c.Background(); ok {
		t.Error("ClearBackground should remove the background")
	}
}

func TestClearKeepsBackground(t *testing.T) {
	c := newController(t, Options{})
	c.CreateFrame()
	if _, err := c.SetBackground(context.Background(), "bg.png"); err != nil {
		t.Fatal(err)
	}
	c.Clear()
	if len(c.ListFrames()) != 0 {
		t.Error("Clear should remove frames")
	}
	if _, ok := c.Background(); !ok {
		t.Error("Clear should keep the background")
	}
}

func TestBackgroundSourceFallsBackToNode(t *testing.T) {
	c := newController(t, Options{})
	if _, err := c.SetBackground(context.Background(), "bg.png"); err != nil {
		t.Fatal(err)
	}
	n, _ := c.Surface().Node(BackgroundNodeID)
	n.SetRole(scene.BackgroundRole{})

	doc := c.SerializeTemplate()
	if doc.BackgroundURL() != "bg.png" {
		t.Errorf("background = %q, want node source", doc.BackgroundURL())
	}
}

// =============================================================================
// Templates
// =============================================================================

func TestSerializeLoadRoundTrip(t *testing.T) {
	c := newController(t, Options{Canvas: geom.Size{Width: 1080, Height: 1350}})
	a := c.CreateFrame()
	b := c.CreateFrame()
	if _, err := c.UpdateFrame(b.ID, Patch{Name: ptr("Side"), Fit: ptr(frame.FitContain), X: ptr(40.0), W: ptr(200.0)}); err != nil {
		t.Fatal(err)
	}
	if _, err := c.SetBackground(context.Background(), "https://cdn.example.com/bg.png"); err != nil {
		t.Fatal(err)
	}
	doc := c.SerializeTemplate()

	if doc.Frames[0].ID != a.ID || doc.Frames[1].ID != b.ID {
		t.Error("frames should serialize in z-order")
	}

	data, err := template.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	d := newController(t, Options{})
	task, err := d.LoadTemplateJSON(context.Background(), data)
	if err != nil {
		t.Fatalf("LoadTemplateJSON: %v", err)
	}
	if err := wait(t, task); err != nil {
		t.Fatalf("load task: %v", err)
	}

	again := d.SerializeTemplate()
	if again.Canvas != doc.Canvas || again.BackgroundURL() != doc.BackgroundURL() {
		t.Errorf("canvas/background = %+v %q", again.Canvas, again.BackgroundURL())
	}
	if len(again.Frames) != len(doc.Frames) {
		t.Fatalf("frames = %d, want %d", len(again.Frames), len(doc.Frames))
	}
	for i := range doc.Frames {
		if again.Frames[i] != doc.Frames[i] {
			t.Errorf("frame %d = %+v, want %+v", i, again.Frames[i], doc.Frames[i])
		}
	}
	if d.Canvas() != (geom.Size{Width: 1080, Height: 1350}) {
		t.Errorf("canvas = %+v", d.Canvas())
	}
}

func TestSerializeEmpty(t *testing.T) {
	c := newController(t, Options{})
	doc := c.SerializeTemplate()
	if doc.Background != nil || len(doc.Frames) != 0 || doc.Version != 1 {
		t.Errorf("empty document = %+v", doc)
	}
}

func TestLoadTemplateUnsupportedLeavesState(t *testing.T) {
	c := newController(t, Options{})
	f := c.CreateFrame()
	if _, err := c.SetBackground(context.Background(), "bg.png"); err != nil {
		t.Fatal(err)
	}
	before := c.SerializeTemplate()
	gen := c.Generation()

	inputs := []string{
		`42`,
		`{"shapes": []}`,
		`{"version": 7, "canvas": {"width": 1, "height": 1}, "frames": []}`,
		`[{"id": "a", "w": 1, "h": 1}, {"id": "a", "w": 1, "h": 1}]`,
	}
	for _, in := range inputs {
		if _, err := c.LoadTemplateJSON(context.Background(), []byte(in)); !errors.Is(err, errors.ErrCodeUnsupportedFormat) {
			t.Errorf("LoadTemplateJSON(%s) err = %v, want UNSUPPORTED_FORMAT", in, err)
		}
	}
	if _, err := c.LoadTemplate(context.Background(), nil); !errors.Is(err, errors.ErrCodeUnsupportedFormat) {
		t.Errorf("nil document: %v", err)
	}

	after := c.SerializeTemplate()
	if c.Generation() != gen || len(after.Frames) != 1 || after.Frames[0].ID != f.ID || after.BackgroundURL() != before.BackgroundURL() {
		t.Errorf("state changed after rejected load: %+v", after)
	}
}

func TestLoadLegacyKeepsCanvas(t *testing.T) {
	c := newController(t, Options{Canvas: geom.Size{Width: 900, Height: 600}})
	c.CreateFrame()

	task, err := c.LoadTemplateJSON(context.Background(), []byte(`[
		{"id": "x", "x": 13, "y": 7, "w": 210, "h": 90}
	]`))
	if err != nil {
		t.Fatalf("LoadTemplateJSON: %v", err)
	}
	if err := wait(t, task); err != nil {
		t.Fatal(err)
	}

	if c.Canvas() != (geom.Size{Width: 900, Height: 600}) {
		t.Errorf("legacy load should keep the canvas, got %+v", c.Canvas())
	}
	frames := c.ListFrames()
	if len(frames) != 1 || frames[0].ID != "x" {
		t.Fatalf("frames = %+v", frames)
	}
	// Loaded geometry is taken as-is.
	if frames[0].Box.Position != (geom.Point{X: 13, Y: 7}) || frames[0].Box.VisualWidth() != 210 {
		t.Errorf("frame = %+v", frames[0].Box)
	}
	if _, ok := c.Background(); ok {
		t.Error("legacy flat array has no background")
	}
}

func TestLoadBackgroundFailureIsSoft(t *testing.T) {
	p := newFakeProber()
	p.fail("gone.png", fmt.Errorf("404"))
	c := newController(t, Options{Prober: p})

	doc := &template.Document{
		Version:    1,
		Canvas:     template.Canvas{Width: 800, Height: 600},
		Background: ptr("gone.png"),
		Frames:     []template.Record{{ID: "a", X: 0, Y: 0, W: 100, H: 100, Fit: frame.FitCover, Name: "A"}},
	}
	task, err := c.LoadTemplate(context.Background(), doc)
	if err != nil {
		t.Fatalf("LoadTemplate: %v", err)
	}
	if err := wait(t, task); err != nil {
		t.Errorf("background failure should not fail the load: %v", err)
	}
	if _, ok := c.Background(); ok {
		t.Error("canvas should be left without a background")
	}
	if len(c.ListFrames()) != 1 {
		t.Error("frames should load even when the background cannot")
	}
}

func TestLoadSupersedesPendingBackground(t *testing.T) {
	p := newFakeProber()
	p.set("first.png", 10, 10)
	release := p.gate("first.png")
	defer release()

	c := newController(t, Options{Prober: p})
	first, err := c.LoadTemplateJSON(context.Background(), []byte(
		`{"version": 1, "canvas": {"width": 100, "height": 100}, "background": "first.png", "frames": []}`))
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.LoadTemplateJSON(context.Background(), []byte(
		`{"version": 1, "canvas": {"width": 200, "height": 200}, "background": null, "frames": []}`))
	if err != nil {
		t.Fatal(err)
	}
	if err := wait(t, second); err != nil {
		t.Fatal(err)
	}

	if err := wait(t, first); !errors.Is(err, errors.ErrCodeStaleCompletion) {
		t.Errorf("first load err = %v, want STALE_COMPLETION", err)
	}
	if _, ok := c.Background(); ok {
		t.Error("superseded background must not be installed")
	}
}

func TestLoadClearsImages(t *testing.T) {
	c := newController(t, Options{})
	f := c.CreateFrame()
	if _, err := c.BindImage(context.Background(), f.ID, ImageSource{URL: "a.png", Size: geom.Size{Width: 1, Height: 1}}); err != nil {
		t.Fatal(err)
	}

	if _, err := c.LoadTemplate(context.Background(), &template.Document{Version: 1}); err != nil {
		t.Fatal(err)
	}
	if len(c.Images()) != 0 || len(c.Surface().Nodes()) != 0 {
		t.Error("load should clear images and their nodes")
	}
}

// =============================================================================
// Events
// =============================================================================

func TestHandleEventTransform(t *testing.T) {
	c := newController(t, Options{Canvas: geom.Size{Width: 1200, Height: 800}})
	f := c.CreateFrame()
	task, _ := c.BindImage(context.Background(), f.ID, ImageSource{URL: "a.png", Size: geom.Size{Width: 200, Height: 100}})
	imgID := task.Target()

	n, _ := c.Surface().Node(f.ID)
	n.SetPosition(geom.Point{X: 413, Y: 267})
	n.SetScale(geom.Scale{X: 1.1, Y: 1})

	if err := c.HandleEvent(scene.Event{Kind: scene.EventTransform, NodeID: f.ID}); err != nil {
		t.Fatalf("transform: %v", err)
	}
	img, _ := c.Image(imgID)
	if img.Clip.X != 413 || img.Clip.Y != 267 || !near(img.Clip.Width, 440) {
		t.Errorf("clip should track the drag, got %+v", img.Clip)
	}

	if err := c.HandleEvent(scene.Event{Kind: scene.EventTransformEnd, NodeID: f.ID}); err != nil {
		t.Fatalf("transform end: %v", err)
	}
	got, _ := c.Frame(f.ID)
	if got.Box.Position != (geom.Point{X: 420, Y: 260}) {
		t.Errorf("Position = %+v, want snapped (420,260)", got.Box.Position)
	}
	if !near(got.Box.VisualWidth(), 440) || !near(got.Box.VisualHeight(), 300) {
		t.Errorf("size = %vx%v", got.Box.VisualWidth(), got.Box.VisualHeight())
	}
	if p := n.Position(); p != got.Box.Position {
		t.Errorf("node should receive the snapped position, got %+v", p)
	}

	img, _ = c.Image(imgID)
	// cover: max(440/200, 300/100) = 3
	if !near(img.Box.Scale.X, 3) || img.Clip.X != 420 {
		t.Errorf("image should be refit and reclipped: scale %+v clip %+v", img.Box.Scale, img.Clip)
	}
}

func TestHandleEventImageKeepsClip(t *testing.T) {
	c := newController(t, Options{})
	f := c.CreateFrame()
	task, _ := c.BindImage(context.Background(), f.ID, ImageSource{URL: "a.png", Size: geom.Size{Width: 200, Height: 100}})
	before, _ := c.Image(task.Target())

	n, _ := c.Surface().Node(task.Target())
	n.SetPosition(geom.Point{X: 0, Y: 0})
	n.SetRotation(15)
	if err := c.HandleEvent(scene.Event{Kind: scene.EventTransformEnd, NodeID: task.Target()}); err != nil {
		t.Fatal(err)
	}

	img, _ := c.Image(task.Target())
	if img.Box.Position != (geom.Point{}) || img.Rotation != 15 {
		t.Errorf("image transform not recorded: %+v", img)
	}
	if *img.Clip != *before.Clip {
		t.Error("image clip is independent of its own transform")
	}
}

func TestHandleEventSelect(t *testing.T) {
	c := newController(t, Options{})
	f := c.CreateFrame()

	if err := c.HandleEvent(scene.Event{Kind: scene.EventSelect, NodeID: f.ID}); err != nil {
		t.Fatal(err)
	}
	if c.Selected() != f.ID {
		t.Errorf("Selected = %q", c.Selected())
	}
	if err := c.HandleEvent(scene.Event{Kind: scene.EventSelect, NodeID: "nope"}); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("unknown node: %v", err)
	}
	if err := c.DeleteFrame(f.ID); err != nil {
		t.Fatal(err)
	}
	if c.Selected() != "" {
		t.Error("deleting the selected frame should clear the selection")
	}
}

func TestViewIsNotSerialized(t *testing.T) {
	c := newController(t, Options{})
	c.CreateFrame()
	before, _ := template.Marshal(c.SerializeTemplate())

	c.SetView(scene.View{Zoom: 2.5, Pan: geom.Point{X: -100, Y: 40}})
	after, _ := template.Marshal(c.SerializeTemplate())

	if string(before) != string(after) {
		t.Error("zoom/pan must not affect the template")
	}
	if c.View().Zoom != 2.5 {
		t.Errorf("View = %+v", c.View())
	}
}
