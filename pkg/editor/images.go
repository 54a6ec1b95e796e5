package editor

import (
	"context"

	"github.com/matzehuels/framecraft/pkg/clip"
	"github.com/matzehuels/framecraft/pkg/errors"
	"github.com/matzehuels/framecraft/pkg/fit"
	"github.com/matzehuels/framecraft/pkg/frame"
	"github.com/matzehuels/framecraft/pkg/geom"
	"github.com/matzehuels/framecraft/pkg/observability"
	"github.com/matzehuels/framecraft/pkg/scene"
)

// ImageSource locates an image. Size is the native size when the caller
// already knows it; a zero Size is resolved through the Prober.
type ImageSource struct {
	URL  string    `json:"url"`
	Size geom.Size `json:"size,omitempty"`
}

// BindImage places a new image inside the frame and returns a task that
// completes once the image is fitted. The image is clipped to the frame
// immediately; the fit waits for the native size. The task's Target is the
// new image's id.
func (c *Controller) BindImage(ctx context.Context, frameID string, src ImageSource) (*Task, error) {
	if err := errors.ValidateSource(src.URL); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSource, err, "bind image")
	}

	c.mu.Lock()
	defer c.unlock()

	f, ok := c.model.Frame(frameID)
	if !ok {
		return nil, errors.New(errors.ErrCodeFrameNotFound, "frame %s not found", frameID)
	}

	img := &frame.Image{
		ID:      c.opts.NewID(),
		Source:  src.URL,
		FrameOf: f.ID,
		Box:     geom.Box{Position: f.Box.Position, Scale: geom.Identity},
	}
	clip.Apply(f, img)
	c.model.AddImage(img)
	c.surface.Create(img.ID, scene.ImageRole{ImageID: img.ID, FrameOf: f.ID})

	t := c.resolve(ctx, img, src.Size)
	c.logger.Debug("bound image", "frame", f.ID, "image", img.ID, "source", src.URL)
	return t, nil
}

// SetImageSource replaces an image's source and re-resolves its size. Any
// resolution still in flight for the image becomes stale.
func (c *Controller) SetImageSource(ctx context.Context, imageID string, src ImageSource) (*Task, error) {
	if err := errors.ValidateSource(src.URL); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSource, err, "set image source")
	}

	c.mu.Lock()
	defer c.unlock()

	img, ok := c.model.Image(imageID)
	if !ok {
		return nil, errors.New(errors.ErrCodeImageNotFound, "image %s not found", imageID)
	}
	img.Source = src.URL
	img.Native = geom.Size{}
	return c.resolve(ctx, img, src.Size), nil
}

// RemoveImage deletes an image from the canvas.
func (c *Controller) RemoveImage(imageID string) error {
	c.mu.Lock()
	defer c.unlock()
	if _, ok := c.model.Image(imageID); !ok {
		return errors.New(errors.ErrCodeImageNotFound, "image %s not found", imageID)
	}
	c.removeImage(imageID)
	return nil
}

func (c *Controller) removeImage(id string) {
	if t, ok := c.resolving[id]; ok {
		t.Cancel()
		delete(c.resolving, id)
	}
	c.model.RemoveImage(id)
	c.surface.Remove(id)
	if c.selected == id {
		c.selected = ""
	}
}

// resolve starts, or short-circuits, native size resolution for img.
// Called with the lock held.
func (c *Controller) resolve(ctx context.Context, img *frame.Image, known geom.Size) *Task {
	if prev, ok := c.resolving[img.ID]; ok {
		prev.Cancel()
		delete(c.resolving, img.ID)
	}

	if known.Valid() {
		c.applyNative(img, known)
		return completedTask(TaskImage, img.ID, c.gen, nil)
	}

	c.syncImageNode(img)
	if c.opts.Prober == nil {
		c.logger.Warn("image size unknown, fit deferred", "image", img.ID, "source", img.Source)
		return completedTask(TaskImage, img.ID, c.gen,
			errors.New(errors.ErrCodeInvalidSource, "no prober configured for %s", img.Source))
	}

	t := newTask(ctx, TaskImage, img.ID, c.gen)
	c.resolving[img.ID] = t
	c.run(t, img.Source, func(size geom.Size, err error) error {
		return c.completeImage(t, size, err)
	})
	return t
}

// completeImage applies a size resolution. Called with the lock held.
func (c *Controller) completeImage(t *Task, size geom.Size, err error) error {
	if t.gen != c.gen {
		return c.stale(t, "generation ended")
	}
	if c.resolving[t.target] != t {
		return c.stale(t, "superseded")
	}
	delete(c.resolving, t.target)

	img, ok := c.model.Image(t.target)
	if !ok {
		return c.stale(t, "image removed")
	}
	if err != nil {
		c.logger.Warn("image size unavailable, fit deferred", "image", img.ID, "source", img.Source, "error", err)
		return errors.Wrap(errors.ErrCodeInvalidSource, err, "resolve %s", img.Source)
	}
	if !size.Valid() {
		c.logger.Warn("image size unavailable, fit deferred", "image", img.ID, "source", img.Source)
		return errors.New(errors.ErrCodeInvalidSource, "image %s has no size", img.Source)
	}
	c.applyNative(img, size)
	return nil
}

// applyNative records the native size and fits the image into its frame.
// Orphaned and free images are placed at natural size where they stand.
func (c *Controller) applyNative(img *frame.Image, size geom.Size) {
	img.Native = size
	img.Box.Base = size
	if f, ok := c.model.Frame(img.FrameOf); ok {
		clip.Apply(f, img)
		c.fitImage(f, img)
	} else {
		img.Box.Scale = geom.Identity
	}
	c.syncImageNode(img)
}

// fitImage scales img into f under the frame's fit policy.
func (c *Controller) fitImage(f *frame.Frame, img *frame.Image) {
	p, err := fit.Place(img.Native, f.Rect(), f.Fit)
	if err != nil {
		c.logger.Warn("fit deferred", "frame", f.ID, "image", img.ID, "error", err)
		return
	}
	img.Box = p.Box(img.Native)
	id, policy := f.ID, f.Fit.String()
	c.emit(func() { observability.Editor().OnFit(context.Background(), id, policy, p.Scale) })
}

func (c *Controller) syncImageNode(img *frame.Image) {
	n, ok := c.surface.Node(img.ID)
	if !ok {
		return
	}
	n.SetSource(img.Source)
	n.SetPosition(img.Box.Position)
	n.SetSize(img.Box.Base)
	n.SetScale(img.Box.Scale)
	n.SetRotation(img.Rotation)
	n.SetClip(img.Clip)
}
