package editor

import (
	"strings"

	"github.com/matzehuels/framecraft/pkg/clip"
	"github.com/matzehuels/framecraft/pkg/errors"
	"github.com/matzehuels/framecraft/pkg/frame"
	"github.com/matzehuels/framecraft/pkg/scene"
)

// Patch is a partial frame update. Nil fields are left unchanged. W and H
// are visual sizes.
type Patch struct {
	Name *string    `json:"name,omitempty"`
	Fit  *frame.Fit `json:"fit,omitempty"`
	X    *float64   `json:"x,omitempty"`
	Y    *float64   `json:"y,omitempty"`
	W    *float64   `json:"w,omitempty"`
	H    *float64   `json:"h,omitempty"`
}

// IsZero reports whether the patch changes nothing.
func (p Patch) IsZero() bool {
	return p.Name == nil && p.Fit == nil && p.X == nil && p.Y == nil && p.W == nil && p.H == nil
}

func (p Patch) validate() error {
	if p.Fit != nil && !p.Fit.Valid() {
		return errors.New(errors.ErrCodeInvalidFit, "unknown fit policy %q", *p.Fit)
	}
	if p.W != nil && *p.W <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "width must be positive, got %g", *p.W)
	}
	if p.H != nil && *p.H <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "height must be positive, got %g", *p.H)
	}
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return errors.New(errors.ErrCodeInvalidInput, "name cannot be empty")
	}
	return nil
}

// CreateFrame adds a frame with default size centered on the canvas and
// snapped to the grid, and returns a copy of it.
func (c *Controller) CreateFrame() *frame.Frame {
	c.mu.Lock()
	defer c.unlock()

	f := frame.New(c.opts.NewID(), c.canvas, c.model.FrameCount())
	f.Box = c.snapper.Box(f.Box)
	c.addFrame(f)
	c.logger.Debug("created frame", "frame", f.ID, "name", f.Name)
	return f.Clone()
}

func (c *Controller) addFrame(f *frame.Frame) {
	c.model.AddFrame(f)
	c.surface.Create(f.ID, scene.FrameRole{FrameID: f.ID})
	c.syncFrameNode(f)
}

// DeleteFrame removes a frame. Bound images are removed too when
// CascadeDelete is set; otherwise they are left orphaned.
func (c *Controller) DeleteFrame(id string) error {
	c.mu.Lock()
	defer c.unlock()

	bound := c.model.ImagesBoundTo(id)
	if !c.model.DeleteFrame(id) {
		return errors.New(errors.ErrCodeFrameNotFound, "frame %s not found", id)
	}
	c.surface.Remove(id)
	if c.selected == id {
		c.selected = ""
	}

	if c.opts.CascadeDelete {
		for _, img := range bound {
			c.removeImage(img.ID)
		}
	} else if len(bound) > 0 {
		c.logger.Debug("orphaned images", "frame", id, "count", len(bound))
	}
	return nil
}

// UpdateFrame applies p to the frame, snaps it, then re-fits and re-clips
// its bound images. It returns a copy of the updated frame. An invalid
// patch leaves the frame untouched.
func (c *Controller) UpdateFrame(id string, p Patch) (*frame.Frame, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.unlock()

	f, ok := c.model.Frame(id)
	if !ok {
		return nil, errors.New(errors.ErrCodeFrameNotFound, "frame %s not found", id)
	}

	if p.Name != nil {
		f.Name = *p.Name
	}
	if p.Fit != nil {
		f.Fit = *p.Fit
	}
	if p.X != nil {
		f.Box.Position.X = *p.X
	}
	if p.Y != nil {
		f.Box.Position.Y = *p.Y
	}
	if p.W != nil {
		f.Box.SetVisualWidth(*p.W)
	}
	if p.H != nil {
		f.Box.SetVisualHeight(*p.H)
	}

	c.completeFrameEdit(f)
	return f.Clone(), nil
}

// completeFrameEdit snaps f and propagates the result.
func (c *Controller) completeFrameEdit(f *frame.Frame) {
	f.Box = c.snapper.Box(f.Box)
	c.syncFrameNode(f)
	c.refit(f)
}

// refit re-applies the fit policy and clip to every image bound to f.
// Unresolved images are clipped only; their fit waits for the size.
func (c *Controller) refit(f *frame.Frame) {
	for _, img := range clip.Sync(c.model, f.ID) {
		if img.Resolved() {
			c.fitImage(f, img)
		}
		c.syncImageNode(img)
	}
}

func (c *Controller) syncFrameNode(f *frame.Frame) {
	n, ok := c.surface.Node(f.ID)
	if !ok {
		return
	}
	n.SetPosition(f.Box.Position)
	n.SetSize(f.Box.Base)
	n.SetScale(f.Box.Scale)
}
