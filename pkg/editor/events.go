package editor

import (
	"github.com/matzehuels/framecraft/pkg/errors"
	"github.com/matzehuels/framecraft/pkg/frame"
	"github.com/matzehuels/framecraft/pkg/scene"
)

// HandleEvent applies a surface interaction. The node's geometry already
// reflects the user's edit when the event arrives.
//
// A transform in progress re-fits and re-clips the images bound to a
// frame; a finished transform also snaps the frame to the grid. Image nodes
// keep whatever transform the user gave them. The background ignores
// transforms and is stretched back over the canvas.
func (c *Controller) HandleEvent(ev scene.Event) error {
	c.mu.Lock()
	defer c.unlock()

	if ev.Kind == scene.EventSelect {
		if ev.NodeID == "" {
			c.selected = ""
			return nil
		}
		if _, ok := c.surface.Node(ev.NodeID); !ok {
			return errors.New(errors.ErrCodeNotFound, "node %s not found", ev.NodeID)
		}
		c.selected = ev.NodeID
		return nil
	}

	n, ok := c.surface.Node(ev.NodeID)
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "node %s not found", ev.NodeID)
	}

	switch r := n.Role().(type) {
	case scene.FrameRole:
		f, ok := c.model.Frame(r.FrameID)
		if !ok {
			return errors.New(errors.ErrCodeFrameNotFound, "frame %s not found", r.FrameID)
		}
		pullFrame(f, n)
		if ev.Kind == scene.EventTransformEnd {
			c.completeFrameEdit(f)
		} else {
			c.refit(f)
		}
	case scene.ImageRole:
		img, ok := c.model.Image(r.ImageID)
		if !ok {
			return errors.New(errors.ErrCodeImageNotFound, "image %s not found", r.ImageID)
		}
		pullImage(img, n)
	case scene.BackgroundRole:
		if ev.Kind == scene.EventTransformEnd {
			c.restretchBackground()
		}
	}
	return nil
}

func pullFrame(f *frame.Frame, n scene.Node) {
	f.Box.Position = n.Position()
	if b := n.Size(); b.Valid() {
		f.Box.Base = b
	}
	f.Box.Scale = n.Scale()
}

func pullImage(img *frame.Image, n scene.Node) {
	img.Box.Position = n.Position()
	img.Box.Scale = n.Scale()
	img.Rotation = n.Rotation()
}
