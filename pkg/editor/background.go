package editor

import (
	"context"

	"github.com/matzehuels/framecraft/pkg/errors"
	"github.com/matzehuels/framecraft/pkg/frame"
	"github.com/matzehuels/framecraft/pkg/geom"
	"github.com/matzehuels/framecraft/pkg/scene"
)

// SetBackground fetches the image at url and installs it as the canvas
// background once it resolves. The previous background stays in place
// until then, and also if the fetch fails.
func (c *Controller) SetBackground(ctx context.Context, url string) (*Task, error) {
	if err := errors.ValidateSource(url); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSource, err, "set background")
	}

	c.mu.Lock()
	defer c.unlock()
	return c.startBackground(ctx, TaskBackground, url, false), nil
}

// ClearBackground removes the background and abandons any pending fetch.
func (c *Controller) ClearBackground() {
	c.mu.Lock()
	defer c.unlock()
	c.dropBackground()
}

func (c *Controller) dropBackground() {
	if c.bgTask != nil {
		c.bgTask.Cancel()
		c.bgTask = nil
	}
	c.surface.Remove(BackgroundNodeID)
	c.model.ClearBackground()
}

// startBackground begins a background fetch. When soft is set a failed
// fetch is logged and the task succeeds, leaving the canvas without a
// background. Called with the lock held.
func (c *Controller) startBackground(ctx context.Context, kind TaskKind, url string, soft bool) *Task {
	if c.bgTask != nil {
		c.bgTask.Cancel()
	}

	if c.opts.Prober == nil {
		c.bgTask = nil
		c.installBackground(url, geom.Size{})
		return completedTask(kind, url, c.gen, nil)
	}

	t := newTask(ctx, kind, url, c.gen)
	c.bgTask = t
	c.run(t, url, func(size geom.Size, err error) error {
		if c.bgTask != t {
			return c.stale(t, "background replaced")
		}
		c.bgTask = nil
		if err == nil && !size.Valid() {
			err = errors.New(errors.ErrCodeInvalidSource, "background %s has no size", url)
		}
		if err != nil {
			c.logger.Warn("background unavailable", "source", url, "error", err)
			if soft {
				return nil
			}
			return errors.Wrap(errors.ErrCodeInvalidSource, err, "background %s", url)
		}
		c.installBackground(url, size)
		return nil
	})
	return t
}

// installBackground replaces the background node. The node is stretched to
// the canvas and kept at the bottom of the stack.
func (c *Controller) installBackground(url string, native geom.Size) {
	c.surface.Remove(BackgroundNodeID)
	n := c.surface.Create(BackgroundNodeID, scene.BackgroundRole{SourceURL: url})
	n.SetSource(url)
	n.SetPosition(geom.Point{})
	if native.Valid() {
		n.SetSize(native)
		n.SetScale(geom.Scale{X: c.canvas.Width / native.Width, Y: c.canvas.Height / native.Height})
	} else {
		n.SetSize(c.canvas)
		n.SetScale(geom.Identity)
	}
	c.surface.SendToBack(BackgroundNodeID)
	c.model.SetBackground(&frame.Background{SourceURL: url, Native: native})
	c.logger.Debug("installed background", "source", url)
}

// backgroundSource reads the background reference for serialization: the
// role tag first, then the node's resource locator.
func (c *Controller) backgroundSource() string {
	n, ok := c.surface.Node(BackgroundNodeID)
	if !ok {
		return ""
	}
	if r, ok := n.Role().(scene.BackgroundRole); ok && r.SourceURL != "" {
		return r.SourceURL
	}
	return n.Source()
}

// restretchBackground refits the background node to the canvas after a
// canvas resize.
func (c *Controller) restretchBackground() {
	bg := c.model.Background()
	if bg == nil {
		return
	}
	c.installBackground(bg.SourceURL, bg.Native)
}
