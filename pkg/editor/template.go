package editor

import (
	"context"

	"github.com/matzehuels/framecraft/pkg/errors"
	"github.com/matzehuels/framecraft/pkg/observability"
	"github.com/matzehuels/framecraft/pkg/template"
)

// SerializeTemplate snapshots the arrangement as a current-version
// document. Images are not included.
func (c *Controller) SerializeTemplate() *template.Document {
	c.mu.Lock()
	defer c.unlock()

	doc := template.Encode(c.canvas, c.backgroundSource(), c.model.Frames())
	n := len(doc.Frames)
	c.emit(func() { observability.Editor().OnTemplateSave(context.Background(), n) })
	return doc
}

// LoadTemplateJSON decodes data in any accepted shape and loads it.
// Unrecognized documents fail with UNSUPPORTED_FORMAT and leave the
// arrangement untouched.
func (c *Controller) LoadTemplateJSON(ctx context.Context, data []byte) (*Task, error) {
	doc, shape, err := template.DecodeShape(data)
	if err != nil {
		observability.Editor().OnTemplateLoad(ctx, "", 0, err)
		c.logger.Debug("rejected template", "error", err)
		return nil, err
	}
	return c.load(ctx, doc, shape.String())
}

// LoadTemplate replaces the arrangement with doc: the canvas is resized
// when doc carries a size, all frames, images and the background are
// cleared, and one frame is created per record. The returned task
// completes when the background has been installed, or immediately when
// doc has none. A background that fails to load is logged and the canvas
// stays without one.
func (c *Controller) LoadTemplate(ctx context.Context, doc *template.Document) (*Task, error) {
	return c.load(ctx, doc, template.ShapeCurrent.String())
}

func (c *Controller) load(ctx context.Context, doc *template.Document, shape string) (*Task, error) {
	if err := check(doc); err != nil {
		observability.Editor().OnTemplateLoad(ctx, shape, 0, err)
		return nil, err
	}

	c.mu.Lock()
	defer c.unlock()

	c.clearArrangement()
	c.dropBackground()

	if !doc.Canvas.IsZero() {
		c.canvas = doc.Canvas.Size()
		c.surface.SetSize(c.canvas)
	}
	for _, r := range doc.Frames {
		c.addFrame(r.Frame())
	}

	c.logger.Info("loaded template",
		"shape", shape,
		"frames", len(doc.Frames),
		"canvas", c.canvas,
		"generation", c.gen)
	n := len(doc.Frames)
	c.emit(func() { observability.Editor().OnTemplateLoad(ctx, shape, n, nil) })

	if url := doc.BackgroundURL(); url != "" {
		if err := errors.ValidateSource(url); err != nil {
			c.logger.Warn("background unavailable", "source", url, "error", err)
			return completedTask(TaskLoad, "", c.gen, nil), nil
		}
		return c.startBackground(ctx, TaskLoad, url, true), nil
	}
	return completedTask(TaskLoad, "", c.gen, nil), nil
}

// check rejects documents that Decode would not have produced.
func check(doc *template.Document) error {
	if doc == nil {
		return errors.New(errors.ErrCodeUnsupportedFormat, "nil document")
	}
	if doc.Version != 0 && doc.Version != template.Version {
		return errors.New(errors.ErrCodeUnsupportedFormat, "unsupported template version %d", doc.Version)
	}
	seen := make(map[string]bool, len(doc.Frames))
	for i, r := range doc.Frames {
		if r.ID == "" {
			return errors.New(errors.ErrCodeUnsupportedFormat, "frame %d: id is required", i)
		}
		if seen[r.ID] {
			return errors.New(errors.ErrCodeUnsupportedFormat, "frame %d: duplicate id %q", i, r.ID)
		}
		seen[r.ID] = true
		if !r.Fit.Valid() {
			return errors.New(errors.ErrCodeUnsupportedFormat, "frame %d: unknown fit %q", i, r.Fit)
		}
	}
	return nil
}
