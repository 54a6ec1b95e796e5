package editor

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/framecraft/pkg/errors"
	"github.com/matzehuels/framecraft/pkg/geom"
	"github.com/matzehuels/framecraft/pkg/scene"
)

// Default canvas size.
const (
	DefaultCanvasWidth  = 1200
	DefaultCanvasHeight = 800
)

// Prober resolves the native pixel size of an image source.
// media.Loader implements it.
type Prober interface {
	Probe(ctx context.Context, src string) (geom.Size, error)
}

// ProberFunc adapts a function to Prober.
type ProberFunc func(ctx context.Context, src string) (geom.Size, error)

// Probe calls f.
func (f ProberFunc) Probe(ctx context.Context, src string) (geom.Size, error) { return f(ctx, src) }

// Options configures a Controller.
type Options struct {
	// Canvas is the logical canvas size.
	Canvas geom.Size

	// Grid is the snap unit.
	Grid float64

	// Surface receives paint objects. Defaults to an in-memory surface.
	Surface scene.Surface

	// Prober resolves image sizes. When nil, images bound without a known
	// size stay unresolved and backgrounds install without a fetch.
	Prober Prober

	// Logger defaults to a discard logger.
	Logger *log.Logger

	// NewID generates frame and image ids. Defaults to random UUIDs.
	NewID func() string

	// CascadeDelete removes bound images together with their frame. When
	// false the images stay on the canvas, keep their last clip and stop
	// tracking frame edits.
	CascadeDelete bool
}

// SetDefaults fills zero-valued fields.
func (o *Options) SetDefaults() {
	if o.Canvas.Width == 0 {
		o.Canvas.Width = DefaultCanvasWidth
	}
	if o.Canvas.Height == 0 {
		o.Canvas.Height = DefaultCanvasHeight
	}
	if o.Grid == 0 {
		o.Grid = geom.GridUnit
	}
	if o.Surface == nil {
		o.Surface = scene.NewMemory(o.Canvas)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
}

// Validate checks option values.
func (o *Options) Validate() error {
	if !o.Canvas.Valid() {
		return errors.New(errors.ErrCodeInvalidInput, "canvas size must be positive, got %gx%g", o.Canvas.Width, o.Canvas.Height)
	}
	if o.Grid <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "grid unit must be positive, got %g", o.Grid)
	}
	return nil
}
