package frame

import (
	"fmt"

	"github.com/matzehuels/framecraft/pkg/geom"
)

// Default frame dimensions in canvas units.
const (
	DefaultWidth  = 400.0
	DefaultHeight = 300.0
)

// Style holds the drawing defaults applied to every frame placeholder.
// CornerRadius is shared with the clip regions derived from the frame.
type Style struct {
	Stroke       string    `json:"stroke"`
	StrokeWidth  float64   `json:"stroke_width"`
	Dash         []float64 `json:"dash,omitempty"`
	Fill         string    `json:"fill"`
	CornerRadius float64   `json:"corner_radius"`
}

// DefaultStyle returns the placeholder styling used for new and restored
// frames.
func DefaultStyle() Style {
	return Style{
		Stroke:       "#4f7cff",
		StrokeWidth:  2,
		Dash:         []float64{8, 6},
		Fill:         "rgba(79,124,255,0.08)",
		CornerRadius: 8,
	}
}

// Frame is a named placeholder region on the canvas.
type Frame struct {
	ID    string
	Name  string
	Fit   Fit
	Box   geom.Box
	Style Style
}

// New returns a frame with default geometry for a canvas of the given size.
// The frame is 400×300, centered and aligned to the grid. count is the
// number of frames currently on the canvas; the name is "Frame {count+1}".
func New(id string, canvas geom.Size, count int) *Frame {
	x := geom.Quantize(canvas.Width/2-DefaultWidth/2, geom.GridUnit)
	y := geom.Quantize(canvas.Height/2-DefaultHeight/2, geom.GridUnit)
	return &Frame{
		ID:    id,
		Name:  DefaultName(count),
		Fit:   DefaultFit,
		Box:   geom.NewBox(x, y, DefaultWidth, DefaultHeight),
		Style: DefaultStyle(),
	}
}

// DefaultName returns the name given to a frame created when count frames
// already exist. Names are not unique after deletions.
func DefaultName(count int) string {
	return fmt.Sprintf("Frame %d", count+1)
}

// Rect returns the frame's visual box in canvas coordinates.
func (f *Frame) Rect() geom.Rect { return f.Box.Rect() }

// Clone returns a deep copy of f.
func (f *Frame) Clone() *Frame {
	c := *f
	c.Style.Dash = append([]float64(nil), f.Style.Dash...)
	return &c
}
