package template

import (
	"github.com/matzehuels/framecraft/pkg/frame"
	"github.com/matzehuels/framecraft/pkg/geom"
)

// Version is the schema version written by Encode.
const Version = 1

// DefaultCanvas is written for documents that carry no canvas, which is
// the case for every legacy shape that omitted one.
var DefaultCanvas = Canvas{Width: 1200, Height: 800}

// Canvas is the logical canvas size.
type Canvas struct {
	Width  int `json:"width" bson:"width"`
	Height int `json:"height" bson:"height"`
}

// IsZero reports whether the canvas size is unspecified. Legacy documents
// without a canvas decode to the zero value.
func (c Canvas) IsZero() bool { return c.Width <= 0 || c.Height <= 0 }

// Size returns the canvas as a geom.Size.
func (c Canvas) Size() geom.Size {
	return geom.Size{Width: float64(c.Width), Height: float64(c.Height)}
}

// CanvasOf converts a geom.Size to a Canvas, rounding to whole units.
func CanvasOf(s geom.Size) Canvas {
	return Canvas{Width: int(s.Width + 0.5), Height: int(s.Height + 0.5)}
}

// Record is one frame in a template document. W and H are visual sizes.
type Record struct {
	ID   string    `json:"id" bson:"id"`
	X    float64   `json:"x" bson:"x"`
	Y    float64   `json:"y" bson:"y"`
	W    float64   `json:"w" bson:"w"`
	H    float64   `json:"h" bson:"h"`
	Fit  frame.Fit `json:"fit" bson:"fit"`
	Name string    `json:"name" bson:"name"`
}

// Document is the versioned template snapshot.
type Document struct {
	Version    int      `json:"version" bson:"version"`
	Canvas     Canvas   `json:"canvas" bson:"canvas"`
	Background *string  `json:"background" bson:"background"`
	Frames     []Record `json:"frames" bson:"frames"`
}

// BackgroundURL returns the background source or "".
func (d *Document) BackgroundURL() string {
	if d.Background == nil {
		return ""
	}
	return *d.Background
}

// Encode builds a document from the arrangement. frames must be in z-order.
// An empty background yields a null background.
func Encode(canvas geom.Size, background string, frames []*frame.Frame) *Document {
	doc := &Document{
		Version: Version,
		Canvas:  CanvasOf(canvas),
		Frames:  make([]Record, 0, len(frames)),
	}
	if background != "" {
		bg := background
		doc.Background = &bg
	}
	for _, f := range frames {
		doc.Frames = append(doc.Frames, RecordOf(f))
	}
	return doc
}

// RecordOf converts a frame to its wire record.
func RecordOf(f *frame.Frame) Record {
	return Record{
		ID:   f.ID,
		X:    f.Box.Position.X,
		Y:    f.Box.Position.Y,
		W:    f.Box.VisualWidth(),
		H:    f.Box.VisualHeight(),
		Fit:  f.Fit,
		Name: f.Name,
	}
}

// Frame instantiates a frame from the record: default styling, geometry,
// fit and name from the record. The base size is the recorded visual size
// with identity scale. Sizes below one grid unit are raised to it.
func (r Record) Frame() *frame.Frame {
	w, h := max(r.W, geom.GridUnit), max(r.H, geom.GridUnit)
	return &frame.Frame{
		ID:    r.ID,
		Name:  r.Name,
		Fit:   r.Fit,
		Box:   geom.NewBox(r.X, r.Y, w, h),
		Style: frame.DefaultStyle(),
	}
}
