package geom

// Box is a positioned rectangle with an unscaled base size and independent
// scale factors. The rendered size is always Base × Scale.
type Box struct {
	Position Point `json:"position"`
	Base     Size  `json:"base"`
	Scale    Scale `json:"scale"`
}

// NewBox returns a box at (x, y) with base size w×h and identity scale.
func NewBox(x, y, w, h float64) Box {
	return Box{
		Position: Point{X: x, Y: y},
		Base:     Size{Width: w, Height: h},
		Scale:    Identity,
	}
}

// VisualWidth returns the rendered width.
func (b Box) VisualWidth() float64 { return b.Base.Width * b.Scale.X }

// VisualHeight returns the rendered height.
func (b Box) VisualHeight() float64 { return b.Base.Height * b.Scale.Y }

// Visual returns the rendered size.
func (b Box) Visual() Size {
	return Size{Width: b.VisualWidth(), Height: b.VisualHeight()}
}

// SetVisualWidth solves the horizontal scale so the rendered width equals w.
// The scale is left unchanged when the base width is not positive.
func (b *Box) SetVisualWidth(w float64) {
	if b.Base.Width > 0 {
		b.Scale.X = w / b.Base.Width
	}
}

// SetVisualHeight solves the vertical scale so the rendered height equals h.
// The scale is left unchanged when the base height is not positive.
func (b *Box) SetVisualHeight(h float64) {
	if b.Base.Height > 0 {
		b.Scale.Y = h / b.Base.Height
	}
}

// SetVisualSize assigns both rendered dimensions. See SetVisualWidth.
func (b *Box) SetVisualSize(s Size) {
	b.SetVisualWidth(s.Width)
	b.SetVisualHeight(s.Height)
}

// Rect returns the box's rendered extent in canvas coordinates.
func (b Box) Rect() Rect {
	return Rect{X: b.Position.X, Y: b.Position.Y, Width: b.VisualWidth(), Height: b.VisualHeight()}
}

// Center returns the midpoint of the rendered extent.
func (b Box) Center() Point { return b.Rect().Center() }
