// Package snap quantizes a frame's geometry to the grid once an edit
// completes.
//
// Per axis:
//
//	position   = round(position/grid) × grid
//	visualSize = max(grid, round(visualSize/grid) × grid)
//
// The base size is kept and new scale factors are solved from it, so the
// frame's unscaled shape survives any number of snaps. Snapping an already
// snapped box is a no-op.
package snap

import (
	"math"

	"github.com/matzehuels/framecraft/pkg/geom"
)

// Snapper quantizes boxes to a grid.
type Snapper struct {
	Unit float64
}

// Default is the snapper for the fixed canvas grid.
var Default = Snapper{Unit: geom.GridUnit}

// New returns a snapper for the given grid unit. A non-positive unit falls
// back to geom.GridUnit.
func New(unit float64) Snapper {
	if unit <= 0 {
		unit = geom.GridUnit
	}
	return Snapper{Unit: unit}
}

// Position snaps a point to the grid.
func (s Snapper) Position(p geom.Point) geom.Point {
	return geom.Point{X: geom.Quantize(p.X, s.Unit), Y: geom.Quantize(p.Y, s.Unit)}
}

// Length snaps a visual length to the grid with a minimum of one unit.
func (s Snapper) Length(v float64) float64 {
	return math.Max(s.Unit, geom.Quantize(v, s.Unit))
}

// Box returns b snapped to the grid.
func (s Snapper) Box(b geom.Box) geom.Box {
	out := b
	out.Position = s.Position(b.Position)
	out.SetVisualSize(geom.Size{
		Width:  s.Length(b.VisualWidth()),
		Height: s.Length(b.VisualHeight()),
	})
	return out
}

// Snapped reports whether b is already on the grid within tolerance.
func (s Snapper) Snapped(b geom.Box) bool {
	const tol = 1e-6
	sb := s.Box(b)
	return geom.NearlyEqual(sb.Position.X, b.Position.X, tol) &&
		geom.NearlyEqual(sb.Position.Y, b.Position.Y, tol) &&
		geom.NearlyEqual(sb.VisualWidth(), b.VisualWidth(), tol) &&
		geom.NearlyEqual(sb.VisualHeight(), b.VisualHeight(), tol)
}
