// Package fit computes how an image is scaled and anchored inside a target
// box under a fit policy.
//
// Both functions are pure. For native size (iw, ih) and target (tw, th):
//
//	cover   = max(tw/iw, th/ih)  // target fully covered, overflow clipped elsewhere
//	contain = min(tw/iw, th/ih)  // image fully visible, empty space allowed
//
// The scale is uniform and the scaled image is centered on the target.
// A zero or unknown native dimension yields an INVALID_SOURCE error; callers
// defer the fit until the dimensions resolve.
package fit

import (
	"math"

	"github.com/matzehuels/framecraft/pkg/errors"
	"github.com/matzehuels/framecraft/pkg/frame"
	"github.com/matzehuels/framecraft/pkg/geom"
)

// Placement is the result of fitting an image into a target rectangle.
type Placement struct {
	// Scale is the uniform scale applied to the native size.
	Scale float64
	// Position is the top-left corner of the scaled image.
	Position geom.Point
}

// Box returns the image box described by the placement.
func (p Placement) Box(native geom.Size) geom.Box {
	return geom.Box{Position: p.Position, Base: native, Scale: geom.Uniform(p.Scale)}
}

// Scale returns the uniform scale that fits native into target under policy.
func Scale(native, target geom.Size, policy frame.Fit) (float64, error) {
	if !native.Valid() || isBad(native.Width) || isBad(native.Height) {
		return 0, errors.New(errors.ErrCodeInvalidSource,
			"image dimensions unavailable (%gx%g)", native.Width, native.Height)
	}
	sx := target.Width / native.Width
	sy := target.Height / native.Height

	switch policy {
	case frame.FitCover:
		return math.Max(sx, sy), nil
	case frame.FitContain:
		return math.Min(sx, sy), nil
	default:
		return 0, errors.New(errors.ErrCodeInvalidFit, "unknown fit policy %q", policy)
	}
}

// Place fits native into target and anchors the scaled image at the
// target's center.
func Place(native geom.Size, target geom.Rect, policy frame.Fit) (Placement, error) {
	s, err := Scale(native, target.Size(), policy)
	if err != nil {
		return Placement{}, err
	}
	c := target.Center()
	return Placement{
		Scale: s,
		Position: geom.Point{
			X: c.X - native.Width*s/2,
			Y: c.Y - native.Height*s/2,
		},
	}, nil
}

func isBad(v float64) bool { return math.IsNaN(v) || math.IsInf(v, 0) }
