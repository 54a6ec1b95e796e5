// Package geom provides the geometry primitives shared by every layout
// component: points, sizes, independent scale factors and the Box that
// combines them.
//
// # Base Size and Scale
//
// A [Box] never stores a single size. It carries an unscaled base size and a
// per-axis scale factor, and the rendered (visual) size is derived from both:
//
//	visualWidth  = base.Width  * scale.X
//	visualHeight = base.Height * scale.Y
//
// Keeping the two apart lets snapping and fitting reason about the original
// shape independently of its current stretch. Assigning a visual size with
// [Box.SetVisualSize] solves for the scale factor and leaves the base alone.
// When a base dimension is zero the corresponding scale is left unchanged.
//
// # Grid
//
// [GridUnit] is the fixed quantization step (20 canvas units) used by frame
// creation and the snapper. [Quantize] rounds a value to the nearest multiple
// of a unit, rounding halves away from zero.
package geom
