package frame

import "github.com/matzehuels/framecraft/pkg/geom"

// Image is a placed image. FrameOf is the id of the frame it is bound to, or
// empty for a free image.
type Image struct {
	ID      string
	Source  string
	FrameOf string

	// Native is the image's pixel size. It is zero until the dimensions
	// resolve; fitting is deferred until then.
	Native geom.Size

	// Box is the image's placement. Base is the native size once known.
	Box      geom.Box
	Rotation float64

	// Clip is the boundary derived from the bound frame, nil when none.
	Clip *geom.Clip
}

// Resolved reports whether the native dimensions are known.
func (img *Image) Resolved() bool { return img.Native.Valid() }

// Bound reports whether the image references a frame.
func (img *Image) Bound() bool { return img.FrameOf != "" }

// Background is the canvas-wide image. It has no clip; it fills the
// canvas.
type Background struct {
	SourceURL string
	Native    geom.Size
}
