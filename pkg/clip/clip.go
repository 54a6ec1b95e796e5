// Package clip derives the clip boundary of every frame-bound image.
//
// The boundary equals the frame's current visual box in absolute canvas
// coordinates, with the frame's corner radius. It is independent of the
// image's own transform because image and frame carry independent scale and
// rotation. Background images and free images get no clip.
//
// Whenever a frame moves or resizes, call [Sync] to re-derive the clip of
// every image bound to it.
package clip

import (
	"github.com/matzehuels/framecraft/pkg/frame"
	"github.com/matzehuels/framecraft/pkg/geom"
)

// Region returns the clip boundary for images bound to f.
func Region(f *frame.Frame) geom.Clip {
	return geom.Clip{Rect: f.Rect(), Radius: f.Style.CornerRadius}
}

// Apply sets img's clip from f.
func Apply(f *frame.Frame, img *frame.Image) {
	c := Region(f)
	img.Clip = &c
}

// Sync re-derives the clip of every image bound to the frame with the given
// id and returns the images it touched. It returns nil when the frame does
// not exist; orphaned images keep their last clip.
func Sync(m *frame.Model, frameID string) []*frame.Image {
	f, ok := m.Frame(frameID)
	if !ok {
		return nil
	}
	imgs := m.ImagesBoundTo(frameID)
	for _, img := range imgs {
		Apply(f, img)
	}
	return imgs
}
