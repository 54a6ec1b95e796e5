package frame

import "slices"

// Model is the live arrangement of frames and images, both in z-order.
type Model struct {
	frames     []*Frame
	images     []*Image
	background *Background
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{}
}

// =============================================================================
// Frames
// =============================================================================

// AddFrame appends f on top of the existing frames.
func (m *Model) AddFrame(f *Frame) {
	m.frames = append(m.frames, f)
}

// Frame returns the frame with the given id.
func (m *Model) Frame(id string) (*Frame, bool) {
	for _, f := range m.frames {
		if f.ID == id {
			return f, true
		}
	}
	return nil, false
}

// DeleteFrame removes a frame. Images bound to it are not touched.
// It reports whether a frame was removed.
func (m *Model) DeleteFrame(id string) bool {
	n := len(m.frames)
	m.frames = slices.DeleteFunc(m.frames, func(f *Frame) bool { return f.ID == id })
	return len(m.frames) != n
}

// Frames returns the frames in z-order. The slice is a copy; the frames are
// shared.
func (m *Model) Frames() []*Frame {
	return slices.Clone(m.frames)
}

// FrameCount returns the number of live frames.
func (m *Model) FrameCount() int { return len(m.frames) }

// =============================================================================
// Images
// =============================================================================

// AddImage appends img on top of the existing images.
func (m *Model) AddImage(img *Image) {
	m.images = append(m.images, img)
}

// Image returns the image with the given id.
func (m *Model) Image(id string) (*Image, bool) {
	for _, img := range m.images {
		if img.ID == id {
			return img, true
		}
	}
	return nil, false
}

// RemoveImage deletes an image and reports whether it existed.
func (m *Model) RemoveImage(id string) bool {
	n := len(m.images)
	m.images = slices.DeleteFunc(m.images, func(img *Image) bool { return img.ID == id })
	return len(m.images) != n
}

// Images returns all images in z-order.
func (m *Model) Images() []*Image {
	return slices.Clone(m.images)
}

// ImagesBoundTo returns the images whose FrameOf is frameID, in z-order.
func (m *Model) ImagesBoundTo(frameID string) []*Image {
	var out []*Image
	for _, img := range m.images {
		if img.FrameOf == frameID {
			out = append(out, img)
		}
	}
	return out
}

// Orphans returns bound images whose frame no longer exists.
func (m *Model) Orphans() []*Image {
	var out []*Image
	for _, img := range m.images {
		if !img.Bound() {
			continue
		}
		if _, ok := m.Frame(img.FrameOf); !ok {
			out = append(out, img)
		}
	}
	return out
}

// =============================================================================
// Background
// =============================================================================

// Background returns the canvas background, or nil.
func (m *Model) Background() *Background { return m.background }

// SetBackground installs bg, replacing any previous background.
func (m *Model) SetBackground(bg *Background) { m.background = bg }

// ClearBackground removes the background.
func (m *Model) ClearBackground() { m.background = nil }

// =============================================================================
// Bulk
// =============================================================================

// Clear removes every frame and image. The background is kept.
func (m *Model) Clear() {
	m.frames = nil
	m.images = nil
}
