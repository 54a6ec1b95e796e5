package scene

// Role is the typed metadata slot carried by every scene node.
// The set of implementations is closed: FrameRole, ImageRole and
// BackgroundRole.
type Role interface {
	role()
}

// FrameRole tags a node that draws a frame placeholder.
type FrameRole struct {
	FrameID string
}

// ImageRole tags a node that draws a placed image. FrameOf is the id of the
// frame the image is bound to, or empty when the image is free-floating. It is
// a lookup key only; the frame does not own the image.
type ImageRole struct {
	ImageID string
	FrameOf string
}

// BackgroundRole tags the canvas-wide background image. SourceURL is kept on
// the tag because the surface alone cannot report a reusable source
// reference.
type BackgroundRole struct {
	SourceURL string
}

func (FrameRole) role()      {}
func (ImageRole) role()      {}
func (BackgroundRole) role() {}

// RoleName returns a short name for logging.
func RoleName(r Role) string {
	switch r.(type) {
	case FrameRole:
		return "frame"
	case ImageRole:
		return "image"
	case BackgroundRole:
		return "background"
	default:
		return "none"
	}
}
