package scene

import "github.com/matzehuels/framecraft/pkg/geom"

// Node is a paint object on the surface.
type Node interface {
	ID() string

	Role() Role
	SetRole(Role)

	Position() geom.Point
	SetPosition(geom.Point)

	// Size is the unscaled base size.
	Size() geom.Size
	SetSize(geom.Size)

	Scale() geom.Scale
	SetScale(geom.Scale)

	// Rotation is in degrees, clockwise.
	Rotation() float64
	SetRotation(float64)

	// RenderedSize is the size the surface actually draws.
	RenderedSize() geom.Size

	// Clip returns the clip boundary and whether one is set.
	Clip() (geom.Clip, bool)
	// SetClip installs a clip boundary; nil removes it.
	SetClip(*geom.Clip)

	// Source is the underlying resource locator for image-bearing nodes.
	Source() string
	SetSource(string)
}

// Surface is the rendering surface. Nodes are kept in paint order: the
// first node is painted first (bottom of the stack).
type Surface interface {
	// Create adds a node on top of the stack.
	Create(id string, role Role) Node
	Remove(id string)
	Node(id string) (Node, bool)
	Nodes() []Node
	// SendToBack moves a node to the bottom of the stack.
	SendToBack(id string)

	Size() geom.Size
	SetSize(geom.Size)

	View() View
	SetView(View)
}

// View is the zoom/pan transform from canvas to screen coordinates.
// It affects display only.
type View struct {
	Zoom float64    `json:"zoom"`
	Pan  geom.Point `json:"pan"`
}

// DefaultView is the identity view.
var DefaultView = View{Zoom: 1}

// ToScreen maps a canvas point to screen coordinates.
func (v View) ToScreen(p geom.Point) geom.Point {
	z := v.zoom()
	return geom.Point{X: p.X*z + v.Pan.X, Y: p.Y*z + v.Pan.Y}
}

// ToCanvas maps a screen point (e.g. a pointer position) to canvas
// coordinates.
func (v View) ToCanvas(p geom.Point) geom.Point {
	z := v.zoom()
	return geom.Point{X: (p.X - v.Pan.X) / z, Y: (p.Y - v.Pan.Y) / z}
}

func (v View) zoom() float64 {
	if v.Zoom <= 0 {
		return 1
	}
	return v.Zoom
}
