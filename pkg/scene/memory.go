package scene

import (
	"slices"
	"sync"

	"github.com/matzehuels/framecraft/pkg/geom"
)

// Memory is an in-process Surface. It draws nothing; it records the state a
// real surface would hold so that the engine can run headless.
type Memory struct {
	mu    sync.RWMutex
	size  geom.Size
	view  View
	nodes []*memNode
}

// NewMemory returns an empty surface of the given size.
func NewMemory(size geom.Size) *Memory {
	return &Memory{size: size, view: DefaultView}
}

// Create adds a node on top of the stack. An existing node with the same id
// is replaced.
func (m *Memory) Create(id string, role Role) Node {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.remove(id)
	n := &memNode{id: id, role: role, scale: geom.Identity}
	m.nodes = append(m.nodes, n)
	return n
}

// Remove deletes a node. Unknown ids are ignored.
func (m *Memory) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.remove(id)
}

func (m *Memory) remove(id string) {
	m.nodes = slices.DeleteFunc(m.nodes, func(n *memNode) bool { return n.id == id })
}

// Node looks up a node by id.
func (m *Memory) Node(id string) (Node, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, n := range m.nodes {
		if n.id == id {
			return n, true
		}
	}
	return nil, false
}

// Nodes returns all nodes in paint order.
func (m *Memory) Nodes() []Node {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Node, len(m.nodes))
	for i, n := range m.nodes {
		out[i] = n
	}
	return out
}

// SendToBack moves a node to the bottom of the stack.
func (m *Memory) SendToBack(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.IndexFunc(m.nodes, func(n *memNode) bool { return n.id == id })
	if i <= 0 {
		return
	}
	n := m.nodes[i]
	m.nodes = slices.Delete(m.nodes, i, i+1)
	m.nodes = slices.Insert(m.nodes, 0, n)
}

// Size returns the canvas size.
func (m *Memory) Size() geom.Size {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.size
}

// SetSize resizes the canvas.
func (m *Memory) SetSize(s geom.Size) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.size = s
}

// View returns the current view transform.
func (m *Memory) View() View {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.view
}

// SetView replaces the view transform.
func (m *Memory) SetView(v View) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.view = v
}

var _ Surface = (*Memory)(nil)

// memNode is the Memory surface's node. Nodes are mutated from the
// controller's single logical thread only.
type memNode struct {
	id       string
	role     Role
	pos      geom.Point
	size     geom.Size
	scale    geom.Scale
	rotation float64
	clip     *geom.Clip
	source   string
}

func (n *memNode) ID() string               { return n.id }
func (n *memNode) Role() Role               { return n.role }
func (n *memNode) SetRole(r Role)           { n.role = r }
func (n *memNode) Position() geom.Point     { return n.pos }
func (n *memNode) SetPosition(p geom.Point) { n.pos = p }
func (n *memNode) Size() geom.Size          { return n.size }
func (n *memNode) SetSize(s geom.Size)      { n.size = s }
func (n *memNode) Scale() geom.Scale        { return n.scale }
func (n *memNode) SetScale(s geom.Scale)    { n.scale = s }
func (n *memNode) Rotation() float64        { return n.rotation }
func (n *memNode) SetRotation(deg float64)  { n.rotation = deg }
func (n *memNode) Source() string           { return n.source }
func (n *memNode) SetSource(src string)     { n.source = src }

func (n *memNode) RenderedSize() geom.Size {
	return geom.Size{Width: n.size.Width * n.scale.X, Height: n.size.Height * n.scale.Y}
}

func (n *memNode) Clip() (geom.Clip, bool) {
	if n.clip == nil {
		return geom.Clip{}, false
	}
	return *n.clip, true
}

func (n *memNode) SetClip(c *geom.Clip) {
	if c == nil {
		n.clip = nil
		return
	}
	cp := *c
	n.clip = &cp
}
