package scene

// EventKind identifies a surface interaction.
type EventKind int

const (
	// EventSelect reports that the selection changed. An empty NodeID
	// clears the selection.
	EventSelect EventKind = iota
	// EventTransform reports a drag or resize in progress.
	EventTransform
	// EventTransformEnd reports that a drag or resize finished.
	EventTransformEnd
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventSelect:
		return "select"
	case EventTransform:
		return "transform"
	case EventTransformEnd:
		return "transform-end"
	default:
		return "unknown"
	}
}

// Event is an interaction reported by the surface. By the time an event is
// delivered, the node's geometry already reflects the user's edit.
type Event struct {
	Kind   EventKind
	NodeID string
}
