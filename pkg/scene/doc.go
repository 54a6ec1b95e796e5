// Package scene defines the contract between the layout engine and the
// rendering surface that actually draws the canvas.
//
// The surface is a 2D scene graph owned by the host (a browser canvas
// library, a native toolkit, or the in-process [Memory] surface used by the
// CLI and tests). The engine only needs a narrow slice of it:
//
//   - create and remove paint objects ([Node]) in z-order
//   - get/set position, base size, scale and rotation
//   - read the rendered size the surface reports
//   - get/set a clip boundary in absolute canvas coordinates
//   - an opaque, typed metadata slot holding the object's [Role]
//   - the source locator of image-bearing objects
//   - a view-only zoom/pan transform ([View]) that is never persisted
//
// Interaction is reported back to the engine as [Event] values: selection
// changes, transforms in progress, and transform completion.
//
// # Roles
//
// Every node carries exactly one [Role]. Role is a closed tagged variant with
// three members: [FrameRole], [ImageRole] and [BackgroundRole]. Use a type
// switch to dispatch on it:
//
//	switch r := node.Role().(type) {
//	case scene.FrameRole:
//	    // r.FrameID
//	case scene.ImageRole:
//	    // r.FrameOf, r.ImageID
//	case scene.BackgroundRole:
//	    // r.SourceURL
//	}
package scene
