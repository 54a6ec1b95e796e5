// Package frame holds the data model of the compositing canvas: named
// frames, images bound into them, and the optional canvas background.
//
// # Frames
//
// A [Frame] is a named, fit-policy-tagged placeholder region. Its geometry
// is a [geom.Box] (position, unscaled base size, scale) so the visual size
// is always Base × Scale. New frames come from [New]: a 400×300 box centered
// on the canvas and aligned to the grid, fit policy cover, and a name
// derived from the live frame count.
//
// # Image Bindings
//
// An [Image] may carry a back-reference FrameOf naming the frame it is bound
// to. Many images may be bound to one frame and an image belongs to at most
// one frame. The reference is a lookup key, not ownership: deleting a frame
// leaves its images in place unless the caller asks for a cascade.
//
// # Model
//
// [Model] keeps frames and images in z-order (paint order) and answers the
// relationship queries the rest of the engine needs. It is not safe for
// concurrent use; the editor controller serializes access.
package frame
