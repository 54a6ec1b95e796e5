// Package template converts the live arrangement to and from the versioned
// template document.
//
// # Wire Format (version 1)
//
//	{
//	  "version": 1,
//	  "canvas": {"width": 1200, "height": 800},
//	  "background": "https://cdn.example.com/bg.png",
//	  "frames": [
//	    {"id": "…", "x": 400, "y": 260, "w": 400, "h": 300, "fit": "cover", "name": "Frame 1"}
//	  ]
//	}
//
// Frames are listed in z-order. w and h are visual sizes (base × scale).
// background is null when the canvas has none. Images are never persisted;
// re-attaching them is a separate action after a load.
//
// # Legacy Shapes
//
// [Decode] also accepts two older shapes:
//
//   - a bare array of frame records with no wrapper, version, canvas or
//     background
//   - an object with the frames nested under "elements", optionally carrying
//     "background" and "canvas"
//
// Legacy records may spell the size as width/height, and may omit fit
// (defaults to cover), name (defaults to "Frame n") or id (a new UUID).
//
// Anything else fails with UNSUPPORTED_FORMAT. Decoding is all-or-nothing:
// a document with one bad record is rejected as a whole, so callers never
// apply half a template.
//
// # Files
//
// [ReadFile] and [WriteFile] are thin wrappers around [Decode] and
// [Marshal] for file-based templates. Writing always emits the current
// version, so reading a legacy file and writing it back migrates it.
package template
