// Package pkg provides the libraries behind Framecraft, a layout engine for
// image templates.
//
// # Overview
//
// A template is a fixed-size canvas with an optional background image and
// a stack of placeholder frames. Images bound to a frame are scaled into it
// under the frame's fit policy (cover or contain) and clipped to its
// rounded outline. Templates are saved as versioned JSON and can be loaded
// from two older layouts. The pkg directory is organized into three areas:
//
//  1. Geometry - [geom], [snap], [fit], [clip]
//  2. Editing - [frame], [scene], [editor], [template]
//  3. Infrastructure - [store], [media], [cache], [httputil], [config],
//     [preview], [observability], [errors], [buildinfo]
//
// # Architecture
//
// The controller owns the arrangement. Surface interactions flow in as
// events, the model is updated, and the paint objects are brought back in
// line with it:
//
//	scene.Event (select, transform, transform end)
//	         ↓
//	    [editor] Controller  ←  [media] Loader (native image sizes)
//	         ↓
//	    [frame] Model  →  [snap] / [fit] / [clip]
//	         ↓
//	    [scene] Surface      [template] Document  →  [store]
//
// # Quick Start
//
// Create a frame, bind an image and save the arrangement:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/framecraft/pkg/editor"
//	    "github.com/matzehuels/framecraft/pkg/geom"
//	    "github.com/matzehuels/framecraft/pkg/template"
//	)
//
//	ctl, _ := editor.New(editor.Options{Canvas: geom.Size{Width: 1200, Height: 800}})
//	defer ctl.Close()
//
//	f := ctl.CreateFrame()
//	task, _ := ctl.BindImage(ctx, f.ID, editor.ImageSource{
//	    URL:  "https://example.com/photo.jpg",
//	    Size: geom.Size{Width: 1600, Height: 900},
//	})
//	_ = task.Wait(ctx)
//
//	_ = template.WriteFile(ctl.SerializeTemplate(), "poster.json")
//
// # Main Packages
//
// [editor] - The layout controller. Frame operations, image binding,
// background handling, template load and save, and staleness tracking for
// asynchronous size resolution.
//
// [template] - The JSON document format. Decode accepts the current
// versioned layout, a bare array of frame records, and an object with an
// "elements" list; Encode always writes the current layout.
//
// [store] - Named template persistence on the filesystem, SQLite,
// PostgreSQL, MySQL, Redis or MongoDB.
//
// [media] - Image loading from URLs and local paths, with native sizes
// cached in [cache].
//
// [preview] - SVG rendering of a template for review outside the editor.
//
// [geom]: https://pkg.go.dev/github.com/matzehuels/framecraft/pkg/geom
// [snap]: https://pkg.go.dev/github.com/matzehuels/framecraft/pkg/snap
// [fit]: https://pkg.go.dev/github.com/matzehuels/framecraft/pkg/fit
// [clip]: https://pkg.go.dev/github.com/matzehuels/framecraft/pkg/clip
// [frame]: https://pkg.go.dev/github.com/matzehuels/framecraft/pkg/frame
// [scene]: https://pkg.go.dev/github.com/matzehuels/framecraft/pkg/scene
// [editor]: https://pkg.go.dev/github.com/matzehuels/framecraft/pkg/editor
// [template]: https://pkg.go.dev/github.com/matzehuels/framecraft/pkg/template
// [store]: https://pkg.go.dev/github.com/matzehuels/framecraft/pkg/store
// [media]: https://pkg.go.dev/github.com/matzehuels/framecraft/pkg/media
// [cache]: https://pkg.go.dev/github.com/matzehuels/framecraft/pkg/cache
// [httputil]: https://pkg.go.dev/github.com/matzehuels/framecraft/pkg/httputil
// [config]: https://pkg.go.dev/github.com/matzehuels/framecraft/pkg/config
// [preview]: https://pkg.go.dev/github.com/matzehuels/framecraft/pkg/preview
// [observability]: https://pkg.go.dev/github.com/matzehuels/framecraft/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/framecraft/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/framecraft/pkg/buildinfo
package pkg
