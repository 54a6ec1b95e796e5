// Package preview renders a template as an SVG wireframe.
//
// The output shows the canvas, the background reference, every frame with
// its name and fit policy, and optionally the images bound to the frames,
// each clipped to its frame's rounded rectangle. It is a debugging and
// export aid; no image pixels are fetched.
package preview

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/matzehuels/framecraft/pkg/frame"
	"github.com/matzehuels/framecraft/pkg/geom"
	"github.com/matzehuels/framecraft/pkg/template"
)

const (
	fontFamily   = "ui-sans-serif, system-ui, sans-serif"
	frameStroke  = "#2563eb"
	gridStroke   = "#e5e7eb"
	imageFill    = "#fde68a"
	canvasFill   = "#ffffff"
	defaultSizeW = 1200
	defaultSizeH = 800
)

// Option configures RenderSVG.
type Option func(*renderer)

type renderer struct {
	grid   float64
	images []*frame.Image
	radius float64
}

// WithGrid draws grid lines every unit canvas units.
func WithGrid(unit float64) Option { return func(r *renderer) { r.grid = unit } }

// WithImages draws the given images as placeholders inside their clips.
func WithImages(images []*frame.Image) Option { return func(r *renderer) { r.images = images } }

// WithCornerRadius sets the corner radius drawn for frames.
func WithCornerRadius(radius float64) Option { return func(r *renderer) { r.radius = radius } }

// RenderSVG draws doc. A document without a canvas size is drawn on the
// default 1200x800 canvas.
func RenderSVG(doc *template.Document, opts ...Option) []byte {
	r := renderer{radius: frame.DefaultStyle().CornerRadius}
	for _, opt := range opts {
		opt(&r)
	}

	size := geom.Size{Width: defaultSizeW, Height: defaultSizeH}
	if !doc.Canvas.IsZero() {
		size = doc.Canvas.Size()
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		size.Width, size.Height, size.Width, size.Height)

	r.renderDefs(&buf)
	fmt.Fprintf(&buf, `  <rect class="canvas" x="0" y="0" width="%.1f" height="%.1f" fill="%s"/>`+"\n",
		size.Width, size.Height, canvasFill)

	if bg := doc.BackgroundURL(); bg != "" {
		fmt.Fprintf(&buf, `  <rect class="background" x="0" y="0" width="%.1f" height="%.1f" fill="url(#background-hatch)" data-src="%s"/>`+"\n",
			size.Width, size.Height, escapeXML(bg))
	}
	if r.grid > 0 {
		renderGrid(&buf, size, r.grid)
	}
	for _, img := range r.images {
		renderImage(&buf, img)
	}
	for _, rec := range doc.Frames {
		r.renderFrame(&buf, rec)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *renderer) renderDefs(buf *bytes.Buffer) {
	buf.WriteString("  <defs>\n")
	buf.WriteString(`    <pattern id="background-hatch" width="16" height="16" patternUnits="userSpaceOnUse" patternTransform="rotate(45)">` + "\n")
	buf.WriteString(`      <rect width="16" height="16" fill="#f3f4f6"/><line x1="0" y1="0" x2="0" y2="16" stroke="#d1d5db" stroke-width="4"/>` + "\n")
	buf.WriteString("    </pattern>\n")
	for _, img := range r.images {
		if img.Clip == nil {
			continue
		}
		c := img.Clip
		fmt.Fprintf(buf, `    <clipPath id="clip-%s"><rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="%.1f"/></clipPath>`+"\n",
			escapeXML(img.ID), c.Rect.X, c.Rect.Y, c.Rect.Width, c.Rect.Height, c.Radius)
	}
	buf.WriteString("  </defs>\n")
}

func renderGrid(buf *bytes.Buffer, size geom.Size, unit float64) {
	fmt.Fprintf(buf, `  <g class="grid" stroke="%s" stroke-width="1">`+"\n", gridStroke)
	for x := unit; x < size.Width; x += unit {
		fmt.Fprintf(buf, `    <line x1="%.1f" y1="0" x2="%.1f" y2="%.1f"/>`+"\n", x, x, size.Height)
	}
	for y := unit; y < size.Height; y += unit {
		fmt.Fprintf(buf, `    <line x1="0" y1="%.1f" x2="%.1f" y2="%.1f"/>`+"\n", y, size.Width, y)
	}
	buf.WriteString("  </g>\n")
}

// renderImage draws an image's visual box. Images whose size is still
// unknown have nothing to draw.
func renderImage(buf *bytes.Buffer, img *frame.Image) {
	rect := img.Box.Rect()
	if rect.Width <= 0 || rect.Height <= 0 {
		return
	}
	clipAttr := ""
	if img.Clip != nil {
		clipAttr = fmt.Sprintf(` clip-path="url(#clip-%s)"`, escapeXML(img.ID))
	}
	transform := ""
	if img.Rotation != 0 {
		transform = fmt.Sprintf(` transform="rotate(%.2f %.1f %.1f)"`, img.Rotation, rect.X, rect.Y)
	}
	fmt.Fprintf(buf, `  <g class="image" id="image-%s" data-src="%s"%s>`+"\n",
		escapeXML(img.ID), escapeXML(img.Source), clipAttr)
	fmt.Fprintf(buf, `    <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" opacity="0.8"%s/>`+"\n",
		rect.X, rect.Y, rect.Width, rect.Height, imageFill, transform)
	buf.WriteString("  </g>\n")
}

func (r *renderer) renderFrame(buf *bytes.Buffer, rec template.Record) {
	fmt.Fprintf(buf, `  <g class="frame" id="frame-%s">`+"\n", escapeXML(rec.ID))
	fmt.Fprintf(buf, `    <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="%.1f" fill="none" stroke="%s" stroke-width="2" stroke-dasharray="6 4"/>`+"\n",
		rec.X, rec.Y, rec.W, rec.H, r.radius, frameStroke)
	fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" font-family="%s" font-size="14" fill="%s">%s</text>`+"\n",
		rec.X+8, rec.Y+20, fontFamily, frameStroke, escapeXML(rec.Name))
	fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" font-family="%s" font-size="11" fill="#6b7280">%s</text>`+"\n",
		rec.X+8, rec.Y+36, fontFamily, escapeXML(string(rec.Fit)))
	buf.WriteString("  </g>\n")
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
