package template

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/google/uuid"

	"github.com/matzehuels/framecraft/pkg/errors"
	"github.com/matzehuels/framecraft/pkg/frame"
)

// Shape identifies which of the accepted document layouts was decoded.
type Shape int

const (
	// ShapeCurrent is the versioned wrapper written by Encode.
	ShapeCurrent Shape = iota
	// ShapeFlatArray is a bare array of frame records.
	ShapeFlatArray
	// ShapeElements nests the frames under an "elements" object.
	ShapeElements
)

// String returns the shape name.
func (s Shape) String() string {
	switch s {
	case ShapeCurrent:
		return "current"
	case ShapeFlatArray:
		return "flat-array"
	case ShapeElements:
		return "elements"
	default:
		return "unknown"
	}
}

// wireRecord accepts every spelling of a frame record seen in the wild.
type wireRecord struct {
	ID     string   `json:"id"`
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	W      *float64 `json:"w"`
	H      *float64 `json:"h"`
	Width  *float64 `json:"width"`
	Height *float64 `json:"height"`
	Fit    string   `json:"fit"`
	Name   *string  `json:"name"`
}

type wireCanvas struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type wireSource struct {
	Src string `json:"src"`
	URL string `json:"url"`
}

// Decode parses a template document in any accepted shape. Documents that
// match no shape, or that contain an invalid record, fail with
// UNSUPPORTED_FORMAT and nothing is returned.
func Decode(data []byte) (*Document, error) {
	doc, _, err := DecodeShape(data)
	return doc, err
}

// DecodeShape is Decode that also reports the shape it recognized.
func DecodeShape(data []byte) (*Document, Shape, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, 0, unsupported(nil, "empty document")
	}

	switch trimmed[0] {
	case '[':
		frames, err := decodeFrames(trimmed, false)
		if err != nil {
			return nil, 0, err
		}
		return &Document{Version: Version, Frames: frames}, ShapeFlatArray, nil
	case '{':
		return decodeObject(trimmed)
	default:
		return nil, 0, unsupported(nil, "top-level value must be an object or an array")
	}
}

func decodeObject(data []byte) (*Document, Shape, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, 0, unsupported(err, "malformed document")
	}

	if raw, ok := obj["frames"]; ok {
		doc, err := decodeCurrent(obj, raw)
		return doc, ShapeCurrent, err
	}

	if raw, ok := obj["elements"]; ok {
		doc, err := decodeElements(obj, raw)
		return doc, ShapeElements, err
	}

	return nil, 0, unsupported(nil, "document has neither frames nor elements")
}

// decodeCurrent handles the versioned wrapper. A wrapper without a version
// predates versioning and is decoded leniently.
func decodeCurrent(obj map[string]json.RawMessage, framesRaw json.RawMessage) (*Document, error) {
	strict := false
	if raw, ok := obj["version"]; ok {
		var v int
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, unsupported(err, "version must be an integer")
		}
		if v != Version {
			return nil, unsupported(nil, "unsupported template version %d (this build reads version %d)", v, Version)
		}
		strict = true
	}

	canvas, err := decodeCanvas(obj["canvas"])
	if err != nil {
		return nil, err
	}
	if strict && canvas.IsZero() {
		return nil, unsupported(nil, "canvas width and height are required")
	}

	bg, err := decodeBackground(obj["background"])
	if err != nil {
		return nil, err
	}

	frames, err := decodeFrames(framesRaw, strict)
	if err != nil {
		return nil, err
	}

	return &Document{Version: Version, Canvas: canvas, Background: bg, Frames: frames}, nil
}

// decodeElements handles the legacy shape with frames under "elements".
// Background and canvas may sit beside "elements" or inside it.
func decodeElements(obj map[string]json.RawMessage, elementsRaw json.RawMessage) (*Document, error) {
	var elements map[string]json.RawMessage
	if err := json.Unmarshal(elementsRaw, &elements); err != nil {
		return nil, unsupported(err, "elements must be an object")
	}
	framesRaw, ok := elements["frames"]
	if !ok {
		return nil, unsupported(nil, "elements has no frames")
	}

	canvasRaw := firstPresent(obj["canvas"], elements["canvas"])
	canvas, err := decodeCanvas(canvasRaw)
	if err != nil {
		return nil, err
	}

	bgRaw := firstPresent(obj["background"], elements["background"])
	bg, err := decodeBackground(bgRaw)
	if err != nil {
		return nil, err
	}

	frames, err := decodeFrames(framesRaw, false)
	if err != nil {
		return nil, err
	}

	return &Document{Version: Version, Canvas: canvas, Background: bg, Frames: frames}, nil
}

func firstPresent(raws ...json.RawMessage) json.RawMessage {
	for _, r := range raws {
		if len(r) > 0 {
			return r
		}
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func decodeCanvas(raw json.RawMessage) (Canvas, error) {
	if isNull(raw) {
		return Canvas{}, nil
	}
	var c wireCanvas
	if err := json.Unmarshal(raw, &c); err != nil {
		return Canvas{}, unsupported(err, "canvas must be an object with width and height")
	}
	if c.Width < 0 || c.Height < 0 {
		return Canvas{}, unsupported(nil, "canvas size must not be negative")
	}
	return Canvas{Width: int(math.Round(c.Width)), Height: int(math.Round(c.Height))}, nil
}

// decodeBackground accepts null, a string, or an object carrying src/url.
func decodeBackground(raw json.RawMessage) (*string, error) {
	if isNull(raw) {
		return nil, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		var src wireSource
		if err := json.Unmarshal(raw, &src); err != nil {
			return nil, unsupported(err, "background must be a string or null")
		}
		s = src.Src
		if s == "" {
			s = src.URL
		}
	}
	if s == "" {
		return nil, nil
	}
	return &s, nil
}

func decodeFrames(raw json.RawMessage, strict bool) ([]Record, error) {
	if isNull(raw) {
		return []Record{}, nil
	}
	var wire []wireRecord
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, unsupported(err, "frames must be an array of frame records")
	}

	out := make([]Record, 0, len(wire))
	seen := make(map[string]bool, len(wire))
	for i, w := range wire {
		r, err := w.record(i, strict)
		if err != nil {
			return nil, err
		}
		if seen[r.ID] {
			return nil, unsupported(nil, "frame %d: duplicate id %q", i, r.ID)
		}
		seen[r.ID] = true
		out = append(out, r)
	}
	return out, nil
}

func (w wireRecord) record(i int, strict bool) (Record, error) {
	r := Record{ID: w.ID, X: w.X, Y: w.Y}

	if r.ID == "" {
		if strict {
			return Record{}, unsupported(nil, "frame %d: id is required", i)
		}
		r.ID = uuid.NewString()
	}

	width, height := pick(w.W, w.Width), pick(w.H, w.Height)
	if width == nil || height == nil {
		return Record{}, unsupported(nil, "frame %d: size is required", i)
	}
	r.W, r.H = *width, *height

	switch {
	case w.Fit != "":
		f, err := frame.ParseFit(w.Fit)
		if err != nil {
			return Record{}, unsupported(err, "frame %d", i)
		}
		r.Fit = f
	case strict:
		return Record{}, unsupported(nil, "frame %d: fit is required", i)
	default:
		r.Fit = frame.DefaultFit
	}

	if w.Name != nil {
		r.Name = *w.Name
	} else {
		r.Name = frame.DefaultName(i)
	}
	return r, nil
}

func pick(a, b *float64) *float64 {
	if a != nil {
		return a
	}
	return b
}

func unsupported(cause error, format string, args ...any) error {
	if cause != nil {
		return errors.Wrap(errors.ErrCodeUnsupportedFormat, cause, format, args...)
	}
	return errors.New(errors.ErrCodeUnsupportedFormat, format, args...)
}
