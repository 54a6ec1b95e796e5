package template

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Document Serialization API
// =============================================================================

// Marshal encodes a document in the current wire format.
func Marshal(doc *Document) ([]byte, error) {
	return json.MarshalIndent(Normalize(doc), "", "  ")
}

// Write encodes a document as indented JSON to w.
func Write(doc *Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Normalize(doc)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Read decodes a document in any accepted shape from r.
func Read(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return Decode(data)
}

// WriteFile writes a document to path in the current wire format.
func WriteFile(doc *Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(doc, f)
}

// ReadFile reads and decodes the template at path.
func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// Migrate decodes data in any accepted shape and re-encodes it in the
// current wire format.
func Migrate(data []byte) ([]byte, error) {
	doc, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return Marshal(doc)
}

// Normalize returns a copy of doc that Decode accepts: the version set, a
// canvas (DefaultCanvas when missing) and a non-nil frame list, so that an
// empty template encodes "frames": [].
func Normalize(doc *Document) *Document {
	out := *doc
	out.Version = Version
	if out.Canvas.IsZero() {
		out.Canvas = DefaultCanvas
	}
	if out.Frames == nil {
		out.Frames = []Record{}
	}
	return &out
}
