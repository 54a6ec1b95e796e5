package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/framecraft/pkg/geom"
)

// parseSize parses "WIDTHxHEIGHT", e.g. "1200x800".
func parseSize(s string) (geom.Size, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return geom.Size{}, fmt.Errorf("invalid size %q (want WIDTHxHEIGHT)", s)
	}
	width, err := strconv.ParseFloat(w, 64)
	if err != nil {
		return geom.Size{}, fmt.Errorf("invalid width in %q", s)
	}
	height, err := strconv.ParseFloat(h, 64)
	if err != nil {
		return geom.Size{}, fmt.Errorf("invalid height in %q", s)
	}
	size := geom.Size{Width: width, Height: height}
	if !size.Valid() {
		return geom.Size{}, fmt.Errorf("size %q must be positive", s)
	}
	return size, nil
}

// parseRect parses "X,Y,WIDTHxHEIGHT", e.g. "400,260,400x300".
func parseRect(s string) (geom.Rect, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 3 {
		return geom.Rect{}, fmt.Errorf("invalid rect %q (want X,Y,WIDTHxHEIGHT)", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return geom.Rect{}, fmt.Errorf("invalid x in %q", s)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return geom.Rect{}, fmt.Errorf("invalid y in %q", s)
	}
	size, err := parseSize(parts[2])
	if err != nil {
		return geom.Rect{}, err
	}
	return geom.Rect{X: x, Y: y, Width: size.Width, Height: size.Height}, nil
}

// parseBinding parses "FRAME_ID=SOURCE" as used by preview --bind.
func parseBinding(s string) (frameID, source string, err error) {
	frameID, source, ok := strings.Cut(s, "=")
	if !ok || frameID == "" || source == "" {
		return "", "", fmt.Errorf("invalid binding %q (want FRAME_ID=SOURCE)", s)
	}
	return frameID, source, nil
}
