package frame

import (
	"strings"

	"github.com/matzehuels/framecraft/pkg/errors"
)

// Fit is the policy used to place an image inside a frame.
type Fit string

const (
	// FitCover scales the image until the frame is fully covered. Overflow is
	// hidden by the frame's clip region.
	FitCover Fit = "cover"
	// FitContain scales the image until it fits fully inside the frame,
	// possibly leaving empty space.
	FitContain Fit = "contain"
)

// DefaultFit is the policy assigned to new frames.
const DefaultFit = FitCover

// Valid reports whether f is a known policy.
func (f Fit) Valid() bool { return f == FitCover || f == FitContain }

// String returns the policy name.
func (f Fit) String() string { return string(f) }

// Toggle returns the other policy.
func (f Fit) Toggle() Fit {
	if f == FitContain {
		return FitCover
	}
	return FitContain
}

// ParseFit parses a policy name (case-insensitive).
func ParseFit(s string) (Fit, error) {
	f := Fit(strings.ToLower(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", errors.New(errors.ErrCodeInvalidFit, "unknown fit policy %q (must be cover or contain)", s)
	}
	return f, nil
}
