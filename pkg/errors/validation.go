package errors

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

// idRegex matches identifiers that are safe as file names and storage keys.
var idRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateID validates a template or frame identifier for safety.
// Identifiers double as file names in the file store and as keys in Redis
// and SQL backends, so the rules are conservative:
//   - No empty identifiers
//   - Maximum length of 128 characters
//   - Letters, digits, '.', '_' and '-' only, not starting with punctuation
//   - No path traversal sequences (..)
func ValidateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "id cannot be empty")
	}
	if len(id) > 128 {
		return New(ErrCodeInvalidID, "id too long (max 128 characters)")
	}
	if strings.Contains(id, "..") {
		return New(ErrCodeInvalidID, "id cannot contain path traversal sequences (..)")
	}
	if !idRegex.MatchString(id) {
		return New(ErrCodeInvalidID, "invalid id: %q", id)
	}
	return nil
}

// ValidateSource validates an image or background source reference.
// Accepted forms are http(s) URLs, file URLs and plain file paths.
func ValidateSource(src string) error {
	if strings.TrimSpace(src) == "" {
		return New(ErrCodeInvalidURL, "source cannot be empty")
	}
	for _, r := range src {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidURL, "source contains invalid characters")
		}
	}

	u, err := url.Parse(src)
	if err != nil {
		return Wrap(ErrCodeInvalidURL, err, "parse source")
	}
	switch u.Scheme {
	case "", "file":
		return nil
	case "http", "https":
		if u.Host == "" {
			return New(ErrCodeInvalidURL, "source URL has no host")
		}
		return nil
	default:
		return New(ErrCodeInvalidURL, "unsupported source scheme %q", u.Scheme)
	}
}
