// Package version parses artifact version strings.
// This is part of the Functional Core - all functions are pure with no I/O.
//
// An artifact version has the form {major}.{minor}.{patch}-{Name}[-{tag}...]:
// the first hyphen separates the numeric prefix from the artifact name, and
// any further hyphen-delimited segments are opaque suffix tags (environment
// variants, pre-release tags).
package version

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrInvalidFormat is returned when a version string has no hyphen
	// after the numeric prefix.
	ErrInvalidFormat = errors.New("invalid version format")
)

// FormatError carries the offending version string.
type FormatError struct {
	Version string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid version format %q: want {major}.{minor}.{patch}-{Name}", e.Version)
}

func (e *FormatError) Unwrap() error {
	return ErrInvalidFormat
}

// =============================================================================
// Parsing
// =============================================================================

// Parse extracts the artifact name from a version string.
//
// Splitting on "-" must yield at least two segments; the second segment is
// the name. Trailing segments are opaque and ignored here.
//
// Example:
//
//	Parse("1.6.0-BurnMintToken-beta") // returns "BurnMintToken", nil
func Parse(v string) (string, error) {
	parts := strings.Split(v, "-")
	if len(parts) < 2 {
		return "", &FormatError{Version: v}
	}
	return parts[1], nil
}

// WithSuffix appends an environment-specific suffix tag to a version.
// An empty suffix leaves the version unchanged; a suffix without a leading
// hyphen gets one, keeping the hyphen-delimited form intact.
func WithSuffix(v, suffix string) string {
	if suffix == "" {
		return v
	}
	if !strings.HasPrefix(suffix, "-") {
		suffix = "-" + suffix
	}
	return v + suffix
}
