// Package color converts device colors between the relay's "rgb(r,g,b)"
// strings, RGB triples and the "#RRGGBB" hex form used by color controls.
package color

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNoColor is returned by ParseRGBString when the relay sent no color at all.
// Sockets never report one.
var ErrNoColor = errors.New("no color value")

// ParseError describes a color string that could not be understood
type ParseError struct {
	Input  string
	Reason string
}

// Error implements the error interface
func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid color %q: %s", e.Input, e.Reason)
}

// RGB is a 24-bit color
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Hex returns the color as "#RRGGBB"
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// String returns the color in the relay's "rgb(r,g,b)" form
func (c RGB) String() string {
	return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B)
}

// ExpandShorthand normalizes a hex color to upper-case "#RRGGBB".
// Three digit shorthand is expanded first, so "#03F" becomes "#0033FF".
func ExpandShorthand(s string) (string, error) {
	digits := strings.TrimPrefix(strings.TrimSpace(s), "#")

	switch len(digits) {
	case 3:
		digits = string([]byte{
			digits[0], digits[0],
			digits[1], digits[1],
			digits[2], digits[2],
		})
	case 6:
	default:
		return "", &ParseError{Input: s, Reason: "expected 3 or 6 hex digits"}
	}

	for _, r := range digits {
		if !isHexDigit(r) {
			return "", &ParseError{Input: s, Reason: fmt.Sprintf("%q is not a hex digit", r)}
		}
	}

	return "#" + strings.ToUpper(digits), nil
}

// ParseHex converts "#RRGGBB" or "#RGB" (leading '#' optional) to RGB
func ParseHex(s string) (RGB, error) {
	full, err := ExpandShorthand(s)
	if err != nil {
		return RGB{}, err
	}

	v, err := strconv.ParseUint(full[1:], 16, 32)
	if err != nil {
		return RGB{}, &ParseError{Input: s, Reason: err.Error()}
	}

	return RGB{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
	}, nil
}

// ParseRGBString parses the relay's "rgb(r,g,b)" representation.
// An empty input returns ErrNoColor so callers can tell "absent" from "broken".
func ParseRGBString(s string) (RGB, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return RGB{}, ErrNoColor
	}

	lower := strings.ToLower(trimmed)
	if !strings.HasPrefix(lower, "rgb(") || !strings.HasSuffix(lower, ")") {
		return RGB{}, &ParseError{Input: s, Reason: "expected rgb(r,g,b)"}
	}

	parts := strings.Split(trimmed[4:len(trimmed)-1], ",")
	if len(parts) != 3 {
		return RGB{}, &ParseError{Input: s, Reason: fmt.Sprintf("expected 3 components, got %d", len(parts))}
	}

	var comps [3]uint8
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return RGB{}, &ParseError{Input: s, Reason: fmt.Sprintf("component %d is not a number", i+1)}
		}
		if n < 0 || n > 255 {
			return RGB{}, &ParseError{Input: s, Reason: fmt.Sprintf("component %d out of range: %d", i+1, n)}
		}
		comps[i] = uint8(n)
	}

	return RGB{R: comps[0], G: comps[1], B: comps[2]}, nil
}

// IsParseError reports whether err came from a malformed color string
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}
