package errors

import (
	"math"
	"unicode"
)

// MaxNodeIDLength bounds node identifiers accepted from input files and
// API requests.
const MaxNodeIDLength = 256

// ValidateNodeID validates a node identifier from untrusted input.
//
// The validation rules are intentionally conservative:
//   - No empty ids
//   - No control characters or null bytes
//   - Maximum length of MaxNodeIDLength characters
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "node id cannot be empty")
	}

	if len(id) > MaxNodeIDLength {
		return New(ErrCodeInvalidInput, "node id too long (max %d characters)", MaxNodeIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "node id %q contains invalid control characters", id)
		}
	}

	return nil
}

// ValidateLinkValue rejects flow quantities the layout cannot size:
// negative, NaN or infinite values.
func ValidateLinkValue(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidInput, "link value must be finite, got %v", v)
	}
	if v < 0 {
		return New(ErrCodeInvalidInput, "link value cannot be negative, got %v", v)
	}
	return nil
}

// ValidateExtent validates diagram dimensions. Both must be positive and
// finite; maxSide bounds each side when positive.
func ValidateExtent(width, height, maxSide float64) error {
	for _, d := range []struct {
		name string
		v    float64
	}{{"width", width}, {"height", height}} {
		if math.IsNaN(d.v) || math.IsInf(d.v, 0) || d.v <= 0 {
			return New(ErrCodeInvalidConfig, "%s must be a positive number, got %v", d.name, d.v)
		}
		if maxSide > 0 && d.v > maxSide {
			return New(ErrCodeInvalidConfig, "%s too large (max %v)", d.name, maxSide)
		}
	}
	return nil
}
