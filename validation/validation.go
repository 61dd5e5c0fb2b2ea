// Package validation collects per-field problems found in API input.
package validation

import "strings"

// Violations maps a field path to a short machine-readable code.
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func PositiveFloat(field string, val float64, v Violations) {
	if val <= 0 {
		v[field] = "must_be_positive"
	}
}

func NonNegativeFloat(field string, val float64, v Violations) {
	if val < 0 {
		v[field] = "must_not_be_negative"
	}
}

func RangeFloat(field string, val, minVal, maxVal float64, v Violations) {
	if val < minVal || val > maxVal {
		v[field] = "out_of_range"
	}
}

// Check records code for field when ok is false. An earlier violation on the same field is kept.
func Check(ok bool, field, code string, v Violations) {
	if ok {
		return
	}
	if _, exists := v[field]; !exists {
		v[field] = code
	}
}
