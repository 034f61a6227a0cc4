package model

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ScalarKind records how a numeric input was supplied by the caller.
type ScalarKind int

const (
	KindMissing ScalarKind = iota
	KindInt
	KindFloat
	KindText // present but not a number
)

// String returns the kind name used in error messages.
func (k ScalarKind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	default:
		return "missing"
	}
}

// Scalar is a numeric input together with the kind it was supplied as.
// The zero value is a missing scalar.
type Scalar struct {
	Value float64
	Kind  ScalarKind
	Raw   string
}

// Float returns a float-kinded scalar.
func Float(v float64) Scalar {
	return Scalar{Value: v, Kind: KindFloat, Raw: strconv.FormatFloat(v, 'f', -1, 64)}
}

// Int returns an integer-kinded scalar.
func Int(v int) Scalar {
	return Scalar{Value: float64(v), Kind: KindInt, Raw: strconv.Itoa(v)}
}

// Missing returns a scalar with no value.
func Missing() Scalar {
	return Scalar{}
}

// ParseScalar classifies raw text. Integers are digit strings without a
// decimal point or exponent; "-3" is an int and "-3.0" is a float.
// Empty input is missing; anything else that is not a finite number is text.
func ParseScalar(raw string) Scalar {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Missing()
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Scalar{Value: float64(i), Kind: KindInt, Raw: s}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return Scalar{Value: f, Kind: KindFloat, Raw: s}
	}
	return Scalar{Kind: KindText, Raw: s}
}

// ScalarFromJSON converts a decoded JSON value (decoder with UseNumber) into
// a Scalar. Strings are kept as text even when they look numeric.
func ScalarFromJSON(v any) Scalar {
	switch t := v.(type) {
	case nil:
		return Missing()
	case json.Number:
		return ParseScalar(t.String())
	case float64:
		return Float(t)
	case string:
		return Scalar{Kind: KindText, Raw: t}
	default:
		b, _ := json.Marshal(t)
		return Scalar{Kind: KindText, Raw: string(b)}
	}
}

// Present reports whether a value was supplied at all.
func (s Scalar) Present() bool {
	return s.Kind != KindMissing
}

// Numeric reports whether the scalar holds a usable number.
func (s Scalar) Numeric() bool {
	return s.Kind == KindInt || s.Kind == KindFloat
}

// String returns the raw text the scalar was built from.
func (s Scalar) String() string {
	if s.Kind == KindMissing {
		return "<missing>"
	}
	return s.Raw
}
