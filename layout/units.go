package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// This file defines unit-safe types and helpers for lengths. The core works in points.

// Unit represents the original unit of a length value as specified in DSL.
type Unit int

const (
	UnitNone    Unit = iota // unit-less numbers, read as points
	UnitMM                  // millimeters
	UnitCM                  // centimeters
	UnitIN                  // inches
	UnitPT                  // points
	UnitPercent             // percentage of a reference length
)

// Conversion constants between pt and mm.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
)

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitMM:
		return "mm"
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	case UnitPT:
		return "pt"
	case UnitPercent:
		return "%"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func (l Length) IsZero() bool { return l.Value == 0 }

// ToPT converts the length to points. Percentages have no absolute value and
// return the bare number; use Resolve for them.
func (l Length) ToPT() float64 {
	switch l.Unit {
	case UnitMM:
		return l.Value * MmToPt
	case UnitCM:
		return l.Value * 10 * MmToPt
	case UnitIN:
		return l.Value * 72
	default:
		return l.Value
	}
}

func (l Length) ToMM() float64 { return l.ToPT() * PtToMm }

// Resolve converts to points, taking percentages of reference.
func (l Length) Resolve(reference float64) float64 {
	if l.Unit == UnitPercent {
		return reference * l.Value / 100
	}
	return l.ToPT()
}

// ParseLength parses a DSL length such as "12", "12pt", "10mm", "2.5cm", "1in" or "50%".
func ParseLength(value string) (Length, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, fmt.Errorf("长度为空")
	}
	unit := UnitNone
	num := v
	for _, suf := range []struct {
		s string
		u Unit
	}{{"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}, {"%", UnitPercent}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, fmt.Errorf("无法解析长度 %q: %w", value, err)
	}
	return Length{Value: f, Unit: unit}, nil
}

// SpacingKind distinguishes factor-based vs absolute line spacing.
type SpacingKind int

const (
	SpacingFactor SpacingKind = iota
	SpacingAbsolute
)

// SpacingSpec preserves author intent for line spacing: a factor of the font size (e.g. 0.2x)
// or an absolute length (e.g. 2pt).
type SpacingSpec struct {
	Kind   SpacingKind `json:"kind"`
	Factor float64     `json:"factor,omitempty"`
	Len    Length      `json:"len,omitempty"`
}

// ParseSpacing accepts "0.2x" or any length.
func ParseSpacing(value string) (SpacingSpec, error) {
	v := strings.TrimSpace(value)
	if strings.HasSuffix(v, "x") {
		f, err := strconv.ParseFloat(strings.TrimSuffix(v, "x"), 64)
		if err != nil {
			return SpacingSpec{}, fmt.Errorf("无法解析行距 %q: %w", value, err)
		}
		return SpacingSpec{Kind: SpacingFactor, Factor: f}, nil
	}
	l, err := ParseLength(v)
	if err != nil {
		return SpacingSpec{}, err
	}
	return SpacingSpec{Kind: SpacingAbsolute, Len: l}, nil
}

// Resolve computes the spacing in points for the given font size (points).
func (s SpacingSpec) Resolve(fontSize float64) float64 {
	if s.Kind == SpacingFactor {
		return fontSize * s.Factor
	}
	return s.Len.ToPT()
}
