// Package climate turns a requested temperature into the device commands that reach it.
// Everything here is pure: no I/O, no clocks, no shared state.
package climate

import (
	"fmt"

	"climate_control/internal/models"
)

// TempRange is an inclusive range of whole Fahrenheit degrees.
type TempRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

func (r TempRange) Contains(f int) bool { return f >= r.Min && f <= r.Max }

func (r TempRange) overlaps(o TempRange) bool { return r.Min <= o.Max && o.Min <= r.Max }

// ModeRange pairs a mode with the targets it can reach.
type ModeRange struct {
	Mode  models.OperatingMode `json:"mode"`
	Range TempRange            `json:"range"`
}

// DefaultRanges is the device's mode table, in lookup order.
var DefaultRanges = []ModeRange{
	{Mode: models.ModeCool, Range: TempRange{Min: 66, Max: 79}},
	{Mode: models.ModeDry, Range: TempRange{Min: 80, Max: 89}},
	{Mode: models.ModeExtendedHeat, Range: TempRange{Min: 90, Max: 92}},
}

// Resolver maps target temperatures to operating modes.
type Resolver struct {
	ranges []ModeRange
}

// NewResolver validates ranges and returns a resolver over a copy of them.
// Every range must have Min <= Max and no two ranges may overlap.
func NewResolver(ranges []ModeRange) (*Resolver, error) {
	for i, a := range ranges {
		if a.Range.Min > a.Range.Max {
			return nil, fmt.Errorf("%w: %s has min %d > max %d", ErrInvalidRanges, a.Mode, a.Range.Min, a.Range.Max)
		}
		for _, b := range ranges[i+1:] {
			if a.Range.overlaps(b.Range) {
				return nil, fmt.Errorf("%w: %s %v overlaps %s %v", ErrInvalidRanges, a.Mode, a.Range, b.Mode, b.Range)
			}
		}
	}
	cp := make([]ModeRange, len(ranges))
	copy(cp, ranges)
	return &Resolver{ranges: cp}, nil
}

// MustNewResolver is NewResolver for static tables; it panics on an invalid table.
func MustNewResolver(ranges []ModeRange) *Resolver {
	r, err := NewResolver(ranges)
	if err != nil {
		panic(err)
	}
	return r
}

// Resolve returns the first mode whose range contains targetF.
func (r *Resolver) Resolve(targetF int) (models.OperatingMode, error) {
	for _, mr := range r.ranges {
		if mr.Range.Contains(targetF) {
			return mr.Mode, nil
		}
	}
	return 0, &OutOfRangeError{TargetF: targetF}
}

// Ranges returns a copy of the table.
func (r *Resolver) Ranges() []ModeRange {
	cp := make([]ModeRange, len(r.ranges))
	copy(cp, r.ranges)
	return cp
}

var defaultResolver = MustNewResolver(DefaultRanges)

// ResolveMode resolves targetF against DefaultRanges.
func ResolveMode(targetF int) (models.OperatingMode, error) {
	return defaultResolver.Resolve(targetF)
}
