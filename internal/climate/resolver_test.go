package climate

import (
	"errors"
	"testing"

	"climate_control/internal/models"
)

func TestResolveMode_CoversWholeRangeWithExactlyOneMode(t *testing.T) {
	for f := 66; f <= 92; f++ {
		mode, err := ResolveMode(f)
		if err != nil {
			t.Fatalf("ResolveMode(%d) unexpected error: %v", f, err)
		}
		matches := 0
		for _, mr := range DefaultRanges {
			if mr.Range.Contains(f) {
				matches++
				if mr.Mode != mode {
					t.Fatalf("ResolveMode(%d)=%s, containing range belongs to %s", f, mode, mr.Mode)
				}
			}
		}
		if matches != 1 {
			t.Fatalf("%d°F is contained in %d ranges, want 1", f, matches)
		}
	}
}

func TestResolveMode_Boundaries(t *testing.T) {
	cases := []struct {
		f    int
		want models.OperatingMode
	}{
		{66, models.ModeCool},
		{79, models.ModeCool},
		{80, models.ModeDry},
		{89, models.ModeDry},
		{90, models.ModeExtendedHeat},
		{92, models.ModeExtendedHeat},
	}
	for _, tc := range cases {
		got, err := ResolveMode(tc.f)
		if err != nil {
			t.Fatalf("ResolveMode(%d): %v", tc.f, err)
		}
		if got != tc.want {
			t.Fatalf("ResolveMode(%d)=%s, want %s", tc.f, got, tc.want)
		}
	}
}

func TestResolveMode_OutOfRange(t *testing.T) {
	for _, f := range []int{-40, 0, 32, 65, 93, 100, 255} {
		_, err := ResolveMode(f)
		if err == nil {
			t.Fatalf("ResolveMode(%d) expected error", f)
		}
		var oor *OutOfRangeError
		if !errors.As(err, &oor) {
			t.Fatalf("ResolveMode(%d) error %T, want *OutOfRangeError", f, err)
		}
		if oor.TargetF != f {
			t.Fatalf("OutOfRangeError.TargetF=%d, want %d", oor.TargetF, f)
		}
		if !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("expected errors.Is(err, ErrOutOfRange)")
		}
	}
}

func TestDefaultRanges_PairwiseDisjoint(t *testing.T) {
	for i, a := range DefaultRanges {
		for _, b := range DefaultRanges[i+1:] {
			if a.Range.overlaps(b.Range) {
				t.Fatalf("%s %v overlaps %s %v", a.Mode, a.Range, b.Mode, b.Range)
			}
		}
	}
}

func TestNewResolver_RejectsInvalidTables(t *testing.T) {
	cases := []struct {
		name   string
		ranges []ModeRange
	}{
		{
			name: "overlap",
			ranges: []ModeRange{
				{Mode: models.ModeCool, Range: TempRange{Min: 66, Max: 80}},
				{Mode: models.ModeDry, Range: TempRange{Min: 80, Max: 89}},
			},
		},
		{
			name: "nested",
			ranges: []ModeRange{
				{Mode: models.ModeCool, Range: TempRange{Min: 60, Max: 95}},
				{Mode: models.ModeDry, Range: TempRange{Min: 80, Max: 89}},
			},
		},
		{
			name: "inverted",
			ranges: []ModeRange{
				{Mode: models.ModeCool, Range: TempRange{Min: 79, Max: 66}},
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewResolver(tc.ranges); !errors.Is(err, ErrInvalidRanges) {
				t.Fatalf("expected ErrInvalidRanges, got %v", err)
			}
		})
	}
}

func TestNewResolver_GapIsOutOfRange(t *testing.T) {
	r, err := NewResolver([]ModeRange{
		{Mode: models.ModeCool, Range: TempRange{Min: 66, Max: 70}},
		{Mode: models.ModeDry, Range: TempRange{Min: 75, Max: 80}},
	})
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	if _, err := r.Resolve(72); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected out of range inside gap, got %v", err)
	}
}

func TestMustNewResolver_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	MustNewResolver([]ModeRange{
		{Mode: models.ModeCool, Range: TempRange{Min: 66, Max: 70}},
		{Mode: models.ModeDry, Range: TempRange{Min: 70, Max: 80}},
	})
}
