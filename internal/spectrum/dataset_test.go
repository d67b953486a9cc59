package spectrum

import (
	"errors"
	"math"
	"testing"
)

func curve(t *testing.T, x, y []float64) Curve {
	t.Helper()
	c, err := NewCurve(x, y)
	if err != nil {
		t.Fatalf("NewCurve: %v", err)
	}
	return c
}

func TestBetweenInclusive(t *testing.T) {
	c := curve(t, []float64{50, 100, 101, 699, 700, 701}, []float64{1, 2, 3, 4, 5, 6})

	got := c.Between(100, 700)
	want := []float64{100, 101, 699, 700}
	if got.Len() != len(want) {
		t.Fatalf("expected %d points, got %d (%v)", len(want), got.Len(), got.X)
	}
	for i, x := range want {
		if got.X[i] != x {
			t.Errorf("point %d: expected x=%v, got %v", i, x, got.X[i])
		}
	}
	if got.Y[0] != 2 || got.Y[3] != 5 {
		t.Errorf("y values not carried with x: %v", got.Y)
	}
	if c.Len() != 6 {
		t.Errorf("Between modified the source curve")
	}
}

func TestNewCurveLengthMismatch(t *testing.T) {
	if _, err := NewCurve([]float64{1, 2}, []float64{1}); err == nil {
		t.Fatalf("expected error for mismatched lengths")
	}
}

func TestGlobalFactorIsMaxOverAllCurves(t *testing.T) {
	d := Dataset{
		{Label: "a", Curve: curve(t, []float64{1, 2}, []float64{0.5, 3})},
		{Label: "b", Curve: curve(t, []float64{1, 2}, []float64{7, 1})},
		{Label: "c", Curve: curve(t, []float64{1, 2}, []float64{2, 2})},
	}

	f, err := d.Factor(Normalization{Mode: NormGlobal})
	if err != nil {
		t.Fatalf("Factor: %v", err)
	}
	if f != 7 {
		t.Errorf("expected global factor 7, got %v", f)
	}
}

func TestReferenceFactorUsesOnlyReferenceCurve(t *testing.T) {
	d := Dataset{
		{Label: "-5 deg", Curve: curve(t, []float64{1, 2}, []float64{9, 1})},
		{Label: "0 deg", Curve: curve(t, []float64{1, 2}, []float64{2, 1})},
	}

	f, err := d.Factor(Normalization{Mode: NormReference, Reference: 1})
	if err != nil {
		t.Fatalf("Factor: %v", err)
	}
	if f != 2 {
		t.Errorf("expected reference factor 2, got %v", f)
	}

	_, err = d.Factor(Normalization{Mode: NormReference, Reference: 5})
	if !errors.Is(err, ErrReferenceOutOfRange) {
		t.Errorf("expected ErrReferenceOutOfRange, got %v", err)
	}
}

func TestNormalizeThenStack(t *testing.T) {
	angles := []string{"-10 deg", "-5 deg", "0 deg", "5 deg", "10 deg"}
	orig := make(Dataset, len(angles))
	for i, a := range angles {
		y := []float64{1, 1.5, 0.5}
		if a == "0 deg" {
			y = []float64{0.25, 2.0, 1}
		}
		orig[i] = Series{Label: a, Curve: curve(t, []float64{100, 200, 300}, y)}
	}

	norm, f, err := orig.Normalize(Normalization{Mode: NormReference, Reference: 2})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if f != 2.0 {
		t.Fatalf("expected factor 2.0, got %v", f)
	}

	const k = 1.1
	stacked := norm.Stack(k)
	for i, s := range stacked {
		for j, y := range s.Curve.Y {
			want := orig[i].Curve.Y[j]/f + float64(i)*k
			if math.Abs(y-want) > 1e-12 {
				t.Errorf("curve %d (%s) point %d: expected %v, got %v", i, s.Label, j, want, y)
			}
		}
	}

	// "0 deg" sits at list index 2, so it carries 2*k, not zero.
	if got := stacked[2].Curve.Y[1]; math.Abs(got-(1+2*k)) > 1e-12 {
		t.Errorf("expected 0 deg peak at %v, got %v", 1+2*k, got)
	}
	if orig[2].Curve.Y[1] != 2.0 {
		t.Errorf("Normalize modified the source dataset")
	}
}

func TestPerCurveNormalization(t *testing.T) {
	d := Dataset{
		{Label: "Rxx", Curve: curve(t, []float64{1, 2}, []float64{4, 2})},
		{Label: "Rxy", Curve: curve(t, []float64{1, 2}, []float64{1, 0.5})},
	}

	norm, _, err := d.Normalize(Normalization{Mode: NormPerCurve})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	for _, s := range norm {
		m, _ := s.Curve.MaxY()
		if m != 1 {
			t.Errorf("%s: expected max 1, got %v", s.Label, m)
		}
	}
}

func TestNormalizeErrors(t *testing.T) {
	var empty Dataset
	if _, _, err := empty.Normalize(Normalization{Mode: NormGlobal}); !errors.Is(err, ErrEmptyDataset) {
		t.Errorf("expected ErrEmptyDataset, got %v", err)
	}

	zero := Dataset{{Label: "flat", Curve: curve(t, []float64{1, 2}, []float64{0, 0})}}
	if _, _, err := zero.Normalize(Normalization{Mode: NormGlobal}); !errors.Is(err, ErrZeroNormalization) {
		t.Errorf("expected ErrZeroNormalization, got %v", err)
	}
}

func TestParseNormMode(t *testing.T) {
	for in, want := range map[string]NormMode{
		"":          NormGlobal,
		"Global":    NormGlobal,
		"reference": NormReference,
		"per-curve": NormPerCurve,
		"none":      NormNone,
	} {
		got, err := ParseNormMode(in)
		if err != nil {
			t.Fatalf("ParseNormMode(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ParseNormMode(%q) = %q, want %q", in, got, want)
		}
	}
	if _, err := ParseNormMode("median"); err == nil {
		t.Errorf("expected error for unknown mode")
	}
}

func TestYRange(t *testing.T) {
	d := Dataset{
		{Label: "a", Curve: curve(t, []float64{1, 2}, []float64{-1, 3})},
		{Label: "b", Curve: curve(t, nil, nil)},
		{Label: "c", Curve: curve(t, []float64{1}, []float64{5})},
	}
	lo, hi, err := d.YRange()
	if err != nil {
		t.Fatalf("YRange: %v", err)
	}
	if lo != -1 || hi != 5 {
		t.Errorf("expected [-1, 5], got [%v, %v]", lo, hi)
	}
}
