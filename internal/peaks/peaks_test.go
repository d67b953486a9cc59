package peaks

import (
	"errors"
	"math"
	"testing"

	"github.com/HamletTheHamster/fftplot/internal/spectrum"
)

func synthetic(center, width, amp, offset float64) spectrum.Curve {
	var c spectrum.Curve
	for f := 300.0; f <= 700; f++ {
		c.X = append(c.X, f)
		c.Y = append(c.Y, Lorentzian(f, amp, center, width, offset))
	}
	return c
}

func TestLorentzianHalfWidth(t *testing.T) {
	if got := Lorentzian(10, 2, 10, 4, 0); got != 2 {
		t.Errorf("peak height: expected 2, got %v", got)
	}
	if got := Lorentzian(12, 2, 10, 4, 0); math.Abs(got-1) > 1e-12 {
		t.Errorf("half width: expected 1, got %v", got)
	}
}

func TestFitRecoversPeak(t *testing.T) {
	c := synthetic(512, 20, 3, 0.1)

	p, err := Fit(c)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}

	if math.Abs(p.Center-512) > 0.5 {
		t.Errorf("center: expected ~512, got %v", p.Center)
	}
	if math.Abs(p.Width-20) > 2 {
		t.Errorf("width: expected ~20, got %v", p.Width)
	}
	if math.Abs(p.Amplitude-3) > 0.3 {
		t.Errorf("amplitude: expected ~3, got %v", p.Amplitude)
	}
	if math.Abs(p.At(512)-3.1) > 0.3 {
		t.Errorf("At(center): expected ~3.1, got %v", p.At(512))
	}
}

func TestEstimate(t *testing.T) {
	g := estimate(synthetic(450, 30, 1, 0))
	if g.Center != 450 {
		t.Errorf("expected center 450, got %v", g.Center)
	}
	if g.Width < 20 || g.Width > 40 {
		t.Errorf("expected width near 30, got %v", g.Width)
	}
}

func TestFitTooFewPoints(t *testing.T) {
	c := spectrum.Curve{X: []float64{1, 2, 3}, Y: []float64{0, 1, 0}}
	if _, err := Fit(c); !errors.Is(err, ErrTooFewPoints) {
		t.Fatalf("expected ErrTooFewPoints, got %v", err)
	}
}

func TestFitAllKeepsGoing(t *testing.T) {
	d := spectrum.Dataset{
		{Label: "short", Curve: spectrum.Curve{X: []float64{1}, Y: []float64{1}}},
		{Label: "good", Curve: synthetic(600, 25, 2, 0)},
	}

	results := FitAll(d)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Err == nil {
		t.Errorf("expected an error for the short curve")
	}
	if results[1].Err != nil {
		t.Errorf("unexpected error for the good curve: %v", results[1].Err)
	}
	if results[1].Label != "good" {
		t.Errorf("labels out of order: %+v", results)
	}
}
