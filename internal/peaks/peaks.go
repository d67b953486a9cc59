// Package peaks fits a Lorentzian to the strongest peak of an FFT curve.
package peaks

import (
	"fmt"
	"math"

	"github.com/maorshutman/lm"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/HamletTheHamster/fftplot/internal/spectrum"
)

var (
	ErrTooFewPoints = errors.New("too few points to fit a peak")
	ErrFitDiverged  = errors.New("peak fit did not converge to finite parameters")
)

// minPoints is the number of free parameters plus one.
const minPoints = 5

// Peak is a fitted Lorentzian. Width is the full width at half maximum.
type Peak struct {
	Center    float64
	Width     float64
	Amplitude float64
	Offset    float64
}

func (p Peak) String() string {
	return fmt.Sprintf("center %.4f, fwhm %.4f, amplitude %.4g", p.Center, p.Width, p.Amplitude)
}

// At evaluates the fitted line shape at x.
func (p Peak) At(x float64) float64 {
	return Lorentzian(x, p.Amplitude, p.Center, p.Width, p.Offset)
}

// Lorentzian has peak height A above the offset C at f0 and full width
// gamma at half maximum.
func Lorentzian(
	f, A, f0, gamma, C float64,
) (
	float64,
) {

	return .25*A*math.Pow(gamma, 2)/(math.Pow(f-f0, 2)+(.25*math.Pow(gamma, 2))) + C
}

func residuals(
	params, x, y []float64,
) (
	[]float64,
) {

	A, f0, gamma, C := params[0], params[1], params[2], params[3]
	r := make([]float64, len(x))

	for i, f := range x {
		r[i] = y[i] - Lorentzian(f, A, f0, gamma, C)
	}

	return r
}

// Fit finds the strongest point of c, fits a window of three estimated
// widths on either side, and returns the fitted peak.
func Fit(c spectrum.Curve) (Peak, error) {
	if c.Len() < minPoints {
		return Peak{}, errors.Wrapf(ErrTooFewPoints, "%d points", c.Len())
	}

	guess := estimate(c)
	window := c.Between(guess.Center-3*guess.Width, guess.Center+3*guess.Width)
	if window.Len() < minPoints {
		window = c
	}

	params, err := fitLorentzian(window.X, window.Y, []float64{guess.Amplitude, guess.Center, guess.Width, guess.Offset})
	if err != nil {
		return Peak{}, err
	}

	for _, p := range params {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return Peak{}, ErrFitDiverged
		}
	}

	return Peak{
		Amplitude: params[0],
		Center:    params[1],
		Width:     math.Abs(params[2]),
		Offset:    params[3],
	}, nil
}

// estimate walks out from the maximum to the half-height crossings.
func estimate(c spectrum.Curve) Peak {
	top := floats.MaxIdx(c.Y)
	base := floats.Min(c.Y)
	half := base + (c.Y[top]-base)/2

	lo := top
	for lo > 0 && c.Y[lo] > half {
		lo--
	}
	hi := top
	for hi < c.Len()-1 && c.Y[hi] > half {
		hi++
	}

	width := c.X[hi] - c.X[lo]
	if width <= 0 {
		// Single-sample peak: one x step.
		width = math.Abs(c.X[c.Len()-1]-c.X[0]) / float64(c.Len()-1)
	}

	return Peak{
		Center:    c.X[top],
		Width:     width,
		Amplitude: c.Y[top] - base,
		Offset:    base,
	}
}

func fitLorentzian(
	x, y, initialParams []float64,
) (
	[]float64, error,
) {

	resFunc := func(dst, params []float64) {
		r := residuals(params, x, y)
		copy(dst, r)
	}

	nj := &lm.NumJac{Func: resFunc}

	problem := lm.LMProblem{
		Dim:        4,
		Size:       len(x),
		Func:       resFunc,
		Jac:        nj.Jac,
		InitParams: initialParams,
		Tau:        1e-6,
		Eps1:       1e-8,
		Eps2:       1e-8,
	}

	result, err := lm.LM(problem, &lm.Settings{Iterations: 1000, ObjectiveTol: 1e-16})
	if err != nil {
		return nil, errors.Wrap(err, "lorentzian fit")
	}

	return result.X, nil
}

// Result is the fit of one labelled curve.
type Result struct {
	Label string
	Peak  Peak
	Err   error
}

// FitAll fits every series. A failed fit is recorded on its result rather
// than stopping the others.
func FitAll(d spectrum.Dataset) []Result {
	out := make([]Result, len(d))
	for i, s := range d {
		p, err := Fit(s.Curve)
		out[i] = Result{Label: s.Label, Peak: p, Err: err}
	}
	return out
}
