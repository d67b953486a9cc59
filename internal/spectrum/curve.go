// Package spectrum holds the curves read from the FFT output tree and the
// arithmetic applied to them before plotting: range filtering,
// normalization and stacking.
package spectrum

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot/plotter"
)

var ErrEmptyCurve = errors.New("curve has no points")

// Curve is an ordered run of (x, y) points, x increasing.
type Curve struct {
	X []float64
	Y []float64
}

func NewCurve(
	x, y []float64,
) (
	Curve, error,
) {

	if len(x) != len(y) {
		return Curve{}, errors.Errorf("x and y lengths differ: %d != %d", len(x), len(y))
	}
	return Curve{X: x, Y: y}, nil
}

func (c Curve) Len() int {
	return len(c.X)
}

func (c Curve) Clone() Curve {
	return Curve{
		X: append([]float64(nil), c.X...),
		Y: append([]float64(nil), c.Y...),
	}
}

// Between keeps the points with a <= x <= b.
func (c Curve) Between(
	a, b float64,
) (
	Curve,
) {

	var out Curve
	for i, x := range c.X {
		if x < a || x > b {
			continue
		}
		out.X = append(out.X, x)
		out.Y = append(out.Y, c.Y[i])
	}

	return out
}

func (c Curve) MaxY() (float64, error) {
	if len(c.Y) == 0 {
		return math.NaN(), ErrEmptyCurve
	}
	return floats.Max(c.Y), nil
}

func (c Curve) MinY() (float64, error) {
	if len(c.Y) == 0 {
		return math.NaN(), ErrEmptyCurve
	}
	return floats.Min(c.Y), nil
}

// Scale returns a copy with every y multiplied by f.
func (c Curve) Scale(f float64) Curve {
	out := c.Clone()
	floats.Scale(f, out.Y)
	return out
}

// Shift returns a copy with d added to every y.
func (c Curve) Shift(d float64) Curve {
	out := c.Clone()
	floats.AddConst(d, out.Y)
	return out
}

// XYs converts the curve for the gonum plotters.
func (c Curve) XYs() plotter.XYs {
	xy := make(plotter.XYs, len(c.X))

	for i := range xy {
		xy[i].X = c.X[i]
		xy[i].Y = c.Y[i]
	}

	return xy
}

// Columns is the [][]float64{x, y} layout glot and the project sheets use.
func (c Curve) Columns() [][]float64 {
	return [][]float64{c.X, c.Y}
}
