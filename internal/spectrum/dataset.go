package spectrum

import (
	"math"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrEmptyDataset        = errors.New("dataset has no curves")
	ErrReferenceOutOfRange = errors.New("normalization reference index out of range")
	ErrZeroNormalization   = errors.New("normalization factor is zero")
)

// Series is one curve and the sweep label it is plotted under.
type Series struct {
	Label string
	Curve Curve
}

// Dataset is the ordered list of series for one figure. Order decides the
// stacking offset and the legend order.
type Dataset []Series

type NormMode string

const (
	NormGlobal    NormMode = "global"
	NormReference NormMode = "reference"
	NormPerCurve  NormMode = "per-curve"
	NormNone      NormMode = "none"
)

func ParseNormMode(s string) (NormMode, error) {
	switch NormMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", NormGlobal:
		return NormGlobal, nil
	case NormReference, "ref":
		return NormReference, nil
	case NormPerCurve, "self":
		return NormPerCurve, nil
	case NormNone:
		return NormNone, nil
	}
	return "", errors.Errorf("unknown normalization mode %q", s)
}

// Normalization names how a dataset is scaled. Reference is a list index,
// used only by NormReference.
type Normalization struct {
	Mode      NormMode
	Reference int
}

func (d Dataset) Labels() []string {
	labels := make([]string, len(d))
	for i, s := range d {
		labels[i] = s.Label
	}
	return labels
}

func (d Dataset) Clone() Dataset {
	out := make(Dataset, len(d))
	for i, s := range d {
		out[i] = Series{Label: s.Label, Curve: s.Curve.Clone()}
	}
	return out
}

// Between filters every curve to the same x-range.
func (d Dataset) Between(a, b float64) Dataset {
	out := make(Dataset, len(d))
	for i, s := range d {
		out[i] = Series{Label: s.Label, Curve: s.Curve.Between(a, b)}
	}
	return out
}

// Factor returns the scalar that global or reference normalization divides
// by. Per-curve and none have no single factor and return 1.
func (d Dataset) Factor(
	n Normalization,
) (
	float64, error,
) {

	if len(d) == 0 {
		return 0, ErrEmptyDataset
	}

	var factor float64
	switch n.Mode {
	case NormGlobal, "":
		factor = math.Inf(-1)
		for _, s := range d {
			m, err := s.Curve.MaxY()
			if err != nil {
				continue
			}
			factor = math.Max(factor, m)
		}
		if math.IsInf(factor, -1) {
			return 0, errors.Wrap(ErrEmptyCurve, "every curve is empty after filtering")
		}
	case NormReference:
		if n.Reference < 0 || n.Reference >= len(d) {
			return 0, errors.Wrapf(ErrReferenceOutOfRange, "index %d, %d curves", n.Reference, len(d))
		}
		m, err := d[n.Reference].Curve.MaxY()
		if err != nil {
			return 0, errors.Wrapf(err, "reference curve %q", d[n.Reference].Label)
		}
		factor = m
	case NormPerCurve, NormNone:
		return 1, nil
	default:
		return 0, errors.Errorf("unknown normalization mode %q", n.Mode)
	}

	if factor == 0 || math.IsNaN(factor) {
		return 0, ErrZeroNormalization
	}
	return factor, nil
}

// Normalize divides every curve by the factor n selects and returns the
// new dataset with the factor used. For NormPerCurve each curve is divided
// by its own maximum and the returned factor is 1.
func (d Dataset) Normalize(
	n Normalization,
) (
	Dataset, float64, error,
) {

	factor, err := d.Factor(n)
	if err != nil {
		return nil, 0, err
	}

	out := make(Dataset, len(d))
	for i, s := range d {
		switch n.Mode {
		case NormPerCurve:
			m, err := s.Curve.MaxY()
			if err != nil {
				return nil, 0, errors.Wrapf(err, "curve %q", s.Label)
			}
			if m == 0 || math.IsNaN(m) {
				return nil, 0, errors.Wrapf(ErrZeroNormalization, "curve %q", s.Label)
			}
			out[i] = Series{Label: s.Label, Curve: s.Curve.Scale(1 / m)}
		case NormNone:
			out[i] = Series{Label: s.Label, Curve: s.Curve.Clone()}
		default:
			out[i] = Series{Label: s.Label, Curve: s.Curve.Scale(1 / factor)}
		}
	}

	return out, factor, nil
}

// Stack shifts curve i up by i*offset, by list position.
func (d Dataset) Stack(offset float64) Dataset {
	out := make(Dataset, len(d))
	for i, s := range d {
		out[i] = Series{Label: s.Label, Curve: s.Curve.Shift(float64(i) * offset)}
	}
	return out
}

// YRange is the y extent over every non-empty curve.
func (d Dataset) YRange() (min, max float64, err error) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, s := range d {
		lo, err := s.Curve.MinY()
		if err != nil {
			continue
		}
		hi, _ := s.Curve.MaxY()
		min = math.Min(min, lo)
		max = math.Max(max, hi)
	}
	if math.IsInf(min, 1) {
		return 0, 0, ErrEmptyDataset
	}
	return min, max, nil
}
