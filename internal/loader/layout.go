// Package loader finds and reads FFT curves in the measurement output tree:
//
//	<root>/<sample>/output/<measurement-folder>/<variable>/<type>/<prefix><value>_*
package loader

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Kind is the parameter a measurement campaign sweeps.
type Kind string

const (
	Angle       Kind = "angle"
	Temperature Kind = "temperature"
	Symmetrized Kind = "symmetrized"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case Angle:
		return Angle, nil
	case Temperature, "temp":
		return Temperature, nil
	case Symmetrized, "symm":
		return Symmetrized, nil
	}
	return "", errors.Errorf("unknown sweep kind %q", s)
}

// Short is the directory name plots of this kind are filed under.
func (k Kind) Short() string {
	if k == Symmetrized {
		return "symm"
	}
	return string(k)
}

// Query identifies one measurement directory. Folder overrides the folder
// name derived from Kind, Commutation and Direction.
type Query struct {
	Sample      string
	Kind        Kind
	Commutation string
	Direction   string
	Folder      string
	Variable    string
	Type        string
}

func (q Query) String() string {
	return fmt.Sprintf("%s/%s/%s/%s", q.Sample, q.MeasurementFolder(), q.Variable, q.dataType())
}

func (q Query) dataType() string {
	if q.Type == "" {
		return "fft"
	}
	return q.Type
}

// MeasurementFolder is the campaign folder name, which encodes the
// commutation and sweep direction.
func (q Query) MeasurementFolder() string {
	if q.Folder != "" {
		return q.Folder
	}

	switch q.Kind {
	case Angle:
		return fmt.Sprintf("Angle_Dependence_%s_%s", q.Commutation, q.Direction)
	case Temperature:
		return fmt.Sprintf("Temperature_Dependence_perp_%s_%s", q.Commutation, q.Direction)
	}
	return fmt.Sprintf("%s_%s", q.Commutation, q.Direction)
}

// Layout is the root of one dataset tree.
type Layout struct {
	Root string
}

func (l Layout) Dir(q Query) string {
	return filepath.Join(l.Root, q.Sample, "output", q.MeasurementFolder(), q.Variable, q.dataType())
}

// SymmetrizedPath is the fixed file a symmetrized campaign writes per name.
func (l Layout) SymmetrizedPath(sample, campaign, variable, name string) string {
	return filepath.Join(l.Root, sample, "output", campaign, variable, "fft", name+".csv")
}

// AnglePrefix is the filename prefix for an angle: the absolute integer
// part, preceded by "m" when negative.
func AnglePrefix(angle float64) string {
	prefix := ""
	if angle < 0 {
		prefix = "m"
	}
	return prefix + strconv.Itoa(int(math.Abs(angle))) + "_"
}

func AngleLabel(angle float64) string {
	return strconv.FormatFloat(angle, 'f', -1, 64) + " deg"
}

// TemperaturePrefix is the temperature token itself, e.g. "1p3".
func TemperaturePrefix(token string) string {
	return token
}

// TemperatureLabel turns "1p3" into "1.3 K".
func TemperatureLabel(token string) string {
	return strings.ReplaceAll(token, "p", ".") + " K"
}

// SweepPoint is one value of a sweep as it appears in a file name and in
// a legend.
type SweepPoint struct {
	Prefix string
	Label  string
}

func AnglePoint(angle float64) SweepPoint {
	return SweepPoint{Prefix: AnglePrefix(angle), Label: AngleLabel(angle)}
}

func TemperaturePoint(token string) SweepPoint {
	return SweepPoint{Prefix: TemperaturePrefix(token), Label: TemperatureLabel(token)}
}

// Points converts raw sweep values from a config into sweep points.
func Points(
	kind Kind,
	values []string,
) (
	[]SweepPoint, error,
) {

	points := make([]SweepPoint, 0, len(values))
	for _, v := range values {
		switch kind {
		case Angle:
			a, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, errors.Wrapf(err, "angle %q", v)
			}
			points = append(points, AnglePoint(a))
		case Temperature:
			points = append(points, TemperaturePoint(strings.TrimSpace(v)))
		default:
			return nil, errors.Errorf("%s sweeps have no sweep points", kind)
		}
	}

	return points, nil
}
