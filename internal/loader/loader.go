package loader

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/HamletTheHamster/fftplot/internal/spectrum"
)

// ErrRequiredMissing is returned by Require when a sweep point that must
// exist has no data file.
var ErrRequiredMissing = errors.New("required data file missing")

type Loader struct {
	Layout Layout
}

func New(root string) *Loader {
	return &Loader{Layout: Layout{Root: root}}
}

// Find returns the first file in dir whose name starts with prefix. A
// missing directory or no match is reported as found=false with no error.
func Find(
	dir, prefix string,
) (
	string, bool, error,
) {

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, errors.Wrapf(err, "failed to list %s", dir)
	}

	// ReadDir returns entries sorted by name.
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasPrefix(e.Name(), prefix) {
			return filepath.Join(dir, e.Name()), true, nil
		}
	}

	return "", false, nil
}

// Load reads the curve for one sweep point. found is false when the
// directory or the file does not exist, which is an expected outcome.
func (l *Loader) Load(
	q Query,
	p SweepPoint,
) (
	spectrum.Curve, bool, error,
) {

	dir := l.Layout.Dir(q)
	path, found, err := Find(dir, p.Prefix)
	if err != nil || !found {
		return spectrum.Curve{}, false, err
	}

	c, err := ReadCurveFile(path)
	if err != nil {
		return spectrum.Curve{}, false, err
	}

	logrus.WithFields(logrus.Fields{
		"query": q.String(),
		"point": p.Label,
		"file":  filepath.Base(path),
	}).Debug("found sweep point")

	return c, true, nil
}

// Require is Load for sweep points that must exist.
func (l *Loader) Require(
	q Query,
	p SweepPoint,
) (
	spectrum.Curve, error,
) {

	c, found, err := l.Load(q, p)
	if err != nil {
		return spectrum.Curve{}, err
	}
	if !found {
		return spectrum.Curve{}, errors.Wrapf(ErrRequiredMissing, "%s in %s", p.Label, l.Layout.Dir(q))
	}
	return c, nil
}

// LoadSymmetrized reads the fixed-name file of a symmetrized campaign.
func (l *Loader) LoadSymmetrized(
	sample, campaign, variable, name string,
) (
	spectrum.Curve, bool, error,
) {

	path := l.Layout.SymmetrizedPath(sample, campaign, variable, name)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return spectrum.Curve{}, false, nil
		}
		return spectrum.Curve{}, false, errors.Wrapf(err, "failed to stat %s", path)
	}

	c, err := ReadCurveFile(path)
	if err != nil {
		return spectrum.Curve{}, false, err
	}
	return c, true, nil
}

func ReadCurveFile(path string) (spectrum.Curve, error) {
	f, err := os.Open(path)
	if err != nil {
		return spectrum.Curve{}, errors.Wrapf(err, "failed to open %s", path)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logrus.Warnf("failed to close %s", path)
		}
	}()

	c, err := ReadCurve(f)
	if err != nil {
		return spectrum.Curve{}, errors.Wrapf(err, "failed to read %s", path)
	}
	return c, nil
}

// ReadCurve parses a headerless two-column numeric table.
func ReadCurve(r io.Reader) (spectrum.Curve, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	var x, y []float64
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return spectrum.Curve{}, err
		}
		line, _ := reader.FieldPos(0)

		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}
		if len(row) < 2 {
			return spectrum.Curve{}, errors.Errorf("line %d: expected 2 columns, got %d", line, len(row))
		}

		xv, err := strconv.ParseFloat(strings.TrimSpace(row[0]), 64)
		if err != nil {
			return spectrum.Curve{}, errors.Wrapf(err, "line %d", line)
		}
		yv, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil {
			return spectrum.Curve{}, errors.Wrapf(err, "line %d", line)
		}

		x = append(x, xv)
		y = append(y, yv)
	}

	return spectrum.NewCurve(x, y)
}
