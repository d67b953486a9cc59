package figure

import (
	"math"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/HamletTheHamster/fftplot/internal/spectrum"
)

// ProjectWriter saves the native project file next to the exports.
type ProjectWriter interface {
	WriteProject(path string, ds spectrum.Dataset, opts Options) error
}

// Figure is what one Plot call wrote.
type Figure struct {
	Name    string
	Files   []string
	Project string
}

// File returns the export with the given extension, or "".
func (f Figure) File(ext string) string {
	for _, p := range f.Files {
		if filepath.Ext(p) == "."+ext {
			return p
		}
	}
	return ""
}

// Session is an explicit handle on one running Backend.
type Session struct {
	backend Backend
	plotted int

	// Projects is optional; without it SaveProject is ignored.
	Projects ProjectWriter
}

func Open(open Opener) (*Session, error) {
	b, err := open()
	if err != nil {
		return nil, errors.Wrap(err, "failed to start graphing backend")
	}
	return &Session{backend: b}, nil
}

func (s *Session) Close() error {
	if s.backend == nil {
		return nil
	}
	err := s.backend.Close()
	s.backend = nil
	return err
}

// With opens a session, runs fn, and closes the session on every exit
// path, panics included.
func With(
	open Opener,
	fn func(*Session) error,
) (
	err error,
) {

	s, err := Open(open)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil {
			if err == nil {
				err = errors.Wrap(cerr, "failed to close graphing backend")
			} else {
				logrus.WithError(cerr).Warn("failed to close graphing backend")
			}
		}
	}()

	return fn(s)
}

// Plot formats and exports one figure. The first figure uses the graph
// space of the fresh backend; later figures start a new project.
func (s *Session) Plot(
	ds spectrum.Dataset,
	opts Options,
) (
	Figure, error,
) {

	if s.backend == nil {
		return Figure{}, errors.New("session is closed")
	}
	if !hasPoints(ds) {
		return Figure{}, ErrNothingToPlot
	}

	opts = opts.withDefaults()
	theme, err := LookupTheme(opts.Theme)
	if err != nil {
		return Figure{}, err
	}
	colors, err := Colors(opts.Palette, len(ds), opts.Stretch)
	if err != nil {
		return Figure{}, err
	}
	exts := make([]string, len(opts.Formats))
	for i, f := range opts.Formats {
		if exts[i], err = normalizeFormat(f); err != nil {
			return Figure{}, err
		}
	}

	if s.plotted > 0 {
		if err := s.backend.NewProject(); err != nil {
			return Figure{}, errors.Wrap(err, "new project")
		}
	}
	s.plotted++

	// 1. graph
	if err := s.backend.NewGraph(opts.Filename); err != nil {
		return Figure{}, errors.Wrap(err, "new graph")
	}

	// 2. series
	drawn := ds
	if opts.Offset > 0 {
		drawn = ds.Stack(opts.Offset)
	}
	for _, series := range drawn {
		if err := s.backend.AddSeries(series.Label, series.Curve); err != nil {
			return Figure{}, errors.Wrapf(err, "add series %q", series.Label)
		}
	}

	// 3. axes
	axes, err := axesFor(drawn, opts)
	if err != nil {
		return Figure{}, err
	}
	if err := s.backend.SetAxes(axes); err != nil {
		return Figure{}, errors.Wrap(err, "set axes")
	}

	// 4. theme
	if err := s.backend.ApplyTheme(theme); err != nil {
		return Figure{}, errors.Wrapf(err, "apply theme %q", theme.Name)
	}

	// 5. overrides
	o := Overrides{
		Colors:           colors,
		LineWidth:        opts.LineWidth,
		HideYTickLabels:  !opts.ShowYTickLabels,
		LegendDescending: true,
		LegendMargin:     opts.LegendMargin,
		Grid:             opts.Grid,
	}
	if err := s.backend.Override(o); err != nil {
		return Figure{}, errors.Wrap(err, "override theme")
	}

	// 6. export
	if opts.Directory != "" {
		if err := os.MkdirAll(opts.Directory, 0755); err != nil {
			return Figure{}, errors.Wrapf(err, "failed to create %s", opts.Directory)
		}
	}

	fig := Figure{Name: opts.Filename}
	base := filepath.Join(opts.Directory, opts.Filename)
	for _, ext := range exts {
		path := base + "." + ext
		if err := s.backend.Export(path, ext); err != nil {
			return Figure{}, errors.Wrapf(err, "export %s", path)
		}
		fig.Files = append(fig.Files, path)
	}

	if opts.SaveProject && s.Projects != nil {
		path := base + ".xlsx"
		if err := s.Projects.WriteProject(path, ds, opts); err != nil {
			return Figure{}, errors.Wrapf(err, "save project %s", path)
		}
		fig.Project = path
	}

	logrus.WithFields(logrus.Fields{
		"figure": base,
		"series": len(ds),
	}).Info("figure written")

	return fig, nil
}

// axesFor fills in the ranges left at zero from the drawn data.
func axesFor(
	drawn spectrum.Dataset,
	opts Options,
) (
	Axes, error,
) {

	x := Axis{Label: opts.XLabel, Min: opts.XStart, Max: opts.XEnd, Tick: opts.XTick}
	y := Axis{Label: opts.YLabel, Min: opts.YStart, Max: opts.YEnd, Tick: opts.YTick}

	if x.Min == x.Max {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, s := range drawn {
			if s.Curve.Len() == 0 {
				continue
			}
			lo = math.Min(lo, floats.Min(s.Curve.X))
			hi = math.Max(hi, floats.Max(s.Curve.X))
		}
		if math.IsInf(lo, 1) {
			return Axes{}, ErrNothingToPlot
		}
		x.Min, x.Max = lo, hi
	}

	if y.Min == y.Max {
		lo, hi, err := drawn.YRange()
		if err != nil {
			return Axes{}, ErrNothingToPlot
		}
		pad := 0.05 * (hi - lo)
		if pad == 0 {
			pad = 0.05 * math.Max(math.Abs(hi), 1)
		}
		y.Min, y.Max = math.Min(0, lo), hi+pad
	}

	return Axes{Title: opts.Title, X: x, Y: y}, nil
}

func hasPoints(ds spectrum.Dataset) bool {
	for _, s := range ds {
		if s.Curve.Len() > 0 {
			return true
		}
	}
	return false
}
