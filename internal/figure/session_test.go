package figure

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/HamletTheHamster/fftplot/internal/spectrum"
)

// recorder is a Backend that logs every call.
type recorder struct {
	calls    []string
	series   map[string]spectrum.Curve
	axes     Axes
	override Overrides
	failOn   string
	closed   int
}

func newRecorder() *recorder {
	return &recorder{series: map[string]spectrum.Curve{}}
}

func (r *recorder) record(call string) error {
	r.calls = append(r.calls, call)
	if r.failOn != "" && strings.HasPrefix(call, r.failOn) {
		return fmt.Errorf("%s failed", call)
	}
	return nil
}

func (r *recorder) NewProject() error          { return r.record("NewProject") }
func (r *recorder) NewGraph(name string) error { return r.record("NewGraph " + name) }
func (r *recorder) AddSeries(label string, c spectrum.Curve) error {
	r.series[label] = c
	return r.record("AddSeries " + label)
}
func (r *recorder) SetAxes(a Axes) error {
	r.axes = a
	return r.record("SetAxes")
}
func (r *recorder) ApplyTheme(t Theme) error { return r.record("ApplyTheme " + t.Name) }
func (r *recorder) Override(o Overrides) error {
	r.override = o
	return r.record("Override")
}
func (r *recorder) Export(path, format string) error {
	return r.record("Export " + filepath.Base(path))
}
func (r *recorder) Close() error {
	r.closed++
	return r.record("Close")
}

type projectRecorder struct {
	paths []string
}

func (p *projectRecorder) WriteProject(path string, ds spectrum.Dataset, opts Options) error {
	p.paths = append(p.paths, path)
	return nil
}

func flat(labels ...string) spectrum.Dataset {
	d := make(spectrum.Dataset, len(labels))
	for i, l := range labels {
		d[i] = spectrum.Series{
			Label: l,
			Curve: spectrum.Curve{X: []float64{100, 200, 300}, Y: []float64{0.2, 1, 0.4}},
		}
	}
	return d
}

func TestPlotCallOrder(t *testing.T) {
	r := newRecorder()
	s := &Session{backend: r}

	opts := DefaultOptions()
	opts.Filename = "stacked"
	opts.Directory = t.TempDir()
	opts.Formats = []string{"pdf", "png"}

	if _, err := s.Plot(flat("-5 deg", "0 deg"), opts); err != nil {
		t.Fatalf("Plot: %v", err)
	}

	want := []string{
		"NewGraph stacked",
		"AddSeries -5 deg",
		"AddSeries 0 deg",
		"SetAxes",
		"ApplyTheme " + PhysicalReviewLetters,
		"Override",
		"Export stacked.pdf",
		"Export stacked.png",
	}
	if strings.Join(r.calls, "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected call order:\n got %v\nwant %v", r.calls, want)
	}

	if !r.override.HideYTickLabels || !r.override.LegendDescending {
		t.Errorf("expected hidden y tick labels and descending legend, got %+v", r.override)
	}
	if len(r.override.Colors) != 2 {
		t.Errorf("expected 2 colors, got %d", len(r.override.Colors))
	}
}

func TestPlotStacksCopies(t *testing.T) {
	r := newRecorder()
	s := &Session{backend: r}

	ds := flat("a", "b", "c")
	opts := DefaultOptions()
	opts.Offset = 1.1
	opts.Directory = t.TempDir()

	if _, err := s.Plot(ds, opts); err != nil {
		t.Fatalf("Plot: %v", err)
	}

	if got := r.series["c"].Y[1]; got != 1+2*1.1 {
		t.Errorf("expected third curve shifted by 2.2, got %v", got)
	}
	if ds[2].Curve.Y[1] != 1 {
		t.Errorf("Plot modified the caller's dataset")
	}

	// Auto y-range covers the stacked data.
	if r.axes.Y.Min != 0 || r.axes.Y.Max < 1+2*1.1 {
		t.Errorf("auto y range too small: %+v", r.axes.Y)
	}
	if r.axes.X.Min != 100 || r.axes.X.Max != 300 {
		t.Errorf("auto x range: %+v", r.axes.X)
	}
}

func TestPlotReusesBackend(t *testing.T) {
	r := newRecorder()
	p := &projectRecorder{}

	err := With(func() (Backend, error) { return r, nil }, func(s *Session) error {
		s.Projects = p
		opts := DefaultOptions()
		opts.Directory = t.TempDir()
		for _, name := range []string{"first", "second"} {
			opts.Filename = name
			if _, err := s.Plot(flat("a"), opts); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("With: %v", err)
	}

	newProjects := 0
	for _, c := range r.calls {
		if c == "NewProject" {
			newProjects++
		}
	}
	if newProjects != 1 {
		t.Errorf("expected one NewProject between two figures, got %d", newProjects)
	}
	if r.closed != 1 {
		t.Errorf("expected backend closed once, got %d", r.closed)
	}
	if len(p.paths) != 2 || filepath.Base(p.paths[1]) != "second.xlsx" {
		t.Errorf("unexpected project saves %v", p.paths)
	}
}

func TestWithClosesOnErrorAndPanic(t *testing.T) {
	r := newRecorder()
	open := func() (Backend, error) { return r, nil }

	boom := errors.New("boom")
	if err := With(open, func(*Session) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if r.closed != 1 {
		t.Fatalf("backend not closed after error")
	}

	func() {
		defer func() {
			if recover() == nil {
				t.Errorf("expected panic to propagate")
			}
		}()
		_ = With(open, func(*Session) error { panic("bad") })
	}()
	if r.closed != 2 {
		t.Errorf("backend not closed after panic")
	}
}

func TestPlotEmptyDataset(t *testing.T) {
	r := newRecorder()
	s := &Session{backend: r}

	if _, err := s.Plot(nil, DefaultOptions()); !errors.Is(err, ErrNothingToPlot) {
		t.Fatalf("expected ErrNothingToPlot, got %v", err)
	}
	empty := spectrum.Dataset{{Label: "a"}}
	if _, err := s.Plot(empty, DefaultOptions()); !errors.Is(err, ErrNothingToPlot) {
		t.Fatalf("expected ErrNothingToPlot for empty curves, got %v", err)
	}
	if len(r.calls) != 0 {
		t.Errorf("backend touched for an empty dataset: %v", r.calls)
	}
}

func TestPlotBackendErrorAborts(t *testing.T) {
	r := newRecorder()
	r.failOn = "ApplyTheme"
	s := &Session{backend: r}

	opts := DefaultOptions()
	opts.Directory = t.TempDir()
	if _, err := s.Plot(flat("a"), opts); err == nil {
		t.Fatalf("expected error")
	}
	for _, c := range r.calls {
		if c == "Override" || strings.HasPrefix(c, "Export") {
			t.Errorf("call %q after failed theme", c)
		}
	}
}

func TestPlotRejectsUnknownSettings(t *testing.T) {
	s := &Session{backend: newRecorder()}

	opts := DefaultOptions()
	opts.Palette = "Nope"
	if _, err := s.Plot(flat("a"), opts); !errors.Is(err, ErrUnknownPalette) {
		t.Errorf("expected ErrUnknownPalette, got %v", err)
	}

	opts = DefaultOptions()
	opts.Theme = "Nature"
	if _, err := s.Plot(flat("a"), opts); !errors.Is(err, ErrUnknownTheme) {
		t.Errorf("expected ErrUnknownTheme, got %v", err)
	}

	opts = DefaultOptions()
	opts.Formats = []string{"bmp"}
	if _, err := s.Plot(flat("a"), opts); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestTickValues(t *testing.T) {
	got := TickValues(6000, 8000, 400)
	if len(got) != 6 || got[0] != 6000 || got[5] != 8000 {
		t.Errorf("unexpected ticks %v", got)
	}
	labels := []string{}
	for _, v := range TickValues(0, 1.1, 0.2) {
		labels = append(labels, TickLabel(v))
	}
	if strings.Join(labels, ",") != "0,0.2,0.4,0.6,0.8,1" {
		t.Errorf("unexpected labels %v", labels)
	}
	if TickValues(0, 1, 0) != nil {
		t.Errorf("zero step should give no ticks")
	}
}
