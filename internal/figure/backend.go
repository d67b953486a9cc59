package figure

import (
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/HamletTheHamster/fftplot/internal/spectrum"
)

// Backend is a graphing application: its object model (project, graph,
// series, axes) and its command channel (theme, overrides, export).
type Backend interface {
	// NewProject discards every graph and starts a clean project without
	// restarting the application.
	NewProject() error
	NewGraph(name string) error
	AddSeries(label string, c spectrum.Curve) error
	SetAxes(a Axes) error
	ApplyTheme(t Theme) error
	// Override applies settings that must win over the theme, so it is
	// always called after ApplyTheme.
	Override(o Overrides) error
	Export(path, format string) error
	Close() error
}

// Opener starts a backend.
type Opener func() (Backend, error)

var ErrUnknownBackend = errors.New("unknown graphing backend")

// backends holds the linked backends. gnuplot registers itself when built
// with -tags gnuplot.
var backends = map[string]Opener{
	"native": OpenNative,
}

// LookupBackend returns the opener for a backend name. An empty name is
// the native backend.
func LookupBackend(name string) (Opener, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "native"
	}
	open, ok := backends[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownBackend, "%q", name)
	}
	return open, nil
}

// Axis is one axis of a graph. A zero Tick leaves tick placement to the
// backend.
type Axis struct {
	Label string
	Min   float64
	Max   float64
	Tick  float64
}

type Axes struct {
	Title string
	X     Axis
	Y     Axis
}

// Overrides are the per-figure settings applied on top of a theme.
type Overrides struct {
	// Colors are assigned to series in order, cycling when short.
	Colors           []color.Color
	LineWidth        float64
	HideYTickLabels  bool
	LegendDescending bool
	// LegendMargin is in x units past the end of the x axis.
	LegendMargin float64
	Grid         bool
}

// TickValues lists start, start+step, ... up to end.
func TickValues(
	start, end, step float64,
) (
	[]float64,
) {

	if step <= 0 || end < start {
		return nil
	}

	n := int(math.Floor((end-start)/step+1e-9)) + 1
	values := make([]float64, n)
	for i := range values {
		values[i] = start + float64(i)*step
	}

	return values
}

// TickLabel formats a tick value without float noise such as
// 0.30000000000000004.
func TickLabel(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
