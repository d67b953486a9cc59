package figure

import (
	"bufio"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/HamletTheHamster/fftplot/internal/spectrum"
)

// gnuplotProcess is the part of *glot.Plot the backend drives.
type gnuplotProcess interface {
	SetTitle(title string) error
	SetXLabel(label string) error
	SetYLabel(label string) error
	Cmd(format string, a ...interface{}) error
	Close() error
}

var terminals = map[string]string{
	"pdf": "pdfcairo",
	"png": "pngcairo",
	"svg": "svg",
}

// Gnuplot drives an external gnuplot process. Series are written as data
// files in a directory owned by the backend and plotted by name; everything
// else is a textual command. The directory is removed on Close.
type Gnuplot struct {
	proc   gnuplotProcess
	dir    string
	files  int
	series int
	axes   Axes
	theme  Theme
}

func newGnuplot(proc gnuplotProcess) *Gnuplot {
	return &Gnuplot{proc: proc, theme: defaultTheme()}
}

func (g *Gnuplot) cmd(format string, a ...interface{}) error {
	if err := g.proc.Cmd(format, a...); err != nil {
		return errors.Wrapf(err, "gnuplot: %s", fmt.Sprintf(format, a...))
	}
	return nil
}

func (g *Gnuplot) NewProject() error {
	g.series = 0
	g.axes = Axes{}
	return g.cmd("reset")
}

func (g *Gnuplot) NewGraph(name string) error {
	g.series = 0
	return g.cmd("reset")
}

func (g *Gnuplot) AddSeries(label string, c spectrum.Curve) error {
	if c.Len() == 0 {
		logrus.WithField("series", label).Debug("gnuplot skips empty series")
		return nil
	}

	path, err := g.writeSeries(c)
	if err != nil {
		return errors.Wrapf(err, "gnuplot: add %q", label)
	}

	verb := "plot"
	if g.series > 0 {
		verb = "replot"
	}
	if err := g.cmd("%s %s title %s noenhanced with lines", verb, quote(path), quote(label)); err != nil {
		return err
	}
	g.series++
	return nil
}

// writeSeries writes one "x y" line per point to a fresh data file. Files
// are never reused: gnuplot reads them again on every replot.
func (g *Gnuplot) writeSeries(c spectrum.Curve) (path string, err error) {
	if g.dir == "" {
		if g.dir, err = os.MkdirTemp("", "fftplot-gnuplot-"); err != nil {
			return "", errors.Wrap(err, "failed to create data directory")
		}
	}

	g.files++
	path = filepath.Join(g.dir, fmt.Sprintf("series-%d.dat", g.files))

	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to create %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "failed to close %s", path)
		}
	}()

	w := bufio.NewWriter(f)
	for i := 0; i < c.Len(); i++ {
		line := strconv.FormatFloat(c.X[i], 'g', -1, 64) + " " +
			strconv.FormatFloat(c.Y[i], 'g', -1, 64) + "\n"
		if _, err := w.WriteString(line); err != nil {
			return "", errors.Wrapf(err, "failed to write %s", path)
		}
	}
	if err := w.Flush(); err != nil {
		return "", errors.Wrapf(err, "failed to write %s", path)
	}
	return path, nil
}

func (g *Gnuplot) SetAxes(a Axes) error {
	g.axes = a

	if err := g.proc.SetTitle(a.Title); err != nil {
		return err
	}
	if err := g.proc.SetXLabel(a.X.Label); err != nil {
		return err
	}
	if err := g.proc.SetYLabel(a.Y.Label); err != nil {
		return err
	}

	for _, ax := range []struct {
		name string
		a    Axis
	}{{"x", a.X}, {"y", a.Y}} {
		if err := g.cmd("set %srange [%g:%g]", ax.name, ax.a.Min, ax.a.Max); err != nil {
			return err
		}
		if ax.a.Tick > 0 {
			if err := g.cmd("set %stics %g", ax.name, ax.a.Tick); err != nil {
				return err
			}
		} else if err := g.cmd("set %stics autofreq", ax.name); err != nil {
			return err
		}
	}

	return nil
}

func (g *Gnuplot) ApplyTheme(t Theme) error {
	g.theme = t

	commands := []string{
		fmt.Sprintf("set border lw %g", t.AxisWidth),
		fmt.Sprintf("set tics scale %g", t.AxisWidth),
		"set tics out nomirror",
		"set key top right reverse Left",
		fmt.Sprintf("set key spacing %g", 1+t.LegendPadding/t.LegendSize),
		fmt.Sprintf("set key samplen %g", t.LegendThumbnail/t.LegendSize),
		"unset grid",
	}
	for i := 0; i < g.series; i++ {
		commands = append(commands, fmt.Sprintf("set linetype %d lw %g", i+1, t.LineWidth))
	}

	for _, c := range commands {
		if err := g.cmd("%s", c); err != nil {
			return err
		}
	}
	return nil
}

func (g *Gnuplot) Override(o Overrides) error {
	var commands []string

	for i := 0; i < g.series; i++ {
		lt := fmt.Sprintf("set linetype %d", i+1)
		if len(o.Colors) > 0 {
			lt += " lc rgb '" + hexColor(o.Colors[i%len(o.Colors)]) + "'"
		}
		if o.LineWidth > 0 {
			lt += fmt.Sprintf(" lw %g", o.LineWidth)
		}
		commands = append(commands, lt)
	}

	if o.HideYTickLabels {
		commands = append(commands, `set format y ""`)
	}
	if o.LegendDescending {
		commands = append(commands, "set key invert")
	}
	if o.LegendMargin > 0 {
		commands = append(commands,
			"set rmargin 20",
			fmt.Sprintf("set key at first %g, graph 1 left top", g.axes.X.Max+o.LegendMargin),
		)
	}
	if o.Grid {
		commands = append(commands, "set grid")
	}

	for _, c := range commands {
		if err := g.cmd("%s", c); err != nil {
			return err
		}
	}
	return nil
}

func (g *Gnuplot) Export(path, format string) error {
	terminal, ok := terminals[format]
	if !ok {
		return errors.Wrapf(ErrUnknownFormat, "%q", format)
	}

	size := fmt.Sprintf("size %gin,%gin", g.theme.Width, g.theme.Height)
	font := fmt.Sprintf("font '%s %s,%g'", g.theme.Typeface, g.theme.Variant, g.theme.TickSize)

	commands := []string{
		fmt.Sprintf("set terminal %s %s %s", terminal, size, font),
		"set output " + quote(path),
		"replot",
		"unset output",
		"set terminal unknown",
	}
	for _, c := range commands {
		if err := g.cmd("%s", c); err != nil {
			return err
		}
	}
	return nil
}

func (g *Gnuplot) Close() error {
	err := g.proc.Close()
	if g.dir != "" {
		if rerr := os.RemoveAll(g.dir); rerr != nil && err == nil {
			err = errors.Wrap(rerr, "failed to remove gnuplot data")
		}
		g.dir = ""
	}
	return err
}

func hexColor(c color.Color) string {
	r, gr, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, gr>>8, b>>8)
}

// quote makes a gnuplot single-quoted string; a quote inside is doubled.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
