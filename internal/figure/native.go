package figure

import (
	"image/color"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	_ "gonum.org/v1/plot/vg/vgimg"
	_ "gonum.org/v1/plot/vg/vgpdf"
	_ "gonum.org/v1/plot/vg/vgsvg"

	"github.com/HamletTheHamster/fftplot/internal/spectrum"
)

// Native renders in process with gonum/plot.
type Native struct {
	p      *plot.Plot
	lines  []*plotter.Line
	labels []string
	axes   Axes
	theme  Theme
	margin float64
}

func NewNative() *Native {
	return &Native{}
}

func OpenNative() (Backend, error) {
	return NewNative(), nil
}

func (n *Native) NewProject() error {
	*n = Native{}
	return nil
}

// Close drops the current project. There is no process to stop.
func (n *Native) Close() error {
	*n = Native{}
	return nil
}

func (n *Native) NewGraph(name string) error {
	n.p = plot.New()
	n.p.BackgroundColor = color.White
	n.lines = nil
	n.labels = nil
	n.margin = 0
	n.theme = defaultTheme()
	return nil
}

func (n *Native) AddSeries(label string, c spectrum.Curve) error {
	if n.p == nil {
		return ErrNoGraph
	}

	line, err := plotter.NewLine(c.XYs())
	if err != nil {
		return err
	}
	line.Color = plotutil.Color(len(n.lines))

	// An empty line still gets its legend entry.
	if c.Len() > 0 {
		n.p.Add(line)
	}
	n.lines = append(n.lines, line)
	n.labels = append(n.labels, label)

	return nil
}

func (n *Native) SetAxes(a Axes) error {
	if n.p == nil {
		return ErrNoGraph
	}

	n.axes = a
	n.p.Title.Text = a.Title
	setAxis(&n.p.X, a.X)
	setAxis(&n.p.Y, a.Y)

	return nil
}

func setAxis(axis *plot.Axis, a Axis) {
	axis.Label.Text = a.Label
	axis.Min = a.Min
	axis.Max = a.Max

	if a.Tick <= 0 {
		axis.Tick.Marker = plot.DefaultTicks{}
		return
	}

	ticks := []plot.Tick{}
	for _, v := range TickValues(a.Min, a.Max, a.Tick) {
		ticks = append(ticks, plot.Tick{Value: v, Label: TickLabel(v)})
	}
	axis.Tick.Marker = plot.ConstantTicks(ticks)
}

func (n *Native) ApplyTheme(t Theme) error {
	if n.p == nil {
		return ErrNoGraph
	}
	n.theme = t
	p := n.p

	face := func(size float64) font.Font {
		return font.Font{
			Typeface: font.Typeface(t.Typeface),
			Variant:  font.Variant(t.Variant),
			Size:     font.Length(size),
		}
	}

	p.Title.TextStyle.Font = face(t.TitleSize)
	p.Title.Padding = font.Length(t.TitlePadding)

	for _, axis := range []*plot.Axis{&p.X, &p.Y} {
		axis.Label.TextStyle.Font = face(t.LabelSize)
		axis.Label.Padding = font.Length(t.LabelPadding)
		axis.LineStyle.Width = vg.Points(t.AxisWidth)
		axis.Tick.LineStyle.Width = vg.Points(t.AxisWidth)
		axis.Tick.Label.Font = face(t.TickSize)
	}
	p.X.Padding = vg.Points(-8)
	p.Y.Padding = vg.Points(-6)

	p.Legend.TextStyle.Font = face(t.LegendSize)
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = vg.Points(-25)
	p.Legend.YOffs = vg.Points(25)
	p.Legend.Padding = vg.Points(t.LegendPadding)
	p.Legend.ThumbnailWidth = vg.Points(t.LegendThumbnail)

	for i, line := range n.lines {
		line.Width = vg.Points(t.LineWidth)
		line.Color = plotutil.Color(i)
	}

	return nil
}

func (n *Native) Override(o Overrides) error {
	if n.p == nil {
		return ErrNoGraph
	}
	p := n.p

	for i, line := range n.lines {
		if len(o.Colors) > 0 {
			line.Color = o.Colors[i%len(o.Colors)]
		}
		if o.LineWidth > 0 {
			line.Width = vg.Points(o.LineWidth)
		}
	}

	if o.HideYTickLabels {
		p.Y.Tick.Marker = blankLabels{p.Y.Tick.Marker}
	}

	legend := plot.NewLegend()
	legend.TextStyle = p.Legend.TextStyle
	legend.Top = p.Legend.Top
	legend.Left = p.Legend.Left
	legend.XOffs = p.Legend.XOffs
	legend.YOffs = p.Legend.YOffs
	legend.Padding = p.Legend.Padding
	legend.ThumbnailWidth = p.Legend.ThumbnailWidth
	p.Legend = legend

	for i := range n.lines {
		j := i
		if o.LegendDescending {
			j = len(n.lines) - 1 - i
		}
		p.Legend.Add(n.labels[j], n.lines[j])
	}

	n.margin = o.LegendMargin
	if n.margin > 0 {
		p.Legend.Top = true
		p.Legend.Left = false
		p.Legend.YOffs = 0
	}

	if o.Grid {
		grid := plotter.NewGrid()
		grid.Vertical.Width = vg.Points(n.theme.AxisWidth / 3)
		grid.Horizontal.Width = vg.Points(n.theme.AxisWidth / 3)
		p.Add(grid)
	}

	return nil
}

func (n *Native) Export(path, format string) (err error) {
	if n.p == nil {
		return ErrNoGraph
	}

	w := vg.Length(n.theme.Width) * vg.Inch
	h := vg.Length(n.theme.Height) * vg.Inch

	c, err := draw.NewFormattedCanvas(w, h, format)
	if err != nil {
		return errors.Wrapf(ErrUnknownFormat, "%s: %v", format, err)
	}

	dc := draw.New(c)
	if n.margin > 0 {
		dc = n.reserveLegend(dc)
	}
	n.p.Draw(dc)

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if _, err := c.WriteTo(f); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}

	logrus.WithField("file", path).Debug("exported")
	return nil
}

// reserveLegend crops the right side of the canvas so the legend can sit
// LegendMargin x units past the end of the x axis without being clipped.
func (n *Native) reserveLegend(dc draw.Canvas) draw.Canvas {
	span := n.axes.X.Max - n.axes.X.Min
	if span <= 0 {
		return dc
	}

	legendWidth := n.p.Legend.Rectangle(dc).Size().X
	data := n.p.DataCanvas(dc)
	dataWidth := data.Max.X - data.Min.X

	// The data width shrinks one for one with the reserve, so solve
	// reserve = legend + f*(dataWidth - reserve).
	f := vg.Length(n.margin / span)
	reserve := (legendWidth + f*dataWidth) / (1 + f)
	gap := reserve - legendWidth

	n.p.Legend.XOffs = gap + legendWidth
	return draw.Crop(dc, 0, -reserve, 0, 0)
}

// blankLabels keeps tick marks but drops their labels.
type blankLabels struct {
	plot.Ticker
}

func (b blankLabels) Ticks(min, max float64) []plot.Tick {
	ticks := b.Ticker.Ticks(min, max)
	for i := range ticks {
		ticks[i].Label = ""
	}
	return ticks
}
