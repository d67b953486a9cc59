// Package figure turns a normalized dataset into formatted, exported
// figures. A Session owns one graphing Backend and runs the fixed
// formatting sequence for every figure: graph, series, axes, theme,
// overrides, export.
package figure

import (
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrNothingToPlot is returned for an empty dataset. Callers treat it
	// as a skip.
	ErrNothingToPlot  = errors.New("nothing to plot")
	ErrUnknownPalette = errors.New("unknown palette")
	ErrUnknownTheme   = errors.New("unknown theme")
	ErrUnknownFormat  = errors.New("unknown export format")
	ErrNoGraph        = errors.New("no graph open")
)

// Options are the display settings of one figure. A zero y-range is
// derived from the stacked data; a zero x-range from the data extent.
type Options struct {
	Title  string `yaml:"title"`
	XLabel string `yaml:"xlabel"`
	YLabel string `yaml:"ylabel"`

	XStart float64 `yaml:"xstart"`
	XEnd   float64 `yaml:"xend"`
	XTick  float64 `yaml:"xtick"`
	YStart float64 `yaml:"ystart"`
	YEnd   float64 `yaml:"yend"`
	YTick  float64 `yaml:"ytick"`

	// Offset is the stacking increment; curve i is drawn i*Offset higher.
	Offset float64 `yaml:"offset"`
	// LegendMargin is the gap between the end of the x axis and the
	// legend, in x units. Zero keeps the legend inside the axes.
	LegendMargin float64 `yaml:"legend_margin"`

	Palette         string  `yaml:"palette"`
	Stretch         bool    `yaml:"stretch"`
	LineWidth       float64 `yaml:"line_width"`
	Theme           string  `yaml:"theme"`
	Grid            bool    `yaml:"grid"`
	ShowYTickLabels bool    `yaml:"show_ytick_labels"`

	Directory   string   `yaml:"directory"`
	Filename    string   `yaml:"filename"`
	Formats     []string `yaml:"formats"`
	SaveProject bool     `yaml:"save_project"`
}

const (
	DefaultXLabel = "Frequency"
	DefaultYLabel = "FFT Amplitude"
)

func DefaultOptions() Options {
	return Options{
		XLabel:      DefaultXLabel,
		YLabel:      DefaultYLabel,
		Palette:     SystemColorList,
		Stretch:     true,
		LineWidth:   2,
		Theme:       PhysicalReviewLetters,
		Formats:     []string{"pdf", "png"},
		SaveProject: true,
	}
}

// withDefaults fills the fields that have no meaningful zero value.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.XLabel == "" {
		o.XLabel = d.XLabel
	}
	if o.YLabel == "" {
		o.YLabel = d.YLabel
	}
	if o.Palette == "" {
		o.Palette = d.Palette
	}
	if o.LineWidth <= 0 {
		o.LineWidth = d.LineWidth
	}
	if o.Theme == "" {
		o.Theme = d.Theme
	}
	if len(o.Formats) == 0 {
		o.Formats = d.Formats
	}
	if o.Filename == "" {
		o.Filename = "figure"
	}
	return o
}

var formats = map[string]bool{
	"pdf": true,
	"png": true,
	"svg": true,
}

func normalizeFormat(f string) (string, error) {
	f = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(f), "."))
	if !formats[f] {
		return "", errors.Wrapf(ErrUnknownFormat, "%q", f)
	}
	return f, nil
}
