package figure

import (
	"strings"

	"github.com/pkg/errors"
)

const (
	PhysicalReviewLetters = "Physical Review Letters"
	Slide                 = "slide"
)

// Theme is a named graph style. Sizes are in points, the canvas in
// inches.
type Theme struct {
	Name string

	Typeface string
	Variant  string

	TitleSize    float64
	TitlePadding float64
	LabelSize    float64
	LabelPadding float64
	TickSize     float64
	LegendSize   float64

	AxisWidth float64
	LineWidth float64

	LegendPadding   float64
	LegendThumbnail float64

	Width  float64
	Height float64
}

var themes = map[string]Theme{
	strings.ToLower(PhysicalReviewLetters): {
		Name:            PhysicalReviewLetters,
		Typeface:        "Liberation",
		Variant:         "Sans",
		TitleSize:       50,
		TitlePadding:    50,
		LabelSize:       36,
		LabelPadding:    20,
		TickSize:        36,
		LegendSize:      28,
		AxisWidth:       1.5,
		LineWidth:       1,
		LegendPadding:   10,
		LegendThumbnail: 50,
		Width:           15,
		Height:          15,
	},
	Slide: {
		Name:            Slide,
		Typeface:        "Liberation",
		Variant:         "Sans",
		TitleSize:       80,
		TitlePadding:    80,
		LabelSize:       56,
		LabelPadding:    40,
		TickSize:        56,
		LegendSize:      56,
		AxisWidth:       1.5,
		LineWidth:       1.5,
		LegendPadding:   10,
		LegendThumbnail: 50,
		Width:           15,
		Height:          15,
	},
}

func LookupTheme(name string) (Theme, error) {
	t, ok := themes[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Theme{}, errors.Wrapf(ErrUnknownTheme, "%q", name)
	}
	return t, nil
}

func defaultTheme() Theme {
	t, _ := LookupTheme(PhysicalReviewLetters)
	return t
}
