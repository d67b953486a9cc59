package figure

import (
	"image/color"
	"math"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotutil"
)

const (
	SystemColorList = "System Color List"
	Classic         = "Classic"
	Fire            = "Fire"
	Rainbow         = "Rainbow"
	BlackBody       = "BlackBody"
	Kindlmann       = "Kindlmann"
	BlueRed         = "BlueRed"
)

// continuousSteps is the fewest colors a color map is cut into.
const continuousSteps = 8

// classic is the lab's long-standing line color table.
var classic = []color.Color{
	color.RGBA{R: 31, G: 211, B: 172, A: 255},
	color.RGBA{R: 255, G: 122, B: 180, A: 255},
	color.RGBA{R: 122, G: 156, B: 255, A: 255},
	color.RGBA{R: 91, G: 22, B: 22, A: 255},
	color.RGBA{R: 188, G: 117, B: 255, A: 255},
	color.RGBA{R: 234, G: 156, B: 172, A: 255},
	color.RGBA{R: 1, G: 56, B: 84, A: 255},
	color.RGBA{R: 46, G: 140, B: 60, A: 255},
	color.RGBA{R: 140, G: 46, B: 49, A: 255},
	color.RGBA{R: 122, G: 41, B: 104, A: 255},
	color.RGBA{R: 41, G: 122, B: 100, A: 255},
	color.RGBA{R: 122, G: 90, B: 41, A: 255},
	color.RGBA{R: 255, G: 193, B: 122, A: 255},
	color.RGBA{R: 22, G: 44, B: 91, A: 255},
	color.RGBA{R: 59, G: 17, B: 66, A: 255},
	color.RGBA{R: 27, G: 150, B: 146, A: 255},
	color.RGBA{R: 255, G: 102, B: 102, A: 255},
}

// colorMaps sample n colors evenly from a continuous map. n is at least
// continuousSteps; palette.Heat misbehaves below that.
var colorMaps = map[string]func(n int) []color.Color{
	Fire: func(n int) []color.Color {
		return palette.Heat(n, 1).Colors()
	},
	Rainbow: func(n int) []color.Color {
		return palette.Rainbow(n, palette.Red, palette.Magenta, 1, 0.9, 1).Colors()
	},
	BlackBody: func(n int) []color.Color {
		return moreland.BlackBody().Palette(n).Colors()
	},
	Kindlmann: func(n int) []color.Color {
		return moreland.Kindlmann().Palette(n).Colors()
	},
	BlueRed: func(n int) []color.Color {
		return moreland.SmoothBlueRed().Palette(n).Colors()
	},
}

// Colors returns n line colors from the named palette. With stretch the
// palette is spread across all n series so the first and last series take
// its two ends; without it colors are taken in order and cycle.
func Colors(
	name string,
	n int,
	stretch bool,
) (
	[]color.Color, error,
) {

	if n <= 0 {
		return nil, nil
	}

	if sample, ok := lookupColorMap(name); ok {
		list := sample(max(n, continuousSteps))
		if stretch {
			return spread(list, n), nil
		}
		return cycle(list, n), nil
	}

	list, err := discrete(name, n, stretch)
	if err != nil {
		return nil, err
	}
	if stretch {
		return spread(list, n), nil
	}
	return cycle(list, n), nil
}

func lookupColorMap(name string) (func(int) []color.Color, bool) {
	for k, fn := range colorMaps {
		if strings.EqualFold(k, name) {
			return fn, true
		}
	}
	return nil, false
}

func discrete(
	name string,
	n int,
	stretch bool,
) (
	[]color.Color, error,
) {

	switch {
	case name == "" || strings.EqualFold(name, SystemColorList):
		return plotutil.DefaultColors, nil
	case strings.EqualFold(name, Classic):
		return classic, nil
	}

	// ColorBrewer palettes come in fixed sizes; take the exact size when
	// stretching, otherwise the largest one available.
	if stretch {
		if p, err := brewer.GetPalette(brewer.TypeAny, name, max(n, 3)); err == nil {
			return p.Colors(), nil
		}
	}
	for size := 12; size >= 3; size-- {
		if p, err := brewer.GetPalette(brewer.TypeAny, name, size); err == nil {
			return p.Colors(), nil
		}
	}

	return nil, errors.Wrapf(ErrUnknownPalette, "%q", name)
}

func cycle(list []color.Color, n int) []color.Color {
	out := make([]color.Color, n)
	for i := range out {
		out[i] = list[i%len(list)]
	}
	return out
}

// spread picks n colors evenly across list. When list is shorter than n it
// cycles.
func spread(list []color.Color, n int) []color.Color {
	if n > len(list) || n == 1 {
		return cycle(list, n)
	}

	out := make([]color.Color, n)
	step := float64(len(list)-1) / float64(n-1)
	for i := range out {
		out[i] = list[int(math.Round(float64(i)*step))]
	}
	return out
}
