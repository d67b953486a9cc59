package main

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/HamletTheHamster/fftplot/internal/figure"
	"github.com/HamletTheHamster/fftplot/internal/loader"
	"github.com/HamletTheHamster/fftplot/internal/project"
	"github.com/HamletTheHamster/fftplot/internal/spectrum"
)

// figureFlags are the display options shared by plot and replot.
type figureFlags struct {
	backend string
	opts    figure.Options
	formats []string
}

func (f *figureFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.backend, "backend", "native", "graphing backend (native, or gnuplot in builds with -tags gnuplot)")
	flags.StringVarP(&f.opts.Directory, "output", "o", "", "output directory")
	flags.StringVarP(&f.opts.Filename, "name", "n", "", "figure file name without extension")
	flags.StringVar(&f.opts.Title, "title", "", "figure title")
	flags.Float64Var(&f.opts.XStart, "xstart", 0, "x-axis start")
	flags.Float64Var(&f.opts.XEnd, "xend", 0, "x-axis end")
	flags.Float64Var(&f.opts.XTick, "xtick", 0, "x tick interval")
	flags.Float64Var(&f.opts.Offset, "offset", 1, "stacking offset (0 overlaps the curves)")
	flags.Float64Var(&f.opts.LegendMargin, "legend-margin", 0, "legend distance past the x-axis end, in x units")
	flags.StringVar(&f.opts.Palette, "palette", figure.SystemColorList, "palette name")
	flags.BoolVar(&f.opts.Stretch, "stretch", true, "stretch the palette over all curves")
	flags.StringVar(&f.opts.Theme, "theme", figure.PhysicalReviewLetters, "theme name")
	flags.BoolVar(&f.opts.Grid, "grid", false, "draw grid lines")
	flags.StringSliceVar(&f.formats, "format", []string{"pdf", "png"}, "export formats (pdf, png, svg)")
}

func (f *figureFlags) options() figure.Options {
	o := figure.DefaultOptions()
	o.Directory, o.Filename, o.Title = f.opts.Directory, f.opts.Filename, f.opts.Title
	o.XStart, o.XEnd, o.XTick = f.opts.XStart, f.opts.XEnd, f.opts.XTick
	o.Offset, o.LegendMargin = f.opts.Offset, f.opts.LegendMargin
	o.Palette, o.Stretch, o.Theme, o.Grid = f.opts.Palette, f.opts.Stretch, f.opts.Theme, f.opts.Grid
	o.Formats = f.formats
	return o
}

func NewPlotCommand() *cobra.Command {
	var (
		ff        figureFlags
		labels    []string
		norm      string
		reference int
		fitPeaks  bool
		noProject bool
	)

	cmd := &cobra.Command{
		Use:   "plot FILE...",
		Short: "Plot curve files as one stacked figure",
		Long: `Plot curve files as one stacked figure.

Each FILE is a headerless two-column table. Curves are filtered to
[xstart, xend] when a range is given, normalized and stacked in argument
order.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if len(labels) > 0 && len(labels) != len(args) {
				return errors.Errorf("%d labels for %d files", len(labels), len(args))
			}
			mode, err := spectrum.ParseNormMode(norm)
			if err != nil {
				return err
			}
			open, err := figure.LookupBackend(ff.backend)
			if err != nil {
				return err
			}

			var ds spectrum.Dataset
			for i, path := range args {
				c, err := loader.ReadCurveFile(path)
				if err != nil {
					return err
				}
				label := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
				if len(labels) > 0 {
					label = labels[i]
				}
				ds = append(ds, spectrum.Series{Label: label, Curve: c})
			}

			opts := ff.options()
			if opts.Filename == "" {
				opts.Filename = "fft_stacked"
			}
			opts.SaveProject = !noProject
			if opts.XStart < opts.XEnd {
				ds = ds.Between(opts.XStart, opts.XEnd)
			}

			ds, factor, err := ds.Normalize(spectrum.Normalization{Mode: mode, Reference: reference})
			if err != nil {
				return err
			}
			logrus.WithFields(logrus.Fields{
				"mode":   mode,
				"factor": factor,
			}).Debug("normalized")

			return figure.With(open, func(s *figure.Session) error {
				s.Projects = project.Writer{FitPeaks: fitPeaks}
				_, err := s.Plot(ds, opts)
				return err
			})
		},
	}

	ff.register(cmd)
	cmd.Flags().StringSliceVar(&labels, "label", nil, "legend label per file (default: file name)")
	cmd.Flags().StringVar(&norm, "norm", string(spectrum.NormGlobal), "normalization (global, reference, per-curve, none)")
	cmd.Flags().IntVar(&reference, "reference", 0, "reference curve index for --norm reference")
	cmd.Flags().BoolVar(&fitPeaks, "peaks", false, "fit a Lorentzian peak per curve into the project workbook")
	cmd.Flags().BoolVar(&noProject, "no-project", false, "do not save the project workbook")

	return cmd
}
