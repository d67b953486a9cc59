package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/HamletTheHamster/fftplot/internal/figure"
	"github.com/HamletTheHamster/fftplot/internal/project"
)

func NewReplotCommand() *cobra.Command {
	var (
		backend string
		output  string
		name    string
		theme   string
		formats []string
	)

	cmd := &cobra.Command{
		Use:   "replot PROJECT.xlsx",
		Short: "Re-render a figure from its project workbook",
		Long: `Re-render a figure from its project workbook.

The workbook carries the normalized series and the figure settings, so
the raw data tree is not needed. Edit the settings on the Graph sheet,
or override them with flags.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := project.Load(args[0])
			if err != nil {
				return err
			}
			open, err := figure.LookupBackend(backend)
			if err != nil {
				return err
			}

			opts := p.Options
			opts.Directory = filepath.Dir(args[0])
			opts.Filename = p.Name
			if output != "" {
				opts.Directory = output
			}
			if name != "" {
				opts.Filename = name
			}
			if theme != "" {
				opts.Theme = theme
			}
			if cmd.Flags().Changed("format") {
				opts.Formats = formats
			}

			return figure.With(open, func(s *figure.Session) error {
				s.Projects = project.Writer{Peaks: p.Peaks}
				fig, err := s.Plot(p.Series, opts)
				if err != nil {
					return err
				}
				for _, f := range fig.Files {
					cmd.Println(f)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&backend, "backend", "native", "graphing backend (native, or gnuplot in builds with -tags gnuplot)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output directory (default: next to the workbook)")
	cmd.Flags().StringVarP(&name, "name", "n", "", "figure file name (default: project name)")
	cmd.Flags().StringVar(&theme, "theme", "", "theme override")
	cmd.Flags().StringSliceVar(&formats, "format", nil, "export formats override")

	return cmd
}
