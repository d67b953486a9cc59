package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/HamletTheHamster/fftplot/internal/figure"
	"github.com/HamletTheHamster/fftplot/internal/loader"
	"github.com/HamletTheHamster/fftplot/internal/project"
	"github.com/HamletTheHamster/fftplot/internal/spectrum"
)

var (
	logLevel   = "info"
	configPath = "fftplot.yaml"

	// Set with -ldflags "-X main.version=...".
	version = "dev"
)

func setupLogger() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{})
	if term.IsTerminal(int(os.Stderr.Fd())) {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.Kitchen,
		})
	}

	return nil
}

func handleCmdError(err error) {
	switch {
	case errors.Is(err, loader.ErrRequiredMissing):
		fmt.Fprintln(os.Stderr, "\nError: a required data file is missing")
		fmt.Fprintln(os.Stderr, "  - Check the sample and campaign names in the config")
		fmt.Fprintln(os.Stderr, "  - Or set 'required: false' on the job to skip absent sweep points")
	case errors.Is(err, spectrum.ErrZeroNormalization):
		fmt.Fprintln(os.Stderr, "\nError: the normalization maximum is zero")
		fmt.Fprintln(os.Stderr, "  - The curves have no signal in the plotted region")
	case errors.Is(err, spectrum.ErrReferenceOutOfRange):
		fmt.Fprintln(os.Stderr, "\nError: the normalization reference index is out of range")
		fmt.Fprintln(os.Stderr, "  - The index counts the curves that have data in the region")
	case errors.Is(err, figure.ErrUnknownBackend):
		fmt.Fprintln(os.Stderr, "\nError: unknown backend, use 'native' or 'gnuplot'")
		fmt.Fprintln(os.Stderr, "  - gnuplot is only available in builds with -tags gnuplot")
	case errors.Is(err, figure.ErrUnknownPalette), errors.Is(err, figure.ErrUnknownTheme):
		fmt.Fprintln(os.Stderr, "\nError: unknown palette or theme in the figure settings")
	case errors.Is(err, project.ErrNotProject):
		fmt.Fprintln(os.Stderr, "\nError: the workbook was not written by fftplot")
	case errors.Is(err, os.ErrNotExist):
		fmt.Fprintln(os.Stderr, "\nError: file not found")
		fmt.Fprintln(os.Stderr, "  - Run 'fftplot init' to write an example config")
	}
}

func main() {
	cmd := NewCommand()
	if err := cmd.Execute(); err != nil {
		handleCmdError(err)
		os.Exit(1)
	}
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fftplot",
		Short: "fftplot renders stacked FFT spectra of angle and temperature sweeps",
		Long: `fftplot renders stacked FFT spectra of angle and temperature sweeps.

It reads two-column curves from a measurement output tree, normalizes
and stacks them, and exports publication figures with a project workbook
for every figure.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return setupLogger()
		},
	}

	globalFlags := cmd.PersistentFlags()
	globalFlags.StringVarP(&logLevel, "log-level", "l", "info", "log level (trace, debug, info, warn, error, fatal, panic)")
	globalFlags.StringVarP(&configPath, "config", "c", configPath, "batch config file path")

	cmd.AddCommand(
		NewRunCommand(),
		NewPlotCommand(),
		NewReplotCommand(),
		NewInitCommand(),
		NewVersionCommand(),
	)

	return cmd
}

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("fftplot %s\n", version)
		},
	}
}
