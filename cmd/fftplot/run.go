package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/HamletTheHamster/fftplot/internal/batch"
)

func NewRunCommand() *cobra.Command {
	var (
		jobs    []string
		backend string
		output  string
		report  string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every job of the batch config",
		Long: `Run every job of the batch config.

Jobs run in order through one graphing session. A missing required data
file or a backend error stops the batch; figures written so far and the
run log (log.txt in the output directory) are kept.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := batch.Load(configPath)
			if err != nil {
				return err
			}

			if backend != "" {
				cfg.Backend = backend
			}
			if output != "" {
				cfg.Output = output
			}
			if report != "" {
				cfg.Report = report
			}
			if len(jobs) > 0 {
				if cfg.Jobs, err = selectJobs(cfg.Jobs, jobs); err != nil {
					return err
				}
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logrus.WithFields(logrus.Fields{
				"config":  configPath,
				"jobs":    len(cfg.Jobs),
				"backend": cfg.Backend,
			}).Info("starting batch")

			sum, err := batch.NewRunner(cfg).Run(ctx)
			if sum != nil {
				printSummary(cmd, sum)
			}
			return err
		},
	}

	cmd.Flags().StringSliceVarP(&jobs, "job", "j", nil, "run only the named jobs")
	cmd.Flags().StringVar(&backend, "backend", "", "graphing backend (native, or gnuplot in builds with -tags gnuplot)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output directory (default <root>/plots)")
	cmd.Flags().StringVar(&report, "report", "", "write a contact-sheet PDF to this path")

	return cmd
}

func selectJobs(all []batch.Job, names []string) ([]batch.Job, error) {
	var out []batch.Job
	for _, name := range names {
		found := false
		for _, j := range all {
			if j.Name == name {
				out = append(out, j)
				found = true
			}
		}
		if !found {
			return nil, errors.Errorf("no job named %q", name)
		}
	}
	return out, nil
}

func printSummary(cmd *cobra.Command, sum *batch.Summary) {
	bold := color.New(color.Bold).SprintfFunc()

	cmd.Println()
	cmd.Println(bold("Figures written: %d", len(sum.Figures)))
	for _, f := range sum.Figures {
		cmd.Printf("  %s %s (%s, %d curves)\n", color.GreenString("✔"), f.Unit, f.Plot, f.Curves)
	}
	for _, s := range sum.Skipped {
		cmd.Printf("  %s %s (no points in region)\n", color.YellowString("-"), s)
	}

	if sum.Log != "" {
		cmd.Printf("Run log: %s\n", sum.Log)
	}
	if sum.Report != "" {
		cmd.Printf("Report:  %s\n", sum.Report)
	}
}
