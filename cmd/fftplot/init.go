package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/HamletTheHamster/fftplot/internal/batch"
)

func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [ROOT]",
		Short: "Write an example batch config",
		Long: `Write an example batch config to the --config path.

The example has one angle, one temperature and one symmetrized job. ROOT
is the data tree the jobs read from (default: the current directory).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}

			if _, err := os.Stat(configPath); err == nil && !force {
				return errors.Errorf("%s already exists, use --force to overwrite", configPath)
			}

			if err := batch.Example(root).Save(configPath); err != nil {
				return err
			}
			logrus.Infof("wrote %s", configPath)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing config")

	return cmd
}
