package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tryfix/log"
	"github.com/tryfix/metrics"
	"github.com/tryfix/unbounded/runner"
)

var graphCmd = &cobra.Command{
	Use:   `graph`,
	Short: `Print the run layout as a graphviz digraph`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := log.NewNoopLogger()
		src, err := newSource(logger)
		if err != nil {
			return err
		}

		g, err := runner.NewGraph(src, newRunnerConfig(logger, metrics.NoopReporter()))
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(cmd.OutOrStdout(), g.String())
		return err
	},
}
