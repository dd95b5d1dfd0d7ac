// Package cmd wires the unbounded command line: sources, runner and sinks
// configured from flags, environment (UNBOUNDED_*) or a config file.
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/tryfix/errors"
	"github.com/tryfix/log"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   `unbounded`,
	Short: `Drive the cyclic sentence source into stdout or kafka`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd.Flags())
	},
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, `config`, ``, `optional config file (yaml, json or toml)`)
	flags.String(`name`, `sentences`, `runner and source name`)
	flags.StringSlice(`records`, nil, `records to cycle through, defaults to the built in sentences`)
	flags.Int(`splits`, 1, `desired number of splits`)
	flags.String(`topic`, `sentences`, `topic records are produced into`)
	flags.Int(`workers`, 4, `number of sink workers`)
	flags.Int(`worker-buffer`, 10, `buffer size of every sink worker`)
	flags.String(`log-level`, `INFO`, `TRACE, DEBUG, INFO, WARN or ERROR`)
	flags.Bool(`log-colors`, true, `colored log output`)

	rootCmd.AddCommand(runCmd, graphCmd)
}

func loadConfig(flags *pflag.FlagSet) error {
	viper.SetEnvPrefix(`unbounded`)
	viper.SetEnvKeyReplacer(strings.NewReplacer(`-`, `_`))
	viper.AutomaticEnv()

	if err := viper.BindPFlags(flags); err != nil {
		return err
	}

	if configFile == `` {
		return nil
	}

	viper.SetConfigFile(configFile)
	if err := viper.ReadInConfig(); err != nil {
		return errors.WithPrevious(err, fmt.Sprintf(`cannot read config file %s`, configFile))
	}

	return nil
}

// newLogger writes to w, stdout is reserved for records.
func newLogger(w io.Writer) log.Logger {
	opts := []log.Option{
		log.WithStdOut(w),
		log.WithColors(viper.GetBool(`log-colors`)),
		log.Prefixed(`unbounded`),
	}

	switch level := strings.ToUpper(viper.GetString(`log-level`)); level {
	case `TRACE`, `DEBUG`:
		opts = append(opts, log.WithLevel(log.Level(level)), log.WithFilePath(true))
	case `WARN`, `ERROR`:
		opts = append(opts, log.WithLevel(log.Level(level)))
	default:
		opts = append(opts, log.WithLevel(log.INFO))
	}

	return log.NewLog(opts...).Log()
}
