package cmd

import (
	"github.com/spf13/viper"
	"github.com/tryfix/log"
	"github.com/tryfix/metrics"
	"github.com/tryfix/unbounded/encoding"
	"github.com/tryfix/unbounded/runner"
	"github.com/tryfix/unbounded/source/cyclic"
)

func newSource(logger log.Logger) (*cyclic.Source, error) {
	opts := []cyclic.Option{
		cyclic.WithName(viper.GetString(`name`)),
		cyclic.WithLogger(logger),
	}

	if records := viper.GetStringSlice(`records`); len(records) > 0 {
		opts = append(opts, cyclic.WithRecords(records))
	}

	return cyclic.NewSource(encoding.StringEncoder{}, opts...)
}

func newRunnerConfig(logger log.Logger, reporter metrics.Reporter) *runner.Config {
	config := runner.NewConfig()
	config.Name = viper.GetString(`name`)
	config.Topic = viper.GetString(`topic`)
	config.DesiredSplits = viper.GetInt(`splits`)
	config.Limit = viper.GetInt64(`limit`)
	config.Interval = viper.GetDuration(`interval`)
	config.WorkerPool.NumOfWorkers = viper.GetInt(`workers`)
	config.WorkerPool.WorkerBufferSize = viper.GetInt(`worker-buffer`)
	if host := viper.GetString(`http`); host != `` {
		config.Http.Enabled = true
		config.Http.Host = host
	}
	config.Logger = logger
	config.MetricsReporter = reporter

	return config
}
