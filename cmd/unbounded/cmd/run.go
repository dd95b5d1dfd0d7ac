package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tryfix/errors"
	"github.com/tryfix/log"
	"github.com/tryfix/metrics"
	"github.com/tryfix/unbounded/admin"
	"github.com/tryfix/unbounded/producer"
	"github.com/tryfix/unbounded/runner"
)

// sinkBuilder creates the kafka sink used when brokers are configured.
var sinkBuilder producer.Builder = producer.NewProducer

var runCmd = &cobra.Command{
	Use:   `run`,
	Short: `Read the source and produce every record into the sink`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cmd.ErrOrStderr())

		reporter := metrics.NoopReporter()
		if viper.GetString(`http`) != `` {
			reporter = metrics.PrometheusReporter(metrics.ReporterConf{System: `unbounded`, Subsystem: viper.GetString(`name`), ConstLabels: nil})
		}

		src, err := newSource(logger)
		if err != nil {
			return err
		}

		sink, err := newSink(cmd, logger, reporter)
		if err != nil {
			return err
		}
		defer func() {
			if err := sink.Close(); err != nil {
				logger.Error(err)
			}
		}()

		config := newRunnerConfig(logger, reporter)
		r, err := runner.New(src, sink, config)
		if err != nil {
			return err
		}
		logger.Info("\n" + config.String())

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return r.Run(ctx)
	},
}

func init() {
	flags := runCmd.Flags()
	flags.Int64(`limit`, 0, `records read per split, 0 reads until interrupted`)
	flags.Duration(`interval`, 500*time.Millisecond, `pause between two records of a split`)
	flags.StringSlice(`brokers`, nil, `kafka bootstrap servers, records are written to stdout when empty`)
	flags.Bool(`create-topic`, false, `create the topic before producing`)
	flags.Int32(`partitions`, 1, `partitions of a created topic`)
	flags.Int16(`replication-factor`, 1, `replication factor of a created topic`)
	flags.String(`http`, ``, `serve split status and metrics on this address`)
}

func newSink(cmd *cobra.Command, logger log.Logger, reporter metrics.Reporter) (producer.Producer, error) {
	brokers := viper.GetStringSlice(`brokers`)
	if len(brokers) < 1 {
		return producer.NewWriterProducer(cmd.OutOrStdout()), nil
	}

	topic := viper.GetString(`topic`)
	if viper.GetBool(`create-topic`) {
		kafkaAdmin, err := admin.NewKafkaAdmin(brokers, admin.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		defer kafkaAdmin.Close()

		if err := admin.EnsureTopic(kafkaAdmin, topic, viper.GetInt32(`partitions`), int16(viper.GetInt(`replication-factor`))); err != nil {
			return nil, errors.WithPrevious(err, `cannot provision topic`)
		}
	}

	config := producer.NewConfig()
	config.Id = viper.GetString(`name`)
	config.BootstrapServers = brokers
	config.Logger = logger
	config.MetricsReporter = reporter

	return sinkBuilder(config)
}
