package producer

import (
	"github.com/Shopify/sarama"
	saramaMetrics "github.com/rcrowley/go-metrics"
	"github.com/tryfix/errors"
	"github.com/tryfix/log"
	"github.com/tryfix/metrics"
)

type Config struct {
	Id string
	*sarama.Config
	BootstrapServers []string
	RequiredAcks     RequiredAcks
	Partitioner      Partitioner
	Logger           log.Logger
	MetricsReporter  metrics.Reporter
}

func NewConfig() *Config {
	c := new(Config)
	c.setDefaults()
	return c
}

func (c *Config) validate() error {
	if c.Id == `` {
		return errors.New(`[Id] cannot be empty`)
	}

	if len(c.BootstrapServers) < 1 {
		return errors.New(`[BootstrapServers] cannot be empty`)
	}

	c.apply()
	if err := c.Config.Validate(); err != nil {
		return errors.WithPrevious(err, `invalid sarama config`)
	}

	return nil
}

func (c *Config) setDefaults() {
	// sarama keeps its own metric registry, producer metrics go through the
	// configured reporter instead.
	saramaMetrics.UseNilMetrics = true

	c.Config = sarama.NewConfig()
	c.Version = sarama.V2_4_0_0
	c.RequiredAcks = WaitForAll
	c.Partitioner = HashBased
	c.Producer.Return.Errors = true
	c.Producer.Return.Successes = true
	c.Producer.Compression = sarama.CompressionSnappy
	c.Logger = log.NewNoopLogger()
	c.MetricsReporter = metrics.NoopReporter()
}

// apply copies the producer level settings onto the embedded sarama config.
func (c *Config) apply() {
	c.Producer.RequiredAcks = sarama.RequiredAcks(c.RequiredAcks)

	switch c.Partitioner {
	case Manual:
		c.Producer.Partitioner = sarama.NewManualPartitioner
	case Random:
		c.Producer.Partitioner = sarama.NewRandomPartitioner
	default:
		c.Producer.Partitioner = sarama.NewHashPartitioner
	}
}
