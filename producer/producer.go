/**
 * Copyright 2020 TryFix Engineering.
 * All rights reserved.
 * Authors:
 *    Gayan Yapa (gmbyapa@gmail.com)
 */

// Package producer contains the sinks runner output is delivered to.
package producer

import (
	"context"
	"fmt"
	"time"

	"github.com/Shopify/sarama"
	"github.com/tryfix/errors"
	"github.com/tryfix/log"
	"github.com/tryfix/metrics"
	"github.com/tryfix/unbounded/data"
)

type Builder func(configs *Config) (Producer, error)

type RequiredAcks int

const (
	// NoResponse doesn't send any response, the TCP ACK is all you get.
	NoResponse RequiredAcks = 0

	// WaitForLeader waits for only the local commit to succeed before responding.
	WaitForLeader RequiredAcks = 1

	// WaitForAll waits for all in-sync replicas to commit before responding.
	// The minimum number of in-sync replicas is configured on the broker via
	// the `min.insync.replicas` configuration key.
	WaitForAll RequiredAcks = -1
)

func (ack RequiredAcks) String() string {
	switch ack {
	case WaitForLeader:
		return `WaitForLeader`
	case WaitForAll:
		return `WaitForAll`
	}

	return `NoResponse`
}

type Partitioner int

const (
	HashBased Partitioner = iota
	Manual
	Random
)

func (p Partitioner) String() string {
	switch p {
	case Manual:
		return `Manual`
	case Random:
		return `Random`
	}

	return `HashBased`
}

type Producer interface {
	Produce(ctx context.Context, message *data.Record) (partition int32, offset int64, err error)
	ProduceBatch(ctx context.Context, messages []*data.Record) error
	Close() error
}

type saramaProducer struct {
	id             string
	saramaProducer sarama.SyncProducer
	logger         log.Logger
	metrics        *metricsReporter
}

type metricsReporter struct {
	produceLatency      metrics.Observer
	batchProduceLatency metrics.Observer
}

func NewProducer(configs *Config) (Producer, error) {
	if err := configs.validate(); err != nil {
		return nil, errors.WithPrevious(err, fmt.Sprintf(`producer [%s] config invalid`, configs.Id))
	}

	logger := configs.Logger.NewLog(log.Prefixed(fmt.Sprintf(`producer.%s`, configs.Id)))
	logger.Info(`producer initiating...`)
	prd, err := sarama.NewSyncProducer(configs.BootstrapServers, configs.Config)
	if err != nil {
		return nil, errors.WithPrevious(err, fmt.Sprintf(`[%s] init failed`, configs.Id))
	}

	return newSaramaProducer(configs, prd, logger), nil
}

func newSaramaProducer(configs *Config, prd sarama.SyncProducer, logger log.Logger) *saramaProducer {
	defer logger.Info(`producer initiated`)

	labels := []string{`topic`, `partition`}
	return &saramaProducer{
		id:             configs.Id,
		saramaProducer: prd,
		logger:         logger,
		metrics: &metricsReporter{
			produceLatency: configs.MetricsReporter.Observer(metrics.MetricConf{
				Path:        `unbounded_producer_produced_latency_microseconds`,
				Labels:      labels,
				ConstLabels: map[string]string{`producer_id`: configs.Id},
			}),
			batchProduceLatency: configs.MetricsReporter.Observer(metrics.MetricConf{
				Path:        `unbounded_producer_batch_produced_latency_microseconds`,
				Labels:      append(labels, `size`),
				ConstLabels: map[string]string{`producer_id`: configs.Id},
			}),
		},
	}
}

func (p *saramaProducer) Close() error {
	defer p.logger.Info(`producer closed`)
	return p.saramaProducer.Close()
}

func (p *saramaProducer) Produce(ctx context.Context, message *data.Record) (partition int32, offset int64, err error) {
	t := time.Now()

	pr, o, err := p.saramaProducer.SendMessage(p.toMessage(message, t))
	if err != nil {
		return 0, 0, errors.WithPrevious(err, `cannot send message`)
	}

	p.metrics.produceLatency.Observe(float64(time.Since(t).Nanoseconds()/1e3), map[string]string{
		`topic`:     message.Topic,
		`partition`: fmt.Sprint(pr),
	})

	p.logger.TraceContext(ctx, fmt.Sprintf("Delivered message to topic %s [%d] at offset %d",
		message.Topic, pr, o))

	message.Partition, message.Offset = pr, o
	return pr, o, nil
}

func (p *saramaProducer) ProduceBatch(ctx context.Context, messages []*data.Record) error {
	if len(messages) < 1 {
		return nil
	}

	t := time.Now()
	saramaMessages := make([]*sarama.ProducerMessage, 0, len(messages))
	for _, message := range messages {
		saramaMessages = append(saramaMessages, p.toMessage(message, t))
	}

	if err := p.saramaProducer.SendMessages(saramaMessages); err != nil {
		return errors.WithPrevious(err, `cannot produce batch`)
	}

	partition := fmt.Sprint(messages[0].Partition)
	p.metrics.batchProduceLatency.Observe(float64(time.Since(t).Nanoseconds()/1e3), map[string]string{
		`topic`:     messages[0].Topic,
		`partition`: partition,
		`size`:      fmt.Sprint(len(messages)),
	})
	p.logger.TraceContext(ctx, fmt.Sprintf("message bulk delivered %s[%s]", messages[0].Topic, partition))
	return nil
}

func (p *saramaProducer) toMessage(message *data.Record, t time.Time) *sarama.ProducerMessage {
	m := &sarama.ProducerMessage{
		Topic:     message.Topic,
		Key:       sarama.ByteEncoder(message.Key),
		Value:     sarama.ByteEncoder(message.Value),
		Timestamp: t,
	}

	for _, header := range message.Headers.All() {
		m.Headers = append(m.Headers, *header)
	}

	if !message.Timestamp.IsZero() {
		m.Timestamp = message.Timestamp
	}

	if message.Partition > 0 {
		m.Partition = message.Partition
	}

	return m
}
