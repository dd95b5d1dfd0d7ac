/**
 * Copyright 2020 TryFix Engineering.
 * All rights reserved.
 * Authors:
 *    Gayan Yapa (gmbyapa@gmail.com)
 */

// Package admin provisions the kafka topics source runners produce into.
package admin

import (
	"fmt"

	"github.com/Shopify/sarama"
	"github.com/tryfix/errors"
	"github.com/tryfix/log"
)

type Topic struct {
	Name              string
	Partitions        []int32
	NumPartitions     int32
	ReplicationFactor int16
	ConfigEntries     map[string]string
}

type KafkaAdmin interface {
	FetchInfo(topics []string) (map[string]*Topic, error)
	// CreateTopics creates the given topics, existing topics are left untouched.
	CreateTopics(topics map[string]*Topic) error
	Close()
}

type kafkaAdminOptions struct {
	KafkaVersion sarama.KafkaVersion
	Logger       log.Logger
}

func (opts *kafkaAdminOptions) apply(options ...KafkaAdminOption) {
	opts.KafkaVersion = sarama.V2_4_0_0
	opts.Logger = log.NewNoopLogger()
	for _, opt := range options {
		opt(opts)
	}
}

type KafkaAdminOption func(*kafkaAdminOptions)

func WithKafkaVersion(version sarama.KafkaVersion) KafkaAdminOption {
	return func(options *kafkaAdminOptions) {
		options.KafkaVersion = version
	}
}

func WithLogger(logger log.Logger) KafkaAdminOption {
	return func(options *kafkaAdminOptions) {
		options.Logger = logger
	}
}

type kafkaAdmin struct {
	admin  sarama.ClusterAdmin
	logger log.Logger
}

func NewKafkaAdmin(bootstrapServers []string, options ...KafkaAdminOption) (KafkaAdmin, error) {
	opts := new(kafkaAdminOptions)
	opts.apply(options...)

	config := sarama.NewConfig()
	config.Version = opts.KafkaVersion
	admin, err := sarama.NewClusterAdmin(bootstrapServers, config)
	if err != nil {
		return nil, errors.WithPrevious(err, `cannot get controller`)
	}

	return &kafkaAdmin{
		admin:  admin,
		logger: opts.Logger.NewLog(log.Prefixed(`kafka-admin`)),
	}, nil
}

func (c *kafkaAdmin) FetchInfo(topics []string) (map[string]*Topic, error) {
	meta, err := c.admin.DescribeTopics(topics)
	if err != nil {
		return nil, errors.WithPrevious(err, `cannot get metadata`)
	}

	info := make(map[string]*Topic)
	for _, tp := range meta {
		if tp.Err != sarama.ErrNoError {
			return nil, errors.WithPrevious(tp.Err, fmt.Sprintf(`topic [%s] metadata error`, tp.Name))
		}

		topic := &Topic{
			Name:          tp.Name,
			NumPartitions: int32(len(tp.Partitions)),
		}
		for _, pt := range tp.Partitions {
			topic.Partitions = append(topic.Partitions, pt.ID)
		}

		info[tp.Name] = topic
	}

	return info, nil
}

func (c *kafkaAdmin) CreateTopics(topics map[string]*Topic) error {
	for name, info := range topics {
		details := &sarama.TopicDetail{
			NumPartitions:     info.NumPartitions,
			ReplicationFactor: info.ReplicationFactor,
			ConfigEntries:     map[string]*string{},
		}
		for cName, config := range info.ConfigEntries {
			value := config
			details.ConfigEntries[cName] = &value
		}

		err := c.admin.CreateTopic(name, details, false)
		if err != nil {
			if e, ok := err.(*sarama.TopicError); ok && (e.Err == sarama.ErrTopicAlreadyExists || e.Err == sarama.ErrNoError) {
				c.logger.Debug(fmt.Sprintf(`topic [%s] already exists`, name))
				continue
			}
			return errors.WithPrevious(err, fmt.Sprintf(`could not create topic [%s]`, name))
		}

		c.logger.Info(fmt.Sprintf(`topic [%s] created with %d partitions`, name, info.NumPartitions))
	}

	return nil
}

func (c *kafkaAdmin) Close() {
	if err := c.admin.Close(); err != nil {
		c.logger.Warn(fmt.Sprintf(`cannot close cluster admin : %+v`, err))
	}
}

// EnsureTopic creates topic with the given layout unless it already exists.
func EnsureTopic(admin KafkaAdmin, topic string, partitions int32, replicationFactor int16) error {
	if partitions < 1 {
		return errors.Errorf(`topic [%s] needs at least one partition`, topic)
	}

	if replicationFactor < 1 {
		return errors.Errorf(`topic [%s] needs a replication factor of at least one`, topic)
	}

	return admin.CreateTopics(map[string]*Topic{
		topic: {
			Name:              topic,
			NumPartitions:     partitions,
			ReplicationFactor: replicationFactor,
		},
	})
}
