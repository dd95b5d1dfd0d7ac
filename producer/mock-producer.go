package producer

import (
	"context"
	"hash/fnv"

	"github.com/tryfix/unbounded/admin"
	"github.com/tryfix/unbounded/data"
)

// MockProducer appends records to in memory topics, hashing keys to
// partitions the way the sarama hash partitioner does.
type MockProducer struct {
	topics *admin.MockTopics
}

func NewMockProducer(topics *admin.MockTopics) *MockProducer {
	return &MockProducer{
		topics: topics,
	}
}

func (msp *MockProducer) Produce(_ context.Context, message *data.Record) (partition int32, offset int64, err error) {
	topic, err := msp.topics.Topic(message.Topic)
	if err != nil {
		return 0, 0, err
	}

	hasher := fnv.New32a()
	if _, err = hasher.Write(message.Key); err != nil {
		return 0, 0, err
	}

	p := int32(hasher.Sum32() % uint32(len(topic.Partitions())))
	pt, err := topic.Partition(p)
	if err != nil {
		return 0, 0, err
	}

	message.Partition = p
	return p, pt.Append(message), nil
}

func (msp *MockProducer) ProduceBatch(ctx context.Context, messages []*data.Record) error {
	for _, msg := range messages {
		if _, _, err := msp.Produce(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func (msp *MockProducer) Close() error {
	return nil
}
