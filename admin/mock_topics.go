package admin

import (
	"sync"

	"github.com/Shopify/sarama"
	"github.com/tryfix/errors"
	"github.com/tryfix/unbounded/data"
)

// MockPartition is an append only in memory partition log.
type MockPartition struct {
	mu      sync.Mutex
	records []*data.Record
}

// Append assigns the next offset to r and stores it.
func (p *MockPartition) Append(r *data.Record) int64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	r.Offset = int64(len(p.records))
	p.records = append(p.records, r)

	return r.Offset
}

// Latest returns the offset of the last record, -1 when empty.
func (p *MockPartition) Latest() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	return int64(len(p.records)) - 1
}

func (p *MockPartition) FetchAll() []*data.Record {
	p.mu.Lock()
	defer p.mu.Unlock()

	records := make([]*data.Record, len(p.records))
	copy(records, p.records)
	return records
}

type MockTopic struct {
	Meta       *Topic
	partitions []*MockPartition
}

func (tp *MockTopic) Partition(id int32) (*MockPartition, error) {
	if id < 0 || int(id) >= len(tp.partitions) {
		return nil, sarama.ErrUnknownTopicOrPartition
	}

	return tp.partitions[id], nil
}

func (tp *MockTopic) Partitions() []*MockPartition {
	return tp.partitions
}

// FetchAll returns the records of every partition, partition by partition.
func (tp *MockTopic) FetchAll() []*data.Record {
	var records []*data.Record
	for _, pt := range tp.partitions {
		records = append(records, pt.FetchAll()...)
	}
	return records
}

type MockTopics struct {
	mu     sync.Mutex
	topics map[string]*MockTopic
}

func NewMockTopics() *MockTopics {
	return &MockTopics{
		topics: make(map[string]*MockTopic),
	}
}

func (td *MockTopics) AddTopic(meta *Topic) error {
	td.mu.Lock()
	defer td.mu.Unlock()

	if _, ok := td.topics[meta.Name]; ok {
		return errors.Errorf(`topic [%s] already exists`, meta.Name)
	}

	if meta.NumPartitions < 1 {
		return errors.Errorf(`topic [%s] needs at least one partition`, meta.Name)
	}

	topic := &MockTopic{
		Meta:       meta,
		partitions: make([]*MockPartition, meta.NumPartitions),
	}
	meta.Partitions = nil
	for i := int32(0); i < meta.NumPartitions; i++ {
		meta.Partitions = append(meta.Partitions, i)
		topic.partitions[i] = new(MockPartition)
	}

	td.topics[meta.Name] = topic
	return nil
}

func (td *MockTopics) Topic(name string) (*MockTopic, error) {
	td.mu.Lock()
	defer td.mu.Unlock()

	t, ok := td.topics[name]
	if !ok {
		return nil, sarama.ErrUnknownTopicOrPartition
	}

	return t, nil
}
