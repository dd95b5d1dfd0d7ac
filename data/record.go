package data

import (
	"fmt"
	"time"

	"github.com/Shopify/sarama"
	"github.com/google/uuid"
)

type RecordHeaders []*sarama.RecordHeader

func (h RecordHeaders) All() []*sarama.RecordHeader {
	return h
}

// Read returns the value of the first header matching name.
func (h RecordHeaders) Read(name []byte) []byte {
	for _, header := range h {
		if string(header.Key) == string(name) {
			return header.Value
		}
	}

	return nil
}

// Record is a single element emitted by a source reader, encoded and ready to
// be handed to a sink.
type Record struct {
	Key, Value []byte
	Topic      string
	Partition  int32
	Offset     int64
	Timestamp  time.Time // event time reported by the reader
	Watermark  time.Time // reader watermark when the record was read
	Source     string    // name of the split the record was read from
	Headers    RecordHeaders
	UUID       uuid.UUID
}

func (r *Record) String() string {
	return fmt.Sprintf(`%s_%d_%d`, r.Topic, r.Partition, r.Offset)
}

func (r *Record) RecordKey() interface{} {
	return r.Key
}

func (r *Record) RecordValue() interface{} {
	return r.Value
}
