package producer

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/tryfix/errors"
	"github.com/tryfix/unbounded/data"
)

// WriterProducer writes one line per record, `key<TAB>value`, and numbers
// records with a running offset. It is safe for concurrent use.
type WriterProducer struct {
	mu     sync.Mutex
	w      io.Writer
	offset int64
}

func NewWriterProducer(w io.Writer) *WriterProducer {
	return &WriterProducer{w: w}
}

func (p *WriterProducer) Produce(_ context.Context, message *data.Record) (partition int32, offset int64, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := fmt.Fprintf(p.w, "%s\t%s\n", message.Key, message.Value); err != nil {
		return 0, 0, errors.WithPrevious(err, `cannot write record`)
	}

	message.Offset = p.offset
	p.offset++

	return message.Partition, message.Offset, nil
}

func (p *WriterProducer) ProduceBatch(ctx context.Context, messages []*data.Record) error {
	for _, message := range messages {
		if _, _, err := p.Produce(ctx, message); err != nil {
			return err
		}
	}

	return nil
}

// Close leaves the underlying writer open, it is owned by the caller.
func (p *WriterProducer) Close() error {
	return nil
}
