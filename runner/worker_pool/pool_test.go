package worker_pool

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/tryfix/log"
	"github.com/tryfix/metrics"
	"github.com/tryfix/unbounded/data"
)

type recordingProducer struct {
	mu      sync.Mutex
	records map[string][]string
	fail    bool
}

func (p *recordingProducer) Produce(_ context.Context, message *data.Record) (int32, int64, error) {
	if p.fail {
		return 0, 0, errors.New(`sink down`)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	key := string(message.Key)
	p.records[key] = append(p.records[key], string(message.Value))
	return 0, int64(len(p.records[key]) - 1), nil
}

func (p *recordingProducer) ProduceBatch(ctx context.Context, messages []*data.Record) error {
	for _, m := range messages {
		if _, _, err := p.Produce(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (p *recordingProducer) Close() error { return nil }

func TestPool_Order_By_Key(t *testing.T) {
	for _, order := range []ExecutionOrder{OrderByKey, OrderPreserved} {
		t.Run(order.String(), func(t *testing.T) {
			sink := &recordingProducer{records: map[string][]string{}}
			pool := NewPool(`test`, sink, metrics.NoopReporter(), log.NewNoopLogger(), &PoolConfig{
				NumOfWorkers:     4,
				WorkerBufferSize: 2,
				Order:            order,
			})

			want := map[string][]string{}
			for i := 0; i < 100; i++ {
				key := fmt.Sprint(i % 3)
				val := fmt.Sprint(i)
				want[key] = append(want[key], val)
				pool.Run(context.Background(), &data.Record{Key: []byte(key), Value: []byte(val)}, nil)
			}
			pool.Stop()

			if !reflect.DeepEqual(sink.records, want) {
				t.Errorf(`records = %v, want %v`, sink.records, want)
			}
		})
	}
}

func TestPool_Order_Random(t *testing.T) {
	sink := &recordingProducer{records: map[string][]string{}}
	pool := NewPool(`test`, sink, metrics.NoopReporter(), log.NewNoopLogger(), &PoolConfig{
		NumOfWorkers:     3,
		WorkerBufferSize: 1,
		Order:            OrderRandom,
	})

	var mu sync.Mutex
	var done int
	for i := 0; i < 50; i++ {
		pool.Run(context.Background(), &data.Record{Key: []byte(`k`), Value: []byte(fmt.Sprint(i))}, func(_ int32, _ int64, err error) {
			if err != nil {
				t.Error(err)
			}
			mu.Lock()
			done++
			mu.Unlock()
		})
	}
	pool.Stop()

	if done != 50 || len(sink.records[`k`]) != 50 {
		t.Errorf(`done %d, produced %d`, done, len(sink.records[`k`]))
	}
}

func TestPool_Done_Error(t *testing.T) {
	pool := NewPool(`test`, &recordingProducer{fail: true}, metrics.NoopReporter(), log.NewNoopLogger(), &PoolConfig{
		NumOfWorkers:     1,
		WorkerBufferSize: 1,
		Order:            OrderByKey,
	})

	var got error
	pool.Run(context.Background(), &data.Record{Key: []byte(`k`)}, func(_ int32, _ int64, err error) {
		got = err
	})
	pool.Stop()

	if got == nil {
		t.Error(`expected sink error`)
	}
}

func TestPoolConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  PoolConfig
		wantErr bool
	}{
		{name: `valid`, config: PoolConfig{NumOfWorkers: 1, WorkerBufferSize: 1, Order: OrderByKey}},
		{name: `invalid_order`, config: PoolConfig{NumOfWorkers: 1, WorkerBufferSize: 1, Order: 3}, wantErr: true},
		{name: `negative_order`, config: PoolConfig{NumOfWorkers: 1, WorkerBufferSize: 1, Order: -1}, wantErr: true},
		{name: `no_workers`, config: PoolConfig{WorkerBufferSize: 1}, wantErr: true},
		{name: `no_buffer`, config: PoolConfig{NumOfWorkers: 1}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func BenchmarkPool_Run(b *testing.B) {
	sink := &recordingProducer{records: map[string][]string{}}
	pool := NewPool(`bench`, sink, metrics.NoopReporter(), log.NewNoopLogger(), &PoolConfig{
		NumOfWorkers:     4,
		WorkerBufferSize: 100,
		Order:            OrderByKey,
	})

	rec := &data.Record{Key: []byte(`0`), Value: []byte(`blah blah blah`)}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pool.Run(context.Background(), rec, nil)
	}
	pool.Stop()
}
