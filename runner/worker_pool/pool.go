package worker_pool

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"sync"
	"time"

	"github.com/tryfix/errors"
	"github.com/tryfix/log"
	"github.com/tryfix/metrics"
	"github.com/tryfix/unbounded/data"
	"github.com/tryfix/unbounded/producer"
)

type ExecutionOrder int

const (
	OrderRandom ExecutionOrder = iota
	OrderByKey
	OrderPreserved
)

func (eo ExecutionOrder) String() string {
	switch eo {
	case OrderByKey:
		return `OrderByKey`
	case OrderPreserved:
		return `OrderPreserved`
	}

	return `OrderRandom`
}

// DoneFunc is called once the record was handed to the sink.
type DoneFunc func(partition int32, offset int64, err error)

type task struct {
	ctx     context.Context
	record  *data.Record
	doneClb DoneFunc
}

type PoolConfig struct {
	NumOfWorkers     int
	WorkerBufferSize int
	Order            ExecutionOrder
}

func (c *PoolConfig) Validate() error {
	if c.Order > OrderPreserved || c.Order < OrderRandom {
		return errors.Errorf(`invalid worker pool order [%d]`, c.Order)
	}

	if c.NumOfWorkers < 1 {
		return errors.New(`worker pool NumOfWorkers should be greater than 0`)
	}

	if c.WorkerBufferSize < 1 {
		return errors.New(`worker pool WorkerBufferSize should be greater than 0`)
	}

	return nil
}

// Pool fans records out to a fixed set of workers that produce them into a
// sink. With OrderByKey records sharing a key are produced in the order they
// were submitted.
type Pool struct {
	id      string
	size    int64
	workers []*worker
	logger  log.Logger
	order   ExecutionOrder
	wg      sync.WaitGroup
}

func NewPool(id string, sink producer.Producer, metricsReporter metrics.Reporter, logger log.Logger, config *PoolConfig) *Pool {
	size := config.NumOfWorkers
	if config.Order == OrderPreserved {
		size = 1
	}

	p := &Pool{
		id:      id,
		size:    int64(size),
		order:   config.Order,
		logger:  logger.NewLog(log.Prefixed(`pool`)),
		workers: make([]*worker, size),
	}

	bufferUsage := metricsReporter.Gauge(metrics.MetricConf{
		Path:   `unbounded_worker_pool_buffer_usage_percent`,
		Labels: []string{`pool_id`, `worker`},
	})

	for i := 0; i < size; i++ {
		p.workers[i] = &worker{
			id:          i,
			sink:        sink,
			pool:        p,
			logger:      p.logger.NewLog(log.Prefixed(fmt.Sprintf(`worker-%d`, i))),
			tasks:       make(chan task, config.WorkerBufferSize),
			stop:        make(chan struct{}),
			bufferUsage: bufferUsage,
		}
	}

	p.wg.Add(size)
	for _, w := range p.workers {
		go w.start()
	}

	return p
}

// Run queues the record, blocking while the selected worker buffer is full.
func (p *Pool) Run(ctx context.Context, record *data.Record, doneClb DoneFunc) {
	p.worker(record.Key).tasks <- task{
		ctx:     ctx,
		record:  record,
		doneClb: doneClb,
	}
}

// Stop drains every queued task and waits for the workers to exit. Run must
// not be called after Stop.
func (p *Pool) Stop() {
	for _, w := range p.workers {
		close(w.tasks)
	}
	p.wg.Wait()
	p.logger.Info(fmt.Sprintf(`pool [%s] stopped`, p.id))
}

func (p *Pool) worker(key []byte) *worker {
	switch {
	case p.size == 1:
		return p.workers[0]
	case p.order == OrderRandom:
		return p.workers[rand.Int63n(p.size)]
	}

	hasher := fnv.New32a()
	_, _ = hasher.Write(key)
	return p.workers[int64(hasher.Sum32())%p.size]
}

type worker struct {
	id          int
	sink        producer.Producer
	tasks       chan task
	stop        chan struct{}
	pool        *Pool
	logger      log.Logger
	bufferUsage metrics.Gauge
}

func (w *worker) start() {
	defer w.pool.wg.Done()
	go w.reportBufferUsage()
	defer close(w.stop)

	for t := range w.tasks {
		partition, offset, err := w.sink.Produce(t.ctx, t.record)
		if err != nil {
			w.logger.ErrorContext(t.ctx, fmt.Sprintf(`cannot produce record %s due to %s`, t.record, err))
		}

		if t.doneClb != nil {
			t.doneClb(partition, offset, err)
		}
	}
}

func (w *worker) reportBufferUsage() {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	labels := map[string]string{`pool_id`: w.pool.id, `worker`: fmt.Sprint(w.id)}
	for {
		select {
		case <-ticker.C:
			w.bufferUsage.Count((float64(len(w.tasks))/float64(cap(w.tasks)))*100, labels)
		case <-w.stop:
			return
		}
	}
}
