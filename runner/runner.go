/**
 * Copyright 2020 TryFix Engineering.
 * All rights reserved.
 * Authors:
 *    Gayan Yapa (gmbyapa@gmail.com)
 */

// Package runner drives an unbounded source locally: it splits the source,
// opens one reader per split and produces every record it reads into a sink.
package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/tryfix/errors"
	"github.com/tryfix/log"
	"github.com/tryfix/metrics"
	"github.com/tryfix/unbounded/data"
	"github.com/tryfix/unbounded/encoding"
	"github.com/tryfix/unbounded/producer"
	"github.com/tryfix/unbounded/runner/worker_pool"
	"github.com/tryfix/unbounded/source"
)

type positioner interface {
	Position() int
}

type Runner struct {
	config   *Config
	source   source.Source
	sink     producer.Producer
	registry *Registry
	keys     encoding.Encoder
	logger   log.Logger
	metrics  struct {
		recordsRead    metrics.Counter
		watermarkLag   metrics.Gauge
		produceLatency metrics.Observer
	}
}

func New(src source.Source, sink producer.Producer, config *Config) (*Runner, error) {
	if err := config.validate(); err != nil {
		return nil, errors.WithPrevious(err, `invalid runner config`)
	}

	if err := src.Validate(); err != nil {
		return nil, errors.WithPrevious(err, fmt.Sprintf(`source [%s] validation failed`, src.Name()))
	}

	r := &Runner{
		config:   config,
		source:   src,
		sink:     sink,
		registry: NewRegistry(),
		keys:     encoding.IntEncoder{},
		logger:   config.Logger.NewLog(log.Prefixed(fmt.Sprintf(`runner.%s`, config.Name))),
	}

	labels := []string{`split`}
	r.metrics.recordsRead = config.MetricsReporter.Counter(metrics.MetricConf{
		Path:        `unbounded_runner_records_read`,
		Labels:      labels,
		ConstLabels: map[string]string{`runner`: config.Name},
	})
	r.metrics.watermarkLag = config.MetricsReporter.Gauge(metrics.MetricConf{
		Path:        `unbounded_runner_watermark_lag_microseconds`,
		Labels:      labels,
		ConstLabels: map[string]string{`runner`: config.Name},
	})
	r.metrics.produceLatency = config.MetricsReporter.Observer(metrics.MetricConf{
		Path:        `unbounded_runner_emit_latency_microseconds`,
		Labels:      labels,
		ConstLabels: map[string]string{`runner`: config.Name},
	})

	return r, nil
}

func (r *Runner) Registry() *Registry {
	return r.registry
}

type split struct {
	index  int
	name   string
	source source.Source
	reader source.Reader
}

// Run reads every split until its limit is reached or ctx is done, then
// closes the readers and waits for in flight records to reach the sink. The
// first read or produce error stops the whole run and is returned.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info(`runner starting...`)
	defer r.logger.Info(`runner stopped`)

	sources, err := r.source.Split(r.config.DesiredSplits, r.config.Options)
	if err != nil {
		return errors.WithPrevious(err, fmt.Sprintf(`cannot split source [%s]`, r.source.Name()))
	}

	if len(sources) < 1 {
		return errors.Errorf(`source [%s] returned no splits`, r.source.Name())
	}

	splits := lo.Map(sources, func(src source.Source, i int) *split {
		return &split{index: i, name: fmt.Sprintf(`%s-%d`, src.Name(), i), source: src}
	})

	defer r.closeReaders(splits)
	for _, s := range splits {
		rd, err := s.source.NewReader(r.config.Options, nil)
		if err != nil {
			return errors.WithPrevious(err, fmt.Sprintf(`cannot create reader for split [%s]`, s.name))
		}
		s.reader = rd
		r.registry.register(SplitStatus{Name: s.name, Source: s.source.Name(), Index: s.index, State: SplitStarting})
	}

	r.logger.Info(fmt.Sprintf(`%d splits assigned`, len(splits)))

	if r.config.Http.Enabled {
		srv := MakeEndpoints(r.config.Http.Host, r.registry, r.logger)
		defer func() {
			if err := srv.Shutdown(context.Background()); err != nil {
				r.logger.Warn(fmt.Sprintf(`http server shutdown failed - %+v`, err))
			}
		}()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	run := &runErr{cancel: cancel}
	pool := worker_pool.NewPool(r.config.Name, r.sink, r.config.MetricsReporter, r.logger, r.config.WorkerPool)

	wg := new(sync.WaitGroup)
	for _, s := range splits {
		wg.Add(1)
		go func(s *split) {
			defer wg.Done()
			if err := r.read(ctx, s, pool, run); err != nil {
				run.set(err)
				r.registry.update(s.name, func(st *SplitStatus) {
					st.State = SplitFailed
					st.Error = err.Error()
				})
				return
			}
			r.registry.update(s.name, func(st *SplitStatus) {
				st.State = SplitDone
			})
		}(s)
	}

	wg.Wait()
	pool.Stop()

	return run.get()
}

func (r *Runner) read(ctx context.Context, s *split, pool *worker_pool.Pool, run *runErr) error {
	key, err := r.keys.Encode(s.index)
	if err != nil {
		return errors.WithPrevious(err, `cannot encode split key`)
	}

	labels := map[string]string{`split`: s.name}
	encoder := s.source.OutputEncoder()

	available, err := s.reader.Start()
	if err != nil {
		return errors.WithPrevious(err, fmt.Sprintf(`cannot start reader of split [%s]`, s.name))
	}

	r.registry.update(s.name, func(st *SplitStatus) {
		st.State = SplitReading
	})

	var read int64
	for available {
		if r.config.Limit > 0 && read >= r.config.Limit {
			break
		}

		select {
		case <-ctx.Done():
			return nil
		default:
		}

		record, err := r.record(s, key, encoder)
		if err != nil {
			return err
		}

		position := read
		if p, ok := s.reader.(positioner); ok {
			position = int64(p.Position())
		}

		readAt := time.Now()
		recCtx := withSplitMeta(ctx, &SplitMeta{Split: s.name, Index: s.index, Position: position})
		pool.Run(recCtx, record, func(_ int32, _ int64, err error) {
			if err != nil {
				run.set(errors.WithPrevious(err, fmt.Sprintf(`cannot produce record of split [%s]`, s.name)))
				r.registry.update(s.name, func(st *SplitStatus) { st.Failed++ })
				return
			}
			r.metrics.produceLatency.Observe(float64(time.Since(readAt).Nanoseconds()/1e3), labels)
			r.registry.update(s.name, func(st *SplitStatus) { st.Produced++ })
		})
		r.logger.TraceContext(recCtx, fmt.Sprintf(`record read from %s at position %d`, s.name, position))

		read++
		r.metrics.recordsRead.Count(1, labels)
		r.metrics.watermarkLag.Count(float64(time.Since(record.Watermark).Nanoseconds()/1e3), labels)
		r.registry.update(s.name, func(st *SplitStatus) {
			st.Position = position
			st.RecordsRead = read
			st.Watermark = record.Watermark
		})

		if r.config.Interval > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(r.config.Interval):
			}
		}

		available, err = s.reader.Advance()
		if err != nil {
			return errors.WithPrevious(err, fmt.Sprintf(`cannot advance reader of split [%s]`, s.name))
		}
	}

	r.logger.Info(fmt.Sprintf(`split [%s] finished after %d records`, s.name, read))
	return nil
}

func (r *Runner) record(s *split, key []byte, encoder encoding.Encoder) (*data.Record, error) {
	v, err := s.reader.Current()
	if err != nil {
		return nil, errors.WithPrevious(err, fmt.Sprintf(`cannot read current record of split [%s]`, s.name))
	}

	ts, err := s.reader.CurrentTimestamp()
	if err != nil {
		return nil, errors.WithPrevious(err, fmt.Sprintf(`cannot read timestamp of split [%s]`, s.name))
	}

	wm, err := s.reader.Watermark()
	if err != nil {
		return nil, errors.WithPrevious(err, fmt.Sprintf(`cannot read watermark of split [%s]`, s.name))
	}

	val, err := encoder.Encode(v)
	if err != nil {
		return nil, errors.WithPrevious(err, fmt.Sprintf(`cannot encode record of split [%s]`, s.name))
	}

	return &data.Record{
		Key:       key,
		Value:     val,
		Topic:     r.config.Topic,
		Timestamp: ts,
		Watermark: wm,
		Source:    s.name,
		UUID:      uuid.New(),
		Headers: data.RecordHeaders{
			{Key: []byte(`source`), Value: []byte(s.source.Name())},
			{Key: []byte(`split`), Value: key},
		},
	}, nil
}

func (r *Runner) closeReaders(splits []*split) {
	for _, s := range splits {
		if s.reader == nil {
			continue
		}
		if err := s.reader.Close(); err != nil {
			r.logger.Warn(fmt.Sprintf(`cannot close reader of split [%s] - %+v`, s.name, err))
		}
	}
}

// runErr keeps the first error of a run and cancels it.
type runErr struct {
	once   sync.Once
	err    error
	cancel context.CancelFunc
}

func (e *runErr) set(err error) {
	e.once.Do(func() {
		e.err = err
		e.cancel()
	})
}

func (e *runErr) get() error {
	return e.err
}
