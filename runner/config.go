/**
 * Copyright 2020 TryFix Engineering.
 * All rights reserved.
 * Authors:
 *    Gayan Yapa (gmbyapa@gmail.com)
 */

package runner

import (
	"bytes"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/tryfix/errors"
	"github.com/tryfix/log"
	"github.com/tryfix/metrics"
	"github.com/tryfix/unbounded/runner/worker_pool"
	"github.com/tryfix/unbounded/source"
	"github.com/tryfix/unbounded/util"
)

type Config struct {
	Name          string
	DesiredSplits int
	Options       source.Options
	Topic         string
	Limit         int64         // records read per split, zero reads forever
	Interval      time.Duration // pause between two reads of a split
	WorkerPool    *worker_pool.PoolConfig
	Http          struct {
		Enabled bool
		Host    string
	}
	Logger          log.Logger
	MetricsReporter metrics.Reporter
}

func NewConfig() *Config {
	config := &Config{}
	config.DesiredSplits = 1
	config.Options = source.Options{}
	config.Http.Host = `:8100`

	config.WorkerPool = &worker_pool.PoolConfig{
		Order:            worker_pool.OrderByKey,
		NumOfWorkers:     4,
		WorkerBufferSize: 10,
	}

	config.MetricsReporter = metrics.NoopReporter()
	config.Logger = log.NewNoopLogger()

	return config
}

func (c *Config) validate() error {
	if c.Name == `` {
		return errors.New(`[Name] cannot be empty`)
	}

	if c.Topic == `` {
		return errors.New(`[Topic] cannot be empty`)
	}

	if c.DesiredSplits < 1 {
		return errors.New(`[DesiredSplits] should be greater than 0`)
	}

	if c.Limit < 0 {
		return errors.New(`[Limit] cannot be negative`)
	}

	if c.Interval < 0 {
		return errors.New(`[Interval] cannot be negative`)
	}

	if c.Http.Enabled && c.Http.Host == `` {
		return errors.New(`[Http.Host] cannot be empty when http is enabled`)
	}

	if c.WorkerPool == nil {
		return errors.New(`[WorkerPool] cannot be nil`)
	}

	if err := c.WorkerPool.Validate(); err != nil {
		return errors.WithPrevious(err, `[WorkerPool] invalid`)
	}

	if c.Logger == nil || c.MetricsReporter == nil {
		return errors.New(`[Logger] and [MetricsReporter] are required`)
	}

	return nil
}

func (c *Config) String() string {
	out := new(bytes.Buffer)
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{`Config`, `Value`})

	for _, v := range util.Flatten(`runner`, c) {
		table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT})
		table.Append(v)
	}
	table.Render()

	return out.String()
}
