/**
 * Copyright 2020 TryFix Engineering.
 * All rights reserved.
 * Authors:
 *    Gayan Yapa (gmbyapa@gmail.com)
 */

// Package cyclic provides an unbounded source that endlessly repeats a fixed
// set of string records. It is meant for demo and test pipelines: it cannot
// be split, it keeps no checkpoint and it stamps every record and watermark
// with the current clock time.
package cyclic

import (
	"fmt"

	"github.com/tryfix/log"
	"github.com/tryfix/unbounded/encoding"
	"github.com/tryfix/unbounded/source"
)

// Sentences is the default record set.
var Sentences = []string{`blah blah blah`, `foo bar`, `my dog has fleas`}

type Option func(*options)

type options struct {
	name    string
	records []string
	clock   source.Clock
	logger  log.Logger
}

func (opts *options) apply(options ...Option) {
	opts.name = `sentences`
	opts.records = Sentences
	opts.clock = source.SystemClock
	opts.logger = log.NewNoopLogger()
	for _, opt := range options {
		opt(opts)
	}
}

func WithName(name string) Option {
	return func(opts *options) {
		opts.name = name
	}
}

func WithRecords(records []string) Option {
	return func(opts *options) {
		opts.records = records
	}
}

// WithClock replaces the wall clock used for timestamps and watermarks.
func WithClock(clock source.Clock) Option {
	return func(opts *options) {
		opts.clock = clock
	}
}

func WithLogger(logger log.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

// Source is immutable once built and may be shared between goroutines.
type Source struct {
	name    string
	records []string
	encoder encoding.Encoder
	clock   source.Clock
	logger  log.Logger
}

// NewSource builds a source over the configured record set. An empty record
// set or a missing encoder is rejected with source.ErrInvalidConfiguration.
func NewSource(encoder encoding.Encoder, opts ...Option) (*Source, error) {
	o := new(options)
	o.apply(opts...)

	if encoder == nil {
		return nil, fmt.Errorf(`%w: output encoder cannot be nil`, source.ErrInvalidConfiguration)
	}

	if len(o.records) < 1 {
		return nil, fmt.Errorf(`%w: record set of source [%s] cannot be empty`, source.ErrInvalidConfiguration, o.name)
	}

	if o.clock == nil {
		return nil, fmt.Errorf(`%w: clock cannot be nil`, source.ErrInvalidConfiguration)
	}

	if o.logger == nil {
		return nil, fmt.Errorf(`%w: logger cannot be nil`, source.ErrInvalidConfiguration)
	}

	records := make([]string, len(o.records))
	copy(records, o.records)

	return &Source{
		name:    o.name,
		records: records,
		encoder: encoder,
		clock:   o.clock,
		logger:  o.logger.NewLog(log.Prefixed(fmt.Sprintf(`cyclic-source.%s`, o.name))),
	}, nil
}

func (s *Source) Name() string {
	return s.name
}

// Split always returns the source itself, the source is not splittable.
func (s *Source) Split(desiredNumSplits int, _ source.Options) ([]source.Source, error) {
	s.logger.Debug(fmt.Sprintf(`%d splits requested, source is not splittable`, desiredNumSplits))
	return []source.Source{s}, nil
}

// NewReader ignores mark, every reader starts from the first record.
func (s *Source) NewReader(_ source.Options, mark source.CheckpointMark) (source.Reader, error) {
	if mark != nil {
		s.logger.Warn(`checkpoints are not supported, reader will start from the first record`)
	}

	return &reader{
		source: s,
		n:      len(s.records),
	}, nil
}

func (s *Source) CheckpointMarkEncoder() encoding.Encoder {
	return nil
}

// Validate has nothing left to check, the record set was validated on
// construction.
func (s *Source) Validate() error {
	return nil
}

func (s *Source) OutputEncoder() encoding.Encoder {
	return s.encoder
}

// Records returns a copy of the record set.
func (s *Source) Records() []string {
	records := make([]string, len(s.records))
	copy(records, s.records)
	return records
}
