/**
 * Copyright 2020 TryFix Engineering.
 * All rights reserved.
 * Authors:
 *    Gayan Yapa (gmbyapa@gmail.com)
 */

// Package source defines the contract between an unbounded data source and
// the runtime that drives it. A Source describes the stream and hands out
// Readers, a Reader is a single-goroutine cursor over that stream.
package source

import (
	"time"

	"github.com/tryfix/unbounded/encoding"
)

// Options are runtime provided environment options. Sources are free to
// ignore them.
type Options map[string]string

// CheckpointMark is an opaque resumable position in a stream.
type CheckpointMark interface {
	// FinalizeCheckpoint is called once the runtime has durably committed
	// every record read up to this mark.
	FinalizeCheckpoint() error
}

// Source is an immutable description of an unbounded stream. Implementations
// must be safe to share between goroutines.
type Source interface {
	Name() string
	// Split partitions the source into at most desiredNumSplits sub sources.
	// Non splittable sources return themselves as the only split.
	Split(desiredNumSplits int, opts Options) ([]Source, error)
	// NewReader creates an unstarted reader, resuming from mark when the
	// source supports checkpoints. A nil mark means start from scratch.
	NewReader(opts Options, mark CheckpointMark) (Reader, error)
	// CheckpointMarkEncoder returns nil when checkpoints are not supported.
	CheckpointMarkEncoder() encoding.Encoder
	Validate() error
	OutputEncoder() encoding.Encoder
}

// Reader is a cursor over a Source. It is not safe for concurrent use, the
// runtime drives a reader from one goroutine at a time.
//
// Start must be called exactly once before Advance, Current, CurrentTimestamp
// or Watermark. The bool returned by Start and Advance reports whether a
// current record is available.
type Reader interface {
	Start() (bool, error)
	Advance() (bool, error)
	Current() (interface{}, error)
	CurrentTimestamp() (time.Time, error)
	// Watermark asserts that no record with an earlier event time will follow.
	Watermark() (time.Time, error)
	// Checkpoint returns nil when the source has no resumable state.
	Checkpoint() CheckpointMark
	CurrentSource() Source
	Close() error
}
