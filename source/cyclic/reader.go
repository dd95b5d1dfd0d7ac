package cyclic

import (
	"fmt"
	"time"

	"github.com/tryfix/unbounded/source"
)

type state int

const (
	stateUnstarted state = iota
	stateActive
	stateClosed
)

func (s state) String() string {
	switch s {
	case stateActive:
		return `Active`
	case stateClosed:
		return `Closed`
	}

	return `Unstarted`
}

// reader walks the record set of its source, wrapping to the first record
// after the last one. index is always in [0, n).
type reader struct {
	source *Source
	n      int
	index  int
	state  state
}

func (r *reader) Start() (bool, error) {
	if r.state != stateUnstarted {
		return false, r.illegal(`start`)
	}

	r.index = 0
	r.state = stateActive
	r.source.logger.Trace(`reader started`)

	return true, nil
}

// Advance never reports exhaustion.
func (r *reader) Advance() (bool, error) {
	if r.state != stateActive {
		return false, r.illegal(`advance`)
	}

	r.index++
	if r.index == r.n {
		r.index = 0
	}

	return true, nil
}

func (r *reader) Current() (interface{}, error) {
	if r.state != stateActive {
		return nil, r.illegal(`read current record`)
	}

	return r.source.records[r.index], nil
}

func (r *reader) CurrentTimestamp() (time.Time, error) {
	if r.state != stateActive {
		return time.Time{}, r.illegal(`read current timestamp`)
	}

	return r.source.clock.Now(), nil
}

// Watermark is the clock time of the call. Nothing read from this source is
// ever late, so event time tracking downstream is effectively disabled.
func (r *reader) Watermark() (time.Time, error) {
	if r.state != stateActive {
		return time.Time{}, r.illegal(`read watermark`)
	}

	return r.source.clock.Now(), nil
}

func (r *reader) Checkpoint() source.CheckpointMark {
	return nil
}

func (r *reader) CurrentSource() source.Source {
	return r.source
}

func (r *reader) Close() error {
	if r.state != stateClosed {
		r.source.logger.Trace(fmt.Sprintf(`reader closed at position %d`, r.index))
	}
	r.state = stateClosed
	return nil
}

// Position returns the index of the current record.
func (r *reader) Position() int {
	return r.index
}

func (r *reader) illegal(op string) error {
	return fmt.Errorf(`%w: cannot %s on a reader in state [%s]`, source.ErrIllegalState, op, r.state)
}
