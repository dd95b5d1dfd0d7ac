package runner

import (
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/tryfix/errors"
)

type SplitState string

const (
	SplitStarting SplitState = `starting`
	SplitReading  SplitState = `reading`
	SplitDone     SplitState = `done`
	SplitFailed   SplitState = `failed`
)

// SplitStatus is a point in time view of one split read loop.
type SplitStatus struct {
	Name        string     `json:"name"`
	Source      string     `json:"source"`
	Index       int        `json:"index"`
	State       SplitState `json:"state"`
	Position    int64      `json:"position"`
	RecordsRead int64      `json:"records_read"`
	Produced    int64      `json:"produced"`
	Failed      int64      `json:"failed"`
	Watermark   time.Time  `json:"watermark"`
	Error       string     `json:"error,omitempty"`
}

// Registry tracks the status of every split of a run. Safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	splits map[string]*SplitStatus
}

func NewRegistry() *Registry {
	return &Registry{
		splits: make(map[string]*SplitStatus),
	}
}

func (r *Registry) register(status SplitStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.splits[status.Name] = &status
}

func (r *Registry) update(name string, fn func(status *SplitStatus)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.splits[name]; ok {
		fn(s)
	}
}

// List returns the registered split names in order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := lo.Keys(r.splits)
	sort.Strings(names)
	return names
}

func (r *Registry) Status(name string) (SplitStatus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.splits[name]
	if !ok {
		return SplitStatus{}, errors.Errorf(`split [%s] does not exist`, name)
	}

	return *s, nil
}

func (r *Registry) All() []SplitStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := lo.MapToSlice(r.splits, func(_ string, s *SplitStatus) SplitStatus {
		return *s
	})
	sort.Slice(all, func(i, j int) bool {
		return all[i].Index < all[j].Index
	})
	return all
}
