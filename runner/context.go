package runner

import (
	"context"

	"github.com/tryfix/traceable-context"
)

var splitMetaKey = `split_meta`

// SplitMeta describes the split a record was read from.
type SplitMeta struct {
	Split    string
	Index    int
	Position int64
}

func withSplitMeta(parent context.Context, meta *SplitMeta) context.Context {
	return traceable_context.WithValue(parent, &splitMetaKey, meta)
}

// SplitFromContext returns the split meta attached to record contexts handed
// to sinks, false when ctx was not created by a runner.
func SplitFromContext(ctx context.Context) (*SplitMeta, bool) {
	meta, ok := ctx.Value(&splitMetaKey).(*SplitMeta)
	return meta, ok
}
