// Package conditions supplies resolved auto-configuration outcomes to the
// import list builder. Sources are read-only.
package conditions

import (
	"sort"

	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/types"
)

// Source enumerates condition outcomes.
type Source interface {
	Entries() []types.Outcome
}

// Map is an in-memory Source keyed by condition source name. The value
// reports whether the source was a full match.
type Map map[string]bool

// Entries returns the outcomes ordered by key.
func (m Map) Entries() []types.Outcome {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]types.Outcome, len(keys))
	for i, k := range keys {
		out[i] = types.Outcome{Key: k, FullMatch: m[k]}
	}
	return out
}

// Empty is a Source with no entries.
var Empty Source = Map(nil)

var _ Source = Map{}
