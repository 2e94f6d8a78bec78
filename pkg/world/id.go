package world

import (
	"fmt"

	"github.com/google/uuid"
)

// Id prefixes, one per entity kind.
const (
	PrefixNode  = "n"
	PrefixEdge  = "e"
	PrefixMap   = "m"
	PrefixGraph = "g"
)

// IDFunc returns a fresh id for an entity with the given prefix.
type IDFunc func(prefix string) string

// UUID generates ids of the form "<prefix>-<uuid v4>".
func UUID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// Sequence returns a monotonic counter generator producing
// "<prefix>-1", "<prefix>-2", ... with one shared counter.
func Sequence() IDFunc {
	var n uint64
	return func(prefix string) string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}
