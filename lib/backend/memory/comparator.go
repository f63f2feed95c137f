// Package memory provides the in-memory backend.Backend implementations:
// ordered map/set over a github.com/google/btree.BTree, and hash map/set
// over a github.com/puzpuzpuz/xsync/v3.MapOf, generalizing a single
// sharded in-memory engine to the batched, mode-driven contract of
// backend.Backend.
package memory

import "bytes"

// Comparator orders two keys the way bytes.Compare does: negative if a<b,
// zero if equal, positive if a>b.
type Comparator func(a, b []byte) int

// Lexicographic is the default comparator: standard byte-wise ordering
// where a shorter string that is a prefix of a longer one sorts first
// (bytes.Compare already has exactly this behavior).
func Lexicographic(a, b []byte) int {
	return bytes.Compare(a, b)
}

// comparators is the process-wide named comparator registry, the ordered
// backends' equivalent of the mode package's predicate registry
// (mode.Register/mode.Lookup): it replaces dlopen/dlsym-loaded
// comparator plugins with an explicit registration API populated at
// startup.
var comparators = map[string]Comparator{
	"lexicographic": Lexicographic,
}

// RegisterComparator adds a named comparator to the registry. Ordered
// backends resolve their "comparator" config field against this table when
// opened.
func RegisterComparator(name string, cmp Comparator) {
	comparators[name] = cmp
}

func lookupComparator(name string) (Comparator, bool) {
	if name == "" {
		return Lexicographic, true
	}
	cmp, ok := comparators[name]
	return cmp, ok
}
