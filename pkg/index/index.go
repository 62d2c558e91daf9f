// Package index builds a ternary search tree over a candidate list and answers pattern queries against it.
package index

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bastiangx/like/pkg/tstree"
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// DuplicatePolicy decides what Build does with a key that is already indexed.
type DuplicatePolicy string

const (
	// DuplicateSkip keeps the first occurrence and ignores later ones.
	DuplicateSkip DuplicatePolicy = "skip"
	// DuplicateAbort stops the build and discards everything inserted so far.
	DuplicateAbort DuplicatePolicy = "abort"
)

// DefaultMaxMatches is used when a query asks for fewer than one match.
const DefaultMaxMatches = 1

// ParsePolicy maps a config string onto a DuplicatePolicy.
func ParsePolicy(s string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(s) {
	case DuplicateSkip, "":
		return DuplicateSkip, nil
	case DuplicateAbort:
		return DuplicateAbort, nil
	}
	return "", fmt.Errorf("unknown duplicate policy %q (expected %q or %q)", s, DuplicateSkip, DuplicateAbort)
}

// Options configures an Index.
type Options struct {
	MaxMatches int
	Duplicates DuplicatePolicy
}

// DefaultOptions returns single match, skip duplicates.
func DefaultOptions() Options {
	return Options{
		MaxMatches: DefaultMaxMatches,
		Duplicates: DuplicateSkip,
	}
}

// BuildStats reports what a Build did with its input.
type BuildStats struct {
	Inserted int
	Skipped  int
	Elapsed  time.Duration
}

// Index is a string index that is read-only after Build.
// Queries may run concurrently; Build and Reset replace the whole tree.
type Index struct {
	opts  Options
	tree  *tstree.Tree[string]
	order *patricia.Trie
	mu    sync.RWMutex
}

// New returns an empty index.
func New(opts Options) *Index {
	if opts.MaxMatches < 1 {
		opts.MaxMatches = DefaultMaxMatches
	}
	if opts.Duplicates == "" {
		opts.Duplicates = DuplicateSkip
	}
	return &Index{
		opts:  opts,
		tree:  tstree.New[string](),
		order: patricia.NewTrie(),
	}
}

// Build inserts keys into a fresh tree, each key being its own value, in
// input order. On success the new tree replaces the current one; on error
// the current tree is kept and the partial one is dropped.
func (ix *Index) Build(keys []string) (BuildStats, error) {
	start := time.Now()
	tree := tstree.New[string]()
	order := patricia.NewTrie()
	stats := BuildStats{}

	for i, key := range keys {
		err := tree.Insert(key, key)
		if err != nil {
			if ix.opts.Duplicates == DuplicateSkip &&
				(errors.Is(err, tstree.ErrDuplicateKey) || errors.Is(err, tstree.ErrInvalidKey)) {
				log.Debugf("Skipping key #%d: %v", i, err)
				stats.Skipped++
				continue
			}
			tree.Destroy()
			return stats, fmt.Errorf("building index at key #%d: %w", i, err)
		}
		order.Insert(patricia.Prefix(key), i)
		stats.Inserted++
	}
	stats.Elapsed = time.Since(start)

	ix.mu.Lock()
	old := ix.tree
	ix.tree = tree
	ix.order = order
	ix.mu.Unlock()
	old.Destroy()

	log.Debugf("Indexed %d keys (%d skipped) in %v", stats.Inserted, stats.Skipped, stats.Elapsed)
	return stats, nil
}

// Match returns up to limit keys for pattern using the prefix fallback
// search. The first result is the single best match. A limit below one
// falls back to the index's MaxMatches. No match is an empty result.
func (ix *Index) Match(pattern string, limit int) ([]string, error) {
	if len(pattern) == 0 {
		return nil, tstree.ErrInvalidKey
	}
	if limit < 1 {
		limit = ix.opts.MaxMatches
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.tree.SearchPrefixN(pattern, limit), nil
}

// Contains reports whether key was indexed verbatim.
func (ix *Index) Contains(key string) bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	_, ok := ix.tree.Search(key)
	return ok
}

// Similar lists indexed keys starting with prefix, in the order they were
// indexed, at most limit of them (limit < 1 means all).
func (ix *Index) Similar(prefix string, limit int) []string {
	type entry struct {
		key string
		pos int
	}

	ix.mu.RLock()
	var found []entry
	err := ix.order.VisitSubtree(patricia.Prefix(prefix), func(p patricia.Prefix, item patricia.Item) error {
		found = append(found, entry{key: string(p), pos: item.(int)})
		return nil
	})
	ix.mu.RUnlock()
	if err != nil {
		log.Errorf("Error visiting index subtree: %v", err)
		return nil
	}

	sort.Slice(found, func(i, j int) bool {
		return found[i].pos < found[j].pos
	})
	if limit > 0 && len(found) > limit {
		found = found[:limit]
	}

	keys := make([]string, len(found))
	for i, e := range found {
		keys[i] = e.key
	}
	return keys
}

// Len returns the number of indexed keys.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.tree.Len()
}

// Stats returns counters for logging and the server's info action.
func (ix *Index) Stats() map[string]int {
	return map[string]int{
		"keys":       ix.Len(),
		"maxMatches": ix.opts.MaxMatches,
	}
}

// Reset drops every indexed key.
func (ix *Index) Reset() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.tree.Destroy()
	ix.order = patricia.NewTrie()
}

// BuildAndMatch indexes keys in a fresh index and queries it once with
// pattern, returning at most maxMatches keys. Duplicate keys are skipped.
func BuildAndMatch(keys []string, pattern string, maxMatches int) ([]string, error) {
	return BuildAndMatchWith(keys, pattern, Options{MaxMatches: maxMatches, Duplicates: DuplicateSkip})
}

// BuildAndMatchWith is BuildAndMatch with explicit options.
func BuildAndMatchWith(keys []string, pattern string, opts Options) ([]string, error) {
	if len(pattern) == 0 {
		return nil, tstree.ErrInvalidKey
	}

	ix := New(opts)
	defer ix.Reset()

	if _, err := ix.Build(keys); err != nil {
		return nil, err
	}
	return ix.Match(pattern, ix.opts.MaxMatches)
}
