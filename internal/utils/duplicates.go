package utils

// SeenFilter drops strings that were already emitted once.
// Comparison is byte for byte, like the index itself.
type SeenFilter struct {
	seen map[string]struct{}
}

// NewSeenFilter creates a filter that already considers the given words seen.
func NewSeenFilter(words ...string) *SeenFilter {
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		seen[w] = struct{}{}
	}
	return &SeenFilter{seen: seen}
}

// ShouldInclude reports whether word is new, and marks it seen.
func (f *SeenFilter) ShouldInclude(word string) bool {
	if _, ok := f.seen[word]; ok {
		return false
	}
	f.seen[word] = struct{}{}
	return true
}
