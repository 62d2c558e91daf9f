/*
Package tstree implements a ternary search tree keyed by byte strings.

Every node tests a single byte of the key and branches three ways: low for
keys whose byte at this position sorts before the node's split byte, high
for those that sort after, and equal to continue with the next byte of keys
that matched. Keys are compared byte by byte, no Unicode folding is applied.

The tree is not balanced and keys cannot be removed. A Tree is not safe for
concurrent use; wrap it (see package index) when it has to be shared.

# Prefix fallback

SearchPrefix returns the exact value when the key is stored. Otherwise it
walks as far as the key matches and returns either the longest stored key
that is a prefix of the matched portion, or the first key reached by
extending the matched prefix through equal links only:

	t := tstree.New[string]()
	t.Insert("T", "T")
	t.Insert("TEST", "TEST")
	t.SearchPrefix("TE")   // "TEST", true
	t.SearchPrefix("TE--") // "T", true

Because only equal links are followed while extending, the key that was
inserted first under a shared prefix wins ties.
*/
package tstree

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidKey is returned for zero length keys.
	ErrInvalidKey = errors.New("invalid key: length must be at least 1")
	// ErrDuplicateKey is returned when the terminal node of a key already holds a value.
	ErrDuplicateKey = errors.New("duplicate key")
)

type node[V any] struct {
	splitChar byte
	low       *node[V]
	equal     *node[V]
	high      *node[V]
	value     V
	hasValue  bool
}

// Tree is a ternary search tree mapping byte strings to values of type V.
// The zero value is an empty tree ready to use.
type Tree[V any] struct {
	root *node[V]
	size int
}

// New returns an empty tree.
func New[V any]() *Tree[V] {
	return &Tree[V]{}
}

// Len returns the number of keys stored.
func (t *Tree[V]) Len() int {
	return t.size
}

// Insert stores value under key, creating the nodes the key needs.
// A key that is already present is left untouched and ErrDuplicateKey is returned.
func (t *Tree[V]) Insert(key string, value V) error {
	if len(key) == 0 {
		return ErrInvalidKey
	}

	link := &t.root
	i := 0
	for {
		n := *link
		if n == nil {
			n = &node[V]{splitChar: key[i]}
			*link = n
		}

		c := key[i]
		switch {
		case c < n.splitChar:
			link = &n.low
		case c > n.splitChar:
			link = &n.high
		default:
			if i == len(key)-1 {
				if n.hasValue {
					return fmt.Errorf("%w: %q", ErrDuplicateKey, key)
				}
				n.value = value
				n.hasValue = true
				t.size++
				return nil
			}
			i++
			link = &n.equal
		}
	}
}

// Search returns the value stored under exactly key.
func (t *Tree[V]) Search(key string) (V, bool) {
	var zero V
	if len(key) == 0 {
		return zero, false
	}

	n := t.root
	i := 0
	for n != nil {
		c := key[i]
		switch {
		case c < n.splitChar:
			n = n.low
		case c > n.splitChar:
			n = n.high
		default:
			if i == len(key)-1 {
				if n.hasValue {
					return n.value, true
				}
				return zero, false
			}
			i++
			n = n.equal
		}
	}
	return zero, false
}

// SearchPrefix returns the value of key when it is stored, and otherwise the
// value of the closest stored key sharing the matched part of key.
//
// The walk consumes key like Search while remembering the last valued node
// left through an equal link. If every byte of key matched, the search
// continues from the node of the final byte; if the tree ran out first, it
// continues from the remembered node. From there it follows equal links
// only until a node with a value is found.
func (t *Tree[V]) SearchPrefix(key string) (V, bool) {
	var zero V
	n := t.descendToValue(t.fallbackStart(key))
	if n == nil {
		return zero, false
	}
	return n.value, true
}

// SearchPrefixN extends SearchPrefix to up to limit values. The first
// element is the SearchPrefix result, the rest are the values met while
// following equal links further down from it, shallowest first.
func (t *Tree[V]) SearchPrefixN(key string, limit int) []V {
	if limit < 1 {
		return nil
	}

	var values []V
	for n := t.descendToValue(t.fallbackStart(key)); n != nil && len(values) < limit; n = n.equal {
		if n.hasValue {
			values = append(values, n.value)
		}
	}
	return values
}

// fallbackStart returns the node the prefix fallback starts from: the node of
// the last byte of key when the whole key matched, otherwise the deepest node
// on the matched path that carries a value.
func (t *Tree[V]) fallbackStart(key string) *node[V] {
	if len(key) == 0 {
		return nil
	}

	var last *node[V]
	n := t.root
	i := 0
	for n != nil {
		c := key[i]
		switch {
		case c < n.splitChar:
			n = n.low
		case c > n.splitChar:
			n = n.high
		default:
			if i == len(key)-1 {
				return n
			}
			if n.hasValue {
				last = n
			}
			i++
			n = n.equal
		}
	}
	return last
}

// descendToValue follows equal links from n until a node carrying a value.
func (t *Tree[V]) descendToValue(n *node[V]) *node[V] {
	for n != nil && !n.hasValue {
		n = n.equal
	}
	return n
}

// Walk calls fn for every stored key in ascending byte order.
// Returning false from fn stops the walk.
func (t *Tree[V]) Walk(fn func(key string, value V) bool) {
	walk(t.root, make([]byte, 0, 32), fn)
}

func walk[V any](n *node[V], prefix []byte, fn func(string, V) bool) bool {
	if n == nil {
		return true
	}
	if !walk(n.low, prefix, fn) {
		return false
	}
	prefix = append(prefix, n.splitChar)
	if n.hasValue && !fn(string(prefix), n.value) {
		return false
	}
	if !walk(n.equal, prefix, fn) {
		return false
	}
	return walk(n.high, prefix[:len(prefix)-1], fn)
}

// Destroy unlinks every node, children before parents, and leaves t empty.
// Stored values are not touched. Destroying an empty tree is a no-op.
func (t *Tree[V]) Destroy() {
	destroy(t.root)
	t.root = nil
	t.size = 0
}

func destroy[V any](n *node[V]) {
	if n == nil {
		return
	}
	destroy(n.low)
	destroy(n.equal)
	destroy(n.high)
	n.low, n.equal, n.high = nil, nil, nil
}
