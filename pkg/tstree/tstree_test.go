package tstree

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const (
	key1 = "T"
	key2 = "TEST"
	key3 = "TEST3"
	key4 = "TSET"

	val1 = "VALUE1"
	val2 = "VALUE2"
	val3 = "VALUE3"
	val4 = "VALUE4"
)

func newTestTree(t *testing.T) *Tree[string] {
	t.Helper()
	tree := New[string]()
	for _, kv := range [][2]string{{key1, val1}, {key2, val2}, {key3, val3}, {key4, val4}} {
		if err := tree.Insert(kv[0], kv[1]); err != nil {
			t.Fatalf("Insert(%q): %v", kv[0], err)
		}
	}
	return tree
}

func TestInsert(t *testing.T) {
	tree := newTestTree(t)
	if tree.Len() != 4 {
		t.Errorf("expected 4 keys, got %d", tree.Len())
	}
	if tree.root == nil || tree.root.splitChar != 'T' {
		t.Fatalf("first insert should establish root 'T'")
	}
}

func TestInsertEmptyKey(t *testing.T) {
	tree := New[string]()
	if err := tree.Insert("", "x"); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("expected ErrInvalidKey, got %v", err)
	}
	if tree.root != nil {
		t.Errorf("empty key must not create nodes")
	}
}

func TestInsertDuplicate(t *testing.T) {
	tree := newTestTree(t)

	err := tree.Insert(key2, "other")
	if !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
	if v, _ := tree.Search(key2); v != val2 {
		t.Errorf("duplicate insert overwrote value: got %q", v)
	}
	if tree.Len() != 4 {
		t.Errorf("duplicate insert changed size to %d", tree.Len())
	}

	// same key and value is still a duplicate
	if err := tree.Insert(key1, val1); !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey for identical re-insert, got %v", err)
	}
}

func TestSearch(t *testing.T) {
	tree := newTestTree(t)

	testCases := []struct {
		key      string
		expected string
		found    bool
	}{
		{key1, val1, true},
		{key2, val2, true},
		{key3, val3, true},
		{key4, val4, true},
		{"TE--", "", false},
		{"TE", "", false},
		{"TES", "", false},
		{"TEST34", "", false},
		{"A", "", false},
		{"", "", false},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("key_%q", tc.key), func(t *testing.T) {
			v, ok := tree.Search(tc.key)
			if ok != tc.found || v != tc.expected {
				t.Errorf("Search(%q) = (%q, %v), expected (%q, %v)", tc.key, v, ok, tc.expected, tc.found)
			}
		})
	}
}

func TestSearchPrefix(t *testing.T) {
	tree := newTestTree(t)

	testCases := []struct {
		key         string
		expected    string
		found       bool
		description string
	}{
		{"TEST", val2, true, "exact match wins"},
		{"TEST3", val3, true, "exact match on longer key"},
		{"TE", val2, true, "matched prefix dives to first completion"},
		{"TE--", val1, true, "diverged walk falls back to last valued node"},
		{"TS", val4, true, "prefix through a high link"},
		{"TEST3X", val3, true, "tree runs out after a full key"},
		{"TESX", val1, true, "diverged below TES falls back to T"},
		{"T", val1, true, "single byte key"},
		{"X", "", false, "nothing matched"},
		{"A", "", false, "nothing matched below root"},
		{"", "", false, "empty key"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			v, ok := tree.SearchPrefix(tc.key)
			if ok != tc.found || v != tc.expected {
				t.Errorf("SearchPrefix(%q) = (%q, %v), expected (%q, %v)", tc.key, v, ok, tc.expected, tc.found)
			}
		})
	}
}

// first key inserted under a shared prefix dominates the fallback
func TestSearchPrefixInsertionOrder(t *testing.T) {
	first := New[string]()
	for _, k := range []string{"cart", "car", "cat"} {
		if err := first.Insert(k, k); err != nil {
			t.Fatal(err)
		}
	}
	second := New[string]()
	for _, k := range []string{"cat", "car", "cart"} {
		if err := second.Insert(k, k); err != nil {
			t.Fatal(err)
		}
	}

	if v, _ := first.SearchPrefix("ca"); v != "car" {
		t.Errorf("expected 'car' from first tree, got %q", v)
	}
	if v, _ := second.SearchPrefix("ca"); v != "cat" {
		t.Errorf("expected 'cat' from second tree, got %q", v)
	}
}

func TestSearchPrefixNoFalseData(t *testing.T) {
	keys := []string{"alpha", "alphabet", "alpine", "beta", "bet", "gamma", "g", "delta"}
	tree := New[string]()
	stored := make(map[string]bool)
	for _, k := range keys {
		if err := tree.Insert(k, k); err != nil {
			t.Fatal(err)
		}
		stored[k] = true
	}

	queries := []string{"a", "al", "alp", "alx", "b", "be", "bez", "g", "ga", "gz", "d", "dz", "z", "alphabets"}
	for _, q := range queries {
		if v, ok := tree.SearchPrefix(q); ok && !stored[v] {
			t.Errorf("SearchPrefix(%q) returned %q which was never inserted", q, v)
		}
		if v, ok := tree.Search(q); ok {
			pv, pok := tree.SearchPrefix(q)
			if !pok || pv != v {
				t.Errorf("SearchPrefix(%q) = %q, expected exact match %q", q, pv, v)
			}
		}
	}
}

func TestSearchPrefixN(t *testing.T) {
	tree := newTestTree(t)

	testCases := []struct {
		key         string
		limit       int
		expected    []string
		description string
	}{
		{"TE", 1, []string{val2}, "single match equals SearchPrefix"},
		{"TE", 3, []string{val2, val3}, "equal chain below TE"},
		{"TE--", 3, []string{val1, val2, val3}, "fallback node and its equal chain"},
		{"TS", 5, []string{val4}, "single completion"},
		{"X", 3, nil, "no match"},
		{"TE", 0, nil, "zero limit"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			got := tree.SearchPrefixN(tc.key, tc.limit)
			if diff := cmp.Diff(tc.expected, got); diff != "" {
				t.Errorf("SearchPrefixN(%q, %d) mismatch (-want +got):\n%s", tc.key, tc.limit, diff)
			}
		})
	}
}

func TestWalk(t *testing.T) {
	tree := newTestTree(t)

	var keys []string
	tree.Walk(func(key string, value string) bool {
		keys = append(keys, key)
		return true
	})
	expected := []string{key1, key2, key3, key4}
	if diff := cmp.Diff(expected, keys); diff != "" {
		t.Errorf("Walk order mismatch (-want +got):\n%s", diff)
	}

	count := 0
	tree.Walk(func(string, string) bool {
		count++
		return count < 2
	})
	if count != 2 {
		t.Errorf("Walk did not stop early, visited %d", count)
	}
}

func TestDestroy(t *testing.T) {
	empty := New[string]()
	empty.Destroy()
	empty.Destroy()

	tree := newTestTree(t)
	tree.Destroy()
	if tree.Len() != 0 || tree.root != nil {
		t.Errorf("tree not empty after Destroy")
	}
	if _, ok := tree.Search(key2); ok {
		t.Errorf("Search found a key after Destroy")
	}
	tree.Destroy()

	// reusable after destroy
	if err := tree.Insert(key2, val2); err != nil {
		t.Fatalf("Insert after Destroy: %v", err)
	}
	if v, ok := tree.Search(key2); !ok || v != val2 {
		t.Errorf("round trip after Destroy failed")
	}
}

func TestRoundTrip(t *testing.T) {
	tree := New[int]()
	for i := 0; i < 500; i++ {
		k := fmt.Sprintf("key%d", i*7919%1000)
		if err := tree.Insert(k, i); err != nil {
			t.Fatalf("Insert(%q): %v", k, err)
		}
		if v, ok := tree.Search(k); !ok || v != i {
			t.Fatalf("Search(%q) = (%d, %v) right after insert", k, v, ok)
		}
	}
	if tree.Len() != 500 {
		t.Errorf("expected 500 keys, got %d", tree.Len())
	}
	if _, ok := tree.Search("key1000"); ok {
		t.Errorf("found key never inserted")
	}
}

func BenchmarkSearchPrefix(b *testing.B) {
	tree := New[string]()
	for i := 0; i < 1024; i++ {
		k := fmt.Sprintf("word%d", i)
		tree.Insert(k, k)
	}
	inputs := []string{"wor", "word1", "word99x", "wx", "word1023"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tree.SearchPrefix(inputs[i%len(inputs)])
	}
}
