package dictionary

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

func TestReadKeys(t *testing.T) {
	testCases := []struct {
		input       string
		maxKeys     int
		expected    []string
		truncated   bool
		description string
	}{
		{"apple\nbanana\ncherry\n", 0, []string{"apple", "banana", "cherry"}, false, "plain list"},
		{"apple\nbanana", 0, []string{"apple", "banana"}, false, "no trailing newline"},
		{"apple\r\nbanana\r\n", 0, []string{"apple", "banana"}, false, "crlf endings"},
		{"apple\n\n\nbanana\n", 0, []string{"apple", "banana"}, false, "empty lines dropped"},
		{" spaced \n", 0, []string{" spaced "}, false, "inner whitespace kept"},
		{"a\nb\nc\nd\n", 2, []string{"a", "b"}, true, "cap reached"},
		{"a\nb\n", 2, []string{"a", "b"}, false, "cap equals input"},
		{"", 5, nil, false, "empty input"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			keys, stats, err := ReadKeys(strings.NewReader(tc.input), tc.maxKeys)
			if err != nil {
				t.Fatalf("ReadKeys: %v", err)
			}
			if diff := cmp.Diff(tc.expected, keys, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("keys mismatch (-want +got):\n%s", diff)
			}
			if stats.Truncated != tc.truncated {
				t.Errorf("expected truncated=%v, got %v", tc.truncated, stats.Truncated)
			}
			if stats.Keys != len(keys) {
				t.Errorf("stats.Keys=%d, len(keys)=%d", stats.Keys, len(keys))
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	words := filepath.Join(dir, "words.txt")
	if err := os.WriteFile(words, []byte("T\nTEST\nTEST3\nTSET\n"), 0644); err != nil {
		t.Fatal(err)
	}
	keys, stats, err := LoadFile(words, 1024)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if diff := cmp.Diff([]string{"T", "TEST", "TEST3", "TSET"}, keys); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
	if stats.Lines != 4 {
		t.Errorf("expected 4 lines, got %d", stats.Lines)
	}

	empty := filepath.Join(dir, "empty")
	if err := os.WriteFile(empty, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if keys, _, err := LoadFile(empty, 10); err != nil || len(keys) != 0 {
		t.Errorf("empty file: keys=%v err=%v", keys, err)
	}

	binary := filepath.Join(dir, "words.bin")
	if err := os.WriteFile(binary, []byte{0x10, 0x00, 0x00, 0x00, 'a'}, 0644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := LoadFile(binary, 10); err == nil {
		t.Errorf("expected binary file to be rejected")
	}

	if _, _, err := LoadFile(dir, 10); err == nil {
		t.Errorf("expected directory to be rejected")
	}
	if _, _, err := LoadFile(filepath.Join(dir, "missing.txt"), 10); err == nil {
		t.Errorf("expected missing file error")
	}
}
