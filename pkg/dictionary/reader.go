// Package dictionary reads newline delimited candidate lists from files or streams.
package dictionary

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// ReadStats describes what ReadKeys kept and dropped.
type ReadStats struct {
	Lines     int
	Keys      int
	Empty     int
	Truncated bool
}

// ReadKeys reads one key per line from r. Line terminators (\n or \r\n) are
// stripped and empty lines dropped; nothing else is trimmed. Once maxKeys
// keys were read the rest of the input is ignored. maxKeys < 1 reads all.
func ReadKeys(r io.Reader, maxKeys int) ([]string, ReadStats, error) {
	reader := bufio.NewReader(r)
	stats := ReadStats{}
	var keys []string
	if maxKeys > 0 {
		keys = make([]string, 0, min(maxKeys, 1024))
	}

	for {
		if maxKeys > 0 && len(keys) >= maxKeys {
			if _, err := reader.Peek(1); err == nil {
				stats.Truncated = true
			}
			break
		}

		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			stats.Lines++
			line = strings.TrimSuffix(line, "\n")
			line = strings.TrimSuffix(line, "\r")
			if line == "" {
				stats.Empty++
			} else {
				keys = append(keys, line)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, stats, fmt.Errorf("reading keys: %w", err)
		}
	}

	stats.Keys = len(keys)
	if stats.Truncated {
		log.Debugf("Key limit of %d reached, remaining input ignored", maxKeys)
	}
	return keys, stats, nil
}

// LoadFile validates and reads a candidate list file.
func LoadFile(path string, maxKeys int) ([]string, ReadStats, error) {
	if err := ValidateFile(path); err != nil {
		return nil, ReadStats{}, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, ReadStats{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	keys, stats, err := ReadKeys(file, maxKeys)
	if err != nil {
		return nil, stats, fmt.Errorf("%s: %w", path, err)
	}
	log.Debugf("Read %d keys from %s (%d lines, %d empty)", stats.Keys, path, stats.Lines, stats.Empty)
	return keys, stats, nil
}
