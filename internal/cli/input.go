// Package cli handles interactive pattern input against a built index, mostly for testing and debugging.
package cli

import (
	"bufio"
	"io"
	"strings"
	"time"

	"github.com/bastiangx/like/internal/utils"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// Matcher is the part of index.Index the prompt needs.
type Matcher interface {
	Match(pattern string, limit int) ([]string, error)
	Similar(prefix string, limit int) []string
}

var matchStyle = lipgloss.NewStyle().
	Foreground(lipgloss.AdaptiveColor{Light: "#286983", Dark: "#9ccfd8"})

// InputHandler reads patterns line by line and prints their matches.
// Patterns longer than maxPatternLength are rejected; when showSimilar
// is set, indexed strings sharing the pattern as a prefix are listed too.
type InputHandler struct {
	matcher          Matcher
	maxPatternLength int
	matchLimit       int
	showSimilar      bool
	color            bool
	requestCount     int
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(matcher Matcher, maxLength, limit int, showSimilar, color bool) *InputHandler {
	return &InputHandler{
		matcher:          matcher,
		maxPatternLength: maxLength,
		matchLimit:       limit,
		showSimilar:      showSimilar,
		color:            color,
	}
}

// Start begins the interface loop on r.
// Blank lines are ignored; the loop ends at EOF or on a read error.
func (h *InputHandler) Start(r io.Reader) error {
	log.Print("like CLI")
	reader := bufio.NewReader(r)
	log.Print("type a pattern and press Enter to see its match (Ctrl+C to exit):")

	for {
		log.Print("> ")
		line, err := reader.ReadString('\n')
		pattern := strings.TrimRight(line, "\r\n")
		if pattern != "" {
			h.handleInput(pattern)
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}

// handleInput matches a single pattern and prints the result.
// It returns the matched strings followed by any extra similar ones.
func (h *InputHandler) handleInput(pattern string) []string {
	h.requestCount++

	if len(pattern) > h.maxPatternLength {
		log.Errorf("Pattern too long: %s", pattern)
		return nil
	}

	start := time.Now()
	matches, err := h.matcher.Match(pattern, h.matchLimit)
	if err != nil {
		log.Errorf("Match failed for '%s': %v", pattern, err)
		return nil
	}
	log.Debugf("Took [ %v ] for pattern '%s'", time.Since(start), pattern)

	if len(matches) == 0 {
		log.Warnf("No match found for pattern: '%s'", pattern)
		return nil
	}

	log.Printf("Found %d match(es) for '%s':", len(matches), pattern)
	for i, m := range matches {
		log.Printf("%2d. %s", i+1, h.render(m))
	}

	if !h.showSimilar {
		return matches
	}

	filter := utils.NewSeenFilter(matches...)
	var similar []string
	for _, s := range h.matcher.Similar(pattern, 0) {
		if filter.ShouldInclude(s) {
			similar = append(similar, s)
		}
	}
	if len(similar) > 0 {
		log.Printf("Similar:")
		for _, s := range similar {
			log.Printf("    %s", h.render(s))
		}
	}
	return append(matches, similar...)
}

func (h *InputHandler) render(word string) string {
	if !h.color {
		return word
	}
	return matchStyle.Render(word)
}
