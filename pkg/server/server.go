package server

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/bastiangx/like/internal/logger"
	"github.com/bastiangx/like/pkg/config"
	"github.com/bastiangx/like/pkg/index"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// KeySource supplies the candidate list, capped at maxKeys, for (re)builds.
type KeySource func(maxKeys int) ([]string, error)

// Server handles msgpack IPC for pattern matches
type Server struct {
	index        *index.Index
	config       *config.Config
	configPath   string
	source       KeySource
	decoder      *msgpack.Decoder
	encoder      *msgpack.Encoder
	logger       *log.Logger
	requestCount int
}

// NewServer creates a new server using stdin/stdout for IPC.
// ix must already be built; source is used by the reload action.
func NewServer(ix *index.Index, cfg *config.Config, configPath string, source KeySource) *Server {
	return newServer(ix, cfg, configPath, source, os.Stdin, os.Stdout)
}

func newServer(ix *index.Index, cfg *config.Config, configPath string, source KeySource, r io.Reader, w io.Writer) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Server{
		index:      ix,
		config:     cfg,
		configPath: configPath,
		source:     source,
		decoder:    msgpack.NewDecoder(r),
		encoder:    msgpack.NewEncoder(w),
		logger:     logger.New("server"),
	}
}

// Start sends a ready status and then serves requests until EOF.
func (s *Server) Start() error {
	s.logger.Debug("Starting server", "keys", s.index.Len())
	if err := s.send(map[string]string{"status": "ready"}); err != nil {
		return err
	}

	for {
		var req Request
		if err := s.decoder.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Debug("Client disconnected")
				return nil
			}
			s.logger.Errorf("Decoding request: %v", err)
			s.sendError("", "invalid msgpack request", 400)
			return fmt.Errorf("decoding request: %w", err)
		}
		s.handleRequest(req)
	}
}

// handleRequest dispatches on the action field.
func (s *Server) handleRequest(req Request) {
	s.requestCount++
	if every := s.config.Server.ReloadEvery; every > 0 && s.requestCount%every == 0 {
		s.logger.Debugf("Periodic reload after %d requests", s.requestCount)
		if _, err := s.reload(); err != nil {
			s.logger.Warnf("Periodic reload failed, keeping current index: %v", err)
		}
	}

	switch req.Action {
	case "", "match":
		s.handleMatch(req)
	case "contains":
		s.handleContains(req)
	case "similar":
		s.handleSimilar(req)
	case "info":
		s.handleInfo(req)
	case "reload":
		s.handleReload(req)
	default:
		s.sendError(req.ID, fmt.Sprintf("unknown action: %s", req.Action), 400)
	}
}

// validatePattern returns an error message for patterns the index cannot take.
func (s *Server) validatePattern(pattern string) string {
	if pattern == "" {
		return "pattern is empty"
	}
	if maxLen := s.config.Match.MaxPattern; len(pattern) > maxLen {
		return fmt.Sprintf("pattern exceeds maximum length of %d bytes", maxLen)
	}
	return ""
}

func (s *Server) handleMatch(req Request) {
	if msg := s.validatePattern(req.Pattern); msg != "" {
		s.sendError(req.ID, msg, 400)
		return
	}

	limit := req.Limit
	if limit < 1 {
		limit = s.config.Match.MaxMatches
	}

	start := time.Now()
	matches, err := s.index.Match(req.Pattern, limit)
	elapsed := time.Since(start)
	if err != nil {
		s.sendError(req.ID, err.Error(), 400)
		return
	}
	s.logger.Debugf("Took [ %v ] for pattern '%s'", elapsed, req.Pattern)

	suggestions := rankMatches(matches)
	s.send(MatchResponse{
		ID:        req.ID,
		Matches:   suggestions,
		Count:     len(suggestions),
		TimeTaken: elapsed.Microseconds(),
	})
}

func (s *Server) handleContains(req Request) {
	if msg := s.validatePattern(req.Pattern); msg != "" {
		s.sendError(req.ID, msg, 400)
		return
	}
	s.send(ContainsResponse{ID: req.ID, Found: s.index.Contains(req.Pattern)})
}

func (s *Server) handleSimilar(req Request) {
	if len(req.Pattern) > s.config.Match.MaxPattern {
		s.sendError(req.ID, s.validatePattern(req.Pattern), 400)
		return
	}
	limit := req.Limit
	if limit < 1 {
		limit = s.config.Server.SimilarLimit
	}
	words := s.index.Similar(req.Pattern, limit)
	s.send(SimilarResponse{ID: req.ID, Words: words, Count: len(words)})
}

func (s *Server) handleInfo(req Request) {
	stats := s.index.Stats()
	s.send(InfoResponse{
		ID:         req.ID,
		Status:     "ok",
		Keys:       stats["keys"],
		MaxKeys:    s.config.Index.MaxKeys,
		MaxMatches: stats["maxMatches"],
		Requests:   s.requestCount,
	})
}

func (s *Server) handleReload(req Request) {
	stats, err := s.reload()
	if err != nil {
		s.send(ReloadResponse{ID: req.ID, Status: "error", Keys: s.index.Len(), Error: err.Error()})
		return
	}
	s.send(ReloadResponse{ID: req.ID, Status: "ok", Keys: stats.Inserted, Skipped: stats.Skipped})
}

// reload re-reads the config and candidate list and swaps in a new index.
// The current index stays in place when anything fails.
func (s *Server) reload() (index.BuildStats, error) {
	if s.source == nil {
		return index.BuildStats{}, errors.New("no key source configured")
	}

	cfg := s.config
	if s.configPath != "" {
		loaded, err := config.LoadConfig(s.configPath)
		if err != nil {
			return index.BuildStats{}, fmt.Errorf("reloading config: %w", err)
		}
		cfg = loaded
	}

	policy, err := index.ParsePolicy(cfg.Index.DuplicatePolicy)
	if err != nil {
		return index.BuildStats{}, err
	}
	keys, err := s.source(cfg.Index.MaxKeys)
	if err != nil {
		return index.BuildStats{}, fmt.Errorf("reading keys: %w", err)
	}

	ix := index.New(index.Options{MaxMatches: cfg.Match.MaxMatches, Duplicates: policy})
	stats, err := ix.Build(keys)
	if err != nil {
		return stats, err
	}

	old := s.index
	s.index = ix
	s.config = cfg
	old.Reset()

	s.logger.Infof("Reloaded index: %d keys (%d skipped)", stats.Inserted, stats.Skipped)
	return stats, nil
}

// rankMatches pairs matches with their 1-based position; matches arrive best first.
func rankMatches(matches []string) []MatchSuggestion {
	suggestions := make([]MatchSuggestion, len(matches))
	for i, m := range matches {
		suggestions[i] = MatchSuggestion{Word: m, Rank: uint16(min(i+1, math.MaxUint16))}
	}
	return suggestions
}

// send encodes one response value.
func (s *Server) send(response any) error {
	if err := s.encoder.Encode(response); err != nil {
		s.logger.Errorf("Encoding response: %v", err)
		return err
	}
	return nil
}

// sendError sends an error response
func (s *Server) sendError(id, message string, code int) {
	s.send(ErrorResponse{
		ID:    id,
		Error: message,
		Code:  code,
	})
}
