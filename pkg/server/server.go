package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/bastiangx/pinyinctrlf/internal/logger"
	"github.com/bastiangx/pinyinctrlf/internal/utils"
	"github.com/bastiangx/pinyinctrlf/pkg/fuzzy"
	"github.com/bastiangx/pinyinctrlf/pkg/session"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

var (
	// ErrUnknownAction is returned for an action the server does not serve.
	ErrUnknownAction = errors.New("unknown action")
	// ErrBadRequest is returned for requests with missing or invalid fields.
	ErrBadRequest = errors.New("bad request")
)

// Options bounds request parameters.
type Options struct {
	MaxLimit      int
	MaxQueryLen   int
	CompleteLimit int
	Debounce      time.Duration
}

// DefaultOptions mirrors the config defaults.
func DefaultOptions() Options {
	return Options{
		MaxLimit:      64,
		MaxQueryLen:   60,
		CompleteLimit: 8,
		Debounce:      session.DefaultDebounce,
	}
}

// Server handles msgpack IPC for one session.
type Server struct {
	session  *session.Session
	opts     Options
	decoder  *msgpack.Decoder
	encoder  *msgpack.Encoder
	wmu      sync.Mutex
	input    *session.Debouncer
	logger   *log.Logger
	requests int
}

// NewServer creates a server on stdin/stdout.
func NewServer(s *session.Session, opts Options) *Server {
	return NewServerWithIO(s, opts, os.Stdin, os.Stdout)
}

// NewServerWithIO creates a server reading requests from r and writing responses to w.
func NewServerWithIO(s *session.Session, opts Options, r io.Reader, w io.Writer) *Server {
	def := DefaultOptions()
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = def.MaxLimit
	}
	if opts.MaxQueryLen <= 0 {
		opts.MaxQueryLen = def.MaxQueryLen
	}
	if opts.CompleteLimit <= 0 {
		opts.CompleteLimit = def.CompleteLimit
	}
	return &Server{
		session: s,
		opts:    opts,
		decoder: msgpack.NewDecoder(r),
		encoder: msgpack.NewEncoder(w),
		input:   session.NewDebouncer(opts.Debounce),
		logger:  logger.New("server"),
	}
}

// Start serves requests until the input stream ends.
// A pending input search is answered before Start returns.
func (s *Server) Start() error {
	s.logger.Debug("Starting server")
	defer s.input.Stop()

	s.send(ReadyResponse{Status: "ready"})

	for {
		var raw msgpack.RawMessage
		if err := s.decoder.Decode(&raw); err != nil {
			s.input.Flush()
			if errors.Is(err, io.EOF) {
				s.logger.Debugf("Input closed after %d requests", s.requests)
				return nil
			}
			s.logger.Errorf("Reading request: %v", err)
			return fmt.Errorf("failed to read request: %w", err)
		}

		var req Request
		if err := msgpack.Unmarshal(raw, &req); err != nil {
			s.logger.Errorf("Decoding request: %v", err)
			s.sendError("", fmt.Errorf("%w: invalid msgpack request", ErrBadRequest))
			continue
		}
		s.requests++
		s.handleRequest(req)
	}
}

// handleRequest dispatches on the action and writes exactly one response,
// except for input whose response is deferred.
func (s *Server) handleRequest(req Request) {
	action := req.Action
	if action == "" {
		switch {
		case req.Query != "":
			action = "search"
		case req.Prefix != "":
			action = "complete"
		}
	}

	var (
		resp any
		err  error
	)
	switch action {
	case "search":
		resp, err = s.handleSearch(req)
	case "input":
		err = s.handleInput(req)
		if err == nil {
			return
		}
	case "complete":
		resp, err = s.handleComplete(req)
	case "highlight":
		resp, err = s.handleHighlight(req)
	case "rebuild":
		resp = s.handleRebuild(req)
	case "stats":
		resp = s.handleStats(req)
	case "render":
		resp, err = s.handleRender(req)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	if err != nil {
		s.logger.Debugf("Request %s failed: %v", req.ID, err)
		s.sendError(req.ID, err)
		return
	}
	s.send(resp)
}

func (s *Server) checkQuery(q string) error {
	if strings.TrimSpace(q) == "" {
		return fmt.Errorf("%w: missing 'q' parameter", ErrBadRequest)
	}
	if len(q) > s.opts.MaxQueryLen {
		return fmt.Errorf("%w: query exceeds maximum length of %d bytes", ErrBadRequest, s.opts.MaxQueryLen)
	}
	return nil
}

func (s *Server) limit(l int) int {
	if l <= 0 {
		return 0
	}
	return min(l, s.opts.MaxLimit)
}

func (s *Server) handleSearch(req Request) (SearchResponse, error) {
	if err := s.checkQuery(req.Query); err != nil {
		return SearchResponse{}, err
	}
	return s.search(req), nil
}

// search builds the index on first use.
func (s *Server) search(req Request) SearchResponse {
	s.session.Rebuild(false)

	start := time.Now()
	results := s.session.Search(req.Query, s.limit(req.Limit))
	elapsed := time.Since(start)

	return SearchResponse{
		ID:        req.ID,
		Results:   toSearchResults(results),
		Count:     len(results),
		TimeTaken: elapsed.Microseconds(),
	}
}

func (s *Server) handleInput(req Request) error {
	if err := s.checkQuery(req.Query); err != nil {
		return err
	}
	s.input.Submit(func() {
		s.send(s.search(req))
	})
	return nil
}

func (s *Server) handleComplete(req Request) (CompletionResponse, error) {
	if strings.TrimSpace(req.Prefix) == "" {
		return CompletionResponse{}, fmt.Errorf("%w: missing 'p' parameter", ErrBadRequest)
	}
	if len(req.Prefix) > s.opts.MaxQueryLen {
		return CompletionResponse{}, fmt.Errorf("%w: prefix exceeds maximum length of %d bytes", ErrBadRequest, s.opts.MaxQueryLen)
	}
	s.session.Rebuild(false)

	limit := s.limit(req.Limit)
	if limit == 0 {
		limit = s.opts.CompleteLimit
	}
	completions := s.session.Complete(req.Prefix, limit)

	suggestions := make([]CompletionSuggestion, len(completions))
	for i, c := range completions {
		suggestions[i] = CompletionSuggestion{Name: c.Name, Key: c.Key, Count: c.Count}
	}
	return CompletionResponse{ID: req.ID, Suggestions: suggestions, Count: len(suggestions)}, nil
}

func (s *Server) handleHighlight(req Request) (HighlightResponse, error) {
	if req.Name == "" {
		return HighlightResponse{}, fmt.Errorf("%w: missing 'name' parameter", ErrBadRequest)
	}
	report := s.session.Highlight(req.Name)
	return HighlightResponse{
		ID:      req.ID,
		Found:   report.Found,
		Applied: report.Applied,
		Skipped: report.Skipped,
		Cleared: report.Cleared,
	}, nil
}

func (s *Server) handleRebuild(req Request) RebuildResponse {
	rebuilt := s.session.Rebuild(req.Force)
	resp := RebuildResponse{ID: req.ID, Rebuilt: rebuilt}
	if idx := s.session.Index(); idx != nil {
		resp.Total = idx.Total
		resp.BuildMs = idx.ElapsedMs()
	}
	return resp
}

func (s *Server) handleStats(req Request) StatsResponse {
	st := s.session.Stats()
	return StatsResponse{
		ID:           req.ID,
		Indexed:      st.Indexed,
		Candidates:   st.Candidates,
		Items:        st.Items,
		BuildMs:      st.BuildMs,
		Builds:       st.Builds,
		Searches:     st.Searches,
		Highlights:   st.Highlights,
		MeanSearchUs: st.MeanSearchUs,
		Requests:     s.requests,
	}
}

func (s *Server) handleRender(req Request) (RenderResponse, error) {
	var buf bytes.Buffer
	if err := s.session.Render(&buf); err != nil {
		return RenderResponse{}, err
	}
	return RenderResponse{ID: req.ID, HTML: buf.String()}, nil
}

func toSearchResults(results []fuzzy.Result) []SearchResult {
	ranks := utils.CreateRankList(len(results))
	out := make([]SearchResult, len(results))
	for i, r := range results {
		out[i] = SearchResult{
			Name:   r.Item.Name,
			Pinyin: r.Item.Pinyin,
			Count:  r.Item.Count,
			Score:  r.Score,
			Rank:   ranks[i],
		}
	}
	return out
}

// send encodes one response; safe to call from the debouncer goroutine.
func (s *Server) send(response any) {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	if err := s.encoder.Encode(response); err != nil {
		s.logger.Errorf("Encoding response: %v", err)
	}
}

func (s *Server) sendError(id string, err error) {
	code := 500
	if errors.Is(err, ErrBadRequest) || errors.Is(err, ErrUnknownAction) {
		code = 400
	}
	s.send(ErrorResponse{ID: id, Error: err.Error(), Code: code})
}
