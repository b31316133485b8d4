package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"talant-web/internal/domain/listing"
	"talant-web/internal/pkg/debounce"
	"talant-web/internal/search"
	"talant-web/internal/usecase"

	"go.uber.org/zap"
)

const DefaultFilterDebounce = 300 * time.Millisecond

type Browser interface {
	Browse(ctx context.Context, kind listing.Kind, params usecase.BrowseParams) (usecase.BrowseResult, error)
}

type ResultsRenderer interface {
	ResultsHTML(res usecase.BrowseResult) (string, error)
}

type clientMessage struct {
	Type string `json:"type"`
	search.Filter
	Sort  string `json:"sort,omitempty"`
	Page  int    `json:"page,omitempty"`
	Delta int    `json:"delta,omitempty"`
}

type ResultsMessage struct {
	Type       string `json:"type"`
	HTML       string `json:"html"`
	Total      int    `json:"total"`
	Page       int    `json:"page"`
	TotalPages int    `json:"total_pages"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Session is the search state of one connection: filter, sort and current
// page. Text filter input is debounced; sort, page and reset act at once
// and flush any pending filter first.
type Session struct {
	kind     listing.Kind
	browser  Browser
	renderer ResultsRenderer
	emit     func([]byte) bool
	logger   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	filter      search.Filter
	sort        search.SortKey
	page        int
	pending     *search.Filter
	fingerprint string

	debouncer *debounce.Debouncer
}

func NewSession(kind listing.Kind, browser Browser, renderer ResultsRenderer, delay time.Duration, emit func([]byte) bool, logger *zap.Logger) *Session {
	if delay <= 0 {
		delay = DefaultFilterDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		kind:     kind,
		browser:  browser,
		renderer: renderer,
		emit:     emit,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		sort:     search.SortRelevance,
		page:     1,
	}
	s.debouncer = debounce.New(delay, s.applyPendingFilter)
	return s
}

func (s *Session) Close() {
	s.debouncer.Stop()
	s.cancel()
}

// HandleMessage dispatches one client message. Unknown or malformed
// messages are answered with an error message.
func (s *Session) HandleMessage(data []byte) {
	var msg clientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.sendError("malformed message")
		return
	}

	switch msg.Type {
	case "filter":
		f := msg.Filter
		if f.MinSalary < 0 {
			f.MinSalary = 0
		}
		s.mu.Lock()
		s.pending = &f
		s.mu.Unlock()
		s.debouncer.Trigger()

	case "sort":
		s.mu.Lock()
		s.takePendingLocked()
		s.sort = search.ParseSortKey(msg.Sort)
		s.page = 1
		s.runLocked(usecase.BrowseParams{})
		s.mu.Unlock()

	case "page":
		s.mu.Lock()
		s.takePendingLocked()
		if msg.Page >= 1 {
			s.runLocked(usecase.BrowseParams{Page: msg.Page, From: s.page})
		}
		s.mu.Unlock()

	case "step":
		s.mu.Lock()
		s.takePendingLocked()
		target := s.page + sign(msg.Delta)
		if msg.Delta != 0 && target >= 1 {
			s.runLocked(usecase.BrowseParams{Page: target, From: s.page})
		}
		s.mu.Unlock()

	case "reset":
		s.debouncer.Cancel()
		s.mu.Lock()
		s.pending = nil
		s.filter = search.Filter{}
		s.sort = search.SortRelevance
		s.page = 1
		s.runLocked(usecase.BrowseParams{})
		s.mu.Unlock()

	default:
		s.sendError("unknown message type")
	}
}

// Reload re-runs the current search after the store was replaced. The
// current page is kept when it still exists.
func (s *Session) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runLocked(usecase.BrowseParams{From: s.page})
}

func (s *Session) applyPendingFilter() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return
	}
	f := *s.pending
	s.pending = nil
	if usecase.QueryFingerprint(s.kind, f, s.sort) == s.fingerprint {
		return
	}
	s.filter = f
	s.page = 1
	s.runLocked(usecase.BrowseParams{})
}

// takePendingLocked applies a debounced filter that has not fired yet, so
// navigation acts on what the user last typed.
func (s *Session) takePendingLocked() {
	if s.pending == nil {
		return
	}
	s.debouncer.Cancel()
	if usecase.QueryFingerprint(s.kind, *s.pending, s.sort) != s.fingerprint {
		s.filter = *s.pending
		s.page = 1
	}
	s.pending = nil
}

func (s *Session) runLocked(p usecase.BrowseParams) {
	if s.ctx.Err() != nil {
		return
	}
	p.Filter = s.filter
	p.Sort = s.sort
	if p.From == 0 {
		p.From = s.page
	}

	res, err := s.browser.Browse(s.ctx, s.kind, p)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.logger.Warn("WS browse failed", zap.String("kind", string(s.kind)), zap.Error(err))
			s.sendError("search failed")
		}
		return
	}
	s.page = res.Page
	s.fingerprint = usecase.QueryFingerprint(s.kind, s.filter, s.sort)

	html, err := s.renderer.ResultsHTML(res)
	if err != nil {
		s.logger.Error("WS render failed", zap.String("kind", string(s.kind)), zap.Error(err))
		s.sendError("render failed")
		return
	}
	s.send(ResultsMessage{Type: "results", HTML: html, Total: res.Total, Page: res.Page, TotalPages: res.TotalPages})
}

func (s *Session) sendError(msg string) {
	s.send(ErrorMessage{Type: "error", Message: msg})
}

func (s *Session) send(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if !s.emit(b) {
		s.logger.Debug("WS message dropped", zap.String("kind", string(s.kind)))
	}
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}
