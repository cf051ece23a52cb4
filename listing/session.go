package listing

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithOnChange registers a callback fired whenever the session's view may have
// changed: a committed search, a filter or page change, or a background
// resolution landing for the current query.
func WithOnChange(fn func(Result)) SessionOption {
	return func(s *Session) {
		s.onChange = fn
	}
}

func WithSearchDebounce(d time.Duration) SessionOption {
	return func(s *Session) {
		s.debounce = d
	}
}

func WithSessionLogger(l *slog.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// Session holds one user's browse state: the debounced search term, the selected
// category and the current page. Views are computed from the controller's cache;
// missing or stale data is resolved in the background and announced through the
// change callback only while it still matches the current query.
type Session struct {
	ctrl      *Controller
	debounce  time.Duration
	debouncer *Debouncer
	onChange  func(Result)
	logger    *slog.Logger

	mu       sync.Mutex
	search   string
	category string
	page     int
	inflight map[string]bool
	closed   bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSession starts a browse session on page 1 with no search and no category.
func NewSession(ctx context.Context, ctrl *Controller, opts ...SessionOption) *Session {
	s := &Session{
		ctrl:     ctrl,
		debounce: DefaultSearchDebounce,
		logger:   ctrl.logger,
		page:     1,
		inflight: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.debouncer = NewDebouncer(s.debounce, s.commitSearch)
	return s
}

// SetSearch records raw search input. It is committed after the debounce period.
func (s *Session) SetSearch(raw string) {
	s.debouncer.Push(raw)
}

// FlushSearch commits pending search input immediately.
func (s *Session) FlushSearch() {
	s.debouncer.Flush()
}

func (s *Session) commitSearch(term string) {
	s.mu.Lock()
	if s.closed || term == s.search {
		s.mu.Unlock()
		return
	}
	s.search = term
	s.page = 1
	s.mu.Unlock()

	s.logger.Debug("LISTING: Search committed", "search", term)
	s.notify()
}

// SetCategory selects a category filter; "" clears it. The page returns to 1.
func (s *Session) SetCategory(category string) {
	s.mu.Lock()
	if s.closed || category == s.category {
		s.mu.Unlock()
		return
	}
	s.category = category
	s.page = 1
	s.mu.Unlock()

	s.notify()
}

// SetPage moves to page. Out-of-range pages are corrected on the next View.
func (s *Session) SetPage(page int) {
	s.mu.Lock()
	if s.closed || page == s.page {
		s.mu.Unlock()
		return
	}
	s.page = page
	s.mu.Unlock()

	s.notify()
}

// Query returns the committed query.
func (s *Session) Query() Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queryLocked()
}

func (s *Session) queryLocked() Query {
	return Query{Search: s.search, Category: s.category, Page: s.page}
}

// View returns the current result from cached data and schedules a background
// resolution when the data is missing or stale.
func (s *Session) View() Result {
	s.mu.Lock()
	q := s.queryLocked()
	res := s.ctrl.Snapshot(q)
	if res.ResetPage {
		s.page = res.Page
	}
	if (res.IsLoading || res.Stale) && !s.closed {
		s.startResolveLocked(q)
	}
	s.mu.Unlock()
	return res
}

func (s *Session) startResolveLocked(q Query) {
	key := q.Key()
	if s.inflight[key] {
		return
	}
	s.inflight[key] = true

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		_, err := s.ctrl.Resolve(s.ctx, q)

		s.mu.Lock()
		delete(s.inflight, key)
		current := s.queryLocked().Key() == key
		closed := s.closed
		s.mu.Unlock()

		switch {
		case err != nil:
			if s.ctx.Err() == nil {
				s.logger.Warn("LISTING: Background resolution failed", "key", key, "error", err)
			}
		case closed:
		case !current:
			s.logger.Debug("LISTING: Dropped stale resolution", "key", key)
		default:
			s.notify()
		}
	}()
}

func (s *Session) notify() {
	if s.onChange == nil {
		return
	}
	s.onChange(s.View())
}

// Close stops the debouncer, cancels background resolutions and waits for them.
func (s *Session) Close() {
	s.debouncer.Stop()

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}
