package directory

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/dcu-portal-api/internal/models"
	"github.com/noah-isme/dcu-portal-api/pkg/debounce"
	"github.com/noah-isme/dcu-portal-api/pkg/eventbus"
)

// DefaultSearchDebounce is the quiet window applied to search keystrokes.
const DefaultSearchDebounce = 300 * time.Millisecond

// Intent is one user input addressed to a session.
type Intent struct {
	Kind      IntentKind
	Text      string
	Category  models.CategoryFilter
	Sort      models.SortKey
	Page      int
	Delta     int
	Immediate bool
}

// SessionOptions tunes a Session.
type SessionOptions struct {
	PageSize       int
	SearchDebounce time.Duration
	Logger         *zap.Logger
	// OnRecompute observes the duration of every full recompute.
	OnRecompute func(time.Duration)
	Now         func() time.Time
}

// Session is the per-client directory state machine. Every mutation, including the debounced
// search firing on a timer goroutine, is serialised by mu.
type Session struct {
	id     string
	store  *Store
	opts   SessionOptions
	logger *zap.Logger
	search *debounce.Debouncer
	views  *eventbus.Bus[View]

	mu         sync.Mutex
	state      models.QueryState
	view       View
	revision   uint64
	searchSeq  uint64
	lastActive time.Time
	closed     bool
}

// NewSession creates a session in the default state and computes its first view.
func NewSession(id string, store *Store, opts SessionOptions) *Session {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.SearchDebounce <= 0 {
		opts.SearchDebounce = DefaultSearchDebounce
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{
		id:     id,
		store:  store,
		opts:   opts,
		logger: logger.With(zap.String("session_id", id)),
		search: debounce.New(opts.SearchDebounce),
		views:  eventbus.New[View](4),
		state:  models.DefaultQueryState(),
	}
	s.mu.Lock()
	s.lastActive = opts.Now()
	s.recomputeLocked()
	s.mu.Unlock()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// View returns the latest view.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLocked()
}

// State returns the current query state.
func (s *Session) State() models.QueryState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastActive returns the time of the last intent.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Subscribe streams every view published after a recompute.
func (s *Session) Subscribe() (<-chan View, func()) {
	return s.views.Subscribe()
}

// Apply dispatches an intent. Searches are debounced unless Immediate is set.
func (s *Session) Apply(in Intent) (View, error) {
	switch in.Kind {
	case IntentSearch:
		if in.Immediate {
			return s.SearchNow(in.Text), nil
		}
		return s.Search(in.Text), nil
	case IntentCategory:
		return s.SelectCategory(in.Category), nil
	case IntentSort:
		return s.SortBy(in.Sort), nil
	case IntentPage:
		return s.RequestPage(in.Page), nil
	case IntentPageDelta:
		return s.ShiftPage(in.Delta), nil
	}
	return View{}, fmt.Errorf("unknown intent %q", in.Kind)
}

// Search schedules a search after the quiet window. A newer keystroke supersedes a pending one;
// the filter runs with the text present when the window elapses.
func (s *Session) Search(text string) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.currentLocked()
	}
	s.touchLocked()
	s.searchSeq++
	seq := s.searchSeq
	s.search.Trigger(func() { s.applySearch(seq, text) })
	return s.currentLocked()
}

// SearchNow applies a search immediately, dropping any pending debounced one.
func (s *Session) SearchNow(text string) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.currentLocked()
	}
	s.searchNowLocked(text)
	return s.currentLocked()
}

func (s *Session) searchNowLocked(text string) {
	s.search.Cancel()
	s.searchSeq++
	s.touchLocked()
	s.state = OnSearch(s.state, text)
	s.recomputeLocked()
}

// SelectCategory applies a category filter.
func (s *Session) SelectCategory(filter models.CategoryFilter) View {
	return s.mutate(func(q models.QueryState) (models.QueryState, bool) {
		return OnCategory(q, filter), true
	})
}

// SortBy changes the ordering.
func (s *Session) SortBy(key models.SortKey) View {
	if !KnownSortKey(key) {
		s.logger.Warn("unknown sort key, keeping input order", zap.String("sort", string(key)))
	}
	return s.mutate(func(q models.QueryState) (models.QueryState, bool) {
		return OnSort(q, key), true
	})
}

// RequestPage jumps to page n. Out-of-range requests are absorbed without a recompute.
func (s *Session) RequestPage(n int) View {
	return s.mutate(func(q models.QueryState) (models.QueryState, bool) {
		return OnPageRequest(q, n, s.view.Pagination.TotalPages)
	})
}

// ShiftPage moves by delta pages.
func (s *Session) ShiftPage(delta int) View {
	return s.mutate(func(q models.QueryState) (models.QueryState, bool) {
		return OnPageDelta(q, delta, s.view.Pagination.TotalPages)
	})
}

// Close cancels any pending search and closes subscriber streams.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.searchSeq++
	s.mu.Unlock()

	s.search.Cancel()
	s.views.Close()
}

// applySearch runs on the debounce timer. A timer that fired while a newer search held mu
// carries a stale seq and is dropped.
func (s *Session) applySearch(seq uint64, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || seq != s.searchSeq {
		return
	}
	s.state = OnSearch(s.state, text)
	s.recomputeLocked()
}

func (s *Session) mutate(transition func(models.QueryState) (models.QueryState, bool)) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.currentLocked()
	}
	s.touchLocked()
	next, changed := transition(s.state)
	if !changed {
		return s.currentLocked()
	}
	s.state = next
	s.recomputeLocked()
	return s.currentLocked()
}

func (s *Session) recomputeLocked() {
	start := time.Now()

	filtered := Compute(s.store.clubs, s.state)
	s.state = Settle(s.state, TotalPages(len(filtered), s.opts.PageSize))
	page := Paginate(filtered, s.opts.PageSize, s.state.Page)

	s.revision++
	s.view = View{
		Revision:   s.revision,
		Query:      s.state,
		Clubs:      cloneClubs(page.Items),
		Pagination: page.Pagination(),
		Stats:      s.store.Stats(),
		Empty:      page.Empty(),
		ComputedAt: s.opts.Now(),
	}

	elapsed := time.Since(start)
	if s.opts.OnRecompute != nil {
		s.opts.OnRecompute(elapsed)
	}
	s.logger.Debug("directory recomputed",
		zap.Uint64("revision", s.revision),
		zap.Int("matches", page.TotalCount),
		zap.Int("page", page.Page),
		zap.Duration("elapsed", elapsed),
	)

	if _, err := s.views.Publish(s.currentLocked()); err != nil {
		s.logger.Debug("view not published", zap.Error(err))
	}
}

func (s *Session) currentLocked() View {
	v := s.view
	v.PendingSearch = s.search.Pending()
	return v
}

func (s *Session) touchLocked() {
	s.lastActive = s.opts.Now()
}
