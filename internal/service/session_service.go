package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/dcu-portal-api/internal/directory"
	appErrors "github.com/noah-isme/dcu-portal-api/pkg/errors"
)

type storeProvider interface {
	Store() (*directory.Store, error)
}

// SessionServiceConfig tunes interactive directory sessions.
type SessionServiceConfig struct {
	PageSize       int
	SearchDebounce time.Duration
	IdleTTL        time.Duration
	SweepPeriod    time.Duration
}

// SessionService owns the interactive directory sessions, one per connected client.
type SessionService struct {
	stores  storeProvider
	metrics *MetricsService
	logger  *zap.Logger
	cfg     SessionServiceConfig
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*directory.Session

	stopOnce sync.Once
	stop     chan struct{}
}

// NewSessionService constructs a SessionService.
func NewSessionService(stores storeProvider, metrics *MetricsService, logger *zap.Logger, cfg SessionServiceConfig) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = directory.DefaultPageSize
	}
	if cfg.SearchDebounce <= 0 {
		cfg.SearchDebounce = directory.DefaultSearchDebounce
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 30 * time.Minute
	}
	if cfg.SweepPeriod <= 0 {
		cfg.SweepPeriod = time.Minute
	}
	return &SessionService{
		stores:   stores,
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
		sessions: make(map[string]*directory.Session),
		stop:     make(chan struct{}),
	}
}

// Create opens a session in the default state.
func (s *SessionService) Create(ctx context.Context) (*directory.Session, error) {
	store, err := s.stores.Store()
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	session := directory.NewSession(id, store, directory.SessionOptions{
		PageSize:       s.cfg.PageSize,
		SearchDebounce: s.cfg.SearchDebounce,
		Logger:         s.logger,
		OnRecompute:    func(d time.Duration) { s.metrics.ObserveRecompute("session", d) },
		Now:            s.now,
	})

	s.mu.Lock()
	s.sessions[id] = session
	s.mu.Unlock()
	s.metrics.SessionOpened()

	s.logger.Debug("directory session opened", zap.String("session_id", id))
	return session, nil
}

// Get returns an open session.
func (s *SessionService) Get(ctx context.Context, id string) (*directory.Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, appErrors.ErrSessionNotFound
	}
	return session, nil
}

// Apply dispatches an intent to the session and returns the resulting view. A debounced search
// returns the current view with PendingSearch set; the recompute arrives on the event stream.
func (s *SessionService) Apply(ctx context.Context, id string, intent directory.Intent) (directory.View, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return directory.View{}, err
	}
	view, err := session.Apply(intent)
	if err != nil {
		return directory.View{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid intent")
	}
	s.metrics.RecordIntent(string(intent.Kind))
	return view, nil
}

// Close ends a session and releases its subscribers.
func (s *SessionService) Close(ctx context.Context, id string) error {
	s.mu.Lock()
	session, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return appErrors.ErrSessionNotFound
	}
	session.Close()
	s.metrics.SessionClosed()
	return nil
}

// Count returns the number of open sessions.
func (s *SessionService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Start runs the idle sweeper until ctx is cancelled or Stop is called.
func (s *SessionService) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.cfg.SweepPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()
}

// Stop halts the sweeper and closes every session.
func (s *SessionService) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})

	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*directory.Session)
	s.mu.Unlock()

	for _, session := range sessions {
		session.Close()
		s.metrics.SessionClosed()
	}
}

// Sweep closes sessions idle for longer than the configured TTL and returns how many it closed.
func (s *SessionService) Sweep() int {
	cutoff := s.now().Add(-s.cfg.IdleTTL)

	s.mu.Lock()
	var expired []*directory.Session
	for id, session := range s.sessions {
		if session.LastActive().Before(cutoff) {
			expired = append(expired, session)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, session := range expired {
		session.Close()
		s.metrics.SessionClosed()
	}
	if len(expired) > 0 {
		s.logger.Info("idle directory sessions closed", zap.Int("closed", len(expired)), zap.Int("open", s.Count()))
	}
	return len(expired)
}
