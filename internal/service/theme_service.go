package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/dcu-portal-api/internal/models"
	appErrors "github.com/noah-isme/dcu-portal-api/pkg/errors"
	"github.com/noah-isme/dcu-portal-api/pkg/eventbus"
)

type preferenceRepository interface {
	GetTheme(ctx context.Context, clientID string) (models.Theme, error)
	SaveTheme(ctx context.Context, clientID string, theme models.Theme) error
	DeleteTheme(ctx context.Context, clientID string) error
}

// ThemeService resolves and stores each client's colour scheme. Resolution order is the saved
// preference, then the client's system hint, then the configured default.
type ThemeService struct {
	repo         preferenceRepository
	bus          *eventbus.Bus[models.ThemeChange]
	metrics      *MetricsService
	logger       *zap.Logger
	defaultTheme models.Theme
	now          func() time.Time
}

// NewThemeService constructs a ThemeService. An invalid default falls back to dark.
func NewThemeService(repo preferenceRepository, bus *eventbus.Bus[models.ThemeChange], metrics *MetricsService, logger *zap.Logger, defaultTheme models.Theme) *ThemeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !defaultTheme.Valid() {
		defaultTheme = models.ThemeDark
	}
	if bus == nil {
		bus = eventbus.New[models.ThemeChange](16)
	}
	return &ThemeService{
		repo:         repo,
		bus:          bus,
		metrics:      metrics,
		logger:       logger,
		defaultTheme: defaultTheme,
		now:          time.Now,
	}
}

// ParseSystemHint reads a Sec-CH-Prefers-Color-Scheme style hint. Unknown values yield "".
func ParseSystemHint(raw string) models.Theme {
	theme := models.Theme(strings.Trim(strings.ToLower(strings.TrimSpace(raw)), `"`))
	if theme.Valid() {
		return theme
	}
	return ""
}

// Subscribe streams theme changes.
func (s *ThemeService) Subscribe() (<-chan models.ThemeChange, func()) {
	return s.bus.Subscribe()
}

// Get resolves the theme for a client.
func (s *ThemeService) Get(ctx context.Context, clientID string, system models.Theme) (models.ThemePreference, error) {
	if err := validateClientID(clientID); err != nil {
		return models.ThemePreference{}, err
	}
	saved, err := s.repo.GetTheme(ctx, clientID)
	switch {
	case err == nil:
		return preference(clientID, saved, models.ThemeSourceSaved), nil
	case errors.Is(err, appErrors.ErrCacheMiss):
	default:
		return models.ThemePreference{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read theme preference")
	}
	if system.Valid() {
		return preference(clientID, system, models.ThemeSourceSystem), nil
	}
	return preference(clientID, s.defaultTheme, models.ThemeSourceDefault), nil
}

// Set saves theme for a client. Only light and dark are accepted.
func (s *ThemeService) Set(ctx context.Context, clientID string, theme models.Theme, system models.Theme) (models.ThemePreference, error) {
	if !theme.Valid() {
		return models.ThemePreference{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported theme %q", theme))
	}
	current, err := s.Get(ctx, clientID, system)
	if err != nil {
		return models.ThemePreference{}, err
	}
	if err := s.repo.SaveTheme(ctx, clientID, theme); err != nil {
		return models.ThemePreference{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save theme preference")
	}
	s.publish(clientID, current.Theme, theme, true)
	return preference(clientID, theme, models.ThemeSourceSaved), nil
}

// Toggle switches to the opposite of the currently resolved theme and saves it.
func (s *ThemeService) Toggle(ctx context.Context, clientID string, system models.Theme) (models.ThemePreference, error) {
	current, err := s.Get(ctx, clientID, system)
	if err != nil {
		return models.ThemePreference{}, err
	}
	return s.Set(ctx, clientID, current.Theme.Opposite(), system)
}

// Reset forgets the saved theme so the system hint applies again.
func (s *ThemeService) Reset(ctx context.Context, clientID string, system models.Theme) (models.ThemePreference, error) {
	current, err := s.Get(ctx, clientID, system)
	if err != nil {
		return models.ThemePreference{}, err
	}
	if err := s.repo.DeleteTheme(ctx, clientID); err != nil {
		return models.ThemePreference{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset theme preference")
	}
	next, err := s.Get(ctx, clientID, system)
	if err != nil {
		return models.ThemePreference{}, err
	}
	if current.Source == models.ThemeSourceSaved {
		s.publish(clientID, current.Theme, next.Theme, false)
	}
	return next, nil
}

// Close stops delivering theme changes.
func (s *ThemeService) Close() {
	s.bus.Close()
}

func (s *ThemeService) publish(clientID string, oldTheme, newTheme models.Theme, saved bool) {
	s.metrics.RecordThemeChange(newTheme)
	change := models.ThemeChange{
		ClientID:  clientID,
		OldTheme:  oldTheme,
		NewTheme:  newTheme,
		Saved:     saved,
		ChangedAt: s.now().UTC(),
	}
	if _, err := s.bus.Publish(change); err != nil {
		s.logger.Debug("theme change not published", zap.Error(err))
	}
}

func preference(clientID string, theme models.Theme, source models.ThemeSource) models.ThemePreference {
	return models.ThemePreference{ClientID: clientID, Theme: theme, Source: source, Color: theme.MetaColor()}
}

func validateClientID(clientID string) error {
	if strings.TrimSpace(clientID) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "client id is required")
	}
	if len(clientID) > 128 {
		return appErrors.Clone(appErrors.ErrValidation, "client id is too long")
	}
	return nil
}
