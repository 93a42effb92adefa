package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/licensepro/alvara-backend/pkg/enums"
	pkgerrors "github.com/licensepro/alvara-backend/pkg/errors"
)

type themeStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
}

type themeKeyer interface {
	ThemePreferenceKey(subject string) string
}

// ThemeService persists the per-subject presentation preference. The key
// carries no TTL, so the preference outlives the session it was set in.
type ThemeService struct {
	store themeStore
	keyer themeKeyer
}

// NewThemeService builds a theme service on the provided Redis client.
func NewThemeService(store themeStore, keyer themeKeyer) (*ThemeService, error) {
	if store == nil {
		return nil, fmt.Errorf("theme store is required")
	}
	if keyer == nil {
		return nil, fmt.Errorf("theme keyer is required")
	}
	return &ThemeService{store: store, keyer: keyer}, nil
}

// Get returns the stored preference, defaulting to light.
func (s *ThemeService) Get(ctx context.Context, subjectID uuid.UUID) (enums.Theme, error) {
	value, err := s.store.Get(ctx, s.keyer.ThemePreferenceKey(subjectID.String()))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return enums.ThemeLight, nil
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load theme")
	}
	theme, err := enums.ParseTheme(value)
	if err != nil {
		return enums.ThemeLight, nil
	}
	return theme, nil
}

// Set stores the preference with no expiry.
func (s *ThemeService) Set(ctx context.Context, subjectID uuid.UUID, theme enums.Theme) error {
	if !theme.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid theme")
	}
	if err := s.store.Set(ctx, s.keyer.ThemePreferenceKey(subjectID.String()), theme.String(), 0); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store theme")
	}
	return nil
}
