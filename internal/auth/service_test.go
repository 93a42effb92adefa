package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	pkgauth "github.com/licensepro/alvara-backend/pkg/auth"
	"github.com/licensepro/alvara-backend/pkg/auth/session"
	"github.com/licensepro/alvara-backend/pkg/config"
	"github.com/licensepro/alvara-backend/pkg/enums"
	pkgerrors "github.com/licensepro/alvara-backend/pkg/errors"
)

var testJWTConfig = config.JWTConfig{
	Secret:            "test-secret",
	Issuer:            "alvara-test",
	ExpirationMinutes: 15,
}

type stubSessionManager struct {
	generated   []string
	generateErr error
	rotateErr   error
	revoked     []string
	revokeErr   error
}

func (s *stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	if s.generateErr != nil {
		return "", s.generateErr
	}
	s.generated = append(s.generated, accessID)
	return "refresh-" + accessID, nil
}

func (s *stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	if s.rotateErr != nil {
		return "", "", s.rotateErr
	}
	newID := session.NewAccessID()
	return newID, "refresh-" + newID, nil
}

func (s *stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	if s.revokeErr != nil {
		return s.revokeErr
	}
	s.revoked = append(s.revoked, accessID)
	return nil
}

type stubThemeReader struct {
	theme enums.Theme
	err   error
}

func (s *stubThemeReader) Get(ctx context.Context, subjectID uuid.UUID) (enums.Theme, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.theme == "" {
		return enums.ThemeLight, nil
	}
	return s.theme, nil
}

func newTestService(t *testing.T, sessions *stubSessionManager, themes *stubThemeReader) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		SessionManager: sessions,
		Themes:         themes,
		JWTConfig:      testJWTConfig,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestLoginMintsSessionForChosenRole(t *testing.T) {
	sessions := &stubSessionManager{}
	svc := newTestService(t, sessions, &stubThemeReader{theme: enums.ThemeDark})

	resp, err := svc.Login(context.Background(), LoginInput{Role: enums.UserRoleAdmin})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Role != enums.UserRoleAdmin {
		t.Fatalf("unexpected role %s", resp.Role)
	}
	if resp.Theme != enums.ThemeDark {
		t.Fatalf("expected stored theme, got %s", resp.Theme)
	}
	if len(sessions.generated) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions.generated))
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse minted token: %v", err)
	}
	if claims.Role != enums.UserRoleAdmin {
		t.Fatalf("unexpected token role %s", claims.Role)
	}
	if claims.ID != sessions.generated[0] {
		t.Fatal("expected jti to match session access id")
	}
	if claims.SubjectID != resp.SubjectID {
		t.Fatal("expected subject id in claims")
	}
}

func TestLoginRejectsUnknownRole(t *testing.T) {
	svc := newTestService(t, &stubSessionManager{}, &stubThemeReader{})

	_, err := svc.Login(context.Background(), LoginInput{Role: enums.UserRole("root")})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	sessions := &stubSessionManager{}
	svc := newTestService(t, sessions, &stubThemeReader{})

	login, err := svc.Login(context.Background(), LoginInput{Role: enums.UserRoleUser})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	resp, err := svc.Refresh(context.Background(), RefreshInput{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if resp.AccessToken == login.AccessToken {
		t.Fatal("expected a new access token")
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse rotated token: %v", err)
	}
	if claims.SubjectID != login.SubjectID {
		t.Fatal("expected subject preserved across rotation")
	}
	if claims.Role != enums.UserRoleUser {
		t.Fatalf("expected role preserved, got %s", claims.Role)
	}
}

func TestRefreshInvalidTokenUnauthorized(t *testing.T) {
	sessions := &stubSessionManager{rotateErr: session.ErrInvalidRefreshToken}
	svc := newTestService(t, sessions, &stubThemeReader{})

	login, err := svc.Login(context.Background(), LoginInput{Role: enums.UserRoleUser})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	_, err = svc.Refresh(context.Background(), RefreshInput{
		AccessToken:  login.AccessToken,
		RefreshToken: "stolen",
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLogoutRevokesSessionOnly(t *testing.T) {
	sessions := &stubSessionManager{}
	svc := newTestService(t, sessions, &stubThemeReader{})

	if err := svc.Logout(context.Background(), "access-1"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "access-1" {
		t.Fatalf("unexpected revocations %v", sessions.revoked)
	}
}

type stubThemeStore struct {
	values map[string]string
	ttls   map[string]time.Duration
}

func newStubThemeStore() *stubThemeStore {
	return &stubThemeStore{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (s *stubThemeStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	s.values[key] = value.(string)
	s.ttls[key] = ttl
	return nil
}

func (s *stubThemeStore) Get(ctx context.Context, key string) (string, error) {
	value, ok := s.values[key]
	if !ok {
		return "", redislib.Nil
	}
	return value, nil
}

type stubThemeKeyer struct{}

func (stubThemeKeyer) ThemePreferenceKey(subject string) string {
	return "alvara:theme:" + subject
}

func TestThemeDefaultsToLight(t *testing.T) {
	svc, err := NewThemeService(newStubThemeStore(), stubThemeKeyer{})
	if err != nil {
		t.Fatalf("new theme service: %v", err)
	}

	theme, err := svc.Get(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if theme != enums.ThemeLight {
		t.Fatalf("expected light default, got %s", theme)
	}
}

func TestThemePersistsWithoutTTL(t *testing.T) {
	store := newStubThemeStore()
	svc, err := NewThemeService(store, stubThemeKeyer{})
	if err != nil {
		t.Fatalf("new theme service: %v", err)
	}

	subjectID := uuid.New()
	if err := svc.Set(context.Background(), subjectID, enums.ThemeDark); err != nil {
		t.Fatalf("set: %v", err)
	}

	key := "alvara:theme:" + subjectID.String()
	if store.ttls[key] != 0 {
		t.Fatalf("theme key must not expire, got ttl %s", store.ttls[key])
	}

	theme, err := svc.Get(context.Background(), subjectID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if theme != enums.ThemeDark {
		t.Fatalf("expected dark, got %s", theme)
	}
}

func TestThemeRejectsUnknownValue(t *testing.T) {
	svc, err := NewThemeService(newStubThemeStore(), stubThemeKeyer{})
	if err != nil {
		t.Fatalf("new theme service: %v", err)
	}

	err = svc.Set(context.Background(), uuid.New(), enums.Theme("sepia"))
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
