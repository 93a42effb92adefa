package session

import (
	"context"
	"errors"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type stubStore struct {
	values map[string]string
	setErr error
}

func newStubStore() *stubStore {
	return &stubStore{values: map[string]string{}}
}

func (s *stubStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.values[key] = value.(string)
	return nil
}

func (s *stubStore) Get(_ context.Context, key string) (string, error) {
	v, ok := s.values[key]
	if !ok {
		return "", redislib.Nil
	}
	return v, nil
}

func (s *stubStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

type stubKeyer struct{}

func (stubKeyer) AccessSessionKey(accessID string) string {
	return "alvara:session:access:" + accessID
}

func newTestManager(store *stubStore) *Manager {
	return &Manager{store: store, keyer: stubKeyer{}, ttl: time.Hour}
}

func TestGenerateStoresToken(t *testing.T) {
	store := newStubStore()
	m := newTestManager(store)

	token, err := m.Generate(context.Background(), "jti-1")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty refresh token")
	}
	if store.values["alvara:session:access:jti-1"] != token {
		t.Fatal("token not stored under session key")
	}
}

func TestRotateInvalidatesOldSession(t *testing.T) {
	store := newStubStore()
	m := newTestManager(store)

	token, err := m.Generate(context.Background(), "jti-old")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	newID, newToken, err := m.Rotate(context.Background(), "jti-old", token)
	if err != nil {
		t.Fatalf("rotate failed: %v", err)
	}
	if newID == "" || newToken == "" {
		t.Fatal("expected new session id and token")
	}
	if _, ok := store.values["alvara:session:access:jti-old"]; ok {
		t.Fatal("old session should be deleted")
	}
	if store.values["alvara:session:access:"+newID] != newToken {
		t.Fatal("new session missing")
	}
}

func TestRotateRejectsWrongToken(t *testing.T) {
	store := newStubStore()
	m := newTestManager(store)

	if _, err := m.Generate(context.Background(), "jti-1"); err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if _, _, err := m.Rotate(context.Background(), "jti-1", "forged"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
}

func TestRotateMissingSessionMapsToInvalidToken(t *testing.T) {
	m := newTestManager(newStubStore())
	if _, _, err := m.Rotate(context.Background(), "missing", "whatever"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
}

func TestHasSession(t *testing.T) {
	store := newStubStore()
	m := newTestManager(store)

	ok, err := m.HasSession(context.Background(), "jti-1")
	if err != nil {
		t.Fatalf("has-session failed: %v", err)
	}
	if ok {
		t.Fatal("session should not exist yet")
	}

	if _, err := m.Generate(context.Background(), "jti-1"); err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	ok, err = m.HasSession(context.Background(), "jti-1")
	if err != nil {
		t.Fatalf("has-session failed: %v", err)
	}
	if !ok {
		t.Fatal("session should exist")
	}
}

func TestRevokeOnlyTouchesSessionKey(t *testing.T) {
	store := newStubStore()
	store.values["alvara:theme:subject-1"] = "dark"
	m := newTestManager(store)

	if _, err := m.Generate(context.Background(), "jti-1"); err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if err := m.Revoke(context.Background(), "jti-1"); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	if _, ok := store.values["alvara:session:access:jti-1"]; ok {
		t.Fatal("session key should be gone")
	}
	if store.values["alvara:theme:subject-1"] != "dark" {
		t.Fatal("theme preference must survive logout")
	}
}
