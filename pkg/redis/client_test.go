package redis

import (
	"testing"

	"github.com/licensepro/alvara-backend/pkg/config"
)

func TestKeyBuilders(t *testing.T) {
	c := &Client{}

	if got := c.AccessSessionKey("abc"); got != "alvara:session:access:abc" {
		t.Fatalf("unexpected session key %q", got)
	}
	if got := c.ThemePreferenceKey("user-1"); got != "alvara:theme:user-1" {
		t.Fatalf("unexpected theme key %q", got)
	}
	if got := c.LockKey("cron-worker"); got != "alvara:lock:cron-worker" {
		t.Fatalf("unexpected lock key %q", got)
	}
}

func TestBuildKeySkipsEmptyParts(t *testing.T) {
	c := &Client{}
	if got := c.buildKey("theme", "", "u1"); got != "alvara:theme:u1" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestOptionsFromConfigRequiresTarget(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected error when neither URL nor address is set")
	}
}

func TestOptionsFromConfigParsesURL(t *testing.T) {
	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://localhost:6379/2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.DB != 2 {
		t.Fatalf("expected DB 2 from URL, got %d", opts.DB)
	}
	if opts.Addr != "localhost:6379" {
		t.Fatalf("unexpected addr %q", opts.Addr)
	}
}

func TestOptionsFromConfigUsesAddressFallback(t *testing.T) {
	opts, err := optionsFromConfig(config.RedisConfig{Address: "10.0.0.5:6379", Password: "pw", DB: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "10.0.0.5:6379" || opts.Password != "pw" || opts.DB != 1 {
		t.Fatalf("options not mapped from config: %+v", opts)
	}
}
