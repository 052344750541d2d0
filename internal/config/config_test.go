package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("FLIST_ACCOUNT", "acct")
	t.Setenv("FLIST_PASSWORD", "pw")
	t.Setenv("FLIST_CHARACTER", "Game Bot")
	t.Setenv("DATABASE_URL", "postgres://localhost/gamebot")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIBaseURL != "https://www.f-list.net" {
		t.Fatalf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.WSURL != "wss://chat.f-list.net/chat2" {
		t.Fatalf("WSURL = %q", cfg.WSURL)
	}
	if cfg.SendInterval != time.Second || cfg.PingInterval != 45*time.Second {
		t.Fatalf("intervals = %v / %v", cfg.SendInterval, cfg.PingInterval)
	}
	if cfg.SweepDelay != 10*time.Minute || cfg.ReconnectInterval != 10*time.Second {
		t.Fatalf("delays = %v / %v", cfg.SweepDelay, cfg.ReconnectInterval)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("FLIST_ACCOUNT", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected an error without FLIST_ACCOUNT")
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("ADMINS", "Boss, Second ,")
	t.Setenv("SEND_INTERVAL", "2s")
	t.Setenv("PING_INTERVAL", "90")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Admins) != 2 || cfg.Admins[0] != "Boss" || cfg.Admins[1] != "Second" {
		t.Fatalf("Admins = %v", cfg.Admins)
	}
	if cfg.SendInterval != 2*time.Second {
		t.Fatalf("SendInterval = %v", cfg.SendInterval)
	}
	// Bare numbers are read as seconds.
	if cfg.PingInterval != 90*time.Second {
		t.Fatalf("PingInterval = %v", cfg.PingInterval)
	}
}

func TestEnvDurationRejectsGarbage(t *testing.T) {
	for _, v := range []string{"soon", "-5s", "0"} {
		t.Setenv("SWEEP_DELAY", v)
		if d, ok := envDuration("SWEEP_DELAY"); ok {
			t.Fatalf("envDuration(%q) accepted %v", v, d)
		}
	}
}
