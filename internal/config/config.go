package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Account   string
	Password  string
	Character string

	APIBaseURL string
	WSURL      string

	DatabaseURL string

	Admins []string

	StatusMessage string

	SendInterval      time.Duration
	PingInterval      time.Duration
	SweepDelay        time.Duration
	ReconnectInterval time.Duration
}

func Load() (*AppConfig, error) {
	// Best effort; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &AppConfig{
		APIBaseURL:        "https://www.f-list.net",
		WSURL:             "wss://chat.f-list.net/chat2",
		SendInterval:      time.Second,
		PingInterval:      45 * time.Second,
		SweepDelay:        10 * time.Minute,
		ReconnectInterval: 10 * time.Second,
	}

	cfg.Account = strings.TrimSpace(os.Getenv("FLIST_ACCOUNT"))
	cfg.Password = strings.TrimSpace(os.Getenv("FLIST_PASSWORD"))
	cfg.Character = strings.TrimSpace(os.Getenv("FLIST_CHARACTER"))

	if v := strings.TrimSpace(os.Getenv("FLIST_API_URL")); v != "" {
		cfg.APIBaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("FLIST_WS_URL")); v != "" {
		cfg.WSURL = v
	}

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.StatusMessage = strings.TrimSpace(os.Getenv("STATUS_MESSAGE"))

	if v := strings.TrimSpace(os.Getenv("ADMINS")); v != "" {
		for _, p := range strings.Split(v, ",") {
			if s := strings.TrimSpace(p); s != "" {
				cfg.Admins = append(cfg.Admins, s)
			}
		}
	}

	if d, ok := envDuration("SEND_INTERVAL"); ok {
		cfg.SendInterval = d
	}
	if d, ok := envDuration("PING_INTERVAL"); ok {
		cfg.PingInterval = d
	}
	if d, ok := envDuration("SWEEP_DELAY"); ok {
		cfg.SweepDelay = d
	}
	if d, ok := envDuration("RECONNECT_INTERVAL"); ok {
		cfg.ReconnectInterval = d
	}

	if cfg.Account == "" {
		return nil, errors.New("FLIST_ACCOUNT is required")
	}
	if cfg.Password == "" {
		return nil, errors.New("FLIST_PASSWORD is required")
	}
	if cfg.Character == "" {
		return nil, errors.New("FLIST_CHARACTER is required")
	}
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	return cfg, nil
}

// envDuration accepts either a Go duration string ("90s") or bare seconds.
func envDuration(key string) (time.Duration, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, false
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d, true
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second, true
	}
	return 0, false
}
