package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/velvetpaw/gamebot/internal/catalog"
	appcfg "github.com/velvetpaw/gamebot/internal/config"
	"github.com/velvetpaw/gamebot/internal/fchat"
	"github.com/velvetpaw/gamebot/internal/game"
	"github.com/velvetpaw/gamebot/internal/obslog"
	"github.com/velvetpaw/gamebot/internal/outbox"
	"github.com/velvetpaw/gamebot/internal/router"
	"github.com/velvetpaw/gamebot/internal/store"
	"github.com/velvetpaw/gamebot/internal/supervisor"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger error: %v", err)
	}

	st, err := store.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		obslog.L().Fatal("store init failed", zap.Error(err))
	}
	defer st.Close()

	cat, err := catalog.New(0)
	if err != nil {
		obslog.L().Fatal("catalog init failed", zap.Error(err))
	}

	engine := game.New(st, 0)
	out := outbox.NewQueue()

	client := fchat.NewClient(cfg.APIBaseURL)
	session := fchat.NewSession(cfg.WSURL)

	sup := supervisor.New(supervisor.Config{
		Account:           cfg.Account,
		Password:          cfg.Password,
		Character:         cfg.Character,
		StatusMessage:     cfg.StatusMessage,
		PingInterval:      cfg.PingInterval,
		SweepDelay:        cfg.SweepDelay,
		ReconnectInterval: cfg.ReconnectInterval,
	}, client, session, st, out)

	rt := router.New(cfg.Character, cfg.Admins, st, engine, cat, out)
	sup.OnEvent(rt.Handle)

	if err := sup.Run(context.Background(), cfg.SendInterval); err != nil {
		obslog.L().Fatal("connect failed", zap.Error(err))
	}
	obslog.L().Info("gamebot running", zap.String("character", cfg.Character))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	sup.Stop()
}
