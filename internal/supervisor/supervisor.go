// Package supervisor owns the chat session lifecycle: ticket fetch,
// connect, identify, heartbeat, reconnect, and the post-connect sweep that
// purges channels the bot was removed from while offline.
package supervisor

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/velvetpaw/gamebot/internal/fchat"
	"github.com/velvetpaw/gamebot/internal/obslog"
	"github.com/velvetpaw/gamebot/internal/outbox"
	"github.com/velvetpaw/gamebot/internal/store"
)

const clientName = "gamebot"

const clientVersion = "2.0"

type Config struct {
	Account   string
	Password  string
	Character string

	StatusMessage string

	PingInterval      time.Duration
	SweepDelay        time.Duration
	ReconnectInterval time.Duration
}

type Supervisor struct {
	cfg     Config
	client  *fchat.Client
	session *fchat.Session
	store   store.Store
	out     *outbox.Queue

	onEvent fchat.EventCallback

	// Liveness flag for the heartbeat: cleared before each probe, set by
	// the ack. Still clear when the next tick fires means the connection
	// is dead.
	alive atomic.Bool

	// Single-flight guard so overlapping heartbeat failures cannot start
	// two dial loops.
	reconnecting atomic.Bool

	stopCh chan struct{}
}

func New(cfg Config, client *fchat.Client, session *fchat.Session, st store.Store, out *outbox.Queue) *Supervisor {
	s := &Supervisor{
		cfg:     cfg,
		client:  client,
		session: session,
		store:   st,
		out:     out,
		stopCh:  make(chan struct{}),
	}
	session.OnEvent(s.handleEvent)
	session.OnDisconnect(s.handleDisconnect)
	return s
}

// OnEvent registers the downstream handler for events the supervisor does
// not consume itself (messages, membership changes and so on).
func (s *Supervisor) OnEvent(cb fchat.EventCallback) { s.onEvent = cb }

// Run connects (retrying until the first session is up), then starts the
// heartbeat and the outbound drain loop. It returns once started; Stop ends
// the background loops.
func (s *Supervisor) Run(ctx context.Context, sendInterval time.Duration) error {
	for {
		if err := s.connect(ctx); err == nil {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.cfg.ReconnectInterval):
		}
	}
	go s.heartbeat()
	go s.out.Run(s.stopCh, sendInterval, s.session.Send)
	return nil
}

func (s *Supervisor) Stop() {
	close(s.stopCh)
	_ = s.session.Close(context.Background())
}

func (s *Supervisor) connect(ctx context.Context) error {
	ticket, err := s.client.Ticket(ctx, s.cfg.Account, s.cfg.Password)
	if err != nil {
		obslog.L().Warn("ticket_fetch_failed", zap.Error(err))
		return err
	}
	if err := s.session.Connect(ctx); err != nil {
		obslog.L().Warn("ws_connect_failed", zap.Error(err))
		return err
	}
	idn := fchat.IDN{
		Method:        "ticket",
		Account:       s.cfg.Account,
		Ticket:        ticket,
		Character:     s.cfg.Character,
		ClientName:    clientName,
		ClientVersion: clientVersion,
	}
	if err := s.session.Send("IDN", idn); err != nil {
		obslog.L().Warn("identify_send_failed", zap.Error(err))
		_ = s.session.Close(ctx)
		return err
	}
	s.alive.Store(true)
	return nil
}

func (s *Supervisor) handleEvent(ev any) {
	switch ev := ev.(type) {
	case *fchat.Identified:
		obslog.L().Info("identified", zap.String("character", ev.Character))
		s.identified()
	case *fchat.Pong:
		s.alive.Store(true)
	case *fchat.ServerError:
		obslog.L().Warn("server_error", zap.Int("number", ev.Number), zap.String("message", ev.Message))
	case *fchat.Variable:
		obslog.L().Debug("server_variable", zap.String("variable", ev.Variable))
	default:
		if s.onEvent != nil {
			s.onEvent(ev)
		}
	}
}

// identified runs after every successful handshake: set the status line,
// stamp all known channels as pending, re-join them, and schedule the sweep
// that purges whichever ones the server never confirms.
func (s *Supervisor) identified() {
	if s.cfg.StatusMessage != "" {
		s.out.Push("STA", fchat.STA{Status: "online", StatusMsg: s.cfg.StatusMessage})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	generation := uuid.NewString()
	if err := s.store.MarkAllPending(ctx, generation); err != nil {
		obslog.L().Error("mark_pending_failed", zap.Error(err))
		return
	}
	channels, err := s.store.ListChannels(ctx)
	if err != nil {
		obslog.L().Error("list_channels_failed", zap.Error(err))
		return
	}
	for _, ch := range channels {
		s.out.Push("JCH", fchat.JCH{Channel: ch.ID})
	}
	obslog.L().Info("rejoin_scheduled", zap.Int("channels", len(channels)), zap.String("generation", generation))

	time.AfterFunc(s.cfg.SweepDelay, func() { s.sweep(generation) })
}

// sweep deletes channels still carrying the given generation stamp. Stamps
// from a newer connect differ, so an overlapping older sweep cannot purge
// rows the newer connect re-marked.
func (s *Supervisor) sweep(generation string) {
	select {
	case <-s.stopCh:
		return
	default:
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	ids, err := s.store.PurgeStale(ctx, generation)
	if err != nil {
		obslog.L().Error("sweep_failed", zap.Error(err))
		return
	}
	if len(ids) > 0 {
		obslog.L().Info("stale_channels_purged", zap.Strings("channels", ids))
	}
}

func (s *Supervisor) heartbeat() {
	t := time.NewTicker(s.cfg.PingInterval)
	defer t.Stop()
	for {
		select {
		case <-s.stopCh:
			return
		case <-t.C:
			if !s.alive.Load() {
				obslog.L().Warn("heartbeat_missed")
				s.reconnect()
				continue
			}
			s.alive.Store(false)
			// Direct send: the probe must not queue behind game chatter.
			if err := s.session.Send("PIN", nil); err != nil {
				obslog.L().Warn("ping_send_failed", zap.Error(err))
				s.reconnect()
			}
		}
	}
}

func (s *Supervisor) handleDisconnect(err error) {
	select {
	case <-s.stopCh:
		return
	default:
	}
	obslog.L().Warn("session_lost", zap.Error(err))
	s.reconnect()
}

// reconnect dials until a session is back up. Fixed interval, no ceiling.
func (s *Supervisor) reconnect() {
	if !s.reconnecting.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer s.reconnecting.Store(false)
		_ = s.session.Close(context.Background())
		for {
			select {
			case <-s.stopCh:
				return
			case <-time.After(s.cfg.ReconnectInterval):
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			err := s.connect(ctx)
			cancel()
			if err == nil {
				obslog.L().Info("reconnected")
				return
			}
		}
	}()
}
