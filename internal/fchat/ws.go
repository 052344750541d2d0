package fchat

import (
	"context"
	"errors"
	"sync"
	"time"

	"nhooyr.io/websocket"
)

type SessionState string

const (
	StateDisconnected SessionState = "disconnected"
	StateConnecting   SessionState = "connecting"
	StateConnected    SessionState = "connected"
)

type EventCallback func(ev any)

type DisconnectCallback func(err error)

// Session is one websocket connection to the chat server. It dials, reads
// frames into typed events, and serializes writes. It does not reconnect;
// the connection supervisor owns that policy and dials a session again after
// a failure is reported through the disconnect callback.
type Session struct {
	wsURL string

	conn   *websocket.Conn
	state  SessionState
	stateM sync.RWMutex

	writeM sync.Mutex

	onEvent      EventCallback
	onDisconnect DisconnectCallback

	rootCtx    context.Context
	rootCancel context.CancelFunc
}

func NewSession(wsURL string) *Session {
	return &Session{wsURL: wsURL, state: StateDisconnected}
}

// OnEvent registers the handler for decoded inbound events. Events are
// delivered sequentially from a single read loop.
func (s *Session) OnEvent(cb EventCallback) { s.onEvent = cb }

// OnDisconnect registers the handler invoked once per connection when the
// read loop dies.
func (s *Session) OnDisconnect(cb DisconnectCallback) { s.onDisconnect = cb }

func (s *Session) State() SessionState {
	s.stateM.RLock()
	defer s.stateM.RUnlock()
	return s.state
}

func (s *Session) setState(state SessionState) {
	s.stateM.Lock()
	s.state = state
	s.stateM.Unlock()
}

// Connect dials the chat server and starts the read loop.
func (s *Session) Connect(ctx context.Context) error {
	s.stateM.Lock()
	if s.state == StateConnected || s.state == StateConnecting {
		s.stateM.Unlock()
		return nil
	}
	s.state = StateConnecting
	s.stateM.Unlock()

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(dialCtx, s.wsURL, &websocket.DialOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		s.setState(StateDisconnected)
		return err
	}
	// Game announcements are small; the default read limit is enough, but
	// channel user lists on busy rooms are not.
	conn.SetReadLimit(1 << 20)

	rootCtx, rootCancel := context.WithCancel(context.Background())
	s.stateM.Lock()
	s.conn = conn
	s.rootCtx, s.rootCancel = rootCtx, rootCancel
	s.state = StateConnected
	s.stateM.Unlock()

	go s.listen(rootCtx, conn)
	return nil
}

func (s *Session) listen(ctx context.Context, conn *websocket.Conn) {
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			// A listener whose connection was already replaced by a new dial
			// must not stomp the session state or fire the callback.
			if s.dropConn(conn) && s.onDisconnect != nil {
				s.onDisconnect(err)
			}
			return
		}
		if typ != websocket.MessageText {
			continue
		}
		ev, err := DecodeEvent(data)
		if err != nil || ev == nil {
			continue
		}
		if s.onEvent != nil {
			s.onEvent(ev)
		}
	}
}

// Send encodes and writes one frame. Writes are serialized; the outbound
// queue is the only steady-state caller, but the supervisor also writes
// handshake and heartbeat frames.
func (s *Session) Send(code string, payload any) error {
	s.stateM.RLock()
	conn, state, rootCtx := s.conn, s.state, s.rootCtx
	s.stateM.RUnlock()
	if conn == nil || state != StateConnected {
		return errors.New("session not connected")
	}

	frame, err := EncodeFrame(code, payload)
	if err != nil {
		return err
	}

	s.writeM.Lock()
	defer s.writeM.Unlock()
	ctx, cancel := context.WithTimeout(rootCtx, 5*time.Second)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, frame)
}

func (s *Session) Close(ctx context.Context) error {
	s.stateM.Lock()
	conn := s.conn
	cancel := s.rootCancel
	s.conn = nil
	s.rootCancel = nil
	s.state = StateDisconnected
	s.stateM.Unlock()
	if cancel != nil {
		cancel()
	}
	if conn == nil {
		return nil
	}
	return conn.Close(websocket.StatusNormalClosure, "close")
}

// dropConn clears the session state, but only if conn is still the active
// connection. Returns whether the caller owned the teardown.
func (s *Session) dropConn(conn *websocket.Conn) bool {
	s.stateM.Lock()
	if s.conn != conn {
		s.stateM.Unlock()
		return false
	}
	cancel := s.rootCancel
	s.conn = nil
	s.rootCancel = nil
	s.state = StateDisconnected
	s.stateM.Unlock()
	if cancel != nil {
		cancel()
	}
	_ = conn.Close(websocket.StatusGoingAway, "read error")
	return true
}
