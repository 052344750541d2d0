// Package outbox is the rate limiter between game logic and the chat
// server. Producers append freely; a single drain loop sends exactly one
// message per tick, which keeps bursts of announcements under the server's
// flood limit. The queue is unbounded and volatile: a restart drops
// whatever was still waiting, which is acceptable for game chatter.
package outbox

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/velvetpaw/gamebot/internal/fchat"
	"github.com/velvetpaw/gamebot/internal/obslog"
)

type Message struct {
	Code    string
	Payload any
}

type Sender func(code string, payload any) error

type Queue struct {
	mu    sync.Mutex
	items []Message
}

func NewQueue() *Queue {
	return &Queue{}
}

// Push appends a raw frame.
func (q *Queue) Push(code string, payload any) {
	q.mu.Lock()
	q.items = append(q.items, Message{Code: code, Payload: payload})
	q.mu.Unlock()
}

// Say queues a channel message.
func (q *Queue) Say(channel, message string) {
	q.Push("MSG", fchat.MSG{Channel: channel, Message: message})
}

// Whisper queues a private message.
func (q *Queue) Whisper(recipient, message string) {
	q.Push("PRI", fchat.PRI{Recipient: recipient, Message: message})
}

// Pop removes and returns the oldest message.
func (q *Queue) Pop() (Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return Message{}, false
	}
	m := q.items[0]
	q.items = q.items[1:]
	return m, true
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Run drains one message per tick until stopCh closes. Send failures are
// logged and the message dropped; the next tick moves on.
func (q *Queue) Run(stopCh <-chan struct{}, interval time.Duration, send Sender) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-stopCh:
			return
		case <-t.C:
			m, ok := q.Pop()
			if !ok {
				continue
			}
			if err := send(m.Code, m.Payload); err != nil {
				obslog.L().Warn("outbox_send_failed", zap.String("code", m.Code), zap.Error(err))
			}
		}
	}
}
