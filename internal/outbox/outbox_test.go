package outbox

import (
	"sync"
	"testing"
	"time"

	"github.com/velvetpaw/gamebot/internal/fchat"
)

func TestQueueFIFO(t *testing.T) {
	q := NewQueue()
	q.Say("c1", "first")
	q.Say("c1", "second")
	q.Whisper("Alice", "third")

	m, ok := q.Pop()
	if !ok || m.Code != "MSG" || m.Payload.(fchat.MSG).Message != "first" {
		t.Fatalf("first pop: %+v ok=%v", m, ok)
	}
	m, _ = q.Pop()
	if m.Payload.(fchat.MSG).Message != "second" {
		t.Fatalf("second pop: %+v", m)
	}
	m, _ = q.Pop()
	if m.Code != "PRI" || m.Payload.(fchat.PRI).Recipient != "Alice" {
		t.Fatalf("third pop: %+v", m)
	}
	if _, ok := q.Pop(); ok {
		t.Fatalf("pop on empty queue reported ok")
	}
}

func TestRunDrainsInOrder(t *testing.T) {
	q := NewQueue()
	for _, msg := range []string{"a", "b", "c"} {
		q.Say("c1", msg)
	}

	var mu sync.Mutex
	var sent []string
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		q.Run(stop, time.Millisecond, func(code string, payload any) error {
			mu.Lock()
			sent = append(sent, payload.(fchat.MSG).Message)
			mu.Unlock()
			return nil
		})
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for {
		mu.Lock()
		n := len(sent)
		mu.Unlock()
		if n == 3 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("queue not drained, sent=%v", sent)
		case <-time.After(5 * time.Millisecond):
		}
	}
	close(stop)
	<-done

	if sent[0] != "a" || sent[1] != "b" || sent[2] != "c" {
		t.Fatalf("messages out of order: %v", sent)
	}
}

func TestRunRateLimited(t *testing.T) {
	q := NewQueue()
	for i := 0; i < 5; i++ {
		q.Say("c1", "burst")
	}

	stop := make(chan struct{})
	defer close(stop)
	go q.Run(stop, time.Hour, func(string, any) error { return nil })

	// First tick is an hour out; a burst must not leak early.
	time.Sleep(50 * time.Millisecond)
	if q.Len() != 5 {
		t.Fatalf("queue drained faster than one message per tick: len=%d", q.Len())
	}
}
