package store

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Memory implements Store with in-process maps. It backs the engine and
// router tests; production always runs on Postgres.
type Memory struct {
	mu       sync.Mutex
	channels map[string]*Channel
	players  map[string][]Player // channel id -> roster
	mods     map[string][]string
}

func NewMemory() *Memory {
	return &Memory{
		channels: make(map[string]*Channel),
		players:  make(map[string][]Player),
		mods:     make(map[string][]string),
	}
}

func (m *Memory) EnsureChannel(_ context.Context, id, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ch, ok := m.channels[id]; ok {
		ch.Title = title
		return nil
	}
	m.channels[id] = &Channel{ID: id, Title: title}
	return nil
}

func (m *Memory) DeleteChannel(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.channels, id)
	delete(m.players, id)
	delete(m.mods, id)
	return nil
}

func (m *Memory) Channel(_ context.Context, id string) (*Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.channels[id]
	if !ok {
		return nil, nil
	}
	cp := *ch
	return &cp, nil
}

func (m *Memory) ListChannels(_ context.Context) ([]Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Channel, 0, len(m.channels))
	for _, ch := range m.channels {
		out = append(out, *ch)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) MarkAllPending(_ context.Context, generation string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.channels {
		ch.Pending = generation
	}
	return nil
}

func (m *Memory) ClearPending(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ch, ok := m.channels[id]; ok {
		ch.Pending = ""
	}
	return nil
}

func (m *Memory) PurgeStale(_ context.Context, generation string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id, ch := range m.channels {
		if ch.Pending == generation && generation != "" {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	for _, id := range ids {
		delete(m.channels, id)
		delete(m.players, id)
		delete(m.mods, id)
	}
	return ids, nil
}

func (m *Memory) SetSpinback(_ context.Context, id string, on bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ch, ok := m.channels[id]; ok {
		ch.Spinback = on
	}
	return nil
}

func (m *Memory) SetLastSpinner(_ context.Context, id, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ch, ok := m.channels[id]; ok {
		ch.LastSpinner = name
	}
	return nil
}

func (m *Memory) AddPlayer(_ context.Context, channel, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.players[channel] {
		if p.Name == name {
			return false, nil
		}
	}
	m.players[channel] = append(m.players[channel], Player{Name: name, Channel: channel})
	return true, nil
}

func (m *Memory) RemovePlayer(_ context.Context, channel, name string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	roster := m.players[channel]
	for i, p := range roster {
		if strings.EqualFold(p.Name, name) {
			m.players[channel] = append(roster[:i:i], roster[i+1:]...)
			return p.Name, true, nil
		}
	}
	return "", false, nil
}

func (m *Memory) Players(_ context.Context, channel string) ([]Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Player, len(m.players[channel]))
	copy(out, m.players[channel])
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) ChannelsWithPlayer(_ context.Context, name string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for ch, roster := range m.players {
		for _, p := range roster {
			if strings.EqualFold(p.Name, name) {
				out = append(out, ch)
				break
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *Memory) BumpRounds(_ context.Context, channel, except string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	roster := m.players[channel]
	for i := range roster {
		if roster[i].Name != except {
			roster[i].Rounds++
		}
	}
	return nil
}

func (m *Memory) ResetRounds(_ context.Context, channel, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	roster := m.players[channel]
	for i := range roster {
		if roster[i].Name == name {
			roster[i].Rounds = 0
		}
	}
	return nil
}

func (m *Memory) SetMods(_ context.Context, channel string, names []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mods[channel] = append([]string(nil), names...)
	return nil
}
