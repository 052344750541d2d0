package store

import "context"

// Channel is one chat room the bot is tracking. Pending carries the
// generation stamp of the connect that last marked the row for the stale
// sweep; an empty stamp means membership was confirmed by the server.
type Channel struct {
	ID          string
	Title       string
	Spinback    bool
	LastSpinner string
	Pending     string
}

// Player is one character registered in a channel's game. Rounds counts
// consecutive spins since the player was last chosen as a target.
type Player struct {
	Name    string
	Channel string
	Rounds  int
}

// Store is the durable record of channels, rosters and moderators. Every
// mutation is a single statement; game operations re-read roster state each
// time rather than caching it.
type Store interface {
	EnsureChannel(ctx context.Context, id, title string) error
	DeleteChannel(ctx context.Context, id string) error
	Channel(ctx context.Context, id string) (*Channel, error)
	ListChannels(ctx context.Context) ([]Channel, error)

	// MarkAllPending stamps every channel with the connect generation;
	// ClearPending confirms one channel; PurgeStale deletes the channels
	// still carrying that generation and returns their ids.
	MarkAllPending(ctx context.Context, generation string) error
	ClearPending(ctx context.Context, id string) error
	PurgeStale(ctx context.Context, generation string) ([]string, error)

	SetSpinback(ctx context.Context, id string, on bool) error
	SetLastSpinner(ctx context.Context, id, name string) error

	// AddPlayer reports false when the (name, channel) pair already exists.
	AddPlayer(ctx context.Context, channel, name string) (bool, error)
	// RemovePlayer matches the name case-insensitively and returns the
	// stored casing of the removed row.
	RemovePlayer(ctx context.Context, channel, name string) (string, bool, error)
	Players(ctx context.Context, channel string) ([]Player, error)
	ChannelsWithPlayer(ctx context.Context, name string) ([]string, error)

	// BumpRounds atomically increments rounds for every player in the
	// channel except the named one; ResetRounds zeroes one player's count.
	BumpRounds(ctx context.Context, channel, except string) error
	ResetRounds(ctx context.Context, channel, name string) error

	SetMods(ctx context.Context, channel string, names []string) error
}
