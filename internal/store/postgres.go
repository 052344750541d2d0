package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

type Postgres struct {
	db *sql.DB
}

func NewPostgres(databaseURL string) (*Postgres, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	p := &Postgres{db: db}
	if err := p.migrate(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Postgres) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	return p.db.Close()
}

// migrate applies the idempotent schema. Player and mod rows cascade with
// their channel.
func (p *Postgres) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS channels (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			spinback BOOLEAN NOT NULL DEFAULT FALSE,
			last_spinner TEXT NOT NULL DEFAULT '',
			pending TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS players (
			name TEXT NOT NULL,
			channel TEXT NOT NULL REFERENCES channels(id) ON DELETE CASCADE,
			rounds INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (name, channel)
		)`,
		`CREATE TABLE IF NOT EXISTS channel_mods (
			name TEXT NOT NULL,
			channel TEXT NOT NULL REFERENCES channels(id) ON DELETE CASCADE,
			PRIMARY KEY (name, channel)
		)`,
	}
	for _, q := range stmts {
		if _, err := p.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (p *Postgres) EnsureChannel(ctx context.Context, id, title string) error {
	q := `INSERT INTO channels (id, title) VALUES ($1, $2)
	      ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title`
	_, err := p.db.ExecContext(ctx, q, id, title)
	return err
}

func (p *Postgres) DeleteChannel(ctx context.Context, id string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM channels WHERE id = $1`, id)
	return err
}

func (p *Postgres) Channel(ctx context.Context, id string) (*Channel, error) {
	var ch Channel
	q := `SELECT id, title, spinback, last_spinner, pending FROM channels WHERE id = $1`
	err := p.db.QueryRowContext(ctx, q, id).Scan(&ch.ID, &ch.Title, &ch.Spinback, &ch.LastSpinner, &ch.Pending)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

func (p *Postgres) ListChannels(ctx context.Context) ([]Channel, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT id, title, spinback, last_spinner, pending FROM channels ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Channel
	for rows.Next() {
		var ch Channel
		if err := rows.Scan(&ch.ID, &ch.Title, &ch.Spinback, &ch.LastSpinner, &ch.Pending); err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	return out, rows.Err()
}

func (p *Postgres) MarkAllPending(ctx context.Context, generation string) error {
	_, err := p.db.ExecContext(ctx, `UPDATE channels SET pending = $1`, generation)
	return err
}

func (p *Postgres) ClearPending(ctx context.Context, id string) error {
	_, err := p.db.ExecContext(ctx, `UPDATE channels SET pending = '' WHERE id = $1`, id)
	return err
}

func (p *Postgres) PurgeStale(ctx context.Context, generation string) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, `DELETE FROM channels WHERE pending = $1 RETURNING id`, generation)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (p *Postgres) SetSpinback(ctx context.Context, id string, on bool) error {
	_, err := p.db.ExecContext(ctx, `UPDATE channels SET spinback = $2 WHERE id = $1`, id, on)
	return err
}

func (p *Postgres) SetLastSpinner(ctx context.Context, id, name string) error {
	_, err := p.db.ExecContext(ctx, `UPDATE channels SET last_spinner = $2 WHERE id = $1`, id, name)
	return err
}

func (p *Postgres) AddPlayer(ctx context.Context, channel, name string) (bool, error) {
	q := `INSERT INTO players (name, channel) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	res, err := p.db.ExecContext(ctx, q, name, channel)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (p *Postgres) RemovePlayer(ctx context.Context, channel, name string) (string, bool, error) {
	q := `DELETE FROM players WHERE channel = $1 AND lower(name) = lower($2) RETURNING name`
	var removed string
	err := p.db.QueryRowContext(ctx, q, channel, name).Scan(&removed)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return removed, true, nil
}

func (p *Postgres) Players(ctx context.Context, channel string) ([]Player, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT name, channel, rounds FROM players WHERE channel = $1 ORDER BY name`, channel)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Player
	for rows.Next() {
		var pl Player
		if err := rows.Scan(&pl.Name, &pl.Channel, &pl.Rounds); err != nil {
			return nil, err
		}
		out = append(out, pl)
	}
	return out, rows.Err()
}

func (p *Postgres) ChannelsWithPlayer(ctx context.Context, name string) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT channel FROM players WHERE lower(name) = lower($1)`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var ch string
		if err := rows.Scan(&ch); err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	return out, rows.Err()
}

func (p *Postgres) BumpRounds(ctx context.Context, channel, except string) error {
	q := `UPDATE players SET rounds = rounds + 1 WHERE channel = $1 AND name <> $2`
	_, err := p.db.ExecContext(ctx, q, channel, except)
	return err
}

func (p *Postgres) ResetRounds(ctx context.Context, channel, name string) error {
	_, err := p.db.ExecContext(ctx, `UPDATE players SET rounds = 0 WHERE channel = $1 AND name = $2`, channel, name)
	return err
}

func (p *Postgres) SetMods(ctx context.Context, channel string, names []string) error {
	if _, err := p.db.ExecContext(ctx, `DELETE FROM channel_mods WHERE channel = $1`, channel); err != nil {
		return err
	}
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			continue
		}
		q := `INSERT INTO channel_mods (name, channel) VALUES ($1, $2) ON CONFLICT DO NOTHING`
		if _, err := p.db.ExecContext(ctx, q, n, channel); err != nil {
			return err
		}
	}
	return nil
}
