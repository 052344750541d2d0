// Package game is the decision core of the bot: roster changes, bottle
// spins, death rolls and dice. Every operation re-reads the current roster
// from the store, mutates it with single-statement writes, and returns the
// public reply text. The caller owns delivery and error presentation.
package game

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/velvetpaw/gamebot/internal/store"
)

type Engine struct {
	store store.Store
	rnd   *rand.Rand
	locks *keyedLocks

	// Death rolls are deliberately volatile: a restart abandons any duel
	// in progress.
	drMu       sync.Mutex
	deathRolls map[string]int
}

// New creates an engine over the store. Seed 0 seeds from the clock; tests
// pass a fixed seed.
func New(st store.Store, seed int64) *Engine {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Engine{
		store:      st,
		rnd:        rand.New(rand.NewSource(seed)),
		locks:      newKeyedLocks(),
		deathRolls: make(map[string]int),
	}
}

// Join registers the character in the channel's game.
func (e *Engine) Join(ctx context.Context, channel, character string) (string, error) {
	defer e.locks.lock(channel)()

	added, err := e.store.AddPlayer(ctx, channel, character)
	if err != nil {
		return "", fmt.Errorf("add player: %w", err)
	}
	if !added {
		return fmt.Sprintf("You're already in the game, %s!", UserTag(character)), nil
	}
	players, err := e.store.Players(ctx, channel)
	if err != nil {
		return "", fmt.Errorf("list players: %w", err)
	}
	return fmt.Sprintf("%s has joined the game! %s", UserTag(character), rosterText(players)), nil
}

// Leave removes the character from the channel's game. When implicit (the
// character left the room or dropped offline rather than typing a command)
// the not-in-game reply is suppressed.
func (e *Engine) Leave(ctx context.Context, channel, character string, implicit bool) (string, error) {
	defer e.locks.lock(channel)()

	removed, ok, err := e.store.RemovePlayer(ctx, channel, character)
	if err != nil {
		return "", fmt.Errorf("remove player: %w", err)
	}
	if !ok {
		if implicit {
			return "", nil
		}
		return fmt.Sprintf("You're already not in the game, %s.", UserTag(character)), nil
	}
	players, err := e.store.Players(ctx, channel)
	if err != nil {
		return "", fmt.Errorf("list players: %w", err)
	}
	return fmt.Sprintf("%s has left the game. %s", UserTag(removed), rosterText(players)), nil
}

// Kick removes a named player on someone else's behalf. Unlike Leave it
// always reports the outcome.
func (e *Engine) Kick(ctx context.Context, channel, target string) (string, error) {
	defer e.locks.lock(channel)()

	removed, ok, err := e.store.RemovePlayer(ctx, channel, target)
	if err != nil {
		return "", fmt.Errorf("remove player: %w", err)
	}
	if !ok {
		return fmt.Sprintf("%s is not in the game.", UserTag(target)), nil
	}
	players, err := e.store.Players(ctx, channel)
	if err != nil {
		return "", fmt.Errorf("list players: %w", err)
	}
	return fmt.Sprintf("%s has been kicked from the game. %s", UserTag(removed), rosterText(players)), nil
}

// Status reports the current roster.
func (e *Engine) Status(ctx context.Context, channel string) (string, error) {
	players, err := e.store.Players(ctx, channel)
	if err != nil {
		return "", fmt.Errorf("list players: %w", err)
	}
	return rosterText(players), nil
}

// Spin spins the bottle. With spinback enabled the bottle cannot point at
// the previous spinner, and a fourth player is required to keep the pool
// from collapsing to one candidate.
func (e *Engine) Spin(ctx context.Context, channel, spinner string) (string, error) {
	defer e.locks.lock(channel)()

	ch, err := e.store.Channel(ctx, channel)
	if err != nil {
		return "", fmt.Errorf("load channel: %w", err)
	}
	if ch == nil {
		return "", fmt.Errorf("unknown channel %s", channel)
	}
	players, err := e.store.Players(ctx, channel)
	if err != nil {
		return "", fmt.Errorf("list players: %w", err)
	}

	listed := false
	for _, p := range players {
		if p.Name == spinner {
			listed = true
			break
		}
	}
	if !listed {
		return fmt.Sprintf("You can't spin if you aren't playing, %s! Join the game first!", UserTag(spinner)), nil
	}

	required := 3
	if ch.Spinback {
		required = 4
	}
	if len(players) < required {
		return fmt.Sprintf("There aren't enough players in the game. %d players are required in order to spin. %s",
			required, rosterText(players)), nil
	}

	pool := make([]store.Player, 0, len(players))
	for _, p := range players {
		if p.Name == spinner {
			continue
		}
		if ch.Spinback && p.Name == ch.LastSpinner {
			continue
		}
		pool = append(pool, p)
	}
	target := weightedPick(e.rnd, pool)

	if err := e.store.SetLastSpinner(ctx, channel, spinner); err != nil {
		return "", fmt.Errorf("set last spinner: %w", err)
	}
	if err := e.store.BumpRounds(ctx, channel, spinner); err != nil {
		return "", fmt.Errorf("bump rounds: %w", err)
	}
	if err := e.store.ResetRounds(ctx, channel, target); err != nil {
		return "", fmt.Errorf("reset rounds: %w", err)
	}

	return fmt.Sprintf("%s spins the bottle! It points to... %s!", UserTag(spinner), UserTag(target)), nil
}

// ToggleSpinback flips the channel's spinback rule.
func (e *Engine) ToggleSpinback(ctx context.Context, channel string) (string, error) {
	defer e.locks.lock(channel)()

	ch, err := e.store.Channel(ctx, channel)
	if err != nil {
		return "", fmt.Errorf("load channel: %w", err)
	}
	if ch == nil {
		return "", fmt.Errorf("unknown channel %s", channel)
	}
	on := !ch.Spinback
	if err := e.store.SetSpinback(ctx, channel, on); err != nil {
		return "", fmt.Errorf("set spinback: %w", err)
	}
	if on {
		return fmt.Sprintf("Spinback is now %s. The bottle won't point back at the last spinner, and spinning requires 4 players.", Bold("on")), nil
	}
	return fmt.Sprintf("Spinback is now %s.", Bold("off")), nil
}
