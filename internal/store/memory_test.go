package store

import (
	"context"
	"testing"
)

func TestPendingGenerations(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()

	for _, id := range []string{"c1", "c2", "c3"} {
		if err := st.EnsureChannel(ctx, id, "Room "+id); err != nil {
			t.Fatalf("EnsureChannel: %v", err)
		}
	}

	if err := st.MarkAllPending(ctx, "gen-1"); err != nil {
		t.Fatalf("MarkAllPending: %v", err)
	}
	if err := st.ClearPending(ctx, "c2"); err != nil {
		t.Fatalf("ClearPending: %v", err)
	}

	// A newer connect re-stamps c3; the old sweep must not purge it.
	if ch, _ := st.Channel(ctx, "c3"); ch.Pending != "gen-1" {
		t.Fatalf("c3 stamp: %+v", ch)
	}
	if err := st.MarkAllPending(ctx, "gen-2"); err != nil {
		t.Fatalf("MarkAllPending: %v", err)
	}
	if err := st.ClearPending(ctx, "c1"); err != nil {
		t.Fatalf("ClearPending: %v", err)
	}
	if err := st.ClearPending(ctx, "c2"); err != nil {
		t.Fatalf("ClearPending: %v", err)
	}

	ids, err := st.PurgeStale(ctx, "gen-1")
	if err != nil {
		t.Fatalf("PurgeStale: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("stale sweep for an old generation purged %v", ids)
	}

	ids, err = st.PurgeStale(ctx, "gen-2")
	if err != nil {
		t.Fatalf("PurgeStale: %v", err)
	}
	if len(ids) != 1 || ids[0] != "c3" {
		t.Fatalf("purged %v, want [c3]", ids)
	}
	if ch, _ := st.Channel(ctx, "c3"); ch != nil {
		t.Fatalf("c3 survived the purge: %+v", ch)
	}
}

func TestPurgeCascades(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()

	if err := st.EnsureChannel(ctx, "c1", "Room"); err != nil {
		t.Fatalf("EnsureChannel: %v", err)
	}
	if _, err := st.AddPlayer(ctx, "c1", "Alice"); err != nil {
		t.Fatalf("AddPlayer: %v", err)
	}
	if err := st.SetMods(ctx, "c1", []string{"Mod"}); err != nil {
		t.Fatalf("SetMods: %v", err)
	}

	if err := st.DeleteChannel(ctx, "c1"); err != nil {
		t.Fatalf("DeleteChannel: %v", err)
	}
	if players, _ := st.Players(ctx, "c1"); len(players) != 0 {
		t.Fatalf("players survived channel delete: %v", players)
	}
	if chans, _ := st.ChannelsWithPlayer(ctx, "Alice"); len(chans) != 0 {
		t.Fatalf("player index survived channel delete: %v", chans)
	}
}

func TestRoundsBookkeeping(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()

	if err := st.EnsureChannel(ctx, "c1", "Room"); err != nil {
		t.Fatalf("EnsureChannel: %v", err)
	}
	for _, n := range []string{"Alice", "Bob", "Carol"} {
		if _, err := st.AddPlayer(ctx, "c1", n); err != nil {
			t.Fatalf("AddPlayer: %v", err)
		}
	}

	if err := st.BumpRounds(ctx, "c1", "Alice"); err != nil {
		t.Fatalf("BumpRounds: %v", err)
	}
	if err := st.ResetRounds(ctx, "c1", "Carol"); err != nil {
		t.Fatalf("ResetRounds: %v", err)
	}

	want := map[string]int{"Alice": 0, "Bob": 1, "Carol": 0}
	players, _ := st.Players(ctx, "c1")
	for _, p := range players {
		if p.Rounds != want[p.Name] {
			t.Fatalf("%s rounds = %d, want %d", p.Name, p.Rounds, want[p.Name])
		}
	}
}
