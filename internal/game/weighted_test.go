package game

import (
	"math/rand"
	"testing"

	"github.com/velvetpaw/gamebot/internal/store"
)

func TestWeightedPickSingle(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	pool := []store.Player{{Name: "Only", Rounds: 3}}
	for i := 0; i < 10; i++ {
		if got := weightedPick(rnd, pool); got != "Only" {
			t.Fatalf("weightedPick = %q, want Only", got)
		}
	}
}

func TestWeightedPickFavorsWaiting(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	// A holds 1 ticket, B holds 10: B should win the large majority.
	pool := []store.Player{
		{Name: "A", Rounds: 0},
		{Name: "B", Rounds: 9},
	}
	counts := map[string]int{}
	for i := 0; i < 2000; i++ {
		counts[weightedPick(rnd, pool)]++
	}
	if counts["A"]+counts["B"] != 2000 {
		t.Fatalf("picks outside the pool: %v", counts)
	}
	if counts["B"] < 1500 {
		t.Fatalf("B picked %d of 2000, expected a strong majority", counts["B"])
	}
	if counts["A"] == 0 {
		t.Fatalf("A never picked; single-ticket players must stay eligible")
	}
}
