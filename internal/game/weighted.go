package game

import (
	"math/rand"

	"github.com/velvetpaw/gamebot/internal/store"
)

// weightedPick draws one player from the pool. Each player holds rounds+1
// tickets, so whoever has waited longest since being chosen is
// proportionally more likely to be picked. The pool is an immutable
// snapshot; the caller applies the resulting state changes.
func weightedPick(rnd *rand.Rand, pool []store.Player) string {
	total := 0
	for _, p := range pool {
		total += p.Rounds + 1
	}
	n := rnd.Intn(total)
	for _, p := range pool {
		n -= p.Rounds + 1
		if n < 0 {
			return p.Name
		}
	}
	// Unreachable with a non-empty pool.
	return pool[len(pool)-1].Name
}
