package game

import (
	"fmt"
	"strings"

	"github.com/velvetpaw/gamebot/internal/store"
)

// F-List BBCode helpers. Responses are compared verbatim by clients (and
// tests), so wording is fixed here and nowhere else.

func UserTag(name string) string {
	return "[user]" + name + "[/user]"
}

func Bold(s string) string {
	return "[b]" + s + "[/b]"
}

// rosterText reproduces the player-list footer appended to join, leave and
// headcount messages.
func rosterText(players []store.Player) string {
	if len(players) == 0 {
		return "No one is currently playing."
	}
	names := make([]string, len(players))
	for i, p := range players {
		names[i] = UserTag(p.Name)
	}
	if len(players) == 1 {
		return fmt.Sprintf("There is currently 1 player:\n%s", names[0])
	}
	return fmt.Sprintf("There are currently %d players:\n%s", len(players), strings.Join(names, "\n"))
}
