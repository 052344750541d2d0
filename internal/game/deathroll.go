package game

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	deathRollMin = 2
	deathRollMax = 1000
)

// DeathRoll starts or continues a channel's death roll. An explicit
// argument starts a fresh duel from that bound; without one the roll
// continues from the channel's stored bound. The state is process memory
// only, so a restart quietly forgets any duel in progress.
func (e *Engine) DeathRoll(channel, character, arg string) string {
	e.drMu.Lock()
	defer e.drMu.Unlock()

	bound := 0
	if s := strings.TrimSpace(arg); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Sprintf("That's not a number I can roll, %s.", UserTag(character))
		}
		if n < deathRollMin {
			return fmt.Sprintf("A death roll has to start at %d or higher, %s.", deathRollMin, UserTag(character))
		}
		if n > deathRollMax {
			return fmt.Sprintf("A death roll can't start higher than %d, %s.", deathRollMax, UserTag(character))
		}
		bound = n
	} else {
		stored, ok := e.deathRolls[channel]
		if !ok {
			return "There's no death roll in progress. Start one with !dr <number>."
		}
		bound = stored
	}

	result := e.rnd.Intn(bound) + 1
	if result == 1 {
		delete(e.deathRolls, channel)
		return fmt.Sprintf("%s rolls 1-%d... and gets %s! %s loses the death roll!",
			UserTag(character), bound, Bold("1"), UserTag(character))
	}

	e.deathRolls[channel] = result
	msg := fmt.Sprintf("%s rolls 1-%d... and gets %s!", UserTag(character), bound, Bold(strconv.Itoa(result)))
	if result == 69 {
		msg += " Nice."
	}
	return msg
}

// DeathRollRules is the reply to the rules command.
func DeathRollRules() string {
	return strings.Join([]string{
		Bold("Death roll:") + " the first player rolls !dr <number> (2-1000).",
		"Whatever they roll becomes the next player's upper bound, and so on back and forth with !dr.",
		"Whoever finally rolls a 1 loses.",
	}, " ")
}
