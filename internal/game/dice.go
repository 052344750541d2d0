package game

import (
	"fmt"
	"strconv"
	"strings"
)

const maxDice = 25

// RollDice evaluates a dice expression of the form [count]d<sides>[+|-mod]
// or a bare number of sides.
func (e *Engine) RollDice(character, expr string) string {
	expr = strings.ToLower(strings.TrimSpace(expr))

	if strings.Contains(expr, "rick") {
		return fmt.Sprintf("%s rolls rick... Never gonna give you up, never gonna let you down!", UserTag(character))
	}

	genericErr := fmt.Sprintf("I can't roll that, %s. Try something like %s.", UserTag(character), Bold("2d6+3"))

	count, sides, modifier, ok := parseDiceExpr(expr)
	if !ok {
		return genericErr
	}
	if count > maxDice {
		return fmt.Sprintf("That's a lot of dice, %s! %d is the most I'll roll at once.", UserTag(character), maxDice)
	}

	if count == 1 {
		total := e.rnd.Intn(sides) + 1 + modifier
		return fmt.Sprintf("%s rolls %s... and gets %s!", UserTag(character), expr, Bold(strconv.Itoa(total)))
	}

	rolls := make([]string, count)
	sum := 0
	for i := 0; i < count; i++ {
		r := e.rnd.Intn(sides) + 1
		rolls[i] = strconv.Itoa(r)
		sum += r
	}
	sum += modifier

	out := fmt.Sprintf("%s rolls %s... %s", UserTag(character), expr, strings.Join(rolls, ", "))
	if modifier > 0 {
		out += fmt.Sprintf(" +%d", modifier)
	} else if modifier < 0 {
		out += fmt.Sprintf(" %d", modifier)
	}
	out += fmt.Sprintf(" = %s!", Bold(strconv.Itoa(sum)))
	return out
}

// parseDiceExpr accepts "NdS", "dS", "NdS+M", "NdS-M" or a bare "S".
// Count, sides and the modifier magnitude must all be positive numbers.
func parseDiceExpr(expr string) (count, sides, modifier int, ok bool) {
	if expr == "" {
		return 0, 0, 0, false
	}

	d := strings.IndexByte(expr, 'd')
	if d < 0 {
		sides, err := strconv.Atoi(expr)
		if err != nil || sides < 1 {
			return 0, 0, 0, false
		}
		return 1, sides, 0, true
	}

	count = 1
	if head := expr[:d]; head != "" {
		n, err := strconv.Atoi(head)
		if err != nil || n < 1 {
			return 0, 0, 0, false
		}
		count = n
	}

	rest := expr[d+1:]
	sign := 1
	if i := strings.IndexAny(rest, "+-"); i >= 0 {
		if rest[i] == '-' {
			sign = -1
		}
		magnitude := rest[i+1:]
		m, err := strconv.Atoi(magnitude)
		if err != nil || m < 1 {
			return 0, 0, 0, false
		}
		modifier = sign * m
		rest = rest[:i]
	}

	sides, err := strconv.Atoi(rest)
	if err != nil || sides < 1 {
		return 0, 0, 0, false
	}
	return count, sides, modifier, true
}
