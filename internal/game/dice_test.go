package game

import (
	"strconv"
	"strings"
	"testing"
)

func TestParseDiceExpr(t *testing.T) {
	cases := []struct {
		expr     string
		count    int
		sides    int
		modifier int
		ok       bool
	}{
		{"1d6", 1, 6, 0, true},
		{"d20", 1, 20, 0, true},
		{"3d6+2", 3, 6, 2, true},
		{"2d10-4", 2, 10, -4, true},
		{"20", 1, 20, 0, true},
		{"26d6", 26, 6, 0, true},
		{"0d6", 0, 0, 0, false},
		{"abc", 0, 0, 0, false},
		{"1d0", 0, 0, 0, false},
		{"1d6+0", 0, 0, 0, false},
		{"1d6+x", 0, 0, 0, false},
		{"-2d6", 0, 0, 0, false},
		{"", 0, 0, 0, false},
	}
	for _, tc := range cases {
		count, sides, modifier, ok := parseDiceExpr(tc.expr)
		if ok != tc.ok {
			t.Fatalf("parseDiceExpr(%q) ok=%v, want %v", tc.expr, ok, tc.ok)
		}
		if !ok {
			continue
		}
		if count != tc.count || sides != tc.sides || modifier != tc.modifier {
			t.Fatalf("parseDiceExpr(%q) = (%d,%d,%d), want (%d,%d,%d)",
				tc.expr, count, sides, modifier, tc.count, tc.sides, tc.modifier)
		}
	}
}

func TestRollDiceSingleBounds(t *testing.T) {
	e, _ := newTestEngine(t)
	for i := 0; i < 200; i++ {
		msg := e.RollDice("Alice", "1d6")
		got := extractBold(t, msg)
		if got < 1 || got > 6 {
			t.Fatalf("1d6 rolled %d: %q", got, msg)
		}
	}
}

func TestRollDiceMulti(t *testing.T) {
	e, _ := newTestEngine(t)
	for i := 0; i < 100; i++ {
		msg := e.RollDice("Alice", "3d6+2")
		if !strings.HasPrefix(msg, "[user]Alice[/user] rolls 3d6+2... ") {
			t.Fatalf("multi roll message: %q", msg)
		}
		if !strings.Contains(msg, " +2 = ") {
			t.Fatalf("modifier missing before sum: %q", msg)
		}
		body := strings.TrimPrefix(msg, "[user]Alice[/user] rolls 3d6+2... ")
		rolls := strings.Split(strings.SplitN(body, " +2 = ", 2)[0], ", ")
		if len(rolls) != 3 {
			t.Fatalf("expected 3 component rolls: %q", msg)
		}
		for _, r := range rolls {
			n, err := strconv.Atoi(r)
			if err != nil || n < 1 || n > 6 {
				t.Fatalf("component roll %q out of range: %q", r, msg)
			}
		}
		sum := extractBold(t, msg)
		if sum < 5 || sum > 20 {
			t.Fatalf("3d6+2 sum %d out of range: %q", sum, msg)
		}
	}
}

func TestRollDiceRejections(t *testing.T) {
	e, _ := newTestEngine(t)

	if msg := e.RollDice("Alice", "26d6"); !strings.HasPrefix(msg, "That's a lot of dice, [user]Alice[/user]!") {
		t.Fatalf("too-many-dice message: %q", msg)
	}
	generic := "I can't roll that, [user]Alice[/user]. Try something like [b]2d6+3[/b]."
	for _, expr := range []string{"0d6", "abc", "", "1d6+0"} {
		if msg := e.RollDice("Alice", expr); msg != generic {
			t.Fatalf("RollDice(%q) = %q, want generic error", expr, msg)
		}
	}
}

func TestRollDiceRick(t *testing.T) {
	e, _ := newTestEngine(t)
	msg := e.RollDice("Alice", "2drick")
	if msg != "[user]Alice[/user] rolls rick... Never gonna give you up, never gonna let you down!" {
		t.Fatalf("rick message: %q", msg)
	}
}

// extractBold parses the number inside the message's [b]...[/b] span.
func extractBold(t *testing.T, msg string) int {
	t.Helper()
	start := strings.Index(msg, "[b]")
	end := strings.Index(msg, "[/b]")
	if start < 0 || end < 0 || end <= start {
		t.Fatalf("no bold span in %q", msg)
	}
	n, err := strconv.Atoi(msg[start+3 : end])
	if err != nil {
		t.Fatalf("bold span in %q is not a number: %v", msg, err)
	}
	return n
}
