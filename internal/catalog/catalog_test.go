package catalog

import (
	"math/rand"
	"strings"
	"testing"
)

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := New(3)
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	return c
}

func TestEightBall(t *testing.T) {
	c := newTestCatalog(t)
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		msg, err := c.EightBall()
		if err != nil {
			t.Fatalf("EightBall: %v", err)
		}
		if !strings.HasPrefix(msg, "[b]The 8-ball says:[/b] ") {
			t.Fatalf("eight ball format: %q", msg)
		}
		seen[msg] = true
	}
	if len(seen) < 2 {
		t.Fatalf("eight ball always answers the same thing")
	}
}

func TestItemFormatting(t *testing.T) {
	c := newTestCatalog(t)
	for i := 0; i < 50; i++ {
		msg, err := c.Item("[user]Alice[/user]")
		if err != nil {
			t.Fatalf("Item: %v", err)
		}
		if !strings.HasPrefix(msg, "[user]Alice[/user] rummages") {
			t.Fatalf("item format: %q", msg)
		}
		if !strings.Contains(msg, "[color=") || !strings.Contains(msg, "[/color]") {
			t.Fatalf("item missing color markup: %q", msg)
		}
		// Names are title-cased on the way out.
		start := strings.Index(msg, "[color=")
		body := msg[start:]
		body = body[strings.Index(body, "]")+1 : strings.Index(body, "[/color]")]
		if body == "" || body[0] < 'A' || body[0] > 'Z' {
			t.Fatalf("item name not title-cased: %q in %q", body, msg)
		}
	}
}

func TestCurseAndQuest(t *testing.T) {
	c := newTestCatalog(t)

	msg, err := c.Curse("[user]Alice[/user]")
	if err != nil {
		t.Fatalf("Curse: %v", err)
	}
	if !strings.Contains(msg, "[color=purple]") || !strings.Contains(msg, "[user]Alice[/user]") {
		t.Fatalf("curse format: %q", msg)
	}

	msg, err = c.Quest("[user]Alice[/user]")
	if err != nil {
		t.Fatalf("Quest: %v", err)
	}
	if !strings.HasPrefix(msg, "[b]A quest for [user]Alice[/user]:[/b] ") {
		t.Fatalf("quest format: %q", msg)
	}
	if !strings.Contains(msg, "Your reward: ") {
		t.Fatalf("quest missing reward: %q", msg)
	}
}

func TestPokemonFormatting(t *testing.T) {
	c := newTestCatalog(t)
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		msg, err := c.Pokemon("[user]Alice[/user]")
		if err != nil {
			t.Fatalf("Pokemon: %v", err)
		}
		if !strings.HasPrefix(msg, "The pokedex scans [user]Alice[/user] and beeps: ") {
			t.Fatalf("pokemon format: %q", msg)
		}
		if !strings.Contains(msg, " [b]") || !strings.HasSuffix(msg, "[/b]!") {
			t.Fatalf("pokemon missing bold name: %q", msg)
		}
		if strings.Contains(msg, " Normal ") {
			t.Fatalf("normal form should not be spelled out: %q", msg)
		}
		seen[msg] = true
	}
	if len(seen) < 5 {
		t.Fatalf("pokemon output barely varies: %d distinct in 100 draws", len(seen))
	}
}

func TestGenderFor(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	for i := 0; i < 100; i++ {
		if g := genderFor(rnd, -1); g != "" {
			t.Fatalf("genderless species got gender %q", g)
		}
		if g := genderFor(rnd, 0); g != "male" {
			t.Fatalf("rate 0 should always be male, got %q", g)
		}
		if g := genderFor(rnd, 8); g != "female" {
			t.Fatalf("rate 8 should always be female, got %q", g)
		}
	}
	both := map[string]bool{}
	for i := 0; i < 200; i++ {
		both[genderFor(rnd, 4)] = true
	}
	if !both["male"] || !both["female"] {
		t.Fatalf("rate 4 never produced both genders: %v", both)
	}
}
