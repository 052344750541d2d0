// Package catalog serves the bot's random flavor content: 8-ball answers,
// prize items, curses and quest prompts. Content lives in an embedded YAML
// file; each category renders through its own text/template so the BBCode
// styling stays out of the picking logic.
package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"math/rand"
	"strings"
	"sync"
	"text/template"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	yaml "gopkg.in/yaml.v3"
)

//go:embed content.yaml
var defaultFiles embed.FS

type Item struct {
	Name  string `yaml:"name"`
	Color string `yaml:"color"`
}

// Pokemon mirrors the pokeapi species dump: GenderRate is the chance of
// being female in eighths, -1 means genderless. An empty Forms list means
// only the normal form exists.
type Pokemon struct {
	Name       string   `yaml:"name"`
	GenderRate int      `yaml:"gender_rate"`
	Forms      []string `yaml:"forms"`
}

type contentFile struct {
	Templates map[string]string `yaml:"templates"`
	EightBall []string          `yaml:"eightball"`
	Items     []Item            `yaml:"items"`
	Curses    []string          `yaml:"curses"`
	Quests    struct {
		Verbs   []string `yaml:"verbs"`
		Targets []string `yaml:"targets"`
		Rewards []string `yaml:"rewards"`
	} `yaml:"quests"`
	Pokemon []Pokemon `yaml:"pokemon"`
}

type Catalog struct {
	mu      sync.Mutex
	rnd     *rand.Rand
	content contentFile
	tmpl    map[string]*template.Template
}

// New loads the embedded content. Seed 0 seeds from the clock.
func New(seed int64) (*Catalog, error) {
	raw, err := fs.ReadFile(defaultFiles, "content.yaml")
	if err != nil {
		return nil, fmt.Errorf("read embedded content: %w", err)
	}
	var content contentFile
	if err := yaml.Unmarshal(raw, &content); err != nil {
		return nil, fmt.Errorf("parse content: %w", err)
	}
	if len(content.EightBall) == 0 || len(content.Items) == 0 || len(content.Curses) == 0 ||
		len(content.Quests.Verbs) == 0 || len(content.Quests.Targets) == 0 || len(content.Quests.Rewards) == 0 ||
		len(content.Pokemon) == 0 {
		return nil, fmt.Errorf("content catalog has an empty category")
	}

	tmpl := make(map[string]*template.Template, len(content.Templates))
	for key, text := range content.Templates {
		t, err := template.New(key).Option("missingkey=error").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", key, err)
		}
		tmpl[key] = t
	}
	for _, key := range []string{"eightball", "item", "curse", "quest", "pokemon"} {
		if _, ok := tmpl[key]; !ok {
			return nil, fmt.Errorf("template not found: %s", key)
		}
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Catalog{
		rnd:     rand.New(rand.NewSource(seed)),
		content: content,
		tmpl:    tmpl,
	}, nil
}

func (c *Catalog) EightBall() (string, error) {
	c.mu.Lock()
	answer := c.content.EightBall[c.rnd.Intn(len(c.content.EightBall))]
	c.mu.Unlock()
	return c.render("eightball", map[string]string{"Answer": answer})
}

func (c *Catalog) Item(character string) (string, error) {
	c.mu.Lock()
	item := c.content.Items[c.rnd.Intn(len(c.content.Items))]
	c.mu.Unlock()
	// cases.Caser carries state, so build one per call.
	name := cases.Title(language.English).String(item.Name)
	return c.render("item", map[string]string{
		"Character": character,
		"Article":   article(name),
		"Name":      name,
		"Color":     item.Color,
	})
}

func (c *Catalog) Curse(character string) (string, error) {
	c.mu.Lock()
	curse := c.content.Curses[c.rnd.Intn(len(c.content.Curses))]
	c.mu.Unlock()
	return c.render("curse", map[string]string{"Character": character, "Curse": curse})
}

func (c *Catalog) Quest(character string) (string, error) {
	c.mu.Lock()
	verb := c.content.Quests.Verbs[c.rnd.Intn(len(c.content.Quests.Verbs))]
	target := c.content.Quests.Targets[c.rnd.Intn(len(c.content.Quests.Targets))]
	reward := c.content.Quests.Rewards[c.rnd.Intn(len(c.content.Quests.Rewards))]
	c.mu.Unlock()
	return c.render("quest", map[string]string{
		"Character": character,
		"Verb":      verb,
		"Target":    target,
		"Reward":    reward,
	})
}

func (c *Catalog) Pokemon(character string) (string, error) {
	c.mu.Lock()
	p := c.content.Pokemon[c.rnd.Intn(len(c.content.Pokemon))]
	form := ""
	if len(p.Forms) > 0 {
		form = p.Forms[c.rnd.Intn(len(p.Forms))]
	}
	gender := genderFor(c.rnd, p.GenderRate)
	c.mu.Unlock()

	title := cases.Title(language.English)
	name := title.String(p.Name)
	if form != "" && form != "normal" {
		name = title.String(form) + " " + name
	}
	if gender != "" {
		name = gender + " " + name
	}
	return c.render("pokemon", map[string]string{
		"Character": character,
		"Article":   article(name),
		"Name":      name,
	})
}

func genderFor(rnd *rand.Rand, rate int) string {
	switch {
	case rate < 0:
		return ""
	case rnd.Intn(8) < rate:
		return "female"
	default:
		return "male"
	}
}

func (c *Catalog) render(key string, data any) (string, error) {
	t, ok := c.tmpl[key]
	if !ok {
		return "", fmt.Errorf("template not found: %s", key)
	}
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

func article(name string) string {
	if name == "" {
		return "a"
	}
	switch name[0] {
	case 'A', 'E', 'I', 'O', 'U', 'a', 'e', 'i', 'o', 'u':
		return "an"
	}
	return "a"
}
