// Package catalog holds the static scenes, enemies and items of the game.
package catalog

import (
	"errors"
	"fmt"

	"github.com/felwinter/trails/internal/models"
)

var (
	// ErrInvalidCatalog is returned when catalog data breaks an invariant.
	ErrInvalidCatalog = errors.New("invalid catalog")
	// ErrNotFound is returned by lookups of unknown scenes, enemies or items.
	ErrNotFound = errors.New("not found")
)

// Catalog is the read-only reference data of one adventure.
type Catalog struct {
	Title   string                 `yaml:"title"`
	Start   string                 `yaml:"start"` // scene shown before the player has a name
	Entry   string                 `yaml:"entry"` // first scene after naming
	Scenes  []models.Scene         `yaml:"scenes"`
	Enemies []models.EnemyTemplate `yaml:"enemies"`
	Items   []models.Item          `yaml:"items"`

	scenes  map[string]models.Scene
	enemies map[string]models.EnemyTemplate
	items   map[string]models.Item
}

// New validates the given definitions and builds a catalog from them.
func New(title, start, entry string, scenes []models.Scene, enemies []models.EnemyTemplate, items []models.Item) (*Catalog, error) {
	c := &Catalog{
		Title:   title,
		Start:   start,
		Entry:   entry,
		Scenes:  scenes,
		Enemies: enemies,
		Items:   items,
	}
	if err := c.build(); err != nil {
		return nil, err
	}
	return c, nil
}

// Scene looks up a scene by id.
func (c *Catalog) Scene(id string) (models.Scene, error) {
	s, ok := c.scenes[id]
	if !ok {
		return models.Scene{}, fmt.Errorf("scene %q: %w", id, ErrNotFound)
	}
	return s, nil
}

// Enemy looks up an enemy template by name.
func (c *Catalog) Enemy(name string) (models.EnemyTemplate, error) {
	e, ok := c.enemies[name]
	if !ok {
		return models.EnemyTemplate{}, fmt.Errorf("enemy %q: %w", name, ErrNotFound)
	}
	return e, nil
}

// Item looks up an item by name.
func (c *Catalog) Item(name string) (models.Item, error) {
	it, ok := c.items[name]
	if !ok {
		return models.Item{}, fmt.Errorf("item %q: %w", name, ErrNotFound)
	}
	return it, nil
}

func (c *Catalog) StartScene() string { return c.Start }

func (c *Catalog) EntryScene() string { return c.Entry }

// build indexes the definitions and checks every invariant, reporting all
// problems at once.
func (c *Catalog) build() error {
	var problems []error
	fail := func(format string, args ...any) {
		problems = append(problems, fmt.Errorf(format, args...))
	}

	c.enemies = make(map[string]models.EnemyTemplate, len(c.Enemies))
	for _, e := range c.Enemies {
		switch {
		case e.Name == "":
			fail("enemy with empty name")
			continue
		case e.MaxHealth <= 0:
			fail("enemy %q: health must be positive, got %d", e.Name, e.MaxHealth)
		case e.AttackPower < 0:
			fail("enemy %q: attack power must not be negative, got %d", e.Name, e.AttackPower)
		}
		if _, dup := c.enemies[e.Name]; dup {
			fail("enemy %q defined twice", e.Name)
		}
		c.enemies[e.Name] = e
	}

	c.items = make(map[string]models.Item, len(c.Items))
	for _, it := range c.Items {
		if it.Name == "" {
			fail("item with empty name")
			continue
		}
		if _, dup := c.items[it.Name]; dup {
			fail("item %q defined twice", it.Name)
		}
		c.items[it.Name] = it
	}

	c.scenes = make(map[string]models.Scene, len(c.Scenes))
	for _, s := range c.Scenes {
		if s.ID == "" {
			fail("scene with empty id")
			continue
		}
		if _, dup := c.scenes[s.ID]; dup {
			fail("scene %q defined twice", s.ID)
		}
		c.scenes[s.ID] = s
	}

	for _, s := range c.Scenes {
		if s.ID == "" {
			continue
		}
		populated := 0
		for _, f := range []string{s.Choice1, s.Choice2, s.Next1, s.Next2} {
			if f != "" {
				populated++
			}
		}
		if populated != 0 && populated != 4 {
			fail("scene %q: choices and next scenes must be all set or all empty", s.ID)
		}
		if populated == 4 {
			for _, next := range []string{s.Next1, s.Next2} {
				if _, ok := c.scenes[next]; !ok {
					fail("scene %q: next scene %q does not exist", s.ID, next)
				}
			}
		}

		switch s.Ending {
		case "":
			if populated == 0 && s.ID != c.Start {
				fail("scene %q: has no choices and is not an ending", s.ID)
			}
		case models.OutcomeDeath, models.OutcomeVictory:
			if populated != 0 {
				fail("scene %q: ending scenes cannot offer choices", s.ID)
			}
		default:
			fail("scene %q: unknown ending %q", s.ID, s.Ending)
		}

		if s.Enemy != "" {
			if _, ok := c.enemies[s.Enemy]; !ok {
				fail("scene %q: enemy %q does not exist", s.ID, s.Enemy)
			}
			if populated == 0 {
				fail("scene %q: battle scenes need attack and flee choices", s.ID)
			}
		}
		if s.Grants != "" {
			if _, ok := c.items[s.Grants]; !ok {
				fail("scene %q: granted item %q does not exist", s.ID, s.Grants)
			}
		}
	}

	if start, ok := c.scenes[c.Start]; !ok {
		fail("start scene %q does not exist", c.Start)
	} else if start.HasChoices() || start.Ending != "" {
		fail("start scene %q must have no choices and no ending", c.Start)
	}
	if entry, ok := c.scenes[c.Entry]; !ok {
		fail("entry scene %q does not exist", c.Entry)
	} else if !entry.HasChoices() {
		fail("entry scene %q must offer choices", c.Entry)
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidCatalog, errors.Join(problems...))
	}
	return nil
}
