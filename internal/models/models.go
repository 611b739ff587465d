package models

import "time"

// Outcomes recorded when a game ends.
const (
	OutcomeDeath   = "death"
	OutcomeVictory = "victory"
)

// StartingHealth is the health every new player begins with.
const StartingHealth = 100

// Scene is a narrative node with up to two labeled choices.
type Scene struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description"`
	Choice1     string `yaml:"choice1"`
	Choice2     string `yaml:"choice2"`
	Next1       string `yaml:"next1"`
	Next2       string `yaml:"next2"`
	Enemy       string `yaml:"enemy,omitempty"`  // battle scenes: catalog enemy to fight
	Grants      string `yaml:"grants,omitempty"` // item added to the inventory on entry
	Ending      string `yaml:"ending,omitempty"` // "death" or "victory"
}

// HasChoices reports whether the scene offers choices to the player.
func (s Scene) HasChoices() bool {
	return s.Choice1 != "" && s.Choice2 != ""
}

// IsBattle reports whether entering the scene starts an encounter.
func (s Scene) IsBattle() bool {
	return s.Enemy != ""
}

// EnemyTemplate is the catalog entry an Enemy is spawned from.
type EnemyTemplate struct {
	Name        string `yaml:"name"`
	MaxHealth   int    `yaml:"health"`
	AttackPower int    `yaml:"attack_power"`
}

// Spawn returns a fresh enemy at full health.
func (t EnemyTemplate) Spawn() *Enemy {
	return &Enemy{
		Name:        t.Name,
		Health:      t.MaxHealth,
		AttackPower: t.AttackPower,
	}
}

// Enemy is a live combatant for the duration of one battle.
type Enemy struct {
	Name        string
	Health      int
	AttackPower int
}

// Item is a catalog item. AttackBonus is added to the player's damage
// while the item is carried.
type Item struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Effect      string `yaml:"effect"`
	AttackBonus int    `yaml:"attack_bonus,omitempty"`
}

// Player is the mutable state of the person playing.
type Player struct {
	Name      string
	SceneID   string
	Inventory Inventory
	Health    int
}

// NewPlayer creates a player at full health with nothing carried.
func NewPlayer(name, sceneID string) Player {
	return Player{
		Name:    name,
		SceneID: sceneID,
		Health:  StartingHealth,
	}
}

// Record is one persisted game-over event.
type Record struct {
	ID        int64
	Player    string
	SessionID string
	Outcome   string
	Inventory []string
	Health    int
	CreatedAt time.Time
}

// DefaultRecord is what loading an unknown player yields.
func DefaultRecord(name string) Record {
	return Record{
		Player:    name,
		Inventory: []string{},
		Health:    StartingHealth,
	}
}
