package engine

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/felwinter/trails/internal/models"
)

// Phase is where a session is in the game loop.
type Phase int

const (
	PhaseNaming Phase = iota
	PhaseExploring
	PhaseBattle
	PhaseOver
)

func (p Phase) String() string {
	switch p {
	case PhaseNaming:
		return "naming"
	case PhaseExploring:
		return "exploring"
	case PhaseBattle:
		return "battle"
	case PhaseOver:
		return "over"
	default:
		return "unknown"
	}
}

// Session is one game in progress. Sessions share nothing, so any number
// can be played side by side against the same Engine.
type Session struct {
	ID      string
	Player  models.Player
	Battle  *Battle // nil outside of PhaseBattle
	Phase   Phase
	Outcome string // set once the session reaches PhaseOver
}

func newSession(startScene string) *Session {
	return &Session{
		ID:     uuid.NewString(),
		Player: models.NewPlayer("", startScene),
		Phase:  PhaseNaming,
	}
}

// Turn is the result of feeding one line of input to a session.
type Turn struct {
	Lines   []string
	Invalid bool // input matched nothing; the session is unchanged
	Over    bool
	Outcome string
}

func (t *Turn) say(format string, args ...any) {
	t.Lines = append(t.Lines, fmt.Sprintf(format, args...))
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	c := *s
	c.Player.Inventory = models.NewInventory(s.Player.Inventory.Items()...)
	if s.Battle != nil {
		b := *s.Battle
		enemy := *s.Battle.Enemy
		b.Enemy = &enemy
		c.Battle = &b
	}
	return &c
}
