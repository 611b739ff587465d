// Package engine runs the scene graph and combat of a game session.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/felwinter/trails/internal/models"
)

// ErrGameOver is returned when input is fed to a finished session.
var ErrGameOver = errors.New("game is over")

// Catalog is the read-only reference data the engine plays from.
type Catalog interface {
	Scene(id string) (models.Scene, error)
	Enemy(name string) (models.EnemyTemplate, error)
	Item(name string) (models.Item, error)
	StartScene() string
	EntryScene() string
}

// Recorder persists finished games.
type Recorder interface {
	Save(ctx context.Context, rec models.Record) error
	Load(ctx context.Context, name string) (models.Record, bool, error)
}

type Engine struct {
	catalog  Catalog
	recorder Recorder
	logger   *slog.Logger
}

// New creates an engine. recorder may be nil, in which case finished games
// are not persisted.
func New(c Catalog, recorder Recorder, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		catalog:  c,
		recorder: recorder,
		logger:   logger,
	}
}

// NewSession starts a game at the catalog's start scene, waiting for the
// player's name.
func (e *Engine) NewSession() *Session {
	return newSession(e.catalog.StartScene())
}

// Intro describes the scene a session is currently in.
func (e *Engine) Intro(s *Session) (Turn, error) {
	var t Turn
	scene, err := e.catalog.Scene(s.Player.SceneID)
	if err != nil {
		return t, err
	}
	describe(&t, scene)
	if s.Battle != nil {
		describeBattle(&t, scene, s.Player, s.Battle.Enemy)
	}
	return t, nil
}

// CurrentScene returns the scene the session's player is in.
func (e *Engine) CurrentScene(s *Session) (models.Scene, error) {
	return e.catalog.Scene(s.Player.SceneID)
}

// Step feeds one line of player input to the session.
func (e *Engine) Step(ctx context.Context, s *Session, input string) (Turn, error) {
	switch s.Phase {
	case PhaseNaming:
		return e.name(ctx, s, input)
	case PhaseBattle:
		if s.Battle == nil {
			return Turn{}, fmt.Errorf("session %s: battle phase without a battle", s.ID)
		}
		return e.fight(ctx, s, input)
	case PhaseExploring:
		return e.explore(ctx, s, input)
	default:
		return Turn{Over: true, Outcome: s.Outcome}, ErrGameOver
	}
}

func (e *Engine) name(ctx context.Context, s *Session, input string) (Turn, error) {
	var t Turn
	name := strings.TrimSpace(input)
	if name == "" {
		t.Invalid = true
		t.say("Please enter your name to begin.")
		return t, nil
	}

	s.Player.Name = name
	s.Phase = PhaseExploring
	t.say("Welcome, %s!", name)

	if e.recorder != nil {
		prev, found, err := e.recorder.Load(ctx, name)
		if err != nil {
			e.logger.WarnContext(ctx, "failed to load previous record", "player", name, "error", err)
		} else if found {
			t.say("Welcome back. Last time your journey ended in %s with %d health.", prev.Outcome, prev.Health)
		}
	}

	e.logger.InfoContext(ctx, "session started", "session_id", s.ID, "player", name)
	err := e.enter(ctx, s, e.catalog.EntryScene(), &t)
	return t, err
}

func (e *Engine) explore(ctx context.Context, s *Session, input string) (Turn, error) {
	var t Turn
	scene, err := e.catalog.Scene(s.Player.SceneID)
	if err != nil {
		return t, err
	}

	next, ok := Resolve(scene, input)
	if !ok {
		t.Invalid = true
		t.say("Invalid choice. Try again.")
		return t, nil
	}
	err = e.enter(ctx, s, next, &t)
	return t, err
}

func (e *Engine) fight(ctx context.Context, s *Session, input string) (Turn, error) {
	var t Turn
	b := s.Battle
	action := strings.TrimSpace(input)

	switch {
	case strings.EqualFold(action, b.Scene.Choice1):
		damage := AttackDamage(s.Player, e.catalog.Item)
		ex, err := b.Attack(&s.Player, damage)
		if err != nil {
			return t, err
		}
		t.say("You attacked the %s for %d damage!", b.Enemy.Name, ex.Dealt)

		switch ex.State {
		case EnemyDefeated:
			t.say("You defeated the %s!", b.Enemy.Name)
			e.logger.InfoContext(ctx, "enemy defeated", "session_id", s.ID, "enemy", b.Enemy.Name, "health", s.Player.Health)
			s.Battle = nil
			s.Phase = PhaseExploring
			err := e.enter(ctx, s, b.Scene.Next1, &t)
			return t, err
		case PlayerDefeated:
			t.say("The %s attacked you for %d damage!", b.Enemy.Name, ex.Taken)
			t.say("You died!")
			s.Battle = nil
			err := e.finish(ctx, s, models.OutcomeDeath, &t)
			return t, err
		default:
			t.say("The %s attacked you for %d damage!", b.Enemy.Name, ex.Taken)
			describeBattle(&t, b.Scene, s.Player, b.Enemy)
			return t, nil
		}

	case strings.EqualFold(action, b.Scene.Choice2):
		if _, err := b.Flee(); err != nil {
			return t, err
		}
		t.say("You ran away!")
		e.logger.InfoContext(ctx, "fled battle", "session_id", s.ID, "enemy", b.Enemy.Name)
		s.Battle = nil
		s.Phase = PhaseExploring
		err := e.enter(ctx, s, b.Scene.Next2, &t)
		return t, err

	default:
		t.Invalid = true
		t.say("Invalid choice. Type '%s' or '%s'.", b.Scene.Choice1, b.Scene.Choice2)
		return t, nil
	}
}

// enter moves the player into a scene and applies what entering it does:
// item grants, battles and endings.
func (e *Engine) enter(ctx context.Context, s *Session, id string, t *Turn) error {
	scene, err := e.catalog.Scene(id)
	if err != nil {
		return err
	}
	s.Player.SceneID = scene.ID

	describe(t, scene)

	if scene.Grants != "" && s.Player.Inventory.Add(scene.Grants) {
		t.say("You obtained the %s.", scene.Grants)
		e.logger.InfoContext(ctx, "item granted", "session_id", s.ID, "item", scene.Grants)
	}

	if scene.IsBattle() {
		tmpl, err := e.catalog.Enemy(scene.Enemy)
		if err != nil {
			return fmt.Errorf("battle scene %q: %w", scene.ID, err)
		}
		s.Battle = NewBattle(scene, tmpl)
		s.Phase = PhaseBattle
		describeBattle(t, scene, s.Player, s.Battle.Enemy)
		e.logger.InfoContext(ctx, "battle started", "session_id", s.ID, "enemy", tmpl.Name)
	}

	if scene.Ending != "" {
		return e.finish(ctx, s, scene.Ending, t)
	}
	return nil
}

// finish ends the session and records the outcome.
func (e *Engine) finish(ctx context.Context, s *Session, outcome string, t *Turn) error {
	s.Phase = PhaseOver
	s.Outcome = outcome
	t.Over = true
	t.Outcome = outcome

	if outcome == models.OutcomeDeath {
		t.say("Game over! You have been defeated.")
	} else {
		t.say("Congratulations! You have won the game.")
	}

	e.logger.InfoContext(ctx, "game over", "session_id", s.ID, "player", s.Player.Name,
		"outcome", outcome, "health", s.Player.Health)

	if e.recorder == nil {
		return nil
	}
	rec := models.Record{
		Player:    s.Player.Name,
		SessionID: s.ID,
		Outcome:   outcome,
		Inventory: s.Player.Inventory.Items(),
		Health:    s.Player.Health,
		CreatedAt: time.Now().UTC(),
	}
	if err := e.recorder.Save(ctx, rec); err != nil {
		return fmt.Errorf("saving record for %q: %w", s.Player.Name, err)
	}
	return nil
}
