package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/felwinter/trails/internal/catalog"
	"github.com/felwinter/trails/internal/models"
)

type memoryRecorder struct {
	records []models.Record
	saveErr error
}

func (m *memoryRecorder) Save(_ context.Context, rec models.Record) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *memoryRecorder) Load(_ context.Context, name string) (models.Record, bool, error) {
	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].Player == name {
			return m.records[i], true, nil
		}
	}
	return models.DefaultRecord(name), false, nil
}

func newTestEngine(t *testing.T) (*Engine, *memoryRecorder) {
	t.Helper()
	c, err := catalog.Default()
	if err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}
	rec := &memoryRecorder{}
	return New(c, rec, slog.New(slog.NewTextHandler(io.Discard, nil))), rec
}

func play(t *testing.T, e *Engine, s *Session, inputs ...string) Turn {
	t.Helper()
	var last Turn
	for _, in := range inputs {
		turn, err := e.Step(context.Background(), s, in)
		if err != nil {
			t.Fatalf("Step(%q): unexpected error: %v", in, err)
		}
		if turn.Invalid {
			t.Fatalf("Step(%q): unexpected invalid input: %v", in, turn.Lines)
		}
		last = turn
	}
	return last
}

func hasLine(turn Turn, substr string) bool {
	for _, l := range turn.Lines {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}

func TestResolve(t *testing.T) {
	scene := models.Scene{
		ID:      "forest",
		Choice1: "left",
		Choice2: "right",
		Next1:   "cave",
		Next2:   "village",
	}

	tests := []struct {
		input  string
		want   string
		wantOK bool
	}{
		{"left", "cave", true},
		{"LEFT", "cave", true},
		{"  Left ", "cave", true},
		{"right", "village", true},
		{"RiGhT", "village", true},
		{"up", "", false},
		{"", "", false},
		{"left right", "", false},
	}

	for _, tt := range tests {
		got, ok := Resolve(scene, tt.input)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Resolve(%q) = %q, %v; want %q, %v", tt.input, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestResolve_NoChoices(t *testing.T) {
	if _, ok := Resolve(models.Scene{ID: "start"}, ""); ok {
		t.Error("Expected scene without choices to reject every input")
	}
}

func TestResolve_EveryDefaultScene(t *testing.T) {
	c, err := catalog.Default()
	if err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}

	for _, scene := range c.Scenes {
		if !scene.HasChoices() {
			continue
		}
		for _, in := range []string{scene.Choice1, strings.ToUpper(scene.Choice1)} {
			if next, ok := Resolve(scene, in); !ok || next != scene.Next1 {
				t.Errorf("%s: Resolve(%q) = %q, %v; want %q", scene.ID, in, next, ok, scene.Next1)
			}
		}
		for _, in := range []string{scene.Choice2, strings.ToUpper(scene.Choice2)} {
			if next, ok := Resolve(scene, in); !ok || next != scene.Next2 {
				t.Errorf("%s: Resolve(%q) = %q, %v; want %q", scene.ID, in, next, ok, scene.Next2)
			}
		}
	}
}

func TestNewSession(t *testing.T) {
	e, _ := newTestEngine(t)
	s := e.NewSession()

	if s.Phase != PhaseNaming {
		t.Errorf("Expected naming phase, got %v", s.Phase)
	}
	if s.Player.SceneID != "start" || s.Player.Health != 100 {
		t.Errorf("Unexpected player %+v", s.Player)
	}
	if s.ID == "" {
		t.Error("Expected a session id")
	}

	intro, err := e.Intro(s)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !hasLine(intro, "Enter your name") {
		t.Errorf("Expected start scene text, got %v", intro.Lines)
	}
}

func TestStep_Naming(t *testing.T) {
	e, _ := newTestEngine(t)
	s := e.NewSession()

	turn, err := e.Step(context.Background(), s, "   ")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !turn.Invalid || s.Phase != PhaseNaming {
		t.Errorf("Expected blank name to be rejected, got %+v", turn)
	}

	turn = play(t, e, s, "Ada")
	if s.Player.Name != "Ada" {
		t.Errorf("Expected name Ada, got %q", s.Player.Name)
	}
	if s.Player.SceneID != "forest" || s.Phase != PhaseExploring {
		t.Errorf("Expected to be exploring the forest, got %s / %v", s.Player.SceneID, s.Phase)
	}
	if !hasLine(turn, "Welcome, Ada!") || !hasLine(turn, "Choices: left or right") {
		t.Errorf("Unexpected lines %v", turn.Lines)
	}
}

func TestStep_ReturningPlayer(t *testing.T) {
	e, rec := newTestEngine(t)
	rec.records = []models.Record{{Player: "Ada", Outcome: models.OutcomeDeath, Health: 0}}

	turn := play(t, e, e.NewSession(), "Ada")
	if !hasLine(turn, "Welcome back") {
		t.Errorf("Expected returning player greeting, got %v", turn.Lines)
	}
}

func TestStep_InvalidChoiceLeavesSceneUnchanged(t *testing.T) {
	e, _ := newTestEngine(t)
	s := e.NewSession()
	play(t, e, s, "Ada")

	turn, err := e.Step(context.Background(), s, "jump")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !turn.Invalid {
		t.Error("Expected invalid input")
	}
	if s.Player.SceneID != "forest" {
		t.Errorf("Expected to stay in forest, got %s", s.Player.SceneID)
	}
	if !hasLine(turn, "Invalid choice") {
		t.Errorf("Expected invalid message, got %v", turn.Lines)
	}
}

func TestStep_CaseInsensitiveChoices(t *testing.T) {
	e, _ := newTestEngine(t)
	s := e.NewSession()
	play(t, e, s, "Ada", "LEFT", "Enter")

	if s.Player.SceneID != "treasure" {
		t.Errorf("Expected treasure, got %s", s.Player.SceneID)
	}
}

func TestStep_SwordGrantIsIdempotent(t *testing.T) {
	e, _ := newTestEngine(t)
	s := e.NewSession()

	turn := play(t, e, s, "Ada", "right", "talk", "yes", "search")
	if s.Player.SceneID != "sword_found" {
		t.Fatalf("Expected sword_found, got %s", s.Player.SceneID)
	}
	if !s.Player.Inventory.Has("sword") {
		t.Fatal("Expected sword in inventory")
	}
	if !hasLine(turn, "You obtained the sword") {
		t.Errorf("Expected grant message, got %v", turn.Lines)
	}

	turn = play(t, e, s, "return", "talk", "yes", "search")
	if s.Player.Inventory.Len() != 1 {
		t.Errorf("Expected a single sword, got %v", s.Player.Inventory.Items())
	}
	if hasLine(turn, "You obtained") {
		t.Errorf("Expected no second grant message, got %v", turn.Lines)
	}
}

func TestStep_BattleWithSword(t *testing.T) {
	e, rec := newTestEngine(t)
	s := e.NewSession()

	turn := play(t, e, s, "Ada", "right", "talk", "yes", "search", "explore")
	if s.Phase != PhaseBattle || s.Battle == nil {
		t.Fatalf("Expected battle, got phase %v", s.Phase)
	}
	if s.Battle.Enemy.Name != "goblin" || s.Battle.Enemy.Health != 50 {
		t.Fatalf("Expected fresh goblin, got %+v", s.Battle.Enemy)
	}
	if !hasLine(turn, "goblin's health: 50") {
		t.Errorf("Expected enemy health line, got %v", turn.Lines)
	}

	wantEnemy := []int{35, 20, 5}
	wantPlayer := []int{90, 80, 70}
	for i := range wantEnemy {
		turn = play(t, e, s, "attack")
		if !hasLine(turn, "for 15 damage") {
			t.Errorf("Attack %d: expected 15 damage, got %v", i+1, turn.Lines)
		}
		if s.Battle.Enemy.Health != wantEnemy[i] || s.Player.Health != wantPlayer[i] {
			t.Errorf("Attack %d: enemy %d player %d; want %d / %d",
				i+1, s.Battle.Enemy.Health, s.Player.Health, wantEnemy[i], wantPlayer[i])
		}
	}

	turn = play(t, e, s, "ATTACK")
	if !hasLine(turn, "You defeated the goblin!") {
		t.Errorf("Expected victory, got %v", turn.Lines)
	}
	if hasLine(turn, "attacked you") {
		t.Errorf("Expected no counter-attack on the killing blow, got %v", turn.Lines)
	}
	if s.Player.Health != 70 {
		t.Errorf("Expected health 70, got %d", s.Player.Health)
	}
	if s.Player.SceneID != "forest" || s.Phase != PhaseExploring || s.Battle != nil {
		t.Errorf("Expected to return to the forest, got %s / %v", s.Player.SceneID, s.Phase)
	}
	if len(rec.records) != 0 {
		t.Errorf("Expected no record for a won battle, got %v", rec.records)
	}
}

func TestStep_BattleWithoutSword(t *testing.T) {
	e, _ := newTestEngine(t)
	s := e.NewSession()
	play(t, e, s, "Ada")

	scene, err := e.catalog.Scene("battle")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	tmpl, _ := e.catalog.Enemy("goblin")
	s.Player.SceneID = "battle"
	s.Battle = NewBattle(scene, tmpl)
	s.Phase = PhaseBattle

	turn := play(t, e, s, "attack")
	if !hasLine(turn, "for 10 damage") || s.Battle.Enemy.Health != 40 {
		t.Errorf("Expected 10 damage, got %v (enemy %d)", turn.Lines, s.Battle.Enemy.Health)
	}
}

func TestStep_BattleInvalidInput(t *testing.T) {
	e, _ := newTestEngine(t)
	s := e.NewSession()
	play(t, e, s, "Ada", "right", "talk", "yes", "search", "explore")

	turn, err := e.Step(context.Background(), s, "dance")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !turn.Invalid {
		t.Error("Expected invalid input")
	}
	if s.Battle.Enemy.Health != 50 || s.Player.Health != 100 || s.Phase != PhaseBattle {
		t.Errorf("Expected nothing to change, got enemy %d player %d phase %v",
			s.Battle.Enemy.Health, s.Player.Health, s.Phase)
	}
}

func TestStep_FleeKeepsHealthAndInventory(t *testing.T) {
	e, _ := newTestEngine(t)
	s := e.NewSession()
	play(t, e, s, "Ada", "right", "talk", "yes", "search", "explore", "attack")

	health := s.Player.Health
	items := s.Player.Inventory.Items()

	turn := play(t, e, s, "Run")
	if !hasLine(turn, "You ran away!") {
		t.Errorf("Expected flight message, got %v", turn.Lines)
	}
	if s.Player.SceneID != "forest" || s.Phase != PhaseExploring || s.Battle != nil {
		t.Errorf("Expected to return to the forest, got %s / %v", s.Player.SceneID, s.Phase)
	}
	if s.Player.Health != health {
		t.Errorf("Expected health %d, got %d", health, s.Player.Health)
	}
	if got := s.Player.Inventory.Items(); len(got) != len(items) || got[0] != items[0] {
		t.Errorf("Expected inventory %v, got %v", items, got)
	}
}

func TestStep_ReenteringBattleSpawnsFreshEnemy(t *testing.T) {
	e, _ := newTestEngine(t)
	s := e.NewSession()
	play(t, e, s, "Ada", "right", "talk", "yes", "search", "explore", "attack", "run")
	play(t, e, s, "right", "talk", "yes", "search", "explore")

	if s.Battle.Enemy.Health != 50 {
		t.Errorf("Expected a fresh goblin, got %d health", s.Battle.Enemy.Health)
	}
}

func TestStep_PlayerDefeated(t *testing.T) {
	scenes := []models.Scene{
		{ID: "start", Description: "Name?"},
		{ID: "forest", Description: "Trees.", Choice1: "north", Choice2: "south", Next1: "lair", Next2: "forest"},
		{ID: "lair", Description: "A troll!", Choice1: "attack", Choice2: "run", Next1: "forest", Next2: "forest", Enemy: "troll"},
	}
	enemies := []models.EnemyTemplate{{Name: "troll", MaxHealth: 1000, AttackPower: 10}}
	c, err := catalog.New("Troll", "start", "forest", scenes, enemies, nil)
	if err != nil {
		t.Fatalf("Failed to build catalog: %v", err)
	}
	rec := &memoryRecorder{}
	e := New(c, rec, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s := e.NewSession()
	play(t, e, s, "Ada", "north")

	var turn Turn
	for i := 0; i < 10; i++ {
		turn = play(t, e, s, "attack")
	}

	if !turn.Over || turn.Outcome != models.OutcomeDeath {
		t.Fatalf("Expected death after 10 counter-attacks, got %+v", turn)
	}
	if !hasLine(turn, "You died!") || !hasLine(turn, "Game over!") {
		t.Errorf("Unexpected lines %v", turn.Lines)
	}
	if s.Phase != PhaseOver || s.Player.Health != 0 {
		t.Errorf("Expected game over at 0 health, got %v / %d", s.Phase, s.Player.Health)
	}
	if len(rec.records) != 1 {
		t.Fatalf("Expected exactly one record, got %d", len(rec.records))
	}
	got := rec.records[0]
	if got.Player != "Ada" || got.Outcome != models.OutcomeDeath || got.Health != 0 || got.SessionID != s.ID {
		t.Errorf("Unexpected record %+v", got)
	}

	if _, err := e.Step(context.Background(), s, "attack"); !errors.Is(err, ErrGameOver) {
		t.Errorf("Expected ErrGameOver, got %v", err)
	}
}

func TestStep_Endings(t *testing.T) {
	tests := []struct {
		name    string
		inputs  []string
		outcome string
		message string
	}{
		{"death", []string{"Ada", "left", "enter", "go-back"}, models.OutcomeDeath, "Game over!"},
		{"victory", []string{"Ada", "left", "enter", "open-it"}, models.OutcomeVictory, "Congratulations!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, rec := newTestEngine(t)
			s := e.NewSession()
			turn := play(t, e, s, tt.inputs...)

			if !turn.Over || turn.Outcome != tt.outcome {
				t.Errorf("Expected outcome %s, got %+v", tt.outcome, turn)
			}
			if !hasLine(turn, tt.message) {
				t.Errorf("Expected %q, got %v", tt.message, turn.Lines)
			}
			if len(rec.records) != 1 || rec.records[0].Outcome != tt.outcome || rec.records[0].Health != 100 {
				t.Errorf("Unexpected records %+v", rec.records)
			}
		})
	}
}

func TestStep_SaveFailure(t *testing.T) {
	e, rec := newTestEngine(t)
	rec.saveErr = errors.New("disk full")
	s := e.NewSession()
	play(t, e, s, "Ada", "left", "enter")

	turn, err := e.Step(context.Background(), s, "go-back")
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("Expected save error, got %v", err)
	}
	if !turn.Over || s.Phase != PhaseOver {
		t.Errorf("Expected the game to be over regardless, got %+v", turn)
	}
}

func TestStep_MissingScene(t *testing.T) {
	e, _ := newTestEngine(t)
	s := e.NewSession()
	play(t, e, s, "Ada")
	s.Player.SceneID = "nowhere"

	if _, err := e.Step(context.Background(), s, "left"); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	e, _ := newTestEngine(t)
	a := e.NewSession()
	b := e.NewSession()

	play(t, e, a, "Ada", "right", "talk", "yes", "search")
	play(t, e, b, "Bo")

	if a.ID == b.ID {
		t.Error("Expected distinct session ids")
	}
	if b.Player.SceneID != "forest" || b.Player.Inventory.Len() != 0 {
		t.Errorf("Expected second session untouched, got %+v", b.Player)
	}
}

func TestNew_NilRecorder(t *testing.T) {
	c, err := catalog.Default()
	if err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}
	e := New(c, nil, nil)
	s := e.NewSession()

	turn := play(t, e, s, "Ada", "left", "enter", "open-it")
	if !turn.Over {
		t.Error("Expected the game to end without a recorder")
	}
}

func TestSessionClone(t *testing.T) {
	e, _ := newTestEngine(t)
	s := e.NewSession()
	play(t, e, s, "Ada", "right", "talk", "yes", "search", "explore")

	c := s.Clone()
	play(t, e, c, "attack")

	if s.Battle.Enemy.Health != 50 || s.Player.Health != 100 {
		t.Errorf("Expected source session untouched, got enemy %d player %d", s.Battle.Enemy.Health, s.Player.Health)
	}
	if c.Battle.Enemy.Health != 35 || c.Player.Health != 90 {
		t.Errorf("Expected clone to advance, got enemy %d player %d", c.Battle.Enemy.Health, c.Player.Health)
	}

	c.Player.Inventory.Add("shield")
	if s.Player.Inventory.Has("shield") {
		t.Error("Expected inventories to be independent")
	}
	if c.ID != s.ID {
		t.Error("Expected clone to keep the session id")
	}
}
