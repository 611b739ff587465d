package engine

import (
	"strings"

	"github.com/felwinter/trails/internal/models"
)

// Resolve matches input against the scene's two choices, ignoring case and
// surrounding space. It returns the next scene id, or false if the input
// matches neither choice.
func Resolve(scene models.Scene, input string) (string, bool) {
	if !scene.HasChoices() {
		return "", false
	}
	choice := strings.TrimSpace(input)
	switch {
	case strings.EqualFold(choice, scene.Choice1):
		return scene.Next1, true
	case strings.EqualFold(choice, scene.Choice2):
		return scene.Next2, true
	default:
		return "", false
	}
}

func describe(t *Turn, scene models.Scene) {
	t.say("%s", scene.Description)
	if scene.HasChoices() && !scene.IsBattle() {
		t.say("Choices: %s or %s", scene.Choice1, scene.Choice2)
	}
}

func describeBattle(t *Turn, scene models.Scene, p models.Player, enemy *models.Enemy) {
	t.say("Your health: %d", p.Health)
	t.say("%s's health: %d", enemy.Name, enemy.Health)
	t.say("Type '%s' to attack or '%s' to run away.", scene.Choice1, scene.Choice2)
}
