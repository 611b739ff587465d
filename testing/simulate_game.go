package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/felwinter/trails/internal/catalog"
	"github.com/felwinter/trails/internal/config"
	"github.com/felwinter/trails/internal/engine"
	"github.com/felwinter/trails/internal/models"
	"github.com/felwinter/trails/internal/store"
)

const (
	maxTurns = 40
	games    = 3
)

// chooser picks the next input for a player standing in scene.
type chooser func(ctx context.Context, scene models.Scene, player models.Player, history []string) string

func main() {
	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	c, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	st, err := store.Open(ctx, cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	eng := engine.New(c, st, logger)

	// Initialize the player: an LLM when a key is configured, dice otherwise.
	choose := randomPlayer()
	if cfg.NarrationEnabled() {
		client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
		if err != nil {
			log.Fatalf("Failed to create player client: %v", err)
		}
		defer client.Close()
		choose = llmPlayer(client.GenerativeModel(cfg.NarrationModel))
	}

	outcomes := map[string]int{}
	for game := 1; game <= games; game++ {
		fmt.Printf("=== Game %d ===\n", game)
		outcome := playGame(ctx, eng, choose, fmt.Sprintf("Simulated Player %d", game))
		outcomes[outcome]++
		fmt.Println()
	}

	fmt.Printf("Results: %d victories, %d deaths, %d unfinished\n",
		outcomes[models.OutcomeVictory], outcomes[models.OutcomeDeath], outcomes[""])
}

func playGame(ctx context.Context, eng *engine.Engine, choose chooser, name string) string {
	s := eng.NewSession()
	intro, err := eng.Intro(s)
	if err != nil {
		log.Fatalf("Failed to describe start scene: %v", err)
	}
	printTurn(intro)

	var history []string
	action := name
	for turn := 1; turn <= maxTurns; turn++ {
		fmt.Printf("--- Turn %d: %s ---\n", turn, action)
		t, err := eng.Step(ctx, s, action)
		if err != nil {
			fmt.Printf("Error processing turn: %v\n", err)
			return ""
		}
		printTurn(t)
		history = append(history, action)

		if t.Over {
			fmt.Printf("Game Ended: %s (health %d, inventory %v)\n", t.Outcome, s.Player.Health, s.Player.Inventory.Items())
			return t.Outcome
		}

		scene, err := eng.CurrentScene(s)
		if err != nil {
			fmt.Printf("Error reading scene: %v\n", err)
			return ""
		}
		action = choose(ctx, scene, s.Player, history)
	}
	fmt.Println("Game Ended: turn limit reached")
	return ""
}

func printTurn(t engine.Turn) {
	for _, l := range t.Lines {
		fmt.Println(l)
	}
}

func randomPlayer() chooser {
	return func(_ context.Context, scene models.Scene, _ models.Player, _ []string) string {
		if rand.Intn(2) == 0 {
			return scene.Choice1
		}
		return scene.Choice2
	}
}

func llmPlayer(model *genai.GenerativeModel) chooser {
	fallback := randomPlayer()
	return func(ctx context.Context, scene models.Scene, player models.Player, history []string) string {
		prompt := fmt.Sprintf(`You are playing a text-based adventure game.
Scene: %s
Health: %d
Inventory: %v
Your previous moves: %s

Answer with exactly one of these words: %q or %q. Return ONLY the word.`,
			scene.Description,
			player.Health,
			player.Inventory.Items(),
			strings.Join(history, ", "),
			scene.Choice1,
			scene.Choice2,
		)

		resp, err := model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
			return fallback(ctx, scene, player, history)
		}
		return strings.Trim(strings.TrimSpace(fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])), `'".`)
	}
}
