// Package narrator produces optional flavor text for scenes.
package narrator

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/felwinter/trails/internal/models"
)

//go:embed prompts/narrate_scene.txt
var narrateScenePrompt string

var narrateTmpl = template.Must(template.New("narrate_scene").
	Funcs(template.FuncMap{"join": strings.Join}).
	Parse(narrateScenePrompt))

// Narrator embellishes a scene with a line of atmosphere. An empty result
// means there is nothing to add.
type Narrator interface {
	Narrate(ctx context.Context, scene models.Scene, player models.Player) (string, error)
	Close() error
}

// Plain adds nothing. It is used when no model is configured.
type Plain struct{}

func (Plain) Narrate(context.Context, models.Scene, models.Player) (string, error) { return "", nil }

func (Plain) Close() error { return nil }

type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Gemini narrates with a Gemini model.
type Gemini struct {
	title  string
	client *genai.Client
	model  generator
}

// NewGemini connects to Gemini with the given API key and model name.
func NewGemini(ctx context.Context, apiKey, model, title string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	gm := client.GenerativeModel(model)
	gm.SetTemperature(0.8)
	gm.SetMaxOutputTokens(120)
	return &Gemini{title: title, client: client, model: gm}, nil
}

func (g *Gemini) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

func (g *Gemini) Narrate(ctx context.Context, scene models.Scene, player models.Player) (string, error) {
	prompt, err := renderPrompt(g.title, scene, player)
	if err != nil {
		return "", err
	}

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content returned from Gemini")
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response type from Gemini")
	}
	return strings.Join(strings.Fields(string(text)), " "), nil
}

func renderPrompt(title string, scene models.Scene, player models.Player) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Title  string
		Scene  models.Scene
		Player models.Player
		Items  []string
	}{
		Title:  title,
		Scene:  scene,
		Player: player,
		Items:  player.Inventory.Items(),
	}
	if err := narrateTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
