package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/felwinter/trails/internal/engine"
	"github.com/felwinter/trails/internal/narrator"
)

type sessionState int

const (
	statePlaying sessionState = iota
	stateWaiting
	stateOver
	stateError
)

type model struct {
	state     sessionState
	title     string
	engine    *engine.Engine
	narrator  narrator.Narrator
	logger    *slog.Logger
	session   *engine.Session
	textInput textinput.Model
	viewport  viewport.Model
	err       error
	gameLog   string
	width     int
	height    int
}

var (
	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#5F5F87")).
			Bold(true).
			PaddingLeft(1)

	gameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#D7875F"))

	narrationStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87AFAF")).
			Italic(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	stateStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(2).
			Foreground(lipgloss.Color("#AAAAAA"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true).
			Underline(true)
)

// NewModel starts a fresh session and shows its opening scene.
func NewModel(eng *engine.Engine, narr narrator.Narrator, title string, logger *slog.Logger) model {
	if narr == nil {
		narr = narrator.Plain{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 64
	ti.Width = 40

	m := model{
		title:     title,
		engine:    eng,
		narrator:  narr,
		logger:    logger,
		textInput: ti,
		viewport:  viewport.New(60, 20),
		width:     80,
		height:    26,
	}
	m.reset()
	return m
}

// reset starts a new session, discarding the current one.
func (m *model) reset() {
	m.session = m.engine.NewSession()
	m.state = statePlaying
	m.err = nil
	m.gameLog = titleStyle.Render(m.title) + "\n\n"
	m.textInput.Reset()
	m.textInput.Placeholder = "Enter your name..."

	intro, err := m.engine.Intro(m.session)
	if err != nil {
		m.err = err
		m.state = stateError
		return
	}
	m.appendLines(intro.Lines, gameStyle)
	m.refresh()
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

type turnProcessedMsg struct {
	session *engine.Session
	turn    engine.Turn
	err     error
}

type narrationMsg struct {
	sessionID string
	sceneID   string
	text      string
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyEnter:
			if m.state == stateWaiting || m.state == stateError {
				return m, nil
			}
			action := strings.TrimSpace(m.textInput.Value())
			m.textInput.Reset()

			switch action {
			case "/quit":
				return m, tea.Quit
			case "/restart":
				m.reset()
				return m, nil
			}

			if m.state == stateOver {
				m.appendLines([]string{"The game has ended. Type /restart to play again or /quit to leave."}, helpStyle)
				m.refresh()
				return m, nil
			}

			styledAction := userStyle.Width(m.logWidth()).Render("> " + action)
			m.gameLog += "\n" + styledAction + "\n\n"
			m.refresh()
			m.state = stateWaiting
			return m, m.processTurn(action)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = m.logWidth()
		m.viewport.Height = max(msg.Height-6, 3)
		m.refresh()

	case turnProcessedMsg:
		m.session = msg.session
		style := gameStyle
		if msg.turn.Invalid {
			style = warnStyle
		}
		m.appendLines(msg.turn.Lines, style)

		switch {
		case msg.err != nil:
			m.err = msg.err
			m.state = stateError
			m.logger.Error("turn failed", "session_id", m.session.ID, "error", msg.err)
		case msg.turn.Over:
			m.state = stateOver
			m.textInput.Placeholder = "/restart or /quit"
		default:
			m.state = statePlaying
			m.textInput.Placeholder = m.placeholder()
		}
		m.refresh()

		if msg.err == nil && !msg.turn.Invalid && !msg.turn.Over {
			return m, m.narrate()
		}
		return m, nil

	case narrationMsg:
		if msg.text != "" && msg.sessionID == m.session.ID && msg.sceneID == m.session.Player.SceneID {
			m.appendLines([]string{msg.text}, narrationStyle)
			m.refresh()
		}
		return m, nil
	}

	if m.state != stateError {
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m model) View() string {
	var s string

	switch m.state {
	case stateError:
		s = fmt.Sprintf("\n  Error: %v\n\nPress Esc to quit.", m.err)

	default:
		mainView := lipgloss.JoinHorizontal(lipgloss.Top,
			m.viewport.View(),
			m.renderState(),
		)

		help := helpStyle.Render("Commands: /restart, /quit, or type one of the choices.")

		s = lipgloss.JoinVertical(lipgloss.Left,
			mainView,
			"\n"+m.textInput.View(),
			"\n"+help,
		)
	}

	return "\n" + s + "\n"
}

func (m model) renderState() string {
	if m.session == nil {
		return ""
	}
	p := m.session.Player

	location := titleStyle.Render("LOCATION") + "\n" + p.SceneID + "\n\n"

	stats := titleStyle.Render("STATS") + "\n"
	name := p.Name
	if name == "" {
		name = "(unnamed)"
	}
	stats += fmt.Sprintf("Name: %s\nHealth: %d\n\n", name, p.Health)

	inventory := titleStyle.Render("INVENTORY") + "\n"
	if p.Inventory.Len() == 0 {
		inventory += "(empty)\n"
	} else {
		for _, item := range p.Inventory.Items() {
			inventory += "- " + item + "\n"
		}
	}

	enemy := ""
	if b := m.session.Battle; b != nil {
		enemy = "\n" + titleStyle.Render("ENEMY") + "\n" +
			fmt.Sprintf("%s\nHealth: %d\nAttack: %d\n", b.Enemy.Name, b.Enemy.Health, b.Enemy.AttackPower)
	}

	content := location + stats + inventory + enemy

	stateWidth := int(float64(m.width) * 0.23)
	return stateStyle.Width(stateWidth).Height(m.viewport.Height).Render(content)
}

func (m model) placeholder() string {
	scene, err := m.engine.CurrentScene(m.session)
	if err != nil || !scene.HasChoices() {
		return "What do you do?"
	}
	return scene.Choice1 + " or " + scene.Choice2
}

func (m model) logWidth() int {
	return int(float64(m.width) * 0.75)
}

func (m *model) appendLines(lines []string, style lipgloss.Style) {
	for _, l := range lines {
		m.gameLog += style.Width(m.logWidth()).Render(l) + "\n"
	}
}

func (m *model) refresh() {
	m.viewport.SetContent(m.gameLog)
	m.viewport.GotoBottom()
}

// processTurn steps a copy of the session so the update loop never shares
// state with the command goroutine.
func (m model) processTurn(action string) tea.Cmd {
	eng := m.engine
	session := m.session.Clone()
	return func() tea.Msg {
		turn, err := eng.Step(context.Background(), session, action)
		return turnProcessedMsg{session: session, turn: turn, err: err}
	}
}

func (m model) narrate() tea.Cmd {
	if _, plain := m.narrator.(narrator.Plain); plain {
		return nil
	}
	scene, err := m.engine.CurrentScene(m.session)
	if err != nil {
		return nil
	}
	narr, logger := m.narrator, m.logger
	player := m.session.Clone().Player
	sessionID := m.session.ID
	return func() tea.Msg {
		text, err := narr.Narrate(context.Background(), scene, player)
		if err != nil {
			logger.Warn("narration failed", "scene", scene.ID, "error", err)
			return nil
		}
		return narrationMsg{sessionID: sessionID, sceneID: scene.ID, text: text}
	}
}

// Run plays the game in the terminal until the player quits.
func Run(eng *engine.Engine, narr narrator.Narrator, title string, logger *slog.Logger) error {
	p := tea.NewProgram(NewModel(eng, narr, title, logger), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
