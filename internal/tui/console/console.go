// Package console is an interactive stand-in for the voice host: typed
// utterances become skill requests and replies are shown as a transcript.
package console

import (
	"context"
	"fmt"
	"strings"

	"github.com/Digital-Shane/libby/internal/skill"
	"github.com/Digital-Shane/libby/internal/tui/components"
	"github.com/Digital-Shane/libby/internal/tui/theme"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/mattn/go-runewidth"
)

// Handler answers one turn.
type Handler interface {
	Handle(ctx context.Context, req skill.Request) skill.Response
}

// ReplyMsg carries the skill's answer back into the update loop.
type ReplyMsg struct {
	Request  skill.Request
	Response skill.Response
}

type entry struct {
	who  theme.Speaker
	text string
}

type Model struct {
	ctx     context.Context
	handler Handler
	theme   theme.Theme
	newID   func() string

	input      textinput.Model
	transcript *viewport.Model
	entries    []entry

	sessionID string
	turns     int
	pending   *skill.PendingConfirmation
	busy      bool

	width  int
	height int
}

type Option func(*Model)

func WithTheme(th theme.Theme) Option {
	return func(m *Model) { m.theme = th }
}

// WithSessionIDs overrides how conversation ids are generated.
func WithSessionIDs(fn func() string) Option {
	return func(m *Model) { m.newID = fn }
}

// New creates a console that sends turns to handler.
func New(ctx context.Context, handler Handler, opts ...Option) *Model {
	m := &Model{
		ctx:     ctx,
		handler: handler,
		width:   80,
		height:  24,
		newID:   func() string { return "console-" + uuid.NewString() },
	}
	for _, opt := range append([]Option{WithTheme(theme.Default())}, opts...) {
		opt(m)
	}

	m.input = textinput.New()
	m.input.Placeholder = "find movie heat 1995 · add show severance · yes · no · help"
	m.input.Prompt = m.theme.Icon("user") + " "
	m.input.CharLimit = 200
	m.input.Focus()

	m.transcript = components.NewViewport(m.width, m.transcriptHeight(), m.theme)
	m.sessionID = m.newID()
	m.system("Type what you would say to the skill. Esc quits.")
	return m
}

func (m *Model) transcriptHeight() int {
	return m.height - 4
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(m.width-4, 10)
		components.Resize(m.transcript, m.width, m.transcriptHeight())
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c":
			return m, tea.Quit
		case "enter":
			return m, m.submit()
		case "pgup", "pgdown":
			components.Scroll(m.transcript, msg.String())
			return m, nil
		}

	case ReplyMsg:
		m.receive(msg)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit turns the typed line into a request and dispatches it.
func (m *Model) submit() tea.Cmd {
	if m.busy {
		return nil
	}
	text := strings.TrimSpace(m.input.Value())
	m.input.Reset()

	req, err := skill.ParseUtterance(text)
	if err != nil {
		m.system(err.Error())
		return nil
	}
	if text != "" {
		m.say(theme.SpeakerUser, text)
	}

	req.SessionID = m.sessionID
	req.Source = "console"
	req.NewSession = m.turns == 0
	req.Confirmation = m.pending
	m.turns++
	m.busy = true

	handler, ctx := m.handler, m.ctx
	return func() tea.Msg {
		return ReplyMsg{Request: req, Response: handler.Handle(ctx, req)}
	}
}

func (m *Model) receive(msg ReplyMsg) {
	m.busy = false
	resp := msg.Response

	if resp.Speech != "" {
		m.say(theme.SpeakerSkill, resp.Speech)
	}
	if resp.Card != nil {
		card := m.theme.Icon("card") + " " + resp.Card.Title
		if resp.Card.ImageURL != "" {
			card += "  " + m.theme.Icon("image") + " " + resp.Card.ImageURL
		}
		m.system(card)
	}

	if resp.EndSession {
		m.pending = nil
		m.sessionID = m.newID()
		m.turns = 0
		m.system("session ended")
		return
	}
	m.pending = resp.Confirmation
}

func (m *Model) say(who theme.Speaker, text string) {
	m.entries = append(m.entries, entry{who: who, text: text})
	m.refresh()
}

func (m *Model) system(text string) {
	m.say(theme.SpeakerSystem, text)
}

// refresh re-wraps the transcript to the current width and pins it to the
// latest line.
func (m *Model) refresh() {
	width := max(m.transcript.Width-m.transcript.Style.GetHorizontalFrameSize(), 20)

	var b strings.Builder
	for i, e := range m.entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		label := m.label(e.who)
		indent := strings.Repeat(" ", runewidth.StringWidth(label)+1)
		wrapped := runewidth.Wrap(e.text, max(width-runewidth.StringWidth(indent), 10))
		for j, line := range strings.Split(wrapped, "\n") {
			if j == 0 {
				b.WriteString(m.theme.SpeakerStyle(e.who).Render(label) + " " + line)
			} else {
				b.WriteString("\n" + indent + line)
			}
		}
	}
	m.transcript.SetContent(b.String())
	m.transcript.GotoBottom()
}

func (m *Model) label(who theme.Speaker) string {
	switch who {
	case theme.SpeakerUser:
		return "you:"
	case theme.SpeakerSkill:
		return "libby:"
	default:
		return "  ·"
	}
}

// Pending exposes the confirmation carried into the next turn.
func (m *Model) Pending() *skill.PendingConfirmation {
	return m.pending
}

func (m *Model) View() string {
	header := m.theme.HeaderStyle().Width(m.width).Render("Libby Console")
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.transcript.View(),
		m.statusBar(),
		m.input.View(),
	)
}

func (m *Model) statusBar() string {
	var status string
	switch {
	case m.busy:
		status = "thinking..."
	case m.pending != nil && m.pending.Validate() == nil:
		current := m.pending.Current()
		title := runewidth.Truncate(current.DisplayTitle(), max(m.width-30, 10), "…")
		status = fmt.Sprintf("%s %s %s [%d/%d]",
			m.theme.Icon("prompt"), m.theme.Badge(theme.BadgeInfo, "awaiting yes/no"),
			title, m.pending.Cursor+1, len(m.pending.Candidates))
	default:
		status = "ready"
	}
	return m.theme.StatusBarStyle().Width(m.width).Render(status)
}
