// Package history is a two-pane browser over recorded conversations.
package history

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Digital-Shane/libby/internal/journal"
	"github.com/Digital-Shane/libby/internal/tui/components"
	"github.com/Digital-Shane/libby/internal/tui/theme"
	"github.com/Digital-Shane/treeview"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DeleteFunc removes a stored session file.
type DeleteFunc func(path string) error

// DeleteCompleteMsg is emitted when a session deletion finishes.
type DeleteCompleteMsg struct {
	path string
	err  error
}

func (d DeleteCompleteMsg) Err() error { return d.err }

// Model browses journal sessions and can delete the focused one.
type Model struct {
	*treeview.TuiTreeModel[journal.SessionSummary]
	confirming  bool
	deleting    bool
	deleted     bool
	deleteErr   error
	deletedName string
	width       int
	height      int
	splitRatio  float64
	theme       theme.Theme
	deleteFn    DeleteFunc

	detailsViewport *viewport.Model
	detailsFocused  bool
}

type Option func(*Model)

// WithTheme overrides the default theme.
func WithTheme(th theme.Theme) Option {
	return func(m *Model) {
		m.theme = th
	}
}

// WithDelete sets how sessions are deleted. Without it deletion is disabled.
func WithDelete(fn DeleteFunc) Option {
	return func(m *Model) {
		m.deleteFn = fn
	}
}

// NewTree builds one node per session summary, newest first as given.
func NewTree(summaries []journal.SessionSummary) *treeview.Tree[journal.SessionSummary] {
	nodes := make([]*treeview.Node[journal.SessionSummary], 0, len(summaries))
	for _, summary := range summaries {
		meta := summary.Session.Metadata
		name := fmt.Sprintf("%s %s - %s (%d turn%s)",
			summary.Icon,
			sessionLabel(summary.Session),
			summary.RelativeTime,
			meta.TotalTurns,
			plural(meta.TotalTurns))
		nodes = append(nodes, treeview.NewNode(meta.SessionID, name, summary))
	}
	return treeview.NewTree(nodes)
}

// sessionLabel names a session by the first title asked about.
func sessionLabel(s *journal.Session) string {
	for _, turn := range s.Turns {
		if turn.Title != "" {
			return turn.Title
		}
	}
	if s.Metadata.Source != "" {
		return s.Metadata.Source
	}
	return "conversation"
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func (m *Model) colors() theme.Colors {
	return m.theme.Colors()
}

func (m *Model) sizedPanel(width, height int, borderColor lipgloss.Color) lipgloss.Style {
	style := m.theme.PanelStyle()
	if borderColor != "" {
		style = style.BorderForeground(borderColor)
	}
	if width > 0 {
		style = style.Width(max(width-style.GetHorizontalFrameSize(), 0))
	}
	if height > 0 {
		style = style.Height(max(height-style.GetVerticalFrameSize(), 0))
	}
	return style.Padding(0, 1)
}

// New creates the history browser over tree.
func New(tree *treeview.Tree[journal.SessionSummary], opts ...Option) *Model {
	m := &Model{
		width:      80,
		height:     24,
		splitRatio: 0.5,
	}

	for _, opt := range append([]Option{WithTheme(theme.Default())}, opts...) {
		opt(m)
	}

	keyMap := treeview.DefaultKeyMap()
	keyMap.SearchStart = []string{}
	keyMap.Reset = []string{}

	treeWidth := m.treeWidth()
	m.TuiTreeModel = treeview.NewTuiTreeModel(tree,
		treeview.WithTuiWidth[journal.SessionSummary](treeWidth),
		treeview.WithTuiHeight[journal.SessionSummary](m.height-4),
		treeview.WithTuiAllowResize[journal.SessionSummary](true),
		treeview.WithTuiDisableNavBar[journal.SessionSummary](true),
		treeview.WithTuiKeyMap[journal.SessionSummary](keyMap),
	)

	m.detailsViewport = components.NewViewport(m.width-treeWidth-6, m.height-8, m.theme)
	return m
}

func (m *Model) treeWidth() int {
	return int(float64(m.width)*m.splitRatio) - 2
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		treeWidth := m.treeWidth()
		treeModel, cmd := m.TuiTreeModel.Update(tea.WindowSizeMsg{Width: treeWidth, Height: m.height - 4})
		m.TuiTreeModel = treeModel.(*treeview.TuiTreeModel[journal.SessionSummary])
		components.Resize(m.detailsViewport, m.width-treeWidth-6, m.height-8)
		return m, cmd

	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "esc", "ctrl+c", "q":
			return m, tea.Quit

		case "tab":
			m.detailsFocused = !m.detailsFocused
			return m, nil

		case "enter", "d":
			if m.deleteFn == nil || m.deleting {
				return m, nil
			}
			if m.confirming {
				if node := m.TuiTreeModel.Tree.GetFocusedNode(); node != nil {
					m.confirming = false
					m.deleting = true
					return m, m.performDelete(*node.Data())
				}
				return m, nil
			}
			m.confirming = true
			return m, nil

		case "n", "N":
			m.confirming = false
			return m, nil
		}

		if m.detailsFocused && components.Scroll(m.detailsViewport, key) {
			return m, nil
		}

	case DeleteCompleteMsg:
		m.deleting = false
		m.deleted = true
		m.deleteErr = msg.err
		m.deletedName = msg.path
		return m, nil
	}

	if !m.confirming && !m.deleting && !m.detailsFocused {
		treeModel, cmd := m.TuiTreeModel.Update(msg)
		m.TuiTreeModel = treeModel.(*treeview.TuiTreeModel[journal.SessionSummary])
		return m, cmd
	}
	return m, nil
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.theme.HeaderStyle().Width(m.width).Render("Libby Conversation History"))
	b.WriteByte('\n')

	switch {
	case m.deleted:
		text := "Session deleted"
		if m.deleteErr != nil {
			text = fmt.Sprintf("Delete failed: %v", m.deleteErr)
		}
		b.WriteString(m.theme.StatusBarStyle().Width(m.width).Render(text))
		b.WriteByte('\n')
		b.WriteString(lipgloss.NewStyle().
			Width(m.width).
			Align(lipgloss.Center).
			Foreground(m.colors().Muted).
			Render("Press 'q' or 'esc' to exit"))

	case m.deleting:
		b.WriteString(m.theme.StatusBarStyle().Width(m.width).Render("Deleting session..."))
		b.WriteByte('\n')

	case m.confirming:
		if node := m.TuiTreeModel.Tree.GetFocusedNode(); node != nil {
			b.WriteString(m.renderConfirmation(*node.Data()))
		}

	default:
		b.WriteString(m.renderMainView())
	}

	return b.String()
}

func (m *Model) renderMainView() string {
	leftWidth := int(float64(m.width) * m.splitRatio)
	rightWidth := m.width - leftWidth

	content := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderSessionList(leftWidth, m.height-3),
		m.renderSessionPreview(rightWidth, m.height-3))

	focusInfo := "Tab: Details Focus | "
	if m.detailsFocused {
		focusInfo = "Tab: List Focus | "
	}
	instruction := focusInfo + "↑↓ Navigate | PgUp/PgDn: Page"
	if m.deleteFn != nil {
		instruction += " | Enter: Delete"
	}
	instruction += " | Esc: Quit"

	return content + "\n" + lipgloss.NewStyle().
		Italic(true).
		Width(m.width).
		Align(lipgloss.Center).
		Foreground(m.colors().Muted).
		Render(instruction)
}

func (m *Model) renderSessionList(width, height int) string {
	colors := m.colors()
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(colors.Primary).
		Width(max(width-4, 0)).
		Align(lipgloss.Center).
		Render("Conversations")

	return m.sizedPanel(width, height, colors.Primary).Render(title + "\n" + m.TuiTreeModel.View())
}

func (m *Model) renderSessionPreview(width, height int) string {
	if node := m.TuiTreeModel.Tree.GetFocusedNode(); node != nil {
		m.detailsViewport.SetContent(m.formatSessionDetails(*node.Data(), m.detailsViewport.Width))
	} else {
		m.detailsViewport.SetContent(lipgloss.NewStyle().
			Italic(true).
			Foreground(m.colors().Muted).
			Render("Select a conversation to view details"))
	}

	colors := m.colors()
	scrollIndicator := ""
	if m.detailsViewport.TotalLineCount() > m.detailsViewport.Height {
		if m.detailsFocused {
			scrollIndicator = " [Use Tab+↑↓]"
		} else {
			scrollIndicator = " [Tab to scroll]"
		}
	}
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(colors.Secondary).
		Width(max(width-4, 0)).
		Align(lipgloss.Center).
		Render("Details" + scrollIndicator)

	return m.sizedPanel(width, height, colors.Secondary).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, "", m.detailsViewport.View()))
}

func (m *Model) formatSessionDetails(summary journal.SessionSummary, width int) string {
	var b strings.Builder
	session := summary.Session
	meta := session.Metadata
	colors := m.colors()

	label := lipgloss.NewStyle().Bold(true).Foreground(colors.Accent)
	value := lipgloss.NewStyle().Foreground(colors.Primary)
	indent := lipgloss.NewStyle().MarginLeft(2)

	field := func(name, v string) {
		b.WriteString(label.Render(name + ": "))
		b.WriteString(value.Render(v))
		b.WriteByte('\n')
	}

	field("Source", meta.Source)
	field("Conversation", truncate(meta.ConversationID, width-16))
	b.WriteByte('\n')
	field("Time", summary.RelativeTime)
	field("Date", meta.Timestamp.Format("2006-01-02 15:04:05"))
	b.WriteByte('\n')

	b.WriteString(label.Render("Turns:"))
	b.WriteByte('\n')
	b.WriteString(indent.Render(value.Render(fmt.Sprintf("Total: %d\nAdded: %d\nFailed: %d",
		meta.TotalTurns, meta.AddedTurns, meta.FailedTurns))))
	b.WriteString("\n\n")

	if len(session.Turns) > 0 {
		b.WriteString(label.Render("Transcript:"))
		b.WriteByte('\n')
		for _, turn := range session.Turns {
			badge := m.outcomeBadge(turn.Outcome)
			line := fmt.Sprintf("%s %s", m.outcomeIcon(turn.Outcome), formatIntent(turn))
			b.WriteString(indent.Render(truncate(line, width-6-lipgloss.Width(badge)) + " " + badge))
			b.WriteByte('\n')
			if turn.Speech != "" {
				b.WriteString(indent.Render(lipgloss.NewStyle().
					Foreground(colors.Muted).
					Width(max(width-6, 10)).
					Render("“" + turn.Speech + "”")))
				b.WriteByte('\n')
			}
			if turn.Error != "" {
				b.WriteString(indent.Render(lipgloss.NewStyle().Foreground(colors.Error).Render(truncate(turn.Error, width-6))))
				b.WriteByte('\n')
			}
		}
	}

	b.WriteByte('\n')
	b.WriteString(label.Render("Session ID: "))
	b.WriteString(lipgloss.NewStyle().Foreground(colors.Muted).Italic(true).Render(meta.SessionID))
	return b.String()
}

func (m *Model) outcomeIcon(o journal.Outcome) string {
	switch o {
	case journal.OutcomeAnswered, journal.OutcomeAdded, journal.OutcomeDeclined, journal.OutcomeInvalid, journal.OutcomeFailed:
		return m.theme.Icon(string(o))
	case journal.OutcomePrompted:
		return m.theme.Icon("prompt")
	default:
		return m.theme.Icon("unknown")
	}
}

func (m *Model) outcomeBadge(o journal.Outcome) string {
	kind := theme.BadgeInfo
	switch o {
	case journal.OutcomeAdded:
		kind = theme.BadgeSuccess
	case journal.OutcomeFailed, journal.OutcomeInvalid:
		kind = theme.BadgeError
	case journal.OutcomeDeclined:
		kind = theme.BadgeMuted
	}
	if o == "" {
		o = "unknown"
	}
	return m.theme.Badge(kind, string(o))
}

// formatIntent renders "FindMovie heat (releaseDate=1995)" style lines.
func formatIntent(turn journal.Turn) string {
	var b strings.Builder
	b.WriteString(turn.Intent)
	if turn.Title != "" {
		b.WriteString(" ")
		b.WriteString(turn.Title)
	}

	var extra []string
	for k, v := range turn.Slots {
		if v == "" || v == turn.Title {
			continue
		}
		extra = append(extra, k+"="+v)
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		b.WriteString(" (" + strings.Join(extra, ", ") + ")")
	}
	return b.String()
}

func truncate(s string, maxWidth int) string {
	if maxWidth <= 3 || lipgloss.Width(s) <= maxWidth {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+3 > maxWidth {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}

func (m *Model) renderConfirmation(summary journal.SessionSummary) string {
	meta := summary.Session.Metadata
	colors := m.colors()

	box := m.theme.PanelStyle().
		BorderForeground(colors.Error).
		Padding(1, 2).
		Width(60).
		Align(lipgloss.Center).
		Background(colors.Background)

	text := fmt.Sprintf(
		"Delete Conversation\n\n"+
			"About: %s\n"+
			"Time: %s\n"+
			"Turns: %d (Added: %d, Failed: %d)\n\n"+
			"Press ENTER to confirm or 'n' to cancel",
		sessionLabel(summary.Session),
		summary.RelativeTime,
		meta.TotalTurns,
		meta.AddedTurns,
		meta.FailedTurns)

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height-2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(box.Render(text))
}

func (m *Model) performDelete(summary journal.SessionSummary) tea.Cmd {
	fn := m.deleteFn
	return func() tea.Msg {
		return DeleteCompleteMsg{path: summary.FilePath, err: fn(summary.FilePath)}
	}
}
