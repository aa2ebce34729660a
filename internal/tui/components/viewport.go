package components

import (
	"github.com/Digital-Shane/libby/internal/tui/theme"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
)

// NewViewport constructs a borderless themed viewport.
func NewViewport(width, height int, th theme.Theme) *viewport.Model {
	vp := viewport.New(clamp(width), clamp(height))
	vp.Style = th.PanelStyle().
		BorderStyle(lipgloss.Border{}).
		BorderForeground(lipgloss.Color(""))
	return &vp
}

// Resize updates the viewport dimensions, never going negative.
func Resize(vp *viewport.Model, width, height int) {
	vp.Width = clamp(width)
	vp.Height = clamp(height)
}

// Scroll applies a navigation key to vp and reports whether it was one.
func Scroll(vp *viewport.Model, key string) bool {
	switch key {
	case "up":
		vp.ScrollUp(1)
	case "down":
		vp.ScrollDown(1)
	case "pgup":
		vp.HalfPageUp()
	case "pgdown":
		vp.HalfPageDown()
	case "home":
		vp.GotoTop()
	case "end":
		vp.GotoBottom()
	default:
		return false
	}
	return true
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
