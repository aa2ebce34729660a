// Package theme holds the colors, styles and icons shared by libby's
// terminal views.
package theme

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// IconMode selects which glyphs the views draw.
type IconMode string

const (
	IconsAuto  IconMode = "auto"
	IconsEmoji IconMode = "emoji"
	IconsASCII IconMode = "ascii"
)

// ParseIconMode accepts "auto", "emoji" or "ascii". Empty means auto.
func ParseIconMode(s string) (IconMode, error) {
	switch mode := IconMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case "":
		return IconsAuto, nil
	case IconsAuto, IconsEmoji, IconsASCII:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown icon mode %q (want auto, emoji or ascii)", s)
	}
}

// Colors is the palette every style is derived from.
type Colors struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Accent     lipgloss.Color
	Background lipgloss.Color
	Muted      lipgloss.Color
	Success    lipgloss.Color
	Error      lipgloss.Color
}

var palette = Colors{
	Primary:    lipgloss.Color("#2f4b7c"),
	Secondary:  lipgloss.Color("#4f6fa8"),
	Accent:     lipgloss.Color("#f2a541"),
	Background: lipgloss.Color("#f7f7f2"),
	Muted:      lipgloss.Color("#9ba8c0"),
	Success:    lipgloss.Color("#5dc796"),
	Error:      lipgloss.Color("#e5535b"),
}

type Theme struct {
	colors Colors
	mode   IconMode
	icons  map[string]string
}

// Option configures a Theme during construction.
type Option func(*Theme)

// WithIcons picks the icon set. IconsAuto uses ASCII over SSH and on
// Windows consoles, emoji elsewhere.
func WithIcons(mode IconMode) Option {
	return func(t *Theme) { t.mode = mode }
}

// New builds a theme with the libby palette.
func New(opts ...Option) Theme {
	t := Theme{colors: palette, mode: IconsAuto}
	for _, opt := range opts {
		opt(&t)
	}

	t.icons = emojiIcons
	switch t.mode {
	case IconsASCII:
		t.icons = asciiIcons
	case IconsEmoji:
	default:
		t.mode = IconsAuto
		if limitedTerminal(os.Getenv, runtime.GOOS) {
			t.icons = asciiIcons
		}
	}
	return t
}

func Default() Theme {
	return New()
}

func (t Theme) Colors() Colors {
	return t.colors
}

// IconMode reports the mode the theme was built with.
func (t Theme) IconMode() IconMode {
	return t.mode
}

// Icon returns the glyph for name, falling back to its ASCII form.
func (t Theme) Icon(name string) string {
	if icon, ok := t.icons[name]; ok {
		return icon
	}
	return asciiIcons[name]
}

// HeaderStyle is the full-width title bar.
func (t Theme) HeaderStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Background(t.colors.Primary).
		Foreground(t.colors.Background).
		Align(lipgloss.Center)
}

// StatusBarStyle is the one-line footer.
func (t Theme) StatusBarStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Background(t.colors.Secondary).
		Foreground(t.colors.Background).
		Padding(0, 1)
}

// PanelStyle is the rounded box around lists and transcripts.
func (t Theme) PanelStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.colors.Accent).
		Padding(1)
}

// BadgeKind picks a badge color.
type BadgeKind int

const (
	BadgeInfo BadgeKind = iota
	BadgeSuccess
	BadgeError
	BadgeMuted
)

// Badge renders text as a small colored tag.
func (t Theme) Badge(kind BadgeKind, text string) string {
	bg := t.colors.Accent
	switch kind {
	case BadgeSuccess:
		bg = t.colors.Success
	case BadgeError:
		bg = t.colors.Error
	case BadgeMuted:
		bg = t.colors.Muted
	}
	return lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1).
		Background(bg).
		Foreground(t.colors.Background).
		Render(text)
}

// Speaker identifies who said a console line.
type Speaker int

const (
	SpeakerUser Speaker = iota
	SpeakerSkill
	SpeakerSystem
)

// SpeakerStyle returns the label style for a console transcript line.
func (t Theme) SpeakerStyle(who Speaker) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)
	switch who {
	case SpeakerUser:
		return base.Foreground(t.colors.Accent)
	case SpeakerSkill:
		return base.Foreground(t.colors.Secondary)
	default:
		return base.Foreground(t.colors.Muted).Italic(true)
	}
}

// limitedTerminal reports sessions where emoji widths are unreliable.
func limitedTerminal(getenv func(string) string, goos string) bool {
	for _, key := range []string{"SSH_CLIENT", "SSH_TTY", "SSH_CONNECTION"} {
		if getenv(key) != "" {
			return true
		}
	}
	return goos == "windows"
}

var emojiIcons = map[string]string{
	"user":     "🗣️",
	"card":     "🪪",
	"image":    "🖼️",
	"prompt":   "❔",
	"answered": "💬",
	"added":    "✅",
	"declined": "🚫",
	"invalid":  "✏️",
	"failed":   "⚠️",
	"unknown":  "❓",
}

var asciiIcons = map[string]string{
	"user":     ">",
	"card":     "[C]",
	"image":    "[I]",
	"prompt":   "[?]",
	"answered": "[-]",
	"added":    "[+]",
	"declined": "[x]",
	"invalid":  "[~]",
	"failed":   "[!]",
	"unknown":  "[?]",
}
