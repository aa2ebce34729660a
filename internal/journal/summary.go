package journal

import (
	"fmt"
	"time"
)

// SessionSummary is a stored session prepared for the history browser.
type SessionSummary struct {
	Session      *Session
	FilePath     string
	RelativeTime string
	Icon         string
}

// Summaries lists every stored session newest first, ready for display.
func (j *Journal) Summaries() ([]SessionSummary, error) {
	files, err := j.files()
	if err != nil {
		return nil, err
	}

	now := j.now()
	summaries := make([]SessionSummary, 0, len(files))
	for _, file := range files {
		session, err := j.ReadSession(file)
		if err != nil {
			continue
		}
		summaries = append(summaries, SessionSummary{
			Session:      session,
			FilePath:     file,
			RelativeTime: FormatRelativeTime(session.Metadata.Timestamp, now),
			Icon:         SessionIcon(session),
		})
	}
	return summaries, nil
}

// FormatRelativeTime renders t relative to now ("5 minutes ago").
func FormatRelativeTime(t, now time.Time) string {
	duration := now.Sub(t)
	switch {
	case duration < time.Minute:
		return "just now"
	case duration < time.Hour:
		mins := int(duration.Minutes())
		return fmt.Sprintf("%d minute%s ago", mins, plural(mins))
	case duration < 24*time.Hour:
		hours := int(duration.Hours())
		return fmt.Sprintf("%d hour%s ago", hours, plural(hours))
	case duration < 7*24*time.Hour:
		days := int(duration.Hours() / 24)
		return fmt.Sprintf("%d day%s ago", days, plural(days))
	default:
		return t.Format("Jan 2, 2006")
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// SessionIcon picks an icon for the session's most notable outcome.
func SessionIcon(s *Session) string {
	if s == nil || len(s.Turns) == 0 {
		return "❓"
	}
	switch {
	case s.Metadata.AddedTurns > 0:
		return "✅"
	case s.Metadata.FailedTurns > 0:
		return "⚠️"
	}
	switch s.Turns[0].Kind {
	case "shows":
		return "📺"
	case "movies":
		return "🎬"
	default:
		return "💬"
	}
}

// OutcomeIcon returns the icon shown next to a single turn.
func OutcomeIcon(o Outcome) string {
	switch o {
	case OutcomeAnswered:
		return "💬"
	case OutcomePrompted:
		return "❔"
	case OutcomeAdded:
		return "✅"
	case OutcomeDeclined:
		return "🚫"
	case OutcomeInvalid:
		return "✏️"
	case OutcomeFailed:
		return "⚠️"
	default:
		return "•"
	}
}
