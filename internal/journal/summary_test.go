package journal

import (
	"testing"
	"time"
)

func TestFormatRelativeTime(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)

	tests := map[string]struct {
		at   time.Time
		want string
	}{
		"seconds":  {at: now.Add(-30 * time.Second), want: "just now"},
		"1 minute": {at: now.Add(-time.Minute), want: "1 minute ago"},
		"minutes":  {at: now.Add(-5 * time.Minute), want: "5 minutes ago"},
		"hours":    {at: now.Add(-3 * time.Hour), want: "3 hours ago"},
		"1 day":    {at: now.Add(-25 * time.Hour), want: "1 day ago"},
		"old":      {at: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), want: "Jan 2, 2024"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if got := FormatRelativeTime(tc.at, now); got != tc.want {
				t.Errorf("FormatRelativeTime() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSessionIcon(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		session *Session
		want    string
	}{
		"nil":    {session: nil, want: "❓"},
		"empty":  {session: &Session{}, want: "❓"},
		"added":  {session: &Session{Metadata: SessionMetadata{AddedTurns: 1}, Turns: []Turn{{}}}, want: "✅"},
		"failed": {session: &Session{Metadata: SessionMetadata{FailedTurns: 1}, Turns: []Turn{{}}}, want: "⚠️"},
		"shows":  {session: &Session{Turns: []Turn{{Kind: "shows"}}}, want: "📺"},
		"movies": {session: &Session{Turns: []Turn{{Kind: "movies"}}}, want: "🎬"},
		"other":  {session: &Session{Turns: []Turn{{Intent: "LaunchRequest"}}}, want: "💬"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if got := SessionIcon(tc.session); got != tc.want {
				t.Errorf("SessionIcon() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSummaries(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)
	j, _ := newTestJournal(t, now.Add(-2*time.Hour))
	j.Record("conv", "serve", Turn{Intent: "AddShow", Kind: "shows", Outcome: OutcomeAdded})
	if err := j.End("conv"); err != nil {
		t.Fatal(err)
	}
	j.now = func() time.Time { return now }

	summaries, err := j.Summaries()
	if err != nil {
		t.Fatalf("Summaries() error = %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("Summaries() returned %d entries", len(summaries))
	}
	s := summaries[0]
	if s.RelativeTime != "2 hours ago" || s.Icon != "✅" || s.FilePath == "" {
		t.Errorf("unexpected summary %+v", s)
	}
}

func TestOutcomeIcon(t *testing.T) {
	t.Parallel()
	seen := map[string]Outcome{}
	for _, o := range []Outcome{OutcomeAnswered, OutcomePrompted, OutcomeAdded, OutcomeDeclined, OutcomeInvalid, OutcomeFailed} {
		icon := OutcomeIcon(o)
		if prev, dup := seen[icon]; dup {
			t.Errorf("outcomes %s and %s share icon %s", prev, o, icon)
		}
		seen[icon] = o
	}
	if OutcomeIcon("mystery") != "•" {
		t.Error("unknown outcome should use the bullet icon")
	}
}
