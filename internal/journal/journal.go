// Package journal records every handled conversation turn and persists one
// JSON file per conversation so past sessions can be browsed later.
package journal

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/Digital-Shane/libby/internal/config"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// Outcome classifies how a turn ended.
type Outcome string

const (
	OutcomeAnswered Outcome = "answered"
	OutcomePrompted Outcome = "prompted"
	OutcomeAdded    Outcome = "added"
	OutcomeDeclined Outcome = "declined"
	OutcomeInvalid  Outcome = "invalid"
	OutcomeFailed   Outcome = "failed"
)

// Turn is one request/response exchange.
type Turn struct {
	ID        string            `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	Intent    string            `json:"intent"`
	Slots     map[string]string `json:"slots,omitempty"`
	Kind      string            `json:"kind,omitempty"`
	Title     string            `json:"title,omitempty"`
	Speech    string            `json:"speech"`
	Outcome   Outcome           `json:"outcome"`
	Error     string            `json:"error,omitempty"`
}

// SessionMetadata describes one recorded conversation.
type SessionMetadata struct {
	SessionID      string    `json:"session_id"`
	ConversationID string    `json:"conversation_id"`
	Source         string    `json:"source"`
	Timestamp      time.Time `json:"timestamp"`
	TotalTurns     int       `json:"total_turns"`
	AddedTurns     int       `json:"added_turns"`
	FailedTurns    int       `json:"failed_turns"`
}

// Session is a conversation as written to disk.
type Session struct {
	Metadata SessionMetadata `json:"metadata"`
	Turns    []Turn          `json:"turns"`
}

// Journal collects turns per conversation and writes finished sessions to
// dir on fs. A disabled journal accepts calls and does nothing.
type Journal struct {
	fs      afero.Fs
	dir     string
	enabled bool
	now     func() time.Time

	mu   sync.Mutex
	open map[string]*Session
}

// New creates a journal writing under dir.
func New(fs afero.Fs, dir string, enabled bool) *Journal {
	return &Journal{
		fs:      fs,
		dir:     dir,
		enabled: enabled,
		now:     time.Now,
		open:    make(map[string]*Session),
	}
}

// Open builds the journal described by cfg under ~/.libby/logs and removes
// sessions older than the retention window.
func Open(cfg config.LoggingConfig) (*Journal, error) {
	home, err := config.Dir()
	if err != nil {
		return nil, err
	}
	j := New(afero.NewOsFs(), filepath.Join(home, "logs"), cfg.EnableJournal)
	if cfg.EnableJournal && cfg.JournalRetention > 0 {
		if _, err := j.Cleanup(cfg.JournalRetention); err != nil {
			return j, fmt.Errorf("failed to clean up old sessions: %w", err)
		}
	}
	return j, nil
}

// Enabled reports whether turns are being recorded.
func (j *Journal) Enabled() bool {
	return j != nil && j.enabled
}

// Record appends turn to the session for conversationID, starting one if
// needed.
func (j *Journal) Record(conversationID, source string, turn Turn) {
	if !j.Enabled() {
		return
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	session, ok := j.open[conversationID]
	if !ok {
		session = &Session{
			Metadata: SessionMetadata{
				SessionID:      uuid.NewString(),
				ConversationID: conversationID,
				Source:         source,
				Timestamp:      j.now(),
			},
			Turns: []Turn{},
		}
		j.open[conversationID] = session
	}

	if turn.Timestamp.IsZero() {
		turn.Timestamp = j.now()
	}
	turn.ID = fmt.Sprintf("%s_%d", session.Metadata.SessionID, len(session.Turns))
	session.Turns = append(session.Turns, turn)
}

// End writes the session for conversationID and forgets it.
func (j *Journal) End(conversationID string) error {
	if !j.Enabled() {
		return nil
	}

	j.mu.Lock()
	session, ok := j.open[conversationID]
	delete(j.open, conversationID)
	j.mu.Unlock()

	if !ok {
		return nil
	}
	return j.write(session)
}

// Flush writes every open session.
func (j *Journal) Flush() error {
	if !j.Enabled() {
		return nil
	}

	j.mu.Lock()
	ids := make([]string, 0, len(j.open))
	for id := range j.open {
		ids = append(ids, id)
	}
	j.mu.Unlock()

	var firstErr error
	for _, id := range ids {
		if err := j.End(id); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// OpenSessions returns the number of conversations not yet written.
func (j *Journal) OpenSessions() int {
	if j == nil {
		return 0
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.open)
}

func (j *Journal) write(session *Session) error {
	updateStats(session)

	if err := j.fs.MkdirAll(j.dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ts := session.Metadata.Timestamp
	name := fmt.Sprintf("%s.%03d_%s.json",
		ts.Format("2006-01-02_150405"),
		ts.Nanosecond()/1000000,
		shortID(session.Metadata.SessionID))

	if err := afero.WriteFile(j.fs, filepath.Join(j.dir, name), data, 0644); err != nil {
		return fmt.Errorf("failed to write log file: %w", err)
	}
	return nil
}

func updateStats(session *Session) {
	added, failed := 0, 0
	for _, turn := range session.Turns {
		switch turn.Outcome {
		case OutcomeAdded:
			added++
		case OutcomeFailed:
			failed++
		}
	}
	session.Metadata.TotalTurns = len(session.Turns)
	session.Metadata.AddedTurns = added
	session.Metadata.FailedTurns = failed
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// ReadSession loads one session file.
func (j *Journal) ReadSession(path string) (*Session, error) {
	data, err := afero.ReadFile(j.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read log file: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// files lists session files newest first.
func (j *Journal) files() ([]string, error) {
	exists, err := afero.DirExists(j.fs, j.dir)
	if err != nil || !exists {
		return nil, err
	}

	files, err := afero.Glob(j.fs, filepath.Join(j.dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list log files: %w", err)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(files)))
	return files, nil
}

// ReadSessions returns up to limit sessions, newest first. Unreadable files
// are skipped.
func (j *Journal) ReadSessions(limit int) ([]*Session, error) {
	files, err := j.files()
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}

	sessions := make([]*Session, 0, len(files))
	for _, file := range files {
		session, err := j.ReadSession(file)
		if err != nil {
			continue
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

// Cleanup removes session files older than retentionDays and returns how
// many were removed.
func (j *Journal) Cleanup(retentionDays int) (int, error) {
	files, err := j.files()
	if err != nil {
		return 0, err
	}

	cutoff := j.now().AddDate(0, 0, -retentionDays)
	removed := 0
	for _, file := range files {
		info, err := j.fs.Stat(file)
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := j.fs.Remove(file); err != nil {
				continue
			}
			removed++
		}
	}
	return removed, nil
}

// Delete removes one stored session file.
func (j *Journal) Delete(path string) error {
	if err := j.fs.Remove(path); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", filepath.Base(path), err)
	}
	return nil
}
