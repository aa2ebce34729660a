package skill

import (
	"github.com/Digital-Shane/libby/internal/media"
)

// PendingConfirmation is the unanswered "add this?" offer carried between
// turns. Candidates holds every search result; Cursor points at the one
// currently offered.
type PendingConfirmation struct {
	ProviderKind media.Kind          `json:"providerKind"`
	Candidates   []media.MediaResult `json:"candidates"`
	Cursor       int                 `json:"cursor"`
}

// BuildReprompt wraps candidates for kind with the cursor on the first entry.
func BuildReprompt(candidates []media.MediaResult, kind media.Kind) PendingConfirmation {
	return PendingConfirmation{
		ProviderKind: kind,
		Candidates:   append([]media.MediaResult(nil), candidates...),
		Cursor:       0,
	}
}

// Validate reports a SessionStateError when p is absent or unusable.
func (p *PendingConfirmation) Validate() error {
	switch {
	case p == nil:
		return &SessionStateError{Reason: "no pending confirmation"}
	case p.ProviderKind != media.Movies && p.ProviderKind != media.Shows:
		return &SessionStateError{Reason: "unknown provider kind " + string(p.ProviderKind)}
	case len(p.Candidates) == 0:
		return &SessionStateError{Reason: "no candidates"}
	case p.Cursor < 0 || p.Cursor >= len(p.Candidates):
		return &SessionStateError{Reason: "cursor out of range"}
	}
	return nil
}

// Current returns the candidate being offered.
func (p PendingConfirmation) Current() media.MediaResult {
	return p.Candidates[p.Cursor]
}

// Advance moves to the next candidate. It returns false when none remain.
func (p PendingConfirmation) Advance() (PendingConfirmation, bool) {
	if p.Cursor+1 >= len(p.Candidates) {
		return p, false
	}
	p.Cursor++
	return p, true
}
