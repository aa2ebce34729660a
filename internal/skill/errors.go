package skill

import (
	"fmt"

	"github.com/Digital-Shane/libby/internal/media"
)

// SessionStateError means a turn needed a pending confirmation that was
// missing or malformed.
type SessionStateError struct {
	Reason string
}

func (e *SessionStateError) Error() string {
	return fmt.Sprintf("session state: %s", e.Reason)
}

// ValidationError means a required slot was not spoken.
type ValidationError struct {
	Kind media.Kind
	Slot string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing %s slot %q", e.Kind.Noun(), e.Slot)
}
