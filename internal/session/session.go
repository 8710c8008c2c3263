package session

import (
	"strings"
	"time"
)

// DefaultID is used when a caller does not supply a session identifier.
const DefaultID = "test-session"

// State is the forward-only lifecycle of a honeypot session.
type State int

const (
	// StateUnclassified means no turn has been classified as a scam yet.
	StateUnclassified State = iota
	// StateScamFlagged means at least one turn was classified as a scam.
	StateScamFlagged
	// StateReported means the final intelligence report has been handed to the dispatcher.
	StateReported
)

func (s State) String() string {
	switch s {
	case StateUnclassified:
		return "unclassified"
	case StateScamFlagged:
		return "scam_flagged"
	case StateReported:
		return "reported"
	default:
		return "unknown"
	}
}

// Session is the mutable per-conversation state owned by a Store.
type Session struct {
	ID           string
	State        State
	MessageCount int
	Intelligence IntelligenceRecord
	CreatedAt    time.Time
	LastActivity time.Time
}

// NormalizeID trims the identifier and substitutes DefaultID when it is blank.
func NormalizeID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return DefaultID
	}
	return id
}

// ScamDetected reports whether the session has ever been flagged as a scam.
func (s *Session) ScamDetected() bool {
	return s.State >= StateScamFlagged
}

// CallbackSent reports whether the final report latch has been set.
func (s *Session) CallbackSent() bool {
	return s.State == StateReported
}

// FlagScam latches the session into StateScamFlagged. Later states are left untouched.
func (s *Session) FlagScam() {
	if s.State == StateUnclassified {
		s.State = StateScamFlagged
	}
}

// MarkReported moves a flagged session to StateReported and reports whether
// this call performed the transition. Unflagged or already reported sessions
// are left as they are.
func (s *Session) MarkReported() bool {
	if s.State != StateScamFlagged {
		return false
	}
	s.State = StateReported
	return true
}

// Clone returns a deep copy that shares no slices with s.
func (s Session) Clone() Session {
	s.Intelligence = s.Intelligence.Clone()
	return s
}
