package domain

import (
	"time"

	"calculator/pkg/calculator"

	"github.com/google/uuid"
)

// SessionID uniquely identifies a calculator session.
// It wraps uuid.UUID to provide type safety at the domain layer.
type SessionID uuid.UUID

// NewSessionID returns a random session ID.
func NewSessionID() SessionID {
	return SessionID(uuid.New())
}

// ParseSessionID parses the canonical textual form of a session ID.
func ParseSessionID(s string) (SessionID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return SessionID{}, err //nolint: wrapcheck
	}

	return SessionID(id), nil
}

func (id SessionID) String() string {
	return uuid.UUID(id).String()
}

// Session is one user's calculator: the state machine snapshot plus bookkeeping.
type Session struct {
	// ID is the unique identifier of the session.
	ID SessionID
	// Owner is the user who created the session. Other users cannot see it.
	Owner UserID

	// State is the calculator state after the last applied input.
	State calculator.State
	// Inputs counts the inputs applied since the session was created.
	Inputs uint

	// CreatedAt is the time when the session was opened.
	CreatedAt time.Time
	// UpdatedAt is the time of the last applied input. Idle expiry counts from here.
	UpdatedAt time.Time
}
