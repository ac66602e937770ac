package domain

import "time"

// State is the persisted marker telling which multi-turn flow a user is in.
type State string

const (
	StateIdle                 State = "idle"
	StateAwaitingDate         State = "awaiting_date"
	StateAwaitingTask         State = "awaiting_task"
	StateAwaitingTaskDeletion State = "awaiting_task_deletion"
)

// ParseState maps a stored value to a State. Unknown or empty values are idle.
func ParseState(s string) State {
	switch State(s) {
	case StateAwaitingDate, StateAwaitingTask, StateAwaitingTaskDeletion:
		return State(s)
	default:
		return StateIdle
	}
}

// User is the per-user record of the assistant.
//
// Exactly one record exists per platform user identifier. The record key
// is derived from the identifier and never changes.
type User struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is the opaque identifier sent by the dialogue platform.
	ID string

	// Key is the derived storage key of the record.
	Key string

	// CreatedAt is the time of the first request from this user.
	CreatedAt time.Time

	// ─────────────────────────────
	// Conversation
	// ─────────────────────────────

	// LastActive is refreshed on every request.
	LastActive time.Time

	// State is the current conversation state. Zero value means idle.
	State State

	// CurrentDate stages the date chosen in the awaiting_date turn
	// until the task text arrives.
	CurrentDate string
}
