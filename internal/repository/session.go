package repository

import (
	"context"

	"github.com/MrSnakeDoc/voicelist/internal/domain"
)

// Users resolves platform user ids to their stored records.
type Users interface {
	// Resolve creates the record on first contact, refreshes last_active and
	// returns a handle bound to it. Calling it twice for the same id yields the
	// same key and leaves created_at untouched.
	Resolve(ctx context.Context, userID string) (UserSession, error)
}

// UserSession is a handle on one user's record for the duration of a turn.
type UserSession interface {
	Key() string
	// User is the snapshot taken at resolve time; setters do not refresh it.
	User() domain.User

	SetState(ctx context.Context, state domain.State) error
	SetCurrentDate(ctx context.Context, date string) error
	// AwaitTask stores the staged date and moves to awaiting_task in one write.
	AwaitTask(ctx context.Context, date string) error

	// AddTask allocates an id, stores the task and returns it with ID set.
	AddTask(ctx context.Context, task domain.Task) (domain.Task, error)
	// Tasks returns all tasks in insertion order.
	Tasks(ctx context.Context) ([]domain.Task, error)
	// DeleteTask returns domain.ErrTaskNotFound when id is absent.
	DeleteTask(ctx context.Context, id string) error
}
