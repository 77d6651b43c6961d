package scheduling

import (
	"context"
	"time"

	"github.com/cyclesync/cyclesync/internal/domain"
)

// Repository defines storage operations for scheduled tasks.
// Create operations return the entity as persisted.
type Repository interface {
	// CreateTask stores a new scheduled task.
	CreateTask(ctx context.Context, task *domain.ScheduledTask) (*domain.ScheduledTask, error)

	// FindTaskByID retrieves a single task.
	// Returns domain.ErrTaskNotFound if the task doesn't exist.
	FindTaskByID(ctx context.Context, id string) (*domain.ScheduledTask, error)

	// ListUpcoming returns incomplete tasks scheduled on or after from,
	// ordered by scheduled date then creation time, at most limit rows.
	ListUpcoming(ctx context.Context, from time.Time, limit int) ([]*domain.ScheduledTask, error)

	// ListAll returns every task, newest first.
	ListAll(ctx context.Context) ([]*domain.ScheduledTask, error)

	// SetCompleted flips the completion flag and bumps UpdatedAt.
	// Returns domain.ErrTaskNotFound if the task doesn't exist.
	SetCompleted(ctx context.Context, id string, completed bool, updatedAt time.Time) (*domain.ScheduledTask, error)

	// DeleteTask removes a task.
	// Returns domain.ErrTaskNotFound if the task doesn't exist.
	DeleteTask(ctx context.Context, id string) error
}

// Generator is the remote generative model consulted for suggestions.
// Implementations return the raw model text; decoding happens here.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
