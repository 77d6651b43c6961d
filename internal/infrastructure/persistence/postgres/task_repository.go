package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cyclesync/cyclesync/internal/domain"
)

// checkRowsAffected maps a zero-row UPDATE/DELETE to domain.ErrTaskNotFound.
func checkRowsAffected(rowsAffected int64, id string) error {
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
	}
	return nil
}

// isUniqueViolation reports a PostgreSQL unique_violation (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

const insertTaskSQL = `INSERT INTO scheduled_tasks (` + taskColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

// CreateTask inserts a new scheduled task.
func (s *Store) CreateTask(ctx context.Context, task *domain.ScheduledTask) (*domain.ScheduledTask, error) {
	row, err := domainTaskToRow(task)
	if err != nil {
		return nil, fmt.Errorf("failed to convert task: %w", err)
	}

	if _, err := s.db.Exec(ctx, insertTaskSQL, row.args()...); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: task %s already exists", domain.ErrInvalidID, task.ID)
		}
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return rowToDomainTask(row)
}

// FindTaskByID retrieves a task by id.
func (s *Store) FindTaskByID(ctx context.Context, id string) (*domain.ScheduledTask, error) {
	taskID, err := parseTaskID(id)
	if err != nil {
		return nil, err
	}
	return s.findTask(ctx, `SELECT `+taskColumns+` FROM scheduled_tasks WHERE id = $1`, taskID)
}

func (s *Store) findTask(ctx context.Context, query string, args ...any) (*domain.ScheduledTask, error) {
	row, err := scanTaskRow(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return rowToDomainTask(row)
}

// ListUpcoming returns incomplete tasks on or after from, earliest first.
func (s *Store) ListUpcoming(ctx context.Context, from time.Time, limit int) ([]*domain.ScheduledTask, error) {
	return s.listTasks(ctx, `SELECT `+taskColumns+` FROM scheduled_tasks
		WHERE completed = FALSE AND scheduled_date >= $1
		ORDER BY scheduled_date ASC, created_at ASC, id ASC
		LIMIT $2`, dateToPgtype(from), limit)
}

// ListAll returns every task, newest first.
func (s *Store) ListAll(ctx context.Context) ([]*domain.ScheduledTask, error) {
	return s.listTasks(ctx, `SELECT `+taskColumns+` FROM scheduled_tasks
		ORDER BY created_at DESC, id DESC`)
}

func (s *Store) listTasks(ctx context.Context, query string, args ...any) ([]*domain.ScheduledTask, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]*domain.ScheduledTask, 0)
	for rows.Next() {
		row, err := scanTaskRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		task, err := rowToDomainTask(row)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// SetCompleted updates the completion flag and returns the task as stored.
func (s *Store) SetCompleted(ctx context.Context, id string, completed bool, updatedAt time.Time) (*domain.ScheduledTask, error) {
	taskID, err := parseTaskID(id)
	if err != nil {
		return nil, err
	}

	var updated *domain.ScheduledTask
	err = s.inTx(ctx, "set_completed", func(tx *Store) error {
		tag, err := tx.db.Exec(ctx,
			`UPDATE scheduled_tasks SET completed = $2, updated_at = $3 WHERE id = $1`,
			taskID, completed, timeToPgtype(updatedAt))
		if err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		if err := checkRowsAffected(tag.RowsAffected(), id); err != nil {
			return err
		}

		updated, err = tx.findTask(ctx, `SELECT `+taskColumns+` FROM scheduled_tasks WHERE id = $1`, taskID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteTask removes a task.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	taskID, err := parseTaskID(id)
	if err != nil {
		return err
	}

	tag, err := s.db.Exec(ctx, `DELETE FROM scheduled_tasks WHERE id = $1`, taskID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return checkRowsAffected(tag.RowsAffected(), id)
}
