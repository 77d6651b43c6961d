// Package sqlite is a single-file scheduling.Repository for development and
// single-node deployments, built on the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/cyclesync/cyclesync/internal/application/scheduling"
	"github.com/cyclesync/cyclesync/internal/cycle"
	"github.com/cyclesync/cyclesync/internal/domain"
	"github.com/cyclesync/cyclesync/internal/infrastructure/persistence/record"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

const driverName = "sqlite"

// Store implements scheduling.Repository on a SQLite database.
type Store struct {
	db *sql.DB
}

var _ scheduling.Repository = (*Store)(nil)

// Open opens (creating if needed) the database at path and applies migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}

	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	migrations, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return err
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	for _, r := range results {
		slog.DebugContext(ctx, "applied migration",
			slog.String("source", r.Source.Path),
			slog.Duration("duration", r.Duration))
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

const taskColumns = `id, title, task_type, energy_required, focus_required,
	scheduled_date, cycle_day, phase, confidence,
	reasoning, optimization_tips, alternatives, short_summary, constraints,
	completed, created_at, updated_at`

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidID, err)
	}
	return nil
}

// CreateTask inserts a new scheduled task.
func (s *Store) CreateTask(ctx context.Context, task *domain.ScheduledTask) (*domain.ScheduledTask, error) {
	if err := validateID(task.ID); err != nil {
		return nil, err
	}
	args, err := taskArgs(task)
	if err != nil {
		return nil, fmt.Errorf("failed to convert task: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO scheduled_tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, fmt.Errorf("%w: task %s already exists", domain.ErrInvalidID, task.ID)
		}
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return findTask(ctx, s.db, task.ID)
}

// FindTaskByID retrieves a task by id.
func (s *Store) FindTaskByID(ctx context.Context, id string) (*domain.ScheduledTask, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	return findTask(ctx, s.db, id)
}

func findTask(ctx context.Context, q querier, id string) (*domain.ScheduledTask, error) {
	task, err := scanTask(q.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM scheduled_tasks WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// ListUpcoming returns incomplete tasks on or after from, earliest first.
func (s *Store) ListUpcoming(ctx context.Context, from time.Time, limit int) ([]*domain.ScheduledTask, error) {
	return s.listTasks(ctx, `SELECT `+taskColumns+` FROM scheduled_tasks
		WHERE completed = 0 AND scheduled_date >= ?
		ORDER BY scheduled_date ASC, created_at ASC, id ASC
		LIMIT ?`, cycle.CalendarDate(from).Format(domain.DateLayout), limit)
}

// ListAll returns every task, newest first.
func (s *Store) ListAll(ctx context.Context) ([]*domain.ScheduledTask, error) {
	return s.listTasks(ctx, `SELECT `+taskColumns+` FROM scheduled_tasks
		ORDER BY created_at DESC, id DESC`)
}

func (s *Store) listTasks(ctx context.Context, query string, args ...any) ([]*domain.ScheduledTask, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]*domain.ScheduledTask, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
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
	if err := validateID(id); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE scheduled_tasks SET completed = ?, updated_at = ? WHERE id = ?`,
		completed, updatedAt.UTC().UnixNano(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	} else if n == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
	}

	task, err := findTask(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return task, nil
}

// DeleteTask removes a task.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM scheduled_tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
	}
	return nil
}

func taskArgs(t *domain.ScheduledTask) ([]any, error) {
	reasoning, err := record.EncodeStrings(t.Reasoning)
	if err != nil {
		return nil, err
	}
	tips, err := record.EncodeStrings(t.OptimizationTips)
	if err != nil {
		return nil, err
	}
	alternatives, err := record.EncodeAlternatives(t.Alternatives)
	if err != nil {
		return nil, err
	}
	constraints, err := record.EncodeConstraints(t.Constraints)
	if err != nil {
		return nil, err
	}

	return []any{
		t.ID, t.Title, string(t.TaskType), string(t.EnergyRequired), string(t.FocusRequired),
		cycle.CalendarDate(t.ScheduledDate).Format(domain.DateLayout), t.CycleDay, string(t.Phase), t.Confidence,
		string(reasoning), string(tips), string(alternatives), t.ShortSummary, string(constraints),
		t.Completed, t.CreatedAt.UTC().UnixNano(), t.UpdatedAt.UTC().UnixNano(),
	}, nil
}

func scanTask(row rowScanner) (*domain.ScheduledTask, error) {
	var (
		t                                        domain.ScheduledTask
		taskType, energy, focus, phase, date     string
		reasoning, tips, alternatives, constrain string
		createdAt, updatedAt                     int64
	)
	err := row.Scan(
		&t.ID, &t.Title, &taskType, &energy, &focus,
		&date, &t.CycleDay, &phase, &t.Confidence,
		&reasoning, &tips, &alternatives, &t.ShortSummary, &constrain,
		&t.Completed, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.TaskType = domain.TaskType(taskType)
	t.EnergyRequired = domain.Level(energy)
	t.FocusRequired = domain.Level(focus)
	t.Phase = cycle.Phase(phase)
	t.CreatedAt = time.Unix(0, createdAt).UTC()
	t.UpdatedAt = time.Unix(0, updatedAt).UTC()

	if t.ScheduledDate, err = time.Parse(domain.DateLayout, date); err != nil {
		return nil, fmt.Errorf("task %s: scheduled date: %w", t.ID, err)
	}
	if t.Reasoning, err = record.DecodeStrings([]byte(reasoning)); err != nil {
		return nil, err
	}
	if t.OptimizationTips, err = record.DecodeStrings([]byte(tips)); err != nil {
		return nil, err
	}
	if t.Alternatives, err = record.DecodeAlternatives([]byte(alternatives)); err != nil {
		return nil, err
	}
	if t.Constraints, err = record.DecodeConstraints([]byte(constrain)); err != nil {
		return nil, err
	}
	return &t, nil
}
