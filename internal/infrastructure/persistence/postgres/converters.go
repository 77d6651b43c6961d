package postgres

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/cyclesync/cyclesync/internal/cycle"
	"github.com/cyclesync/cyclesync/internal/domain"
	"github.com/cyclesync/cyclesync/internal/infrastructure/persistence/record"
)

// === pgtype Conversion Helpers ===

func uuidToPgtype(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

func pgtypeToUUIDString(id pgtype.UUID) string {
	if !id.Valid {
		return ""
	}
	return uuid.UUID(id.Bytes).String()
}

func timeToPgtype(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t.UTC(), Valid: true}
}

// pgtypeToTime always returns UTC.
func pgtypeToTime(t pgtype.Timestamptz) time.Time {
	if !t.Valid {
		return time.Time{}
	}
	return t.Time.UTC()
}

func dateToPgtype(t time.Time) pgtype.Date {
	return pgtype.Date{Time: cycle.CalendarDate(t), Valid: true}
}

func pgtypeToDate(d pgtype.Date) time.Time {
	if !d.Valid {
		return time.Time{}
	}
	return cycle.CalendarDate(d.Time)
}

// parseTaskID validates a task id before it reaches the database.
func parseTaskID(id string) (pgtype.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return pgtype.UUID{}, fmt.Errorf("%w: %w", domain.ErrInvalidID, err)
	}
	return uuidToPgtype(parsed), nil
}

// === Task Conversions ===

const taskColumns = `id, title, task_type, energy_required, focus_required,
	scheduled_date, cycle_day, phase, confidence,
	reasoning, optimization_tips, alternatives, short_summary, constraints,
	completed, created_at, updated_at`

// taskRow mirrors one scheduled_tasks row.
type taskRow struct {
	ID               pgtype.UUID
	Title            string
	TaskType         string
	EnergyRequired   string
	FocusRequired    string
	ScheduledDate    pgtype.Date
	CycleDay         int32
	Phase            string
	Confidence       float64
	Reasoning        []byte
	OptimizationTips []byte
	Alternatives     []byte
	ShortSummary     string
	Constraints      []byte
	Completed        bool
	CreatedAt        pgtype.Timestamptz
	UpdatedAt        pgtype.Timestamptz
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTaskRow(row rowScanner) (taskRow, error) {
	var r taskRow
	err := row.Scan(
		&r.ID, &r.Title, &r.TaskType, &r.EnergyRequired, &r.FocusRequired,
		&r.ScheduledDate, &r.CycleDay, &r.Phase, &r.Confidence,
		&r.Reasoning, &r.OptimizationTips, &r.Alternatives, &r.ShortSummary, &r.Constraints,
		&r.Completed, &r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

// args returns the row as positional parameters in taskColumns order.
func (r taskRow) args() []any {
	return []any{
		r.ID, r.Title, r.TaskType, r.EnergyRequired, r.FocusRequired,
		r.ScheduledDate, r.CycleDay, r.Phase, r.Confidence,
		r.Reasoning, r.OptimizationTips, r.Alternatives, r.ShortSummary, r.Constraints,
		r.Completed, r.CreatedAt, r.UpdatedAt,
	}
}

func domainTaskToRow(t *domain.ScheduledTask) (taskRow, error) {
	id, err := parseTaskID(t.ID)
	if err != nil {
		return taskRow{}, err
	}
	reasoning, err := record.EncodeStrings(t.Reasoning)
	if err != nil {
		return taskRow{}, err
	}
	tips, err := record.EncodeStrings(t.OptimizationTips)
	if err != nil {
		return taskRow{}, err
	}
	alternatives, err := record.EncodeAlternatives(t.Alternatives)
	if err != nil {
		return taskRow{}, err
	}
	constraints, err := record.EncodeConstraints(t.Constraints)
	if err != nil {
		return taskRow{}, err
	}

	return taskRow{
		ID:               id,
		Title:            t.Title,
		TaskType:         string(t.TaskType),
		EnergyRequired:   string(t.EnergyRequired),
		FocusRequired:    string(t.FocusRequired),
		ScheduledDate:    dateToPgtype(t.ScheduledDate),
		CycleDay:         int32(t.CycleDay),
		Phase:            string(t.Phase),
		Confidence:       t.Confidence,
		Reasoning:        reasoning,
		OptimizationTips: tips,
		Alternatives:     alternatives,
		ShortSummary:     t.ShortSummary,
		Constraints:      constraints,
		Completed:        t.Completed,
		CreatedAt:        timeToPgtype(t.CreatedAt),
		UpdatedAt:        timeToPgtype(t.UpdatedAt),
	}, nil
}

func rowToDomainTask(r taskRow) (*domain.ScheduledTask, error) {
	reasoning, err := record.DecodeStrings(r.Reasoning)
	if err != nil {
		return nil, err
	}
	tips, err := record.DecodeStrings(r.OptimizationTips)
	if err != nil {
		return nil, err
	}
	alternatives, err := record.DecodeAlternatives(r.Alternatives)
	if err != nil {
		return nil, err
	}
	constraints, err := record.DecodeConstraints(r.Constraints)
	if err != nil {
		return nil, err
	}

	return &domain.ScheduledTask{
		ID:               pgtypeToUUIDString(r.ID),
		Title:            r.Title,
		TaskType:         domain.TaskType(r.TaskType),
		EnergyRequired:   domain.Level(r.EnergyRequired),
		FocusRequired:    domain.Level(r.FocusRequired),
		ScheduledDate:    pgtypeToDate(r.ScheduledDate),
		CycleDay:         int(r.CycleDay),
		Phase:            cycle.Phase(r.Phase),
		Confidence:       r.Confidence,
		Reasoning:        reasoning,
		OptimizationTips: tips,
		Alternatives:     alternatives,
		ShortSummary:     r.ShortSummary,
		Constraints:      constraints,
		Completed:        r.Completed,
		CreatedAt:        pgtypeToTime(r.CreatedAt),
		UpdatedAt:        pgtypeToTime(r.UpdatedAt),
	}, nil
}
