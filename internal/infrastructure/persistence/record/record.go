// Package record holds the serialized form of a scheduled task shared by
// the storage backends. Document stores (fs, gcs) persist a whole Task;
// the SQL stores keep scalar columns and use the Alternatives and
// Constraints codecs for their JSON columns.
package record

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/cyclesync/cyclesync/internal/cycle"
	"github.com/cyclesync/cyclesync/internal/domain"
)

// Task is the JSON document for a domain.ScheduledTask.
type Task struct {
	ID               string        `json:"id"`
	Title            string        `json:"title"`
	TaskType         string        `json:"taskType"`
	EnergyRequired   string        `json:"energyRequired"`
	FocusRequired    string        `json:"focusRequired"`
	ScheduledDate    string        `json:"scheduledDate"`
	CycleDay         int           `json:"cycleDay"`
	Phase            string        `json:"phase"`
	Confidence       float64       `json:"confidence"`
	Reasoning        []string      `json:"reasoning"`
	OptimizationTips []string      `json:"optimizationTips"`
	Alternatives     []Alternative `json:"alternatives"`
	ShortSummary     string        `json:"shortSummary,omitempty"`
	Constraints      Constraints   `json:"constraints"`
	Completed        bool          `json:"completed"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

// Alternative is the JSON form of domain.Alternative.
type Alternative struct {
	Date       string  `json:"date"`
	CycleDay   int     `json:"cycleDay"`
	Phase      string  `json:"phase"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason,omitempty"`
}

// Constraints is the JSON form of domain.Constraints.
type Constraints struct {
	Description     string   `json:"description,omitempty"`
	DueDate         string   `json:"dueDate,omitempty"`
	AvailableDays   []string `json:"availableDays,omitempty"`
	FlexibilityDays int      `json:"flexibilityDays"`
}

// FromDomain converts a task to its document form.
func FromDomain(t *domain.ScheduledTask) Task {
	return Task{
		ID:               t.ID,
		Title:            t.Title,
		TaskType:         string(t.TaskType),
		EnergyRequired:   string(t.EnergyRequired),
		FocusRequired:    string(t.FocusRequired),
		ScheduledDate:    formatDate(t.ScheduledDate),
		CycleDay:         t.CycleDay,
		Phase:            string(t.Phase),
		Confidence:       t.Confidence,
		Reasoning:        nonNil(t.Reasoning),
		OptimizationTips: nonNil(t.OptimizationTips),
		Alternatives:     alternativesFromDomain(t.Alternatives),
		ShortSummary:     t.ShortSummary,
		Constraints:      constraintsFromDomain(t.Constraints),
		Completed:        t.Completed,
		CreatedAt:        t.CreatedAt.UTC(),
		UpdatedAt:        t.UpdatedAt.UTC(),
	}
}

// ToDomain converts a document back to a task.
func (r Task) ToDomain() (*domain.ScheduledTask, error) {
	date, err := parseDate(r.ScheduledDate)
	if err != nil {
		return nil, fmt.Errorf("task %s: scheduled date: %w", r.ID, err)
	}
	alternatives, err := alternativesToDomain(r.Alternatives)
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", r.ID, err)
	}
	constraints, err := r.Constraints.toDomain()
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", r.ID, err)
	}

	return &domain.ScheduledTask{
		ID:               r.ID,
		Title:            r.Title,
		TaskType:         domain.TaskType(r.TaskType),
		EnergyRequired:   domain.Level(r.EnergyRequired),
		FocusRequired:    domain.Level(r.FocusRequired),
		ScheduledDate:    date,
		CycleDay:         r.CycleDay,
		Phase:            cycle.Phase(r.Phase),
		Confidence:       r.Confidence,
		Reasoning:        nonNil(r.Reasoning),
		OptimizationTips: nonNil(r.OptimizationTips),
		Alternatives:     alternatives,
		ShortSummary:     r.ShortSummary,
		Constraints:      constraints,
		Completed:        r.Completed,
		CreatedAt:        r.CreatedAt.UTC(),
		UpdatedAt:        r.UpdatedAt.UTC(),
	}, nil
}

// EncodeStrings marshals a string list for a JSON column. Nil encodes as [].
func EncodeStrings(values []string) ([]byte, error) {
	return json.Marshal(nonNil(values))
}

// DecodeStrings unmarshals a JSON column written by EncodeStrings.
func DecodeStrings(data []byte) ([]string, error) {
	var out []string
	if len(data) > 0 {
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("failed to decode string list: %w", err)
		}
	}
	return nonNil(out), nil
}

// EncodeAlternatives marshals alternatives for a JSON column.
func EncodeAlternatives(alts []domain.Alternative) ([]byte, error) {
	return json.Marshal(alternativesFromDomain(alts))
}

// DecodeAlternatives unmarshals a JSON column written by EncodeAlternatives.
func DecodeAlternatives(data []byte) ([]domain.Alternative, error) {
	var alts []Alternative
	if len(data) > 0 {
		if err := json.Unmarshal(data, &alts); err != nil {
			return nil, fmt.Errorf("failed to decode alternatives: %w", err)
		}
	}
	return alternativesToDomain(alts)
}

// EncodeConstraints marshals constraints for a JSON column.
func EncodeConstraints(c domain.Constraints) ([]byte, error) {
	return json.Marshal(constraintsFromDomain(c))
}

// DecodeConstraints unmarshals a JSON column written by EncodeConstraints.
func DecodeConstraints(data []byte) (domain.Constraints, error) {
	var c Constraints
	if len(data) > 0 {
		if err := json.Unmarshal(data, &c); err != nil {
			return domain.Constraints{}, fmt.Errorf("failed to decode constraints: %w", err)
		}
	}
	return c.toDomain()
}

// SelectUpcoming filters and orders tasks the way Repository.ListUpcoming
// requires: incomplete, on or after from, by date then creation time.
func SelectUpcoming(tasks []*domain.ScheduledTask, from time.Time, limit int) []*domain.ScheduledTask {
	from = cycle.CalendarDate(from)
	out := make([]*domain.ScheduledTask, 0, len(tasks))
	for _, t := range tasks {
		if !t.Completed && !t.ScheduledDate.Before(from) {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b *domain.ScheduledTask) int {
		if c := a.ScheduledDate.Compare(b.ScheduledDate); c != 0 {
			return c
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// SortNewestFirst orders tasks by creation time, newest first.
func SortNewestFirst(tasks []*domain.ScheduledTask) {
	slices.SortFunc(tasks, func(a, b *domain.ScheduledTask) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
}

func alternativesFromDomain(alts []domain.Alternative) []Alternative {
	out := make([]Alternative, 0, len(alts))
	for _, a := range alts {
		out = append(out, Alternative{
			Date:       formatDate(a.Date),
			CycleDay:   a.CycleDay,
			Phase:      string(a.Phase),
			Confidence: a.Confidence,
			Reason:     a.Reason,
		})
	}
	return out
}

func alternativesToDomain(alts []Alternative) ([]domain.Alternative, error) {
	out := make([]domain.Alternative, 0, len(alts))
	for _, a := range alts {
		date, err := parseDate(a.Date)
		if err != nil {
			return nil, fmt.Errorf("alternative date: %w", err)
		}
		out = append(out, domain.Alternative{
			Date:       date,
			CycleDay:   a.CycleDay,
			Phase:      cycle.Phase(a.Phase),
			Confidence: a.Confidence,
			Reason:     a.Reason,
		})
	}
	return out, nil
}

func constraintsFromDomain(c domain.Constraints) Constraints {
	out := Constraints{
		Description:     c.Description,
		FlexibilityDays: c.FlexibilityDays,
	}
	if c.DueDate != nil {
		out.DueDate = formatDate(*c.DueDate)
	}
	for _, d := range c.AvailableDays {
		out.AvailableDays = append(out.AvailableDays, strings.ToLower(d.String()))
	}
	return out
}

func (c Constraints) toDomain() (domain.Constraints, error) {
	out := domain.Constraints{
		Description:     c.Description,
		FlexibilityDays: c.FlexibilityDays,
	}
	if c.DueDate != "" {
		due, err := parseDate(c.DueDate)
		if err != nil {
			return domain.Constraints{}, fmt.Errorf("due date: %w", err)
		}
		out.DueDate = &due
	}
	for _, name := range c.AvailableDays {
		day, err := domain.NewWeekday(name)
		if err != nil {
			return domain.Constraints{}, err
		}
		out.AvailableDays = append(out.AvailableDays, day)
	}
	return out, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(domain.DateLayout)
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(domain.DateLayout, s)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
