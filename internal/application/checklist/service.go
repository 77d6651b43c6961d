package checklist

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cyclesync/cyclesync/internal/affinity"
	"github.com/cyclesync/cyclesync/internal/cycle"
	"github.com/cyclesync/cyclesync/internal/domain"
)

// DefaultLogLimit bounds ListLogs when the caller passes no limit.
const DefaultLogLimit = 50

// AnnotatedItem is a checklist item with its phase fit.
type AnnotatedItem struct {
	domain.ChecklistItem
	affinity.Affinity
}

// Annotate attaches best-fit phase, display info and the optimal-now flag
// to each item, preserving order.
func Annotate(items []domain.ChecklistItem, currentPhase cycle.Phase) []AnnotatedItem {
	out := make([]AnnotatedItem, 0, len(items))
	for _, item := range items {
		out = append(out, AnnotatedItem{
			ChecklistItem: item,
			Affinity:      affinity.Evaluate(item.Title, currentPhase),
		})
	}
	return out
}

// Service provides the checklist use cases over a caller-supplied Store.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService creates a checklist service.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// List returns every item annotated against the current phase.
func (s *Service) List(ctx context.Context, currentPhase cycle.Phase) ([]AnnotatedItem, error) {
	items, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list checklist: %w", err)
	}
	return Annotate(items, currentPhase), nil
}

// Add creates a new checklist item from its title.
func (s *Service) Add(ctx context.Context, titleStr string, currentPhase cycle.Phase) (AnnotatedItem, error) {
	title, err := domain.NewTitle(titleStr)
	if err != nil {
		return AnnotatedItem{}, err
	}

	idObj, err := uuid.NewV7()
	if err != nil {
		return AnnotatedItem{}, fmt.Errorf("failed to generate id: %w", err)
	}

	item := domain.ChecklistItem{
		ID:        idObj.String(),
		Title:     title.String(),
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Add(ctx, item); err != nil {
		return AnnotatedItem{}, fmt.Errorf("failed to add checklist item: %w", err)
	}

	return Annotate([]domain.ChecklistItem{item}, currentPhase)[0], nil
}

// Toggle flips an item's completion flag.
func (s *Service) Toggle(ctx context.Context, id string) (domain.ChecklistItem, error) {
	if id == "" {
		return domain.ChecklistItem{}, domain.ErrChecklistItemNotFound
	}
	return s.store.Toggle(ctx, id)
}

// Delete removes an item.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrChecklistItemNotFound
	}
	return s.store.Delete(ctx, id)
}

// LogRequest is a daily self-report.
type LogRequest struct {
	Energy int
	Mood   string
	Note   string
	Cycle  cycle.Params
}

// Log records a quick log stamped with today's cycle day and phase.
func (s *Service) Log(ctx context.Context, req LogRequest) (domain.QuickLog, error) {
	energy, err := domain.NewEnergy(req.Energy)
	if err != nil {
		return domain.QuickLog{}, err
	}

	now := s.now()
	state, err := cycle.CurrentState(req.Cycle, now)
	if err != nil {
		return domain.QuickLog{}, err
	}

	idObj, err := uuid.NewV7()
	if err != nil {
		return domain.QuickLog{}, fmt.Errorf("failed to generate id: %w", err)
	}

	entry := domain.QuickLog{
		ID:        idObj.String(),
		Date:      cycle.CalendarDate(now),
		CycleDay:  state.CycleDay,
		Phase:     state.Phase,
		Energy:    energy,
		Mood:      strings.TrimSpace(req.Mood),
		Note:      strings.TrimSpace(req.Note),
		CreatedAt: now.UTC(),
	}
	if err := s.store.AddLog(ctx, entry); err != nil {
		return domain.QuickLog{}, fmt.Errorf("failed to add log: %w", err)
	}
	return entry, nil
}

// Logs returns recent quick logs, newest first.
func (s *Service) Logs(ctx context.Context, limit int) ([]domain.QuickLog, error) {
	if limit <= 0 {
		limit = DefaultLogLimit
	}
	return s.store.ListLogs(ctx, limit)
}
