// Package scheduling turns task descriptions into dated, cycle-aware
// suggestions and manages the persisted scheduled tasks.
package scheduling

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/cyclesync/cyclesync/internal/affinity"
	"github.com/cyclesync/cyclesync/internal/cycle"
	"github.com/cyclesync/cyclesync/internal/domain"
)

// Default configuration values.
const (
	DefaultUpcomingLimit = 10
	MaxUpcomingLimit     = 100
	DefaultModelTimeout  = 30 * time.Second
)

const instrumentationName = "github.com/cyclesync/cyclesync/internal/application/scheduling"

// Config holds configuration for the Service.
type Config struct {
	DefaultUpcomingLimit int
	MaxUpcomingLimit     int
	ModelTimeout         time.Duration
}

// Service provides the scheduling use cases.
// The generator is optional; without one every suggestion is a fallback.
type Service struct {
	repo      Repository
	generator Generator
	config    Config
	now       func() time.Time

	suggestions  metric.Int64Counter
	modelLatency metric.Float64Histogram
}

// NewService creates a new scheduling service.
// Applies defaults for zero or invalid config values.
func NewService(repo Repository, generator Generator, config Config) *Service {
	if config.DefaultUpcomingLimit <= 0 {
		config.DefaultUpcomingLimit = DefaultUpcomingLimit
	}
	if config.MaxUpcomingLimit <= 0 {
		config.MaxUpcomingLimit = MaxUpcomingLimit
	}
	if config.ModelTimeout <= 0 {
		config.ModelTimeout = DefaultModelTimeout
	}

	meter := otel.Meter(instrumentationName)
	// Instrument creation only fails on invalid names; the returned
	// instrument is a usable no-op in that case.
	suggestions, _ := meter.Int64Counter("cyclesync.suggestions",
		metric.WithDescription("Scheduling suggestions produced, by source"))
	modelLatency, _ := meter.Float64Histogram("cyclesync.model.duration",
		metric.WithDescription("Time spent waiting for the generative model"),
		metric.WithUnit("s"))

	return &Service{
		repo:         repo,
		generator:    generator,
		config:       config,
		now:          time.Now,
		suggestions:  suggestions,
		modelLatency: modelLatency,
	}
}

// SuggestRequest is the raw input of a scheduling request.
type SuggestRequest struct {
	Description     string
	TaskType        string // Empty or "general" triggers detection from the description
	EnergyRequired  string
	FocusRequired   string
	DueDate         *time.Time
	AvailableDays   []string
	FlexibilityDays int
	Cycle           cycle.Params
}

// SuggestResult is a suggestion together with the context it was made in.
type SuggestResult struct {
	Title      string
	TaskType   domain.TaskType
	State      cycle.State
	Suggestion domain.Suggestion
}

// Suggest proposes a date for a task.
//
// Only invalid input returns an error. Any failure of the model, whether a
// transport error, a timeout or an undecodable answer, degrades to the
// deterministic fallback.
func (s *Service) Suggest(ctx context.Context, req SuggestRequest) (*SuggestResult, error) {
	input, err := buildInput(req)
	if err != nil {
		return nil, err
	}

	now := s.now()
	state, err := cycle.CurrentState(req.Cycle, now)
	if err != nil {
		return nil, err
	}

	suggestion := s.suggest(ctx, input, state, now)
	s.suggestions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", string(suggestion.Source)),
		attribute.String("task_type", string(input.TaskType)),
	))

	return &SuggestResult{
		Title:      affinity.ExtractTaskTitle(input.Description),
		TaskType:   input.TaskType,
		State:      state,
		Suggestion: suggestion,
	}, nil
}

func (s *Service) suggest(ctx context.Context, input domain.SuggestionInput, state cycle.State, now time.Time) domain.Suggestion {
	if s.generator == nil {
		return affinity.FallbackSuggestion(input, state, now)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.config.ModelTimeout)
	defer cancel()

	start := time.Now()
	raw, err := s.generator.Generate(callCtx, BuildPrompt(input, state, now))
	s.modelLatency.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		slog.WarnContext(ctx, "model call failed, using fallback",
			slog.String("task_type", string(input.TaskType)),
			slog.String("error", err.Error()))
		return affinity.FallbackSuggestion(input, state, now)
	}

	suggestion, err := ParseModelResponse(raw, state.CycleLength)
	if err != nil {
		slog.WarnContext(ctx, "model response rejected, using fallback",
			slog.String("error", err.Error()),
			slog.Int("response_bytes", len(raw)))
		return affinity.FallbackSuggestion(input, state, now)
	}

	return suggestion
}

func buildInput(req SuggestRequest) (domain.SuggestionInput, error) {
	if strings.TrimSpace(req.Description) == "" {
		return domain.SuggestionInput{}, domain.ErrDescriptionRequired
	}

	taskType, err := domain.NewTaskType(req.TaskType)
	if err != nil {
		return domain.SuggestionInput{}, err
	}
	if taskType == domain.TaskTypeGeneral {
		taskType = affinity.AnalyzeTaskType(req.Description)
	}

	energy, err := domain.NewLevel(req.EnergyRequired)
	if err != nil {
		return domain.SuggestionInput{}, err
	}
	focus, err := domain.NewLevel(req.FocusRequired)
	if err != nil {
		return domain.SuggestionInput{}, err
	}

	days := make([]time.Weekday, 0, len(req.AvailableDays))
	for _, name := range req.AvailableDays {
		d, err := domain.NewWeekday(name)
		if err != nil {
			return domain.SuggestionInput{}, err
		}
		days = append(days, d)
	}

	flexibility := req.FlexibilityDays
	if flexibility <= 0 {
		flexibility = domain.DefaultFlexibilityDays
	}

	var due *time.Time
	if req.DueDate != nil {
		d := cycle.CalendarDate(*req.DueDate)
		due = &d
	}

	return domain.SuggestionInput{
		Description:    req.Description,
		TaskType:       taskType,
		EnergyRequired: energy,
		FocusRequired:  focus,
		Constraints: domain.Constraints{
			Description:     req.Description,
			DueDate:         due,
			AvailableDays:   days,
			FlexibilityDays: flexibility,
		},
	}, nil
}

// SaveTaskRequest carries an accepted suggestion to be persisted.
type SaveTaskRequest struct {
	Title            string // Derived from Description when empty
	Description      string
	TaskType         string
	EnergyRequired   string
	FocusRequired    string
	ScheduledDate    time.Time
	CycleDay         int
	Phase            string
	Confidence       float64
	Reasoning        []string
	OptimizationTips []string
	Alternatives     []domain.Alternative
	ShortSummary     string
	Constraints      domain.Constraints

	// When set, CycleDay and Phase are recomputed for ScheduledDate.
	Cycle *cycle.Params
}

// SaveTask validates and persists a scheduled task.
func (s *Service) SaveTask(ctx context.Context, req SaveTaskRequest) (*domain.ScheduledTask, error) {
	titleText := req.Title
	if titleText == "" {
		titleText = affinity.ExtractTaskTitle(req.Description)
	}
	title, err := domain.NewTitle(titleText)
	if err != nil {
		return nil, err
	}

	taskType, err := domain.NewTaskType(req.TaskType)
	if err != nil {
		return nil, err
	}
	energy, err := domain.NewLevel(req.EnergyRequired)
	if err != nil {
		return nil, err
	}
	focus, err := domain.NewLevel(req.FocusRequired)
	if err != nil {
		return nil, err
	}
	confidence, err := domain.NewConfidence(req.Confidence)
	if err != nil {
		return nil, err
	}
	if req.ScheduledDate.IsZero() {
		return nil, fmt.Errorf("%w: scheduled date is required", domain.ErrInvalidDate)
	}
	date := cycle.CalendarDate(req.ScheduledDate)

	var (
		day   int
		phase cycle.Phase
	)
	if req.Cycle != nil {
		state, err := cycle.StateOn(*req.Cycle, date)
		if err != nil {
			return nil, err
		}
		day, phase = state.CycleDay, state.Phase
	} else {
		phase, err = domain.NewPhase(req.Phase)
		if err != nil {
			return nil, err
		}
		if req.CycleDay < 1 {
			return nil, fmt.Errorf("%w: %d", domain.ErrInvalidCycleDay, req.CycleDay)
		}
		day = req.CycleDay
	}

	idObj, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate id: %w", err)
	}

	constraints := req.Constraints
	if constraints.Description == "" {
		constraints.Description = req.Description
	}
	if constraints.FlexibilityDays <= 0 {
		constraints.FlexibilityDays = domain.DefaultFlexibilityDays
	}

	now := s.now().UTC()
	task := &domain.ScheduledTask{
		ID:               idObj.String(),
		Title:            title.String(),
		TaskType:         taskType,
		EnergyRequired:   energy,
		FocusRequired:    focus,
		ScheduledDate:    date,
		CycleDay:         day,
		Phase:            phase,
		Confidence:       confidence,
		Reasoning:        nonNil(req.Reasoning),
		OptimizationTips: nonNil(req.OptimizationTips),
		Alternatives:     nonNil(req.Alternatives),
		ShortSummary:     req.ShortSummary,
		Constraints:      constraints,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	created, err := s.repo.CreateTask(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return created, nil
}

// GetTask retrieves a scheduled task by ID.
func (s *Service) GetTask(ctx context.Context, id string) (*domain.ScheduledTask, error) {
	if id == "" {
		return nil, domain.ErrTaskNotFound
	}
	return s.repo.FindTaskByID(ctx, id)
}

// ListUpcoming returns incomplete tasks dated today or later.
// A non-positive limit uses the default; larger limits are capped.
func (s *Service) ListUpcoming(ctx context.Context, limit int) ([]*domain.ScheduledTask, error) {
	if limit <= 0 {
		limit = s.config.DefaultUpcomingLimit
	}
	limit = min(limit, s.config.MaxUpcomingLimit)

	tasks, err := s.repo.ListUpcoming(ctx, cycle.CalendarDate(s.now()), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming tasks: %w", err)
	}
	return tasks, nil
}

// ListAll returns every scheduled task, newest first.
func (s *Service) ListAll(ctx context.Context) ([]*domain.ScheduledTask, error) {
	tasks, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// SetCompleted marks a task done or not done.
func (s *Service) SetCompleted(ctx context.Context, id string, completed bool) (*domain.ScheduledTask, error) {
	if id == "" {
		return nil, domain.ErrTaskNotFound
	}
	return s.repo.SetCompleted(ctx, id, completed, s.now().UTC())
}

// DeleteTask removes a task.
func (s *Service) DeleteTask(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrTaskNotFound
	}
	return s.repo.DeleteTask(ctx, id)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
