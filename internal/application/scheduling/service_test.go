package scheduling

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/cyclesync/cyclesync/internal/affinity"
	"github.com/cyclesync/cyclesync/internal/cycle"
	"github.com/cyclesync/cyclesync/internal/domain"
)

var (
	testNow    = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	testParams = cycle.Params{LastPeriodStart: time.Date(2025, 2, 26, 0, 0, 0, 0, time.UTC), CycleLength: 28}
)

// memoryRepo is a minimal in-memory Repository for service tests.
type memoryRepo struct {
	mu            sync.Mutex
	tasks         map[string]*domain.ScheduledTask
	capturedFrom  time.Time
	capturedLimit int
	createErr     error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{tasks: map[string]*domain.ScheduledTask{}}
}

func (m *memoryRepo) CreateTask(_ context.Context, task *domain.ScheduledTask) (*domain.ScheduledTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	stored := *task
	m.tasks[task.ID] = &stored
	return &stored, nil
}

func (m *memoryRepo) FindTaskByID(_ context.Context, id string) (*domain.ScheduledTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return task, nil
}

func (m *memoryRepo) ListUpcoming(_ context.Context, from time.Time, limit int) ([]*domain.ScheduledTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.capturedFrom = from
	m.capturedLimit = limit
	var out []*domain.ScheduledTask
	for _, task := range m.tasks {
		if !task.Completed && !task.ScheduledDate.Before(from) {
			out = append(out, task)
		}
	}
	return out, nil
}

func (m *memoryRepo) ListAll(_ context.Context) ([]*domain.ScheduledTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.ScheduledTask, 0, len(m.tasks))
	for _, task := range m.tasks {
		out = append(out, task)
	}
	return out, nil
}

func (m *memoryRepo) SetCompleted(_ context.Context, id string, completed bool, updatedAt time.Time) (*domain.ScheduledTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	task.Completed = completed
	task.UpdatedAt = updatedAt
	return task, nil
}

func (m *memoryRepo) DeleteTask(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(m.tasks, id)
	return nil
}

// stubGenerator returns a fixed response, or blocks until the context ends.
type stubGenerator struct {
	response string
	err      error
	block    bool
	prompts  []string
}

func (g *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	if g.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return g.response, g.err
}

func newTestService(repo Repository, gen Generator, cfg Config) *Service {
	svc := NewService(repo, gen, cfg)
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestSuggest_WithoutGeneratorUsesFallback(t *testing.T) {
	svc := newTestService(newMemoryRepo(), nil, Config{})

	result, err := svc.Suggest(context.Background(), SuggestRequest{
		Description: "Brainstorm campaign ideas for spring",
		Cycle:       testParams,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.TaskTypeCreative, result.TaskType, "general type is replaced by detection")
	assert.Equal(t, 13, result.State.CycleDay)
	assert.Equal(t, cycle.PhaseFollicular, result.State.Phase)

	s := result.Suggestion
	assert.Equal(t, domain.SourceFallback, s.Source)
	assert.Equal(t, 0.8, s.Confidence)
	assert.Equal(t, time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC), s.SuggestedDate)
	assert.Equal(t, 14, s.CycleDay)
	assert.Equal(t, affinity.FallbackReason, s.Reasoning[0])
}

func TestSuggest_UsesModelAnswer(t *testing.T) {
	gen := &stubGenerator{response: validResponse}
	svc := newTestService(newMemoryRepo(), gen, Config{})

	result, err := svc.Suggest(context.Background(), SuggestRequest{
		Description:    "Deliver the quarterly demo to the board",
		TaskType:       "presentation",
		EnergyRequired: "high",
		AvailableDays:  []string{"wednesday"},
		Cycle:          testParams,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.SourceModel, result.Suggestion.Source)
	assert.Equal(t, 0.85, result.Suggestion.Confidence)
	assert.Equal(t, cycle.PhaseOvulatory, result.Suggestion.Phase)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Available Days: wednesday")
	assert.Contains(t, gen.prompts[0], "Energy Required: high")
}

func TestSuggest_ModelFailuresFallBack(t *testing.T) {
	tests := []struct {
		name string
		gen  *stubGenerator
	}{
		{"transport error", &stubGenerator{err: errors.New("connection refused")}},
		{"html page", &stubGenerator{response: "<html><body>Bad Gateway</body></html>"}},
		{"missing fields", &stubGenerator{response: `{"confidence": 0.9}`}},
		{"not json", &stubGenerator{response: "Tuesday looks good"}},
		{"timeout", &stubGenerator{block: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(newMemoryRepo(), tt.gen, Config{ModelTimeout: 20 * time.Millisecond})

			result, err := svc.Suggest(context.Background(), SuggestRequest{
				Description: "Proofread the annual report",
				Cycle:       testParams,
			})
			require.NoError(t, err, "model failures never surface as errors")
			assert.Equal(t, domain.SourceFallback, result.Suggestion.Source)
			assert.Equal(t, domain.TaskTypeDetail, result.TaskType)
			assert.Equal(t, affinity.BaselineConfidence, result.Suggestion.Confidence)
		})
	}
}

func TestSuggest_InvalidInput(t *testing.T) {
	svc := newTestService(newMemoryRepo(), nil, Config{})

	tests := []struct {
		name    string
		req     SuggestRequest
		wantErr error
	}{
		{"empty description", SuggestRequest{Description: "  ", Cycle: testParams}, domain.ErrDescriptionRequired},
		{"bad task type", SuggestRequest{Description: "x", TaskType: "chores", Cycle: testParams}, domain.ErrInvalidTaskType},
		{"bad energy", SuggestRequest{Description: "x", EnergyRequired: "max", Cycle: testParams}, domain.ErrInvalidLevel},
		{"bad focus", SuggestRequest{Description: "x", FocusRequired: "laser", Cycle: testParams}, domain.ErrInvalidLevel},
		{"bad weekday", SuggestRequest{Description: "x", AvailableDays: []string{"funday"}, Cycle: testParams}, domain.ErrInvalidWeekday},
		{"bad cycle length", SuggestRequest{Description: "x", Cycle: cycle.Params{LastPeriodStart: testNow}}, cycle.ErrInvalidCycleLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Suggest(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSuggest_RecordsSourceMetric(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	previous := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)
	t.Cleanup(func() { otel.SetMeterProvider(previous) })

	svc := newTestService(newMemoryRepo(), nil, Config{})
	_, err := svc.Suggest(context.Background(), SuggestRequest{Description: "Buy groceries", Cycle: testParams})
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var found bool
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "cyclesync.suggestions" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			require.Len(t, sum.DataPoints, 1)
			assert.Equal(t, int64(1), sum.DataPoints[0].Value)
			source, ok := sum.DataPoints[0].Attributes.Value("source")
			require.True(t, ok)
			assert.Equal(t, "fallback", source.AsString())
			found = true
		}
	}
	assert.True(t, found, "suggestion counter not exported")
}

func TestSaveTask_RecomputesCyclePosition(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, nil, Config{})

	task, err := svc.SaveTask(context.Background(), SaveTaskRequest{
		Description:   "Please take some time to review the quarterly budget numbers",
		TaskType:      "detail",
		ScheduledDate: time.Date(2025, 3, 20, 9, 30, 0, 0, time.UTC),
		CycleDay:      99,
		Phase:         "menstrual",
		Confidence:    0.8,
		Cycle:         &testParams,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, task.ID)
	assert.Equal(t, "review the quarterly budget", task.Title)
	assert.Equal(t, time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC), task.ScheduledDate)
	assert.Equal(t, 23, task.CycleDay)
	assert.Equal(t, cycle.PhaseLuteal, task.Phase)
	assert.Equal(t, domain.LevelMedium, task.EnergyRequired)
	assert.Equal(t, domain.DefaultFlexibilityDays, task.Constraints.FlexibilityDays)
	assert.Equal(t, testNow, task.CreatedAt)
	assert.NotNil(t, task.Reasoning)
	assert.NotNil(t, task.Alternatives)

	stored, err := svc.GetTask(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.Title, stored.Title)
}

func TestSaveTask_TrustsCallerPositionWithoutParams(t *testing.T) {
	svc := newTestService(newMemoryRepo(), nil, Config{})

	task, err := svc.SaveTask(context.Background(), SaveTaskRequest{
		Title:         "Pitch rehearsal",
		ScheduledDate: time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC),
		CycleDay:      15,
		Phase:         "ovulatory",
		Confidence:    0.9,
	})
	require.NoError(t, err)
	assert.Equal(t, 15, task.CycleDay)
	assert.Equal(t, cycle.PhaseOvulatory, task.Phase)
}

func TestSaveTask_Validation(t *testing.T) {
	svc := newTestService(newMemoryRepo(), nil, Config{})
	date := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		req     SaveTaskRequest
		wantErr error
	}{
		{"no title or description", SaveTaskRequest{ScheduledDate: date, CycleDay: 1, Phase: "menstrual"}, domain.ErrTitleRequired},
		{"bad confidence", SaveTaskRequest{Title: "x", ScheduledDate: date, CycleDay: 1, Phase: "menstrual", Confidence: 1.5}, domain.ErrInvalidConfidence},
		{"no date", SaveTaskRequest{Title: "x", CycleDay: 1, Phase: "menstrual"}, domain.ErrInvalidDate},
		{"bad phase", SaveTaskRequest{Title: "x", ScheduledDate: date, CycleDay: 1, Phase: "any"}, domain.ErrInvalidPhase},
		{"bad cycle day", SaveTaskRequest{Title: "x", ScheduledDate: date, CycleDay: 0, Phase: "luteal"}, domain.ErrInvalidCycleDay},
		{"bad task type", SaveTaskRequest{Title: "x", TaskType: "misc", ScheduledDate: date, CycleDay: 1, Phase: "luteal"}, domain.ErrInvalidTaskType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SaveTask(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSaveTask_WrapsRepositoryError(t *testing.T) {
	repo := newMemoryRepo()
	repo.createErr = errors.New("disk full")
	svc := newTestService(repo, nil, Config{})

	_, err := svc.SaveTask(context.Background(), SaveTaskRequest{
		Title: "x", ScheduledDate: testNow, CycleDay: 1, Phase: "menstrual",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestListUpcoming_Limits(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		want      int
	}{
		{"zero uses default", 0, DefaultUpcomingLimit},
		{"negative uses default", -5, DefaultUpcomingLimit},
		{"within range kept", 25, 25},
		{"capped at max", 500, MaxUpcomingLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemoryRepo()
			svc := newTestService(repo, nil, Config{})

			_, err := svc.ListUpcoming(context.Background(), tt.requested)
			require.NoError(t, err)
			assert.Equal(t, tt.want, repo.capturedLimit)
			assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), repo.capturedFrom)
		})
	}
}

func TestCompletionAndDelete(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, nil, Config{})
	ctx := context.Background()

	task, err := svc.SaveTask(ctx, SaveTaskRequest{
		Title: "Edit chapter two", ScheduledDate: testNow.AddDate(0, 0, 2), CycleDay: 15, Phase: "ovulatory",
	})
	require.NoError(t, err)

	upcoming, err := svc.ListUpcoming(ctx, 0)
	require.NoError(t, err)
	assert.True(t, slices.ContainsFunc(upcoming, func(u *domain.ScheduledTask) bool { return u.ID == task.ID }))

	done, err := svc.SetCompleted(ctx, task.ID, true)
	require.NoError(t, err)
	assert.True(t, done.Completed)

	upcoming, err = svc.ListUpcoming(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, upcoming)

	require.NoError(t, svc.DeleteTask(ctx, task.ID))
	assert.ErrorIs(t, svc.DeleteTask(ctx, task.ID), domain.ErrTaskNotFound)
	_, err = svc.SetCompleted(ctx, "", true)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}
