// Package compliance provides a shared behavioural test suite for
// scheduling.Repository implementations.
package compliance

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyclesync/cyclesync/internal/application/scheduling"
	"github.com/cyclesync/cyclesync/internal/cycle"
	"github.com/cyclesync/cyclesync/internal/domain"
)

var baseTime = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NewTask builds a fully populated task scheduled on the given date.
// Timestamps are whole seconds so every backend round-trips them exactly.
func NewTask(t *testing.T, title string, scheduled time.Time, createdOffset time.Duration) *domain.ScheduledTask {
	t.Helper()
	id, err := uuid.NewV7()
	require.NoError(t, err)

	due := scheduled.AddDate(0, 0, 3)
	created := baseTime.Add(createdOffset)
	return &domain.ScheduledTask{
		ID:             id.String(),
		Title:          title,
		TaskType:       domain.TaskTypeDetail,
		EnergyRequired: domain.LevelMedium,
		FocusRequired:  domain.LevelHigh,
		ScheduledDate:  scheduled,
		CycleDay:       20,
		Phase:          cycle.PhaseLuteal,
		Confidence:     0.85,
		Reasoning:      []string{"Attention to detail peaks", "Calmer energy"},
		OptimizationTips: []string{
			"Batch the review into one sitting",
		},
		Alternatives: []domain.Alternative{
			{Date: scheduled.AddDate(0, 0, 1), CycleDay: 21, Phase: cycle.PhaseLuteal, Confidence: 0.6, Reason: "Still luteal"},
		},
		ShortSummary: "Review during luteal focus",
		Constraints: domain.Constraints{
			Description:     "before the board meeting",
			DueDate:         &due,
			AvailableDays:   []time.Weekday{time.Monday, time.Thursday},
			FlexibilityDays: 5,
		},
		CreatedAt: created,
		UpdatedAt: created,
	}
}

// RunRepositoryComplianceTest runs a standard set of tests against a Repository.
// setup must return a fresh (empty) Repository and register its own cleanup.
func RunRepositoryComplianceTest(t *testing.T, setup func(t *testing.T) scheduling.Repository) {
	t.Run("CreateAndFind", func(t *testing.T) {
		repo := setup(t)
		ctx := context.Background()

		task := NewTask(t, "Quarterly review", date(2025, 3, 18), 0)
		created, err := repo.CreateTask(ctx, task)
		require.NoError(t, err)
		assert.Equal(t, task.ID, created.ID)

		fetched, err := repo.FindTaskByID(ctx, task.ID)
		require.NoError(t, err)
		assertTaskEqual(t, task, fetched)
	})

	t.Run("CreatePreservesEmptyLists", func(t *testing.T) {
		repo := setup(t)
		ctx := context.Background()

		task := NewTask(t, "Bare", date(2025, 3, 18), 0)
		task.Reasoning = nil
		task.OptimizationTips = nil
		task.Alternatives = nil
		task.Constraints = domain.Constraints{}

		_, err := repo.CreateTask(ctx, task)
		require.NoError(t, err)

		fetched, err := repo.FindTaskByID(ctx, task.ID)
		require.NoError(t, err)
		assert.NotNil(t, fetched.Reasoning)
		assert.Empty(t, fetched.Reasoning)
		assert.NotNil(t, fetched.Alternatives)
		assert.Nil(t, fetched.Constraints.DueDate)
		assert.Empty(t, fetched.Constraints.AvailableDays)
	})

	t.Run("FindMissing", func(t *testing.T) {
		repo := setup(t)

		_, err := repo.FindTaskByID(context.Background(), uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	})

	t.Run("FindInvalidID", func(t *testing.T) {
		repo := setup(t)

		_, err := repo.FindTaskByID(context.Background(), "../../etc/passwd")
		assert.ErrorIs(t, err, domain.ErrInvalidID)
	})

	t.Run("ListUpcoming", func(t *testing.T) {
		repo := setup(t)
		ctx := context.Background()

		past := NewTask(t, "Past", date(2025, 3, 9), 0)
		laterDay := NewTask(t, "Later", date(2025, 3, 14), 0)
		todaySecond := NewTask(t, "Today second", date(2025, 3, 10), 2*time.Minute)
		todayFirst := NewTask(t, "Today first", date(2025, 3, 10), time.Minute)
		done := NewTask(t, "Done", date(2025, 3, 12), 0)
		done.Completed = true

		for _, task := range []*domain.ScheduledTask{past, laterDay, todaySecond, todayFirst, done} {
			_, err := repo.CreateTask(ctx, task)
			require.NoError(t, err)
		}

		upcoming, err := repo.ListUpcoming(ctx, date(2025, 3, 10), 10)
		require.NoError(t, err)
		assert.Equal(t, []string{todayFirst.ID, todaySecond.ID, laterDay.ID}, ids(upcoming))

		limited, err := repo.ListUpcoming(ctx, date(2025, 3, 10), 2)
		require.NoError(t, err)
		assert.Equal(t, []string{todayFirst.ID, todaySecond.ID}, ids(limited))

		none, err := repo.ListUpcoming(ctx, date(2025, 4, 1), 10)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("ListAllNewestFirst", func(t *testing.T) {
		repo := setup(t)
		ctx := context.Background()

		first := NewTask(t, "First", date(2025, 3, 20), 0)
		second := NewTask(t, "Second", date(2025, 3, 11), time.Hour)
		third := NewTask(t, "Third", date(2025, 3, 1), 2*time.Hour)
		third.Completed = true

		for _, task := range []*domain.ScheduledTask{first, second, third} {
			_, err := repo.CreateTask(ctx, task)
			require.NoError(t, err)
		}

		all, err := repo.ListAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{third.ID, second.ID, first.ID}, ids(all))
	})

	t.Run("SetCompleted", func(t *testing.T) {
		repo := setup(t)
		ctx := context.Background()

		task := NewTask(t, "Toggle me", date(2025, 3, 12), 0)
		_, err := repo.CreateTask(ctx, task)
		require.NoError(t, err)

		updatedAt := baseTime.Add(24 * time.Hour)
		updated, err := repo.SetCompleted(ctx, task.ID, true, updatedAt)
		require.NoError(t, err)
		assert.True(t, updated.Completed)
		assert.True(t, updated.UpdatedAt.Equal(updatedAt))
		assert.True(t, updated.CreatedAt.Equal(task.CreatedAt))

		fetched, err := repo.FindTaskByID(ctx, task.ID)
		require.NoError(t, err)
		assert.True(t, fetched.Completed)

		upcoming, err := repo.ListUpcoming(ctx, date(2025, 3, 1), 10)
		require.NoError(t, err)
		assert.Empty(t, upcoming)

		reopened, err := repo.SetCompleted(ctx, task.ID, false, updatedAt.Add(time.Hour))
		require.NoError(t, err)
		assert.False(t, reopened.Completed)
	})

	t.Run("SetCompletedMissing", func(t *testing.T) {
		repo := setup(t)

		_, err := repo.SetCompleted(context.Background(), uuid.NewString(), true, baseTime)
		assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		repo := setup(t)
		ctx := context.Background()

		task := NewTask(t, "Delete me", date(2025, 3, 12), 0)
		_, err := repo.CreateTask(ctx, task)
		require.NoError(t, err)

		require.NoError(t, repo.DeleteTask(ctx, task.ID))

		_, err = repo.FindTaskByID(ctx, task.ID)
		assert.ErrorIs(t, err, domain.ErrTaskNotFound)

		err = repo.DeleteTask(ctx, task.ID)
		assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	})
}

func ids(tasks []*domain.ScheduledTask) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func assertTaskEqual(t *testing.T, want, got *domain.ScheduledTask) {
	t.Helper()
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Title, got.Title)
	assert.Equal(t, want.TaskType, got.TaskType)
	assert.Equal(t, want.EnergyRequired, got.EnergyRequired)
	assert.Equal(t, want.FocusRequired, got.FocusRequired)
	assert.True(t, want.ScheduledDate.Equal(got.ScheduledDate), "scheduled date: want %s got %s", want.ScheduledDate, got.ScheduledDate)
	assert.Equal(t, want.CycleDay, got.CycleDay)
	assert.Equal(t, want.Phase, got.Phase)
	assert.InDelta(t, want.Confidence, got.Confidence, 1e-9)
	assert.Equal(t, want.Reasoning, got.Reasoning)
	assert.Equal(t, want.OptimizationTips, got.OptimizationTips)
	assert.Equal(t, want.ShortSummary, got.ShortSummary)
	assert.Equal(t, want.Completed, got.Completed)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, want.UpdatedAt.Equal(got.UpdatedAt))

	require.Len(t, got.Alternatives, len(want.Alternatives))
	for i := range want.Alternatives {
		assert.True(t, want.Alternatives[i].Date.Equal(got.Alternatives[i].Date))
		assert.Equal(t, want.Alternatives[i].Phase, got.Alternatives[i].Phase)
		assert.Equal(t, want.Alternatives[i].Reason, got.Alternatives[i].Reason)
	}

	assert.Equal(t, want.Constraints.Description, got.Constraints.Description)
	assert.Equal(t, want.Constraints.AvailableDays, got.Constraints.AvailableDays)
	assert.Equal(t, want.Constraints.FlexibilityDays, got.Constraints.FlexibilityDays)
	if want.Constraints.DueDate == nil {
		assert.Nil(t, got.Constraints.DueDate)
	} else {
		require.NotNil(t, got.Constraints.DueDate)
		assert.True(t, want.Constraints.DueDate.Equal(*got.Constraints.DueDate))
	}
}
