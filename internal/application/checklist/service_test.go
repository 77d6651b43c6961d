package checklist

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyclesync/cyclesync/internal/cycle"
	"github.com/cyclesync/cyclesync/internal/domain"
)

var testNow = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

func newTestService() (*Service, *MemoryStore) {
	store := NewMemoryStore()
	svc := NewService(store)
	svc.now = func() time.Time { return testNow }
	return svc, store
}

func TestAnnotate(t *testing.T) {
	items := []domain.ChecklistItem{
		{ID: "1", Title: "Brainstorm podcast topics"},
		{ID: "2", Title: "Buy groceries"},
		{ID: "3", Title: "Proofread the newsletter"},
	}

	got := Annotate(items, cycle.PhaseFollicular)

	require.Len(t, got, 3)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, cycle.PhaseFollicular, got[0].Phase)
	assert.True(t, got[0].OptimalNow)

	assert.Equal(t, cycle.PhaseAny, got[1].Phase)
	assert.Equal(t, "Any time", got[1].Display.Name)
	assert.True(t, got[1].OptimalNow)

	assert.Equal(t, cycle.PhaseLuteal, got[2].Phase)
	assert.False(t, got[2].OptimalNow)
}

func TestService_AddToggleDelete(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	added, err := svc.Add(ctx, "  Review pull requests ", cycle.PhaseLuteal)
	require.NoError(t, err)
	assert.NotEmpty(t, added.ID)
	assert.Equal(t, "Review pull requests", added.Title)
	assert.Equal(t, testNow, added.CreatedAt)
	assert.True(t, added.OptimalNow)

	toggled, err := svc.Toggle(ctx, added.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)

	toggled, err = svc.Toggle(ctx, added.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Completed)

	items, err := svc.List(ctx, cycle.PhaseMenstrual)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.False(t, items[0].OptimalNow)

	require.NoError(t, svc.Delete(ctx, added.ID))
	assert.ErrorIs(t, svc.Delete(ctx, added.ID), domain.ErrChecklistItemNotFound)
	_, err = svc.Toggle(ctx, added.ID)
	assert.ErrorIs(t, err, domain.ErrChecklistItemNotFound)

	items, err = svc.List(ctx, cycle.PhaseMenstrual)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestService_AddRejectsEmptyTitle(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Add(context.Background(), "   ", cycle.PhaseLuteal)
	assert.ErrorIs(t, err, domain.ErrTitleRequired)
}

func TestService_Log(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	params := cycle.Params{LastPeriodStart: testNow.AddDate(0, 0, -2), CycleLength: 28}

	entry, err := svc.Log(ctx, LogRequest{Energy: 2, Mood: " tired ", Note: "cramps", Cycle: params})
	require.NoError(t, err)
	assert.Equal(t, 3, entry.CycleDay)
	assert.Equal(t, cycle.PhaseMenstrual, entry.Phase)
	assert.Equal(t, "tired", entry.Mood)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), entry.Date)

	second, err := svc.Log(ctx, LogRequest{Energy: 4, Cycle: params})
	require.NoError(t, err)

	logs, err := svc.Logs(ctx, 0)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, second.ID, logs[0].ID, "newest first")

	logs, err = svc.Logs(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestService_LogValidation(t *testing.T) {
	svc, _ := newTestService()
	params := cycle.Params{LastPeriodStart: testNow, CycleLength: 28}

	_, err := svc.Log(context.Background(), LogRequest{Energy: 0, Cycle: params})
	assert.ErrorIs(t, err, domain.ErrInvalidEnergy)

	_, err = svc.Log(context.Background(), LogRequest{Energy: 3})
	assert.ErrorIs(t, err, cycle.ErrInvalidCycleLength)
}

func TestMemoryStore_ConcurrentAdds(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Add(ctx, domain.ChecklistItem{ID: fmt.Sprintf("item-%d", i), Title: "x"})
		}()
	}
	wg.Wait()

	items, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 50)
}

func TestMemoryStore_ListReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Add(ctx, domain.ChecklistItem{ID: "a", Title: "original"}))

	items, err := store.List(ctx)
	require.NoError(t, err)
	items[0].Title = "mutated"

	items, err = store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "original", items[0].Title)
}
