// Package checklist manages the dashboard's manual quick tasks and daily
// self-report logs. The collection is owned by the caller and passed in
// explicitly through a Store.
package checklist

import (
	"context"
	"slices"
	"sync"

	"github.com/cyclesync/cyclesync/internal/domain"
)

// Store defines storage operations for checklist items and quick logs.
type Store interface {
	// List returns items in insertion order.
	List(ctx context.Context) ([]domain.ChecklistItem, error)

	// Add appends an item.
	Add(ctx context.Context, item domain.ChecklistItem) error

	// Toggle flips the completion flag and returns the updated item.
	// Returns domain.ErrChecklistItemNotFound if the item doesn't exist.
	Toggle(ctx context.Context, id string) (domain.ChecklistItem, error)

	// Delete removes an item.
	// Returns domain.ErrChecklistItemNotFound if the item doesn't exist.
	Delete(ctx context.Context, id string) error

	// AddLog prepends a quick log entry; ListLogs returns newest first.
	AddLog(ctx context.Context, log domain.QuickLog) error
	ListLogs(ctx context.Context, limit int) ([]domain.QuickLog, error)
}

// MemoryStore is a process-local Store. Safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	items []domain.ChecklistItem
	logs  []domain.QuickLog
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) List(_ context.Context) ([]domain.ChecklistItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items), nil
}

func (s *MemoryStore) Add(_ context.Context, item domain.ChecklistItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, item)
	return nil
}

func (s *MemoryStore) Toggle(_ context.Context, id string) (domain.ChecklistItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return domain.ChecklistItem{}, domain.ErrChecklistItemNotFound
	}
	s.items[i].Completed = !s.items[i].Completed
	return s.items[i], nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return domain.ErrChecklistItemNotFound
	}
	s.items = slices.Delete(s.items, i, i+1)
	return nil
}

func (s *MemoryStore) AddLog(_ context.Context, log domain.QuickLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = slices.Insert(s.logs, 0, log)
	return nil
}

func (s *MemoryStore) ListLogs(_ context.Context, limit int) ([]domain.QuickLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.logs) {
		limit = len(s.logs)
	}
	return slices.Clone(s.logs[:limit]), nil
}

func (s *MemoryStore) indexOf(id string) int {
	return slices.IndexFunc(s.items, func(item domain.ChecklistItem) bool { return item.ID == id })
}
