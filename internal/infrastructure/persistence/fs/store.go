// Package fs stores scheduled tasks as one JSON file per task in a local
// directory.
package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/cyclesync/cyclesync/internal/application/scheduling"
	"github.com/cyclesync/cyclesync/internal/domain"
	"github.com/cyclesync/cyclesync/internal/infrastructure/persistence/record"
)

// maxConcurrentReads keeps listing under typical open-file limits.
const maxConcurrentReads = 20

// Store implements scheduling.Repository on a directory of JSON files.
// Safe for concurrent use within one process.
type Store struct {
	baseDir string
	mu      sync.RWMutex
}

var _ scheduling.Repository = (*Store)(nil)

// NewStore creates baseDir if needed and returns a store over it.
func NewStore(baseDir string) (*Store, error) {
	if baseDir == "" {
		return nil, errors.New("fs base directory is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &Store{baseDir: baseDir}, nil
}

// Ping checks that the base directory is still a reachable directory.
func (s *Store) Ping(_ context.Context) error {
	info, err := os.Stat(s.baseDir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.baseDir)
	}
	return nil
}

// filePath validates id before joining it so callers cannot escape baseDir.
func (s *Store) filePath(id string) (string, error) {
	if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrInvalidID, err)
	}
	return filepath.Join(s.baseDir, id+".json"), nil
}

// CreateTask writes a new task file.
func (s *Store) CreateTask(_ context.Context, task *domain.ScheduledTask) (*domain.ScheduledTask, error) {
	path, err := s.filePath(task.ID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("%w: task %s already exists", domain.ErrInvalidID, task.ID)
	}

	doc := record.FromDomain(task)
	if err := writeFile(path, doc); err != nil {
		return nil, err
	}
	return doc.ToDomain()
}

// FindTaskByID reads a task file.
func (s *Store) FindTaskByID(_ context.Context, id string) (*domain.ScheduledTask, error) {
	path, err := s.filePath(id)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return doc.ToDomain()
}

// ListUpcoming returns incomplete tasks on or after from, earliest first.
func (s *Store) ListUpcoming(ctx context.Context, from time.Time, limit int) ([]*domain.ScheduledTask, error) {
	tasks, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	return record.SelectUpcoming(tasks, from, limit), nil
}

// ListAll returns every task, newest first.
func (s *Store) ListAll(ctx context.Context) ([]*domain.ScheduledTask, error) {
	tasks, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	record.SortNewestFirst(tasks)
	return tasks, nil
}

// SetCompleted rewrites the task file with the new flag.
func (s *Store) SetCompleted(_ context.Context, id string, completed bool, updatedAt time.Time) (*domain.ScheduledTask, error) {
	path, err := s.filePath(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := readFile(path)
	if err != nil {
		return nil, err
	}
	doc.Completed = completed
	doc.UpdatedAt = updatedAt.UTC()
	if err := writeFile(path, doc); err != nil {
		return nil, err
	}
	return doc.ToDomain()
}

// DeleteTask removes a task file.
func (s *Store) DeleteTask(_ context.Context, id string) error {
	path, err := s.filePath(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// loadAll reads every task file in parallel.
func (s *Store) loadAll(ctx context.Context) ([]*domain.ScheduledTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var (
		mu    sync.Mutex
		tasks = make([]*domain.ScheduledTask, 0, len(entries))
	)
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentReads)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		g.Go(func() error {
			doc, err := readFile(filepath.Join(s.baseDir, entry.Name()))
			if err != nil {
				return err
			}
			task, err := doc.ToDomain()
			if err != nil {
				return err
			}
			mu.Lock()
			tasks = append(tasks, task)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tasks, nil
}

func readFile(path string) (record.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return record.Task{}, domain.ErrTaskNotFound
		}
		return record.Task{}, fmt.Errorf("failed to read file: %w", err)
	}

	var doc record.Task
	if err := json.Unmarshal(data, &doc); err != nil {
		return record.Task{}, fmt.Errorf("failed to unmarshal %s: %w", filepath.Base(path), err)
	}
	return doc, nil
}

// writeFile replaces path atomically via a temp file and rename.
func writeFile(path string, doc record.Task) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".task-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}
