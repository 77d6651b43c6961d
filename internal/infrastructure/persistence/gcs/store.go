// Package gcs stores scheduled tasks as one JSON object per task in a
// Google Cloud Storage bucket.
package gcs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/cyclesync/cyclesync/internal/application/scheduling"
	"github.com/cyclesync/cyclesync/internal/domain"
	"github.com/cyclesync/cyclesync/internal/infrastructure/persistence/record"
)

const (
	// maxConcurrentReads bounds parallel object downloads during listing.
	maxConcurrentReads = 20
	// maxUpdateAttempts bounds optimistic-concurrency retries on SetCompleted.
	maxUpdateAttempts = 3
)

// Store implements scheduling.Repository on a GCS bucket.
type Store struct {
	client *storage.Client
	bucket string
	prefix string
}

var _ scheduling.Repository = (*Store)(nil)

// NewStore creates a GCS client and a store rooted at prefix inside bucket.
// Credentials come from the environment (GOOGLE_APPLICATION_CREDENTIALS,
// STORAGE_EMULATOR_HOST) unless opts say otherwise.
func NewStore(ctx context.Context, bucket, prefix string, opts ...option.ClientOption) (*Store, error) {
	if bucket == "" {
		return nil, errors.New("gcs bucket is required")
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	return NewStoreWithClient(client, bucket, prefix), nil
}

// NewStoreWithClient wraps an existing client.
func NewStoreWithClient(client *storage.Client, bucket, prefix string) *Store {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Store{client: client, bucket: bucket, prefix: prefix + "tasks/"}
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

// Ping checks that the bucket is reachable.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.client.Bucket(s.bucket).Attrs(ctx)
	return err
}

func (s *Store) object(id string) *storage.ObjectHandle {
	return s.client.Bucket(s.bucket).Object(s.prefix + id + ".json")
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidID, err)
	}
	return nil
}

func isPreconditionFailed(err error) bool {
	var gErr *googleapi.Error
	return errors.As(err, &gErr) && gErr.Code == http.StatusPreconditionFailed
}

// CreateTask writes a new object. An existing object with the same id is
// left untouched.
func (s *Store) CreateTask(ctx context.Context, task *domain.ScheduledTask) (*domain.ScheduledTask, error) {
	if err := validateID(task.ID); err != nil {
		return nil, err
	}

	doc := record.FromDomain(task)
	err := s.write(ctx, s.object(task.ID).If(storage.Conditions{DoesNotExist: true}), doc)
	if err != nil {
		if isPreconditionFailed(err) {
			return nil, fmt.Errorf("%w: task %s already exists", domain.ErrInvalidID, task.ID)
		}
		return nil, err
	}
	return doc.ToDomain()
}

// FindTaskByID downloads a single task.
func (s *Store) FindTaskByID(ctx context.Context, id string) (*domain.ScheduledTask, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	doc, _, err := s.read(ctx, s.object(id))
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

// SetCompleted rewrites the object guarded by its generation number,
// retrying when a concurrent writer got there first.
func (s *Store) SetCompleted(ctx context.Context, id string, completed bool, updatedAt time.Time) (*domain.ScheduledTask, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	obj := s.object(id)
	for attempt := 1; ; attempt++ {
		doc, generation, err := s.read(ctx, obj)
		if err != nil {
			return nil, err
		}
		doc.Completed = completed
		doc.UpdatedAt = updatedAt.UTC()

		err = s.write(ctx, obj.If(storage.Conditions{GenerationMatch: generation}), doc)
		if err == nil {
			return doc.ToDomain()
		}
		if !isPreconditionFailed(err) || attempt == maxUpdateAttempts {
			return nil, err
		}
	}
}

// DeleteTask removes the task object.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	if err := s.object(id).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
		}
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

func (s *Store) write(ctx context.Context, obj *storage.ObjectHandle, doc record.Task) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	w := obj.NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close object writer: %w", err)
	}
	return nil
}

// read returns the decoded document and the generation it was read at.
func (s *Store) read(ctx context.Context, obj *storage.ObjectHandle) (record.Task, int64, error) {
	r, err := obj.NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return record.Task{}, 0, domain.ErrTaskNotFound
		}
		return record.Task{}, 0, fmt.Errorf("failed to open object: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return record.Task{}, 0, fmt.Errorf("failed to read object: %w", err)
	}

	var doc record.Task
	if err := json.Unmarshal(data, &doc); err != nil {
		return record.Task{}, 0, fmt.Errorf("failed to unmarshal task: %w", err)
	}
	return doc, r.Attrs.Generation, nil
}

// loadAll lists the prefix and downloads every task in parallel.
// Objects deleted between listing and download are skipped.
func (s *Store) loadAll(ctx context.Context) ([]*domain.ScheduledTask, error) {
	var names []string
	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: s.prefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}
		if strings.HasSuffix(attrs.Name, ".json") {
			names = append(names, attrs.Name)
		}
	}

	var (
		mu    sync.Mutex
		tasks = make([]*domain.ScheduledTask, 0, len(names))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentReads)
	for _, name := range names {
		g.Go(func() error {
			doc, _, err := s.read(gctx, s.client.Bucket(s.bucket).Object(name))
			if errors.Is(err, domain.ErrTaskNotFound) {
				return nil
			}
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
