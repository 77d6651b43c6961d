package gcs

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"

	"github.com/cyclesync/cyclesync/internal/application/scheduling"
	"github.com/cyclesync/cyclesync/internal/config"
	"github.com/cyclesync/cyclesync/internal/domain"
	"github.com/cyclesync/cyclesync/internal/infrastructure/persistence/compliance"
)

// newTestStore returns a store under a unique prefix. It needs a reachable
// bucket: real credentials, or STORAGE_EMULATOR_HOST pointing at an emulator.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	cfg, err := config.LoadTestConfig()
	require.NoError(t, err)
	bucket := cfg.GCSBucket
	if bucket == "" {
		t.Skip("TEST_GCS_BUCKET not set, skipping GCS tests")
	}

	ctx := context.Background()
	store, err := NewStore(ctx, bucket, "test-"+uuid.NewString())
	require.NoError(t, err)

	t.Cleanup(func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		it := store.client.Bucket(bucket).Objects(cleanupCtx, &storage.Query{Prefix: store.prefix})
		for {
			attrs, err := it.Next()
			if errors.Is(err, iterator.Done) || err != nil {
				break
			}
			_ = store.client.Bucket(bucket).Object(attrs.Name).Delete(cleanupCtx)
		}
		_ = store.Close()
	})
	return store
}

func TestGCSStore_Compliance(t *testing.T) {
	compliance.RunRepositoryComplianceTest(t, func(t *testing.T) scheduling.Repository {
		return newTestStore(t)
	})
}

func TestGCSStore_DuplicateID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	task := compliance.NewTask(t, "Once", time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC), 0)
	_, err := store.CreateTask(ctx, task)
	require.NoError(t, err)

	_, err = store.CreateTask(ctx, task)
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestNewStoreWithClient_Prefix(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{"", "tasks/"},
		{"prod", "prod/tasks/"},
		{"prod/", "prod/tasks/"},
	}
	for _, tt := range tests {
		s := NewStoreWithClient(nil, "bucket", tt.prefix)
		assert.Equal(t, tt.want, s.prefix)
	}
}

func TestIsPreconditionFailed(t *testing.T) {
	assert.True(t, isPreconditionFailed(&googleapi.Error{Code: 412}))
	assert.False(t, isPreconditionFailed(&googleapi.Error{Code: 404}))
	assert.False(t, isPreconditionFailed(errors.New("boom")))
}

func TestValidateID(t *testing.T) {
	assert.NoError(t, validateID(uuid.NewString()))
	assert.ErrorIs(t, validateID("../escape"), domain.ErrInvalidID)
}
