package repository_test

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/releaseboard/pkg/domain/interfaces"
	"github.com/secmon-lab/releaseboard/pkg/repository/firestore"
	"github.com/secmon-lab/releaseboard/pkg/repository/memory"
	"github.com/secmon-lab/releaseboard/pkg/repository/sql"
	"github.com/secmon-lab/releaseboard/pkg/utils/clock"
)

type repoFactory func(t *testing.T, opts ...backendOption) interfaces.Repository

type backendConfig struct {
	clock clock.Clock
}

type backendOption func(*backendConfig)

// withClock makes the backend stamp CreatedAt and UpdatedAt with c
func withClock(c clock.Clock) backendOption {
	return func(cfg *backendConfig) {
		cfg.clock = c
	}
}

func newBackendConfig(opts []backendOption) *backendConfig {
	cfg := &backendConfig{clock: clock.System()}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func newMemoryRepository(t *testing.T, opts ...backendOption) interfaces.Repository {
	cfg := newBackendConfig(opts)
	return memory.New(memory.WithClock(cfg.clock))
}

func newFirestoreRepository(t *testing.T, opts ...backendOption) interfaces.Repository {
	t.Helper()
	cfg := newBackendConfig(opts)

	projectID := os.Getenv("RELEASEBOARD_TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("RELEASEBOARD_TEST_FIRESTORE_PROJECT_ID not set")
	}
	databaseID := os.Getenv("RELEASEBOARD_TEST_FIRESTORE_DATABASE_ID")

	ctx := context.Background()
	prefix := fmt.Sprintf("test_%d", time.Now().UnixNano())
	repo, err := firestore.New(ctx, projectID, databaseID,
		firestore.WithCollectionPrefix(prefix),
		firestore.WithClock(cfg.clock),
	)
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		if err := repo.Close(ctx); err != nil {
			t.Errorf("failed to close firestore repository: %v", err)
		}
	})
	return repo
}

func newSQLRepositoryFromEnv(env string) repoFactory {
	return func(t *testing.T, opts ...backendOption) interfaces.Repository {
		t.Helper()
		cfg := newBackendConfig(opts)

		dsn := os.Getenv(env)
		if dsn == "" {
			t.Skip(env + " not set")
		}

		ctx := context.Background()
		repo, err := sql.New(ctx, dsn, sql.WithClock(cfg.clock))
		gt.NoError(t, err).Required()
		gt.NoError(t, repo.Migrate(ctx)).Required()
		t.Cleanup(func() {
			if err := repo.Close(ctx); err != nil {
				t.Errorf("failed to close sql repository: %v", err)
			}
		})
		return repo
	}
}

// runAllBackends runs a contract test against every repository implementation.
// Backends other than memory are skipped unless their environment is configured.
func runAllBackends(t *testing.T, run func(t *testing.T, newRepo repoFactory)) {
	t.Run("memory", func(t *testing.T) { run(t, newMemoryRepository) })
	t.Run("firestore", func(t *testing.T) { run(t, newFirestoreRepository) })
	t.Run("postgres", func(t *testing.T) { run(t, newSQLRepositoryFromEnv("RELEASEBOARD_TEST_POSTGRES_DSN")) })
	t.Run("mysql", func(t *testing.T) { run(t, newSQLRepositoryFromEnv("RELEASEBOARD_TEST_MYSQL_DSN")) })
}

// uniqueCode returns a code that does not collide across runs sharing a database
func uniqueCode(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}

// isolatedTime returns a second-aligned instant in a random hour of the past,
// so time range queries in a shared database only see rows of the calling test.
func isolatedTime() time.Time {
	base := time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)
	return base.Add(time.Duration(rand.N(200000)) * time.Hour)
}
