package config_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/releaseboard/pkg/cli/config"
)

func TestRepositoryConfigure(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		repo, err := config.NewRepositoryForTest(config.BackendMemory, "").Configure(ctx)
		gt.NoError(t, err).Required()
		gt.NoError(t, repo.Close(ctx))
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := config.NewRepositoryForTest("bigtable", "").Configure(ctx)
		gt.Error(t, err).Is(config.ErrUnknownBackend)
	})

	t.Run("firestore needs a project", func(t *testing.T) {
		_, err := config.NewRepositoryForTest(config.BackendFirestore, "").Configure(ctx)
		gt.Error(t, err)
	})

	t.Run("relational backends need a DSN", func(t *testing.T) {
		for _, backend := range []string{config.BackendPostgres, config.BackendMySQL} {
			_, err := config.NewRepositoryForTest(backend, "").Configure(ctx)
			gt.Error(t, err)
		}
	})

	t.Run("IsSQL", func(t *testing.T) {
		gt.Bool(t, config.NewRepositoryForTest(config.BackendPostgres, "").IsSQL()).True()
		gt.Bool(t, config.NewRepositoryForTest(config.BackendMemory, "").IsSQL()).False()
	})
}
