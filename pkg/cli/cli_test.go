package cli_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/releaseboard/pkg/cli"
)

func TestRun_ValidateCommand(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		content := `
[dedup]
window = "10m"

[health]
bucket = "15m"
gap_threshold = 1
`
		gt.NoError(t, os.WriteFile(path, []byte(content), 0o600)).Required()

		err := cli.Run(context.Background(), []string{"releaseboard", "validate", "--config", path}, "test")
		gt.NoError(t, err)
	})

	t.Run("invalid duration", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		gt.NoError(t, os.WriteFile(path, []byte("[dedup]\nwindow = \"soon\"\n"), 0o600)).Required()

		err := cli.Run(context.Background(), []string{"releaseboard", "validate", "--config", path}, "test")
		gt.Error(t, err)
	})

	t.Run("defaults without a file", func(t *testing.T) {
		err := cli.Run(context.Background(), []string{"releaseboard", "validate"}, "test")
		gt.NoError(t, err)
	})
}

func TestRun_InvalidLogLevel(t *testing.T) {
	err := cli.Run(context.Background(), []string{"releaseboard", "--log-level", "loud", "validate"}, "test")
	gt.Error(t, err)
}

func TestRun_ReprocessCommand(t *testing.T) {
	t.Run("memory backend with nothing to replay", func(t *testing.T) {
		err := cli.Run(context.Background(), []string{
			"releaseboard", "reprocess",
			"--repository-backend", "memory",
			"--start", "2024-06-01", "--end", "2024-06-02",
			"--dry-run",
		}, "test")
		gt.NoError(t, err)
	})

	t.Run("selection is required", func(t *testing.T) {
		err := cli.Run(context.Background(), []string{
			"releaseboard", "reprocess", "--repository-backend", "memory",
		}, "test")
		gt.Error(t, err)
	})

	t.Run("bad date", func(t *testing.T) {
		err := cli.Run(context.Background(), []string{
			"releaseboard", "reprocess", "--repository-backend", "memory", "--start", "yesterday",
		}, "test")
		gt.Error(t, err)
	})
}

func TestRun_TokenCommand(t *testing.T) {
	t.Run("issues a token", func(t *testing.T) {
		err := cli.Run(context.Background(), []string{
			"releaseboard", "token", "--sub", "alice", "--role", "ADMIN", "--jwt-secret", "s3cret",
		}, "test")
		gt.NoError(t, err)
	})

	t.Run("secret is required", func(t *testing.T) {
		err := cli.Run(context.Background(), []string{"releaseboard", "token", "--sub", "alice"}, "test")
		gt.Error(t, err)
	})

	t.Run("unknown role", func(t *testing.T) {
		err := cli.Run(context.Background(), []string{
			"releaseboard", "token", "--sub", "alice", "--role", "ROOT", "--jwt-secret", "s3cret",
		}, "test")
		gt.Error(t, err)
	})
}

func TestRun_MigrateMemoryBackend(t *testing.T) {
	err := cli.Run(context.Background(), []string{"releaseboard", "migrate", "--repository-backend", "memory"}, "test")
	gt.Error(t, err)
}
