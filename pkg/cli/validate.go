package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/releaseboard/pkg/cli/config"
	"github.com/secmon-lab/releaseboard/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var appCfg config.AppConfig

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the tuning file and print the effective values",
		Flags:   appCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			tuning, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "configuration validation failed")
			}

			logging.Default().Info("Configuration validation passed",
				"path", appCfg.Path(),
				"dedup_window", tuning.DedupWindow.String(),
				"health_bucket", tuning.HealthBucket.String(),
				"gap_threshold", tuning.GapThreshold,
				"health_default_range", tuning.HealthDefaultRange.String(),
				"top_features", tuning.TopFeatures,
			)
			return nil
		},
	}
}
