package cli

import (
	"context"

	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/releaseboard/pkg/cli/config"
	"github.com/secmon-lab/releaseboard/pkg/repository/firestore"
	"github.com/secmon-lab/releaseboard/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdMigrate() *cli.Command {
	var repoCfg config.Repository
	var dryRun bool

	flags := repoCfg.Flags()
	flags = append(flags, &cli.BoolFlag{
		Name:        "dry-run",
		Usage:       "Preview changes without applying (firestore only)",
		Destination: &dryRun,
	})

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Migrate Firestore indexes or the relational schema",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logging.Default().Info("Migrate configuration", "repository", repoCfg, "dryRun", dryRun)

			switch {
			case repoCfg.Backend() == config.BackendFirestore:
				return migrateFirestore(ctx, &repoCfg, dryRun)
			case repoCfg.IsSQL():
				return migrateSQL(ctx, &repoCfg, dryRun)
			default:
				return goerr.Wrap(config.ErrUnknownBackend, "backend has nothing to migrate",
					goerr.V(config.BackendKey, repoCfg.Backend()))
			}
		},
	}
}

func migrateFirestore(ctx context.Context, repoCfg *config.Repository, dryRun bool) error {
	logger := logging.Default()
	if repoCfg.ProjectID() == "" {
		return goerr.New("firestore-project-id is required when using firestore backend")
	}

	indexConfig := getIndexConfig(repoCfg)

	client, err := fireconf.NewClient(ctx, repoCfg.ProjectID(), repoCfg.DatabaseID())
	if err != nil {
		return goerr.Wrap(err, "failed to create fireconf client")
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close fireconf client", "error", err.Error())
		}
	}()

	if dryRun {
		logger.Info("Dry run mode - previewing changes")
		plan, err := client.GetMigrationPlan(ctx, indexConfig)
		if err != nil {
			return goerr.Wrap(err, "failed to create migration plan")
		}

		if len(plan.Steps) == 0 {
			logger.Info("No changes required")
			return nil
		}

		for _, step := range plan.Steps {
			logger.Info("Migration step",
				"collection", step.Collection,
				"operation", step.Operation,
				"description", step.Description,
				"destructive", step.Destructive)
		}
		return nil
	}

	logger.Info("Applying migrations")
	if err := client.Migrate(ctx, indexConfig); err != nil {
		return goerr.Wrap(err, "failed to apply migrations")
	}
	logger.Info("Migrations applied successfully")
	return nil
}

func migrateSQL(ctx context.Context, repoCfg *config.Repository, dryRun bool) error {
	logger := logging.Default()
	if dryRun {
		logger.Warn("Dry run is not supported for relational backends, nothing applied")
		return nil
	}

	repo, err := repoCfg.ConfigureSQL(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := repo.Close(ctx); err != nil {
			logger.Error("failed to close repository", "error", err.Error())
		}
	}()

	if err := repo.Migrate(ctx); err != nil {
		return err
	}
	logger.Info("Schema migrated successfully", "backend", repoCfg.Backend())
	return nil
}

// getIndexConfig returns the composite indexes needed by the Firestore queries.
// Equality-only queries are served by single-field indexes and need none.
func getIndexConfig(repoCfg *config.Repository) *fireconf.Config {
	asc := func(path string) fireconf.IndexField {
		return fireconf.IndexField{Path: path, Order: fireconf.OrderAscending}
	}
	desc := func(path string) fireconf.IndexField {
		return fireconf.IndexField{Path: path, Order: fireconf.OrderDescending}
	}

	return &fireconf.Config{
		Collections: []fireconf.Collection{
			{
				Name: repoCfg.CollectionName(firestore.CollectionUsageEvents),
				Indexes: []fireconf.Index{
					// dedup lookup: UserID, Hash, IngestedAt >= since
					{Fields: []fireconf.IndexField{asc("UserID"), asc("Hash"), asc("IngestedAt")}},
				},
			},
			{
				Name: repoCfg.CollectionName(firestore.CollectionErrorLogs),
				Indexes: []fireconf.Index{
					{Fields: []fireconf.IndexField{asc("ErrorType"), desc("Timestamp")}},
					{Fields: []fireconf.IndexField{asc("Resolved"), desc("Timestamp")}},
					{Fields: []fireconf.IndexField{asc("ErrorType"), asc("Resolved"), desc("Timestamp")}},
				},
			},
			{
				Name: repoCfg.CollectionName(firestore.CollectionNotifications),
				Indexes: []fireconf.Index{
					{Fields: []fireconf.IndexField{asc("DeliveryStatus"), asc("CreatedAt")}},
				},
			},
			{
				Name: repoCfg.CollectionName(firestore.CollectionDeliveryFailures),
				Indexes: []fireconf.Index{
					{Fields: []fireconf.IndexField{asc("NotificationID"), asc("FailedAt")}},
				},
			},
		},
	}
}
