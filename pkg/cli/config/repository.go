package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/releaseboard/pkg/domain/interfaces"
	"github.com/secmon-lab/releaseboard/pkg/repository/firestore"
	"github.com/secmon-lab/releaseboard/pkg/repository/memory"
	sqlrepo "github.com/secmon-lab/releaseboard/pkg/repository/sql"
	"github.com/secmon-lab/releaseboard/pkg/utils/logging"
	"github.com/urfave/cli/v3"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
)

// Repository backends
const (
	BackendMemory    = "memory"
	BackendFirestore = "firestore"
	BackendPostgres  = "postgres"
	BackendMySQL     = "mysql"
)

// Repository holds CLI flags for repository backend configuration
type Repository struct {
	backend          string
	projectID        string
	databaseID       string
	collectionPrefix string
	dsn              string
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Usage:       "Repository backend type (memory, firestore, postgres or mysql)",
			Category:    "Repository",
			Value:       BackendMemory,
			Sources:     cli.EnvVars("RELEASEBOARD_REPOSITORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("RELEASEBOARD_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Category:    "Repository",
			Sources:     cli.EnvVars("RELEASEBOARD_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
		&cli.StringFlag{
			Name:        "firestore-collection-prefix",
			Usage:       "Prefix prepended to every Firestore collection name",
			Category:    "Repository",
			Sources:     cli.EnvVars("RELEASEBOARD_FIRESTORE_COLLECTION_PREFIX"),
			Destination: &r.collectionPrefix,
		},
		&cli.StringFlag{
			Name:        "database-dsn",
			Usage:       "DSN of the relational database (required when using postgres or mysql backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("RELEASEBOARD_DATABASE_DSN"),
			Destination: &r.dsn,
		},
	}
}

func (r Repository) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", r.backend),
		slog.String("project_id", r.projectID),
		slog.String("database_id", r.databaseID),
		slog.String("collection_prefix", r.collectionPrefix),
		slog.Int("dsn.len", len(r.dsn)),
	)
}

// Backend returns the configured backend type
func (r *Repository) Backend() string {
	return r.backend
}

// ProjectID returns the Firestore project ID
func (r *Repository) ProjectID() string {
	return r.projectID
}

// DatabaseID returns the Firestore database ID
func (r *Repository) DatabaseID() string {
	return r.databaseID
}

// CollectionName returns the Firestore collection name with the prefix applied
func (r *Repository) CollectionName(base string) string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_" + base
	}
	return base
}

// IsSQL reports whether the backend is a relational database
func (r *Repository) IsSQL() bool {
	return r.backend == BackendPostgres || r.backend == BackendMySQL
}

// Configure initializes and returns a repository based on the configured backend.
// The caller is responsible for calling Close() on the returned repository.
func (r *Repository) Configure(ctx context.Context) (interfaces.Repository, error) {
	switch r.backend {
	case BackendFirestore:
		if r.projectID == "" {
			return nil, goerr.New("firestore-project-id is required when using firestore backend")
		}
		var opts []firestore.Option
		if r.collectionPrefix != "" {
			opts = append(opts, firestore.WithCollectionPrefix(r.collectionPrefix))
		}
		repo, err := firestore.New(ctx, r.projectID, r.databaseID, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore repository")
		}
		logging.Default().Info("Using Firestore repository",
			"project_id", r.projectID,
			"database_id", r.databaseID,
		)
		return repo, nil

	case BackendPostgres, BackendMySQL:
		return r.ConfigureSQL(ctx)

	case BackendMemory:
		logging.Default().Info("Using in-memory repository (development mode)")
		return memory.New(), nil

	default:
		return nil, goerr.Wrap(ErrUnknownBackend, "invalid repository backend", goerr.V(BackendKey, r.backend))
	}
}

// ConfigureSQL opens the relational backend. It is also used by migrate,
// which needs the concrete type.
func (r *Repository) ConfigureSQL(ctx context.Context) (*sqlrepo.SQL, error) {
	if r.dsn == "" {
		return nil, goerr.New("database-dsn is required when using a relational backend", goerr.V(BackendKey, r.backend))
	}

	var (
		repo *sqlrepo.SQL
		err  error
	)
	switch r.backend {
	case BackendPostgres:
		repo, err = sqlrepo.Open(ctx, postgres.Open(r.dsn), sqlrepo.DriverPostgres)
	case BackendMySQL:
		repo, err = sqlrepo.Open(ctx, mysql.Open(r.dsn), sqlrepo.DriverMySQL)
	default:
		return nil, goerr.Wrap(ErrUnknownBackend, "backend is not relational", goerr.V(BackendKey, r.backend))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize sql repository", goerr.V(BackendKey, r.backend))
	}

	logging.Default().Info("Using SQL repository", "backend", r.backend)
	return repo, nil
}
