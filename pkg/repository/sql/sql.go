package sql

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/releaseboard/pkg/domain/interfaces"
	"github.com/secmon-lab/releaseboard/pkg/utils/clock"
	"github.com/secmon-lab/releaseboard/pkg/utils/logging"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned when a row does not exist
var ErrNotFound = interfaces.ErrNotFound

// Driver names accepted by Dialector
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// SQL stores entities in a relational database through GORM
type SQL struct {
	db *gorm.DB

	product         *productRepository
	release         *releaseRepository
	feature         *featureRepository
	dependency      *dependencyRepository
	usage           *usageRepository
	errorLog        *errorLogRepository
	notification    *notificationRepository
	deliveryFailure *deliveryFailureRepository
}

var _ interfaces.Repository = &SQL{}

// Dialector picks the GORM driver for a DSN. A "mysql://" prefix selects
// MySQL and is stripped; anything else is handed to the PostgreSQL driver.
func Dialector(dsn string) (gorm.Dialector, string) {
	if rest, ok := strings.CutPrefix(dsn, "mysql://"); ok {
		return mysql.Open(rest), DriverMySQL
	}
	return postgres.Open(dsn), DriverPostgres
}

type options struct {
	clock clock.Clock
}

// Option configures the SQL repository
type Option func(*options)

// WithClock sets the clock GORM and the repositories stamp rows with
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// New connects to the database identified by dsn
func New(ctx context.Context, dsn string, opts ...Option) (*SQL, error) {
	dialector, driver := Dialector(dsn)
	return Open(ctx, dialector, driver, opts...)
}

// Open wraps an arbitrary GORM dialector
func Open(ctx context.Context, dialector gorm.Dialector, driver string, opts ...Option) (*SQL, error) {
	o := options{clock: clock.System()}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return o.clock.Now().UTC() },
		Logger: logger.NewSlogLogger(logging.From(ctx), logger.Config{
			SlowThreshold:             500 * time.Millisecond,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			LogLevel:                  logger.Warn,
		}),
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open database", goerr.V("driver", driver))
	}

	return &SQL{
		db:              db,
		product:         &productRepository{db: db},
		release:         &releaseRepository{db: db},
		feature:         &featureRepository{db: db},
		dependency:      &dependencyRepository{db: db},
		usage:           &usageRepository{db: db},
		errorLog:        &errorLogRepository{db: db},
		notification:    &notificationRepository{db: db},
		deliveryFailure: &deliveryFailureRepository{db: db},
	}, nil
}

// Migrate creates or updates every table and index
func (s *SQL) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(allTables()...); err != nil {
		return goerr.Wrap(err, "failed to migrate schema")
	}
	return nil
}

func (s *SQL) Product() interfaces.ProductRepository {
	return s.product
}

func (s *SQL) Release() interfaces.ReleaseRepository {
	return s.release
}

func (s *SQL) Feature() interfaces.FeatureRepository {
	return s.feature
}

func (s *SQL) Dependency() interfaces.DependencyRepository {
	return s.dependency
}

func (s *SQL) Usage() interfaces.UsageRepository {
	return s.usage
}

func (s *SQL) ErrorLog() interfaces.ErrorLogRepository {
	return s.errorLog
}

func (s *SQL) Notification() interfaces.NotificationRepository {
	return s.notification
}

func (s *SQL) DeliveryFailure() interfaces.DeliveryFailureRepository {
	return s.deliveryFailure
}

func (s *SQL) Close(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return goerr.Wrap(err, "failed to get database handle")
	}
	return sqlDB.Close()
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func isDuplicated(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
