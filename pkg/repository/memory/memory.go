package memory

import (
	"context"
	"sync"
	"time"

	"github.com/secmon-lab/releaseboard/pkg/domain/interfaces"
	"github.com/secmon-lab/releaseboard/pkg/domain/model"
	"github.com/secmon-lab/releaseboard/pkg/utils/clock"
)

// ErrNotFound is returned when an entity does not exist
var ErrNotFound = interfaces.ErrNotFound

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// Memory keeps every entity in process memory. All entity maps share one lock
// so multi-entity updates are atomic, as they would be in a database.
type Memory struct {
	st *store

	product         *productRepository
	release         *releaseRepository
	feature         *featureRepository
	dependency      *dependencyRepository
	usage           *usageRepository
	errorLog        *errorLogRepository
	notification    *notificationRepository
	deliveryFailure *deliveryFailureRepository
}

type store struct {
	mu    sync.RWMutex
	clock clock.Clock

	products      map[string]*model.Product
	releases      map[string]*model.Release
	features      map[string]*model.Feature
	dependencies  map[string]*model.FeatureDependency
	usage         []*model.UsageEvent
	errorLogs     map[string]*model.ErrorLogEntry
	notifications map[string]*model.Notification
	failures      map[string]*model.DeliveryFailure
}

var _ interfaces.Repository = &Memory{}

// Option configures a Memory repository
type Option func(*store)

// WithClock sets the clock used for CreatedAt and UpdatedAt stamps
func WithClock(c clock.Clock) Option {
	return func(st *store) {
		st.clock = c
	}
}

func New(opts ...Option) *Memory {
	st := &store{
		clock:         clock.System(),
		products:      make(map[string]*model.Product),
		releases:      make(map[string]*model.Release),
		features:      make(map[string]*model.Feature),
		dependencies:  make(map[string]*model.FeatureDependency),
		errorLogs:     make(map[string]*model.ErrorLogEntry),
		notifications: make(map[string]*model.Notification),
		failures:      make(map[string]*model.DeliveryFailure),
	}
	for _, opt := range opts {
		opt(st)
	}

	return &Memory{
		st:              st,
		product:         &productRepository{st: st},
		release:         &releaseRepository{st: st},
		feature:         &featureRepository{st: st},
		dependency:      &dependencyRepository{st: st},
		usage:           &usageRepository{st: st},
		errorLog:        &errorLogRepository{st: st},
		notification:    &notificationRepository{st: st},
		deliveryFailure: &deliveryFailureRepository{st: st},
	}
}

func (m *Memory) Product() interfaces.ProductRepository {
	return m.product
}

func (m *Memory) Release() interfaces.ReleaseRepository {
	return m.release
}

func (m *Memory) Feature() interfaces.FeatureRepository {
	return m.feature
}

func (m *Memory) Dependency() interfaces.DependencyRepository {
	return m.dependency
}

func (m *Memory) Usage() interfaces.UsageRepository {
	return m.usage
}

func (m *Memory) ErrorLog() interfaces.ErrorLogRepository {
	return m.errorLog
}

func (m *Memory) Notification() interfaces.NotificationRepository {
	return m.notification
}

func (m *Memory) DeliveryFailure() interfaces.DeliveryFailureRepository {
	return m.deliveryFailure
}

// now returns the current time of the configured clock in UTC
func (st *store) now() time.Time {
	return st.clock.Now().UTC()
}

func (m *Memory) Close(ctx context.Context) error {
	return nil
}
