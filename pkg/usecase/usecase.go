package usecase

import (
	"context"

	"github.com/secmon-lab/releaseboard/pkg/domain/interfaces"
	"github.com/secmon-lab/releaseboard/pkg/domain/model"
	"github.com/secmon-lab/releaseboard/pkg/domain/model/config"
	"github.com/secmon-lab/releaseboard/pkg/service/lock"
	"github.com/secmon-lab/releaseboard/pkg/service/metrics"
	"github.com/secmon-lab/releaseboard/pkg/utils/async"
	"github.com/secmon-lab/releaseboard/pkg/utils/clock"
)

// Notifier delivers one persisted notification to its recipient
type Notifier interface {
	Notify(ctx context.Context, n *model.Notification) error
}

type dispatcher func(ctx context.Context, handler func(ctx context.Context) error)

type UseCases struct {
	repo     interfaces.Repository
	clock    clock.Clock
	tuning   config.Tuning
	locker   lock.Locker
	notifier Notifier
	metrics  *metrics.Metrics
	dispatch dispatcher
	async    *async.Group

	Product      *ProductUseCase
	Release      *ReleaseUseCase
	Feature      *FeatureUseCase
	Usage        *UsageUseCase
	Analytics    *AnalyticsUseCase
	Reprocess    *ReprocessUseCase
	Admin        *AdminUseCase
	Notification *NotificationUseCase
	Auth         AuthUseCaseInterface
}

type Option func(*UseCases)

func WithClock(c clock.Clock) Option {
	return func(uc *UseCases) {
		uc.clock = c
	}
}

func WithTuning(t config.Tuning) Option {
	return func(uc *UseCases) {
		uc.tuning = t
	}
}

// WithLocker replaces the in-process dedup lock, e.g. with a Redis lock
// shared by several instances
func WithLocker(l lock.Locker) Option {
	return func(uc *UseCases) {
		uc.locker = l
	}
}

// WithNotifier enables delivery of notifications after they are committed
func WithNotifier(n Notifier) Option {
	return func(uc *UseCases) {
		uc.notifier = n
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(uc *UseCases) {
		uc.metrics = m
	}
}

func WithAuth(auth AuthUseCaseInterface) Option {
	return func(uc *UseCases) {
		uc.Auth = auth
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	group := &async.Group{}
	uc := &UseCases{
		repo:     repo,
		clock:    clock.System(),
		tuning:   config.DefaultTuning(),
		locker:   lock.NewMemory(),
		async:    group,
		dispatch: group.Dispatch,
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.Auth == nil {
		uc.Auth = NewNoAuthnUseCase(nil)
	}

	delivery := &deliveryService{repo: repo, clock: uc.clock, notifier: uc.notifier, metrics: uc.metrics}

	uc.Product = &ProductUseCase{repo: repo, clock: uc.clock}
	uc.Release = &ReleaseUseCase{
		repo:     repo,
		clock:    uc.clock,
		metrics:  uc.metrics,
		delivery: delivery,
		dispatch: uc.dispatch,
	}
	uc.Feature = &FeatureUseCase{repo: repo, clock: uc.clock}
	uc.Usage = &UsageUseCase{
		repo:    repo,
		clock:   uc.clock,
		window:  uc.tuning.DedupWindow,
		locker:  uc.locker,
		metrics: uc.metrics,
	}
	uc.Analytics = &AnalyticsUseCase{repo: repo, clock: uc.clock, tuning: uc.tuning, metrics: uc.metrics}
	uc.Reprocess = &ReprocessUseCase{repo: repo, clock: uc.clock, usage: uc.Usage, metrics: uc.metrics}
	uc.Admin = &AdminUseCase{repo: repo}
	uc.Notification = &NotificationUseCase{repo: repo, clock: uc.clock, delivery: delivery}

	return uc
}

// Drain waits for background notification delivery started by requests.
func (uc *UseCases) Drain(ctx context.Context) error {
	return uc.async.Wait(ctx)
}
