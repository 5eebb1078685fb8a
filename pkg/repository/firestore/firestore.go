package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/releaseboard/pkg/domain/interfaces"
	"github.com/secmon-lab/releaseboard/pkg/utils/clock"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrNotFound is returned when a document does not exist
var ErrNotFound = interfaces.ErrNotFound

// Collection names without prefix
const (
	CollectionProducts         = "products"
	CollectionReleases         = "releases"
	CollectionFeatures         = "features"
	CollectionDependencies     = "feature_dependencies"
	CollectionUsageEvents      = "usage_events"
	CollectionErrorLogs        = "error_logs"
	CollectionNotifications    = "notifications"
	CollectionDeliveryFailures = "delivery_failures"
)

type Firestore struct {
	client *firestore.Client
	cols   *collections

	product         *productRepository
	release         *releaseRepository
	feature         *featureRepository
	dependency      *dependencyRepository
	usage           *usageRepository
	errorLog        *errorLogRepository
	notification    *notificationRepository
	deliveryFailure *deliveryFailureRepository
}

var _ interfaces.Repository = &Firestore{}

// collections resolves collection references honoring the prefix
type collections struct {
	client *firestore.Client
	prefix string
	clock  clock.Clock
}

// now returns the timestamp written into CreatedAt and UpdatedAt fields
func (c *collections) now() time.Time {
	return c.clock.Now().UTC()
}

func (c *collections) name(base string) string {
	if c.prefix != "" {
		return c.prefix + "_" + base
	}
	return base
}

func (c *collections) ref(base string) *firestore.CollectionRef {
	return c.client.Collection(c.name(base))
}

type Option func(*Firestore)

func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.cols.prefix = prefix
	}
}

// WithClock sets the clock used to stamp document timestamps
func WithClock(c clock.Clock) Option {
	return func(f *Firestore) {
		f.cols.clock = c
	}
}

// New creates a Firestore repository. An empty databaseID selects the default database.
func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var (
		client *firestore.Client
		err    error
	)
	if databaseID == "" || databaseID == firestore.DefaultDatabaseID {
		client, err = firestore.NewClient(ctx, projectID)
	} else {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}

	cols := &collections{client: client, clock: clock.System()}
	f := &Firestore{
		client:          client,
		cols:            cols,
		product:         &productRepository{client: client, cols: cols},
		release:         &releaseRepository{client: client, cols: cols},
		feature:         &featureRepository{client: client, cols: cols},
		dependency:      &dependencyRepository{client: client, cols: cols},
		usage:           &usageRepository{client: client, cols: cols},
		errorLog:        &errorLogRepository{client: client, cols: cols},
		notification:    &notificationRepository{client: client, cols: cols},
		deliveryFailure: &deliveryFailureRepository{client: client, cols: cols},
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Product() interfaces.ProductRepository {
	return f.product
}

func (f *Firestore) Release() interfaces.ReleaseRepository {
	return f.release
}

func (f *Firestore) Feature() interfaces.FeatureRepository {
	return f.feature
}

func (f *Firestore) Dependency() interfaces.DependencyRepository {
	return f.dependency
}

func (f *Firestore) Usage() interfaces.UsageRepository {
	return f.usage
}

func (f *Firestore) ErrorLog() interfaces.ErrorLogRepository {
	return f.errorLog
}

func (f *Firestore) Notification() interfaces.NotificationRepository {
	return f.notification
}

func (f *Firestore) DeliveryFailure() interfaces.DeliveryFailureRepository {
	return f.deliveryFailure
}

func (f *Firestore) Close(ctx context.Context) error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func isAlreadyExists(err error) bool {
	return status.Code(err) == codes.AlreadyExists
}

// readAll decodes every document of the iterator into T
func readAll[T any](iter *firestore.DocumentIterator, what string) ([]*T, error) {
	defer iter.Stop()

	items := make([]*T, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate "+what)
		}

		var v T
		if err := doc.DataTo(&v); err != nil {
			return nil, goerr.Wrap(err, "failed to decode "+what, goerr.V("doc_id", doc.Ref.ID))
		}
		items = append(items, &v)
	}
	return items, nil
}

// countQuery runs a server-side COUNT aggregation over q
func countQuery(ctx context.Context, q firestore.Query, what string) (int, error) {
	const alias = "total"
	res, err := q.NewAggregationQuery().WithCount(alias).Get(ctx)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to count "+what)
	}

	v, ok := res[alias].(*firestorepb.Value)
	if !ok {
		return 0, goerr.New("unexpected count result", goerr.V("what", what), goerr.V("result", res[alias]))
	}
	return int(v.GetIntegerValue()), nil
}
