package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/releaseboard/pkg/domain/interfaces"
	"github.com/secmon-lab/releaseboard/pkg/domain/model"
)

type errorLogRepository struct {
	client *firestore.Client
	cols   *collections
}

func (r *errorLogRepository) Create(ctx context.Context, entry *model.ErrorLogEntry) (*model.ErrorLogEntry, error) {
	created := *entry
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = r.cols.now()
	}
	if created.Timestamp.IsZero() {
		created.Timestamp = created.CreatedAt
	}

	if _, err := r.cols.ref(CollectionErrorLogs).Doc(created.ID).Create(ctx, &created); err != nil {
		if isAlreadyExists(err) {
			return nil, goerr.Wrap(interfaces.ErrAlreadyExists, "error log already exists", goerr.V("id", created.ID))
		}
		return nil, goerr.Wrap(err, "failed to create error log", goerr.V("id", created.ID))
	}
	return &created, nil
}

func (r *errorLogRepository) Get(ctx context.Context, id string) (*model.ErrorLogEntry, error) {
	doc, err := r.cols.ref(CollectionErrorLogs).Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "error log not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get error log", goerr.V("id", id))
	}

	var e model.ErrorLogEntry
	if err := doc.DataTo(&e); err != nil {
		return nil, goerr.Wrap(err, "failed to decode error log", goerr.V("id", id))
	}
	return &e, nil
}

func (r *errorLogRepository) List(ctx context.Context, filter interfaces.ErrorLogFilter) ([]*model.ErrorLogEntry, int, error) {
	q := r.cols.ref(CollectionErrorLogs).Query
	if filter.ErrorType != "" {
		q = q.Where("ErrorType", "==", filter.ErrorType)
	}
	if filter.UnresolvedOnly {
		q = q.Where("Resolved", "==", false)
	}
	if !filter.Start.IsZero() {
		q = q.Where("Timestamp", ">=", filter.Start)
	}
	if !filter.End.IsZero() {
		q = q.Where("Timestamp", "<=", filter.End)
	}

	total, err := countQuery(ctx, q, "error logs")
	if err != nil {
		return nil, 0, err
	}

	page := q.OrderBy("Timestamp", firestore.Desc)
	if filter.Offset > 0 {
		page = page.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		page = page.Limit(filter.Limit)
	}

	entries, err := readAll[model.ErrorLogEntry](page.Documents(ctx), "error logs")
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *errorLogRepository) MarkResolved(ctx context.Context, id string, at time.Time) error {
	ref := r.cols.ref(CollectionErrorLogs).Doc(id)

	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			if isNotFound(err) {
				return goerr.Wrap(ErrNotFound, "error log not found", goerr.V("id", id))
			}
			return goerr.Wrap(err, "failed to get error log", goerr.V("id", id))
		}

		resolved, err := doc.DataAt("Resolved")
		if err != nil {
			return goerr.Wrap(err, "failed to read resolved flag", goerr.V("id", id))
		}
		if b, ok := resolved.(bool); ok && b {
			return nil
		}

		return tx.Update(ref, []firestore.Update{
			{Path: "Resolved", Value: true},
			{Path: "ResolvedAt", Value: at},
		})
	})
}
