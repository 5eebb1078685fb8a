package sql

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/releaseboard/pkg/domain/interfaces"
	"github.com/secmon-lab/releaseboard/pkg/domain/model"
	"github.com/secmon-lab/releaseboard/pkg/domain/types"
	"gorm.io/gorm"
)

type notificationRepository struct {
	db *gorm.DB
}

func (r *notificationRepository) Get(ctx context.Context, id string) (*model.Notification, error) {
	var row notificationRow
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "notification not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get notification", goerr.V("id", id))
	}
	return row.toModel(), nil
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]*model.Notification, error) {
	q := r.db.WithContext(ctx).Where("recipient_id = ?", recipientID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}

	var rows []notificationRow
	if err := q.Order("created_at DESC").Order("id").Find(&rows).Error; err != nil {
		return nil, goerr.Wrap(err, "failed to list notifications", goerr.V("recipient", recipientID))
	}

	list := make([]*model.Notification, 0, len(rows))
	for i := range rows {
		list = append(list, rows[i].toModel())
	}
	return list, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id string, at time.Time) (*model.Notification, error) {
	var result *model.Notification
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&notificationRow{}).Where("id = ? AND is_read = ?", id, false).
			Updates(map[string]any{"is_read": true, "read_at": at}).Error; err != nil {
			return goerr.Wrap(err, "failed to mark notification read", goerr.V("id", id))
		}

		var row notificationRow
		if err := tx.Where("id = ?", id).Take(&row).Error; err != nil {
			if isNotFound(err) {
				return goerr.Wrap(ErrNotFound, "notification not found", goerr.V("id", id))
			}
			return goerr.Wrap(err, "failed to get notification", goerr.V("id", id))
		}
		result = row.toModel()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *notificationRepository) UpdateDeliveryStatus(ctx context.Context, id string, status types.DeliveryStatus) error {
	res := r.db.WithContext(ctx).Model(&notificationRow{}).Where("id = ?", id).
		Update("delivery_status", string(status))
	if res.Error != nil {
		return goerr.Wrap(res.Error, "failed to update delivery status", goerr.V("id", id))
	}
	if res.RowsAffected == 0 {
		return goerr.Wrap(ErrNotFound, "notification not found", goerr.V("id", id))
	}
	return nil
}

func (r *notificationRepository) ListByDeliveryStatus(ctx context.Context, status types.DeliveryStatus, limit int) ([]*model.Notification, error) {
	q := r.db.WithContext(ctx).Where("delivery_status = ?", string(status)).
		Order("created_at").Order("id")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []notificationRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, goerr.Wrap(err, "failed to list notifications", goerr.V("delivery_status", status))
	}

	list := make([]*model.Notification, 0, len(rows))
	for i := range rows {
		list = append(list, rows[i].toModel())
	}
	return list, nil
}

type deliveryFailureRepository struct {
	db *gorm.DB
}

func (r *deliveryFailureRepository) Create(ctx context.Context, failure *model.DeliveryFailure) (*model.DeliveryFailure, error) {
	row := deliveryFailureFromModel(failure)
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	if row.FailedAt.IsZero() {
		row.FailedAt = r.db.NowFunc()
	}

	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if isDuplicated(err) {
			return nil, goerr.Wrap(interfaces.ErrAlreadyExists, "delivery failure already exists", goerr.V("id", row.ID))
		}
		return nil, goerr.Wrap(err, "failed to create delivery failure", goerr.V("id", row.ID))
	}
	return row.toModel(), nil
}

func (r *deliveryFailureRepository) List(ctx context.Context, filter interfaces.DeliveryFailureFilter) ([]*model.DeliveryFailure, error) {
	q := r.db.WithContext(ctx)
	if filter.NotificationID != "" {
		q = q.Where("notification_id = ?", filter.NotificationID)
	}
	if !filter.Start.IsZero() {
		q = q.Where("failed_at >= ?", filter.Start)
	}
	if !filter.End.IsZero() {
		q = q.Where("failed_at <= ?", filter.End)
	}

	var rows []deliveryFailureRow
	if err := q.Order("failed_at DESC").Order("id").Find(&rows).Error; err != nil {
		return nil, goerr.Wrap(err, "failed to list delivery failures")
	}

	list := make([]*model.DeliveryFailure, 0, len(rows))
	for i := range rows {
		list = append(list, rows[i].toModel())
	}
	return list, nil
}
