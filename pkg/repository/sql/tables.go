package sql

import (
	"time"

	"github.com/secmon-lab/releaseboard/pkg/domain/model"
	"github.com/secmon-lab/releaseboard/pkg/domain/types"
)

func allTables() []any {
	return []any{
		&productRow{},
		&releaseRow{},
		&featureRow{},
		&dependencyRow{},
		&usageEventRow{},
		&usageDedupKeyRow{},
		&errorLogRow{},
		&notificationRow{},
		&deliveryFailureRow{},
	}
}

type productRow struct {
	Code        string `gorm:"primaryKey;size:64"`
	Name        string `gorm:"size:255"`
	Description string `gorm:"type:text"`
	CreatedBy   string `gorm:"size:255"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (productRow) TableName() string { return "products" }

func (r *productRow) toModel() *model.Product {
	return &model.Product{
		Code:        r.Code,
		Name:        r.Name,
		Description: r.Description,
		CreatedBy:   r.CreatedBy,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func productFromModel(p *model.Product) *productRow {
	return &productRow{
		Code:        p.Code,
		Name:        p.Name,
		Description: p.Description,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type releaseRow struct {
	Code        string `gorm:"primaryKey;size:64"`
	ProductCode string `gorm:"size:64;index"`
	Description string `gorm:"type:text"`
	Status      string `gorm:"size:32;not null"`
	ParentCode  string `gorm:"size:64;index"`
	ReleasedAt  *time.Time
	CreatedBy   string `gorm:"size:255"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (releaseRow) TableName() string { return "releases" }

func (r *releaseRow) toModel() *model.Release {
	return &model.Release{
		Code:        r.Code,
		ProductCode: r.ProductCode,
		Description: r.Description,
		Status:      types.ReleaseStatus(r.Status),
		ParentCode:  r.ParentCode,
		ReleasedAt:  r.ReleasedAt,
		CreatedBy:   r.CreatedBy,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func releaseFromModel(m *model.Release) *releaseRow {
	return &releaseRow{
		Code:        m.Code,
		ProductCode: m.ProductCode,
		Description: m.Description,
		Status:      string(m.Status),
		ParentCode:  m.ParentCode,
		ReleasedAt:  m.ReleasedAt,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

type featureRow struct {
	Code        string `gorm:"primaryKey;size:64"`
	Title       string `gorm:"size:255"`
	Description string `gorm:"type:text"`
	Status      string `gorm:"size:32;not null"`
	ProductCode string `gorm:"size:64;index"`
	ReleaseCode string `gorm:"size:64;index"`
	CreatedBy   string `gorm:"size:255"`
	AssignedTo  string `gorm:"size:255"`

	PlannedCompletionDate *time.Time
	ActualCompletionDate  *time.Time
	PlanningStatus        string `gorm:"size:32"`
	FeatureOwner          string `gorm:"size:255"`
	BlockageReason        string `gorm:"type:text"`

	StatusChangedAt time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (featureRow) TableName() string { return "features" }

func (r *featureRow) toModel() *model.Feature {
	return &model.Feature{
		Code:                  r.Code,
		Title:                 r.Title,
		Description:           r.Description,
		Status:                types.FeatureStatus(r.Status),
		ProductCode:           r.ProductCode,
		ReleaseCode:           r.ReleaseCode,
		CreatedBy:             r.CreatedBy,
		AssignedTo:            r.AssignedTo,
		PlannedCompletionDate: r.PlannedCompletionDate,
		ActualCompletionDate:  r.ActualCompletionDate,
		PlanningStatus:        types.PlanningStatus(r.PlanningStatus),
		FeatureOwner:          r.FeatureOwner,
		BlockageReason:        r.BlockageReason,
		StatusChangedAt:       r.StatusChangedAt,
		CreatedAt:             r.CreatedAt,
		UpdatedAt:             r.UpdatedAt,
	}
}

func featureFromModel(m *model.Feature) *featureRow {
	return &featureRow{
		Code:                  m.Code,
		Title:                 m.Title,
		Description:           m.Description,
		Status:                string(m.Status),
		ProductCode:           m.ProductCode,
		ReleaseCode:           m.ReleaseCode,
		CreatedBy:             m.CreatedBy,
		AssignedTo:            m.AssignedTo,
		PlannedCompletionDate: m.PlannedCompletionDate,
		ActualCompletionDate:  m.ActualCompletionDate,
		PlanningStatus:        string(m.PlanningStatus),
		FeatureOwner:          m.FeatureOwner,
		BlockageReason:        m.BlockageReason,
		StatusChangedAt:       m.StatusChangedAt,
		CreatedAt:             m.CreatedAt,
		UpdatedAt:             m.UpdatedAt,
	}
}

type dependencyRow struct {
	FeatureCode   string  `gorm:"primaryKey;size:64"`
	DependsOnCode string  `gorm:"primaryKey;size:64;index"`
	Type          string  `gorm:"size:16;not null"`
	Notes         *string `gorm:"type:text"`
	CreatedBy     string  `gorm:"size:255"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (dependencyRow) TableName() string { return "feature_dependencies" }

func (r *dependencyRow) toModel() *model.FeatureDependency {
	return &model.FeatureDependency{
		FeatureCode:   r.FeatureCode,
		DependsOnCode: r.DependsOnCode,
		Type:          types.DependencyType(r.Type),
		Notes:         r.Notes,
		CreatedBy:     r.CreatedBy,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func dependencyFromModel(m *model.FeatureDependency) *dependencyRow {
	return &dependencyRow{
		FeatureCode:   m.FeatureCode,
		DependsOnCode: m.DependsOnCode,
		Type:          string(m.Type),
		Notes:         m.Notes,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

type usageEventRow struct {
	ID          string            `gorm:"primaryKey;size:36"`
	UserID      string            `gorm:"size:255;index:idx_usage_dedup,priority:1"`
	Hash        string            `gorm:"size:16;index:idx_usage_dedup,priority:2"`
	Timestamp   time.Time         `gorm:"index"`
	IngestedAt  time.Time         `gorm:"index:idx_usage_dedup,priority:3"`
	ActionType  string            `gorm:"size:64;not null"`
	FeatureCode string            `gorm:"size:64"`
	ProductCode string            `gorm:"size:64"`
	Context     map[string]string `gorm:"serializer:json"`
}

func (usageEventRow) TableName() string { return "usage_events" }

func (r *usageEventRow) toModel() *model.UsageEvent {
	return &model.UsageEvent{
		ID:          r.ID,
		UserID:      r.UserID,
		ActionType:  types.ActionType(r.ActionType),
		FeatureCode: r.FeatureCode,
		ProductCode: r.ProductCode,
		Context:     r.Context,
		Timestamp:   r.Timestamp,
		Hash:        r.Hash,
		IngestedAt:  r.IngestedAt,
	}
}

func usageEventFromModel(m *model.UsageEvent) *usageEventRow {
	return &usageEventRow{
		ID:          m.ID,
		UserID:      m.UserID,
		Hash:        m.Hash,
		Timestamp:   m.Timestamp,
		IngestedAt:  m.IngestedAt,
		ActionType:  string(m.ActionType),
		FeatureCode: m.FeatureCode,
		ProductCode: m.ProductCode,
		Context:     m.Context,
	}
}

// usageDedupKeyRow serializes concurrent inserts of the same (user, hash).
// The row is locked FOR UPDATE for the duration of the dedup transaction.
type usageDedupKeyRow struct {
	UserID string `gorm:"primaryKey;size:255"`
	Hash   string `gorm:"primaryKey;size:16"`
}

func (usageDedupKeyRow) TableName() string { return "usage_dedup_keys" }

type errorLogRow struct {
	ID         string    `gorm:"primaryKey;size:36"`
	Timestamp  time.Time `gorm:"index"`
	ErrorType  string    `gorm:"size:32;index"`
	Message    string    `gorm:"type:text"`
	Payload    string    `gorm:"type:text"`
	UserID     string    `gorm:"size:255"`
	Resolved   bool      `gorm:"index;not null;default:false"`
	ResolvedAt *time.Time
	CreatedAt  time.Time
}

func (errorLogRow) TableName() string { return "error_logs" }

func (r *errorLogRow) toModel() *model.ErrorLogEntry {
	return &model.ErrorLogEntry{
		ID:         r.ID,
		Timestamp:  r.Timestamp,
		ErrorType:  types.ErrorType(r.ErrorType),
		Message:    r.Message,
		Payload:    r.Payload,
		UserID:     r.UserID,
		Resolved:   r.Resolved,
		ResolvedAt: r.ResolvedAt,
		CreatedAt:  r.CreatedAt,
	}
}

func errorLogFromModel(m *model.ErrorLogEntry) *errorLogRow {
	return &errorLogRow{
		ID:         m.ID,
		Timestamp:  m.Timestamp,
		ErrorType:  string(m.ErrorType),
		Message:    m.Message,
		Payload:    m.Payload,
		UserID:     m.UserID,
		Resolved:   m.Resolved,
		ResolvedAt: m.ResolvedAt,
		CreatedAt:  m.CreatedAt,
	}
}

type notificationRow struct {
	ID             string                    `gorm:"primaryKey;size:36"`
	RecipientID    string                    `gorm:"size:255;index"`
	EventType      string                    `gorm:"size:32"`
	Details        model.NotificationDetails `gorm:"serializer:json"`
	Link           string                    `gorm:"size:512"`
	Read           bool                      `gorm:"column:is_read;not null;default:false"`
	ReadAt         *time.Time
	DeliveryStatus string `gorm:"size:16;index"`
	CreatedAt      time.Time
}

func (notificationRow) TableName() string { return "notifications" }

func (r *notificationRow) toModel() *model.Notification {
	return &model.Notification{
		ID:             r.ID,
		RecipientID:    r.RecipientID,
		EventType:      types.NotificationEventType(r.EventType),
		Details:        r.Details,
		Link:           r.Link,
		Read:           r.Read,
		ReadAt:         r.ReadAt,
		DeliveryStatus: types.DeliveryStatus(r.DeliveryStatus),
		CreatedAt:      r.CreatedAt,
	}
}

func notificationFromModel(m *model.Notification) *notificationRow {
	return &notificationRow{
		ID:             m.ID,
		RecipientID:    m.RecipientID,
		EventType:      string(m.EventType),
		Details:        m.Details,
		Link:           m.Link,
		Read:           m.Read,
		ReadAt:         m.ReadAt,
		DeliveryStatus: string(m.DeliveryStatus),
		CreatedAt:      m.CreatedAt,
	}
}

type deliveryFailureRow struct {
	ID             string    `gorm:"primaryKey;size:36"`
	NotificationID string    `gorm:"size:36;index"`
	Recipient      string    `gorm:"size:255"`
	EventType      string    `gorm:"size:32"`
	ErrorMessage   string    `gorm:"type:text"`
	FailedAt       time.Time `gorm:"index"`
}

func (deliveryFailureRow) TableName() string { return "delivery_failures" }

func (r *deliveryFailureRow) toModel() *model.DeliveryFailure {
	return &model.DeliveryFailure{
		ID:             r.ID,
		NotificationID: r.NotificationID,
		Recipient:      r.Recipient,
		EventType:      types.NotificationEventType(r.EventType),
		ErrorMessage:   r.ErrorMessage,
		FailedAt:       r.FailedAt,
	}
}

func deliveryFailureFromModel(m *model.DeliveryFailure) *deliveryFailureRow {
	return &deliveryFailureRow{
		ID:             m.ID,
		NotificationID: m.NotificationID,
		Recipient:      m.Recipient,
		EventType:      string(m.EventType),
		ErrorMessage:   m.ErrorMessage,
		FailedAt:       m.FailedAt,
	}
}
