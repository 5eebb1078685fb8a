package http

import (
	"time"

	"github.com/secmon-lab/releaseboard/pkg/domain/model"
	"github.com/secmon-lab/releaseboard/pkg/domain/types"
)

type productResponse struct {
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedBy   string    `json:"createdBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toProduct(p *model.Product) productResponse {
	return productResponse{
		Code:        p.Code,
		Name:        p.Name,
		Description: p.Description,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type releaseResponse struct {
	Code        string              `json:"code"`
	ProductCode string              `json:"productCode"`
	Description string              `json:"description"`
	Status      types.ReleaseStatus `json:"status"`
	ParentCode  *string             `json:"parentCode"`
	ReleasedAt  *time.Time          `json:"releasedAt"`
	CreatedBy   string              `json:"createdBy,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

func toRelease(r *model.Release) releaseResponse {
	resp := releaseResponse{
		Code:        r.Code,
		ProductCode: r.ProductCode,
		Description: r.Description,
		Status:      r.Status,
		ReleasedAt:  r.ReleasedAt,
		CreatedBy:   r.CreatedBy,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.HasParent() {
		parent := r.ParentCode
		resp.ParentCode = &parent
	}
	return resp
}

type releaseUpdateResponse struct {
	releaseResponse
	NotificationsCreated int `json:"notificationsCreated"`
}

type featureResponse struct {
	Code                  string               `json:"code"`
	Title                 string               `json:"title"`
	Description           string               `json:"description"`
	Status                types.FeatureStatus  `json:"status"`
	ProductCode           string               `json:"productCode"`
	ReleaseCode           *string              `json:"releaseCode"`
	CreatedBy             string               `json:"createdBy,omitempty"`
	AssignedTo            string               `json:"assignedTo,omitempty"`
	PlannedCompletionDate *time.Time           `json:"plannedCompletionDate"`
	ActualCompletionDate  *time.Time           `json:"actualCompletionDate"`
	PlanningStatus        types.PlanningStatus `json:"planningStatus,omitempty"`
	FeatureOwner          string               `json:"featureOwner,omitempty"`
	BlockageReason        string               `json:"blockageReason,omitempty"`
	StatusChangedAt       time.Time            `json:"statusChangedAt"`
	CreatedAt             time.Time            `json:"createdAt"`
	UpdatedAt             time.Time            `json:"updatedAt"`
}

func toFeature(f *model.Feature) featureResponse {
	resp := featureResponse{
		Code:                  f.Code,
		Title:                 f.Title,
		Description:           f.Description,
		Status:                f.Status.Normalize(),
		ProductCode:           f.ProductCode,
		CreatedBy:             f.CreatedBy,
		AssignedTo:            f.AssignedTo,
		PlannedCompletionDate: f.PlannedCompletionDate,
		ActualCompletionDate:  f.ActualCompletionDate,
		PlanningStatus:        f.PlanningStatus,
		FeatureOwner:          f.FeatureOwner,
		BlockageReason:        f.BlockageReason,
		StatusChangedAt:       f.StatusChangedAt,
		CreatedAt:             f.CreatedAt,
		UpdatedAt:             f.UpdatedAt,
	}
	if f.ReleaseCode != "" {
		code := f.ReleaseCode
		resp.ReleaseCode = &code
	}
	return resp
}

type dependencyResponse struct {
	FeatureCode   string               `json:"featureCode"`
	DependsOnCode string               `json:"dependsOnFeatureCode"`
	Type          types.DependencyType `json:"dependencyType"`
	Notes         *string              `json:"notes"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

func toDependency(d *model.FeatureDependency) dependencyResponse {
	return dependencyResponse{
		FeatureCode:   d.FeatureCode,
		DependsOnCode: d.DependsOnCode,
		Type:          d.Type,
		Notes:         d.Notes,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

type usageResponse struct {
	Hash         string    `json:"hash"`
	Deduplicated bool      `json:"deduplicated"`
	Timestamp    time.Time `json:"timestamp"`
}

type notificationResponse struct {
	ID             string                      `json:"id"`
	EventType      types.NotificationEventType `json:"eventType"`
	Details        model.NotificationDetails   `json:"details"`
	Link           string                      `json:"link"`
	Read           bool                        `json:"read"`
	ReadAt         *time.Time                  `json:"readAt"`
	DeliveryStatus types.DeliveryStatus        `json:"deliveryStatus"`
	CreatedAt      time.Time                   `json:"createdAt"`
}

func toNotification(n *model.Notification) notificationResponse {
	return notificationResponse{
		ID:             n.ID,
		EventType:      n.EventType,
		Details:        n.Details,
		Link:           n.Link,
		Read:           n.Read,
		ReadAt:         n.ReadAt,
		DeliveryStatus: n.DeliveryStatus,
		CreatedAt:      n.CreatedAt,
	}
}

type errorLogResponse struct {
	ID         string          `json:"id"`
	Timestamp  time.Time       `json:"timestamp"`
	ErrorType  types.ErrorType `json:"errorType"`
	Message    string          `json:"errorMessage"`
	Payload    string          `json:"eventPayload,omitempty"`
	UserID     string          `json:"userId,omitempty"`
	Resolved   bool            `json:"resolved"`
	ResolvedAt *time.Time      `json:"resolvedAt"`
}

func toErrorLog(e *model.ErrorLogEntry) errorLogResponse {
	return errorLogResponse{
		ID:         e.ID,
		Timestamp:  e.Timestamp,
		ErrorType:  e.ErrorType,
		Message:    e.Message,
		Payload:    e.Payload,
		UserID:     e.UserID,
		Resolved:   e.Resolved,
		ResolvedAt: e.ResolvedAt,
	}
}

type errorLogPageResponse struct {
	Content       []errorLogResponse `json:"content"`
	Page          int                `json:"page"`
	Size          int                `json:"size"`
	TotalElements int                `json:"totalElements"`
	TotalPages    int                `json:"totalPages"`
}

type deliveryFailureResponse struct {
	ID             string                      `json:"id"`
	NotificationID string                      `json:"notificationId"`
	Recipient      string                      `json:"recipient"`
	EventType      types.NotificationEventType `json:"eventType"`
	ErrorMessage   string                      `json:"errorMessage"`
	FailedAt       time.Time                   `json:"failedAt"`
}

func toDeliveryFailure(f *model.DeliveryFailure) deliveryFailureResponse {
	return deliveryFailureResponse{
		ID:             f.ID,
		NotificationID: f.NotificationID,
		Recipient:      f.Recipient,
		EventType:      f.EventType,
		ErrorMessage:   f.ErrorMessage,
		FailedAt:       f.FailedAt,
	}
}

func mapSlice[T any, R any](items []T, fn func(T) R) []R {
	out := make([]R, 0, len(items))
	for _, item := range items {
		out = append(out, fn(item))
	}
	return out
}
