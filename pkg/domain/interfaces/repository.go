package interfaces

import "context"

// Repository defines the interface for data persistence
type Repository interface {
	Product() ProductRepository
	Release() ReleaseRepository
	Feature() FeatureRepository
	Dependency() DependencyRepository
	Usage() UsageRepository
	ErrorLog() ErrorLogRepository
	Notification() NotificationRepository
	DeliveryFailure() DeliveryFailureRepository

	// Close releases backend resources
	Close(ctx context.Context) error
}
