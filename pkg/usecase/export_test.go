package usecase

import (
	"context"

	"github.com/secmon-lab/releaseboard/pkg/utils/logging"
)

// WithSyncDispatch runs post-commit work inline so tests can observe it
func WithSyncDispatch() Option {
	return func(uc *UseCases) {
		uc.dispatch = func(ctx context.Context, handler func(ctx context.Context) error) {
			if err := handler(ctx); err != nil {
				logging.From(ctx).Error("dispatched handler failed", "error", err)
			}
		}
	}
}

var (
	Stakeholders = stakeholders
	DetectGaps   = detectGaps
	TopFeatures  = topFeatures
)
