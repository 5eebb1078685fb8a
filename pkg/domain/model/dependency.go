package model

import (
	"time"

	"github.com/secmon-lab/releaseboard/pkg/domain/types"
)

// FeatureDependency links a feature to a feature it depends on
type FeatureDependency struct {
	FeatureCode   string
	DependsOnCode string
	Type          types.DependencyType
	Notes         *string
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DependencyKey returns a storage key unique per (feature, depends-on) pair
func DependencyKey(featureCode, dependsOnCode string) string {
	return featureCode + "__" + dependsOnCode
}
