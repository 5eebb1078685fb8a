package config

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// Defaults applied when the configuration file omits a value
const (
	DefaultDedupWindow        = 5 * time.Minute
	DefaultHealthBucket       = time.Hour
	DefaultGapThreshold       = 0
	DefaultHealthDefaultRange = 24 * time.Hour
	DefaultTopFeatures        = 10
)

// Tuning holds the numeric parameters of deduplication and analytics
type Tuning struct {
	// DedupWindow is the trailing interval in which identical usage events collapse
	DedupWindow time.Duration

	// HealthBucket is the width of the sub-windows scanned for data gaps
	HealthBucket time.Duration
	// GapThreshold is the highest event count at which a bucket is a gap
	GapThreshold int
	// HealthDefaultRange is used when a health query gives no range
	HealthDefaultRange time.Duration

	TopFeatures int
}

func DefaultTuning() Tuning {
	return Tuning{
		DedupWindow:        DefaultDedupWindow,
		HealthBucket:       DefaultHealthBucket,
		GapThreshold:       DefaultGapThreshold,
		HealthDefaultRange: DefaultHealthDefaultRange,
		TopFeatures:        DefaultTopFeatures,
	}
}

func (x Tuning) Validate() error {
	if x.DedupWindow <= 0 {
		return goerr.New("dedup window must be positive", goerr.V("window", x.DedupWindow))
	}
	if x.HealthBucket <= 0 {
		return goerr.New("health bucket must be positive", goerr.V("bucket", x.HealthBucket))
	}
	if x.GapThreshold < 0 {
		return goerr.New("gap threshold must not be negative", goerr.V("threshold", x.GapThreshold))
	}
	if x.HealthDefaultRange <= 0 {
		return goerr.New("health default range must be positive", goerr.V("range", x.HealthDefaultRange))
	}
	if x.TopFeatures <= 0 {
		return goerr.New("top features must be positive", goerr.V("top_features", x.TopFeatures))
	}
	return nil
}
