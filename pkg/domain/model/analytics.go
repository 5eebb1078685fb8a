package model

import (
	"math"
	"time"

	"github.com/secmon-lab/releaseboard/pkg/domain/types"
)

// TimeRange is a closed interval [Start, End]
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t lies within the range, bounds included
func (x TimeRange) Contains(t time.Time) bool {
	return !t.Before(x.Start) && !t.After(x.End)
}

// Percent returns part/whole*100 rounded to two decimals, or 0 when whole is 0
func Percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return Round2(float64(part) / float64(whole) * 100)
}

// Round2 rounds to two decimal places
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// HealthMetrics is the system-wide ingestion health over a time range
type HealthMetrics struct {
	Range        TimeRange               `json:"range"`
	TotalEvents  int                     `json:"totalEvents"`
	FailedEvents int                     `json:"failedEvents"`
	SuccessRate  float64                 `json:"successRate"`
	ErrorRate    float64                 `json:"errorRate"`
	ErrorsByType map[types.ErrorType]int `json:"errorsByType"`
	DataGaps     []DataGap               `json:"dataGaps"`
}

// DataGap is a sub-interval with usage activity at or below the gap threshold
type DataGap struct {
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	EventCount int       `json:"eventCount"`
}

// ReleaseDashboard summarizes the state of one release
type ReleaseDashboard struct {
	ReleaseCode      string              `json:"releaseCode"`
	Status           types.ReleaseStatus `json:"status"`
	Overview         DashboardOverview   `json:"overview"`
	HealthIndicators HealthIndicators    `json:"healthIndicators"`
	Timeline         ReleaseTimeline     `json:"timeline"`
	FeatureBreakdown FeatureBreakdown    `json:"featureBreakdown"`
}

type DashboardOverview struct {
	TotalFeatures        int     `json:"totalFeatures"`
	CompletedFeatures    int     `json:"completedFeatures"`
	InProgressFeatures   int     `json:"inProgressFeatures"`
	BlockedFeatures      int     `json:"blockedFeatures"`
	PendingFeatures      int     `json:"pendingFeatures"`
	CompletionPercentage float64 `json:"completionPercentage"`
}

type HealthIndicators struct {
	TimelineAdherence types.TimelineAdherence `json:"timelineAdherence"`
	RiskLevel         types.RiskLevel         `json:"riskLevel"`
	BlockedFeatures   int                     `json:"blockedFeatures"`
	OverdueFeatures   int                     `json:"overdueFeatures"`
}

type ReleaseTimeline struct {
	StartDate        *time.Time `json:"startDate"`
	PlannedEndDate   *time.Time `json:"plannedEndDate"`
	EstimatedEndDate *time.Time `json:"estimatedEndDate"`
	ActualEndDate    *time.Time `json:"actualEndDate"`
}

type FeatureBreakdown struct {
	ByStatus map[types.FeatureStatus]int `json:"byStatus"`
	ByOwner  map[string]int              `json:"byOwner"`
}

// ReleaseMetrics is the delivery performance of one release
type ReleaseMetrics struct {
	ReleaseCode          string               `json:"releaseCode"`
	TotalFeatures        int                  `json:"totalFeatures"`
	CompletedFeatures    int                  `json:"completedFeatures"`
	CompletionRate       float64              `json:"completionRate"`
	Velocity             Velocity             `json:"velocity"`
	BlockedTime          BlockedTime          `json:"blockedTime"`
	WorkloadDistribution WorkloadDistribution `json:"workloadDistribution"`
}

type Velocity struct {
	FeaturesPerWeek float64 `json:"featuresPerWeek"`
	// AverageCycleTime is in days.
	AverageCycleTime float64 `json:"averageCycleTime"`
}

type BlockedTime struct {
	TotalBlockedDays       int     `json:"totalBlockedDays"`
	AverageBlockedDuration float64 `json:"averageBlockedDuration"`
}

type WorkloadDistribution struct {
	ByOwner []OwnerWorkload `json:"byOwner"`
}

type OwnerWorkload struct {
	Owner              string  `json:"owner"`
	AssignedFeatures   int     `json:"assignedFeatures"`
	CompletedFeatures  int     `json:"completedFeatures"`
	InProgressFeatures int     `json:"inProgressFeatures"`
	BlockedFeatures    int     `json:"blockedFeatures"`
	UtilizationRate    float64 `json:"utilizationRate"`
}

// SegmentAnalytics is the usage aggregate of one segment
type SegmentAnalytics struct {
	Segment           string                   `json:"segment"`
	Criteria          map[string]string        `json:"criteria"`
	TotalUsage        int                      `json:"totalUsage"`
	UniqueUsers       int                      `json:"uniqueUsers"`
	TopFeatures       []FeatureUsage           `json:"topFeatures"`
	UsageByActionType map[types.ActionType]int `json:"usageByActionType"`
}

type FeatureUsage struct {
	FeatureCode string `json:"featureCode"`
	Count       int    `json:"count"`
}

// ReprocessResult summarizes a reprocessing run
type ReprocessResult struct {
	DryRun         bool             `json:"dryRun"`
	TotalProcessed int              `json:"totalProcessed"`
	SuccessCount   int              `json:"successCount"`
	FailedCount    int              `json:"failedCount"`
	Errors         []ReprocessError `json:"errors"`
}

type ReprocessError struct {
	ErrorLogID string `json:"errorLogId"`
	Message    string `json:"message"`
}
