package types

// TimelineAdherence summarizes how a release tracks against its plan
type TimelineAdherence string

const (
	TimelineOnSchedule TimelineAdherence = "ON_SCHEDULE"
	TimelineDelayed    TimelineAdherence = "DELAYED"
	TimelineCritical   TimelineAdherence = "CRITICAL"
)

// RiskLevel is the derived delivery risk of a release
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "LOW"
	RiskLevelMedium   RiskLevel = "MEDIUM"
	RiskLevelHigh     RiskLevel = "HIGH"
	RiskLevelCritical RiskLevel = "CRITICAL"
)

var riskOrder = []RiskLevel{RiskLevelLow, RiskLevelMedium, RiskLevelHigh, RiskLevelCritical}

// Raise returns the next higher risk level, saturating at CRITICAL.
func (r RiskLevel) Raise() RiskLevel {
	for i, lv := range riskOrder {
		if lv == r && i+1 < len(riskOrder) {
			return riskOrder[i+1]
		}
	}
	return RiskLevelCritical
}
