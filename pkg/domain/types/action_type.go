package types

import "github.com/m-mizutani/goerr/v2"

// ActionType is the kind of interaction a usage event records
type ActionType string

const (
	ActionTypeFeatureViewed   ActionType = "FEATURE_VIEWED"
	ActionTypeFeatureUsed     ActionType = "FEATURE_USED"
	ActionTypeFeatureEnabled  ActionType = "FEATURE_ENABLED"
	ActionTypeFeatureDisabled ActionType = "FEATURE_DISABLED"
	ActionTypeReleaseViewed   ActionType = "RELEASE_VIEWED"
	ActionTypePageViewed      ActionType = "PAGE_VIEWED"
	ActionTypeButtonClicked   ActionType = "BUTTON_CLICKED"
	ActionTypeSearchPerformed ActionType = "SEARCH_PERFORMED"
)

var actionTypes = map[ActionType]struct{}{
	ActionTypeFeatureViewed:   {},
	ActionTypeFeatureUsed:     {},
	ActionTypeFeatureEnabled:  {},
	ActionTypeFeatureDisabled: {},
	ActionTypeReleaseViewed:   {},
	ActionTypePageViewed:      {},
	ActionTypeButtonClicked:   {},
	ActionTypeSearchPerformed: {},
}

func (a ActionType) IsValid() bool {
	_, ok := actionTypes[a]
	return ok
}

func (a ActionType) String() string {
	return string(a)
}

// ParseActionType maps a raw value onto a known action type.
func ParseActionType(s string) (ActionType, error) {
	a := ActionType(s)
	if !a.IsValid() {
		return "", goerr.New("unknown action type", goerr.V("action_type", s))
	}
	return a, nil
}
