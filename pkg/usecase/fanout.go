package usecase

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/secmon-lab/releaseboard/pkg/domain/model"
	"github.com/secmon-lab/releaseboard/pkg/domain/types"
)

// stakeholders collects the creators and assignees of features as a set,
// without the actor, in lexical order.
func stakeholders(features []*model.Feature, actorID string) []string {
	set := make(map[string]struct{})
	for _, f := range features {
		for _, id := range f.Stakeholders() {
			set[id] = struct{}{}
		}
	}
	delete(set, actorID)

	recipients := make([]string, 0, len(set))
	for id := range set {
		recipients = append(recipients, id)
	}
	sort.Strings(recipients)
	return recipients
}

// buildReleaseNotifications creates one RELEASE_UPDATED notification per
// stakeholder of the release. It returns nil when the transition does not
// cascade or nobody besides the actor is involved.
func buildReleaseNotifications(release *model.Release, features []*model.Feature, tr model.StatusTransition) []*model.Notification {
	if !tr.Cascades() {
		return nil
	}

	recipients := stakeholders(features, tr.ActorID)
	if len(recipients) == 0 {
		return nil
	}

	details := model.NotificationDetails{
		ReleaseCode:    release.Code,
		ProductCode:    release.ProductCode,
		PreviousStatus: tr.From,
		NewStatus:      tr.To,
		ActorID:        tr.ActorID,
	}

	notifications := make([]*model.Notification, 0, len(recipients))
	for _, recipient := range recipients {
		notifications = append(notifications, &model.Notification{
			ID:             uuid.NewString(),
			RecipientID:    recipient,
			EventType:      types.NotificationEventReleaseUpdated,
			Details:        details,
			Link:           model.ReleaseLink(release.Code),
			DeliveryStatus: types.DeliveryStatusPending,
			CreatedAt:      tr.At,
		})
	}
	return notifications
}

func timePtr(t time.Time) *time.Time {
	return &t
}
