package slack

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/releaseboard/pkg/domain/model"
)

// Notifier delivers notifications as Slack direct messages
type Notifier struct {
	svc     Service
	baseURL string
}

func NewNotifier(svc Service, baseURL string) *Notifier {
	return &Notifier{svc: svc, baseURL: baseURL}
}

// Notify sends n to its recipient. Recipients that look like e-mail
// addresses are resolved to Slack users; anything else is taken as a Slack
// user ID.
func (x *Notifier) Notify(ctx context.Context, n *model.Notification) error {
	userID := n.RecipientID
	if strings.Contains(userID, "@") {
		user, err := x.svc.LookupUserByEmail(ctx, userID)
		if err != nil {
			return goerr.Wrap(err, "failed to resolve recipient", goerr.V("recipient", n.RecipientID))
		}
		userID = user.ID
	}

	blocks, text := BuildReleaseMessage(n, x.baseURL)
	if err := x.svc.PostDirectMessage(ctx, userID, blocks, text); err != nil {
		return goerr.Wrap(err, "failed to deliver notification",
			goerr.V("notification_id", n.ID), goerr.V("recipient", n.RecipientID))
	}
	return nil
}
