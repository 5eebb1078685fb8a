package slack

import (
	"context"

	"github.com/slack-go/slack"
)

// Service provides the subset of the Slack API used to deliver notifications
type Service interface {
	// LookupUserByEmail resolves a workspace member by e-mail address (with caching)
	LookupUserByEmail(ctx context.Context, email string) (*User, error)

	// PostDirectMessage posts a Block Kit message to the user's DM channel.
	// The text parameter is used as a fallback for notifications.
	PostDirectMessage(ctx context.Context, userID string, blocks []slack.Block, text string) error
}

// User represents a Slack user
type User struct {
	ID       string
	Name     string
	RealName string
	Email    string
}
