package slack

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/secmon-lab/releaseboard/pkg/domain/model"
	"github.com/slack-go/slack"
)

// maxTextBytes is the Slack limit for a section text field
const maxTextBytes = 3000

// BuildReleaseMessage renders a release notification as Block Kit blocks and
// a plain-text fallback. baseURL is prefixed to the notification link when set.
func BuildReleaseMessage(n *model.Notification, baseURL string) ([]slack.Block, string) {
	d := n.Details
	title := fmt.Sprintf("Release %s is now %s", d.ReleaseCode, d.NewStatus)

	var body strings.Builder
	fmt.Fprintf(&body, "*%s* changed from `%s` to `%s`", d.ReleaseCode, d.PreviousStatus, d.NewStatus)
	if d.ActorID != "" {
		fmt.Fprintf(&body, " by %s", d.ActorID)
	}
	if d.ProductCode != "" {
		fmt.Fprintf(&body, "\nProduct: %s", d.ProductCode)
	}

	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, truncateToMaxBytes(title, 150), false, false)),
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, truncateToMaxBytes(body.String(), maxTextBytes), false, false), nil, nil),
	}

	if n.Link != "" {
		url := strings.TrimRight(baseURL, "/") + n.Link
		btn := slack.NewButtonBlockElement("open_release", d.ReleaseCode,
			slack.NewTextBlockObject(slack.PlainTextType, "Open release", false, false))
		btn.URL = url
		blocks = append(blocks, slack.NewActionBlock("release_actions", btn))
	}

	return blocks, title
}

// truncateToMaxBytes cuts s to at most limit bytes without splitting a rune
func truncateToMaxBytes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
