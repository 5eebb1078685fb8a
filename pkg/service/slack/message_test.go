package slack_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/releaseboard/pkg/domain/model"
	"github.com/secmon-lab/releaseboard/pkg/domain/types"
	"github.com/secmon-lab/releaseboard/pkg/service/slack"
)

func TestBuildReleaseMessage(t *testing.T) {
	n := &model.Notification{
		Details: model.NotificationDetails{
			ReleaseCode:    "REL-2",
			PreviousStatus: types.ReleaseStatusInProgress,
			NewStatus:      types.ReleaseStatusDelayed,
		},
		Link: model.ReleaseLink("REL-2"),
	}

	blocks, text := slack.BuildReleaseMessage(n, "https://board.example.com/")
	gt.Array(t, blocks).Length(3)
	gt.String(t, text).Contains("REL-2")
	gt.String(t, text).Contains("DELAYED")

	n.Link = ""
	blocks, _ = slack.BuildReleaseMessage(n, "")
	gt.Array(t, blocks).Length(2)
}

func TestTruncateToMaxBytes(t *testing.T) {
	gt.Value(t, slack.TruncateToMaxBytes("short", 10)).Equal("short")

	s := strings.Repeat("あ", 10) // 3 bytes each
	out := slack.TruncateToMaxBytes(s, 10)
	gt.Bool(t, utf8.ValidString(out)).True()
	gt.Number(t, len(out)).Equal(9)
}
