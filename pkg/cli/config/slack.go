package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/releaseboard/pkg/service/slack"
	"github.com/secmon-lab/releaseboard/pkg/usecase"
	"github.com/urfave/cli/v3"
)

type Slack struct {
	botToken string
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token (enables notification delivery by direct message)",
			Category:    "Slack",
			Destination: &x.botToken,
			Sources:     cli.EnvVars("RELEASEBOARD_SLACK_BOT_TOKEN"),
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bot-token.len", len(x.botToken)),
	)
}

// IsConfigured checks if Slack configuration is complete
func (x *Slack) IsConfigured() bool {
	return x.botToken != ""
}

// Configure returns a notifier delivering through Slack, or nil when no
// bot token is set. baseURL is used for links in the messages.
func (x *Slack) Configure(baseURL string) (usecase.Notifier, error) {
	if !x.IsConfigured() {
		return nil, nil
	}

	svc, err := slack.New(x.botToken)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize slack service")
	}
	return slack.NewNotifier(svc, baseURL), nil
}
