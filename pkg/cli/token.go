package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/releaseboard/pkg/cli/config"
	"github.com/secmon-lab/releaseboard/pkg/domain/model/auth"
	"github.com/secmon-lab/releaseboard/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

func cmdToken() *cli.Command {
	var sub, email, name, role string
	var ttl time.Duration
	var authCfg config.Auth

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "sub",
			Usage:       "User ID of the token",
			Required:    true,
			Destination: &sub,
		},
		&cli.StringFlag{
			Name:        "email",
			Usage:       "E-mail claim",
			Destination: &email,
		},
		&cli.StringFlag{
			Name:        "name",
			Usage:       "Display name claim",
			Destination: &name,
		},
		&cli.StringFlag{
			Name:        "role",
			Usage:       "Role claim [USER|ADMIN]",
			Value:       string(types.RoleUser),
			Destination: &role,
		},
		&cli.DurationFlag{
			Name:        "ttl",
			Usage:       "Token lifetime",
			Value:       24 * time.Hour,
			Destination: &ttl,
		},
	}
	flags = append(flags, authCfg.Flags()...)

	return &cli.Command{
		Name:  "token",
		Usage: "Issue a signed bearer token for the API",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			r := types.Role(role)
			if !r.IsValid() {
				return goerr.New("invalid role", goerr.V("role", role))
			}

			jwtUC, err := authCfg.JWT()
			if err != nil {
				return err
			}

			user := auth.NewToken(sub, email, name)
			user.Role = r
			token, err := jwtUC.IssueToken(user, ttl)
			if err != nil {
				return goerr.Wrap(err, "failed to issue token")
			}

			_, _ = fmt.Fprintln(c.Root().Writer, token)
			return nil
		},
	}
}
