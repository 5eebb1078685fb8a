package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/releaseboard/pkg/domain/model/auth"
	"github.com/secmon-lab/releaseboard/pkg/domain/types"
	"github.com/secmon-lab/releaseboard/pkg/usecase"
	"github.com/secmon-lab/releaseboard/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

type Auth struct {
	jwtSecret string
	issuer    string
	noAuthn   bool
	noAuthnAs string
}

func (x *Auth) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "jwt-secret",
			Usage:       "HS256 secret used to verify bearer tokens",
			Category:    "Authentication",
			Sources:     cli.EnvVars("RELEASEBOARD_JWT_SECRET"),
			Destination: &x.jwtSecret,
		},
		&cli.StringFlag{
			Name:        "jwt-issuer",
			Usage:       "Required iss claim of bearer tokens",
			Category:    "Authentication",
			Sources:     cli.EnvVars("RELEASEBOARD_JWT_ISSUER"),
			Destination: &x.issuer,
		},
		&cli.BoolFlag{
			Name:        "no-authn",
			Usage:       "Skip authentication and treat every request as an admin (development only)",
			Category:    "Authentication",
			Sources:     cli.EnvVars("RELEASEBOARD_NO_AUTHN"),
			Destination: &x.noAuthn,
		},
		&cli.StringFlag{
			Name:        "no-authn-user",
			Usage:       "User ID to act as in no-authn mode",
			Category:    "Authentication",
			Sources:     cli.EnvVars("RELEASEBOARD_NO_AUTHN_USER"),
			Destination: &x.noAuthnAs,
		},
	}
}

func (x Auth) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("jwt-secret.len", len(x.jwtSecret)),
		slog.String("issuer", x.issuer),
		slog.Bool("no-authn", x.noAuthn),
		slog.String("no-authn-user", x.noAuthnAs),
	)
}

// IsNoAuthn returns true if authentication is disabled
func (x *Auth) IsNoAuthn() bool {
	return x.noAuthn
}

// Configure returns the authenticator for incoming requests
func (x *Auth) Configure() (usecase.AuthUseCaseInterface, error) {
	if x.noAuthn {
		if x.jwtSecret != "" {
			logging.Default().Warn("--no-authn is set, ignoring --jwt-secret")
		}
		user := auth.NewAnonymousUser()
		if x.noAuthnAs != "" {
			user = auth.NewToken(x.noAuthnAs, "", x.noAuthnAs)
			user.Role = types.RoleAdmin
		}
		return usecase.NewNoAuthnUseCase(user), nil
	}

	if x.jwtSecret == "" {
		return nil, goerr.Wrap(ErrMissingSecret, "authentication is required: set --jwt-secret or use --no-authn")
	}
	return x.JWT()
}

// JWT builds the token verifier and issuer from the flags
func (x *Auth) JWT() (*usecase.JWTAuthUseCase, error) {
	if x.jwtSecret == "" {
		return nil, goerr.Wrap(ErrMissingSecret, "--jwt-secret is required")
	}

	var opts []usecase.JWTAuthOption
	if x.issuer != "" {
		opts = append(opts, usecase.WithIssuer(x.issuer))
	}
	uc, err := usecase.NewJWTAuthUseCase([]byte(x.jwtSecret), opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure JWT authentication")
	}
	return uc, nil
}
