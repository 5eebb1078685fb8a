package usecase

import (
	"context"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/releaseboard/pkg/domain/model/auth"
	"github.com/secmon-lab/releaseboard/pkg/domain/types"
	"github.com/secmon-lab/releaseboard/pkg/utils/clock"
)

// AuthUseCaseInterface verifies the credentials attached to a request
type AuthUseCaseInterface interface {
	// Authenticate verifies a bearer token. An empty token fails with
	// ErrUnauthenticated unless authentication is disabled.
	Authenticate(ctx context.Context, bearer string) (*auth.Token, error)
	IsNoAuthn() bool
}

const (
	claimEmail = "email"
	claimName  = "name"
	claimRole  = "role"

	defaultAcceptableSkew = 10 * time.Second
)

// JWTAuthUseCase verifies HS256-signed bearer tokens
type JWTAuthUseCase struct {
	secret []byte
	issuer string
	clock  clock.Clock
}

type JWTAuthOption func(*JWTAuthUseCase)

// WithIssuer requires and stamps the iss claim
func WithIssuer(issuer string) JWTAuthOption {
	return func(uc *JWTAuthUseCase) {
		uc.issuer = issuer
	}
}

func WithAuthClock(c clock.Clock) JWTAuthOption {
	return func(uc *JWTAuthUseCase) {
		uc.clock = c
	}
}

func NewJWTAuthUseCase(secret []byte, opts ...JWTAuthOption) (*JWTAuthUseCase, error) {
	if len(secret) == 0 {
		return nil, goerr.New("jwt secret is empty")
	}

	uc := &JWTAuthUseCase{
		secret: secret,
		clock:  clock.System(),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc, nil
}

func (uc *JWTAuthUseCase) IsNoAuthn() bool {
	return false
}

func (uc *JWTAuthUseCase) Authenticate(ctx context.Context, bearer string) (*auth.Token, error) {
	if bearer == "" {
		return nil, goerr.Wrap(ErrUnauthenticated, "no bearer token")
	}

	options := []jwt.ParseOption{
		jwt.WithKey(jwa.HS256, uc.secret),
		jwt.WithValidate(true),
		jwt.WithClock(jwt.ClockFunc(uc.clock.Now)),
		jwt.WithAcceptableSkew(defaultAcceptableSkew),
	}
	if uc.issuer != "" {
		options = append(options, jwt.WithIssuer(uc.issuer))
	}

	token, err := jwt.Parse([]byte(bearer), options...)
	if err != nil {
		return nil, goerr.Wrap(ErrUnauthenticated, "invalid bearer token", goerr.V("reason", err.Error()))
	}
	if token.Subject() == "" {
		return nil, goerr.Wrap(ErrUnauthenticated, "sub claim not found in token")
	}

	return &auth.Token{
		Sub:       token.Subject(),
		Email:     stringClaim(token, claimEmail),
		Name:      stringClaim(token, claimName),
		Role:      types.ParseRole(stringClaim(token, claimRole)),
		ExpiresAt: token.Expiration(),
	}, nil
}

// IssueToken signs a token for the given identity, valid for ttl
func (uc *JWTAuthUseCase) IssueToken(user *auth.Token, ttl time.Duration) (string, error) {
	if user == nil || user.Sub == "" {
		return "", invalid("subject is required to issue a token")
	}
	if ttl <= 0 {
		return "", invalid("token lifetime must be positive", goerr.V("ttl", ttl))
	}

	now := uc.clock.Now()
	builder := jwt.NewBuilder().
		Subject(user.Sub).
		IssuedAt(now).
		Expiration(now.Add(ttl)).
		Claim(claimRole, string(user.Role))
	if user.Email != "" {
		builder = builder.Claim(claimEmail, user.Email)
	}
	if user.Name != "" {
		builder = builder.Claim(claimName, user.Name)
	}
	if uc.issuer != "" {
		builder = builder.Issuer(uc.issuer)
	}

	token, err := builder.Build()
	if err != nil {
		return "", goerr.Wrap(err, "failed to build token")
	}
	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, uc.secret))
	if err != nil {
		return "", goerr.Wrap(err, "failed to sign token")
	}
	return string(signed), nil
}

func stringClaim(token jwt.Token, name string) string {
	v, ok := token.Get(name)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}
