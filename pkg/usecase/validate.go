package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/releaseboard/pkg/domain/model/auth"
)

func invalid(msg string, values ...goerr.Option) error {
	return goerr.Wrap(ErrValidation, msg, values...)
}

// invalidFrom turns a domain parse error into a validation error, keeping its values
func invalidFrom(err error) error {
	var opts []goerr.Option
	if ge := goerr.Unwrap(err); ge != nil {
		for k, v := range ge.Values() {
			opts = append(opts, goerr.V(k, v))
		}
	}
	return goerr.Wrap(ErrValidation, err.Error(), opts...)
}

// requireActor returns the authenticated caller identity
func requireActor(ctx context.Context) (string, error) {
	token, err := auth.TokenFromContext(ctx)
	if err != nil || token.Sub == "" {
		return "", goerr.Wrap(ErrUnauthenticated, "no authenticated user in context")
	}
	return token.Sub, nil
}

// resolveRange fills a missing bound relative to now and the other bound.
// A missing end defaults to now; a missing start defaults to end - fallback.
func resolveRange(start, end *time.Time, now time.Time, fallback time.Duration) (time.Time, time.Time, error) {
	e := now
	if end != nil {
		e = end.UTC()
	}
	s := e.Add(-fallback)
	if start != nil {
		s = start.UTC()
	}
	if e.Before(s) {
		return time.Time{}, time.Time{}, invalid("end date is before start date",
			goerr.V("start", s), goerr.V("end", e))
	}
	return s, e, nil
}
