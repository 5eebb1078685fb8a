package clock_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/releaseboard/pkg/utils/clock"
)

func TestFixed(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c := clock.NewFixed(base)
	gt.Value(t, c.Now()).Equal(base)

	c.Advance(90 * time.Minute)
	gt.Value(t, c.Now()).Equal(base.Add(90 * time.Minute))
}

func TestFromContext(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := clock.With(context.Background(), clock.NewFixed(base))
	gt.Value(t, clock.From(ctx).Now()).Equal(base)

	gt.Bool(t, clock.From(context.Background()).Now().After(base)).True()
}
