package async_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/releaseboard/pkg/utils/async"
)

func TestGroup(t *testing.T) {
	t.Run("wait returns after handlers finish", func(t *testing.T) {
		var g async.Group
		var n atomic.Int32
		for range 5 {
			g.Dispatch(context.Background(), func(ctx context.Context) error {
				n.Add(1)
				return nil
			})
		}
		gt.NoError(t, g.Wait(context.Background())).Required()
		gt.Number(t, n.Load()).Equal(5)
	})

	t.Run("errors and panics do not escape", func(t *testing.T) {
		var g async.Group
		g.Dispatch(context.Background(), func(ctx context.Context) error {
			return errors.New("failed")
		})
		g.Dispatch(context.Background(), func(ctx context.Context) error {
			panic("boom")
		})
		gt.NoError(t, g.Wait(context.Background())).Required()
	})

	t.Run("handler context outlives the caller", func(t *testing.T) {
		var g async.Group
		ctx, cancel := context.WithCancel(context.Background())
		var alive atomic.Bool
		g.Dispatch(ctx, func(ctx context.Context) error {
			time.Sleep(10 * time.Millisecond)
			alive.Store(ctx.Err() == nil)
			return nil
		})
		cancel()
		gt.NoError(t, g.Wait(context.Background())).Required()
		gt.Bool(t, alive.Load()).True()
	})

	t.Run("wait gives up when context is done", func(t *testing.T) {
		var g async.Group
		release := make(chan struct{})
		g.Dispatch(context.Background(), func(ctx context.Context) error {
			<-release
			return nil
		})

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		gt.Error(t, g.Wait(ctx)).Is(context.DeadlineExceeded)

		close(release)
		gt.NoError(t, g.Wait(context.Background())).Required()
	})
}
