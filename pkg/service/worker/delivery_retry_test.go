package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/releaseboard/pkg/service/lock"
	"github.com/secmon-lab/releaseboard/pkg/service/worker"
)

type fakeRetrier struct {
	mu     sync.Mutex
	calls  int
	limits []int
	err    error
}

func (x *fakeRetrier) RetryFailedDeliveries(ctx context.Context, limit int) (int, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.calls++
	x.limits = append(x.limits, limit)
	if x.err != nil {
		return 0, x.err
	}
	return 1, nil
}

func (x *fakeRetrier) snapshot() (int, []int) {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.calls, append([]int(nil), x.limits...)
}

func waitCalls(t *testing.T, r *fakeRetrier, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if calls, _ := r.snapshot(); calls >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("retrier was not called %d times", want)
}

func TestDeliveryRetryWorker(t *testing.T) {
	t.Run("retries on every tick with batch size", func(t *testing.T) {
		r := &fakeRetrier{}
		w := worker.NewDeliveryRetryWorker(r, 10*time.Millisecond,
			worker.WithBatchSize(7),
			worker.WithLocker(lock.NewMemory()),
		)
		gt.NoError(t, w.Start(context.Background())).Required()
		waitCalls(t, r, 2)
		w.Stop()

		_, limits := r.snapshot()
		for _, l := range limits {
			gt.Number(t, l).Equal(7)
		}
	})

	t.Run("keeps running after an error", func(t *testing.T) {
		r := &fakeRetrier{err: errors.New("boom")}
		w := worker.NewDeliveryRetryWorker(r, 10*time.Millisecond)
		gt.NoError(t, w.Start(context.Background())).Required()
		waitCalls(t, r, 3)
		w.Stop()
	})

	t.Run("stops when context is cancelled", func(t *testing.T) {
		r := &fakeRetrier{}
		ctx, cancel := context.WithCancel(context.Background())
		w := worker.NewDeliveryRetryWorker(r, time.Hour)
		gt.NoError(t, w.Start(ctx)).Required()
		cancel()
		w.Stop()

		calls, _ := r.snapshot()
		gt.Number(t, calls).Equal(0)
	})

	t.Run("rejects non-positive interval", func(t *testing.T) {
		w := worker.NewDeliveryRetryWorker(&fakeRetrier{}, 0)
		gt.Error(t, w.Start(context.Background()))
	})
}
