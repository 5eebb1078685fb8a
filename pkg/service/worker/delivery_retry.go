package worker

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/releaseboard/pkg/service/lock"
	"github.com/secmon-lab/releaseboard/pkg/utils/logging"
)

const retryLockKey = "worker:delivery-retry"

// Retrier re-sends notifications whose delivery failed
type Retrier interface {
	RetryFailedDeliveries(ctx context.Context, limit int) (int, error)
}

// DeliveryRetryWorker periodically re-sends FAILED notifications. When a
// locker is given, only one instance runs a cycle at a time.
type DeliveryRetryWorker struct {
	retrier  Retrier
	locker   lock.Locker
	interval time.Duration
	batch    int
	stopCh   chan struct{}
	doneCh   chan struct{}
}

type Option func(*DeliveryRetryWorker)

func WithLocker(l lock.Locker) Option {
	return func(w *DeliveryRetryWorker) {
		w.locker = l
	}
}

// WithBatchSize caps the notifications retried per cycle. Zero means no cap.
func WithBatchSize(n int) Option {
	return func(w *DeliveryRetryWorker) {
		w.batch = n
	}
}

func NewDeliveryRetryWorker(retrier Retrier, interval time.Duration, opts ...Option) *DeliveryRetryWorker {
	w := &DeliveryRetryWorker{
		retrier:  retrier,
		interval: interval,
		batch:    100,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start runs the retry loop in the background and returns immediately
func (w *DeliveryRetryWorker) Start(ctx context.Context) error {
	if w.interval <= 0 {
		return goerr.New("retry interval must be positive", goerr.V("interval", w.interval.String()))
	}

	logging.Default().Info("delivery retry worker starting",
		"interval", w.interval.String(),
		"batch", w.batch)

	go w.run(ctx)
	return nil
}

// Stop signals the worker to stop and waits for the running cycle to finish
func (w *DeliveryRetryWorker) Stop() {
	logging.Default().Info("delivery retry worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("delivery retry worker stopped")
}

func (w *DeliveryRetryWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.retry(ctx); err != nil {
				logging.Default().Error("delivery retry failed (will retry next interval)",
					"error", err.Error())
			}

		case <-w.stopCh:
			return

		case <-ctx.Done():
			logging.Default().Info("delivery retry worker context cancelled")
			return
		}
	}
}

func (w *DeliveryRetryWorker) retry(ctx context.Context) error {
	if w.locker != nil {
		unlock, err := w.locker.Lock(ctx, retryLockKey)
		if err != nil {
			return goerr.Wrap(err, "failed to acquire delivery retry lock")
		}
		defer unlock()
	}

	startTime := time.Now()
	n, err := w.retrier.RetryFailedDeliveries(ctx, w.batch)
	if err != nil {
		return goerr.Wrap(err, "failed to retry deliveries")
	}
	if n > 0 {
		logging.Default().Info("delivery retry completed",
			"retried", n,
			"duration", time.Since(startTime).String())
	}
	return nil
}
