package lock_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/redis/go-redis/v9"
	"github.com/secmon-lab/releaseboard/pkg/service/lock"
)

func runLockerTest(t *testing.T, locker lock.Locker) {
	t.Run("serializes holders of the same key", func(t *testing.T) {
		ctx := context.Background()
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			active  int
			maxSeen int
		)
		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock, err := locker.Lock(ctx, "same-key")
				if err != nil {
					t.Errorf("lock failed: %v", err)
					return
				}
				mu.Lock()
				active++
				if active > maxSeen {
					maxSeen = active
				}
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				active--
				mu.Unlock()
				unlock()
			}()
		}
		wg.Wait()
		gt.Number(t, maxSeen).Equal(1)
	})

	t.Run("different keys do not block", func(t *testing.T) {
		ctx := context.Background()
		unlockA, err := locker.Lock(ctx, "key-a")
		gt.NoError(t, err).Required()
		defer unlockA()

		unlockB, err := locker.Lock(ctx, "key-b")
		gt.NoError(t, err).Required()
		unlockB()
	})
}

func TestMemoryLocker(t *testing.T) {
	runLockerTest(t, lock.NewMemory())
}

func TestMemoryLockerCancel(t *testing.T) {
	locker := lock.NewMemory()
	unlock, err := locker.Lock(context.Background(), "k")
	gt.NoError(t, err).Required()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, "k")
	gt.Error(t, err).Is(context.DeadlineExceeded)

	unlock()
	unlock() // second call is a no-op

	unlock2, err := locker.Lock(context.Background(), "k")
	gt.NoError(t, err).Required()
	unlock2()
}

func TestRedisLocker(t *testing.T) {
	addr := os.Getenv("RELEASEBOARD_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("RELEASEBOARD_TEST_REDIS_ADDR not set")
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })

	runLockerTest(t, lock.NewRedis(rdb, lock.WithKeyPrefix("releaseboard-test:"+time.Now().Format("150405.000")+":")))
}
