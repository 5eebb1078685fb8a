package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/releaseboard/pkg/domain/model"
)

type usageRepository struct {
	st *store
}

func (r *usageRepository) InsertIfAbsent(ctx context.Context, event *model.UsageEvent, since time.Time) (bool, error) {
	if event.Hash == "" {
		return false, goerr.New("usage event has no hash", goerr.V("user_id", event.UserID))
	}

	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	for _, e := range r.st.usage {
		if e.UserID == event.UserID && e.Hash == event.Hash && !e.IngestedAt.Before(since) {
			return false, nil
		}
	}

	created := copyUsageEvent(event)
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	r.st.usage = append(r.st.usage, created)
	return true, nil
}

func (r *usageRepository) List(ctx context.Context, start, end time.Time) ([]*model.UsageEvent, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	events := make([]*model.UsageEvent, 0)
	for _, e := range r.st.usage {
		if e.Timestamp.Before(start) || e.Timestamp.After(end) {
			continue
		}
		events = append(events, copyUsageEvent(e))
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].Timestamp.Before(events[j].Timestamp) })
	return events, nil
}

func (r *usageRepository) Count(ctx context.Context, start, end time.Time) (int, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	n := 0
	for _, e := range r.st.usage {
		if !e.Timestamp.Before(start) && !e.Timestamp.After(end) {
			n++
		}
	}
	return n, nil
}
