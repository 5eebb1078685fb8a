package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/releaseboard/pkg/domain/model"
	"github.com/secmon-lab/releaseboard/pkg/domain/types"
)

// SegmentQuery selects segments and the events they aggregate over
type SegmentQuery struct {
	// Names limits the result to these predefined segments; empty means all
	Names []string
	// CustomTags is a "key:value,key:value" filter ANDed into every segment
	CustomTags string
	Start      *time.Time
	End        *time.Time
}

// SegmentAnalytics aggregates usage per segment. Segments without matching
// events are still returned with zero values.
func (uc *AnalyticsUseCase) SegmentAnalytics(ctx context.Context, q SegmentQuery) ([]*model.SegmentAnalytics, error) {
	defer uc.metrics.ObserveAggregation("segments", time.Now())

	segments, err := selectSegments(q)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	start, end := time.Unix(0, 0).UTC(), now
	if q.Start != nil {
		start = q.Start.UTC()
	}
	if q.End != nil {
		end = q.End.UTC()
	}
	if end.Before(start) {
		return nil, invalid("end date is before start date", goerr.V("start", start), goerr.V("end", end))
	}

	events, err := uc.repo.Usage().List(ctx, start, end)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list usage events")
	}

	return aggregateSegments(segments, events, uc.tuning.TopFeatures), nil
}

func selectSegments(q SegmentQuery) ([]model.Segment, error) {
	extra, err := model.ParseTagFilter(q.CustomTags)
	if err != nil {
		return nil, invalidFrom(err)
	}

	var segments []model.Segment
	if len(q.Names) == 0 {
		segments = model.PredefinedSegments()
	} else {
		seen := make(map[string]struct{})
		for _, name := range q.Names {
			seg, ok := model.LookupSegment(name)
			if !ok {
				return nil, invalid("unknown segment", goerr.V("segment", name))
			}
			if _, dup := seen[seg.Name]; dup {
				continue
			}
			seen[seg.Name] = struct{}{}
			segments = append(segments, seg)
		}
	}

	for i := range segments {
		segments[i] = segments[i].With(extra)
	}
	return segments, nil
}

type segmentAccumulator struct {
	result   *model.SegmentAnalytics
	users    map[string]struct{}
	features map[string]int
}

func aggregateSegments(segments []model.Segment, events []*model.UsageEvent, topN int) []*model.SegmentAnalytics {
	accs := make([]*segmentAccumulator, len(segments))
	for i, seg := range segments {
		criteria := make(map[string]string, len(seg.Tags))
		for k, v := range seg.Tags {
			criteria[k] = v
		}
		accs[i] = &segmentAccumulator{
			result: &model.SegmentAnalytics{
				Segment:           seg.Name,
				Criteria:          criteria,
				TopFeatures:       []model.FeatureUsage{},
				UsageByActionType: make(map[types.ActionType]int),
			},
			users:    make(map[string]struct{}),
			features: make(map[string]int),
		}
	}

	for _, ev := range events {
		for i, seg := range segments {
			if !seg.Matches(ev.Context) {
				continue
			}
			acc := accs[i]
			acc.result.TotalUsage++
			acc.users[ev.UserID] = struct{}{}
			acc.result.UsageByActionType[ev.ActionType]++
			if ev.FeatureCode != "" {
				acc.features[ev.FeatureCode]++
			}
		}
	}

	results := make([]*model.SegmentAnalytics, len(accs))
	for i, acc := range accs {
		acc.result.UniqueUsers = len(acc.users)
		acc.result.TopFeatures = topFeatures(acc.features, topN)
		results[i] = acc.result
	}
	return results
}

// topFeatures ranks by count descending, then feature code ascending
func topFeatures(counts map[string]int, n int) []model.FeatureUsage {
	list := make([]model.FeatureUsage, 0, len(counts))
	for code, c := range counts {
		list = append(list, model.FeatureUsage{FeatureCode: code, Count: c})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Count != list[j].Count {
			return list[i].Count > list[j].Count
		}
		return list[i].FeatureCode < list[j].FeatureCode
	})
	if n > 0 && len(list) > n {
		list = list[:n]
	}
	return list
}
