package model

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Segment is a named filter over usage-event context tags. An event matches
// when every tag is present with an equal value.
type Segment struct {
	Name string
	Tags map[string]string
}

const (
	SegmentMobileUsers     = "Mobile Users"
	SegmentDesktopUsers    = "Desktop Users"
	SegmentBetaTesters     = "Beta Testers"
	SegmentEnterpriseUsers = "Enterprise Users"
)

// PredefinedSegments returns the fixed segment set in display order
func PredefinedSegments() []Segment {
	return []Segment{
		{Name: SegmentMobileUsers, Tags: map[string]string{"device": "mobile"}},
		{Name: SegmentDesktopUsers, Tags: map[string]string{"device": "desktop"}},
		{Name: SegmentBetaTesters, Tags: map[string]string{"beta": "true"}},
		{Name: SegmentEnterpriseUsers, Tags: map[string]string{"plan": "enterprise"}},
	}
}

// LookupSegment finds a predefined segment by name, case-insensitively
func LookupSegment(name string) (Segment, bool) {
	for _, s := range PredefinedSegments() {
		if strings.EqualFold(s.Name, strings.TrimSpace(name)) {
			return s, true
		}
	}
	return Segment{}, false
}

// With returns a copy of the segment with extra tag criteria ANDed in.
// A custom tag overrides a predefined one with the same key.
func (x Segment) With(extra map[string]string) Segment {
	tags := make(map[string]string, len(x.Tags)+len(extra))
	for k, v := range x.Tags {
		tags[k] = v
	}
	for k, v := range extra {
		tags[k] = v
	}
	return Segment{Name: x.Name, Tags: tags}
}

// Matches reports whether the event context satisfies every tag
func (x Segment) Matches(ctx map[string]string) bool {
	for k, v := range x.Tags {
		if got, ok := ctx[k]; !ok || got != v {
			return false
		}
	}
	return true
}

// ParseTagFilter parses "key:value,key2:value2" into a tag map.
func ParseTagFilter(raw string) (map[string]string, error) {
	tags := map[string]string{}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return tags, nil
	}

	for _, pair := range strings.Split(raw, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(pair), ":")
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if !ok || k == "" || v == "" {
			return nil, goerr.New("malformed tag filter, expected key:value", goerr.V("tag", pair))
		}
		if _, dup := tags[k]; dup {
			return nil, goerr.New("duplicated tag key in filter", goerr.V("key", k))
		}
		tags[k] = v
	}
	return tags, nil
}
