package openf1

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pitwall-dev/pitwall/log"
	"github.com/pitwall-dev/pitwall/pkg/fetch"
)

// The provider's event schema is undocumented and unstable; the endpoint name
// has changed several times. We probe all known candidates and merge whatever
// answers with a 200.
var eventEndpoints = []string{
	"overtakes",
	"overtake",
	"events",
	"incidents",
	"race_events",
	"pit_stops",
	"pitstops",
	"pit_stop",
	"retirements",
	"dnf",
}

// wrapper keys under which some endpoint revisions nest their event list
var eventWrapperKeys = []string{"events", "overtakes", "items", "data", "results"}

// SessionEvents probes the candidate event endpoints and returns the merged,
// flattened list of raw event payloads. Absent or failing endpoints are
// skipped; the merged list may legitimately be empty.
func (c *Client) SessionEvents(ctx context.Context, sessionKey int) []map[string]any {
	collected := make([]map[string]any, 0)
	for _, ep := range eventEndpoints {
		u := fmt.Sprintf("%s/%s?session_key=%d", c.baseURL, ep, sessionKey)
		body, err := fetch.Raw(ctx, c.http, u)
		if err != nil {
			c.l.Debug("event endpoint not available",
				log.String("endpoint", ep), log.ErrorField(err))
			continue
		}
		collected = append(collected, normalizeEvents(body)...)
	}
	return collected
}

// normalizeEvents flattens one endpoint response: a list is used as-is, a
// known wrapper key is unwrapped, and any other non-empty object is treated
// as a single event.
func normalizeEvents(body []byte) []map[string]any {
	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return nil
	}
	switch v := data.(type) {
	case []any:
		return asEventMaps(v)
	case map[string]any:
		for _, key := range eventWrapperKeys {
			if inner, ok := v[key].([]any); ok {
				return asEventMaps(inner)
			}
		}
		if len(v) > 0 {
			return []map[string]any{v}
		}
	}
	return nil
}

func asEventMaps(items []any) []map[string]any {
	events := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			events = append(events, m)
		}
	}
	return events
}
