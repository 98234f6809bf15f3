package openf1

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

//nolint:funlen // table driven
func TestNormalizeEvents(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []map[string]any
	}{
		{
			name: "plain list",
			body: `[{"driver_number":11},{"driver_number":16}]`,
			want: []map[string]any{
				{"driver_number": float64(11)},
				{"driver_number": float64(16)},
			},
		},
		{
			name: "events wrapper",
			body: `{"events":[{"type":"overtake"}]}`,
			want: []map[string]any{{"type": "overtake"}},
		},
		{
			name: "data wrapper",
			body: `{"data":[{"type":"pit"}]}`,
			want: []map[string]any{{"type": "pit"}},
		},
		{
			name: "single object",
			body: `{"type":"retirement","driver_number":55}`,
			want: []map[string]any{{"type": "retirement", "driver_number": float64(55)}},
		},
		{
			name: "list with non-object entries",
			body: `[{"type":"overtake"},"noise",42]`,
			want: []map[string]any{{"type": "overtake"}},
		},
		{
			name: "empty object",
			body: `{}`,
			want: nil,
		},
		{
			name: "empty list",
			body: `[]`,
			want: []map[string]any{},
		},
		{
			name: "malformed",
			body: `{"events":`,
			want: nil,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if diff := cmp.Diff(test.want, normalizeEvents([]byte(test.body))); diff != "" {
				t.Errorf("normalizeEvents mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSessionEvents(t *testing.T) {
	// only two of the candidate endpoints answer; the rest 404 and are skipped
	c := newTestClient(t, map[string]string{
		"/overtakes": `[{"type":"overtake","driver_number":11}]`,
		"/incidents": `{"items":[{"type":"incident"}]}`,
	})
	events := c.SessionEvents(context.Background(), 9158)
	assert.Equal(t, []map[string]any{
		{"type": "overtake", "driver_number": float64(11)},
		{"type": "incident"},
	}, events)
}

func TestSessionEvents_NothingAvailable(t *testing.T) {
	c := newTestClient(t, map[string]string{})
	assert.Empty(t, c.SessionEvents(context.Background(), 9158))
}
