//nolint:funlen // table driven
package live

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pitwall-dev/pitwall/pkg/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want model.Event
	}{
		{
			name: "overtake with structured fields",
			raw: map[string]any{
				"type":        "overtake",
				"overtaker":   float64(11),
				"overtaken":   float64(16),
				"lap":         float64(5),
				"description": "position change",
			},
			want: model.Event{
				Kind: model.EventOvertake, Type: "overtake",
				Text: "position change", Attacker: 11, Defender: 16, Lap: 5,
			},
		},
		{
			name: "overtake from free text",
			raw: map[string]any{
				"description": "DR11 overtook DR16 on lap 5",
			},
			want: model.Event{
				Kind: model.EventOvertake,
				Text: "DR11 overtook DR16 on lap 5", Attacker: 11, Defender: 16, Lap: 5,
			},
		},
		{
			name: "overtake with string driver numbers",
			raw: map[string]any{
				"type":     "overtake",
				"attacker": "4",
				"defender": "81",
				"message":  "into turn one",
			},
			want: model.Event{
				Kind: model.EventOvertake, Type: "overtake",
				Text: "into turn one", Attacker: 4, Defender: 81,
			},
		},
		{
			name: "overtake with hash lap marker",
			raw: map[string]any{
				"description": "DR11 overtook DR16 lap #5",
			},
			want: model.Event{
				Kind: model.EventOvertake,
				Text: "DR11 overtook DR16 lap #5", Attacker: 11, Defender: 16, Lap: 5,
			},
		},
		{
			name: "pit stop with structured driver",
			raw: map[string]any{
				"type":          "pit_stop",
				"driver_number": float64(44),
				"description":   "box box",
				"lap_number":    float64(12),
			},
			want: model.Event{
				Kind: model.EventPitStop, Type: "pit_stop",
				Text: "box box", Driver: 44, Lap: 12,
			},
		},
		{
			name: "pit stop driver from text",
			raw: map[string]any{
				"description": "DR63 pits from P4",
			},
			want: model.Event{
				Kind: model.EventPitStop,
				Text: "DR63 pits from P4", Driver: 63,
			},
		},
		{
			name: "pit stop with trailing hash lap marker",
			raw: map[string]any{
				"description": "DR63 pitted lap# 12",
			},
			want: model.Event{
				Kind: model.EventPitStop,
				Text: "DR63 pitted lap# 12", Driver: 63, Lap: 12,
			},
		},
		{
			name: "retirement",
			raw: map[string]any{
				"type":        "dnf",
				"driver":      float64(23),
				"description": "mechanical failure",
			},
			want: model.Event{
				Kind: model.EventRetirement, Type: "dnf",
				Text: "mechanical failure", Driver: 23,
			},
		},
		{
			name: "retirement from text",
			raw: map[string]any{
				"description": "DR2 retired on lap 33",
			},
			want: model.Event{
				Kind: model.EventRetirement,
				Text: "DR2 retired on lap 33", Driver: 2, Lap: 33,
			},
		},
		{
			name: "generic fallback keeps type tag",
			raw: map[string]any{
				"type":        "weather",
				"description": "light rain expected",
			},
			want: model.Event{
				Kind: model.EventGeneric, Type: "weather",
				Text: "light rain expected",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.raw)
			assert.NotEmpty(t, got.Fingerprint)
			got.Fingerprint = ""
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_TextFallback(t *testing.T) {
	got := Classify(map[string]any{"foo": "bar"})
	assert.Equal(t, model.EventGeneric, got.Kind)
	assert.NotEmpty(t, got.Text, "payload without text fields renders the raw map")
}

func TestRetiredDrivers(t *testing.T) {
	results := []model.SessionResult{
		{DriverNumber: 1, Position: 1, Status: "Finished"},
		{DriverNumber: 55, Position: 18, Status: "DNF"},
		{DriverNumber: 23, Position: 19, Status: "Retired"},
		{DriverNumber: 44, Position: 2, Status: ""},
	}
	assert.Equal(t, []int{55, 23}, RetiredDrivers(results))
}

func TestResolveTokens(t *testing.T) {
	codeFor := func(n int) string {
		if n == 11 {
			return "PER"
		}
		return fmt.Sprintf("DR%d", n)
	}
	assert.Equal(t, "PER ahead of DR16",
		ResolveTokens("DR11 ahead of DR16", codeFor))
}
