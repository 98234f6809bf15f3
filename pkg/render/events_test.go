package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pitwall-dev/pitwall/pkg/model"
)

func TestNotification(t *testing.T) {
	tests := []struct {
		name string
		ev   model.Event
		want string
	}{
		{
			name: "overtake with lap",
			ev: model.Event{
				Kind: model.EventOvertake, Attacker: 11, Defender: 16, Lap: 5,
			},
			want: "🔁 <b>Overtake (L5)</b>\nPER overtook LEC",
		},
		{
			name: "overtake without lap",
			ev: model.Event{
				Kind: model.EventOvertake, Attacker: 11, Defender: 16,
			},
			want: "🔁 <b>Overtake</b>\nPER overtook LEC",
		},
		{
			name: "pit stop with driver",
			ev: model.Event{
				Kind: model.EventPitStop, Driver: 44, Text: "box box",
			},
			want: "🛠️ <b>Pit Stop</b>\nHAM pitted — box box",
		},
		{
			name: "pit stop without driver",
			ev: model.Event{
				Kind: model.EventPitStop, Text: "pit lane open",
			},
			want: "🛠️ <b>Pit Stop</b>\npit lane open",
		},
		{
			name: "retirement",
			ev: model.Event{
				Kind: model.EventRetirement, Driver: 1, Text: "mechanical failure",
			},
			want: "❌ <b>Retirement</b>\nVER — mechanical failure",
		},
		{
			name: "generic rewrites driver tokens",
			ev: model.Event{
				Kind: model.EventGeneric, Type: "penalty", Text: "5s penalty for DR44",
			},
			want: "ℹ️ <b>penalty</b>\n5s penalty for HAM",
		},
		{
			name: "generic without type tag",
			ev: model.Event{
				Kind: model.EventGeneric, Text: "track limits note",
			},
			want: "ℹ️ <b>Event</b>\ntrack limits note",
		},
		{
			name: "unresolved numbers keep DR form",
			ev: model.Event{
				Kind: model.EventOvertake, Attacker: 98, Defender: 99,
			},
			want: "🔁 <b>Overtake</b>\nDR98 overtook DR99",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Notification(tt.ev, lineupCodeFor))
		})
	}
}

func TestRaceControlNotice(t *testing.T) {
	text := RaceControlNotice(map[string]any{
		"type":    "SafetyCar",
		"message": "SAFETY CAR DEPLOYED",
	})
	assert.Equal(t, "⚠️ <b>SafetyCar</b>\nSAFETY CAR DEPLOYED", text)
}

func TestDNFNotice(t *testing.T) {
	assert.Equal(t, "❌ <b>Retirement</b>\nHAM is classified DNF", DNFNotice(44, lineupCodeFor))
	assert.Equal(t, "❌ <b>Retirement</b>\nDR99 is classified DNF", DNFNotice(99, nil))
}

func TestLiveMessages(t *testing.T) {
	text := LiveStarted(&model.Session{MeetingName: "Azerbaijan Grand Prix", SessionName: "Race"})
	assert.Contains(t, text, "Azerbaijan Grand Prix, Race")
	assert.Contains(t, text, "Live data stream started")

	assert.Contains(t, LiveEnded(), "ended")
	assert.Contains(t, NoLiveSession("summary body"), "no live session")
	assert.Contains(t, NoLiveSession("summary body"), "summary body")
}
