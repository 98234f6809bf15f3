package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pitwall-dev/pitwall/pkg/model"
)

func TestStandings(t *testing.T) {
	text := Standings([]model.Standing{
		{Position: "1", Points: "310", Code: "ver", Team: "Red Bull Racing"},
		{Position: "2", Points: "275", Code: "NOR", Team: "McLaren"},
	})
	assert.Contains(t, text, "Driver Standings")
	assert.Contains(t, text, "VER")
	assert.Contains(t, text, "Red Bull")
	assert.NotContains(t, text, "Racing", "team names are abbreviated")
	assert.Contains(t, text, "310")
}

func TestStandings_Empty(t *testing.T) {
	text := Standings(nil)
	assert.NotEmpty(t, text)
	assert.Contains(t, text, "unavailable")
}

func TestSchedule(t *testing.T) {
	weekend := &model.Weekend{
		MeetingName: "Azerbaijan Grand Prix",
		CircuitName: "Baku City Circuit",
		CountryName: "Azerbaijan",
		Sessions: []model.ScheduleSession{
			{Name: "Practice 1", DateStart: "2025-09-19T08:30:00Z"},
			{Name: "Race", DateStart: "2025-09-21T11:00:00Z"},
			{Name: "Broken", DateStart: "not-a-date"},
		},
	}
	text := Schedule(weekend, 4*time.Hour)
	assert.Contains(t, text, "🇦🇿")
	assert.Contains(t, text, "Practice 1: <b>Fri, 19 Sep | 12:30</b>")
	assert.Contains(t, text, "Race: <b>Sun, 21 Sep | 15:00</b>")
	assert.Contains(t, text, "Broken: <i>Time N/A</i>")
	assert.Contains(t, text, "UTC+4")
}

func TestSchedule_Empty(t *testing.T) {
	assert.Contains(t, Schedule(nil, 0), "not available")
	assert.Contains(t, Schedule(&model.Weekend{MeetingName: "X"}, 0), "not available")
}

func TestSessionSummary(t *testing.T) {
	text := SessionSummary(&model.SessionSummary{
		MeetingName: "Italian Grand Prix",
		SessionName: "Race",
		IsRace:      true,
		Top3: []model.SummaryRow{
			{Position: 1, Code: "VER"},
			{Position: 2, Code: "NOR"},
			{Position: 3, Code: "LEC"},
		},
		FastestDriver: "NOR",
		FastestTime:   "1:21.432",
	})
	assert.Contains(t, text, "🥇 <b>P1</b>: VER")
	assert.Contains(t, text, "🥈 <b>P2</b>: NOR")
	assert.Contains(t, text, "🥉 <b>P3</b>: LEC")
	assert.Contains(t, text, "Best Lap:</b> NOR (1:21.432)")
}

func TestSessionSummary_Unavailable(t *testing.T) {
	assert.Contains(t, SessionSummary(nil), "Unavailable")
}

func TestRaceControl(t *testing.T) {
	messages := []map[string]any{
		{"category": "Flag", "message": "YELLOW IN SECTOR 2", "flag": "YELLOW", "date": "2025-06-01T14:02:11.123"},
		{"category": "Flag", "message": "TRACK CLEAR", "flag": "GREEN"},
		{"category": "Other", "message": "msg 3"},
		{"category": "Other", "message": "msg 4"},
		{"category": "Other", "message": "msg 5"},
		{"category": "Other", "message": "msg 6"},
	}
	text := RaceControl(messages)
	assert.Contains(t, text, "🟨 <b>Flag</b>: YELLOW IN SECTOR 2")
	assert.Contains(t, text, "🟩 <b>Flag</b>: TRACK CLEAR")
	assert.Contains(t, text, "2025-06-01 14:02:11 UTC")
	assert.NotContains(t, text, "msg 6", "capped at five messages")
	assert.Equal(t, 6, strings.Count(text, "<b>"), "title plus five message headlines")
}

func TestRaceControl_Empty(t *testing.T) {
	assert.Contains(t, RaceControl(nil), "No recent messages")
}

func TestCircuitHistory(t *testing.T) {
	text := CircuitHistory(&model.CircuitHistory{
		Winners:     []string{"VER (2024)", "PER (2023)"},
		PoleSitter:  "LEC (2024)",
		PoleTime:    "1:41.365",
		FastestCode: "VER",
		FastestTime: "1:43.370",
	})
	assert.Contains(t, text, "VER (2024), PER (2023)")
	assert.Contains(t, text, "LEC (2024) (1:41.365)")
	assert.Contains(t, text, "Fastest Race Lap:</b> VER (1:43.370)")
}

func TestCircuitHistory_Empty(t *testing.T) {
	assert.Contains(t, CircuitHistory(nil), "unavailable")
	assert.Contains(t, CircuitHistory(&model.CircuitHistory{}), "unavailable")
}
