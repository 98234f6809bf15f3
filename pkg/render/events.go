package render

import (
	"fmt"

	"github.com/pitwall-dev/pitwall/pkg/live"
	"github.com/pitwall-dev/pitwall/pkg/model"
)

// Notification formats one classified event as an outbound message. codeFor
// resolves driver numbers to 3-letter codes; nil falls back to DR<n> tokens.
func Notification(ev model.Event, codeFor func(int) string) string {
	if codeFor == nil {
		codeFor = FallbackCode
	}
	switch ev.Kind {
	case model.EventOvertake:
		attacker, defender := codeFor(ev.Attacker), codeFor(ev.Defender)
		if ev.Lap > 0 {
			return fmt.Sprintf("🔁 <b>Overtake (L%d)</b>\n%s overtook %s", ev.Lap, attacker, defender)
		}
		return fmt.Sprintf("🔁 <b>Overtake</b>\n%s overtook %s", attacker, defender)
	case model.EventPitStop:
		if ev.Driver != 0 {
			return fmt.Sprintf("🛠️ <b>Pit Stop</b>\n%s pitted — %s", codeFor(ev.Driver), ev.Text)
		}
		return fmt.Sprintf("🛠️ <b>Pit Stop</b>\n%s", ev.Text)
	case model.EventRetirement:
		if ev.Driver != 0 {
			return fmt.Sprintf("❌ <b>Retirement</b>\n%s — %s", codeFor(ev.Driver), ev.Text)
		}
		return fmt.Sprintf("❌ <b>Retirement</b>\n%s", ev.Text)
	default:
		title := ev.Type
		if title == "" {
			title = "Event"
		}
		return fmt.Sprintf("ℹ️ <b>%s</b>\n%s", title, live.ResolveTokens(ev.Text, codeFor))
	}
}

// RaceControlNotice formats one race control message for the commentary feed.
func RaceControlNotice(msg map[string]any) string {
	title := stringField(msg, "title", stringField(msg, "type", "Race Control"))
	body := stringField(msg, "message", stringField(msg, "description", stringField(msg, "text", fmt.Sprintf("%v", msg))))
	return fmt.Sprintf("⚠️ <b>%s</b>\n%s", title, body)
}

// DNFNotice formats a retirement detected from the official result feed.
func DNFNotice(driverNumber int, codeFor func(int) string) string {
	if codeFor == nil {
		codeFor = FallbackCode
	}
	return fmt.Sprintf("❌ <b>Retirement</b>\n%s is classified DNF", codeFor(driverNumber))
}

// LiveStarted is the initial message the live loop will keep editing.
func LiveStarted(session *model.Session) string {
	meeting, name := "F1", "Session"
	if session != nil {
		if session.MeetingName != "" {
			meeting = session.MeetingName
		}
		if session.SessionName != "" {
			name = session.SessionName
		}
	}
	return "🏎️ <b>F1 Live Dashboard</b>\n" + rule + "\n" +
		fmt.Sprintf("📍 Session: %s, %s\n", meeting, name) +
		"🟢 <i>Live data stream started.</i>"
}

// LiveEnded replaces the live message when the update loop terminates.
func LiveEnded() string {
	return "⏹️ Live updates for the session have ended."
}

// NoLiveSession prefixes the last-session summary when nothing is live.
func NoLiveSession(summary string) string {
	return "⚠️ There is no live session right now.\n\n" + summary
}
