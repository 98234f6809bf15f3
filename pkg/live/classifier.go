package live

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pitwall-dev/pitwall/pkg/model"
)

var (
	overtakePairRe = regexp.MustCompile(`(?i)DR?(\d{1,2})\s*overtook\s*DR?(\d{1,2})`)
	driverTokenRe  = regexp.MustCompile(`DR?(\d{1,2})`)
	lapRe          = regexp.MustCompile(`(?i)lap(?:s)?\s*#?:?\s*(\d{1,3})`)
	onLapRe        = regexp.MustCompile(`(?i)on lap\s*(\d{1,3})`)
)

// Classify maps one raw upstream event payload to its typed form. The rules
// are an ordered list; the first matching rule wins and the last rule always
// matches, so every payload classifies.
func Classify(raw map[string]any) model.Event {
	eventType := strings.TrimSpace(firstString(raw, "type", "event"))
	text := strings.TrimSpace(firstString(raw, "description", "short_text", "message"))
	if text == "" {
		text = fmt.Sprintf("%v", raw)
	}
	ev := model.Event{
		Kind:        model.EventGeneric,
		Fingerprint: Fingerprint(raw),
		Type:        eventType,
		Text:        text,
	}
	for _, rule := range classifyRules {
		if rule.match(eventType, text) {
			rule.extract(raw, &ev)
			return ev
		}
	}
	return ev
}

type classifyRule struct {
	match   func(eventType, text string) bool
	extract func(raw map[string]any, ev *model.Event)
}

// ordered by priority; generic last as catch-all
var classifyRules = []classifyRule{
	{match: matchOvertake, extract: extractOvertake},
	{match: matchPitStop, extract: extractPitStop},
	{match: matchRetirement, extract: extractRetirement},
	{match: func(string, string) bool { return true }, extract: func(map[string]any, *model.Event) {}},
}

func matchOvertake(eventType, text string) bool {
	lt, lx := strings.ToLower(eventType), strings.ToLower(text)
	return strings.Contains(lt, "overtake") ||
		strings.Contains(lx, "overtook") || strings.Contains(lx, "overtake")
}

func extractOvertake(raw map[string]any, ev *model.Event) {
	ev.Kind = model.EventOvertake
	ev.Attacker = firstDriverNumber(raw, "overtaker", "attacker", "from", "driver", "subject")
	ev.Defender = firstDriverNumber(raw, "overtaken", "defender", "to", "target")
	if ev.Attacker == 0 || ev.Defender == 0 {
		if m := overtakePairRe.FindStringSubmatch(ev.Text); m != nil {
			ev.Attacker, _ = strconv.Atoi(m[1])
			ev.Defender, _ = strconv.Atoi(m[2])
		}
	}
	ev.Lap = findLap(raw, ev.Text)
}

func matchPitStop(eventType, text string) bool {
	return strings.Contains(strings.ToLower(eventType), "pit") ||
		strings.Contains(strings.ToLower(text), "pit")
}

func extractPitStop(raw map[string]any, ev *model.Event) {
	ev.Kind = model.EventPitStop
	ev.Driver = subjectDriver(raw, ev.Text)
	ev.Lap = findLap(raw, ev.Text)
}

func matchRetirement(eventType, text string) bool {
	lt, lx := strings.ToLower(eventType), strings.ToLower(text)
	return strings.Contains(lt, "dnf") || strings.Contains(lt, "retir") ||
		strings.Contains(lx, "dnf") || strings.Contains(lx, "retir")
}

func extractRetirement(raw map[string]any, ev *model.Event) {
	ev.Kind = model.EventRetirement
	ev.Driver = subjectDriver(raw, ev.Text)
	ev.Lap = findLap(raw, ev.Text)
}

func subjectDriver(raw map[string]any, text string) int {
	if n := firstDriverNumber(raw, "driver_number", "driver", "car"); n != 0 {
		return n
	}
	if m := driverTokenRe.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	return 0
}

// findLap prefers structured lap fields and falls back to regex extraction
// from the free text.
func findLap(raw map[string]any, text string) int {
	for _, key := range []string{"lap", "lap_number", "laps", "current_lap"} {
		if n := toInt(raw[key]); n != 0 {
			return n
		}
	}
	if m := lapRe.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	if m := onLapRe.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	return 0
}

// RetiredDrivers scans the session result feed for drivers whose status marks
// them as out of the session.
func RetiredDrivers(results []model.SessionResult) []int {
	retired := make([]int, 0)
	for _, r := range results {
		status := strings.ToLower(r.Status)
		if strings.Contains(status, "dnf") || strings.Contains(status, "retired") {
			retired = append(retired, r.DriverNumber)
		}
	}
	return retired
}

// ResolveTokens rewrites DR<n> tokens in free text with resolved driver codes.
func ResolveTokens(text string, codeFor func(int) string) string {
	return driverTokenRe.ReplaceAllStringFunc(text, func(token string) string {
		m := driverTokenRe.FindStringSubmatch(token)
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return token
		}
		return codeFor(n)
	})
}

func firstString(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := raw[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func firstDriverNumber(raw map[string]any, keys ...string) int {
	for _, key := range keys {
		if n := toInt(raw[key]); n != 0 {
			return n
		}
	}
	return 0
}

// toInt coerces the numeric representations seen across the event feeds:
// JSON numbers decode as float64, some feeds send strings.
func toInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i
		}
	}
	return 0
}
