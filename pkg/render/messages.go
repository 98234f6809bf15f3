package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/pitwall-dev/pitwall/pkg/model"
)

// Standings formats the championship table. An empty list renders an explicit
// unavailable notice.
func Standings(rows []model.Standing) string {
	if len(rows) == 0 {
		return "❌ <b>Championship Standings</b>\n" + rule + "\n<i>Data currently unavailable.</i>"
	}
	lines := []string{
		"🏆 <b>Driver Standings (Current Season)</b>",
		rule,
		"<b>POS | DRV | TEAM             | PTS</b>",
	}
	for _, row := range rows {
		code := row.Code
		if code == "" {
			code = "???"
		}
		lines = append(lines, fmt.Sprintf("<b>%3s</b> | %-3s | %s | <b>%s</b>",
			row.Position, strings.ToUpper(code), teamAbbr(row.Team), row.Points))
	}
	lines = append(lines, rule, "<i>Data Source: Jolpica-F1</i>")
	return strings.Join(lines, "\n")
}

func teamAbbr(name string) string {
	if name == "" {
		name = "N/A"
	}
	name = strings.NewReplacer(
		"Oracle Red Bull Racing", "Red Bull",
		"Red Bull Racing", "Red Bull",
		"Aston Martin Aramco Mercedes", "Aston Martin",
	).Replace(name)
	first := strings.Fields(name)[0]
	if len(first) > 14 {
		first = first[:14]
	}
	return fmt.Sprintf("%-14s", first)
}

// Schedule formats a weekend session schedule with times shifted by tzOffset.
func Schedule(w *model.Weekend, tzOffset time.Duration) string {
	if w == nil {
		return "📅 <b>F1 Weekend</b>\n" + rule + "\n<i>Schedule data not available.</i>"
	}
	name := w.MeetingName
	if name == "" {
		name = "F1 Weekend"
	}
	circuit := w.CircuitName
	if circuit == "" {
		circuit = "Track"
	}
	country := w.CountryName
	if country == "" {
		country = "Location"
	}
	lines := []string{
		fmt.Sprintf("📅 <b>%s</b>", name),
		fmt.Sprintf("📍 %s %s, %s", flagFor(country, name), circuit, country),
		rule,
	}
	if len(w.Sessions) == 0 {
		lines = append(lines, "<i>Schedule data not available.</i>")
		return strings.Join(lines, "\n")
	}
	for _, s := range w.Sessions {
		start, err := parseISO(s.DateStart)
		if err != nil {
			lines = append(lines, fmt.Sprintf("• %s: <i>Time N/A</i>", s.Name))
			continue
		}
		local := start.UTC().Add(tzOffset)
		lines = append(lines, fmt.Sprintf("• %s: <b>%s</b>", s.Name, local.Format("Mon, 02 Jan | 15:04")))
	}
	lines = append(lines, rule, fmt.Sprintf("<i>All times are in %s.</i>", tzNote(tzOffset)))
	return strings.Join(lines, "\n")
}

func tzNote(offset time.Duration) string {
	if offset == 0 {
		return "UTC"
	}
	hours := int(offset.Hours())
	sign := "+"
	if hours < 0 {
		sign, hours = "-", -hours
	}
	return fmt.Sprintf("UTC%s%d", sign, hours)
}

func parseISO(arg string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, arg); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04:05", arg)
}

// SessionSummary formats the classification of the most recent finished
// session.
func SessionSummary(s *model.SessionSummary) string {
	if s == nil || len(s.Top3) == 0 {
		return "❌ <b>Last Race Results Unavailable</b>\n" + rule +
			"\n<i>Could not fetch results for the last completed F1 race.</i>"
	}
	emoji := "⚙️"
	switch {
	case s.IsRace:
		emoji = "🏁"
	case strings.Contains(strings.ToUpper(s.SessionName), "QUALIFYING"):
		emoji = "⏱️"
	}
	lines := []string{
		fmt.Sprintf("%s <b>Last Race Results: %s</b>", emoji, s.MeetingName),
		rule,
	}
	for _, row := range s.Top3 {
		medal := "🥉"
		switch row.Position {
		case 1:
			medal = "🥇"
		case 2:
			medal = "🥈"
		}
		lines = append(lines, fmt.Sprintf("%s <b>%s</b>: %s", medal, posDisplay(row.Position, s.IsRace), row.Code))
	}
	lines = append(lines, "---")
	if s.FastestDriver != "" {
		lines = append(lines, fmt.Sprintf("🟣 <b>Best Lap:</b> %s (%s)", s.FastestDriver, s.FastestTime))
	}
	lines = append(lines, rule+"\n<i>Source: Jolpica-F1 (Ergast)</i>")
	return strings.Join(lines, "\n")
}

func posDisplay(pos int, isRace bool) string {
	if isRace {
		return fmt.Sprintf("P%d", pos)
	}
	switch pos {
	case 1:
		return "1st"
	case 2:
		return "2nd"
	default:
		return fmt.Sprintf("%drd", pos)
	}
}

// RaceControl formats the latest race control messages, newest first, capped
// at five.
func RaceControl(messages []map[string]any) string {
	if len(messages) == 0 {
		return "⚠️ <b>Race Control</b>\n━━━━━━━━━━━━━━━━\n<i>No recent messages</i>"
	}
	lines := []string{"⚠️ <b>Race Control Messages</b>", rule}
	if len(messages) > 5 {
		messages = messages[:5]
	}
	for _, msg := range messages {
		category := stringField(msg, "category", "Info")
		text := stringField(msg, "message", "")
		flag := strings.ToUpper(stringField(msg, "flag", ""))

		emoji := ""
		switch {
		case strings.Contains(flag, "YELLOW"):
			emoji = "🟨"
		case strings.Contains(flag, "RED"):
			emoji = "🟥"
		case strings.Contains(flag, "GREEN"):
			emoji = "🟩"
		case strings.Contains(flag, "CHEQUERED"), strings.Contains(flag, "CHECKERED"):
			emoji = "🏁"
		}

		lines = append(lines, fmt.Sprintf("%s <b>%s</b>: %s", emoji, category, text))
		if date := stringField(msg, "date", ""); date != "" {
			if len(date) > 19 {
				date = date[:19]
			}
			lines = append(lines, fmt.Sprintf("   <i>%s UTC</i>", strings.Replace(date, "T", " ", 1)))
		}
	}
	return strings.Join(lines, "\n")
}

func stringField(m map[string]any, key, fallback string) string {
	if s, ok := m[key].(string); ok && s != "" {
		return s
	}
	return fallback
}

// CircuitHistory formats the multi-year record of one circuit.
func CircuitHistory(h *model.CircuitHistory) string {
	if h == nil || (len(h.Winners) == 0 && h.PoleSitter == "" && h.FastestCode == "") {
		return "📜 <b>Circuit History</b>\n" + rule + "\n<i>Data currently unavailable.</i>"
	}
	lines := []string{"📜 <b>Circuit History</b>", rule}
	if len(h.Winners) > 0 {
		lines = append(lines, fmt.Sprintf("🏆 <b>Recent Winners:</b> %s", strings.Join(h.Winners, ", ")))
	}
	if h.PoleSitter != "" {
		pole := h.PoleSitter
		if h.PoleTime != "" {
			pole = fmt.Sprintf("%s (%s)", pole, h.PoleTime)
		}
		lines = append(lines, fmt.Sprintf("🚦 <b>Last Pole:</b> %s", pole))
	}
	if h.FastestCode != "" {
		lines = append(lines, fmt.Sprintf("🟣 <b>Fastest Race Lap:</b> %s (%s)", h.FastestCode, h.FastestTime))
	}
	lines = append(lines, rule, "<i>Source: Jolpica-F1 (Ergast)</i>")
	return strings.Join(lines, "\n")
}

var flagEmojis = map[string]string{
	"Bahrain": "🇧🇭", "Saudi Arabia": "🇸🇦", "Australia": "🇦🇺", "Japan": "🇯🇵",
	"China": "🇨🇳", "United States": "🇺🇸", "Monaco": "🇲🇨", "Canada": "🇨🇦",
	"Spain": "🇪🇸", "Austria": "🇦🇹", "Great Britain": "🇬🇧", "Hungary": "🇭🇺",
	"Belgium": "🇧🇪", "Netherlands": "🇳🇱", "Italy": "🇮🇹", "Azerbaijan": "🇦🇿",
	"Singapore": "🇸🇬", "Mexico": "🇲🇽", "Brazil": "🇧🇷", "Qatar": "🇶🇦",
	"UAE": "🇦🇪", "Portugal": "🇵🇹", "Turkey": "🇹🇷", "France": "🇫🇷",
	"Germany": "🇩🇪", "South Africa": "🇿🇦", "Korea": "🇰🇷", "India": "🇮🇳",
}

func flagFor(candidates ...string) string {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		for name, flag := range flagEmojis {
			if strings.Contains(strings.ToLower(c), strings.ToLower(name)) ||
				strings.Contains(strings.ToLower(name), strings.ToLower(c)) {
				return flag
			}
		}
	}
	return "🏳️"
}
