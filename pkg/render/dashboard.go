package render

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/pitwall-dev/pitwall/pkg/model"
)

const rule = "━━━━━━━━━━━━━━━━━━━━"

// Dashboard bundles everything one leaderboard render needs. All fields are
// plain snapshots so rendering stays a pure function of its input.
type Dashboard struct {
	Session   *model.Session
	Positions []model.PositionEntry
	LapTimes  map[int]string
	Tyres     map[int]model.TyreCompound
	Gaps      map[int]string
	Retired   map[int]bool
	Fastest   *model.FastestLap
	Favorite  int
	Live      bool
	Now       time.Time
	CodeFor   func(int) string
}

// Render produces the multi-line leaderboard. Missing values become explicit
// placeholders; an empty grid yields a waiting notice, never an empty string.
func (d Dashboard) Render() string {
	meeting, circuit, session := "F1 Race", "Track", "Session"
	if d.Session != nil {
		if d.Session.MeetingName != "" {
			meeting = d.Session.MeetingName
		}
		if d.Session.CircuitName != "" {
			circuit = d.Session.CircuitName
		}
		if d.Session.SessionName != "" {
			session = d.Session.SessionName
		}
	}
	lines := []string{
		fmt.Sprintf("📍 <b>%s (%s)</b>", meeting, circuit),
		"🏎️ <b>F1 Live Dashboard</b>",
		fmt.Sprintf("🏁 %s", session),
	}

	fastestNum := 0
	if d.Fastest != nil && d.Fastest.DriverNumber != 0 {
		fastestNum = d.Fastest.DriverNumber
		lines = append(lines, fmt.Sprintf("🟣 <b>Fastest Lap:</b> %s (%s)",
			d.code(fastestNum), d.Fastest.LapTime))
	}
	lines = append(lines, rule)

	if lap := d.currentLap(); lap > 0 {
		if d.Session != nil && d.Session.LapCount > 0 {
			lines = append(lines, fmt.Sprintf("🏁 <i>Lap %d / %d</i>", lap, d.Session.LapCount))
		} else {
			lines = append(lines, fmt.Sprintf("🏁 <i>Lap %d</i>", lap))
		}
	}

	if len(d.Positions) == 0 {
		lines = append(lines, "\n⏳ <i>Waiting for live data (upstream timing is often sparse)...</i>")
		return strings.Join(lines, "\n")
	}

	for _, pos := range d.Positions {
		lines = append(lines, d.row(d.snapshot(pos), fastestNum))
	}
	lines = append(lines, rule)
	lines = append(lines, fmt.Sprintf("🔄 <i>Updated: %s UTC</i>", d.Now.UTC().Format("15:04:05")))
	return strings.Join(lines, "\n")
}

// snapshot resolves one position row against the per-driver maps into the
// wholesale driver state one rendered row reflects.
func (d Dashboard) snapshot(pos model.PositionEntry) model.DriverSnapshot {
	snap := model.DriverSnapshot{
		Number:   pos.DriverNumber,
		Code:     d.code(pos.DriverNumber),
		Position: pos.Position,
		LastLap:  "-:--.---",
		Gap:      d.Gaps[pos.DriverNumber],
		Lap:      pos.Lap,
		Retired:  d.Retired[pos.DriverNumber],
	}
	if lt, ok := d.LapTimes[pos.DriverNumber]; ok && lt != "" {
		snap.LastLap = lt
	}
	if t, ok := d.Tyres[pos.DriverNumber]; ok {
		snap.Tyre = t
	}
	return snap
}

func (d Dashboard) row(snap model.DriverSnapshot, fastestNum int) string {
	medal := "  "
	if !d.Live {
		switch snap.Position {
		case 1:
			medal = "🥇"
		case 2:
			medal = "🥈"
		case 3:
			medal = "🥉"
		}
	}

	lapSuffix := ""
	if snap.Lap > 0 {
		lapSuffix = fmt.Sprintf(" | L:%d", snap.Lap)
	}

	marker := "  "
	if snap.Number == fastestNum {
		marker = "🟣"
	}
	prefix := ""
	if d.Favorite != 0 && snap.Number == d.Favorite {
		prefix = "➤ "
	}

	gap := FormatGap(snap.Gap, snap.Position)
	if snap.Retired {
		gap = "DNF"
	}

	return fmt.Sprintf("%s%s <b>P%02d</b> %s %s | %s | %s%s | %s",
		prefix, medal, snap.Position, marker, snap.Code,
		gap, snap.LastLap, lapSuffix, snap.Tyre.Label())
}

func (d Dashboard) currentLap() int {
	laps := lo.Map(d.Positions, func(p model.PositionEntry, _ int) int { return p.Lap })
	return lo.Max(laps)
}

func (d Dashboard) code(num int) string {
	if d.CodeFor != nil {
		return d.CodeFor(num)
	}
	return FallbackCode(num)
}

// FallbackCode is the placeholder code for a driver number absent from the
// lineup mapping.
func FallbackCode(num int) string {
	return fmt.Sprintf("DR%d", num)
}

// FormatGap renders one gap-to-leader cell. Numeric gaps become +N.NNN,
// lap-based gaps ("1 LAP") pass through with a + prefix, and a missing gap
// falls back to a synthetic placeholder proportional to grid position. The
// synthetic value is an acknowledged approximation, not real timing.
func FormatGap(gap string, position int) string {
	gap = strings.TrimSpace(gap)
	if gap != "" {
		if f, err := strconv.ParseFloat(gap, 64); err == nil {
			return fmt.Sprintf("+%.3f", f)
		}
		if !strings.HasPrefix(gap, "+") {
			return "+" + gap
		}
		return gap
	}
	if position > 1 {
		return fmt.Sprintf("+%.3f", float64(position)*0.5)
	}
	return "+?.???"
}
