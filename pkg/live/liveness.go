package live

import (
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/pitwall-dev/pitwall/pkg/model"
)

// PreSessionBuffer absorbs upstream clock skew and early data availability:
// a session counts as live slightly before its official start.
const PreSessionBuffer = 15 * time.Minute

var terminalStatuses = []string{"finished", "cancelled", "completed"}

// IsLive decides whether a session is currently active. The decision fails
// open: missing or unparseable timestamps yield true, forcing the caller to
// re-check via the network rather than silently hiding live data.
func IsLive(now func() time.Time, session *model.Session) bool {
	if session == nil {
		return false
	}
	if lo.Contains(terminalStatuses, strings.ToLower(session.Status)) {
		return false
	}
	if session.DateStart == "" || session.DateEnd == "" {
		return true
	}
	start, err := parseUpstreamTime(session.DateStart)
	if err != nil {
		return true
	}
	end, err := parseUpstreamTime(session.DateEnd)
	if err != nil {
		return true
	}
	t := now().UTC()
	return !t.Before(start.Add(-PreSessionBuffer)) && !t.After(end)
}

// parseUpstreamTime accepts the timestamp variants seen in the wild: RFC3339
// with offset or Z suffix, and bare timestamps without zone (taken as UTC).
func parseUpstreamTime(arg string) (time.Time, error) {
	arg = strings.TrimSpace(arg)
	if t, err := time.Parse(time.RFC3339, arg); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02T15:04:05", arg)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
