package openf1

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"

	"github.com/samber/lo"

	"github.com/pitwall-dev/pitwall/log"
	"github.com/pitwall-dev/pitwall/pkg/fetch"
	"github.com/pitwall-dev/pitwall/pkg/model"
)

// Client reads the OpenF1 compatible live timing provider. All methods are
// plain reads; freshness policy lives in the caller's caches.
type Client struct {
	baseURL string
	http    *http.Client
	l       *log.Logger
}

type Option func(*Client)

func WithHTTPClient(arg *http.Client) Option {
	return func(c *Client) {
		c.http = arg
	}
}

func WithLogger(arg *log.Logger) Option {
	return func(c *Client) {
		c.l = arg
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: fetch.DefaultTimeout},
		l:       log.Default().Named("openf1"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LatestSession returns the most recent session known to the provider.
func (c *Client) LatestSession(ctx context.Context) (*model.Session, error) {
	var sessions []model.Session
	if err := fetch.JSON(ctx, c.http, c.baseURL+"/sessions", &sessions); err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, fmt.Errorf("no sessions returned")
	}
	latest := lo.MaxBy(sessions, func(a, b model.Session) bool {
		return a.DateStart > b.DateStart
	})
	return &latest, nil
}

// MeetingSessions returns all sessions of one race weekend.
func (c *Client) MeetingSessions(ctx context.Context, meetingKey int) ([]model.Session, error) {
	var sessions []model.Session
	u := fmt.Sprintf("%s/sessions?meeting_key=%d&order_by=date_start", c.baseURL, meetingKey)
	if err := fetch.JSON(ctx, c.http, u, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// SessionByRound cross-references a season/round pair (Ergast vocabulary) to a
// provider session, used to recover the meeting key for schedule lookups.
func (c *Client) SessionByRound(ctx context.Context, year, round string) (*model.Session, error) {
	u := fmt.Sprintf("%s/sessions?year=%s&round_number=%s&session_name=%s",
		c.baseURL, url.QueryEscape(year), url.QueryEscape(round), url.QueryEscape("Practice 1"))
	var sessions []model.Session
	if err := fetch.JSON(ctx, c.http, u, &sessions); err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, fmt.Errorf("no session for %s round %s", year, round)
	}
	return &sessions[0], nil
}

//nolint:tagliatelle // upstream schema
type positionRow struct {
	DriverNumber int `json:"driver_number"`
	Position     int `json:"position"`
	Lap          int `json:"lap"`
	Laps         int `json:"laps"`
	LapNumber    int `json:"lap_number"`
	CurrentLap   int `json:"current_lap"`
}

// Positions returns the latest known position per driver, sorted by rank.
func (c *Client) Positions(ctx context.Context, sessionKey int) ([]model.PositionEntry, error) {
	var rows []positionRow
	u := fmt.Sprintf("%s/position?session_key=%d&order_by=-date", c.baseURL, sessionKey)
	if err := fetch.JSON(ctx, c.http, u, &rows); err != nil {
		return nil, err
	}
	byDriver := make(map[int]model.PositionEntry)
	for _, row := range rows {
		if row.DriverNumber == 0 {
			continue
		}
		if _, ok := byDriver[row.DriverNumber]; ok {
			continue
		}
		byDriver[row.DriverNumber] = model.PositionEntry{
			DriverNumber: row.DriverNumber,
			Position:     row.Position,
			Lap:          firstNonZero(row.Lap, row.Laps, row.LapNumber, row.CurrentLap),
		}
	}
	entries := lo.Values(byDriver)
	sort.Slice(entries, func(i, j int) bool {
		return rankOf(entries[i]) < rankOf(entries[j])
	})
	return entries, nil
}

func rankOf(e model.PositionEntry) int {
	if e.Position == 0 {
		return 999
	}
	return e.Position
}

//nolint:tagliatelle // upstream schema
type lapRow struct {
	DriverNumber int     `json:"driver_number"`
	LapDuration  float64 `json:"lap_duration"`
}

// Laps returns the latest completed lap time per driver, formatted M:SS.mmm.
func (c *Client) Laps(ctx context.Context, sessionKey int) (map[int]string, error) {
	var rows []lapRow
	u := fmt.Sprintf("%s/laps?session_key=%d&order_by=-lap_number", c.baseURL, sessionKey)
	if err := fetch.JSON(ctx, c.http, u, &rows); err != nil {
		return nil, err
	}
	laps := make(map[int]string)
	for _, row := range rows {
		if row.DriverNumber == 0 || row.LapDuration == 0 {
			continue
		}
		if _, ok := laps[row.DriverNumber]; ok {
			continue
		}
		laps[row.DriverNumber] = model.FormatLapSeconds(row.LapDuration)
	}
	return laps, nil
}

// FastestLap determines the globally fastest lap of the session so far.
// A nil result (without error) means no usable lap times yet.
func (c *Client) FastestLap(ctx context.Context, sessionKey int) (*model.FastestLap, error) {
	laps, err := c.Laps(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	best := &model.FastestLap{}
	bestSeconds := 0.0
	for number, lapTime := range laps {
		seconds, err := model.LapSeconds(lapTime)
		if err != nil {
			continue
		}
		if best.DriverNumber == 0 || seconds < bestSeconds {
			best.DriverNumber = number
			best.LapTime = lapTime
			bestSeconds = seconds
		}
	}
	if best.DriverNumber == 0 {
		return nil, nil
	}
	return best, nil
}

//nolint:tagliatelle // upstream schema
type stintRow struct {
	DriverNumber int    `json:"driver_number"`
	Compound     string `json:"compound"`
}

// Stints returns the current tyre compound per driver (latest stint wins).
func (c *Client) Stints(ctx context.Context, sessionKey int) (map[int]model.TyreCompound, error) {
	var rows []stintRow
	u := fmt.Sprintf("%s/stints?session_key=%d&order_by=-stint_number", c.baseURL, sessionKey)
	if err := fetch.JSON(ctx, c.http, u, &rows); err != nil {
		return nil, err
	}
	tyres := make(map[int]model.TyreCompound)
	for _, row := range rows {
		if row.DriverNumber == 0 {
			continue
		}
		if _, ok := tyres[row.DriverNumber]; ok {
			continue
		}
		tyres[row.DriverNumber] = model.ParseCompound(row.Compound)
	}
	return tyres, nil
}

//nolint:tagliatelle // upstream schema
type intervalRow struct {
	DriverNumber int `json:"driver_number"`
	GapToLeader  any `json:"gap_to_leader"`
}

// Intervals returns the gap to the leader per driver. Numeric gaps are kept as
// their plain decimal representation; lap based gaps ("+1 LAP") pass through.
func (c *Client) Intervals(ctx context.Context, sessionKey int) (map[int]string, error) {
	var rows []intervalRow
	u := fmt.Sprintf("%s/intervals?session_key=%d&order_by=-date", c.baseURL, sessionKey)
	if err := fetch.JSON(ctx, c.http, u, &rows); err != nil {
		return nil, err
	}
	gaps := make(map[int]string)
	for _, row := range rows {
		if row.DriverNumber == 0 || row.GapToLeader == nil {
			continue
		}
		if _, ok := gaps[row.DriverNumber]; ok {
			continue
		}
		switch gap := row.GapToLeader.(type) {
		case float64:
			gaps[row.DriverNumber] = strconv.FormatFloat(gap, 'f', 3, 64)
		case string:
			if gap != "" {
				gaps[row.DriverNumber] = gap
			}
		}
	}
	return gaps, nil
}

// RaceControl returns the recent race control messages, newest first. The raw
// payloads are kept as maps; their canonical serialization doubles as the
// dedup fingerprint.
func (c *Client) RaceControl(ctx context.Context, sessionKey int) ([]map[string]any, error) {
	var rows []map[string]any
	u := fmt.Sprintf("%s/race_control?session_key=%d&order_by=-date", c.baseURL, sessionKey)
	if err := fetch.JSON(ctx, c.http, u, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

//nolint:tagliatelle // upstream schema
type resultRow struct {
	DriverNumber int    `json:"driver_number"`
	Position     int    `json:"position"`
	Status       string `json:"status"`
	DNF          bool   `json:"dnf"`
}

// SessionResults returns the session result feed rows. A boolean dnf flag
// without a status text is normalized to status "DNF".
func (c *Client) SessionResults(ctx context.Context, sessionKey int) ([]model.SessionResult, error) {
	var rows []resultRow
	u := fmt.Sprintf("%s/session_result?session_key=%d", c.baseURL, sessionKey)
	if err := fetch.JSON(ctx, c.http, u, &rows); err != nil {
		return nil, err
	}
	results := make([]model.SessionResult, 0, len(rows))
	for _, row := range rows {
		status := row.Status
		if status == "" && row.DNF {
			status = "DNF"
		}
		results = append(results, model.SessionResult{
			DriverNumber: row.DriverNumber,
			Position:     row.Position,
			Status:       status,
		})
	}
	return results, nil
}

func firstNonZero(values ...int) int {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}
