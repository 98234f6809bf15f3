package ergast

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	"github.com/pitwall-dev/pitwall/log"
	"github.com/pitwall-dev/pitwall/pkg/fetch"
	"github.com/pitwall-dev/pitwall/pkg/model"
)

// Client reads the Ergast compatible results provider (Jolpica). The deeply
// nested MRData envelopes are traversed with JSON path expressions instead of
// one-off struct trees.
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
		l:       log.Default().Named("ergast"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var (
	standingsPath  = jp.MustParseString("$.MRData.StandingsTable.StandingsLists[0].DriverStandings[*]")
	racesPath      = jp.MustParseString("$.MRData.RaceTable.Races[*]")
	qualifyingPath = jp.MustParseString("$.MRData.RaceTable.Races[0].QualifyingResults[*]")
)

func (c *Client) getDoc(ctx context.Context, url string) (any, error) {
	body, err := fetch.Raw(ctx, c.http, url)
	if err != nil {
		return nil, err
	}
	doc, err := oj.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("malformed body from %s: %w", url, err)
	}
	return doc, nil
}

// DriverStandings returns the current championship standings.
func (c *Client) DriverStandings(ctx context.Context) ([]model.Standing, error) {
	doc, err := c.getDoc(ctx, c.baseURL+"/current/driverStandings.json")
	if err != nil {
		return nil, err
	}
	rows := standingsPath.Get(doc)
	standings := make([]model.Standing, 0, len(rows))
	for _, row := range rows {
		entry, ok := row.(map[string]any)
		if !ok {
			continue
		}
		driver := childMap(entry, "Driver")
		number, _ := strconv.Atoi(str(driver, "permanentNumber"))
		team := ""
		if constructors, ok := entry["Constructors"].([]any); ok && len(constructors) > 0 {
			if cm, ok := constructors[0].(map[string]any); ok {
				team = str(cm, "name")
			}
		}
		standings = append(standings, model.Standing{
			Position: str(entry, "position"),
			Points:   str(entry, "points"),
			Code:     str(driver, "code"),
			Number:   number,
			Team:     team,
		})
	}
	return standings, nil
}

// DriverLineup returns the number -> 3-letter-code mapping derived from the
// current standings.
func (c *Client) DriverLineup(ctx context.Context) (map[int]string, error) {
	standings, err := c.DriverStandings(ctx)
	if err != nil {
		return nil, err
	}
	lineup := make(map[int]string, len(standings))
	for _, s := range standings {
		if s.Number != 0 && s.Code != "" {
			lineup[s.Number] = s.Code
		}
	}
	return lineup, nil
}

// CurrentSeason returns the race table of the running season.
func (c *Client) CurrentSeason(ctx context.Context) ([]model.RaceMeeting, error) {
	doc, err := c.getDoc(ctx, c.baseURL+"/current.json")
	if err != nil {
		return nil, err
	}
	rows := racesPath.Get(doc)
	meetings := make([]model.RaceMeeting, 0, len(rows))
	for _, row := range rows {
		race, ok := row.(map[string]any)
		if !ok {
			continue
		}
		circuit := childMap(race, "Circuit")
		location := childMap(circuit, "Location")
		start := str(race, "date")
		if t := str(race, "time"); t != "" {
			start = start + "T" + t
		} else {
			start = start + "T00:00:00Z"
		}
		meetings = append(meetings, model.RaceMeeting{
			MeetingName: str(race, "raceName"),
			Locality:    str(location, "locality"),
			Country:     str(location, "country"),
			CircuitID:   str(circuit, "circuitId"),
			Round:       str(race, "round"),
			Season:      str(race, "season"),
			DateStart:   start,
		})
	}
	return meetings, nil
}

// NextRace returns the first race of the current season starting after now.
func (c *Client) NextRace(ctx context.Context, now time.Time) (*model.RaceMeeting, error) {
	meetings, err := c.CurrentSeason(ctx)
	if err != nil {
		return nil, err
	}
	for i := range meetings {
		start, err := time.Parse(time.RFC3339, meetings[i].DateStart)
		if err != nil {
			continue
		}
		if start.After(now) {
			return &meetings[i], nil
		}
	}
	return nil, fmt.Errorf("no upcoming race in current season")
}

// LastRaceSummary returns the classification of the most recent finished race.
func (c *Client) LastRaceSummary(ctx context.Context) (*model.SessionSummary, error) {
	doc, err := c.getDoc(ctx, c.baseURL+"/current/last/results.json")
	if err != nil {
		return nil, err
	}
	rows := racesPath.Get(doc)
	if len(rows) == 0 {
		return nil, fmt.Errorf("no race results available")
	}
	race, ok := rows[0].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected race result shape")
	}
	summary := &model.SessionSummary{
		MeetingName: str(race, "raceName"),
		SessionName: "Race",
		IsRace:      true,
	}
	results, _ := race["Results"].([]any)
	for i, row := range results {
		if i >= 3 {
			break
		}
		result, ok := row.(map[string]any)
		if !ok {
			continue
		}
		pos, _ := strconv.Atoi(str(result, "position"))
		finishTime := str(childMap(result, "Time"), "time")
		if finishTime == "" {
			finishTime = "Finished"
		}
		summary.Top3 = append(summary.Top3, model.SummaryRow{
			Position: pos,
			Code:     str(childMap(result, "Driver"), "code"),
			Time:     finishTime,
		})
	}
	if fl := fastestOfRace(results); fl != nil {
		summary.FastestDriver = str(childMap(fl, "Driver"), "code")
		summary.FastestTime = str(childMap(childMap(fl, "FastestLap"), "Time"), "time")
	}
	return summary, nil
}

// CircuitHistory aggregates winners, pole and fastest lap of the recent races
// held on one circuit.
func (c *Client) CircuitHistory(ctx context.Context, circuitID string) (*model.CircuitHistory, error) {
	doc, err := c.getDoc(ctx,
		fmt.Sprintf("%s/circuits/%s/results/1.json?limit=3", c.baseURL, circuitID))
	if err != nil {
		return nil, err
	}
	history := &model.CircuitHistory{}
	rows := racesPath.Get(doc)
	bestSeconds := 0.0
	lastSeason, lastRound := "", ""
	for _, row := range rows {
		race, ok := row.(map[string]any)
		if !ok {
			continue
		}
		season := str(race, "season")
		lastSeason, lastRound = season, str(race, "round")
		results, _ := race["Results"].([]any)
		if len(results) == 0 {
			continue
		}
		if winner, ok := results[0].(map[string]any); ok {
			code := str(childMap(winner, "Driver"), "code")
			history.Winners = append(history.Winners, fmt.Sprintf("%s (%s)", code, season))
		}
		if fl := fastestOfRace(results); fl != nil {
			lapTime := str(childMap(childMap(fl, "FastestLap"), "Time"), "time")
			seconds, err := model.LapSeconds(lapTime)
			if err != nil {
				continue
			}
			if history.FastestCode == "" || seconds < bestSeconds {
				history.FastestCode = str(childMap(fl, "Driver"), "code")
				history.FastestTime = lapTime
				bestSeconds = seconds
			}
		}
	}
	if lastSeason != "" && lastRound != "" {
		// best effort; circuit history is usable without pole data
		if err := c.fillPole(ctx, history, lastSeason, lastRound); err != nil {
			c.l.Debug("no qualifying data", log.String("circuit", circuitID), log.ErrorField(err))
		}
	}
	return history, nil
}

func (c *Client) fillPole(ctx context.Context, history *model.CircuitHistory, season, round string) error {
	doc, err := c.getDoc(ctx,
		fmt.Sprintf("%s/%s/%s/qualifying/1.json", c.baseURL, season, round))
	if err != nil {
		return err
	}
	rows := qualifyingPath.Get(doc)
	if len(rows) == 0 {
		return fmt.Errorf("no qualifying results")
	}
	pole, ok := rows[0].(map[string]any)
	if !ok || str(pole, "position") != "1" {
		return fmt.Errorf("no pole entry")
	}
	lapTime := firstNonEmpty(str(pole, "Q3"), str(pole, "Q2"), str(pole, "Q1"),
		str(childMap(pole, "Time"), "time"))
	history.PoleSitter = fmt.Sprintf("%s (%s)", str(childMap(pole, "Driver"), "code"), season)
	history.PoleTime = lapTime
	return nil
}

func fastestOfRace(results []any) map[string]any {
	for _, row := range results {
		result, ok := row.(map[string]any)
		if !ok {
			continue
		}
		if str(childMap(result, "FastestLap"), "rank") == "1" {
			return result
		}
	}
	return nil
}

func childMap(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	child, _ := m[key].(map[string]any)
	return child
}

func str(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
