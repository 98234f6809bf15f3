package calendar

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/pitwall-dev/pitwall/log"
	"github.com/pitwall-dev/pitwall/pkg/fetch"
	"github.com/pitwall-dev/pitwall/pkg/model"
)

// Client reads the community maintained calendar feed: one JSON document per
// season, keyed by year.
type Client struct {
	urlTemplate string // one %d placeholder for the year
	http        *http.Client
	l           *log.Logger
}

type Option func(*Client)

func WithHTTPClient(arg *http.Client) Option {
	return func(c *Client) {
		c.http = arg
	}
}

func NewClient(urlTemplate string, opts ...Option) *Client {
	c := &Client{
		urlTemplate: urlTemplate,
		http:        &http.Client{Timeout: fetch.DefaultTimeout},
		l:           log.Default().Named("calendar"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// session key -> display name, in the feed's vocabulary
var sessionNames = map[string]string{
	"fp1":              "Practice 1",
	"fp2":              "Practice 2",
	"fp3":              "Practice 3",
	"sprintQualifying": "Sprint Qualifying",
	"sprint":           "Sprint Race",
	"qualifying":       "Qualifying",
	"gp":               "Race",
}

//nolint:tagliatelle // upstream schema
type feedRace struct {
	Name      string            `json:"name"`
	Location  string            `json:"location"`
	LocaleKey string            `json:"localeKey"`
	Sessions  map[string]string `json:"sessions"`
}

type feed struct {
	Races []feedRace `json:"races"`
}

// NextWeekend returns the next race weekend of the given year whose grand
// prix start lies after now, with its full session schedule.
func (c *Client) NextWeekend(ctx context.Context, year int, now time.Time) (*model.Weekend, error) {
	var doc feed
	url := fmt.Sprintf(c.urlTemplate, year)
	if err := fetch.JSON(ctx, c.http, url, &doc); err != nil {
		return nil, err
	}
	for _, race := range doc.Races {
		gp, ok := race.Sessions["gp"]
		if !ok {
			continue
		}
		start, err := parseFeedTime(gp)
		if err != nil {
			c.l.Warn("could not parse race start",
				log.String("race", race.Name), log.String("gp", gp))
			continue
		}
		if start.After(now) {
			return buildWeekend(race), nil
		}
	}
	return nil, fmt.Errorf("no upcoming race weekend in %d", year)
}

func buildWeekend(race feedRace) *model.Weekend {
	weekend := &model.Weekend{
		MeetingName: race.Name + " Grand Prix",
		CircuitName: titleize(race.LocaleKey),
		CountryName: race.Location,
	}
	for key, name := range sessionNames {
		if ts, ok := race.Sessions[key]; ok {
			weekend.Sessions = append(weekend.Sessions, model.ScheduleSession{
				Name:      name,
				DateStart: strings.TrimSpace(ts),
			})
		}
	}
	sort.Slice(weekend.Sessions, func(i, j int) bool {
		return weekend.Sessions[i].DateStart < weekend.Sessions[j].DateStart
	})
	return weekend
}

func parseFeedTime(arg string) (time.Time, error) {
	return time.Parse("2006-01-02T15:04:05Z", strings.TrimSpace(arg))
}

func titleize(localeKey string) string {
	words := strings.Split(strings.ReplaceAll(localeKey, "-", " "), " ")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
