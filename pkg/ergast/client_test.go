//nolint:funlen // test fixtures are verbose
package ergast

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitwall-dev/pitwall/pkg/model"
)

func newTestClient(t *testing.T, routes map[string]string) *Client {
	t.Helper()
	mux := http.NewServeMux()
	for path, body := range routes {
		payload := body
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(payload)) //nolint:errcheck
		})
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL)
}

func TestDriverStandings(t *testing.T) {
	c := newTestClient(t, map[string]string{
		"/current/driverStandings.json": `{"MRData":{"StandingsTable":{"StandingsLists":[
			{"DriverStandings":[
				{"position":"1","points":"310",
				 "Driver":{"code":"VER","permanentNumber":"1"},
				 "Constructors":[{"name":"Red Bull Racing"}]},
				{"position":"2","points":"275",
				 "Driver":{"code":"NOR","permanentNumber":"4"},
				 "Constructors":[{"name":"McLaren"}]}
			]}]}}}`,
	})
	standings, err := c.DriverStandings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.Standing{
		{Position: "1", Points: "310", Code: "VER", Number: 1, Team: "Red Bull Racing"},
		{Position: "2", Points: "275", Code: "NOR", Number: 4, Team: "McLaren"},
	}, standings)
}

func TestDriverLineup(t *testing.T) {
	c := newTestClient(t, map[string]string{
		"/current/driverStandings.json": `{"MRData":{"StandingsTable":{"StandingsLists":[
			{"DriverStandings":[
				{"position":"1","points":"310","Driver":{"code":"VER","permanentNumber":"1"}},
				{"position":"2","points":"275","Driver":{"code":"NOR"}}
			]}]}}}`,
	})
	lineup, err := c.DriverLineup(context.Background())
	require.NoError(t, err)
	// entries without a permanent number are skipped
	assert.Equal(t, map[int]string{1: "VER"}, lineup)
}

func TestNextRace(t *testing.T) {
	c := newTestClient(t, map[string]string{
		"/current.json": `{"MRData":{"RaceTable":{"Races":[
			{"season":"2025","round":"15","raceName":"Italian Grand Prix",
			 "date":"2025-09-07","time":"13:00:00Z",
			 "Circuit":{"circuitId":"monza","Location":{"locality":"Monza","country":"Italy"}}},
			{"season":"2025","round":"16","raceName":"Azerbaijan Grand Prix",
			 "date":"2025-09-21","time":"11:00:00Z",
			 "Circuit":{"circuitId":"baku","Location":{"locality":"Baku","country":"Azerbaijan"}}}
		]}}}`,
	})
	next, err := c.NextRace(context.Background(), time.Date(2025, 9, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "Azerbaijan Grand Prix", next.MeetingName)
	assert.Equal(t, "baku", next.CircuitID)
	assert.Equal(t, "2025-09-21T11:00:00Z", next.DateStart)
}

func TestLastRaceSummary(t *testing.T) {
	c := newTestClient(t, map[string]string{
		"/current/last/results.json": `{"MRData":{"RaceTable":{"Races":[
			{"raceName":"Italian Grand Prix","Results":[
				{"position":"1","Driver":{"code":"VER"},"Time":{"time":"1:14:40.727"},
				 "FastestLap":{"rank":"2","Time":{"time":"1:22.901"}}},
				{"position":"2","Driver":{"code":"NOR"},"Time":{"time":"+6.064"},
				 "FastestLap":{"rank":"1","Time":{"time":"1:21.432"}}},
				{"position":"3","Driver":{"code":"LEC"},
				 "FastestLap":{"rank":"3","Time":{"time":"1:23.011"}}},
				{"position":"4","Driver":{"code":"HAM"}}
			]}]}}}`,
	})
	summary, err := c.LastRaceSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Italian Grand Prix", summary.MeetingName)
	assert.True(t, summary.IsRace)
	require.Len(t, summary.Top3, 3, "only the podium is kept")
	assert.Equal(t, model.SummaryRow{Position: 1, Code: "VER", Time: "1:14:40.727"}, summary.Top3[0])
	assert.Equal(t, "Finished", summary.Top3[2].Time, "missing finish time gets a placeholder")
	assert.Equal(t, "NOR", summary.FastestDriver)
	assert.Equal(t, "1:21.432", summary.FastestTime)
}

func TestCircuitHistory(t *testing.T) {
	c := newTestClient(t, map[string]string{
		"/circuits/baku/results/1.json": `{"MRData":{"RaceTable":{"Races":[
			{"season":"2023","round":"4","Results":[
				{"position":"1","Driver":{"code":"PER"},
				 "FastestLap":{"rank":"1","Time":{"time":"1:43.370"}}}]},
			{"season":"2024","round":"17","Results":[
				{"position":"1","Driver":{"code":"PIA"},
				 "FastestLap":{"rank":"1","Time":{"time":"1:45.255"}}}]}
		]}}}`,
		"/2024/17/qualifying/1.json": `{"MRData":{"RaceTable":{"Races":[
			{"QualifyingResults":[
				{"position":"1","Driver":{"code":"LEC"},"Q1":"1:42.775","Q2":"1:42.056","Q3":"1:41.365"}
			]}]}}}`,
	})
	history, err := c.CircuitHistory(context.Background(), "baku")
	require.NoError(t, err)
	assert.Equal(t, []string{"PER (2023)", "PIA (2024)"}, history.Winners)
	assert.Equal(t, "PER", history.FastestCode, "fastest lap across all listed races")
	assert.Equal(t, "1:43.370", history.FastestTime)
	assert.Equal(t, "LEC (2024)", history.PoleSitter)
	assert.Equal(t, "1:41.365", history.PoleTime, "Q3 preferred over Q2/Q1")
}

func TestCircuitHistory_NoQualifyingData(t *testing.T) {
	c := newTestClient(t, map[string]string{
		"/circuits/baku/results/1.json": `{"MRData":{"RaceTable":{"Races":[
			{"season":"2024","round":"17","Results":[
				{"position":"1","Driver":{"code":"PIA"}}]}
		]}}}`,
	})
	history, err := c.CircuitHistory(context.Background(), "baku")
	require.NoError(t, err)
	assert.Equal(t, []string{"PIA (2024)"}, history.Winners)
	assert.Empty(t, history.PoleSitter, "missing qualifying data is not an error")
}
