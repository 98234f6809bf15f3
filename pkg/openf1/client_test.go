//nolint:funlen // test fixtures are verbose
package openf1

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

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

func TestLatestSession(t *testing.T) {
	c := newTestClient(t, map[string]string{
		"/sessions": `[
			{"session_key":1,"session_name":"Practice 1","date_start":"2025-09-19T08:30:00+00:00"},
			{"session_key":4,"session_name":"Race","date_start":"2025-09-21T11:00:00+00:00"},
			{"session_key":3,"session_name":"Qualifying","date_start":"2025-09-20T12:00:00+00:00"}]`,
	})
	session, err := c.LatestSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, session.Key)
	assert.Equal(t, "Race", session.SessionName)
}

func TestLatestSession_Empty(t *testing.T) {
	c := newTestClient(t, map[string]string{"/sessions": `[]`})
	_, err := c.LatestSession(context.Background())
	assert.Error(t, err)
}

func TestPositions(t *testing.T) {
	// feed is ordered newest first; only the first row per driver counts
	c := newTestClient(t, map[string]string{
		"/position": `[
			{"driver_number":16,"position":2,"lap":12},
			{"driver_number":11,"position":1,"lap":12},
			{"driver_number":16,"position":1,"lap":3},
			{"driver_number":44,"position":0}]`,
	})
	positions, err := c.Positions(context.Background(), 9158)
	require.NoError(t, err)
	require.Len(t, positions, 3)
	assert.Equal(t, model.PositionEntry{DriverNumber: 11, Position: 1, Lap: 12}, positions[0])
	assert.Equal(t, model.PositionEntry{DriverNumber: 16, Position: 2, Lap: 12}, positions[1])
	assert.Equal(t, 44, positions[2].DriverNumber, "unknown rank sorts last")
}

func TestLaps(t *testing.T) {
	c := newTestClient(t, map[string]string{
		"/laps": `[
			{"driver_number":11,"lap_duration":103.37},
			{"driver_number":11,"lap_duration":104.001},
			{"driver_number":16,"lap_duration":0},
			{"driver_number":1,"lap_duration":95.5}]`,
	})
	laps, err := c.Laps(context.Background(), 9158)
	require.NoError(t, err)
	assert.Equal(t, map[int]string{11: "1:43.370", 1: "1:35.500"}, laps)
}

func TestFastestLap(t *testing.T) {
	c := newTestClient(t, map[string]string{
		"/laps": `[
			{"driver_number":11,"lap_duration":103.37},
			{"driver_number":16,"lap_duration":101.9}]`,
	})
	fastest, err := c.FastestLap(context.Background(), 9158)
	require.NoError(t, err)
	require.NotNil(t, fastest)
	assert.Equal(t, 16, fastest.DriverNumber)
	assert.Equal(t, "1:41.900", fastest.LapTime)
}

func TestFastestLap_NoLaps(t *testing.T) {
	c := newTestClient(t, map[string]string{"/laps": `[]`})
	fastest, err := c.FastestLap(context.Background(), 9158)
	require.NoError(t, err)
	assert.Nil(t, fastest)
}

func TestStints(t *testing.T) {
	// newest stint first per driver
	c := newTestClient(t, map[string]string{
		"/stints": `[
			{"driver_number":11,"compound":"HARD"},
			{"driver_number":11,"compound":"MEDIUM"},
			{"driver_number":16,"compound":"weird"}]`,
	})
	tyres, err := c.Stints(context.Background(), 9158)
	require.NoError(t, err)
	assert.Equal(t, map[int]model.TyreCompound{
		11: model.CompoundHard,
		16: model.CompoundUnknown,
	}, tyres)
}

func TestIntervals(t *testing.T) {
	c := newTestClient(t, map[string]string{
		"/intervals": `[
			{"driver_number":16,"gap_to_leader":2.173},
			{"driver_number":44,"gap_to_leader":"1 LAP"},
			{"driver_number":11,"gap_to_leader":null},
			{"driver_number":63,"gap_to_leader":""}]`,
	})
	gaps, err := c.Intervals(context.Background(), 9158)
	require.NoError(t, err)
	assert.Equal(t, map[int]string{16: "2.173", 44: "1 LAP"}, gaps)
}

func TestSessionResults(t *testing.T) {
	c := newTestClient(t, map[string]string{
		"/session_result": `[
			{"driver_number":1,"position":1,"status":"Finished"},
			{"driver_number":55,"position":18,"dnf":true}]`,
	})
	results, err := c.SessionResults(context.Background(), 9158)
	require.NoError(t, err)
	assert.Equal(t, []model.SessionResult{
		{DriverNumber: 1, Position: 1, Status: "Finished"},
		{DriverNumber: 55, Position: 18, Status: "DNF"},
	}, results)
}
