package replay

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pitwall-dev/pitwall/log"
	"github.com/pitwall-dev/pitwall/pkg/bridge"
	"github.com/pitwall-dev/pitwall/pkg/cmd/common"
	"github.com/pitwall-dev/pitwall/pkg/live"
	"github.com/pitwall-dev/pitwall/pkg/model"
	"github.com/pitwall-dev/pitwall/pkg/render"
)

var (
	year       string
	round      string
	sessionKey int
	speed      int
)

// NewReplayCmd replays a finished session's data through the same rendering
// pipeline the live loops use, writing to stdout. Useful outside race
// weekends and as an end-to-end smoke test of the upstream clients.
func NewReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "replays a finished session to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&year, "year", "", "season of the session to replay")
	cmd.Flags().StringVar(&round, "round", "", "round of the session to replay")
	cmd.Flags().IntVar(&sessionKey, "session-key", 0,
		"replay this session key directly (overrides year/round)")
	cmd.Flags().IntVar(&speed, "speed", 1,
		"replay speed (0 means: go as fast as possible)")
	return cmd
}

//nolint:funlen,gocognit // linear demo sequence
func runReplay(ctx context.Context) error {
	common.SetupLogger()

	timing := common.TimingClient()
	results := common.ResultsClient()
	console := bridge.NewConsole(os.Stdout)
	const chatID = int64(0)

	var err error
	session := (*model.Session)(nil)
	if year != "" && round != "" {
		session, err = timing.SessionByRound(ctx, year, round)
	} else if sessionKey == 0 {
		session, err = timing.LatestSession(ctx)
	}
	if err != nil {
		log.Error("could not resolve session", log.ErrorField(err))
		return err
	}
	key := sessionKey
	if key == 0 {
		if session == nil {
			return errors.New("no session found")
		}
		key = session.Key
	}

	lineup, err := results.DriverLineup(ctx)
	if err != nil {
		log.Warn("lineup unavailable, using DR<n> codes", log.ErrorField(err))
	}
	codeFor := func(num int) string {
		if code, ok := lineup[num]; ok {
			return code
		}
		return render.FallbackCode(num)
	}

	positions, err := timing.Positions(ctx, key)
	if err != nil {
		log.Error("could not fetch positions", log.ErrorField(err))
		return err
	}
	laps, _ := timing.Laps(ctx, key)
	tyres, _ := timing.Stints(ctx, key)
	fastest, _ := timing.FastestLap(ctx, key)
	gaps, _ := timing.Intervals(ctx, key)
	sessionResults, _ := timing.SessionResults(ctx, key)
	retired := make(map[int]bool)
	for _, num := range live.RetiredDrivers(sessionResults) {
		retired[num] = true
	}

	text := render.Dashboard{
		Session:   session,
		Positions: positions,
		LapTimes:  laps,
		Tyres:     tyres,
		Gaps:      gaps,
		Retired:   retired,
		Fastest:   fastest,
		Live:      false,
		Now:       time.Now(),
		CodeFor:   codeFor,
	}.Render()
	if _, err := console.Send(ctx, chatID, text); err != nil {
		return err
	}

	// replay the event feed the way the commentary loop would deliver it
	dedup := live.NewDedup()
	rc, _ := timing.RaceControl(ctx, key)
	for i := len(rc) - 1; i >= 0; i-- {
		if !dedup.IsNew(chatID, live.Fingerprint(rc[i])) {
			continue
		}
		if _, err := console.Send(ctx, chatID, render.RaceControlNotice(rc[i])); err != nil {
			return err
		}
		pace()
	}
	for _, raw := range timing.SessionEvents(ctx, key) {
		ev := live.Classify(raw)
		if !dedup.IsNew(chatID, ev.Fingerprint) {
			continue
		}
		if _, err := console.Send(ctx, chatID, render.Notification(ev, codeFor)); err != nil {
			return err
		}
		pace()
	}
	for _, num := range live.RetiredDrivers(sessionResults) {
		if !dedup.IsNew(chatID, live.DNFFingerprint(num)) {
			continue
		}
		if _, err := console.Send(ctx, chatID, render.DNFNotice(num, codeFor)); err != nil {
			return err
		}
		pace()
	}
	return nil
}

func pace() {
	if speed > 0 {
		time.Sleep(time.Second / time.Duration(speed))
	}
}
