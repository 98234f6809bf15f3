package schedule

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pitwall-dev/pitwall/log"
	"github.com/pitwall-dev/pitwall/pkg/bridge"
	"github.com/pitwall-dev/pitwall/pkg/cmd/common"
	"github.com/pitwall-dev/pitwall/pkg/render"
)

var (
	tzOffset string
	history  bool
)

func NewScheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "prints the schedule of the next race weekend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printSchedule(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&tzOffset, "tz-offset", "0h",
		"shift session times by this offset (e.g. 4h, -5h)")
	cmd.Flags().BoolVar(&history, "history", false,
		"include the circuit's recent history")
	return cmd
}

func printSchedule(ctx context.Context) error {
	common.SetupLogger()
	console := bridge.NewConsole(os.Stdout)

	now := time.Now()
	weekend, err := common.CalendarClient().NextWeekend(ctx, now.Year(), now)
	if err != nil {
		log.Error("schedule unavailable", log.ErrorField(err))
	}
	offset := common.ParseDuration(tzOffset, 0)
	if _, err := console.Send(ctx, 0, render.Schedule(weekend, offset)); err != nil {
		return err
	}

	if !history {
		return nil
	}
	results := common.ResultsClient()
	next, err := results.NextRace(ctx, now)
	if err != nil || next == nil {
		log.Warn("next race lookup failed", log.ErrorField(err))
		return nil
	}
	record, err := results.CircuitHistory(ctx, next.CircuitID)
	if err != nil {
		log.Warn("circuit history unavailable", log.ErrorField(err))
	}
	_, err = console.Send(ctx, 0, render.CircuitHistory(record))
	return err
}
