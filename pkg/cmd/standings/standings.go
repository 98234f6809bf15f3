package standings

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/pitwall-dev/pitwall/log"
	"github.com/pitwall-dev/pitwall/pkg/bridge"
	"github.com/pitwall-dev/pitwall/pkg/cmd/common"
	"github.com/pitwall-dev/pitwall/pkg/render"
)

func NewStandingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "standings",
		Short: "prints the current championship standings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printStandings(cmd.Context())
		},
	}
}

func printStandings(ctx context.Context) error {
	common.SetupLogger()
	rows, err := common.ResultsClient().DriverStandings(ctx)
	if err != nil {
		log.Error("standings unavailable", log.ErrorField(err))
	}
	_, err = bridge.NewConsole(os.Stdout).Send(ctx, 0, render.Standings(rows))
	return err
}
