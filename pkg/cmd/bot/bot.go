package bot

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/pitwall-dev/pitwall/log"
	"github.com/pitwall-dev/pitwall/pkg/bridge"
	"github.com/pitwall-dev/pitwall/pkg/cmd/common"
	"github.com/pitwall-dev/pitwall/pkg/config"
	"github.com/pitwall-dev/pitwall/pkg/scheduler"
)

var (
	botCfg        config.Config
	watchInterval string
)

func NewBotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bot",
		Short: "starts the live dashboard service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return startBot(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&config.TelegramToken, "token", "",
		"Telegram bot token")
	cmd.Flags().StringVar(&config.TelegramAPIURL, "telegram-api-url", "",
		"override the Telegram Bot API base URL")
	cmd.Flags().StringVar(&config.Transport, "transport", "telegram",
		"outbound transport (telegram, nats)")
	cmd.Flags().StringVar(&config.NatsURL, "nats-url", "nats://localhost:4222",
		"NATS server URL for the gateway bridge")
	cmd.Flags().StringVar(&config.NatsSubject, "nats-subject", bridge.DefaultSubject,
		"NATS subject for outbound messages")
	cmd.Flags().StringVar(&config.UpdateInterval, "update-interval", "15s",
		"interval between dashboard refreshes")
	cmd.Flags().StringVar(&config.CommentaryInterval, "commentary-interval", "10s",
		"interval between commentary polls")
	cmd.Flags().Int64SliceVar(&botCfg.Chats, "chats", nil,
		"chat ids served by the watch loop")
	cmd.Flags().BoolVar(&botCfg.AutoCommentary, "auto-commentary", false,
		"start commentary automatically when live updates start")
	cmd.Flags().StringVar(&watchInterval, "watch-interval", "1m",
		"how often the watch loop checks for a live session")
	return cmd
}

func startBot(ctx context.Context) error {
	common.SetupLogger()

	transport, closeTransport, err := common.Transport()
	if err != nil {
		log.Error("transport could not be created", log.ErrorField(err))
		return err
	}
	defer closeTransport()

	srv := common.NewService(transport)
	if botCfg.AutoCommentary {
		for _, chatID := range botCfg.Chats {
			srv.ToggleAutoCommentary(chatID)
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if config.Transport == "nats" {
		nt, ok := transport.(*bridge.Transport)
		if ok {
			sub, subErr := nt.SubscribeCommands(func(cmd bridge.Command) {
				dispatch(runCtx, srv, cmd)
			})
			if subErr != nil {
				log.Error("command subscription failed", log.ErrorField(subErr))
				return subErr
			}
			defer sub.Unsubscribe() //nolint:errcheck
		}
	}

	log.Info("bot started", log.Any("chats", botCfg.Chats))
	go watchLoop(runCtx, srv)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	v := <-sigChan
	log.Debug("Got signal ", log.Any("signal", v))
	cancel()
	srv.StopAll()
	log.Info("bot terminated")
	return nil
}

// watchLoop periodically checks for a live session and starts the live
// dashboard for every configured chat that is not already being served.
func watchLoop(ctx context.Context, srv *scheduler.Service) {
	interval := common.ParseDuration(watchInterval, time.Minute)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		for _, chatID := range botCfg.Chats {
			if !srv.SessionLive(ctx) || srv.LiveActive(chatID) {
				continue
			}
			if err := srv.StartLive(ctx, chatID); err != nil {
				log.Error("could not start live updates",
					log.Int64("chatId", chatID), log.ErrorField(err))
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// dispatch maps one gateway command onto the service. Unknown commands are
// logged and dropped.
func dispatch(ctx context.Context, srv *scheduler.Service, cmd bridge.Command) {
	l := log.Default().Named("dispatch")
	var err error
	switch cmd.Name {
	case "live":
		err = srv.StartLive(ctx, cmd.ChatID)
	case "stop":
		srv.StopLive(cmd.ChatID)
	case "commentary":
		err = srv.StartCommentary(ctx, cmd.ChatID)
	case "stopcommentary":
		srv.StopCommentary(cmd.ChatID)
	case "autocommentary":
		srv.ToggleAutoCommentary(cmd.ChatID)
	case "favorite":
		num, convErr := strconv.Atoi(cmd.Arg)
		if convErr != nil {
			l.Warn("invalid favorite argument", log.String("arg", cmd.Arg))
			return
		}
		srv.SetFavorite(cmd.ChatID, num)
	default:
		l.Warn("unknown command", log.String("name", cmd.Name))
	}
	if err != nil {
		l.Error("command failed", log.String("name", cmd.Name), log.ErrorField(err))
	}
}
