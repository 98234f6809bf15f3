package common

import (
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/pitwall-dev/pitwall/log"
	"github.com/pitwall-dev/pitwall/pkg/bridge"
	"github.com/pitwall-dev/pitwall/pkg/calendar"
	"github.com/pitwall-dev/pitwall/pkg/config"
	"github.com/pitwall-dev/pitwall/pkg/ergast"
	"github.com/pitwall-dev/pitwall/pkg/openf1"
	"github.com/pitwall-dev/pitwall/pkg/scheduler"
	"github.com/pitwall-dev/pitwall/pkg/telegram"
)

// SetupLogger builds the process logger from the resolved configuration and
// installs it as the default.
func SetupLogger() {
	if config.LogConfig != "" {
		log.SetFilterRules(config.LogConfig)
	}
	var logger *log.Logger
	switch config.LogFormat {
	case "json":
		logger = log.New(
			os.Stderr,
			parseLogLevel(config.LogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	default:
		logger = log.DevLogger(
			os.Stderr,
			parseLogLevel(config.LogLevel, log.DebugLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	}
	log.ResetDefault(logger)
}

func parseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

// HTTPClient returns the client used for all upstream requests, bounded by the
// configured per-request timeout.
func HTTPClient() *http.Client {
	return &http.Client{Timeout: ParseDuration(config.HTTPTimeout, 5*time.Second)}
}

func ParseDuration(arg string, defaultVal time.Duration) time.Duration {
	if d, err := time.ParseDuration(arg); err == nil {
		return d
	}
	return defaultVal
}

func TimingClient() *openf1.Client {
	return openf1.NewClient(config.OpenF1URL, openf1.WithHTTPClient(HTTPClient()))
}

func ResultsClient() *ergast.Client {
	return ergast.NewClient(config.ErgastURL, ergast.WithHTTPClient(HTTPClient()))
}

func CalendarClient() *calendar.Client {
	return calendar.NewClient(config.CalendarURL, calendar.WithHTTPClient(HTTPClient()))
}

// Transport builds the configured outbound transport. The returned closer is
// a no-op for transports without connection state.
func Transport() (scheduler.Transport, func(), error) {
	switch config.Transport {
	case "nats":
		t, err := bridge.NewTransport(config.NatsURL, bridge.WithSubject(config.NatsSubject))
		if err != nil {
			return nil, nil, err
		}
		return t, t.Close, nil
	case "telegram", "":
		if config.TelegramToken == "" {
			return nil, nil, errors.New("no telegram token configured")
		}
		opts := []telegram.Option{telegram.WithHTTPClient(HTTPClient())}
		if config.TelegramAPIURL != "" {
			opts = append(opts, telegram.WithAPIURL(config.TelegramAPIURL))
		}
		return telegram.NewClient(config.TelegramToken, opts...), func() {}, nil
	default:
		return nil, nil, errors.New("unknown transport: " + config.Transport)
	}
}

// NewService wires the scheduler with the configured upstream clients.
func NewService(transport scheduler.Transport, opts ...scheduler.Option) *scheduler.Service {
	opts = append([]scheduler.Option{
		scheduler.WithUpdateInterval(ParseDuration(config.UpdateInterval, 15*time.Second)),
		scheduler.WithCommentaryInterval(ParseDuration(config.CommentaryInterval, 10*time.Second)),
	}, opts...)
	return scheduler.NewService(TimingClient(), ResultsClient(), CalendarClient(), transport, opts...)
}
