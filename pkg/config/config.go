package config

// this holds the resolved configuration values from CLI
//
//nolint:lll // readablity
var (
	LogLevel           string // sets the log level (zap log level values)
	LogFormat          string // text vs json
	LogConfig          string // zapfilter rules applied to named loggers
	OpenF1URL          string // base URL of the OpenF1 compatible timing provider
	ErgastURL          string // base URL of the Ergast compatible results provider
	CalendarURL        string // URL template for the community calendar feed (one %d for the year)
	TelegramToken      string // bot token for the Telegram transport
	TelegramAPIURL     string // base URL of the Telegram Bot API
	NatsURL            string // NATS server URL (empty disables the NATS bridge)
	NatsSubject        string // subject prefix used by the NATS bridge
	Transport          string // outbound transport to use (telegram, nats)
	HTTPTimeout        string // timeout for a single upstream request
	UpdateInterval     string // interval between dashboard refreshes
	CommentaryInterval string // interval between commentary polls
)

// Config holds the configuration values which are used by the application
type Config struct {
	AutoCommentary bool    // start commentary automatically when live updates start
	Chats          []int64 // chats served by the watch loop
}
