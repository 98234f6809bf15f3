package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/pitwall-dev/pitwall/log"
)

const (
	DefaultSubject = "pitwall.outbound"

	// CommandSubject carries inbound chat commands from the gateway.
	CommandSubject = "pitwall.commands"
)

type Option func(*Transport)

func WithSubject(arg string) Option {
	return func(t *Transport) {
		t.subject = arg
	}
}

func WithTimeout(arg time.Duration) Option {
	return func(t *Transport) {
		t.timeout = arg
	}
}

func WithLogger(arg *log.Logger) Option {
	return func(t *Transport) {
		t.l = arg
	}
}

// Transport forwards outbound chat operations over NATS request/reply to an
// external messaging gateway. The gateway owns the actual chat credentials;
// this process only ever sees chat ids and rendered text.
type Transport struct {
	conn    *nats.Conn
	subject string
	timeout time.Duration
	l       *log.Logger
}

func NewTransport(url string, opts ...Option) (*Transport, error) {
	t := &Transport{
		subject: DefaultSubject,
		timeout: 5 * time.Second,
		l:       log.Default().Named("bridge"),
	}
	for _, opt := range opts {
		opt(t)
	}
	conn, err := nats.Connect(url,
		nats.Name("pitwall"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second))
	if err != nil {
		return nil, fmt.Errorf("connecting to nats: %w", err)
	}
	t.conn = conn
	return t, nil
}

type outboundRequest struct {
	Op        string `json:"op"` // send | edit
	ChatID    int64  `json:"chat_id"`
	MessageID int    `json:"message_id,omitempty"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type outboundReply struct {
	MessageID int    `json:"message_id"`
	Error     string `json:"error,omitempty"`
}

func (t *Transport) Send(ctx context.Context, chatID int64, text string) (int, error) {
	reply, err := t.request(ctx, outboundRequest{
		Op: "send", ChatID: chatID, Text: text, ParseMode: "HTML",
	})
	if err != nil {
		return 0, err
	}
	return reply.MessageID, nil
}

func (t *Transport) Edit(ctx context.Context, chatID int64, messageID int, text string) error {
	_, err := t.request(ctx, outboundRequest{
		Op: "edit", ChatID: chatID, MessageID: messageID, Text: text, ParseMode: "HTML",
	})
	return err
}

func (t *Transport) request(ctx context.Context, req outboundRequest) (*outboundReply, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	reqCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	msg, err := t.conn.RequestWithContext(reqCtx, t.subject, payload)
	if err != nil {
		return nil, fmt.Errorf("gateway request (%s): %w", req.Op, err)
	}
	var reply outboundReply
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		return nil, fmt.Errorf("decoding gateway reply: %w", err)
	}
	if reply.Error != "" {
		return nil, errors.New(reply.Error)
	}
	return &reply, nil
}

// Command is one inbound chat command relayed by the gateway.
type Command struct {
	ChatID int64  `json:"chat_id"`
	Name   string `json:"name"` // live, stop, commentary, standings, ...
	Arg    string `json:"arg,omitempty"`
}

// SubscribeCommands registers a handler for inbound commands. Malformed
// payloads are logged and dropped.
func (t *Transport) SubscribeCommands(handler func(Command)) (*nats.Subscription, error) {
	return t.conn.Subscribe(CommandSubject, func(msg *nats.Msg) {
		var cmd Command
		if err := json.Unmarshal(msg.Data, &cmd); err != nil {
			t.l.Warn("dropping malformed command", log.ErrorField(err))
			return
		}
		handler(cmd)
	})
}

func (t *Transport) Close() {
	if t.conn != nil {
		t.conn.Drain() //nolint:errcheck
	}
}
