package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pitwall-dev/pitwall/log"
)

const DefaultAPIURL = "https://api.telegram.org"

type Option func(*Client)

func WithHTTPClient(arg *http.Client) Option {
	return func(c *Client) {
		c.http = arg
	}
}

func WithAPIURL(arg string) Option {
	return func(c *Client) {
		c.apiURL = arg
	}
}

func WithLogger(arg *log.Logger) Option {
	return func(c *Client) {
		c.l = arg
	}
}

// Client is a minimal Telegram Bot API client covering the two operations the
// polling loops need. All messages are sent with HTML formatting.
type Client struct {
	apiURL string
	token  string
	http   *http.Client
	l      *log.Logger
}

func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		apiURL: DefaultAPIURL,
		token:  token,
		http:   &http.Client{Timeout: 10 * time.Second},
		l:      log.Default().Named("telegram"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	Result      struct {
		MessageID int `json:"message_id"`
	} `json:"result"`
}

// Send posts a new message and returns its message id.
func (c *Client) Send(ctx context.Context, chatID int64, text string) (int, error) {
	resp, err := c.call(ctx, "sendMessage", map[string]any{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	})
	if err != nil {
		return 0, err
	}
	return resp.Result.MessageID, nil
}

// Edit replaces the text of an existing message.
func (c *Client) Edit(ctx context.Context, chatID int64, messageID int, text string) error {
	_, err := c.call(ctx, "editMessageText", map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
		"text":       text,
		"parse_mode": "HTML",
	})
	return err
}

func (c *Client) call(ctx context.Context, method string, payload map[string]any) (*apiResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/bot%s/%s", c.apiURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%s: decoding response: %w", method, err)
	}
	if !parsed.OK {
		return nil, fmt.Errorf("%s: %s", method, parsed.Description)
	}
	c.l.Debug("api call done", log.String("method", method), log.Any("chatId", payload["chat_id"]))
	return &parsed, nil
}
