package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultTimeout = 5 * time.Second

	maxRetryInterval = 2 * time.Second
	maxElapsedTime   = 8 * time.Second
)

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.Status, e.URL)
}

// JSON performs a GET request and decodes the JSON body into target. The call
// is bounded by the client timeout and retried with capped exponential backoff
// on transient failures; a 4xx response is not retried.
func JSON(ctx context.Context, client *http.Client, url string, target any) error {
	op := func() error {
		body, err := get(ctx, client, url)
		if err != nil {
			var statusErr *StatusError
			if errors.As(err, &statusErr) && statusErr.Status >= 400 && statusErr.Status < 500 {
				return backoff.Permanent(err)
			}
			return err
		}
		if err := json.Unmarshal(body, target); err != nil {
			return backoff.Permanent(fmt.Errorf("malformed body from %s: %w", url, err))
		}
		return nil
	}
	return backoff.Retry(op, backoff.WithContext(newBackOff(), ctx))
}

// Raw performs a GET request and returns the body without decoding.
func Raw(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	var body []byte
	op := func() (err error) {
		body, err = get(ctx, client, url)
		var statusErr *StatusError
		if err != nil && errors.As(err, &statusErr) && statusErr.Status >= 400 && statusErr.Status < 500 {
			return backoff.Permanent(err)
		}
		return err
	}
	if err := backoff.Retry(op, backoff.WithContext(newBackOff(), ctx)); err != nil {
		return nil, err
	}
	return body, nil
}

func get(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: url, Status: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}

func newBackOff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 250 * time.Millisecond
	bo.MaxInterval = maxRetryInterval
	bo.MaxElapsedTime = maxElapsedTime
	return bo
}
