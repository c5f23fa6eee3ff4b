package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// HTTPClient wraps http.Client with retries and exponential backoff.
type HTTPClient struct {
	Client  *http.Client
	Retries int
	Timeout time.Duration
	Backoff time.Duration
	Logger  zerolog.Logger
}

func NewHTTPClient(retries int, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		Client: &http.Client{
			Timeout: timeout,
		},
		Retries: retries,
		Timeout: timeout,
		Backoff: 200 * time.Millisecond,
		Logger:  zerolog.Nop(),
	}
}

// WithLogger returns the client with logger attached.
func (c *HTTPClient) WithLogger(logger zerolog.Logger) *HTTPClient {
	c.Logger = logger
	return c
}

// Get performs a GET, retrying transport errors and 5xx/429 responses.
// The caller owns the returned body.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	var resp *http.Response
	var err error

	for i := 0; i <= c.Retries; i++ {
		req, rErr := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if rErr != nil {
			return nil, rErr
		}
		req.Header.Set("Accept", "application/json")

		resp, err = c.Client.Do(req)
		if err == nil && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}
		if err == nil && i < c.Retries {
			// drain so the connection can be reused
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}

		if i < c.Retries {
			c.Logger.Warn().Str("url", url).Int("attempt", i+1).Err(err).Msg("HTTP request failed, retrying")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(1<<i) * c.Backoff):
			}
		}
	}

	if err != nil {
		return nil, fmt.Errorf("request failed after %d retries: %w", c.Retries, err)
	}
	return resp, nil // last response, even if 5xx
}

// GetJSON performs Get and decodes a 2xx JSON body into v.
func (c *HTTPClient) GetJSON(ctx context.Context, url string, v any) error {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d from %s: %s", resp.StatusCode, url, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", url, err)
	}
	return nil
}
