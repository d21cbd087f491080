package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/user/transcript/internal/types"
)

// Client fetches conversation history from an HTTP events API:
//
//	GET {base}/conversations/{key}/events?after={seq}
//	Authorization: Bearer {apiKey}
//
// The response body is {"events": [...]}.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	retry   *RetryPolicy
}

// ClientOption configures a Client.
type ClientOption func(*Client)

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

func WithRetryPolicy(p *RetryPolicy) ClientOption {
	return func(c *Client) { c.retry = p }
}

func WithAPIKey(key string) ClientOption {
	return func(c *Client) { c.apiKey = key }
}

// NewClient creates a Client for baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		retry:   DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type eventsResponse struct {
	Events []*types.Event `json:"events"`
}

// FetchEvents returns the events of key with Seq greater than afterSeq.
func (c *Client) FetchEvents(ctx context.Context, key types.ConversationKey, afterSeq int64) ([]*types.Event, error) {
	var events []*types.Event
	err := c.retry.Execute(ctx, func() error {
		var err error
		events, err = c.fetchOnce(ctx, key, afterSeq)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetch events for %s: %w", key, err)
	}
	return events, nil
}

func (c *Client) fetchOnce(ctx context.Context, key types.ConversationKey, afterSeq int64) ([]*types.Event, error) {
	u := fmt.Sprintf("%s/conversations/%s/events?%s", c.baseURL, url.PathEscape(string(key)),
		url.Values{"after": {strconv.FormatInt(afterSeq, 10)}}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w: %w", ErrPermanent, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, fmt.Errorf("%w: %w", ErrPermanent, err)
		}
		return nil, err
	}

	var out eventsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrPermanent, err)
	}
	return out.Events, nil
}
