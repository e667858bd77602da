// Package feedclient consumes the JSON API the way the feed and profile
// pages do: a typed HTTP client plus a paging controller that appends
// "load more" results.
package feedclient

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

	"github.com/sakif/tweetfeed/internal/model"
)

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Code       string // "error" member of the body, when present
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("feedclient: status %d", e.StatusCode)
	}
	return fmt.Sprintf("feedclient: status %d: %s", e.StatusCode, e.Message)
}

// Client talks to one API base URL. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client. A nil httpClient gets a client with a 15s timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// Feed fetches one page of the global feed.
func (c *Client) Feed(ctx context.Context, page, perPage int) (*model.FeedPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("perPage", strconv.Itoa(perPage))

	var out model.FeedPage
	if err := c.get(ctx, "/api/tweets?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Profile fetches a user and one page of their posts.
func (c *Client) Profile(ctx context.Context, nickname string, tweetsPage int) (*model.ProfilePage, error) {
	q := url.Values{}
	q.Set("tweetsPage", strconv.Itoa(tweetsPage))

	var out model.ProfilePage
	if err := c.get(ctx, "/api/users/"+url.PathEscape(nickname)+"?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Card fetches the tweet card of one user.
func (c *Client) Card(ctx context.Context, nickname string) (*model.TweetCard, error) {
	var out model.TweetCard
	if err := c.get(ctx, "/api/tweets/"+url.PathEscape(nickname), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("feedclient: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("feedclient: GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &StatusError{StatusCode: resp.StatusCode}
		var body struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(raw, &body) == nil {
			se.Code, se.Message = body.Error, body.Message
		}
		return se
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("feedclient: decode %s: %w", path, err)
	}
	return nil
}
