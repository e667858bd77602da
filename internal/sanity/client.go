// Package sanity is a read-only client for the Sanity content store.
//
// The store is a black box reached over HTTP: Fetch sends a GROQ query plus
// named parameters to the query endpoint and decodes the "result" member of
// the response. Every call is bounded by the configured timeout and also
// ends when the caller's context does (an aborted HTTP request cancels its
// store calls).
package sanity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// Defaults applied by NewClient when the Config leaves them empty.
const (
	DefaultAPIVersion = "2024-01-01"
	DefaultTimeout    = 10 * time.Second
)

// Fetcher runs a query against the content store. *Client implements it;
// tests substitute fakes.
type Fetcher interface {
	Fetch(ctx context.Context, query string, params map[string]any, out any) error
}

// Config identifies a Sanity project and dataset.
type Config struct {
	ProjectID  string
	Dataset    string
	APIVersion string
	UseCDN     bool
	Token      string        // optional; sent as a bearer token
	Timeout    time.Duration // per-call bound
	BaseURL    string        // optional override, e.g. an httptest server
}

// Client is safe for concurrent use.
type Client struct {
	http    *http.Client
	baseURL string
	timeout time.Duration
}

var _ Fetcher = (*Client)(nil)

// StoreError is returned for a non-2xx response. Its text is for logs only.
type StoreError struct {
	StatusCode  int
	Description string
}

func (e *StoreError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("sanity: query returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("sanity: query returned status %d: %s", e.StatusCode, e.Description)
}

// NewClient validates cfg and builds a Client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		if cfg.ProjectID == "" {
			return nil, errors.New("sanity: project id is required")
		}
		host := "api.sanity.io"
		if cfg.UseCDN && cfg.Token == "" {
			// authenticated queries bypass the CDN
			host = "apicdn.sanity.io"
		}
		cfg.BaseURL = fmt.Sprintf("https://%s.%s", cfg.ProjectID, host)
	}
	if cfg.Dataset == "" {
		return nil, errors.New("sanity: dataset is required")
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	httpClient := &http.Client{Transport: http.DefaultTransport}
	if cfg.Token != "" {
		// oauth2.Transport adds "Authorization: Bearer <token>" to every request.
		httpClient.Transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token, TokenType: "Bearer"}),
			Base:   http.DefaultTransport,
		}
	}

	return &Client{
		http: httpClient,
		baseURL: fmt.Sprintf("%s/v%s/data/query/%s",
			strings.TrimRight(cfg.BaseURL, "/"),
			strings.TrimPrefix(cfg.APIVersion, "v"),
			url.PathEscape(cfg.Dataset)),
		timeout: cfg.Timeout,
	}, nil
}

type queryResponse struct {
	Result json.RawMessage `json:"result"`
}

type errorResponse struct {
	Error struct {
		Description string `json:"description"`
	} `json:"error"`
	Message string `json:"message"`
}

// Fetch runs query with params and decodes the result into out.
// A query with no match decodes JSON null, leaving pointers nil and slices empty.
func (c *Client) Fetch(ctx context.Context, query string, params map[string]any, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	q := url.Values{}
	q.Set("query", query)
	for name, value := range params {
		// Sanity expects each parameter JSON-encoded under "$name".
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("sanity: encoding param %q: %w", name, err)
		}
		q.Set("$"+name, string(encoded))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("sanity: building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sanity: sending query: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		storeErr := &StoreError{StatusCode: resp.StatusCode}
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var er errorResponse
		if json.Unmarshal(body, &er) == nil {
			storeErr.Description = er.Error.Description
			if storeErr.Description == "" {
				storeErr.Description = er.Message
			}
		}
		return storeErr
	}

	var qr queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&qr); err != nil {
		return fmt.Errorf("sanity: decoding response: %w", err)
	}
	if out == nil || len(qr.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(qr.Result, out); err != nil {
		return fmt.Errorf("sanity: decoding result: %w", err)
	}
	return nil
}
