package slskd

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client talks to a slskd download daemon's REST interface.
//
// All methods return an error for transport failures and for non-2xx
// responses; callers in the acquisition pipeline treat those errors as
// failed steps, never as fatal conditions.
type Client struct {
	rc *resty.Client
}

// NewClient creates a Client for the daemon at baseURL. apiKey may be
// empty when the daemon runs without authentication.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if apiKey != "" {
		rc.SetHeader("X-API-Key", apiKey)
	}
	return &Client{rc: rc}
}

// StartSearch submits a search query and returns the backend's search
// resource, whose ID is used for polling and collection.
func (c *Client) StartSearch(ctx context.Context, searchText string, timeout time.Duration) (Search, error) {
	var out Search
	resp, err := c.rc.R().
		SetContext(ctx).
		SetBody(SearchRequest{
			SearchText:    searchText,
			SearchTimeout: int(timeout.Milliseconds()),
		}).
		SetResult(&out).
		Post("/api/v0/searches")
	if err != nil {
		return Search{}, fmt.Errorf("start search: %w", err)
	}
	if resp.IsError() {
		return Search{}, fmt.Errorf("start search: %s", resp.Status())
	}
	return out, nil
}

// GetSearch fetches the current state of a search.
func (c *Client) GetSearch(ctx context.Context, id string) (Search, error) {
	var out Search
	resp, err := c.rc.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/api/v0/searches/" + id)
	if err != nil {
		return Search{}, fmt.Errorf("get search: %w", err)
	}
	if resp.IsError() {
		return Search{}, fmt.Errorf("get search: %s", resp.Status())
	}
	return out, nil
}

// SearchResponses fetches the per-peer file offerings for a completed
// search.
func (c *Client) SearchResponses(ctx context.Context, id string) ([]SearchResponse, error) {
	var out []SearchResponse
	resp, err := c.rc.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/api/v0/searches/" + id + "/responses")
	if err != nil {
		return nil, fmt.Errorf("search responses: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("search responses: %s", resp.Status())
	}
	return out, nil
}

// DeleteSearch releases the search resource on the backend. Searches are
// deleted after collection (or abandonment) so the daemon does not
// accumulate them.
func (c *Client) DeleteSearch(ctx context.Context, id string) error {
	resp, err := c.rc.R().
		SetContext(ctx).
		Delete("/api/v0/searches/" + id)
	if err != nil {
		return fmt.Errorf("delete search: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("delete search: %s", resp.Status())
	}
	return nil
}

// EnqueueDownload asks the daemon to download files from a peer. Any 2xx
// response means the transfer was accepted into the queue.
func (c *Client) EnqueueDownload(ctx context.Context, username string, files []QueueRequest) error {
	resp, err := c.rc.R().
		SetContext(ctx).
		SetBody(files).
		Post("/api/v0/transfers/downloads/" + username)
	if err != nil {
		return fmt.Errorf("enqueue download: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("enqueue download: %s", resp.Status())
	}
	return nil
}

// Downloads lists the daemon's current download queue across all peers.
func (c *Client) Downloads(ctx context.Context) ([]UserDownloads, error) {
	var out []UserDownloads
	resp, err := c.rc.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/api/v0/transfers/downloads")
	if err != nil {
		return nil, fmt.Errorf("list downloads: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("list downloads: %s", resp.Status())
	}
	return out, nil
}
