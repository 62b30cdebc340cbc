// Package lastfm fetches recommended tracks from a Last.fm-compatible
// API, mapping them to wanted tracks for the acquisition pipeline.
package lastfm

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/rlafferty/freshtracks/internal/model"
)

// DefaultBaseURL is the public Last.fm API root.
const DefaultBaseURL = "https://ws.audioscrobbler.com/2.0"

// Client talks to the recommendation API.
type Client struct {
	rc     *resty.Client
	apiKey string
}

// NewClient creates a Client. An empty baseURL falls back to the public
// API root.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Client{rc: rc, apiKey: apiKey}
}

type trackPayload struct {
	Name     string `json:"name"`
	Duration string `json:"duration"`
	Artist   struct {
		Name string `json:"name"`
	} `json:"artist"`
	URL string `json:"url"`
}

type topTracksResponse struct {
	TopTracks struct {
		Track []trackPayload `json:"track"`
	} `json:"toptracks"`
	Error   int    `json:"error"`
	Message string `json:"message"`
}

// TopTracks fetches up to limit of the user's top tracks, the input the
// acquisition run is seeded with.
func (c *Client) TopTracks(ctx context.Context, user string, limit int) ([]model.WantedTrack, error) {
	var out topTracksResponse
	resp, err := c.rc.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"method":  "user.gettoptracks",
			"user":    user,
			"period":  "1month",
			"limit":   strconv.Itoa(limit),
			"api_key": c.apiKey,
			"format":  "json",
		}).
		SetResult(&out).
		Get("/")
	if err != nil {
		return nil, fmt.Errorf("fetching top tracks: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetching top tracks: %s", resp.Status())
	}
	if out.Error != 0 {
		return nil, fmt.Errorf("fetching top tracks: %s", out.Message)
	}

	tracks := make([]model.WantedTrack, 0, len(out.TopTracks.Track))
	for _, t := range out.TopTracks.Track {
		if t.Name == "" || t.Artist.Name == "" {
			continue
		}
		track := model.WantedTrack{Artist: t.Artist.Name, Title: t.Name}
		if secs, err := strconv.Atoi(t.Duration); err == nil && secs > 0 {
			track.Duration = time.Duration(secs) * time.Second
		}
		tracks = append(tracks, track)
	}
	return tracks, nil
}
