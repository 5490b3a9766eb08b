// package catalog is a stateless client for the Spotify Web API catalog
// endpoints (artist search, top tracks). Tokens are supplied by the caller;
// the client performs no token management of its own.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oferko1/toptracks/internal/shared"
)

// DefaultBaseURL is the Spotify Web API root.
const DefaultBaseURL = "https://api.spotify.com/v1"

const requestTimeout = 10 * time.Second

// UpstreamError describes a failed catalog call. Status is the upstream HTTP
// status, or 0 when the request never completed. JSON reports whether the
// upstream declared a JSON content type for the body.
type UpstreamError struct {
	Status int
	Body   []byte
	JSON   bool
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("catalog request failed: %s", e.Body)
	}
	return fmt.Sprintf("catalog request failed: status %d: %s", e.Status, e.Body)
}

func (e *UpstreamError) Unwrap() error { return shared.ErrAPIRequest }

// Details returns the upstream body decoded as JSON when the upstream
// declared a JSON content type, otherwise as an opaque string.
func (e *UpstreamError) Details() any {
	if e.JSON {
		var v any
		if err := json.Unmarshal(e.Body, &v); err == nil {
			return v
		}
	}
	return string(e.Body)
}

// Artist is the projection of an upstream search result this service consumes.
type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TrackArtist is a contributing artist on a track.
type TrackArtist struct {
	Name string `json:"name"`
}

// Track is the subset of Spotify's track object this service consumes.
// Optional fields stay pointers so absent upstream values survive as nulls in
// the normalized response.
type Track struct {
	ID           *string           `json:"id"`
	Name         *string           `json:"name"`
	Artists      []TrackArtist     `json:"artists"`
	PreviewURL   *string           `json:"preview_url"`
	Popularity   *int              `json:"popularity"`
	ExternalURLs map[string]string `json:"external_urls"`
}

// Client makes authenticated calls against the Spotify Web API.
type Client struct {
	baseURL string
	client  *http.Client
}

// New creates a catalog [Client]. Empty baseURL and nil client fall back to
// [DefaultBaseURL] and a 10 second timeout client.
func New(baseURL string, client *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: requestTimeout}
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// SearchArtist returns the first artist matching name, or nil when the search
// comes back empty.
func (c *Client) SearchArtist(ctx context.Context, name, token string) (*Artist, error) {
	query := url.Values{}
	query.Set("q", name)
	query.Set("type", "artist")
	query.Set("limit", "1")

	body, err := c.get(ctx, "/search", query, token)
	if err != nil {
		return nil, err
	}

	var page struct {
		Artists struct {
			Items []Artist `json:"items"`
		} `json:"artists"`
	}
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("artist search decode error: %w", err)
	}

	if len(page.Artists.Items) == 0 {
		return nil, nil
	}

	first := page.Artists.Items[0]
	return &first, nil
}

// TopTracks returns the artist's top tracks for the given market, in upstream
// order. The slice is empty, never nil, when the upstream lists no tracks.
func (c *Client) TopTracks(ctx context.Context, artistID, market, token string) ([]Track, error) {
	query := url.Values{}
	query.Set("market", market)

	body, err := c.get(ctx, "/artists/"+url.PathEscape(artistID)+"/top-tracks", query, token)
	if err != nil {
		return nil, err
	}

	var page struct {
		Tracks []Track `json:"tracks"`
	}
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("top tracks decode error: %w", err)
	}

	if page.Tracks == nil {
		return []Track{}, nil
	}
	return page.Tracks, nil
}

// get performs an authenticated GET and returns the response body. Non-2xx
// responses and transport failures come back as [*UpstreamError].
func (c *Client) get(ctx context.Context, path string, query url.Values, token string) ([]byte, error) {
	apiURL := c.baseURL + path
	if len(query) > 0 {
		apiURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &UpstreamError{Body: []byte(err.Error())}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: []byte(err.Error())}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		contentType := resp.Header.Get("Content-Type")
		return nil, &UpstreamError{
			Status: resp.StatusCode,
			Body:   body,
			JSON:   strings.HasPrefix(contentType, "application/json"),
		}
	}

	return body, nil
}
