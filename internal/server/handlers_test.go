package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/oferko1/toptracks/internal/auth"
	"github.com/oferko1/toptracks/internal/catalog"
	"github.com/oferko1/toptracks/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTokens struct {
	token string
	err   error
	calls int
}

func (f *fakeTokens) AccessToken(ctx context.Context) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.token, nil
}

type fakeCatalog struct {
	artist    *catalog.Artist
	searchErr error
	tracks    []catalog.Track
	tracksErr error

	searchCalls int
	tracksCalls int
	gotQuery    string
	gotMarket   string
	gotToken    string
}

func (f *fakeCatalog) SearchArtist(ctx context.Context, name, token string) (*catalog.Artist, error) {
	f.searchCalls++
	f.gotQuery = name
	f.gotToken = token
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.artist, nil
}

func (f *fakeCatalog) TopTracks(ctx context.Context, artistID, market, token string) ([]catalog.Track, error) {
	f.tracksCalls++
	f.gotMarket = market
	if f.tracksErr != nil {
		return nil, f.tracksErr
	}
	return f.tracks, nil
}

func strptr(s string) *string { return &s }

func doRequest(t *testing.T, tokens TokenProvider, cat Catalog, target string) *httptest.ResponseRecorder {
	t.Helper()
	handler := NewTopTracksHandler(tokens, cat, shared.NewLogger(nil))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestTopTracksHandler(t *testing.T) {
	t.Run("missing artist is a 400 with no upstream calls", func(t *testing.T) {
		tokens := &fakeTokens{token: "tok"}
		cat := &fakeCatalog{}

		rec := doRequest(t, tokens, cat, "/top-tracks")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "Missing required query parameter 'artist'.", body["error"])
		assert.Zero(t, tokens.calls)
		assert.Zero(t, cat.searchCalls)
	})

	t.Run("whitespace-only artist is a 400", func(t *testing.T) {
		tokens := &fakeTokens{token: "tok"}
		cat := &fakeCatalog{}

		rec := doRequest(t, tokens, cat, "/top-tracks?artist=%20%20%20")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Zero(t, tokens.calls)
		assert.Zero(t, cat.searchCalls)
	})

	t.Run("success reshapes the catalog response", func(t *testing.T) {
		tokens := &fakeTokens{token: "tok"}
		cat := &fakeCatalog{
			artist: &catalog.Artist{ID: "a1", Name: "Dua Lipa"},
			tracks: []catalog.Track{
				{ID: strptr("t2"), Name: strptr("Second")},
				{ID: strptr("t1"), Name: strptr("First")},
			},
		}

		rec := doRequest(t, tokens, cat, "/top-tracks?artist=dua+lipa")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		body := decodeBody(t, rec)
		assert.Equal(t, map[string]any{"name": "Dua Lipa", "id": "a1"}, body["artist"])
		assert.Equal(t, "US", body["market"])
		assert.EqualValues(t, 2, body["trackCount"])

		tracks, ok := body["tracks"].([]any)
		require.True(t, ok)
		require.Len(t, tracks, 2)

		first := tracks[0].(map[string]any)
		assert.Equal(t, "t2", first["id"])
		assert.Equal(t, "Second", first["title"])
		assert.Nil(t, first["preview_url"])

		assert.Equal(t, "tok", cat.gotToken)
		assert.Equal(t, "dua lipa", cat.gotQuery)
	})

	t.Run("market defaults to US and is uppercased", func(t *testing.T) {
		cat := &fakeCatalog{artist: &catalog.Artist{ID: "a1", Name: "X"}, tracks: []catalog.Track{}}
		doRequest(t, &fakeTokens{token: "tok"}, cat, "/top-tracks?artist=x")
		assert.Equal(t, "US", cat.gotMarket)

		cat = &fakeCatalog{artist: &catalog.Artist{ID: "a1", Name: "X"}, tracks: []catalog.Track{}}
		rec := doRequest(t, &fakeTokens{token: "tok"}, cat, "/top-tracks?artist=x&market=gb")
		assert.Equal(t, "GB", cat.gotMarket)

		body := decodeBody(t, rec)
		assert.Equal(t, "GB", body["market"])
	})

	t.Run("no match is a 404 echoing the raw query", func(t *testing.T) {
		cat := &fakeCatalog{artist: nil}

		rec := doRequest(t, &fakeTokens{token: "tok"}, cat, "/top-tracks?artist=%20Nobody%20Here%20")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "No artist found for ' Nobody Here '.", body["error"])
		assert.Equal(t, "Nobody Here", cat.gotQuery)
		assert.Zero(t, cat.tracksCalls)
	})

	t.Run("upstream 429 passes through status and JSON details", func(t *testing.T) {
		cat := &fakeCatalog{
			searchErr: &catalog.UpstreamError{
				Status: http.StatusTooManyRequests,
				Body:   []byte(`{"error": {"status": 429, "message": "rate limited"}}`),
				JSON:   true,
			},
		}

		rec := doRequest(t, &fakeTokens{token: "tok"}, cat, "/top-tracks?artist=x")

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "Upstream Spotify API error.", body["error"])
		assert.EqualValues(t, 429, body["status"])

		details, ok := body["details"].(map[string]any)
		require.True(t, ok, "details should be decoded JSON")
		assert.Contains(t, details, "error")
	})

	t.Run("upstream transport failure is a 502", func(t *testing.T) {
		cat := &fakeCatalog{
			searchErr: &catalog.UpstreamError{Body: []byte("connection refused")},
		}

		rec := doRequest(t, &fakeTokens{token: "tok"}, cat, "/top-tracks?artist=x")

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "Upstream Spotify API error.", body["error"])
		assert.EqualValues(t, 502, body["status"])
		assert.Equal(t, "connection refused", body["details"])
	})

	t.Run("token failure is upstream-shaped, never a 4xx", func(t *testing.T) {
		tokens := &fakeTokens{err: &auth.TokenError{Status: http.StatusUnauthorized, Body: "invalid_client"}}
		cat := &fakeCatalog{}

		rec := doRequest(t, tokens, cat, "/top-tracks?artist=x")

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "Upstream Spotify API error.", body["error"])
		assert.Zero(t, cat.searchCalls, "search must not run without a token")
	})

	t.Run("unclassified errors are a 500", func(t *testing.T) {
		cat := &fakeCatalog{searchErr: assert.AnError}

		rec := doRequest(t, &fakeTokens{token: "tok"}, cat, "/top-tracks?artist=x")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "Internal server error.", body["error"])
		assert.NotEmpty(t, body["details"])
	})

	t.Run("non-GET is a 405", func(t *testing.T) {
		handler := NewTopTracksHandler(&fakeTokens{token: "tok"}, &fakeCatalog{}, shared.NewLogger(nil))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/top-tracks?artist=x", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestUsageHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	UsageHandler{}.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, rec.Body.String(), "/top-tracks?artist=")
}
