package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/oferko1/toptracks/internal/auth"
	"github.com/oferko1/toptracks/internal/catalog"
	"github.com/oferko1/toptracks/internal/models"
)

const upstreamErrorMessage = "Upstream Spotify API error."

// TokenProvider supplies a valid bearer token for upstream calls.
type TokenProvider interface {
	AccessToken(ctx context.Context) (string, error)
}

// Catalog is the slice of the catalog client the handler drives.
type Catalog interface {
	SearchArtist(ctx context.Context, name, token string) (*catalog.Artist, error)
	TopTracks(ctx context.Context, artistID, market, token string) ([]catalog.Track, error)
}

// TopTracksHandler resolves an artist name to that artist's top tracks for a
// market. It sequences token acquisition, artist search, and the top-tracks
// fetch, and maps every failure onto the [models.ErrorEnvelope] contract.
type TopTracksHandler struct {
	tokens TokenProvider
	cat    Catalog
	logger *log.Logger
}

// NewTopTracksHandler creates the /top-tracks handler.
func NewTopTracksHandler(tokens TokenProvider, cat Catalog, logger *log.Logger) *TopTracksHandler {
	return &TopTracksHandler{tokens: tokens, cat: cat, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *TopTracksHandler) Routes() []string {
	return []string{"/top-tracks"}
}

func (h *TopTracksHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// The 404 message echoes the query exactly as the client sent it.
	rawQuery := r.URL.Query().Get("artist")
	artist := strings.TrimSpace(rawQuery)
	if artist == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorEnvelope{Error: "Missing required query parameter 'artist'."})
		return
	}

	market := strings.ToUpper(r.URL.Query().Get("market"))
	if market == "" {
		market = "US"
	}

	ctx := r.Context()

	token, err := h.tokens.AccessToken(ctx)
	if err != nil {
		h.fail(w, err)
		return
	}

	found, err := h.cat.SearchArtist(ctx, artist, token)
	if err != nil {
		h.fail(w, err)
		return
	}
	if found == nil {
		writeJSON(w, http.StatusNotFound, models.ErrorEnvelope{Error: fmt.Sprintf("No artist found for '%s'.", rawQuery)})
		return
	}

	tracks, err := h.cat.TopTracks(ctx, found.ID, market, token)
	if err != nil {
		h.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.TopTracksResponse{
		Artist:     models.Artist{Name: found.Name, ID: found.ID},
		Market:     market,
		TrackCount: len(tracks),
		Tracks:     models.NormalizeTracks(tracks),
	})
}

// fail maps token and catalog failures onto the error envelope. Catalog
// failures keep the upstream status and body; token failures are never the
// client's fault, so anything short of a 5xx surfaces as a 502. Everything
// else is the generic 500.
func (h *TopTracksHandler) fail(w http.ResponseWriter, err error) {
	var upstreamErr *catalog.UpstreamError
	if errors.As(err, &upstreamErr) {
		status := upstreamErr.Status
		if status < http.StatusBadRequest {
			status = http.StatusBadGateway
		}
		h.logger.Warn("upstream call failed", "status", upstreamErr.Status, "error", err)
		writeJSON(w, status, models.ErrorEnvelope{
			Error:   upstreamErrorMessage,
			Status:  status,
			Details: upstreamErr.Details(),
		})
		return
	}

	var tokenErr *auth.TokenError
	if errors.As(err, &tokenErr) {
		status := tokenErr.Status
		if status < http.StatusInternalServerError {
			status = http.StatusBadGateway
		}
		h.logger.Error("token acquisition failed", "status", tokenErr.Status, "error", err)
		writeJSON(w, status, models.ErrorEnvelope{
			Error:   upstreamErrorMessage,
			Status:  status,
			Details: tokenErr.Body,
		})
		return
	}

	h.logger.Error("unhandled error", "error", err)
	writeJSON(w, http.StatusInternalServerError, models.ErrorEnvelope{
		Error:   "Internal server error.",
		Details: err.Error(),
	})
}

// UsageHandler serves a plain-text usage hint at the root path.
type UsageHandler struct{}

// Routes returns the HTTP routes this handler serves.
func (UsageHandler) Routes() []string {
	return []string{"/{$}"}
}

func (UsageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, "Spotify Artist Top Tracks API\nTry: /top-tracks?artist=dua lipa&market=US\n")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// the status line is already on the wire; an encode failure here is unrecoverable
	_ = json.NewEncoder(w).Encode(body)
}
