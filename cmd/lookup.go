package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/oferko1/toptracks/internal/auth"
	"github.com/oferko1/toptracks/internal/catalog"
	"github.com/oferko1/toptracks/internal/formatter"
	"github.com/oferko1/toptracks/internal/models"
	"github.com/oferko1/toptracks/internal/shared"
	"github.com/urfave/cli/v3"
)

// Lookup resolves an artist's top tracks once and prints them, running the
// same token -> search -> top-tracks sequence the HTTP handler drives.
func (r *Runner) Lookup(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("artist")
	artist := strings.TrimSpace(query)
	if artist == "" {
		return fmt.Errorf("%w: artist name", shared.ErrMissingArgument)
	}

	market := strings.ToUpper(strings.TrimSpace(cmd.String("market")))
	if market == "" {
		market = "US"
	}

	config := r.loadConfig(cmd)
	if err := config.ValidateCredentials(); err != nil {
		return err
	}

	tokens := auth.New(
		config.Credentials.Spotify.ClientID,
		config.Credentials.Spotify.ClientSecret,
		auth.WithTokenURL(config.Spotify.TokenURL),
		auth.WithHTTPClient(r.httpClient),
	)
	cat := catalog.New(config.Spotify.APIBaseURL, r.httpClient)

	r.logger.Info("looking up top tracks", "artist", artist, "market", market)

	token, err := tokens.AccessToken(ctx)
	if err != nil {
		return fmt.Errorf("token acquisition failed: %w", err)
	}

	found, err := cat.SearchArtist(ctx, artist, token)
	if err != nil {
		return fmt.Errorf("artist search failed: %w", err)
	}
	if found == nil {
		return fmt.Errorf("%w: no results for %q", shared.ErrArtistNotFound, query)
	}

	tracks, err := cat.TopTracks(ctx, found.ID, market, token)
	if err != nil {
		return fmt.Errorf("top tracks fetch failed: %w", err)
	}

	resp := &models.TopTracksResponse{
		Artist:     models.Artist{Name: found.Name, ID: found.ID},
		Market:     market,
		TrackCount: len(tracks),
		Tracks:     models.NormalizeTracks(tracks),
	}

	if cmd.Bool("json") {
		return r.writeJSON(resp, cmd.Bool("pretty"))
	}

	return r.writePlain("%s", formatter.Table(resp))
}
