package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/oferko1/toptracks/internal/auth"
	"github.com/oferko1/toptracks/internal/catalog"
	"github.com/oferko1/toptracks/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve runs the HTTP proxy until interrupted. Missing credentials are fatal
// before the listener binds.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)
	if err := config.ValidateCredentials(); err != nil {
		return err
	}

	if port := cmd.Int("port"); port != 0 {
		config.Server.Port = int(port)
	}

	tokens := auth.New(
		config.Credentials.Spotify.ClientID,
		config.Credentials.Spotify.ClientSecret,
		auth.WithTokenURL(config.Spotify.TokenURL),
		auth.WithHTTPClient(r.httpClient),
	)
	cat := catalog.New(config.Spotify.APIBaseURL, r.httpClient)

	srv := server.New(server.Options{
		Addr:      config.Server.Addr(),
		Tokens:    tokens,
		Catalog:   cat,
		Logger:    r.logger,
		RateLimit: config.Server.RateLimit,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.ListenAndServe(ctx)
}
