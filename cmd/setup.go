package main

import (
	"context"

	"github.com/oferko1/toptracks/internal/shared"
	"github.com/urfave/cli/v3"
)

// ConfigInit writes the example configuration file to the given path.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if err := shared.CreateConfigFile(configPath); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", configPath)
	return r.writePlain("✓ Wrote %s\n", configPath)
}
