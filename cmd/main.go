package main

import (
	"context"
	"os"

	"github.com/desertthunder/crate/internal/services"
	"github.com/desertthunder/crate/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	shared.LoadDotenv()
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loaded, err := shared.LoadConfig("config.toml"); err == nil {
			config = loaded
		}
	}

	var spotify services.MetadataService
	if svc, err := services.NewSpotifyService(config.Credentials.Spotify.Map()); err == nil {
		if token := config.Credentials.Spotify.AccessToken; token != "" {
			if err := svc.Authenticate(context.Background(), map[string]string{"access_token": token}); err != nil {
				logger.Warnf("failed to apply stored access token: %v", err)
			}
		}
		spotify = svc
	}

	runner := NewRunner(RunnerOpts{
		Config:  config,
		Spotify: spotify,
		Logger:  logger,
	})

	app := &cli.Command{
		Name:     "crate",
		Usage:    "Export Spotify playlists to CSV and build a tagged local music library",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
