package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/crate/internal/server"
	"github.com/desertthunder/crate/internal/services"
	"github.com/desertthunder/crate/internal/shared"
	"github.com/urfave/cli/v3"
)

const authTimeout = 5 * time.Minute

// Init creates a starter config file next to the binary.
func (r *Runner) Init(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.writePlain("✓ Created %s\n", path)
	r.writePlain("Fill in your Spotify client_id and client_secret, then run: crate auth\n")
	return nil
}

// Auth performs the OAuth2 authorization-code flow for Spotify.
//
// Opens the browser for user consent, receives the callback on a local
// listener, and saves the resulting token back to the config file.
func (r *Runner) Auth(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	config := r.configFrom(cmd)

	if config.Credentials.Spotify.ClientID == "" || config.Credentials.Spotify.ClientSecret == "" {
		return fmt.Errorf("%w: set client_id and client_secret in %s", shared.ErrMissingCredentials, configPath)
	}

	svc, err := services.NewSpotifyService(config.Credentials.Spotify.Map())
	if err != nil {
		return fmt.Errorf("failed to create Spotify service: %w", err)
	}

	state := shared.GenerateID()
	authURL := svc.GetAuthURL(state)

	r.writePlain("Open this URL in your browser to authorize:\n\n%s\n\n", authURL)
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser: %v", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, authTimeout)
	defer cancel()

	token, err := server.WaitForToken(waitCtx, svc.OAuthConfig(), state, r.logger)
	if err != nil {
		return err
	}

	config.Credentials.Spotify.AccessToken = token.AccessToken
	if err := shared.SaveConfig(configPath, config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Token saved to %s\n\n", configPath)
	r.writePlain("You can now use: crate export\n")

	return nil
}
