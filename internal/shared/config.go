package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
//
// Credentials are scoped to a single run: the config value is constructed by
// the command layer and handed to the exporter explicitly, never held in
// package-level state.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Export      ExportConfig      `toml:"export"`
	Download    DownloadConfig    `toml:"download"`
	Database    DatabaseConfig    `toml:"database"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
	AccessToken  string `toml:"access_token"`
}

// ExportConfig contains settings for the metadata export run.
type ExportConfig struct {
	PlaylistsDir string  `toml:"playlists_dir"`
	RateLimit    float64 `toml:"rate_limit"` // API requests per second
}

// DownloadConfig contains settings for the download pass.
type DownloadConfig struct {
	PlaylistsDir string `toml:"playlists_dir"`
	OutputDir    string `toml:"output_dir"`
	LogDir       string `toml:"log_dir"`
}

// DatabaseConfig contains settings for the run-history database.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.applyEnv()
	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	config.applyEnv()
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig writes the configuration back to a TOML file.
func SaveConfig(path string, config *Config) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	if err := toml.NewEncoder(file).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// Map returns the credentials as the map the services constructor expects.
func (s SpotifyConfig) Map() map[string]string {
	return map[string]string{
		"client_id":     s.ClientID,
		"client_secret": s.ClientSecret,
		"redirect_uri":  s.RedirectURI,
		"access_token":  s.AccessToken,
	}
}

// LoadDotenv loads a .env file from the working directory when one exists.
// A missing file is not an error; credentials can come from the config file
// or real environment variables instead.
func LoadDotenv() {
	_ = godotenv.Load()
}

// applyEnv overlays environment variables onto credential fields that are
// still empty. Environment never overrides an explicit config value.
func (c *Config) applyEnv() {
	spotify := &c.Credentials.Spotify
	if spotify.ClientID == "" {
		spotify.ClientID = os.Getenv("SPOTIFY_CLIENT_ID")
	}
	if spotify.ClientSecret == "" {
		spotify.ClientSecret = os.Getenv("SPOTIFY_CLIENT_SECRET")
	}
	if spotify.AccessToken == "" {
		spotify.AccessToken = os.Getenv("SPOTIFY_ACCESS_TOKEN")
	}
}
