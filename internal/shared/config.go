package shared

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Server      ServerConfig      `toml:"server"`
	Scrape      ScrapeConfig      `toml:"scrape"`
	Playlist    PlaylistConfig    `toml:"playlist"`
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
	RefreshToken string `toml:"refresh_token"`
	Username     string `toml:"username"`
}

// Map returns the credentials in the form expected by services.NewSpotifyService.
func (s SpotifyConfig) Map() map[string]string {
	return map[string]string{
		"client_id":     s.ClientID,
		"client_secret": s.ClientSecret,
		"redirect_uri":  s.RedirectURI,
	}
}

// ServerConfig contains the OAuth callback listener settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns host:port for [http.Server].
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ScrapeConfig contains the page and selectors used to build search terms.
type ScrapeConfig struct {
	PageURL   string   `toml:"page_url"`
	Selectors []string `toml:"selectors"`
	UserAgent string   `toml:"user_agent"`
}

// PlaylistConfig names the destination playlist. ID wins over Name.
type PlaylistConfig struct {
	ID   string `toml:"id"`
	Name string `toml:"name"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// LoadConfigOrDefault loads path when it exists and falls back to [DefaultConfig] otherwise.
func LoadConfigOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig writes config to path as TOML.
func SaveConfig(path string, config *Config) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ApplyEnv overrides credential and server settings with any values found through lookup.
//
// Scrape and playlist options are resolved separately so they can fall back to a prompt.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	set(EnvClientID, &c.Credentials.Spotify.ClientID)
	set(EnvClientSecret, &c.Credentials.Spotify.ClientSecret)
	set(EnvRedirectURI, &c.Credentials.Spotify.RedirectURI)
	set(EnvUsername, &c.Credentials.Spotify.Username)

	if v, ok := lookup(EnvListenPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a port", ErrInvalidConfig, EnvListenPort, v)
		}
		c.Server.Port = port
	}
	return nil
}

// Options is the validated input for a single scrape-and-build run.
type Options struct {
	PageURL      string
	Selectors    []string
	PlaylistID   string
	PlaylistName string
	RefreshToken string
	NoConfirm    bool
}

// Validate checks that the options describe a runnable job.
func (o Options) Validate() error {
	if err := o.ValidateSource(); err != nil {
		return err
	}

	if o.PlaylistID == "" && o.PlaylistName == "" {
		return fmt.Errorf("%w: playlist ID or playlist name", ErrMissingArgument)
	}

	return nil
}

// ValidateSource checks the page URL and selectors only.
func (o Options) ValidateSource() error {
	if strings.TrimSpace(o.PageURL) == "" {
		return fmt.Errorf("%w: page URL", ErrMissingArgument)
	}

	u, err := url.Parse(o.PageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: page URL %q must be an absolute http(s) URL", ErrInvalidArgument, o.PageURL)
	}

	if len(o.Selectors) == 0 {
		return fmt.Errorf("%w: at least one query selector", ErrMissingArgument)
	}

	return nil
}
