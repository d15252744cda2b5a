package config

import (
	"errors"
	"flag"
	"fmt"
	"net/url"

	"github.com/caarlos0/env/v11"
)

// Client is the configuration of cmd/client.
type Client struct {
	ServerURL string `env:"SERVER" envDefault:"http://localhost:8080"`
	DBPath    string `env:"CLIENT_DB" envDefault:"feedhub-client.db"`
	LogLevel  string `env:"CLIENT_LOG_LEVEL" envDefault:"warn"`
}

// LoadClient parses the environment, then the global flags of the client.
// Parsing stops at the first non-flag argument, the command.
func LoadClient(fs *flag.FlagSet, args []string) (*Client, error) {
	var cfg Client
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	fs.StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to local session database")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the server URL and log level
func (c *Client) Validate() error {
	var errs []error

	u, err := url.Parse(c.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("server url must be http(s)://host[:port], got %q", c.ServerURL))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("client database path must not be empty"))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
