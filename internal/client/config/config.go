package config

import (
	"os"
	"strings"
	"time"
)

// Config holds runtime settings for the dashboard CLI.
type Config struct {
	// ServerEndpointAddr is the base URL of the REST backend.
	ServerEndpointAddr string
	// PrimaryUploadURL receives batches whose first file is below
	// UploadThresholdBytes; SecondaryUploadURL receives the rest. Empty
	// values are derived by UploadURLs.
	PrimaryUploadURL     string
	SecondaryUploadURL   string
	UploadThresholdBytes int64
	// MaxFileBytes is the per-file ceiling applied when files are selected.
	MaxFileBytes int64

	IdleTimeout    time.Duration
	RequestTimeout time.Duration

	DBPath      string
	DownloadDir string
	UserName    string

	LogBackend string
	LogLevel   string
}

const (
	DefaultServerEndpointAddr   = "https://cloud-file-storage-backend.vercel.app"
	DefaultUploadThresholdBytes = 10 * 1024 * 1024
	DefaultMaxFileBytes         = 200 * 1024 * 1024
	DefaultIdleTimeout          = 120 * time.Second
)

// LoadDefaults populates c with the built-in defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = DefaultServerEndpointAddr
	c.PrimaryUploadURL = ""
	c.SecondaryUploadURL = ""
	c.UploadThresholdBytes = DefaultUploadThresholdBytes
	c.MaxFileBytes = DefaultMaxFileBytes
	c.IdleTimeout = DefaultIdleTimeout
	c.RequestTimeout = 0
	c.DBPath = "dashboard.db"
	c.DownloadDir = "download"
	c.UserName = ""
	c.LogBackend = "slog"
	c.LogLevel = "info"
}

// UploadURLs returns the primary and secondary upload endpoints. The
// primary defaults to <server>/api/upload and the secondary to the primary.
func (c *Config) UploadURLs() (primary, secondary string) {
	primary = c.PrimaryUploadURL
	if primary == "" {
		primary = strings.TrimRight(c.ServerEndpointAddr, "/") + "/api/upload"
	}
	secondary = c.SecondaryUploadURL
	if secondary == "" {
		secondary = primary
	}
	return primary, secondary
}

// LoadConfig builds a Config from defaults, then the optional config file
// named by -c/-config, then command-line flags. Later sources win.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:])
}

func load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
