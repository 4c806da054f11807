package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/clouddash/internal/flagx"
)

var flagNames = []string{"a", "p", "s", "t", "d", "o", "u", "l"}

// parseFlags overlays cfg with command-line flags. Only the flags listed in
// flagNames are considered; everything else on the command line is ignored.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("dashboard", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "backend base URL")
	fs.StringVar(&cfg.PrimaryUploadURL, "p", cfg.PrimaryUploadURL, "primary upload URL")
	fs.StringVar(&cfg.SecondaryUploadURL, "s", cfg.SecondaryUploadURL, "secondary upload URL for large batches")
	idle := fs.Int("t", int(cfg.IdleTimeout.Seconds()), "idle timeout (in seconds)")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "local database path")
	fs.StringVar(&cfg.DownloadDir, "o", cfg.DownloadDir, "download directory")
	fs.StringVar(&cfg.UserName, "u", cfg.UserName, "user name sent with file requests")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(flagx.Pick(args, flagNames...)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	var idleSet bool
	fs.Visit(func(f *flag.Flag) { idleSet = idleSet || f.Name == "t" })
	if !idleSet {
		return nil
	}
	if *idle <= 0 {
		return fmt.Errorf("parse flags: idle timeout must be positive, got %d", *idle)
	}
	cfg.IdleTimeout = time.Duration(*idle) * time.Second
	return nil
}
