package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/clouddash/internal/flagx"
	"github.com/dmitrijs2005/clouddash/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of the config file. Pointer and zero
// values mean "not set" so only present keys override earlier sources.
type FileConfig struct {
	ServerEndpointAddr   string          `json:"server_endpoint_addr" yaml:"server_endpoint_addr"`
	PrimaryUploadURL     string          `json:"primary_upload_url" yaml:"primary_upload_url"`
	SecondaryUploadURL   string          `json:"secondary_upload_url" yaml:"secondary_upload_url"`
	UploadThresholdBytes int64           `json:"upload_threshold_bytes" yaml:"upload_threshold_bytes"`
	MaxFileBytes         int64           `json:"max_file_bytes" yaml:"max_file_bytes"`
	IdleTimeout          *timex.Duration `json:"idle_timeout" yaml:"idle_timeout"`
	RequestTimeout       *timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	DBPath               string          `json:"db_path" yaml:"db_path"`
	DownloadDir          string          `json:"download_dir" yaml:"download_dir"`
	UserName             string          `json:"user_name" yaml:"user_name"`
	LogBackend           string          `json:"log_backend" yaml:"log_backend"`
	LogLevel             string          `json:"log_level" yaml:"log_level"`
}

// parseFile overlays cfg with the file named by -c/-config. JSON is used
// unless the extension is .yaml or .yml.
func parseFile(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}

func (fc *FileConfig) apply(cfg *Config) {
	setString(&cfg.ServerEndpointAddr, fc.ServerEndpointAddr)
	setString(&cfg.PrimaryUploadURL, fc.PrimaryUploadURL)
	setString(&cfg.SecondaryUploadURL, fc.SecondaryUploadURL)
	if fc.UploadThresholdBytes > 0 {
		cfg.UploadThresholdBytes = fc.UploadThresholdBytes
	}
	if fc.MaxFileBytes > 0 {
		cfg.MaxFileBytes = fc.MaxFileBytes
	}
	if fc.IdleTimeout != nil {
		cfg.IdleTimeout = fc.IdleTimeout.Duration
	}
	if fc.RequestTimeout != nil {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	setString(&cfg.DBPath, fc.DBPath)
	setString(&cfg.DownloadDir, fc.DownloadDir)
	setString(&cfg.UserName, fc.UserName)
	setString(&cfg.LogBackend, fc.LogBackend)
	setString(&cfg.LogLevel, fc.LogLevel)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
