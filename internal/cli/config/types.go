// Package config loads CLI configuration for indexlens.
//
// Configuration merges four layers, lowest to highest precedence:
// defaults, an indexlens.yaml file, INDEXLENS_* environment variables,
// and command line flags. Named clusters in the file let one config
// describe several deployments, selected with --cluster.
package config

import (
	"github.com/indexlens/indexlens/internal/search"
)

// ClusterConfig is an alias for the search client configuration so CLI
// code does not import the search package for config handling.
type ClusterConfig = search.Config

// UIConfig holds configuration for the dashboard server.
type UIConfig struct {
	Port       int    `koanf:"port"`
	Host       string `koanf:"host"`
	Watch      bool   `koanf:"watch"`
	SessionTTL string `koanf:"session_ttl"`
}

// DefaultUIConfig returns a UIConfig with default values.
func DefaultUIConfig() *UIConfig {
	return &UIConfig{
		Port:       8790,
		Host:       "127.0.0.1",
		Watch:      false,
		SessionTTL: "30m",
	}
}

// GetUIConfig returns the UI config with defaults applied for any unset
// values.
func (c *Config) GetUIConfig() *UIConfig {
	if c.UI == nil {
		return DefaultUIConfig()
	}
	ui := c.UI
	if ui.Port == 0 {
		ui.Port = 8790
	}
	if ui.Host == "" {
		ui.Host = "127.0.0.1"
	}
	if ui.SessionTTL == "" {
		ui.SessionTTL = "30m"
	}
	return ui
}

// Config holds all CLI configuration options.
type Config struct {
	Cluster         *ClusterConfig            `koanf:"cluster"`
	Clusters        map[string]*ClusterConfig `koanf:"clusters"`
	RowLimit        int                       `koanf:"row_limit"`
	FieldTypes      string                    `koanf:"field_types"`
	ShowDataStreams bool                      `koanf:"show_data_streams"`
	Verbose         bool                      `koanf:"verbose"`
	OutputFormat    string                    `koanf:"output"`
	UI              *UIConfig                 `koanf:"ui"`
}

// Default configuration values.
const (
	DefaultClusterURL = "http://localhost:9200"
	DefaultRowLimit   = 1000
	DefaultFieldTypes = "keyword"
	DefaultOutput     = "auto" // terminal gets text, pipes get markdown
)
