package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// loggerKey is used to store the logger in context. Shared with the cli
// package via LoggerKey.
type loggerKey struct{}

// maxUpwardSearchLevels limits how far up the directory tree to search
// for config files.
const maxUpwardSearchLevels = 10

var (
	configFileUsed string
	currentConfig  *Config // stores the loaded config for access by commands
)

// findConfigFile finds the config file to use.
// Priority: explicit path > ./indexlens.yaml > ./indexlens.yml > an
// ancestor directory > the user config directory.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}

	if cwd, err := os.Getwd(); err == nil {
		dir := cwd
		for i := 0; i < maxUpwardSearchLevels; i++ {
			if found := configIn(dir); found != "" {
				return found
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	if configDir, err := os.UserConfigDir(); err == nil {
		if found := configIn(filepath.Join(configDir, "indexlens")); found != "" {
			return found
		}
	}
	return ""
}

// configIn returns the path of an indexlens config file in dir, if any.
func configIn(dir string) string {
	for _, name := range []string{"indexlens.yaml", "indexlens.yml"} {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// LoadConfig loads configuration from file, environment variables, and
// flags. Precedence (highest to lowest): flags > env vars > config file
// > defaults.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	return LoadConfigWithCluster(cfgFile, "", flags)
}

// LoadConfigWithCluster loads configuration with an optional named
// cluster override. The named cluster's settings merge over the base
// cluster section.
func LoadConfigWithCluster(cfgFile string, clusterName string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"cluster.url": DefaultClusterURL,
		"row_limit":   DefaultRowLimit,
		"field_types": DefaultFieldTypes,
		"verbose":     false,
		"output":      DefaultOutput,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Environment variables: INDEXLENS_CLUSTER_URL -> cluster.url.
	// Only the first underscore splits a section from its key, so
	// ROW_LIMIT stays row_limit.
	if err := k.Load(env.Provider("INDEXLENS_", ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, "INDEXLENS_"))
		for _, section := range []string{"cluster_", "ui_"} {
			if strings.HasPrefix(key, section) {
				return strings.TrimSuffix(section, "_") + "." + strings.TrimPrefix(key, section)
			}
		}
		return key
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags, highest priority. Only explicitly set flags override.
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			switch f.Name {
			case "url":
				return "cluster.url", posflag.FlagVal(flags, f)
			case "username":
				return "cluster.username", posflag.FlagVal(flags, f)
			case "password":
				return "cluster.password", posflag.FlagVal(flags, f)
			case "insecure":
				return "cluster.skip_tls_verify", posflag.FlagVal(flags, f)
			case "data-streams":
				return "show_data_streams", posflag.FlagVal(flags, f)
			case "config", "cluster":
				// Meta flags, not config values.
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Apply the named cluster over the base cluster section.
	if clusterName != "" {
		named, ok := cfg.Clusters[clusterName]
		if !ok {
			return nil, fmt.Errorf("unknown cluster %q (not in the clusters section)", clusterName)
		}
		cfg.Cluster = MergeClusterConfig(cfg.Cluster, named)
	}

	if cfg.Cluster == nil {
		cfg.Cluster = &ClusterConfig{URL: DefaultClusterURL}
	}
	expandClusterEnvVars(cfg.Cluster)

	currentConfig = &cfg
	return &cfg, nil
}

// GetCurrentConfig returns the most recently loaded configuration, or
// nil when no load has happened yet. It lets the commands package reach
// the config without importing the cli package.
func GetCurrentConfig() *Config {
	return currentConfig
}

// GetConfigFileUsed returns the path to the config file being used, if
// any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// LoggerKey returns the context key used for storing the logger. This
// lets the commands package retrieve the logger from context without an
// import cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

// expandEnvVars expands ${VAR} patterns in a string with environment
// variable values.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})
}

// expandClusterEnvVars expands environment variables in credential
// fields, so config files can stay free of secrets.
func expandClusterEnvVars(c *ClusterConfig) {
	if c == nil {
		return
	}
	c.URL = expandEnvVars(c.URL)
	c.Username = expandEnvVars(c.Username)
	c.Password = expandEnvVars(c.Password)
}

// MergeClusterConfig merges two cluster configs, with override taking
// precedence.
func MergeClusterConfig(base, override *ClusterConfig) *ClusterConfig {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	merged := &ClusterConfig{
		URL:           base.URL,
		Username:      base.Username,
		Password:      base.Password,
		Timeout:       base.Timeout,
		SkipTLSVerify: base.SkipTLSVerify,
		Headers:       make(map[string]string),
		Options:       make(map[string]any),
	}
	for k, v := range base.Headers {
		merged.Headers[k] = v
	}
	for k, v := range base.Options {
		merged.Options[k] = v
	}

	if override.URL != "" {
		merged.URL = override.URL
	}
	if override.Username != "" {
		merged.Username = override.Username
	}
	if override.Password != "" {
		merged.Password = override.Password
	}
	if override.Timeout != 0 {
		merged.Timeout = override.Timeout
	}
	if override.SkipTLSVerify {
		merged.SkipTLSVerify = true
	}
	for k, v := range override.Headers {
		merged.Headers[k] = v
	}
	for k, v := range override.Options {
		merged.Options[k] = v
	}

	return merged
}
