// Package config provides configuration management for the datalink CLI
// and server. Values merge from defaults, a YAML config file, environment
// variables, and command-line flags, in ascending precedence.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config file names, tried in order.
const (
	ConfigFileName    = "datalink.yaml"
	ConfigFileNameAlt = "datalink.yml"
)

// Default configuration values.
const (
	DefaultPort      = 8745
	DefaultDataDir   = "data"
	DefaultServer    = "http://localhost:8745"
	DefaultCacheSize = 10
	DefaultOutput    = "table"
)

// Config holds all CLI and server configuration options.
type Config struct {
	// DataDir is the directory of JSON row files the server serves.
	DataDir string `koanf:"data_dir"`
	// Port is the server listen port.
	Port int `koanf:"port"`
	// Watch makes the server ping the side channel on data file changes.
	Watch bool `koanf:"watch"`
	// Server is the backend base URL used by client commands.
	Server string `koanf:"server"`
	// CacheSize caps the client response cache (0 disables it).
	CacheSize int `koanf:"cache_size"`
	// Verbose enables debug logging.
	Verbose bool `koanf:"verbose"`
	// Output selects the render format: table, json, csv, or md.
	Output string `koanf:"output"`
}

// findConfigFile returns the config file to use: the explicit path when
// given, otherwise the first well-known name that exists.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{ConfigFileName, ConfigFileNameAlt} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load merges configuration from defaults, the config file, DATALINK_*
// environment variables, and explicitly set flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"data_dir":   DefaultDataDir,
		"port":       DefaultPort,
		"watch":      false,
		"server":     DefaultServer,
		"cache_size": DefaultCacheSize,
		"verbose":    false,
		"output":     DefaultOutput,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	if path := findConfigFile(cfgFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	} else if cfgFile != "" {
		return nil, fmt.Errorf("config file %s not found", cfgFile)
	}

	// 3. Environment variables: DATALINK_DATA_DIR -> data_dir
	if err := k.Load(env.Provider("DATALINK_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "DATALINK_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags (only those explicitly set)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
		},
	}); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("invalid cache_size %d", c.CacheSize)
	}
	switch c.Output {
	case "table", "json", "csv", "md", "markdown":
		return nil
	default:
		return fmt.Errorf("invalid output format %q (want table, json, csv, or md)", c.Output)
	}
}
