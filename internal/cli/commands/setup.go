package commands

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/datalink/internal/config"
	"github.com/leapstack-labs/datalink/internal/link"
	"github.com/leapstack-labs/datalink/pkg/grid"
)

// loadConfig resolves configuration from defaults, the config file,
// environment variables, and explicitly set flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Root().PersistentFlags()
	cfgFile, _ := flags.GetString("config")

	cfg, err := config.Load(cfgFile, flags)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the CLI logger. Debug level when verbose.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// newLinkClient creates a backend client from the resolved config.
func newLinkClient(cfg *config.Config) (*link.Client, error) {
	return link.NewClient(link.Config{
		BaseURL:   cfg.Server,
		CacheSize: cfg.CacheSize,
		Logger:    newLogger(cfg.Verbose),
	})
}

// loadTableFile reads a JSON array of row objects into a table.
func loadTableFile(path string) (*grid.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	tbl := grid.NewTable()
	if err := json.Unmarshal(data, tbl); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return tbl, nil
}

// coerceValue converts a raw CLI string to the kind of the target
// column so search conditions compare correctly.
func coerceValue(t *grid.Table, column, raw string) (any, error) {
	if raw == "null" {
		return nil, nil
	}
	kind, err := t.ColumnKind(column)
	if err != nil {
		return nil, err
	}
	switch kind {
	case grid.KindNumber:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("column %q holds numbers, got %q", column, raw)
		}
		return n, nil
	case grid.KindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("column %q holds booleans, got %q", column, raw)
		}
		return b, nil
	default:
		return raw, nil
	}
}

// buildCondition parses repeated key=value pairs into a search
// condition against the given table.
func buildCondition(t *grid.Table, pairs []string) (grid.Condition, error) {
	cond := grid.Condition{}
	for _, p := range pairs {
		key, raw, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid condition %q, expected key=value", p)
		}
		v, err := coerceValue(t, key, raw)
		if err != nil {
			return nil, err
		}
		cond[key] = v
	}
	return cond, nil
}
