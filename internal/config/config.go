// Package config loads and saves varcop settings from a TOML file, with
// environment overrides.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/theirongolddev/varcop/internal/model"
	"github.com/theirongolddev/varcop/internal/source"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds all varcop configuration.
type Config struct {
	Materiality model.MaterialityConfig `toml:"materiality"`
	Mapping     source.ColumnMapping    `toml:"mapping"`
	Analysis    AnalysisConfig          `toml:"analysis"`
	Appearance  AppearanceConfig        `toml:"appearance"`
}

// AnalysisConfig holds defaults for drill-down commands.
type AnalysisConfig struct {
	Dimension   string `toml:"dimension"`
	TopDrivers  int    `toml:"top_drivers"`
	TopSamples  int    `toml:"top_samples"`
	TopKeywords int    `toml:"top_keywords"`
	SignMode    string `toml:"sign_mode"`
	Decimal     string `toml:"decimal"`
	Lenient     bool   `toml:"lenient"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// Environment variables that override the file.
const (
	EnvMinAbsDelta   = "VARCOP_MIN_ABS_DELTA"
	EnvMinPctDelta   = "VARCOP_MIN_PCT_DELTA"
	EnvMinBase       = "VARCOP_MIN_BASE"
	EnvMinShareTotal = "VARCOP_MIN_SHARE_TOTAL"
	EnvTheme         = "VARCOP_THEME"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Materiality: model.DefaultMateriality(),
		Mapping:     source.DefaultMapping(),
		Analysis: AnalysisConfig{
			Dimension:   "cost_center",
			TopDrivers:  5,
			TopSamples:  8,
			TopKeywords: 10,
			SignMode:    string(source.SignAsIs),
			Decimal:     string(source.DecimalAuto),
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "varcop")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "varcop")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the default config file. See LoadFrom.
func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads the config file at path, returning defaults if it doesn't
// exist. A .env file in the working directory is loaded first, and VARCOP_*
// variables override values from the file.
func LoadFrom(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // user-chosen config path
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return cfg, fmt.Errorf("reading config: %w", err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	thresholds := []struct {
		key string
		dst *float64
	}{
		{EnvMinAbsDelta, &cfg.Materiality.MinAbsDelta},
		{EnvMinPctDelta, &cfg.Materiality.MinPctDelta},
		{EnvMinBase, &cfg.Materiality.MinBase},
		{EnvMinShareTotal, &cfg.Materiality.MinShareTotal},
	}
	for _, th := range thresholds {
		raw := os.Getenv(th.key)
		if raw == "" {
			continue
		}
		v, err := ParseThreshold(raw)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", th.key, err)
		}
		*th.dst = v
	}

	if theme := os.Getenv(EnvTheme); theme != "" {
		cfg.Appearance.Theme = theme
	}
	return nil
}

// ParseThreshold parses a materiality threshold. "off", "inf" and
// "disabled" turn the rule off.
func ParseThreshold(s string) (float64, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "inf", "+inf", "disabled", "none":
		return model.Disabled, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || v < 0 {
		return 0, fmt.Errorf("threshold %q must be a non-negative number", s)
	}
	return v, nil
}

// Save writes the config to the default path.
func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

// SaveTo writes the config to path.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // user-chosen config path
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// Options returns the normalization options described by the config.
func (c Config) Options() (source.Options, error) {
	sign, err := source.ParseSignMode(c.Analysis.SignMode)
	if err != nil {
		return source.Options{}, err
	}
	decimal, err := source.ParseDecimal(c.Analysis.Decimal)
	if err != nil {
		return source.Options{}, err
	}
	return source.Options{Sign: sign, Decimal: decimal, Lenient: c.Analysis.Lenient}, nil
}
