// Package config loads clinreason settings: built-in defaults, then an
// optional YAML file, then CLINREASON_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/clinreason/internal/classifier"
	"github.com/abhisek/clinreason/internal/compare"
	"github.com/abhisek/clinreason/internal/layout"
	"github.com/abhisek/clinreason/internal/live"
	"github.com/abhisek/clinreason/internal/llm"
	"github.com/abhisek/clinreason/internal/validate"
)

type Config struct {
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Layout    LayoutConfig    `yaml:"layout"`
	Compare   CompareConfig   `yaml:"compare"`
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Cases     CasesConfig     `yaml:"cases"`
	LLM       llm.Config      `yaml:"llm"`

	Classifier classifier.Config `yaml:"classifier"`
}

// SchedulerConfig drives live regeneration.
type SchedulerConfig struct {
	Interval        time.Duration `yaml:"interval" validate:"gt=0"`
	MinDelta        int           `yaml:"min_delta" validate:"gte=1"`
	MinManualLength int           `yaml:"min_manual_length" validate:"gte=1"`
}

type LayoutConfig struct {
	Horizontal float64 `yaml:"horizontal" validate:"gt=0"`
	Vertical   float64 `yaml:"vertical" validate:"gt=0"`
	CenterX    float64 `yaml:"center_x"`
	CacheSize  int     `yaml:"cache_size" validate:"gte=0"`
}

// Spacing converts to the layout engine's spacing.
func (l LayoutConfig) Spacing() layout.Spacing {
	return layout.Spacing{Horizontal: l.Horizontal, Vertical: l.Vertical, CenterX: l.CenterX}
}

type CompareConfig struct {
	Threshold float64 `yaml:"threshold" validate:"gt=0,lte=1"`
}

type ServerConfig struct {
	Addr           string   `yaml:"addr" validate:"required"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=console json"`
}

// CasesConfig points at extra case files; the built-in library is
// always loaded.
type CasesConfig struct {
	Dir string `yaml:"dir"`
}

// Default returns the built-in settings.
func Default() *Config {
	sp := layout.DefaultSpacing()
	return &Config{
		Scheduler: SchedulerConfig{
			Interval:        live.DefaultInterval,
			MinDelta:        live.DefaultMinDelta,
			MinManualLength: live.DefaultMinManualLength,
		},
		Layout: LayoutConfig{
			Horizontal: sp.Horizontal,
			Vertical:   sp.Vertical,
			CenterX:    sp.CenterX,
			CacheSize:  layout.DefaultCacheSize,
		},
		Compare: CompareConfig{Threshold: compare.DefaultThreshold},
		Server:  ServerConfig{Addr: ":8080"},
		Log:     LogConfig{Level: "info", Format: "console"},
		LLM:     llm.DefaultConfig(),

		Classifier: classifier.DefaultConfig(),
	}
}

// Load reads path (if non-empty) over the defaults, applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := cfg.decode(data); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := ApplyEnv(cfg, os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ApplyEnv overrides cfg from CLINREASON_* variables. Malformed numbers
// and durations are errors.
func ApplyEnv(cfg *Config, getenv func(string) string) error {
	lookup := func(name string) (string, bool) {
		v := getenv(llm.EnvPrefix + name)
		return v, v != ""
	}

	if v, ok := lookup("INTERVAL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sINTERVAL: %w", llm.EnvPrefix, err)
		}
		cfg.Scheduler.Interval = d
	}
	ints := []struct {
		name string
		dst  *int
	}{
		{"MIN_DELTA", &cfg.Scheduler.MinDelta},
		{"MIN_MANUAL_LENGTH", &cfg.Scheduler.MinManualLength},
		{"LAYOUT_CACHE_SIZE", &cfg.Layout.CacheSize},
	}
	for _, e := range ints {
		if v, ok := lookup(e.name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", llm.EnvPrefix, e.name, err)
			}
			*e.dst = n
		}
	}
	if v, ok := lookup("THRESHOLD"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sTHRESHOLD: %w", llm.EnvPrefix, err)
		}
		cfg.Compare.Threshold = f
	}
	strs := []struct {
		name string
		dst  *string
	}{
		{"ADDR", &cfg.Server.Addr},
		{"LOG_LEVEL", &cfg.Log.Level},
		{"LOG_FORMAT", &cfg.Log.Format},
		{"CASES_DIR", &cfg.Cases.Dir},
		{"LIVE_MODEL", &cfg.Classifier.LiveModel},
		{"ANALYSIS_MODEL", &cfg.Classifier.AnalysisModel},
	}
	for _, e := range strs {
		if v, ok := lookup(e.name); ok {
			*e.dst = v
		}
	}

	llm.ApplyEnv(&cfg.LLM, getenv)
	return nil
}

// LoadDotEnv loads KEY=value files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}
