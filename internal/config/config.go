// Package config loads charitygraph settings. Sources are layered as
// defaults, then an optional YAML file, then CHARITYGRAPH_* environment
// variables, and the result is validated.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"datarepublican/charitygraph/internal/interact"
	"datarepublican/charitygraph/internal/layout"
	"datarepublican/charitygraph/internal/logging"
	"datarepublican/charitygraph/internal/route"
)

// DefaultFile is read when no --config path is given and it exists.
const DefaultFile = "charitygraph.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CHARITYGRAPH_"

type Config struct {
	Server      ServerConfig    `yaml:"server"`
	Log         logging.Config  `yaml:"log"`
	Dataset     DatasetConfig   `yaml:"dataset"`
	Layout      LayoutConfig    `yaml:"layout"`
	View        ViewConfig      `yaml:"view"`
	Interaction interact.Config `yaml:"interaction"`
}

// ServerConfig controls the HTTP host.
type ServerConfig struct {
	Addr            string        `yaml:"addr" validate:"required"`
	CORSOrigins     []string      `yaml:"corsOrigins"`
	ReadTimeout     time.Duration `yaml:"readTimeout" validate:"gte=0"`
	WriteTimeout    time.Duration `yaml:"writeTimeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" validate:"gte=0"`
	FrameInterval   time.Duration `yaml:"frameInterval" validate:"gte=0"`
}

// DatasetConfig names where graph records come from. A dataset file wins
// over the database when both are set.
type DatasetConfig struct {
	Path  string `yaml:"path"`
	DB    string `yaml:"db"`
	Watch bool   `yaml:"watch"`
}

// LayoutConfig selects a strategy and carries the settings of both.
type LayoutConfig struct {
	Strategy   string                  `yaml:"strategy" validate:"oneof=grid simulation"`
	Grid       layout.GridConfig       `yaml:"grid"`
	Simulation layout.SimulationConfig `yaml:"simulation"`
}

// Build returns the configured strategy.
func (c LayoutConfig) Build() (layout.Strategy, error) {
	switch c.Strategy {
	case layout.GridName:
		return layout.NewGrid(c.Grid), nil
	case layout.SimulationName:
		return layout.NewSimulation(c.Simulation), nil
	default:
		return nil, fmt.Errorf("%w: %q", layout.ErrUnknownStrategy, c.Strategy)
	}
}

// ViewConfig tunes the composed scene.
type ViewConfig struct {
	Width     float64 `yaml:"width" validate:"gte=0"`
	Height    float64 `yaml:"height" validate:"gte=0"`
	FitScale  float64 `yaml:"fitScale" validate:"gt=0"`
	ArcFactor float64 `yaml:"arcFactor" validate:"gt=0"`
	WrapWidth int     `yaml:"wrapWidth" validate:"gte=1"`
	Legend    bool    `yaml:"legend"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			FrameInterval:   50 * time.Millisecond,
		},
		Log: logging.DefaultConfig(),
		Layout: LayoutConfig{
			Strategy:   layout.GridName,
			Grid:       layout.DefaultGridConfig(),
			Simulation: layout.DefaultSimulationConfig(),
		},
		View: ViewConfig{
			Width:     1400,
			Height:    1000,
			FitScale:  0.5,
			ArcFactor: route.DefaultArcFactor,
			WrapWidth: 30,
			Legend:    true,
		},
		Interaction: interact.DefaultConfig(),
	}
}

var validate = validator.New()

// Validate checks every section.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		msgs := make([]string, 0, len(verrs))
		for _, e := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s failed %q", strings.TrimPrefix(e.Namespace(), "Config."), e.Tag()))
		}
		return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
	}
	return nil
}

// Load builds the configuration. An empty path reads DefaultFile when it
// exists; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays environment variables. lookup is os.LookupEnv outside
// tests.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}
	var errs []error
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(EnvPrefix + key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = b
		}
	}
	float := func(key string, dst *float64) {
		if v, ok := lookup(EnvPrefix + key); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = f
		}
	}

	str("ADDR", &cfg.Server.Addr)
	if v, ok := lookup(EnvPrefix + "CORS_ORIGINS"); ok {
		cfg.Server.CORSOrigins = splitList(v)
	}
	str("LOG_LEVEL", &cfg.Log.Level)
	boolean("LOG_JSON", &cfg.Log.JSON)
	str("DATASET", &cfg.Dataset.Path)
	str("DB", &cfg.Dataset.DB)
	boolean("WATCH", &cfg.Dataset.Watch)
	str("LAYOUT", &cfg.Layout.Strategy)
	float("VIEW_WIDTH", &cfg.View.Width)
	float("VIEW_HEIGHT", &cfg.View.Height)
	boolean("LEGEND", &cfg.View.Legend)

	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
