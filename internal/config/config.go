// Application configuration loaded from YAML with environment overrides
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"smoke-annotator/internal/coords"
)

// EnvPrefix prefixes environment overrides, e.g. ANNOTATOR_STORE_BACKEND.
const EnvPrefix = "ANNOTATOR"

type Config struct {
	DataDir string        `mapstructure:"data_dir"`
	Canvas  CanvasConfig  `mapstructure:"canvas"`
	Store   StoreConfig   `mapstructure:"store"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Review  ReviewConfig  `mapstructure:"review"`
}

type CanvasConfig struct {
	ZoomMin             float64 `mapstructure:"zoom_min"`
	ZoomMax             float64 `mapstructure:"zoom_max"`
	ZoomStep            float64 `mapstructure:"zoom_step"`
	MinDrawPixels       float64 `mapstructure:"min_draw_pixels"`
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
	UndoLimit           int     `mapstructure:"undo_limit"`
	ShowPredictions     bool    `mapstructure:"show_predictions"`
}

type StoreConfig struct {
	Backend string        `mapstructure:"backend"`
	Timeout time.Duration `mapstructure:"timeout"`
	Redis   RedisConfig   `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

type ReviewConfig struct {
	AutoAdvance bool `mapstructure:"auto_advance"`
}

// ZoomOptions converts the canvas section for the viewport.
func (c CanvasConfig) ZoomOptions() coords.ZoomOptions {
	return coords.ZoomOptions{Min: c.ZoomMin, Max: c.ZoomMax, Step: c.ZoomStep}
}

// Load reads the YAML file at path. A missing file is not an error: defaults
// and environment overrides still apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("data_dir", d.DataDir)

	v.SetDefault("canvas.zoom_min", d.Canvas.ZoomMin)
	v.SetDefault("canvas.zoom_max", d.Canvas.ZoomMax)
	v.SetDefault("canvas.zoom_step", d.Canvas.ZoomStep)
	v.SetDefault("canvas.min_draw_pixels", d.Canvas.MinDrawPixels)
	v.SetDefault("canvas.similarity_threshold", d.Canvas.SimilarityThreshold)
	v.SetDefault("canvas.undo_limit", d.Canvas.UndoLimit)
	v.SetDefault("canvas.show_predictions", d.Canvas.ShowPredictions)

	v.SetDefault("store.backend", d.Store.Backend)
	v.SetDefault("store.timeout", d.Store.Timeout)
	v.SetDefault("store.redis.addr", d.Store.Redis.Addr)
	v.SetDefault("store.redis.password", d.Store.Redis.Password)
	v.SetDefault("store.redis.db", d.Store.Redis.DB)
	v.SetDefault("store.redis.ttl", d.Store.Redis.TTL)

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.addr", d.Metrics.Addr)

	v.SetDefault("review.auto_advance", d.Review.AutoAdvance)
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DataDir: "./data",
		Canvas: CanvasConfig{
			ZoomMin:             1,
			ZoomMax:             4,
			ZoomStep:            0.2,
			MinDrawPixels:       10,
			SimilarityThreshold: 0.05,
			UndoLimit:           50,
			ShowPredictions:     true,
		},
		Store: StoreConfig{
			Backend: "file",
			Timeout: 10 * time.Second,
			Redis: RedisConfig{
				Addr: "localhost:6379",
				DB:   0,
				TTL:  0,
			},
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    "127.0.0.1:9464",
		},
		Review: ReviewConfig{
			AutoAdvance: true,
		},
	}
}

// Validate clamps values to safe ranges and rejects what cannot be fixed.
func (c *Config) Validate() error {
	d := Default()

	if c.DataDir == "" {
		c.DataDir = d.DataDir
	}

	cv := &c.Canvas
	if cv.ZoomMin < 1 {
		cv.ZoomMin = 1
	}
	if cv.ZoomMax < cv.ZoomMin {
		cv.ZoomMax = cv.ZoomMin
	}
	if cv.ZoomStep <= 0 {
		cv.ZoomStep = d.Canvas.ZoomStep
	}
	if cv.MinDrawPixels < 0 {
		cv.MinDrawPixels = d.Canvas.MinDrawPixels
	}
	if cv.SimilarityThreshold <= 0 || cv.SimilarityThreshold >= 1 {
		cv.SimilarityThreshold = d.Canvas.SimilarityThreshold
	}
	if cv.UndoLimit <= 0 {
		cv.UndoLimit = d.Canvas.UndoLimit
	}

	switch c.Store.Backend {
	case "file", "redis":
	case "":
		c.Store.Backend = d.Store.Backend
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Store.Timeout <= 0 {
		c.Store.Timeout = d.Store.Timeout
	}
	if c.Store.Redis.TTL < 0 {
		c.Store.Redis.TTL = 0
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		c.Metrics.Addr = d.Metrics.Addr
	}
	return nil
}
