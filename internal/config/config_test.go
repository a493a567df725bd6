package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "annotator.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
data_dir: /srv/smoke
canvas:
  zoom_max: 6
  min_draw_pixels: 4
store:
  backend: redis
  timeout: 3s
  redis:
    addr: redis:6379
    ttl: 72h
review:
  auto_advance: false
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/smoke", cfg.DataDir)
	assert.Equal(t, 6.0, cfg.Canvas.ZoomMax)
	assert.Equal(t, 1.0, cfg.Canvas.ZoomMin, "unset keys keep defaults")
	assert.Equal(t, 4.0, cfg.Canvas.MinDrawPixels)
	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, 3*time.Second, cfg.Store.Timeout)
	assert.Equal(t, "redis:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, 72*time.Hour, cfg.Store.Redis.TTL)
	assert.False(t, cfg.Review.AutoAdvance)
	assert.True(t, cfg.Canvas.ShowPredictions)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("ANNOTATOR_STORE_BACKEND", "redis")
	t.Setenv("ANNOTATOR_CANVAS_UNDO_LIMIT", "20")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, 20, cfg.Canvas.UndoLimit)
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	_, err := Load(writeConfig(t, "store:\n  backend: s3\n"))
	assert.Error(t, err)
}

func TestLoad_MalformedFile(t *testing.T) {
	_, err := Load(writeConfig(t, "canvas: [unclosed\n"))
	assert.Error(t, err)
}

func TestValidate_Clamps(t *testing.T) {
	cfg := &Config{
		Canvas: CanvasConfig{
			ZoomMin:             0.5,
			ZoomMax:             0.8,
			ZoomStep:            -1,
			MinDrawPixels:       -3,
			SimilarityThreshold: 2,
		},
		Store:   StoreConfig{Redis: RedisConfig{TTL: -time.Second}},
		Metrics: MetricsConfig{Enabled: true},
	}
	require.NoError(t, cfg.Validate())

	d := Default()
	assert.Equal(t, d.DataDir, cfg.DataDir)
	assert.Equal(t, 1.0, cfg.Canvas.ZoomMin)
	assert.Equal(t, 1.0, cfg.Canvas.ZoomMax)
	assert.Equal(t, d.Canvas.ZoomStep, cfg.Canvas.ZoomStep)
	assert.Equal(t, d.Canvas.MinDrawPixels, cfg.Canvas.MinDrawPixels)
	assert.Equal(t, d.Canvas.SimilarityThreshold, cfg.Canvas.SimilarityThreshold)
	assert.Equal(t, d.Canvas.UndoLimit, cfg.Canvas.UndoLimit)
	assert.Equal(t, "file", cfg.Store.Backend)
	assert.Equal(t, d.Store.Timeout, cfg.Store.Timeout)
	assert.Zero(t, cfg.Store.Redis.TTL)
	assert.Equal(t, d.Metrics.Addr, cfg.Metrics.Addr)
}

func TestCanvasConfig_ZoomOptions(t *testing.T) {
	opts := Default().Canvas.ZoomOptions()
	assert.Equal(t, 1.0, opts.Min)
	assert.Equal(t, 4.0, opts.Max)
	assert.Equal(t, 0.2, opts.Step)
}
