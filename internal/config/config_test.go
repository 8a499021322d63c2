package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datarepublican/charitygraph/internal/layout"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

func TestDefault_Valid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0.2, cfg.Interaction.MinZoom)
	assert.Equal(t, 2.0, cfg.Interaction.MaxZoom)
	assert.Equal(t, time.Second, cfg.Interaction.SettleDelay)
	assert.Equal(t, 4, cfg.Layout.Grid.Columns)

	s, err := cfg.Layout.Build()
	require.NoError(t, err)
	assert.Equal(t, layout.GridName, s.Name())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
layout:
  strategy: simulation
  simulation:
    maxIterations: 50
interaction:
  settleDelay: 250ms
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 250*time.Millisecond, cfg.Interaction.SettleDelay)
	assert.Equal(t, 2.0, cfg.Interaction.MaxZoom, "unset keys keep defaults")
	assert.Equal(t, 50, cfg.Layout.Simulation.MaxIterations)
	assert.Equal(t, 320.0, cfg.Layout.Simulation.LinkDistance)

	s, err := cfg.Layout.Build()
	require.NoError(t, err)
	assert.Equal(t, layout.SimulationName, s.Name())
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_InvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("layout:\n  strategy: spiral\ninteraction:\n  minZoom: 3\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Layout.Strategy")
	assert.Contains(t, err.Error(), "Interaction.MaxZoom")
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := applyEnv(cfg, env(map[string]string{
		"CHARITYGRAPH_ADDR":         "127.0.0.1:7000",
		"CHARITYGRAPH_CORS_ORIGINS": "http://a.test, ,http://b.test",
		"CHARITYGRAPH_LOG_JSON":     "true",
		"CHARITYGRAPH_LAYOUT":       "simulation",
		"CHARITYGRAPH_VIEW_WIDTH":   "1920",
		"CHARITYGRAPH_DB":           "/tmp/cg.db",
	}))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", cfg.Server.Addr)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
	assert.True(t, cfg.Log.JSON)
	assert.Equal(t, "simulation", cfg.Layout.Strategy)
	assert.Equal(t, 1920.0, cfg.View.Width)
	assert.Equal(t, "/tmp/cg.db", cfg.Dataset.DB)
}

func TestApplyEnv_BadValues(t *testing.T) {
	err := applyEnv(Default(), env(map[string]string{
		"CHARITYGRAPH_WATCH":      "sometimes",
		"CHARITYGRAPH_VIEW_WIDTH": "wide",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CHARITYGRAPH_WATCH")
	assert.Contains(t, err.Error(), "CHARITYGRAPH_VIEW_WIDTH")
}

func TestLayoutBuild_Unknown(t *testing.T) {
	_, err := LayoutConfig{Strategy: "spiral"}.Build()
	assert.ErrorIs(t, err, layout.ErrUnknownStrategy)
}
