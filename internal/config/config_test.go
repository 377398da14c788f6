package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "classic", cfg.Model)
	assert.Equal(t, 40, cfg.Horizon)
	assert.NoError(t, cfg.Check())

	params, err := cfg.Params()
	require.NoError(t, err)
	assert.InDelta(t, 1.0/7138, params["beta"], 1e-15)
	assert.Equal(t, 0.4, params["k"])
}

func TestExprEval(t *testing.T) {
	pop := Population{N: 275, I0: 1, R0: 8}

	tests := []struct {
		expr     Expr
		expected float64
	}{
		{"0.004", 0.004},
		{" 5 ", 5},
		{"1.0 / N", 1.0 / 275},
		{"2.0 * I0 / (N - R0)", 2.0 / 267},
		{"R0 + I0", 9},
	}

	for _, tt := range tests {
		v, err := tt.expr.Eval(pop)
		require.NoError(t, err, string(tt.expr))
		assert.InDelta(t, tt.expected, v, 1e-12, string(tt.expr))
	}
}

func TestExprEval_Errors(t *testing.T) {
	pop := Population{N: 100}

	for _, expr := range []Expr{"", "1.0 / M", "N > 1.0", "1.0 +"} {
		_, err := expr.Eval(pop)
		assert.Error(t, err, "expected error for %q", string(expr))
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rumor.yaml")
	data := `model: rumor
horizon: 15
population:
  n: 275
  i0: 1
  r0: 8
rates:
  b: 0.004
  k: "0.02 / 2.0"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "rumor", cfg.Model)
	assert.Equal(t, "euler", cfg.Integrator)
	assert.Equal(t, Population{N: 275, I0: 1, R0: 8}, cfg.Population)
	assert.Equal(t, []string{"b", "k"}, cfg.RateNames())

	params, err := cfg.Params()
	require.NoError(t, err)
	assert.Equal(t, 0.004, params["b"])
	assert.InDelta(t, 0.01, params["k"], 1e-15)
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cult.toml")
	data := `model = "extended"
horizon = 40

[population]
n = 7138.0
i0 = 10.0

[rates]
beta = 0.00014
gamma = "0.4"
alpha = 0
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "extended", cfg.Model)
	assert.Equal(t, 7138.0, cfg.Population.N)

	params, err := cfg.Params()
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"alpha": 0, "beta": 0.00014, "gamma": 0.4}, params)
}

func TestLoad_RejectsNegativeHorizon(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model: classic\nhorizon: -3\n"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingHorizonIsZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rumor.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model: rumor\nrates:\n  b: 0.004\n  k: 0.01\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Zero(t, cfg.Horizon)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSaveLoadKeepsExpressions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	cfg := GetPreset("classic", "swine_flu")
	require.NotNil(t, cfg)

	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, Expr("1.0 / N"), loaded.Rates["beta"])
	assert.Equal(t, cfg.Population, loaded.Population)
	assert.Equal(t, cfg.Horizon, loaded.Horizon)
}

func TestExprJSON(t *testing.T) {
	var cfg Config
	body := `{"model":"classic","population":{"n":100,"i0":1},"rates":{"beta":"1.0 / N","k":0.5}}`
	require.NoError(t, json.Unmarshal([]byte(body), &cfg))

	assert.Equal(t, Expr("1.0 / N"), cfg.Rates["beta"])
	assert.Equal(t, Expr("0.5"), cfg.Rates["k"])

	out, err := json.Marshal(cfg.Rates)
	require.NoError(t, err)
	assert.JSONEq(t, `{"beta":"1.0 / N","k":0.5}`, string(out))
}

func TestSetRate(t *testing.T) {
	cfg := &Config{Model: "classic"}
	cfg.SetRate("k", 0.25)

	params, err := cfg.Params()
	require.NoError(t, err)
	assert.Equal(t, 0.25, params["k"])
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("rumor", "exam_cancel")
	require.NotNil(t, cfg)
	assert.Equal(t, Population{N: 275, I0: 1, R0: 8}, cfg.Population)
	assert.Equal(t, 15, cfg.Horizon)
}

func TestGetPreset_ReturnsCopy(t *testing.T) {
	cfg := GetPreset("classic", "swine_flu")
	require.NotNil(t, cfg)
	cfg.SetRate("k", 9)

	again := GetPreset("classic", "swine_flu")
	assert.Equal(t, Expr("0.4"), again.Rates["k"])
}

func TestGetPreset_NotFound(t *testing.T) {
	assert.Nil(t, GetPreset("classic", "nonexistent"))
	assert.Nil(t, GetPreset("nonexistent", "swine_flu"))
}

func TestListPresets(t *testing.T) {
	assert.Equal(t, []string{"contained", "slow_recovery", "swine_flu"}, ListPresets("classic"))
	assert.Nil(t, ListPresets("nonexistent"))

	for model := range Presets {
		assert.NotNil(t, GetPreset(model, DefaultPreset(model)), model)
	}
}

func TestPresetsEvaluate(t *testing.T) {
	for model, presets := range Presets {
		for name, cfg := range presets {
			assert.Equal(t, model, cfg.Model, name)
			assert.NoError(t, cfg.Check(), name)
			_, err := cfg.Params()
			assert.NoError(t, err, "%s/%s", model, name)
		}
	}
}
