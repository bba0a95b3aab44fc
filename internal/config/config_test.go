package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielpatrickdp/xp-complexity/go-generator/internal/oracle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, filepath.Join("dataset", "new_dataset.csv"), cfg.DatasetPath())
	assert.Equal(t, "random", cfg.Schedule.Mode)
	assert.Equal(t, 0, cfg.Schedule.Min)
	assert.Equal(t, 10, cfg.Schedule.Max)
	assert.Equal(t, 0.9, cfg.Generator.Temperature)
	assert.Equal(t, 0.0, cfg.Judge.Temperature)
	assert.Equal(t, "local-model", cfg.Judge.Model)
	assert.Equal(t, 78, cfg.Thermal.HighWater)
	assert.Equal(t, 60, cfg.Thermal.LowWater)
	assert.Equal(t, 5*time.Second, cfg.Thermal.PollInterval)
	assert.Equal(t, 3, cfg.Run.MinTokens)
	require.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Dataset, cfg.Dataset)
}

func TestLoad_YAMLOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "actiongen.yaml")
	data := `
dataset:
  name: craft
schedule:
  mode: ramp
  min: 2
  max: 8
run:
  quota: 500
  pause_every: 50
  pause_for: 30s
judge:
  provider: grpc
  base_url: localhost:50051
thermal:
  sensor: hwmon
  hwmon_path: /sys/class/hwmon/hwmon1/temp1_input
  poll_interval: 2s
prompt:
  categories: [столярное дело, шахматы]
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("dataset", "craft.csv"), cfg.DatasetPath())
	assert.Equal(t, "ramp", cfg.Schedule.Mode)
	assert.Equal(t, 500, cfg.Run.Quota)
	assert.Equal(t, 30*time.Second, cfg.Run.PauseFor)
	assert.Equal(t, oracle.ProviderGRPC, cfg.Judge.Provider)
	assert.Equal(t, "localhost:50051", cfg.Judge.BaseURL)
	// Untouched keys keep their defaults.
	assert.Equal(t, "local-model", cfg.Judge.Model)
	assert.Equal(t, oracle.ProviderOpenAI, cfg.Generator.Provider)
	assert.Equal(t, 78, cfg.Thermal.HighWater)
	assert.Equal(t, 2*time.Second, cfg.Thermal.PollInterval)
	assert.Equal(t, []string{"столярное дело", "шахматы"}, cfg.Categories())
	require.NoError(t, cfg.Validate())
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("run: [unterminated"), 0644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "actiongen.yaml")
	cfg := DefaultConfig()
	cfg.Run.Quota = 42
	cfg.Prompt.BannedTopics = []string{"котята"}
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 42, loaded.Run.Quota)
	assert.Equal(t, []string{"котята"}, loaded.GeneratorSettings().BannedTopics)
}

func TestEnvOverrides(t *testing.T) {
	t.Run("OPENAI_API_KEY only reaches openai endpoints", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "oa-key")

		cfg := DefaultConfig()
		cfg.Judge.Provider = oracle.ProviderGRPC
		cfg.applyEnvOverrides()

		assert.Equal(t, "oa-key", cfg.Generator.APIKey)
		assert.Equal(t, "lm-studio", cfg.Judge.APIKey)
	})

	t.Run("GEMINI_API_KEY", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "gm-key")

		cfg := DefaultConfig()
		cfg.Generator.Provider = oracle.ProviderGemini
		cfg.Judge.Provider = oracle.ProviderGemini
		cfg.applyEnvOverrides()

		assert.Equal(t, "gm-key", cfg.Generator.APIKey)
		assert.Equal(t, "gm-key", cfg.Judge.APIKey)
	})

	t.Run("specific URL wins over shared URL", func(t *testing.T) {
		t.Setenv("ACTIONGEN_BASE_URL", "http://10.14.0.2:1234/v1")
		t.Setenv("ACTIONGEN_JUDGE_URL", "http://10.14.0.3:1234/v1")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "http://10.14.0.2:1234/v1", cfg.Generator.BaseURL)
		assert.Equal(t, "http://10.14.0.3:1234/v1", cfg.Judge.BaseURL)
	})

	t.Run("paths sensor and level", func(t *testing.T) {
		t.Setenv("ACTIONGEN_DATASET_DIR", "/data/xp")
		t.Setenv("ACTIONGEN_SENSOR", "none")
		t.Setenv("ACTIONGEN_GPU_INDEX", "1")
		t.Setenv("ACTIONGEN_JOURNAL", "/data/xp/journal.db")
		t.Setenv("ACTIONGEN_LOG_LEVEL", "debug")
		t.Setenv("ACTIONGEN_MODEL", "qwen2.5-7b-instruct")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, filepath.Join("/data/xp", "new_dataset.csv"), cfg.DatasetPath())
		assert.Equal(t, "none", cfg.Thermal.Sensor)
		assert.Equal(t, 1, cfg.Thermal.Device)
		assert.Equal(t, "/data/xp/journal.db", cfg.Journal.Path)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, "qwen2.5-7b-instruct", cfg.Generator.Model)
		assert.Equal(t, "qwen2.5-7b-instruct", cfg.Judge.Model)
	})

	t.Run("bad GPU index is ignored", func(t *testing.T) {
		t.Setenv("ACTIONGEN_GPU_INDEX", "first")
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, 0, cfg.Thermal.Device)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty dataset name", func(c *Config) { c.Dataset.Name = "" }},
		{"unknown mode", func(c *Config) { c.Schedule.Mode = "spiral" }},
		{"min above max", func(c *Config) { c.Schedule.Min, c.Schedule.Max = 7, 3 }},
		{"max above scale", func(c *Config) { c.Schedule.Max = 11 }},
		{"negative quota", func(c *Config) { c.Run.Quota = -1 }},
		{"negative pause", func(c *Config) { c.Run.PauseFor = -time.Second }},
		{"unknown provider", func(c *Config) { c.Judge.Provider = "telepathy" }},
		{"gemini without key", func(c *Config) { c.Generator.Provider = oracle.ProviderGemini; c.Generator.APIKey = "" }},
		{"empty base url", func(c *Config) { c.Generator.BaseURL = "" }},
		{"inverted marks", func(c *Config) { c.Thermal.LowWater = 90 }},
		{"zero poll", func(c *Config) { c.Thermal.PollInterval = 0 }},
		{"journal without path", func(c *Config) { c.Journal.Path = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	t.Run("mode aliases", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Schedule.Mode = "0"
		assert.NoError(t, cfg.Validate())
	})
}

func TestDerivedSettings(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, oracle.DefaultCategories, cfg.Categories())
	assert.Equal(t, oracle.DefaultRubric, cfg.Rubric())

	cfg.Prompt.Rubric = []string{"легко", "трудно"}
	assert.Len(t, cfg.Rubric(), 2)
	assert.Len(t, cfg.GeneratorSettings().Rubric, 2)

	th := cfg.ThermalSettings()
	assert.Equal(t, 78, th.HighWater)
	assert.Equal(t, 60, th.LowWater)
}
