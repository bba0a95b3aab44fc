package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/danielpatrickdp/xp-complexity/go-generator/internal/oracle"
	"github.com/danielpatrickdp/xp-complexity/go-generator/internal/schedule"
	"github.com/danielpatrickdp/xp-complexity/go-generator/internal/thermal"
	"gopkg.in/yaml.v3"
)

// #region types

// Config holds every setting of a generation run.
type Config struct {
	Dataset  DatasetConfig  `yaml:"dataset"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Run      RunConfig      `yaml:"run"`

	// Oracles
	Generator oracle.EndpointConfig `yaml:"generator"`
	Judge     oracle.EndpointConfig `yaml:"judge"`
	Prompt    PromptConfig          `yaml:"prompt"`

	Thermal ThermalConfig `yaml:"thermal"`
	Journal JournalConfig `yaml:"journal"`
	Logging LoggingConfig `yaml:"logging"`
}

// DatasetConfig locates the CSV file.
type DatasetConfig struct {
	Dir  string `yaml:"dir"`
	Name string `yaml:"name"` // ".csv" is appended when there is no extension
}

// ScheduleConfig selects the target complexity schedule.
type ScheduleConfig struct {
	Mode string `yaml:"mode"` // random | ramp
	Min  int    `yaml:"min"`
	Max  int    `yaml:"max"`
}

// RunConfig bounds one run.
type RunConfig struct {
	Quota      int           `yaml:"quota"`
	PauseEvery int           `yaml:"pause_every"`
	PauseFor   time.Duration `yaml:"pause_for"`
	MaxCycles  int           `yaml:"max_cycles"`
	MinTokens  int           `yaml:"min_tokens"`
}

// PromptConfig overrides prompt content. Empty lists keep the built-in ones.
type PromptConfig struct {
	Categories   []string `yaml:"categories,omitempty"`
	BannedTopics []string `yaml:"banned_topics,omitempty"`
	Rubric       []string `yaml:"rubric,omitempty"`
}

// ThermalConfig selects the sensor and hysteresis marks.
type ThermalConfig struct {
	Sensor       string        `yaml:"sensor"` // nvidia-smi | hwmon | none
	Device       int           `yaml:"device"`
	HwmonPath    string        `yaml:"hwmon_path"`
	HighWater    int           `yaml:"high_water"`
	LowWater     int           `yaml:"low_water"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// JournalConfig configures the SQLite run journal.
type JournalConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// #endregion types

// #region defaults

// DefaultConfig returns a single-workstation setup: a local
// LM Studio server for both oracles, GPU 0, 78/60°C marks.
func DefaultConfig() *Config {
	judge := oracle.DefaultEndpointConfig()
	judge.Temperature = oracle.DefaultJudgeTemperature
	th := thermal.DefaultConfig()

	return &Config{
		Dataset: DatasetConfig{
			Dir:  "dataset",
			Name: "new_dataset.csv",
		},
		Schedule: ScheduleConfig{
			Mode: string(schedule.ModeRandom),
			Min:  schedule.MinComplexity,
			Max:  schedule.MaxComplexity,
		},
		Run: RunConfig{
			MinTokens: 3,
		},
		Generator: oracle.DefaultEndpointConfig(),
		Judge:     judge,
		Thermal: ThermalConfig{
			Sensor:       "nvidia-smi",
			HighWater:    th.HighWater,
			LowWater:     th.LowWater,
			PollInterval: th.PollInterval,
		},
		Journal: JournalConfig{
			Enabled: true,
			Path:    filepath.Join("dataset", "journal.db"),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// #endregion defaults

// #region load-save

// Load reads a YAML file over the defaults and applies environment overrides.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// #endregion load-save

// #region env

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	// API keys go to every endpoint of the matching provider.
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.setKey(oracle.ProviderOpenAI, key)
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.setKey(oracle.ProviderGemini, key)
	}

	if url := os.Getenv("ACTIONGEN_BASE_URL"); url != "" {
		c.Generator.BaseURL = url
		c.Judge.BaseURL = url
	}
	if url := os.Getenv("ACTIONGEN_GENERATOR_URL"); url != "" {
		c.Generator.BaseURL = url
	}
	if url := os.Getenv("ACTIONGEN_JUDGE_URL"); url != "" {
		c.Judge.BaseURL = url
	}
	if model := os.Getenv("ACTIONGEN_MODEL"); model != "" {
		c.Generator.Model = model
		c.Judge.Model = model
	}

	if dir := os.Getenv("ACTIONGEN_DATASET_DIR"); dir != "" {
		c.Dataset.Dir = dir
	}
	if sensor := os.Getenv("ACTIONGEN_SENSOR"); sensor != "" {
		c.Thermal.Sensor = sensor
	}
	if dev := os.Getenv("ACTIONGEN_GPU_INDEX"); dev != "" {
		if n, err := strconv.Atoi(dev); err == nil {
			c.Thermal.Device = n
		}
	}
	if path := os.Getenv("ACTIONGEN_JOURNAL"); path != "" {
		c.Journal.Path = path
	}
	if level := os.Getenv("ACTIONGEN_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

func (c *Config) setKey(p oracle.Provider, key string) {
	if c.Generator.Provider == p {
		c.Generator.APIKey = key
	}
	if c.Judge.Provider == p {
		c.Judge.APIKey = key
	}
}

// #endregion env

// #region derived

// DatasetPath joins the dataset directory and file name.
func (c *Config) DatasetPath() string {
	name := c.Dataset.Name
	if filepath.Ext(name) == "" {
		name += ".csv"
	}
	return filepath.Join(c.Dataset.Dir, name)
}

// ThermalSettings converts the thermal section for the governor.
func (c *Config) ThermalSettings() thermal.Config {
	return thermal.Config{
		HighWater:    c.Thermal.HighWater,
		LowWater:     c.Thermal.LowWater,
		PollInterval: c.Thermal.PollInterval,
	}
}

// Categories returns the configured categories or the built-in list.
func (c *Config) Categories() []string {
	if len(c.Prompt.Categories) > 0 {
		return c.Prompt.Categories
	}
	return oracle.DefaultCategories
}

// GeneratorSettings builds the generator prompt settings.
func (c *Config) GeneratorSettings() oracle.GeneratorConfig {
	gc := oracle.DefaultGeneratorConfig()
	gc.Temperature = c.Generator.Temperature
	if len(c.Prompt.Rubric) > 0 {
		gc.Rubric = oracle.Rubric(c.Prompt.Rubric)
	}
	if len(c.Prompt.BannedTopics) > 0 {
		gc.BannedTopics = c.Prompt.BannedTopics
	}
	return gc
}

// Rubric returns the configured rubric or the built-in one.
func (c *Config) Rubric() oracle.Rubric {
	if len(c.Prompt.Rubric) > 0 {
		return oracle.Rubric(c.Prompt.Rubric)
	}
	return oracle.DefaultRubric
}

// #endregion derived

// #region validate

// ValidProviders lists the supported oracle backends.
var ValidProviders = []oracle.Provider{oracle.ProviderOpenAI, oracle.ProviderGemini, oracle.ProviderGRPC}

// Validate checks the configuration before a run.
func (c *Config) Validate() error {
	if c.Dataset.Name == "" {
		return fmt.Errorf("dataset name is empty")
	}
	if _, err := schedule.ParseMode(c.Schedule.Mode); err != nil {
		return err
	}
	if c.Schedule.Min < schedule.MinComplexity || c.Schedule.Max > schedule.MaxComplexity || c.Schedule.Min > c.Schedule.Max {
		return fmt.Errorf("invalid complexity bounds [%d, %d]: want %d <= min <= max <= %d",
			c.Schedule.Min, c.Schedule.Max, schedule.MinComplexity, schedule.MaxComplexity)
	}
	if c.Run.Quota < 0 {
		return fmt.Errorf("quota must not be negative, got %d", c.Run.Quota)
	}
	if c.Run.PauseEvery < 0 || c.Run.PauseFor < 0 || c.Run.MaxCycles < 0 {
		return fmt.Errorf("pause and cycle limits must not be negative")
	}

	for name, ep := range map[string]oracle.EndpointConfig{"generator": c.Generator, "judge": c.Judge} {
		if !validProvider(ep.Provider) {
			return fmt.Errorf("invalid %s provider: %s (valid: %v)", name, ep.Provider, ValidProviders)
		}
		if ep.Provider == oracle.ProviderGemini && ep.APIKey == "" {
			return fmt.Errorf("%s: gemini API key not configured (set GEMINI_API_KEY)", name)
		}
		if ep.Provider != oracle.ProviderGemini && ep.BaseURL == "" {
			return fmt.Errorf("%s: base_url is empty", name)
		}
	}

	if c.Thermal.LowWater > c.Thermal.HighWater {
		return fmt.Errorf("thermal low_water %d above high_water %d", c.Thermal.LowWater, c.Thermal.HighWater)
	}
	if c.Thermal.PollInterval <= 0 {
		return fmt.Errorf("thermal poll_interval must be positive")
	}
	if c.Journal.Enabled && c.Journal.Path == "" {
		return fmt.Errorf("journal enabled without a path")
	}
	return nil
}

func validProvider(p oracle.Provider) bool {
	for _, v := range ValidProviders {
		if p == v {
			return true
		}
	}
	return false
}

// #endregion validate
