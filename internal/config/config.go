// Package config carries the application's root configuration. It is
// loaded once from Viper and read as a singleton everywhere else.
package config

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/spf13/viper"

	"github.com/enricoisidori/threadscape/api/schemas"
)

var (
	instance *Config
	once     sync.Once
)

// Config is the root configuration structure for the entire application.
type Config struct {
	Logger   LoggerConfig   `mapstructure:"logger"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Input    InputConfig    `mapstructure:"input"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Flags    FlagsConfig    `mapstructure:"flags"`
	Output   OutputConfig   `mapstructure:"output"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level"`
	Format      string `mapstructure:"format"`
	AddSource   bool   `mapstructure:"add_source"`
	ServiceName string `mapstructure:"service_name"`
	LogFile     string `mapstructure:"log_file"`
	MaxSize     int    `mapstructure:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups"`
	MaxAge      int    `mapstructure:"max_age"`
	Compress    bool   `mapstructure:"compress"`
}

// PostgresConfig holds settings for the optional run archive.
type PostgresConfig struct {
	URL string `mapstructure:"url"`
}

// EngineConfig holds settings for the batch engine.
type EngineConfig struct {
	QueueSize         int `mapstructure:"queue_size"`
	WorkerConcurrency int `mapstructure:"worker_concurrency"`
}

// InputConfig describes where project documents come from.
type InputConfig struct {
	Dir       string   `mapstructure:"dir"`
	Recursive bool     `mapstructure:"recursive"`
	Ignore    []string `mapstructure:"ignore"`
}

// MetricsConfig carries the two knobs the analyzers read.
type MetricsConfig struct {
	HubThreshold int `mapstructure:"hub_threshold"`
	WeekCap      int `mapstructure:"week_cap"`
}

// Options converts the section into the analyzer parameter struct.
func (m MetricsConfig) Options() schemas.MetricOptions {
	return schemas.MetricOptions{HubThreshold: m.HubThreshold, WeekCap: m.WeekCap}
}

// FlagsConfig holds the plausibility thresholds used only when reporting.
// They never change metric values, only which projects get flagged.
type FlagsConfig struct {
	MaxSpanYears        int `mapstructure:"max_span_years"`
	FutureToleranceDays int `mapstructure:"future_tolerance_days"`
	MinPlausibleYear    int `mapstructure:"min_plausible_year"`
}

// OutputConfig describes where run artifacts are written.
type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

// SetDefaults registers every default on the given Viper instance, before
// flag binding so explicit values always win.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "auto")
	v.SetDefault("logger.service_name", "threadscape")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 28)
	v.SetDefault("engine.queue_size", 64)
	v.SetDefault("engine.worker_concurrency", runtime.NumCPU())
	v.SetDefault("input.dir", ".")
	v.SetDefault("metrics.hub_threshold", schemas.DefaultHubThreshold)
	v.SetDefault("metrics.week_cap", schemas.DefaultWeekCap)
	v.SetDefault("flags.max_span_years", 6)
	v.SetDefault("flags.future_tolerance_days", 30)
	v.SetDefault("flags.min_plausible_year", 2000)
	v.SetDefault("output.dir", "out")
}

// Validate rejects values the engine cannot run with.
func (c *Config) Validate() error {
	if c.Metrics.HubThreshold < 1 {
		return fmt.Errorf("metrics.hub_threshold must be >= 1, got %d", c.Metrics.HubThreshold)
	}
	if c.Metrics.WeekCap < 4 {
		return fmt.Errorf("metrics.week_cap must be >= 4, got %d", c.Metrics.WeekCap)
	}
	if c.Engine.QueueSize < 1 {
		return fmt.Errorf("engine.queue_size must be >= 1, got %d", c.Engine.QueueSize)
	}
	if c.Engine.WorkerConcurrency < 1 {
		return fmt.Errorf("engine.worker_concurrency must be >= 1, got %d", c.Engine.WorkerConcurrency)
	}
	if c.Flags.MinPlausibleYear < 1 {
		return fmt.Errorf("flags.min_plausible_year must be positive, got %d", c.Flags.MinPlausibleYear)
	}
	return nil
}

// Load initializes the configuration singleton from Viper.
func Load(v *viper.Viper) error {
	var loadErr error
	once.Do(func() {
		var cfg Config
		if err := v.Unmarshal(&cfg); err != nil {
			loadErr = fmt.Errorf("error unmarshaling config: %w", err)
			return
		}
		if err := cfg.Validate(); err != nil {
			loadErr = err
			return
		}
		instance = &cfg
	})
	return loadErr
}

// Get returns the loaded configuration instance.
func Get() *Config {
	if instance == nil {
		panic("Configuration not initialized. Call config.Load() in the root command.")
	}
	return instance
}
