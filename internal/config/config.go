// Package config defines the application configuration and its viper
// bindings. Policy tables of the analysis engine (banned calls, client
// methods, await allow-list) are fixed compile-time policy and are
// deliberately absent here.
package config

import (
	"runtime"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger LoggerConfig `mapstructure:"logger" yaml:"logger"`
	Engine EngineConfig `mapstructure:"engine" yaml:"engine"`
	Check  CheckConfig  `mapstructure:"check" yaml:"check"`
}

// LoggerConfig configures the global zap logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// EngineConfig configures the per-file analysis fan-out.
type EngineConfig struct {
	WorkerConcurrency int `mapstructure:"worker_concurrency" yaml:"worker_concurrency"`
}

// CheckConfig configures the check command.
type CheckConfig struct {
	Format     string   `mapstructure:"format" yaml:"format"`
	Output     string   `mapstructure:"output" yaml:"output"`
	Extensions []string `mapstructure:"extensions" yaml:"extensions"`
	// ExitZero suppresses the non-zero exit status normally produced
	// when findings are reported.
	ExitZero bool `mapstructure:"exit_zero" yaml:"exit_zero"`
}

// SetDefaults registers the default configuration values with viper.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "wflint")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 28)
	v.SetDefault("engine.worker_concurrency", runtime.NumCPU())
	v.SetDefault("check.format", "text")
	v.SetDefault("check.output", "")
	v.SetDefault("check.extensions", []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs"})
}
