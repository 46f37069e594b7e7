// Package config provides configuration management for the stack advisor.
package config

import "time"

// Config is the root configuration structure for the stack advisor.
type Config struct {
	Advisor AdvisorConfig `mapstructure:"advisor"`
	Source  SourceConfig  `mapstructure:"source"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Server  ServerConfig  `mapstructure:"server"`
	Batch   BatchConfig   `mapstructure:"batch"`
	Report  ReportConfig  `mapstructure:"report"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// AdvisorConfig contains settings of the recommendation engine.
type AdvisorConfig struct {
	LoginDefsPath        string `mapstructure:"login_defs_path"`        // UID_MIN 策略文件
	MetricsDefinitionDir string `mapstructure:"metrics_definition_dir"` // 指标定义目录（拆分点计算）
}

// SourceConfig describes the inventory service requests are fetched from.
// An empty endpoint means requests are read from local files only.
type SourceConfig struct {
	Endpoint string        `mapstructure:"endpoint" validate:"omitempty,url"`
	Token    string        `mapstructure:"token"`
	Cluster  string        `mapstructure:"cluster"` // Default cluster name
	Timeout  time.Duration `mapstructure:"timeout"`
}

// HTTPConfig contains HTTP client configurations including retry settings.
type HTTPConfig struct {
	Retry RetryConfig `mapstructure:"retry"`
}

// RetryConfig defines retry behavior for HTTP requests.
type RetryConfig struct {
	MaxRetries int           `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	BaseDelay  time.Duration `mapstructure:"base_delay"`
}

// ServerConfig contains settings of the HTTP API.
type ServerConfig struct {
	Listen       string        `mapstructure:"listen" validate:"required"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// BatchConfig controls the batch validation command.
type BatchConfig struct {
	Concurrency int `mapstructure:"concurrency" validate:"gte=1,lte=100"`
}

// ReportConfig contains configurations for report generation.
type ReportConfig struct {
	OutputDir        string   `mapstructure:"output_dir"`
	Formats          []string `mapstructure:"formats" validate:"dive,oneof=excel html"`
	FilenameTemplate string   `mapstructure:"filename_template"`
	HTMLTemplate     string   `mapstructure:"html_template"`
	Timezone         string   `mapstructure:"timezone"`
}

// LoggingConfig contains configurations for logging.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}
