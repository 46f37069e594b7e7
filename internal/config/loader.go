package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load reads configuration from the specified YAML file and environment variables.
// Environment variables take precedence over file values. An empty path yields
// the defaults plus environment overrides.
// Environment variable format: ADVISOR_<SECTION>_<KEY> (e.g., ADVISOR_SOURCE_TOKEN)
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("ADVISOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}

		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default values for all configuration options.
// Every key is given a default so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	// Advisor defaults
	v.SetDefault("advisor.login_defs_path", "/etc/login.defs")
	v.SetDefault("advisor.metrics_definition_dir", "")

	// Inventory source defaults
	v.SetDefault("source.endpoint", "")
	v.SetDefault("source.token", "")
	v.SetDefault("source.cluster", "")
	v.SetDefault("source.timeout", 30*time.Second)

	// HTTP retry defaults
	v.SetDefault("http.retry.max_retries", 3)
	v.SetDefault("http.retry.base_delay", 1*time.Second)

	// Server defaults
	v.SetDefault("server.listen", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	// Batch defaults
	v.SetDefault("batch.concurrency", 4)

	// Report defaults
	v.SetDefault("report.output_dir", "./reports")
	v.SetDefault("report.formats", []string{"excel", "html"})
	v.SetDefault("report.filename_template", "advisor_report_{{.Date}}")
	v.SetDefault("report.html_template", "")
	v.SetDefault("report.timezone", "Asia/Shanghai")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
