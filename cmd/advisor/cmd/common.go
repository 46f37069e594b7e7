package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"stack-advisor/internal/advisor"
	"stack-advisor/internal/client/inventory"
	"stack-advisor/internal/config"
	"stack-advisor/internal/model"
	"stack-advisor/internal/report"
)

// Shared input and report flags
var (
	requestPath string   // Request file path
	clusterName string   // Cluster name fetched from the inventory API
	outputDir   string   // Output directory for reports
	formats     []string // Output formats (excel, html)
)

// bootstrap loads the configuration and builds the root logger.
// The --log-level flag overrides the config file.
func bootstrap() (*config.Config, zerolog.Logger) {
	configPath := GetConfigFile()
	cfg, err := config.Load(configPath)
	if err != nil {
		tmpLogger := setupLogger("error", "console")
		tmpLogger.Error().Err(err).Str("path", configPath).Msg("failed to load config")
		fmt.Fprintf(os.Stderr, "❌ 加载配置失败: %v\n", err)
		os.Exit(1)
	}

	level := cfg.Logging.Level
	if GetLogLevel() != "" {
		level = GetLogLevel()
	}
	logger := setupLogger(level, cfg.Logging.Format)
	logger.Debug().
		Str("config_path", configPath).
		Str("log_level", level).
		Str("log_format", cfg.Logging.Format).
		Msg("configuration loaded successfully")
	return cfg, logger
}

// setupLogger creates a zerolog logger with the specified level and format.
func setupLogger(level string, format string) zerolog.Logger {
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	tz, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		tz = time.Local
	}
	zerolog.TimestampFunc = func() time.Time {
		return time.Now().In(tz)
	}

	var output io.Writer
	if format == "json" {
		output = os.Stderr
	} else {
		output = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "15:04:05",
		}
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

func newAdvisor(cfg *config.Config, logger zerolog.Logger) *advisor.Advisor {
	a, err := advisor.New(&cfg.Advisor, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to create advisor")
		fmt.Fprintf(os.Stderr, "❌ 初始化失败: %v\n", err)
		os.Exit(1)
	}
	return a
}

func newInventoryClient(cfg *config.Config, logger zerolog.Logger) *inventory.Client {
	return inventory.NewClient(&cfg.Source, &cfg.HTTP.Retry, logger)
}

// loadInput reads the request from --request or fetches it for --cluster.
// It returns the request and a label used in reports and filenames.
func loadInput(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*model.Request, string, error) {
	if requestPath != "" {
		fmt.Printf("📋 加载请求文件: %s\n", requestPath)
		req, err := config.LoadRequest(requestPath)
		if err != nil {
			return nil, "", err
		}
		return req, requestLabel(requestPath), nil
	}

	cluster := clusterName
	if cluster == "" {
		cluster = cfg.Source.Cluster
	}
	if cluster == "" {
		return nil, "", fmt.Errorf("either --request or --cluster is required")
	}
	if cfg.Source.Endpoint == "" {
		return nil, "", fmt.Errorf("source.endpoint must be configured to fetch cluster %s", cluster)
	}

	fmt.Printf("📋 获取集群清单: %s (%s)\n", cluster, cfg.Source.Endpoint)
	req, err := newInventoryClient(cfg, logger).FetchRequest(ctx, cluster)
	if err != nil {
		return nil, "", err
	}
	return req, cluster, nil
}

// requestLabel derives a report label from a request file name.
func requestLabel(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// resolveFormats determines the output formats to use.
// Command line flags take precedence over config file.
func resolveFormats(cfg *config.Config) []string {
	if len(formats) > 0 {
		return formats
	}
	if len(cfg.Report.Formats) > 0 {
		return cfg.Report.Formats
	}
	return []string{"excel", "html"}
}

// resolveOutputDir determines the output directory to use.
// Command line flags take precedence over config file.
func resolveOutputDir(cfg *config.Config) string {
	if outputDir != "" {
		return outputDir
	}
	if cfg.Report.OutputDir != "" {
		return cfg.Report.OutputDir
	}
	return "./reports"
}

// resolveTimezone returns the report timezone, Asia/Shanghai by default.
func resolveTimezone(cfg *config.Config) *time.Location {
	name := cfg.Report.Timezone
	if name == "" {
		name = "Asia/Shanghai"
	}
	tz, err := time.LoadLocation(name)
	if err != nil {
		return time.Local
	}
	return tz
}

// generateFilename creates a filename from the template.
// Supports the {{.Date}} and {{.Cluster}} placeholders.
func generateFilename(template, cluster string, tz *time.Location) string {
	if template == "" {
		template = "advisor_report_{{.Date}}"
	}

	dateStr := time.Now().In(tz).Format("2006-01-02")
	replacer := strings.NewReplacer(
		"{{.Date}}", dateStr,
		"{{ .Date }}", dateStr,
		"{{.Cluster}}", cluster,
		"{{ .Cluster }}", cluster,
	)
	filename := replacer.Replace(template)

	// Prefix the cluster when the template does not name it.
	if cluster != "" && !strings.Contains(template, ".Cluster") {
		filename = cluster + "_" + filename
	}
	return filename
}

// writeReports renders the report in every requested format.
// A failing format is reported and skipped.
func writeReports(cfg *config.Config, rep *model.AdvisorReport, logger zerolog.Logger) []string {
	outputFormats := resolveFormats(cfg)
	dir := resolveOutputDir(cfg)
	tz := resolveTimezone(cfg)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Error().Err(err).Str("output_dir", dir).Msg("failed to create output directory")
		fmt.Fprintf(os.Stderr, "   ❌ 创建输出目录失败: %v\n", err)
		return nil
	}

	registry := report.NewRegistry(tz, cfg.Report.HTMLTemplate)
	base := generateFilename(cfg.Report.FilenameTemplate, rep.Cluster, tz)

	var written []string
	for _, format := range outputFormats {
		writer, err := registry.Get(format)
		if err != nil {
			logger.Error().Str("format", format).Msg("unsupported format")
			fmt.Fprintf(os.Stderr, "   ❌ 不支持的格式: %s\n", format)
			continue
		}

		reportPath := filepath.Join(dir, base+writer.Extension())
		if err := writer.Write(rep, reportPath); err != nil {
			logger.Error().Err(err).Str("format", format).Str("path", reportPath).Msg("failed to generate report")
			fmt.Fprintf(os.Stderr, "   ❌ %s 报告生成失败: %v\n", format, err)
			continue
		}

		logger.Info().Str("format", format).Str("path", reportPath).Msg("report generated successfully")
		written = append(written, reportPath)
	}
	return written
}

// exitCode maps a finding summary to the process exit code:
// 2 when any ERROR is present, 1 for warnings only.
func exitCode(summary *model.FindingSummary) int {
	switch {
	case summary == nil:
		return 0
	case summary.ErrorCount > 0:
		return 2
	case summary.WarnCount > 0:
		return 1
	default:
		return 0
	}
}

// printBanner prints the application banner.
func printBanner() {
	fmt.Printf("🔍 集群配置建议工具 %s\n", Version)
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
}

// printSummary prints the finding summary and the profile of a run.
func printSummary(rec *model.Recommendation, summary *model.FindingSummary) {
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	if rec != nil && rec.Profile != nil {
		p := rec.Profile
		fmt.Printf("   参考主机: %d 核 / %d GB / %d 块磁盘\n", p.CPU, p.RAMGB, p.DiskCount)
		fmt.Printf("   容器数量: %d\n", p.Containers)
		fmt.Printf("   单容器内存: %g MB\n", p.RAMPerContainerMB)
	}
	if summary != nil {
		fmt.Println()
		fmt.Printf("   问题总数: %d\n", summary.Total)
		fmt.Printf("   错误: %d\n", summary.ErrorCount)
		fmt.Printf("   警告: %d\n", summary.WarnCount)
	}
}

// printFindings prints one line per finding.
func printFindings(findings []*model.Finding) {
	for _, f := range findings {
		icon := "ℹ️ "
		switch {
		case f.IsError():
			icon = "❌"
		case f.IsWarning():
			icon = "⚠️ "
		}
		target := f.Host
		switch {
		case f.ConfigType != "":
			target = f.ConfigType + "/" + f.ConfigName
		case f.ComponentName != "":
			target = f.ComponentName
		}
		fmt.Printf("   %s [%s] %s: %s\n", icon, f.Level, target, strings.TrimSpace(f.Message))
	}
}
