package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"stack-advisor/internal/model"
)

var noReport bool // Skip report generation

// validateCmd represents the validate command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "校验集群配置和组件布局",
	Long: `校验当前配置和组件布局，输出问题列表并生成 Excel 和 HTML 报告。

退出码: 0 无问题，1 仅有警告，2 存在错误。

示例:
  # 校验请求文件
  advisor validate -r cluster.yaml

  # 校验集群清单 API 中的集群，仅生成 HTML 报告
  advisor validate -c config.yaml --cluster prod -f html -o ./reports

  # 仅输出问题，不生成报告
  advisor validate -r cluster.yaml --no-report`,
	Run: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&requestPath, "request", "r", "", "请求文件路径 (YAML/JSON)")
	validateCmd.Flags().StringVar(&clusterName, "cluster", "", "集群名称（从清单 API 获取）")
	validateCmd.Flags().StringSliceVarP(&formats, "format", "f", nil, "输出格式 (excel,html)，可用逗号分隔多个")
	validateCmd.Flags().StringVarP(&outputDir, "output", "o", "", "输出目录")
	validateCmd.Flags().BoolVar(&noReport, "no-report", false, "不生成报告")
}

func runValidate(cmd *cobra.Command, args []string) {
	printBanner()
	cfg, logger := bootstrap()
	startTime := time.Now()

	req, label, err := loadInput(context.Background(), cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load request")
		fmt.Fprintf(os.Stderr, "❌ 加载请求失败: %v\n", err)
		os.Exit(1)
	}

	rec, result, err := newAdvisor(cfg, logger).Advise(req)
	if err != nil {
		logger.Error().Err(err).Str("cluster", label).Msg("validation failed")
		fmt.Fprintf(os.Stderr, "❌ 校验失败: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\n📊 校验完成！\n")
	printSummary(rec, result.Summary)
	if len(result.Findings) > 0 {
		fmt.Println()
		printFindings(result.Findings)
	}
	fmt.Printf("\n⏱️  总耗时 %.1fs\n", time.Since(startTime).Seconds())

	if !noReport {
		rep := model.NewAdvisorReport(label, req, rec, result)
		rep.Duration = time.Since(startTime)
		rep.Version = Version

		fmt.Println("\n📄 生成报告:")
		for _, path := range writeReports(cfg, rep, logger) {
			fmt.Printf("   ✅ %s\n", path)
		}
	}

	if code := exitCode(result.Summary); code > 0 {
		os.Exit(code)
	}
}
