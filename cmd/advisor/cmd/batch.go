package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"stack-advisor/internal/advisor"
	"stack-advisor/internal/config"
	"stack-advisor/internal/model"
)

var (
	batchDir         string // Directory of request files
	batchConcurrency int    // Overrides batch.concurrency
)

// batchCmd represents the batch command.
var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "批量校验多个集群",
	Long: `并发校验目录下的所有请求文件（.yaml/.yml/.json），每个集群生成独立报告。

单个请求失败不会中断其他请求。退出码取所有集群中最严重的结果。

示例:
  advisor batch -d ./requests -o ./reports --concurrency 8`,
	Run: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVarP(&batchDir, "dir", "d", "", "请求文件目录")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "并发数（覆盖 batch.concurrency）")
	batchCmd.Flags().StringSliceVarP(&formats, "format", "f", nil, "输出格式 (excel,html)，可用逗号分隔多个")
	batchCmd.Flags().StringVarP(&outputDir, "output", "o", "", "输出目录")
	batchCmd.Flags().BoolVar(&noReport, "no-report", false, "不生成报告")
	_ = batchCmd.MarkFlagRequired("dir")
}

// batchOutcome is the result of one request file.
type batchOutcome struct {
	path    string
	label   string
	summary *model.FindingSummary
	reports []string
	err     error
}

func runBatch(cmd *cobra.Command, args []string) {
	printBanner()
	cfg, logger := bootstrap()
	startTime := time.Now()

	files, err := config.ListRequestFiles(batchDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ 读取请求目录失败: %v\n", err)
		os.Exit(1)
	}

	limit := cfg.Batch.Concurrency
	if batchConcurrency > 0 {
		limit = batchConcurrency
	}
	fmt.Printf("📋 共 %d 个请求，并发数 %d\n", len(files), limit)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	outcomes := runBatchFiles(ctx, cfg, newAdvisor(cfg, logger), files, limit, logger)

	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	code := 0
	for _, o := range outcomes {
		if o.err != nil {
			fmt.Fprintf(os.Stderr, "   ❌ %s: %v\n", o.path, o.err)
			code = max(code, 1)
			continue
		}
		fmt.Printf("   %s: 错误 %d，警告 %d\n", o.label, o.summary.ErrorCount, o.summary.WarnCount)
		for _, path := range o.reports {
			fmt.Printf("      ✅ %s\n", path)
		}
		code = max(code, exitCode(o.summary))
	}
	fmt.Printf("\n⏱️  总耗时 %.1fs\n", time.Since(startTime).Seconds())

	if code > 0 {
		os.Exit(code)
	}
}

// runBatchFiles validates every file with at most limit in flight.
// Outcomes keep the order of files.
func runBatchFiles(ctx context.Context, cfg *config.Config, a *advisor.Advisor, files []string, limit int, logger zerolog.Logger) []*batchOutcome {
	logger = logger.With().Str("component", "batch").Logger()
	outcomes := make([]*batchOutcome, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if gctx.Err() != nil {
				outcomes[i] = &batchOutcome{path: path, err: gctx.Err()}
				return nil
			}
			start := time.Now()
			o := &batchOutcome{path: path, label: requestLabel(path)}
			outcomes[i] = o

			req, err := config.LoadRequest(path)
			if err != nil {
				o.err = err
				logger.Warn().Err(err).Str("path", path).Msg("skipping invalid request")
				return nil
			}
			rec, result, err := a.Advise(req)
			if err != nil {
				o.err = err
				return nil
			}
			o.summary = result.Summary

			if !noReport {
				rep := model.NewAdvisorReport(o.label, req, rec, result)
				rep.Duration = time.Since(start)
				rep.Version = Version
				o.reports = writeReports(cfg, rep, logger)
			}

			logger.Info().
				Str("path", path).
				Int("errors", result.Summary.ErrorCount).
				Int("warnings", result.Summary.WarnCount).
				Dur("duration", time.Since(start)).
				Msg("request validated")
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}
