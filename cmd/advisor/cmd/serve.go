package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"stack-advisor/internal/server"
)

var listenAddr string // Overrides server.listen

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动 HTTP API 服务",
	Long: `启动 HTTP API 服务。

接口:
  POST /api/v1/recommendations              计算推荐配置
  POST /api/v1/validations                  校验配置和组件布局
  GET  /api/v1/clusters/:cluster/...        从清单 API 获取集群后计算（需配置 source.endpoint）
  GET  /healthz                             健康检查
  GET  /metrics                             Prometheus 指标`,
	Run: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&listenAddr, "listen", "l", "", "监听地址（覆盖 server.listen）")
}

func runServe(cmd *cobra.Command, args []string) {
	cfg, logger := bootstrap()
	if listenAddr != "" {
		cfg.Server.Listen = listenAddr
	}

	var opts []server.Option
	if cfg.Source.Endpoint != "" {
		opts = append(opts, server.WithRequestSource(newInventoryClient(cfg, logger)))
	}
	srv := server.New(&cfg.Server, newAdvisor(cfg, logger), logger, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("🚀 服务已启动: %s\n", cfg.Server.Listen)
	if err := srv.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
		fmt.Fprintf(os.Stderr, "❌ 服务异常退出: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("👋 服务已停止")
}
