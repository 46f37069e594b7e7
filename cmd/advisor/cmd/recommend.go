package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var recommendOutput string // Write the JSON result to this file instead of stdout

// recommendCmd represents the recommend command.
var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "计算推荐配置",
	Long: `根据主机硬件和服务拓扑计算推荐配置，以 JSON 格式输出。

示例:
  # 从请求文件计算
  advisor recommend -r cluster.yaml

  # 从集群清单 API 获取并计算
  advisor recommend -c config.yaml --cluster prod

  # 输出到文件
  advisor recommend -r cluster.json -o recommendation.json`,
	Run: runRecommend,
}

func init() {
	rootCmd.AddCommand(recommendCmd)

	recommendCmd.Flags().StringVarP(&requestPath, "request", "r", "", "请求文件路径 (YAML/JSON)")
	recommendCmd.Flags().StringVar(&clusterName, "cluster", "", "集群名称（从清单 API 获取）")
	recommendCmd.Flags().StringVarP(&recommendOutput, "output", "o", "", "结果输出文件（默认标准输出）")
}

func runRecommend(cmd *cobra.Command, args []string) {
	cfg, logger := bootstrap()

	req, label, err := loadInput(context.Background(), cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load request")
		fmt.Fprintf(os.Stderr, "❌ 加载请求失败: %v\n", err)
		os.Exit(1)
	}

	rec, err := newAdvisor(cfg, logger).Recommend(req)
	if err != nil {
		logger.Error().Err(err).Str("cluster", label).Msg("recommendation failed")
		fmt.Fprintf(os.Stderr, "❌ 计算推荐配置失败: %v\n", err)
		os.Exit(1)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ 序列化结果失败: %v\n", err)
		os.Exit(1)
	}

	if recommendOutput == "" {
		fmt.Println(string(data))
		return
	}
	if err := os.WriteFile(recommendOutput, append(data, '\n'), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "❌ 写入结果失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ 推荐配置已写入: %s\n", recommendOutput)
}
