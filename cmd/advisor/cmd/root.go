// Package cmd provides CLI commands for the stack advisor.
package cmd

import (
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

// Version information, injected at build time via -ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Global flags
var (
	cfgFile  string // Config file path
	logLevel string // Log level
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "advisor",
	Short: "Hadoop 集群配置建议工具 - 基于硬件与服务拓扑推荐并校验配置",
	Long: `Hadoop 集群配置建议工具根据集群的主机硬件信息和服务拓扑，
计算 YARN、MapReduce2、HDFS、HBase、Ambari Metrics 和 Ranger 的推荐配置，
并对当前配置和组件布局进行校验。

数据流: 请求文件 / 集群清单 API → 集群画像 → 推荐配置 → 校验 → Excel/HTML 报告

主要功能:
  - 根据参考主机的 CPU、内存和磁盘计算 YARN 容器规格
  - 推荐各服务的内存、目录和代理用户配置
  - 校验组件数量约束和未使用的主机
  - 校验用户配置是否低于推荐值或超出允许范围
  - 提供 HTTP API 和 Prometheus 指标`,
	Version: Version,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "配置文件路径（为空时使用默认配置和环境变量）")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "日志级别 (debug, info, warn, error)，覆盖配置文件")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// GetConfigFile returns the config file path from command line flag.
func GetConfigFile() string {
	return cfgFile
}

// GetLogLevel returns the log level from command line flag.
func GetLogLevel() string {
	return logLevel
}

// GetVersionInfo returns formatted version information.
func GetVersionInfo() string {
	return Version + "\n" +
		"Build Time: " + BuildTime + "\n" +
		"Git Commit: " + GitCommit + "\n" +
		"Go Version: " + runtime.Version() + "\n" +
		"OS/Arch: " + runtime.GOOS + "/" + runtime.GOARCH
}
