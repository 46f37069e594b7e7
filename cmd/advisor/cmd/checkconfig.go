package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"stack-advisor/internal/config"
)

// checkConfigCmd represents the check-config command.
var checkConfigCmd = &cobra.Command{
	Use:   "check-config",
	Short: "验证配置文件",
	Long:  "加载并验证配置文件，检查格式、必填字段、数值范围和业务逻辑约束。",
	Run:   runCheckConfig,
}

func init() {
	rootCmd.AddCommand(checkConfigCmd)
}

func runCheckConfig(cmd *cobra.Command, args []string) {
	configPath := GetConfigFile()

	// Load calls Validate
	if _, err := config.Load(configPath); err != nil {
		fmt.Fprintf(os.Stderr, "❌ 配置验证失败: %v\n", err)
		os.Exit(1)
	}

	if configPath == "" {
		fmt.Println("✅ 默认配置验证通过")
		return
	}
	fmt.Printf("✅ 配置文件验证通过: %s\n", configPath)
}
