package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/predictpark/predictpark/pkg/config"
	"github.com/predictpark/predictpark/pkg/logger"
)

var configPath string

// rootCmd predictpark 命令行入口
var rootCmd = &cobra.Command{
	Use:   "predictpark",
	Short: "Swipe through crypto prediction markets in the terminal",
	Long: `PredictPark shows crypto prediction markets as a deck of cards.
Swipe right for UP, left for DOWN.

Examples:
  predictpark swipe
  predictpark markets --asset BTC,ETH --json
  predictpark journal --limit 20`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("PREDICTPARK_CONFIG"), "config file (yaml/json)")
}

// loadConfig 读取 .env 与配置文件
func loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	return config.Load(configPath)
}

// initLogger console=false 时只写文件，终端界面运行期间使用
func initLogger(cfg *config.Config, console bool) error {
	return logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		OutputFile: cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
		Console:    console,
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
