package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"PassengerSatisfaction/src/config"
	"PassengerSatisfaction/src/storage"
	"PassengerSatisfaction/src/utils"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const configFile = "config.json"

var (
	configDir string
	inputPath string
	verbose   bool

	cfg    *config.Config
	dcfg   *config.DataConfig
	logger *storage.Logger
)

var rootCmd = &cobra.Command{
	Use:   "satisfaction",
	Short: "Exploratory analysis of the airline passenger satisfaction survey",
	Long: `satisfaction cleans the airline passenger satisfaction survey export
and produces the standard set of charts as console tables and an XLSX report.

Examples:

  satisfaction describe -i train.csv
  satisfaction clean -i train.csv -o limpio.csv
  satisfaction report --config ./config
  satisfaction watch
  satisfaction serve
`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd.ErrOrStderr())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logger.Close()
		}
	},
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "配置目录 (默认 $"+utils.ConfigDirEnv+" 或 ./config)")
	rootCmd.PersistentFlags().StringVarP(&inputPath, "input", "i", "", "问卷数据文件，覆盖 input.path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "日志同时输出到终端")

	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
}

// setup 加载 .env 和配置，初始化日志
func setup(console io.Writer) error {
	utils.LoadEnv()
	dir := utils.ResolveConfigDir(configDir)

	c, d, err := config.LoadConfig(dir, configFile, dataConfigFile(dir))
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}
	if inputPath != "" {
		c.Input.Path = inputPath
	}

	l, err := storage.NewLogger(c.LogName)
	if err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}
	l.SetLevel(storage.ParseLevel(c.LogLevel))
	if verbose {
		l.SetConsole(console)
	}
	if err := l.CheckRotate(c); err != nil {
		l.Warning("日志轮转失败: " + err.Error())
	}

	cfg, dcfg, logger = c, d, l
	return nil
}

// dataConfigFile yaml 优先，都不存在时返回 json 文件名(使用内置默认值)
func dataConfigFile(dir string) string {
	for _, name := range []string{"dataconfig.yaml", "dataconfig.yml", "dataconfig.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return name
		}
	}
	return "dataconfig.json"
}
