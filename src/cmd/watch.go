package cmd

import (
	"context"
	"fmt"

	"PassengerSatisfaction/src/datasource/file"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run the report whenever the input file changes",
	Long: `Run the report once, then watch the input file and run it again each
time the file is written or replaced. Stop with Ctrl+C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		file.SetupSignalHandler(cancel)

		monitor, err := file.NewFileMonitor(cfg.Input.Path)
		if err != nil {
			return fmt.Errorf("监听文件失败: %w", err)
		}
		defer monitor.Close()

		p := NewPipeline(cfg, dcfg, logger, cmd.OutOrStdout())
		runLogged(ctx, p, cfg.Input.Path)

		logger.Info(fmt.Sprintf("开始监听 %s，按Ctrl+C退出", cfg.Input.Path))
		return monitor.Watch(ctx, func(path string) {
			runLogged(ctx, p, path)
		})
	},
}

// runLogged 出错只记录日志，监听继续
func runLogged(ctx context.Context, p *Pipeline, path string) {
	if _, err := p.RunFile(ctx, path); err != nil {
		p.logger.Error(fmt.Sprintf("分析 %s 失败: %v", path, err))
	}
}
