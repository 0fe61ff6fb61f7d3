package cmd

import (
	"context"
	"io"

	"PassengerSatisfaction/src/datapush"
	"PassengerSatisfaction/src/storage"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	reportQuiet bool
	reportSend  bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Build the charts and save the XLSX report",
	Long: `Run the whole analysis: load, clean, build the fixed sequence of charts,
print them as tables and save them to the report workbook (one sheet per chart).

Examples:
  satisfaction report -i train.csv
  satisfaction report --quiet --send
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var out io.Writer
		if !reportQuiet {
			out = cmd.OutOrStdout()
		}
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		res, err := NewPipeline(cfg, dcfg, logger, out).RunFile(ctx, cfg.Input.Path)
		if err != nil {
			return err
		}
		color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "\n✅ %d charts saved to %s (run %s)\n",
			res.Charts, res.Workbook, res.RunID)

		if reportSend {
			return deliver(ctx, datapush.NewMailPusher(cfg), res, logger)
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().BoolVarP(&reportQuiet, "quiet", "q", false, "不在终端打印图表数据")
	reportCmd.Flags().BoolVar(&reportSend, "send", false, "通过邮件发送报表 (需要 send_email 配置)")
}

// reportPusher 报表投递，邮件之外的方式也可以实现
type reportPusher interface {
	Enabled() bool
	PushReport(ctx context.Context, reportPath, summary string) error
}

func deliver(ctx context.Context, pusher reportPusher, res *RunResult, logger *storage.Logger) error {
	if !pusher.Enabled() {
		logger.Warning("未配置 send_email，跳过发送")
		return nil
	}
	if err := pusher.PushReport(ctx, res.Workbook, res.String()); err != nil {
		return err
	}
	logger.Info("报表已发送: " + res.Workbook)
	return nil
}
