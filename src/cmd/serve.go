package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"PassengerSatisfaction/src/datapush"
	"PassengerSatisfaction/src/datasource/email"
	"PassengerSatisfaction/src/datasource/file"
	"PassengerSatisfaction/src/storage"

	"github.com/robfig/cron"
	"github.com/spf13/cobra"
)

var serveLogsAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Poll the mailbox for survey exports and mail back the report",
	Long: `Check the configured IMAP inbox every email.check_interval. The newest
unread mail whose subject contains email.target_subject and carries a .csv or
.xlsx attachment is saved to data_dir, analysed, and the report workbook is
sent to send_email.recipients.

Examples:
  satisfaction serve
  satisfaction serve --logs :8080
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		file.SetupSignalHandler(cancel)

		if serveLogsAddr != "" {
			srv := startLogServer(serveLogsAddr, logger)
			defer srv.Close()
		}

		w := &surveyWorker{
			mail:     email.NewEmailClient(cfg.Email.Server, cfg.Email.Username, cfg.Email.Password),
			handler:  email.NewSurveyAttachmentHandler(cfg.Email.TargetSubject, cfg.DataDir, logger),
			pipeline: NewPipeline(cfg, dcfg, logger, nil),
			pusher:   datapush.NewMailPusher(cfg),
			keyword:  cfg.Email.TargetSubject,
			logger:   logger,
		}

		// 使用配置中的检查间隔
		interval := time.Duration(cfg.Email.CheckInterval)
		if interval <= 0 {
			return fmt.Errorf("email.check_interval 必须大于 0")
		}
		cronSpec := fmt.Sprintf("@every %s", interval)

		c := cron.New()
		if err := c.AddFunc(cronSpec, func() {
			logger.Info(fmt.Sprintf("开始定时检查(间隔: %v)...", interval))
			if err := w.Tick(ctx); err != nil {
				logger.Error("检查处理邮件失败: " + err.Error())
			}
		}); err != nil {
			return fmt.Errorf("创建定时任务失败: %w", err)
		}

		c.Start()
		defer c.Stop()

		logger.Info(fmt.Sprintf("邮件监控服务已启动(检查间隔: %v)，按Ctrl+C退出", interval))
		<-ctx.Done()
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveLogsAddr, "logs", "", "在该地址的 /logs 上实时输出日志，例如 :8080")
}

// surveyWorker 一次检查: 取邮件 -> 保存附件 -> 分析 -> 发送报表
type surveyWorker struct {
	mail     email.MailService
	handler  email.EmailHandler
	pipeline *Pipeline
	pusher   reportPusher
	keyword  string
	logger   *storage.Logger

	running sync.Mutex
}

var errBusy = errors.New("上一轮分析尚未结束")

// Tick 同一时间只跑一轮，上一轮未结束时直接返回 errBusy
func (w *surveyWorker) Tick(ctx context.Context) error {
	if !w.running.TryLock() {
		return errBusy
	}
	defer w.running.Unlock()

	newEmail, err := email.CheckAndProcessEmails(w.mail, w.keyword, w.logger)
	if err != nil {
		return err
	}
	if newEmail == nil || w.handler.IsProcessed(newEmail.UID) {
		return nil
	}

	saved, err := w.handler.Handle(newEmail)
	if err != nil {
		return fmt.Errorf("处理邮件失败(UID:%d): %w", newEmail.UID, err)
	}
	w.logger.Info(fmt.Sprintf("已保存 %d 个附件", len(saved)))

	attachment := email.SurveyAttachment(newEmail)
	raw, err := email.ReadAttachment(attachment, w.pipeline.Options())
	if err != nil {
		return err
	}

	res, err := w.pipeline.Run(ctx, attachment.Filename, raw)
	if err != nil {
		return err
	}
	return deliver(ctx, w.pusher, res, w.logger)
}

// startLogServer 在 addr 上提供 /logs
func startLogServer(addr string, logger *storage.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/logs", logStream(logger))

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("日志服务启动失败: " + err.Error())
		}
	}()
	return srv
}

// logStream 把日志以 chunked 文本流的形式持续输出，直到客户端断开
func logStream(logger *storage.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Transfer-Encoding", "chunked")

		logChan := logger.Subscribe()
		defer logger.Unsubscribe(logChan)
		for {
			select {
			case msg := <-logChan:
				if _, err := fmt.Fprint(w, msg); err != nil {
					return
				}
				if f, ok := w.(http.Flusher); ok {
					f.Flush()
				}
			case <-r.Context().Done():
				return
			}
		}
	}
}
