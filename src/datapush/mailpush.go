package datapush

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"os"
	"path/filepath"
	"time"

	"PassengerSatisfaction/src/config"

	"github.com/jordan-wright/email"
)

// 常量定义
const (
	RETRY_TIMES    = 3
	RETRY_INTERVAL = 2 * time.Second
	DEFAULT_PORT   = "465" // SSL
	XLSX_MIME      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var ErrNoRecipients = errors.New("没有配置收件人")

// sendFunc 实际发送邮件，测试时替换
type sendFunc func(e *email.Email, addr string, a smtp.Auth, t *tls.Config) error

func sendWithTLS(e *email.Email, addr string, a smtp.Auth, t *tls.Config) error {
	return e.SendWithTLS(addr, a, t)
}

// MailPusher 把报表工作簿作为附件发给收件人
type MailPusher struct {
	server     string
	username   string
	password   string
	subject    string
	recipients []string

	send     sendFunc
	times    int
	interval time.Duration
}

func NewMailPusher(cfg *config.Config) *MailPusher {
	return &MailPusher{
		server:     cfg.SendEmail.Server,
		username:   cfg.SendEmail.Username,
		password:   cfg.SendEmail.Password,
		subject:    cfg.SendEmail.Subject,
		recipients: cfg.SendEmail.Recipients,
		send:       sendWithTLS,
		times:      RETRY_TIMES,
		interval:   RETRY_INTERVAL,
	}
}

// Enabled 没有配置 smtp 服务器或收件人时不发送
func (p *MailPusher) Enabled() bool {
	return p.server != "" && len(p.recipients) > 0
}

// BuildMessage 组装邮件，正文为本次分析的摘要
func (p *MailPusher) BuildMessage(reportPath, summary string) (*email.Email, error) {
	if len(p.recipients) == 0 {
		return nil, ErrNoRecipients
	}

	e := email.NewEmail()
	e.From = fmt.Sprintf("Encuesta <%s>", p.username)
	e.To = p.recipients
	e.Subject = p.subject
	e.Text = []byte(summary)

	f, err := os.Open(reportPath)
	if err != nil {
		return nil, fmt.Errorf("打开报表失败: %w", err)
	}
	defer f.Close()
	if _, err := e.Attach(f, filepath.Base(reportPath), XLSX_MIME); err != nil {
		return nil, fmt.Errorf("附件添加失败: %w", err)
	}
	return e, nil
}

// PushReport 发送报表，失败按固定间隔重试
func (p *MailPusher) PushReport(ctx context.Context, reportPath, summary string) error {
	e, err := p.BuildMessage(reportPath, summary)
	if err != nil {
		return err
	}

	// 确保服务器地址包含端口
	addr := p.server
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
		addr = net.JoinHostPort(addr, DEFAULT_PORT)
	}

	auth := smtp.PlainAuth("", p.username, p.password, host)
	return retry(ctx, func() error {
		if err := p.send(e, addr, auth, &tls.Config{ServerName: host}); err != nil {
			return fmt.Errorf("邮件发送失败: %w (Server: %s)", err, addr)
		}
		return nil
	}, p.times, p.interval)
}

// 重试函数
func retry(ctx context.Context, fn func() error, times int, interval time.Duration) error {
	var err error
	for i := 0; i < times; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i < times-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(interval):
			}
		}
	}
	return fmt.Errorf("重试 %d 次后失败: %w", times, err)
}
