package datapush

import (
	"context"
	"crypto/tls"
	"errors"
	"net/smtp"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"PassengerSatisfaction/src/config"

	"github.com/jordan-wright/email"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPusher(t *testing.T) (*MailPusher, string) {
	t.Helper()
	cfg := config.Default()
	cfg.SendEmail.Server = "smtp.example.com"
	cfg.SendEmail.Username = "reports@example.com"
	cfg.SendEmail.Recipients = []string{"ops@example.com"}

	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("xlsx"), 0644))

	p := NewMailPusher(cfg)
	p.interval = time.Millisecond
	return p, path
}

func TestBuildMessage(t *testing.T) {
	p, path := testPusher(t)

	e, err := p.BuildMessage(path, "filas: 6")
	require.NoError(t, err)
	assert.Equal(t, []string{"ops@example.com"}, e.To)
	assert.Equal(t, config.Default().SendEmail.Subject, e.Subject)
	require.Len(t, e.Attachments, 1)
	assert.Equal(t, "report.xlsx", e.Attachments[0].Filename)

	raw, err := e.Bytes()
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), "report.xlsx"))

	p.recipients = nil
	_, err = p.BuildMessage(path, "")
	assert.ErrorIs(t, err, ErrNoRecipients)
	assert.False(t, p.Enabled())
}

func TestPushReportRetries(t *testing.T) {
	p, path := testPusher(t)

	var addrs []string
	calls := 0
	p.send = func(e *email.Email, addr string, a smtp.Auth, c *tls.Config) error {
		calls++
		addrs = append(addrs, addr)
		assert.Equal(t, "smtp.example.com", c.ServerName)
		if calls < 2 {
			return errors.New("421 try again")
		}
		return nil
	}

	require.NoError(t, p.PushReport(context.Background(), path, "ok"))
	assert.Equal(t, 2, calls)
	assert.Equal(t, "smtp.example.com:465", addrs[0])
}

func TestPushReportGivesUp(t *testing.T) {
	p, path := testPusher(t)
	p.server = "smtp.example.com:587"

	calls := 0
	p.send = func(*email.Email, string, smtp.Auth, *tls.Config) error {
		calls++
		return errors.New("boom")
	}

	err := p.PushReport(context.Background(), path, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp.example.com:587")
	assert.Equal(t, RETRY_TIMES, calls)
}

func TestRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := retry(ctx, func() error {
		calls++
		cancel()
		return errors.New("fail")
	}, 5, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
