package email

import (
	"bytes"
	"encoding/base64"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"PassengerSatisfaction/src/storage"

	"github.com/emersion/go-message/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
)

func testLogger(t *testing.T) *storage.Logger {
	t.Helper()
	logger, err := storage.NewLogger(filepath.Join(t.TempDir(), "app.log"))
	require.NoError(t, err)
	t.Cleanup(func() { logger.Close() })
	return logger
}

// buildMessage 生成带附件的原始邮件
func buildMessage(t *testing.T, subject string, date time.Time, attachments map[string]string) io.Reader {
	t.Helper()
	var h mail.Header
	h.SetDate(date)
	h.SetSubject(subject)
	h.SetAddressList("From", []*mail.Address{{Name: "Encuestas", Address: "survey@example.com"}})

	var buf bytes.Buffer
	mw, err := mail.CreateWriter(&buf, h)
	require.NoError(t, err)
	for name, body := range attachments {
		var ah mail.AttachmentHeader
		ah.Set("Content-Type", "application/octet-stream")
		ah.SetFilename(name)
		w, err := mw.CreateAttachment(ah)
		require.NoError(t, err)
		_, err = io.WriteString(w, body)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	}
	require.NoError(t, mw.Close())
	return &buf
}

func TestParseMessage(t *testing.T) {
	date := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	r := buildMessage(t, "Encuesta semanal", date, map[string]string{"aerolinea.csv": "Gender\nMale\n"})

	email, err := parseMessage(7, r)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), email.UID)
	assert.Equal(t, "Encuesta semanal", email.Subject)
	assert.Contains(t, email.From, "survey@example.com")
	assert.True(t, date.Equal(email.Date))
	require.Len(t, email.Attachments, 1)
	assert.Equal(t, "aerolinea.csv", email.Attachments[0].Filename)
	assert.Equal(t, "Gender\nMale\n", string(email.Attachments[0].Content))
}

func TestDecodeHeaderGBK(t *testing.T) {
	gbk, err := simplifiedchinese.GBK.NewEncoder().String("问卷数据")
	require.NoError(t, err)
	encoded := "=?GBK?B?" + base64.StdEncoding.EncodeToString([]byte(gbk)) + "?="

	assert.Equal(t, "问卷数据", decodeHeader(encoded))
	assert.Equal(t, "plain subject", decodeHeader("plain subject"))
}

func TestFilterLatestTargetEmail(t *testing.T) {
	now := time.Now()
	csv := []*Attachment{{Filename: "aerolinea.csv", Content: []byte("a\n1\n")}}
	emails := []*Email{
		{UID: 1, Subject: "Encuesta enero", Date: now.Add(-48 * time.Hour), Attachments: csv},
		{UID: 2, Subject: "ENCUESTA febrero", Date: now.Add(-time.Hour), Attachments: csv},
		{UID: 3, Subject: "encuesta sin adjunto", Date: now},
		{UID: 4, Subject: "otra cosa", Date: now, Attachments: csv},
		{UID: 5, Subject: "encuesta pdf", Date: now, Attachments: []*Attachment{{Filename: "r.pdf", Content: []byte("x")}}},
	}

	got := filterLatestTargetEmail(emails, "encuesta")
	require.NotNil(t, got)
	assert.Equal(t, uint32(2), got.UID)

	assert.Nil(t, filterLatestTargetEmail(emails, "nada"))
}

type fakeMailService struct {
	emails       []*Email
	connectErr   error
	fetchErr     error
	disconnected bool
}

func (f *fakeMailService) Connect() error { return f.connectErr }
func (f *fakeMailService) Disconnect()    { f.disconnected = true }
func (f *fakeMailService) FetchUnreadEmails() ([]*Email, error) {
	return f.emails, f.fetchErr
}

func TestCheckAndProcessEmails(t *testing.T) {
	logger := testLogger(t)
	csv := []*Attachment{{Filename: "aerolinea.csv", Content: []byte("a\n1\n")}}

	svc := &fakeMailService{emails: []*Email{{UID: 9, Subject: "encuesta", Attachments: csv}}}
	got, err := CheckAndProcessEmails(svc, "encuesta", logger)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, uint32(9), got.UID)
	assert.True(t, svc.disconnected)

	got, err = CheckAndProcessEmails(&fakeMailService{}, "encuesta", logger)
	assert.NoError(t, err)
	assert.Nil(t, got)

	boom := errors.New("boom")
	_, err = CheckAndProcessEmails(&fakeMailService{connectErr: boom}, "encuesta", logger)
	assert.ErrorIs(t, err, boom)

	svc = &fakeMailService{fetchErr: boom}
	_, err = CheckAndProcessEmails(svc, "encuesta", logger)
	assert.ErrorIs(t, err, boom)
	assert.True(t, svc.disconnected)
}
