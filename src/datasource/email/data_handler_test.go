package email

import (
	"os"
	"path/filepath"
	"testing"

	"PassengerSatisfaction/src/datasource/file"
	"PassengerSatisfaction/src/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadAttachmentCSV(t *testing.T) {
	a := &Attachment{Filename: "Aerolinea.CSV", Content: []byte("Gender;Age\nFemale;40\n")}

	df, err := ReadAttachment(a, file.Options{Delimiter: ';'})
	require.NoError(t, err)
	assert.Equal(t, []string{"Gender", "Age"}, df.Names())
	assert.Equal(t, []string{"40"}, df.Col("Age").Records())
}

func TestReadAttachmentXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Gender", "Age"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"Male", 30}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	df, err := ReadAttachment(&Attachment{Filename: "encuesta.xlsx", Content: buf.Bytes()}, file.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Male"}, df.Col("Gender").Records())
}

func TestReadAttachmentErrors(t *testing.T) {
	_, err := ReadAttachment(nil, file.Options{})
	assert.ErrorIs(t, err, utils.ErrFileNotFound)

	_, err = ReadAttachment(&Attachment{Filename: "r.pdf", Content: []byte("x")}, file.Options{})
	assert.ErrorIs(t, err, utils.ErrParse)

	_, err = ReadAttachment(&Attachment{Filename: "bad.csv", Content: []byte("a,b\n1\n")}, file.Options{})
	assert.ErrorIs(t, err, utils.ErrParse)
}

func TestSurveyAttachmentHandler(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	h := NewSurveyAttachmentHandler("encuesta", dir, testLogger(t))

	email := &Email{
		UID:     3,
		Subject: "Encuesta marzo",
		Attachments: []*Attachment{
			{Filename: "../aerolinea.csv", Content: []byte("a\n1\n")},
			{Filename: "notas.txt", Content: []byte("x")},
		},
	}

	saved, err := h.Handle(email)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "aerolinea.csv")}, saved)
	data, err := os.ReadFile(saved[0])
	require.NoError(t, err)
	assert.Equal(t, "a\n1\n", string(data))
	assert.True(t, h.IsProcessed(3))

	// 同一封邮件不重复处理
	saved, err = h.Handle(email)
	require.NoError(t, err)
	assert.Empty(t, saved)

	saved, err = h.Handle(&Email{UID: 4, Subject: "factura", Attachments: email.Attachments})
	require.NoError(t, err)
	assert.Empty(t, saved)
	assert.False(t, h.IsProcessed(4))
}
