// data_handler.go
package email

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"PassengerSatisfaction/src/datasource/file"
	"PassengerSatisfaction/src/utils"

	"github.com/go-gota/gota/dataframe"
)

// IsSurveyFile 问卷导出只接受 csv 和 xlsx
func IsSurveyFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".xlsx":
		return true
	}
	return false
}

// SurveyAttachment 邮件中第一个问卷附件，没有时返回 nil
func SurveyAttachment(email *Email) *Attachment {
	for _, a := range email.Attachments {
		if IsSurveyFile(a.Filename) && len(a.Content) > 0 {
			return a
		}
	}
	return nil
}

// ReadAttachment 直接从附件内容读取原始问卷表，不落盘
func ReadAttachment(a *Attachment, opts file.Options) (dataframe.DataFrame, error) {
	if a == nil {
		return dataframe.DataFrame{}, fmt.Errorf("%w: 没有问卷附件", utils.ErrFileNotFound)
	}

	var (
		df  dataframe.DataFrame
		err error
	)
	switch strings.ToLower(filepath.Ext(a.Filename)) {
	case ".xlsx":
		df, err = file.ReadXLSXBinary(a.Content, opts.SheetName)
	case ".csv":
		df, err = file.ReadCSV(bytes.NewReader(a.Content), opts.Delimiter)
	default:
		return dataframe.DataFrame{}, fmt.Errorf("%w: 不支持的附件类型 %s", utils.ErrParse, a.Filename)
	}
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("附件 %s: %w", a.Filename, err)
	}
	return df, nil
}
