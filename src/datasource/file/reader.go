// reader.go
package file

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"PassengerSatisfaction/src/utils"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/tealeg/xlsx"
)

// Options 读取参数
type Options struct {
	Delimiter rune   // csv 分隔符，0 表示逗号
	SheetName string // xlsx 工作表名，为空取第一个
}

// Load 读取问卷文件，按扩展名选择 csv 或 xlsx
// 返回的 DataFrame 全部为字符串列，列顺序与表头一致
func Load(filePath string, opts Options) (dataframe.DataFrame, error) {
	if _, err := os.Stat(filePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return dataframe.DataFrame{}, fmt.Errorf("%w: %s", utils.ErrFileNotFound, filePath)
		}
		return dataframe.DataFrame{}, fmt.Errorf("%w: %s: %v", utils.ErrFileNotFound, filePath, err)
	}

	if strings.EqualFold(filepath.Ext(filePath), ".xlsx") {
		return ReadXLSX(filePath, opts.SheetName)
	}

	f, err := os.Open(filePath)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("%w: %s: %v", utils.ErrFileNotFound, filePath, err)
	}
	defer f.Close()

	df, err := ReadCSV(f, opts.Delimiter)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("%s: %w", filePath, err)
	}
	return df, nil
}

// ReadCSV 每行列数必须与表头一致，否则返回 ErrParse
func ReadCSV(r io.Reader, delimiter rune) (dataframe.DataFrame, error) {
	reader := csv.NewReader(r)
	if delimiter != 0 {
		reader.Comma = delimiter
	}
	reader.FieldsPerRecord = 0 // 以表头列数为准

	records, err := reader.ReadAll()
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("%w: %v", utils.ErrParse, err)
	}
	return recordsToDataFrame(records)
}

// ReadXLSX 读取本地 xlsx 文件
func ReadXLSX(filePath, sheetName string) (dataframe.DataFrame, error) {
	xlFile, err := xlsx.OpenFile(filePath)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("%w: xlsx open file false: %v", utils.ErrParse, err)
	}
	return sheetToDataFrame(xlFile, sheetName)
}

// ReadXLSXBinary 读取内存中的 xlsx(邮件附件)
func ReadXLSXBinary(data []byte, sheetName string) (dataframe.DataFrame, error) {
	xlFile, err := xlsx.OpenBinary(data)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("%w: xlsx open binary false: %v", utils.ErrParse, err)
	}
	return sheetToDataFrame(xlFile, sheetName)
}

func sheetToDataFrame(xlFile *xlsx.File, sheetName string) (dataframe.DataFrame, error) {
	if len(xlFile.Sheets) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("%w: excel文件中没有工作表", utils.ErrParse)
	}

	sheet := xlFile.Sheets[0]
	if sheetName != "" {
		s, ok := xlFile.Sheet[sheetName]
		if !ok {
			return dataframe.DataFrame{}, fmt.Errorf("%w: 工作表 %s 不存在", utils.ErrParse, sheetName)
		}
		sheet = s
	}

	records, err := sheetRecords(sheet)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	return recordsToDataFrame(records)
}

// sheetRecords 第一行为表头；xlsx 会省略行尾空单元格，需要补齐
func sheetRecords(sheet *xlsx.Sheet) ([][]string, error) {
	if len(sheet.Rows) == 0 {
		return nil, fmt.Errorf("%w: 工作表 %s 为空", utils.ErrParse, sheet.Name)
	}

	var headers []string
	for _, cell := range sheet.Rows[0].Cells {
		headers = append(headers, cell.String())
	}
	// 去掉表头末尾的空列
	for len(headers) > 0 && strings.TrimSpace(headers[len(headers)-1]) == "" {
		headers = headers[:len(headers)-1]
	}

	records := [][]string{headers}
	for i, row := range sheet.Rows[1:] {
		if row == nil {
			continue
		}
		values := make([]string, len(headers))
		empty := true
		for j, cell := range row.Cells {
			v := cell.String()
			if j >= len(headers) {
				if strings.TrimSpace(v) != "" {
					return nil, fmt.Errorf("%w: 第 %d 行列数超过表头", utils.ErrParse, i+2)
				}
				continue
			}
			values[j] = v
			if v != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		records = append(records, values)
	}
	return records, nil
}

// recordsToDataFrame 将 [][]string(首行表头) 转换为 dataframe.DataFrame
func recordsToDataFrame(records [][]string) (dataframe.DataFrame, error) {
	if len(records) == 0 || len(records[0]) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("%w: 文件为空或缺少表头", utils.ErrParse)
	}

	headers := normalizeHeaders(records[0])
	seen := make(map[string]bool, len(headers))
	for _, h := range headers {
		if seen[h] {
			return dataframe.DataFrame{}, fmt.Errorf("%w: 表头重复: %s", utils.ErrParse, h)
		}
		seen[h] = true
	}

	// 准备数据列
	rows := records[1:]
	columns := make([][]string, len(headers))
	for i := range columns {
		columns[i] = make([]string, len(rows))
	}
	for r, row := range rows {
		if len(row) != len(headers) {
			return dataframe.DataFrame{}, fmt.Errorf("%w: 第 %d 行有 %d 列，表头有 %d 列",
				utils.ErrParse, r+2, len(row), len(headers))
		}
		for i, v := range row {
			columns[i][r] = v
		}
	}

	// 创建Series切片，类型转换留给清洗阶段
	seriesList := make([]series.Series, len(headers))
	for i, colName := range headers {
		seriesList[i] = series.New(columns[i], series.String, colName)
	}

	df := dataframe.New(seriesList...)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("%w: %v", utils.ErrParse, df.Err)
	}
	return df, nil
}

// normalizeHeaders 空表头按 pandas 习惯命名为 "Unnamed: i"，并去掉 BOM
func normalizeHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	for i, h := range raw {
		h = strings.TrimPrefix(h, "\ufeff")
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		headers[i] = h
	}
	return headers
}

// SetupSignalHandler 设置信号处理器
func SetupSignalHandler(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		fmt.Printf("\nReceived signal: %v, shutting down...\n", sig)
		cancel()
	}()
}
