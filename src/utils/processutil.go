package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
)

func Contains[T comparable](slice []T, item T) bool {
	for _, v := range slice {
		if v == item {
			return true
		}
	}
	return false
}

// 辅助函数：判断DataFrame是否有某列
func HasColumn(df dataframe.DataFrame, name string) bool {
	for _, n := range df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// IsMissing 判断原始单元格是否为缺失值
func IsMissing(s string) bool {
	switch strings.TrimSpace(s) {
	case "", "NaN", "nan", "NA", "N/A", "null", "NULL":
		return true
	}
	return false
}

// EnsureDir 确保目录存在
func EnsureDir(dirPath string) error {
	if dirPath == "" {
		return nil
	}
	if info, err := os.Stat(dirPath); err == nil {
		if info.IsDir() {
			return nil
		}
		return fmt.Errorf("%s exists but is not a directory", dirPath)
	}
	return os.MkdirAll(dirPath, 0755)
}

// Export 按扩展名把 DataFrame 写成 csv 或 xlsx
func Export(df dataframe.DataFrame, filePath string) error {
	if err := EnsureDir(filepath.Dir(filePath)); err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".xlsx":
		return SaveToExcel(df, filePath)
	case ".csv", "":
		return SaveToCSV(df, filePath)
	default:
		return fmt.Errorf("不支持的导出格式: %s", filePath)
	}
}

func SaveToCSV(df dataframe.DataFrame, filePath string) error {
	csvFile, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("文件写入错误: %w", err)
	}
	defer csvFile.Close()

	if err := df.WriteCSV(csvFile); err != nil {
		return fmt.Errorf("保存CSV文件失败: %w", err)
	}
	return nil
}

// SaveToExcel 用流式写入保存 DataFrame，十万行级别也不会占用过多内存
func SaveToExcel(df dataframe.DataFrame, filePath string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Sheet1"

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return fmt.Errorf("创建写入流失败: %w", err)
	}

	// 写入列名
	colNames := df.Names()
	header := make([]interface{}, len(colNames))
	for i, name := range colNames {
		header[i] = name
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	cols := make([]series.Series, len(colNames))
	for i, name := range colNames {
		cols[i] = df.Col(name)
	}

	// 写入数据
	for rowIdx := 0; rowIdx < df.Nrow(); rowIdx++ {
		values := make([]interface{}, len(cols))
		for colIdx, col := range cols {
			values[colIdx] = col.Val(rowIdx)
		}
		cell, _ := excelize.CoordinatesToCellName(1, rowIdx+2)
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("写入第 %d 行失败: %w", rowIdx+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return err
	}

	// 保存文件
	if err := f.SaveAs(filePath); err != nil {
		return fmt.Errorf("保存Excel文件失败: %w", err)
	}
	return nil
}
