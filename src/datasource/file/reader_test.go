package file

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"PassengerSatisfaction/src/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const surveyCSV = `,id,Gender,Customer Type,Age,satisfaction,Arrival Delay in Minutes
0,70172,Male,Loyal Customer,13,neutral or dissatisfied,18
1,5047,Female,disloyal Customer,25,satisfied,
2,110028,Female,Loyal Customer,26,satisfied,0
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeFile(t, "aerolinea.csv", surveyCSV)

	df, err := Load(path, Options{})
	require.NoError(t, err)

	assert.Equal(t, 3, df.Nrow())
	assert.Equal(t, []string{"Unnamed: 0", "id", "Gender", "Customer Type", "Age", "satisfaction", "Arrival Delay in Minutes"}, df.Names())
	assert.Equal(t, []string{"18", "", "0"}, df.Col("Arrival Delay in Minutes").Records())
}

func TestLoadCSVWithDelimiterAndBOM(t *testing.T) {
	path := writeFile(t, "survey.csv", "\ufeffGender;Age\nMale;30\n")

	df, err := Load(path, Options{Delimiter: ';'})
	require.NoError(t, err)
	assert.Equal(t, []string{"Gender", "Age"}, df.Names())
	assert.Equal(t, []string{"30"}, df.Col("Age").Records())
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
		want error
	}{
		{
			name: "missing file",
			path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.csv") },
			want: utils.ErrFileNotFound,
		},
		{
			name: "inconsistent column count",
			path: func(t *testing.T) string { return writeFile(t, "bad.csv", "a,b\n1,2,3\n") },
			want: utils.ErrParse,
		},
		{
			name: "empty file",
			path: func(t *testing.T) string { return writeFile(t, "empty.csv", "") },
			want: utils.ErrParse,
		},
		{
			name: "duplicated header",
			path: func(t *testing.T) string { return writeFile(t, "dup.csv", "a,a\n1,2\n") },
			want: utils.ErrParse,
		},
		{
			name: "broken xlsx",
			path: func(t *testing.T) string { return writeFile(t, "broken.xlsx", "not a zip") },
			want: utils.ErrParse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path(t), Options{})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func writeXLSX(t *testing.T, sheet string, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	path := filepath.Join(t.TempDir(), "survey.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoadXLSX(t *testing.T) {
	path := writeXLSX(t, "train", [][]interface{}{
		{"Gender", "Age", "Arrival Delay in Minutes"},
		{"Male", 13, 18},
		{"Female", 25},
	})

	df, err := Load(path, Options{SheetName: "train"})
	require.NoError(t, err)
	assert.Equal(t, 2, df.Nrow())
	assert.Equal(t, []string{"Gender", "Age", "Arrival Delay in Minutes"}, df.Names())
	// 行尾缺失的单元格补为空字符串
	assert.Equal(t, []string{"18", ""}, df.Col("Arrival Delay in Minutes").Records())

	_, err = Load(path, Options{SheetName: "missing"})
	assert.ErrorIs(t, err, utils.ErrParse)
}

func TestReadXLSXBinary(t *testing.T) {
	path := writeXLSX(t, "Sheet1", [][]interface{}{
		{"Gender", "Age"},
		{"Female", 40},
	})
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	df, err := ReadXLSXBinary(data, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Female"}, df.Col("Gender").Records())
}

func TestFileMonitorFiresOnWrite(t *testing.T) {
	path := writeFile(t, "aerolinea.csv", "a\n1\n")
	monitor, err := NewFileMonitor(path)
	require.NoError(t, err)
	defer monitor.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	fired := make(chan string, 1)
	go monitor.Watch(ctx, func(p string) {
		select {
		case fired <- p:
		default:
		}
	})

	// 先写临时文件再改名覆盖，修改时间设为将来保证晚于初始记录
	tmp := path + ".tmp"
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.WriteFile(tmp, []byte("a\n2\n"), 0644))
	require.NoError(t, os.Chtimes(tmp, future, future))
	require.NoError(t, os.Rename(tmp, path))

	select {
	case p := <-fired:
		assert.True(t, strings.HasSuffix(p, "aerolinea.csv"))
	case <-ctx.Done():
		t.Fatal("monitor did not fire")
	}
}
