package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleFrame() dataframe.DataFrame {
	return dataframe.New(
		series.New([]string{"Femenino", "Masculino"}, series.String, "gender"),
		series.New([]float64{0, 12.5}, series.Float, "arrival_delay"),
	)
}

func TestHasColumnAndContains(t *testing.T) {
	df := sampleFrame()
	assert.True(t, HasColumn(df, "gender"))
	assert.False(t, HasColumn(df, "id"))
	assert.True(t, Contains([]string{"a", "b"}, "b"))
	assert.False(t, Contains([]int{1, 2}, 3))
}

func TestIsMissing(t *testing.T) {
	for _, v := range []string{"", " ", "NaN", "nan", "NA", "null"} {
		assert.True(t, IsMissing(v), v)
	}
	for _, v := range []string{"0", "12", "satisfied"} {
		assert.False(t, IsMissing(v), v)
	}
}

func TestExportCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "clean.csv")
	require.NoError(t, Export(sampleFrame(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, "gender,arrival_delay", lines[0])
	assert.Len(t, lines, 3)
}

func TestExportXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clean.xlsx")
	require.NoError(t, Export(sampleFrame(), path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"gender", "arrival_delay"}, rows[0])
	assert.Equal(t, "Masculino", rows[2][0])
	assert.Equal(t, "12.5", rows[2][1])
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	err := Export(sampleFrame(), filepath.Join(t.TempDir(), "clean.parquet"))
	assert.Error(t, err)
}

func TestResolveConfigDir(t *testing.T) {
	t.Setenv(ConfigDirEnv, "/etc/survey")
	assert.Equal(t, "cfg", ResolveConfigDir("cfg"))
	assert.Equal(t, "/etc/survey", ResolveConfigDir(""))

	t.Setenv(ConfigDirEnv, "")
	assert.Equal(t, "./config", ResolveConfigDir(""))
}
