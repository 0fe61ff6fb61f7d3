package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigsDefaultsWhenFilesMissing(t *testing.T) {
	cfg, dcfg, err := loadConfigs(t.TempDir(), "config.json", "dataconfig.json")
	require.NoError(t, err)

	assert.Equal(t, "aerolinea.csv", cfg.Input.Path)
	assert.Equal(t, 5*time.Minute, time.Duration(cfg.Email.CheckInterval))
	assert.Len(t, dcfg.Columns, 23)
	assert.Equal(t, []string{"Unnamed: 0", "id"}, dcfg.DropColumns)
}

func TestLoadConfigsOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	body := `{"input":{"path":"train.csv","delimiter":";"},"email":{"check_interval":"90s"},"log_level":"DEBUG"}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(body), 0644))

	cfg, _, err := loadConfigs(dir, "config.json", "dataconfig.json")
	require.NoError(t, err)

	assert.Equal(t, "train.csv", cfg.Input.Path)
	assert.Equal(t, ";", cfg.Input.Delimiter)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, 90*time.Second, time.Duration(cfg.Email.CheckInterval))
	// 未覆盖的字段保持默认值
	assert.Equal(t, "report.xlsx", cfg.Output.Workbook)
}

func TestLoadConfigsYAMLDataConfig(t *testing.T) {
	dir := t.TempDir()
	body := `
drop_columns: [id]
columns:
  - {source: Gender, name: gender, kind: category}
  - {source: Arrival Delay in Minutes, name: arrival_delay, kind: float}
relabel:
  gender:
    Male: M
    Female: F
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dataconfig.yaml"), []byte(body), 0644))

	_, dcfg, err := loadConfigs(dir, "config.json", "dataconfig.yaml")
	require.NoError(t, err)

	assert.Equal(t, []string{"gender", "arrival_delay"}, dcfg.Names())
	assert.Equal(t, []string{"Gender", "Arrival Delay in Minutes"}, dcfg.Sources())
	assert.Equal(t, "F", dcfg.GetRelabel("gender")["Female"])
}

func TestLoadConfigsReportsParseErrors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte("{"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dataconfig.json"), []byte("["), 0644))

	_, _, err := loadConfigs(dir, "config.json", "dataconfig.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Config")
	assert.Contains(t, err.Error(), "DataConfig")
}

func TestDataConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(dc *DataConfig)
		wantErr bool
	}{
		{name: "default is valid", mutate: func(dc *DataConfig) {}},
		{
			name:    "no columns",
			mutate:  func(dc *DataConfig) { dc.Columns = nil },
			wantErr: true,
		},
		{
			name:    "duplicated target name",
			mutate:  func(dc *DataConfig) { dc.Columns[1].Name = dc.Columns[0].Name },
			wantErr: true,
		},
		{
			name:    "unknown kind",
			mutate:  func(dc *DataConfig) { dc.Columns[0].Kind = "date" },
			wantErr: true,
		},
		{
			name:    "relabel on unknown column",
			mutate:  func(dc *DataConfig) { dc.Relabel["nope"] = map[string]string{"a": "b"} },
			wantErr: true,
		},
		{
			name:    "score title on unknown column",
			mutate:  func(dc *DataConfig) { dc.ScoreTitles = append(dc.ScoreTitles, ScoreTitle{Column: "nope"}) },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dc := DefaultDataConfig()
			tt.mutate(dc)
			err := dc.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDataConfigRelabelAccessors(t *testing.T) {
	dc := DefaultDataConfig()

	got := dc.GetRelabel("travel_type")
	got["Business travel"] = "changed"
	assert.Equal(t, "Viaje de negocios", dc.GetRelabel("travel_type")["Business travel"])

	assert.Nil(t, dc.GetRelabel("seat_class"))
}

func TestColumnsOfKind(t *testing.T) {
	dc := DefaultDataConfig()
	assert.Len(t, dc.ColumnsOfKind(KindScore), 14)
	assert.Equal(t, []string{"arrival_delay"}, dc.ColumnsOfKind(KindFloat))
	assert.Equal(t, []string{"age", "flight_distance", "departure_delay"}, dc.ColumnsOfKind(KindInt))
}

func TestShippedConfigMatchesDefaults(t *testing.T) {
	cfg, dcfg, err := loadConfigs(filepath.Join("..", "..", "config"), "config.json", "dataconfig.yaml")
	require.NoError(t, err)

	assert.Equal(t, DefaultDataConfig(), dcfg)
	assert.Equal(t, "data/aerolinea.csv", cfg.Input.Path)
	assert.Equal(t, 5*time.Minute, time.Duration(cfg.Email.CheckInterval))
	assert.Empty(t, cfg.SendEmail.Recipients)
}
