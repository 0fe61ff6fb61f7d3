package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// 列类型
const (
	KindCategory = "category" // 分类列，保持字符串
	KindInt      = "int"      // 整数列
	KindScore    = "score"    // 0-5 评分列，按整数处理
	KindFloat    = "float"    // 浮点列，缺失值填 0
)

// Config 结构体定义了应用程序的配置结构
type Config struct {
	Input struct {
		Path      string `json:"path"`       // 问卷数据文件(.csv / .xlsx)
		Delimiter string `json:"delimiter"`  // csv 分隔符
		SheetName string `json:"sheet_name"` // xlsx 工作表名，为空取第一个
	} `json:"input"`

	Output struct {
		Dir      string `json:"dir"`      // 输出目录
		Workbook string `json:"workbook"` // 报表工作簿文件名
		Export   string `json:"export"`   // 清洗后数据导出文件名，扩展名决定格式
	} `json:"output"`

	AgeBinWidth int    `json:"age_bin_width"` // 年龄直方图组距
	LogName     string `json:"log_name"`
	LogMaxSize  string `json:"log_max_size"`
	LogLevel    string `json:"log_level"`
	DataDir     string `json:"data_dir"` // 邮件附件保存目录

	Email struct {
		Server        string   `json:"server"`         // 邮件服务器地址
		Username      string   `json:"username"`       // 邮箱用户名
		Password      string   `json:"password"`       // 邮箱密码
		TargetSubject string   `json:"target_subject"` // 需要匹配的邮件主题
		CheckInterval Duration `json:"check_interval"` // 检查新邮件的间隔时间
	} `json:"email"`

	SendEmail struct {
		Server     string   `json:"server"`     // smtp 服务器地址
		Username   string   `json:"username"`   // 发件邮箱
		Password   string   `json:"password"`   // 授权码
		Subject    string   `json:"subject"`    // 报表邮件主题
		Recipients []string `json:"recipients"` // 收件人
	} `json:"send_email"`
}

// Column 源表头到规范列名的映射
type Column struct {
	Source string `json:"source" yaml:"source"`
	Name   string `json:"name" yaml:"name"`
	Kind   string `json:"kind" yaml:"kind"`
}

// ScoreTitle 满意度子项评分图的标题
type ScoreTitle struct {
	Column string `json:"column" yaml:"column"`
	Title  string `json:"title" yaml:"title"`
}

// DataConfig 描述问卷数据的表结构和清洗规则
type DataConfig struct {
	DropColumns []string                     `json:"drop_columns" yaml:"drop_columns"`
	Columns     []Column                     `json:"columns" yaml:"columns"`
	Relabel     map[string]map[string]string `json:"relabel" yaml:"relabel"`
	ScoreTitles []ScoreTitle                 `json:"score_titles" yaml:"score_titles"`
}

var (
	once               sync.Once
	instance           *Config
	dataConfigInstance *DataConfig
	mu                 sync.RWMutex
)

// LoadConfig 只加载一次，之后返回同一份配置
func LoadConfig(jsonFolder, jsonFile, dataConfigFile string) (*Config, *DataConfig, error) {
	var err error
	once.Do(func() {
		instance, dataConfigInstance, err = loadConfigs(jsonFolder, jsonFile, dataConfigFile)
	})
	return instance, dataConfigInstance, err
}

func loadConfigs(jsonFolder, jsonFile, dataConfigFile string) (*Config, *DataConfig, error) {
	configFile := filepath.Join(jsonFolder, jsonFile)
	dataFile := filepath.Join(jsonFolder, dataConfigFile)

	configData, err := readFile(configFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	dataConfigData, err := readFile(dataFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, nil, fmt.Errorf("读取数据配置文件失败: %w", err)
	}

	cfgChan := make(chan *Config, 1)
	dcfgChan := make(chan *DataConfig, 1)
	errChan := make(chan error, 2)

	go parseConfig(configData, cfgChan, errChan)
	go parseDataConfig(dataConfigData, filepath.Ext(dataFile), dcfgChan, errChan)

	cfg, dcfg, err := waitForResults(cfgChan, dcfgChan, errChan)
	if err != nil {
		return nil, nil, err
	}

	if err := dcfg.Validate(); err != nil {
		return nil, nil, err
	}

	return cfg, dcfg, nil
}

func readFile(filePath string) ([]byte, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("无法读取文件 %s: %w", filePath, err)
	}
	return data, nil
}

// parseConfig 空内容时使用默认配置，文件中的字段覆盖默认值
func parseConfig(data []byte, resultChan chan<- *Config, errChan chan<- error) {
	cfg := Default()
	if len(data) == 0 {
		resultChan <- cfg
		return
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		errChan <- fmt.Errorf("解析Config失败: %w", err)
		return
	}
	resultChan <- cfg
}

func parseDataConfig(data []byte, ext string, resultChan chan<- *DataConfig, errChan chan<- error) {
	if len(data) == 0 {
		resultChan <- DefaultDataConfig()
		return
	}

	var dcfg DataConfig
	var err error
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &dcfg)
	default:
		err = json.Unmarshal(data, &dcfg)
	}
	if err != nil {
		errChan <- fmt.Errorf("解析DataConfig失败: %w", err)
		return
	}
	resultChan <- &dcfg
}

func waitForResults(
	cfgChan <-chan *Config,
	dcfgChan <-chan *DataConfig,
	errChan <-chan error,
) (*Config, *DataConfig, error) {
	var (
		cfg    *Config
		dcfg   *DataConfig
		errors []error
	)

	for i := 0; i < 2; i++ {
		select {
		case c := <-cfgChan:
			cfg = c
		case d := <-dcfgChan:
			dcfg = d
		case err := <-errChan:
			errors = append(errors, err)
		}
	}

	if len(errors) > 0 {
		return nil, nil, combineErrors(errors)
	}

	if cfg == nil || dcfg == nil {
		return nil, nil, fmt.Errorf("部分配置未加载成功")
	}

	return cfg, dcfg, nil
}

func combineErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("配置加载遇到多个错误: %w", errors.Join(errs...))
}

// Validate 检查列定义是否完整、列名是否重复
func (dc *DataConfig) Validate() error {
	if len(dc.Columns) == 0 {
		return fmt.Errorf("数据配置缺少 columns 定义")
	}

	seenSource := make(map[string]bool, len(dc.Columns))
	seenName := make(map[string]bool, len(dc.Columns))
	for _, c := range dc.Columns {
		if c.Source == "" || c.Name == "" {
			return fmt.Errorf("列定义不完整: %+v", c)
		}
		if seenSource[c.Source] {
			return fmt.Errorf("源列重复: %s", c.Source)
		}
		if seenName[c.Name] {
			return fmt.Errorf("目标列重复: %s", c.Name)
		}
		switch c.Kind {
		case KindCategory, KindInt, KindScore, KindFloat:
		default:
			return fmt.Errorf("列 %s 的类型未知: %q", c.Name, c.Kind)
		}
		seenSource[c.Source] = true
		seenName[c.Name] = true
	}

	for col := range dc.Relabel {
		if !seenName[col] {
			return fmt.Errorf("relabel 引用了不存在的列: %s", col)
		}
	}
	for _, st := range dc.ScoreTitles {
		if !seenName[st.Column] {
			return fmt.Errorf("score_titles 引用了不存在的列: %s", st.Column)
		}
	}
	return nil
}

// Names 返回规范列名，顺序与 columns 定义一致
func (dc *DataConfig) Names() []string {
	names := make([]string, len(dc.Columns))
	for i, c := range dc.Columns {
		names[i] = c.Name
	}
	return names
}

// Sources 返回期望的源表头
func (dc *DataConfig) Sources() []string {
	sources := make([]string, len(dc.Columns))
	for i, c := range dc.Columns {
		sources[i] = c.Source
	}
	return sources
}

// ColumnsOfKind 返回指定类型的规范列名
func (dc *DataConfig) ColumnsOfKind(kinds ...string) []string {
	var names []string
	for _, c := range dc.Columns {
		for _, k := range kinds {
			if c.Kind == k {
				names = append(names, c.Name)
				break
			}
		}
	}
	return names
}

// GetRelabel 返回某列的映射表副本
func (dc *DataConfig) GetRelabel(colName string) map[string]string {
	mu.RLock()
	defer mu.RUnlock()
	src := dc.Relabel[colName]
	if src == nil {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// Duration 是time.Duration的自定义包装类型
// 用于支持JSON序列化和反序列化
type Duration time.Duration

// UnmarshalJSON 实现json.Unmarshaler接口
// 用于从JSON字符串解析Duration
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// MarshalJSON 实现json.Marshaler接口
// 用于将Duration序列化为JSON字符串
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
