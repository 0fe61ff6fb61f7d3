package processor

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"PassengerSatisfaction/src/config"
	"PassengerSatisfaction/src/storage"
	"PassengerSatisfaction/src/utils"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// DataProcess 清洗步骤，处理结果写回传入的 DataFrame
type DataProcess interface {
	DataProcessFunc(data *dataframe.DataFrame) error
}

// ProcessFunc 让普通函数满足 DataProcess
type ProcessFunc func(data *dataframe.DataFrame) error

func (f ProcessFunc) DataProcessFunc(data *dataframe.DataFrame) error { return f(data) }

// CleanReport 一次清洗的结果摘要
type CleanReport struct {
	RowsIn   int
	RowsOut  int
	Dropped  []string            // 实际删除的列
	Unmapped map[string][]string // 列名 -> 映射表里没有的取值，原样保留
	Filled   map[string]int      // 列名 -> 填 0 的缺失值个数
}

// UnmappedCount 所有列未映射取值的个数
func (r *CleanReport) UnmappedCount() int {
	n := 0
	for _, v := range r.Unmapped {
		n += len(v)
	}
	return n
}

// Cleaner 按固定顺序执行: 删列 -> 改列名 -> 替换取值 -> 填充缺失 -> 整数化
type Cleaner struct {
	dcfg   *config.DataConfig
	logger *storage.Logger
}

func NewCleaner(dcfg *config.DataConfig, logger *storage.Logger) *Cleaner {
	return &Cleaner{dcfg: dcfg, logger: logger}
}

// Clean 输入原始表(全部为字符串列)，返回只读的 Table
// 原始表不会被修改
func (c *Cleaner) Clean(raw dataframe.DataFrame) (*Table, *CleanReport, error) {
	if raw.Err != nil {
		return nil, nil, fmt.Errorf("%w: %v", utils.ErrParse, raw.Err)
	}

	report := &CleanReport{
		RowsIn:   raw.Nrow(),
		Unmapped: make(map[string][]string),
		Filled:   make(map[string]int),
	}

	data := raw.Copy()
	for _, step := range c.steps(report) {
		if err := step.DataProcessFunc(&data); err != nil {
			return nil, report, err
		}
	}

	report.RowsOut = data.Nrow()
	if report.RowsOut != report.RowsIn {
		return nil, report, fmt.Errorf("清洗前后行数不一致: %d -> %d", report.RowsIn, report.RowsOut)
	}

	for col, values := range report.Unmapped {
		c.warn(fmt.Sprintf("列 %s 有 %d 个取值不在映射表中，保持原值: %s",
			col, len(values), strings.Join(values, ", ")))
	}

	return NewTable(data), report, nil
}

func (c *Cleaner) steps(report *CleanReport) []DataProcess {
	return []DataProcess{
		ProcessFunc(func(data *dataframe.DataFrame) error {
			var dropped []string
			*data, dropped = PruneColumns(*data, c.dcfg.DropColumns)
			report.Dropped = dropped
			return nil
		}),
		ProcessFunc(func(data *dataframe.DataFrame) error {
			df, err := RenameColumns(*data, c.dcfg.Columns)
			if err != nil {
				return err
			}
			*data = df
			return nil
		}),
		ProcessFunc(func(data *dataframe.DataFrame) error {
			// 按列名排序，保证报告和日志顺序稳定
			cols := make([]string, 0, len(c.dcfg.Relabel))
			for col := range c.dcfg.Relabel {
				cols = append(cols, col)
			}
			sort.Strings(cols)

			for _, col := range cols {
				df, unmapped, err := Relabel(*data, col, c.dcfg.GetRelabel(col))
				if err != nil {
					return err
				}
				*data = df
				if len(unmapped) > 0 {
					report.Unmapped[col] = unmapped
				}
			}
			return nil
		}),
		ProcessFunc(func(data *dataframe.DataFrame) error {
			for _, col := range c.dcfg.ColumnsOfKind(config.KindFloat) {
				df, filled, err := FillMissing(*data, col, 0)
				if err != nil {
					return err
				}
				*data = df
				report.Filled[col] = filled
			}
			return nil
		}),
		ProcessFunc(func(data *dataframe.DataFrame) error {
			df, err := CastInts(*data, c.dcfg.ColumnsOfKind(config.KindInt, config.KindScore)...)
			if err != nil {
				return err
			}
			*data = df
			return nil
		}),
	}
}

func (c *Cleaner) warn(msg string) {
	if c.logger != nil {
		c.logger.Warning(msg)
	}
}

// PruneColumns 删除存在的列，不存在的忽略；重复执行结果不变
func PruneColumns(df dataframe.DataFrame, cols []string) (dataframe.DataFrame, []string) {
	var present []string
	for _, col := range cols {
		if utils.HasColumn(df, col) && !utils.Contains(present, col) {
			present = append(present, col)
		}
	}
	if len(present) == 0 {
		return df, nil
	}
	return df.Drop(present), present
}

// RenameColumns 按映射表改列名，结果列顺序与映射表一致
// 映射表中的源列必须全部存在，且不能有映射表以外的列
func RenameColumns(df dataframe.DataFrame, columns []config.Column) (dataframe.DataFrame, error) {
	var missing, unexpected []string
	expected := make(map[string]bool, len(columns))
	for _, c := range columns {
		expected[c.Source] = true
		if !utils.HasColumn(df, c.Source) {
			missing = append(missing, c.Source)
		}
	}
	for _, name := range df.Names() {
		if !expected[name] {
			unexpected = append(unexpected, name)
		}
	}
	if len(missing) > 0 || len(unexpected) > 0 {
		return dataframe.DataFrame{}, fmt.Errorf("%w: 缺少列 [%s]，多余列 [%s]",
			utils.ErrSchemaMismatch, strings.Join(missing, ", "), strings.Join(unexpected, ", "))
	}

	list := make([]series.Series, len(columns))
	for i, c := range columns {
		s := df.Col(c.Source)
		s.Name = c.Name
		list[i] = s
	}
	out := dataframe.New(list...)
	if out.Err != nil {
		return dataframe.DataFrame{}, out.Err
	}
	return out, nil
}

// Relabel 替换分类列的取值
// 映射表里没有的取值原样保留，去重排序后作为第二个返回值
// 已经是目标取值的(例如重复清洗)不算未映射
func Relabel(df dataframe.DataFrame, col string, table map[string]string) (dataframe.DataFrame, []string, error) {
	if !utils.HasColumn(df, col) {
		return dataframe.DataFrame{}, nil, fmt.Errorf("%w: %s", utils.ErrUnknownColumn, col)
	}

	targets := make(map[string]bool, len(table))
	for _, to := range table {
		targets[to] = true
	}

	records := df.Col(col).Records()
	values := make([]string, len(records))
	unmapped := make(map[string]bool)
	for i, v := range records {
		if to, ok := table[v]; ok {
			values[i] = to
			continue
		}
		values[i] = v
		if !targets[v] {
			unmapped[v] = true
		}
	}

	out := df.Mutate(series.New(values, series.String, col))
	if out.Err != nil {
		return dataframe.DataFrame{}, nil, out.Err
	}

	var list []string
	for v := range unmapped {
		list = append(list, v)
	}
	sort.Strings(list)
	return out, list, nil
}

// FillMissing 把列转换为浮点数，缺失值替换为 fill
// 返回被填充的个数；非数字取值返回 ErrParse
func FillMissing(df dataframe.DataFrame, col string, fill float64) (dataframe.DataFrame, int, error) {
	if !utils.HasColumn(df, col) {
		return dataframe.DataFrame{}, 0, fmt.Errorf("%w: %s", utils.ErrUnknownColumn, col)
	}

	records := df.Col(col).Records()
	values := make([]float64, len(records))
	filled := 0
	for i, v := range records {
		if utils.IsMissing(v) {
			values[i] = fill
			filled++
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(f) {
			return dataframe.DataFrame{}, 0, fmt.Errorf("%w: 列 %s 第 %d 行不是数字: %q", utils.ErrParse, col, i+1, v)
		}
		values[i] = f
	}

	out := df.Mutate(series.New(values, series.Float, col))
	if out.Err != nil {
		return dataframe.DataFrame{}, 0, out.Err
	}
	return out, filled, nil
}

// CastInts 把列转换为整数列，缺失值保留为 NaN
// xlsx 读出的 "13.0" 之类整数值也接受
func CastInts(df dataframe.DataFrame, cols ...string) (dataframe.DataFrame, error) {
	out := df
	for _, col := range cols {
		if !utils.HasColumn(out, col) {
			return dataframe.DataFrame{}, fmt.Errorf("%w: %s", utils.ErrUnknownColumn, col)
		}
		records := out.Col(col).Records()
		values := make([]string, len(records))
		for i, v := range records {
			v = strings.TrimSpace(v)
			if utils.IsMissing(v) {
				values[i] = "NaN"
				continue
			}
			n, err := parseInt(v)
			if err != nil {
				return dataframe.DataFrame{}, fmt.Errorf("%w: 列 %s 第 %d 行不是整数: %q", utils.ErrParse, col, i+1, v)
			}
			values[i] = strconv.Itoa(n)
		}
		out = out.Mutate(series.New(values, series.Int, col))
		if out.Err != nil {
			return dataframe.DataFrame{}, out.Err
		}
	}
	return out, nil
}

func parseInt(v string) (int, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("not an integer: %s", v)
	}
	return int(f), nil
}
