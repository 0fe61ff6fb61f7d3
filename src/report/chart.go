package report

import (
	"fmt"

	"PassengerSatisfaction/src/processor"

	"github.com/go-gota/gota/dataframe"
)

// Kind 图表类型
type Kind string

const (
	Pie       Kind = "pie"
	Bar       Kind = "bar" // 分组条形图
	Heatmap   Kind = "heatmap"
	Histogram Kind = "histogram"
	Box       Kind = "box"
	Violin    Kind = "violin"
	Count     Kind = "count"
)

// Series 一组数值，对应图中的一种颜色
type Series struct {
	Name   string
	Values []float64
}

// Chart 图表描述：数据、类型和固定的标题标签
// Heatmap 使用 Matrix，Box 使用 Boxes，其余类型使用 Categories + Series
type Chart struct {
	Name       string // 工作表名，最长 31 个字符
	Kind       Kind
	Title      string
	XLabel     string
	YLabel     string
	Categories []string
	Series     []Series
	Matrix     *processor.Matrix
	Boxes      []processor.BoxStat
}

// Validate 检查数据与图表类型是否匹配
func (c Chart) Validate() error {
	if c.Name == "" || len([]rune(c.Name)) > 31 {
		return fmt.Errorf("图表 %q 名称为空或超过 31 个字符", c.Name)
	}
	switch c.Kind {
	case Heatmap:
		if c.Matrix == nil {
			return fmt.Errorf("热力图 %s 缺少矩阵数据", c.Name)
		}
	case Box:
		if len(c.Boxes) == 0 {
			return fmt.Errorf("箱线图 %s 没有数据", c.Name)
		}
	case Pie, Bar, Histogram, Violin, Count:
		if len(c.Series) == 0 {
			return fmt.Errorf("图表 %s 没有数据系列", c.Name)
		}
		for _, s := range c.Series {
			if len(s.Values) != len(c.Categories) {
				return fmt.Errorf("图表 %s 系列 %s 有 %d 个值，分类有 %d 个",
					c.Name, s.Name, len(s.Values), len(c.Categories))
			}
		}
		if c.Kind == Pie && len(c.Series) != 1 {
			return fmt.Errorf("饼图 %s 只能有一个系列", c.Name)
		}
	default:
		return fmt.Errorf("未知图表类型: %s", c.Kind)
	}
	return nil
}

// countSeries 把 CountBy 的单列结果转换为分类和一个系列
func countSeries(summary dataframe.DataFrame, keyCol, name string) ([]string, Series, error) {
	counts, err := summary.Col(processor.CountColumn).Int()
	if err != nil {
		return nil, Series{}, err
	}
	values := make([]float64, len(counts))
	for i, c := range counts {
		values[i] = float64(c)
	}
	return summary.Col(keyCol).Records(), Series{Name: name, Values: values}, nil
}

// matrixSeries 矩阵的每一列作为一个系列，行作为分类
func matrixSeries(m processor.Matrix) ([]string, []Series) {
	list := make([]Series, len(m.Cols))
	for j, col := range m.Cols {
		values := make([]float64, len(m.Rows))
		for i := range m.Rows {
			values[i] = float64(m.Values[i][j])
		}
		list[j] = Series{Name: col, Values: values}
	}
	return m.Rows, list
}
