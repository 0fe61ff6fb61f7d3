package processor

import (
	"fmt"
	"math"
	"sort"

	"PassengerSatisfaction/src/utils"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/stat"
)

// Describe 数值列的描述统计(mean/median/std/min/分位数/max)
// 只统计 Int 和 Float 列
func Describe(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	var numeric []string
	for _, name := range df.Names() {
		switch df.Col(name).Type() {
		case series.Int, series.Float:
			numeric = append(numeric, name)
		}
	}
	if len(numeric) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("没有数值列可以统计")
	}
	desc := df.Select(numeric).Describe()
	if desc.Err != nil {
		return dataframe.DataFrame{}, desc.Err
	}
	return desc, nil
}

// MissingCounts 每列缺失值个数，返回 (column, missing)
func MissingCounts(df dataframe.DataFrame) dataframe.DataFrame {
	names := df.Names()
	counts := make([]int, len(names))
	for i, name := range names {
		s := df.Col(name)
		nan := s.IsNaN()
		for j, v := range s.Records() {
			if nan[j] || utils.IsMissing(v) {
				counts[i]++
			}
		}
	}
	return dataframe.New(
		series.New(names, series.String, "column"),
		series.New(counts, series.Int, "missing"),
	)
}

// Unique 按首次出现顺序返回列的不同取值
func Unique(df dataframe.DataFrame, col string) ([]string, error) {
	if !utils.HasColumn(df, col) {
		return nil, fmt.Errorf("%w: %s", utils.ErrUnknownColumn, col)
	}
	seen := make(map[string]bool)
	var out []string
	for _, v := range df.Col(col).Records() {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out, nil
}

// Bin 直方图的一组，区间左闭右开
type Bin struct {
	Lower float64
	Upper float64
	Count int
}

func (b Bin) Label() string {
	return fmt.Sprintf("%g-%g", b.Lower, b.Upper)
}

// Histogram 按固定组距统计数值列，缺失值不计入
func Histogram(df dataframe.DataFrame, col string, width float64) ([]Bin, error) {
	values, err := numericValues(df, col)
	if err != nil {
		return nil, err
	}
	return histogram(values, width)
}

func histogram(values []float64, width float64) ([]Bin, error) {
	if width <= 0 {
		return nil, fmt.Errorf("组距必须大于 0: %g", width)
	}
	if len(values) == 0 {
		return nil, nil
	}

	min, max := values[0], values[0]
	for _, v := range values {
		min = math.Min(min, v)
		max = math.Max(max, v)
	}
	start := math.Floor(min/width) * width
	n := int(math.Floor((max-start)/width)) + 1

	bins := make([]Bin, n)
	for i := range bins {
		bins[i].Lower = start + float64(i)*width
		bins[i].Upper = bins[i].Lower + width
	}
	for _, v := range values {
		i := int(math.Floor((v - start) / width))
		if i >= n {
			i = n - 1
		}
		bins[i].Count++
	}
	return bins, nil
}

// BoxStat 一组数据的箱线图统计量
type BoxStat struct {
	Group    string
	N        int
	Min      float64
	Q1       float64
	Median   float64
	Q3       float64
	Max      float64
	Mean     float64
	Std      float64
	Lower    float64 // 下须，Q1-1.5IQR 以内的最小值
	Upper    float64 // 上须
	Outliers int
}

// BoxStats 按 groupCol 分组计算 valueCol 的箱线图统计量，组按升序排列
// groupCol 为空时整列作为一组
func BoxStats(df dataframe.DataFrame, valueCol, groupCol string) ([]BoxStat, error) {
	groups, order, err := splitValues(df, valueCol, groupCol)
	if err != nil {
		return nil, err
	}

	out := make([]BoxStat, 0, len(order))
	for _, g := range order {
		values := groups[g]
		if len(values) == 0 {
			continue
		}
		out = append(out, boxStat(g, values))
	}
	return out, nil
}

func boxStat(group string, values []float64) BoxStat {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	b := BoxStat{
		Group:  group,
		N:      len(sorted),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Q1:     stat.Quantile(0.25, stat.Empirical, sorted, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		Q3:     stat.Quantile(0.75, stat.Empirical, sorted, nil),
	}
	b.Mean, b.Std = stat.MeanStdDev(sorted, nil)
	if len(sorted) < 2 {
		b.Std = 0
	}

	iqr := b.Q3 - b.Q1
	lowFence, highFence := b.Q1-1.5*iqr, b.Q3+1.5*iqr
	b.Lower, b.Upper = b.Max, b.Min
	for _, v := range sorted {
		if v < lowFence || v > highFence {
			b.Outliers++
			continue
		}
		b.Lower = math.Min(b.Lower, v)
		b.Upper = math.Max(b.Upper, v)
	}
	return b
}

// Distribution 每组在同一套分箱上的频率，用来画小提琴图
type Distribution struct {
	Bins   []Bin               // 分箱边界，Count 为全部组合计
	Groups []string            // 组名，升序
	Share  map[string][]float64 // 组名 -> 每个分箱占该组的比例
}

// Distributions 按 groupCol 分组，在统一分箱上统计 valueCol 的分布
func Distributions(df dataframe.DataFrame, valueCol, groupCol string, width float64) (Distribution, error) {
	groups, order, err := splitValues(df, valueCol, groupCol)
	if err != nil {
		return Distribution{}, err
	}

	var all []float64
	for _, g := range order {
		all = append(all, groups[g]...)
	}
	bins, err := histogram(all, width)
	if err != nil {
		return Distribution{}, err
	}

	d := Distribution{Bins: bins, Groups: order, Share: make(map[string][]float64, len(order))}
	if len(bins) == 0 {
		return d, nil
	}
	start := bins[0].Lower
	for _, g := range order {
		share := make([]float64, len(bins))
		for _, v := range groups[g] {
			i := int(math.Floor((v - start) / width))
			if i >= len(bins) {
				i = len(bins) - 1
			}
			share[i]++
		}
		if n := float64(len(groups[g])); n > 0 {
			for i := range share {
				share[i] /= n
			}
		}
		d.Share[g] = share
	}
	return d, nil
}

// splitValues 取出数值列并按分组列拆开，缺失值跳过
func splitValues(df dataframe.DataFrame, valueCol, groupCol string) (map[string][]float64, []string, error) {
	values, err := numericColumn(df, valueCol)
	if err != nil {
		return nil, nil, err
	}

	keys := make([]string, len(values))
	if groupCol != "" {
		if !utils.HasColumn(df, groupCol) {
			return nil, nil, fmt.Errorf("%w: %s", utils.ErrUnknownColumn, groupCol)
		}
		keys = df.Col(groupCol).Records()
	} else {
		for i := range keys {
			keys[i] = valueCol
		}
	}

	groups := make(map[string][]float64)
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		groups[keys[i]] = append(groups[keys[i]], v)
	}

	order := make([]string, 0, len(groups))
	for g := range groups {
		order = append(order, g)
	}
	sort.Slice(order, func(i, j int) bool { return compareKey(order[i], order[j]) < 0 })
	return groups, order, nil
}

// numericValues 数值列去掉缺失值后的取值
func numericValues(df dataframe.DataFrame, col string) ([]float64, error) {
	values, err := numericColumn(df, col)
	if err != nil {
		return nil, err
	}
	out := values[:0]
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out, nil
}

// numericColumn 缺失值为 NaN，长度与行数一致
func numericColumn(df dataframe.DataFrame, col string) ([]float64, error) {
	if !utils.HasColumn(df, col) {
		return nil, fmt.Errorf("%w: %s", utils.ErrUnknownColumn, col)
	}
	s := df.Col(col)
	switch s.Type() {
	case series.Int, series.Float:
		return s.Float(), nil
	}
	return nil, fmt.Errorf("%w: 列 %s 不是数值列", utils.ErrParse, col)
}
