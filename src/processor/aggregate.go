package processor

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"PassengerSatisfaction/src/utils"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// CountColumn 计数结果列名
const CountColumn = "count"

// CountBy 按一列或两列分组计数，返回 (分组列..., count)
// 结果按分组键升序排列，数字按数值比较
func CountBy(df dataframe.DataFrame, cols ...string) (dataframe.DataFrame, error) {
	if len(cols) < 1 || len(cols) > 2 {
		return dataframe.DataFrame{}, fmt.Errorf("%w: got %d", utils.ErrGroupArity, len(cols))
	}
	if len(cols) == 2 && cols[0] == cols[1] {
		return dataframe.DataFrame{}, fmt.Errorf("%w: duplicated column %s", utils.ErrGroupArity, cols[0])
	}
	for _, col := range cols {
		if !utils.HasColumn(df, col) {
			return dataframe.DataFrame{}, fmt.Errorf("%w: %s", utils.ErrUnknownColumn, col)
		}
	}

	// 按键值元组计数；缺失值以 "NaN" 作为一个分组
	type tuple [2]string
	counts := make(map[tuple]int)
	var keys []tuple
	records := make([][]string, len(cols))
	for i, col := range cols {
		records[i] = df.Col(col).Records()
	}
	for row := 0; row < df.Nrow(); row++ {
		var k tuple
		for i := range cols {
			k[i] = records[i][row]
		}
		if _, ok := counts[k]; !ok {
			keys = append(keys, k)
		}
		counts[k]++
	}

	sort.Slice(keys, func(i, j int) bool {
		for c := range cols {
			if d := compareKey(keys[i][c], keys[j][c]); d != 0 {
				return d < 0
			}
		}
		return false
	})

	keyValues := make([][]string, len(cols))
	totals := make([]int, len(keys))
	for i, k := range keys {
		for c := range cols {
			keyValues[c] = append(keyValues[c], k[c])
		}
		totals[i] = counts[k]
	}

	list := make([]series.Series, 0, len(cols)+1)
	for k, col := range cols {
		if keyValues[k] == nil {
			keyValues[k] = []string{}
		}
		list = append(list, series.New(keyValues[k], series.String, col))
	}
	list = append(list, series.New(totals, series.Int, CountColumn))
	return dataframe.New(list...), nil
}

// ValueCounts 单列计数，按个数降序，个数相同按取值升序
func ValueCounts(df dataframe.DataFrame, col string) (dataframe.DataFrame, error) {
	summary, err := CountBy(df, col)
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	keys := summary.Col(col).Records()
	counts, err := summary.Col(CountColumn).Int()
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	idx := make([]int, len(keys))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return counts[idx[a]] > counts[idx[b]]
	})

	sortedKeys := make([]string, len(idx))
	sortedCounts := make([]int, len(idx))
	for i, j := range idx {
		sortedKeys[i] = keys[j]
		sortedCounts[i] = counts[j]
	}
	return dataframe.New(
		series.New(sortedKeys, series.String, col),
		series.New(sortedCounts, series.Int, CountColumn),
	), nil
}

// Matrix 两列交叉计数，Values[i][j] 对应 Rows[i] x Cols[j]
type Matrix struct {
	RowName string
	ColName string
	Rows    []string
	Cols    []string
	Values  [][]int
}

// Max 矩阵中的最大值，空矩阵为 0
func (m Matrix) Max() int {
	max := 0
	for _, row := range m.Values {
		for _, v := range row {
			if v > max {
				max = v
			}
		}
	}
	return max
}

// Pivot 把两列 CountBy 的结果展开为矩阵，没有出现的组合记 0
func Pivot(summary dataframe.DataFrame, rowCol, colCol string) (Matrix, error) {
	for _, col := range []string{rowCol, colCol, CountColumn} {
		if !utils.HasColumn(summary, col) {
			return Matrix{}, fmt.Errorf("%w: %s", utils.ErrUnknownColumn, col)
		}
	}

	rowKeys := summary.Col(rowCol).Records()
	colKeys := summary.Col(colCol).Records()
	counts, err := summary.Col(CountColumn).Int()
	if err != nil {
		return Matrix{}, err
	}

	m := Matrix{
		RowName: rowCol,
		ColName: colCol,
		Rows:    distinctSorted(rowKeys),
		Cols:    distinctSorted(colKeys),
	}
	rowIdx := indexOf(m.Rows)
	colIdx := indexOf(m.Cols)
	m.Values = make([][]int, len(m.Rows))
	for i := range m.Values {
		m.Values[i] = make([]int, len(m.Cols))
	}
	for i := range counts {
		m.Values[rowIdx[rowKeys[i]]][colIdx[colKeys[i]]] += counts[i]
	}
	return m, nil
}

// CrossTab CountBy + Pivot
func CrossTab(df dataframe.DataFrame, rowCol, colCol string) (Matrix, error) {
	summary, err := CountBy(df, rowCol, colCol)
	if err != nil {
		return Matrix{}, err
	}
	return Pivot(summary, rowCol, colCol)
}

// FilterIn 保留 col 取值属于 values 的行
func FilterIn(df dataframe.DataFrame, col string, values ...string) (dataframe.DataFrame, error) {
	if !utils.HasColumn(df, col) {
		return dataframe.DataFrame{}, fmt.Errorf("%w: %s", utils.ErrUnknownColumn, col)
	}
	out := df.Filter(dataframe.F{
		Colname:    col,
		Comparator: series.CompFunc,
		Comparando: func(el series.Element) bool {
			return !el.IsNA() && utils.Contains(values, el.String())
		},
	})
	if out.Err != nil {
		return dataframe.DataFrame{}, out.Err
	}
	return out, nil
}

// compareKey 两个都是数字时按数值比较，否则按字符串比较
// NaN 不算数字，排在数字之后
func compareKey(a, b string) int {
	fa, errA := parseKey(a)
	fb, errB := parseKey(b)
	switch {
	case errA == nil && errB == nil:
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	case errA == nil:
		return -1 // 数字排在字符串前面
	case errB == nil:
		return 1
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func parseKey(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err == nil && math.IsNaN(f) {
		return 0, strconv.ErrSyntax
	}
	return f, err
}

func distinctSorted(values []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return compareKey(out[i], out[j]) < 0 })
	return out
}

func indexOf(values []string) map[string]int {
	idx := make(map[string]int, len(values))
	for i, v := range values {
		idx[v] = i
	}
	return idx
}
