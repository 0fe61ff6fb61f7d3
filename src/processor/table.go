package processor

import (
	"fmt"

	"PassengerSatisfaction/src/utils"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Table 清洗完成的问卷表
// 创建后不再修改，所有读取方法返回副本，可以同时交给多个统计步骤使用
type Table struct {
	df dataframe.DataFrame
}

func NewTable(df dataframe.DataFrame) *Table {
	return &Table{df: df.Copy()}
}

// Frame 返回底层 DataFrame 的副本
func (t *Table) Frame() dataframe.DataFrame {
	return t.df.Copy()
}

func (t *Table) Nrow() int { return t.df.Nrow() }

func (t *Table) Ncol() int { return t.df.Ncol() }

func (t *Table) Names() []string { return t.df.Names() }

// Col 返回列的副本，列不存在时返回 ErrUnknownColumn
func (t *Table) Col(name string) (series.Series, error) {
	if !utils.HasColumn(t.df, name) {
		return series.Series{}, fmt.Errorf("%w: %s", utils.ErrUnknownColumn, name)
	}
	return t.df.Col(name), nil
}

// Where 返回 col 取值属于 values 的子表
func (t *Table) Where(col string, values ...string) (*Table, error) {
	df, err := FilterIn(t.df, col, values...)
	if err != nil {
		return nil, err
	}
	return &Table{df: df}, nil
}

// CountBy 见包级函数 CountBy
func (t *Table) CountBy(cols ...string) (dataframe.DataFrame, error) {
	return CountBy(t.df, cols...)
}
