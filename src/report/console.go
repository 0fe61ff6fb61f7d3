package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
)

// ConsoleRenderer 以表格形式打印图表数据
type ConsoleRenderer struct {
	w     io.Writer
	title *color.Color
	label *color.Color
}

func NewConsoleRenderer(w io.Writer) *ConsoleRenderer {
	return &ConsoleRenderer{
		w:     w,
		title: color.New(color.FgCyan, color.Bold),
		label: color.New(color.FgYellow),
	}
}

func (c *ConsoleRenderer) Render(chart Chart) error {
	c.title.Fprintf(c.w, "\n📊 %s", chart.Title)
	fmt.Fprintf(c.w, " [%s]\n", chart.Kind)
	if chart.XLabel != "" || chart.YLabel != "" {
		c.label.Fprintf(c.w, "   x: %s  y: %s\n", chart.XLabel, chart.YLabel)
	}
	fmt.Fprintln(c.w, strings.Repeat("=", 60))

	tw := tabwriter.NewWriter(c.w, 0, 4, 2, ' ', 0)
	switch chart.Kind {
	case Heatmap:
		m := chart.Matrix
		fmt.Fprintf(tw, "%s \\ %s\t%s\n", m.RowName, m.ColName, strings.Join(m.Cols, "\t"))
		for i, row := range m.Rows {
			cells := make([]string, len(m.Cols))
			for j := range m.Cols {
				cells[j] = strconv.Itoa(m.Values[i][j])
			}
			fmt.Fprintf(tw, "%s\t%s\n", row, strings.Join(cells, "\t"))
		}
	case Box:
		fmt.Fprintln(tw, "group\tn\tmin\tq1\tmedian\tq3\tmax\tmean\tstd\toutliers")
		for _, b := range chart.Boxes {
			fmt.Fprintf(tw, "%s\t%d\t%g\t%g\t%g\t%g\t%g\t%.2f\t%.2f\t%d\n",
				b.Group, b.N, b.Min, b.Q1, b.Median, b.Q3, b.Max, b.Mean, b.Std, b.Outliers)
		}
	default:
		names := make([]string, len(chart.Series))
		for i, s := range chart.Series {
			names[i] = s.Name
		}
		fmt.Fprintf(tw, "%s\t%s\n", chart.XLabelOr("category"), strings.Join(names, "\t"))
		for i, cat := range chart.Categories {
			cells := make([]string, len(chart.Series))
			for j, s := range chart.Series {
				cells[j] = formatValue(s.Values[i])
			}
			fmt.Fprintf(tw, "%s\t%s\n", cat, strings.Join(cells, "\t"))
		}
	}
	return tw.Flush()
}

// XLabelOr 分类列的表头
func (c Chart) XLabelOr(fallback string) string {
	if c.Kind == Bar && c.YLabel != "" {
		return c.YLabel // 横向条形图的分类在纵轴
	}
	if c.XLabel != "" {
		return c.XLabel
	}
	return fallback
}

func formatValue(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 3, 64)
}
