package report

import (
	"fmt"
	"path/filepath"
	"time"

	"PassengerSatisfaction/src/utils"

	"github.com/xuri/excelize/v2"
)

const (
	defaultSheet = "Sheet1"
	dataRow      = 4 // 表头所在行，上面留给标题和坐标轴说明
)

// KV 汇总页的一行
type KV struct {
	Key   string
	Value interface{}
}

// WorkbookRenderer 每张图一个工作表：数据表 + excelize 原生图表
type WorkbookRenderer struct {
	f           *excelize.File
	runID       string
	titleStyle  int
	headerStyle int
}

func NewWorkbookRenderer(runID string) (*WorkbookRenderer, error) {
	f := excelize.NewFile()
	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		f.Close()
		return nil, err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DDEBF7"}},
	})
	if err != nil {
		f.Close()
		return nil, err
	}
	return &WorkbookRenderer{f: f, runID: runID, titleStyle: titleStyle, headerStyle: headerStyle}, nil
}

// AddSummary 写入汇总页(运行编号、输入文件、清洗结果等)
func (w *WorkbookRenderer) AddSummary(name string, rows []KV) error {
	if _, err := w.f.NewSheet(name); err != nil {
		return err
	}
	if err := w.f.SetCellValue(name, "A1", "Encuesta de satisfacción de pasajeros"); err != nil {
		return err
	}
	if err := w.f.SetCellStyle(name, "A1", "A1", w.titleStyle); err != nil {
		return err
	}
	for i, kv := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+3)
		if err := w.f.SetSheetRow(name, cell, &[]interface{}{kv.Key, kv.Value}); err != nil {
			return err
		}
	}
	return w.f.SetColWidth(name, "A", "A", 28)
}

func (w *WorkbookRenderer) Render(chart Chart) error {
	sheet := chart.Name
	if _, err := w.f.NewSheet(sheet); err != nil {
		return err
	}
	if err := w.writeHeading(sheet, chart); err != nil {
		return err
	}

	switch chart.Kind {
	case Heatmap:
		return w.renderHeatmap(sheet, chart)
	case Box:
		return w.renderBox(sheet, chart)
	default:
		return w.renderSeries(sheet, chart)
	}
}

func (w *WorkbookRenderer) writeHeading(sheet string, chart Chart) error {
	if err := w.f.SetCellValue(sheet, "A1", chart.Title); err != nil {
		return err
	}
	if err := w.f.SetCellStyle(sheet, "A1", "A1", w.titleStyle); err != nil {
		return err
	}
	if chart.XLabel != "" || chart.YLabel != "" {
		row := []interface{}{"x: " + chart.XLabel, "y: " + chart.YLabel}
		if err := w.f.SetSheetRow(sheet, "A2", &row); err != nil {
			return err
		}
	}
	return nil
}

// writeTable 从 dataRow 开始写表头和数据，返回最后一行行号
func (w *WorkbookRenderer) writeTable(sheet string, header []string, rows [][]interface{}) (int, error) {
	h := make([]interface{}, len(header))
	for i, v := range header {
		h[i] = v
	}
	cell, _ := excelize.CoordinatesToCellName(1, dataRow)
	if err := w.f.SetSheetRow(sheet, cell, &h); err != nil {
		return 0, err
	}
	last, _ := excelize.CoordinatesToCellName(len(header), dataRow)
	if err := w.f.SetCellStyle(sheet, cell, last, w.headerStyle); err != nil {
		return 0, err
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, dataRow+1+i)
		if err := w.f.SetSheetRow(sheet, cell, &row); err != nil {
			return 0, err
		}
	}
	return dataRow + len(rows), nil
}

func (w *WorkbookRenderer) renderSeries(sheet string, chart Chart) error {
	header := []string{chart.XLabelOr("category")}
	for _, s := range chart.Series {
		header = append(header, s.Name)
	}
	rows := make([][]interface{}, len(chart.Categories))
	for i, cat := range chart.Categories {
		row := []interface{}{cat}
		for _, s := range chart.Series {
			row = append(row, s.Values[i])
		}
		rows[i] = row
	}
	lastRow, err := w.writeTable(sheet, header, rows)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	var list []excelize.ChartSeries
	for j := range chart.Series {
		list = append(list, excelize.ChartSeries{
			Name:       cellRef(sheet, j+2, dataRow),
			Categories: rangeRef(sheet, 1, dataRow+1, lastRow),
			Values:     rangeRef(sheet, j+2, dataRow+1, lastRow),
		})
	}

	c := &excelize.Chart{
		Series:    list,
		Title:     []excelize.RichTextRun{{Text: chart.Title}},
		Legend:    excelize.ChartLegend{Position: "bottom"},
		Dimension: excelize.ChartDimension{Width: 720, Height: 400},
		XAxis:     excelize.ChartAxis{Title: axisTitle(chart.XLabel)},
		YAxis:     excelize.ChartAxis{Title: axisTitle(chart.YLabel), MajorGridLines: true},
	}
	switch chart.Kind {
	case Pie:
		c.Type = excelize.Pie
		c.PlotArea = excelize.ChartPlotArea{ShowPercent: true, ShowCatName: true}
		c.Legend.Position = "right"
		c.XAxis, c.YAxis = excelize.ChartAxis{}, excelize.ChartAxis{}
	case Bar:
		c.Type = excelize.Bar
		c.PlotArea = excelize.ChartPlotArea{ShowVal: true}
		// 横向条形图分类在纵轴
		c.XAxis.Title, c.YAxis.Title = axisTitle(chart.YLabel), axisTitle(chart.XLabel)
	case Violin:
		c.Type = excelize.Line
	case Histogram:
		c.Type = excelize.Col
		gap := uint(0)
		c.GapWidth = &gap
		c.Legend.Position = "none"
	default:
		c.Type = excelize.Col
	}

	anchor, _ := excelize.CoordinatesToCellName(len(header)+2, dataRow)
	return w.f.AddChart(sheet, anchor, c)
}

// renderHeatmap 交叉表 + 三色阶条件格式
func (w *WorkbookRenderer) renderHeatmap(sheet string, chart Chart) error {
	m := chart.Matrix
	header := append([]string{m.RowName + " \\ " + m.ColName}, m.Cols...)
	rows := make([][]interface{}, len(m.Rows))
	for i, r := range m.Rows {
		row := []interface{}{r}
		for j := range m.Cols {
			row = append(row, m.Values[i][j])
		}
		rows[i] = row
	}
	lastRow, err := w.writeTable(sheet, header, rows)
	if err != nil {
		return err
	}
	if len(m.Rows) == 0 || len(m.Cols) == 0 {
		return nil
	}

	first, _ := excelize.CoordinatesToCellName(2, dataRow+1)
	last, _ := excelize.CoordinatesToCellName(len(header), lastRow)
	return w.f.SetConditionalFormat(sheet, first+":"+last, []excelize.ConditionalFormatOptions{{
		Type:     "3_color_scale",
		Criteria: "=",
		MinType:  "min",
		MidType:  "percentile",
		MidValue: "50",
		MaxType:  "max",
		MinColor: "#2C1E3D",
		MidColor: "#B8405E",
		MaxColor: "#FAEBDD",
	}})
}

// renderBox 箱线图统计表；图表用五个分位数的折线近似
func (w *WorkbookRenderer) renderBox(sheet string, chart Chart) error {
	header := []string{chart.XLabelOr("group"), "min", "q1", "median", "q3", "max", "n", "mean", "std", "lower", "upper", "outliers"}
	rows := make([][]interface{}, len(chart.Boxes))
	for i, b := range chart.Boxes {
		rows[i] = []interface{}{b.Group, b.Min, b.Q1, b.Median, b.Q3, b.Max, b.N, b.Mean, b.Std, b.Lower, b.Upper, b.Outliers}
	}
	lastRow, err := w.writeTable(sheet, header, rows)
	if err != nil {
		return err
	}

	var list []excelize.ChartSeries
	for col := 2; col <= 6; col++ {
		list = append(list, excelize.ChartSeries{
			Name:       cellRef(sheet, col, dataRow),
			Categories: rangeRef(sheet, 1, dataRow+1, lastRow),
			Values:     rangeRef(sheet, col, dataRow+1, lastRow),
			Marker:     excelize.ChartMarker{Symbol: "dash", Size: 10},
			Line:       excelize.ChartLine{Type: excelize.ChartLineNone},
		})
	}
	anchor, _ := excelize.CoordinatesToCellName(len(header)+2, dataRow)
	return w.f.AddChart(sheet, anchor, &excelize.Chart{
		Type:      excelize.Line,
		Series:    list,
		Title:     []excelize.RichTextRun{{Text: chart.Title}},
		Legend:    excelize.ChartLegend{Position: "bottom"},
		Dimension: excelize.ChartDimension{Width: 720, Height: 400},
		XAxis:     excelize.ChartAxis{Title: axisTitle(chart.XLabel)},
		YAxis:     excelize.ChartAxis{Title: axisTitle(chart.YLabel), MajorGridLines: true},
	})
}

// SaveAs 删除默认空白页，写入文档属性后保存
func (w *WorkbookRenderer) SaveAs(path string) error {
	sheets := w.f.GetSheetList()
	if len(sheets) > 1 && sheets[0] == defaultSheet {
		if err := w.f.DeleteSheet(defaultSheet); err != nil {
			return err
		}
	}
	w.f.SetActiveSheet(0)

	if err := w.f.SetDocProps(&excelize.DocProperties{
		Title:      "Encuesta de satisfacción de pasajeros",
		Identifier: w.runID,
		Created:    time.Now().Format(time.RFC3339),
		Creator:    "PassengerSatisfaction",
	}); err != nil {
		return err
	}

	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	if err := w.f.SaveAs(path); err != nil {
		return fmt.Errorf("保存报表失败: %w", err)
	}
	return nil
}

func (w *WorkbookRenderer) Close() error {
	return w.f.Close()
}

func axisTitle(text string) []excelize.RichTextRun {
	if text == "" {
		return nil
	}
	return []excelize.RichTextRun{{Text: text}}
}

func cellRef(sheet string, col, row int) string {
	name, _ := excelize.ColumnNumberToName(col)
	return fmt.Sprintf("'%s'!$%s$%d", sheet, name, row)
}

func rangeRef(sheet string, col, fromRow, toRow int) string {
	name, _ := excelize.ColumnNumberToName(col)
	return fmt.Sprintf("'%s'!$%s$%d:$%s$%d", sheet, name, fromRow, name, toRow)
}
