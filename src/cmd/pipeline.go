package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"PassengerSatisfaction/src/config"
	"PassengerSatisfaction/src/datasource/file"
	"PassengerSatisfaction/src/processor"
	"PassengerSatisfaction/src/report"
	"PassengerSatisfaction/src/storage"
	"PassengerSatisfaction/src/utils"

	"github.com/go-gota/gota/dataframe"
	"github.com/google/uuid"
)

const summarySheet = "resumen"

// Pipeline 读取 -> 清洗 -> 生成图表 -> 输出
type Pipeline struct {
	cfg    *config.Config
	dcfg   *config.DataConfig
	logger *storage.Logger
	out    io.Writer // 为 nil 时不输出到终端
}

// RunResult 一次分析的结果
type RunResult struct {
	RunID    string
	Source   string
	Rows     int
	Cols     int
	Clean    *processor.CleanReport
	Charts   int
	Workbook string
	Export   string
	Elapsed  time.Duration
}

func NewPipeline(cfg *config.Config, dcfg *config.DataConfig, logger *storage.Logger, out io.Writer) *Pipeline {
	return &Pipeline{cfg: cfg, dcfg: dcfg, logger: logger, out: out}
}

// Options 由配置得到读取参数
func (p *Pipeline) Options() file.Options {
	return file.Options{
		Delimiter: parseDelimiter(p.cfg.Input.Delimiter),
		SheetName: p.cfg.Input.SheetName,
	}
}

// Load 读取原始问卷表
func (p *Pipeline) Load(path string) (dataframe.DataFrame, error) {
	raw, err := file.Load(path, p.Options())
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	p.logger.Info(fmt.Sprintf("读取 %s: %d 行 %d 列", path, raw.Nrow(), raw.Ncol()))
	return raw, nil
}

func (p *Pipeline) Clean(raw dataframe.DataFrame) (*processor.Table, *processor.CleanReport, error) {
	table, rep, err := processor.NewCleaner(p.dcfg, p.logger).Clean(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("清洗数据失败: %w", err)
	}
	return table, rep, nil
}

// Export 导出清洗后的数据，文件名相对输出目录
func (p *Pipeline) Export(t *processor.Table, name string) (string, error) {
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(p.cfg.Output.Dir, name)
	}
	if err := utils.Export(t.Frame(), path); err != nil {
		return "", fmt.Errorf("导出数据失败: %w", err)
	}
	p.logger.Info("清洗后数据已导出到: " + path)
	return path, nil
}

// RunFile 读取文件并完整跑一遍分析
func (p *Pipeline) RunFile(ctx context.Context, path string) (*RunResult, error) {
	raw, err := p.Load(path)
	if err != nil {
		return nil, err
	}
	return p.Run(ctx, path, raw)
}

// Run 对原始表做完整分析，任何一步出错都终止
func (p *Pipeline) Run(ctx context.Context, source string, raw dataframe.DataFrame) (*RunResult, error) {
	start := time.Now()
	res := &RunResult{
		RunID:    uuid.NewString(),
		Source:   source,
		Workbook: filepath.Join(p.cfg.Output.Dir, p.cfg.Output.Workbook),
	}
	p.logger.Info(fmt.Sprintf("[%s] 开始分析 %s", res.RunID, source))

	table, rep, err := p.Clean(raw)
	if err != nil {
		return nil, err
	}
	res.Rows, res.Cols, res.Clean = table.Nrow(), table.Ncol(), rep
	if res.Rows == 0 {
		return nil, fmt.Errorf("%w: %s", utils.ErrNoRows, source)
	}

	charts, err := report.NewBuilder(p.cfg, p.dcfg).Build(table)
	if err != nil {
		return nil, fmt.Errorf("生成图表数据失败: %w", err)
	}
	res.Charts = len(charts)

	if p.cfg.Output.Export != "" {
		if res.Export, err = p.Export(table, p.cfg.Output.Export); err != nil {
			return nil, err
		}
	}

	wb, err := report.NewWorkbookRenderer(res.RunID)
	if err != nil {
		return nil, err
	}
	defer wb.Close()
	if err := wb.AddSummary(summarySheet, res.Summary()); err != nil {
		return nil, fmt.Errorf("写入汇总页失败: %w", err)
	}

	renderers := report.Multi{wb}
	if p.out != nil {
		renderers = append(report.Multi{report.NewConsoleRenderer(p.out)}, renderers...)
	}
	if err := report.RenderAll(ctx, renderers, charts); err != nil {
		return nil, err
	}
	if err := wb.SaveAs(res.Workbook); err != nil {
		return nil, err
	}

	res.Elapsed = time.Since(start)
	p.logger.Info(fmt.Sprintf("[%s] 报表已保存到 %s，共 %d 张图，耗时 %v",
		res.RunID, res.Workbook, res.Charts, res.Elapsed))
	return res, nil
}

// Summary 汇总页内容
func (r *RunResult) Summary() []report.KV {
	rows := []report.KV{
		{Key: "run id", Value: r.RunID},
		{Key: "archivo", Value: r.Source},
		{Key: "filas", Value: r.Rows},
		{Key: "columnas", Value: r.Cols},
		{Key: "gráficos", Value: r.Charts},
	}
	if r.Clean != nil {
		rows = append(rows,
			report.KV{Key: "columnas eliminadas", Value: strings.Join(r.Clean.Dropped, ", ")},
			report.KV{Key: "valores sin mapear", Value: r.Clean.UnmappedCount()},
		)
		cols := make([]string, 0, len(r.Clean.Filled))
		for col := range r.Clean.Filled {
			cols = append(cols, col)
		}
		sort.Strings(cols)
		for _, col := range cols {
			rows = append(rows, report.KV{Key: "faltantes en " + col, Value: r.Clean.Filled[col]})
		}
	}
	if r.Export != "" {
		rows = append(rows, report.KV{Key: "datos limpios", Value: r.Export})
	}
	return rows
}

// String 邮件正文
func (r *RunResult) String() string {
	var b strings.Builder
	for _, kv := range r.Summary() {
		fmt.Fprintf(&b, "%s: %v\n", kv.Key, kv.Value)
	}
	return b.String()
}

// parseDelimiter 支持 "\t" 写法，空值表示逗号
func parseDelimiter(s string) rune {
	switch s {
	case "":
		return 0
	case `\t`, "tab":
		return '\t'
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r
}
