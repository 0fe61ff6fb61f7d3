package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"PassengerSatisfaction/src/processor"
	"PassengerSatisfaction/src/report"

	"github.com/fatih/color"
	"github.com/go-gota/gota/dataframe"
	"github.com/spf13/cobra"
)

const maxUnique = 30

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Print shape, missing values, statistics and value counts",
	Long: `Load the survey export, clean it and print an overview:

- shape of the raw table and missing values per column
- descriptive statistics of the numeric columns
- distinct values of arrival delay and age
- value counts of customer type, travel type, class, gender and satisfaction
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p := NewPipeline(cfg, dcfg, logger, nil)
		raw, err := p.Load(cfg.Input.Path)
		if err != nil {
			return err
		}
		table, rep, err := p.Clean(raw)
		if err != nil {
			return err
		}
		return explore(cmd.OutOrStdout(), raw, table, rep)
	},
}

// explore 缺失值统计基于原始表，其余基于清洗后的表
func explore(w io.Writer, raw dataframe.DataFrame, t *processor.Table, rep *processor.CleanReport) error {
	heading := color.New(color.FgGreen, color.Bold)
	df := t.Frame()

	heading.Fprintln(w, "📋 Shape")
	fmt.Fprintf(w, "raw: %d x %d  clean: %d x %d\n", raw.Nrow(), raw.Ncol(), t.Nrow(), t.Ncol())
	if len(rep.Dropped) > 0 {
		fmt.Fprintf(w, "dropped: %s\n", strings.Join(rep.Dropped, ", "))
	}

	heading.Fprintln(w, "\n🕳  Missing values")
	if err := printFrame(w, processor.MissingCounts(raw)); err != nil {
		return err
	}

	desc, err := processor.Describe(df)
	if err != nil {
		return err
	}
	heading.Fprintln(w, "\n📈 Describe")
	if err := printFrame(w, desc); err != nil {
		return err
	}

	for _, col := range []string{"arrival_delay", report.ColAge} {
		values, err := processor.Unique(df, col)
		if err != nil {
			return err
		}
		heading.Fprintf(w, "\n🔢 Unique %s (%d)\n", col, len(values))
		shown := values
		if len(shown) > maxUnique {
			shown = shown[:maxUnique]
		}
		fmt.Fprint(w, strings.Join(shown, " "))
		if len(values) > maxUnique {
			fmt.Fprint(w, " ...")
		}
		fmt.Fprintln(w)
	}

	for _, col := range []string{
		report.ColCustomerType,
		report.ColTravelType,
		report.ColSeatClass,
		report.ColGender,
		report.ColSatisfaction,
	} {
		counts, err := processor.ValueCounts(df, col)
		if err != nil {
			return err
		}
		heading.Fprintf(w, "\n📊 Value counts: %s\n", col)
		if err := printFrame(w, counts); err != nil {
			return err
		}
	}

	if n := rep.UnmappedCount(); n > 0 {
		color.New(color.FgYellow).Fprintf(w, "\n⚠️  %d unmapped values kept as-is\n", n)
	}
	return nil
}

// printFrame 打印全部行，gota 自带的 String() 会截断
func printFrame(w io.Writer, df dataframe.DataFrame) error {
	if df.Err != nil {
		return df.Err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, row := range df.Records() {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}
