package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"PassengerSatisfaction/src/processor"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const defaultExport = "aerolinea_limpia.csv"

var cleanOut string

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean the survey export and write the cleaned dataset",
	Long: `Drop the index columns, rename to canonical names, translate the
categorical labels, fill missing arrival delays with 0 and write the result.
The extension of --out picks the format (.csv or .xlsx).

Examples:
  satisfaction clean -i train.csv
  satisfaction clean -i train.csv -o limpio.xlsx
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

		out := cleanOut
		if out == "" {
			out = cfg.Output.Export
		}
		if out == "" {
			out = defaultExport
		}
		path, err := p.Export(table, out)
		if err != nil {
			return err
		}

		printCleanReport(cmd.OutOrStdout(), rep)
		color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✅ %d rows written to %s\n", table.Nrow(), path)
		return nil
	},
}

func init() {
	cleanCmd.Flags().StringVarP(&cleanOut, "out", "o", "", "输出文件 (默认 output.export 或 "+defaultExport+")")
}

func printCleanReport(w io.Writer, rep *processor.CleanReport) {
	fmt.Fprintf(w, "rows: %d -> %d\n", rep.RowsIn, rep.RowsOut)
	if len(rep.Dropped) > 0 {
		fmt.Fprintf(w, "dropped columns: %s\n", strings.Join(rep.Dropped, ", "))
	}
	for _, col := range sortedKeys(rep.Filled) {
		fmt.Fprintf(w, "filled %s: %d\n", col, rep.Filled[col])
	}
	warn := color.New(color.FgYellow)
	for _, col := range sortedKeys(rep.Unmapped) {
		warn.Fprintf(w, "⚠️  unmapped %s: %s\n", col, strings.Join(rep.Unmapped[col], ", "))
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
