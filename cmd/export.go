package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"clockedout/report"
)

var (
	exportMonth  string
	exportOutput string
	exportFormat string
	exportAll    bool
	exportDir    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored months to CSV, Excel or PDF",
	Long: `Write the weekly breakdown and totals of a stored month to a file.

With --month, --output names the file; the format comes from --format or the
file extension. With --all, one file per stored month is written into --dir.`,
	Example: `
  # One month as CSV
  clockedout export --month 12/2025 -o ./report-2025-12.csv

  # One month as Excel, format given explicitly
  clockedout export --month 12/2025 -o ./december --format excel

  # Every stored month as PDF
  clockedout export --all --dir ./reports --format pdf
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if exportAll == (strings.TrimSpace(exportMonth) != "") {
			return fmt.Errorf("use exactly one of --month or --all")
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		builder := a.reports()

		if exportAll {
			format, err := report.DetectFormat("", exportFormatOrDefault(exportFormat))
			if err != nil {
				return err
			}
			reports, err := builder.BuildAll(cmd.Context())
			if err != nil {
				return err
			}
			written, err := writeReports(reports, exportDir, format)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Export completed. Months: %d, Directory: %s\n", len(written), exportDir)
			return nil
		}

		month, err := parseMonthFlag(exportMonth)
		if err != nil {
			return err
		}
		if strings.TrimSpace(exportOutput) == "" {
			return fmt.Errorf("--output is required with --month")
		}
		format, err := report.DetectFormat(exportOutput, exportFormat)
		if err != nil {
			return err
		}
		monthly, err := builder.Build(cmd.Context(), month)
		if err != nil {
			return err
		}
		writer, err := report.WriterForFormat(format)
		if err != nil {
			return err
		}
		if err := writer.Write(exportOutput, monthly); err != nil {
			return err
		}
		fmt.Fprintf(out, "Export completed. Month: %s, Format: %s, Output: %s\n", month, format, exportOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportMonth, "month", "", "Month to export (MM/YYYY)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path (with --month)")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "Output format: csv|excel|pdf (default: from extension, csv with --all)")
	exportCmd.Flags().BoolVar(&exportAll, "all", false, "Export every stored month")
	exportCmd.Flags().StringVar(&exportDir, "dir", ".", "Output directory (with --all)")
}

func exportFormatOrDefault(format string) string {
	if strings.TrimSpace(format) == "" {
		return report.FormatCSV
	}
	return format
}

// writeReports writes one file per report into dir and returns the paths.
func writeReports(reports []report.MonthlyReport, dir, format string) ([]string, error) {
	writer, err := report.WriterForFormat(format)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}

	paths := make([]string, 0, len(reports))
	for _, monthly := range reports {
		path := filepath.Join(dir, report.FileName(monthly.Summary.Month, format))
		if err := writer.Write(path, monthly); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
