package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"clockedout/importflow"
	"clockedout/salary"
	"clockedout/timesheet"
)

const (
	importActionAsk    = "ask"
	importActionCancel = "cancel"
)

var (
	importInput       string
	importAction      string
	importWeekdayRate string
	importWeekendRate string
	importRateSource  string
)

var (
	importPromptInput  io.Reader = os.Stdin
	importPromptOutput io.Writer = os.Stdout
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a time-tracking CSV export into the local SQLite database",
	Long: `Parse a CSV export, split the tracked time into weekday and weekend hours,
group it by week and show a preview before anything is written.

The export must contain a "Time Tracked" column and a "Start" or "Start Text" column.

When the month already exists, the import either replaces it or accumulates the new
hours on top of it. With --action ask (the default) the choice is made interactively.
Rates default to the last ones used and can be overridden per import.`,
	Example: `
  # Preview and decide interactively
  clockedout import -i ./time-entries.csv

  # Replace the stored month without asking
  clockedout import -i ./time-entries.csv --action replace

  # Add to the stored month but keep its stored rates
  clockedout import -i ./late-entries.csv --action accumulate --rate-source stored

  # Override rates for this import
  clockedout import -i ./time-entries.csv --weekday-rate 95 --weekend-rate 120
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rateSource, err := importflow.ParseRateSource(importRateSource)
		if err != nil {
			return err
		}
		if err := validateImportAction(importAction); err != nil {
			return err
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		workflow, err := a.workflow()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		ctx := cmd.Context()

		preview, err := workflow.BeginFile(ctx, importInput)
		if err != nil {
			return err
		}

		rates, changed, err := resolveImportRates(preview.Rates, importWeekdayRate, importWeekendRate)
		if err != nil {
			return err
		}
		if changed {
			if preview, err = workflow.SetRates(rates); err != nil {
				return err
			}
		}

		existing, _ := workflow.Existing()
		if err := printImportPreview(out, preview, workflow.Weeks(), existing); err != nil {
			return err
		}

		action, proceed, err := resolveImportAction(importAction, preview.ExistingMonth, importPromptInput, importPromptOutput)
		if err != nil {
			return err
		}
		if !proceed {
			if err := workflow.Cancel(); err != nil {
				return err
			}
			fmt.Fprintln(out, "Import cancelled. Nothing was written.")
			return nil
		}

		saved, err := workflow.Commit(ctx, importflow.CommitOptions{Action: action, RateSource: rateSource})
		var weeklyErr *importflow.WeeklyWriteError
		if errors.As(err, &weeklyErr) {
			err = retryWeeklyWrite(cmd, workflow, weeklyErr)
			if err == nil {
				saved, _, err = a.store.Monthly().Fetch(ctx, weeklyErr.Month)
			}
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Import completed (%s). Month: %s, Weekday hours: %s, Weekend hours: %s, Salary: %s\n",
			action,
			saved.Month,
			hours(saved.WeekdayHours),
			hours(saved.WeekendHours),
			boldGreen(money(saved.Salary)),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVarP(&importInput, "input", "i", "", "Input CSV file path")
	importCmd.Flags().StringVar(&importAction, "action", importActionAsk, "What to do with the preview: ask|replace|accumulate|cancel")
	importCmd.Flags().StringVar(&importWeekdayRate, "weekday-rate", "", "Weekday hourly rate for this import (default: last used)")
	importCmd.Flags().StringVar(&importWeekendRate, "weekend-rate", "", "Weekend hourly rate for this import (default: last used)")
	importCmd.Flags().StringVar(&importRateSource, "rate-source", "confirmed", "Rates applied when accumulating: confirmed|stored")

	_ = importCmd.MarkFlagRequired("input")
}

func validateImportAction(raw string) error {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", importActionAsk, importActionCancel:
		return nil
	}
	_, err := importflow.ParseAction(raw)
	return err
}

// resolveImportRates applies per-import rate overrides on top of base.
func resolveImportRates(base timesheet.HourlyRates, weekdayRaw, weekendRaw string) (timesheet.HourlyRates, bool, error) {
	rates := base
	changed := false
	if strings.TrimSpace(weekdayRaw) != "" {
		value, err := salary.ParseRate(weekdayRaw, salary.FieldWeekdayRate)
		if err != nil {
			return rates, false, err
		}
		rates.Weekday = value
		changed = true
	}
	if strings.TrimSpace(weekendRaw) != "" {
		value, err := salary.ParseRate(weekendRaw, salary.FieldWeekendRate)
		if err != nil {
			return rates, false, err
		}
		rates.Weekend = value
		changed = true
	}
	return rates, changed, nil
}

// resolveImportAction maps the --action flag to a commit action. "ask"
// prompts only when the month already exists; a new month is always a replace.
func resolveImportAction(mode string, existingMonth bool, input io.Reader, output io.Writer) (importflow.Action, bool, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case importActionCancel:
		return importflow.ActionReplace, false, nil
	case "replace":
		return importflow.ActionReplace, true, nil
	case "accumulate":
		return importflow.ActionAccumulate, true, nil
	}

	if !existingMonth {
		ok, err := promptYesNo(input, output, "Save this month? [y/N]: ")
		return importflow.ActionReplace, ok, err
	}

	answer, err := promptLine(input, output, "Month already stored. [r]eplace, [a]ccumulate or [c]ancel? ")
	if err != nil {
		return importflow.ActionReplace, false, err
	}
	switch strings.ToLower(answer) {
	case "r", "replace":
		return importflow.ActionReplace, true, nil
	case "a", "accumulate":
		return importflow.ActionAccumulate, true, nil
	default:
		return importflow.ActionReplace, false, nil
	}
}

// retryWeeklyWrite offers to rewrite the weekly breakdown after the monthly
// row was saved but the weekly rows were not.
func retryWeeklyWrite(cmd *cobra.Command, workflow *importflow.Workflow, weeklyErr *importflow.WeeklyWriteError) error {
	err := error(weeklyErr)
	for {
		fmt.Fprintf(importPromptOutput, "%s %v\n", boldYellow("Monthly totals were saved but the weekly breakdown was not:"), err)
		retry, promptErr := promptYesNo(importPromptInput, importPromptOutput, "Retry writing the weekly breakdown? [y/N]: ")
		if promptErr != nil {
			return promptErr
		}
		if !retry {
			_ = workflow.Cancel()
			return weeklyErr
		}
		if err = workflow.RetryWeekly(cmd.Context()); err == nil {
			return nil
		}
	}
}

func printImportPreview(out io.Writer, preview timesheet.ImportPreview, weeks []timesheet.WeeklyReport, existing timesheet.MonthlySummary) error {
	fmt.Fprintf(out, "Preview for %s (%s): %d entries", boldCyan(timesheet.MonthlySummary{Month: preview.Month}.FormattedMonth()), preview.Month, preview.EntryCount)
	if preview.RowsSkipped > 0 {
		fmt.Fprintf(out, ", %s", boldYellow(fmt.Sprintf("%d rows skipped", preview.RowsSkipped)))
	}
	fmt.Fprintln(out)

	if err := renderTable(out, weeklyRows(weeks)); err != nil {
		return err
	}

	rows := [][]string{
		{"", "Weekday", "Weekend", "Total", "Salary"},
		{
			"This import",
			hours(preview.WeekdayHours) + " @ " + money(preview.Rates.Weekday),
			hours(preview.WeekendHours) + " @ " + money(preview.Rates.Weekend),
			hours(preview.TotalHours()),
			money(preview.Salary),
		},
	}
	if preview.ExistingMonth {
		rows = append(rows, []string{
			"Stored",
			hours(existing.WeekdayHours) + " @ " + money(existing.WeekdayRate),
			hours(existing.WeekendHours) + " @ " + money(existing.WeekendRate),
			hours(existing.TotalHours()),
			money(existing.Salary),
		})
	}
	return renderTable(out, rows)
}

func promptLine(input io.Reader, output io.Writer, prompt string) (string, error) {
	if input == nil {
		return "", fmt.Errorf("confirmation input is not available")
	}
	if output == nil {
		output = io.Discard
	}
	if _, err := fmt.Fprint(output, prompt); err != nil {
		return "", fmt.Errorf("write prompt: %w", err)
	}

	line, err := readLine(input)
	if err != nil {
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// readLine reads up to and including the next newline one byte at a time so
// several prompts can share one reader.
func readLine(input io.Reader) (string, error) {
	var line strings.Builder
	buf := make([]byte, 1)
	for {
		n, err := input.Read(buf)
		if n > 0 {
			if buf[0] == '\n' {
				return line.String(), nil
			}
			line.WriteByte(buf[0])
		}
		if errors.Is(err, io.EOF) {
			return line.String(), nil
		}
		if err != nil {
			return "", err
		}
	}
}

func promptYesNo(input io.Reader, output io.Writer, prompt string) (bool, error) {
	answer, err := promptLine(input, output, prompt)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
