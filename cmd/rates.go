package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"clockedout/salary"
	"clockedout/storage"
	"clockedout/timesheet"
)

var (
	ratesWeekday string
	ratesWeekend string
	ratesApplyTo string
)

var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Show or change the hourly rates used for new imports",
}

var ratesShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the remembered hourly rates",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		rates := a.rates.LoadRates()
		fmt.Fprintf(cmd.OutOrStdout(), "Weekday rate: %s\nWeekend rate: %s\n", money(rates.Weekday), money(rates.Weekend))
		return nil
	},
}

var ratesSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Save new hourly rates and recalculate stored salaries",
	Long: `Validate and remember new hourly rates, then recompute the salary of every
stored month from its own stored rates.

With --apply-to MM/YYYY the new rates are first written to that month, so its
salary reflects them.`,
	Example: `
  # Change both rates
  clockedout rates set --weekday 95 --weekend 110

  # Change the weekend rate and apply both rates to December 2025
  clockedout rates set --weekend 120 --apply-to 12/2025
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		rates, changed, err := resolveImportRates(a.rates.LoadRates(), ratesWeekday, ratesWeekend)
		if err != nil {
			return err
		}
		var applyTo string
		if strings.TrimSpace(ratesApplyTo) != "" {
			if applyTo, err = parseMonthFlag(ratesApplyTo); err != nil {
				return err
			}
		}
		if !changed && applyTo == "" {
			return fmt.Errorf("nothing to change: pass --weekday, --weekend or --apply-to")
		}
		if err := salary.ValidateRates(rates); err != nil {
			return err
		}
		if err := a.rates.SaveRates(rates); err != nil {
			return err
		}

		updated, err := applyRates(cmd.Context(), a.store.Monthly(), rates, applyTo)
		if err != nil {
			return err
		}
		printRatesResult(cmd.OutOrStdout(), rates, applyTo, updated)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ratesCmd)
	ratesCmd.AddCommand(ratesShowCmd)
	ratesCmd.AddCommand(ratesSetCmd)

	ratesSetCmd.Flags().StringVar(&ratesWeekday, "weekday", "", "Weekday hourly rate")
	ratesSetCmd.Flags().StringVar(&ratesWeekend, "weekend", "", "Weekend hourly rate")
	ratesSetCmd.Flags().StringVar(&ratesApplyTo, "apply-to", "", "Also store the rates on this month (MM/YYYY)")
}

// applyRates optionally writes rates to month, then recalculates every
// stored salary. month must already be a valid key or empty.
func applyRates(ctx context.Context, monthly *storage.MonthlyRepository, rates timesheet.HourlyRates, month string) (int, error) {
	if month != "" {
		if _, err := monthly.UpdateRates(ctx, month, rates); err != nil {
			return 0, err
		}
	}
	return monthly.RecalculateAllSalaries(ctx)
}

func printRatesResult(out io.Writer, rates timesheet.HourlyRates, month string, updated int) {
	fmt.Fprintf(out, "Rates saved. Weekday: %s, Weekend: %s\n", money(rates.Weekday), money(rates.Weekend))
	if month != "" {
		fmt.Fprintf(out, "Applied to %s.\n", month)
	}
	fmt.Fprintf(out, "Salaries recalculated: %d month(s) changed.\n", updated)
}
