package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"clockedout/apperr"
	"clockedout/config"
	"clockedout/storage"
)

var (
	deleteMonth    string
	deleteDatabase bool
)

var (
	deletePromptInput  io.Reader = os.Stdin
	deletePromptOutput io.Writer = os.Stdout
)

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a stored month or the complete SQLite database file",
	Long: `Destructive cleanup command.

With --month, the month and its weekly breakdown are removed.
With --database, the complete SQLite database file is deleted.
Before deletion, an interactive security prompt requires typing exactly "Y".`,
	Example: `
  # Delete one month (requires interactive confirmation)
  clockedout delete --month 12/2025

  # Delete the complete SQLite file
  clockedout delete --database --db ./clockedout.db
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if deleteDatabase == (strings.TrimSpace(deleteMonth) != "") {
			return fmt.Errorf("use exactly one of --month or --database")
		}

		if deleteDatabase {
			path, err := resolveDatabasePath()
			if err != nil {
				return err
			}
			confirmed, err := confirmDeletePrompt(deletePromptInput, deletePromptOutput, fmt.Sprintf("database file %q", path))
			if err != nil {
				return err
			}
			if !confirmed {
				return fmt.Errorf("delete aborted: confirmation was not 'Y'")
			}
			removed, err := removeDatabaseFiles(path)
			if err != nil {
				return err
			}
			for _, file := range removed {
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted database file: %s\n", file)
			}
			return nil
		}

		month, err := parseMonthFlag(deleteMonth)
		if err != nil {
			return err
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		weeks, err := deleteStoredMonth(cmd.Context(), a.store, month, deletePromptInput, deletePromptOutput)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted month %s and its %d stored week(s).\n", month, weeks)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)

	deleteCmd.Flags().StringVar(&deleteMonth, "month", "", "Month to delete (MM/YYYY)")
	deleteCmd.Flags().BoolVar(&deleteDatabase, "database", false, "Delete the complete SQLite database file")
}

func resolveDatabasePath() (string, error) {
	if strings.TrimSpace(dbPath) != "" {
		return dbPath, nil
	}
	cfg, err := config.LoadAndValidate()
	if err != nil {
		return "", err
	}
	return cfg.Database.Path, nil
}

func confirmDeletePrompt(input io.Reader, output io.Writer, target string) (bool, error) {
	if input == nil {
		return false, fmt.Errorf("delete confirmation input is not available")
	}

	if output == nil {
		output = io.Discard
	}

	if _, err := fmt.Fprintf(output, "Delete %s? Type Y to confirm: ", target); err != nil {
		return false, fmt.Errorf("write delete confirmation prompt: %w", err)
	}

	line, err := bufio.NewReader(input).ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			line = strings.TrimSpace(line)
			return line == "Y", nil
		}
		return false, fmt.Errorf("read delete confirmation: %w", err)
	}
	return strings.TrimSpace(line) == "Y", nil
}

// deleteStoredMonth shows the month's totals, asks for confirmation, then
// removes the month. It returns how many weekly rows went with it.
func deleteStoredMonth(ctx context.Context, store *storage.Store, month string, in io.Reader, out io.Writer) (int, error) {
	summary, found, err := store.Monthly().Fetch(ctx, month)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, apperr.New(apperr.RecordNotFound, "month "+month)
	}
	weeks, err := store.Weekly().Fetch(ctx, summary.ID)
	if err != nil {
		return 0, err
	}

	confirmed, err := confirmDeletePrompt(in, out,
		fmt.Sprintf("%s (%s hours in %d week(s), salary %s)",
			summary.FormattedMonth(), hours(summary.TotalHours()), len(weeks), money(summary.Salary)))
	if err != nil {
		return 0, err
	}
	if !confirmed {
		return 0, fmt.Errorf("delete aborted: confirmation was not 'Y'")
	}

	if err := store.Monthly().Delete(ctx, month); err != nil {
		return 0, err
	}
	return len(weeks), nil
}

// sqliteSidecars are the files SQLite keeps next to the database.
var sqliteSidecars = []string{"-wal", "-shm", "-journal"}

// removeDatabaseFiles deletes the database and any SQLite sidecar files.
// It returns every path it removed, the database first.
func removeDatabaseFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("database file not found: %s", path)
		}
		return nil, fmt.Errorf("stat database file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("database path is a directory: %s", path)
	}
	if err := os.Remove(path); err != nil {
		return nil, fmt.Errorf("delete database file: %w", err)
	}

	removed := []string{path}
	for _, suffix := range sqliteSidecars {
		sidecar := path + suffix
		err := os.Remove(sidecar)
		switch {
		case err == nil:
			removed = append(removed, sidecar)
		case !errors.Is(err, os.ErrNotExist):
			return removed, fmt.Errorf("delete %s: %w", sidecar, err)
		}
	}
	return removed, nil
}
