package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var backupOutput string

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Write a consistent copy of the SQLite database",
	Example: `
  # Back up the active database
  clockedout backup -o ./clockedout-backup.db
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(backupOutput) == "" {
			return fmt.Errorf("--output is required")
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		version, err := a.store.SchemaVersion()
		if err != nil {
			return err
		}
		if err := a.store.Backup(cmd.Context(), backupOutput); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Backup written: %s (schema version %d)\n", backupOutput, version)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(backupCmd)

	backupCmd.Flags().StringVarP(&backupOutput, "output", "o", "", "Backup file path")
}
