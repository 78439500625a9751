package cmd

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage clockedout configuration file values.",
	Long: `Create, edit, display, and delete the clockedout configuration file.

The configuration stores application-wide values:
- database.path / preferences.path
- rates.weekday / rates.weekend (seed rates before any are remembered)
- calendar.week_start / calendar.weekday_policy / calendar.timezone
- parser.fallback_offset
- log.level / log.format

Every key can be overridden by an environment variable such as
CLOCKEDOUT_DATABASE_PATH, also read from a .env file.`,
	Example: `
  # Create default config in $HOME/.clockedout.yaml
  clockedout config create

  # Show active config and source file
  clockedout config show

  # Open active config in editor (creates example if missing)
  clockedout config edit

  # Delete active config file
  clockedout config delete
`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
