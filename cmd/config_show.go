package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"clockedout/config"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show active configuration values.",
	Long: `Display the currently loaded configuration and the resolved config file path.

This command validates the configuration before printing values.`,
	Example: `
  # Show active configuration
  clockedout config show
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Invalid config:", err)
			return
		}

		if configPath := viper.ConfigFileUsed(); configPath != "" {
			fmt.Fprintln(cmd.OutOrStdout(), "Config file loaded from:", configPath)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "No config file loaded, showing defaults and environment overrides.")
		}
		printConfig(cmd.OutOrStdout(), cfg)
	},
}

func printConfig(out io.Writer, cfg *config.Config) {
	fmt.Fprintln(out, "Configuration:")
	fmt.Fprintf(out, "%s: %s\n", config.KeyDatabasePath, cfg.Database.Path)
	fmt.Fprintf(out, "%s: %s\n", config.KeyPreferencesPath, cfg.Preferences.Path)
	fmt.Fprintf(out, "%s: %s\n", config.KeyRatesWeekday, money(cfg.Rates.Weekday))
	fmt.Fprintf(out, "%s: %s\n", config.KeyRatesWeekend, money(cfg.Rates.Weekend))
	fmt.Fprintf(out, "%s: %s\n", config.KeyCalendarWeekStart, cfg.Calendar.WeekStart)
	fmt.Fprintf(out, "%s: %s\n", config.KeyCalendarWeekdayPolicy, cfg.Calendar.WeekdayPolicy)
	fmt.Fprintf(out, "%s: %s\n", config.KeyCalendarTimezone, cfg.Calendar.Timezone)
	fmt.Fprintf(out, "%s: %s\n", config.KeyParserFallbackOffset, cfg.Parser.FallbackOffset)
	fmt.Fprintf(out, "%s: %s\n", config.KeyLogLevel, cfg.Log.Level)
	fmt.Fprintf(out, "%s: %s\n", config.KeyLogFormat, cfg.Log.Format)
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
