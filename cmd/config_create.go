package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"clockedout/config"
	"clockedout/prefs"
	"clockedout/timesheet"
)

var configCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a configuration file and seed the remembered rates.",
	Long: `Create a new configuration file from the same example template used by "config edit".

If a configuration file is already in use, no new file is written. In both
cases the preferences file named by preferences.path is seeded with the
configured rates unless rates are already remembered there.`,
	Example: `
  # Create default config at $HOME/.clockedout.yaml
  clockedout config create
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return createConfig(cmd.OutOrStdout())
	},
}

func createConfig(out io.Writer) error {
	configPath, err := resolveConfigEditPath(cfgFile, viper.ConfigFileUsed())
	if err != nil {
		return err
	}

	created, err := ensureConfigFileWithTemplate(configPath)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(out, "New config file created at: %s\n", configPath)
	} else {
		fmt.Fprintf(out, "Config file already exists at: %s\n", configPath)
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("reading config failed: %w", err)
	}
	cfg, err := config.ValidateYAMLContent(content)
	if err != nil {
		return fmt.Errorf("config validation failed in %s: %w", configPath, err)
	}

	seeded, err := seedPreferences(cfg)
	if err != nil {
		return err
	}
	if seeded {
		fmt.Fprintf(out, "Seeded rates in %s (weekday %s, weekend %s)\n",
			cfg.Preferences.Path, money(cfg.Rates.Weekday), money(cfg.Rates.Weekend))
	} else {
		fmt.Fprintf(out, "Rates already remembered in %s\n", cfg.Preferences.Path)
	}
	return nil
}

// seedPreferences writes the configured rates to the preferences file when
// it holds neither rate yet.
func seedPreferences(cfg *config.Config) (bool, error) {
	store, err := prefs.OpenFileStore(cfg.Preferences.Path)
	if err != nil {
		return false, err
	}
	_, hasWeekday := store.Get(prefs.KeyWeekdayRate)
	_, hasWeekend := store.Get(prefs.KeyWeekendRate)
	if hasWeekday || hasWeekend {
		return false, nil
	}

	seed := timesheet.HourlyRates{Weekday: cfg.Rates.Weekday, Weekend: cfg.Rates.Weekend}
	if err := prefs.NewRates(store, seed, nil).SaveRates(seed); err != nil {
		return false, err
	}
	return true, nil
}

func init() {
	configCmd.AddCommand(configCreateCmd)
}
