package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"clockedout/config"
)

var configDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the active configuration file.",
	Long: `Delete the configuration file currently selected by clockedout.

The database and the remembered rates are left in place; their paths are
printed so they can be found again. If no configuration file is active, the
command returns an error.`,
	Example: `
  # Delete active config
  clockedout config delete

  # Delete config at a custom path
  clockedout --configFile ./custom-clockedout.yaml config delete
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return deleteConfigFile(cmd.OutOrStdout(), viper.ConfigFileUsed())
	},
}

func deleteConfigFile(out io.Writer, configPath string) error {
	if configPath == "" {
		return fmt.Errorf("no configuration file found")
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("error reading configuration file: %w", err)
	}
	cfg, cfgErr := config.ValidateYAMLContent(content)

	if err := os.Remove(configPath); err != nil {
		return fmt.Errorf("error deleting configuration file: %w", err)
	}
	fmt.Fprintf(out, "Configuration file successfully deleted: %s\n", configPath)

	if cfgErr == nil {
		fmt.Fprintf(out, "Database kept at: %s\n", cfg.Database.Path)
		fmt.Fprintf(out, "Remembered rates kept at: %s\n", cfg.Preferences.Path)
	}
	return nil
}

func init() {
	configCmd.AddCommand(configDeleteCmd)
}
