/*
Copyright © 2025 The clockedout Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"clockedout/config"
)

var (
	cfgFile  string
	dbPath   string
	logLevel string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "clockedout",
	Short: "Turn time-tracking CSV exports into weekly hours and a monthly salary.",
	Long: `
**********************************************
*               CLOCKED OUT                  *
**********************************************

This CLI imports time-tracking CSV exports, splits the tracked hours into
weekday and weekend work, rolls them up per week and per month, computes the
salary from hourly rates and keeps the results in a local SQLite database.

Stored months can be listed, reported, exported (CSV, Excel, PDF) and deleted.
`,
	Example: `
  # Create configuration file
  clockedout config create

  # Preview an export and decide interactively
  clockedout import -i ./time-entries.csv

  # Add a second export to the stored month
  clockedout import -i ./late-entries.csv --action accumulate

  # List stored months
  clockedout months

  # Show one month with its weekly breakdown
  clockedout report --month 12/2025

  # Export one month as PDF
  clockedout export --month 12/2025 -o ./december.pdf

  # Change hourly rates and recalculate every stored month
  clockedout rates set --weekday 95 --weekend 110
`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		printError(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	config.SetDefaults()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "configFile", "", "Config file override (default discovery: $HOME/.clockedout.yaml, then ./.clockedout.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to local SQLite database (overrides database.path)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level override: debug|info|warn|error")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// A missing .env file is fine.
	_ = godotenv.Load()

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".clockedout" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".clockedout")
	}

	config.BindEnv(viper.GetViper())

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound || cfgFile != "" {
			fmt.Fprintln(os.Stderr, "Could not read config file:", err)
		}
	}
}
