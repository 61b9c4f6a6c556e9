package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/javajoker/bizdir-backend/internal/app"
	"github.com/javajoker/bizdir-backend/internal/config"
)

var (
	// Global flags
	envFile  string
	logLevel string

	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "bizctl",
	Short: "Operator tool for the business directory backend",
	Long: `bizctl runs maintenance tasks against the directory database.

Configuration is read from the environment and an optional .env file,
exactly as the API server reads it.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envFile != "" {
			if _, err := os.Stat(envFile); err != nil {
				return fmt.Errorf("env file: %w", err)
			}
		}

		loaded, err := config.LoadFrom(envFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if logLevel != "" {
			loaded.LogLevel = logLevel
		}
		app.ConfigureLogging(loaded)
		cfg = loaded
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load variables from this file instead of ./.env")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override LOG_LEVEL")

	rootCmd.AddCommand(migrateCmd, seedCmd, recomputeRatingsCmd, serveCmd)
}
