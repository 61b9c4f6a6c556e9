package commands

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/javajoker/bizdir-backend/internal/app"
	"github.com/javajoker/bizdir-backend/internal/database"
)

var withSeed bool

// migrateCmd brings the schema up to date
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the schema to the database",
	Long: `Create or alter tables and secondary indexes to match the models.

Examples:
  bizctl migrate          # Migrate only
  bizctl migrate --seed   # Migrate, then insert missing default categories`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := app.Connect(cfg, false)
		if err != nil {
			return err
		}
		defer database.Close(db)

		if err := database.RunMigrations(db); err != nil {
			return err
		}
		if withSeed {
			if err := database.SeedCategories(db); err != nil {
				return err
			}
		}

		logrus.Info("Schema is up to date")
		return nil
	},
}

// seedCmd inserts the default categories
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert any missing default categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := app.Connect(cfg, false)
		if err != nil {
			return err
		}
		defer database.Close(db)

		return database.SeedCategories(db)
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&withSeed, "seed", false, "Seed default categories after migrating")
}
