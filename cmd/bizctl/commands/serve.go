package commands

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/javajoker/bizdir-backend/internal/app"
	"github.com/javajoker/bizdir-backend/internal/database"
)

var skipMigrate bool

// serveCmd runs the HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := app.Connect(cfg, !skipMigrate)
		if err != nil {
			return err
		}
		defer database.Close(db)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return app.Serve(ctx, cfg, db)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "Start without migrating or seeding")
}
