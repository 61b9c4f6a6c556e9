// cmd/server/main.go
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/bizdir-backend/internal/app"
	"github.com/javajoker/bizdir-backend/internal/config"
	"github.com/javajoker/bizdir-backend/internal/database"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	app.ConfigureLogging(cfg)

	// Initialize database, migrations and category seeds
	db, err := app.Connect(cfg, true)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize database")
	}
	defer database.Close(db)

	// Wait for interrupt signal to gracefully shutdown the server
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Serve(ctx, cfg, db); err != nil {
		logrus.WithError(err).Error("Server stopped")
	}
}
