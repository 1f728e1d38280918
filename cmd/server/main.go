// Package main implements the entry point for the todo API server:
// a single ToDo resource exposed over HTTP, backed by PostgreSQL through
// request-scoped repository/service pairs.
package main

import (
	"context"
	"log"
)

// main loads configuration, sets up logging and the database connection,
// wires the application, and runs the HTTP server until shutdown.
func main() {
	ctx := context.Background()

	cfg, err := loadAppConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := setupAppLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}

	db, err := setupAppDatabase(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	app := newApplication(cfg, logger, db)
	if err := app.Run(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
