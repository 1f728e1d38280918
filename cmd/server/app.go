package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/dkoval/todo-api/internal/config"
	"github.com/dkoval/todo-api/internal/platform/postgres"
	"github.com/dkoval/todo-api/internal/service"
	"github.com/dkoval/todo-api/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Request-scoped factory: one repository/service pair per request,
	// each bound to a dedicated connection from the pool.
	todoProvider service.Provider[*service.TodoService]
}

// newApplication creates a new application instance with all dependencies
// initialized. Core dependencies (configuration, logger, database
// connection) must be established before application initialization.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) *application {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	echo := cfg.Database.EchoQueries
	app.todoProvider = service.NewConnProvider(
		db,
		func(conn store.DBTX) service.TodoRepository {
			return postgres.NewTodoRepository(conn, logger, echo)
		},
		service.NewTodoService,
		logger,
	)

	logger.Info("Application initialized successfully")
	return app
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
