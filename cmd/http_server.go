package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/catalog-connector/internal"
	"github.com/frahmantamala/catalog-connector/internal/backend"
	"github.com/frahmantamala/catalog-connector/internal/category"
	categoryPostgres "github.com/frahmantamala/catalog-connector/internal/category/postgres"
	categoryRest "github.com/frahmantamala/catalog-connector/internal/category/rest"
	"github.com/frahmantamala/catalog-connector/internal/settings"
	settingsPostgres "github.com/frahmantamala/catalog-connector/internal/settings/postgres"
	settingsRest "github.com/frahmantamala/catalog-connector/internal/settings/rest"
	"github.com/frahmantamala/catalog-connector/internal/transport"
	"github.com/frahmantamala/catalog-connector/internal/transport/rest"
	"github.com/frahmantamala/catalog-connector/internal/transport/swagger"

	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server that serves categories and settings from the hosted backend`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startHTTPServer()
	},
}

// Dependencies is the wired application. Backend is the one handle every
// repository reads through; writes use DB when a database source is configured.
type Dependencies struct {
	Config     *internal.Config
	Backend    *backend.Client
	DB         *sqlx.DB
	Categories *category.Service
	Settings   *settings.Service
	Router     *chi.Mux
	Logger     *slog.Logger

	categoryReader *categoryRest.CategoryRepository
	settingsReader *settingsRest.SettingsRepository
}

// Close releases the direct database connection, if one was opened.
func (d *Dependencies) Close() error {
	if d.DB == nil {
		return nil
	}
	return d.DB.Close()
}

// RequireWriter fails when writes would go through the publishable key, which
// the shipped schema only grants SELECT.
func (d *Dependencies) RequireWriter() error {
	if d.DB == nil {
		return internal.NewConfigurationError("database.source is required for writes", internal.ErrCodeInvalidConfig)
	}
	return nil
}

func startHTTPServer() error {
	deps, err := initializeDependencies()
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer deps.Close()

	if err := setupRoutes(deps); err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "backend", deps.Backend.URL())

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	deps.Logger.Info("Server stopped")
	return nil
}

func setupRoutes(deps *Dependencies) error {
	doc, err := swagger.LoadSpec(context.Background())
	if err != nil {
		return err
	}

	baseHandler := transport.NewBaseHandler(deps.Logger)
	rest.RegisterAllRoutes(deps.Router, rest.RouteDeps{
		Backend:         deps.Backend,
		CategoryHandler: category.NewHandler(baseHandler, deps.Categories),
		SettingsHandler: settings.NewHandler(baseHandler, deps.Settings),
		OpenAPI:         doc,
		Server:          deps.Config.Server,
		Admin:           deps.Config.Admin,
		Logger:          deps.Logger,
	})
	return nil
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadServiceConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return wireDependencies(config, setupLogger(config))
}

// wireDependencies builds the backend handle once and hands it to every consumer.
// A configuration error here aborts startup.
func wireDependencies(config *internal.Config, lg *slog.Logger) (*Dependencies, error) {
	client, err := backend.NewProvider(config.Backend, lg).Client()
	if err != nil {
		return nil, err
	}

	deps := &Dependencies{
		Config:         config,
		Backend:        client,
		Router:         chi.NewRouter(),
		Logger:         lg,
		categoryReader: categoryRest.NewCategoryRepository(client),
		settingsReader: settingsRest.NewSettingsRepository(client),
	}

	var (
		categoryRepo category.RepositoryAPI = deps.categoryReader
		settingsRepo settings.RepositoryAPI = deps.settingsReader
	)

	if config.Database.Source != "" {
		dbConn, err := initDB(config.Database)
		if err != nil {
			return nil, err
		}
		gormDB, err := openGormDB(dbConn)
		if err != nil {
			dbConn.Close()
			return nil, err
		}

		deps.DB = dbConn
		categoryRepo = category.NewSplitRepository(deps.categoryReader, categoryPostgres.NewCategoryRepository(gormDB))
		settingsRepo = settings.NewSplitRepository(deps.settingsReader, settingsPostgres.NewSettingsRepository(dbConn))
		lg.Info("writes go through the direct database connection")
	}

	deps.Categories = category.NewService(categoryRepo, lg)
	deps.Settings = settings.NewService(settingsRepo, lg)
	return deps, nil
}
