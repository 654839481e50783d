package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/catalog-connector/internal"
	"github.com/frahmantamala/catalog-connector/internal/category"
	"github.com/frahmantamala/catalog-connector/internal/settings"
	"github.com/frahmantamala/catalog-connector/internal/transport/middleware"
	"github.com/frahmantamala/catalog-connector/internal/transport/swagger"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

type RouteDeps struct {
	Backend         Prober
	CategoryHandler *category.Handler
	SettingsHandler *settings.Handler
	OpenAPI         *openapi3.T
	Server          internal.ServerConfig
	Admin           internal.AdminConfig
	Logger          *slog.Logger
}

func RegisterAllRoutes(router *chi.Mux, deps RouteDeps) {
	healthHandler := NewHealthHandler(deps.Backend, "settings")

	router.Use(middleware.CORS(deps.Server.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(deps.Logger))
	router.Use(middleware.RecoveryMiddleware(deps.Logger))

	if deps.OpenAPI != nil {
		router.Get("/openapi.json", swagger.SpecHandler(deps.OpenAPI))
		router.Handle("/swagger/*", swagger.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if deps.CategoryHandler != nil {
			r.Get("/categories", deps.CategoryHandler.GetCategories)
			r.Get("/categories/{id}", deps.CategoryHandler.GetCategory)
		}

		if deps.SettingsHandler != nil {
			r.Get("/settings", deps.SettingsHandler.GetSettings)
			r.Get("/settings/{key}", deps.SettingsHandler.GetSetting)
		}

		if !deps.Admin.Enabled() {
			deps.Logger.Info("admin password not configured, write routes disabled")
			return
		}

		r.Group(func(ar chi.Router) {
			ar.Use(middleware.AdminAuth(deps.Admin.Username, deps.Admin.PasswordHash, deps.Logger))

			if deps.CategoryHandler != nil {
				ar.Post("/categories", deps.CategoryHandler.CreateCategory)
				ar.Put("/categories/{id}", deps.CategoryHandler.UpdateCategory)
				ar.Delete("/categories/{id}", deps.CategoryHandler.DeleteCategory)
			}

			if deps.SettingsHandler != nil {
				ar.Put("/settings/{key}", deps.SettingsHandler.PutSetting)
				ar.Delete("/settings/{key}", deps.SettingsHandler.DeleteSetting)
			}
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		status, body := internal.NewNotFoundError("route not found", "ROUTE_NOT_FOUND").ToHTTPResponse()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = writeJSON(w, body)
	})
}
