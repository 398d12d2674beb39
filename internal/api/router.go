package api

import (
	"net/http"
	"time"

	_ "github.com/athebyme/struct-commerce-sync/docs"
	"github.com/athebyme/struct-commerce-sync/internal/api/handlers"
	"github.com/athebyme/struct-commerce-sync/internal/api/middleware"
	"github.com/athebyme/struct-commerce-sync/internal/security"
	"github.com/athebyme/struct-commerce-sync/internal/webhook"
	"github.com/athebyme/struct-commerce-sync/pkg/interfaces"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Dependencies зависимости HTTP слоя
type Dependencies struct {
	Dispatcher handlers.Dispatcher
	// NewImporter создает импортер с новым накопителем ошибок на каждый запрос
	NewImporter func() handlers.ImportRunner
	Runs        interfaces.StoragePort
	PIM         interfaces.PIMPort
	APIKey      *security.APIKeyVerifier
	JWT         *security.JWTManager
	Logger      interfaces.LoggerPort

	CORSAllowedOrigins []string
	RequestTimeout     time.Duration
	RateLimit          float64
	// MetricsEndpoint пустой отключает /metrics
	MetricsEndpoint string
}

// SetupRouter настраивает маршрутизатор
func SetupRouter(deps Dependencies) *chi.Mux {
	r := chi.NewRouter()

	// Глобальные middleware
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Recoverer(deps.Logger))
	r.Use(middleware.Metrics)
	r.Use(middleware.CORS(deps.CORSAllowedOrigins))

	r.Method(http.MethodGet, "/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}))
	r.Method(http.MethodHead, "/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	if deps.MetricsEndpoint != "" {
		r.Handle(deps.MetricsEndpoint, promhttp.Handler())
	}

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(deps.RateLimit))
		r.Use(middleware.Auth(deps.APIKey, deps.JWT, deps.Logger))

		webhookHandler := handlers.NewWebhookHandler(deps.Dispatcher, deps.Logger)
		importHandler := handlers.NewImportHandler(deps.NewImporter, deps.Runs, deps.Logger)
		pimHandler := handlers.NewPIMHandler(deps.PIM, deps.Logger)

		// Вебхуки Struct PIM
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(deps.RequestTimeout))
			r.Use(middleware.RequirePermission(deps.JWT, security.PermissionWebhook))

			r.Post("/catalogue/webhook", webhookHandler.Handle(webhook.FamilyCatalogues))
			r.Post("/category/webhook", webhookHandler.Handle(webhook.FamilyCategories))
			r.Post("/language/webhook", webhookHandler.Handle(webhook.FamilyLanguages))
			r.Post("/productstructure/webhook", webhookHandler.Handle(webhook.FamilyProductStructures))
			r.Post("/product/webhook", webhookHandler.Handle(webhook.FamilyProducts))
			r.Post("/variant/webhook", webhookHandler.Handle(webhook.FamilyVariants))
			r.Post("/attribute/webhook", webhookHandler.Handle(webhook.FamilyAttributes))
		})

		// Импорт без ограничения времени
		r.Route("/import", func(r chi.Router) {
			r.With(middleware.RequirePermission(deps.JWT, security.PermissionImport)).Get("/initial", importHandler.Initial)
			r.With(middleware.RequirePermission(deps.JWT, security.PermissionImport)).Get("/clean", importHandler.Clean)
			r.With(middleware.RequirePermission(deps.JWT, security.PermissionRead)).Get("/runs", importHandler.Runs)
		})

		// Данные Struct PIM
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(deps.RequestTimeout))
			r.Use(middleware.RequirePermission(deps.JWT, security.PermissionRead))

			r.Get("/category", pimHandler.CatalogueUID)
			r.Get("/product", pimHandler.Products)
			r.Get("/product/{id}/classifications", pimHandler.Classifications)
			r.Get("/product/{id}/variants", pimHandler.VariantIDs)
			r.Get("/productstructure/{uid}", pimHandler.ProductStructure)
		})
	})

	return r
}
