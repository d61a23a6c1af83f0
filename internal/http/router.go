package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"payconnect/internal/config"
	"payconnect/internal/http/handlers"
	middlewarex "payconnect/internal/http/middleware"
	merchantsvc "payconnect/internal/services/merchant"
	paymentsvc "payconnect/internal/services/payment"
)

// RouterDependencies holds all dependencies for the HTTP router
type RouterDependencies struct {
	Config          config.Cfg
	MerchantService *merchantsvc.Service
	PaymentService  *paymentsvc.Service
	// Gatherer serves /metrics; nil uses the default registry.
	Gatherer prometheus.Gatherer
}

// NewRouter creates the HTTP router
func NewRouter(deps RouterDependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":     "ok",
			"env":        deps.Config.App.Env,
			"connectors": deps.PaymentService.Registry().List(),
		})
	})

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// Admin routes (protected by admin token)
	r.Route("/admin", func(r chi.Router) {
		r.Use(middlewarex.AdminAuth(deps.Config.Sec.AdminToken))

		r.Post("/onboard", handlers.OnboardMerchant(deps.MerchantService))
		r.Post("/merchants/{merchantID}/accounts", handlers.AddAccount(deps.MerchantService))
		r.Get("/merchants/{merchantID}/accounts", handlers.ListAccounts(deps.MerchantService))
	})

	// API routes (protected by API key auth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middlewarex.APIKeyAuth(deps.MerchantService))

		r.Get("/connectors", handlers.ListConnectors(deps.PaymentService.Registry()))
		r.Put("/connectors/{connector}/access-token", handlers.StoreAccessToken(deps.PaymentService))

		r.Route("/payments/{connector}", func(r chi.Router) {
			r.Post("/preprocess", handlers.Preprocess(deps.PaymentService))
			r.Post("/authorize", handlers.Authorize(deps.PaymentService))
			r.Post("/{id}/capture", handlers.Capture(deps.PaymentService))
			r.Post("/{id}/void", handlers.Void(deps.PaymentService))
			r.Get("/{id}", handlers.SyncPayment(deps.PaymentService))
		})

		r.Route("/refunds/{connector}", func(r chi.Router) {
			r.Post("/", handlers.Refund(deps.PaymentService))
			r.Get("/{id}", handlers.SyncRefund(deps.PaymentService))
		})
	})

	return r
}
