package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/boddenberg/beautypro-go/internal/domain"
	"github.com/boddenberg/beautypro-go/internal/infra/observability"
	"github.com/boddenberg/beautypro-go/internal/service"
)

var tracer = otel.Tracer("handler")

// Services bundles the use cases the HTTP surface exposes.
type Services struct {
	Ledger        *service.Ledger
	Catalog       *service.CatalogService
	Professionals *service.ProfessionalService
	Clients       *service.ClientService
	Finance       *service.FinanceService
	Settings      *service.SettingsService
	Schedule      *service.ScheduleService
	Dashboard     *service.DashboardService
	Marketing     *service.MarketingService
	Booking       *service.BookingService
	Auth          *service.AuthService
}

// RouterConfig holds the HTTP-only knobs.
type RouterConfig struct {
	AllowedOrigins []string
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(svc Services, cfg RouterConfig, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger, metrics))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(svc.Marketing))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// Public booking page
		r.Route("/book/{slug}", func(r chi.Router) {
			r.Get("/", bookingCatalogHandler(svc.Booking, logger))
			r.Get("/slots", bookingSlotsHandler(svc.Booking, logger))
			r.Post("/", bookingCreateHandler(svc.Booking, logger))
		})

		r.Post("/auth/login", authLoginHandler(svc.Auth, logger))

		// Staff area
		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(svc.Auth, logger))

			r.Get("/auth/me", authMeHandler(svc.Auth, logger))
			r.Get("/settings", getSettingsHandler(svc.Settings, logger))

			r.With(RequireArea(logger, domain.AreaDashboard)).
				Get("/dashboard", dashboardHandler(svc.Dashboard, logger))

			r.Group(func(r chi.Router) {
				r.Use(RequireArea(logger, domain.AreaAgenda))
				r.Get("/schedule", scheduleHandler(svc.Schedule, logger))
				r.Get("/appointments", listAppointmentsHandler(svc.Ledger, logger))
				r.Post("/appointments", createAppointmentHandler(svc.Ledger, logger))
				r.Get("/appointments/{appointmentId}", getAppointmentHandler(svc.Ledger, logger))
				r.Patch("/appointments/{appointmentId}/status", setStatusHandler(svc.Ledger, logger))
				r.Post("/appointments/{appointmentId}/advance", advanceStatusHandler(svc.Ledger, logger))
			})

			r.Group(func(r chi.Router) {
				r.Use(RequireArea(logger, domain.AreaClients))
				r.Get("/clients", listClientsHandler(svc.Clients, logger))
				r.Post("/clients", createClientHandler(svc.Clients, logger))
				r.Get("/clients/{clientId}", getClientHandler(svc.Clients, logger))
				r.Put("/clients/{clientId}", updateClientHandler(svc.Clients, logger))
				r.Delete("/clients/{clientId}", deleteClientHandler(svc.Clients, logger))
				r.Get("/clients/{clientId}/history", clientHistoryHandler(svc.Clients, logger))
			})

			// The agenda needs the catalog and the staff list to book.
			r.With(RequireArea(logger, domain.AreaServices, domain.AreaAgenda)).
				Get("/services", listServicesHandler(svc.Catalog, logger))
			r.With(RequireArea(logger, domain.AreaProfessionals, domain.AreaAgenda)).
				Get("/professionals", listProfessionalsHandler(svc.Professionals, logger))

			r.Group(func(r chi.Router) {
				r.Use(RequireArea(logger, domain.AreaServices))
				r.Post("/services", createServiceHandler(svc.Catalog, logger))
				r.Get("/services/{serviceId}", getServiceHandler(svc.Catalog, logger))
				r.Put("/services/{serviceId}", updateServiceHandler(svc.Catalog, logger))
				r.Delete("/services/{serviceId}", deleteServiceHandler(svc.Catalog, logger))
			})

			r.Group(func(r chi.Router) {
				r.Use(RequireArea(logger, domain.AreaProfessionals))
				r.Post("/professionals", createProfessionalHandler(svc.Professionals, logger))
				r.Get("/professionals/{professionalId}", getProfessionalHandler(svc.Professionals, logger))
				r.Put("/professionals/{professionalId}", updateProfessionalHandler(svc.Professionals, logger))
				r.Delete("/professionals/{professionalId}", deleteProfessionalHandler(svc.Professionals, logger))
			})

			r.Group(func(r chi.Router) {
				r.Use(RequireArea(logger, domain.AreaFinance))
				r.Get("/transactions", listTransactionsHandler(svc.Finance, logger))
				r.Post("/transactions", createTransactionHandler(svc.Finance, logger))
				r.Get("/finance/summary", financeSummaryHandler(svc.Finance, logger))
				r.Get("/metrics/ledger", ledgerMetricsHandler(metrics))
			})

			r.Group(func(r chi.Router) {
				r.Use(RequireArea(logger, domain.AreaMarketing))
				r.Get("/marketing/campaigns", listCampaignsHandler(svc.Marketing, logger))
				r.Get("/marketing/campaigns/{campaignId}", getCampaignHandler(svc.Marketing, logger))
				r.Post("/marketing/campaigns/{campaignId}/send", sendCampaignHandler(svc.Marketing, logger))
			})

			r.With(RequireArea(logger, domain.AreaMarketing, domain.AreaClients)).
				Post("/whatsapp-link", whatsAppLinkHandler(svc.Marketing, logger))

			r.With(RequireArea(logger, domain.AreaSettings)).
				Put("/settings", updateSettingsHandler(svc.Settings, logger))
		})
	})

	return r
}

// ============================================================
// Operational
// ============================================================

func healthzHandler(marketing *service.MarketingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)

		whatsapp := "disabled"
		if marketing != nil && marketing.CanSend() {
			whatsapp = "up"
		}
		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status: "healthy",
			Services: []domain.ServiceHealth{
				{Name: "beautypro-api", Status: "up", LastChecked: now},
				{Name: "store", Status: "up", LastChecked: now},
				{Name: "whatsapp", Status: whatsapp, LastChecked: now},
			},
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func ledgerMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetLedgerSnapshot())
	}
}
