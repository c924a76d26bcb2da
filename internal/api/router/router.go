package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/albertosilva007/triagem-platform/internal/http/handlers"
	httpmiddleware "github.com/albertosilva007/triagem-platform/internal/http/middleware"
	"github.com/albertosilva007/triagem-platform/internal/triage"
	"github.com/albertosilva007/triagem-platform/internal/webchat"
	"github.com/albertosilva007/triagem-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	ConversationHandler *triage.Handler
	WebchatHandler      *webchat.Handler
	AdminRecords        *handlers.AdminRecordsHandler
	AdminNotifications  *handlers.AdminNotificationsHandler
	AdminAuthSecret     string
	MetricsHandler      http.Handler
	CORSAllowedOrigins  []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints (patient-facing channels, health checks)
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.ConversationHandler != nil {
			public.Route("/conversations", func(r chi.Router) {
				r.Post("/start", cfg.ConversationHandler.Start)
				r.Post("/message", cfg.ConversationHandler.Message)
				r.Post("/message/async", cfg.ConversationHandler.MessageAsync)
				r.Get("/jobs/{jobID}", cfg.ConversationHandler.Job)
			})
		}
		if cfg.WebchatHandler != nil {
			public.Route("/chat", func(r chi.Router) {
				r.Get("/ws", cfg.WebchatHandler.HandleWebSocket)
				r.Post("/message", cfg.WebchatHandler.HandleMessage)
				r.Get("/history", cfg.WebchatHandler.HandleHistory)
				r.Get("/widget.js", cfg.WebchatHandler.HandleWidgetJS)
			})
		}
	})

	// Admin routes (protected by JWT)
	if cfg.AdminAuthSecret != "" {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			if cfg.AdminRecords != nil {
				admin.Get("/records", cfg.AdminRecords.ListRecent)
				admin.Get("/records/patients/{nationalID}", cfg.AdminRecords.ListByPatient)
			}
			if cfg.AdminNotifications != nil {
				admin.Post("/notifications/test", cfg.AdminNotifications.SendTest)
			}
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
