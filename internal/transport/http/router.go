package http

import (
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/email-otp-api/internal/config"
	"github.com/email-otp-api/internal/transport/http/handler"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: allowCredentials(cfg.AllowedOrigins),
		MaxAge:           300,
	}))

	healthH := handler.NewHealthHandler(deps.Now)
	otpH := handler.NewOTPHandler(deps.OTPService)

	r.Get("/", healthH.Root)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthH.Health)
		r.Post("/send-otp", otpH.Send)
		r.Post("/verify-otp", otpH.Verify)
	})

	return r
}

// allowCredentials is false for a wildcard origin list, which cors would
// otherwise reflect back for any caller.
func allowCredentials(origins []string) bool {
	return len(origins) > 0 && !slices.Contains(origins, "*")
}
