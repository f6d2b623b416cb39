package http

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

// NewRouter wires the payslip API. logger should come from NewLogger so request
// logs share the ECS layout.
func NewRouter(logger *slog.Logger, allowedOrigins []string, payslipHandler PayslipHandler, statutoryHandler StatutoryHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/payslips", func(r chi.Router) {
			r.Post("/calculate", payslipHandler.Calculate)
			r.Post("/calculate/bulk", payslipHandler.CalculateBulk)
			r.Post("/validate-structure", payslipHandler.ValidateStructure)

			r.Get("/", payslipHandler.List)
			r.Post("/", payslipHandler.Generate)
			r.Post("/finalize", payslipHandler.Finalize)
			r.Get("/register", payslipHandler.ExportRegister)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", payslipHandler.Get)
				r.Get("/pdf", payslipHandler.Download)
				r.Delete("/", payslipHandler.Delete)
			})
		})

		r.Get("/statutory/rules", statutoryHandler.GetRules)
	})
	return r
}
