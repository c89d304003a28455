package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/coparently/coparently/internal"
	"github.com/coparently/coparently/internal/auth"
	"github.com/coparently/coparently/internal/category"
	"github.com/coparently/coparently/internal/expense"
	"github.com/coparently/coparently/internal/family"
	"github.com/coparently/coparently/internal/messaging"
	"github.com/coparently/coparently/internal/notification"
	"github.com/coparently/coparently/internal/payment"
	"github.com/coparently/coparently/internal/transport/middleware"
	"github.com/coparently/coparently/internal/transport/swagger"
	"github.com/coparently/coparently/internal/trigger"
)

type Handlers struct {
	Expense      *expense.Handler
	Trigger      *trigger.Handler
	Payment      *payment.Handler
	Messaging    *messaging.Handler
	Notification *notification.Handler
	Family       *family.Handler
	Category     *category.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, verifier *auth.Verifier, handlers Handlers, cfg *internal.Config, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// OpenAPI document and Swagger UI at root, outside the API prefix
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	if cfg.Observability.Metrics.Enabled {
		path := cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		router.Handle(path, promhttp.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Token-addressed actions authenticate by token, not session.
		// GET serves the links embedded in share emails.
		if handlers.Trigger != nil {
			r.Post("/actions/{token}", handlers.Trigger.HandleAction)
			r.Get("/actions/{token}", handlers.Trigger.HandleAction)
		}

		if handlers.Category != nil {
			r.Get("/categories", handlers.Category.ListCategories)
		}

		r.Group(func(pr chi.Router) {
			pr.Use(verifier.Middleware)

			if handlers.Expense != nil {
				pr.Route("/expenses", func(er chi.Router) {
					er.Post("/", handlers.Expense.CreateExpense)
					er.Get("/", handlers.Expense.ListExpenses)
					er.Get("/summary/monthly", handlers.Expense.MonthlySummary)
					er.Get("/summary/owed", handlers.Expense.OwedSummary)
					er.Get("/{id}", handlers.Expense.GetExpense)
					er.Put("/{id}", handlers.Expense.UpdateExpense)
					er.Delete("/{id}", handlers.Expense.DeleteExpense)
					er.Get("/{id}/trail", handlers.Expense.GetTrail)
					er.Patch("/{id}/approve", handlers.Expense.ApproveExpense)
					er.Patch("/{id}/dispute", handlers.Expense.DisputeExpense)
					er.Patch("/{id}/paid", handlers.Expense.MarkPaid)
					er.Patch("/{id}/reopen", handlers.Expense.ReopenExpense)

					if handlers.Trigger != nil {
						er.Post("/{id}/share", handlers.Trigger.ShareExpense)
					}
				})
			}

			if handlers.Payment != nil {
				pr.Get("/payments", handlers.Payment.ListPayments)
			}

			if handlers.Messaging != nil {
				pr.Get("/messages", handlers.Messaging.ListMessages)
			}

			if handlers.Notification != nil {
				pr.Route("/notifications", func(nr chi.Router) {
					nr.Get("/", handlers.Notification.ListNotifications)
					nr.Patch("/{id}/read", handlers.Notification.MarkRead)
				})
			}

			if handlers.Family != nil {
				pr.Get("/family", handlers.Family.GetFamily)
			}
		})
	})
}
