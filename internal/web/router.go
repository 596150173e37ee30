package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/solmusic/studio/internal/handlers"
)

func Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handlers.Health)

	// Students
	r.Post("/students", handlers.CreateStudent)
	r.Get("/students", handlers.ListStudents)
	r.Get("/students/{id}", handlers.GetStudent)
	r.Put("/students/{id}", handlers.UpdateStudent)
	r.Get("/students/{id}/payments", handlers.ListStudentPayments)
	r.Get("/students/{id}/classes/separated", handlers.StudentClassesSeparated)
	r.Get("/students/{id}/classes/summary", handlers.StudentClassesSummary)

	// Payments drive the class schedule: creating or editing one generates
	// and reconciles the owned classes.
	r.Post("/payments", handlers.CreatePayment)
	r.Get("/payments/{id}", handlers.GetPayment)
	r.Put("/payments/{id}", handlers.UpdatePayment)
	r.Delete("/payments/{id}", handlers.DeletePayment)

	// QR image for printed receipts, addressed by the payment's public code
	r.Get("/qr/{code}.png", handlers.PaymentQR)

	// Class lifecycle
	r.Put("/classes/{id}/state", handlers.UpdateClassState)
	r.Post("/classes/{id}/undo-reschedule", handlers.UndoReschedule)

	return r
}
