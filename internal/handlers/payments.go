package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/solmusic/studio/internal/schedule"
	svc "github.com/solmusic/studio/internal/services"
)

type createPaymentRequest struct {
	StudentID     uint            `json:"studentId" validate:"required"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   string          `json:"paymentDate" validate:"omitempty,datetime=2006-01-02"`
	PeriodStart   string          `json:"periodStart" validate:"omitempty,datetime=2006-01-02"`
	PeriodEnd     string          `json:"periodEnd" validate:"omitempty,datetime=2006-01-02"`
	ExplicitDates []string        `json:"explicitDates"`
	Description   string          `json:"description"`
	InvoiceLink   string          `json:"invoiceLink" validate:"omitempty,url"`
}

type updatePaymentRequest struct {
	Amount        *decimal.Decimal `json:"amount"`
	PaymentDate   *string          `json:"paymentDate" validate:"omitempty,datetime=2006-01-02"`
	PeriodStart   *string          `json:"periodStart" validate:"omitempty,datetime=2006-01-02"`
	PeriodEnd     *string          `json:"periodEnd" validate:"omitempty,datetime=2006-01-02"`
	ExplicitDates []string         `json:"explicitDates"`
	Description   *string          `json:"description"`
	InvoiceLink   *string          `json:"invoiceLink" validate:"omitempty,url"`
}

// buildDateSpec assembles the service-layer spec from the request fields,
// rejecting requests that mix recurrence and explicit-dates mode.
func buildDateSpec(w http.ResponseWriter, periodStart, periodEnd string, explicit []string) (svc.DateSpec, bool) {
	var spec svc.DateSpec
	hasPeriod := periodStart != "" || periodEnd != ""
	if hasPeriod && len(explicit) > 0 {
		respondError(w, http.StatusBadRequest, codeValidation,
			"send either periodStart/periodEnd or explicitDates, not both")
		return spec, false
	}
	if periodStart != "" {
		d, err := schedule.ParseDate(periodStart)
		if err != nil {
			respondError(w, http.StatusBadRequest, codeValidation, "invalid periodStart")
			return spec, false
		}
		spec.PeriodStart = &d
	}
	if periodEnd != "" {
		d, err := schedule.ParseDate(periodEnd)
		if err != nil {
			respondError(w, http.StatusBadRequest, codeValidation, "invalid periodEnd")
			return spec, false
		}
		spec.PeriodEnd = &d
	}
	if hasPeriod && (spec.PeriodStart == nil || spec.PeriodEnd == nil) {
		respondError(w, http.StatusBadRequest, codeValidation,
			"periodStart and periodEnd must be sent together")
		return spec, false
	}
	spec.Explicit = explicit
	return spec, true
}

// POST /payments
func CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req createPaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	spec, ok := buildDateSpec(w, req.PeriodStart, req.PeriodEnd, req.ExplicitDates)
	if !ok {
		return
	}
	if !spec.Present() {
		respondError(w, http.StatusBadRequest, codeValidation,
			"either periodStart/periodEnd or explicitDates is required")
		return
	}

	paymentDate := schedule.DateOf(time.Now())
	if req.PaymentDate != "" {
		paymentDate, _ = schedule.ParseDate(req.PaymentDate)
	}

	payment, classes, err := svc.CreatePayment(svc.CreatePaymentInput{
		StudentID:   req.StudentID,
		Amount:      req.Amount,
		PaymentDate: paymentDate,
		Spec:        spec,
		Description: req.Description,
		InvoiceLink: req.InvoiceLink,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"payment": viewOfPayment(*payment),
		"classes": viewOfClasses(classes),
	})
}

// PUT /payments/{id} — omitting every date field performs a metadata-only
// edit; class-set changes are reported as counts.
func UpdatePayment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		respondError(w, http.StatusNotFound, codeNotFound, "not found")
		return
	}

	var req updatePaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ps, pe := "", ""
	if req.PeriodStart != nil {
		ps = *req.PeriodStart
	}
	if req.PeriodEnd != nil {
		pe = *req.PeriodEnd
	}
	spec, ok := buildDateSpec(w, ps, pe, req.ExplicitDates)
	if !ok {
		return
	}

	in := svc.UpdatePaymentInput{
		Amount:      req.Amount,
		Description: req.Description,
		InvoiceLink: req.InvoiceLink,
		Spec:        spec,
	}
	if req.PaymentDate != nil {
		d, err := schedule.ParseDate(*req.PaymentDate)
		if err != nil {
			respondError(w, http.StatusBadRequest, codeValidation, "invalid paymentDate")
			return
		}
		in.PaymentDate = &d
	}

	payment, result, err := svc.UpdatePayment(uint(id), in)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"payment": viewOfPayment(*payment),
		"classes": result,
	})
}

// GET /payments/{id}
func GetPayment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		respondError(w, http.StatusNotFound, codeNotFound, "not found")
		return
	}

	payment, err := svc.PaymentByID(uint(id))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	classes, err := svc.ActiveClasses(payment.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"payment": viewOfPayment(*payment),
		"classes": viewOfClasses(classes),
	})
}

// DELETE /payments/{id}
func DeletePayment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		respondError(w, http.StatusNotFound, codeNotFound, "not found")
		return
	}
	if err := svc.DeletePayment(uint(id)); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /students/{id}/payments
func ListStudentPayments(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		respondError(w, http.StatusNotFound, codeNotFound, "not found")
		return
	}
	payments, err := svc.PaymentsOfStudent(uint(id))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	out := make([]paymentView, len(payments))
	for i, p := range payments {
		out[i] = viewOfPayment(p)
	}
	respondJSON(w, http.StatusOK, map[string]any{"payments": out})
}
