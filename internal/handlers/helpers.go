package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/solmusic/studio/internal/models"
	"github.com/solmusic/studio/internal/schedule"
	svc "github.com/solmusic/studio/internal/services"
)

var validate = validator.New()

var logger = zap.NewNop()

// SetLogger installs the process logger; handlers default to a nop logger so
// tests stay quiet.
func SetLogger(l *zap.Logger) {
	if l != nil {
		logger = l
	}
}

const (
	codeValidation      = "VALIDATION"
	codeClassesRequired = "CLASSES_REQUIRED"
	codeConflict        = "CONFLICT"
	codeNotFound        = "NOT_FOUND"
	codeInternal        = "INTERNAL"
)

type errorBody struct {
	Error errorInfo `json:"error"`
}

type errorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorBody{Error: errorInfo{Code: code, Message: message}})
}

// respondServiceError maps the error taxonomy onto HTTP statuses and stable
// error codes. Validation and conflict errors carry the underlying message
// so the caller can correct input; internals are logged and masked.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, schedule.ErrClassesRequired):
		respondError(w, http.StatusBadRequest, codeClassesRequired, err.Error())
	case errors.Is(err, schedule.ErrInvalidPeriod),
		errors.Is(err, schedule.ErrInvalidStatus),
		errors.Is(err, schedule.ErrRescheduledDateRequired),
		errors.Is(err, schedule.ErrRescheduledSameDay),
		errors.Is(err, schedule.ErrNotRescheduled),
		errors.Is(err, svc.ErrAmountNotPositive):
		respondError(w, http.StatusBadRequest, codeValidation, err.Error())
	case errors.Is(err, svc.ErrDuplicateDate),
		strings.Contains(err.Error(), "UNIQUE constraint failed"):
		// The partial unique index firing means the reconcile diff missed a
		// duplicate; surface it, never silently drop the colliding date.
		respondError(w, http.StatusConflict, codeConflict, "duplicate class date within one payment")
	case errors.Is(err, gorm.ErrRecordNotFound):
		respondError(w, http.StatusNotFound, codeNotFound, "not found")
	default:
		logger.Error("request failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, codeInternal, "internal error")
	}
}

// decodeJSON parses the request body into dst and runs struct validation.
// Returns false after writing the error response when the body is unusable.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, codeValidation, "invalid JSON body: "+err.Error())
		return false
	}
	if err := validate.Struct(dst); err != nil {
		respondError(w, http.StatusBadRequest, codeValidation, err.Error())
		return false
	}
	return true
}

type classView struct {
	ID              uint    `json:"id"`
	StudentID       uint    `json:"studentId"`
	PaymentID       uint    `json:"paymentId"`
	Date            string  `json:"date"`
	Status          string  `json:"status"`
	RescheduledDate *string `json:"rescheduledDate"`
	Notes           string  `json:"notes"`
}

type paymentView struct {
	ID          uint            `json:"id"`
	Code        string          `json:"code"`
	StudentID   uint            `json:"studentId"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate string          `json:"paymentDate"`
	PeriodStart *string         `json:"periodStart"`
	PeriodEnd   *string         `json:"periodEnd"`
	Description string          `json:"description"`
	InvoiceLink string          `json:"invoiceLink"`
}

func viewOfClass(c models.Class) classView {
	v := classView{
		ID:        c.ID,
		StudentID: c.StudentID,
		PaymentID: c.PaymentID,
		Date:      schedule.DateOf(c.Date.UTC()).String(),
		Status:    c.Status,
		Notes:     c.Notes,
	}
	if c.RescheduledDate != nil {
		s := schedule.DateOf(c.RescheduledDate.UTC()).String()
		v.RescheduledDate = &s
	}
	return v
}

func viewOfClasses(classes []models.Class) []classView {
	out := make([]classView, len(classes))
	for i, c := range classes {
		out[i] = viewOfClass(c)
	}
	return out
}

func viewOfPayment(p models.Payment) paymentView {
	v := paymentView{
		ID:          p.ID,
		Code:        p.Code.String(),
		StudentID:   p.StudentID,
		Amount:      p.Amount,
		PaymentDate: schedule.DateOf(p.PaymentDate.UTC()).String(),
		Description: p.Description,
		InvoiceLink: p.InvoiceLink,
	}
	if p.PeriodStart != nil {
		s := schedule.DateOf(p.PeriodStart.UTC()).String()
		v.PeriodStart = &s
	}
	if p.PeriodEnd != nil {
		s := schedule.DateOf(p.PeriodEnd.UTC()).String()
		v.PeriodEnd = &s
	}
	return v
}
