package services

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/solmusic/studio/internal/db"
	"github.com/solmusic/studio/internal/models"
	"github.com/solmusic/studio/internal/schedule"
)

var (
	ErrAmountNotPositive = errors.New("payment amount must be positive")
	// ErrDuplicateDate is an invariant assertion, not input validation: the
	// reconcile diff should make it unreachable, and the partial unique index
	// in db.Init backs it at the storage layer.
	ErrDuplicateDate = errors.New("duplicate class date within one payment")
)

// DateSpec is the part of a payment request that determines its class dates:
// either a weekly recurrence period or an explicit date list, never both.
type DateSpec struct {
	PeriodStart *schedule.CalendarDate
	PeriodEnd   *schedule.CalendarDate
	Explicit    []string
}

func (s DateSpec) Present() bool {
	return s.PeriodStart != nil || s.PeriodEnd != nil || len(s.Explicit) > 0
}

func (s DateSpec) recurring() bool {
	return s.PeriodStart != nil && s.PeriodEnd != nil
}

// Expand normalizes the spec into the deduplicated, ascending date set the
// payment's classes are derived from.
func (s DateSpec) Expand() ([]schedule.CalendarDate, error) {
	if s.PeriodStart != nil || s.PeriodEnd != nil {
		if s.PeriodStart == nil || s.PeriodEnd == nil {
			return nil, schedule.ErrInvalidPeriod
		}
		return schedule.ExpandRecurrence(*s.PeriodStart, *s.PeriodEnd)
	}
	return schedule.NormalizeExplicit(s.Explicit)
}

type CreatePaymentInput struct {
	StudentID   uint
	Amount      decimal.Decimal
	PaymentDate schedule.CalendarDate
	Spec        DateSpec
	Description string
	InvoiceLink string
}

type UpdatePaymentInput struct {
	Amount      *decimal.Decimal
	PaymentDate *schedule.CalendarDate
	Spec        DateSpec // empty spec means a metadata-only edit
	Description *string
	InvoiceLink *string
}

// ReconcileResult reports what an update did to the payment's class set.
type ReconcileResult struct {
	Inserted    int `json:"inserted"`
	Deactivated int `json:"deactivated"`
	Reactivated int `json:"reactivated"`
	Unchanged   int `json:"unchanged"`
}

// CreatePayment records a payment and materializes one class per derived
// date, all or nothing. A spec yielding zero dates rejects the whole
// operation; no payment row is left behind.
func CreatePayment(in CreatePaymentInput) (*models.Payment, []models.Class, error) {
	var payment *models.Payment
	var classes []models.Class
	err := db.Conn().Transaction(func(tx *gorm.DB) error {
		var err error
		payment, classes, err = CreatePaymentTx(tx, in)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return payment, classes, nil
}

func CreatePaymentTx(tx *gorm.DB, in CreatePaymentInput) (*models.Payment, []models.Class, error) {
	if !in.Amount.IsPositive() {
		return nil, nil, ErrAmountNotPositive
	}

	var student models.Student
	if err := tx.First(&student, in.StudentID).Error; err != nil {
		return nil, nil, err
	}

	dates, err := in.Spec.Expand()
	if err != nil {
		return nil, nil, err
	}

	payment := models.Payment{
		Code:        uuid.New(),
		StudentID:   student.ID,
		Amount:      in.Amount,
		PaymentDate: in.PaymentDate.Time(),
		Description: in.Description,
		InvoiceLink: in.InvoiceLink,
	}
	if in.Spec.recurring() {
		ps := in.Spec.PeriodStart.Time()
		pe := in.Spec.PeriodEnd.Time()
		payment.PeriodStart = &ps
		payment.PeriodEnd = &pe
	}
	if err := tx.Create(&payment).Error; err != nil {
		return nil, nil, err
	}

	classes := make([]models.Class, 0, len(dates))
	for _, d := range dates {
		c := models.Class{
			StudentID: student.ID,
			PaymentID: payment.ID,
			Date:      d.Time(),
			Status:    schedule.StatusNotStarted,
			Active:    true,
		}
		if err := tx.Create(&c).Error; err != nil {
			return nil, nil, err
		}
		classes = append(classes, c)
	}
	return &payment, classes, nil
}

// UpdatePayment edits payment metadata and, only when the request carries a
// date spec whose canonical date set differs from the stored one, reconciles
// the class set against it. A metadata-only edit never touches classes.
func UpdatePayment(id uint, in UpdatePaymentInput) (*models.Payment, *ReconcileResult, error) {
	var payment *models.Payment
	var result *ReconcileResult
	err := db.Conn().Transaction(func(tx *gorm.DB) error {
		var err error
		payment, result, err = UpdatePaymentTx(tx, id, in)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return payment, result, nil
}

func UpdatePaymentTx(tx *gorm.DB, id uint, in UpdatePaymentInput) (*models.Payment, *ReconcileResult, error) {
	var payment models.Payment
	if err := tx.First(&payment, id).Error; err != nil {
		return nil, nil, err
	}

	if in.Amount != nil {
		if !in.Amount.IsPositive() {
			return nil, nil, ErrAmountNotPositive
		}
		payment.Amount = *in.Amount
	}
	if in.PaymentDate != nil {
		payment.PaymentDate = in.PaymentDate.Time()
	}
	if in.Description != nil {
		payment.Description = *in.Description
	}
	if in.InvoiceLink != nil {
		payment.InvoiceLink = *in.InvoiceLink
	}

	result := &ReconcileResult{}
	if in.Spec.Present() {
		newDates, err := in.Spec.Expand()
		if err != nil {
			return nil, nil, err
		}
		if err := reconcileClasses(tx, &payment, newDates, result); err != nil {
			return nil, nil, err
		}
		if in.Spec.recurring() {
			ps := in.Spec.PeriodStart.Time()
			pe := in.Spec.PeriodEnd.Time()
			payment.PeriodStart = &ps
			payment.PeriodEnd = &pe
		} else {
			payment.PeriodStart = nil
			payment.PeriodEnd = nil
		}
	}

	if err := tx.Save(&payment).Error; err != nil {
		return nil, nil, err
	}
	return &payment, result, nil
}

// reconcileClasses diffs the new date set against every class row the
// payment owns, active or not, inside the caller's transaction (the snapshot
// the diff runs on). Kept dates stay untouched so status and notes survive;
// removed dates deactivate instead of deleting so a class already marked
// taken or absent keeps its history; a date that comes back reactivates its
// old row rather than inserting a twin.
func reconcileClasses(tx *gorm.DB, payment *models.Payment, newDates []schedule.CalendarDate, result *ReconcileResult) error {
	var existing []models.Class
	if err := tx.Where("payment_id = ?", payment.ID).
		Order("date asc").Find(&existing).Error; err != nil {
		return err
	}

	newSet := schedule.NewDateSet(newDates)

	// Index rows by calendar day, preferring the active row when an old
	// deactivated row shares the day.
	byDate := make(map[schedule.CalendarDate]*models.Class, len(existing))
	activeSet := make(schedule.DateSet, len(existing))
	for i := range existing {
		c := &existing[i]
		d := schedule.DateOf(c.Date.UTC())
		if c.Active {
			if activeSet[d] {
				return ErrDuplicateDate
			}
			activeSet[d] = true
			byDate[d] = c
		} else if byDate[d] == nil {
			byDate[d] = c
		}
	}

	// The production incident this guards against was a blind regenerate on
	// every edit. Equal sets mean the spec did not really change: leave
	// every class row alone.
	if activeSet.Equal(newSet) {
		result.Unchanged = len(activeSet)
		return nil
	}

	for d, c := range byDate {
		switch {
		case newSet[d] && c.Active:
			result.Unchanged++
		case newSet[d] && !c.Active:
			if err := tx.Model(c).Update("active", true).Error; err != nil {
				return err
			}
			result.Reactivated++
		case !newSet[d] && c.Active:
			if err := tx.Model(c).Update("active", false).Error; err != nil {
				return err
			}
			result.Deactivated++
		}
	}

	for _, d := range newDates {
		if byDate[d] != nil {
			continue
		}
		c := models.Class{
			StudentID: payment.StudentID,
			PaymentID: payment.ID,
			Date:      d.Time(),
			Status:    schedule.StatusNotStarted,
			Active:    true,
		}
		if err := tx.Create(&c).Error; err != nil {
			return err
		}
		result.Inserted++
	}
	return nil
}

// DeletePayment removes a payment and every class it owns, in one
// transaction. Classes never outlive their payment.
func DeletePayment(id uint) error {
	return db.Conn().Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		if err := tx.First(&payment, id).Error; err != nil {
			return err
		}
		if err := tx.Where("payment_id = ?", payment.ID).Delete(&models.Class{}).Error; err != nil {
			return err
		}
		return tx.Delete(&payment).Error
	})
}

func PaymentByID(id uint) (*models.Payment, error) {
	var payment models.Payment
	if err := db.Conn().First(&payment, id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// PaymentByCode resolves the external UUID reference printed on receipts.
func PaymentByCode(code uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	if err := db.Conn().Where("code = ?", code).First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// ActiveClasses returns a payment's active classes in date order.
func ActiveClasses(paymentID uint) ([]models.Class, error) {
	var classes []models.Class
	err := db.Conn().Where("payment_id = ? AND active = ?", paymentID, true).
		Order("date asc").Find(&classes).Error
	return classes, err
}

// PaymentsOfStudent returns a student's payments, newest first (ties broken
// by id so the order matches the partitioner's most-recent pick).
func PaymentsOfStudent(studentID uint) ([]models.Payment, error) {
	var student models.Student
	if err := db.Conn().First(&student, studentID).Error; err != nil {
		return nil, err
	}
	var payments []models.Payment
	err := db.Conn().Where("student_id = ?", studentID).
		Order("payment_date desc, id desc").Find(&payments).Error
	return payments, err
}
