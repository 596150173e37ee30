package services

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/solmusic/studio/internal/db"
	"github.com/solmusic/studio/internal/models"
	"github.com/solmusic/studio/internal/schedule"
)

func seedPaymentWithClasses(t *testing.T) (models.Student, *models.Payment, []models.Class) {
	t.Helper()
	student := seedStudent(t, "Mia")
	payment, classes, err := CreatePayment(CreatePaymentInput{
		StudentID:   student.ID,
		Amount:      decimal.NewFromInt(120),
		PaymentDate: cd(2025, time.June, 30),
		Spec:        DateSpec{PeriodStart: cdp(2025, time.July, 1), PeriodEnd: cdp(2025, time.July, 22)},
	})
	if err != nil {
		t.Fatalf("seed payment: %v", err)
	}
	return student, payment, classes
}

// TestSetClassState_RoundTrip walks a class through every status and checks
// the reschedule date only ever exists while the class is rescheduled.
func TestSetClassState_RoundTrip(t *testing.T) {
	initTestDB(t)
	_, _, classes := seedPaymentWithClasses(t)
	id := classes[0].ID

	c, err := SetClassState(id, schedule.StatusTaken, nil, nil)
	if err != nil {
		t.Fatalf("to taken: %v", err)
	}
	if c.Status != schedule.StatusTaken || c.RescheduledDate != nil {
		t.Errorf("taken: %+v", c)
	}

	c, err = SetClassState(id, schedule.StatusRescheduled, cdp(2025, time.August, 5), nil)
	if err != nil {
		t.Fatalf("to rescheduled: %v", err)
	}
	if c.RescheduledDate == nil || schedule.DateOf(c.RescheduledDate.UTC()).String() != "2025-08-05" {
		t.Fatalf("rescheduled date not stored: %+v", c.RescheduledDate)
	}

	// Direct transition away from rescheduled must clear the date too.
	c, err = SetClassState(id, schedule.StatusMadeUp, nil, nil)
	if err != nil {
		t.Fatalf("to made_up: %v", err)
	}
	if c.RescheduledDate != nil {
		t.Errorf("stale rescheduled date after leaving rescheduled")
	}

	var stored models.Class
	if err := db.Conn().First(&stored, id).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.Status != schedule.StatusMadeUp || stored.RescheduledDate != nil {
		t.Errorf("persisted row inconsistent: status=%s resched=%v", stored.Status, stored.RescheduledDate)
	}
}

func TestSetClassState_Validation(t *testing.T) {
	initTestDB(t)
	_, _, classes := seedPaymentWithClasses(t)
	id := classes[0].ID

	if _, err := SetClassState(id, "finished", nil, nil); !errors.Is(err, schedule.ErrInvalidStatus) {
		t.Errorf("bad status: want ErrInvalidStatus, got %v", err)
	}
	if _, err := SetClassState(id, schedule.StatusRescheduled, nil, nil); !errors.Is(err, schedule.ErrRescheduledDateRequired) {
		t.Errorf("missing date: want ErrRescheduledDateRequired, got %v", err)
	}
	// classes[0] is on 2025-07-01; rescheduling to the same day is rejected.
	if _, err := SetClassState(id, schedule.StatusRescheduled, cdp(2025, time.July, 1), nil); !errors.Is(err, schedule.ErrRescheduledSameDay) {
		t.Errorf("same day: want ErrRescheduledSameDay, got %v", err)
	}
	if _, err := SetClassState(9999, schedule.StatusTaken, nil, nil); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("unknown class: want ErrRecordNotFound, got %v", err)
	}
}

// TestSetClassState_NotesOnly: a notes edit re-submits the current status and
// changes nothing else; notes also update together with a status change.
func TestSetClassState_NotesOnly(t *testing.T) {
	initTestDB(t)
	_, _, classes := seedPaymentWithClasses(t)
	id := classes[2].ID

	notes := "worked on arpeggios"
	c, err := SetClassState(id, schedule.StatusNotStarted, nil, &notes)
	if err != nil {
		t.Fatalf("notes edit: %v", err)
	}
	if c.Notes != notes || c.Status != schedule.StatusNotStarted {
		t.Errorf("notes-only edit: %+v", c)
	}

	// Status change without a notes pointer leaves notes alone.
	c, err = SetClassState(id, schedule.StatusTaken, nil, nil)
	if err != nil {
		t.Fatalf("status edit: %v", err)
	}
	if c.Notes != notes {
		t.Errorf("notes lost on status-only edit: %q", c.Notes)
	}
}

// TestUndoReschedule: valid only from rescheduled, resets to not_started and
// clears the date in the same update.
func TestUndoReschedule(t *testing.T) {
	initTestDB(t)
	_, _, classes := seedPaymentWithClasses(t)
	id := classes[1].ID

	if _, err := UndoReschedule(id); !errors.Is(err, schedule.ErrNotRescheduled) {
		t.Fatalf("undo on not_started: want ErrNotRescheduled, got %v", err)
	}

	if _, err := SetClassState(id, schedule.StatusRescheduled, cdp(2025, time.August, 12), nil); err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	c, err := UndoReschedule(id)
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	if c.Status != schedule.StatusNotStarted || c.RescheduledDate != nil {
		t.Errorf("undo result: status=%s resched=%v", c.Status, c.RescheduledDate)
	}

	var stored models.Class
	db.Conn().First(&stored, id)
	if stored.Status != schedule.StatusNotStarted || stored.RescheduledDate != nil {
		t.Errorf("persisted undo inconsistent: %+v", stored)
	}
}

// TestSetClassState_InactiveClassNotFound: deactivated classes are read-only
// history; state changes on them report not found.
func TestSetClassState_InactiveClassNotFound(t *testing.T) {
	initTestDB(t)
	_, payment, classes := seedPaymentWithClasses(t)

	// Shrink the period so the last class deactivates.
	if _, _, err := UpdatePayment(payment.ID, UpdatePaymentInput{
		Spec: DateSpec{PeriodStart: cdp(2025, time.July, 1), PeriodEnd: cdp(2025, time.July, 15)},
	}); err != nil {
		t.Fatalf("shrink: %v", err)
	}

	if _, err := SetClassState(classes[3].ID, schedule.StatusTaken, nil, nil); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("inactive class: want ErrRecordNotFound, got %v", err)
	}
}
