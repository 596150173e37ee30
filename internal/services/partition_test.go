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

func allActive(studentID uint, dst *[]models.Class) error {
	return db.Conn().Where("student_id = ? AND active = ?", studentID, true).Find(dst).Error
}

// TestSeparateClasses splits a student with three payments into the most
// recent payment's classes and everything older, and checks the two sides
// cover the full active set with no overlap.
func TestSeparateClasses(t *testing.T) {
	initTestDB(t)
	student := seedStudent(t, "Nora")

	mkPayment := func(paid schedule.CalendarDate, dates ...string) *models.Payment {
		t.Helper()
		p, _, err := CreatePayment(CreatePaymentInput{
			StudentID:   student.ID,
			Amount:      decimal.NewFromInt(60),
			PaymentDate: paid,
			Spec:        DateSpec{Explicit: dates},
		})
		if err != nil {
			t.Fatalf("seed payment: %v", err)
		}
		return p
	}

	mkPayment(cd(2025, time.April, 1), "2025-04-03", "2025-04-10")
	mkPayment(cd(2025, time.May, 1), "2025-05-08")
	latest := mkPayment(cd(2025, time.June, 1), "2025-06-05", "2025-06-12", "2025-06-19")

	sep, err := SeparateClasses(student.ID)
	if err != nil {
		t.Fatalf("separate: %v", err)
	}
	if sep.MostRecentPayment == nil || sep.MostRecentPayment.ID != latest.ID {
		t.Fatalf("most recent payment wrong: %+v", sep.MostRecentPayment)
	}
	if len(sep.Current) != 3 {
		t.Errorf("current: want 3 classes, got %d", len(sep.Current))
	}
	if len(sep.Historical) != 3 {
		t.Errorf("historical: want 3 classes, got %d", len(sep.Historical))
	}

	// Completeness: current ∪ historical == all active classes, disjoint.
	ids := map[uint]int{}
	for _, c := range sep.Current {
		ids[c.ID]++
	}
	for _, c := range sep.Historical {
		ids[c.ID]++
	}
	for id, n := range ids {
		if n != 1 {
			t.Errorf("class %d appears on both sides", id)
		}
	}
	var all []models.Class
	if err := allActive(student.ID, &all); err != nil {
		t.Fatalf("load all: %v", err)
	}
	if len(ids) != len(all) {
		t.Errorf("partition misses classes: %d of %d", len(ids), len(all))
	}
}

// TestSeparateClasses_TieBreak: payments recorded on the same date resolve
// to the higher id, i.e. the later-created payment.
func TestSeparateClasses_TieBreak(t *testing.T) {
	initTestDB(t)
	student := seedStudent(t, "Olga")

	paid := cd(2025, time.June, 1)
	first, _, err := CreatePayment(CreatePaymentInput{
		StudentID: student.ID, Amount: decimal.NewFromInt(30), PaymentDate: paid,
		Spec: DateSpec{Explicit: []string{"2025-06-05"}},
	})
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, _, err := CreatePayment(CreatePaymentInput{
		StudentID: student.ID, Amount: decimal.NewFromInt(30), PaymentDate: paid,
		Spec: DateSpec{Explicit: []string{"2025-06-06"}},
	})
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if second.ID <= first.ID {
		t.Fatalf("test assumes ascending ids")
	}

	sep, err := SeparateClasses(student.ID)
	if err != nil {
		t.Fatalf("separate: %v", err)
	}
	if sep.MostRecentPayment.ID != second.ID {
		t.Errorf("tie-break: want payment %d, got %d", second.ID, sep.MostRecentPayment.ID)
	}
}

// TestSeparateClasses_NoPayments: a student without payments is not an
// error; both lists are empty and no payment is returned.
func TestSeparateClasses_NoPayments(t *testing.T) {
	initTestDB(t)
	student := seedStudent(t, "Pia")

	sep, err := SeparateClasses(student.ID)
	if err != nil {
		t.Fatalf("separate: %v", err)
	}
	if sep.MostRecentPayment != nil {
		t.Errorf("unexpected payment: %+v", sep.MostRecentPayment)
	}
	if len(sep.Current) != 0 || len(sep.Historical) != 0 {
		t.Errorf("expected empty lists, got %d/%d", len(sep.Current), len(sep.Historical))
	}

	if _, err := SeparateClasses(9999); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("unknown student: want ErrRecordNotFound, got %v", err)
	}
}

// TestSeparateClasses_ExcludesInactive: deactivated classes belong to
// neither side of the partition.
func TestSeparateClasses_ExcludesInactive(t *testing.T) {
	initTestDB(t)
	student := seedStudent(t, "Quin")

	payment, _, err := CreatePayment(CreatePaymentInput{
		StudentID: student.ID, Amount: decimal.NewFromInt(60),
		PaymentDate: cd(2025, time.June, 1),
		Spec:        DateSpec{PeriodStart: cdp(2025, time.June, 3), PeriodEnd: cdp(2025, time.June, 17)},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, _, err := UpdatePayment(payment.ID, UpdatePaymentInput{
		Spec: DateSpec{PeriodStart: cdp(2025, time.June, 3), PeriodEnd: cdp(2025, time.June, 10)},
	}); err != nil {
		t.Fatalf("shrink: %v", err)
	}

	sep, err := SeparateClasses(student.ID)
	if err != nil {
		t.Fatalf("separate: %v", err)
	}
	if len(sep.Current) != 2 {
		t.Errorf("want 2 current classes, got %d", len(sep.Current))
	}
	if len(sep.Historical) != 0 {
		t.Errorf("deactivated class leaked into historical")
	}
}
