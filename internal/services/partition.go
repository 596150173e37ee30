package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/solmusic/studio/internal/db"
	"github.com/solmusic/studio/internal/models"
)

// SeparatedClasses splits a student's active classes into the ones belonging
// to their most recent payment and everything earlier.
type SeparatedClasses struct {
	Current           []models.Class
	Historical        []models.Class
	MostRecentPayment *models.Payment
}

// SeparateClasses determines the student's most recent payment by payment
// date, ties broken by highest payment id (the later-created row wins, which
// is deterministic and matches insertion order). A student with no payments
// is not an error: both lists come back empty and the payment is nil.
func SeparateClasses(studentID uint) (*SeparatedClasses, error) {
	var student models.Student
	if err := db.Conn().First(&student, studentID).Error; err != nil {
		return nil, err
	}

	out := &SeparatedClasses{
		Current:    []models.Class{},
		Historical: []models.Class{},
	}

	var recent models.Payment
	err := db.Conn().Where("student_id = ?", studentID).
		Order("payment_date desc, id desc").First(&recent).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return out, nil
	}
	if err != nil {
		return nil, err
	}
	out.MostRecentPayment = &recent

	if err := db.Conn().
		Where("payment_id = ? AND active = ?", recent.ID, true).
		Order("date asc").Find(&out.Current).Error; err != nil {
		return nil, err
	}
	if err := db.Conn().
		Where("student_id = ? AND payment_id <> ? AND active = ?", studentID, recent.ID, true).
		Order("date asc").Find(&out.Historical).Error; err != nil {
		return nil, err
	}
	return out, nil
}
