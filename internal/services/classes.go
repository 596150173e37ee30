package services

import (
	"gorm.io/gorm"

	"github.com/solmusic/studio/internal/db"
	"github.com/solmusic/studio/internal/models"
	"github.com/solmusic/studio/internal/schedule"
)

// SetClassState applies an administrator-selected status change to one class
// as a single atomic update. A nil notes pointer leaves notes alone; a
// notes-only edit re-submits the current status. The disposition value built
// in the schedule package guarantees that leaving the rescheduled status
// clears the reschedule date in the same write.
func SetClassState(classID uint, status string, rescheduledDate *schedule.CalendarDate, notes *string) (*models.Class, error) {
	var class models.Class
	err := db.Conn().Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("active = ?", true).First(&class, classID).Error; err != nil {
			return err
		}

		disp, err := schedule.NewDisposition(status, rescheduledDate)
		if err != nil {
			return err
		}
		if err := disp.ValidateFor(schedule.DateOf(class.Date.UTC())); err != nil {
			return err
		}

		return applyDisposition(tx, &class, disp, notes)
	})
	if err != nil {
		return nil, err
	}
	return &class, nil
}

// UndoReschedule is the dedicated revert operation: only valid while the
// class is rescheduled, and always clears the reschedule date together with
// the status reset.
func UndoReschedule(classID uint) (*models.Class, error) {
	var class models.Class
	err := db.Conn().Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("active = ?", true).First(&class, classID).Error; err != nil {
			return err
		}

		current := schedule.Disposition{Status: class.Status}
		if class.RescheduledDate != nil {
			current.RescheduledDate = schedule.DateOf(class.RescheduledDate.UTC())
		}
		disp, err := schedule.UndoReschedule(current)
		if err != nil {
			return err
		}

		return applyDisposition(tx, &class, disp, nil)
	})
	if err != nil {
		return nil, err
	}
	return &class, nil
}

func applyDisposition(tx *gorm.DB, class *models.Class, disp schedule.Disposition, notes *string) error {
	updates := map[string]any{
		"status":           disp.Status,
		"rescheduled_date": nil,
	}
	if disp.Status == schedule.StatusRescheduled {
		updates["rescheduled_date"] = disp.RescheduledDate.Time()
	}
	if notes != nil {
		updates["notes"] = *notes
	}
	if err := tx.Model(class).Updates(updates).Error; err != nil {
		return err
	}

	class.Status = disp.Status
	class.RescheduledDate = nil
	if disp.Status == schedule.StatusRescheduled {
		t := disp.RescheduledDate.Time()
		class.RescheduledDate = &t
	}
	if notes != nil {
		class.Notes = *notes
	}
	return nil
}
