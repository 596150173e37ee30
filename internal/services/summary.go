package services

import (
	"github.com/solmusic/studio/internal/db"
	"github.com/solmusic/studio/internal/models"
	"github.com/solmusic/studio/internal/schedule"
)

// Summarize reduces a class list to per-status counts. Every status key is
// present, zero-filled, so consumers never branch on missing keys.
func Summarize(classes []models.Class) map[string]int {
	counts := make(map[string]int, len(schedule.Statuses))
	for _, s := range schedule.Statuses {
		counts[s] = 0
	}
	for _, c := range classes {
		counts[c.Status]++
	}
	return counts
}

// SummarizeStudent counts the student's active classes by status in a single
// GROUP BY round-trip. Recomputed on every request: statuses change far more
// often than this is read, so caching would mostly serve stale data.
func SummarizeStudent(studentID uint) (map[string]int, error) {
	var student models.Student
	if err := db.Conn().First(&student, studentID).Error; err != nil {
		return nil, err
	}

	type statusCount struct {
		Status string
		N      int
	}
	var rows []statusCount
	if err := db.Conn().Table("classes").
		Select("status, COUNT(*) AS n").
		Where("student_id = ? AND active = ?", studentID, true).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(schedule.Statuses))
	for _, s := range schedule.Statuses {
		counts[s] = 0
	}
	for _, r := range rows {
		counts[r.Status] = r.N
	}
	return counts, nil
}
