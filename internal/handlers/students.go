package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/solmusic/studio/internal/db"
	"github.com/solmusic/studio/internal/models"
	svc "github.com/solmusic/studio/internal/services"
)

type studentRequest struct {
	Name       string `json:"name" validate:"required"`
	Phone      string `json:"phone"`
	Email      string `json:"email" validate:"omitempty,email"`
	Instrument string `json:"instrument"`
}

type studentView struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Instrument string `json:"instrument"`
}

func viewOfStudent(s models.Student) studentView {
	return studentView{ID: s.ID, Name: s.Name, Phone: s.Phone, Email: s.Email, Instrument: s.Instrument}
}

// POST /students
func CreateStudent(w http.ResponseWriter, r *http.Request) {
	var req studentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	student := models.Student{
		Name:       req.Name,
		Phone:      req.Phone,
		Email:      req.Email,
		Instrument: req.Instrument,
		Active:     true,
	}
	if err := db.Conn().Create(&student).Error; err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"student": viewOfStudent(student)})
}

// GET /students
func ListStudents(w http.ResponseWriter, r *http.Request) {
	var students []models.Student
	if err := db.Conn().Where("active = ?", true).
		Order("LOWER(name) asc").Find(&students).Error; err != nil {
		respondServiceError(w, err)
		return
	}
	out := make([]studentView, len(students))
	for i, s := range students {
		out[i] = viewOfStudent(s)
	}
	respondJSON(w, http.StatusOK, map[string]any{"students": out})
}

// GET /students/{id}
func GetStudent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		respondError(w, http.StatusNotFound, codeNotFound, "not found")
		return
	}
	var student models.Student
	if err := db.Conn().First(&student, id).Error; err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"student": viewOfStudent(student)})
}

// PUT /students/{id}
func UpdateStudent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		respondError(w, http.StatusNotFound, codeNotFound, "not found")
		return
	}
	var req studentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var student models.Student
	if err := db.Conn().First(&student, id).Error; err != nil {
		respondServiceError(w, err)
		return
	}
	student.Name = req.Name
	student.Phone = req.Phone
	student.Email = req.Email
	student.Instrument = req.Instrument
	if err := db.Conn().Save(&student).Error; err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"student": viewOfStudent(student)})
}

// GET /students/{id}/classes/separated
func StudentClassesSeparated(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		respondError(w, http.StatusNotFound, codeNotFound, "not found")
		return
	}
	sep, err := svc.SeparateClasses(uint(id))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	out := map[string]any{
		"current":           viewOfClasses(sep.Current),
		"historical":        viewOfClasses(sep.Historical),
		"mostRecentPayment": nil,
	}
	if sep.MostRecentPayment != nil {
		out["mostRecentPayment"] = viewOfPayment(*sep.MostRecentPayment)
	}
	respondJSON(w, http.StatusOK, out)
}

// GET /students/{id}/classes/summary
func StudentClassesSummary(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		respondError(w, http.StatusNotFound, codeNotFound, "not found")
		return
	}
	counts, err := svc.SummarizeStudent(uint(id))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"summary": counts})
}
