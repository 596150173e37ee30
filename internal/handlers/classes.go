package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/solmusic/studio/internal/schedule"
	svc "github.com/solmusic/studio/internal/services"
)

type classStateRequest struct {
	State           string  `json:"state" validate:"required"`
	Notes           *string `json:"notes"`
	RescheduledDate *string `json:"rescheduledDate" validate:"omitempty,datetime=2006-01-02"`
}

// PUT /classes/{id}/state — a null rescheduledDate explicitly clears it,
// which together with state "not_started" is the undo-reschedule flow.
func UpdateClassState(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		respondError(w, http.StatusNotFound, codeNotFound, "not found")
		return
	}

	var req classStateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var resched *schedule.CalendarDate
	if req.RescheduledDate != nil {
		d, err := schedule.ParseDate(*req.RescheduledDate)
		if err != nil {
			respondError(w, http.StatusBadRequest, codeValidation, "invalid rescheduledDate")
			return
		}
		resched = &d
	}

	class, err := svc.SetClassState(uint(id), req.State, resched, req.Notes)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"class": viewOfClass(*class)})
}

// POST /classes/{id}/undo-reschedule
func UndoReschedule(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		respondError(w, http.StatusNotFound, codeNotFound, "not found")
		return
	}

	class, err := svc.UndoReschedule(uint(id))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"class": viewOfClass(*class)})
}
