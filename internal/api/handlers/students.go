package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/bbanting/canvasgradecheck/internal/contracts"
	"github.com/bbanting/canvasgradecheck/internal/history"
	"github.com/bbanting/canvasgradecheck/internal/roster"
	"github.com/bbanting/canvasgradecheck/pkg/logger"
)

// RosterLoader returns the current roster
type RosterLoader func() ([]*contracts.Student, error)

// StudentHandler serves roster, search and history endpoints
// ⭐ SSOT: 학생 조회 API 핸들러는 이 구조체에서만
type StudentHandler struct {
	roster  RosterLoader
	history history.Store
	logger  *logger.Logger
}

// NewStudentHandler creates a new student handler
func NewStudentHandler(loadRoster RosterLoader, hist history.Store, log *logger.Logger) *StudentHandler {
	return &StudentHandler{
		roster:  loadRoster,
		history: hist,
		logger:  log,
	}
}

// StudentSummary is one student's state in the latest snapshot
type StudentSummary struct {
	ID      int                   `json:"id"`
	Name    string                `json:"name"`
	Average *float64              `json:"average"`
	Courses []history.CourseGrade `json:"courses"`
}

// StudentsResponse lists every roster student for the latest date
type StudentsResponse struct {
	Date     string           `json:"date,omitempty"`
	Students []StudentSummary `json:"students"`
}

// PointResponse is one dated entry of a student's series
type PointResponse struct {
	Date    string                `json:"date"`
	Average *float64              `json:"average"`
	Courses []history.CourseGrade `json:"courses"`
}

// HistoryResponse is a student's full series for external plotting
type HistoryResponse struct {
	ID     int             `json:"id"`
	Name   string          `json:"name"`
	Points []PointResponse `json:"points"`
}

// List returns the latest snapshot for every roster student
// GET /api/students
func (h *StudentHandler) List(w http.ResponseWriter, r *http.Request) {
	students, err := h.roster()
	if err != nil {
		h.logger.WithError(err).Error("Failed to load roster")
		respondError(w, http.StatusInternalServerError, "Failed to load roster")
		return
	}

	hist, err := h.history.Load(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to load history")
		respondError(w, http.StatusInternalServerError, "Failed to load history")
		return
	}

	resp := StudentsResponse{Students: make([]StudentSummary, 0, len(students))}

	date, snap, ok := hist.Latest()
	if ok {
		resp.Date = date.Format(history.DateLayout)
	}

	for _, s := range students {
		summary := StudentSummary{ID: s.ID, Name: s.Name, Courses: []history.CourseGrade{}}
		if rec, found := snap[strconv.Itoa(s.ID)]; found {
			summary.Average = rec.Average
			summary.Courses = rec.Courses
		}
		resp.Students = append(resp.Students, summary)
	}

	respondJSON(w, http.StatusOK, resp)
}

// Search finds one student by name
// GET /api/students/search?q=alan
func (h *StudentHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondError(w, http.StatusBadRequest, "Missing query parameter 'q'")
		return
	}

	students, err := h.roster()
	if err != nil {
		h.logger.WithError(err).Error("Failed to load roster")
		respondError(w, http.StatusInternalServerError, "Failed to load roster")
		return
	}

	result := roster.Search(students, query)
	if err := result.Err(); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"id":   result.Student.ID,
		"name": result.Student.Name,
	})
}

// History returns a student's dated series
// GET /api/students/{id}/history
func (h *StudentHandler) History(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid student id")
		return
	}

	students, err := h.roster()
	if err != nil {
		h.logger.WithError(err).Error("Failed to load roster")
		respondError(w, http.StatusInternalServerError, "Failed to load roster")
		return
	}

	student := roster.FindByID(students, id)
	if student == nil {
		respondError(w, http.StatusNotFound, roster.ErrStudentNotFound.Error())
		return
	}

	hist, err := h.history.Load(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to load history")
		respondError(w, http.StatusInternalServerError, "Failed to load history")
		return
	}

	points, err := history.Series(hist, id)
	if err != nil {
		h.logger.WithError(err).Error("Failed to build series")
		respondError(w, http.StatusInternalServerError, "Failed to build series")
		return
	}

	resp := HistoryResponse{
		ID:     student.ID,
		Name:   student.Name,
		Points: make([]PointResponse, 0, len(points)),
	}
	for _, p := range points {
		resp.Points = append(resp.Points, PointResponse{
			Date:    p.Date.Format(history.DateLayout),
			Average: p.Average,
			Courses: p.Courses,
		})
	}

	respondJSON(w, http.StatusOK, resp)
}
