package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"meatStreakAPI/internal/eventlog"
	"meatStreakAPI/middleware"
	"meatStreakAPI/services"
)

type TrackerHandler struct {
	trackerService *services.TrackerService
}

func NewTrackerHandler(trackerService *services.TrackerService) *TrackerHandler {
	return &TrackerHandler{
		trackerService: trackerService,
	}
}

type logDayRequest struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type bulkUpdateRequest struct {
	Entries []logDayRequest `json:"entries"`
}

func parseISODate(s string) (time.Time, error) {
	return time.ParseInLocation(eventlog.ISODate, s, time.Local)
}

func (h *TrackerHandler) LogDay(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	username, ok := middleware.GetUsername(ctx)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Username required")
		return
	}

	var req logDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	date, err := parseISODate(req.Date)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
		return
	}
	if req.Count < 0 {
		respondWithError(w, http.StatusBadRequest, "Count must be non-negative")
		return
	}

	dashboard, err := h.trackerService.LogDay(ctx, username, date, req.Count)
	if err != nil {
		respondWithError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, dashboard)
}

func (h *TrackerHandler) RemoveDay(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	username, ok := middleware.GetUsername(ctx)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Username required")
		return
	}

	dateParam := r.URL.Query().Get("date")
	if dateParam == "" {
		respondWithError(w, http.StatusBadRequest, "Query parameter 'date' is required")
		return
	}
	date, err := parseISODate(dateParam)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
		return
	}

	dashboard, err := h.trackerService.RemoveDay(ctx, username, date)
	if err != nil {
		respondWithError(w, http.StatusNotFound, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, dashboard)
}

func (h *TrackerHandler) BulkUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	username, ok := middleware.GetUsername(ctx)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Username required")
		return
	}

	var req bulkUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	entries := make([]eventlog.Entry, 0, len(req.Entries))
	for _, e := range req.Entries {
		date, err := parseISODate(e.Date)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid date %q, expected YYYY-MM-DD", e.Date))
			return
		}
		entries = append(entries, eventlog.Entry{Date: date, Count: e.Count})
	}

	dashboard, err := h.trackerService.BulkUpdate(ctx, username, entries)
	if err != nil {
		respondWithError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, dashboard)
}

func (h *TrackerHandler) Reset(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	username, ok := middleware.GetUsername(ctx)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Username required")
		return
	}

	if err := h.trackerService.Reset(ctx, username); err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Your data has been reset"})
}

func (h *TrackerHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	username, ok := middleware.GetUsername(ctx)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Username required")
		return
	}

	dashboard, err := h.trackerService.Dashboard(ctx, username)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, dashboard)
}

func (h *TrackerHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	username, ok := middleware.GetUsername(ctx)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Username required")
		return
	}

	userStats, err := h.trackerService.Stats(ctx, username)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, userStats)
}

func (h *TrackerHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	username, ok := middleware.GetUsername(ctx)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Username required")
		return
	}

	now := time.Now()
	year, month := now.Year(), int(now.Month())
	if y := r.URL.Query().Get("year"); y != "" {
		parsed, err := strconv.Atoi(y)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid year")
			return
		}
		year = parsed
	}
	if m := r.URL.Query().Get("month"); m != "" {
		parsed, err := strconv.Atoi(m)
		if err != nil || parsed < 1 || parsed > 12 {
			respondWithError(w, http.StatusBadRequest, "Invalid month")
			return
		}
		month = parsed
	}

	cal, err := h.trackerService.Calendar(ctx, username, year, month)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, cal)
}

func (h *TrackerHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	username, ok := middleware.GetUsername(ctx)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Username required")
		return
	}

	data, err := h.trackerService.ExportCSV(ctx, username)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s_meat_log.csv"`, username))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Printf("failed to write export for %s: %v", username, err)
	}
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
