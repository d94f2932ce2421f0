package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"tastytracker/database"
	"tastytracker/middleware"
	"tastytracker/models"
	"tastytracker/reports"
)

type TimeHandler struct {
	log      *zap.Logger
	validate *validator.Validate
}

func NewTimeHandler(log *zap.Logger) *TimeHandler {
	return &TimeHandler{
		log:      log.Named("time"),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

const dateLayout = "2006-01-02"

// periodRange resolves the period query parameter into an inclusive
// date window. Weeks start on Monday.
func periodRange(period, start, end string, now time.Time) (time.Time, time.Time, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	switch period {
	case "", "today":
		return today, today, nil
	case "week":
		offset := int(today.Weekday())
		if offset == 0 {
			offset = 7
		}
		monday := today.AddDate(0, 0, -offset+1)
		return monday, today, nil
	case "month":
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		return first, today, nil
	case "custom":
		from, err := time.Parse(dateLayout, start)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start date")
		}
		to, err := time.Parse(dateLayout, end)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end date")
		}
		return from, to, nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("unknown period %q", period)
	}
}

func (h *TimeHandler) entriesForRequest(r *http.Request) ([]models.TimeEntry, error) {
	profile := middleware.GetUserFromContext(r.Context())

	from, to, err := periodRange(
		r.URL.Query().Get("period"),
		r.URL.Query().Get("start"),
		r.URL.Query().Get("end"),
		time.Now().UTC(),
	)
	if err != nil {
		return nil, err
	}

	var entries []models.TimeEntry
	err = database.GetDB().
		Preload("Project").Preload("Project.Client").
		Where("user_id = ?", profile.ID).
		Where("date >= ? AND date <= ?", from, to).
		Order("date desc, created_at desc").
		Find(&entries).Error
	return entries, err
}

func (h *TimeHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.entriesForRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

type entryRequest struct {
	ProjectID  *uuid.UUID `json:"project_id"`
	Hours      float64    `json:"hours" validate:"required,gt=0,lte=24"`
	Date       string     `json:"date"`
	Notes      string     `json:"notes"`
	IsBillable *bool      `json:"is_billable"`
}

// CreateEntry is the quick-entry path: hours in, minutes stored.
// Defaults: today's date, billable, manual (not timer-born).
func (h *TimeHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	profile := middleware.GetUserFromContext(r.Context())

	var req entryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, formatValidationError(err))
		return
	}

	date := time.Now().UTC().Truncate(24 * time.Hour)
	if req.Date != "" {
		parsed, err := time.Parse(dateLayout, req.Date)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid date format")
			return
		}
		date = parsed
	}

	billable := true
	if req.IsBillable != nil {
		billable = *req.IsBillable
	}

	entry := models.TimeEntry{
		UserID:          profile.ID,
		ProjectID:       req.ProjectID,
		DurationMinutes: int(req.Hours*60 + 0.5),
		Date:            date,
		Notes:           req.Notes,
		IsBillable:      billable,
		IsTimer:         false,
	}
	if err := database.GetDB().Create(&entry).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "could not create entry")
		return
	}
	respondJSON(w, http.StatusCreated, entry)
}

func (h *TimeHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	profile := middleware.GetUserFromContext(r.Context())

	id, err := pathID(r, "entryID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	var entry models.TimeEntry
	if err := database.GetDB().First(&entry, "id = ?", id).Error; err != nil {
		respondError(w, http.StatusNotFound, "entry not found")
		return
	}

	if !profile.CanManageEntryFor(entry.UserID) {
		respondError(w, http.StatusForbidden, "forbidden")
		return
	}

	var req entryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, formatValidationError(err))
		return
	}

	if req.Date != "" {
		parsed, err := time.Parse(dateLayout, req.Date)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid date format")
			return
		}
		entry.Date = parsed
	}
	entry.ProjectID = req.ProjectID
	entry.DurationMinutes = int(req.Hours*60 + 0.5)
	entry.Notes = req.Notes
	if req.IsBillable != nil {
		entry.IsBillable = *req.IsBillable
	}

	if err := database.GetDB().Save(&entry).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "could not update entry")
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

func (h *TimeHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	profile := middleware.GetUserFromContext(r.Context())

	id, err := pathID(r, "entryID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	var entry models.TimeEntry
	if err := database.GetDB().First(&entry, "id = ?", id).Error; err != nil {
		respondError(w, http.StatusNotFound, "entry not found")
		return
	}

	if !profile.CanManageEntryFor(entry.UserID) {
		respondError(w, http.StatusForbidden, "forbidden")
		return
	}

	if err := database.GetDB().Delete(&entry).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "could not delete entry")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

type timeStats struct {
	TotalHours      float64 `json:"total_hours"`
	BillableHours   float64 `json:"billable_hours"`
	BillablePercent float64 `json:"billable_percent"`
	EntriesCount    int     `json:"entries_count"`
	BillableAmount  string  `json:"billable_amount"`
}

func (h *TimeHandler) Stats(w http.ResponseWriter, r *http.Request) {
	profile := middleware.GetUserFromContext(r.Context())

	entries, err := h.entriesForRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	total := reports.TotalMinutes(entries)
	billable := reports.BillableMinutes(entries)
	respondJSON(w, http.StatusOK, timeStats{
		TotalHours:      reports.Hours(total),
		BillableHours:   reports.Hours(billable),
		BillablePercent: reports.BillablePercent(billable, total),
		EntriesCount:    len(entries),
		BillableAmount:  reports.BillableAmount(billable, profile.HourlyRate).String(),
	})
}

// ExportCSV streams the caller's filtered entries in the fixed export
// format.
func (h *TimeHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	entries, err := h.entriesForRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	filename := fmt.Sprintf("pointages_%s.csv", time.Now().UTC().Format(dateLayout))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Write([]byte(reports.ExportCSV(entries)))
}
