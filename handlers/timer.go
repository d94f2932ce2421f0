package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tastytracker/database"
	"tastytracker/middleware"
	"tastytracker/models"
)

// ErrTimerRunning is returned when a start races an existing timer.
var ErrTimerRunning = errors.New("a timer is already running")

type TimerHandler struct {
	log      *zap.Logger
	validate *validator.Validate
}

func NewTimerHandler(log *zap.Logger) *TimerHandler {
	return &TimerHandler{
		log:      log.Named("timer"),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

type timerResponse struct {
	models.ActiveTimer
	ElapsedSeconds int `json:"elapsed_seconds"`
}

func (h *TimerHandler) Current(w http.ResponseWriter, r *http.Request) {
	profile := middleware.GetUserFromContext(r.Context())

	var timer models.ActiveTimer
	err := database.GetDB().Preload("Project").Preload("Project.Client").
		Where("user_id = ?", profile.ID).
		First(&timer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondJSON(w, http.StatusOK, nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "could not load timer")
		return
	}

	respondJSON(w, http.StatusOK, timerResponse{
		ActiveTimer:    timer,
		ElapsedSeconds: int(timer.Elapsed(time.Now()).Seconds()),
	})
}

type startTimerRequest struct {
	ProjectID uuid.UUID `json:"project_id" validate:"required"`
}

// Start opens a timer for the caller. The per-user unique index plus
// the in-transaction check make a concurrent double-start lose with a
// conflict instead of a second row.
func (h *TimerHandler) Start(w http.ResponseWriter, r *http.Request) {
	profile := middleware.GetUserFromContext(r.Context())

	var req startTimerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, formatValidationError(err))
		return
	}

	db := database.GetDB()

	var count int64
	db.Model(&models.Project{}).Where("id = ?", req.ProjectID).Count(&count)
	if count == 0 {
		respondError(w, http.StatusBadRequest, "project not found")
		return
	}

	timer := models.ActiveTimer{
		UserID:    profile.ID,
		ProjectID: req.ProjectID,
		StartedAt: time.Now().UTC(),
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var existing int64
		tx.Model(&models.ActiveTimer{}).Where("user_id = ?", profile.ID).Count(&existing)
		if existing > 0 {
			return ErrTimerRunning
		}
		return tx.Create(&timer).Error
	})
	if err != nil {
		if errors.Is(err, ErrTimerRunning) {
			respondError(w, http.StatusConflict, ErrTimerRunning.Error())
			return
		}
		h.log.Error("timer start failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "could not start timer")
		return
	}

	respondJSON(w, http.StatusCreated, timer)
}

type stopTimerRequest struct {
	Notes string `json:"notes"`
}

// Stop converts the running timer into a time entry and removes the
// timer row in one transaction, so a failure leaves either both or
// neither: no dangling timer, no duplicate entry.
func (h *TimerHandler) Stop(w http.ResponseWriter, r *http.Request) {
	profile := middleware.GetUserFromContext(r.Context())

	var req stopTimerRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	db := database.GetDB()
	now := time.Now().UTC()

	var entry models.TimeEntry
	err := db.Transaction(func(tx *gorm.DB) error {
		var timer models.ActiveTimer
		if err := tx.Where("user_id = ?", profile.ID).First(&timer).Error; err != nil {
			return err
		}

		startedAt := timer.StartedAt
		entry = models.TimeEntry{
			UserID:          profile.ID,
			ProjectID:       &timer.ProjectID,
			DurationMinutes: models.TimerDuration(timer.Elapsed(now)),
			Date:            time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
			Notes:           req.Notes,
			IsBillable:      true,
			IsTimer:         true,
			StartTime:       &startedAt,
			EndTime:         &now,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		return tx.Delete(&timer).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(w, http.StatusNotFound, "no running timer")
			return
		}
		h.log.Error("timer stop failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "could not stop timer")
		return
	}

	respondJSON(w, http.StatusOK, entry)
}
