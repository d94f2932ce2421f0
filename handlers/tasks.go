package handlers

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"tastytracker/database"
	"tastytracker/middleware"
	"tastytracker/models"
)

type TaskHandler struct {
	log      *zap.Logger
	validate *validator.Validate
}

func NewTaskHandler(log *zap.Logger) *TaskHandler {
	return &TaskHandler{
		log:      log.Named("tasks"),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *TaskHandler) ListByProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "projectID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	var tasks []models.ProjectTask
	err = database.GetDB().Preload("Assignee").
		Where("project_id = ?", projectID).
		Order("created_at desc").
		Find(&tasks).Error
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not load tasks")
		return
	}
	respondJSON(w, http.StatusOK, tasks)
}

type taskRequest struct {
	Title          string     `json:"title" validate:"required"`
	Description    string     `json:"description"`
	Status         string     `json:"status"`
	Priority       string     `json:"priority"`
	AssignedTo     *uuid.UUID `json:"assigned_to"`
	EstimatedHours float64    `json:"estimated_hours" validate:"gte=0"`
	SpentHours     float64    `json:"spent_hours" validate:"gte=0"`
	DueDate        *time.Time `json:"due_date"`
}

func (h *TaskHandler) applyRequest(task *models.ProjectTask, req *taskRequest) string {
	status := models.TaskStatus(req.Status)
	if req.Status == "" {
		status = models.TaskTodo
	}
	if !status.Valid() {
		return "unknown task status"
	}

	priority := models.TaskPriority(req.Priority)
	if req.Priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.Valid() {
		return "unknown task priority"
	}

	task.Title = req.Title
	task.Description = req.Description
	task.Status = status
	task.Priority = priority
	task.AssignedTo = req.AssignedTo
	task.EstimatedHours = req.EstimatedHours
	task.SpentHours = req.SpentHours
	task.DueDate = req.DueDate
	return ""
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	profile := middleware.GetUserFromContext(r.Context())

	projectID, err := pathID(r, "projectID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	var req taskRequest
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
	db.Model(&models.Project{}).Where("id = ?", projectID).Count(&count)
	if count == 0 {
		respondError(w, http.StatusNotFound, "project not found")
		return
	}

	task := models.ProjectTask{
		ProjectID: projectID,
		CreatedBy: profile.ID,
	}
	if msg := h.applyRequest(&task, &req); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	if err := db.Create(&task).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "could not create task")
		return
	}
	respondJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "taskID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	var task models.ProjectTask
	if err := database.GetDB().First(&task, "id = ?", id).Error; err != nil {
		respondError(w, http.StatusNotFound, "task not found")
		return
	}

	var req taskRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, formatValidationError(err))
		return
	}
	if msg := h.applyRequest(&task, &req); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	if err := database.GetDB().Save(&task).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "could not update task")
		return
	}
	respondJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "taskID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	if err := database.GetDB().Delete(&models.ProjectTask{}, "id = ?", id).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "could not delete task")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

type taskStatusRequest struct {
	Status models.TaskStatus `json:"status" validate:"required"`
}

// UpdateStatus is the board drop target: it moves the card and nothing
// else. Concurrent drags resolve last-write-wins.
func (h *TaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "taskID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	var req taskStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !req.Status.Valid() {
		respondError(w, http.StatusBadRequest, "unknown task status")
		return
	}

	result := database.GetDB().Model(&models.ProjectTask{}).Where("id = ?", id).Update("status", req.Status)
	if result.Error != nil {
		respondError(w, http.StatusInternalServerError, "could not update task status")
		return
	}
	if result.RowsAffected == 0 {
		respondError(w, http.StatusNotFound, "task not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"status": req.Status})
}
