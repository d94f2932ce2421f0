package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tastytracker/config"
	"tastytracker/database"
	"tastytracker/integrations"
	"tastytracker/middleware"
	"tastytracker/models"
	"tastytracker/reports"
)

type ProjectHandler struct {
	cfg      *config.Config
	log      *zap.Logger
	validate *validator.Validate
	calendar *integrations.CalendarClient
	relay    *integrations.TaskRelay
}

func NewProjectHandler(cfg *config.Config, log *zap.Logger, calendar *integrations.CalendarClient, relay *integrations.TaskRelay) *ProjectHandler {
	return &ProjectHandler{
		cfg:      cfg,
		log:      log.Named("projects"),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		calendar: calendar,
		relay:    relay,
	}
}

type projectMinutes struct {
	ProjectID uuid.UUID
	Total     int64
}

// attachHoursLogged recomputes each project's derived hours from time
// entries in a single grouped query. Done on every read; never stored.
func attachHoursLogged(db *gorm.DB, projects []models.Project) error {
	if len(projects) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
	}

	var sums []projectMinutes
	err := db.Model(&models.TimeEntry{}).
		Select("project_id, sum(duration_minutes) as total").
		Where("project_id IN ?", ids).
		Group("project_id").
		Scan(&sums).Error
	if err != nil {
		return err
	}

	byProject := make(map[uuid.UUID]int64, len(sums))
	for _, s := range sums {
		byProject[s.ProjectID] = s.Total
	}
	for i := range projects {
		projects[i].HoursLogged = reports.Hours(int(byProject[projects[i].ID]))
	}
	return nil
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	var projects []models.Project
	if err := database.GetDB().Preload("Client").Order("created_at desc").Find(&projects).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "could not load projects")
		return
	}
	if err := attachHoursLogged(database.GetDB(), projects); err != nil {
		respondError(w, http.StatusInternalServerError, "could not load projects")
		return
	}
	respondJSON(w, http.StatusOK, projects)
}

type createProjectRequest struct {
	Name        string     `json:"name" validate:"required"`
	ClientID    uuid.UUID  `json:"client_id" validate:"required"`
	Color       string     `json:"color"`
	Description string     `json:"description"`
	BudgetHours float64    `json:"budget_hours" validate:"gte=0"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Location    string     `json:"location"`
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	profile := middleware.GetUserFromContext(r.Context())
	if !profile.CanManageProjects() {
		respondError(w, http.StatusForbidden, "forbidden")
		return
	}

	var req createProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, formatValidationError(err))
		return
	}

	db := database.GetDB()
	var client models.Client
	if err := db.First(&client, "id = ?", req.ClientID).Error; err != nil {
		respondError(w, http.StatusBadRequest, "client not found")
		return
	}

	color := req.Color
	if color == "" {
		color = "#3b82f6"
	}

	project := models.Project{
		Name:        req.Name,
		ClientID:    req.ClientID,
		Color:       color,
		Description: req.Description,
		Status:      models.ProjectActive,
		Kanban:      models.KanbanUpcoming,
		BudgetHours: req.BudgetHours,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Location:    req.Location,
	}
	if err := db.Create(&project).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "could not create project")
		return
	}
	project.Client = &client
	respondJSON(w, http.StatusCreated, project)
}

// projectDetail is the aggregate the project page consumes: the project
// with its client, tasks, members, updates, files and derived metrics.
type projectDetail struct {
	models.Project
	Progress reports.Progress       `json:"progress"`
	Tasks    []models.ProjectTask   `json:"tasks"`
	Members  []models.ProjectMember `json:"members"`
	Updates  []models.ProjectUpdate `json:"updates"`
	Files    []models.ProjectFile   `json:"files"`
}

func (h *ProjectHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "projectID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	db := database.GetDB()

	var project models.Project
	if err := db.Preload("Client").First(&project, "id = ?", id).Error; err != nil {
		respondError(w, http.StatusNotFound, "project not found")
		return
	}

	projects := []models.Project{project}
	if err := attachHoursLogged(db, projects); err != nil {
		respondError(w, http.StatusInternalServerError, "could not load project")
		return
	}
	project = projects[0]

	detail := projectDetail{
		Project:  project,
		Progress: reports.ProjectProgress(project.HoursLogged, project.BudgetHours),
	}

	if err := db.Preload("Assignee").Where("project_id = ?", id).Order("created_at desc").Find(&detail.Tasks).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "could not load tasks")
		return
	}
	if err := db.Preload("User").Where("project_id = ?", id).Find(&detail.Members).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "could not load members")
		return
	}
	if err := db.Preload("User").Where("project_id = ?", id).Order("created_at desc").Find(&detail.Updates).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "could not load updates")
		return
	}
	if err := db.Preload("Uploader").Where("project_id = ?", id).Order("created_at desc").Find(&detail.Files).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "could not load files")
		return
	}

	respondJSON(w, http.StatusOK, detail)
}

type updateProjectRequest struct {
	Name        string     `json:"name" validate:"required"`
	ClientID    uuid.UUID  `json:"client_id" validate:"required"`
	Color       string     `json:"color"`
	Description string     `json:"description"`
	BudgetHours float64    `json:"budget_hours" validate:"gte=0"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Location    string     `json:"location"`
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	profile := middleware.GetUserFromContext(r.Context())
	if !profile.CanManageProjects() {
		respondError(w, http.StatusForbidden, "forbidden")
		return
	}

	id, err := pathID(r, "projectID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	var project models.Project
	if err := database.GetDB().First(&project, "id = ?", id).Error; err != nil {
		respondError(w, http.StatusNotFound, "project not found")
		return
	}

	var req updateProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, formatValidationError(err))
		return
	}

	project.Name = req.Name
	project.ClientID = req.ClientID
	project.Color = req.Color
	project.Description = req.Description
	project.BudgetHours = req.BudgetHours
	project.StartDate = req.StartDate
	project.EndDate = req.EndDate
	project.Location = req.Location
	if err := database.GetDB().Save(&project).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "could not update project")
		return
	}
	respondJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	profile := middleware.GetUserFromContext(r.Context())
	if !profile.CanManageProjects() {
		respondError(w, http.StatusForbidden, "forbidden")
		return
	}

	id, err := pathID(r, "projectID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	if err := database.GetDB().Delete(&models.Project{}, "id = ?", id).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "could not delete project")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

type statusRequest struct {
	Status models.ProjectStatus `json:"status" validate:"required"`
}

// UpdateStatus moves the project's lifecycle tag. Any value in the
// closed set is accepted from any other value; archive and reactivate
// are ordinary moves.
func (h *ProjectHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "projectID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !req.Status.Valid() {
		respondError(w, http.StatusBadRequest, "unknown project status")
		return
	}

	result := database.GetDB().Model(&models.Project{}).Where("id = ?", id).Update("status", req.Status)
	if result.Error != nil {
		respondError(w, http.StatusInternalServerError, "could not update status")
		return
	}
	if result.RowsAffected == 0 {
		respondError(w, http.StatusNotFound, "project not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"status": req.Status})
}

type kanbanRequest struct {
	KanbanStatus models.KanbanStatus `json:"kanban_status" validate:"required"`
}

// UpdateKanban repositions the project card on the board. Concurrent
// drags resolve last-write-wins.
func (h *ProjectHandler) UpdateKanban(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "projectID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	var req kanbanRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !req.KanbanStatus.Valid() {
		respondError(w, http.StatusBadRequest, "unknown kanban column")
		return
	}

	result := database.GetDB().Model(&models.Project{}).Where("id = ?", id).Update("kanban_status", req.KanbanStatus)
	if result.Error != nil {
		respondError(w, http.StatusInternalServerError, "could not update board position")
		return
	}
	if result.RowsAffected == 0 {
		respondError(w, http.StatusNotFound, "project not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"kanban_status": req.KanbanStatus})
}

// SyncCalendar upserts the project's calendar event using the caller's
// stored token. The first sync records the event id so later syncs
// update in place.
func (h *ProjectHandler) SyncCalendar(w http.ResponseWriter, r *http.Request) {
	profile := middleware.GetUserFromContext(r.Context())

	id, err := pathID(r, "projectID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	db := database.GetDB()
	var project models.Project
	if err := db.First(&project, "id = ?", id).Error; err != nil {
		respondError(w, http.StatusNotFound, "project not found")
		return
	}

	eventID, err := h.calendar.SyncProject(r.Context(), profile.CalendarToken, &project)
	if err != nil {
		switch {
		case errors.Is(err, integrations.ErrNoCalendarToken):
			respondError(w, http.StatusBadRequest, "no calendar connection; reconnect your calendar account")
		case errors.Is(err, integrations.ErrMissingDates):
			respondError(w, http.StatusBadRequest, "project needs start and end dates to sync")
		default:
			h.log.Error("calendar sync failed", zap.Error(err), zap.String("project_id", id.String()))
			respondError(w, http.StatusBadGateway, "calendar sync failed")
		}
		return
	}

	if eventID != project.CalendarEventID {
		if err := db.Model(&project).Update("calendar_event_id", eventID).Error; err != nil {
			h.log.Error("could not store calendar event id", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "sync succeeded but event id was not saved")
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]string{"calendar_event_id": eventID})
}

// Relay fire-and-forgets the project's fields to the automation
// webhook.
func (h *ProjectHandler) Relay(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "projectID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	var project models.Project
	if err := database.GetDB().First(&project, "id = ?", id).Error; err != nil {
		respondError(w, http.StatusNotFound, "project not found")
		return
	}

	if err := h.relay.Send(r.Context(), &project); err != nil {
		if errors.Is(err, integrations.ErrWebhookNotConfigured) {
			respondError(w, http.StatusServiceUnavailable, "webhook not configured")
			return
		}
		respondError(w, http.StatusBadGateway, "webhook delivery failed")
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]bool{"sent": true})
}
