package handlers

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"tastytracker/database"
	"tastytracker/middleware"
	"tastytracker/models"
	"tastytracker/reports"
)

type DashboardHandler struct {
	log *zap.Logger
}

func NewDashboardHandler(log *zap.Logger) *DashboardHandler {
	return &DashboardHandler{log: log.Named("dashboard")}
}

type dashboardResponse struct {
	Profile            *models.Profile          `json:"profile"`
	ActiveTimer        *timerResponse           `json:"active_timer"`
	Projects           []models.Project         `json:"projects"`
	TodayHours         float64                  `json:"today_hours"`
	TodayBillableHours float64                  `json:"today_billable_hours"`
	TodayBillable      string                   `json:"today_billable_amount"`
	ProjectsInProgress int                      `json:"projects_in_progress"`
	MyTasks            []models.ProjectTask     `json:"my_tasks"`
	Workload           []reports.MemberWorkload `json:"workload"`
}

// Dashboard assembles the landing page payload: today's totals, the
// running timer, projects with derived hours, the caller's open tasks
// and the 4-month workload matrix. Everything is recomputed from
// current rows.
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	profile := middleware.GetUserFromContext(r.Context())
	db := database.GetDB()
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	resp := dashboardResponse{Profile: profile}

	var timer models.ActiveTimer
	err := db.Preload("Project").Where("user_id = ?", profile.ID).First(&timer).Error
	switch {
	case err == nil:
		resp.ActiveTimer = &timerResponse{
			ActiveTimer:    timer,
			ElapsedSeconds: int(timer.Elapsed(now).Seconds()),
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		respondError(w, http.StatusInternalServerError, "could not load dashboard")
		return
	}

	if err := db.Preload("Client").Order("created_at desc").Find(&resp.Projects).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "could not load dashboard")
		return
	}
	if err := attachHoursLogged(db, resp.Projects); err != nil {
		respondError(w, http.StatusInternalServerError, "could not load dashboard")
		return
	}
	for _, p := range resp.Projects {
		if p.Status.InProgress() {
			resp.ProjectsInProgress++
		}
	}

	var todayEntries []models.TimeEntry
	if err := db.Where("user_id = ? AND date = ?", profile.ID, today).Find(&todayEntries).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "could not load dashboard")
		return
	}
	totalMinutes := reports.TotalMinutes(todayEntries)
	billableMinutes := reports.BillableMinutes(todayEntries)
	resp.TodayHours = reports.Hours(totalMinutes)
	resp.TodayBillableHours = reports.Hours(billableMinutes)
	resp.TodayBillable = reports.BillableAmount(billableMinutes, profile.HourlyRate).String()

	err = db.Preload("Project").
		Where("assigned_to = ? AND status <> ?", profile.ID, models.TaskDone).
		Order("due_date asc").
		Find(&resp.MyTasks).Error
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not load dashboard")
		return
	}

	var openTasks []models.ProjectTask
	if err := db.Where("status <> ?", models.TaskDone).Find(&openTasks).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "could not load dashboard")
		return
	}
	var team []models.Profile
	if err := db.Find(&team).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "could not load dashboard")
		return
	}
	resp.Workload = reports.Workload(openTasks, team, reports.Months(now, 4))

	respondJSON(w, http.StatusOK, resp)
}
