package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tastytracker/config"
	"tastytracker/integrations"
	"tastytracker/models"
)

func newProjectHandler(webhookURL string) *ProjectHandler {
	log := zap.NewNop()
	return NewProjectHandler(
		&config.Config{},
		log,
		integrations.NewCalendarClient("http://calendar.invalid", log),
		integrations.NewTaskRelay(webhookURL, log),
	)
}

func TestProjectCreateDefaults(t *testing.T) {
	db := setupTestDB(t)
	manager := createProfile(t, db, "manager@tastytracker.local", models.RoleManager)
	client := createClient(t, db)

	h := newProjectHandler("")
	rec := httptest.NewRecorder()
	h.Create(rec, newRequest(t, http.MethodPost, "/api/projects",
		map[string]any{"name": "Clip promo", "client_id": client.ID}, manager, nil))
	require.Equal(t, http.StatusCreated, rec.Code)

	project := decodeBody[models.Project](t, rec)
	assert.Equal(t, "#3b82f6", project.Color)
	assert.Equal(t, models.ProjectActive, project.Status)
	assert.Equal(t, models.KanbanUpcoming, project.Kanban)
}

func TestProjectCreateForbiddenForMember(t *testing.T) {
	db := setupTestDB(t)
	member := createProfile(t, db, "member@tastytracker.local", models.RoleMember)
	client := createClient(t, db)

	h := newProjectHandler("")
	rec := httptest.NewRecorder()
	h.Create(rec, newRequest(t, http.MethodPost, "/api/projects",
		map[string]any{"name": "Clip promo", "client_id": client.ID}, member, nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestProjectListDerivesHours(t *testing.T) {
	db := setupTestDB(t)
	user := createProfile(t, db, "member@tastytracker.local", models.RoleMember)
	project := createProject(t, db, createClient(t, db))

	today := time.Now().UTC().Truncate(24 * time.Hour)
	entries := []models.TimeEntry{
		{UserID: user.ID, ProjectID: &project.ID, DurationMinutes: 90, Date: today},
		{UserID: user.ID, ProjectID: &project.ID, DurationMinutes: 30, Date: today},
	}
	require.NoError(t, db.Create(&entries).Error)

	h := newProjectHandler("")
	rec := httptest.NewRecorder()
	h.List(rec, newRequest(t, http.MethodGet, "/api/projects", nil, user, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	projects := decodeBody[[]models.Project](t, rec)
	require.Len(t, projects, 1)
	assert.InDelta(t, 2.0, projects[0].HoursLogged, 0.001, "summed from entries on read")
	require.NotNil(t, projects[0].Client)
	assert.Equal(t, "Tasty Studio", projects[0].Client.Company)
}

func TestProjectStatusValidation(t *testing.T) {
	db := setupTestDB(t)
	manager := createProfile(t, db, "manager@tastytracker.local", models.RoleManager)
	project := createProject(t, db, createClient(t, db))
	params := map[string]string{"projectID": project.ID.String()}

	h := newProjectHandler("")

	rec := httptest.NewRecorder()
	h.UpdateStatus(rec, newRequest(t, http.MethodPut, "/api/projects/x/status",
		map[string]any{"status": "paused"}, manager, params))
	assert.Equal(t, http.StatusBadRequest, rec.Code, "status outside the closed set")

	rec = httptest.NewRecorder()
	h.UpdateStatus(rec, newRequest(t, http.MethodPut, "/api/projects/x/status",
		map[string]any{"status": "completed"}, manager, params))
	require.Equal(t, http.StatusOK, rec.Code)

	var reloaded models.Project
	require.NoError(t, db.First(&reloaded, "id = ?", project.ID).Error)
	assert.Equal(t, models.ProjectCompleted, reloaded.Status)

	// Reactivation is an ordinary move, no special transition rules.
	rec = httptest.NewRecorder()
	h.UpdateStatus(rec, newRequest(t, http.MethodPut, "/api/projects/x/status",
		map[string]any{"status": "active"}, manager, params))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProjectKanbanMove(t *testing.T) {
	db := setupTestDB(t)
	manager := createProfile(t, db, "manager@tastytracker.local", models.RoleManager)
	project := createProject(t, db, createClient(t, db))
	params := map[string]string{"projectID": project.ID.String()}

	h := newProjectHandler("")

	rec := httptest.NewRecorder()
	h.UpdateKanban(rec, newRequest(t, http.MethodPut, "/api/projects/x/kanban",
		map[string]any{"kanban_status": "production"}, manager, params))
	require.Equal(t, http.StatusOK, rec.Code)

	var reloaded models.Project
	require.NoError(t, db.First(&reloaded, "id = ?", project.ID).Error)
	assert.Equal(t, models.KanbanProduction, reloaded.Kanban)

	rec = httptest.NewRecorder()
	h.UpdateKanban(rec, newRequest(t, http.MethodPut, "/api/projects/x/kanban",
		map[string]any{"kanban_status": "review"}, manager, params))
	assert.Equal(t, http.StatusBadRequest, rec.Code, "column outside the board")

	rec = httptest.NewRecorder()
	h.UpdateKanban(rec, newRequest(t, http.MethodPut, "/api/projects/x/kanban",
		map[string]any{"kanban_status": "delivered"}, manager,
		map[string]string{"projectID": "4fc96a1e-58b3-4f37-b9a1-10e2d771a001"}))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProjectDetailAggregate(t *testing.T) {
	db := setupTestDB(t)
	user := createProfile(t, db, "member@tastytracker.local", models.RoleMember)
	project := createProject(t, db, createClient(t, db))
	project.BudgetHours = 10
	require.NoError(t, db.Save(project).Error)

	today := time.Now().UTC().Truncate(24 * time.Hour)
	require.NoError(t, db.Create(&models.TimeEntry{
		UserID: user.ID, ProjectID: &project.ID, DurationMinutes: 300, Date: today,
	}).Error)
	require.NoError(t, db.Create(&models.ProjectTask{
		ProjectID: project.ID, Title: "Tournage", Status: models.TaskTodo, Priority: models.PriorityHigh,
	}).Error)
	require.NoError(t, db.Create(&models.ProjectMember{
		ProjectID: project.ID, UserID: user.ID,
	}).Error)

	h := newProjectHandler("")
	rec := httptest.NewRecorder()
	h.Detail(rec, newRequest(t, http.MethodGet, "/api/projects/x", nil, user,
		map[string]string{"projectID": project.ID.String()}))
	require.Equal(t, http.StatusOK, rec.Code)

	detail := decodeBody[projectDetail](t, rec)
	assert.InDelta(t, 5.0, detail.HoursLogged, 0.001)
	assert.InDelta(t, 50.0, detail.Progress.Percent, 0.001)
	assert.False(t, detail.Progress.OverBudget)
	require.Len(t, detail.Tasks, 1)
	assert.Equal(t, "Tournage", detail.Tasks[0].Title)
	require.Len(t, detail.Members, 1)
}

func TestProjectRelayUnconfigured(t *testing.T) {
	db := setupTestDB(t)
	user := createProfile(t, db, "member@tastytracker.local", models.RoleMember)
	project := createProject(t, db, createClient(t, db))

	h := newProjectHandler("")
	rec := httptest.NewRecorder()
	h.Relay(rec, newRequest(t, http.MethodPost, "/api/projects/x/relay", nil, user,
		map[string]string{"projectID": project.ID.String()}))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
