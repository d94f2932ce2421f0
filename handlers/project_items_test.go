package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tastytracker/models"
)

func TestProjectMembersAddAndDuplicate(t *testing.T) {
	db := setupTestDB(t)
	user := createProfile(t, db, "items@tastytracker.local", models.RoleMember)
	project := createProject(t, db, createClient(t, db))
	params := map[string]string{"projectID": project.ID.String()}

	h := NewProjectItemHandler(zap.NewNop())

	rec := httptest.NewRecorder()
	h.AddMember(rec, newRequest(t, http.MethodPost, "/api/projects/x/members",
		map[string]any{"user_id": user.ID}, user, params))
	require.Equal(t, http.StatusCreated, rec.Code)

	member := decodeBody[models.ProjectMember](t, rec)
	require.NotNil(t, member.User)
	assert.Equal(t, user.Email, member.User.Email)

	rec = httptest.NewRecorder()
	h.AddMember(rec, newRequest(t, http.MethodPost, "/api/projects/x/members",
		map[string]any{"user_id": user.ID}, user, params))
	assert.Equal(t, http.StatusConflict, rec.Code, "a profile joins a project once")

	rec = httptest.NewRecorder()
	h.RemoveMember(rec, newRequest(t, http.MethodDelete, "/api/projects/x/members/y", nil, user,
		map[string]string{"memberID": member.ID.String()}))
	require.Equal(t, http.StatusNoContent, rec.Code)

	var count int64
	db.Model(&models.ProjectMember{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestProjectUpdatesAppendOnly(t *testing.T) {
	db := setupTestDB(t)
	user := createProfile(t, db, "items@tastytracker.local", models.RoleMember)
	project := createProject(t, db, createClient(t, db))
	params := map[string]string{"projectID": project.ID.String()}

	h := NewProjectItemHandler(zap.NewNop())

	rec := httptest.NewRecorder()
	h.AddUpdate(rec, newRequest(t, http.MethodPost, "/api/projects/x/updates",
		map[string]any{"content": "Tournage terminé"}, user, params))
	require.Equal(t, http.StatusCreated, rec.Code)

	update := decodeBody[models.ProjectUpdate](t, rec)
	assert.Equal(t, "Tournage terminé", update.Content)
	assert.Equal(t, user.ID, update.UserID)

	rec = httptest.NewRecorder()
	h.AddUpdate(rec, newRequest(t, http.MethodPost, "/api/projects/x/updates",
		map[string]any{"content": ""}, user, params))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.ListUpdates(rec, newRequest(t, http.MethodGet, "/api/projects/x/updates", nil, user, params))
	require.Equal(t, http.StatusOK, rec.Code)
	updates := decodeBody[[]models.ProjectUpdate](t, rec)
	require.Len(t, updates, 1)
}

func TestProjectFileMetadata(t *testing.T) {
	db := setupTestDB(t)
	user := createProfile(t, db, "items@tastytracker.local", models.RoleMember)
	project := createProject(t, db, createClient(t, db))
	params := map[string]string{"projectID": project.ID.String()}

	h := NewProjectItemHandler(zap.NewNop())

	rec := httptest.NewRecorder()
	h.AddFile(rec, newRequest(t, http.MethodPost, "/api/projects/x/files", map[string]any{
		"file_name": "rushes.mp4",
		"file_type": "video/mp4",
		"file_url":  "https://storage.example.com/rushes.mp4",
		"file_size": 1048576,
	}, user, params))
	require.Equal(t, http.StatusCreated, rec.Code)

	file := decodeBody[models.ProjectFile](t, rec)
	assert.Equal(t, "rushes.mp4", file.FileName)
	assert.Equal(t, user.ID, file.UploadedBy)

	rec = httptest.NewRecorder()
	h.AddFile(rec, newRequest(t, http.MethodPost, "/api/projects/x/files", map[string]any{
		"file_name": "notes.txt",
		"file_url":  "not a url",
	}, user, params))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.RemoveFile(rec, newRequest(t, http.MethodDelete, "/api/projects/x/files/y", nil, user,
		map[string]string{"fileID": file.ID.String()}))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.RemoveFile(rec, newRequest(t, http.MethodDelete, "/api/projects/x/files/y", nil, user,
		map[string]string{"fileID": file.ID.String()}))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
