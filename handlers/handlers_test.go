package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"tastytracker/database"
	"tastytracker/middleware"
	"tastytracker/models"
)

const testPassword = "password123"

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// A fresh pooled connection would see an empty in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	database.DB = db
	return db
}

func createProfile(t *testing.T, db *gorm.DB, email string, role models.Role) *models.Profile {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	profile := &models.Profile{
		Email:              email,
		FullName:           "Test User",
		PasswordHash:       string(hash),
		Role:               role,
		HourlyRate:         decimal.NewFromInt(80),
		MustChangePassword: false,
	}
	require.NoError(t, db.Create(profile).Error)
	return profile
}

func createClient(t *testing.T, db *gorm.DB) *models.Client {
	t.Helper()
	client := &models.Client{Name: "Alice", Company: "Tasty Studio"}
	require.NoError(t, db.Create(client).Error)
	return client
}

func createProject(t *testing.T, db *gorm.DB, client *models.Client) *models.Project {
	t.Helper()
	project := &models.Project{
		Name:     "Site vitrine",
		ClientID: client.ID,
		Color:    "#3b82f6",
		Status:   models.ProjectActive,
		Kanban:   models.KanbanUpcoming,
	}
	require.NoError(t, db.Create(project).Error)
	return project
}

// newRequest builds a JSON request carrying the authenticated profile
// and chi URL parameters, skipping the JWT middleware.
func newRequest(t *testing.T, method, target string, body any, profile *models.Profile, params map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")

	ctx := req.Context()
	if profile != nil {
		ctx = context.WithValue(ctx, middleware.UserContextKey, profile)
	}

	routeCtx := chi.NewRouteContext()
	for k, v := range params {
		routeCtx.URLParams.Add(k, v)
	}
	ctx = context.WithValue(ctx, chi.RouteCtxKey, routeCtx)

	return req.WithContext(ctx)
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}
