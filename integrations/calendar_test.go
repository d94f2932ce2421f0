package integrations

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tastytracker/models"
)

func syncableProject() *models.Project {
	start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	end := time.Date(2026, 4, 3, 18, 0, 0, 0, time.UTC)
	return &models.Project{
		ID:        uuid.New(),
		Name:      "Clip promo",
		Location:  "Studio B",
		StartDate: &start,
		EndDate:   &end,
	}
}

func TestSyncProjectCreates(t *testing.T) {
	var gotMethod, gotPath, gotAuth string
	var gotEvent calendarEvent

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotEvent))
		json.NewEncoder(w).Encode(map[string]string{"id": "evt-123"})
	}))
	defer srv.Close()

	c := NewCalendarClient(srv.URL, zap.NewNop())
	id, err := c.SyncProject(context.Background(), "tok", syncableProject())
	require.NoError(t, err)

	assert.Equal(t, "evt-123", id)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/calendars/primary/events", gotPath)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "🎥 Clip promo", gotEvent.Summary)
	assert.Equal(t, "Studio B", gotEvent.Location)
	assert.Equal(t, "2026-04-01T09:00:00Z", gotEvent.Start.DateTime)
	assert.Equal(t, "2026-04-03T18:00:00Z", gotEvent.End.DateTime)
}

func TestSyncProjectUpdatesInPlace(t *testing.T) {
	var gotMethod, gotPath string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(map[string]string{"id": "evt-123"})
	}))
	defer srv.Close()

	project := syncableProject()
	project.CalendarEventID = "evt-123"

	c := NewCalendarClient(srv.URL, zap.NewNop())
	id, err := c.SyncProject(context.Background(), "tok", project)
	require.NoError(t, err)

	assert.Equal(t, "evt-123", id)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/calendars/primary/events/evt-123", gotPath)
}

func TestSyncProjectFailsClosed(t *testing.T) {
	c := NewCalendarClient("http://calendar.invalid", zap.NewNop())

	_, err := c.SyncProject(context.Background(), "", syncableProject())
	assert.ErrorIs(t, err, ErrNoCalendarToken)

	project := syncableProject()
	project.EndDate = nil
	_, err = c.SyncProject(context.Background(), "tok", project)
	assert.ErrorIs(t, err, ErrMissingDates)
}

func TestSyncProjectAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewCalendarClient(srv.URL, zap.NewNop())
	_, err := c.SyncProject(context.Background(), "expired", syncableProject())
	assert.Error(t, err)
}
