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

func TestRelaySendPayload(t *testing.T) {
	var got map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	project := &models.Project{
		ID:          uuid.New(),
		Name:        "Clip promo",
		Description: "Teaser 30s",
		StartDate:   &start,
	}

	relay := NewTaskRelay(srv.URL, zap.NewNop())
	require.NoError(t, relay.Send(context.Background(), project))

	assert.Equal(t, "Clip promo", got["titre"])
	assert.Equal(t, "2026-04-01T09:00:00Z", got["date_debut"])
	assert.Equal(t, "", got["date_fin"])
	assert.Contains(t, got["description"], project.ID.String())
	assert.Contains(t, got["description"], "Teaser 30s")
	assert.Equal(t, "Bureau", got["lieu"], "default location")
}

func TestRelayLocationPassthrough(t *testing.T) {
	var got map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	relay := NewTaskRelay(srv.URL, zap.NewNop())
	require.NoError(t, relay.Send(context.Background(), &models.Project{
		ID: uuid.New(), Name: "Tournage", Location: "Studio B",
	}))
	assert.Equal(t, "Studio B", got["lieu"])
}

func TestRelayUnconfigured(t *testing.T) {
	relay := NewTaskRelay("", zap.NewNop())
	err := relay.Send(context.Background(), &models.Project{ID: uuid.New()})
	assert.ErrorIs(t, err, ErrWebhookNotConfigured)
}

func TestRelayRejectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	relay := NewTaskRelay(srv.URL, zap.NewNop())
	err := relay.Send(context.Background(), &models.Project{ID: uuid.New(), Name: "Tournage"})
	assert.Error(t, err)
}
