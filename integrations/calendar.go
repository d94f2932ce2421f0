// Package integrations holds the external collaborators: the calendar
// API and the automation webhook. Both are thin HTTP clients; neither
// retries.
package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"tastytracker/models"
)

var (
	// ErrNoCalendarToken means the caller never connected a calendar
	// account. Sync fails closed; there is no token refresh here.
	ErrNoCalendarToken = errors.New("no calendar token for user")
	// ErrMissingDates means the project has no start date to schedule.
	ErrMissingDates = errors.New("project has no start or end date")
)

// CalendarClient creates and updates the single calendar event tied to
// a project, keyed by the project's stored event id.
type CalendarClient struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

func NewCalendarClient(baseURL string, log *zap.Logger) *CalendarClient {
	return &CalendarClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        log.Named("calendar"),
	}
}

type eventTime struct {
	DateTime string `json:"dateTime"`
}

type calendarEvent struct {
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	Location    string    `json:"location,omitempty"`
	Start       eventTime `json:"start"`
	End         eventTime `json:"end"`
}

type eventResponse struct {
	ID string `json:"id"`
}

// SyncProject upserts the event for a project on the user's primary
// calendar and returns the event id. The first sync creates the event;
// later syncs update it in place.
func (c *CalendarClient) SyncProject(ctx context.Context, token string, project *models.Project) (string, error) {
	if token == "" {
		return "", ErrNoCalendarToken
	}
	if project.StartDate == nil || project.EndDate == nil {
		return "", ErrMissingDates
	}

	event := calendarEvent{
		Summary:     "🎥 " + project.Name,
		Description: "Projet Tasty Tracker",
		Location:    project.Location,
		Start:       eventTime{DateTime: project.StartDate.Format(time.RFC3339)},
		End:         eventTime{DateTime: project.EndDate.Format(time.RFC3339)},
	}

	method := http.MethodPost
	url := c.baseURL + "/calendars/primary/events"
	if project.CalendarEventID != "" {
		method = http.MethodPut
		url = url + "/" + project.CalendarEventID
	}

	body, err := json.Marshal(event)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.log.Warn("calendar api rejected event",
			zap.Int("status", resp.StatusCode),
			zap.String("project_id", project.ID.String()),
			zap.ByteString("body", payload))
		return "", fmt.Errorf("calendar api returned status %d", resp.StatusCode)
	}

	var result eventResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if result.ID == "" {
		result.ID = project.CalendarEventID
	}
	return result.ID, nil
}
