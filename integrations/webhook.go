package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"tastytracker/models"
)

// ErrWebhookNotConfigured means no automation endpoint is set.
var ErrWebhookNotConfigured = errors.New("webhook url not configured")

// TaskRelay fire-and-forgets project data to the configured automation
// webhook. No retry, no delivery confirmation beyond the status code.
type TaskRelay struct {
	url        string
	httpClient *http.Client
	log        *zap.Logger
}

func NewTaskRelay(url string, log *zap.Logger) *TaskRelay {
	return &TaskRelay{
		url:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log.Named("relay"),
	}
}

// relayPayload keeps the original wire format of the automation
// endpoint; the French keys are part of its contract.
type relayPayload struct {
	Titre       string `json:"titre"`
	DateDebut   string `json:"date_debut"`
	DateFin     string `json:"date_fin"`
	Description string `json:"description"`
	Lieu        string `json:"lieu"`
}

func (r *TaskRelay) Send(ctx context.Context, project *models.Project) error {
	if r.url == "" {
		return ErrWebhookNotConfigured
	}

	payload := relayPayload{
		Titre:       project.Name,
		Description: fmt.Sprintf("Projet ID: %s - %s", project.ID, project.Description),
		Lieu:        project.Location,
	}
	if payload.Lieu == "" {
		payload.Lieu = "Bureau"
	}
	if project.StartDate != nil {
		payload.DateDebut = project.StartDate.Format(time.RFC3339)
	}
	if project.EndDate != nil {
		payload.DateFin = project.EndDate.Format(time.RFC3339)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		r.log.Warn("webhook rejected payload",
			zap.Int("status", resp.StatusCode),
			zap.String("project_id", project.ID.String()))
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
