package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"licitaradar/internal/models"
)

// WebhookPayload is the JSON envelope POSTed to the subscriber's URL.
type WebhookPayload struct {
	Tipo      string          `json:"tipo"`
	Timestamp string          `json:"timestamp"`
	Alerta    WebhookAlert    `json:"alerta"`
	Empresa   WebhookCompany  `json:"empresa"`
	Resultado WebhookResult   `json:"resultado"`
	Notices   []NoticeSummary `json:"licitacoes"`
}

type WebhookAlert struct {
	ID        uint64 `json:"id"`
	Frequency string `json:"frequencia"`
	CheckTime string `json:"horarioVerificacao"`
}

type WebhookCompany struct {
	Name  string `json:"nome"`
	Email string `json:"email"`
}

type WebhookResult struct {
	Total int `json:"total"`
}

type WebhookDispatcher struct {
	HTTPClient *http.Client
}

func (d *WebhookDispatcher) Dispatch(ctx context.Context, sub *models.AlertSubscription, notices []models.Notice) error {
	if sub == nil || sub.WebhookURL == nil || strings.TrimSpace(*sub.WebhookURL) == "" {
		return fmt.Errorf("subscription %d has no webhook url", subID(sub))
	}
	payload := WebhookPayload{
		Tipo:      "novas_licitacoes",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Alerta: WebhookAlert{
			ID:        sub.ID,
			Frequency: sub.Frequency,
			CheckTime: sub.CheckTime,
		},
		Empresa: WebhookCompany{
			Name:  sub.CompanyName,
			Email: sub.OwnerEmail,
		},
		Resultado: WebhookResult{Total: len(notices)},
		Notices:   summarize(notices),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimSpace(*sub.WebhookURL), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := d.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook delivery failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, string(snippet))
	}
	return nil
}

func subID(sub *models.AlertSubscription) uint64 {
	if sub == nil {
		return 0
	}
	return sub.ID
}
