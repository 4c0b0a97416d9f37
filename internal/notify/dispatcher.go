// Package notify delivers matched notices to subscribers. Two interchangeable
// strategies exist: an HTML email summary and a structured webhook POST. A
// delivery failure is surfaced to the caller so the alert matcher can keep
// the subscription eligible for retry.
package notify

import (
	"context"
	"fmt"
	"time"

	"licitaradar/internal/models"
)

type Dispatcher interface {
	Dispatch(ctx context.Context, sub *models.AlertSubscription, notices []models.Notice) error
}

// Router picks the delivery strategy from the subscription's channel field.
type Router struct {
	Email   Dispatcher
	Webhook Dispatcher
}

func (r *Router) Dispatch(ctx context.Context, sub *models.AlertSubscription, notices []models.Notice) error {
	if sub == nil {
		return fmt.Errorf("subscription is nil")
	}
	switch sub.Channel {
	case models.ChannelWebhook:
		if r.Webhook == nil {
			return fmt.Errorf("webhook dispatcher not configured")
		}
		return r.Webhook.Dispatch(ctx, sub, notices)
	case models.ChannelEmail, "":
		if r.Email == nil {
			return fmt.Errorf("email dispatcher not configured")
		}
		return r.Email.Dispatch(ctx, sub, notices)
	default:
		return fmt.Errorf("unsupported channel: %s", sub.Channel)
	}
}

// NoticeSummary is the stable field subset shared by both delivery payloads.
type NoticeSummary struct {
	ControlNumber    string  `json:"numeroControle"`
	Entity           string  `json:"orgao"`
	State            string  `json:"uf"`
	Municipality     string  `json:"municipio"`
	PublishedAt      string  `json:"dataPublicacao"`
	ProposalClosesAt string  `json:"dataEncerramentoProposta,omitempty"`
	EstimatedValue   string  `json:"valorEstimado,omitempty"`
	Object           string  `json:"objeto"`
}

func summarize(notices []models.Notice) []NoticeSummary {
	out := make([]NoticeSummary, 0, len(notices))
	for _, n := range notices {
		summary := NoticeSummary{
			ControlNumber: n.ControlNumber,
			Entity:        n.EntityName,
			State:         n.State,
			Municipality:  n.Municipality,
			PublishedAt:   n.PublishedAt.Format("2006-01-02"),
			Object:        n.ObjectDescription,
		}
		if n.ProposalClosesAt != nil {
			summary.ProposalClosesAt = n.ProposalClosesAt.Format(time.RFC3339)
		}
		if n.EstimatedValue != nil {
			summary.EstimatedValue = n.EstimatedValue.StringFixed(2)
		}
		out = append(out, summary)
	}
	return out
}
