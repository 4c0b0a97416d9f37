package notify

import (
	"context"
	"strings"
	"testing"

	"licitaradar/internal/models"
)

type fakeSender struct {
	to      string
	subject string
	html    string
	err     error
}

func (f *fakeSender) Send(ctx context.Context, to, subject, html string) error {
	f.to = to
	f.subject = subject
	f.html = html
	return f.err
}

func TestEmailDispatch_RendersSummaryTable(t *testing.T) {
	sender := &fakeSender{}
	d := &EmailDispatcher{Sender: sender}
	sub := &models.AlertSubscription{
		ID:         3,
		OwnerName:  "Maria",
		OwnerEmail: "maria@example.org",
	}

	if err := d.Dispatch(context.Background(), sub, sampleNotices()); err != nil {
		t.Fatalf("err=%v", err)
	}
	if sender.to != "maria@example.org" {
		t.Fatalf("to=%q", sender.to)
	}
	if !strings.Contains(sender.subject, "1 nova(s)") {
		t.Fatalf("subject=%q", sender.subject)
	}
	for _, fragment := range []string{"Maria", "00000000000191-1-000001/2026", "Prefeitura de Campinas", "Campinas", "150000.50"} {
		if !strings.Contains(sender.html, fragment) {
			t.Fatalf("rendered email missing %q", fragment)
		}
	}
}

func TestEmailDispatch_MissingAddress(t *testing.T) {
	d := &EmailDispatcher{Sender: &fakeSender{}}
	sub := &models.AlertSubscription{ID: 3}
	if err := d.Dispatch(context.Background(), sub, sampleNotices()); err == nil {
		t.Fatalf("expected error without recipient")
	}
}
