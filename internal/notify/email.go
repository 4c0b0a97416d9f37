package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"licitaradar/internal/models"
)

// Sender is the outbound email boundary. The SMTP implementation below is
// the production one; tests swap in a fake.
type Sender interface {
	Send(ctx context.Context, to, subject, html string) error
}

type EmailDispatcher struct {
	Sender Sender
}

var emailTemplate = template.Must(template.New("alert").Parse(`<html>
<body>
<h2>Novas licitações para o seu alerta</h2>
<p>Olá {{.OwnerName}}, encontramos {{.Total}} licitação(ões) compatíveis com o seu perfil.</p>
<table border="1" cellpadding="4" cellspacing="0">
<tr><th>Controle</th><th>Órgão</th><th>UF</th><th>Município</th><th>Valor estimado</th><th>Objeto</th></tr>
{{range .Notices}}<tr>
<td>{{.ControlNumber}}</td>
<td>{{.Entity}}</td>
<td>{{.State}}</td>
<td>{{.Municipality}}</td>
<td>{{.EstimatedValue}}</td>
<td>{{.Object}}</td>
</tr>
{{end}}</table>
</body>
</html>`))

type emailData struct {
	OwnerName string
	Total     int
	Notices   []NoticeSummary
}

func (d *EmailDispatcher) Dispatch(ctx context.Context, sub *models.AlertSubscription, notices []models.Notice) error {
	if sub == nil || strings.TrimSpace(sub.OwnerEmail) == "" {
		return fmt.Errorf("subscription %d has no email address", subID(sub))
	}
	if d.Sender == nil {
		return fmt.Errorf("email sender not configured")
	}

	var buf bytes.Buffer
	err := emailTemplate.Execute(&buf, emailData{
		OwnerName: sub.OwnerName,
		Total:     len(notices),
		Notices:   summarize(notices),
	})
	if err != nil {
		return fmt.Errorf("render alert email: %w", err)
	}

	subject := fmt.Sprintf("LicitaRadar: %d nova(s) licitação(ões)", len(notices))
	return d.Sender.Send(ctx, sub.OwnerEmail, subject, buf.String())
}

// SMTPSender sends through a plain SMTP relay.
type SMTPSender struct {
	Addr     string
	Username string
	Password string
	From     string
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, html string) error {
	if s == nil || strings.TrimSpace(s.Addr) == "" {
		return fmt.Errorf("smtp address not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", s.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(html)

	var auth smtp.Auth
	if s.Username != "" {
		host := s.Addr
		if idx := strings.IndexByte(host, ':'); idx >= 0 {
			host = host[:idx]
		}
		auth = smtp.PlainAuth("", s.Username, s.Password, host)
	}
	return smtp.SendMail(s.Addr, auth, s.From, []string{to}, msg.Bytes())
}
