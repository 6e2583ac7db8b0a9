package utils

import (
	"bytes"
	"context"
	"html/template"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// MailerConfig holds SMTP settings. An empty Host switches the mailer to
// log-only mode.
type MailerConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// Mailer sends HTML notification emails over SMTP.
type Mailer struct {
	cfg    MailerConfig
	dialer *gomail.Dialer
	logger *zap.Logger
}

func NewMailer(cfg MailerConfig, logger *zap.Logger) *Mailer {
	m := &Mailer{cfg: cfg, logger: logger}
	if cfg.Host != "" {
		m.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass)
	}
	return m
}

// Notify delivers one email. In log-only mode the message is logged and
// reported as sent.
func (m *Mailer) Notify(ctx context.Context, recipient, subject, body string) error {
	if m.dialer == nil {
		m.logger.Info("email delivery disabled, logging notification",
			zap.String("to", recipient),
			zap.String("subject", subject),
		)
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", recipient)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	return m.dialer.DialAndSend(msg)
}

// EmailDetail is one labelled row in a notification email.
type EmailDetail struct {
	Label string
	Value string
}

var emailTemplate = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html>
<head>
	<title>{{.Title}}</title>
	<style>
		body { font-family: Arial, sans-serif; background-color: #f4f4f4; margin: 0; padding: 0; }
		.container { background-color: #ffffff; margin: 20px auto; padding: 20px; border-radius: 8px; box-shadow: 0 2px 4px rgba(0, 0, 0, 0.1); max-width: 600px; }
		h1 { color: #333333; }
		p, td { color: #666666; }
		.label { font-weight: bold; padding-right: 12px; }
	</style>
</head>
<body>
	<div class="container">
		<h1>{{.Title}}</h1>
		<p>{{.Message}}</p>
		{{if .Details}}<table>
		{{range .Details}}<tr><td class="label">{{.Label}}</td><td>{{.Value}}</td></tr>
		{{end}}</table>{{end}}
	</div>
</body>
</html>
`))

// RenderEmail builds the HTML body shared by all notification emails.
func RenderEmail(title, message string, details ...EmailDetail) (string, error) {
	var buf bytes.Buffer
	err := emailTemplate.Execute(&buf, struct {
		Title   string
		Message string
		Details []EmailDetail
	}{title, message, details})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
