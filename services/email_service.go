package services

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"

	"github.com/golfcompete/golfcompete/config"
)

// EmailService sends transactional mail over SMTP. When no SMTP host is
// configured the service logs the message and returns nil, so email never
// blocks a request path in development.
type EmailService struct {
	cfg    *config.Config
	logger *slog.Logger
}

func NewEmailService(cfg *config.Config, logger *slog.Logger) *EmailService {
	return &EmailService{cfg: cfg, logger: logger}
}

var seriesInviteTmpl = template.Must(template.New("series_invite").Parse(`
<p>You have been invited to join the series <b>{{.SeriesName}}</b> on GolfCompete.</p>
<p><a href="{{.Link}}">Respond to the invitation</a></p>
`))

var passwordResetTmpl = template.Must(template.New("password_reset").Parse(`
<p>A password reset was requested for your GolfCompete account.</p>
<p><a href="{{.Link}}">Reset your password</a></p>
<p>If you did not request this, ignore this message.</p>
`))

var welcomeTmpl = template.Must(template.New("welcome").Parse(`
<p>Welcome to GolfCompete, {{.FirstName}}!</p>
<p>Track your rounds, join a series and watch your handicap move.</p>
`))

func (s *EmailService) SendSeriesInviteEmail(to, seriesName string, seriesID int) error {
	data := struct {
		SeriesName string
		Link       string
	}{
		SeriesName: seriesName,
		Link:       fmt.Sprintf("%s/series/%d/invitations", s.cfg.SiteURL, seriesID),
	}
	return s.send(to, fmt.Sprintf("Invitation to %s", seriesName), seriesInviteTmpl, data)
}

func (s *EmailService) SendPasswordResetEmail(to, resetToken string) error {
	data := struct{ Link string }{
		Link: fmt.Sprintf("%s/reset-password?token=%s", s.cfg.SiteURL, resetToken),
	}
	return s.send(to, "Reset your GolfCompete password", passwordResetTmpl, data)
}

func (s *EmailService) SendWelcomeEmail(to, firstName string) error {
	data := struct{ FirstName string }{FirstName: firstName}
	return s.send(to, "Welcome to GolfCompete", welcomeTmpl, data)
}

func (s *EmailService) send(to, subject string, tmpl *template.Template, data interface{}) error {
	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	if s.cfg.SMTPHost == "" {
		s.logger.Info("SMTP not configured, skipping email",
			slog.String("to", to), slog.String("subject", subject))
		return nil
	}

	msg := []byte("To: " + to + "\r\n" +
		"From: " + s.cfg.SMTPFrom + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n" +
		"\r\n" +
		body.String() + "\r\n")

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	tlsConfig := &tls.Config{ServerName: s.cfg.SMTPHost}

	var client *smtp.Client
	if s.cfg.SMTPPort == 465 {
		conn, err := tls.Dial("tcp", addr, tlsConfig)
		if err != nil {
			return fmt.Errorf("TLS connection failed: %w", err)
		}
		defer conn.Close()
		client, err = smtp.NewClient(conn, s.cfg.SMTPHost)
		if err != nil {
			return fmt.Errorf("failed to create SMTP client: %w", err)
		}
	} else {
		c, err := smtp.Dial(addr)
		if err != nil {
			return fmt.Errorf("SMTP connection failed: %w", err)
		}
		client = c
		if err = client.StartTLS(tlsConfig); err != nil {
			client.Close()
			return fmt.Errorf("STARTTLS failed: %w", err)
		}
	}
	defer client.Quit()

	auth := smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	if err := client.Mail(s.cfg.SMTPFrom); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("RCPT TO failed: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err = w.Write(msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close DATA writer: %w", err)
	}
	return nil
}
