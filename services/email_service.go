package services

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/sportsfest/registration-system/config"
	"github.com/sportsfest/registration-system/metrics"
	"github.com/sportsfest/registration-system/models"
	"github.com/sportsfest/registration-system/repositories"
)

var (
	acceptedTemplate = template.Must(template.New("accepted").Parse(`
<p>Dear {{.FirstName}} {{.LastName}},</p>
<p>Your registration for the festival has been <strong>accepted</strong>.</p>
{{if .Sports}}<p>Registered events: {{.Sports}}</p>{{end}}
<p>See the full schedule at <a href="{{.PublicURL}}/calendar">{{.PublicURL}}/calendar</a>.</p>
`))

	rejectedTemplate = template.Must(template.New("rejected").Parse(`
<p>Dear {{.FirstName}} {{.LastName}},</p>
<p>We are sorry to inform you that your registration could not be accepted.</p>
<p>Please contact your community administrator for details.</p>
`))

	registrationTemplate = template.Must(template.New("registration").Parse(`
<p>Dear {{.FirstName}} {{.LastName}},</p>
<p>Thank you for registering. Your application is pending review by your community administrator.</p>
<p>You can check your status at <a href="{{.PublicURL}}/me">{{.PublicURL}}/me</a>.</p>
`))
)

// EmailService sends transactional mail over SMTP and keeps a persisted
// copy of every attempt, successful or not.
type EmailService struct {
	cfg       *config.Config
	emailRepo repositories.EmailRepository
	sportRepo repositories.SportRepository
	logger    *slog.Logger
}

func NewEmailService(
	cfg *config.Config,
	emailRepo repositories.EmailRepository,
	sportRepo repositories.SportRepository,
	logger *slog.Logger,
) *EmailService {
	return &EmailService{cfg: cfg, emailRepo: emailRepo, sportRepo: sportRepo, logger: logger}
}

func (s *EmailService) SendEmail(to string, subject, body string) error {
	auth := smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)

	msg := []byte("To: " + to + "\r\n" +
		"From: " + s.cfg.SMTPFrom + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\r\n" +
		"\r\n" +
		body + "\r\n")

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	tlsconfig := &tls.Config{
		InsecureSkipVerify: true,
		ServerName:         s.cfg.SMTPHost,
	}

	var client *smtp.Client
	if s.cfg.SMTPPort == 465 {
		// Implicit TLS.
		conn, err := tls.Dial("tcp", addr, tlsconfig)
		if err != nil {
			return fmt.Errorf("tls dial failed: %w", err)
		}
		defer conn.Close()
		client, err = smtp.NewClient(conn, s.cfg.SMTPHost)
		if err != nil {
			return fmt.Errorf("failed to create smtp client: %w", err)
		}
	} else {
		// STARTTLS, usually port 587.
		c, err := smtp.Dial(addr)
		if err != nil {
			return fmt.Errorf("smtp dial failed: %w", err)
		}
		client = c
		if err = client.StartTLS(tlsconfig); err != nil {
			client.Close()
			return fmt.Errorf("starttls failed: %w", err)
		}
	}
	defer client.Quit()

	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth failed: %w", err)
	}
	if err := client.Mail(s.cfg.SMTPFrom); err != nil {
		return fmt.Errorf("mail from failed: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("rcpt to failed: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("data command failed: %w", err)
	}
	if _, err = w.Write(msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}
	return nil
}

// deliver sends the mail and records the outcome. The stored copy is best
// effort: a repository failure is logged but does not mask the send result.
func (s *EmailService) deliver(ctx context.Context, to, subject, body string, kind models.EmailKind) error {
	sendErr := s.SendEmail(to, subject, body)

	record := &models.EmailMessage{
		ID:      uuid.NewString(),
		To:      to,
		Subject: subject,
		Body:    body,
		Kind:    kind,
		Sent:    sendErr == nil,
	}
	if sendErr != nil {
		msg := sendErr.Error()
		record.Error = &msg
		metrics.EmailsFailed.Inc()
	} else {
		metrics.EmailsSent.Inc()
	}
	if saveErr := s.emailRepo.Save(ctx, record); saveErr != nil {
		s.logger.Error("failed to persist email copy",
			slog.String("to", to),
			slog.String("kind", string(kind)),
			slog.Any("error", saveErr))
	}
	return sendErr
}

func renderTemplate(t *template.Template, data any) (string, error) {
	var body bytes.Buffer
	if err := t.Execute(&body, data); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", t.Name(), err)
	}
	return body.String(), nil
}

type participantEmailData struct {
	FirstName string
	LastName  string
	Sports    string
	PublicURL string
}

func (s *EmailService) participantData(ctx context.Context, p *models.Participant) participantEmailData {
	data := participantEmailData{
		FirstName: p.FirstName,
		LastName:  p.LastName,
		PublicURL: s.cfg.PublicURL,
	}
	names := make([]string, 0, len(p.Sports))
	for _, sel := range p.Sports {
		sport, err := s.sportRepo.GetByID(ctx, sel.SportID)
		if err != nil {
			continue
		}
		names = append(names, sport.Name)
	}
	data.Sports = strings.Join(names, ", ")
	return data
}

// SendParticipantStatusEmail satisfies the notifier used by status updates.
func (s *EmailService) SendParticipantStatusEmail(ctx context.Context, participant *models.Participant, accepted bool) error {
	data := s.participantData(ctx, participant)

	var (
		subject string
		tmpl    *template.Template
		kind    models.EmailKind
	)
	if accepted {
		subject = "Your festival registration has been accepted"
		tmpl = acceptedTemplate
		kind = models.EmailKindAccepted
	} else {
		subject = "Update on your festival registration"
		tmpl = rejectedTemplate
		kind = models.EmailKindRejected
	}

	body, err := renderTemplate(tmpl, data)
	if err != nil {
		return err
	}
	return s.deliver(ctx, participant.Email, subject, body, kind)
}

func (s *EmailService) SendRegistrationConfirmation(ctx context.Context, participant *models.Participant) error {
	body, err := renderTemplate(registrationTemplate, s.participantData(ctx, participant))
	if err != nil {
		return err
	}
	return s.deliver(ctx, participant.Email, "We received your festival registration", body, models.EmailKindRegistration)
}

// SendBroadcast fans a manual announcement out to all recipients
// concurrently and reports the first failure.
func (s *EmailService) SendBroadcast(ctx context.Context, recipients []string, subject, body string) error {
	if len(recipients) == 0 {
		return fmt.Errorf("%w: at least one recipient is required", ErrValidationFailed)
	}
	if subject == "" || body == "" {
		return fmt.Errorf("%w: subject and body are required", ErrValidationFailed)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, to := range recipients {
		to := to
		g.Go(func() error {
			return s.deliver(ctx, to, subject, body, models.EmailKindManual)
		})
	}
	return g.Wait()
}

// SendContactMessage forwards a contact-form submission to the festival inbox.
func (s *EmailService) SendContactMessage(ctx context.Context, fromName, fromEmail, message string) error {
	if fromName == "" || fromEmail == "" || message == "" {
		return fmt.Errorf("%w: name, email and message are required", ErrValidationFailed)
	}
	if !isValidEmail(fromEmail) {
		return fmt.Errorf("%w: invalid email format", ErrValidationFailed)
	}
	body := fmt.Sprintf("<p>From: %s &lt;%s&gt;</p><p>%s</p>",
		template.HTMLEscapeString(fromName),
		template.HTMLEscapeString(fromEmail),
		template.HTMLEscapeString(message))
	return s.deliver(ctx, s.cfg.ContactInbox, "Contact form message from "+fromName, body, models.EmailKindContact)
}

func (s *EmailService) RecentMessages(ctx context.Context, limit int) ([]models.EmailMessage, error) {
	return s.emailRepo.ListRecent(ctx, limit)
}
