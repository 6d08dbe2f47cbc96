package notifications

import (
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailService sends mail over SMTP. Without an SMTP host it only logs.
type EmailService struct {
	dialer mailSender
	from   string
	logger zerolog.Logger
}

// NewEmailService creates a new SMTP mailer
func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string, logger zerolog.Logger) *EmailService {
	s := &EmailService{from: fromEmail, logger: logger}
	if smtpHost != "" {
		s.dialer = gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	}
	return s
}

// SendEmail sends an HTML message.
func (s *EmailService) SendEmail(to, subject, body string) error {
	if s.dialer == nil {
		s.logger.Info().Str("to", to).Str("subject", subject).Msg("email delivery not configured; message logged")
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
