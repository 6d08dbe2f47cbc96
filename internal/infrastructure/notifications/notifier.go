// Package notifications delivers SMS through Twilio and email through SMTP.
package notifications

import "github.com/you/nirogsvc/domain"

// Notifier implements domain.NotificationService
type Notifier struct {
	sms   *TwilioService
	email *EmailService
}

// NewNotifier combines an SMS and an email sender.
func NewNotifier(sms *TwilioService, email *EmailService) domain.NotificationService {
	return &Notifier{sms: sms, email: email}
}

// SendSMS implements domain.NotificationService
func (n *Notifier) SendSMS(to, message string) error {
	return n.sms.SendSMS(to, message)
}

// SendEmail implements domain.NotificationService
func (n *Notifier) SendEmail(to, subject, body string) error {
	return n.email.SendEmail(to, subject, body)
}
