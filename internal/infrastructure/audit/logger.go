// Package audit writes business audit events as structured log lines.
package audit

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/you/nirogsvc/domain"
)

// Logger implements domain.AuditLogger on top of zerolog.
type Logger struct {
	logger zerolog.Logger
}

// NewLogger returns an audit logger writing through logger with component=audit.
func NewLogger(logger zerolog.Logger) domain.AuditLogger {
	return &Logger{logger: logger.With().Str("component", "audit").Logger()}
}

// LogEvent implements domain.AuditLogger. Client details missing from the
// event are taken from ctx.
func (l *Logger) LogEvent(ctx context.Context, event *domain.AuditEvent) error {
	if event == nil {
		return nil
	}
	if event.IPAddress == "" && event.RequestID == "" {
		event.WithClientContext(domain.ClientContextFrom(ctx))
	}

	evt := l.logger.Info()
	if !event.Success {
		evt = l.logger.Warn().Str("error", event.ErrorMsg)
	}
	evt = evt.
		Str("event_type", string(event.EventType)).
		Uint("user_id", event.UserID).
		Time("timestamp", event.Timestamp).
		Bool("success", event.Success)

	if event.Email != "" {
		evt = evt.Str("email", event.Email)
	}
	if event.Phone != "" {
		evt = evt.Str("phone", maskPhone(event.Phone))
	}
	if event.IPAddress != "" {
		evt = evt.Str("ip_address", event.IPAddress)
	}
	if event.UserAgent != "" {
		evt = evt.Str("user_agent", event.UserAgent)
	}
	if event.RequestID != "" {
		evt = evt.Str("request_id", event.RequestID)
	}
	if len(event.Metadata) > 0 {
		evt = evt.Interface("metadata", event.Metadata)
	}
	evt.Msg("audit")
	return nil
}

// maskPhone keeps the last four digits.
func maskPhone(phone string) string {
	if len(phone) <= 4 {
		return phone
	}
	masked := make([]byte, len(phone))
	for i := range phone {
		if i < len(phone)-4 {
			masked[i] = '*'
		} else {
			masked[i] = phone[i]
		}
	}
	return string(masked)
}
