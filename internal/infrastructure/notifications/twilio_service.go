package notifications

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// defaultCountryCode is prepended to bare 10-digit mobile numbers.
const defaultCountryCode = "+91"

type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioService sends SMS through Twilio. Without a sender number it only logs.
type TwilioService struct {
	api        messageCreator
	fromNumber string
	logger     zerolog.Logger
}

// NewTwilioService creates a new Twilio SMS sender
func NewTwilioService(accountSID, authToken, fromNumber string, logger zerolog.Logger) *TwilioService {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return &TwilioService{
		api:        client.Api,
		fromNumber: fromNumber,
		logger:     logger,
	}
}

// SendSMS delivers message to the phone number to.
func (t *TwilioService) SendSMS(to, message string) error {
	to = toE164(to)
	if t.fromNumber == "" {
		t.logger.Info().Str("to", to).Str("body", message).Msg("sms delivery not configured; message logged")
		return nil
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.fromNumber)
	params.SetBody(message)

	resp, err := t.api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}
	if resp != nil && resp.Sid != nil {
		t.logger.Debug().Str("to", to).Str("sid", *resp.Sid).Msg("sms sent")
	}
	return nil
}

func toE164(phone string) string {
	if strings.HasPrefix(phone, "+") {
		return phone
	}
	return defaultCountryCode + phone
}
