package notifier

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	twclient "github.com/twilio/twilio-go/client"
	twapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Коды Twilio для неподтвержденного номера на триальном аккаунте
const (
	twilioUnverifiedNumber = 21608
	twilioInvalidNumber    = 21211
)

type messageCreator interface {
	CreateMessage(params *twapi.CreateMessageParams) (*twapi.ApiV2010Message, error)
}

// TwilioConfig - учетные данные Twilio
type TwilioConfig struct {
	AccountSID  string
	AuthToken   string
	PhoneNumber string
	Timeout     time.Duration
}

// TwilioSender отправляет SMS через Twilio
type TwilioSender struct {
	api    messageCreator
	from   string
	logger *logrus.Logger
}

// NewTwilioSender создает отправителя SMS. Без конфигурации отправитель выключен
func NewTwilioSender(cfg TwilioConfig, logger *logrus.Logger) *TwilioSender {
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.PhoneNumber == "" {
		logger.Warn("Twilio not configured. SMS notifications will be skipped.")
		return &TwilioSender{logger: logger}
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	logger.Info("Twilio configured successfully")
	return &TwilioSender{api: client.Api, from: cfg.PhoneNumber, logger: logger}
}

func (s *TwilioSender) Enabled() bool {
	return s.api != nil
}

// SendSMS отправляет сообщение. Twilio клиент не принимает контекст, поэтому
// отмена ctx учитывается только до начала запроса, а длительность ограничена таймаутом клиента
func (s *TwilioSender) SendSMS(ctx context.Context, to, message string) bool {
	log := s.logger.WithFields(logrus.Fields{"channel": "sms", "to": to})
	if !s.Enabled() {
		log.Warn("Twilio not configured. Skipping SMS notification.")
		return false
	}
	if err := ctx.Err(); err != nil {
		log.WithError(err).Warn("SMS skipped, context done")
		return false
	}

	params := &twapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(message)

	if _, err := s.api.CreateMessage(params); err != nil {
		var restErr *twclient.TwilioRestError
		if errors.As(err, &restErr) {
			log = log.WithFields(logrus.Fields{"code": restErr.Code, "more_info": restErr.MoreInfo})
			if restErr.Code == twilioUnverifiedNumber || restErr.Code == twilioInvalidNumber {
				log.Error("Trial account: the phone number is not verified in Twilio console")
			}
		}
		log.WithError(err).Error("SMS send error")
		return false
	}

	log.Info("SMS sent")
	return true
}
