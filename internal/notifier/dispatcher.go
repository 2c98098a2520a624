package notifier

import (
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/shenikar/rapid_response_hub/internal/config"
	"github.com/shenikar/rapid_response_hub/internal/models"
	"github.com/sirupsen/logrus"
)

// Recipient - контакт, которому уходит SOS оповещение
type Recipient struct {
	Name  string
	Phone string
	Email string
}

// SOSMessage - данные для рассылки SOS
type SOSMessage struct {
	UserName   string
	UserPhone  string
	Location   models.Location
	AlertType  models.AlertType
	Message    string
	Recipients []Recipient
}

// DeliveryReport - сколько сообщений реально доставлено провайдерам
type DeliveryReport struct {
	EmailsSent int
	SMSSent    int
}

// Dispatcher рассылает оповещения по всем каналам
type Dispatcher struct {
	email       EmailSender
	sms         SMSSender
	timeout     time.Duration
	sosTemplate *template.Template
	logger      *logrus.Logger
}

// NewDispatcher собирает диспетчер из конфигурации приложения
func NewDispatcher(cfg *config.Config, logger *logrus.Logger) (*Dispatcher, error) {
	logger.WithFields(logrus.Fields{
		"email": cfg.EmailEnabled(),
		"sms":   cfg.SMSEnabled(),
	}).Info("Notification channels configured")

	email, err := NewSMTPSender(SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		From:     cfg.SMTPFrom,
		Timeout:  cfg.NotifyTimeout,
	}, logger)
	if err != nil {
		return nil, err
	}

	sms := NewTwilioSender(TwilioConfig{
		AccountSID:  cfg.TwilioAccountSID,
		AuthToken:   cfg.TwilioAuthToken,
		PhoneNumber: cfg.TwilioPhoneNumber,
		Timeout:     cfg.NotifyTimeout,
	}, logger)

	return NewDispatcherWithSenders(email, sms, cfg.NotifyTimeout, logger), nil
}

// NewDispatcherWithSenders создает диспетчер с готовыми отправителями
func NewDispatcherWithSenders(email EmailSender, sms SMSSender, timeout time.Duration, logger *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		email:       email,
		sms:         sms,
		timeout:     timeout,
		sosTemplate: sosEmailTemplate,
		logger:      logger,
	}
}

// SendSOSAlerts оповещает контакты по одному. Неудача одного контакта
// не мешает попытке отправки следующему
func (d *Dispatcher) SendSOSAlerts(ctx context.Context, msg SOSMessage) DeliveryReport {
	var report DeliveryReport

	log := d.logger.WithFields(logrus.Fields{
		"component":  "dispatcher",
		"method":     "SendSOSAlerts",
		"recipients": len(msg.Recipients),
	})

	smsText := fmt.Sprintf("SOS! %s needs help at %.4f,%.4f", msg.UserName, msg.Location.Latitude, msg.Location.Longitude)
	subject := fmt.Sprintf("EMERGENCY: %s needs help!", msg.UserName)

	var html string
	skipEmail := false
	if d.email.Enabled() {
		var err error
		html, err = render(d.sosTemplate, sosEmailData(msg, time.Now()))
		if err != nil {
			// Пустое письмо не отправляем, SMS уходят как обычно
			log.WithError(err).Error("Failed to render SOS email, email channel skipped")
			skipEmail = true
		}
	}

	for _, r := range msg.Recipients {
		if r.Phone != "" && d.send(ctx, func(ctx context.Context) bool { return d.sms.SendSMS(ctx, r.Phone, smsText) }) {
			report.SMSSent++
		}
		if r.Email != "" && !skipEmail && d.send(ctx, func(ctx context.Context) bool { return d.email.SendEmail(ctx, r.Email, subject, html) }) {
			report.EmailsSent++
		}
	}

	log.WithFields(logrus.Fields{
		"emails_sent": report.EmailsSent,
		"sms_sent":    report.SMSSent,
	}).Info("SOS notifications dispatched")
	return report
}

// SendIncidentUpdate сообщает автору происшествия о смене статуса
func (d *Dispatcher) SendIncidentUpdate(ctx context.Context, to, title string, status models.IncidentStatus, message string) bool {
	html, err := render(incidentUpdateTemplate, map[string]string{
		"Title":   title,
		"Status":  string(status),
		"Message": message,
	})
	if err != nil {
		d.logger.WithError(err).Error("Failed to render incident update email")
		return false
	}
	return d.send(ctx, func(ctx context.Context) bool {
		return d.email.SendEmail(ctx, to, "Incident Update: "+title, html)
	})
}

// SendWelcome отправляет приветственное письмо новому пользователю
func (d *Dispatcher) SendWelcome(ctx context.Context, to, name string) bool {
	html, err := render(welcomeTemplate, map[string]string{"Name": name})
	if err != nil {
		d.logger.WithError(err).Error("Failed to render welcome email")
		return false
	}
	return d.send(ctx, func(ctx context.Context) bool {
		return d.email.SendEmail(ctx, to, "Welcome to Rapid Response Hub", html)
	})
}

// send ограничивает одну отправку таймаутом
func (d *Dispatcher) send(ctx context.Context, fn func(ctx context.Context) bool) bool {
	if d.timeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return fn(ctx)
}

type sosEmail struct {
	UserName     string
	UserPhone    string
	AlertType    string
	LocationText string
	Latitude     float64
	Longitude    float64
	Message      string
	MapsURL      string
	SentAt       string
}

func sosEmailData(msg SOSMessage, now time.Time) sosEmail {
	locationText := msg.Location.Address
	if locationText == "" {
		locationText = fmt.Sprintf("%v, %v", msg.Location.Latitude, msg.Location.Longitude)
	}
	return sosEmail{
		UserName:     msg.UserName,
		UserPhone:    msg.UserPhone,
		AlertType:    string(msg.AlertType),
		LocationText: locationText,
		Latitude:     msg.Location.Latitude,
		Longitude:    msg.Location.Longitude,
		Message:      msg.Message,
		MapsURL:      fmt.Sprintf("https://www.google.com/maps?q=%v,%v", msg.Location.Latitude, msg.Location.Longitude),
		SentAt:       now.Format(time.RFC1123),
	}
}
