package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/rapid_response_hub/internal/models"
	"github.com/shenikar/rapid_response_hub/internal/notifier"
	"github.com/shenikar/rapid_response_hub/internal/webhook"
	"github.com/sirupsen/logrus"
)

const myAlertsLimit = 10

// SOSRepository определяет контракт для хранения SOS сигналов
type SOSRepository interface {
	Create(ctx context.Context, alert *models.SOSAlert) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.SOSAlert, error)
	// Cancel переводит активный сигнал владельца в cancelled. Если активного
	// сигнала с таким владельцем нет, возвращает models.ErrNotFound
	Cancel(ctx context.Context, id, ownerID uuid.UUID, at time.Time) (*models.SOSAlert, error)
	// Resolve закрывает активный сигнал. Если активного сигнала нет, возвращает models.ErrNotFound
	Resolve(ctx context.Context, id, adminID uuid.UUID, at time.Time) (*models.SOSAlert, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]*models.SOSAlert, error)
	ListActive(ctx context.Context) ([]*models.SOSAlert, error)
}

// SOSService определяет контракт для сценария SOS
type SOSService interface {
	TriggerSOS(ctx context.Context, actor models.Actor, req models.SOSRequest) (*models.SOSOutcome, error)
	CancelSOS(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.SOSAlert, error)
	ResolveSOS(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.SOSAlert, error)
	MyAlerts(ctx context.Context, actor models.Actor) ([]*models.SOSAlert, error)
	ActiveAlerts(ctx context.Context, actor models.Actor) ([]*models.SOSAlert, error)
}

type sosService struct {
	alerts        SOSRepository
	contacts      ContactRepository
	users         UserRepository
	notifications NotificationRepository
	notifier      Notifier
	publisher     webhook.WebhookPublisher
	logger        *logrus.Logger
}

func NewSOSService(
	alerts SOSRepository,
	contacts ContactRepository,
	users UserRepository,
	notifications NotificationRepository,
	notifier Notifier,
	publisher webhook.WebhookPublisher,
	logger *logrus.Logger,
) SOSService {
	return &sosService{
		alerts:        alerts,
		contacts:      contacts,
		users:         users,
		notifications: notifications,
		notifier:      notifier,
		publisher:     publisher,
		logger:        logger,
	}
}

// TriggerSOS создает сигнал и оповещает контакты и администраторов.
// Шаги выполняются последовательно и без общей транзакции: сбой оповещения
// не откатывает созданный сигнал
func (s *sosService) TriggerSOS(ctx context.Context, actor models.Actor, req models.SOSRequest) (*models.SOSOutcome, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "sos",
		"method":  "TriggerSOS",
		"user_id": actor.UserID,
	})
	log.Info("SOS triggered")

	if req.AlertType == "" {
		req.AlertType = models.AlertTypeEmergency
	}
	if !req.AlertType.Valid() {
		return nil, fmt.Errorf("service: unknown alert type %q: %w", req.AlertType, models.ErrInvalidInput)
	}

	user, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		log.WithError(err).Error("Failed to load SOS owner")
		return nil, fmt.Errorf("service: could not load user: %w", err)
	}

	contacts, err := s.contacts.ListNotifiable(ctx, actor.UserID)
	if err != nil {
		log.WithError(err).Error("Failed to load emergency contacts")
		return nil, fmt.Errorf("service: could not load emergency contacts: %w", err)
	}
	if len(contacts) == 0 {
		log.Warn("No emergency contacts to notify")
	}

	now := time.Now()
	alert := &models.SOSAlert{
		UserID:           actor.UserID,
		Location:         req.Location,
		Status:           models.SOSStatusActive,
		AlertType:        req.AlertType,
		Message:          req.Message,
		NotifiedContacts: make([]models.NotifiedContact, 0, len(contacts)),
	}
	recipients := make([]notifier.Recipient, 0, len(contacts))
	for _, c := range contacts {
		alert.NotifiedContacts = append(alert.NotifiedContacts, models.NotifiedContact{
			ContactID:  c.ID,
			NotifiedAt: now,
		})
		r := notifier.Recipient{Name: c.Name, Phone: c.Phone}
		if c.Email != nil {
			r.Email = *c.Email
		}
		recipients = append(recipients, r)
	}

	if err := s.alerts.Create(ctx, alert); err != nil {
		log.WithError(err).Error("Failed to create SOS alert in repository")
		return nil, fmt.Errorf("service: could not create sos alert: %w", err)
	}
	log = log.WithField("alert_id", alert.ID)

	var userPhone string
	if user.Phone != nil {
		userPhone = *user.Phone
	}
	report := s.notifier.SendSOSAlerts(ctx, notifier.SOSMessage{
		UserName:   user.DisplayName(),
		UserPhone:  userPhone,
		Location:   req.Location,
		AlertType:  req.AlertType,
		Message:    req.Message,
		Recipients: recipients,
	})

	adminsNotified := s.notifyAdmins(ctx, alert, user, log)
	s.publish(ctx, webhook.EventSOSTriggered, alert)

	log.WithFields(logrus.Fields{
		"contacts_notified": len(contacts),
		"emails_sent":       report.EmailsSent,
		"sms_sent":          report.SMSSent,
		"admins_notified":   adminsNotified,
	}).Info("SOS alert processed")

	return &models.SOSOutcome{
		Alert:            alert,
		ContactsNotified: len(contacts),
		EmailsSent:       report.EmailsSent,
		SMSSent:          report.SMSSent,
		AdminsNotified:   adminsNotified,
	}, nil
}

// notifyAdmins создает уведомление каждому администратору и возвращает число успешных записей
func (s *sosService) notifyAdmins(ctx context.Context, alert *models.SOSAlert, owner *models.User, log *logrus.Entry) int {
	admins, err := s.users.ListByRole(ctx, models.RoleAdmin)
	if err != nil {
		log.WithError(err).Error("Failed to list admins for SOS notification")
		return 0
	}

	location := alert.Location.Address
	if location == "" {
		location = fmt.Sprintf("%.4f, %.4f", alert.Location.Latitude, alert.Location.Longitude)
	}
	message := fmt.Sprintf("%s triggered an SOS alert at %s", owner.DisplayName(), location)

	notified := 0
	for _, admin := range admins {
		err := s.notifications.Create(ctx, &models.Notification{
			UserID:     admin.ID,
			Title:      "SOS Alert",
			Message:    message,
			Type:       models.NotificationSOS,
			RelatedSOS: &alert.ID,
			Priority:   models.PriorityCritical,
		})
		if err != nil {
			log.WithError(err).WithField("admin_id", admin.ID).Warn("Failed to notify admin about SOS")
			continue
		}
		notified++
	}
	return notified
}

// CancelSOS отменяет активный сигнал владельцем
func (s *sosService) CancelSOS(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.SOSAlert, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "sos",
		"method":   "CancelSOS",
		"alert_id": id,
	})

	alert, err := s.alerts.Cancel(ctx, id, actor.UserID, time.Now())
	if err != nil {
		log.WithError(err).Warn("Failed to cancel SOS alert")
		return nil, fmt.Errorf("service: could not cancel sos alert: %w", err)
	}

	s.publish(ctx, webhook.EventSOSCancelled, alert)
	log.Info("SOS alert cancelled")
	return alert, nil
}

// ResolveSOS закрывает сигнал администратором. Повторное закрытие ничего не меняет
func (s *sosService) ResolveSOS(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.SOSAlert, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "sos",
		"method":   "ResolveSOS",
		"alert_id": id,
	})

	if !actor.IsAdmin() {
		return nil, models.ErrForbidden
	}

	alert, err := s.alerts.Resolve(ctx, id, actor.UserID, time.Now())
	if errors.Is(err, models.ErrNotFound) {
		existing, getErr := s.alerts.GetByID(ctx, id)
		if getErr != nil {
			return nil, fmt.Errorf("service: could not resolve sos alert: %w", getErr)
		}
		if existing.Status.Terminal() {
			log.WithField("status", existing.Status).Info("SOS alert already closed")
			return existing, nil
		}
	}
	if err != nil {
		log.WithError(err).Warn("Failed to resolve SOS alert")
		return nil, fmt.Errorf("service: could not resolve sos alert: %w", err)
	}

	err = s.notifications.Create(ctx, &models.Notification{
		UserID:     alert.UserID,
		Title:      "SOS Resolved",
		Message:    "Your SOS alert has been resolved by emergency services",
		Type:       models.NotificationSOS,
		RelatedSOS: &alert.ID,
		Priority:   models.PriorityHigh,
	})
	if err != nil {
		log.WithError(err).Warn("Failed to notify SOS owner about resolution")
	}

	s.publish(ctx, webhook.EventSOSResolved, alert)
	log.Info("SOS alert resolved")
	return alert, nil
}

// MyAlerts возвращает последние сигналы пользователя
func (s *sosService) MyAlerts(ctx context.Context, actor models.Actor) ([]*models.SOSAlert, error) {
	alerts, err := s.alerts.ListByOwner(ctx, actor.UserID, myAlertsLimit)
	if err != nil {
		s.logger.WithError(err).WithField("method", "MyAlerts").Error("Failed to list SOS alerts")
		return nil, fmt.Errorf("service: could not list sos alerts: %w", err)
	}
	return alerts, nil
}

// ActiveAlerts возвращает все активные сигналы с данными владельцев
func (s *sosService) ActiveAlerts(ctx context.Context, actor models.Actor) ([]*models.SOSAlert, error) {
	if !actor.IsAdmin() {
		return nil, models.ErrForbidden
	}
	alerts, err := s.alerts.ListActive(ctx)
	if err != nil {
		s.logger.WithError(err).WithField("method", "ActiveAlerts").Error("Failed to list active SOS alerts")
		return nil, fmt.Errorf("service: could not list active sos alerts: %w", err)
	}
	return alerts, nil
}

func (s *sosService) publish(ctx context.Context, eventType string, alert *models.SOSAlert) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, webhook.NewSOSEvent(eventType, alert)); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"alert_id":   alert.ID,
			"event_type": eventType,
		}).Error("Failed to publish webhook event")
	}
}
