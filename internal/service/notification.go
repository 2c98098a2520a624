package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shenikar/rapid_response_hub/internal/models"
	"github.com/sirupsen/logrus"
)

const maxNotificationsLimit = 100

// NotificationRepository определяет контракт для хранения внутренних уведомлений
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int, unreadOnly bool) ([]*models.Notification, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) (*models.Notification, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

// NotificationService определяет контракт для чтения уведомлений пользователем
type NotificationService interface {
	List(ctx context.Context, actor models.Actor, limit int, unreadOnly bool) ([]*models.Notification, int, error)
	MarkRead(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Notification, error)
	MarkAllRead(ctx context.Context, actor models.Actor) (int64, error)
	Delete(ctx context.Context, actor models.Actor, id uuid.UUID) error
}

type notificationService struct {
	repo         NotificationRepository
	defaultLimit int
	logger       *logrus.Logger
}

func NewNotificationService(repo NotificationRepository, defaultLimit int, logger *logrus.Logger) NotificationService {
	if defaultLimit < 1 || defaultLimit > maxNotificationsLimit {
		defaultLimit = 20
	}
	return &notificationService{repo: repo, defaultLimit: defaultLimit, logger: logger}
}

// List возвращает уведомления пользователя и число непрочитанных
func (s *notificationService) List(ctx context.Context, actor models.Actor, limit int, unreadOnly bool) ([]*models.Notification, int, error) {
	if limit < 1 {
		limit = s.defaultLimit
	}
	if limit > maxNotificationsLimit {
		limit = maxNotificationsLimit
	}

	log := s.logger.WithFields(logrus.Fields{
		"service": "notification",
		"method":  "List",
		"user_id": actor.UserID,
	})

	notifications, err := s.repo.ListByUser(ctx, actor.UserID, limit, unreadOnly)
	if err != nil {
		log.WithError(err).Error("Failed to list notifications")
		return nil, 0, fmt.Errorf("service: could not list notifications: %w", err)
	}
	unread, err := s.repo.CountUnread(ctx, actor.UserID)
	if err != nil {
		log.WithError(err).Error("Failed to count unread notifications")
		return nil, 0, fmt.Errorf("service: could not count unread notifications: %w", err)
	}
	return notifications, unread, nil
}

func (s *notificationService) MarkRead(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Notification, error) {
	notification, err := s.repo.MarkRead(ctx, id, actor.UserID)
	if err != nil {
		s.logger.WithError(err).WithField("notification_id", id).Warn("Failed to mark notification as read")
		return nil, fmt.Errorf("service: could not mark notification as read: %w", err)
	}
	return notification, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, actor models.Actor) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, actor.UserID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", actor.UserID).Error("Failed to mark all notifications as read")
		return 0, fmt.Errorf("service: could not mark notifications as read: %w", err)
	}
	return n, nil
}

func (s *notificationService) Delete(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id, actor.UserID); err != nil {
		s.logger.WithError(err).WithField("notification_id", id).Warn("Failed to delete notification")
		return fmt.Errorf("service: could not delete notification: %w", err)
	}
	return nil
}
