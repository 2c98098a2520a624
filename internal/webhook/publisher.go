package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/rapid_response_hub/internal/models"
)

const (
	webhookQueueKey = "webhook_events"
)

// Типы событий SOS, которые уходят во внешнюю диспетчерскую
const (
	EventSOSTriggered = "sos.triggered"
	EventSOSCancelled = "sos.cancelled"
	EventSOSResolved  = "sos.resolved"
)

// WebhookEvent - структура для данных вебхука
type WebhookEvent struct {
	Type      string           `json:"type"`
	AlertID   uuid.UUID        `json:"alert_id"`
	UserID    uuid.UUID        `json:"user_id"`
	AlertType models.AlertType `json:"alert_type"`
	Status    models.SOSStatus `json:"status"`
	Location  models.Location  `json:"location"`
	Message   string           `json:"message,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// NewSOSEvent строит событие по SOS сигналу
func NewSOSEvent(eventType string, alert *models.SOSAlert) WebhookEvent {
	return WebhookEvent{
		Type:      eventType,
		AlertID:   alert.ID,
		UserID:    alert.UserID,
		AlertType: alert.AlertType,
		Status:    alert.Status,
		Location:  alert.Location,
		Message:   alert.Message,
		Timestamp: time.Now().UTC(),
	}
}

// WebhookPublisher - интерфейс для публикации вебхуков
type WebhookPublisher interface {
	Publish(ctx context.Context, event WebhookEvent) error
}

// RedisWebhookPublisher - реализация WebhookPublisher, использующая Redis
type RedisWebhookPublisher struct {
	redisClient *redis.Client
}

// NewRedisWebhookPublisher создает новый RedisWebhookPublisher
func NewRedisWebhookPublisher(client *redis.Client) *RedisWebhookPublisher {
	return &RedisWebhookPublisher{
		redisClient: client,
	}
}

// Publish публикует событие вебхука в очередь Redis
func (p *RedisWebhookPublisher) Publish(ctx context.Context, event WebhookEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook event: %w", err)
	}

	// LPUSH в левую часть списка, воркер забирает справа
	if err := p.redisClient.LPush(ctx, webhookQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish webhook event to Redis: %w", err)
	}
	return nil
}
