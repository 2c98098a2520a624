package service

import (
	"context"

	"github.com/shenikar/rapid_response_hub/internal/models"
	"github.com/shenikar/rapid_response_hub/internal/notifier"
)

// Notifier - внешние каналы оповещения (email, SMS). Ошибки отправки не возвращаются,
// вызывающий видит только число успешных отправок
type Notifier interface {
	SendSOSAlerts(ctx context.Context, msg notifier.SOSMessage) notifier.DeliveryReport
	SendIncidentUpdate(ctx context.Context, to, title string, status models.IncidentStatus, message string) bool
	SendWelcome(ctx context.Context, to, name string) bool
}
