// Package notifier доставляет оповещения по email и SMS.
// Отправители никогда не возвращают ошибку наружу: неудача логируется,
// а вызывающий получает false.
package notifier

import "context"

// EmailSender отправляет HTML письмо
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, html string) bool
	Enabled() bool
}

// SMSSender отправляет текстовое сообщение
type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) bool
	Enabled() bool
}
