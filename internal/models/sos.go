package models

import (
	"time"

	"github.com/google/uuid"
)

// NotifiedContact - снимок контакта на момент срабатывания SOS
type NotifiedContact struct {
	ContactID    uuid.UUID `json:"contactId"`
	NotifiedAt   time.Time `json:"notifiedAt"`
	Acknowledged bool      `json:"acknowledged"`
}

// UserSummary - краткие данные владельца сигнала для администраторов
type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Phone *string   `json:"phone,omitempty"`
}

type SOSAlert struct {
	ID               uuid.UUID         `json:"id"`
	UserID           uuid.UUID         `json:"userId"`
	Owner            *UserSummary      `json:"owner,omitempty"`
	Location         Location          `json:"location"`
	Status           SOSStatus         `json:"status"`
	AlertType        AlertType         `json:"alertType"`
	Message          string            `json:"message,omitempty"`
	NotifiedContacts []NotifiedContact `json:"notifiedContacts"`
	ResolvedAt       *time.Time        `json:"resolvedAt,omitempty"`
	ResolvedBy       *uuid.UUID        `json:"resolvedBy,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
}

// SOSOutcome - результат срабатывания SOS. Счетчики отправок могут быть меньше
// числа контактов: у контакта может не быть email или провайдер не ответил
type SOSOutcome struct {
	Alert            *SOSAlert
	ContactsNotified int
	EmailsSent       int
	SMSSent          int
	AdminsNotified   int
}

// SOSRequest - входные данные для срабатывания SOS
type SOSRequest struct {
	Location  Location
	AlertType AlertType
	Message   string
}
