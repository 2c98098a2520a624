package models

import (
	"time"

	"github.com/google/uuid"
)

// EmergencyContact - доверенное лицо пользователя, получающее SOS оповещения
type EmergencyContact struct {
	ID           uuid.UUID `db:"id" json:"id"`
	UserID       uuid.UUID `db:"user_id" json:"userId"`
	Name         string    `db:"name" json:"name"`
	Phone        string    `db:"phone" json:"phone"`
	Email        *string   `db:"email" json:"email,omitempty"`
	Relationship string    `db:"relationship" json:"relationship"`
	IsPrimary    bool      `db:"is_primary" json:"isPrimary"`
	NotifyOnSOS  bool      `db:"notify_on_sos" json:"notifyOnSOS"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// ContactPatch - частичное обновление контакта
type ContactPatch struct {
	Name         *string
	Phone        *string
	Email        *string
	Relationship *string
	IsPrimary    *bool
	NotifyOnSOS  *bool
}
