package models

import (
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID              uuid.UUID        `db:"id" json:"id"`
	UserID          uuid.UUID        `db:"user_id" json:"userId"`
	Title           string           `db:"title" json:"title"`
	Message         string           `db:"message" json:"message"`
	Type            NotificationType `db:"type" json:"type"`
	RelatedIncident *uuid.UUID       `db:"related_incident" json:"relatedIncident,omitempty"`
	RelatedSOS      *uuid.UUID       `db:"related_sos" json:"relatedSOS,omitempty"`
	IsRead          bool             `db:"is_read" json:"isRead"`
	ReadAt          *time.Time       `db:"read_at" json:"readAt,omitempty"`
	Priority        Priority         `db:"priority" json:"priority"`
	CreatedAt       time.Time        `db:"created_at" json:"createdAt"`

	// Заполняются только при чтении списка
	Incident *IncidentSummary `db:"-" json:"-"`
	SOS      *SOSSummary      `db:"-" json:"-"`
}

// IncidentSummary - краткие сведения о связанном происшествии
type IncidentSummary struct {
	ID       uuid.UUID
	Title    string
	Category Category
	Severity Severity
}

// SOSSummary - краткие сведения о связанном SOS сигнале
type SOSSummary struct {
	ID        uuid.UUID
	AlertType AlertType
	Status    SOSStatus
}
