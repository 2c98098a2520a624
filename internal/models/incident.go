package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Location - точка на карте с адресом
type Location struct {
	Address   string  `json:"address"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// TimelineEntry - запись журнала событий происшествия. Журнал только дополняется
type TimelineEntry struct {
	Time  time.Time `json:"time"`
	Event string    `json:"event"`
	Actor string    `json:"user"`
}

type Incident struct {
	ID                uuid.UUID       `json:"id"`
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	Category          Category        `json:"type"`
	Severity          Severity        `json:"severity"`
	Status            IncidentStatus  `json:"status"`
	StatusSetBy       StatusSource    `json:"statusSetBy"`
	Location          Location        `json:"location"`
	ReportedBy        uuid.UUID       `json:"reportedBy"`
	ReportedByName    string          `json:"reportedByName"`
	Media             []string        `json:"media"`
	AssignedTo        string          `json:"assignedTo,omitempty"`
	Notes             []string        `json:"notes"`
	VerificationCount int             `json:"verificationCount"`
	VerifiedBy        []uuid.UUID     `json:"verifiedBy"`
	VerifiedAt        *time.Time      `json:"verifiedAt,omitempty"`
	Timeline          []TimelineEntry `json:"timeline"`
	Version           int             `json:"version"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// HasVerifier проверяет, голосовал ли пользователь за происшествие
func (i *Incident) HasVerifier(userID uuid.UUID) bool {
	return slices.Contains(i.VerifiedBy, userID)
}

// AppendTimeline добавляет запись в журнал и возвращает ее
func (i *Incident) AppendTimeline(at time.Time, event, actor string) TimelineEntry {
	entry := TimelineEntry{Time: at, Event: event, Actor: actor}
	i.Timeline = append(i.Timeline, entry)
	return entry
}

// IncidentPatch - частичное обновление полей происшествия. nil означает "не менять"
type IncidentPatch struct {
	Title       *string
	Description *string
	Category    *Category
	Severity    *Severity
	Location    *Location
	Media       []string
	Notes       []string
}

// NearFilter - поиск в радиусе от точки
type NearFilter struct {
	Latitude     float64
	Longitude    float64
	RadiusMeters int
}

// IncidentFilter - параметры выборки списка происшествий
type IncidentFilter struct {
	Status   IncidentStatus
	Category Category
	Severity Severity
	Near     *NearFilter
	Page     int
	PageSize int
}

// IncidentStats - сводка для панели администратора
type IncidentStats struct {
	TotalIncidents      int `json:"totalIncidents"`
	ActiveIncidents     int `json:"activeIncidents"`
	ResolvedToday       int `json:"resolvedToday"`
	CriticalCount       int `json:"criticalCount"`
	PendingVerification int `json:"pendingVerification"`
}

// VerificationResult - ответ на переключение голоса
type VerificationResult struct {
	Action            string
	VerificationCount int
	HasVerified       bool
	Status            IncidentStatus
}

// VerificationStatus - голосовал ли текущий пользователь
type VerificationStatus struct {
	HasVerified       bool
	VerificationCount int
}
