package models

// Category - тип происшествия
type Category string

const (
	CategoryMedical        Category = "medical"
	CategoryAccident       Category = "accident"
	CategoryFire           Category = "fire"
	CategoryInfrastructure Category = "infrastructure"
	CategoryPublicSafety   Category = "public-safety"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryMedical, CategoryAccident, CategoryFire, CategoryInfrastructure, CategoryPublicSafety:
		return true
	}
	return false
}

// Severity - степень серьезности происшествия
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

// IncidentStatus - этап жизненного цикла происшествия
type IncidentStatus string

const (
	StatusUnverified IncidentStatus = "unverified"
	StatusVerified   IncidentStatus = "verified"
	StatusInProgress IncidentStatus = "in-progress"
	StatusResolved   IncidentStatus = "resolved"
)

func (s IncidentStatus) Valid() bool {
	switch s {
	case StatusUnverified, StatusVerified, StatusInProgress, StatusResolved:
		return true
	}
	return false
}

// StatusSource - кто выставил текущий статус: движок верификации или администратор
type StatusSource string

const (
	StatusSetBySystem StatusSource = "system"
	StatusSetByAdmin  StatusSource = "admin"
)

// Role - роль пользователя
type Role string

const (
	RoleCitizen Role = "citizen"
	RoleAdmin   Role = "admin"
)

// SOSStatus - статус SOS сигнала. resolved и cancelled терминальные
type SOSStatus string

const (
	SOSStatusActive    SOSStatus = "active"
	SOSStatusResolved  SOSStatus = "resolved"
	SOSStatusCancelled SOSStatus = "cancelled"
)

func (s SOSStatus) Terminal() bool {
	return s == SOSStatusResolved || s == SOSStatusCancelled
}

// AlertType - вид SOS сигнала
type AlertType string

const (
	AlertTypeEmergency AlertType = "emergency"
	AlertTypeSOS       AlertType = "sos"
	AlertTypePanic     AlertType = "panic"
	AlertTypeMedical   AlertType = "medical"
	AlertTypeSafety    AlertType = "safety"
)

func (a AlertType) Valid() bool {
	switch a {
	case AlertTypeEmergency, AlertTypeSOS, AlertTypePanic, AlertTypeMedical, AlertTypeSafety:
		return true
	}
	return false
}

// NotificationType - категория внутреннего уведомления
type NotificationType string

const (
	NotificationIncident NotificationType = "incident"
	NotificationSOS      NotificationType = "sos"
	NotificationAlert    NotificationType = "alert"
	NotificationSystem   NotificationType = "system"
	NotificationUpdate   NotificationType = "update"
)

// Priority - приоритет уведомления
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)
