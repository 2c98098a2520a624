package v1

import (
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/rapid_response_hub/internal/models"
)

// ErrorResponse DTO для ответа с ошибкой
// @Description DTO для ответа с ошибкой
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// MessageResponse DTO для ответа с текстовым сообщением
type MessageResponse struct {
	Message string `json:"message"`
}

// IncidentLocationRequest - точка происшествия, адрес обязателен
type IncidentLocationRequest struct {
	Address   string   `json:"address" validate:"required,min=1,max=500"`
	Latitude  *float64 `json:"lat" validate:"required,latitude"`
	Longitude *float64 `json:"lng" validate:"required,longitude"`
}

// SOSLocationRequest - точка SOS сигнала, адрес может отсутствовать
type SOSLocationRequest struct {
	Address   string   `json:"address" validate:"max=500"`
	Latitude  *float64 `json:"lat" validate:"required,latitude"`
	Longitude *float64 `json:"lng" validate:"required,longitude"`
}

// CreateIncidentRequest DTO для создания инцидента
// @Description DTO для создания инцидента
type CreateIncidentRequest struct {
	Title       string                  `json:"title" validate:"required,min=5,max=100"`
	Description string                  `json:"description" validate:"required,min=10,max=2000"`
	Type        string                  `json:"type" validate:"required,oneof=medical accident fire infrastructure public-safety"`
	Severity    string                  `json:"severity" validate:"required,oneof=critical high medium low"`
	Location    IncidentLocationRequest `json:"location"`
	Media       []string                `json:"media" validate:"omitempty,max=10,dive,required"`
}

// UpdateIncidentRequest DTO для обновления инцидента. Статус меняется только через /status
// @Description DTO для обновления инцидента
type UpdateIncidentRequest struct {
	Title       *string                  `json:"title" validate:"omitempty,min=5,max=100"`
	Description *string                  `json:"description" validate:"omitempty,min=10,max=2000"`
	Type        *string                  `json:"type" validate:"omitempty,oneof=medical accident fire infrastructure public-safety"`
	Severity    *string                  `json:"severity" validate:"omitempty,oneof=critical high medium low"`
	Location    *IncidentLocationRequest `json:"location" validate:"omitempty"`
	Media       []string                 `json:"media" validate:"omitempty,max=10,dive,required"`
	Notes       []string                 `json:"notes" validate:"omitempty,dive,max=1000"`
}

// UpdateStatusRequest DTO для ручной смены статуса
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=unverified verified in-progress resolved"`
}

// AssignIncidentRequest DTO для назначения ответственного
type AssignIncidentRequest struct {
	AssignedTo string `json:"assignedTo" validate:"required,min=1,max=255"`
}

// IncidentResponse DTO для ответа с информацией об инциденте
// @Description DTO для ответа с информацией об инциденте
type IncidentResponse struct {
	ID                uuid.UUID              `json:"id"`
	Title             string                 `json:"title"`
	Description       string                 `json:"description"`
	Type              string                 `json:"type"`
	Severity          string                 `json:"severity"`
	Status            string                 `json:"status"`
	StatusSetBy       string                 `json:"statusSetBy"`
	Location          models.Location        `json:"location"`
	ReportedBy        uuid.UUID              `json:"reportedBy"`
	ReportedByName    string                 `json:"reportedByName"`
	Media             []string               `json:"media"`
	AssignedTo        string                 `json:"assignedTo,omitempty"`
	Notes             []string               `json:"notes"`
	VerificationCount int                    `json:"verificationCount"`
	VerifiedBy        []uuid.UUID            `json:"verifiedBy"`
	VerifiedAt        *time.Time             `json:"verifiedAt,omitempty"`
	Timeline          []models.TimelineEntry `json:"timeline"`
	CreatedAt         time.Time              `json:"createdAt"`
	UpdatedAt         time.Time              `json:"updatedAt"`
}

// IncidentEnvelope - один инцидент с сообщением
type IncidentEnvelope struct {
	Message  string            `json:"message,omitempty"`
	Incident *IncidentResponse `json:"incident"`
}

// IncidentListResponse - список инцидентов
type IncidentListResponse struct {
	Incidents []*IncidentResponse `json:"incidents"`
}

// StatsResponse DTO для ответа со статистикой
// @Description DTO для ответа со статистикой
type StatsResponse struct {
	Stats *models.IncidentStats `json:"stats"`
}

// VerifyResponse - результат переключения голоса
type VerifyResponse struct {
	Message           string `json:"message"`
	Action            string `json:"action"`
	VerificationCount int    `json:"verificationCount"`
	HasVerified       bool   `json:"hasVerified"`
	Status            string `json:"status"`
}

// VerifyStatusResponse - голосовал ли текущий пользователь
type VerifyStatusResponse struct {
	HasVerified       bool `json:"hasVerified"`
	VerificationCount int  `json:"verificationCount"`
}

// RegisterRequest DTO для регистрации. Роль задается только сервером
type RegisterRequest struct {
	Name     string  `json:"name" validate:"required,min=2,max=50"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6,max=100"`
	Phone    *string `json:"phone" validate:"omitempty,max=32"`
}

// LoginRequest DTO для входа
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserResponse - публичные данные пользователя
type UserResponse struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
	Phone  *string   `json:"phone,omitempty"`
	Avatar *string   `json:"avatar,omitempty"`
}

// AuthResponse - токен и пользователь
type AuthResponse struct {
	Message string        `json:"message"`
	Token   string        `json:"token"`
	User    *UserResponse `json:"user"`
}

// MeResponse - текущий пользователь
type MeResponse struct {
	User *UserResponse `json:"user"`
}

// CreateContactRequest DTO для создания экстренного контакта
type CreateContactRequest struct {
	Name         string  `json:"name" validate:"required,min=2,max=100"`
	Phone        string  `json:"phone" validate:"required,min=5,max=32"`
	Email        *string `json:"email" validate:"omitempty,email"`
	Relationship string  `json:"relationship" validate:"required,min=2,max=50"`
	IsPrimary    *bool   `json:"isPrimary"`
	NotifyOnSOS  *bool   `json:"notifyOnSOS"`
}

// UpdateContactRequest DTO для обновления экстренного контакта
type UpdateContactRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=2,max=100"`
	Phone        *string `json:"phone" validate:"omitempty,min=5,max=32"`
	Email        *string `json:"email" validate:"omitempty,email"`
	Relationship *string `json:"relationship" validate:"omitempty,min=2,max=50"`
	IsPrimary    *bool   `json:"isPrimary"`
	NotifyOnSOS  *bool   `json:"notifyOnSOS"`
}

// ContactEnvelope - один контакт с сообщением
type ContactEnvelope struct {
	Message string                   `json:"message,omitempty"`
	Contact *models.EmergencyContact `json:"contact"`
}

// ContactListResponse - список контактов
type ContactListResponse struct {
	Contacts []*models.EmergencyContact `json:"contacts"`
}

// TriggerSOSRequest DTO для срабатывания SOS
type TriggerSOSRequest struct {
	Location  SOSLocationRequest `json:"location"`
	AlertType string             `json:"alertType" validate:"omitempty,oneof=emergency sos panic medical safety"`
	Message   string             `json:"message" validate:"max=500"`
}

// SOSNotificationCounts - сколько оповещений реально отправлено
type SOSNotificationCounts struct {
	EmailsSent     int `json:"emailsSent"`
	SMSSent        int `json:"smsSent"`
	AdminsNotified int `json:"adminsNotified"`
}

// TriggerSOSResponse - результат срабатывания SOS
type TriggerSOSResponse struct {
	Message          string                `json:"message"`
	SOSAlert         *models.SOSAlert      `json:"sosAlert"`
	ContactsNotified int                   `json:"contactsNotified"`
	Notifications    SOSNotificationCounts `json:"notifications"`
}

// AlertEnvelope - один сигнал с сообщением
type AlertEnvelope struct {
	Message string           `json:"message"`
	Alert   *models.SOSAlert `json:"alert"`
}

// AlertListResponse - список сигналов
type AlertListResponse struct {
	Alerts []*models.SOSAlert `json:"alerts"`
}

// RelatedIncidentResponse - связанное происшествие. В списке уведомлений
// дополнено заголовком, категорией и серьезностью
type RelatedIncidentResponse struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title,omitempty"`
	Category string    `json:"category,omitempty"`
	Severity string    `json:"severity,omitempty"`
}

// RelatedSOSResponse - связанный SOS сигнал
type RelatedSOSResponse struct {
	ID        uuid.UUID `json:"id"`
	AlertType string    `json:"alertType,omitempty"`
	Status    string    `json:"status,omitempty"`
}

// NotificationResponse DTO уведомления
type NotificationResponse struct {
	ID              uuid.UUID                `json:"id"`
	UserID          uuid.UUID                `json:"userId"`
	Title           string                   `json:"title"`
	Message         string                   `json:"message"`
	Type            string                   `json:"type"`
	RelatedIncident *RelatedIncidentResponse `json:"relatedIncident,omitempty"`
	RelatedSOS      *RelatedSOSResponse      `json:"relatedSOS,omitempty"`
	IsRead          bool                     `json:"isRead"`
	ReadAt          *time.Time               `json:"readAt,omitempty"`
	Priority        string                   `json:"priority"`
	CreatedAt       time.Time                `json:"createdAt"`
}

// NotificationListResponse - уведомления и число непрочитанных
type NotificationListResponse struct {
	Notifications []*NotificationResponse `json:"notifications"`
	UnreadCount   int                     `json:"unreadCount"`
}

// NotificationEnvelope - одно уведомление
type NotificationEnvelope struct {
	Notification *NotificationResponse `json:"notification"`
}
