package v1

import (
	"github.com/google/uuid"
	"github.com/shenikar/rapid_response_hub/internal/models"
)

// DTOToIncidentModel преобразует DTO создания в доменную модель
func DTOToIncidentModel(dto CreateIncidentRequest) *models.Incident {
	media := dto.Media
	if media == nil {
		media = []string{}
	}
	return &models.Incident{
		Title:       dto.Title,
		Description: dto.Description,
		Category:    models.Category(dto.Type),
		Severity:    models.Severity(dto.Severity),
		Location:    locationFromDTO(dto.Location.Address, dto.Location.Latitude, dto.Location.Longitude),
		Media:       media,
	}
}

// DTOToIncidentPatch преобразует DTO обновления в частичное изменение
func DTOToIncidentPatch(dto UpdateIncidentRequest) models.IncidentPatch {
	patch := models.IncidentPatch{
		Title:       dto.Title,
		Description: dto.Description,
		Media:       dto.Media,
		Notes:       dto.Notes,
	}
	if dto.Type != nil {
		category := models.Category(*dto.Type)
		patch.Category = &category
	}
	if dto.Severity != nil {
		severity := models.Severity(*dto.Severity)
		patch.Severity = &severity
	}
	if dto.Location != nil {
		location := locationFromDTO(dto.Location.Address, dto.Location.Latitude, dto.Location.Longitude)
		patch.Location = &location
	}
	return patch
}

func locationFromDTO(address string, lat, lng *float64) models.Location {
	location := models.Location{Address: address}
	if lat != nil {
		location.Latitude = *lat
	}
	if lng != nil {
		location.Longitude = *lng
	}
	return location
}

// ModelToIncidentResponse преобразует доменную модель в DTO для ответа
func ModelToIncidentResponse(model *models.Incident) *IncidentResponse {
	resp := &IncidentResponse{
		ID:                model.ID,
		Title:             model.Title,
		Description:       model.Description,
		Type:              string(model.Category),
		Severity:          string(model.Severity),
		Status:            string(model.Status),
		StatusSetBy:       string(model.StatusSetBy),
		Location:          model.Location,
		ReportedBy:        model.ReportedBy,
		ReportedByName:    model.ReportedByName,
		Media:             model.Media,
		AssignedTo:        model.AssignedTo,
		Notes:             model.Notes,
		VerificationCount: model.VerificationCount,
		VerifiedBy:        model.VerifiedBy,
		VerifiedAt:        model.VerifiedAt,
		Timeline:          model.Timeline,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}
	// Клиент ожидает массивы, а не null
	if resp.Media == nil {
		resp.Media = []string{}
	}
	if resp.Notes == nil {
		resp.Notes = []string{}
	}
	if resp.VerifiedBy == nil {
		resp.VerifiedBy = []uuid.UUID{}
	}
	if resp.Timeline == nil {
		resp.Timeline = []models.TimelineEntry{}
	}
	return resp
}

// ModelsToIncidentResponses преобразует слайс моделей в слайс DTO
func ModelsToIncidentResponses(incidents []*models.Incident) []*IncidentResponse {
	responses := make([]*IncidentResponse, len(incidents))
	for i, model := range incidents {
		responses[i] = ModelToIncidentResponse(model)
	}
	return responses
}

// ModelToNotificationResponse разворачивает связанные записи в объекты
func ModelToNotificationResponse(n *models.Notification) *NotificationResponse {
	resp := &NotificationResponse{
		ID:        n.ID,
		UserID:    n.UserID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      string(n.Type),
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		Priority:  string(n.Priority),
		CreatedAt: n.CreatedAt,
	}
	if n.RelatedIncident != nil {
		resp.RelatedIncident = &RelatedIncidentResponse{ID: *n.RelatedIncident}
		if n.Incident != nil {
			resp.RelatedIncident.Title = n.Incident.Title
			resp.RelatedIncident.Category = string(n.Incident.Category)
			resp.RelatedIncident.Severity = string(n.Incident.Severity)
		}
	}
	if n.RelatedSOS != nil {
		resp.RelatedSOS = &RelatedSOSResponse{ID: *n.RelatedSOS}
		if n.SOS != nil {
			resp.RelatedSOS.AlertType = string(n.SOS.AlertType)
			resp.RelatedSOS.Status = string(n.SOS.Status)
		}
	}
	return resp
}

func ModelsToNotificationResponses(notifications []*models.Notification) []*NotificationResponse {
	resp := make([]*NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		resp = append(resp, ModelToNotificationResponse(n))
	}
	return resp
}

// ModelToUserResponse скрывает хеш пароля и служебные поля
func ModelToUserResponse(user *models.User) *UserResponse {
	return &UserResponse{
		ID:     user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   string(user.Role),
		Phone:  user.Phone,
		Avatar: user.Avatar,
	}
}

// DTOToContactModel преобразует DTO создания контакта. notifyOnSOS по умолчанию включен
func DTOToContactModel(dto CreateContactRequest) *models.EmergencyContact {
	contact := &models.EmergencyContact{
		Name:         dto.Name,
		Phone:        dto.Phone,
		Email:        dto.Email,
		Relationship: dto.Relationship,
		NotifyOnSOS:  true,
	}
	if dto.IsPrimary != nil {
		contact.IsPrimary = *dto.IsPrimary
	}
	if dto.NotifyOnSOS != nil {
		contact.NotifyOnSOS = *dto.NotifyOnSOS
	}
	return contact
}

func DTOToContactPatch(dto UpdateContactRequest) models.ContactPatch {
	return models.ContactPatch{
		Name:         dto.Name,
		Phone:        dto.Phone,
		Email:        dto.Email,
		Relationship: dto.Relationship,
		IsPrimary:    dto.IsPrimary,
		NotifyOnSOS:  dto.NotifyOnSOS,
	}
}

func DTOToSOSRequest(dto TriggerSOSRequest) models.SOSRequest {
	return models.SOSRequest{
		Location:  locationFromDTO(dto.Location.Address, dto.Location.Latitude, dto.Location.Longitude),
		AlertType: models.AlertType(dto.AlertType),
		Message:   dto.Message,
	}
}
