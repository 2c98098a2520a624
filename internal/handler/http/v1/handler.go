package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shenikar/rapid_response_hub/internal/auth"
	"github.com/shenikar/rapid_response_hub/internal/models"
	"github.com/shenikar/rapid_response_hub/internal/service"
	"github.com/sirupsen/logrus"
)

// Services - набор сервисов, которые обслуживает HTTP слой
type Services struct {
	Incidents     service.IncidentService
	SOS           service.SOSService
	Contacts      service.ContactService
	Notifications service.NotificationService
	Auth          service.AuthService
}

type Handler struct {
	incidentService     service.IncidentService
	sosService          service.SOSService
	contactService      service.ContactService
	notificationService service.NotificationService
	authService         service.AuthService
	tokens              *auth.TokenManager
	logger              *logrus.Logger
	validate            *validator.Validate
}

func NewHandler(services Services, tokens *auth.TokenManager, logger *logrus.Logger) *Handler {
	return &Handler{
		incidentService:     services.Incidents,
		sosService:          services.SOS,
		contactService:      services.Contacts,
		notificationService: services.Notifications,
		authService:         services.Auth,
		tokens:              tokens,
		logger:              logger,
		validate:            validator.New(),
	}
}

// logFor возвращает логгер запроса с методом и request id
func (h *Handler) logFor(c *gin.Context, method string) *logrus.Entry {
	return h.logger.WithFields(logrus.Fields{
		"method":     method,
		"request_id": c.GetString(requestIDKey),
	})
}

// bindAndValidate разбирает JSON тело и проверяет его. При ошибке ответ уже записан
func (h *Handler) bindAndValidate(c *gin.Context, log *logrus.Entry, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body", Error: err.Error()})
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Validation failed", Error: err.Error()})
		return false
	}
	return true
}

// parseID читает uuid из параметра пути
func parseID(c *gin.Context, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid " + what + " ID", Error: err.Error()})
		return uuid.Nil, false
	}
	return id, true
}

// respondError переводит доменную ошибку в HTTP статус
func respondError(c *gin.Context, log *logrus.Entry, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, models.ErrEmailTaken), errors.Is(err, models.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	}

	entry := log.WithError(err)
	if status == http.StatusInternalServerError {
		entry.Error(message)
	} else {
		entry.Warn(message)
	}
	c.JSON(status, ErrorResponse{Message: message, Error: err.Error()})
}

// @Summary Health check
// @Description Check the health of the service.
// @Tags System
// @Produce json
// @Success 200 {object} map[string]string
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
