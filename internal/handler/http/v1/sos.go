package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary Trigger SOS
// @Description Raise an SOS alert. Emergency contacts are notified by email and SMS, admins get an in-app notification.
// @Tags SOS
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param alert body TriggerSOSRequest true "SOS location and details"
// @Success 201 {object} TriggerSOSResponse
// @Failure 400 {object} ErrorResponse "Invalid request body or validation error"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /sos/trigger [post]
func (h *Handler) triggerSOS(c *gin.Context) {
	log := h.logFor(c, "triggerSOS")
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var input TriggerSOSRequest
	if !h.bindAndValidate(c, log, &input) {
		return
	}

	outcome, err := h.sosService.TriggerSOS(c.Request.Context(), actor, DTOToSOSRequest(input))
	if err != nil {
		respondError(c, log, "Failed to trigger SOS alert", err)
		return
	}
	c.JSON(http.StatusCreated, TriggerSOSResponse{
		Message:          "SOS Alert triggered successfully",
		SOSAlert:         outcome.Alert,
		ContactsNotified: outcome.ContactsNotified,
		Notifications: SOSNotificationCounts{
			EmailsSent:     outcome.EmailsSent,
			SMSSent:        outcome.SMSSent,
			AdminsNotified: outcome.AdminsNotified,
		},
	})
}

// @Summary My SOS alerts
// @Description Get the caller's latest SOS alerts.
// @Tags SOS
// @Produce json
// @Security BearerAuth
// @Success 200 {object} AlertListResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /sos/my-alerts [get]
func (h *Handler) myAlerts(c *gin.Context) {
	log := h.logFor(c, "myAlerts")
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	alerts, err := h.sosService.MyAlerts(c.Request.Context(), actor)
	if err != nil {
		respondError(c, log, "Failed to list SOS alerts", err)
		return
	}
	c.JSON(http.StatusOK, AlertListResponse{Alerts: alerts})
}

// @Summary Active SOS alerts
// @Description Get all active SOS alerts with owner details. Admin only.
// @Tags SOS
// @Produce json
// @Security BearerAuth
// @Success 200 {object} AlertListResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Admin only"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /sos/all [get]
func (h *Handler) activeAlerts(c *gin.Context) {
	log := h.logFor(c, "activeAlerts")
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	alerts, err := h.sosService.ActiveAlerts(c.Request.Context(), actor)
	if err != nil {
		respondError(c, log, "Failed to list active SOS alerts", err)
		return
	}
	c.JSON(http.StatusOK, AlertListResponse{Alerts: alerts})
}

// @Summary Cancel SOS alert
// @Description Cancel the caller's own active SOS alert.
// @Tags SOS
// @Produce json
// @Security BearerAuth
// @Param id path string true "SOS alert ID"
// @Success 200 {object} AlertEnvelope
// @Failure 400 {object} ErrorResponse "Invalid alert ID"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Active SOS alert not found"
// @Router /sos/{id}/cancel [put]
func (h *Handler) cancelSOS(c *gin.Context) {
	id, ok := parseID(c, "SOS alert")
	if !ok {
		return
	}
	log := h.logFor(c, "cancelSOS").WithField("id", id)
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	alert, err := h.sosService.CancelSOS(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, log, "Active SOS alert not found", err)
		return
	}
	c.JSON(http.StatusOK, AlertEnvelope{Message: "SOS alert cancelled", Alert: alert})
}

// @Summary Resolve SOS alert
// @Description Mark an SOS alert as resolved. Admin only. The owner is notified.
// @Tags SOS
// @Produce json
// @Security BearerAuth
// @Param id path string true "SOS alert ID"
// @Success 200 {object} AlertEnvelope
// @Failure 400 {object} ErrorResponse "Invalid alert ID"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Admin only"
// @Failure 404 {object} ErrorResponse "SOS alert not found"
// @Router /sos/{id}/resolve [put]
func (h *Handler) resolveSOS(c *gin.Context) {
	id, ok := parseID(c, "SOS alert")
	if !ok {
		return
	}
	log := h.logFor(c, "resolveSOS").WithField("id", id)
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	alert, err := h.sosService.ResolveSOS(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, log, "Failed to resolve SOS alert", err)
		return
	}
	c.JSON(http.StatusOK, AlertEnvelope{Message: "SOS alert resolved", Alert: alert})
}
