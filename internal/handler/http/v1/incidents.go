package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/rapid_response_hub/internal/models"
)

const defaultNearRadiusMeters = 5000

// @Summary Create a new incident
// @Description Report a new incident. The reporter is taken from the token.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param incident body CreateIncidentRequest true "Incident creation request"
// @Success 201 {object} IncidentEnvelope
// @Failure 400 {object} ErrorResponse "Invalid request body or validation error"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /incidents [post]
func (h *Handler) createIncident(c *gin.Context) {
	log := h.logFor(c, "createIncident")
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var input CreateIncidentRequest
	if !h.bindAndValidate(c, log, &input) {
		return
	}

	model := DTOToIncidentModel(input)
	if err := h.incidentService.CreateIncident(c.Request.Context(), actor, model); err != nil {
		respondError(c, log, "Failed to report incident", err)
		return
	}
	c.JSON(http.StatusCreated, IncidentEnvelope{
		Message:  "Incident reported successfully",
		Incident: ModelToIncidentResponse(model),
	})
}

// @Summary Get a list of incidents
// @Description Get a paginated list of incidents, newest first. Supports filtering by status, type, severity and distance.
// @Tags Incidents
// @Produce json
// @Param status query string false "Status filter"
// @Param category query string false "Category filter"
// @Param severity query string false "Severity filter"
// @Param lat query number false "Latitude of the search center"
// @Param lng query number false "Longitude of the search center"
// @Param radius query int false "Search radius in meters" default(5000)
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Number of items per page" default(20)
// @Success 200 {object} IncidentListResponse
// @Failure 400 {object} ErrorResponse "Invalid filter"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /incidents [get]
func (h *Handler) listIncidents(c *gin.Context) {
	log := h.logFor(c, "listIncidents")

	filter, err := parseIncidentFilter(c)
	if err != nil {
		log.WithError(err).Warn("Invalid incident filter")
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid filter", Error: err.Error()})
		return
	}

	incidents, err := h.incidentService.ListIncidents(c.Request.Context(), filter)
	if err != nil {
		respondError(c, log, "Failed to list incidents", err)
		return
	}
	c.JSON(http.StatusOK, IncidentListResponse{Incidents: ModelsToIncidentResponses(incidents)})
}

// parseIncidentFilter читает фильтры списка из query. Поиск по радиусу требует lat и lng
func parseIncidentFilter(c *gin.Context) (models.IncidentFilter, error) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	filter := models.IncidentFilter{
		Status:   models.IncidentStatus(c.Query("status")),
		Category: models.Category(c.Query("category")),
		Severity: models.Severity(c.Query("severity")),
		Page:     page,
		PageSize: pageSize,
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return filter, models.ErrInvalidInput
	}
	if filter.Category != "" && !filter.Category.Valid() {
		return filter, models.ErrInvalidInput
	}
	if filter.Severity != "" && !filter.Severity.Valid() {
		return filter, models.ErrInvalidInput
	}

	latRaw, lngRaw := c.Query("lat"), c.Query("lng")
	if latRaw == "" && lngRaw == "" {
		return filter, nil
	}
	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil || lat < -90 || lat > 90 {
		return filter, models.ErrInvalidInput
	}
	lng, err := strconv.ParseFloat(lngRaw, 64)
	if err != nil || lng < -180 || lng > 180 {
		return filter, models.ErrInvalidInput
	}
	radius, err := strconv.Atoi(c.DefaultQuery("radius", strconv.Itoa(defaultNearRadiusMeters)))
	if err != nil || radius <= 0 {
		return filter, models.ErrInvalidInput
	}
	filter.Near = &models.NearFilter{Latitude: lat, Longitude: lng, RadiusMeters: radius}
	return filter, nil
}

// @Summary Get incident by ID
// @Description Get a single incident with its timeline.
// @Tags Incidents
// @Produce json
// @Param id path string true "Incident ID"
// @Success 200 {object} IncidentEnvelope
// @Failure 400 {object} ErrorResponse "Invalid incident ID"
// @Failure 404 {object} ErrorResponse "Incident not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /incidents/{id} [get]
func (h *Handler) getIncident(c *gin.Context) {
	id, ok := parseID(c, "incident")
	if !ok {
		return
	}
	log := h.logFor(c, "getIncident").WithField("id", id)

	incident, err := h.incidentService.GetIncident(c.Request.Context(), id)
	if err != nil {
		respondError(c, log, "Failed to get incident", err)
		return
	}
	c.JSON(http.StatusOK, IncidentEnvelope{Incident: ModelToIncidentResponse(incident)})
}

// @Summary Update an existing incident
// @Description Update incident fields. Only the reporter or an admin may do this.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Incident ID"
// @Param incident body UpdateIncidentRequest true "Incident update request"
// @Success 200 {object} IncidentEnvelope
// @Failure 400 {object} ErrorResponse "Invalid incident ID or request body"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Not the reporter"
// @Failure 404 {object} ErrorResponse "Incident not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /incidents/{id} [put]
func (h *Handler) updateIncident(c *gin.Context) {
	id, ok := parseID(c, "incident")
	if !ok {
		return
	}
	log := h.logFor(c, "updateIncident").WithField("id", id)
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var input UpdateIncidentRequest
	if !h.bindAndValidate(c, log, &input) {
		return
	}

	incident, err := h.incidentService.UpdateIncident(c.Request.Context(), actor, id, DTOToIncidentPatch(input))
	if err != nil {
		respondError(c, log, "Failed to update incident", err)
		return
	}
	c.JSON(http.StatusOK, IncidentEnvelope{
		Message:  "Incident updated successfully",
		Incident: ModelToIncidentResponse(incident),
	})
}

// @Summary Delete an incident
// @Description Permanently delete an incident. Admin only.
// @Tags Incidents
// @Produce json
// @Security BearerAuth
// @Param id path string true "Incident ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse "Invalid incident ID"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Admin only"
// @Failure 404 {object} ErrorResponse "Incident not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /incidents/{id} [delete]
func (h *Handler) deleteIncident(c *gin.Context) {
	id, ok := parseID(c, "incident")
	if !ok {
		return
	}
	log := h.logFor(c, "deleteIncident").WithField("id", id)
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	if err := h.incidentService.DeleteIncident(c.Request.Context(), actor, id); err != nil {
		respondError(c, log, "Failed to delete incident", err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Incident deleted successfully"})
}

// @Summary Toggle verification
// @Description Add the caller's verification vote, or remove it if already present. Three votes verify the incident.
// @Tags Incidents
// @Produce json
// @Security BearerAuth
// @Param id path string true "Incident ID"
// @Success 200 {object} VerifyResponse
// @Failure 400 {object} ErrorResponse "Invalid incident ID"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Incident not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /incidents/{id}/verify [post]
func (h *Handler) toggleVerification(c *gin.Context) {
	id, ok := parseID(c, "incident")
	if !ok {
		return
	}
	log := h.logFor(c, "toggleVerification").WithField("id", id)
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	result, err := h.incidentService.ToggleVerification(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, log, "Failed to verify incident", err)
		return
	}

	message := "Verification removed"
	if result.HasVerified {
		message = "Verification added"
	}
	c.JSON(http.StatusOK, VerifyResponse{
		Message:           message,
		Action:            result.Action,
		VerificationCount: result.VerificationCount,
		HasVerified:       result.HasVerified,
		Status:            string(result.Status),
	})
}

// @Summary Get verification status
// @Description Check whether the caller has verified the incident.
// @Tags Incidents
// @Produce json
// @Security BearerAuth
// @Param id path string true "Incident ID"
// @Success 200 {object} VerifyStatusResponse
// @Failure 400 {object} ErrorResponse "Invalid incident ID"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Incident not found"
// @Router /incidents/{id}/verify/status [get]
func (h *Handler) getVerificationStatus(c *gin.Context) {
	id, ok := parseID(c, "incident")
	if !ok {
		return
	}
	log := h.logFor(c, "getVerificationStatus").WithField("id", id)
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	status, err := h.incidentService.GetVerificationStatus(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, log, "Failed to get verification status", err)
		return
	}
	c.JSON(http.StatusOK, VerifyStatusResponse{
		HasVerified:       status.HasVerified,
		VerificationCount: status.VerificationCount,
	})
}

// @Summary Update incident status
// @Description Manually set the incident status. Admin only. The reporter is notified.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Incident ID"
// @Param status body UpdateStatusRequest true "New status"
// @Success 200 {object} IncidentEnvelope
// @Failure 400 {object} ErrorResponse "Invalid incident ID or status"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Admin only"
// @Failure 404 {object} ErrorResponse "Incident not found"
// @Router /incidents/{id}/status [put]
func (h *Handler) updateStatus(c *gin.Context) {
	id, ok := parseID(c, "incident")
	if !ok {
		return
	}
	log := h.logFor(c, "updateStatus").WithField("id", id)
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var input UpdateStatusRequest
	if !h.bindAndValidate(c, log, &input) {
		return
	}

	incident, err := h.incidentService.UpdateStatus(c.Request.Context(), actor, id, models.IncidentStatus(input.Status))
	if err != nil {
		respondError(c, log, "Failed to update status", err)
		return
	}
	c.JSON(http.StatusOK, IncidentEnvelope{
		Message:  "Status updated successfully",
		Incident: ModelToIncidentResponse(incident),
	})
}

// @Summary Assign incident
// @Description Assign a responder to the incident. Admin only.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Incident ID"
// @Param assignment body AssignIncidentRequest true "Responder"
// @Success 200 {object} IncidentEnvelope
// @Failure 400 {object} ErrorResponse "Invalid incident ID or request body"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Admin only"
// @Failure 404 {object} ErrorResponse "Incident not found"
// @Router /incidents/{id}/assign [put]
func (h *Handler) assignIncident(c *gin.Context) {
	id, ok := parseID(c, "incident")
	if !ok {
		return
	}
	log := h.logFor(c, "assignIncident").WithField("id", id)
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var input AssignIncidentRequest
	if !h.bindAndValidate(c, log, &input) {
		return
	}

	incident, err := h.incidentService.AssignIncident(c.Request.Context(), actor, id, input.AssignedTo)
	if err != nil {
		respondError(c, log, "Failed to assign incident", err)
		return
	}
	c.JSON(http.StatusOK, IncidentEnvelope{
		Message:  "Incident assigned successfully",
		Incident: ModelToIncidentResponse(incident),
	})
}

// @Summary Get incident statistics
// @Description Get dashboard counters for incidents.
// @Tags Incidents
// @Produce json
// @Success 200 {object} StatsResponse
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /incidents/stats/summary [get]
func (h *Handler) getStats(c *gin.Context) {
	log := h.logFor(c, "getStats")

	stats, err := h.incidentService.GetStats(c.Request.Context())
	if err != nil {
		respondError(c, log, "Failed to get stats", err)
		return
	}
	c.JSON(http.StatusOK, StatsResponse{Stats: stats})
}
