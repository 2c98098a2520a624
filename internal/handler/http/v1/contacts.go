package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary List emergency contacts
// @Description Get the caller's emergency contacts, primary first.
// @Tags Emergency contacts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ContactListResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /emergency-contacts [get]
func (h *Handler) listContacts(c *gin.Context) {
	log := h.logFor(c, "listContacts")
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	contacts, err := h.contactService.ListContacts(c.Request.Context(), actor)
	if err != nil {
		respondError(c, log, "Failed to list contacts", err)
		return
	}
	c.JSON(http.StatusOK, ContactListResponse{Contacts: contacts})
}

// @Summary Add emergency contact
// @Description Add a contact. A new primary contact demotes the previous one.
// @Tags Emergency contacts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param contact body CreateContactRequest true "Contact"
// @Success 201 {object} ContactEnvelope
// @Failure 400 {object} ErrorResponse "Invalid request body or validation error"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /emergency-contacts [post]
func (h *Handler) createContact(c *gin.Context) {
	log := h.logFor(c, "createContact")
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var input CreateContactRequest
	if !h.bindAndValidate(c, log, &input) {
		return
	}

	contact := DTOToContactModel(input)
	if err := h.contactService.CreateContact(c.Request.Context(), actor, contact); err != nil {
		respondError(c, log, "Failed to add contact", err)
		return
	}
	c.JSON(http.StatusCreated, ContactEnvelope{Message: "Emergency contact added successfully", Contact: contact})
}

// @Summary Update emergency contact
// @Tags Emergency contacts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Contact ID"
// @Param contact body UpdateContactRequest true "Contact fields"
// @Success 200 {object} ContactEnvelope
// @Failure 400 {object} ErrorResponse "Invalid contact ID or request body"
// @Failure 404 {object} ErrorResponse "Contact not found"
// @Router /emergency-contacts/{id} [put]
func (h *Handler) updateContact(c *gin.Context) {
	id, ok := parseID(c, "contact")
	if !ok {
		return
	}
	log := h.logFor(c, "updateContact").WithField("id", id)
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var input UpdateContactRequest
	if !h.bindAndValidate(c, log, &input) {
		return
	}

	contact, err := h.contactService.UpdateContact(c.Request.Context(), actor, id, DTOToContactPatch(input))
	if err != nil {
		respondError(c, log, "Failed to update contact", err)
		return
	}
	c.JSON(http.StatusOK, ContactEnvelope{Message: "Contact updated successfully", Contact: contact})
}

// @Summary Delete emergency contact
// @Tags Emergency contacts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Contact ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse "Invalid contact ID"
// @Failure 404 {object} ErrorResponse "Contact not found"
// @Router /emergency-contacts/{id} [delete]
func (h *Handler) deleteContact(c *gin.Context) {
	id, ok := parseID(c, "contact")
	if !ok {
		return
	}
	log := h.logFor(c, "deleteContact").WithField("id", id)
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	if err := h.contactService.DeleteContact(c.Request.Context(), actor, id); err != nil {
		respondError(c, log, "Failed to delete contact", err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Contact deleted successfully"})
}
