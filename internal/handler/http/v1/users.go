package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/rapid_response_hub/internal/models"
)

// @Summary Register
// @Description Create a citizen account and get a token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "Registration data"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} ErrorResponse "Validation error or email already taken"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /auth/register [post]
func (h *Handler) register(c *gin.Context) {
	log := h.logFor(c, "register")

	var input RegisterRequest
	if !h.bindAndValidate(c, log, &input) {
		return
	}

	result, err := h.authService.Register(c.Request.Context(), models.Registration{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
		Phone:    input.Phone,
	})
	if err != nil {
		respondError(c, log, "Registration failed", err)
		return
	}
	c.JSON(http.StatusCreated, AuthResponse{
		Message: "User registered successfully",
		Token:   result.Token,
		User:    ModelToUserResponse(result.User),
	})
}

// @Summary Login
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Email and password"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} ErrorResponse "Validation error"
// @Failure 401 {object} ErrorResponse "Invalid email or password"
// @Router /auth/login [post]
func (h *Handler) login(c *gin.Context) {
	log := h.logFor(c, "login")

	var input LoginRequest
	if !h.bindAndValidate(c, log, &input) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		respondError(c, log, "Invalid email or password", err)
		return
	}
	c.JSON(http.StatusOK, AuthResponse{
		Message: "Login successful",
		Token:   result.Token,
		User:    ModelToUserResponse(result.User),
	})
}

// @Summary Current user
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MeResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "User not found"
// @Router /auth/me [get]
func (h *Handler) me(c *gin.Context) {
	log := h.logFor(c, "me")
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	user, err := h.authService.Me(c.Request.Context(), actor)
	if err != nil {
		respondError(c, log, "User not found", err)
		return
	}
	c.JSON(http.StatusOK, MeResponse{User: ModelToUserResponse(user)})
}
