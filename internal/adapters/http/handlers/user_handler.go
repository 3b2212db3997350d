package handlers

import (
	"bloodlink/internal/core/services"
	"bloodlink/internal/pkg/pagination"
	"bloodlink/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles profile and account endpoints
type UserHandler struct {
	userService *services.UserService
	authService *services.AuthService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService, authService *services.AuthService) *UserHandler {
	return &UserHandler{
		userService: userService,
		authService: authService,
	}
}

// GetProfile handles profile retrieval
// @Summary Get profile
// @Description Get the authenticated user's profile
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /users/profile [get]
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	user, err := h.userService.GetProfile(c.Context(), userID)
	if err != nil {
		return domainError(c, err)
	}

	return response.Success(c, "Profile retrieved", user.ToResponse())
}

// UpdateProfile handles profile update
// @Summary Update profile
// @Description Update the authenticated user's profile, including donor availability
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.UpdateProfileInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /users/profile [patch]
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.UpdateProfileInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.userService.UpdateProfile(c.Context(), userID, &input)
	if err != nil {
		return domainError(c, err)
	}

	return response.Success(c, "Profile updated", user.ToResponse())
}

// DeleteAccount handles account deletion
// @Summary Delete account
// @Description Delete the authenticated user's account and revoke all sessions
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /users/profile [delete]
func (h *UserHandler) DeleteAccount(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	if err := h.userService.DeleteAccount(c.Context(), userID); err != nil {
		return domainError(c, err)
	}

	return response.Success(c, "Account deleted", nil)
}

// List handles user listing (admin)
// @Summary List users
// @Description List users with pagination (admin only)
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	users, total, err := h.userService.List(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return domainError(c, err)
	}

	results := make([]interface{}, 0, len(users))
	for _, user := range users {
		results = append(results, user.ToResponse())
	}

	return response.Success(c, "Users retrieved", pagination.NewResponse(results, params, total))
}
