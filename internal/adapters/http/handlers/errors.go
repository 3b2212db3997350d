package handlers

import (
	"errors"

	"bloodlink/internal/core/domain"
	"bloodlink/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// domainError maps a domain error to its HTTP response. Ordering
// matters: the specific sentinels wrap the generic ones.
func domainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrRequestExpired):
		return response.Error(c, fiber.StatusConflict, "Blood request has expired")
	case errors.Is(err, domain.ErrNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		return response.Forbidden(c, "You don't have permission to perform this action")
	case errors.Is(err, domain.ErrInvalidState):
		return response.Error(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrIneligibleDonor):
		return response.UnprocessableEntity(c, err.Error())
	case errors.Is(err, domain.ErrValidation):
		return response.BadRequest(c, err.Error())
	default:
		return response.InternalServerError(c, "Something went wrong")
	}
}
