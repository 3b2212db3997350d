package handlers

import (
	"strconv"

	"bloodlink/internal/core/services"
	"bloodlink/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// StatsHandler handles statistics endpoints
type StatsHandler struct {
	statsService *services.StatsService
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(statsService *services.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// Requests handles request statistics
// @Summary Request statistics
// @Description Request counts grouped by status, urgency and blood group
// @Tags Stats
// @Produce json
// @Success 200 {object} response.Response
// @Router /stats/requests [get]
func (h *StatsHandler) Requests(c *fiber.Ctx) error {
	stats, err := h.statsService.GetRequestStats(c.Context())
	if err != nil {
		return domainError(c, err)
	}

	return response.Success(c, "Request statistics retrieved", stats)
}

// Donations handles donation statistics
// @Summary Donation statistics
// @Description Donation counts by status and completed unit and point totals
// @Tags Stats
// @Produce json
// @Success 200 {object} response.Response
// @Router /stats/donations [get]
func (h *StatsHandler) Donations(c *fiber.Ctx) error {
	stats, err := h.statsService.GetDonationStats(c.Context())
	if err != nil {
		return domainError(c, err)
	}

	return response.Success(c, "Donation statistics retrieved", stats)
}

// Leaderboard handles the donor leaderboard
// @Summary Donor leaderboard
// @Description Donors ranked by completed-donation points, donation count breaking ties
// @Tags Stats
// @Produce json
// @Param limit query int false "Maximum entries (default 10, max 100)"
// @Success 200 {object} response.Response
// @Router /stats/leaderboard [get]
func (h *StatsHandler) Leaderboard(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "10"))

	entries, err := h.statsService.GetLeaderboard(c.Context(), limit)
	if err != nil {
		return domainError(c, err)
	}

	return response.Success(c, "Leaderboard retrieved", entries)
}

// Me handles the caller's own donation summary
// @Summary My donation summary
// @Description The authenticated user's donation totals and eligibility
// @Tags Stats
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /stats/me [get]
func (h *StatsHandler) Me(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	summary, err := h.statsService.GetUserSummary(c.Context(), userID)
	if err != nil {
		return domainError(c, err)
	}

	return response.Success(c, "Donation summary retrieved", summary)
}

// User handles another user's donation summary
// @Summary User donation summary
// @Description A user's donation totals and eligibility by ID
// @Tags Stats
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /stats/users/{id} [get]
func (h *StatsHandler) User(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid user ID")
	}

	summary, err := h.statsService.GetUserSummary(c.Context(), uint(id))
	if err != nil {
		return domainError(c, err)
	}

	return response.Success(c, "Donation summary retrieved", summary)
}

// BloodGroups handles the blood group distribution
// @Summary Blood group distribution
// @Description Registered donor counts and completed donation counts per blood group
// @Tags Stats
// @Produce json
// @Success 200 {object} response.Response
// @Router /stats/blood-groups [get]
func (h *StatsHandler) BloodGroups(c *fiber.Ctx) error {
	counts, err := h.statsService.GetBloodGroupDistribution(c.Context())
	if err != nil {
		return domainError(c, err)
	}

	return response.Success(c, "Blood group distribution retrieved", counts)
}
