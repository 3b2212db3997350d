package handlers

import (
	"bloodlink/internal/core/services"
	"bloodlink/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DonationHandler handles donation record endpoints
type DonationHandler struct {
	donationService *services.DonationService
}

// NewDonationHandler creates a new donation handler
func NewDonationHandler(donationService *services.DonationService) *DonationHandler {
	return &DonationHandler{donationService: donationService}
}

// Create handles donation record creation
// @Summary Record donation
// @Description Create a pending donation record for the authenticated donor
// @Tags Donations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateDonationInput true "Donation data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /donations [post]
func (h *DonationHandler) Create(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.CreateDonationInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	record, err := h.donationService.Create(c.Context(), userID, &input)
	if err != nil {
		return domainError(c, err)
	}

	return response.Created(c, "Donation recorded successfully", record)
}

// ListMine handles listing the caller's donation history
// @Summary List my donations
// @Description List every donation record of the authenticated donor, newest first
// @Tags Donations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /donations/mine [get]
func (h *DonationHandler) ListMine(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	records, err := h.donationService.ListMine(c.Context(), userID)
	if err != nil {
		return domainError(c, err)
	}

	return response.Success(c, "Donation records retrieved", records)
}

// Get handles single donation record retrieval
// @Summary Get donation record
// @Description Get a donation record by ID
// @Tags Donations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Donation ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /donations/{id} [get]
func (h *DonationHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid donation ID")
	}

	record, err := h.donationService.GetByID(c.Context(), uint(id))
	if err != nil {
		return domainError(c, err)
	}

	return response.Success(c, "Donation record retrieved", record)
}

// Update handles pending donation record update
// @Summary Update donation record
// @Description Update a pending record owned by the caller; a unit change recomputes points
// @Tags Donations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Donation ID"
// @Param body body services.UpdateDonationInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /donations/{id} [patch]
func (h *DonationHandler) Update(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid donation ID")
	}

	var input services.UpdateDonationInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	record, err := h.donationService.Update(c.Context(), uint(id), userID, &input)
	if err != nil {
		return domainError(c, err)
	}

	return response.Success(c, "Donation record updated", record)
}

// Complete handles donation completion
// @Summary Complete donation
// @Description Mark a pending donation as completed and award its points
// @Tags Donations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Donation ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /donations/{id}/complete [post]
func (h *DonationHandler) Complete(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid donation ID")
	}

	record, err := h.donationService.Complete(c.Context(), uint(id), userID)
	if err != nil {
		return domainError(c, err)
	}

	return response.Success(c, "Donation completed", record)
}

// Cancel handles donation cancellation
// @Summary Cancel donation
// @Description Cancel a pending donation record owned by the caller
// @Tags Donations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Donation ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /donations/{id}/cancel [post]
func (h *DonationHandler) Cancel(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid donation ID")
	}

	if err := h.donationService.Cancel(c.Context(), uint(id), userID); err != nil {
		return domainError(c, err)
	}

	return response.Success(c, "Donation cancelled", nil)
}
