package handlers

import (
	"bloodlink/internal/core/services"
	"bloodlink/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// RequestHandler handles blood request endpoints
type RequestHandler struct {
	requestService *services.RequestService
}

// NewRequestHandler creates a new request handler
func NewRequestHandler(requestService *services.RequestService) *RequestHandler {
	return &RequestHandler{requestService: requestService}
}

// Create handles blood request creation
// @Summary Create blood request
// @Description Create a new blood request with an urgency-derived expiry
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateRequestInput true "Request data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /requests [post]
func (h *RequestHandler) Create(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.CreateRequestInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	request, err := h.requestService.Create(c.Context(), userID, &input)
	if err != nil {
		return domainError(c, err)
	}

	return response.Created(c, "Blood request created successfully", request)
}

// List handles active request listing
// @Summary List active blood requests
// @Description List active requests, most urgent tier first, oldest first within a tier
// @Tags Requests
// @Produce json
// @Success 200 {object} response.Response
// @Router /requests [get]
func (h *RequestHandler) List(c *fiber.Ctx) error {
	requests, err := h.requestService.ListActive(c.Context())
	if err != nil {
		return domainError(c, err)
	}

	return response.Success(c, "Active blood requests retrieved", requests)
}

// ListMine handles listing the caller's own requests
// @Summary List my blood requests
// @Description List every request created by the authenticated user
// @Tags Requests
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /requests/mine [get]
func (h *RequestHandler) ListMine(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	requests, err := h.requestService.ListMine(c.Context(), userID)
	if err != nil {
		return domainError(c, err)
	}

	return response.Success(c, "Blood requests retrieved", requests)
}

// Get handles single request retrieval
// @Summary Get blood request
// @Description Get a blood request by ID
// @Tags Requests
// @Produce json
// @Param id path int true "Request ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /requests/{id} [get]
func (h *RequestHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid request ID")
	}

	request, err := h.requestService.GetByID(c.Context(), uint(id))
	if err != nil {
		return domainError(c, err)
	}

	return response.Success(c, "Blood request retrieved", request)
}

// Update handles request update
// @Summary Update blood request
// @Description Update an active request; only the original requester may update
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Param body body services.UpdateRequestInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /requests/{id} [patch]
func (h *RequestHandler) Update(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid request ID")
	}

	var input services.UpdateRequestInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	request, err := h.requestService.Update(c.Context(), uint(id), userID, &input)
	if err != nil {
		return domainError(c, err)
	}

	return response.Success(c, "Blood request updated", request)
}

// Fulfill handles request fulfillment by a donor
// @Summary Fulfill blood request
// @Description Mark an active request as fulfilled by the authenticated donor
// @Tags Requests
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /requests/{id}/fulfill [post]
func (h *RequestHandler) Fulfill(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid request ID")
	}

	request, err := h.requestService.Fulfill(c.Context(), uint(id), userID)
	if err != nil {
		return domainError(c, err)
	}

	return response.Success(c, "Blood request fulfilled", request)
}

// Cancel handles request cancellation
// @Summary Cancel blood request
// @Description Cancel an active request; only the original requester may cancel
// @Tags Requests
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /requests/{id}/cancel [post]
func (h *RequestHandler) Cancel(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid request ID")
	}

	if err := h.requestService.Cancel(c.Context(), uint(id), userID); err != nil {
		return domainError(c, err)
	}

	return response.Success(c, "Blood request cancelled", nil)
}

// Donors handles compatible donor lookup for a request's blood group
// @Summary Find compatible donors
// @Description List available donors compatible with a blood group, optionally filtered by city
// @Tags Requests
// @Produce json
// @Security BearerAuth
// @Param blood_group query string true "Requested blood group"
// @Param city query string false "City filter"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /requests/donors [get]
func (h *RequestHandler) Donors(c *fiber.Ctx) error {
	bloodGroup := c.Query("blood_group")
	if bloodGroup == "" {
		return response.BadRequest(c, "blood_group query parameter is required")
	}

	donors, err := h.requestService.FindCompatibleDonors(c.Context(), bloodGroup, c.Query("city"))
	if err != nil {
		return domainError(c, err)
	}

	results := make([]interface{}, 0, len(donors))
	for _, donor := range donors {
		results = append(results, donor.ToResponse())
	}

	return response.Success(c, "Compatible donors retrieved", results)
}
