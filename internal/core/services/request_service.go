package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"bloodlink/internal/adapters/persistence/models"
	"bloodlink/internal/adapters/persistence/repositories"
	"bloodlink/internal/core/domain"

	"gorm.io/gorm"
)

// RequestService owns the blood request lifecycle: urgency-derived
// expiry, lazy expiry reconciliation, and the fulfillment transition
type RequestService struct {
	requestRepo *repositories.RequestRepository
	userRepo    repositories.UserRepository
	now         func() time.Time
}

// NewRequestService creates a new request service
func NewRequestService(requestRepo *repositories.RequestRepository, userRepo repositories.UserRepository) *RequestService {
	return &RequestService{
		requestRepo: requestRepo,
		userRepo:    userRepo,
		now:         time.Now,
	}
}

// CreateRequestInput represents create request input
type CreateRequestInput struct {
	PatientName  string `json:"patient_name" validate:"required"`
	BloodGroup   string `json:"blood_group" validate:"required"`
	Urgency      string `json:"urgency" validate:"required"`
	UnitsNeeded  int    `json:"units_needed" validate:"required,min=1,max=10"`
	Hospital     string `json:"hospital" validate:"required"`
	City         string `json:"city" validate:"required"`
	ContactPhone string `json:"contact_phone" validate:"required"`
	Description  string `json:"description,omitempty"`
}

// Create creates a new blood request with an urgency-derived expiry.
// The expiry is fixed here and never recomputed.
func (s *RequestService) Create(ctx context.Context, requesterID uint, input *CreateRequestInput) (*models.BloodRequest, error) {
	bloodGroup := domain.BloodGroup(input.BloodGroup)
	if !bloodGroup.IsValid() {
		return nil, fmt.Errorf("%w: unknown blood group %q", domain.ErrValidation, input.BloodGroup)
	}
	urgency := domain.Urgency(input.Urgency)
	if !urgency.IsValid() {
		return nil, fmt.Errorf("%w: unknown urgency %q", domain.ErrValidation, input.Urgency)
	}
	if input.UnitsNeeded < domain.MinUnitsNeeded || input.UnitsNeeded > domain.MaxUnitsNeeded {
		return nil, fmt.Errorf("%w: units_needed must be between %d and %d",
			domain.ErrValidation, domain.MinUnitsNeeded, domain.MaxUnitsNeeded)
	}
	if input.PatientName == "" || input.Hospital == "" {
		return nil, fmt.Errorf("%w: patient_name and hospital are required", domain.ErrValidation)
	}

	now := s.now()
	request := &models.BloodRequest{
		RequesterID:  requesterID,
		PatientName:  input.PatientName,
		BloodGroup:   string(bloodGroup),
		Urgency:      string(urgency),
		Priority:     domain.UrgencyPriority(urgency),
		UnitsNeeded:  input.UnitsNeeded,
		Hospital:     input.Hospital,
		City:         input.City,
		ContactPhone: input.ContactPhone,
		Description:  input.Description,
		Status:       domain.RequestActive,
		ExpiresAt:    now.Add(domain.RequestTTL(urgency)),
	}

	if err := s.requestRepo.Create(ctx, request); err != nil {
		return nil, err
	}

	log.Printf("✅ Blood request created: #%d %s %s (expires %s)",
		request.ID, request.Urgency, request.BloodGroup, request.ExpiresAt.Format(time.RFC3339))
	return request, nil
}

// GetByID returns a request, reconciling an overdue status first
func (s *RequestService) GetByID(ctx context.Context, id uint) (*models.BloodRequest, error) {
	if err := s.requestRepo.MarkExpired(ctx, id, s.now()); err != nil {
		return nil, err
	}

	request, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, err
	}
	return request, nil
}

// ListActive returns active requests ordered by urgency tier then age
func (s *RequestService) ListActive(ctx context.Context) ([]models.BloodRequest, error) {
	if _, err := s.requestRepo.ExpireOverdue(ctx, s.now()); err != nil {
		return nil, err
	}
	return s.requestRepo.ListActive(ctx, s.now())
}

// ListMine returns all requests created by a user
func (s *RequestService) ListMine(ctx context.Context, requesterID uint) ([]models.BloodRequest, error) {
	if _, err := s.requestRepo.ExpireOverdue(ctx, s.now()); err != nil {
		return nil, err
	}
	return s.requestRepo.ListByRequester(ctx, requesterID)
}

// Fulfill transitions an active, unexpired request to FULFILLED and
// registers the donor. The transition is optimistic: if a concurrent
// caller won the status write, this caller gets ErrInvalidState.
func (s *RequestService) Fulfill(ctx context.Context, requestID, donorID uint) (*models.BloodRequest, error) {
	request, err := s.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	donor, err := s.userRepo.GetByID(ctx, donorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	if !donor.IsDonor() {
		return nil, domain.ErrNotADonor
	}

	if request.Status == domain.RequestExpired {
		return nil, domain.ErrRequestExpired
	}
	if request.Status != domain.RequestActive {
		return nil, domain.ErrInvalidState
	}

	ok, err := s.requestRepo.TransitionStatus(ctx, requestID, domain.RequestActive, domain.RequestFulfilled)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidState
	}

	if err := s.requestRepo.AddFulfillment(ctx, requestID, donorID); err != nil {
		return nil, err
	}

	request, _ = s.requestRepo.GetByID(ctx, requestID)
	log.Printf("✅ Request #%d fulfilled by donor %d", requestID, donorID)
	return request, nil
}

// UpdateRequestInput represents update request input
type UpdateRequestInput struct {
	PatientName  string `json:"patient_name,omitempty"`
	UnitsNeeded  int    `json:"units_needed,omitempty"`
	Hospital     string `json:"hospital,omitempty"`
	ContactPhone string `json:"contact_phone,omitempty"`
	Description  string `json:"description,omitempty"`
}

// Update updates a request while it is active and unexpired; only the
// original requester may update
func (s *RequestService) Update(ctx context.Context, requestID, byUserID uint, input *UpdateRequestInput) (*models.BloodRequest, error) {
	request, err := s.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.RequesterID != byUserID {
		return nil, domain.ErrForbidden
	}
	if request.Status == domain.RequestExpired {
		return nil, domain.ErrRequestExpired
	}
	if request.Status != domain.RequestActive {
		return nil, domain.ErrInvalidState
	}

	updates := map[string]interface{}{}
	if input.PatientName != "" {
		updates["patient_name"] = input.PatientName
	}
	if input.UnitsNeeded != 0 {
		if input.UnitsNeeded < domain.MinUnitsNeeded || input.UnitsNeeded > domain.MaxUnitsNeeded {
			return nil, fmt.Errorf("%w: units_needed must be between %d and %d",
				domain.ErrValidation, domain.MinUnitsNeeded, domain.MaxUnitsNeeded)
		}
		updates["units_needed"] = input.UnitsNeeded
	}
	if input.Hospital != "" {
		updates["hospital"] = input.Hospital
	}
	if input.ContactPhone != "" {
		updates["contact_phone"] = input.ContactPhone
	}
	if input.Description != "" {
		updates["description"] = input.Description
	}
	if len(updates) == 0 {
		return request, nil
	}

	ok, err := s.requestRepo.UpdateActiveFields(ctx, requestID, updates)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidState
	}

	return s.requestRepo.GetByID(ctx, requestID)
}

// Cancel cancels an active, unexpired request; only the original
// requester may cancel
func (s *RequestService) Cancel(ctx context.Context, requestID, byUserID uint) error {
	request, err := s.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if request.RequesterID != byUserID {
		return domain.ErrForbidden
	}
	if request.Status == domain.RequestExpired {
		return domain.ErrRequestExpired
	}
	if request.Status != domain.RequestActive {
		return domain.ErrInvalidState
	}

	ok, err := s.requestRepo.TransitionStatus(ctx, requestID, domain.RequestActive, domain.RequestCancelled)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrInvalidState
	}

	log.Printf("✅ Request #%d cancelled by user %d", requestID, byUserID)
	return nil
}

// FindCompatibleDonors returns available donors compatible with the
// requested group, ordered by donation count then registration time
func (s *RequestService) FindCompatibleDonors(ctx context.Context, bloodGroup, city string) ([]*models.User, error) {
	requested := domain.BloodGroup(bloodGroup)
	if !requested.IsValid() {
		return nil, fmt.Errorf("%w: unknown blood group %q", domain.ErrValidation, bloodGroup)
	}

	compatible := domain.CompatibleDonors(requested)
	groups := make([]string, len(compatible))
	for i, g := range compatible {
		groups[i] = string(g)
	}

	return s.userRepo.FindAvailableDonors(ctx, groups, city)
}
