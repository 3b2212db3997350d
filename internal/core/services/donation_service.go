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

// DonationService records donations, applies the points calculator,
// and owns the only path that mutates donor aggregate counters
type DonationService struct {
	donationRepo *repositories.DonationRepository
	requestRepo  *repositories.RequestRepository
	userRepo     repositories.UserRepository
	now          func() time.Time
}

// NewDonationService creates a new donation service
func NewDonationService(
	donationRepo *repositories.DonationRepository,
	requestRepo *repositories.RequestRepository,
	userRepo repositories.UserRepository,
) *DonationService {
	return &DonationService{
		donationRepo: donationRepo,
		requestRepo:  requestRepo,
		userRepo:     userRepo,
		now:          time.Now,
	}
}

// CreateDonationInput represents create donation input
type CreateDonationInput struct {
	Hospital  string `json:"hospital" validate:"required"`
	City      string `json:"city" validate:"required"`
	Units     int    `json:"units" validate:"required,min=1,max=2"`
	RequestID *uint  `json:"request_id,omitempty"`
}

// Create records a new pending donation. The eligibility gate is hard:
// an ineligible donor cannot create a record. When linked to a request
// the donor is registered into its fulfilled set immediately; the
// request's own status transition happens via RequestService.Fulfill.
func (s *DonationService) Create(ctx context.Context, donorID uint, input *CreateDonationInput) (*models.DonationRecord, error) {
	donor, err := s.userRepo.GetByID(ctx, donorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	now := s.now()
	if !domain.CanDonate(now, donor.ToDomain()) {
		return nil, domain.ErrIneligibleDonor
	}
	if donor.BloodGroup == nil {
		return nil, fmt.Errorf("%w: donor has no blood group on record", domain.ErrValidation)
	}
	if input.Units < domain.MinUnitsContributed || input.Units > domain.MaxUnitsContributed {
		return nil, fmt.Errorf("%w: units must be between %d and %d",
			domain.ErrValidation, domain.MinUnitsContributed, domain.MaxUnitsContributed)
	}
	if input.Hospital == "" {
		return nil, fmt.Errorf("%w: hospital is required", domain.ErrValidation)
	}

	if input.RequestID != nil {
		if _, err := s.requestRepo.GetByID(ctx, *input.RequestID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.ErrRequestNotFound
			}
			return nil, err
		}
	}

	record := &models.DonationRecord{
		DonorID:    donorID,
		BloodGroup: *donor.BloodGroup, // Snapshot; later profile edits do not touch it
		RequestID:  input.RequestID,
		Hospital:   input.Hospital,
		City:       input.City,
		Date:       now,
		Units:      input.Units,
		Points:     domain.DonationPoints(input.Units, input.RequestID != nil),
		Status:     domain.DonationPending,
	}

	if err := s.donationRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	if input.RequestID != nil {
		if err := s.requestRepo.AddFulfillment(ctx, *input.RequestID, donorID); err != nil {
			return nil, err
		}
	}

	log.Printf("✅ Donation #%d created: donor %d, %d unit(s), %d points",
		record.ID, donorID, record.Units, record.Points)
	return record, nil
}

// GetByID gets a donation record by ID
func (s *DonationService) GetByID(ctx context.Context, id uint) (*models.DonationRecord, error) {
	record, err := s.donationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDonationNotFound
		}
		return nil, err
	}
	return record, nil
}

// ListMine returns all donation records for a donor
func (s *DonationService) ListMine(ctx context.Context, donorID uint) ([]models.DonationRecord, error) {
	return s.donationRepo.ListByDonor(ctx, donorID)
}

// Complete transitions a pending record to COMPLETED. The status write,
// donor counter increment, and last-donation date are one storage
// transaction, so concurrent completions of the same record increment
// the counter exactly once; the losing caller gets ErrInvalidState.
func (s *DonationService) Complete(ctx context.Context, recordID, byUserID uint) (*models.DonationRecord, error) {
	record, err := s.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if record.DonorID != byUserID {
		return nil, domain.ErrForbidden
	}
	if record.Status != domain.DonationPending {
		return nil, domain.ErrInvalidState
	}

	ok, err := s.donationRepo.Complete(ctx, record)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidState
	}

	record, _ = s.donationRepo.GetByID(ctx, recordID)
	log.Printf("✅ Donation #%d completed: donor %d earned %d points", recordID, record.DonorID, record.Points)
	return record, nil
}

// UpdateDonationInput represents update donation input
type UpdateDonationInput struct {
	Hospital string `json:"hospital,omitempty"`
	City     string `json:"city,omitempty"`
	Units    int    `json:"units,omitempty"`
}

// Update updates a pending record owned by the caller; a unit change
// recomputes points. Completed and cancelled records are immutable.
func (s *DonationService) Update(ctx context.Context, recordID, byUserID uint, input *UpdateDonationInput) (*models.DonationRecord, error) {
	record, err := s.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if record.DonorID != byUserID {
		return nil, domain.ErrForbidden
	}
	if record.Status != domain.DonationPending {
		return nil, domain.ErrInvalidState
	}

	updates := map[string]interface{}{}
	if input.Hospital != "" {
		updates["hospital"] = input.Hospital
	}
	if input.City != "" {
		updates["city"] = input.City
	}
	if input.Units != 0 && input.Units != record.Units {
		if input.Units < domain.MinUnitsContributed || input.Units > domain.MaxUnitsContributed {
			return nil, fmt.Errorf("%w: units must be between %d and %d",
				domain.ErrValidation, domain.MinUnitsContributed, domain.MaxUnitsContributed)
		}
		updates["units"] = input.Units
		updates["points"] = domain.DonationPoints(input.Units, record.RequestID != nil)
	}
	if len(updates) == 0 {
		return record, nil
	}

	ok, err := s.donationRepo.UpdatePendingFields(ctx, recordID, updates)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidState
	}

	return s.donationRepo.GetByID(ctx, recordID)
}

// Cancel cancels a pending record owned by the caller. No counter side
// effects; cancelled is terminal.
func (s *DonationService) Cancel(ctx context.Context, recordID, byUserID uint) error {
	record, err := s.GetByID(ctx, recordID)
	if err != nil {
		return err
	}
	if record.DonorID != byUserID {
		return domain.ErrForbidden
	}
	if record.Status != domain.DonationPending {
		return domain.ErrInvalidState
	}

	ok, err := s.donationRepo.Cancel(ctx, recordID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrInvalidState
	}

	log.Printf("✅ Donation #%d cancelled by donor %d", recordID, byUserID)
	return nil
}
