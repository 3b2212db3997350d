package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"bloodlink/internal/adapters/persistence/models"
	"bloodlink/internal/adapters/persistence/repositories"
	"bloodlink/internal/core/domain"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type DonationServiceSuite struct {
	suite.Suite
	db         *gorm.DB
	svc        *DonationService
	requestSvc *RequestService
	ctx        context.Context
	t0         time.Time
	donor      *models.User
	patient    *models.User
}

func TestDonationServiceSuite(t *testing.T) {
	suite.Run(t, new(DonationServiceSuite))
}

func (s *DonationServiceSuite) SetupTest() {
	s.db = newTestDB(s.T())
	s.ctx = context.Background()
	s.t0 = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	userRepo := repositories.NewUserRepository(s.db)
	requestRepo := repositories.NewRequestRepository(s.db)
	donationRepo := repositories.NewDonationRepository(s.db)

	s.svc = NewDonationService(donationRepo, requestRepo, userRepo)
	s.svc.now = fixedClock(s.t0)
	s.requestSvc = NewRequestService(requestRepo, userRepo)
	s.requestSvc.now = fixedClock(s.t0)

	s.donor = createDonor(s.T(), s.db, "donor@example.com", "B+", nil)
	s.patient = createPatient(s.T(), s.db, "patient@example.com")
}

func (s *DonationServiceSuite) createInput(units int) *CreateDonationInput {
	return &CreateDonationInput{
		Hospital: "City Hospital",
		City:     "Pune",
		Units:    units,
	}
}

func (s *DonationServiceSuite) TestCreateSnapshotsBloodGroupAndPoints() {
	record, err := s.svc.Create(s.ctx, s.donor.ID, s.createInput(1))
	s.Require().NoError(err)
	s.Equal("B+", record.BloodGroup)
	s.Equal(50, record.Points)
	s.Equal(domain.DonationPending, record.Status)
	s.True(record.Date.Equal(s.t0))
}

func (s *DonationServiceSuite) TestCreateLinkedToRequest() {
	request, err := s.requestSvc.Create(s.ctx, s.patient.ID, &CreateRequestInput{
		PatientName: "P", BloodGroup: "B+", Urgency: "urgent", UnitsNeeded: 2,
		Hospital: "City Hospital", City: "Pune", ContactPhone: "9900112233",
	})
	s.Require().NoError(err)

	input := s.createInput(2)
	input.RequestID = &request.ID

	record, err := s.svc.Create(s.ctx, s.donor.ID, input)
	s.Require().NoError(err)
	s.Equal(100, record.Points) // 50 base + 25 link + 25 extra unit

	// Donor lands in the request's fulfilled set
	var count int64
	s.db.Model(&models.RequestFulfillment{}).
		Where("request_id = ? AND donor_id = ?", request.ID, s.donor.ID).
		Count(&count)
	s.Equal(int64(1), count)
}

func (s *DonationServiceSuite) TestCreateLinkedToUnknownRequest() {
	missing := uint(9999)
	input := s.createInput(1)
	input.RequestID = &missing

	_, err := s.svc.Create(s.ctx, s.donor.ID, input)
	s.ErrorIs(err, domain.ErrRequestNotFound)
}

func (s *DonationServiceSuite) TestCreateEligibilityGate() {
	// Patient role can never record a donation
	_, err := s.svc.Create(s.ctx, s.patient.ID, s.createInput(1))
	s.ErrorIs(err, domain.ErrIneligibleDonor)

	// Donor inside the cooldown window
	last := s.t0.AddDate(0, 0, -89)
	recent := createDonor(s.T(), s.db, "recent@example.com", "A-", &last)
	_, err = s.svc.Create(s.ctx, recent.ID, s.createInput(1))
	s.ErrorIs(err, domain.ErrIneligibleDonor)

	// Exactly at the cooldown boundary the donor is eligible again
	boundary := s.t0.AddDate(0, 0, -90)
	ready := createDonor(s.T(), s.db, "ready@example.com", "A-", &boundary)
	_, err = s.svc.Create(s.ctx, ready.ID, s.createInput(1))
	s.NoError(err)

	// Unavailable donor
	away := createDonor(s.T(), s.db, "away@example.com", "A-", nil)
	s.Require().NoError(s.db.Model(away).Update("is_available", false).Error)
	_, err = s.svc.Create(s.ctx, away.ID, s.createInput(1))
	s.ErrorIs(err, domain.ErrIneligibleDonor)
}

func (s *DonationServiceSuite) TestCreateRejectsInvalidUnits() {
	_, err := s.svc.Create(s.ctx, s.donor.ID, s.createInput(0))
	s.ErrorIs(err, domain.ErrValidation)

	_, err = s.svc.Create(s.ctx, s.donor.ID, s.createInput(3))
	s.ErrorIs(err, domain.ErrValidation)
}

func (s *DonationServiceSuite) TestCompleteAppliesCounterExactlyOnce() {
	record, err := s.svc.Create(s.ctx, s.donor.ID, s.createInput(1))
	s.Require().NoError(err)

	completed, err := s.svc.Complete(s.ctx, record.ID, s.donor.ID)
	s.Require().NoError(err)
	s.Equal(domain.DonationCompleted, completed.Status)

	var donor models.User
	s.Require().NoError(s.db.First(&donor, s.donor.ID).Error)
	s.Equal(1, donor.DonationCount)
	s.Require().NotNil(donor.LastDonation)
	s.True(donor.LastDonation.Equal(s.t0))

	// Completing again fails and must not double-count
	_, err = s.svc.Complete(s.ctx, record.ID, s.donor.ID)
	s.ErrorIs(err, domain.ErrInvalidState)

	s.Require().NoError(s.db.First(&donor, s.donor.ID).Error)
	s.Equal(1, donor.DonationCount)
}

func (s *DonationServiceSuite) TestCompleteConcurrentCallsCountOnce() {
	record, err := s.svc.Create(s.ctx, s.donor.ID, s.createInput(1))
	s.Require().NoError(err)

	const attempts = 4
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.svc.Complete(s.ctx, record.ID, s.donor.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	// The status guard lets exactly one caller through
	var succeeded int
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		s.ErrorIs(err, domain.ErrInvalidState)
	}
	s.Equal(1, succeeded)

	var donor models.User
	s.Require().NoError(s.db.First(&donor, s.donor.ID).Error)
	s.Equal(1, donor.DonationCount)
}

func (s *DonationServiceSuite) TestCompleteOwnership() {
	record, err := s.svc.Create(s.ctx, s.donor.ID, s.createInput(1))
	s.Require().NoError(err)

	other := createDonor(s.T(), s.db, "other@example.com", "O+", nil)
	_, err = s.svc.Complete(s.ctx, record.ID, other.ID)
	s.ErrorIs(err, domain.ErrForbidden)
}

func (s *DonationServiceSuite) TestUpdateRecomputesPoints() {
	record, err := s.svc.Create(s.ctx, s.donor.ID, s.createInput(1))
	s.Require().NoError(err)
	s.Equal(50, record.Points)

	updated, err := s.svc.Update(s.ctx, record.ID, s.donor.ID, &UpdateDonationInput{Units: 2})
	s.Require().NoError(err)
	s.Equal(2, updated.Units)
	s.Equal(75, updated.Points)
}

func (s *DonationServiceSuite) TestUpdateAfterCompletionFails() {
	record, err := s.svc.Create(s.ctx, s.donor.ID, s.createInput(1))
	s.Require().NoError(err)

	_, err = s.svc.Complete(s.ctx, record.ID, s.donor.ID)
	s.Require().NoError(err)

	_, err = s.svc.Update(s.ctx, record.ID, s.donor.ID, &UpdateDonationInput{Hospital: "Other"})
	s.ErrorIs(err, domain.ErrInvalidState)
}

func (s *DonationServiceSuite) TestCancelHasNoCounterSideEffects() {
	record, err := s.svc.Create(s.ctx, s.donor.ID, s.createInput(1))
	s.Require().NoError(err)

	s.Require().NoError(s.svc.Cancel(s.ctx, record.ID, s.donor.ID))

	got, err := s.svc.GetByID(s.ctx, record.ID)
	s.Require().NoError(err)
	s.Equal(domain.DonationCancelled, got.Status)

	var donor models.User
	s.Require().NoError(s.db.First(&donor, s.donor.ID).Error)
	s.Equal(0, donor.DonationCount)
	s.Nil(donor.LastDonation)

	// Cancelled is terminal
	s.ErrorIs(s.svc.Cancel(s.ctx, record.ID, s.donor.ID), domain.ErrInvalidState)
	_, err = s.svc.Complete(s.ctx, record.ID, s.donor.ID)
	s.ErrorIs(err, domain.ErrInvalidState)
}

func (s *DonationServiceSuite) TestListMine() {
	_, err := s.svc.Create(s.ctx, s.donor.ID, s.createInput(1))
	s.Require().NoError(err)
	_, err = s.svc.Create(s.ctx, s.donor.ID, s.createInput(2))
	s.Require().NoError(err)

	records, err := s.svc.ListMine(s.ctx, s.donor.ID)
	s.Require().NoError(err)
	s.Len(records, 2)
}
