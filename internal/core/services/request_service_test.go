package services

import (
	"context"
	"testing"
	"time"

	"bloodlink/internal/adapters/persistence/models"
	"bloodlink/internal/adapters/persistence/repositories"
	"bloodlink/internal/core/domain"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type RequestServiceSuite struct {
	suite.Suite
	db      *gorm.DB
	svc     *RequestService
	ctx     context.Context
	t0      time.Time
	patient *models.User
	donor   *models.User
}

func TestRequestServiceSuite(t *testing.T) {
	suite.Run(t, new(RequestServiceSuite))
}

func (s *RequestServiceSuite) SetupTest() {
	s.db = newTestDB(s.T())
	s.ctx = context.Background()
	s.t0 = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	userRepo := repositories.NewUserRepository(s.db)
	requestRepo := repositories.NewRequestRepository(s.db)
	s.svc = NewRequestService(requestRepo, userRepo)
	s.svc.now = fixedClock(s.t0)

	s.patient = createPatient(s.T(), s.db, "patient@example.com")
	s.donor = createDonor(s.T(), s.db, "donor@example.com", "O-", nil)
}

func (s *RequestServiceSuite) createInput(urgency string) *CreateRequestInput {
	return &CreateRequestInput{
		PatientName:  "Test Patient",
		BloodGroup:   "A+",
		Urgency:      urgency,
		UnitsNeeded:  2,
		Hospital:     "City Hospital",
		City:         "Pune",
		ContactPhone: "9900112233",
	}
}

func (s *RequestServiceSuite) TestCreateSetsUrgencyDerivedExpiry() {
	tests := []struct {
		urgency string
		ttl     time.Duration
	}{
		{"critical", 24 * time.Hour},
		{"urgent", 72 * time.Hour},
		{"normal", 7 * 24 * time.Hour},
	}

	for _, tt := range tests {
		request, err := s.svc.Create(s.ctx, s.patient.ID, s.createInput(tt.urgency))
		s.Require().NoError(err)
		s.Equal(domain.RequestActive, request.Status)
		s.True(request.ExpiresAt.Equal(s.t0.Add(tt.ttl)), "urgency %s", tt.urgency)
	}
}

func (s *RequestServiceSuite) TestCreateRejectsInvalidInput() {
	input := s.createInput("critical")
	input.BloodGroup = "C+"
	_, err := s.svc.Create(s.ctx, s.patient.ID, input)
	s.ErrorIs(err, domain.ErrValidation)

	input = s.createInput("someday")
	_, err = s.svc.Create(s.ctx, s.patient.ID, input)
	s.ErrorIs(err, domain.ErrValidation)

	input = s.createInput("critical")
	input.UnitsNeeded = 11
	_, err = s.svc.Create(s.ctx, s.patient.ID, input)
	s.ErrorIs(err, domain.ErrValidation)
}

func (s *RequestServiceSuite) TestGetReconcilesOverdueRequest() {
	request, err := s.svc.Create(s.ctx, s.patient.ID, s.createInput("critical"))
	s.Require().NoError(err)

	// One hour past the 24h critical TTL
	s.svc.now = fixedClock(s.t0.Add(25 * time.Hour))

	got, err := s.svc.GetByID(s.ctx, request.ID)
	s.Require().NoError(err)
	s.Equal(domain.RequestExpired, got.Status)
}

func (s *RequestServiceSuite) TestExpiryBoundaryIsStrict() {
	request, err := s.svc.Create(s.ctx, s.patient.ID, s.createInput("critical"))
	s.Require().NoError(err)

	// At the exact expiry instant the request is still active
	s.svc.now = fixedClock(s.t0.Add(24 * time.Hour))

	got, err := s.svc.GetByID(s.ctx, request.ID)
	s.Require().NoError(err)
	s.Equal(domain.RequestActive, got.Status)

	requests, err := s.svc.ListActive(s.ctx)
	s.Require().NoError(err)
	s.Len(requests, 1)

	// One second past it the request expires
	s.svc.now = fixedClock(s.t0.Add(24*time.Hour + time.Second))

	got, err = s.svc.GetByID(s.ctx, request.ID)
	s.Require().NoError(err)
	s.Equal(domain.RequestExpired, got.Status)
}

func (s *RequestServiceSuite) TestGetUnknownRequest() {
	_, err := s.svc.GetByID(s.ctx, 9999)
	s.ErrorIs(err, domain.ErrRequestNotFound)
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *RequestServiceSuite) TestListActiveOrdersByUrgencyThenAge() {
	normal, err := s.svc.Create(s.ctx, s.patient.ID, s.createInput("normal"))
	s.Require().NoError(err)
	urgentOld, err := s.svc.Create(s.ctx, s.patient.ID, s.createInput("urgent"))
	s.Require().NoError(err)
	urgentNew, err := s.svc.Create(s.ctx, s.patient.ID, s.createInput("urgent"))
	s.Require().NoError(err)
	critical, err := s.svc.Create(s.ctx, s.patient.ID, s.createInput("critical"))
	s.Require().NoError(err)

	// Force distinct creation instants for the age tie-break
	s.Require().NoError(s.db.Model(urgentOld).Update("created_at", s.t0.Add(-2*time.Hour)).Error)
	s.Require().NoError(s.db.Model(urgentNew).Update("created_at", s.t0.Add(-1*time.Hour)).Error)

	requests, err := s.svc.ListActive(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(requests, 4)
	s.Equal(critical.ID, requests[0].ID)
	s.Equal(urgentOld.ID, requests[1].ID)
	s.Equal(urgentNew.ID, requests[2].ID)
	s.Equal(normal.ID, requests[3].ID)
}

func (s *RequestServiceSuite) TestListActiveExcludesExpired() {
	_, err := s.svc.Create(s.ctx, s.patient.ID, s.createInput("critical"))
	s.Require().NoError(err)
	kept, err := s.svc.Create(s.ctx, s.patient.ID, s.createInput("normal"))
	s.Require().NoError(err)

	s.svc.now = fixedClock(s.t0.Add(25 * time.Hour))

	requests, err := s.svc.ListActive(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(requests, 1)
	s.Equal(kept.ID, requests[0].ID)
}

func (s *RequestServiceSuite) TestFulfill() {
	request, err := s.svc.Create(s.ctx, s.patient.ID, s.createInput("urgent"))
	s.Require().NoError(err)

	fulfilled, err := s.svc.Fulfill(s.ctx, request.ID, s.donor.ID)
	s.Require().NoError(err)
	s.Equal(domain.RequestFulfilled, fulfilled.Status)
	s.Require().Len(fulfilled.FulfilledBy, 1)
	s.Equal(s.donor.ID, fulfilled.FulfilledBy[0].DonorID)

	// A second fulfillment attempt loses on the status guard
	_, err = s.svc.Fulfill(s.ctx, request.ID, s.donor.ID)
	s.ErrorIs(err, domain.ErrInvalidState)
}

func (s *RequestServiceSuite) TestFulfillByNonDonor() {
	request, err := s.svc.Create(s.ctx, s.patient.ID, s.createInput("urgent"))
	s.Require().NoError(err)

	_, err = s.svc.Fulfill(s.ctx, request.ID, s.patient.ID)
	s.ErrorIs(err, domain.ErrNotADonor)
}

func (s *RequestServiceSuite) TestFulfillExpiredRequest() {
	request, err := s.svc.Create(s.ctx, s.patient.ID, s.createInput("critical"))
	s.Require().NoError(err)

	s.svc.now = fixedClock(s.t0.Add(25 * time.Hour))

	_, err = s.svc.Fulfill(s.ctx, request.ID, s.donor.ID)
	s.ErrorIs(err, domain.ErrInvalidState)
}

func (s *RequestServiceSuite) TestUpdateOwnership() {
	request, err := s.svc.Create(s.ctx, s.patient.ID, s.createInput("normal"))
	s.Require().NoError(err)

	_, err = s.svc.Update(s.ctx, request.ID, s.donor.ID, &UpdateRequestInput{Hospital: "Other"})
	s.ErrorIs(err, domain.ErrForbidden)

	updated, err := s.svc.Update(s.ctx, request.ID, s.patient.ID, &UpdateRequestInput{Hospital: "Other"})
	s.Require().NoError(err)
	s.Equal("Other", updated.Hospital)
}

func (s *RequestServiceSuite) TestCancel() {
	request, err := s.svc.Create(s.ctx, s.patient.ID, s.createInput("normal"))
	s.Require().NoError(err)

	s.ErrorIs(s.svc.Cancel(s.ctx, request.ID, s.donor.ID), domain.ErrForbidden)

	s.Require().NoError(s.svc.Cancel(s.ctx, request.ID, s.patient.ID))

	got, err := s.svc.GetByID(s.ctx, request.ID)
	s.Require().NoError(err)
	s.Equal(domain.RequestCancelled, got.Status)

	// Cancelled is terminal
	s.ErrorIs(s.svc.Cancel(s.ctx, request.ID, s.patient.ID), domain.ErrInvalidState)
}

func (s *RequestServiceSuite) TestFindCompatibleDonors() {
	// s.donor is O-; add more donors around the compatibility set
	oPos := createDonor(s.T(), s.db, "opos@example.com", "O+", nil)
	aPos := createDonor(s.T(), s.db, "apos@example.com", "A+", nil)
	createDonor(s.T(), s.db, "bneg@example.com", "B-", nil)

	unavailable := createDonor(s.T(), s.db, "away@example.com", "A+", nil)
	s.Require().NoError(s.db.Model(unavailable).Update("is_available", false).Error)

	// Most experienced donor ranks first
	s.Require().NoError(s.db.Model(aPos).Update("donation_count", 5).Error)

	donors, err := s.svc.FindCompatibleDonors(s.ctx, "A+", "")
	s.Require().NoError(err)
	s.Require().Len(donors, 3)
	s.Equal(aPos.ID, donors[0].ID)

	ids := []uint{donors[0].ID, donors[1].ID, donors[2].ID}
	s.Contains(ids, s.donor.ID)
	s.Contains(ids, oPos.ID)

	_, err = s.svc.FindCompatibleDonors(s.ctx, "Z+", "")
	s.ErrorIs(err, domain.ErrValidation)
}
