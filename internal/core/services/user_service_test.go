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

type UserServiceSuite struct {
	suite.Suite
	db  *gorm.DB
	svc *UserService
	ctx context.Context
}

func TestUserServiceSuite(t *testing.T) {
	suite.Run(t, new(UserServiceSuite))
}

func (s *UserServiceSuite) SetupTest() {
	s.db = newTestDB(s.T())
	s.ctx = context.Background()

	userRepo := repositories.NewUserRepository(s.db)
	tokenRepo := repositories.NewRefreshTokenRepository(s.db)
	s.svc = NewUserService(userRepo, tokenRepo)
}

func (s *UserServiceSuite) TestUpdateProfileDonorFields() {
	donor := createDonor(s.T(), s.db, "donor@example.com", "O+", nil)

	off := false
	updated, err := s.svc.UpdateProfile(s.ctx, donor.ID, &UpdateProfileInput{
		City:        "Mumbai",
		IsAvailable: &off,
	})
	s.Require().NoError(err)
	s.Equal("Mumbai", updated.City)
	s.False(updated.IsAvailable)

	bg := "A-"
	updated, err = s.svc.UpdateProfile(s.ctx, donor.ID, &UpdateProfileInput{BloodGroup: &bg})
	s.Require().NoError(err)
	s.Require().NotNil(updated.BloodGroup)
	s.Equal("A-", *updated.BloodGroup)
}

func (s *UserServiceSuite) TestUpdateProfileRejectsDonorFieldsForPatients() {
	patient := createPatient(s.T(), s.db, "patient@example.com")

	on := true
	_, err := s.svc.UpdateProfile(s.ctx, patient.ID, &UpdateProfileInput{IsAvailable: &on})
	s.ErrorIs(err, domain.ErrValidation)

	bg := "A+"
	_, err = s.svc.UpdateProfile(s.ctx, patient.ID, &UpdateProfileInput{BloodGroup: &bg})
	s.ErrorIs(err, domain.ErrValidation)
}

func (s *UserServiceSuite) TestUpdateProfileUnknownUser() {
	_, err := s.svc.UpdateProfile(s.ctx, 9999, &UpdateProfileInput{City: "Delhi"})
	s.ErrorIs(err, domain.ErrUserNotFound)
}

func (s *UserServiceSuite) TestDeleteAccountCascades() {
	donor := createDonor(s.T(), s.db, "donor@example.com", "O+", nil)

	record := &models.DonationRecord{
		DonorID: donor.ID, BloodGroup: "O+", Hospital: "City Hospital",
		City: "Pune", Date: time.Now(), Units: 1, Points: 50,
		Status: domain.DonationCompleted,
	}
	s.Require().NoError(s.db.Create(record).Error)
	token := &models.RefreshToken{
		UserID: donor.ID, TokenHash: "hash", ExpiresAt: time.Now().Add(time.Hour),
	}
	s.Require().NoError(s.db.Create(token).Error)

	s.Require().NoError(s.svc.DeleteAccount(s.ctx, donor.ID))

	// User and donation records are soft-deleted
	var count int64
	s.db.Model(&models.User{}).Where("id = ?", donor.ID).Count(&count)
	s.Zero(count)
	s.db.Model(&models.DonationRecord{}).Where("donor_id = ?", donor.ID).Count(&count)
	s.Zero(count)

	// Sessions are revoked
	var stored models.RefreshToken
	s.Require().NoError(s.db.First(&stored, token.ID).Error)
	s.True(stored.IsRevoked())

	s.ErrorIs(s.svc.DeleteAccount(s.ctx, donor.ID), domain.ErrUserNotFound)
}

func (s *UserServiceSuite) TestList() {
	createDonor(s.T(), s.db, "a@example.com", "O+", nil)
	createDonor(s.T(), s.db, "b@example.com", "A+", nil)
	createPatient(s.T(), s.db, "c@example.com")

	users, total, err := s.svc.List(s.ctx, 0, 2)
	s.Require().NoError(err)
	s.Equal(int64(3), total)
	s.Len(users, 2)
}
