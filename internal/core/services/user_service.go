package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"bloodlink/internal/adapters/persistence/models"
	"bloodlink/internal/adapters/persistence/repositories"
	"bloodlink/internal/core/domain"

	"gorm.io/gorm"
)

// UserService handles profile and account management
type UserService struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository, refreshTokenRepo repositories.RefreshTokenRepository) *UserService {
	return &UserService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
	}
}

// GetProfile returns a user's profile
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfileInput represents profile update input
type UpdateProfileInput struct {
	FullName     string  `json:"full_name,omitempty"`
	City         string  `json:"city,omitempty"`
	Pincode      string  `json:"pincode,omitempty"`
	ContactPhone string  `json:"contact_phone,omitempty"`
	BloodGroup   *string `json:"blood_group,omitempty"`
	IsAvailable  *bool   `json:"is_available,omitempty"`
}

// UpdateProfile updates a user's own profile. Blood group and
// availability are donor-only fields; availability toggling is how a
// donor opts out of matching without deleting the account.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, input *UpdateProfileInput) (*models.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.FullName != "" {
		updates["full_name"] = input.FullName
	}
	if input.City != "" {
		updates["city"] = input.City
	}
	if input.Pincode != "" {
		updates["pincode"] = input.Pincode
	}
	if input.ContactPhone != "" {
		updates["contact_phone"] = input.ContactPhone
	}
	if input.BloodGroup != nil {
		if !user.IsDonor() {
			return nil, fmt.Errorf("%w: blood group is only accepted for donors", domain.ErrValidation)
		}
		if !domain.BloodGroup(*input.BloodGroup).IsValid() {
			return nil, fmt.Errorf("%w: unknown blood group %q", domain.ErrValidation, *input.BloodGroup)
		}
		updates["blood_group"] = *input.BloodGroup
	}
	if input.IsAvailable != nil {
		if !user.IsDonor() {
			return nil, fmt.Errorf("%w: availability is only accepted for donors", domain.ErrValidation)
		}
		updates["is_available"] = *input.IsAvailable
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.userRepo.UpdateFields(ctx, userID, updates); err != nil {
		return nil, err
	}

	return s.userRepo.GetByID(ctx, userID)
}

// DeleteAccount removes a user's account: revokes every session, then
// soft-deletes the user together with that donor's donation records
func (s *UserService) DeleteAccount(ctx context.Context, userID uint) error {
	if _, err := s.GetProfile(ctx, userID); err != nil {
		return err
	}

	if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, userID); err != nil {
		return err
	}

	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}

	log.Printf("✅ Account deleted: user ID %d", userID)
	return nil
}

// List lists users with pagination (admin)
func (s *UserService) List(ctx context.Context, offset, limit int) ([]*models.User, int64, error) {
	return s.userRepo.List(ctx, offset, limit)
}
