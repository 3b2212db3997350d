package models

import (
	"time"

	"bloodlink/internal/core/domain"

	"gorm.io/gorm"
)

// ============================================================
// Users & Auth
// ============================================================

// User represents users table
type User struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	FullName      string         `gorm:"size:100;not null" json:"full_name"`
	Email         string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password      string         `gorm:"size:255;not null" json:"-"`
	Role          string         `gorm:"size:20;not null;index" json:"role"`
	BloodGroup    *string        `gorm:"size:3;index" json:"blood_group,omitempty"`
	City          string         `gorm:"size:100;index" json:"city"`
	Pincode       string         `gorm:"size:10" json:"pincode"`
	ContactPhone  string         `gorm:"size:20" json:"contact_phone"`
	IsAvailable   bool           `gorm:"default:true" json:"is_available"`
	DonationCount int            `gorm:"default:0" json:"donation_count"`
	LastDonation  *time.Time     `json:"last_donation"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// IsDonor reports whether the user is a donor
func (u *User) IsDonor() bool {
	return u.Role == string(domain.RoleDonor)
}

// ToDomain maps the row to a domain user
func (u *User) ToDomain() *domain.User {
	user := &domain.User{
		ID:            u.ID,
		FullName:      u.FullName,
		Email:         u.Email,
		Password:      u.Password,
		Role:          domain.Role(u.Role),
		City:          u.City,
		Pincode:       u.Pincode,
		ContactPhone:  u.ContactPhone,
		IsAvailable:   u.IsAvailable,
		DonationCount: u.DonationCount,
		LastDonation:  u.LastDonation,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
	if u.BloodGroup != nil {
		bg := domain.BloodGroup(*u.BloodGroup)
		user.BloodGroup = &bg
	}
	return user
}

// UserResponse DTO
type UserResponse struct {
	ID            uint       `json:"id"`
	FullName      string     `json:"full_name"`
	Email         string     `json:"email"`
	Role          string     `json:"role"`
	BloodGroup    *string    `json:"blood_group,omitempty"`
	City          string     `json:"city"`
	Pincode       string     `json:"pincode,omitempty"`
	ContactPhone  string     `json:"contact_phone,omitempty"`
	IsAvailable   bool       `json:"is_available"`
	DonationCount int        `json:"donation_count"`
	LastDonation  *time.Time `json:"last_donation"`
	CreatedAt     time.Time  `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:            u.ID,
		FullName:      u.FullName,
		Email:         u.Email,
		Role:          u.Role,
		BloodGroup:    u.BloodGroup,
		City:          u.City,
		Pincode:       u.Pincode,
		ContactPhone:  u.ContactPhone,
		IsAvailable:   u.IsAvailable,
		DonationCount: u.DonationCount,
		LastDonation:  u.LastDonation,
		CreatedAt:     u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Blood Requests
// ============================================================

// BloodRequest represents blood_requests table
type BloodRequest struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	RequesterID uint           `gorm:"not null;index" json:"requester_id"`
	PatientName string         `gorm:"size:100;not null" json:"patient_name"`
	BloodGroup  string         `gorm:"size:3;not null;index" json:"blood_group"`
	Urgency     string         `gorm:"size:10;not null" json:"urgency"`
	// Priority is derived from urgency at creation for tier-ordered listings
	Priority     int            `gorm:"not null;index" json:"-"`
	UnitsNeeded  int            `gorm:"not null" json:"units_needed"`
	Hospital     string         `gorm:"size:200;not null" json:"hospital"`
	City         string         `gorm:"size:100;index" json:"city"`
	ContactPhone string         `gorm:"size:20" json:"contact_phone"`
	Description  string         `gorm:"type:text" json:"description,omitempty"`
	Status       string         `gorm:"size:20;not null;default:'ACTIVE';index" json:"status"`
	ExpiresAt    time.Time      `gorm:"not null;index" json:"expires_at"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Requester   *User                `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	FulfilledBy []RequestFulfillment `gorm:"foreignKey:RequestID" json:"fulfilled_by,omitempty"`
}

func (BloodRequest) TableName() string {
	return "blood_requests"
}

// IsExpired reports whether the request is past its expiry instant
func (r *BloodRequest) IsExpired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// RequestFulfillment represents request_fulfillments table.
// One row per donor who fulfilled a request; the (request, donor)
// pair is unique so registration is idempotent.
type RequestFulfillment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RequestID uint      `gorm:"not null;uniqueIndex:idx_request_donor" json:"request_id"`
	DonorID   uint      `gorm:"not null;uniqueIndex:idx_request_donor;index" json:"donor_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Donor *User `gorm:"foreignKey:DonorID" json:"donor,omitempty"`
}

func (RequestFulfillment) TableName() string {
	return "request_fulfillments"
}

// ============================================================
// Donation Records
// ============================================================

// DonationRecord represents donation_records table
type DonationRecord struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	DonorID    uint           `gorm:"not null;index" json:"donor_id"`
	BloodGroup string         `gorm:"size:3;not null;index" json:"blood_group"`
	RequestID  *uint          `gorm:"index" json:"request_id"`
	Hospital   string         `gorm:"size:200;not null" json:"hospital"`
	City       string         `gorm:"size:100" json:"city"`
	Date       time.Time      `gorm:"not null" json:"date"`
	Units      int            `gorm:"not null" json:"units"`
	Points     int            `gorm:"not null" json:"points"`
	Status     string         `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Donor   *User         `gorm:"foreignKey:DonorID" json:"donor,omitempty"`
	Request *BloodRequest `gorm:"foreignKey:RequestID" json:"request,omitempty"`
}

func (DonationRecord) TableName() string {
	return "donation_records"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&BloodRequest{},
		&RequestFulfillment{},
		&DonationRecord{},
	)
}
