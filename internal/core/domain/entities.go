package domain

import "time"

// Role represents user role in the system
type Role string

const (
	RoleDonor    Role = "DONOR"
	RolePatient  Role = "PATIENT"
	RoleHospital Role = "HOSPITAL"
	RoleAdmin    Role = "ADMIN"
)

// BloodGroup represents an ABO/Rh blood group
type BloodGroup string

const (
	APositive  BloodGroup = "A+"
	ANegative  BloodGroup = "A-"
	BPositive  BloodGroup = "B+"
	BNegative  BloodGroup = "B-"
	ABPositive BloodGroup = "AB+"
	ABNegative BloodGroup = "AB-"
	OPositive  BloodGroup = "O+"
	ONegative  BloodGroup = "O-"
)

// AllBloodGroups lists every supported blood group
var AllBloodGroups = []BloodGroup{
	APositive, ANegative, BPositive, BNegative,
	ABPositive, ABNegative, OPositive, ONegative,
}

// IsValid reports whether the blood group is one of the supported values
func (bg BloodGroup) IsValid() bool {
	for _, g := range AllBloodGroups {
		if g == bg {
			return true
		}
	}
	return false
}

// IsPositive reports whether the blood group is Rh-positive
func (bg BloodGroup) IsPositive() bool {
	return len(bg) > 0 && bg[len(bg)-1] == '+'
}

// Urgency represents blood request urgency tier
type Urgency string

const (
	UrgencyCritical Urgency = "critical"
	UrgencyUrgent   Urgency = "urgent"
	UrgencyNormal   Urgency = "normal"
)

// IsValid reports whether the urgency is a known tier
func (u Urgency) IsValid() bool {
	return u == UrgencyCritical || u == UrgencyUrgent || u == UrgencyNormal
}

// Request statuses
const (
	RequestActive    = "ACTIVE"
	RequestFulfilled = "FULFILLED"
	RequestExpired   = "EXPIRED"
	RequestCancelled = "CANCELLED"
)

// Donation statuses
const (
	DonationPending   = "PENDING"
	DonationCompleted = "COMPLETED"
	DonationCancelled = "CANCELLED"
)

// User represents a user in the domain layer
type User struct {
	ID            uint
	FullName      string
	Email         string
	Password      string // Hashed
	Role          Role
	BloodGroup    *BloodGroup // Donors only
	City          string
	Pincode       string
	ContactPhone  string
	IsAvailable   bool
	DonationCount int
	LastDonation  *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// BloodRequest represents a blood request in the domain layer
type BloodRequest struct {
	ID          uint
	RequesterID uint
	PatientName string
	BloodGroup  BloodGroup
	Urgency     Urgency
	UnitsNeeded int
	Hospital    string
	City        string
	Status      string
	ExpiresAt   time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DonationRecord represents a donation in the domain layer
type DonationRecord struct {
	ID         uint
	DonorID    uint
	BloodGroup BloodGroup // Snapshot of donor's group at creation
	RequestID  *uint
	Hospital   string
	City       string
	Date       time.Time
	Units      int
	Points     int
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
