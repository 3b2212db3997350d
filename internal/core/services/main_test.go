package services

import (
	"testing"
	"time"

	"bloodlink/internal/adapters/persistence/models"
	"bloodlink/internal/core/domain"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a fresh in-memory database with the full schema
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// The in-memory database lives on a single connection; a second
	// pooled connection would see an empty schema.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, models.AutoMigrate(db))
	return db
}

func createDonor(t *testing.T, db *gorm.DB, email, bloodGroup string, lastDonation *time.Time) *models.User {
	t.Helper()

	user := &models.User{
		FullName:     "Donor " + email,
		Email:        email,
		Password:     "hashed",
		Role:         string(domain.RoleDonor),
		BloodGroup:   &bloodGroup,
		City:         "Pune",
		IsAvailable:  true,
		LastDonation: lastDonation,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createPatient(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := &models.User{
		FullName: "Patient " + email,
		Email:    email,
		Password: "hashed",
		Role:     string(domain.RolePatient),
		City:     "Pune",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}
