package repositories

import (
	"context"

	"bloodlink/internal/adapters/persistence/models"
	"bloodlink/internal/core/domain"

	"gorm.io/gorm"
)

// DonationRepository handles donation record data access
type DonationRepository struct {
	db *gorm.DB
}

// NewDonationRepository creates a new donation repository
func NewDonationRepository(db *gorm.DB) *DonationRepository {
	return &DonationRepository{db: db}
}

// Create creates a new donation record
func (r *DonationRepository) Create(ctx context.Context, record *models.DonationRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// GetByID gets a donation record by ID with relations
func (r *DonationRepository) GetByID(ctx context.Context, id uint) (*models.DonationRecord, error) {
	var record models.DonationRecord
	err := r.db.WithContext(ctx).
		Preload("Donor").
		Preload("Request").
		First(&record, id).Error
	return &record, err
}

// ListByDonor returns all donation records for a donor
func (r *DonationRepository) ListByDonor(ctx context.Context, donorID uint) ([]models.DonationRecord, error) {
	var records []models.DonationRecord
	err := r.db.WithContext(ctx).
		Preload("Request").
		Where("donor_id = ?", donorID).
		Order("date DESC").
		Find(&records).Error
	return records, err
}

// UpdatePendingFields updates mutable fields of a record while it is
// still pending; returns false when the record already left the
// pending state
func (r *DonationRepository) UpdatePendingFields(ctx context.Context, id uint, updates map[string]interface{}) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.DonationRecord{}).
		Where("id = ? AND status = ?", id, domain.DonationPending).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Cancel transitions a pending record to CANCELLED; returns false when
// the record is no longer pending
func (r *DonationRepository) Cancel(ctx context.Context, id uint) (bool, error) {
	return r.UpdatePendingFields(ctx, id, map[string]interface{}{
		"status": domain.DonationCancelled,
	})
}

// Complete transitions a pending record to COMPLETED and applies the
// donor counter side effects in the same transaction. The status guard
// makes the transition exactly-once: under concurrent completion calls
// only one caller sees rows affected.
func (r *DonationRepository) Complete(ctx context.Context, record *models.DonationRecord) (bool, error) {
	completed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.DonationRecord{}).
			Where("id = ? AND status = ?", record.ID, domain.DonationPending).
			Update("status", domain.DonationCompleted)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}

		if err := tx.Model(&models.User{}).
			Where("id = ?", record.DonorID).
			Updates(map[string]interface{}{
				"donation_count": gorm.Expr("donation_count + ?", 1),
				"last_donation":  record.Date,
			}).Error; err != nil {
			return err
		}

		completed = true
		return nil
	})
	return completed, err
}
