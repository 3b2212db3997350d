package repositories

import (
	"context"
	"time"

	"bloodlink/internal/adapters/persistence/models"
	"bloodlink/internal/core/domain"

	"gorm.io/gorm"
)

// RequestRepository handles blood request data access
type RequestRepository struct {
	db *gorm.DB
}

// NewRequestRepository creates a new request repository
func NewRequestRepository(db *gorm.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// Create creates a new blood request
func (r *RequestRepository) Create(ctx context.Context, request *models.BloodRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

// GetByID gets a request by ID with its fulfillment set
func (r *RequestRepository) GetByID(ctx context.Context, id uint) (*models.BloodRequest, error) {
	var request models.BloodRequest
	err := r.db.WithContext(ctx).
		Preload("Requester").
		Preload("FulfilledBy").
		Preload("FulfilledBy.Donor").
		First(&request, id).Error
	return &request, err
}

// ListActive returns active requests, most urgent tier first,
// oldest first within a tier
func (r *RequestRepository) ListActive(ctx context.Context, now time.Time) ([]models.BloodRequest, error) {
	var requests []models.BloodRequest
	err := r.db.WithContext(ctx).
		Preload("Requester").
		Where("status = ? AND expires_at >= ?", domain.RequestActive, now).
		Order("priority DESC, created_at ASC").
		Find(&requests).Error
	return requests, err
}

// ListByRequester returns all requests created by a user
func (r *RequestRepository) ListByRequester(ctx context.Context, requesterID uint) ([]models.BloodRequest, error) {
	var requests []models.BloodRequest
	err := r.db.WithContext(ctx).
		Preload("FulfilledBy").
		Where("requester_id = ?", requesterID).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

// ExpireOverdue reconciles every overdue active request to EXPIRED.
// Called lazily on read paths, never from a background sweep. A request
// is overdue strictly after its expiry instant, matching
// BloodRequest.IsExpired.
func (r *RequestRepository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.BloodRequest{}).
		Where("status = ? AND expires_at < ?", domain.RequestActive, now).
		Update("status", domain.RequestExpired)
	return result.RowsAffected, result.Error
}

// MarkExpired reconciles a single overdue request to EXPIRED
func (r *RequestRepository) MarkExpired(ctx context.Context, id uint, now time.Time) error {
	return r.db.WithContext(ctx).Model(&models.BloodRequest{}).
		Where("id = ? AND status = ? AND expires_at < ?", id, domain.RequestActive, now).
		Update("status", domain.RequestExpired).Error
}

// TransitionStatus performs a conditional status transition. The write
// only succeeds if the row still carries the expected status; the
// caller must treat zero rows affected as a lost race.
func (r *RequestRepository) TransitionStatus(ctx context.Context, id uint, fromStatus, toStatus string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.BloodRequest{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Update("status", toStatus)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// UpdateActiveFields updates mutable fields of a request while it is
// still active; returns false when the request already left the active state
func (r *RequestRepository) UpdateActiveFields(ctx context.Context, id uint, updates map[string]interface{}) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.BloodRequest{}).
		Where("id = ? AND status = ?", id, domain.RequestActive).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// AddFulfillment registers a donor into a request's fulfilled set.
// Idempotent: adding an already-present donor is a no-op.
func (r *RequestRepository) AddFulfillment(ctx context.Context, requestID, donorID uint) error {
	fulfillment := models.RequestFulfillment{
		RequestID: requestID,
		DonorID:   donorID,
	}
	return r.db.WithContext(ctx).
		Where("request_id = ? AND donor_id = ?", requestID, donorID).
		FirstOrCreate(&fulfillment).Error
}
