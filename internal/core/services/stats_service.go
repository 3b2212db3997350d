package services

import (
	"context"
	"errors"
	"time"

	"bloodlink/internal/adapters/persistence/models"
	"bloodlink/internal/adapters/persistence/repositories"
	"bloodlink/internal/core/domain"

	"gorm.io/gorm"
)

// StatsService aggregates request, donation and donor statistics.
// Every read reconciles overdue requests first so the counts never
// show a stale ACTIVE row.
type StatsService struct {
	db          *gorm.DB
	requestRepo *repositories.RequestRepository
	userRepo    repositories.UserRepository
	now         func() time.Time
}

// NewStatsService creates a new stats service
func NewStatsService(db *gorm.DB, requestRepo *repositories.RequestRepository, userRepo repositories.UserRepository) *StatsService {
	return &StatsService{
		db:          db,
		requestRepo: requestRepo,
		userRepo:    userRepo,
		now:         time.Now,
	}
}

// RequestStats holds request counts by status, urgency and blood group
type RequestStats struct {
	Total        int64            `json:"total"`
	ByStatus     map[string]int64 `json:"by_status"`
	ByUrgency    map[string]int64 `json:"by_urgency"`
	ByBloodGroup map[string]int64 `json:"by_blood_group"`
}

// DonationStats holds donation counts and completed totals
type DonationStats struct {
	Total          int64            `json:"total"`
	ByStatus       map[string]int64 `json:"by_status"`
	CompletedUnits int64            `json:"completed_units"`
	TotalPoints    int64            `json:"total_points"`
}

// LeaderboardEntry is one donor's completed-donation totals
type LeaderboardEntry struct {
	DonorID        uint       `json:"donor_id"`
	FullName       string     `json:"full_name"`
	BloodGroup     *string    `json:"blood_group,omitempty"`
	City           string     `json:"city"`
	TotalPoints    int64      `json:"total_points"`
	TotalDonations int64      `json:"total_donations"`
	TotalUnits     int64      `json:"total_units"`
	LastDonation   *time.Time `json:"last_donation"`
}

// UserSummary is one donor's personal statistics
type UserSummary struct {
	UserID                uint       `json:"user_id"`
	FullName              string     `json:"full_name"`
	BloodGroup            *string    `json:"blood_group,omitempty"`
	TotalDonations        int64      `json:"total_donations"`
	TotalPoints           int64      `json:"total_points"`
	TotalUnits            int64      `json:"total_units"`
	LastDonation          *time.Time `json:"last_donation"`
	DaysSinceLastDonation int        `json:"days_since_last_donation"`
	EligibleToDonate      bool       `json:"eligible_to_donate"`
}

// BloodGroupCount is one blood group's registered donor count and its
// completed donation count
type BloodGroupCount struct {
	BloodGroup string `json:"blood_group"`
	Donors     int64  `json:"donors"`
	Donations  int64  `json:"donations"`
}

type groupCount struct {
	Label string
	Count int64
}

// GetRequestStats returns request counts grouped by status, urgency
// and blood group
func (s *StatsService) GetRequestStats(ctx context.Context) (*RequestStats, error) {
	if _, err := s.requestRepo.ExpireOverdue(ctx, s.now()); err != nil {
		return nil, err
	}

	stats := &RequestStats{
		ByStatus:     make(map[string]int64),
		ByUrgency:    make(map[string]int64),
		ByBloodGroup: make(map[string]int64),
	}

	var rows []groupCount
	if err := s.db.WithContext(ctx).Model(&models.BloodRequest{}).
		Select("status as label, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats.ByStatus[row.Label] = row.Count
		stats.Total += row.Count
	}

	rows = nil
	if err := s.db.WithContext(ctx).Model(&models.BloodRequest{}).
		Select("urgency as label, COUNT(*) as count").
		Where("status = ?", domain.RequestActive).
		Group("urgency").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats.ByUrgency[row.Label] = row.Count
	}

	rows = nil
	if err := s.db.WithContext(ctx).Model(&models.BloodRequest{}).
		Select("blood_group as label, COUNT(*) as count").
		Where("status = ?", domain.RequestActive).
		Group("blood_group").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats.ByBloodGroup[row.Label] = row.Count
	}

	return stats, nil
}

// GetDonationStats returns donation counts by status and completed
// unit and point totals. Pending and cancelled records never count
// toward the totals.
func (s *StatsService) GetDonationStats(ctx context.Context) (*DonationStats, error) {
	stats := &DonationStats{
		ByStatus: make(map[string]int64),
	}

	var rows []groupCount
	if err := s.db.WithContext(ctx).Model(&models.DonationRecord{}).
		Select("status as label, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats.ByStatus[row.Label] = row.Count
		stats.Total += row.Count
	}

	var totals struct {
		Units  int64
		Points int64
	}
	if err := s.db.WithContext(ctx).Model(&models.DonationRecord{}).
		Select("COALESCE(SUM(units), 0) as units, COALESCE(SUM(points), 0) as points").
		Where("status = ?", domain.DonationCompleted).
		Scan(&totals).Error; err != nil {
		return nil, err
	}
	stats.CompletedUnits = totals.Units
	stats.TotalPoints = totals.Points

	return stats, nil
}

// GetLeaderboard ranks donors by completed-donation points, donation
// count breaking point ties
func (s *StatsService) GetLeaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	var entries []LeaderboardEntry
	err := s.db.WithContext(ctx).Model(&models.DonationRecord{}).
		Select(`donation_records.donor_id,
			users.full_name,
			users.blood_group,
			users.city,
			COALESCE(SUM(donation_records.points), 0) as total_points,
			COUNT(donation_records.id) as total_donations,
			COALESCE(SUM(donation_records.units), 0) as total_units,
			MAX(donation_records.date) as last_donation`).
		Joins("JOIN users ON users.id = donation_records.donor_id AND users.deleted_at IS NULL").
		Where("donation_records.status = ?", domain.DonationCompleted).
		Group("donation_records.donor_id, users.full_name, users.blood_group, users.city").
		Order("total_points DESC, total_donations DESC").
		Limit(limit).
		Scan(&entries).Error
	return entries, err
}

// GetUserSummary returns one donor's personal statistics including
// cooldown-based eligibility
func (s *StatsService) GetUserSummary(ctx context.Context, userID uint) (*UserSummary, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	var totals struct {
		Donations int64
		Points    int64
		Units     int64
	}
	if err := s.db.WithContext(ctx).Model(&models.DonationRecord{}).
		Select("COUNT(*) as donations, COALESCE(SUM(points), 0) as points, COALESCE(SUM(units), 0) as units").
		Where("donor_id = ? AND status = ?", userID, domain.DonationCompleted).
		Scan(&totals).Error; err != nil {
		return nil, err
	}

	now := s.now()
	return &UserSummary{
		UserID:                user.ID,
		FullName:              user.FullName,
		BloodGroup:            user.BloodGroup,
		TotalDonations:        totals.Donations,
		TotalPoints:           totals.Points,
		TotalUnits:            totals.Units,
		LastDonation:          user.LastDonation,
		DaysSinceLastDonation: domain.DaysSinceDonation(now, user.LastDonation),
		EligibleToDonate:      domain.CanDonate(now, user.ToDomain()),
	}, nil
}

// GetBloodGroupDistribution returns per-group registered donor counts
// and completed donation counts. Donation counts use the record's
// blood-group snapshot, so a group can appear with zero registered
// donors.
func (s *StatsService) GetBloodGroupDistribution(ctx context.Context) ([]BloodGroupCount, error) {
	var counts []BloodGroupCount
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Select("blood_group, COUNT(*) as donors").
		Where("role = ? AND blood_group IS NOT NULL", string(domain.RoleDonor)).
		Group("blood_group").
		Order("donors DESC").
		Scan(&counts).Error; err != nil {
		return nil, err
	}

	var rows []groupCount
	if err := s.db.WithContext(ctx).Model(&models.DonationRecord{}).
		Select("blood_group as label, COUNT(*) as count").
		Where("status = ?", domain.DonationCompleted).
		Group("blood_group").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	donations := make(map[string]int64, len(rows))
	for _, row := range rows {
		donations[row.Label] = row.Count
	}

	seen := make(map[string]bool, len(counts))
	for i := range counts {
		counts[i].Donations = donations[counts[i].BloodGroup]
		seen[counts[i].BloodGroup] = true
	}
	for _, row := range rows {
		if !seen[row.Label] {
			counts = append(counts, BloodGroupCount{BloodGroup: row.Label, Donations: row.Count})
		}
	}

	return counts, nil
}
