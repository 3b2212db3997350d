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

type StatsServiceSuite struct {
	suite.Suite
	db  *gorm.DB
	svc *StatsService
	ctx context.Context
	t0  time.Time
}

func TestStatsServiceSuite(t *testing.T) {
	suite.Run(t, new(StatsServiceSuite))
}

func (s *StatsServiceSuite) SetupTest() {
	s.db = newTestDB(s.T())
	s.ctx = context.Background()
	s.t0 = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	userRepo := repositories.NewUserRepository(s.db)
	requestRepo := repositories.NewRequestRepository(s.db)
	s.svc = NewStatsService(s.db, requestRepo, userRepo)
	s.svc.now = fixedClock(s.t0)
}

func (s *StatsServiceSuite) addDonation(donorID uint, status string, points, units int) {
	record := &models.DonationRecord{
		DonorID:    donorID,
		BloodGroup: "O+",
		Hospital:   "City Hospital",
		City:       "Pune",
		Date:       s.t0,
		Units:      units,
		Points:     points,
		Status:     status,
	}
	s.Require().NoError(s.db.Create(record).Error)
}

func (s *StatsServiceSuite) TestLeaderboardRanksByPointsThenDonations() {
	a := createDonor(s.T(), s.db, "a@example.com", "O+", nil)
	b := createDonor(s.T(), s.db, "b@example.com", "A+", nil)
	c := createDonor(s.T(), s.db, "c@example.com", "B-", nil)

	// a: 100 points over 3 completed donations
	s.addDonation(a.ID, domain.DonationCompleted, 50, 1)
	s.addDonation(a.ID, domain.DonationCompleted, 25, 1)
	s.addDonation(a.ID, domain.DonationCompleted, 25, 1)

	// b: 100 points over 2 completed donations
	s.addDonation(b.ID, domain.DonationCompleted, 50, 1)
	s.addDonation(b.ID, domain.DonationCompleted, 50, 1)

	// c: 75 points completed, plus pending and cancelled noise
	s.addDonation(c.ID, domain.DonationCompleted, 75, 2)
	s.addDonation(c.ID, domain.DonationPending, 500, 1)
	s.addDonation(c.ID, domain.DonationCancelled, 500, 1)

	entries, err := s.svc.GetLeaderboard(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(entries, 3)

	// Points tie broken by donation count
	s.Equal(a.ID, entries[0].DonorID)
	s.Equal(int64(100), entries[0].TotalPoints)
	s.Equal(int64(3), entries[0].TotalDonations)
	s.Require().NotNil(entries[0].LastDonation)
	s.True(entries[0].LastDonation.Equal(s.t0))

	s.Equal(b.ID, entries[1].DonorID)
	s.Equal(int64(100), entries[1].TotalPoints)
	s.Equal(int64(2), entries[1].TotalDonations)

	s.Equal(c.ID, entries[2].DonorID)
	s.Equal(int64(75), entries[2].TotalPoints)
}

func (s *StatsServiceSuite) TestLeaderboardLimit() {
	for i := 0; i < 3; i++ {
		donor := createDonor(s.T(), s.db, string(rune('x'+i))+"@example.com", "O+", nil)
		s.addDonation(donor.ID, domain.DonationCompleted, 50, 1)
	}

	entries, err := s.svc.GetLeaderboard(s.ctx, 2)
	s.Require().NoError(err)
	s.Len(entries, 2)
}

func (s *StatsServiceSuite) TestUserSummaryCountsCompletedOnly() {
	last := s.t0.AddDate(0, 0, -30)
	donor := createDonor(s.T(), s.db, "donor@example.com", "AB+", &last)
	s.Require().NoError(s.db.Model(donor).Update("donation_count", 2).Error)

	s.addDonation(donor.ID, domain.DonationCompleted, 75, 2)
	s.addDonation(donor.ID, domain.DonationCompleted, 50, 1)
	s.addDonation(donor.ID, domain.DonationPending, 100, 2)

	summary, err := s.svc.GetUserSummary(s.ctx, donor.ID)
	s.Require().NoError(err)
	s.Equal(int64(2), summary.TotalDonations)
	s.Equal(int64(125), summary.TotalPoints)
	s.Equal(int64(3), summary.TotalUnits)
	s.Equal(30, summary.DaysSinceLastDonation)
	s.False(summary.EligibleToDonate)
}

func (s *StatsServiceSuite) TestUserSummaryFirstTimeDonor() {
	donor := createDonor(s.T(), s.db, "fresh@example.com", "O-", nil)

	summary, err := s.svc.GetUserSummary(s.ctx, donor.ID)
	s.Require().NoError(err)
	s.Equal(int64(0), summary.TotalDonations)
	s.Equal(-1, summary.DaysSinceLastDonation)
	s.True(summary.EligibleToDonate)
}

func (s *StatsServiceSuite) TestUserSummaryUnknownUser() {
	_, err := s.svc.GetUserSummary(s.ctx, 9999)
	s.ErrorIs(err, domain.ErrUserNotFound)
}

func (s *StatsServiceSuite) TestRequestStatsReconcilesBeforeCounting() {
	patient := createPatient(s.T(), s.db, "patient@example.com")

	requestRepo := repositories.NewRequestRepository(s.db)
	requestSvc := NewRequestService(requestRepo, repositories.NewUserRepository(s.db))
	requestSvc.now = fixedClock(s.t0)

	_, err := requestSvc.Create(s.ctx, patient.ID, &CreateRequestInput{
		PatientName: "P", BloodGroup: "A+", Urgency: "critical", UnitsNeeded: 1,
		Hospital: "City Hospital", City: "Pune", ContactPhone: "9900112233",
	})
	s.Require().NoError(err)
	_, err = requestSvc.Create(s.ctx, patient.ID, &CreateRequestInput{
		PatientName: "P", BloodGroup: "B-", Urgency: "normal", UnitsNeeded: 1,
		Hospital: "City Hospital", City: "Pune", ContactPhone: "9900112233",
	})
	s.Require().NoError(err)

	// Past the critical TTL; stats must not report the stale ACTIVE row
	s.svc.now = fixedClock(s.t0.Add(25 * time.Hour))

	stats, err := s.svc.GetRequestStats(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(2), stats.Total)
	s.Equal(int64(1), stats.ByStatus[domain.RequestActive])
	s.Equal(int64(1), stats.ByStatus[domain.RequestExpired])
	s.Equal(int64(1), stats.ByUrgency["normal"])
	s.Zero(stats.ByUrgency["critical"])
}

func (s *StatsServiceSuite) TestDonationStats() {
	donor := createDonor(s.T(), s.db, "donor@example.com", "O+", nil)
	s.addDonation(donor.ID, domain.DonationCompleted, 75, 2)
	s.addDonation(donor.ID, domain.DonationCompleted, 50, 1)
	s.addDonation(donor.ID, domain.DonationPending, 50, 1)
	s.addDonation(donor.ID, domain.DonationCancelled, 50, 1)

	stats, err := s.svc.GetDonationStats(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(4), stats.Total)
	s.Equal(int64(2), stats.ByStatus[domain.DonationCompleted])
	s.Equal(int64(3), stats.CompletedUnits)
	s.Equal(int64(125), stats.TotalPoints)
}

func (s *StatsServiceSuite) TestBloodGroupDistribution() {
	o1 := createDonor(s.T(), s.db, "o1@example.com", "O+", nil)
	createDonor(s.T(), s.db, "o2@example.com", "O+", nil)
	createDonor(s.T(), s.db, "a1@example.com", "A-", nil)
	createPatient(s.T(), s.db, "patient@example.com")

	// Two completed O+ donations; the pending one must not count
	s.addDonation(o1.ID, domain.DonationCompleted, 50, 1)
	s.addDonation(o1.ID, domain.DonationCompleted, 50, 1)
	s.addDonation(o1.ID, domain.DonationPending, 50, 1)

	// A completed donation whose snapshot group has no registered donor
	record := &models.DonationRecord{
		DonorID: o1.ID, BloodGroup: "B+", Hospital: "City Hospital",
		City: "Pune", Date: s.t0, Units: 1, Points: 50,
		Status: domain.DonationCompleted,
	}
	s.Require().NoError(s.db.Create(record).Error)

	counts, err := s.svc.GetBloodGroupDistribution(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(counts, 3)

	byGroup := make(map[string]BloodGroupCount, len(counts))
	for _, count := range counts {
		byGroup[count.BloodGroup] = count
	}
	s.Equal(int64(2), byGroup["O+"].Donors)
	s.Equal(int64(2), byGroup["O+"].Donations)
	s.Equal(int64(1), byGroup["A-"].Donors)
	s.Equal(int64(0), byGroup["A-"].Donations)
	s.Equal(int64(0), byGroup["B+"].Donors)
	s.Equal(int64(1), byGroup["B+"].Donations)
}
