package services

import (
	"context"
	"log"

	"bloodlink/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// CleanupService purges expired refresh tokens on a nightly schedule.
// Blood request expiry is deliberately not handled here; requests are
// reconciled lazily on the read paths that observe them.
type CleanupService struct {
	refreshTokenRepo repositories.RefreshTokenRepository
	cron             *cron.Cron
}

// NewCleanupService creates a new cleanup service
func NewCleanupService(refreshTokenRepo repositories.RefreshTokenRepository) *CleanupService {
	return &CleanupService{
		refreshTokenRepo: refreshTokenRepo,
		cron:             cron.New(),
	}
}

// Start schedules the nightly token purge at 03:00
func (s *CleanupService) Start() error {
	_, err := s.cron.AddFunc("0 3 * * *", s.purgeExpiredTokens)
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Println("✅ Cleanup scheduler started (daily at 03:00)")
	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (s *CleanupService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("✅ Cleanup scheduler stopped")
}

func (s *CleanupService) purgeExpiredTokens() {
	deleted, err := s.refreshTokenRepo.DeleteExpired(context.Background())
	if err != nil {
		log.Printf("❌ Token cleanup failed: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("✅ Token cleanup: removed %d expired refresh tokens", deleted)
	}
}
