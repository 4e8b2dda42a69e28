package automation

import (
	"github.com/rs/zerolog"
)

// Service is the automation policy gate. Every automated action consults
// IsEnabled before doing tenant work.
type Service struct {
	repo *Repository
	log  zerolog.Logger
}

// NewService creates a new automation gate service
func NewService(repo *Repository, log zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With().Str("service", "automation").Logger(),
	}
}

// IsEnabled reports whether automation may act for a brand.
// Fails closed: a missing row or storage error reads as disabled, so the
// system never auto-acts when uncertain.
func (s *Service) IsEnabled(brandID string) bool {
	policy, err := s.repo.Get(brandID)
	if err != nil {
		s.log.Warn().Err(err).Str("brand", brandID).Msg("Policy lookup failed, treating as disabled")
		return false
	}
	if policy == nil {
		return false
	}
	return policy.Enabled
}
