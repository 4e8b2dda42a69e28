package brands

import (
	"strings"

	"github.com/rs/zerolog"
)

// defaultBrands is the static fallback list used when the brands table is
// empty or unreadable, so a fresh deployment can still run cycles.
var defaultBrands = []Brand{
	{ID: "lantern", DisplayName: "Lantern", SocialHandle: strPtr("lanternhq")},
}

func strPtr(s string) *string { return &s }

// Service resolves the set of active brands for cycle iteration
type Service struct {
	repo *Repository
	log  zerolog.Logger
}

// NewService creates a new brand service
func NewService(repo *Repository, log zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With().Str("service", "brands").Logger(),
	}
}

// ActiveBrands returns all registered brands, falling back to the static
// list when storage is empty or unreachable
func (s *Service) ActiveBrands() []Brand {
	stored, err := s.repo.All()
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to load brands, using static fallback")
		return defaultBrands
	}
	if len(stored) == 0 {
		s.log.Debug().Msg("No brands registered, using static fallback")
		return defaultBrands
	}
	return stored
}

// Resolve finds a single brand matching the filter by id, display name or
// social handle, case-insensitively. Returns nil when nothing matches.
func (s *Service) Resolve(filter string) *Brand {
	needle := strings.ToLower(strings.TrimSpace(filter))
	if needle == "" {
		return nil
	}

	for _, brand := range s.ActiveBrands() {
		if strings.ToLower(brand.ID) == needle ||
			strings.ToLower(brand.DisplayName) == needle ||
			strings.ToLower(brand.Handle()) == needle {
			b := brand
			return &b
		}
	}
	return nil
}
