package credentials

import (
	"github.com/rs/zerolog"

	"github.com/lanternhq/lantern/internal/clients/twitter"
)

// Resolver selects posting credentials for a brand: the brand's own token
// set when present, else the global default, else nothing.
type Resolver struct {
	repo   *Repository
	global *twitter.Credentials
	log    zerolog.Logger
}

// NewResolver creates a new credential resolver. global may be nil when no
// fallback token set is configured.
func NewResolver(repo *Repository, global *twitter.Credentials, log zerolog.Logger) *Resolver {
	return &Resolver{
		repo:   repo,
		global: global,
		log:    log.With().Str("service", "credentials").Logger(),
	}
}

// Resolve returns the signing credentials for a brand, or nil when neither a
// brand row nor a global default exists. Storage errors fall through to the
// global default rather than failing the cycle.
func (r *Resolver) Resolve(brandID string) *twitter.Credentials {
	set, err := r.repo.Get(brandID)
	if err != nil {
		r.log.Warn().Err(err).Str("brand", brandID).Msg("Credential lookup failed, trying global default")
		set = nil
	}

	if set != nil && set.AccessToken != "" && set.AccessSecret != "" {
		creds := twitter.Credentials{
			AccessToken:  set.AccessToken,
			AccessSecret: set.AccessSecret,
		}
		// Consumer key/secret always come from the global app registration
		if r.global != nil {
			creds.ConsumerKey = r.global.ConsumerKey
			creds.ConsumerSecret = r.global.ConsumerSecret
		}
		return &creds
	}

	return r.global
}
