package cycles

import (
	"context"
	"time"

	"github.com/lanternhq/lantern/internal/modules/decisions"
	"github.com/lanternhq/lantern/internal/modules/market"
)

// Profile is the analysis-facing brand profile, owned by an external
// collaborator. Name defaults to the brand id when the source has no row.
type Profile struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Voice       string            `json:"voice,omitempty"`
	Extra       map[string]string `json:"extra,omitempty"`
}

// ProfileSource loads brand profiles. May return nil without error when no
// profile exists.
type ProfileSource interface {
	LoadProfile(ctx context.Context, brandID string) (*Profile, error)
}

// Analysis is what the analyzer returns for one tenant. Either Actions or,
// from older analyzer versions, a single Decision.
type Analysis struct {
	Actions  []decisions.Decision `json:"actions"`
	Decision *decisions.Decision  `json:"decision,omitempty"`
}

// Normalized returns the action list, converting a legacy single-decision
// response into a one-element list
func (a Analysis) Normalized() []decisions.Decision {
	if len(a.Actions) > 0 {
		return a.Actions
	}
	if a.Decision != nil {
		return []decisions.Decision{*a.Decision}
	}
	return nil
}

// Analyzer turns market context into candidate actions. Black box from the
// core's perspective.
type Analyzer interface {
	Analyze(ctx context.Context, mc market.Context, profile Profile) (Analysis, error)
}

// Sleeper paces upstream calls between tenants. Injectable so tests run
// without real delays.
type Sleeper func(d time.Duration)
