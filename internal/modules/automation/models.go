package automation

import "time"

// Policy is the per-tenant automation gate. One row per (brand, owner).
// Written only by the external settings API; the core reads it before
// every automated action.
type Policy struct {
	BrandID        string    `json:"brandId"`
	OwnerID        string    `json:"ownerId"`
	Enabled        bool      `json:"enabled"`
	ScheduleWindow *string   `json:"scheduleWindow,omitempty"`
	PostingLimits  *string   `json:"postingLimits,omitempty"`
	RiskThresholds *string   `json:"riskThresholds,omitempty"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// SkipReasonDisabled is the reason string recorded for gated-off tenants
const SkipReasonDisabled = "Automation disabled"
