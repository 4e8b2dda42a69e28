package cycles

import "github.com/lanternhq/lantern/internal/modules/decisions"

// TenantResult is one brand's outcome within a cycle
type TenantResult struct {
	BrandID   string              `json:"brandId"`
	Skipped   bool                `json:"skipped,omitempty"`
	Reason    string              `json:"reason,omitempty"`
	Failed    bool                `json:"failed,omitempty"`
	Error     string              `json:"error,omitempty"`
	Decision  *decisions.Decision `json:"decision,omitempty"`
	Published int                 `json:"published,omitempty"`
}

// CycleResult is the outcome of one full cycle run
type CycleResult struct {
	Label     string         `json:"label"`
	Processed int            `json:"processed"`
	Results   []TenantResult `json:"results"`
}
