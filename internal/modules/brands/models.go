package brands

import "time"

// Brand is an isolated customer account the schedulers act on behalf of.
// Rows are created by onboarding and never mutated by the orchestration core.
type Brand struct {
	ID           string    `json:"id"`
	DisplayName  string    `json:"displayName"`
	OwnerID      *string   `json:"ownerId,omitempty"`
	SocialHandle *string   `json:"socialHandle,omitempty"`
	LunarSymbol  *string   `json:"lunarSymbol,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Handle returns the social handle if set, else the brand id
func (b Brand) Handle() string {
	if b.SocialHandle != nil && *b.SocialHandle != "" {
		return *b.SocialHandle
	}
	return b.ID
}

// OwnerKey returns the owner id if set, else empty string
func (b Brand) OwnerKey() string {
	if b.OwnerID != nil {
		return *b.OwnerID
	}
	return ""
}
