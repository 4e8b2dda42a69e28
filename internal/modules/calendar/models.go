package calendar

import (
	"strings"
	"time"
)

// Event lifecycle statuses. Transitions are monotonic forward only:
// scheduled -> published, or scheduled -> failed(retryable).
const (
	StatusScheduled = "scheduled"
	StatusPublished = "published"
	StatusFailed    = "failed"
)

// Approval statuses driven by the human-approval surface
const (
	ApprovalApproved  = "approved"
	ApprovalPending   = "pending"
	ApprovalRejected  = "rejected"
	ApprovalPublished = "published"
)

// Event is one scheduled piece of content. Created by UI/campaign flows;
// mutated exclusively by the publishing cycle once due.
type Event struct {
	ID                   string     `json:"id"`
	BrandID              string     `json:"brandId,omitempty"`
	Date                 string     `json:"date,omitempty"` // YYYY-MM-DD, legacy split form
	Time                 string     `json:"time,omitempty"` // HH:MM
	ScheduledAt          *time.Time `json:"scheduledAt,omitempty"`
	Content              string     `json:"content"`
	Image                *string    `json:"image,omitempty"`
	Platform             string     `json:"platform"`
	Status               string     `json:"status"`
	ApprovalStatus       string     `json:"approvalStatus,omitempty"`
	PublishAttempts      int        `json:"publishAttempts"`
	LastPublishAttemptAt *time.Time `json:"lastPublishAttemptAt,omitempty"`
	PublishedAt          *time.Time `json:"publishedAt,omitempty"`
	PlatformPostID       *string    `json:"platformPostId,omitempty"`
	PublishError         *string    `json:"publishError,omitempty"`
}

// EffectiveScheduledAt returns the explicit scheduledAt, or derives it from
// the legacy date+time split fields. Zero time when neither is usable.
func (e Event) EffectiveScheduledAt() time.Time {
	if e.ScheduledAt != nil {
		return *e.ScheduledAt
	}
	if e.Date == "" {
		return time.Time{}
	}

	clock := e.Time
	if clock == "" {
		clock = "00:00"
	}
	t, err := time.Parse("2006-01-02 15:04", e.Date+" "+clock)
	if err != nil {
		return time.Time{}
	}
	return t
}

// IsTwitter reports whether the event targets the twitter platform
func (e Event) IsTwitter() bool {
	return strings.EqualFold(e.Platform, "twitter")
}

// Approved reports whether the event may be published. An absent approval
// status counts as approved for calendars predating the approval surface.
func (e Event) Approved() bool {
	return e.ApprovalStatus == "" || e.ApprovalStatus == ApprovalApproved
}

// Due reports whether the event should be attempted at the given time
func (e Event) Due(now time.Time) bool {
	if e.Status != StatusScheduled || !e.Approved() {
		return false
	}
	scheduled := e.EffectiveScheduledAt()
	return !scheduled.IsZero() && !scheduled.After(now)
}

// retry policy: 3 immediate attempts, then a 12 hour cool-down
const (
	maxImmediateAttempts = 3
	retryCoolDown        = 12 * time.Hour
)

// Retryable reports whether another publish attempt is allowed
func (e Event) Retryable(now time.Time) bool {
	if e.PublishAttempts < maxImmediateAttempts {
		return true
	}
	if e.LastPublishAttemptAt == nil {
		return true
	}
	return now.Sub(*e.LastPublishAttemptAt) > retryCoolDown
}
