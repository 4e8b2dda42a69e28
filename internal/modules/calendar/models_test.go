package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveScheduledAt(t *testing.T) {
	explicit := time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		event Event
		want  time.Time
	}{
		{"explicit wins", Event{ScheduledAt: &explicit, Date: "2024-01-01", Time: "09:00"}, explicit},
		{"derived from date and time", Event{Date: "2024-01-01", Time: "09:00"},
			time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)},
		{"date only defaults to midnight", Event{Date: "2024-01-01"},
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"nothing usable", Event{}, time.Time{}},
		{"garbage date", Event{Date: "not-a-date", Time: "09:00"}, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(tt.event.EffectiveScheduledAt()))
		})
	}
}

func TestDue(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		event Event
		want  bool
	}{
		{"scheduled approved past", Event{Status: StatusScheduled, ApprovalStatus: ApprovalApproved, Date: "2024-01-01", Time: "09:00"}, true},
		{"absent approval counts as approved", Event{Status: StatusScheduled, Date: "2024-01-01", Time: "09:00"}, true},
		{"pending approval blocks", Event{Status: StatusScheduled, ApprovalStatus: ApprovalPending, Date: "2024-01-01", Time: "09:00"}, false},
		{"future is not due", Event{Status: StatusScheduled, Date: "2024-01-01", Time: "11:00"}, false},
		{"published never due again", Event{Status: StatusPublished, Date: "2024-01-01", Time: "09:00"}, false},
		{"no schedule never due", Event{Status: StatusScheduled}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.event.Due(now))
		})
	}
}

func TestRetryable(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-time.Hour)
	old := now.Add(-13 * time.Hour)

	tests := []struct {
		name  string
		event Event
		want  bool
	}{
		{"first attempt", Event{PublishAttempts: 0}, true},
		{"under the cap", Event{PublishAttempts: 2, LastPublishAttemptAt: &recent}, true},
		{"cap reached recently", Event{PublishAttempts: 3, LastPublishAttemptAt: &recent}, false},
		{"cap reached cool-down elapsed", Event{PublishAttempts: 3, LastPublishAttemptAt: &old}, true},
		{"cap reached no attempt stamp", Event{PublishAttempts: 5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.event.Retryable(now))
		})
	}
}

func TestIsTwitter(t *testing.T) {
	assert.True(t, Event{Platform: "twitter"}.IsTwitter())
	assert.True(t, Event{Platform: "Twitter"}.IsTwitter())
	assert.False(t, Event{Platform: "linkedin"}.IsTwitter())
}
