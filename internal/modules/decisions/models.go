package decisions

import (
	"encoding/json"
	"time"
)

// ActionType is the closed set of decision actions the analyzer can produce.
// Unknown provider-reported actions are carried through verbatim so new
// action kinds do not break the cycle.
type ActionType string

const (
	ActionNoAction  ActionType = "NO_ACTION"
	ActionError     ActionType = "ERROR"
	ActionReply     ActionType = "REPLY"
	ActionTrendJack ActionType = "TREND_JACK"
	ActionCampaign  ActionType = "CAMPAIGN"
	ActionGapFill   ActionType = "GAP_FILL"
)

// Status values for a decision's human-approval lifecycle. The core only
// ever creates pending rows; approval transitions happen elsewhere.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusPublished = "published"
)

// Decision is a proposed automated action produced by the analyzer
type Decision struct {
	ID        string          `json:"id"`
	BrandID   string          `json:"brandId"`
	Action    ActionType      `json:"action"`
	TargetID  *string         `json:"targetId,omitempty"`
	Reason    *string         `json:"reason,omitempty"`
	Draft     *string         `json:"draft,omitempty"`
	Status    string          `json:"status"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Actionable reports whether a decision should be persisted and notified.
// NO_ACTION and ERROR results are recorded in cycle output but never saved.
func (d Decision) Actionable() bool {
	return d.Action != ActionNoAction && d.Action != ActionError && d.Action != ""
}
