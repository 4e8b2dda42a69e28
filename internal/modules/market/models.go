package market

import "time"

// Mention is one observed social mention of a brand
type Mention struct {
	ID         string    `json:"id"`
	Author     string    `json:"author"`
	Text       string    `json:"text"`
	Engagement float64   `json:"engagement"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Trend is one entry of the process-wide trend feed
type Trend struct {
	Topic   string  `json:"topic"`
	Summary string  `json:"summary,omitempty"`
	Volume  float64 `json:"volume,omitempty"`
}

// EngagementSummary carries derived mention statistics
type EngagementSummary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stdDev"`
}

// Context is the per-tenant market context handed to the analyzer
type Context struct {
	Trends   []Trend           `json:"trends"`
	Mentions []Mention         `json:"mentions"`
	Metrics  EngagementSummary `json:"metrics"`
}
