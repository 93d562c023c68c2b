package models

import "time"

// HeadlineSeverity grades how consequential a headline is.
type HeadlineSeverity string

const (
	SeverityLow      HeadlineSeverity = "low"
	SeverityMedium   HeadlineSeverity = "medium"
	SeverityHigh     HeadlineSeverity = "high"
	SeverityCritical HeadlineSeverity = "critical"
)

// Headline is one generated news item attached to a diff. Synthetic marks
// locally fabricated fallback content so the UI can label it.
type Headline struct {
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	Country   string           `json:"country"`
	Category  string           `json:"category"`
	Severity  HeadlineSeverity `json:"severity"`
	Source    string           `json:"source"`
	Synthetic bool             `json:"synthetic"`
	Timestamp time.Time        `json:"timestamp"`
}
