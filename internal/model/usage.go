package model

// CodespacesUsage is the GitHub Codespaces allowance consumed in the current
// billing cycle. It is fetched live and never persisted.
type CodespacesUsage struct {
	TotalMinutesUsed     int            `json:"total_minutes_used" validate:"gte=0"`      // Minutes used across all machine types
	TotalPaidMinutesUsed int            `json:"total_paid_minutes_used" validate:"gte=0"` // Minutes beyond the included allowance
	IncludedMinutes      int            `json:"included_minutes" validate:"gte=0"`        // Free minutes in the user's plan
	MinutesUsedBreakdown map[string]int `json:"minutes_used_breakdown"`                   // Per-machine-type minutes
}
