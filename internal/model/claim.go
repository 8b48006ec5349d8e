package model

import (
	"time"

	"github.com/google/uuid"
)

// Claim represents a user-submitted assertion queued for AI-assisted analysis
type Claim struct {
	ID          string      `json:"id" validate:"required"`          // Stable unique identifier, immutable after creation
	Title       string      `json:"title" validate:"required"`       // Short headline for the claim
	Description string      `json:"description"`                     // Longer free-text description
	Context     string      `json:"context"`                         // Additional context supplied by the user
	Status      ClaimStatus `json:"status" validate:"claimstatus"`   // Current lifecycle state
	CreatedAt   int64       `json:"created_at" validate:"gt=0"`      // Milliseconds since epoch
	UpdatedAt   int64       `json:"updated_at" validate:"gtefield=CreatedAt"` // Never earlier than CreatedAt
}

// ClaimStatus is the lifecycle state of a claim's analysis attempt
type ClaimStatus string

const (
	StatusPending   ClaimStatus = "PENDING"   // Created, analysis not yet started
	StatusAnalyzing ClaimStatus = "ANALYZING" // Analysis in progress
	StatusCompleted ClaimStatus = "COMPLETED" // Terminal: analysis produced a result
	StatusFailed    ClaimStatus = "FAILED"    // Terminal: analysis attempt failed
)

// Valid reports whether the status is one of the known lifecycle states
func (s ClaimStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAnalyzing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether the status ends the current analysis attempt
func (s ClaimStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransition reports whether moving from s to next is a legal lifecycle
// step. PENDING -> ANALYZING -> {COMPLETED, FAILED}; a terminal state may
// re-enter PENDING when the caller explicitly starts a new attempt.
// The repository never drives transitions itself - orchestration does.
func (s ClaimStatus) CanTransition(next ClaimStatus) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	switch s {
	case StatusPending:
		return next == StatusAnalyzing
	case StatusAnalyzing:
		return next == StatusCompleted || next == StatusFailed
	case StatusCompleted, StatusFailed:
		return next == StatusPending
	}
	return false
}

// NewClaim creates a claim in PENDING with a fresh ID and current timestamps
func NewClaim(title, description, context string) Claim {
	now := time.Now().UnixMilli()
	return Claim{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Context:     context,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
