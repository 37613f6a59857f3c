package domain

import (
	"time"

	"github.com/google/uuid"
)

// ResolutionID uniquely identifies a resolution request.
// It wraps uuid.UUID to provide type safety at the domain layer.
type ResolutionID uuid.UUID

// ResolutionStatus represents the lifecycle state of a resolution request.
// It can be pending, completed, or failed.
type ResolutionStatus string

const (
	// ResolutionStatusPending indicates the request has been enqueued but not processed yet.
	ResolutionStatusPending ResolutionStatus = "PENDING"
	// ResolutionStatusCompleted indicates the request finished successfully and a result is available.
	ResolutionStatusCompleted ResolutionStatus = "COMPLETED"
	// ResolutionStatusFailed indicates the request ended with an error; see LastError and Attempts for details.
	ResolutionStatusFailed ResolutionStatus = "FAILED"
)

// ResolutionResult holds the outcome of a completed resolution: the candidate
// the matcher selected, the scores that selected it, and any documents that
// were fetched for it.
type ResolutionResult struct {
	// Company is the register row that won the match.
	Company *Company `json:"company,omitempty"`

	// Match describes how the winner scored against the query.
	Match *MatchDetails `json:"match,omitempty"`

	// Documents contains the fetched register documents, in download order.
	Documents []Document `json:"documents,omitempty"`
}

// MatchDetails records the scores that selected the winning candidate.
type MatchDetails struct {
	NameScore         float64 `json:"nameScore"`
	RegistrationBonus float64 `json:"registrationBonus"`
	FinalScore        float64 `json:"finalScore"`
	// NameOnly is true when the winner was selected by the name-only fallback
	// pass, i.e. the supplied identifier matched nothing.
	NameOnly bool `json:"nameOnly,omitempty"`
}

// Resolution represents a single company resolution request and its current
// state. It tracks the query, status, result, error information, and timestamps.
type Resolution struct {
	// ID is the unique identifier of the resolution request.
	ID ResolutionID `json:"id"`

	// CompanyName is the user-supplied, possibly misspelled company name.
	CompanyName string `json:"companyName"`
	// RegistrationNumber is the optional user-supplied registration string.
	RegistrationNumber string `json:"registrationNumber,omitempty"`
	// QueryKey is the canonical form of the query used for job deduplication.
	QueryKey string `json:"-"`

	// Status is the current lifecycle state of the request.
	Status ResolutionStatus `json:"status"`
	// Result contains the latest known outcome of the resolution.
	Result ResolutionResult `json:"result"`

	// Attempts is the number of times the system has tried to process this request.
	Attempts uint `json:"attempts"`
	// LastError stores the most recent error message, if any, encountered while processing.
	LastError string `json:"-"`

	// CreatedAt is the time when the request was created.
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is the time when the request was last updated (e.g., status or result changed).
	UpdatedAt time.Time `json:"updatedAt"`
	// DeletedAt marks when the request was soft-deleted; zero value means not deleted.
	DeletedAt time.Time `json:"-"`
}
