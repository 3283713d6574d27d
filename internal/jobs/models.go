package jobs

import (
	"time"

	"github.com/google/uuid"

	"surety/internal/geofence"
	"surety/pkg/domain"
	dErrors "surety/pkg/domain-errors"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusVerified   Status = "VERIFIED"
	StatusCancelled  Status = "CANCELLED"
)

// ParseStatus accepts the upper-case wire values.
func ParseStatus(raw string) (Status, error) {
	switch s := Status(raw); s {
	case StatusPending, StatusInProgress, StatusVerified, StatusCancelled:
		return s, nil
	}
	return "", dErrors.New(dErrors.CodeValidation, "unknown job status "+raw)
}

// Job is an employer posting. WorkerCredited is set once a verified job has
// counted toward the worker's job total.
type Job struct {
	ID             uuid.UUID            `json:"id"`
	Employer       domain.WalletAddress `json:"employer_address"`
	Worker         domain.WalletAddress `json:"worker_address,omitempty"`
	Title          string               `json:"title"`
	Description    string               `json:"description,omitempty"`
	Amount         domain.Amount        `json:"amount"`
	SiteID         string               `json:"site_id"`
	Status         Status               `json:"status"`
	Start          *geofence.Coordinate `json:"start_location,omitempty"`
	End            *geofence.Coordinate `json:"end_location,omitempty"`
	WorkerCredited bool                 `json:"worker_credited"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// CreateRequest is an employer's job posting.
type CreateRequest struct {
	Employer    domain.WalletAddress
	Title       string
	Description string
	Amount      domain.Amount
	SiteID      string
}

// Filter narrows List. Zero fields match everything.
type Filter struct {
	Employer domain.WalletAddress
	Worker   domain.WalletAddress
	Status   Status
}

func (f Filter) matches(j *Job) bool {
	if f.Employer != "" && j.Employer != f.Employer {
		return false
	}
	if f.Worker != "" && j.Worker != f.Worker {
		return false
	}
	if f.Status != "" && j.Status != f.Status {
		return false
	}
	return true
}

// CompleteResult reports the verified job and, when the worker has an
// account, the refreshed risk score.
type CompleteResult struct {
	Job           *Job `json:"job"`
	WorkerUpdated bool `json:"worker_updated"`
	RiskScore     int  `json:"new_worker_score,omitempty"`
}
