package ledger

import (
	"time"

	"github.com/google/uuid"

	"surety/pkg/domain"
	dErrors "surety/pkg/domain-errors"
)

// Action is the chain operation an intent asks for.
type Action string

const (
	ActionVerify      Action = "verify"
	ActionStake       Action = "stake"
	ActionReleaseWage Action = "release_wage"
)

// Status tracks an intent from local record to chain confirmation.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusConfirmed, StatusFailed:
		return st, nil
	}
	return "", dErrors.New(dErrors.CodeValidation, "status must be pending, confirmed or failed")
}

// Intent is the local record of one collaborator call. The engine writes worker
// state first and the intent second, so an intent never blocks a state change.
type Intent struct {
	ID        uuid.UUID            `json:"id"`
	Wallet    domain.WalletAddress `json:"wallet_address"`
	Action    Action               `json:"action"`
	Amount    domain.Amount        `json:"amount"`
	Status    Status               `json:"status"`
	TxHash    string               `json:"tx_hash,omitempty"`
	Error     string               `json:"error,omitempty"`
	Attempts  int                  `json:"attempts"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// Receipt is what a chain returns for an accepted submission. Confirmed is
// false when finality arrives later through a webhook or receipt topic.
type Receipt struct {
	TxHash    string `json:"tx_hash"`
	Confirmed bool   `json:"confirmed"`
}

// RetrySummary reports the outcome of one RetryFailed pass.
type RetrySummary struct {
	Attempted int `json:"attempted"`
	Confirmed int `json:"confirmed"`
	Pending   int `json:"pending"`
	Failed    int `json:"failed"`
}
