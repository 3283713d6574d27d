package bond

import (
	"time"

	"surety/internal/geofence"
	"surety/internal/identity"
	"surety/internal/ledger"
	"surety/internal/wage"
	"surety/pkg/domain"
)

// State is the lifecycle position of a worker account.
type State string

const (
	StateUnverified   State = "unverified"
	StateVerified     State = "verified"
	StateBonded       State = "bonded"
	StateEmployed     State = "employed"
	StateWageEligible State = "wage_eligible"
)

// Account is the persisted worker record, keyed by lowercase wallet.
//
// TrustScore is the latest oracle-asserted attendance score. RiskScore is
// derived from JobsCompleted. The two are updated on separate paths.
type Account struct {
	Wallet              domain.WalletAddress `json:"wallet_address"`
	IdentityStatus      identity.Status      `json:"identity_status"`
	IdentityFingerprint string               `json:"identity_fingerprint,omitempty"`
	BondAmount          domain.Amount        `json:"bond_amount"`
	IsVerified          bool                 `json:"is_verified"`
	IsEmployed          bool                 `json:"is_employed"`
	Employer            domain.WalletAddress `json:"employer,omitempty"`
	TrustScore          int                  `json:"trust_score"`
	RiskScore           int                  `json:"risk_score"`
	JobsCompleted       int                  `json:"jobs_completed"`
	WeeklyCheckIns      int                  `json:"weekly_check_ins"`
	WeeklyWage          domain.Amount        `json:"weekly_wage"`
	DisposableBalance   domain.Amount        `json:"disposable_balance"`
	RentSavingsAccrued  domain.Amount        `json:"rent_savings_accrued"`
	State               State                `json:"state"`
	Cycle               int                  `json:"cycle"`
	CycleReleased       bool                 `json:"cycle_released"`
	LastCheckInAt       *time.Time           `json:"last_check_in_at,omitempty"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

// clone returns a copy safe to mutate before the single write.
func (a *Account) clone() *Account {
	c := *a
	if a.LastCheckInAt != nil {
		t := *a.LastCheckInAt
		c.LastCheckInAt = &t
	}
	return &c
}

// employmentInvariant holds for every persisted account.
func (a *Account) employmentInvariant() bool {
	return !a.IsEmployed || (a.BondAmount.IsPositive() && a.IsVerified)
}

// LedgerOutcome reports the collaborator step of an operation. A failed
// outcome is transient: local state is already committed and the intent is
// queued for retry.
type LedgerOutcome struct {
	Action   ledger.Action `json:"action"`
	IntentID string        `json:"intent_id,omitempty"`
	Status   ledger.Status `json:"status"`
	TxHash   string        `json:"tx_hash,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// Transient reports whether the collaborator call needs a retry.
func (o *LedgerOutcome) Transient() bool {
	return o != nil && o.Status == ledger.StatusFailed
}

// Result is returned by every mutating operation.
type Result struct {
	Account *Account       `json:"account"`
	Ledger  *LedgerOutcome `json:"ledger,omitempty"`
}

type SubmitIdentityResult struct {
	Account  *Account         `json:"account"`
	Identity *identity.Result `json:"identity"`
}

type CheckInResult struct {
	Account  *Account         `json:"account"`
	Geofence *geofence.Result `json:"geofence,omitempty"`
}

type ReleaseResult struct {
	Account   *Account       `json:"account"`
	Breakdown wage.Breakdown `json:"breakdown"`
	Ledger    *LedgerOutcome `json:"ledger,omitempty"`
}

// RiskStatus distinguishes wallets the engine has never seen.
type RiskStatus string

const (
	RiskStatusUnknown RiskStatus = "unknown"
	RiskStatusActive  RiskStatus = "active"
)

type RiskProfile struct {
	Worker        domain.WalletAddress `json:"worker"`
	Score         int                  `json:"score"`
	JobsCompleted int                  `json:"jobs_completed"`
	Status        RiskStatus           `json:"status"`
}

// SetupStep is one stage of SetupWorker.
type SetupStep struct {
	Step    string         `json:"step"`
	Success bool           `json:"success"`
	Error   string         `json:"error,omitempty"`
	Ledger  *LedgerOutcome `json:"ledger,omitempty"`
}

type SetupResult struct {
	Account *Account    `json:"account,omitempty"`
	Steps   []SetupStep `json:"steps"`
}

// Succeeded reports whether every step succeeded.
func (r *SetupResult) Succeeded() bool {
	for _, s := range r.Steps {
		if !s.Success {
			return false
		}
	}
	return len(r.Steps) > 0
}
