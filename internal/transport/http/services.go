package httptransport

import (
	"context"

	"github.com/google/uuid"

	"surety/internal/bond"
	"surety/internal/geofence"
	"surety/internal/identity"
	"surety/internal/jobs"
	"surety/internal/ledger"
	"surety/pkg/domain"
)

// BondService is the worker lifecycle engine.
type BondService interface {
	Get(ctx context.Context, wallet domain.WalletAddress) (*bond.Account, error)
	SubmitIdentity(ctx context.Context, wallet domain.WalletAddress, idType identity.IDType, rawID string) (*bond.SubmitIdentityResult, error)
	Verify(ctx context.Context, wallet domain.WalletAddress) (*bond.Result, error)
	Reject(ctx context.Context, wallet domain.WalletAddress) (*bond.Result, error)
	StakeBond(ctx context.Context, wallet domain.WalletAddress, amount domain.Amount) (*bond.Result, error)
	Hire(ctx context.Context, wallet, employer domain.WalletAddress, weeklyWage domain.Amount) (*bond.Result, error)
	Terminate(ctx context.Context, wallet, employer domain.WalletAddress) (*bond.Result, error)
	CheckIn(ctx context.Context, wallet domain.WalletAddress, point geofence.Coordinate, siteID string, trustScore *int) (*bond.CheckInResult, error)
	SubmitCheckIn(ctx context.Context, wallet domain.WalletAddress, trustScore int) (*bond.CheckInResult, error)
	ReleaseWage(ctx context.Context, wallet domain.WalletAddress) (*bond.ReleaseResult, error)
	RecalculateRisk(ctx context.Context, wallet domain.WalletAddress) (*bond.RiskProfile, error)
	RiskProfile(ctx context.Context, wallet domain.WalletAddress) (*bond.RiskProfile, error)
	SetupWorker(ctx context.Context, wallet domain.WalletAddress, amount domain.Amount) (*bond.SetupResult, error)
}

type IdentityReader interface {
	Status(ctx context.Context, wallet domain.WalletAddress) (identity.View, error)
}

type JobService interface {
	Create(ctx context.Context, req jobs.CreateRequest) (*jobs.Job, error)
	Get(ctx context.Context, id uuid.UUID) (*jobs.Job, error)
	List(ctx context.Context, f jobs.Filter) ([]*jobs.Job, error)
	Start(ctx context.Context, id uuid.UUID, worker domain.WalletAddress, position *geofence.Coordinate) (*jobs.Job, error)
	Complete(ctx context.Context, id uuid.UUID, worker domain.WalletAddress, position *geofence.Coordinate) (*jobs.CompleteResult, error)
	Cancel(ctx context.Context, id uuid.UUID, employer domain.WalletAddress) (*jobs.Job, error)
}

type LedgerService interface {
	ListByWallet(ctx context.Context, wallet domain.WalletAddress) ([]*ledger.Intent, error)
	RetryFailed(ctx context.Context) (ledger.RetrySummary, error)
	Confirm(ctx context.Context, id uuid.UUID, txHash string, status ledger.Status) (*ledger.Intent, error)
}
