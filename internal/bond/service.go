// Package bond is the worker lifecycle state machine. It is the only writer of
// worker accounts and serializes every read-modify-write per wallet.
package bond

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"surety/internal/geofence"
	"surety/internal/identity"
	"surety/internal/ledger"
	"surety/internal/scoring"
	"surety/internal/wage"
	"surety/pkg/attrs"
	"surety/pkg/domain"
	dErrors "surety/pkg/domain-errors"
	"surety/pkg/platform/audit"
	"surety/pkg/platform/keylock"
	"surety/pkg/platform/sentinel"
	"surety/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

// IdentityPipeline is the identity verification collaborator. Prepare and
// Commit run under the wallet lock; Publish does network I/O and runs after it.
type IdentityPipeline interface {
	Prepare(ctx context.Context, wallet domain.WalletAddress, idType identity.IDType, rawID string) (*identity.Draft, error)
	Commit(ctx context.Context, d *identity.Draft) error
	Rollback(ctx context.Context, d *identity.Draft) error
	Publish(ctx context.Context, sub *identity.Submission) string
	AttachContent(ctx context.Context, wallet domain.WalletAddress, idHash, cid string) error
	Find(ctx context.Context, wallet domain.WalletAddress) (*identity.Submission, error)
	MarkVerified(ctx context.Context, wallet domain.WalletAddress) (*identity.Submission, error)
	MarkRejected(ctx context.Context, wallet domain.WalletAddress) (*identity.Submission, error)
}

// LedgerRecorder records chain intents. Record fails only when the intent
// itself could not be stored.
type LedgerRecorder interface {
	Record(ctx context.Context, wallet domain.WalletAddress, action ledger.Action, amount domain.Amount) (*ledger.Intent, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// errUnchanged makes an account mutation a successful no-op.
var errUnchanged = errors.New("unchanged")

type Service struct {
	repo     *Repository
	identity IdentityPipeline
	sites    *geofence.Sites
	wages    *wage.Calculator
	ledger   LedgerRecorder
	locks    *keylock.Sharded

	logger         *slog.Logger
	metrics        *Metrics
	auditPublisher AuditPublisher
	tracer         trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = p
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithLedger enables chain intents after each committed mutation.
func WithLedger(l LedgerRecorder) Option {
	return func(s *Service) {
		s.ledger = l
	}
}

func WithSites(sites *geofence.Sites) Option {
	return func(s *Service) {
		s.sites = sites
	}
}

func WithWageCalculator(c *wage.Calculator) Option {
	return func(s *Service) {
		s.wages = c
	}
}

func WithLockTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.locks = keylock.New(d)
	}
}

func New(repo *Repository, pipeline IdentityPipeline, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		identity: pipeline,
		locks:    keylock.New(keylock.DefaultTimeout),
		logger:   slog.Default(),
		tracer:   otel.Tracer("surety/internal/bond"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.sites == nil {
		s.sites, _ = geofence.NewSites()
	}
	if s.wages == nil {
		s.wages, _ = wage.NewCalculator(wage.DefaultPolicy)
	}
	return s
}

// Get returns the account for wallet.
func (s *Service) Get(ctx context.Context, wallet domain.WalletAddress) (*Account, error) {
	acc, err := s.repo.Find(ctx, wallet)
	if err != nil {
		return nil, s.translateFind(err)
	}
	return acc, nil
}

// SubmitIdentity runs the identity pipeline and creates the account on first
// submission. A verified account cannot resubmit. The submission and the
// account are written together or not at all; the anonymized record is
// published once both are stored.
func (s *Service) SubmitIdentity(ctx context.Context, wallet domain.WalletAddress, idType identity.IDType, rawID string) (res *SubmitIdentityResult, err error) {
	ctx, done := s.start(ctx, "submit_identity", wallet)
	defer func() { done(err) }()

	var draft *identity.Draft
	rollback := func(ctx context.Context) error {
		if draft == nil {
			return nil
		}
		return s.identity.Rollback(ctx, draft)
	}
	acc, err := s.mutateWithUndo(ctx, wallet, true, func(ctx context.Context, acc *Account) error {
		if acc.IsVerified {
			return dErrors.New(dErrors.CodeInvalidTransition, "worker identity is already verified")
		}
		d, err := s.identity.Prepare(ctx, wallet, idType, rawID)
		if err != nil {
			return err
		}
		if err := s.identity.Commit(ctx, d); err != nil {
			return err
		}
		draft = d
		acc.IdentityStatus = identity.StatusPending
		acc.IdentityFingerprint = d.Submission.IDHash
		acc.State = StateUnverified
		return nil
	}, rollback)
	if err != nil {
		return nil, err
	}

	sub := draft.Submission
	if cid := s.identity.Publish(ctx, sub); cid != "" {
		err := s.locks.WithKey(ctx, string(wallet), func(ctx context.Context) error {
			return s.identity.AttachContent(ctx, wallet, sub.IDHash, cid)
		})
		if err != nil {
			s.logger.WarnContext(ctx, "identity content id not recorded", "wallet", wallet.Short(), "error", err)
		} else {
			sub.ExternalContentID = cid
		}
	}
	s.logAudit(ctx, audit.EventIdentitySubmitted,
		"wallet", string(wallet),
		"id_type", string(idType),
		"id_hash", sub.IDHash,
	)
	return &SubmitIdentityResult{Account: acc, Identity: sub.Result()}, nil
}

// Verify marks the identity verified and moves the account to verified.
// Repeating it on a verified account changes nothing.
func (s *Service) Verify(ctx context.Context, wallet domain.WalletAddress) (res *Result, err error) {
	ctx, done := s.start(ctx, "verify", wallet)
	defer func() { done(err) }()

	changed := false
	acc, err := s.mutate(ctx, wallet, false, func(ctx context.Context, acc *Account) error {
		if acc.IsVerified {
			return errUnchanged
		}
		sub, err := s.identity.Find(ctx, wallet)
		if err != nil {
			return err
		}
		switch sub.Status {
		case identity.StatusPending:
			if _, err := s.identity.MarkVerified(ctx, wallet); err != nil {
				return err
			}
		case identity.StatusVerified:
			// submission verified by an earlier attempt whose account write failed
		default:
			return dErrors.New(dErrors.CodeInvalidTransition, "identity submission is "+string(sub.Status))
		}
		acc.IsVerified = true
		acc.IdentityStatus = identity.StatusVerified
		acc.State = StateVerified
		acc.RiskScore = scoring.RiskScore(acc.JobsCompleted)
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	res = &Result{Account: acc}
	if changed {
		s.logAudit(ctx, audit.EventIdentityVerified,
			"wallet", string(wallet),
			"id_hash", acc.IdentityFingerprint,
			"decision", "verified",
		)
		res.Ledger = s.recordLedger(ctx, wallet, ledger.ActionVerify, domain.Zero)
	}
	return res, nil
}

// Reject marks the identity rejected. The account stays unverified.
func (s *Service) Reject(ctx context.Context, wallet domain.WalletAddress) (res *Result, err error) {
	ctx, done := s.start(ctx, "reject", wallet)
	defer func() { done(err) }()

	acc, err := s.mutate(ctx, wallet, false, func(ctx context.Context, acc *Account) error {
		if acc.IsVerified {
			return dErrors.New(dErrors.CodeInvalidTransition, "worker identity is already verified")
		}
		if _, err := s.identity.MarkRejected(ctx, wallet); err != nil {
			return err
		}
		acc.IdentityStatus = identity.StatusRejected
		acc.State = StateUnverified
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, audit.EventIdentityRejected,
		"wallet", string(wallet),
		"id_hash", acc.IdentityFingerprint,
		"decision", "rejected",
	)
	return &Result{Account: acc}, nil
}

// StakeBond adds amount to the bond of a verified worker.
func (s *Service) StakeBond(ctx context.Context, wallet domain.WalletAddress, amount domain.Amount) (res *Result, err error) {
	ctx, done := s.start(ctx, "stake_bond", wallet)
	defer func() { done(err) }()

	if !amount.IsPositive() {
		return nil, dErrors.New(dErrors.CodeInsufficientStake, "stake amount must be greater than zero")
	}
	acc, err := s.mutate(ctx, wallet, false, func(_ context.Context, acc *Account) error {
		if !acc.IsVerified {
			return dErrors.New(dErrors.CodeNotVerified, "worker identity is not verified")
		}
		staked, err := acc.BondAmount.CheckedAdd(amount)
		if err != nil {
			return err
		}
		acc.BondAmount = staked
		if acc.State == StateVerified {
			acc.State = StateBonded
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, audit.EventBondStaked,
		"wallet", string(wallet),
		"amount", amount.String(),
		"bond_amount", acc.BondAmount.String(),
	)
	return &Result{Account: acc, Ledger: s.recordLedger(ctx, wallet, ledger.ActionStake, amount)}, nil
}

// Hire employs a bonded worker at weeklyWage.
func (s *Service) Hire(ctx context.Context, wallet, employer domain.WalletAddress, weeklyWage domain.Amount) (res *Result, err error) {
	ctx, done := s.start(ctx, "hire", wallet)
	defer func() { done(err) }()

	if !weeklyWage.IsPositive() {
		return nil, dErrors.New(dErrors.CodeInvalidAmount, "weekly wage must be greater than zero")
	}
	acc, err := s.mutate(ctx, wallet, false, func(_ context.Context, acc *Account) error {
		if acc.IsEmployed {
			return dErrors.New(dErrors.CodeAlreadyEmployed, "worker is already employed")
		}
		if !acc.IsVerified || !acc.BondAmount.IsPositive() {
			return dErrors.New(dErrors.CodeNotBonded, "worker must be verified and bonded before hire")
		}
		acc.IsEmployed = true
		acc.Employer = employer
		acc.WeeklyWage = weeklyWage
		acc.WeeklyCheckIns = 0
		acc.CycleReleased = false
		acc.State = StateEmployed
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, audit.EventWorkerHired,
		"wallet", string(wallet),
		"employer", string(employer),
		"weekly_wage", weeklyWage.String(),
	)
	return &Result{Account: acc}, nil
}

// Terminate ends employment on behalf of employer, which must be the current
// employer. Bond, scores and savings are kept.
func (s *Service) Terminate(ctx context.Context, wallet, employer domain.WalletAddress) (res *Result, err error) {
	ctx, done := s.start(ctx, "terminate", wallet)
	defer func() { done(err) }()

	acc, err := s.mutate(ctx, wallet, false, func(_ context.Context, acc *Account) error {
		if !acc.IsEmployed {
			return dErrors.New(dErrors.CodeNotEmployed, "worker is not employed")
		}
		if acc.Employer != employer {
			return dErrors.New(dErrors.CodeForbidden, "worker is employed by another employer")
		}
		acc.IsEmployed = false
		acc.Employer = ""
		acc.WeeklyWage = domain.Zero
		acc.WeeklyCheckIns = 0
		acc.CycleReleased = false
		acc.State = StateBonded
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, audit.EventWorkerTerminated,
		"wallet", string(wallet),
		"employer", string(employer),
	)
	return &Result{Account: acc}, nil
}

// CheckIn verifies a reported position against siteID and counts the
// attendance. A position outside the fence fails with OutOfRange and leaves the
// account untouched. trustScore overrides the geofence contribution when set.
func (s *Service) CheckIn(ctx context.Context, wallet domain.WalletAddress, point geofence.Coordinate, siteID string, trustScore *int) (res *CheckInResult, err error) {
	ctx, done := s.start(ctx, "check_in", wallet)
	defer func() { done(err) }()

	if trustScore != nil {
		if err := scoring.ValidateTrustScore(*trustScore); err != nil {
			return nil, err
		}
	}
	site := s.sites.Lookup(siteID)
	geo, err := geofence.Verify(point, site)
	if err != nil {
		return nil, err
	}
	trust := geo.TrustContribution
	if trustScore != nil {
		trust = *trustScore
	}

	acc, err := s.mutate(ctx, wallet, false, func(ctx context.Context, acc *Account) error {
		if !acc.IsEmployed {
			return dErrors.New(dErrors.CodeNotEmployed, "worker is not employed")
		}
		if !geo.Verified {
			return dErrors.New(dErrors.CodeOutOfRange, fmt.Sprintf(
				"position is %dm from %s, outside the %.0fm fence", geo.DistanceMeters, site.Name, site.RadiusMeters))
		}
		s.applyCheckIn(ctx, acc, trust)
		return nil
	})
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeOutOfRange) {
			s.metrics.incCheckIn("out_of_range")
			s.logAudit(ctx, audit.EventCheckInRejected,
				"wallet", string(wallet),
				"site_id", site.ID,
				"distance_meters", geo.DistanceMeters,
				"decision", "out_of_range",
			)
		}
		return nil, err
	}
	s.metrics.incCheckIn("verified")
	s.logAudit(ctx, audit.EventCheckInRecorded,
		"wallet", string(wallet),
		"site_id", site.ID,
		"weekly_check_ins", acc.WeeklyCheckIns,
	)
	return &CheckInResult{Account: acc, Geofence: &geo}, nil
}

// SubmitCheckIn records an oracle-asserted check-in whose location was
// verified upstream.
func (s *Service) SubmitCheckIn(ctx context.Context, wallet domain.WalletAddress, trustScore int) (res *CheckInResult, err error) {
	ctx, done := s.start(ctx, "submit_check_in", wallet)
	defer func() { done(err) }()

	if err := scoring.ValidateTrustScore(trustScore); err != nil {
		return nil, err
	}
	acc, err := s.mutate(ctx, wallet, false, func(ctx context.Context, acc *Account) error {
		if !acc.IsEmployed {
			return dErrors.New(dErrors.CodeNotEmployed, "worker is not employed")
		}
		s.applyCheckIn(ctx, acc, trustScore)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.incCheckIn("oracle")
	s.logAudit(ctx, audit.EventCheckInRecorded,
		"wallet", string(wallet),
		"weekly_check_ins", acc.WeeklyCheckIns,
		"decision", "oracle_asserted",
	)
	return &CheckInResult{Account: acc}, nil
}

func (s *Service) applyCheckIn(ctx context.Context, acc *Account, trust int) {
	if acc.WeeklyCheckIns < scoring.CheckInThreshold {
		acc.WeeklyCheckIns++
	}
	acc.TrustScore = trust
	acc.CycleReleased = false
	now := requestcontext.Now(ctx)
	acc.LastCheckInAt = &now
	if acc.WeeklyCheckIns >= scoring.CheckInThreshold {
		acc.State = StateWageEligible
	}
}

// ReleaseWage pays out the current cycle. A second release before the next
// check-in fails with AlreadyReleased.
func (s *Service) ReleaseWage(ctx context.Context, wallet domain.WalletAddress) (res *ReleaseResult, err error) {
	ctx, done := s.start(ctx, "release_wage", wallet)
	defer func() { done(err) }()

	var breakdown wage.Breakdown
	acc, err := s.mutate(ctx, wallet, false, func(_ context.Context, acc *Account) error {
		if !acc.IsEmployed {
			return dErrors.New(dErrors.CodeNotEmployed, "worker is not employed")
		}
		if acc.CycleReleased {
			return dErrors.New(dErrors.CodeAlreadyReleased, "wage for this cycle was already released")
		}
		if acc.WeeklyCheckIns < scoring.CheckInThreshold {
			return dErrors.New(dErrors.CodeNotEligible, fmt.Sprintf(
				"worker has %d of %d check-ins this cycle", acc.WeeklyCheckIns, scoring.CheckInThreshold))
		}
		breakdown = s.wages.Split(acc.WeeklyWage)
		disposable, err := acc.DisposableBalance.CheckedAdd(breakdown.Worker)
		if err != nil {
			return err
		}
		savings, err := acc.RentSavingsAccrued.CheckedAdd(breakdown.Savings)
		if err != nil {
			return err
		}
		acc.DisposableBalance = disposable
		acc.RentSavingsAccrued = savings
		acc.WeeklyCheckIns = 0
		acc.CycleReleased = true
		acc.Cycle++
		acc.State = StateEmployed
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.incWageReleased()
	s.logAudit(ctx, audit.EventWageReleased,
		"wallet", string(wallet),
		"cycle", acc.Cycle,
		"worker_share", breakdown.Worker.String(),
		"savings_share", breakdown.Savings.String(),
	)
	return &ReleaseResult{
		Account:   acc,
		Breakdown: breakdown,
		Ledger:    s.recordLedger(ctx, wallet, ledger.ActionReleaseWage, acc.WeeklyWage),
	}, nil
}

// RecordJobCompleted counts a verified job and refreshes the risk score.
func (s *Service) RecordJobCompleted(ctx context.Context, wallet domain.WalletAddress) (res *Result, err error) {
	ctx, done := s.start(ctx, "record_job_completed", wallet)
	defer func() { done(err) }()

	acc, err := s.mutate(ctx, wallet, false, func(_ context.Context, acc *Account) error {
		acc.JobsCompleted++
		acc.RiskScore = scoring.RiskScore(acc.JobsCompleted)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, audit.EventJobCompleted,
		"wallet", string(wallet),
		"jobs_completed", acc.JobsCompleted,
	)
	return &Result{Account: acc}, nil
}

// RecalculateRisk recomputes the risk score from the stored job count.
func (s *Service) RecalculateRisk(ctx context.Context, wallet domain.WalletAddress) (*RiskProfile, error) {
	acc, err := s.mutate(ctx, wallet, false, func(_ context.Context, acc *Account) error {
		score := scoring.RiskScore(acc.JobsCompleted)
		if score == acc.RiskScore {
			return errUnchanged
		}
		acc.RiskScore = score
		return nil
	})
	if err != nil {
		return nil, err
	}
	return profileOf(acc), nil
}

// RiskProfile reports the derived risk score. Unknown wallets get an
// "unknown" profile rather than an error.
func (s *Service) RiskProfile(ctx context.Context, wallet domain.WalletAddress) (*RiskProfile, error) {
	acc, err := s.repo.Find(ctx, wallet)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return &RiskProfile{Worker: wallet, Status: RiskStatusUnknown}, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load worker")
	}
	return profileOf(acc), nil
}

func profileOf(acc *Account) *RiskProfile {
	return &RiskProfile{
		Worker:        acc.Wallet,
		Score:         scoring.RiskScore(acc.JobsCompleted),
		JobsCompleted: acc.JobsCompleted,
		Status:        RiskStatusActive,
	}
}

// SetupWorker verifies then stakes. Each step is reported; a failed step stops
// the sequence but earlier steps stay applied.
func (s *Service) SetupWorker(ctx context.Context, wallet domain.WalletAddress, amount domain.Amount) (*SetupResult, error) {
	out := &SetupResult{}

	verified, err := s.Verify(ctx, wallet)
	if err != nil {
		out.Steps = append(out.Steps, SetupStep{Step: "verify", Error: err.Error()})
		return out, nil
	}
	out.Account = verified.Account
	out.Steps = append(out.Steps, SetupStep{Step: "verify", Success: true, Ledger: verified.Ledger})

	staked, err := s.StakeBond(ctx, wallet, amount)
	if err != nil {
		out.Steps = append(out.Steps, SetupStep{Step: "stake", Error: err.Error()})
		return out, nil
	}
	out.Account = staked.Account
	out.Steps = append(out.Steps, SetupStep{Step: "stake", Success: true, Ledger: staked.Ledger})
	return out, nil
}

// mutate loads the account under the wallet lock, applies fn to a copy and
// writes it once. With create set, a missing account starts unverified.
func (s *Service) mutate(ctx context.Context, wallet domain.WalletAddress, create bool, fn func(ctx context.Context, acc *Account) error) (*Account, error) {
	return s.mutateWithUndo(ctx, wallet, create, fn, nil)
}

// mutateWithUndo is mutate for fn that writes outside the account. undo runs
// under the same lock when the account write fails or is refused.
func (s *Service) mutateWithUndo(ctx context.Context, wallet domain.WalletAddress, create bool, fn func(ctx context.Context, acc *Account) error, undo func(ctx context.Context) error) (*Account, error) {
	var out *Account
	err := s.locks.WithKey(ctx, string(wallet), func(ctx context.Context) error {
		now := requestcontext.Now(ctx)
		current, err := s.repo.Find(ctx, wallet)
		if err != nil {
			if !create || !errors.Is(err, sentinel.ErrNotFound) {
				return s.translateFind(err)
			}
			current = &Account{
				Wallet:         wallet,
				IdentityStatus: identity.StatusNotSubmitted,
				State:          StateUnverified,
				CreatedAt:      now,
			}
		}

		next := current.clone()
		if err := fn(ctx, next); err != nil {
			if errors.Is(err, errUnchanged) {
				out = current
				return nil
			}
			return err
		}
		if !next.employmentInvariant() {
			s.runUndo(ctx, wallet, undo)
			return dErrors.New(dErrors.CodeInternal, "employment requires a verified bonded worker")
		}
		next.UpdatedAt = now
		if err := s.repo.Save(ctx, next); err != nil {
			s.runUndo(ctx, wallet, undo)
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save worker")
		}
		out = next
		return nil
	})
	return out, err
}

func (s *Service) runUndo(ctx context.Context, wallet domain.WalletAddress, undo func(ctx context.Context) error) {
	if undo == nil {
		return
	}
	if err := undo(ctx); err != nil {
		s.logger.ErrorContext(ctx, "failed to undo partial worker update", "wallet", wallet.Short(), "error", err)
	}
}

func (s *Service) translateFind(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "worker not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load worker")
}

func (s *Service) recordLedger(ctx context.Context, wallet domain.WalletAddress, action ledger.Action, amount domain.Amount) *LedgerOutcome {
	if s.ledger == nil {
		return nil
	}
	in, err := s.ledger.Record(ctx, wallet, action, amount)
	if err != nil {
		s.logger.WarnContext(ctx, "ledger intent not recorded",
			"wallet", wallet.Short(),
			"action", action,
			"error", err,
		)
		return &LedgerOutcome{Action: action, Status: ledger.StatusFailed, Error: err.Error()}
	}
	return &LedgerOutcome{
		Action:   action,
		IntentID: in.ID.String(),
		Status:   in.Status,
		TxHash:   in.TxHash,
		Error:    in.Error,
	}
}

func (s *Service) start(ctx context.Context, op string, wallet domain.WalletAddress) (context.Context, func(error)) {
	begin := time.Now()
	ctx, span := s.tracer.Start(ctx, "bond."+op, trace.WithAttributes(
		attribute.String("wallet", wallet.Short()),
	))
	return ctx, func(err error) {
		outcome := "ok"
		if err != nil {
			outcome = string(dErrors.CodeOf(err))
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		}
		span.SetAttributes(attribute.String("outcome", outcome))
		span.End()
		s.metrics.observe(op, outcome, begin)
	}
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, attributes ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", string(event), "log_type", "audit")
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(event), args...)
	}
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, audit.Event{
		Wallet:        attrs.ExtractString(attributes, "wallet"),
		Action:        string(event),
		Decision:      attrs.ExtractString(attributes, "decision"),
		SubjectIDHash: attrs.ExtractString(attributes, "id_hash"),
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "event", event, "error", err)
	}
}
