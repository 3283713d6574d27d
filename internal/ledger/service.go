// Package ledger records every call to the chain collaborator as an intent and
// tracks it to confirmation. Chain failures never fail the caller; they leave a
// failed intent behind for RetryFailed or a webhook to resolve.
package ledger

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"surety/pkg/domain"
	dErrors "surety/pkg/domain-errors"
	"surety/pkg/platform/audit"
	"surety/pkg/platform/circuit"
	"surety/pkg/platform/keylock"
	"surety/pkg/platform/sentinel"
	"surety/pkg/requestcontext"
)

// DefaultRetryConcurrency bounds in-flight chain calls during RetryFailed.
const DefaultRetryConcurrency = 4

// ErrCircuitOpen is recorded on intents skipped while the chain breaker is open.
var ErrCircuitOpen = errors.New("ledger circuit open")

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	store   *Store
	chain   Chain
	locks   *keylock.Sharded
	logger  *slog.Logger
	metrics *Metrics
	auditor AuditPublisher
	breaker *circuit.Breaker

	retryConcurrency int
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
		s.auditor = p
	}
}

// WithBreaker short-circuits chain calls while b is open. Skipped calls leave
// failed intents for RetryFailed.
func WithBreaker(b *circuit.Breaker) Option {
	return func(s *Service) {
		s.breaker = b
	}
}

func WithRetryConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.retryConcurrency = n
		}
	}
}

func NewService(store *Store, chain Chain, opts ...Option) *Service {
	s := &Service{
		store:            store,
		chain:            chain,
		locks:            keylock.New(keylock.DefaultTimeout),
		logger:           slog.Default(),
		retryConcurrency: DefaultRetryConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record persists a pending intent and dispatches it. The returned error is
// only for local persistence failures; a chain failure shows up as a failed
// intent.
func (s *Service) Record(ctx context.Context, wallet domain.WalletAddress, action Action, amount domain.Amount) (*Intent, error) {
	now := requestcontext.Now(ctx)
	in := &Intent{
		ID:        uuid.New(),
		Wallet:    wallet,
		Action:    action,
		Amount:    amount,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Save(ctx, in); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record ledger intent")
	}
	s.metrics.incIntent(action)
	return s.dispatch(ctx, in)
}

// dispatch calls the chain without holding the intent lock, so a receipt for
// the same intent can be confirmed while the call is in flight. The outcome is
// then applied to a fresh read under the lock.
func (s *Service) dispatch(ctx context.Context, in *Intent) (*Intent, error) {
	receipt, callErr := s.guardedCall(ctx, in)
	if callErr != nil {
		s.metrics.incFailure(in.Action)
		s.logger.WarnContext(ctx, "ledger collaborator call failed",
			"intent_id", in.ID,
			"action", in.Action,
			"wallet", in.Wallet.Short(),
			"attempts", in.Attempts+1,
			"error", callErr,
		)
	}
	var out *Intent
	err := s.locks.WithKey(ctx, in.ID.String(), func(ctx context.Context) error {
		current, err := s.find(ctx, in.ID)
		if err != nil {
			return err
		}
		out = current
		return s.applyCall(ctx, current, receipt, callErr)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// applyCall folds a chain call outcome into in. A confirmed intent is never
// downgraded, and a failure reported by a receipt during the call is kept
// unless the call itself confirmed.
func (s *Service) applyCall(ctx context.Context, in *Intent, receipt Receipt, callErr error) error {
	in.Attempts++
	in.UpdatedAt = requestcontext.Now(ctx)
	confirmedBefore := in.Status == StatusConfirmed
	switch {
	case confirmedBefore:
		if in.TxHash == "" {
			in.TxHash = receipt.TxHash
		}
	case callErr != nil:
		in.Status = StatusFailed
		in.Error = callErr.Error()
	default:
		if receipt.TxHash != "" {
			in.TxHash = receipt.TxHash
		}
		if receipt.Confirmed {
			in.Status = StatusConfirmed
			in.Error = ""
		} else if in.Status != StatusFailed {
			in.Error = ""
		}
	}
	if err := s.store.Save(ctx, in); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update ledger intent")
	}
	switch {
	case confirmedBefore:
	case in.Status == StatusConfirmed:
		s.metrics.incConfirmed()
	case callErr != nil:
		s.emit(ctx, audit.EventLedgerIntentFailed, in)
	}
	return nil
}

func (s *Service) guardedCall(ctx context.Context, in *Intent) (Receipt, error) {
	if s.breaker == nil {
		return s.call(ctx, in)
	}
	if !s.breaker.Allow() {
		return Receipt{}, ErrCircuitOpen
	}
	receipt, err := s.call(ctx, in)
	if err != nil {
		if _, change := s.breaker.RecordFailure(); change.Opened {
			s.logger.WarnContext(ctx, "ledger circuit opened", "breaker", s.breaker.Name(), "error", err)
		}
		return receipt, err
	}
	if _, change := s.breaker.RecordSuccess(); change.Closed {
		s.logger.InfoContext(ctx, "ledger circuit closed", "breaker", s.breaker.Name())
	}
	return receipt, nil
}

func (s *Service) call(ctx context.Context, in *Intent) (Receipt, error) {
	ref := in.ID.String()
	switch in.Action {
	case ActionVerify:
		return s.chain.Verify(ctx, in.Wallet, ref)
	case ActionStake:
		return s.chain.Stake(ctx, in.Wallet, in.Amount, ref)
	case ActionReleaseWage:
		return s.chain.ReleaseWage(ctx, in.Wallet, in.Amount, ref)
	}
	return Receipt{}, dErrors.New(dErrors.CodeValidation, "unknown ledger action "+string(in.Action))
}

// Confirm applies an external confirmation (webhook or receipt topic).
// Confirming an already confirmed intent with the same hash is a no-op.
func (s *Service) Confirm(ctx context.Context, id uuid.UUID, txHash string, status Status) (*Intent, error) {
	if status == StatusPending {
		return nil, dErrors.New(dErrors.CodeValidation, "confirmation status must be confirmed or failed")
	}
	var out *Intent
	err := s.locks.WithKey(ctx, id.String(), func(ctx context.Context) error {
		in, err := s.find(ctx, id)
		if err != nil {
			return err
		}
		if in.Status == StatusConfirmed {
			if status == StatusConfirmed && (txHash == "" || txHash == in.TxHash) {
				out = in
				return nil
			}
			return dErrors.New(dErrors.CodeInvalidTransition, "ledger intent is already confirmed")
		}
		if txHash != "" {
			in.TxHash = txHash
		}
		in.Status = status
		in.UpdatedAt = requestcontext.Now(ctx)
		if status == StatusFailed && in.Error == "" {
			in.Error = "rejected by ledger"
		}
		if status == StatusConfirmed {
			in.Error = ""
		}
		if err := s.store.Save(ctx, in); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update ledger intent")
		}
		if status == StatusConfirmed {
			s.metrics.incConfirmed()
			s.emit(ctx, audit.EventLedgerIntentConfirmed, in)
		} else {
			s.emit(ctx, audit.EventLedgerIntentFailed, in)
		}
		out = in
		return nil
	})
	return out, err
}

// RetryFailed re-dispatches every failed intent with bounded concurrency.
func (s *Service) RetryFailed(ctx context.Context) (RetrySummary, error) {
	failed, err := s.store.ListByStatus(ctx, StatusFailed)
	if err != nil {
		return RetrySummary{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list ledger intents")
	}

	results := make([]Status, len(failed))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.retryConcurrency)
	for i, in := range failed {
		g.Go(func() error {
			current, claimed, err := s.claim(gctx, in.ID)
			if err != nil {
				return err
			}
			if !claimed {
				results[i] = current.Status
				return nil
			}
			s.metrics.incRetry()
			updated, err := s.dispatch(gctx, current)
			if err != nil {
				return err
			}
			results[i] = updated.Status
			return nil
		})
	}
	err = g.Wait()

	summary := RetrySummary{}
	for _, st := range results {
		if st == "" {
			continue
		}
		summary.Attempted++
		switch st {
		case StatusConfirmed:
			summary.Confirmed++
		case StatusPending:
			summary.Pending++
		case StatusFailed:
			summary.Failed++
		}
	}
	return summary, err
}

// claim moves a failed intent back to pending so that concurrent retries
// dispatch it once. An intent that is no longer failed, for example one a
// webhook resolved while the retry was queued, is returned unclaimed.
func (s *Service) claim(ctx context.Context, id uuid.UUID) (*Intent, bool, error) {
	var (
		out     *Intent
		claimed bool
	)
	err := s.locks.WithKey(ctx, id.String(), func(ctx context.Context) error {
		current, err := s.find(ctx, id)
		if err != nil {
			return err
		}
		out = current
		if current.Status != StatusFailed {
			return nil
		}
		current.Status = StatusPending
		current.UpdatedAt = requestcontext.Now(ctx)
		if err := s.store.Save(ctx, current); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to claim ledger intent")
		}
		claimed = true
		return nil
	})
	return out, claimed, err
}

func (s *Service) ListByWallet(ctx context.Context, wallet domain.WalletAddress) ([]*Intent, error) {
	out, err := s.store.ListByWallet(ctx, wallet)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list ledger intents")
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Intent, error) {
	return s.find(ctx, id)
}

func (s *Service) find(ctx context.Context, id uuid.UUID) (*Intent, error) {
	in, err := s.store.Find(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "ledger intent not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load ledger intent")
	}
	return in, nil
}

func (s *Service) emit(ctx context.Context, event audit.AuditEvent, in *Intent) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, audit.Event{
		Wallet:   string(in.Wallet),
		Action:   string(event),
		Decision: string(in.Status),
		Reason:   string(in.Action),
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "action", event, "error", err)
	}
}
