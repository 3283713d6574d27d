// Package jobs tracks employer job postings from posting through oracle
// verification. A verified job counts toward the worker's risk score.
package jobs

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"surety/internal/bond"
	"surety/internal/geofence"
	"surety/pkg/attrs"
	"surety/pkg/domain"
	dErrors "surety/pkg/domain-errors"
	"surety/pkg/platform/audit"
	"surety/pkg/platform/keylock"
	"surety/pkg/platform/sentinel"
	"surety/pkg/requestcontext"
)

const maxTitleLength = 200

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

// CompletionRecorder credits a verified job to a worker.
type CompletionRecorder interface {
	RecordJobCompleted(ctx context.Context, wallet domain.WalletAddress) (*bond.Result, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	repo      *Repository
	sites     *geofence.Sites
	completer CompletionRecorder
	locks     *keylock.Sharded

	logger         *slog.Logger
	auditPublisher AuditPublisher
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = p
	}
}

func WithSites(sites *geofence.Sites) Option {
	return func(s *Service) {
		s.sites = sites
	}
}

func NewService(repo *Repository, completer CompletionRecorder, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		completer: completer,
		locks:     keylock.New(keylock.DefaultTimeout),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.sites == nil {
		s.sites, _ = geofence.NewSites()
	}
	return s
}

// Create posts a PENDING job. An empty site id binds the default site.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Job, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "title is required")
	}
	if len(title) > maxTitleLength {
		return nil, dErrors.New(dErrors.CodeValidation, "title is too long")
	}
	if !req.Amount.IsPositive() {
		return nil, dErrors.New(dErrors.CodeInvalidAmount, "job amount must be positive")
	}
	now := requestcontext.Now(ctx)
	job := &Job{
		ID:          uuid.New(),
		Employer:    req.Employer,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Amount:      req.Amount,
		SiteID:      s.sites.Lookup(req.SiteID).ID,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Save(ctx, job); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save job")
	}
	s.logAudit(ctx, audit.EventJobPosted,
		"wallet", string(job.Employer),
		"job_id", job.ID.String(),
		"amount", job.Amount.String(),
	)
	return job, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Job, error) {
	job, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, translateFind(err)
	}
	return job, nil
}

func (s *Service) List(ctx context.Context, f Filter) ([]*Job, error) {
	jobs, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list jobs")
	}
	return jobs, nil
}

// Start assigns worker to a PENDING job. When a position is given it must lie
// inside the job's site.
func (s *Service) Start(ctx context.Context, id uuid.UUID, worker domain.WalletAddress, position *geofence.Coordinate) (*Job, error) {
	if err := s.checkPosition(position, ""); err != nil {
		return nil, err
	}
	job, err := s.update(ctx, id, func(job *Job) error {
		if job.Status != StatusPending {
			return dErrors.New(dErrors.CodeInvalidTransition, "job is "+string(job.Status))
		}
		if err := s.checkPosition(position, job.SiteID); err != nil {
			return err
		}
		job.Worker = worker
		job.Status = StatusInProgress
		job.Start = position
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, audit.EventJobStarted,
		"wallet", string(worker),
		"job_id", job.ID.String(),
	)
	return job, nil
}

// Complete verifies an IN_PROGRESS job for its assigned worker and credits the
// worker's job count. A worker without an account leaves the job verified
// with WorkerUpdated unset. Completing a VERIFIED job that was never credited
// retries the credit; the job is credited at most once.
func (s *Service) Complete(ctx context.Context, id uuid.UUID, worker domain.WalletAddress, position *geofence.Coordinate) (*CompleteResult, error) {
	if err := s.checkPosition(position, ""); err != nil {
		return nil, err
	}
	var out *CompleteResult
	err := s.locks.WithKey(ctx, id.String(), func(ctx context.Context) error {
		job, err := s.repo.Find(ctx, id)
		if err != nil {
			return translateFind(err)
		}
		retry := job.Status == StatusVerified && !job.WorkerCredited
		if job.Status != StatusInProgress && !retry {
			return dErrors.New(dErrors.CodeInvalidTransition, "job must be IN_PROGRESS to complete")
		}
		if job.Worker != worker {
			return dErrors.New(dErrors.CodeConflict, "job is assigned to another worker")
		}
		if !retry {
			if err := s.checkPosition(position, job.SiteID); err != nil {
				return err
			}
			job.Status = StatusVerified
			job.End = position
			if err := s.save(ctx, job); err != nil {
				return err
			}
		}
		out = &CompleteResult{Job: job}
		s.credit(ctx, out)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// credit records the job against the worker's account. Runs under the job lock
// so concurrent completions credit once.
func (s *Service) credit(ctx context.Context, out *CompleteResult) {
	job := out.Job
	credited, err := s.completer.RecordJobCompleted(ctx, job.Worker)
	switch {
	case err == nil:
		out.WorkerUpdated = true
		out.RiskScore = credited.Account.RiskScore
	case dErrors.HasCode(err, dErrors.CodeNotFound):
		s.logger.InfoContext(ctx, "verified job for worker without account",
			"job_id", job.ID.String(),
			"wallet", job.Worker.Short(),
		)
		return
	default:
		s.logger.WarnContext(ctx, "failed to credit completed job",
			"job_id", job.ID.String(),
			"wallet", job.Worker.Short(),
			"error", err,
		)
		return
	}
	job.WorkerCredited = true
	if err := s.save(ctx, job); err != nil {
		s.logger.ErrorContext(ctx, "credited job not marked credited",
			"job_id", job.ID.String(),
			"wallet", job.Worker.Short(),
			"error", err,
		)
	}
}

// Cancel withdraws a PENDING job. Only the posting employer may cancel.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, employer domain.WalletAddress) (*Job, error) {
	job, err := s.update(ctx, id, func(job *Job) error {
		if job.Employer != employer {
			return dErrors.New(dErrors.CodeForbidden, "job belongs to another employer")
		}
		if job.Status != StatusPending {
			return dErrors.New(dErrors.CodeInvalidTransition, "only pending jobs can be cancelled")
		}
		job.Status = StatusCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, audit.EventJobCancelled,
		"wallet", string(employer),
		"job_id", job.ID.String(),
	)
	return job, nil
}

// checkPosition validates position and, when siteID is set, requires it to be
// inside that site's fence.
func (s *Service) checkPosition(position *geofence.Coordinate, siteID string) error {
	if position == nil {
		return nil
	}
	if siteID == "" {
		return position.Validate()
	}
	res, err := geofence.Verify(*position, s.sites.Lookup(siteID))
	if err != nil {
		return err
	}
	if !res.Verified {
		return dErrors.New(dErrors.CodeOutOfRange, "position is outside the job site")
	}
	return nil
}

func (s *Service) update(ctx context.Context, id uuid.UUID, fn func(job *Job) error) (*Job, error) {
	var out *Job
	err := s.locks.WithKey(ctx, id.String(), func(ctx context.Context) error {
		job, err := s.repo.Find(ctx, id)
		if err != nil {
			return translateFind(err)
		}
		if err := fn(job); err != nil {
			return err
		}
		if err := s.save(ctx, job); err != nil {
			return err
		}
		out = job
		return nil
	})
	return out, err
}

func (s *Service) save(ctx context.Context, job *Job) error {
	job.UpdatedAt = requestcontext.Now(ctx)
	if err := s.repo.Save(ctx, job); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save job")
	}
	return nil
}

func translateFind(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "job not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load job")
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, attributes ...any) {
	args := append(attributes, "event", string(event), "log_type", "audit")
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(event), args...)
	}
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, audit.Event{
		Wallet: attrs.ExtractString(attributes, "wallet"),
		Action: string(event),
		Reason: attrs.ExtractString(attributes, "job_id"),
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "event", event, "error", err)
	}
}
