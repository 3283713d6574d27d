// Package identity accepts national identifiers, keeps only their fingerprint,
// and tracks oracle review of each wallet's submission.
package identity

import (
	"context"
	"errors"
	"log/slog"

	"surety/pkg/domain"
	dErrors "surety/pkg/domain-errors"
	"surety/pkg/platform/sentinel"
	"surety/pkg/requestcontext"
)

// ContentPublisher stores an anonymized record and returns its content id.
type ContentPublisher interface {
	Put(ctx context.Context, record any) (string, error)
}

type Service struct {
	repo      *Repository
	publisher ContentPublisher
	logger    *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithContentPublisher enables best-effort publication of submissions.
func WithContentPublisher(p ContentPublisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

func NewService(repo *Repository, opts ...Option) *Service {
	s := &Service{repo: repo, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates rawID, stores a pending submission and then publishes its
// anonymized record. It overwrites any pending or rejected record for the
// wallet. rawID is not retained past this call.
func (s *Service) Submit(ctx context.Context, wallet domain.WalletAddress, idType IDType, rawID string) (*Result, error) {
	draft, err := s.Prepare(ctx, wallet, idType, rawID)
	if err != nil {
		return nil, err
	}
	if err := s.Commit(ctx, draft); err != nil {
		return nil, err
	}
	sub := draft.Submission
	if cid := s.Publish(ctx, sub); cid != "" {
		if err := s.AttachContent(ctx, wallet, sub.IDHash, cid); err == nil {
			sub.ExternalContentID = cid
		}
	}
	return sub.Result(), nil
}

// Prepare validates rawID and builds the pending submission that would
// replace the wallet's current one. Nothing is written.
func (s *Service) Prepare(ctx context.Context, wallet domain.WalletAddress, idType IDType, rawID string) (*Draft, error) {
	if _, err := ParseIDType(string(idType)); err != nil {
		return nil, err
	}
	if err := ValidateIdentifier(rawID); err != nil {
		return nil, err
	}

	existing, err := s.repo.Find(ctx, wallet)
	switch {
	case err == nil && existing.Status == StatusVerified:
		return nil, dErrors.New(dErrors.CodeInvalidTransition, "identity is already verified")
	case err != nil && !errors.Is(err, sentinel.ErrNotFound):
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load identity submission")
	case err != nil:
		existing = nil
	}

	return &Draft{
		Submission: &Submission{
			Wallet:      wallet,
			IDType:      idType,
			IDHash:      Fingerprint(wallet, idType, rawID),
			Status:      StatusPending,
			SubmittedAt: requestcontext.Now(ctx),
		},
		previous: existing,
	}, nil
}

func (s *Service) Commit(ctx context.Context, d *Draft) error {
	if err := s.repo.Save(ctx, d.Submission); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save identity submission")
	}
	return nil
}

// Rollback undoes a committed draft, restoring the submission it replaced.
func (s *Service) Rollback(ctx context.Context, d *Draft) error {
	var err error
	if d.previous == nil {
		err = s.repo.Delete(ctx, d.Submission.Wallet)
	} else {
		err = s.repo.Save(ctx, d.previous)
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to roll back identity submission")
	}
	return nil
}

// Publish sends the anonymized record of sub to the content store. It returns
// the content id, or "" when publication is disabled or failed.
func (s *Service) Publish(ctx context.Context, sub *Submission) string {
	if s.publisher == nil {
		return ""
	}
	rec := PublicRecord{Wallet: sub.Wallet, IDType: sub.IDType, IDHash: sub.IDHash, Timestamp: sub.SubmittedAt}
	cid, err := s.publisher.Put(ctx, rec)
	if err != nil {
		s.logger.WarnContext(ctx, "identity record publish failed",
			"wallet", rec.Wallet.Short(),
			"id_hash", rec.IDHash,
			"error", err,
		)
		return ""
	}
	return cid
}

// AttachContent records cid on the wallet's submission when it still carries
// idHash. A submission replaced in the meantime is left alone.
func (s *Service) AttachContent(ctx context.Context, wallet domain.WalletAddress, idHash, cid string) error {
	sub, err := s.Find(ctx, wallet)
	if err != nil {
		return err
	}
	if sub.IDHash != idHash || sub.ExternalContentID == cid {
		return nil
	}
	sub.ExternalContentID = cid
	if err := s.repo.Save(ctx, sub); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save identity content id")
	}
	return nil
}

// Status returns the neutral not_submitted view for unknown wallets.
func (s *Service) Status(ctx context.Context, wallet domain.WalletAddress) (View, error) {
	sub, err := s.repo.Find(ctx, wallet)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return View{Wallet: wallet, Status: StatusNotSubmitted}, nil
		}
		return View{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load identity submission")
	}
	return sub.View(), nil
}

// Find returns the raw submission, or a NotFound domain error.
func (s *Service) Find(ctx context.Context, wallet domain.WalletAddress) (*Submission, error) {
	sub, err := s.repo.Find(ctx, wallet)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "identity submission not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load identity submission")
	}
	return sub, nil
}

func (s *Service) MarkVerified(ctx context.Context, wallet domain.WalletAddress) (*Submission, error) {
	return s.review(ctx, wallet, StatusVerified)
}

func (s *Service) MarkRejected(ctx context.Context, wallet domain.WalletAddress) (*Submission, error) {
	return s.review(ctx, wallet, StatusRejected)
}

func (s *Service) review(ctx context.Context, wallet domain.WalletAddress, to Status) (*Submission, error) {
	sub, err := s.Find(ctx, wallet)
	if err != nil {
		return nil, err
	}
	if sub.Status.IsTerminal() {
		return nil, dErrors.New(dErrors.CodeInvalidTransition, "identity submission is already "+string(sub.Status))
	}
	reviewed := requestcontext.Now(ctx)
	sub.Status = to
	sub.ReviewedAt = &reviewed
	if err := s.repo.Save(ctx, sub); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save identity review")
	}
	return sub, nil
}
