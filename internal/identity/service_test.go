package identity

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"surety/internal/storage"
	"surety/pkg/domain"
	dErrors "surety/pkg/domain-errors"
	"surety/pkg/requestcontext"
)

const rawBVN = "22212345678"

type stubPublisher struct {
	cid     string
	err     error
	records []any
}

func (p *stubPublisher) Put(_ context.Context, record any) (string, error) {
	p.records = append(p.records, record)
	return p.cid, p.err
}

type IdentityServiceSuite struct {
	suite.Suite
	kv        *storage.InMemoryStore
	publisher *stubPublisher
	service   *Service
	wallet    domain.WalletAddress
	ctx       context.Context
}

func TestIdentityServiceSuite(t *testing.T) {
	suite.Run(t, new(IdentityServiceSuite))
}

func (s *IdentityServiceSuite) SetupTest() {
	s.kv = storage.NewInMemoryStore()
	s.publisher = &stubPublisher{cid: "sha256:abc"}
	s.service = NewService(NewRepository(s.kv), WithContentPublisher(s.publisher))
	s.wallet = domain.MustParseWallet("0xAbC0000000000000000000000000000000000001")
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC))
}

func (s *IdentityServiceSuite) TestSubmitValidation() {
	s.Run("10 and 12 digit identifiers are rejected", func() {
		for _, raw := range []string{"2221234567", "222123456789"} {
			_, err := s.service.Submit(s.ctx, s.wallet, IDTypeBVN, raw)
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeInvalidIdentifier), raw)
		}
	})

	s.Run("non-digit identifiers are rejected", func() {
		_, err := s.service.Submit(s.ctx, s.wallet, IDTypeNIN, "2221234567a")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidIdentifier))
	})

	s.Run("unknown id type is rejected", func() {
		_, err := s.service.Submit(s.ctx, s.wallet, IDType("SSN"), rawBVN)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidIdentifier))
	})

	s.Run("eleven digits succeed for both types", func() {
		for _, t := range []IDType{IDTypeBVN, IDTypeNIN} {
			res, err := s.service.Submit(s.ctx, s.wallet, t, rawBVN)
			s.Require().NoError(err)
			s.Equal(StatusPending, res.Status)
			s.Equal(Fingerprint(s.wallet, t, rawBVN), res.IDHash)
		}
	})
}

func (s *IdentityServiceSuite) TestSubmitNeverStoresRawIdentifier() {
	res, err := s.service.Submit(s.ctx, s.wallet, IDTypeBVN, rawBVN)
	s.Require().NoError(err)
	s.Len(res.IDHash, 64)

	raw, err := s.kv.Get(s.ctx, keyPrefix+string(s.wallet))
	s.Require().NoError(err)
	s.False(bytes.Contains(raw, []byte(rawBVN)))

	s.Require().Len(s.publisher.records, 1)
	rec := s.publisher.records[0].(PublicRecord)
	s.Equal(res.IDHash, rec.IDHash)
	s.Equal(s.wallet, rec.Wallet)
}

func (s *IdentityServiceSuite) TestSubmitPublishFailureIsNonFatal() {
	s.publisher.err = errors.New("gateway timeout")

	res, err := s.service.Submit(s.ctx, s.wallet, IDTypeNIN, rawBVN)
	s.Require().NoError(err)
	s.Equal(StatusPending, res.Status)
	s.Empty(res.ContentID)

	view, err := s.service.Status(s.ctx, s.wallet)
	s.Require().NoError(err)
	s.Equal(StatusPending, view.Status)
	s.Empty(view.ContentID)
}

func (s *IdentityServiceSuite) TestAttachContentSkipsReplacedSubmission() {
	first, err := s.service.Prepare(s.ctx, s.wallet, IDTypeBVN, rawBVN)
	s.Require().NoError(err)
	s.Require().NoError(s.service.Commit(s.ctx, first))
	second, err := s.service.Prepare(s.ctx, s.wallet, IDTypeNIN, "12345678901")
	s.Require().NoError(err)
	s.Require().NoError(s.service.Commit(s.ctx, second))

	s.Require().NoError(s.service.AttachContent(s.ctx, s.wallet, first.Submission.IDHash, "sha256:old"))
	view, err := s.service.Status(s.ctx, s.wallet)
	s.Require().NoError(err)
	s.Empty(view.ContentID)

	s.Require().NoError(s.service.Rollback(s.ctx, second))
	view, err = s.service.Status(s.ctx, s.wallet)
	s.Require().NoError(err)
	s.Equal(first.Submission.IDHash, view.IDHash)
}

func (s *IdentityServiceSuite) TestStatus() {
	s.Run("unknown wallet is not_submitted", func() {
		other := domain.MustParseWallet("0x00000000000000000000000000000000000000ff")
		view, err := s.service.Status(s.ctx, other)
		s.Require().NoError(err)
		s.Equal(StatusNotSubmitted, view.Status)
		s.Nil(view.SubmittedAt)
	})

	s.Run("submitted wallet reports hash and time", func() {
		res, err := s.service.Submit(s.ctx, s.wallet, IDTypeBVN, rawBVN)
		s.Require().NoError(err)

		view, err := s.service.Status(s.ctx, s.wallet)
		s.Require().NoError(err)
		s.Equal(res.IDHash, view.IDHash)
		s.Equal("sha256:abc", view.ContentID)
		s.Require().NotNil(view.SubmittedAt)
		s.Equal(requestcontext.Now(s.ctx), *view.SubmittedAt)
	})
}

func (s *IdentityServiceSuite) TestReviewTransitions() {
	s.Run("review of missing submission is not found", func() {
		_, err := s.service.MarkVerified(s.ctx, domain.MustParseWallet("0x00000000000000000000000000000000000000ee"))
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("pending can be verified once", func() {
		_, err := s.service.Submit(s.ctx, s.wallet, IDTypeBVN, rawBVN)
		s.Require().NoError(err)

		sub, err := s.service.MarkVerified(s.ctx, s.wallet)
		s.Require().NoError(err)
		s.Equal(StatusVerified, sub.Status)
		s.NotNil(sub.ReviewedAt)

		_, err = s.service.MarkRejected(s.ctx, s.wallet)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
		_, err = s.service.MarkVerified(s.ctx, s.wallet)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})

	s.Run("verified identity cannot be resubmitted", func() {
		_, err := s.service.Submit(s.ctx, s.wallet, IDTypeNIN, "12345678901")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})
}

func (s *IdentityServiceSuite) TestRejectedSubmissionCanBeReplaced() {
	_, err := s.service.Submit(s.ctx, s.wallet, IDTypeBVN, rawBVN)
	s.Require().NoError(err)
	_, err = s.service.MarkRejected(s.ctx, s.wallet)
	s.Require().NoError(err)

	res, err := s.service.Submit(s.ctx, s.wallet, IDTypeNIN, "12345678901")
	s.Require().NoError(err)
	s.Equal(StatusPending, res.Status)

	view, err := s.service.Status(s.ctx, s.wallet)
	s.Require().NoError(err)
	s.Equal(IDTypeNIN, view.IDType)
	s.Nil(view.ReviewedAt)
}
