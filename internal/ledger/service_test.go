package ledger_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"surety/internal/ledger"
	"surety/internal/ledger/mocks"
	"surety/internal/storage"
	"surety/pkg/domain"
	dErrors "surety/pkg/domain-errors"
	"surety/pkg/platform/audit"
	"surety/pkg/platform/audit/store/memory"
	"surety/pkg/platform/circuit"
)

type LedgerServiceSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	chain   *mocks.MockChain
	store   *ledger.Store
	audits  *memory.InMemoryStore
	metrics *ledger.Metrics
	service *ledger.Service
	wallet  domain.WalletAddress
	ctx     context.Context
}

func TestLedgerServiceSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceSuite))
}

type auditSink struct{ store *memory.InMemoryStore }

func (a auditSink) Emit(ctx context.Context, e audit.Event) error { return a.store.Append(ctx, e) }

func (s *LedgerServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.chain = mocks.NewMockChain(s.ctrl)
	s.store = ledger.NewStore(storage.NewInMemoryStore())
	s.audits = memory.NewInMemoryStore()
	s.metrics = ledger.NewMetrics(prometheus.NewRegistry())
	s.service = ledger.NewService(s.store, s.chain,
		ledger.WithMetrics(s.metrics),
		ledger.WithAuditPublisher(auditSink{s.audits}),
	)
	s.wallet = domain.MustParseWallet("0x00000000000000000000000000000000000000b1")
	s.ctx = context.Background()
}

func (s *LedgerServiceSuite) TestRecord() {
	s.Run("confirmed receipt confirms the intent", func() {
		s.chain.EXPECT().
			Stake(gomock.Any(), s.wallet, domain.MustParseAmount("50"), gomock.Any()).
			Return(ledger.Receipt{TxHash: "0xabc", Confirmed: true}, nil)

		in, err := s.service.Record(s.ctx, s.wallet, ledger.ActionStake, domain.MustParseAmount("50"))
		s.Require().NoError(err)
		s.Equal(ledger.StatusConfirmed, in.Status)
		s.Equal("0xabc", in.TxHash)
		s.Equal(1, in.Attempts)

		stored, err := s.service.Get(s.ctx, in.ID)
		s.Require().NoError(err)
		s.Equal(ledger.StatusConfirmed, stored.Status)
	})

	s.Run("unconfirmed receipt stays pending", func() {
		s.chain.EXPECT().Verify(gomock.Any(), s.wallet, gomock.Any()).Return(ledger.Receipt{}, nil)

		in, err := s.service.Record(s.ctx, s.wallet, ledger.ActionVerify, domain.Zero)
		s.Require().NoError(err)
		s.Equal(ledger.StatusPending, in.Status)
	})

	s.Run("chain failure leaves a failed intent without failing the call", func() {
		s.chain.EXPECT().
			ReleaseWage(gomock.Any(), s.wallet, gomock.Any(), gomock.Any()).
			Return(ledger.Receipt{}, errors.New("rpc unavailable"))

		in, err := s.service.Record(s.ctx, s.wallet, ledger.ActionReleaseWage, domain.MustParseAmount("85"))
		s.Require().NoError(err)
		s.Equal(ledger.StatusFailed, in.Status)
		s.Contains(in.Error, "rpc unavailable")
		s.Equal(1.0, testutil.ToFloat64(s.metrics.Failures.WithLabelValues("release_wage")))

		events, err := s.audits.ListByWallet(s.ctx, string(s.wallet))
		s.Require().NoError(err)
		s.Require().NotEmpty(events)
		s.Equal(string(audit.EventLedgerIntentFailed), events[len(events)-1].Action)
	})

	all, err := s.service.ListByWallet(s.ctx, s.wallet)
	s.Require().NoError(err)
	s.Len(all, 3)
}

func (s *LedgerServiceSuite) TestRetryFailed() {
	var ids []uuid.UUID
	for range 3 {
		s.chain.EXPECT().Stake(gomock.Any(), s.wallet, gomock.Any(), gomock.Any()).
			Return(ledger.Receipt{}, errors.New("timeout"))
		in, err := s.service.Record(s.ctx, s.wallet, ledger.ActionStake, domain.MustParseAmount("10"))
		s.Require().NoError(err)
		ids = append(ids, in.ID)
	}

	var mu sync.Mutex
	calls := 0
	s.chain.EXPECT().Stake(gomock.Any(), s.wallet, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ domain.WalletAddress, _ domain.Amount, ref string) (ledger.Receipt, error) {
			mu.Lock()
			defer mu.Unlock()
			calls++
			if ref == ids[0].String() {
				return ledger.Receipt{}, errors.New("still down")
			}
			return ledger.Receipt{TxHash: "0x" + ref[:8], Confirmed: true}, nil
		}).Times(3)

	summary, err := s.service.RetryFailed(s.ctx)
	s.Require().NoError(err)
	s.Equal(ledger.RetrySummary{Attempted: 3, Confirmed: 2, Failed: 1}, summary)
	s.Equal(3, calls)

	first, err := s.service.Get(s.ctx, ids[0])
	s.Require().NoError(err)
	s.Equal(2, first.Attempts)
	s.Equal(ledger.StatusFailed, first.Status)
}

func (s *LedgerServiceSuite) TestReceiptDuringCallIsKept() {
	confirmFromChain := func(ctx context.Context, _ domain.WalletAddress, _ domain.Amount, ref string) (ledger.Receipt, error) {
		out, err := s.service.Confirm(ctx, uuid.MustParse(ref), "0xabc", ledger.StatusConfirmed)
		s.Require().NoError(err)
		s.Require().Equal(ledger.StatusConfirmed, out.Status)
		return ledger.Receipt{}, nil
	}

	s.Run("record does not overwrite a confirmation", func() {
		s.chain.EXPECT().Stake(gomock.Any(), s.wallet, gomock.Any(), gomock.Any()).DoAndReturn(confirmFromChain)

		in, err := s.service.Record(s.ctx, s.wallet, ledger.ActionStake, domain.MustParseAmount("5"))
		s.Require().NoError(err)
		s.Equal(ledger.StatusConfirmed, in.Status)
		s.Equal("0xabc", in.TxHash)

		stored, err := s.service.Get(s.ctx, in.ID)
		s.Require().NoError(err)
		s.Equal(ledger.StatusConfirmed, stored.Status)
		s.Equal("0xabc", stored.TxHash)
		s.Equal(1, stored.Attempts)
	})

	s.Run("a failed call does not downgrade a confirmed retry", func() {
		s.chain.EXPECT().Stake(gomock.Any(), s.wallet, gomock.Any(), gomock.Any()).
			Return(ledger.Receipt{}, errors.New("timeout"))
		in, err := s.service.Record(s.ctx, s.wallet, ledger.ActionStake, domain.MustParseAmount("6"))
		s.Require().NoError(err)
		s.Require().Equal(ledger.StatusFailed, in.Status)

		s.chain.EXPECT().Stake(gomock.Any(), s.wallet, gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, w domain.WalletAddress, a domain.Amount, ref string) (ledger.Receipt, error) {
				_, _ = confirmFromChain(ctx, w, a, ref)
				return ledger.Receipt{}, errors.New("connection reset after submit")
			})

		summary, err := s.service.RetryFailed(s.ctx)
		s.Require().NoError(err)
		s.Equal(ledger.RetrySummary{Attempted: 1, Confirmed: 1}, summary)

		stored, err := s.service.Get(s.ctx, in.ID)
		s.Require().NoError(err)
		s.Equal(ledger.StatusConfirmed, stored.Status)
		s.Equal("0xabc", stored.TxHash)
		s.Equal(2, stored.Attempts)
	})
}

func (s *LedgerServiceSuite) TestBreakerSkipsChainWhileOpen() {
	breaker := circuit.New("chain", circuit.WithFailureThreshold(2))
	svc := ledger.NewService(s.store, s.chain, ledger.WithBreaker(breaker))

	s.chain.EXPECT().Verify(gomock.Any(), s.wallet, gomock.Any()).
		Return(ledger.Receipt{}, errors.New("rpc unreachable")).Times(2)
	for range 2 {
		in, err := svc.Record(s.ctx, s.wallet, ledger.ActionVerify, domain.Zero)
		s.Require().NoError(err)
		s.Equal(ledger.StatusFailed, in.Status)
	}
	s.Require().True(breaker.IsOpen())

	// no chain expectation: an open breaker must not call out
	in, err := svc.Record(s.ctx, s.wallet, ledger.ActionVerify, domain.Zero)
	s.Require().NoError(err)
	s.Equal(ledger.StatusFailed, in.Status)
	s.Equal(ledger.ErrCircuitOpen.Error(), in.Error)

	failed, err := s.store.ListByStatus(s.ctx, ledger.StatusFailed)
	s.Require().NoError(err)
	s.Len(failed, 3, "skipped calls stay retryable")
}

func (s *LedgerServiceSuite) TestConfirm() {
	s.chain.EXPECT().Stake(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(ledger.Receipt{TxHash: "0x01"}, nil)
	in, err := s.service.Record(s.ctx, s.wallet, ledger.ActionStake, domain.MustParseAmount("1"))
	s.Require().NoError(err)
	s.Require().Equal(ledger.StatusPending, in.Status)

	s.Run("pending is not a valid confirmation", func() {
		_, err := s.service.Confirm(s.ctx, in.ID, "0x01", ledger.StatusPending)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown intent is not found", func() {
		_, err := s.service.Confirm(s.ctx, uuid.New(), "0x01", ledger.StatusConfirmed)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("confirmation is applied once and repeats are no-ops", func() {
		out, err := s.service.Confirm(s.ctx, in.ID, "0x01", ledger.StatusConfirmed)
		s.Require().NoError(err)
		s.Equal(ledger.StatusConfirmed, out.Status)

		out, err = s.service.Confirm(s.ctx, in.ID, "0x01", ledger.StatusConfirmed)
		s.Require().NoError(err)
		s.Equal(ledger.StatusConfirmed, out.Status)

		_, err = s.service.Confirm(s.ctx, in.ID, "0x02", ledger.StatusConfirmed)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
		_, err = s.service.Confirm(s.ctx, in.ID, "", ledger.StatusFailed)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})
}

func TestInMemoryChainIsIdempotentPerRef(t *testing.T) {
	chain := ledger.NewInMemoryChain()
	w := domain.MustParseWallet("0x00000000000000000000000000000000000000c1")
	r1, err := chain.Stake(context.Background(), w, domain.MustParseAmount("5"), "ref-1")
	if err != nil {
		t.Fatalf("stake: %v", err)
	}
	r2, _ := chain.Stake(context.Background(), w, domain.MustParseAmount("5"), "ref-1")
	if r1 != r2 || !r1.Confirmed || len(r1.TxHash) != 66 {
		t.Fatalf("unexpected receipts %+v %+v", r1, r2)
	}
	if chain.Submissions() != 1 {
		t.Fatalf("expected 1 submission, got %d", chain.Submissions())
	}
}
