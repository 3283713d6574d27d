//go:build integration

package ledger_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"surety/internal/ledger"
	"surety/internal/storage"
	"surety/pkg/domain"
	"surety/pkg/testutil/containers"
)

func TestKafkaChainRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	rp := containers.NewRedpandaContainer(t)
	defer rp.Terminate(ctx)

	producer, err := ledger.NewKafkaClient([]string{rp.Broker}, "")
	require.NoError(t, err)
	defer producer.Close()
	require.NoError(t, ledger.EnsureTopics(ctx, producer, 1, 1, ledger.DefaultIntentTopic, ledger.DefaultReceiptTopic))
	// second call must tolerate existing topics
	require.NoError(t, ledger.EnsureTopics(ctx, producer, 1, 1, ledger.DefaultIntentTopic))

	svc := ledger.NewService(ledger.NewStore(storage.NewInMemoryStore()), ledger.NewKafkaChain(producer, ledger.DefaultIntentTopic))
	wallet := domain.MustParseWallet("0x00000000000000000000000000000000000000e1")
	in, err := svc.Record(ctx, wallet, ledger.ActionStake, domain.MustParseAmount("25"))
	require.NoError(t, err)
	require.Equal(t, ledger.StatusPending, in.Status)

	receipt, err := json.Marshal(ledger.ReceiptMessage{IntentID: in.ID.String(), TxHash: "0xfeed", Status: ledger.StatusConfirmed})
	require.NoError(t, err)
	require.NoError(t, producer.ProduceSync(ctx, &kgo.Record{Topic: ledger.DefaultReceiptTopic, Value: receipt}).FirstErr())

	consumerClient, err := ledger.NewKafkaClient([]string{rp.Broker}, "surety-test", ledger.DefaultReceiptTopic)
	require.NoError(t, err)
	defer consumerClient.Close()

	runCtx, stop := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		_ = ledger.NewReceiptConsumer(consumerClient, svc, nil).Run(runCtx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		got, err := svc.Get(ctx, in.ID)
		return err == nil && got.Status == ledger.StatusConfirmed && got.TxHash == "0xfeed"
	}, 60*time.Second, 250*time.Millisecond)
	stop()
	<-done
}
