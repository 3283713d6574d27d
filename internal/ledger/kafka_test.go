package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"surety/pkg/domain"
	dErrors "surety/pkg/domain-errors"
)

type recordingProducer struct {
	records []*kgo.Record
	err     error
}

func (p *recordingProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	out := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		if p.err == nil {
			p.records = append(p.records, r)
		}
		out = append(out, kgo.ProduceResult{Record: r, Err: p.err})
	}
	return out
}

func TestKafkaChainPublishesIntent(t *testing.T) {
	prod := &recordingProducer{}
	chain := NewKafkaChain(prod, "")
	w := domain.MustParseWallet("0x00000000000000000000000000000000000000d1")

	receipt, err := chain.ReleaseWage(context.Background(), w, domain.MustParseAmount("100"), "intent-1")
	require.NoError(t, err)
	assert.False(t, receipt.Confirmed)

	require.Len(t, prod.records, 1)
	rec := prod.records[0]
	assert.Equal(t, DefaultIntentTopic, rec.Topic)
	assert.Equal(t, string(w), string(rec.Key))

	var msg IntentMessage
	require.NoError(t, json.Unmarshal(rec.Value, &msg))
	assert.Equal(t, "intent-1", msg.IntentID)
	assert.Equal(t, ActionReleaseWage, msg.Action)
	assert.Equal(t, "100.000000", msg.Amount.String())
}

func TestKafkaChainSurfacesProduceError(t *testing.T) {
	chain := NewKafkaChain(&recordingProducer{err: errors.New("broker down")}, "custom")
	_, err := chain.Verify(context.Background(), domain.MustParseWallet("0x00000000000000000000000000000000000000d2"), "intent-2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}

type recordingConfirmer struct {
	ids      []uuid.UUID
	statuses []Status
	errs     map[uuid.UUID]error
}

func (c *recordingConfirmer) Confirm(_ context.Context, id uuid.UUID, _ string, status Status) (*Intent, error) {
	c.ids = append(c.ids, id)
	c.statuses = append(c.statuses, status)
	if err := c.errs[id]; err != nil {
		return nil, err
	}
	return &Intent{ID: id, Status: status}, nil
}

func receiptValue(id uuid.UUID) []byte {
	return []byte(`{"intent_id":"` + id.String() + `","tx_hash":"0x9","status":"confirmed"}`)
}

func TestReceiptConsumerApply(t *testing.T) {
	ctx := context.Background()
	missing, stale, broken := uuid.New(), uuid.New(), uuid.New()
	conf := &recordingConfirmer{errs: map[uuid.UUID]error{
		missing: dErrors.New(dErrors.CodeNotFound, "ledger intent not found"),
		stale:   dErrors.New(dErrors.CodeInvalidTransition, "ledger intent is already confirmed"),
		broken:  dErrors.Wrap(errors.New("connection refused"), dErrors.CodeInternal, "failed to update ledger intent"),
	}}
	c := NewReceiptConsumer(nil, conf, nil)
	id := uuid.New()

	t.Run("applies and drops unusable receipts", func(t *testing.T) {
		require.NoError(t, c.apply(ctx, receiptValue(id)))
		require.NoError(t, c.apply(ctx, []byte(`not json`)))
		require.NoError(t, c.apply(ctx, []byte(`{"intent_id":"nope","status":"confirmed"}`)))
		require.NoError(t, c.apply(ctx, receiptValue(missing)))
		require.NoError(t, c.apply(ctx, receiptValue(stale)))

		require.Len(t, conf.ids, 3)
		assert.Equal(t, id, conf.ids[0])
		assert.Equal(t, StatusConfirmed, conf.statuses[0])
	})

	t.Run("storage failures are returned for redelivery", func(t *testing.T) {
		err := c.apply(ctx, receiptValue(broken))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func TestReceiptConsumerHandleHoldsBackFailedPartitions(t *testing.T) {
	ok1, failing, after, other := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	conf := &recordingConfirmer{errs: map[uuid.UUID]error{
		failing: errors.New("store unavailable"),
	}}
	c := NewReceiptConsumer(nil, conf, nil)
	records := []*kgo.Record{
		{Topic: DefaultReceiptTopic, Partition: 0, Offset: 10, LeaderEpoch: 3, Value: receiptValue(ok1)},
		{Topic: DefaultReceiptTopic, Partition: 0, Offset: 11, LeaderEpoch: 3, Value: receiptValue(failing)},
		{Topic: DefaultReceiptTopic, Partition: 0, Offset: 12, LeaderEpoch: 3, Value: receiptValue(after)},
		{Topic: DefaultReceiptTopic, Partition: 1, Offset: 4, Value: receiptValue(other)},
	}

	done, rewind := c.handle(context.Background(), records)

	assert.Equal(t, []*kgo.Record{records[0], records[3]}, done)
	assert.Equal(t, map[string]map[int32]kgo.EpochOffset{
		DefaultReceiptTopic: {0: {Epoch: 3, Offset: 11}},
	}, rewind)
	assert.Equal(t, []uuid.UUID{ok1, failing, other}, conf.ids, "records after a failure wait for redelivery")

	delete(conf.errs, failing)
	done, rewind = c.handle(context.Background(), records[1:3])
	assert.Len(t, done, 2)
	assert.Empty(t, rewind)
}
