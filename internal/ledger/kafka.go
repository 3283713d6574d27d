package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"surety/pkg/domain"
	dErrors "surety/pkg/domain-errors"
)

const (
	DefaultIntentTopic  = "surety.ledger.intents"
	DefaultReceiptTopic = "surety.ledger.receipts"
)

// IntentMessage is published for the chain relayer. Key is the wallet, so all
// intents of one wallet land on one partition in order.
type IntentMessage struct {
	IntentID    string               `json:"intent_id"`
	Wallet      domain.WalletAddress `json:"wallet_address"`
	Action      Action               `json:"action"`
	Amount      domain.Amount        `json:"amount"`
	SubmittedAt time.Time            `json:"submitted_at"`
}

// ReceiptMessage is consumed from the relayer once a transaction settles.
type ReceiptMessage struct {
	IntentID string `json:"intent_id"`
	TxHash   string `json:"tx_hash"`
	Status   Status `json:"status"`
}

// Producer is the part of *kgo.Client KafkaChain needs.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// KafkaChain hands intents to an out-of-process relayer. Acceptance by the
// broker yields an unconfirmed receipt; finality arrives on the receipt topic.
type KafkaChain struct {
	producer Producer
	topic    string
	now      func() time.Time
}

func NewKafkaChain(producer Producer, topic string) *KafkaChain {
	if topic == "" {
		topic = DefaultIntentTopic
	}
	return &KafkaChain{producer: producer, topic: topic, now: time.Now}
}

func (c *KafkaChain) Verify(ctx context.Context, wallet domain.WalletAddress, ref string) (Receipt, error) {
	return c.publish(ctx, ActionVerify, wallet, domain.Zero, ref)
}

func (c *KafkaChain) Stake(ctx context.Context, wallet domain.WalletAddress, amount domain.Amount, ref string) (Receipt, error) {
	return c.publish(ctx, ActionStake, wallet, amount, ref)
}

func (c *KafkaChain) ReleaseWage(ctx context.Context, wallet domain.WalletAddress, amount domain.Amount, ref string) (Receipt, error) {
	return c.publish(ctx, ActionReleaseWage, wallet, amount, ref)
}

func (c *KafkaChain) publish(ctx context.Context, action Action, wallet domain.WalletAddress, amount domain.Amount, ref string) (Receipt, error) {
	value, err := json.Marshal(IntentMessage{
		IntentID:    ref,
		Wallet:      wallet,
		Action:      action,
		Amount:      amount,
		SubmittedAt: c.now().UTC(),
	})
	if err != nil {
		return Receipt{}, fmt.Errorf("encode intent: %w", err)
	}
	rec := &kgo.Record{
		Topic: c.topic,
		Key:   []byte(wallet),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "intent_id", Value: []byte(ref)},
			{Key: "action", Value: []byte(action)},
		},
	}
	if err := c.producer.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return Receipt{}, fmt.Errorf("produce intent %s: %w", ref, err)
	}
	return Receipt{}, nil
}

// NewKafkaClient builds a franz-go client. Consumer options are added only when
// group is non-empty.
func NewKafkaClient(brokers []string, group string, topics ...string) (*kgo.Client, error) {
	opts := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	}
	if group != "" {
		opts = append(opts,
			kgo.ConsumerGroup(group),
			kgo.ConsumeTopics(topics...),
			kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
			kgo.DisableAutoCommit(),
		)
	}
	return kgo.NewClient(opts...)
}

// EnsureTopics creates the intent and receipt topics if they do not exist.
func EnsureTopics(ctx context.Context, client *kgo.Client, partitions int32, replication int16, topics ...string) error {
	adm := kadm.NewClient(client)
	resp, err := adm.CreateTopics(ctx, partitions, replication, nil, topics...)
	if err != nil {
		return fmt.Errorf("create topics: %w", err)
	}
	for _, t := range resp.Sorted() {
		if t.Err != nil && !errors.Is(t.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", t.Topic, t.Err)
		}
	}
	return nil
}

// Confirmer applies settled receipts.
type Confirmer interface {
	Confirm(ctx context.Context, id uuid.UUID, txHash string, status Status) (*Intent, error)
}

// ReceiptRetryDelay is the pause before a poll that redelivers receipts which
// failed to apply.
const ReceiptRetryDelay = time.Second

// ReceiptConsumer reads the receipt topic and confirms intents. A record's
// offset is committed only once its receipt has been applied or found
// permanently unusable; a transient failure rewinds its partition to it.
type ReceiptConsumer struct {
	client     *kgo.Client
	confirmer  Confirmer
	logger     *slog.Logger
	retryDelay time.Duration
}

func NewReceiptConsumer(client *kgo.Client, confirmer Confirmer, logger *slog.Logger) *ReceiptConsumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReceiptConsumer{client: client, confirmer: confirmer, logger: logger, retryDelay: ReceiptRetryDelay}
}

// Run polls until ctx is cancelled or the client is closed.
func (c *ReceiptConsumer) Run(ctx context.Context) error {
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			return ctx.Err()
		}
		for _, fe := range fetches.Errors() {
			c.logger.WarnContext(ctx, "receipt fetch error", "topic", fe.Topic, "partition", fe.Partition, "error", fe.Err)
		}
		done, rewind := c.handle(ctx, fetches.Records())
		if len(done) > 0 {
			if err := c.client.CommitRecords(ctx, done...); err != nil {
				c.logger.WarnContext(ctx, "receipt offset commit failed", "error", err)
			}
		}
		if len(rewind) == 0 {
			continue
		}
		c.client.SetOffsets(rewind)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.retryDelay):
		}
	}
}

// handle applies records in partition order. It returns the records that may
// be committed and, for each partition that hit a transient failure, the
// offset to redeliver from. Records after a failure on the same partition are
// left for redelivery so receipts of one wallet stay ordered.
func (c *ReceiptConsumer) handle(ctx context.Context, records []*kgo.Record) ([]*kgo.Record, map[string]map[int32]kgo.EpochOffset) {
	var done []*kgo.Record
	rewind := map[string]map[int32]kgo.EpochOffset{}
	for _, r := range records {
		if _, stopped := rewind[r.Topic][r.Partition]; stopped {
			continue
		}
		if err := c.apply(ctx, r.Value); err != nil {
			c.logger.WarnContext(ctx, "ledger receipt will be redelivered",
				"topic", r.Topic,
				"partition", r.Partition,
				"offset", r.Offset,
				"error", err,
			)
			if rewind[r.Topic] == nil {
				rewind[r.Topic] = map[int32]kgo.EpochOffset{}
			}
			rewind[r.Topic][r.Partition] = kgo.EpochOffset{Epoch: r.LeaderEpoch, Offset: r.Offset}
			continue
		}
		done = append(done, r)
	}
	return done, rewind
}

// apply drops malformed receipts and receipts the ledger refuses after logging
// them, since redelivering them would never succeed. Any other failure is
// returned so the receipt is redelivered.
func (c *ReceiptConsumer) apply(ctx context.Context, value []byte) error {
	var msg ReceiptMessage
	if err := json.Unmarshal(value, &msg); err != nil {
		c.logger.WarnContext(ctx, "malformed ledger receipt", "error", err)
		return nil
	}
	id, err := uuid.Parse(msg.IntentID)
	if err != nil {
		c.logger.WarnContext(ctx, "ledger receipt with invalid intent id", "intent_id", msg.IntentID)
		return nil
	}
	if _, err := c.confirmer.Confirm(ctx, id, msg.TxHash, msg.Status); err != nil {
		switch dErrors.CodeOf(err) {
		case dErrors.CodeNotFound, dErrors.CodeValidation, dErrors.CodeInvalidTransition:
			c.logger.WarnContext(ctx, "ledger receipt not applied", "intent_id", id, "error", err)
			return nil
		}
		return err
	}
	return nil
}
