package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"surety/internal/contentstore"
	"surety/internal/identity"
	"surety/internal/ledger"
	"surety/internal/platform/config"
	"surety/internal/platform/redis"
	"surety/internal/storage"
)

// openStore selects the key-value backend. The returned func releases it.
func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (storage.Store, func(), error) {
	switch cfg.Storage.Backend {
	case config.StorageRedis:
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		if client == nil {
			return nil, nil, errors.New("redis storage needs SURETY_REDIS_URL")
		}
		return storage.NewRedisStore(client.Client), func() { _ = client.Close() }, nil
	case config.StoragePostgres:
		s, err := storage.OpenPostgres(ctx, cfg.Storage.DSN)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case config.StorageSQLite:
		s, err := storage.OpenSQLite(ctx, cfg.Storage.DSN)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	default:
		log.Warn("using in-memory storage; state is lost on restart")
		return storage.NewInMemoryStore(), func() {}, nil
	}
}

func openContentStore(ctx context.Context, cfg config.Config) (identity.ContentPublisher, error) {
	switch cfg.ContentStore.Backend {
	case config.ContentS3:
		backend, err := contentstore.NewS3Backend(ctx, contentstore.S3Config{
			Bucket:   cfg.ContentStore.Bucket,
			Region:   cfg.ContentStore.Region,
			Endpoint: cfg.ContentStore.Endpoint,
			Prefix:   cfg.ContentStore.Prefix,
		})
		if err != nil {
			return nil, err
		}
		return contentstore.NewPublisher(backend), nil
	case config.ContentNone:
		return contentstore.Disabled{}, nil
	default:
		return contentstore.NewPublisher(contentstore.NewInMemoryBackend()), nil
	}
}

// openChain returns the ledger collaborator. The Kafka chain produces intents
// on its own client; receipts are consumed separately.
func openChain(ctx context.Context, cfg config.Config, log *slog.Logger) (ledger.Chain, func(), error) {
	if cfg.Ledger.Backend != config.LedgerKafka {
		return ledger.NewInMemoryChain(), func() {}, nil
	}
	client, err := ledger.NewKafkaClient(cfg.Ledger.Brokers, "")
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	if err := ledger.EnsureTopics(ctx, client, 3, 1, cfg.Ledger.IntentTopic, cfg.Ledger.ReceiptTopic); err != nil {
		log.Warn("could not ensure ledger topics", "error", err)
	}
	return ledger.NewKafkaChain(client, cfg.Ledger.IntentTopic), client.Close, nil
}

func readiness(kv storage.Store) func(ctx context.Context) error {
	p, ok := kv.(storage.Pinger)
	if !ok {
		return nil
	}
	return p.Ping
}
