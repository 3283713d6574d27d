// Package kv persists audit events through the shared key-value storage so
// audit history survives restarts on every backend the service supports.
package kv

import (
	"context"
	"fmt"

	"surety/internal/storage"
	audit "surety/pkg/platform/audit"
)

const keyPrefix = "audit:"

type Store struct {
	kv storage.Store
}

func New(kv storage.Store) *Store {
	return &Store{kv: kv}
}

// Append writes the event under audit:<wallet>:<unix-nanos>:<id>. The
// zero-padded timestamp keeps List ordered chronologically.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	key := fmt.Sprintf("%s%s:%020d:%s", keyPrefix, event.Wallet, event.Timestamp.UnixNano(), event.ID)
	return storage.PutJSON(ctx, s.kv, key, event)
}

func (s *Store) ListByWallet(ctx context.Context, wallet string) ([]audit.Event, error) {
	recs, err := storage.ListJSON[audit.Event](ctx, s.kv, keyPrefix+wallet+":")
	if err != nil {
		return nil, err
	}
	out := make([]audit.Event, 0, len(recs))
	for _, r := range recs {
		out = append(out, *r)
	}
	return out, nil
}
