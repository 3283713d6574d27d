package ledger

import (
	"context"

	"github.com/google/uuid"

	"surety/internal/storage"
	"surety/pkg/domain"
)

const keyPrefix = "ledger_intent:"

// Store keeps intents under ledger_intent:<id>. Listing scans the prefix, which
// is fine for the intent volumes of a single deployment.
type Store struct {
	kv storage.Store
}

func NewStore(kv storage.Store) *Store {
	return &Store{kv: kv}
}

func (s *Store) Save(ctx context.Context, in *Intent) error {
	return storage.PutJSON(ctx, s.kv, keyPrefix+in.ID.String(), in)
}

// Find returns sentinel.ErrNotFound for unknown ids.
func (s *Store) Find(ctx context.Context, id uuid.UUID) (*Intent, error) {
	return storage.GetJSON[Intent](ctx, s.kv, keyPrefix+id.String())
}

func (s *Store) ListByWallet(ctx context.Context, wallet domain.WalletAddress) ([]*Intent, error) {
	return s.list(ctx, func(in *Intent) bool { return in.Wallet == wallet })
}

func (s *Store) ListByStatus(ctx context.Context, status Status) ([]*Intent, error) {
	return s.list(ctx, func(in *Intent) bool { return in.Status == status })
}

func (s *Store) list(ctx context.Context, keep func(*Intent) bool) ([]*Intent, error) {
	all, err := storage.ListJSON[Intent](ctx, s.kv, keyPrefix)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, in := range all {
		if keep(in) {
			out = append(out, in)
		}
	}
	return out, nil
}
