package bond

import (
	"context"

	"surety/internal/storage"
	"surety/pkg/domain"
)

const keyPrefix = "worker:"

// Repository stores one Account per wallet. Callers hold the wallet lock
// around Find and Save.
type Repository struct {
	kv storage.Store
}

func NewRepository(kv storage.Store) *Repository {
	return &Repository{kv: kv}
}

// Find returns sentinel.ErrNotFound for unknown wallets.
func (r *Repository) Find(ctx context.Context, wallet domain.WalletAddress) (*Account, error) {
	return storage.GetJSON[Account](ctx, r.kv, keyPrefix+string(wallet))
}

func (r *Repository) Save(ctx context.Context, a *Account) error {
	return storage.PutJSON(ctx, r.kv, keyPrefix+string(a.Wallet), a)
}

func (r *Repository) List(ctx context.Context) ([]*Account, error) {
	return storage.ListJSON[Account](ctx, r.kv, keyPrefix)
}
