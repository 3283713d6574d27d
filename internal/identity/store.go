package identity

import (
	"context"

	"surety/internal/storage"
	"surety/pkg/domain"
)

const keyPrefix = "identity:"

// Repository keeps one submission per wallet.
type Repository struct {
	kv storage.Store
}

func NewRepository(kv storage.Store) *Repository {
	return &Repository{kv: kv}
}

// Find returns sentinel.ErrNotFound when the wallet has no submission.
func (r *Repository) Find(ctx context.Context, wallet domain.WalletAddress) (*Submission, error) {
	return storage.GetJSON[Submission](ctx, r.kv, keyPrefix+string(wallet))
}

func (r *Repository) Save(ctx context.Context, sub *Submission) error {
	return storage.PutJSON(ctx, r.kv, keyPrefix+string(sub.Wallet), sub)
}

func (r *Repository) Delete(ctx context.Context, wallet domain.WalletAddress) error {
	return r.kv.Delete(ctx, keyPrefix+string(wallet))
}
