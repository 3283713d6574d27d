package jobs

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"surety/internal/storage"
)

const keyPrefix = "job:"

type Repository struct {
	kv storage.Store
}

func NewRepository(kv storage.Store) *Repository {
	return &Repository{kv: kv}
}

func (r *Repository) Save(ctx context.Context, j *Job) error {
	return storage.PutJSON(ctx, r.kv, keyPrefix+j.ID.String(), j)
}

// Find returns sentinel.ErrNotFound for unknown ids.
func (r *Repository) Find(ctx context.Context, id uuid.UUID) (*Job, error) {
	return storage.GetJSON[Job](ctx, r.kv, keyPrefix+id.String())
}

// List returns matching jobs, newest first.
func (r *Repository) List(ctx context.Context, f Filter) ([]*Job, error) {
	all, err := storage.ListJSON[Job](ctx, r.kv, keyPrefix)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, j := range all {
		if f.matches(j) {
			out = append(out, j)
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].CreatedAt.After(out[b].CreatedAt)
	})
	return out, nil
}
