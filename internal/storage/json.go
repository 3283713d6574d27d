package storage

import (
	"context"
	"encoding/json"
	"fmt"
)

// GetJSON loads and decodes a record.
func GetJSON[T any](ctx context.Context, s Store, key string) (*T, error) {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &v, nil
}

// PutJSON encodes and stores a record.
func PutJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Put(ctx, key, raw)
}

// ListJSON decodes every record under prefix.
func ListJSON[T any](ctx context.Context, s Store, prefix string) ([]*T, error) {
	raws, err := s.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	out := make([]*T, 0, len(raws))
	for _, raw := range raws {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode record under %s: %w", prefix, err)
		}
		out = append(out, &v)
	}
	return out, nil
}
