// Package contentstore publishes records under content-derived identifiers.
//
// A record is encoded as JSON, canonicalized with RFC 8785 (JCS) and addressed
// by "sha256:<hex>" of the canonical bytes, so equal records always share an id
// regardless of backend.
package contentstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gowebpki/jcs"

	dErrors "surety/pkg/domain-errors"
)

const idPrefix = "sha256:"

// Backend stores canonical bytes under a content id.
type Backend interface {
	Store(ctx context.Context, id string, data []byte) error
	Get(ctx context.Context, id string) ([]byte, error)
}

// Canonicalize returns the JCS encoding of record and its content id.
func Canonicalize(record any) (string, []byte, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return "", nil, fmt.Errorf("encode record: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", nil, fmt.Errorf("canonicalize record: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return idPrefix + hex.EncodeToString(sum[:]), canonical, nil
}

func rawHash(id string) (string, error) {
	h, ok := strings.CutPrefix(id, idPrefix)
	if !ok || len(h) != sha256.Size*2 {
		return "", dErrors.New(dErrors.CodeValidation, "content id must be sha256:<64 hex chars>")
	}
	if _, err := hex.DecodeString(h); err != nil {
		return "", dErrors.New(dErrors.CodeValidation, "content id must be sha256:<64 hex chars>")
	}
	return h, nil
}

// Publisher is the put(record) → contentId collaborator.
type Publisher struct {
	backend Backend
}

func NewPublisher(backend Backend) *Publisher {
	return &Publisher{backend: backend}
}

func (p *Publisher) Put(ctx context.Context, record any) (string, error) {
	id, data, err := Canonicalize(record)
	if err != nil {
		return "", err
	}
	if err := p.backend.Store(ctx, id, data); err != nil {
		return "", err
	}
	return id, nil
}

func (p *Publisher) Get(ctx context.Context, id string) ([]byte, error) {
	if _, err := rawHash(id); err != nil {
		return nil, err
	}
	return p.backend.Get(ctx, id)
}

// Disabled is used when no content store is configured. Every Put fails, which
// callers treat as a non-fatal publish failure.
type Disabled struct{}

var ErrDisabled = dErrors.New(dErrors.CodeUnavailable, "content store is disabled")

func (Disabled) Put(context.Context, any) (string, error) { return "", ErrDisabled }
