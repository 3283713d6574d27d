package sentinel

import "errors"

// Sentinel errors for infrastructure facts. KV backends and repositories return
// these (optionally wrapped) so services can translate them into domain errors.
//
//   - ErrNotFound: key does not exist in the store
//   - ErrConflict: a write raced with another writer
//   - ErrInvalidState: record is in the wrong state for the requested operation
//   - ErrUnavailable: backend or collaborator temporarily unavailable
//
// For validation failures use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
