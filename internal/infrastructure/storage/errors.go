package storage

import "errors"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrConflict is returned when an insert violates a uniqueness
// constraint, most importantly the one-match-per-transaction rule.
// Callers in the engine recover from it as an "already matched"
// outcome rather than failing the batch.
var ErrConflict = errors.New("record already exists")
