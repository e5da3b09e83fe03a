// Package store persists the trainer's dataset as one document.
// Every mutation in the system is followed by a full Save; there is no
// incremental API.
package store

import (
	"errors"

	"chess-trainer-bot/internal/domain"
)

// ErrCorrupt reports persisted state that exists but cannot be parsed as
// the expected dataset structure. The policy is to fail closed: callers
// must not overwrite the broken document.
var ErrCorrupt = errors.New("dataset store: corrupt state")

// Store loads and saves the full dataset document.
type Store interface {
	// Load returns the persisted dataset, or a fresh empty dataset when
	// no persisted state exists.
	Load() (*domain.Dataset, error)
	// Save serializes the full dataset and overwrites the persisted
	// state atomically from the caller's perspective.
	Save(*domain.Dataset) error
}
