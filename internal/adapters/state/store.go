// Package state implements pin state persistence using a file-per-variant
// strategy under the root's state directory.
package state

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pindeps/lockstep/internal/core/domain"
	"go.trai.ch/zerr"
)

// Store implements ports.StateStore on the local file system.
type Store struct{}

// NewStore creates a new pin state store.
func NewStore() *Store {
	return &Store{}
}

// Get retrieves the pin state for a variant. It returns (nil, nil) when no
// state has been recorded yet.
func (s *Store) Get(root, variant string) (*domain.PinState, error) {
	filename := s.filename(root, variant)
	//nolint:gosec // Path is constructed from trusted directory and hashed filename
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.Wrap(err, domain.ErrStateReadFailed.Error())
	}

	var pin domain.PinState
	if err := json.Unmarshal(data, &pin); err != nil {
		return nil, zerr.Wrap(err, domain.ErrStateUnmarshalFailed.Error())
	}

	return &pin, nil
}

// Put records the pin state for a variant.
func (s *Store) Put(root string, pin domain.PinState) error {
	data, err := json.MarshalIndent(pin, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrStateMarshalFailed.Error())
	}

	filename := s.filename(root, pin.Variant)
	if err := os.MkdirAll(filepath.Dir(filename), domain.DirPerm); err != nil {
		return zerr.Wrap(err, domain.ErrStateCreateFailed.Error())
	}

	//nolint:gosec // Path is constructed from trusted directory and hashed filename
	if err := os.WriteFile(filename, data, domain.FilePerm); err != nil {
		return zerr.Wrap(err, domain.ErrStateWriteFailed.Error())
	}

	return nil
}

// Clear removes all recorded pin state under the given root.
func (s *Store) Clear(root string) error {
	if err := os.RemoveAll(domain.StatePath(root)); err != nil {
		return zerr.Wrap(err, domain.ErrStateClearFailed.Error())
	}
	return nil
}

func (s *Store) filename(root, variant string) string {
	hash := sha256.Sum256([]byte(variant))
	hexHash := hex.EncodeToString(hash[:])
	return filepath.Join(domain.StatePath(root), hexHash+".json")
}
