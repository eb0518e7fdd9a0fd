package ports

import "github.com/pindeps/lockstep/internal/core/domain"

// StateStore defines the interface for persisting per-variant pin state.
//
//go:generate mockgen -source=state_store.go -destination=mocks/mock_state_store.go -package=mocks
type StateStore interface {
	// Get retrieves the pin state for a variant. It returns (nil, nil)
	// when no state has been recorded yet.
	Get(root, variant string) (*domain.PinState, error)

	// Put records the pin state for a variant.
	Put(root string, state domain.PinState) error

	// Clear removes all recorded pin state under the given root.
	Clear(root string) error
}
