package ports

import "github.com/pindeps/lockstep/internal/core/domain"

// ConfigLoader defines the interface for loading the lockstep configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration starting from the given working directory.
	// When no config file is found, a built-in default configuration rooted
	// at cwd is returned.
	Load(cwd string) (*domain.Config, error)
}
