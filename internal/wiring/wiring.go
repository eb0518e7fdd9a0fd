// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "github.com/pindeps/lockstep/internal/adapters/config"
	_ "github.com/pindeps/lockstep/internal/adapters/fs"
	_ "github.com/pindeps/lockstep/internal/adapters/logger"
	_ "github.com/pindeps/lockstep/internal/adapters/shell"
	_ "github.com/pindeps/lockstep/internal/adapters/state"
	_ "github.com/pindeps/lockstep/internal/adapters/watcher"
	// Register app nodes.
	_ "github.com/pindeps/lockstep/internal/app"
)
