// Package ports defines the core interfaces for the application.
package ports

import (
	"context"
	"io"

	"github.com/pindeps/lockstep/internal/core/domain"
)

// Executor defines the interface for running external tool invocations.
//
//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs the invocation, streaming its output to stdout and stderr.
	//
	// If the tool exits with a non-zero status, the returned error chain
	// contains a *domain.ExitError carrying that status. Execution blocks
	// until the tool exits; cancelling the context kills the process.
	Execute(ctx context.Context, inv *domain.Invocation, stdout, stderr io.Writer) error
}
