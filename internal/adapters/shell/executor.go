// Package shell provides the shell executor adapter.
package shell

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/pindeps/lockstep/internal/core/domain"
	"go.trai.ch/zerr"
)

// Executor implements ports.Executor using os/exec.
type Executor struct{}

// NewExecutor creates a new shell executor.
func NewExecutor() *Executor {
	return &Executor{}
}

// Execute runs the invocation's command and streams its output.
// The invocation environment is merged over os.Environ(), with the
// invocation winning on conflicts.
func (e *Executor) Execute(ctx context.Context, inv *domain.Invocation, stdout, stderr io.Writer) error {
	if len(inv.Argv) == 0 {
		return domain.ErrMissingTool
	}

	name := inv.Argv[0]
	args := inv.Argv[1:]

	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec // tool argv comes from the user's config
	cmd.Dir = inv.WorkingDir
	cmd.Env = mergeEnvironment(os.Environ(), inv.Environment)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &domain.ExitError{
				Code: exitErr.ExitCode(),
				Err:  zerr.With(zerr.New("tool exited with an error"), "command", name),
			}
		}
		return zerr.With(zerr.Wrap(err, "failed to run command"), "command", name)
	}

	return nil
}

// mergeEnvironment overlays extra variables on top of the base environment.
func mergeEnvironment(base []string, extra map[string]string) []string {
	if len(extra) == 0 {
		return base
	}

	envMap := make(map[string]string, len(base)+len(extra))
	order := make([]string, 0, len(base)+len(extra))

	for _, entry := range base {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if _, seen := envMap[k]; !seen {
			order = append(order, k)
		}
		envMap[k] = v
	}

	for k, v := range extra {
		if _, seen := envMap[k]; !seen {
			order = append(order, k)
		}
		envMap[k] = v
	}

	result := make([]string, 0, len(order))
	for _, k := range order {
		result = append(result, k+"="+envMap[k])
	}
	return result
}
