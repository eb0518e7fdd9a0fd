// Package app implements the application layer for lockstep.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/pindeps/lockstep/internal/adapters/watcher"
	"github.com/pindeps/lockstep/internal/core/domain"
	"github.com/pindeps/lockstep/internal/core/ports"
	"github.com/pindeps/lockstep/internal/ui/output"
	"github.com/pindeps/lockstep/internal/ui/style"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// debounceWindow is how long watch mode waits for file events to settle
// before re-running affected variants.
const debounceWindow = 500 * time.Millisecond

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	executor     ports.Executor
	logger       ports.Logger
	store        ports.StateStore
	hasher       ports.Hasher
	watcher      ports.Watcher

	stdout io.Writer
	stderr io.Writer
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	executor ports.Executor,
	log ports.Logger,
	store ports.StateStore,
	hasher ports.Hasher,
	w ports.Watcher,
) *App {
	return &App{
		configLoader: loader,
		executor:     executor,
		logger:       log,
		store:        store,
		hasher:       hasher,
		watcher:      w,
		stdout:       os.Stdout,
		stderr:       os.Stderr,
	}
}

// WithStreams overrides the streams tool output is forwarded to.
// This is primarily used for testing.
func (a *App) WithStreams(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	return a
}

// RunOptions configuration for the Run method.
type RunOptions struct {
	// Force bypasses the up-to-date check.
	Force bool

	// CompileOnly stops after the compile step, refreshing the lock file
	// without touching the environment.
	CompileOnly bool

	// Watch keeps running, re-running variants whose spec files change.
	Watch bool
}

// Run executes compile+sync for the named variants, or for every configured
// variant when no names are given. Variants run strictly sequentially; the
// first failure aborts the run and its exit code is carried in the returned
// *domain.StepError.
func (a *App) Run(ctx context.Context, variantNames []string, opts RunOptions) error {
	cfg, err := a.configLoader.Load(".")
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	variants, err := selectVariants(cfg, variantNames)
	if err != nil {
		return err
	}

	if !opts.Watch {
		return a.runAll(ctx, cfg, variants, opts)
	}

	// Watch mode: failures of the initial run are reported but do not end
	// the session.
	if err := a.runAll(ctx, cfg, variants, opts); err != nil {
		a.logger.Error(err)
	}
	return a.watch(ctx, cfg, variants, opts)
}

// List writes the configured variants and their up-to-date status to w.
func (a *App) List(_ context.Context, w io.Writer) error {
	cfg, err := a.configLoader.Load(".")
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	styled := output.IsInteractive()
	for _, v := range cfg.Variants {
		status := statusLabel(a.isUpToDate(cfg.Root, &v), styled)
		fmt.Fprintf(w, "%s  %s -> %s  %s\n",
			v.Name,
			relToRoot(cfg.Root, v.SpecFile),
			relToRoot(cfg.Root, v.LockFile),
			status,
		)
	}
	return nil
}

// Clean removes all recorded pin state.
func (a *App) Clean(_ context.Context) error {
	cfg, err := a.configLoader.Load(".")
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	a.logger.Info("removing pin state...")
	if err := a.store.Clear(cfg.Root); err != nil {
		return err
	}
	a.logger.Info("removed pin state")
	return nil
}

// runAll runs the variants one after another, failing fast.
func (a *App) runAll(ctx context.Context, cfg *domain.Config, variants []domain.Variant, opts RunOptions) error {
	for i := range variants {
		if err := a.runVariant(ctx, cfg, &variants[i], opts); err != nil {
			return err
		}
	}
	return nil
}

// runVariant performs the two-step sequence for one variant: compile the
// spec file into the lock file, then sync the environment from the lock
// file. The sync step never runs when the compile step fails.
func (a *App) runVariant(ctx context.Context, cfg *domain.Config, v *domain.Variant, opts RunOptions) error {
	if !opts.Force && a.isUpToDate(cfg.Root, v) {
		a.logger.Info(fmt.Sprintf("variant %s is up to date", v.Name))
		return nil
	}

	a.logger.Info(fmt.Sprintf("compiling %s -> %s", relToRoot(cfg.Root, v.SpecFile), relToRoot(cfg.Root, v.LockFile)))

	compileArgv := make([]string, 0, len(cfg.Compiler)+3)
	compileArgv = append(compileArgv, cfg.Compiler...)
	compileArgv = append(compileArgv, v.SpecFile, "--output-file", v.LockFile)

	if err := a.execute(ctx, cfg, v, compileArgv); err != nil {
		return stepError(domain.StageCompile, v.Name, err)
	}

	if opts.CompileOnly {
		a.logger.Info(fmt.Sprintf("variant %s compiled (sync skipped)", v.Name))
		return nil
	}

	a.logger.Info(fmt.Sprintf("syncing environment from %s", relToRoot(cfg.Root, v.LockFile)))

	syncArgv := make([]string, 0, len(cfg.Syncer)+1)
	syncArgv = append(syncArgv, cfg.Syncer...)
	syncArgv = append(syncArgv, v.LockFile)

	if err := a.execute(ctx, cfg, v, syncArgv); err != nil {
		return stepError(domain.StageSync, v.Name, err)
	}

	a.recordPin(cfg.Root, v)
	a.logger.Info(fmt.Sprintf("variant %s pinned and synced", v.Name))
	return nil
}

func (a *App) execute(ctx context.Context, cfg *domain.Config, v *domain.Variant, argv []string) error {
	inv := &domain.Invocation{
		Argv:        argv,
		WorkingDir:  cfg.Root,
		Environment: v.Environment,
	}
	return a.executor.Execute(ctx, inv, a.stdout, a.stderr)
}

// isUpToDate reports whether the variant's spec and lock files still match
// the recorded pin state. Any state or hashing problem counts as stale.
func (a *App) isUpToDate(root string, v *domain.Variant) bool {
	pin, err := a.store.Get(root, v.Name)
	if err != nil {
		a.logger.Warn(fmt.Sprintf("ignoring unreadable pin state for variant %s: %v", v.Name, err))
		return false
	}
	if pin == nil {
		return false
	}

	specHash, err := a.hasher.ComputeFileHash(v.SpecFile)
	if err != nil || specHash != pin.SpecHash {
		return false
	}

	lockHash, err := a.hasher.ComputeFileHash(v.LockFile)
	if err != nil || lockHash != pin.LockHash {
		return false
	}

	return true
}

// recordPin stores the content hashes after a fully successful run.
// Failures are logged, not fatal: both external tools already succeeded, so
// the run's exit code stays zero.
func (a *App) recordPin(root string, v *domain.Variant) {
	specHash, err := a.hasher.ComputeFileHash(v.SpecFile)
	if err != nil {
		a.logger.Warn(fmt.Sprintf("could not record pin state for variant %s: %v", v.Name, err))
		return
	}
	lockHash, err := a.hasher.ComputeFileHash(v.LockFile)
	if err != nil {
		a.logger.Warn(fmt.Sprintf("could not record pin state for variant %s: %v", v.Name, err))
		return
	}

	pin := domain.PinState{
		Variant:  v.Name,
		SpecHash: specHash,
		LockHash: lockHash,
		PinnedAt: time.Now().UTC(),
	}
	if err := a.store.Put(root, pin); err != nil {
		a.logger.Warn(fmt.Sprintf("could not record pin state for variant %s: %v", v.Name, err))
	}
}

// watch re-runs variants whose spec files change until the context ends.
func (a *App) watch(ctx context.Context, cfg *domain.Config, variants []domain.Variant, opts RunOptions) error {
	owners := make(map[string]*domain.Variant, len(variants))
	dirSet := make(map[string]struct{}, len(variants))
	for i := range variants {
		v := &variants[i]
		owners[filepath.Clean(v.SpecFile)] = v
		dirSet[filepath.Dir(v.SpecFile)] = struct{}{}
	}

	dirs := make([]string, 0, len(dirSet))
	for dir := range dirSet {
		dirs = append(dirs, dir)
	}

	if err := a.watcher.Start(ctx, dirs); err != nil {
		return zerr.Wrap(err, domain.ErrWatcherStartFailed.Error())
	}
	defer func() {
		_ = a.watcher.Stop()
	}()

	rerun := make(chan []string, 1)
	deb := watcher.NewDebouncer(debounceWindow, func(paths []string) {
		select {
		case rerun <- paths:
		case <-ctx.Done():
		}
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for event := range a.watcher.Events() {
			if _, ok := owners[filepath.Clean(event.Path)]; ok {
				deb.Add(event.Path)
			}
		}
		return nil
	})

	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case paths := <-rerun:
				for _, path := range paths {
					v, ok := owners[filepath.Clean(path)]
					if !ok {
						continue
					}
					// Watch mode keeps going on failure.
					if err := a.runVariant(gctx, cfg, v, opts); err != nil {
						a.logger.Error(err)
					}
				}
			}
		}
	})

	a.logger.Info("watching for specification changes (ctrl-c to stop)")
	return g.Wait()
}

// selectVariants resolves the requested variant names against the config.
// An empty request selects every configured variant in declaration order.
func selectVariants(cfg *domain.Config, names []string) ([]domain.Variant, error) {
	if len(cfg.Variants) == 0 {
		return nil, domain.ErrNoVariantsConfigured
	}

	if len(names) == 0 {
		return cfg.Variants, nil
	}

	selected := make([]domain.Variant, 0, len(names))
	for _, name := range names {
		v := cfg.Variant(name)
		if v == nil {
			return nil, zerr.With(domain.ErrUnknownVariant, "variant", name)
		}
		selected = append(selected, *v)
	}
	return selected, nil
}

// stepError wraps an executor error into a StepError carrying the exit code
// to propagate. Failures without an exit status (e.g. tool not found) map
// to code 1.
func stepError(stage domain.Stage, variant string, err error) error {
	code := 1
	if c, ok := domain.ExitStatus(err); ok {
		code = c
	}
	return &domain.StepError{
		Stage:   stage,
		Variant: variant,
		Code:    code,
		Err:     err,
	}
}

func statusLabel(upToDate, styled bool) string {
	if upToDate {
		if styled {
			return lipgloss.NewStyle().Foreground(style.Green).Render(style.Check + " up to date")
		}
		return "up to date"
	}
	if styled {
		return lipgloss.NewStyle().Foreground(style.Yellow).Render(style.Circle + " stale")
	}
	return "stale"
}

func relToRoot(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}
