package app_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/pindeps/lockstep/internal/app"
	"github.com/pindeps/lockstep/internal/core/domain"
	"github.com/pindeps/lockstep/internal/core/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type appMocks struct {
	loader   *mocks.MockConfigLoader
	executor *mocks.MockExecutor
	logger   *mocks.MockLogger
	store    *mocks.MockStateStore
	hasher   *mocks.MockHasher
	watcher  *mocks.MockWatcher
}

func newTestApp(t *testing.T) (*app.App, *appMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)

	m := &appMocks{
		loader:   mocks.NewMockConfigLoader(ctrl),
		executor: mocks.NewMockExecutor(ctrl),
		logger:   mocks.NewMockLogger(ctrl),
		store:    mocks.NewMockStateStore(ctrl),
		hasher:   mocks.NewMockHasher(ctrl),
		watcher:  mocks.NewMockWatcher(ctrl),
	}

	m.logger.EXPECT().Info(gomock.Any()).AnyTimes()
	m.logger.EXPECT().Warn(gomock.Any()).AnyTimes()

	a := app.New(m.loader, m.executor, m.logger, m.store, m.hasher, m.watcher).
		WithStreams(io.Discard, io.Discard)
	return a, m
}

func testConfig(root string) *domain.Config {
	return &domain.Config{
		Root:     root,
		Compiler: []string{"pip-compile"},
		Syncer:   []string{"pip-sync"},
		Variants: []domain.Variant{
			{
				Name:     "default",
				SpecFile: filepath.Join(root, "requirements.in"),
				LockFile: filepath.Join(root, "requirements.txt"),
			},
			{
				Name:     "dev",
				SpecFile: filepath.Join(root, "requirements-dev.in"),
				LockFile: filepath.Join(root, "requirements-dev.txt"),
			},
		},
	}
}

func TestRun_CompileThenSyncInOrder(t *testing.T) {
	a, m := newTestApp(t)
	cfg := testConfig("/project")
	v := cfg.Variants[0]

	m.loader.EXPECT().Load(".").Return(cfg, nil)
	m.store.EXPECT().Get(cfg.Root, "default").Return(nil, nil)

	var invocations []*domain.Invocation
	record := func(_ context.Context, inv *domain.Invocation, _, _ io.Writer) error {
		invocations = append(invocations, inv)
		return nil
	}
	m.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(record).Times(2)

	m.hasher.EXPECT().ComputeFileHash(v.SpecFile).Return("aaaa", nil)
	m.hasher.EXPECT().ComputeFileHash(v.LockFile).Return("bbbb", nil)
	m.store.EXPECT().Put(cfg.Root, gomock.Any()).DoAndReturn(func(_ string, pin domain.PinState) error {
		assert.Equal(t, "default", pin.Variant)
		assert.Equal(t, "aaaa", pin.SpecHash)
		assert.Equal(t, "bbbb", pin.LockHash)
		assert.False(t, pin.PinnedAt.IsZero())
		return nil
	})

	err := a.Run(context.Background(), []string{"default"}, app.RunOptions{})
	require.NoError(t, err)

	require.Len(t, invocations, 2)
	assert.Equal(t, []string{"pip-compile", v.SpecFile, "--output-file", v.LockFile}, invocations[0].Argv)
	assert.Equal(t, []string{"pip-sync", v.LockFile}, invocations[1].Argv)
	assert.Equal(t, cfg.Root, invocations[0].WorkingDir)
	assert.Equal(t, cfg.Root, invocations[1].WorkingDir)
}

func TestRun_CompileFailureSkipsSync(t *testing.T) {
	a, m := newTestApp(t)
	cfg := testConfig("/project")

	m.loader.EXPECT().Load(".").Return(cfg, nil)
	m.store.EXPECT().Get(cfg.Root, "default").Return(nil, nil)
	m.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&domain.ExitError{Code: 3, Err: errors.New("tool exited with an error")})

	err := a.Run(context.Background(), []string{"default"}, app.RunOptions{})

	var stepErr *domain.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, domain.StageCompile, stepErr.Stage)
	assert.Equal(t, "default", stepErr.Variant)
	assert.Equal(t, 3, stepErr.Code)

	code, ok := domain.ExitStatus(err)
	require.True(t, ok)
	assert.Equal(t, 3, code)
}

func TestRun_SyncFailurePropagatesCode(t *testing.T) {
	a, m := newTestApp(t)
	cfg := testConfig("/project")

	m.loader.EXPECT().Load(".").Return(cfg, nil)
	m.store.EXPECT().Get(cfg.Root, "default").Return(nil, nil)
	gomock.InOrder(
		m.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil),
		m.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&domain.ExitError{Code: 2, Err: errors.New("tool exited with an error")}),
	)

	err := a.Run(context.Background(), []string{"default"}, app.RunOptions{})

	var stepErr *domain.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, domain.StageSync, stepErr.Stage)
	assert.Equal(t, 2, stepErr.Code)
}

func TestRun_FailureWithoutExitStatusMapsToOne(t *testing.T) {
	a, m := newTestApp(t)
	cfg := testConfig("/project")

	m.loader.EXPECT().Load(".").Return(cfg, nil)
	m.store.EXPECT().Get(cfg.Root, "default").Return(nil, nil)
	m.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("executable file not found in $PATH"))

	err := a.Run(context.Background(), []string{"default"}, app.RunOptions{})

	var stepErr *domain.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, 1, stepErr.Code)
}

func TestRun_FirstFailureAbortsRemainingVariants(t *testing.T) {
	a, m := newTestApp(t)
	cfg := testConfig("/project")

	m.loader.EXPECT().Load(".").Return(cfg, nil)
	m.store.EXPECT().Get(cfg.Root, "default").Return(nil, nil)
	// Only the first variant's compile runs; dev is never reached.
	m.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&domain.ExitError{Code: 4, Err: errors.New("tool exited with an error")})

	err := a.Run(context.Background(), nil, app.RunOptions{})

	var stepErr *domain.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "default", stepErr.Variant)
}

func TestRun_UpToDateVariantIsSkipped(t *testing.T) {
	a, m := newTestApp(t)
	cfg := testConfig("/project")
	v := cfg.Variants[0]

	m.loader.EXPECT().Load(".").Return(cfg, nil)
	m.store.EXPECT().Get(cfg.Root, "default").
		Return(&domain.PinState{Variant: "default", SpecHash: "aaaa", LockHash: "bbbb"}, nil)
	m.hasher.EXPECT().ComputeFileHash(v.SpecFile).Return("aaaa", nil)
	m.hasher.EXPECT().ComputeFileHash(v.LockFile).Return("bbbb", nil)

	err := a.Run(context.Background(), []string{"default"}, app.RunOptions{})
	require.NoError(t, err)
}

func TestRun_ChangedSpecFileIsStale(t *testing.T) {
	a, m := newTestApp(t)
	cfg := testConfig("/project")
	v := cfg.Variants[0]

	m.loader.EXPECT().Load(".").Return(cfg, nil)
	m.store.EXPECT().Get(cfg.Root, "default").
		Return(&domain.PinState{Variant: "default", SpecHash: "aaaa", LockHash: "bbbb"}, nil)
	// Spec hash no longer matches, so both steps run again.
	m.hasher.EXPECT().ComputeFileHash(v.SpecFile).Return("cccc", nil)
	m.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)
	m.hasher.EXPECT().ComputeFileHash(v.SpecFile).Return("cccc", nil)
	m.hasher.EXPECT().ComputeFileHash(v.LockFile).Return("bbbb", nil)
	m.store.EXPECT().Put(cfg.Root, gomock.Any()).Return(nil)

	err := a.Run(context.Background(), []string{"default"}, app.RunOptions{})
	require.NoError(t, err)
}

func TestRun_ForceBypassesUpToDateCheck(t *testing.T) {
	a, m := newTestApp(t)
	cfg := testConfig("/project")
	v := cfg.Variants[0]

	m.loader.EXPECT().Load(".").Return(cfg, nil)
	// No store.Get expectation: the check must not run at all.
	m.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)
	m.hasher.EXPECT().ComputeFileHash(v.SpecFile).Return("aaaa", nil)
	m.hasher.EXPECT().ComputeFileHash(v.LockFile).Return("bbbb", nil)
	m.store.EXPECT().Put(cfg.Root, gomock.Any()).Return(nil)

	err := a.Run(context.Background(), []string{"default"}, app.RunOptions{Force: true})
	require.NoError(t, err)
}

func TestRun_CompileOnlySkipsSyncAndPin(t *testing.T) {
	a, m := newTestApp(t)
	cfg := testConfig("/project")
	v := cfg.Variants[0]

	m.loader.EXPECT().Load(".").Return(cfg, nil)
	m.store.EXPECT().Get(cfg.Root, "default").Return(nil, nil)

	m.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, inv *domain.Invocation, _, _ io.Writer) error {
			assert.Equal(t, []string{"pip-compile", v.SpecFile, "--output-file", v.LockFile}, inv.Argv)
			return nil
		})

	err := a.Run(context.Background(), []string{"default"}, app.RunOptions{CompileOnly: true})
	require.NoError(t, err)
}

func TestRun_PinStateFailureDoesNotFailTheRun(t *testing.T) {
	a, m := newTestApp(t)
	cfg := testConfig("/project")
	v := cfg.Variants[0]

	m.loader.EXPECT().Load(".").Return(cfg, nil)
	m.store.EXPECT().Get(cfg.Root, "default").Return(nil, nil)
	m.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)
	m.hasher.EXPECT().ComputeFileHash(v.SpecFile).Return("aaaa", nil)
	m.hasher.EXPECT().ComputeFileHash(v.LockFile).Return("bbbb", nil)
	m.store.EXPECT().Put(cfg.Root, gomock.Any()).Return(errors.New("disk full"))

	err := a.Run(context.Background(), []string{"default"}, app.RunOptions{})
	require.NoError(t, err)
}

func TestRun_RunsAllVariantsWhenNoneNamed(t *testing.T) {
	a, m := newTestApp(t)
	cfg := testConfig("/project")

	m.loader.EXPECT().Load(".").Return(cfg, nil)
	m.store.EXPECT().Get(cfg.Root, "default").Return(nil, nil)
	m.store.EXPECT().Get(cfg.Root, "dev").Return(nil, nil)

	var argvs [][]string
	m.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, inv *domain.Invocation, _, _ io.Writer) error {
			argvs = append(argvs, inv.Argv)
			return nil
		}).Times(4)
	m.hasher.EXPECT().ComputeFileHash(gomock.Any()).Return("aaaa", nil).Times(4)
	m.store.EXPECT().Put(cfg.Root, gomock.Any()).Return(nil).Times(2)

	err := a.Run(context.Background(), nil, app.RunOptions{})
	require.NoError(t, err)

	require.Len(t, argvs, 4)
	// default runs fully before dev starts.
	assert.Contains(t, argvs[0][1], "requirements.in")
	assert.Contains(t, argvs[2][1], "requirements-dev.in")
}

func TestRun_UnknownVariant(t *testing.T) {
	a, m := newTestApp(t)
	cfg := testConfig("/project")

	m.loader.EXPECT().Load(".").Return(cfg, nil)

	err := a.Run(context.Background(), []string{"staging"}, app.RunOptions{})
	assert.ErrorIs(t, err, domain.ErrUnknownVariant)
}

func TestRun_NoVariantsConfigured(t *testing.T) {
	a, m := newTestApp(t)

	m.loader.EXPECT().Load(".").Return(&domain.Config{Root: "/project"}, nil)

	err := a.Run(context.Background(), nil, app.RunOptions{})
	assert.ErrorIs(t, err, domain.ErrNoVariantsConfigured)
}

func TestRun_ConfigLoadFailure(t *testing.T) {
	a, m := newTestApp(t)

	m.loader.EXPECT().Load(".").Return(nil, domain.ErrConfigParseFailed)

	err := a.Run(context.Background(), nil, app.RunOptions{})
	assert.ErrorIs(t, err, domain.ErrConfigParseFailed)
}

func TestList_PrintsVariantStatus(t *testing.T) {
	a, m := newTestApp(t)
	cfg := testConfig("/project")

	m.loader.EXPECT().Load(".").Return(cfg, nil)
	m.store.EXPECT().Get(cfg.Root, "default").
		Return(&domain.PinState{Variant: "default", SpecHash: "aaaa", LockHash: "bbbb"}, nil)
	m.hasher.EXPECT().ComputeFileHash(cfg.Variants[0].SpecFile).Return("aaaa", nil)
	m.hasher.EXPECT().ComputeFileHash(cfg.Variants[0].LockFile).Return("bbbb", nil)
	m.store.EXPECT().Get(cfg.Root, "dev").Return(nil, nil)

	buf := new(bytes.Buffer)
	require.NoError(t, a.List(context.Background(), buf))

	out := buf.String()
	assert.Contains(t, out, "default  requirements.in -> requirements.txt  up to date")
	assert.Contains(t, out, "dev  requirements-dev.in -> requirements-dev.txt  stale")
}

func TestClean_ClearsState(t *testing.T) {
	a, m := newTestApp(t)
	cfg := testConfig("/project")

	m.loader.EXPECT().Load(".").Return(cfg, nil)
	m.store.EXPECT().Clear(cfg.Root).Return(nil)

	require.NoError(t, a.Clean(context.Background()))
}

func TestClean_ClearFailure(t *testing.T) {
	a, m := newTestApp(t)
	cfg := testConfig("/project")

	m.loader.EXPECT().Load(".").Return(cfg, nil)
	m.store.EXPECT().Clear(cfg.Root).Return(domain.ErrStateClearFailed)

	err := a.Clean(context.Background())
	assert.ErrorIs(t, err, domain.ErrStateClearFailed)
}
