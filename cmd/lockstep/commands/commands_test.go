package commands_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/pindeps/lockstep/cmd/lockstep/commands"
	"github.com/pindeps/lockstep/internal/app"
	"github.com/pindeps/lockstep/internal/build"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockApp struct {
	runFunc   func(ctx context.Context, variantNames []string, opts app.RunOptions) error
	listFunc  func(ctx context.Context, w io.Writer) error
	cleanFunc func(ctx context.Context) error
}

func (m *mockApp) Run(ctx context.Context, variantNames []string, opts app.RunOptions) error {
	if m.runFunc != nil {
		return m.runFunc(ctx, variantNames, opts)
	}
	return nil
}

func (m *mockApp) List(ctx context.Context, w io.Writer) error {
	if m.listFunc != nil {
		return m.listFunc(ctx, w)
	}
	return nil
}

func (m *mockApp) Clean(ctx context.Context) error {
	if m.cleanFunc != nil {
		return m.cleanFunc(ctx)
	}
	return nil
}

func TestCommands_Run(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		var capturedOpts app.RunOptions
		var capturedVariants []string
		called := false

		mock := &mockApp{
			runFunc: func(_ context.Context, variantNames []string, opts app.RunOptions) error {
				capturedOpts = opts
				capturedVariants = variantNames
				called = true
				return nil
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"run", "dev", "--force", "--compile-only"})

		// We don't care about output here, just flag propagation
		err := cli.Execute(context.Background())
		require.NoError(t, err)
		assert.True(t, called)
		assert.True(t, capturedOpts.Force)
		assert.True(t, capturedOpts.CompileOnly)
		assert.False(t, capturedOpts.Watch)
		assert.Equal(t, []string{"dev"}, capturedVariants)
	})

	t.Run("short flags", func(t *testing.T) {
		var capturedOpts app.RunOptions

		mock := &mockApp{
			runFunc: func(_ context.Context, _ []string, opts app.RunOptions) error {
				capturedOpts = opts
				return nil
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"run", "-f", "-w"})

		err := cli.Execute(context.Background())
		require.NoError(t, err)
		assert.True(t, capturedOpts.Force)
		assert.True(t, capturedOpts.Watch)
	})

	t.Run("no arguments selects all variants", func(t *testing.T) {
		var capturedVariants []string
		called := false

		mock := &mockApp{
			runFunc: func(_ context.Context, variantNames []string, _ app.RunOptions) error {
				capturedVariants = variantNames
				called = true
				return nil
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"run"})

		err := cli.Execute(context.Background())
		require.NoError(t, err)
		assert.True(t, called)
		assert.Empty(t, capturedVariants)
	})

	t.Run("returns error on run failure", func(t *testing.T) {
		mock := &mockApp{
			runFunc: func(_ context.Context, _ []string, _ app.RunOptions) error {
				return errors.New("simulated error")
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"run", "default"})
		// Silence output to avoid polluting test logs
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))

		err := cli.Execute(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
	})
}

func TestCommands_List(t *testing.T) {
	mock := &mockApp{
		listFunc: func(_ context.Context, w io.Writer) error {
			_, err := io.WriteString(w, "default  requirements.in -> requirements.txt  stale\n")
			return err
		},
	}

	cli := commands.New(mock)
	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs([]string{"list"})

	err := cli.Execute(context.Background())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "requirements.in -> requirements.txt")
}

func TestCommands_Clean(t *testing.T) {
	called := false
	mock := &mockApp{
		cleanFunc: func(_ context.Context) error {
			called = true
			return nil
		},
	}

	cli := commands.New(mock)
	cli.SetArgs([]string{"clean"})

	err := cli.Execute(context.Background())
	require.NoError(t, err)
	assert.True(t, called)
}

func TestCommands_Version(t *testing.T) {
	mock := &mockApp{}
	cli := commands.New(mock)

	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs([]string{"version"})

	err := cli.Execute(context.Background())
	require.NoError(t, err)

	assert.Contains(t, buf.String(), build.Version)
}

func TestCommands_UnknownCommand(t *testing.T) {
	mock := &mockApp{}
	cli := commands.New(mock)

	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs([]string{"sync-everything"})

	err := cli.Execute(context.Background())
	assert.Error(t, err)
}
