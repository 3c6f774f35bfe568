package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/recordlist/internal/cli"
	"github.com/rshade/recordlist/internal/config"
	"github.com/rshade/recordlist/pkg/version"
)

func TestMainComponents(t *testing.T) {
	t.Run("version available", func(t *testing.T) {
		assert.NotEmpty(t, version.GetVersion())
	})

	t.Run("cli root command", func(t *testing.T) {
		root := cli.NewRootCmd(version.GetVersion())
		require.NotNil(t, root)
		assert.Equal(t, "recordlist", root.Use)
	})
}

func TestRun_Help(t *testing.T) {
	t.Setenv(config.EnvHome, t.TempDir())
	config.ResetGlobalConfigForTest()
	t.Cleanup(config.ResetGlobalConfigForTest)

	require.NoError(t, run(context.Background(), []string{"--help"}))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: exitOK},
		{name: "generic", err: errors.New("boom"), want: exitError},
		{name: "invalid config", err: config.ErrInvalidConfig, want: exitConfigError},
		{name: "wrapped invalid config", err: fmt.Errorf("loading: %w", config.ErrInvalidConfig), want: exitConfigError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}
