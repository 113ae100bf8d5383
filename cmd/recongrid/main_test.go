package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/recongrid/internal/cli"
	"github.com/rshade/recongrid/pkg/version"
)

func TestMainComponents(t *testing.T) {
	t.Run("version available", func(t *testing.T) {
		assert.NotEmpty(t, version.GetVersion())
	})

	t.Run("cli root command", func(t *testing.T) {
		root := cli.NewRootCmd(version.String())
		require.NotNil(t, root)
		assert.Equal(t, "recongrid", root.Use)
	})
}

func TestRun_Version(t *testing.T) {
	t.Setenv("RECONGRID_HOME", t.TempDir())
	t.Setenv("RECONGRID_LOG_LEVEL", "error")
	old := os.Args
	t.Cleanup(func() { os.Args = old })
	os.Args = []string{"recongrid", "version"}

	require.NoError(t, run())
}
