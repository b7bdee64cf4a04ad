package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visual-artifacts/internal/cli"
	"visual-artifacts/internal/config"
	"visual-artifacts/internal/logger"
)

func newTestApp(t *testing.T, args *CLI) (*Application, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Assets.Videos = dir
	return &Application{args: args, console: cli.NewConsole(), log: logger.Nop(), cfg: cfg}, dir
}

func TestVideoFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.mp4", "a.mp4"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	assert.Equal(t, []string{"a", "b"}, videoFiles(dir))
	assert.Nil(t, videoFiles(filepath.Join(dir, "missing")))
}

func TestResolveVideo(t *testing.T) {
	t.Run("missing flag is a usage error", func(t *testing.T) {
		app, _ := newTestApp(t, &CLI{})
		_, err := app.resolveVideo()
		assert.True(t, errors.Is(err, errUsage))
	})

	t.Run("unknown asset", func(t *testing.T) {
		app, _ := newTestApp(t, &CLI{Video: "nope"})
		_, err := app.resolveVideo()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "couldn't find 'nope'")
	})

	t.Run("extension appended", func(t *testing.T) {
		app, dir := newTestApp(t, &CLI{Video: "clip"})
		require.NoError(t, os.WriteFile(filepath.Join(dir, "clip.mp4"), nil, 0o644))

		path, err := app.resolveVideo()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "clip.mp4"), path)
	})
}

func TestRunRequiresMode(t *testing.T) {
	args := &CLI{Config: filepath.Join(t.TempDir(), "config.yaml")}
	app := &Application{args: args, console: cli.NewConsole(), log: logger.Nop()}

	err := app.Run(t.Context())
	assert.True(t, errors.Is(err, errUsage))
	assert.FileExists(t, args.Config)
}

func TestConfigureSavesChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	app := &Application{
		args:    &CLI{Config: path, Configure: map[string]string{"effects.default": "Grunge"}},
		console: cli.NewConsole(),
		log:     logger.Nop(),
	}
	require.NoError(t, app.Run(t.Context()))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Grunge", cfg.Effects.Default)
}
