package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0.1, cfg.Locomotion.Speed)
	assert.Equal(t, [3]float32{-10, 3, 0}, cfg.Follow.Offset)
	assert.Equal(t, 2*time.Second, cfg.Follow.ResetDelay)
	assert.Equal(t, 5_000_000, cfg.Streaks.Count)
}

func TestParseOverlaysDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
window:
  width: 800
  height: 600
locomotion:
  max_speed: 0.3
follow:
  reset_delay: 500ms
lights:
  ambient: 0x202020
`))
	require.NoError(t, err)
	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, 0.3, cfg.Locomotion.MaxSpeed)
	assert.Equal(t, 0.04, cfg.Locomotion.MinSpeed)
	assert.Equal(t, 500*time.Millisecond, cfg.Follow.ResetDelay)
	assert.Equal(t, uint32(0x202020), cfg.Lights.Ambient)
	assert.Equal(t, "models/Dog.glb", cfg.Assets.Actor)
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseRejects(t *testing.T) {
	_, err := Parse([]byte("window:\n  widht: 10\n"))
	assert.Error(t, err, "unknown keys")

	_, err = Parse([]byte("locomotion:\n  min_speed: 0.5\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "min_speed")

	_, err = Parse([]byte("streaks:\n  spread: 0\nactor:\n  scale: -1\n"))
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "streaks.spread")
	assert.Contains(t, err.Error(), "actor.scale")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalid)
}

func TestWatchReloads(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	path := filepath.Join(t.TempDir(), "viewer.yaml")
	require.NoError(t, os.WriteFile(path, []byte("streaks:\n  threshold: 0.15\n"), 0o644))

	w, err := Watch(path, log)
	require.NoError(t, err)
	defer w.Close()

	// an invalid edit is skipped, the next valid one is published
	require.NoError(t, os.WriteFile(path, []byte("streaks:\n  spread: -1\n"), 0o644))
	time.Sleep(3 * debounce)
	require.NoError(t, os.WriteFile(path, []byte("streaks:\n  threshold: 0.12\n"), 0o644))

	select {
	case cfg := <-w.Updates:
		require.NotNil(t, cfg)
		assert.Equal(t, 0.12, cfg.Streaks.Threshold)
	case <-time.After(3 * time.Second):
		t.Fatal("no reload")
	}

	require.NoError(t, w.Close())
	_, open := <-w.Updates
	assert.False(t, open)
}
