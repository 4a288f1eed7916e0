package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/oomph-ac/phaser/phase"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phaser.toml")

	s, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, DefaultSettings(), s)
	require.FileExists(t, path)

	conf, err := s.Config()
	require.NoError(t, err)
	require.Equal(t, phase.DefaultConfig(), conf)
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phaser.toml")

	s := DefaultSettings()
	s.Phase.EntrySpeed = 40
	s.Phase.AlwaysGhost = true
	s.Phase.GhostMode = "adventure"
	s.Sentry.DSN = "https://key@sentry.example/1"
	require.NoError(t, Save(path, s))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, s, loaded)

	conf, err := loaded.Config()
	require.NoError(t, err)
	require.Equal(t, 40.0, conf.EntrySpeed)
	require.True(t, conf.AlwaysGhost)
	require.Equal(t, phase.ModeAdventure, conf.GhostMode)
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phaser.toml")
	require.NoError(t, os.WriteFile(path, []byte("[Phase]\nExitSpeed = 3.0\n"), 0644))

	s, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 3.0, s.Phase.ExitSpeed)
	require.Equal(t, 25.0, s.Phase.EntrySpeed)
	require.Equal(t, "creative", s.Phase.LightMode)
}

func TestInvalidSettings(t *testing.T) {
	s := DefaultSettings()
	s.Phase.ExitSpeed = s.Phase.EntrySpeed * 2
	_, err := s.Config()
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "phaser.toml")
	require.NoError(t, os.WriteFile(path, []byte("[Phase\n"), 0644))
	_, err = Load(path)
	require.Error(t, err)
}

func TestWatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phaser.toml")
	require.NoError(t, Save(path, DefaultSettings()))

	changes := make(chan Settings, 4)
	w, err := Watch(path, logrus.New(), func(s Settings) { changes <- s })
	require.NoError(t, err)
	defer w.Close()

	s := DefaultSettings()
	s.Phase.DebounceTicks = 40
	require.NoError(t, Save(path, s))

	select {
	case got := <-changes:
		require.Equal(t, 40, got.Phase.DebounceTicks)
	case <-time.After(5 * time.Second):
		t.Fatal("expected settings change to be picked up")
	}
	require.NoError(t, w.Close())
}

func TestReadDoesNotCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phaser.toml")
	_, err := Read(path)
	require.ErrorIs(t, err, os.ErrNotExist)
	require.NoFileExists(t, path)
}

func TestWatchIgnoresMovedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phaser.toml")
	s := DefaultSettings()
	s.Phase.DebounceTicks = 40
	require.NoError(t, Save(path, s))

	changes := make(chan Settings, 4)
	w, err := Watch(path, logrus.New(), func(s Settings) { changes <- s })
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.Rename(path, path+".bak"))
	select {
	case got := <-changes:
		t.Fatalf("expected no reload after the file moved away, got %+v", got.Phase)
	case <-time.After(500 * time.Millisecond):
	}
	require.NoFileExists(t, path)
}
