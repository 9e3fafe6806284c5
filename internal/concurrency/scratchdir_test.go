package concurrency

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScratchDirCreateAndClose(t *testing.T) {
	sd, err := NewScratchDir(t.TempDir())
	require.NoError(t, err)

	info, err := os.Stat(sd.Path)
	require.NoError(t, err)
	require.True(t, info.IsDir())

	require.NoError(t, sd.Close())
	_, err = os.Stat(sd.Path)
	require.True(t, os.IsNotExist(err))
}

func TestScratchDirCloseIsIdempotent(t *testing.T) {
	sd, err := NewScratchDir(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, sd.Close())
	require.NoError(t, sd.Close())
}

func TestScratchDirJoin(t *testing.T) {
	sd, err := NewScratchDir(t.TempDir())
	require.NoError(t, err)
	defer sd.Close()
	require.Equal(t, filepath.Join(sd.Path, "frame_0.png"), sd.Join("frame_0.png"))
}
