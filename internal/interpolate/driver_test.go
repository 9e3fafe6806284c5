package interpolate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noaa-goesvfi/goesvfi/internal/concurrency"
	"github.com/noaa-goesvfi/goesvfi/internal/vfierrors"
)

func TestParseCapabilities(t *testing.T) {
	help := "Usage: rife -m model -t tile-size -u -x -j thread-spec -s timestep -g gpu-id"
	caps := parseCapabilities(help)
	require.True(t, caps.Tiling)
	require.True(t, caps.UHD)
	require.True(t, caps.TTASpatial)
	require.True(t, caps.ThreadSpec)
	require.True(t, caps.Timestep)
	require.True(t, caps.GPUID)
}

func TestNewRejectsMultipleIntermediatesWithModel(t *testing.T) {
	sd, err := concurrency.NewScratchDir(t.TempDir())
	require.NoError(t, err)
	defer sd.Close()

	_, err = New(context.Background(), Request{ExePath: "/bin/true", NumIntermediates: 2}, sd, nil)
	require.Error(t, err)
	var ve *vfierrors.Error
	require.ErrorAs(t, err, &ve)
	require.Equal(t, vfierrors.Unsupported, ve.Kind)
}

func TestSkipModelSkipsInvocation(t *testing.T) {
	sd, err := concurrency.NewScratchDir(t.TempDir())
	require.NoError(t, err)
	defer sd.Close()

	d, err := New(context.Background(), Request{SkipModel: true}, sd, nil)
	require.NoError(t, err)

	out, err := d.Run(context.Background(), 0, []byte("a"), []byte("b"))
	require.NoError(t, err)
	require.Nil(t, out)
}

func TestRunProducesIntermediate(t *testing.T) {
	sd, err := concurrency.NewScratchDir(t.TempDir())
	require.NoError(t, err)
	defer sd.Close()

	script := filepath.Join(t.TempDir(), "fake_rife.sh")
	scriptBody := "#!/bin/sh\n" +
		"out=\"\"\n" +
		"while [ $# -gt 0 ]; do\n" +
		"  if [ \"$1\" = \"-o\" ]; then out=\"$2\"; fi\n" +
		"  shift\n" +
		"done\n" +
		"echo fake > \"$out\"\n" +
		"exit 0\n"
	require.NoError(t, os.WriteFile(script, []byte(scriptBody), 0o755))

	d, err := New(context.Background(), Request{ExePath: script, NumIntermediates: 1}, sd, nil)
	require.NoError(t, err)

	out, err := d.Run(context.Background(), 0, []byte("p0bytes"), []byte("p1bytes"))
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "fake\n", string(out[0]))
}

func TestNewParsesExtraArgs(t *testing.T) {
	sd, err := concurrency.NewScratchDir(t.TempDir())
	require.NoError(t, err)
	defer sd.Close()

	d, err := New(context.Background(), Request{ExePath: "/bin/true", NumIntermediates: 1, ExtraArgs: "-g 0 -v"}, sd, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"-g", "0", "-v"}, d.extraArgs)
}

func TestBuildArgsAppendsExtraArgs(t *testing.T) {
	sd, err := concurrency.NewScratchDir(t.TempDir())
	require.NoError(t, err)
	defer sd.Close()

	d, err := New(context.Background(), Request{ExePath: "/bin/true", NumIntermediates: 1, ExtraArgs: "-g 0"}, sd, nil)
	require.NoError(t, err)
	args := d.buildArgs("p0.png", "p1.png", "out.png")
	require.Equal(t, []string{"-g", "0"}, args[len(args)-2:])
}

func TestNewRejectsUnterminatedQuoteInExtraArgs(t *testing.T) {
	sd, err := concurrency.NewScratchDir(t.TempDir())
	require.NoError(t, err)
	defer sd.Close()

	_, err = New(context.Background(), Request{ExePath: "/bin/true", NumIntermediates: 1, ExtraArgs: `"unterminated`}, sd, nil)
	require.Error(t, err)
}

func TestNewRejectsMissingExecutable(t *testing.T) {
	sd, err := concurrency.NewScratchDir(t.TempDir())
	require.NoError(t, err)
	defer sd.Close()

	missing := filepath.Join(t.TempDir(), "no-such-interpolator")
	_, err = New(context.Background(), Request{ExePath: missing, NumIntermediates: 1}, sd, nil)
	require.Error(t, err)
	var ve *vfierrors.Error
	require.ErrorAs(t, err, &ve)
	require.Equal(t, vfierrors.ExternalToolFailure, ve.Kind)
}

func TestFormatStep(t *testing.T) {
	require.Equal(t, "0.5", formatStep(1))
}

func TestTailTruncates(t *testing.T) {
	long := make([]byte, 5000)
	for i := range long {
		long[i] = 'x'
	}
	require.LessOrEqual(t, len(tail(string(long))), 4096)
}
