package pipeline

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noaa-goesvfi/goesvfi/internal/vfierrors"
)

func writeFrame(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func writeFakeEncoderScript(t *testing.T, dir string) string {
	t.Helper()
	script := filepath.Join(dir, "fake_ffmpeg.sh")
	body := "#!/bin/sh\n" +
		"for out in \"$@\"; do :; done\n" +
		"cat >/dev/null\n" +
		"echo raw > \"$out\"\n" +
		"exit 0\n"
	require.NoError(t, os.WriteFile(script, []byte(body), 0o755))
	return script
}

func TestRunSkipModelHappyPath(t *testing.T) {
	inputDir := t.TempDir()
	writeFrame(t, filepath.Join(inputDir, "a.png"), 32, 32)
	writeFrame(t, filepath.Join(inputDir, "b.png"), 32, 32)

	workDir := t.TempDir()
	encoder := writeFakeEncoderScript(t, workDir)
	outputPath := filepath.Join(workDir, "final.mp4")

	cfg := Config{
		InputDir:   inputDir,
		OutputPath: outputPath,
		MaxWorkers: 2,
		FPS:        10,
		SkipModel:  true,
		EncoderExe: encoder,
	}

	events, errCh := Run(context.Background(), cfg, nil)

	var sawArtifact bool
	for ev := range events {
		if ev.Kind == ArtifactEvent {
			sawArtifact = true
			require.Equal(t, outputPath, ev.Path)
		}
	}
	require.NoError(t, <-errCh)
	require.True(t, sawArtifact)

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}

func writeFakeInterpolatorScript(t *testing.T, dir string) string {
	t.Helper()
	script := filepath.Join(dir, "fake_rife.sh")
	body := "#!/bin/sh\n" +
		"p0=\"\"\n" +
		"out=\"\"\n" +
		"while [ $# -gt 0 ]; do\n" +
		"  case \"$1\" in\n" +
		"    -0) p0=\"$2\" ;;\n" +
		"    -o) out=\"$2\" ;;\n" +
		"  esac\n" +
		"  shift\n" +
		"done\n" +
		"cp \"$p0\" \"$out\"\n" +
		"exit 0\n"
	require.NoError(t, os.WriteFile(script, []byte(body), 0o755))
	return script
}

func TestRunInterpolationHappyPath(t *testing.T) {
	inputDir := t.TempDir()
	writeFrame(t, filepath.Join(inputDir, "a.png"), 64, 64)
	writeFrame(t, filepath.Join(inputDir, "b.png"), 64, 64)
	writeFrame(t, filepath.Join(inputDir, "c.png"), 64, 64)

	sizeOf := func(name string) int64 {
		info, err := os.Stat(filepath.Join(inputDir, name))
		require.NoError(t, err)
		return info.Size()
	}
	expectedBytes := 2*sizeOf("a.png") + 2*sizeOf("b.png") + sizeOf("c.png")

	workDir := t.TempDir()
	encoder := writeFakeEncoderScript(t, workDir)
	interpolator := writeFakeInterpolatorScript(t, workDir)
	outputPath := filepath.Join(workDir, "final.mp4")

	cfg := Config{
		InputDir:         inputDir,
		OutputPath:       outputPath,
		MaxWorkers:       2,
		FPS:              30,
		NumIntermediates: 1,
		SkipModel:        false,
		InterpolatorExe:  interpolator,
		EncoderExe:       encoder,
	}

	events, errCh := Run(context.Background(), cfg, nil)

	var lastProgress Event
	var sawArtifact bool
	for ev := range events {
		switch ev.Kind {
		case ProgressEvent:
			lastProgress = ev
		case ArtifactEvent:
			sawArtifact = true
			require.Equal(t, outputPath, ev.Path)
		}
	}
	require.NoError(t, <-errCh)
	require.True(t, sawArtifact)

	require.Equal(t, 2, lastProgress.TotalPairs)
	require.Equal(t, expectedBytes, lastProgress.BytesWritten)

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}

func TestRunCancelledLeavesNoArtifact(t *testing.T) {
	inputDir := t.TempDir()
	writeFrame(t, filepath.Join(inputDir, "a.png"), 32, 32)
	writeFrame(t, filepath.Join(inputDir, "b.png"), 32, 32)
	writeFrame(t, filepath.Join(inputDir, "c.png"), 32, 32)

	workDir := t.TempDir()
	encoder := writeFakeEncoderScript(t, workDir)
	outputPath := filepath.Join(workDir, "final.mp4")

	cfg := Config{
		InputDir:   inputDir,
		OutputPath: outputPath,
		MaxWorkers: 2,
		FPS:        10,
		SkipModel:  true,
		EncoderExe: encoder,
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	events, errCh := Run(ctx, cfg, nil)
	for range events {
	}
	err := <-errCh
	require.Error(t, err)
	var ve *vfierrors.Error
	require.ErrorAs(t, err, &ve)
	require.Equal(t, vfierrors.Cancelled, ve.Kind)

	_, statErr := os.Stat(outputPath)
	require.True(t, os.IsNotExist(statErr))
	_, rawStatErr := os.Stat(outputPath + ".raw.mp4")
	require.True(t, os.IsNotExist(rawStatErr))
}

func TestConfigValidateRejectsBadFPS(t *testing.T) {
	cfg := Config{FPS: 0, MaxWorkers: 1, SkipModel: true}
	require.Error(t, cfg.Validate())
}

func TestConfigValidateRejectsMultipleIntermediatesWithModel(t *testing.T) {
	cfg := Config{FPS: 10, MaxWorkers: 1, SkipModel: false, NumIntermediates: 2}
	require.Error(t, cfg.Validate())
}

func TestRunInsufficientFrames(t *testing.T) {
	inputDir := t.TempDir()
	writeFrame(t, filepath.Join(inputDir, "a.png"), 32, 32)

	workDir := t.TempDir()
	cfg := Config{
		InputDir:   inputDir,
		OutputPath: filepath.Join(workDir, "final.mp4"),
		MaxWorkers: 1,
		FPS:        10,
		SkipModel:  false,
		NumIntermediates: 1,
	}

	_, errCh := Run(context.Background(), cfg, nil)
	require.Error(t, <-errCh)
}
