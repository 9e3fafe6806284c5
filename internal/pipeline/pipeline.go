// Package pipeline composes the Time Index, Frame Source, Pre-processor,
// Interpolator Driver, and Encoder Sink into a single streaming operation.
package pipeline

import (
	"context"
	"os"
	"time"

	"github.com/natefinch/atomic"

	"github.com/noaa-goesvfi/goesvfi/internal/concurrency"
	"github.com/noaa-goesvfi/goesvfi/internal/encodersink"
	"github.com/noaa-goesvfi/goesvfi/internal/frame"
	"github.com/noaa-goesvfi/goesvfi/internal/interpolate"
	"github.com/noaa-goesvfi/goesvfi/internal/logger"
	"github.com/noaa-goesvfi/goesvfi/internal/preprocess"
	"github.com/noaa-goesvfi/goesvfi/internal/vfierrors"
)

// EventKind discriminates the two observable events a Run emits.
type EventKind int

const (
	ProgressEvent EventKind = iota
	ArtifactEvent
)

// Event is the lazy-sequence element a Run streams to its caller.
type Event struct {
	Kind         EventKind
	CurrentPair  int
	TotalPairs   int
	ETASeconds   float64
	BytesWritten int64
	Path         string
}

// Config is the full orchestrator configuration, validated at Run start.
type Config struct {
	InputDir              string
	OutputPath            string
	Crop                  *frame.Crop
	Colouriser            *preprocess.Colouriser
	MaxWorkers            int
	FPS                   int
	NumIntermediates      int
	SkipModel             bool
	InterpolatorExe       string
	ModelKey              string
	TileEnable            bool
	TileSize              int
	UHDMode               bool
	TTASpatial            bool
	TTATemporal           bool
	ThreadSpec            string
	InterpolatorExtraArgs string
	EncoderExe            string
	RateControl           encodersink.RateControl
	EncoderExtraArgs      string
	ScratchBaseDir        string
}

// Validate checks the documented configuration invariants.
func (c Config) Validate() error {
	if c.NumIntermediates < 0 {
		return vfierrors.InvalidInputf("num_intermediates must be >= 0, got %d", c.NumIntermediates)
	}
	if c.FPS <= 0 {
		return vfierrors.InvalidInputf("fps must be > 0, got %d", c.FPS)
	}
	if c.MaxWorkers <= 0 {
		return vfierrors.InvalidInputf("max_workers must be > 0, got %d", c.MaxWorkers)
	}
	if c.Crop != nil {
		if err := c.Crop.Validate(); err != nil {
			return err
		}
	}
	if !c.SkipModel && c.NumIntermediates != 1 {
		return vfierrors.Unsupportedf("only N=1 supported with model")
	}
	return nil
}

// Run executes the full pipeline, streaming events to the returned channel.
// The channel is closed after the terminal event (Artifact on success) or
// immediately after an error is sent through errCh. Cancelling ctx aborts
// the run and tears down every subprocess and scratch file.
func Run(ctx context.Context, cfg Config, log logger.Writer) (<-chan Event, <-chan error) {
	events := make(chan Event, 4)
	errCh := make(chan error, 1)

	go func() {
		defer close(events)
		defer close(errCh)
		if err := run(ctx, cfg, log, events); err != nil {
			if ctx.Err() != nil {
				err = vfierrors.CancelledErr()
			}
			errCh <- err
		}
	}()

	return events, errCh
}

func run(ctx context.Context, cfg Config, log logger.Writer, events chan<- Event) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	minFrames := 1
	if !cfg.SkipModel {
		minFrames = 2
	}

	src, err := frame.NewSource(cfg.InputDir, cfg.Crop)
	if err != nil {
		return err
	}
	frames, target, err := src.Discover(minFrames)
	if err != nil {
		return err
	}

	sd, err := concurrency.NewScratchDir(cfg.ScratchBaseDir)
	if err != nil {
		return err
	}
	defer sd.Close()

	procOpts := preprocess.Options{
		Crop:       cfg.Crop,
		Colouriser: cfg.Colouriser,
		MaxWorkers: cfg.MaxWorkers,
		ScratchDir: sd,
	}
	proc := preprocess.New(procOpts, target, log)
	processed, err := proc.ProcessAll(ctx, frames)
	if err != nil {
		return err
	}

	var driver *interpolate.Driver
	if !cfg.SkipModel {
		driver, err = interpolate.New(ctx, interpolate.Request{
			ExePath:          cfg.InterpolatorExe,
			ModelKey:         cfg.ModelKey,
			TileEnable:       cfg.TileEnable,
			TileSize:         cfg.TileSize,
			UHDMode:          cfg.UHDMode,
			TTASpatial:       cfg.TTASpatial,
			TTATemporal:      cfg.TTATemporal,
			ThreadSpec:       cfg.ThreadSpec,
			NumIntermediates: cfg.NumIntermediates,
			ExtraArgs:        cfg.InterpolatorExtraArgs,
		}, sd, log)
		if err != nil {
			return err
		}
	}

	sinkOpts := encodersink.Options{
		ExePath:          cfg.EncoderExe,
		OutputPath:       cfg.OutputPath,
		FPS:              cfg.FPS,
		NumIntermediates: cfg.NumIntermediates,
		Interpolating:    !cfg.SkipModel,
		RateControl:      cfg.RateControl,
		ExtraArgs:        cfg.EncoderExtraArgs,
	}
	sink, err := encodersink.New(ctx, sinkOpts)
	if err != nil {
		return err
	}

	if err := runBody(ctx, cfg, processed, driver, sink, events); err != nil {
		_ = sink.Terminate()
		_ = os.Remove(sinkOpts.RawPath())
		return err
	}

	if err := sink.Close(); err != nil {
		_ = os.Remove(sinkOpts.RawPath())
		return err
	}

	if err := finalizeArtifact(sinkOpts.RawPath(), cfg.OutputPath); err != nil {
		_ = os.Remove(sinkOpts.RawPath())
		return err
	}

	events <- Event{Kind: ArtifactEvent, Path: cfg.OutputPath}
	return nil
}

func runBody(
	ctx context.Context,
	cfg Config,
	processed []preprocess.ProcessedFrame,
	driver *interpolate.Driver,
	sink *encodersink.Sink,
	events chan<- Event,
) error {
	if len(processed) == 0 {
		return vfierrors.InsufficientFramesErr(0, 1)
	}

	var bytesWritten int64
	if err := sink.Write(0, processed[0].Bytes); err != nil {
		return err
	}
	bytesWritten += int64(len(processed[0].Bytes))

	pairs := frame.Pairs(framesFrom(processed))
	totalPairs := len(pairs)
	start := time.Now()
	lastProgress := time.Time{}
	nextIndex := 1

	if cfg.SkipModel {
		total := len(processed) - 1
		for i := 1; i < len(processed); i++ {
			select {
			case <-ctx.Done():
				return vfierrors.CancelledErr()
			default:
			}
			if err := sink.Write(nextIndex, processed[i].Bytes); err != nil {
				return err
			}
			bytesWritten += int64(len(processed[i].Bytes))
			nextIndex++
			emitProgress(events, &lastProgress, start, i-1, total, bytesWritten)
		}
		return nil
	}

	for i := range pairs {
		select {
		case <-ctx.Done():
			return vfierrors.CancelledErr()
		default:
		}

		intermediates, err := driver.Run(ctx, i, processed[i].Bytes, processed[i+1].Bytes)
		if err != nil {
			return err
		}
		for _, b := range intermediates {
			if err := sink.Write(nextIndex, b); err != nil {
				return err
			}
			bytesWritten += int64(len(b))
			nextIndex++
		}
		if err := sink.Write(nextIndex, processed[i+1].Bytes); err != nil {
			return err
		}
		bytesWritten += int64(len(processed[i+1].Bytes))
		nextIndex++

		emitProgress(events, &lastProgress, start, i, totalPairs, bytesWritten)
	}
	return nil
}

func emitProgress(events chan<- Event, last *time.Time, start time.Time, current, total int, bytesWritten int64) {
	now := time.Now()
	final := current+1 >= total
	if !final && now.Sub(*last) < time.Second {
		return
	}
	*last = now

	done := current + 1
	var eta float64
	if done > 0 && done < total {
		perPair := now.Sub(start).Seconds() / float64(done)
		eta = perPair * float64(total-done)
	}
	events <- Event{Kind: ProgressEvent, CurrentPair: done, TotalPairs: total, ETASeconds: eta, BytesWritten: bytesWritten}
}

func framesFrom(processed []preprocess.ProcessedFrame) []frame.Frame {
	out := make([]frame.Frame, len(processed))
	for i, p := range processed {
		out[i] = p.Frame
	}
	return out
}

func finalizeArtifact(rawPath, outputPath string) error {
	info, err := os.Stat(rawPath)
	if err != nil || info.Size() == 0 {
		return vfierrors.EncoderFailureErr(0, "empty output")
	}
	f, err := os.Open(rawPath)
	if err != nil {
		return vfierrors.IOErrorErr("reopening raw artifact", err)
	}
	defer f.Close()

	if err := atomic.WriteFile(outputPath, f); err != nil {
		return vfierrors.IOErrorErr("finalizing artifact", err)
	}
	_ = os.Remove(rawPath)
	return nil
}
