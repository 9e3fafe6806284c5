// Command goesvfi interpolates a directory of PNG satellite frames into an
// MP4 using an external RIFE-style interpolator and an ffmpeg-style
// encoder.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"code.cloudfoundry.org/bytefmt"
	"github.com/alecthomas/kong"

	"github.com/noaa-goesvfi/goesvfi/internal/conf"
	"github.com/noaa-goesvfi/goesvfi/internal/logger"
	"github.com/noaa-goesvfi/goesvfi/internal/pipeline"
	"github.com/noaa-goesvfi/goesvfi/internal/vfierrors"
)

const version = "0.1.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var cli conf.CLI
	parser, err := kong.New(&cli,
		kong.Description("goesvfi "+version),
		kong.UsageOnError(),
		kong.ValueFormatter(func(value *kong.Value) string {
			switch value.Name {
			case "input-dir":
				return "directory containing the input PNG frames"
			case "output-path":
				return "final MP4 artifact path"
			default:
				return kong.DefaultHelpValueFormatter(value)
			}
		}))
	if err != nil {
		panic(err)
	}

	if _, err := parser.Parse(args); err != nil {
		parser.FatalIfErrorf(err)
		return 2
	}

	log, err := logger.New(logger.Info, "")
	if err != nil {
		fmt.Fprintln(os.Stderr, "creating logger:", err)
		return 1
	}
	defer log.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		log.Log(logger.Warn, "received interrupt, cancelling pipeline")
		cancel()
	}()
	defer cancel()

	cfg := cli.ToPipelineConfig()
	events, errCh := pipeline.Run(ctx, cfg, log)

	for ev := range events {
		printEvent(log, ev)
	}

	if err := <-errCh; err != nil {
		return exitCodeFor(log, err)
	}
	return 0
}

func printEvent(log logger.Writer, ev pipeline.Event) {
	switch ev.Kind {
	case pipeline.ProgressEvent:
		log.Log(logger.Info, "pair %d/%d, eta %.0fs (%s processed)",
			ev.CurrentPair, ev.TotalPairs, ev.ETASeconds, bytefmt.ByteSize(uint64(ev.BytesWritten)))
	case pipeline.ArtifactEvent:
		log.Log(logger.Info, "wrote artifact %s", ev.Path)
	}
}

func exitCodeFor(log logger.Writer, err error) int {
	var ve *vfierrors.Error
	if !errors.As(err, &ve) {
		log.Log(logger.Error, "%v", err)
		return 1
	}

	if !ve.IsSilent() {
		log.Log(logger.Error, "%s", ve.UserMessage())
	}

	switch ve.Kind {
	case vfierrors.InvalidInput:
		return 2
	case vfierrors.InsufficientFrames:
		return 3
	case vfierrors.GeometryMismatch:
		return 4
	case vfierrors.InterpolatorFailure, vfierrors.EncoderDied, vfierrors.EncoderFailure,
		vfierrors.ExternalToolContract, vfierrors.ExternalToolFailure:
		return 5
	case vfierrors.Cancelled:
		return 6
	default:
		return 1
	}
}
