// Package encodersink drives the external video-encoder subprocess
// ("ffmpeg" in the reference toolchain), accepting an ordered stream of PNG
// byte-blocks on its stdin and producing a raw intermediate MP4.
package encodersink

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/kballard/go-shellquote"

	"github.com/noaa-goesvfi/goesvfi/internal/concurrency"
	"github.com/noaa-goesvfi/goesvfi/internal/vfierrors"
)

// terminateGracePeriod bounds how long Terminate waits for the encoder to
// exit on its own (after stdin closes) before force-killing it.
const terminateGracePeriod = 5 * time.Second

// RateControl configures the encoder's output codec parameters.
type RateControl struct {
	CRF         int
	BitrateKbps int
	BufsizeKB   int
	PixFmt      string // default "yuv420p"
	Preset      string // default "ultrafast"
}

func (r RateControl) pixFmt() string {
	if r.PixFmt == "" {
		return "yuv420p"
	}
	return r.PixFmt
}

func (r RateControl) preset() string {
	if r.Preset == "" {
		return "ultrafast"
	}
	return r.Preset
}

// Options configures a Sink.
type Options struct {
	ExePath          string
	OutputPath       string // final artifact path; sink writes OutputPath+".raw.mp4"
	FPS              int
	NumIntermediates int
	Interpolating    bool
	RateControl      RateControl
	// ExtraArgs is a shell-quoted string of additional encoder flags
	// inserted just before the output path, e.g. "-tune animation".
	ExtraArgs string
}

// RawPath is the intermediate file the encoder actually writes.
func (o Options) RawPath() string {
	return o.OutputPath + ".raw.mp4"
}

func (o Options) effectiveFPS() int {
	if o.Interpolating {
		return o.FPS * (o.NumIntermediates + 1)
	}
	return o.FPS
}

// Sink spawns and feeds the encoder subprocess. Writes must arrive in
// strictly increasing frame_index; a bounded reorder window isn't
// implemented (the default of 0 in the reference design), so callers must
// pre-order.
type Sink struct {
	opts    Options
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	drain   *concurrency.LogDrain
	lastIdx int
}

// New spawns the encoder subprocess. Failure to start is reported
// immediately (fail-fast) as required by the orchestrator contract.
func New(ctx context.Context, opts Options) (*Sink, error) {
	var extra []string
	if opts.ExtraArgs != "" {
		var err error
		extra, err = shellquote.Split(opts.ExtraArgs)
		if err != nil {
			return nil, vfierrors.InvalidInputf("parsing encoder extra args: %v", err)
		}
	}

	args := buildArgs(opts, extra)
	cmd := exec.CommandContext(ctx, opts.ExePath, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, vfierrors.IOErrorErr("opening encoder stdin", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, vfierrors.IOErrorErr("opening encoder stdout", err)
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		var pathErr *exec.Error
		if errors.As(err, &pathErr) || errors.Is(err, os.ErrNotExist) || errors.Is(err, os.ErrPermission) {
			return nil, vfierrors.ExternalToolFailureErr(err.Error(), 0)
		}
		return nil, vfierrors.IOErrorErr("starting encoder", err)
	}

	return &Sink{
		opts:    opts,
		cmd:     cmd,
		stdin:   stdin,
		drain:   concurrency.NewLogDrain(stdout, 64*1024),
		lastIdx: -1,
	}, nil
}

func buildArgs(o Options, extra []string) []string {
	rc := o.RateControl
	args := []string{
		"-hide_banner",
		"-loglevel", "info",
		"-stats",
		"-y",
		"-f", "image2pipe",
		"-framerate", strconv.Itoa(o.effectiveFPS()),
		"-vcodec", "png",
		"-i", "-",
		"-an",
		"-vcodec", "libx264",
		"-preset", rc.preset(),
	}
	if rc.CRF > 0 {
		args = append(args, "-crf", strconv.Itoa(rc.CRF))
	}
	if rc.BitrateKbps > 0 {
		args = append(args, "-b:v", strconv.Itoa(rc.BitrateKbps)+"k")
	}
	if rc.BufsizeKB > 0 {
		args = append(args, "-bufsize", strconv.Itoa(rc.BufsizeKB)+"k")
	}
	args = append(args,
		"-pix_fmt", rc.pixFmt(),
		"-vf", "scale=trunc(iw/2)*2:trunc(ih/2)*2",
	)
	if len(extra) > 0 {
		args = append(args, extra...)
	}
	args = append(args, o.RawPath())
	return args
}

// Write sends frameIndex's PNG bytes to the encoder. index must be strictly
// greater than the previously written index.
func (s *Sink) Write(frameIndex int, pngBytes []byte) error {
	if frameIndex <= s.lastIdx {
		return vfierrors.OrderingViolationErr("encoder write out of order")
	}

	_, err := s.stdin.Write(pngBytes)
	if err != nil {
		if errors.Is(err, os.ErrClosed) || isBrokenPipe(err) {
			return vfierrors.EncoderDiedErr(s.drain.Tail())
		}
		return vfierrors.IOErrorErr("writing to encoder", err)
	}

	s.lastIdx = frameIndex
	return nil
}

// Close closes stdin, drains the log, waits for exit, and validates the
// output file.
func (s *Sink) Close() error {
	if err := s.stdin.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		return vfierrors.IOErrorErr("closing encoder stdin", err)
	}

	s.drain.Wait()
	waitErr := s.cmd.Wait()

	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return vfierrors.EncoderFailureErr(exitErr.ExitCode(), s.drain.Tail())
		}
		return vfierrors.IOErrorErr("waiting for encoder", waitErr)
	}

	info, err := os.Stat(s.opts.RawPath())
	if err != nil || info.Size() == 0 {
		return vfierrors.EncoderFailureErr(0, "empty output")
	}
	return nil
}

// Terminate is used on cancellation: it closes stdin, giving the encoder a
// chance to exit on its own, then force-kills it if it hasn't exited within
// the grace period. It blocks until the process has actually exited, so a
// caller can safely remove partial output immediately after it returns.
func (s *Sink) Terminate() error {
	_ = s.stdin.Close()
	if s.cmd.Process == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- s.cmd.Wait() }()

	select {
	case <-done:
		return nil
	case <-time.After(terminateGracePeriod):
		_ = s.cmd.Process.Kill()
		<-done
		return nil
	}
}

func isBrokenPipe(err error) bool {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err.Error() == "broken pipe" || pathErr.Err.Error() == "EPIPE"
	}
	return err != nil && (errors.Is(err, os.ErrClosed) || err.Error() == "io: read/write on closed pipe")
}
