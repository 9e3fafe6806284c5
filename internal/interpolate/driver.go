package interpolate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/kballard/go-shellquote"

	"github.com/noaa-goesvfi/goesvfi/internal/concurrency"
	"github.com/noaa-goesvfi/goesvfi/internal/logger"
	"github.com/noaa-goesvfi/goesvfi/internal/vfierrors"
)

// defaultModelKey is used whenever a requested model key isn't supported
// by the discovered binary, or none is configured.
const defaultModelKey = "rife-v4.6"

// modelMap mirrors the reference toolchain's UI-label-to-CLI-key table.
var modelMap = map[string]string{
	"RIFE v4.6 (default)": "rife-v4.6",
	"RIFE v4":             "rife-v4",
}

// Request configures one driver invocation.
type Request struct {
	ExePath          string
	ModelKey         string
	TileEnable       bool
	TileSize         int
	UHDMode          bool
	TTASpatial       bool
	TTATemporal      bool
	ThreadSpec       string
	NumIntermediates int
	SkipModel        bool
	// ExtraArgs is a shell-quoted string of additional flags appended
	// verbatim after the driver's own flags, e.g. "-g 0 -v".
	ExtraArgs string
}

// Driver runs the interpolator subprocess for each consecutive frame pair.
type Driver struct {
	req       Request
	caps      CapabilityFlags
	log       logger.Writer
	sd        *concurrency.ScratchDir
	extraArgs []string
}

// New constructs a Driver, discovering the binary's capabilities once. When
// req.SkipModel is set the driver is never actually invoked and capability
// discovery is skipped.
func New(ctx context.Context, req Request, sd *concurrency.ScratchDir, log logger.Writer) (*Driver, error) {
	if req.SkipModel {
		return &Driver{req: req, log: log, sd: sd}, nil
	}
	if req.NumIntermediates != 1 {
		return nil, vfierrors.Unsupportedf("only N=1 supported with model")
	}
	if err := checkExecutable(req.ExePath); err != nil {
		return nil, vfierrors.ExternalToolFailureErr(err.Error(), 0)
	}
	var extra []string
	if req.ExtraArgs != "" {
		var err error
		extra, err = shellquote.Split(req.ExtraArgs)
		if err != nil {
			return nil, vfierrors.InvalidInputf("parsing interpolator extra args: %v", err)
		}
	}
	var limited logger.Writer
	if log != nil {
		limited = logger.NewLimitedLogger(log)
	}
	return &Driver{
		req:       req,
		caps:      DiscoverCapabilities(ctx, req.ExePath),
		log:       limited,
		sd:        sd,
		extraArgs: extra,
	}, nil
}

// Run interpolates the pair materialised at p0/p1 (already-encoded PNG
// bytes) and returns the N intermediate PNG byte-blocks in temporal order.
func (d *Driver) Run(ctx context.Context, pairIndex int, p0, p1 []byte) ([][]byte, error) {
	if d.req.SkipModel {
		return nil, nil
	}

	p0Path := d.sd.Join(indexedName("p0", pairIndex))
	p1Path := d.sd.Join(indexedName("p1", pairIndex))
	outPath := d.sd.Join(indexedName("interp", pairIndex))

	if err := os.WriteFile(p0Path, p0, 0o644); err != nil {
		return nil, vfierrors.IOErrorErr("writing interpolator input", err)
	}
	if err := os.WriteFile(p1Path, p1, 0o644); err != nil {
		return nil, vfierrors.IOErrorErr("writing interpolator input", err)
	}
	defer os.Remove(p0Path)
	defer os.Remove(p1Path)

	args := d.buildArgs(p0Path, p1Path, outPath)

	cmd := exec.CommandContext(ctx, d.req.ExePath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		defer os.Remove(outPath)
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, vfierrors.InterpolatorFailureErr(pairIndex, exitErr.ExitCode(), tail(stderr.String()))
		}
		return nil, vfierrors.IOErrorErr("running interpolator", err)
	}
	defer os.Remove(outPath)

	bytesOut, err := os.ReadFile(outPath)
	if err != nil {
		return nil, vfierrors.ExternalToolContractErr("no output")
	}
	if len(bytesOut) == 0 {
		return nil, vfierrors.ExternalToolContractErr("empty output")
	}

	return [][]byte{bytesOut}, nil
}

func (d *Driver) buildArgs(p0Path, p1Path, outPath string) []string {
	model := defaultModelKey
	if d.req.ModelKey != "" {
		if mapped, ok := modelMap[d.req.ModelKey]; ok {
			if d.caps.ModelPath {
				model = mapped
			} else {
				d.warnOnce("model path not supported by interpolator, using default model")
			}
		}
	}

	n := d.req.NumIntermediates
	args := []string{
		"-m", model,
		"-0", p0Path,
		"-1", p1Path,
		"-o", outPath,
		"-n", itoa(n),
		"-s", formatStep(n),
	}

	if d.req.TileEnable {
		if d.caps.Tiling {
			args = append(args, "-t", itoa(d.req.TileSize))
		} else {
			d.warnOnce("tiling not supported by interpolator, omitting flag")
		}
	}
	if d.req.UHDMode {
		if d.caps.UHD {
			args = append(args, "-u")
		} else {
			d.warnOnce("UHD mode not supported by interpolator, omitting flag")
		}
	}
	if d.req.TTASpatial {
		if d.caps.TTASpatial {
			args = append(args, "-x")
		} else {
			d.warnOnce("spatial TTA not supported by interpolator, omitting flag")
		}
	}
	if d.req.TTATemporal {
		if d.caps.TTATemporal {
			args = append(args, "-tta-temporal")
		} else {
			d.warnOnce("temporal TTA not supported by interpolator, omitting flag")
		}
	}
	if d.req.ThreadSpec != "" {
		if d.caps.ThreadSpec {
			args = append(args, "-j", d.req.ThreadSpec)
		} else {
			d.warnOnce("thread spec not supported by interpolator, omitting flag")
		}
	}

	if len(d.extraArgs) > 0 {
		args = append(args, d.extraArgs...)
	}

	return args
}

func (d *Driver) warnOnce(msg string) {
	if d.log != nil {
		d.log.Log(logger.Warn, "%s", msg)
	}
}

func tail(s string) string {
	const maxLen = 4096
	if len(s) <= maxLen {
		return s
	}
	return s[len(s)-maxLen:]
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func indexedName(prefix string, index int) string {
	return fmt.Sprintf("%s_%d.png", prefix, index)
}
