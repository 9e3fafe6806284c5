// Package preprocess applies crop, colourisation, and geometry
// normalisation to discovered frames, producing encoder-ready PNG bytes.
package preprocess

import (
	"bytes"
	"context"
	"image"
	"os"
	"os/exec"

	"github.com/disintegration/imaging"

	"github.com/noaa-goesvfi/goesvfi/internal/concurrency"
	"github.com/noaa-goesvfi/goesvfi/internal/frame"
	"github.com/noaa-goesvfi/goesvfi/internal/logger"
	"github.com/noaa-goesvfi/goesvfi/internal/vfierrors"
)

// ProcessedFrame is a Frame plus its geometry-normalised, cohort-target PNG
// bytes and a record of which steps were applied.
type ProcessedFrame struct {
	Frame     frame.Frame
	Bytes     []byte
	Cropped   bool
	Colourise bool
}

// Colouriser invokes the external colourisation tool ("Sanchez" in the
// reference toolchain): input PNG path in, false-coloured PNG path out.
type Colouriser struct {
	ExePath string
	ResKM   int
}

// Options configures a Processor run.
type Options struct {
	Crop       *frame.Crop
	Colouriser *Colouriser // nil disables colourisation
	MaxWorkers int
	ScratchDir *concurrency.ScratchDir
}

// Processor runs crop + colourise + geometry validation over a frame
// sequence using a bounded worker pool, preserving input order in its
// output regardless of completion order.
type Processor struct {
	opts   Options
	target frame.Geometry
	log    logger.Writer
}

// New builds a Processor targeting the cohort geometry established by the
// frame source.
func New(opts Options, target frame.Geometry, log logger.Writer) *Processor {
	return &Processor{opts: opts, target: target, log: log}
}

// ProcessAll runs the pool over every frame and returns ProcessedFrames in
// the same order as the input.
func (p *Processor) ProcessAll(ctx context.Context, frames []frame.Frame) ([]ProcessedFrame, error) {
	pool := concurrency.SingletonPool(p.opts.MaxWorkers)

	results, err := pool.Run(ctx, len(frames), func(ctx context.Context, i int) (interface{}, error) {
		return p.processOne(ctx, frames[i], i)
	})
	if err != nil {
		return nil, err
	}

	out := make([]ProcessedFrame, len(results))
	for i, r := range results {
		out[i] = r.Value.(ProcessedFrame)
	}
	return out, nil
}

func (p *Processor) processOne(ctx context.Context, f frame.Frame, index int) (ProcessedFrame, error) {
	img, err := loadImage(f.Path)
	if err != nil {
		return ProcessedFrame{}, err
	}

	cropped := false
	if p.opts.Crop != nil {
		c := *p.opts.Crop
		img = imaging.Crop(img, image.Rect(c.X, c.Y, c.X+c.W, c.Y+c.H))
		cropped = true
	}

	colourised := false
	if p.opts.Colouriser != nil {
		img, err = p.colourise(ctx, img, index)
		if err != nil {
			return ProcessedFrame{}, err
		}
		colourised = true
	}

	b := img.Bounds()
	if b.Dx() != p.target.Width || b.Dy() != p.target.Height {
		return ProcessedFrame{}, vfierrors.GeometryMismatchErr(f.Path,
			[2]int{b.Dx(), b.Dy()}, [2]int{p.target.Width, p.target.Height})
	}

	encoded, err := encodePNG(img)
	if err != nil {
		return ProcessedFrame{}, err
	}

	return ProcessedFrame{Frame: f, Bytes: encoded, Cropped: cropped, Colourise: colourised}, nil
}

func (p *Processor) colourise(ctx context.Context, img image.Image, index int) (image.Image, error) {
	inPath := p.opts.ScratchDir.Join(indexedName("colourise_in", index))
	outPath := p.opts.ScratchDir.Join(indexedName("colourise_out", index))

	if err := imaging.Save(img, inPath); err != nil {
		return nil, vfierrors.IOErrorErr("writing colourise input", err)
	}
	defer os.Remove(inPath)

	c := p.opts.Colouriser
	args := []string{"-i", inPath, "-o", outPath}
	if c.ResKM > 0 {
		args = append(args, "--res-km", itoa(c.ResKM))
	}

	if p.log != nil {
		p.log.Log(logger.Debug, "colourise frame %d via %s", index, c.ExePath)
	}

	cmd := exec.CommandContext(ctx, c.ExePath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if exitErr, ok := asExitError(err); ok {
			return nil, vfierrors.ExternalToolFailureErr(stderr.String(), exitErr)
		}
		return nil, vfierrors.IOErrorErr("running colourise tool", err)
	}
	defer os.Remove(outPath)

	if _, err := os.Stat(outPath); err != nil {
		return nil, vfierrors.ExternalToolContractErr("no output")
	}

	out, err := imaging.Open(outPath)
	if err != nil {
		return nil, vfierrors.IOErrorErr("reading colourise output", err)
	}
	return out, nil
}

func loadImage(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, vfierrors.IOErrorErr("opening frame "+path, err)
	}
	return img, nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, vfierrors.IOErrorErr("encoding PNG", err)
	}
	return buf.Bytes(), nil
}
