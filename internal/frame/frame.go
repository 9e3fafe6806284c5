// Package frame discovers and validates ordered sequences of PNG frames
// that feed the interpolation pipeline.
package frame

import (
	"image"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/noaa-goesvfi/goesvfi/internal/satindex"
	"github.com/noaa-goesvfi/goesvfi/internal/vfierrors"
)

// Geometry is a pixel width/height pair.
type Geometry struct {
	Width  int
	Height int
}

// Crop is a semantic crop rectangle applied to every frame before encoding.
type Crop struct {
	X, Y, W, H int
}

// Validate reports an InvalidInput error for a crop with non-positive
// dimensions.
func (c Crop) Validate() error {
	if c.W <= 0 || c.H <= 0 {
		return vfierrors.InvalidInputf("crop dimensions must be positive, got %dx%d", c.W, c.H)
	}
	return nil
}

// Frame is an immutable descriptor of one discovered input file.
type Frame struct {
	Path            string
	IndexInSequence int
	Geometry        Geometry
	Timestamp       *int64 // unix seconds UTC, nil when unavailable
}

// Source enumerates and validates a directory of PNG frames.
type Source struct {
	dir  string
	crop *Crop
}

// NewSource builds a Source over dir. A nil crop means no cropping; the
// cohort's target geometry is then the first frame's native geometry.
func NewSource(dir string, crop *Crop) (*Source, error) {
	if crop != nil {
		if err := crop.Validate(); err != nil {
			return nil, err
		}
	}
	return &Source{dir: dir, crop: crop}, nil
}

// Discover enumerates dir, validates the geometry cohort, and returns the
// ordered Frame sequence. minFrames is 2 when interpolation is enabled and
// 1 otherwise.
func (s *Source) Discover(minFrames int) ([]Frame, Geometry, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, Geometry{}, vfierrors.IOErrorErr("reading frame directory", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".png") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	if len(names) < minFrames {
		return nil, Geometry{}, vfierrors.InsufficientFramesErr(len(names), minFrames)
	}

	var target Geometry
	var nativeFirst Geometry
	frames := make([]Frame, 0, len(names))

	for i, name := range names {
		path := filepath.Join(s.dir, name)
		g, err := probeGeometry(path)
		if err != nil {
			return nil, Geometry{}, err
		}

		if i == 0 {
			nativeFirst = g
			target = g
			if s.crop != nil {
				if err := s.validateCropWithin(g); err != nil {
					return nil, Geometry{}, err
				}
				target = Geometry{Width: s.crop.W, Height: s.crop.H}
			}
		} else if g != nativeFirst {
			return nil, Geometry{}, vfierrors.GeometryMismatchErr(path,
				[2]int{g.Width, g.Height}, [2]int{nativeFirst.Width, nativeFirst.Height})
		}

		ts := timestampFor(name)
		frames = append(frames, Frame{
			Path:            path,
			IndexInSequence: i,
			Geometry:        g,
			Timestamp:       ts,
		})
	}

	return frames, target, nil
}

func (s *Source) validateCropWithin(native Geometry) error {
	c := *s.crop
	if c.X < 0 || c.Y < 0 || c.X+c.W > native.Width || c.Y+c.H > native.Height {
		return vfierrors.InvalidInputf(
			"crop (%d,%d,%d,%d) does not fit within native geometry %dx%d",
			c.X, c.Y, c.W, c.H, native.Width, native.Height)
	}
	return nil
}

// probeGeometry reads only the PNG header/metadata, not the pixel data.
func probeGeometry(path string) (Geometry, error) {
	f, err := os.Open(path)
	if err != nil {
		return Geometry{}, vfierrors.IOErrorErr("opening frame", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return Geometry{}, vfierrors.IOErrorErr("decoding frame header "+path, err)
	}
	return Geometry{Width: cfg.Width, Height: cfg.Height}, nil
}

func timestampFor(name string) *int64 {
	ts, ok := satindex.ExtractTimestamp(name)
	if !ok {
		return nil
	}
	sec := ts.Unix()
	return &sec
}
