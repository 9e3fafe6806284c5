// Package conf defines the CLI-flag-only configuration surface and maps it
// onto the pipeline's internal Config type.
package conf

import (
	"github.com/noaa-goesvfi/goesvfi/internal/encodersink"
	"github.com/noaa-goesvfi/goesvfi/internal/frame"
	"github.com/noaa-goesvfi/goesvfi/internal/pipeline"
	"github.com/noaa-goesvfi/goesvfi/internal/preprocess"
)

// CLI is the full flag surface, parsed by kong in cmd/goesvfi.
type CLI struct {
	InputDir   string `arg:"" help:"Directory containing input PNG frames."`
	OutputPath string `arg:"" help:"Final MP4 artifact path."`

	FPS              int    `default:"10" help:"Output frame rate."`
	NumIntermediates int    `default:"1" help:"Number of interpolated frames per pair."`
	MaxWorkers       int    `default:"4" help:"Bounded pre-processing worker pool size."`
	Encoder          string `default:"h264" help:"Video codec family. Not passed to the encoder, which always encodes with libx264."`
	SkipModel        bool   `help:"Bypass the interpolator; stream originals only."`

	CropX int `help:"Crop rectangle x offset."`
	CropY int `help:"Crop rectangle y offset."`
	CropW int `help:"Crop rectangle width; 0 disables cropping."`
	CropH int `help:"Crop rectangle height."`

	FalseColour  bool   `help:"Enable colourisation via the external colourise tool."`
	ColouriseExe string `default:"sanchez" help:"Path to the colourise executable."`
	ResKM        int    `default:"4" help:"Colourise output resolution in km/px."`

	CRF         int    `help:"Constant rate factor; 0 uses the encoder default."`
	BitrateKbps int    `help:"Target bitrate in kbps; 0 uses CRF mode."`
	BufsizeKB   int    `help:"Rate-control buffer size in KB."`
	PixFmt      string `default:"yuv420p" help:"Output pixel format."`
	Preset      string `default:"ultrafast" help:"Encoder preset."`

	InterpolatorExe string `default:"rife-ncnn-vulkan" help:"Path to the interpolator executable."`
	ModelKey        string `default:"RIFE v4.6 (default)" help:"Interpolator model key."`
	RifeTileEnable  bool   `help:"Enable interpolator tiling."`
	RifeTileSize    int    `default:"384" help:"Interpolator tile size."`
	RifeUHD         bool   `help:"Enable interpolator UHD mode."`
	RifeTTASpatial  bool   `help:"Enable spatial test-time augmentation."`
	RifeTTATemporal bool   `help:"Enable temporal test-time augmentation."`
	RifeThreadSpec  string `help:"Interpolator load:proc:save thread spec."`
	RifeExtraArgs   string `help:"Additional shell-quoted flags passed through to the interpolator."`

	EncoderExe       string `default:"ffmpeg" help:"Path to the encoder executable."`
	EncoderExtraArgs string `help:"Additional shell-quoted flags passed through to the encoder, inserted before the output path."`
	ScratchBaseDir   string `help:"Base directory for the per-run scratch directory; empty uses the system temp dir."`
}

// ToPipelineConfig maps the parsed CLI surface onto pipeline.Config.
func (c CLI) ToPipelineConfig() pipeline.Config {
	var crop *frame.Crop
	if c.CropW > 0 && c.CropH > 0 {
		crop = &frame.Crop{X: c.CropX, Y: c.CropY, W: c.CropW, H: c.CropH}
	}

	var colouriser *preprocess.Colouriser
	if c.FalseColour {
		colouriser = &preprocess.Colouriser{ExePath: c.ColouriseExe, ResKM: c.ResKM}
	}

	return pipeline.Config{
		InputDir:              c.InputDir,
		OutputPath:            c.OutputPath,
		Crop:                  crop,
		Colouriser:            colouriser,
		MaxWorkers:            c.MaxWorkers,
		FPS:                   c.FPS,
		NumIntermediates:      c.NumIntermediates,
		SkipModel:             c.SkipModel,
		InterpolatorExe:       c.InterpolatorExe,
		ModelKey:              c.ModelKey,
		TileEnable:            c.RifeTileEnable,
		TileSize:              c.RifeTileSize,
		UHDMode:               c.RifeUHD,
		TTASpatial:            c.RifeTTASpatial,
		TTATemporal:           c.RifeTTATemporal,
		ThreadSpec:            c.RifeThreadSpec,
		InterpolatorExtraArgs: c.RifeExtraArgs,
		EncoderExe:            c.EncoderExe,
		EncoderExtraArgs:      c.EncoderExtraArgs,
		RateControl: encodersink.RateControl{
			CRF:         c.CRF,
			BitrateKbps: c.BitrateKbps,
			BufsizeKB:   c.BufsizeKB,
			PixFmt:      c.PixFmt,
			Preset:      c.Preset,
		},
		ScratchBaseDir: c.ScratchBaseDir,
	}
}
