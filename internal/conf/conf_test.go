package conf

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToPipelineConfigMapsCrop(t *testing.T) {
	cli := CLI{
		InputDir:   "/frames",
		OutputPath: "/out.mp4",
		FPS:        10,
		MaxWorkers: 4,
		CropX:      1, CropY: 2, CropW: 32, CropH: 16,
	}
	cfg := cli.ToPipelineConfig()
	require.NotNil(t, cfg.Crop)
	require.Equal(t, 32, cfg.Crop.W)
}

func TestToPipelineConfigNoCropWhenZeroDimensions(t *testing.T) {
	cli := CLI{InputDir: "/frames", OutputPath: "/out.mp4"}
	cfg := cli.ToPipelineConfig()
	require.Nil(t, cfg.Crop)
}

func TestToPipelineConfigColouriserWiring(t *testing.T) {
	cli := CLI{FalseColour: true, ColouriseExe: "sanchez", ResKM: 4}
	cfg := cli.ToPipelineConfig()
	require.NotNil(t, cfg.Colouriser)
	require.Equal(t, 4, cfg.Colouriser.ResKM)
}

func TestToPipelineConfigMapsExtraArgs(t *testing.T) {
	cli := CLI{RifeExtraArgs: "-g 0", EncoderExtraArgs: "-tune animation"}
	cfg := cli.ToPipelineConfig()
	require.Equal(t, "-g 0", cfg.InterpolatorExtraArgs)
	require.Equal(t, "-tune animation", cfg.EncoderExtraArgs)
}
