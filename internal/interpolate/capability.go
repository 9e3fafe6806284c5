// Package interpolate drives the external frame-interpolation subprocess
// ("RIFE" in the reference toolchain) per consecutive frame pair.
package interpolate

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"
)

// CapabilityFlags describes features the interpolator binary supports,
// discovered once at driver construction by parsing its help/diagnostic
// output.
type CapabilityFlags struct {
	Tiling      bool
	UHD         bool
	TTASpatial  bool
	TTATemporal bool
	ThreadSpec  bool
	ModelPath   bool
	Timestep    bool
	GPUID       bool
}

// DiscoverCapabilities invokes exePath with a help argument and parses its
// output. A non-zero exit (common for "--help" on tools that treat it as an
// unrecognised flag) is ignored: whatever the binary printed is still
// parsed, and every optional feature absent from that output is treated as
// unsupported rather than failing the whole driver over a help-flag quirk.
func DiscoverCapabilities(ctx context.Context, exePath string) CapabilityFlags {
	cmd := exec.CommandContext(ctx, exePath, "--help")
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	_ = cmd.Run()

	return parseCapabilities(out.String())
}

// checkExecutable reports whether exePath resolves to a runnable binary,
// the way exec.Cmd.Start itself would resolve it.
func checkExecutable(exePath string) error {
	_, err := exec.LookPath(exePath)
	return err
}

func parseCapabilities(help string) CapabilityFlags {
	lower := strings.ToLower(help)
	return CapabilityFlags{
		Tiling:      strings.Contains(lower, "-t ") || strings.Contains(lower, "tile"),
		UHD:         strings.Contains(lower, "-u") || strings.Contains(lower, "uhd"),
		TTASpatial:  strings.Contains(lower, "-x") || strings.Contains(lower, "tta-spatial"),
		TTATemporal: strings.Contains(lower, "tta-temporal"),
		ThreadSpec:  strings.Contains(lower, "-j ") || strings.Contains(lower, "thread"),
		ModelPath:   strings.Contains(lower, "-m ") || strings.Contains(lower, "model"),
		Timestep:    strings.Contains(lower, "-s ") || strings.Contains(lower, "timestep"),
		GPUID:       strings.Contains(lower, "-g ") || strings.Contains(lower, "gpu"),
	}
}

func formatStep(n int) string {
	return strconv.FormatFloat(1/float64(n+1), 'f', -1, 64)
}
