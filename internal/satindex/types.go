// Package satindex parses satellite filenames/paths into timestamps and
// synthesizes the object-store keys and CDN URLs used to locate matching
// GOES-16/18 ABI frames. It is consulted by callers that need to locate
// remote objects; interpolation itself never calls into it on the hot path.
package satindex

import "github.com/noaa-goesvfi/goesvfi/internal/vfierrors"

// SatellitePattern identifies the source instrument.
type SatellitePattern int

// Recognized satellite patterns. Generic is a permissive fallback used only
// for filename parsing, never for key synthesis.
const (
	GOES16 SatellitePattern = iota
	GOES18
	Generic
)

type satelliteInfo struct {
	shortName string // "GOES16"
	code      string // "G16"
	bucket    string // "noaa-goes16"
}

var satellites = map[SatellitePattern]satelliteInfo{
	GOES16: {shortName: "GOES16", code: "G16", bucket: "noaa-goes16"},
	GOES18: {shortName: "GOES18", code: "G18", bucket: "noaa-goes18"},
}

func lookupSatellite(s SatellitePattern) (satelliteInfo, error) {
	info, ok := satellites[s]
	if !ok {
		return satelliteInfo{}, vfierrors.InvalidInputf("unsupported satellite pattern %v", s)
	}
	return info, nil
}

// ProductType is a scan sector / cadence combination.
type ProductType int

// Recognized product types.
const (
	RadF ProductType = iota
	RadC
	RadM1
	RadM2
)

func (p ProductType) String() string {
	switch p {
	case RadF:
		return "RadF"
	case RadC:
		return "RadC"
	case RadM1:
		return "RadM1"
	case RadM2:
		return "RadM2"
	default:
		return "Unknown"
	}
}

// scanMinutes is the set of minute offsets within an hour when the product's
// scan begins. RadM1/RadM2 scan continuously (every minute).
var scanMinutes = map[ProductType][]int{
	RadF:  {0, 10, 20, 30, 40, 50},
	RadC:  {1, 6, 11, 16, 21, 26, 31, 36, 41, 46, 51, 56},
	RadM1: fullMinuteRange(),
	RadM2: fullMinuteRange(),
}

func fullMinuteRange() []int {
	m := make([]int, 60)
	for i := range m {
		m[i] = i
	}
	return m
}

// startSeconds is the nominal second-of-minute a scan begins. RadM1/RadM2
// share a start offset since both scan continuously within the hour.
var startSeconds = map[ProductType]int{
	RadF:  0,
	RadC:  19,
	RadM1: 24,
	RadM2: 24,
}

func scheduleFor(p ProductType) ([]int, int, error) {
	minutes, ok := scanMinutes[p]
	if !ok {
		return nil, 0, vfierrors.InvalidInputf("unsupported product type %v", p)
	}
	return minutes, startSeconds[p], nil
}

// ValidateBand reports an error for any band outside [1,16].
func ValidateBand(band int) error {
	if band < 1 || band > 16 {
		return vfierrors.InvalidInputf("band %d out of range [1,16]", band)
	}
	return nil
}
