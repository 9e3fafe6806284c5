package satindex

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/noaa-goesvfi/goesvfi/internal/vfierrors"
)

const defaultCDNResolution = "5424x5424"

var bandPattern = regexp.MustCompile(`M6C(\d{2})_`)

// productTypeCode maps the ProductType to the "RadF"/"RadC"/"RadM" component
// of an S3 key; RadM1/RadM2 both key under "RadM" since the object store
// does not distinguish mesoscale sectors in the product code.
func productTypeCode(p ProductType) (string, error) {
	switch p {
	case RadF:
		return "RadF", nil
	case RadC:
		return "RadC", nil
	case RadM1, RadM2:
		return "RadM", nil
	default:
		return "", vfierrors.InvalidInputf("unsupported product type %v", p)
	}
}

// nearestValidScanMinute picks max{s in schedule : s <= minute}, or
// max(schedule) when minute falls before the first scan of the hour.
func nearestValidScanMinute(minute int, schedule []int) int {
	best := schedule[len(schedule)-1]
	found := false
	for _, m := range schedule {
		if m <= minute && (!found || m > best) {
			best = m
			found = true
		}
	}
	return best
}

// ToS3Key synthesizes the canonical object-store key for a timestamp,
// satellite, product and band. When exact is false everything after the
// hour in the start field (minute and second) and the end/creation fields
// are wildcarded for a prefix-style listing query; when true a fully
// concrete key is produced (nearest scan minute and start-of-scan second,
// with end and creation both set to second 59 of that scan minute).
func ToS3Key(ts time.Time, sat SatellitePattern, product ProductType, band int, exact bool) (string, error) {
	info, err := lookupSatellite(sat)
	if err != nil {
		return "", err
	}
	if err := ValidateBand(band); err != nil {
		return "", err
	}
	prodCode, err := productTypeCode(product)
	if err != nil {
		return "", err
	}
	schedule, startSec, err := scheduleFor(product)
	if err != nil {
		return "", err
	}

	year := ts.Year()
	doy := dateToDOY(ts)
	hour := ts.Hour()
	validMinute := nearestValidScanMinute(ts.Minute(), schedule)

	baseKey := fmt.Sprintf("ABI-L1b-%s/%04d/%03d/%02d/", prodCode, year, doy, hour)

	if !exact {
		pattern := fmt.Sprintf("OR_ABI-L1b-%s-M6C%02d_%s_s%04d%03d%02d*_e*_c*.nc",
			prodCode, band, info.code, year, doy, hour)
		return baseKey + pattern, nil
	}

	creation := fmt.Sprintf("%04d%03d%02d%02d59", year, doy, hour, validMinute)
	pattern := fmt.Sprintf("OR_ABI-L1b-%s-M6C%02d_%s_s%04d%03d%02d%02d%02d_e%s_c%s.nc",
		prodCode, band, info.code, year, doy, hour, validMinute, startSec, creation, creation)
	return baseKey + pattern, nil
}

// ToCDNURL synthesizes the CDN URL for a timestamp and satellite. A zero
// resolution selects defaultCDNResolution.
func ToCDNURL(ts time.Time, sat SatellitePattern, resolution string) (string, error) {
	info, err := lookupSatellite(sat)
	if err != nil {
		return "", err
	}
	if resolution == "" {
		resolution = defaultCDNResolution
	}

	year := ts.Year()
	doy := dateToDOY(ts)
	filename := fmt.Sprintf("%04d%03d%02d%02d_%s-ABI-CONUS-13-%s.jpg",
		year, doy, ts.Hour(), ts.Minute(), info.shortName, resolution)
	return fmt.Sprintf("https://cdn.star.nesdis.noaa.gov/%s/ABI/CONUS/13/%s", info.shortName, filename), nil
}

// GetBucket returns the S3 bucket name backing a satellite's archive.
func GetBucket(sat SatellitePattern) (string, error) {
	info, err := lookupSatellite(sat)
	if err != nil {
		return "", err
	}
	return info.bucket, nil
}

// FilterKeysByBand returns the subset of keys whose M6C{band} component
// matches targetBand, falling back to a plain substring check for keys the
// regex misses.
func FilterKeysByBand(keys []string, targetBand int) []string {
	if len(keys) == 0 {
		return nil
	}
	if err := ValidateBand(targetBand); err != nil {
		return nil
	}

	want := fmt.Sprintf("%02d", targetBand)
	wantSubstr := fmt.Sprintf("C%s_", want)

	var out []string
	for _, k := range keys {
		if m := bandPattern.FindStringSubmatch(k); m != nil {
			if m[1] == want {
				out = append(out, k)
			}
			continue
		}
		if strings.Contains(k, wantSubstr) {
			out = append(out, k)
		}
	}
	return out
}

// NearestIntervals returns the one or two standard scan timestamps
// bracketing ts for the given product, with seconds/sub-second truncated.
// Mesoscale products scan continuously, so exactly one timestamp (ts
// itself, truncated) is returned.
func NearestIntervals(ts time.Time, product ProductType) ([]time.Time, error) {
	schedule, _, err := scheduleFor(product)
	if err != nil {
		return nil, err
	}
	truncated := ts.Truncate(time.Minute)

	if product == RadM1 || product == RadM2 {
		return []time.Time{truncated}, nil
	}
	if len(schedule) == 1 {
		return []time.Time{truncated.Add(time.Duration(schedule[0]-truncated.Minute()) * time.Minute)}, nil
	}

	minute := ts.Minute()
	var prev, next *int
	for _, m := range schedule {
		m := m
		if m <= minute {
			prev = &m
		} else if next == nil {
			next = &m
		}
	}

	hourStart := ts.Truncate(time.Hour)

	switch {
	case prev == nil:
		prevHour := hourStart.Add(-time.Hour).Add(time.Duration(schedule[len(schedule)-1]) * time.Minute)
		n := schedule[0]
		if next != nil {
			n = *next
		}
		nextTs := hourStart.Add(time.Duration(n) * time.Minute)
		return []time.Time{prevHour, nextTs}, nil
	case next == nil:
		prevTs := hourStart.Add(time.Duration(*prev) * time.Minute)
		nextHour := hourStart.Add(time.Hour).Add(time.Duration(schedule[0]) * time.Minute)
		return []time.Time{prevTs, nextHour}, nil
	default:
		prevTs := hourStart.Add(time.Duration(*prev) * time.Minute)
		nextTs := hourStart.Add(time.Duration(*next) * time.Minute)
		return []time.Time{prevTs, nextTs}, nil
	}
}
