package satindex

import (
	"regexp"
	"strconv"
	"time"
)

// Filename/dirname patterns. ExtractTimestampAndSatellite tries the file
// forms 1, 6 and 7 first, then the directory forms 2-5; first match wins.
var (
	reInternal = regexp.MustCompile(`goes(\d+)_(\d{4})(\d{2})(\d{2})_(\d{2})(\d{2})(\d{2})_band(\d{2})\.png$`)

	reDirDashed  = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})_(\d{2})-(\d{2})-(\d{2})`)
	reDirCompact = regexp.MustCompile(`(\d{4})(\d{2})(\d{2})_(\d{2})(\d{2})(\d{2})`)
	reDirISO     = regexp.MustCompile(`(\d{4})(\d{2})(\d{2})T(\d{2})(\d{2})(\d{2})`)

	reSatDayPath = regexp.MustCompile(`GOES(\d+)/FD/13/(\d{4})/(\d{3})`)

	reYearDOYSlash   = regexp.MustCompile(`(?:^|/)(\d{4})/(\d{3})(?:$|/)`)
	reYearDOYCompact = regexp.MustCompile(`(?:^|[^0-9])(\d{4})(\d{3})(?:[^0-9]|$)`)

	reLegacy = regexp.MustCompile(`image_G(\d+)_(\d{4})(\d{2})(\d{2})T(\d{2})(\d{2})(\d{2})Z\.png$`)

	reCDN = regexp.MustCompile(`(\d{4})(\d{3})(\d{2})(\d{2})(\d{2})?_GOES(\d+)-ABI-(\w+)-13-(\d+x\d+)\.jpg$`)
)

func satelliteFromCode(n string) SatellitePattern {
	switch n {
	case "16":
		return GOES16
	case "18":
		return GOES18
	default:
		return Generic
	}
}

// ExtractTimestamp parses a filename or directory name into a UTC timestamp,
// returning ok=false (never an error) when nothing recognizable matches.
func ExtractTimestamp(name string) (ts time.Time, ok bool) {
	ts, _, ok = ExtractTimestampAndSatellite(name)
	return ts, ok
}

// ExtractTimestampAndSatellite parses a filename into a (timestamp,
// satellite) pair when both are embedded in the name; ok is false when no
// pattern matches anywhere in the name.
func ExtractTimestampAndSatellite(name string) (time.Time, SatellitePattern, bool) {
	// 1. goes{NN}_YYYYMMDD_HHMMSS_band{BB}.png
	if m := reInternal.FindStringSubmatch(name); m != nil {
		sat := satelliteFromCode(m[1])
		y, mo, d := atoi(m[2]), atoi(m[3]), atoi(m[4])
		h, mi, s := atoi(m[5]), atoi(m[6]), atoi(m[7])
		return time.Date(y, time.Month(mo), d, h, mi, s, 0, time.UTC), sat, true
	}

	// 6. legacy file form image_G{NN}_YYYYMMDDTHHMMSSZ.png
	if m := reLegacy.FindStringSubmatch(name); m != nil {
		sat := satelliteFromCode(m[1])
		y, mo, d := atoi(m[2]), atoi(m[3]), atoi(m[4])
		h, mi, s := atoi(m[5]), atoi(m[6]), atoi(m[7])
		return time.Date(y, time.Month(mo), d, h, mi, s, 0, time.UTC), sat, true
	}

	// 7. CDN form YYYYDDDHHMM[SS]_GOES{NN}-ABI-{sector}-13-{WWxHH}.jpg
	if m := reCDN.FindStringSubmatch(name); m != nil {
		y, doy := atoi(m[1]), atoi(m[2])
		h, mi := atoi(m[3]), atoi(m[4])
		sec := 0
		if m[5] != "" {
			sec = atoi(m[5])
		}
		date, err := doyToDate(y, doy)
		if err != nil {
			return time.Time{}, Generic, false
		}
		sat := satelliteFromCode(m[6])
		ts := time.Date(date.Year(), date.Month(), date.Day(), h, mi, sec, 0, time.UTC)
		return ts, sat, true
	}

	if ts, ok := extractDirectoryForm(name); ok {
		return ts, Generic, true
	}

	return time.Time{}, Generic, false
}

// ExtractTimestampFromDirectory parses a directory name into a UTC
// timestamp. No satellite is returned; the GOES{NN} component of the
// GOES{NN}/FD/13/YYYY/DDD form is not parsed.
func ExtractTimestampFromDirectory(dirname string) (time.Time, bool) {
	return extractDirectoryForm(dirname)
}

func extractDirectoryForm(name string) (time.Time, bool) {
	// 2. YYYY-MM-DD_HH-MM-SS
	if m := reDirDashed.FindStringSubmatch(name); m != nil {
		return dateFromParts(m), true
	}

	// 3. YYYYMMDD_HHMMSS / YYYYMMDDTHHMMSS
	if m := reDirCompact.FindStringSubmatch(name); m != nil {
		return dateFromParts(m), true
	}
	if m := reDirISO.FindStringSubmatch(name); m != nil {
		return dateFromParts(m), true
	}

	// 4. GOES{NN}/FD/13/YYYY/DDD (time defaults to 00:00:00)
	if m := reSatDayPath.FindStringSubmatch(name); m != nil {
		y, doy := atoi(m[2]), atoi(m[3])
		date, err := doyToDate(y, doy)
		if err != nil {
			return time.Time{}, false
		}
		return date, true
	}

	// 5. YYYY/DDD and compact YYYYDDD (day-of-year only)
	if m := reYearDOYSlash.FindStringSubmatch(name); m != nil {
		y, doy := atoi(m[1]), atoi(m[2])
		date, err := doyToDate(y, doy)
		if err != nil {
			return time.Time{}, false
		}
		return date, true
	}
	if m := reYearDOYCompact.FindStringSubmatch(name); m != nil {
		y, doy := atoi(m[1]), atoi(m[2])
		date, err := doyToDate(y, doy)
		if err != nil {
			return time.Time{}, false
		}
		return date, true
	}

	return time.Time{}, false
}

func dateFromParts(m []string) time.Time {
	y, mo, d := atoi(m[1]), atoi(m[2]), atoi(m[3])
	h, mi, s := atoi(m[4]), atoi(m[5]), atoi(m[6])
	return time.Date(y, time.Month(mo), d, h, mi, s, 0, time.UTC)
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
