package satindex

import (
	"time"

	"github.com/noaa-goesvfi/goesvfi/internal/vfierrors"
)

func dateToDOY(t time.Time) int {
	return t.YearDay()
}

// doyToDate converts a (year, day-of-year) pair to a date, rejecting
// out-of-range values such as day 366 in a non-leap year.
func doyToDate(year, doy int) (time.Time, error) {
	if doy < 1 || doy > 366 {
		return time.Time{}, vfierrors.InvalidInputf("day-of-year %d out of range [1,366]", doy)
	}

	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	candidate := jan1.AddDate(0, 0, doy-1)

	if candidate.Year() != year {
		return time.Time{}, vfierrors.InvalidInputf("day-of-year %d does not exist in year %d", doy, year)
	}

	return candidate, nil
}
