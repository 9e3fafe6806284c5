package satindex

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestExtractTimestampInternalForm(t *testing.T) {
	ts, sat, ok := ExtractTimestampAndSatellite("goes16_20230615_123045_band13.png")
	require.True(t, ok)
	require.Equal(t, GOES16, sat)
	require.Equal(t, time.Date(2023, time.June, 15, 12, 30, 45, 0, time.UTC), ts)
}

func TestExtractTimestampLegacyForm(t *testing.T) {
	ts, sat, ok := ExtractTimestampAndSatellite("image_G18_20230615T123045Z.png")
	require.True(t, ok)
	require.Equal(t, GOES18, sat)
	require.Equal(t, time.Date(2023, time.June, 15, 12, 30, 45, 0, time.UTC), ts)
}

func TestExtractTimestampCDNForm(t *testing.T) {
	ts, sat, ok := ExtractTimestampAndSatellite("20231661230_GOES16-ABI-CONUS-13-1808x1808.jpg")
	require.True(t, ok)
	require.Equal(t, GOES16, sat)
	require.Equal(t, 2023, ts.Year())
	require.Equal(t, time.June, ts.Month())
	require.Equal(t, 15, ts.Day())
	require.Equal(t, 12, ts.Hour())
	require.Equal(t, 30, ts.Minute())
}

func TestExtractTimestampFromDirectoryDashed(t *testing.T) {
	ts, ok := ExtractTimestampFromDirectory("frames/2023-06-15_12-30-45/frame.png")
	require.True(t, ok)
	require.Equal(t, time.Date(2023, time.June, 15, 12, 30, 45, 0, time.UTC), ts)
}

func TestExtractTimestampFromDirectorySatDayPath(t *testing.T) {
	ts, ok := ExtractTimestampFromDirectory("archive/GOES16/FD/13/2023/166/frame.png")
	require.True(t, ok)
	require.Equal(t, 2023, ts.Year())
	require.Equal(t, time.June, ts.Month())
	require.Equal(t, 15, ts.Day())
}

func TestExtractTimestampNoMatch(t *testing.T) {
	_, ok := ExtractTimestamp("not_a_recognized_name.png")
	require.False(t, ok)
}

func TestExtractTimestampRejectsInvalidDOY(t *testing.T) {
	_, ok := ExtractTimestampFromDirectory("archive/GOES16/FD/13/2023/366/frame.png")
	require.False(t, ok)
}
