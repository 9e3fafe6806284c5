package satindex

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateBandRange(t *testing.T) {
	require.NoError(t, ValidateBand(1))
	require.NoError(t, ValidateBand(16))
	require.Error(t, ValidateBand(0))
	require.Error(t, ValidateBand(17))
}

func TestProductTypeString(t *testing.T) {
	require.Equal(t, "RadF", RadF.String())
	require.Equal(t, "RadM1", RadM1.String())
}

func TestScheduleForUnknown(t *testing.T) {
	_, _, err := scheduleFor(ProductType(99))
	require.Error(t, err)
}

func TestLookupSatelliteUnknown(t *testing.T) {
	_, err := lookupSatellite(Generic)
	require.Error(t, err)
}
