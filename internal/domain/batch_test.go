package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaxClassForABV(t *testing.T) {
	tests := []struct {
		abv  string
		want TaxClass
	}{
		{"0", TaxClassCider},
		{"6.9", TaxClassCider},
		{"8.5", TaxClassCider},
		{"8.501", TaxClassWine},
		{"22", TaxClassWine},
		{"24", TaxClassWine},
		{"24.001", TaxClassSpirits},
		{"55", TaxClassSpirits},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TaxClassForABV(dec(tt.abv)), "abv %s", tt.abv)
	}
}

func TestVessel_CanTransition(t *testing.T) {
	assert.True(t, Vessel{Status: VesselAvailable}.CanTransition(VesselCleaning))
	assert.True(t, Vessel{Status: VesselMaintenance}.CanTransition(VesselAvailable))
	assert.True(t, Vessel{Status: VesselOccupied}.CanTransition(VesselCleaning))
	assert.True(t, Vessel{Status: VesselOccupied}.CanTransition(VesselMaintenance))
	assert.True(t, Vessel{Status: VesselAvailable}.CanTransition(VesselRetired))

	// Retired is terminal and Occupied is only entered through assignment.
	assert.False(t, Vessel{Status: VesselRetired}.CanTransition(VesselAvailable))
	assert.False(t, Vessel{Status: VesselAvailable}.CanTransition(VesselOccupied))
	assert.False(t, Vessel{Status: VesselCleaning}.CanTransition(VesselCleaning))
}
