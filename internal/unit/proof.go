package unit

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// US proof is twice the alcohol percentage by volume.
var proofPerABV = decimal.NewFromInt(2)

var fiftyPct = decimal.NewFromInt(50)

func ProofFromABV(abv decimal.Decimal) decimal.Decimal {
	return abv.Mul(proofPerABV)
}

func ABVFromProof(proof decimal.Decimal) decimal.Decimal {
	return proof.DivRound(proofPerABV, convertPlaces).Round(VolumePlaces)
}

// ProofGallons computes US proof gallons, the excise reporting unit: one
// gallon of liquid at 50% ABV (100 proof) is one proof gallon.
func ProofGallons(volume decimal.Decimal, volumeUnit Unit, abv decimal.Decimal) (decimal.Decimal, error) {
	if !volumeUnit.IsVolume() {
		return decimal.Zero, fmt.Errorf("%w: proof gallons require a volume, got %v", ErrIncompatibleUnits, volumeUnit)
	}

	gallons, err := Convert(volume, volumeUnit, Gallon)
	if err != nil {
		return decimal.Zero, err
	}

	return gallons.Mul(abv).DivRound(fiftyPct, convertPlaces).Round(VolumePlaces), nil
}
