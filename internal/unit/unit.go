package unit

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrIncompatibleUnits = errors.New("incompatible units")
	ErrUnknownUnit       = errors.New("unknown unit")
)

// VolumePlaces is the decimal precision volumes are stored at everywhere in
// the system. Conversions deliberately carry more precision than that: rounding
// inside the converter would accumulate drift across repeated conversions and
// break the round-trip guarantee, so only persisted quantities are rounded.
const VolumePlaces = 3

const convertPlaces = 9

type Dimension string

const (
	DimensionVolume Dimension = "volume"
	DimensionMass   Dimension = "mass"
)

type Unit string

const (
	Milliliter Unit = "mL"
	Liter      Unit = "L"
	Hectoliter Unit = "hL"
	Gallon     Unit = "gal"
	Barrel     Unit = "bbl"

	Gram     Unit = "g"
	Kilogram Unit = "kg"
	Pound    Unit = "lb"
	Bushel   Unit = "bu"
)

// Factors to the canonical unit of each dimension: liters for volume,
// kilograms for mass. A bushel is the cidery's fruit bushel, 42 lb of apples.
var (
	literPerGallon = decimal.RequireFromString("3.785411784")
	kgPerPound     = decimal.RequireFromString("0.45359237")

	volumeFactors = map[Unit]decimal.Decimal{
		Milliliter: decimal.RequireFromString("0.001"),
		Liter:      decimal.NewFromInt(1),
		Hectoliter: decimal.NewFromInt(100),
		Gallon:     literPerGallon,
		Barrel:     literPerGallon.Mul(decimal.NewFromInt(31)),
	}

	massFactors = map[Unit]decimal.Decimal{
		Gram:     decimal.RequireFromString("0.001"),
		Kilogram: decimal.NewFromInt(1),
		Pound:    kgPerPound,
		Bushel:   kgPerPound.Mul(decimal.NewFromInt(42)),
	}
)

func (u Unit) Dimension() (Dimension, error) {
	if _, ok := volumeFactors[u]; ok {
		return DimensionVolume, nil
	}
	if _, ok := massFactors[u]; ok {
		return DimensionMass, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownUnit, string(u))
}

func (u Unit) IsVolume() bool {
	_, ok := volumeFactors[u]
	return ok
}

func (u Unit) IsMass() bool {
	_, ok := massFactors[u]
	return ok
}

// Convert converts an amount between two units of the same dimension.
// Converting across dimensions without a density fails with
// ErrIncompatibleUnits.
func Convert(amount decimal.Decimal, from, to Unit) (decimal.Decimal, error) {
	fromDim, err := from.Dimension()
	if err != nil {
		return decimal.Zero, err
	}
	toDim, err := to.Dimension()
	if err != nil {
		return decimal.Zero, err
	}
	if fromDim != toDim {
		return decimal.Zero, fmt.Errorf("%w: cannot convert %v to %v without a density", ErrIncompatibleUnits, from, to)
	}

	factors := volumeFactors
	if fromDim == DimensionMass {
		factors = massFactors
	}

	canonical := amount.Mul(factors[from])

	return canonical.DivRound(factors[to], convertPlaces), nil
}

// ConvertWithDensity converts across dimensions using an explicit density in
// kilograms per liter (e.g. fresh-pressed juice at about 1.05).
func ConvertWithDensity(amount decimal.Decimal, from, to Unit, densityKgPerL decimal.Decimal) (decimal.Decimal, error) {
	fromDim, err := from.Dimension()
	if err != nil {
		return decimal.Zero, err
	}
	toDim, err := to.Dimension()
	if err != nil {
		return decimal.Zero, err
	}
	if fromDim == toDim {
		return Convert(amount, from, to)
	}
	if densityKgPerL.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("%w: density must be positive", ErrIncompatibleUnits)
	}

	if fromDim == DimensionVolume {
		liters := amount.Mul(volumeFactors[from])
		kg := liters.Mul(densityKgPerL)
		return kg.DivRound(massFactors[to], convertPlaces), nil
	}

	kg := amount.Mul(massFactors[from])
	liters := kg.DivRound(densityKgPerL, convertPlaces)

	return liters.DivRound(volumeFactors[to], convertPlaces), nil
}
