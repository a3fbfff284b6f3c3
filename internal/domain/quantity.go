package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/quincevale/cidery-api/internal/unit"
)

var (
	ErrNegativeAmount = errors.New("quantity amount must not be negative")
	ErrInvalidABV     = errors.New("abv must be between 0 and 100")
)

var hundred = decimal.NewFromInt(100)

// Quantity is an immutable physical quantity: an amount in a unit, with an
// optional alcohol concentration for volumes. Operations never mutate a
// Quantity in place, they return a new one.
type Quantity struct {
	Amount decimal.Decimal `json:"amount"`
	Unit   unit.Unit       `json:"unit"`
	ABV    decimal.Decimal `json:"abv"`
	HasABV bool            `json:"has_abv"`
}

func NewQuantity(amount decimal.Decimal, u unit.Unit) (Quantity, error) {
	if amount.IsNegative() {
		return Quantity{}, fmt.Errorf("%w: %v", ErrNegativeAmount, amount)
	}
	if _, err := u.Dimension(); err != nil {
		return Quantity{}, err
	}

	return Quantity{Amount: amount.Round(unit.VolumePlaces), Unit: u}, nil
}

func NewVolumeWithABV(amount decimal.Decimal, u unit.Unit, abv decimal.Decimal) (Quantity, error) {
	q, err := NewQuantity(amount, u)
	if err != nil {
		return Quantity{}, err
	}
	if !u.IsVolume() {
		return Quantity{}, fmt.Errorf("%w: abv only applies to volumes, got %v", unit.ErrIncompatibleUnits, u)
	}
	if abv.IsNegative() || abv.GreaterThan(hundred) {
		return Quantity{}, fmt.Errorf("%w: %v", ErrInvalidABV, abv)
	}

	q.ABV = abv
	q.HasABV = true

	return q, nil
}

// In converts the quantity to another unit of the same dimension.
func (q Quantity) In(u unit.Unit) (Quantity, error) {
	amount, err := unit.Convert(q.Amount, q.Unit, u)
	if err != nil {
		return Quantity{}, err
	}

	out := Quantity{Amount: amount.Round(unit.VolumePlaces), Unit: u}
	if q.HasABV {
		out.ABV = q.ABV
		out.HasABV = true
	}

	return out, nil
}

// Liters is a convenience for the canonical volume the ledger stores.
func (q Quantity) Liters() (decimal.Decimal, error) {
	if !q.Unit.IsVolume() {
		return decimal.Zero, fmt.Errorf("%w: %v is not a volume", unit.ErrIncompatibleUnits, q.Unit)
	}

	amount, err := unit.Convert(q.Amount, q.Unit, unit.Liter)
	if err != nil {
		return decimal.Zero, err
	}

	return amount.Round(unit.VolumePlaces), nil
}

func (q Quantity) Add(other Quantity) (Quantity, error) {
	converted, err := other.In(q.Unit)
	if err != nil {
		return Quantity{}, err
	}

	out := q
	out.Amount = q.Amount.Add(converted.Amount)

	return out, nil
}

func (q Quantity) Sub(other Quantity) (Quantity, error) {
	converted, err := other.In(q.Unit)
	if err != nil {
		return Quantity{}, err
	}
	if converted.Amount.GreaterThan(q.Amount) {
		return Quantity{}, fmt.Errorf("%w: %v - %v", ErrNegativeAmount, q.Amount, converted.Amount)
	}

	out := q
	out.Amount = q.Amount.Sub(converted.Amount)

	return out, nil
}

func (q Quantity) IsZero() bool {
	return q.Amount.IsZero()
}

func (q Quantity) String() string {
	if q.HasABV {
		return fmt.Sprintf("%v %v @ %v%% ABV", q.Amount, q.Unit, q.ABV)
	}

	return fmt.Sprintf("%v %v", q.Amount, q.Unit)
}
